package handler

import (
	"github.com/gofiber/fiber/v2"

	"github.com/DimasAnjayMabar/agusplastik-backend/internal/middleware"
	"github.com/DimasAnjayMabar/agusplastik-backend/internal/model"
	"github.com/DimasAnjayMabar/agusplastik-backend/internal/policy"
	"github.com/DimasAnjayMabar/agusplastik-backend/internal/service"
)

type AuthHandler struct {
	auth  service.AuthService
	users service.UserService
}

func NewAuthHandler(auth service.AuthService, users service.UserService) *AuthHandler {
	return &AuthHandler{auth: auth, users: users}
}

// Login handles POST /login/:role
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	endpoint, err := paramRole(c)
	if err != nil {
		return err
	}
	var req service.LoginRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	res, err := h.auth.Login(c.UserContext(), endpoint, req)
	if err != nil {
		return err
	}
	return ok(c, res)
}

// RegisterSuperadmin handles POST /registrasi/superadmin
func (h *AuthHandler) RegisterSuperadmin(c *fiber.Ctx) error {
	var req service.RegisterRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	user, err := h.auth.RegisterSuperadmin(c.UserContext(), req)
	if err != nil {
		return err
	}
	return ok(c, user)
}

// Register handles POST /registrasi/:role for subordinate accounts.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	role, err := paramRole(c)
	if err != nil {
		return err
	}
	var req service.RegisterRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	user, err := h.users.Register(c.UserContext(), actor(c), role, req)
	if err != nil {
		return err
	}
	return ok(c, user)
}

func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	if err := h.auth.Logout(c.UserContext(), middleware.BearerToken(c)); err != nil {
		return err
	}
	return ok(c, service.MessageResult{Message: "Berhasil logout"})
}

func (h *AuthHandler) Profile(c *fiber.Ctx) error {
	user, err := h.users.Profile(c.UserContext(), actor(c))
	if err != nil {
		return err
	}
	return ok(c, user)
}

func (h *AuthHandler) UpdateProfile(c *fiber.Ctx) error {
	var req service.UpdateUserRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	user, err := h.users.UpdateProfile(c.UserContext(), actor(c), req)
	if err != nil {
		return err
	}
	return ok(c, user)
}

func (h *AuthHandler) ChangePassword(c *fiber.Ctx) error {
	var req service.ChangePasswordRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if err := h.auth.ChangePassword(c.UserContext(), actor(c), req); err != nil {
		return err
	}
	return ok(c, service.MessageResult{Message: "Password berhasil diubah"})
}

type roleInfo struct {
	Code  model.Role `json:"code"`
	Label string     `json:"label"`
}

// Roles lists the account roles the caller may register or manage.
func (h *AuthHandler) Roles(c *fiber.Ctx) error {
	managed := policy.ManagedRoles(actor(c).Role)
	roles := make([]roleInfo, 0, len(managed))
	for _, r := range managed {
		roles = append(roles, roleInfo{Code: r, Label: r.Label()})
	}
	return ok(c, roles)
}
