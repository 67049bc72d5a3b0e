package handler

import (
	"github.com/gofiber/fiber/v2"

	"github.com/DimasAnjayMabar/agusplastik-backend/internal/service"
)

// AccountHandler serves the superadmin account pages and the admin staff pages.
// Scope is decided by the service from the caller's role.
type AccountHandler struct {
	users service.UserService
}

func NewAccountHandler(users service.UserService) *AccountHandler {
	return &AccountHandler{users: users}
}

func (h *AccountHandler) List(c *fiber.Ctx) error {
	q, err := userQuery(c)
	if err != nil {
		return err
	}
	page, err := h.users.List(c.UserContext(), actor(c), q)
	if err != nil {
		return err
	}
	return ok(c, page)
}

func (h *AccountHandler) Get(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	user, err := h.users.Get(c.UserContext(), actor(c), id)
	if err != nil {
		return err
	}
	return ok(c, user)
}

func (h *AccountHandler) Update(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	var req service.UpdateUserRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	user, err := h.users.Update(c.UserContext(), actor(c), id, req)
	if err != nil {
		return err
	}
	return ok(c, user)
}

func (h *AccountHandler) Delete(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	if err := h.users.Deactivate(c.UserContext(), actor(c), id); err != nil {
		return err
	}
	return ok(c, service.MessageResult{Message: "Akun berhasil dinonaktifkan"})
}

func (h *AccountHandler) History(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	rows, err := h.users.History(c.UserContext(), actor(c), id)
	if err != nil {
		return err
	}
	return ok(c, rows)
}

// TransferStaff handles POST /superadmin/transfer-staff
func (h *AccountHandler) TransferStaff(c *fiber.Ctx) error {
	var req service.TransferStaffRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	res, err := h.users.TransferStaff(c.UserContext(), actor(c), req)
	if err != nil {
		return err
	}
	return ok(c, res)
}

// TransferAdmin handles POST /superadmin/transfer-admin
func (h *AccountHandler) TransferAdmin(c *fiber.Ctx) error {
	var req service.TransferAdminRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	res, err := h.users.TransferAdmin(c.UserContext(), actor(c), req)
	if err != nil {
		return err
	}
	return ok(c, res)
}
