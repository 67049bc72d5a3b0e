package handler

import (
	"github.com/gofiber/fiber/v2"

	"github.com/DimasAnjayMabar/agusplastik-backend/internal/service"
)

type ShopHandler struct {
	shops service.ShopService
}

func NewShopHandler(shops service.ShopService) *ShopHandler {
	return &ShopHandler{shops: shops}
}

func (h *ShopHandler) Create(c *fiber.Ctx) error {
	var req service.CreateShopRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	shop, err := h.shops.Create(c.UserContext(), actor(c), req)
	if err != nil {
		return err
	}
	return ok(c, shop)
}

func (h *ShopHandler) List(c *fiber.Ctx) error {
	p, err := listParams(c)
	if err != nil {
		return err
	}
	page, err := h.shops.List(c.UserContext(), actor(c), p)
	if err != nil {
		return err
	}
	return ok(c, page)
}

func (h *ShopHandler) Get(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	shop, err := h.shops.Get(c.UserContext(), actor(c), id)
	if err != nil {
		return err
	}
	return ok(c, shop)
}

func (h *ShopHandler) Update(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	var req service.UpdateShopRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	shop, err := h.shops.Update(c.UserContext(), actor(c), id, req)
	if err != nil {
		return err
	}
	return ok(c, shop)
}

func (h *ShopHandler) Delete(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	if err := h.shops.Deactivate(c.UserContext(), actor(c), id); err != nil {
		return err
	}
	return ok(c, service.MessageResult{Message: "Toko berhasil dinonaktifkan"})
}

func (h *ShopHandler) History(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	rows, err := h.shops.History(c.UserContext(), actor(c), id)
	if err != nil {
		return err
	}
	return ok(c, rows)
}

// Staff handles GET /superadmin/shops/:id/staff?role=
func (h *ShopHandler) Staff(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	q, err := userQuery(c)
	if err != nil {
		return err
	}
	page, err := h.shops.Staff(c.UserContext(), actor(c), id, q)
	if err != nil {
		return err
	}
	return ok(c, page)
}

func (h *ShopHandler) Products(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	f, err := productFilter(c)
	if err != nil {
		return err
	}
	page, err := h.shops.Products(c.UserContext(), actor(c), id, f)
	if err != nil {
		return err
	}
	return ok(c, page)
}
