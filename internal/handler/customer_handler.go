package handler

import (
	"github.com/gofiber/fiber/v2"

	"github.com/DimasAnjayMabar/agusplastik-backend/internal/service"
)

type CustomerHandler struct {
	customers service.CustomerService
}

func NewCustomerHandler(s service.CustomerService) *CustomerHandler {
	return &CustomerHandler{customers: s}
}

func (h *CustomerHandler) Create(c *fiber.Ctx) error {
	var req service.CustomerRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	cust, err := h.customers.Create(c.UserContext(), actor(c), req)
	if err != nil {
		return err
	}
	return ok(c, cust)
}

func (h *CustomerHandler) List(c *fiber.Ctx) error {
	p, err := listParams(c)
	if err != nil {
		return err
	}
	page, err := h.customers.List(c.UserContext(), actor(c), p)
	if err != nil {
		return err
	}
	return ok(c, page)
}

func (h *CustomerHandler) Get(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	cust, err := h.customers.Get(c.UserContext(), actor(c), id)
	if err != nil {
		return err
	}
	return ok(c, cust)
}

func (h *CustomerHandler) Update(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	var req service.UpdateCustomerRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	cust, err := h.customers.Update(c.UserContext(), actor(c), id, req)
	if err != nil {
		return err
	}
	return ok(c, cust)
}

func (h *CustomerHandler) Delete(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	if err := h.customers.Deactivate(c.UserContext(), actor(c), id); err != nil {
		return err
	}
	return ok(c, service.MessageResult{Message: "Pelanggan berhasil dinonaktifkan"})
}

func (h *CustomerHandler) History(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	rows, err := h.customers.History(c.UserContext(), actor(c), id)
	if err != nil {
		return err
	}
	return ok(c, rows)
}
