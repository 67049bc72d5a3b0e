package handler

import (
	"github.com/gofiber/fiber/v2"

	"github.com/DimasAnjayMabar/agusplastik-backend/internal/repository"
	"github.com/DimasAnjayMabar/agusplastik-backend/internal/service"
)

type InventoryHandler struct {
	inventory service.InventoryService
}

func NewInventoryHandler(s service.InventoryService) *InventoryHandler {
	return &InventoryHandler{inventory: s}
}

// Receive handles POST /gudang/products/create-product, a stock-in batch.
func (h *InventoryHandler) Receive(c *fiber.Ctx) error {
	var req service.StockInRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	res, err := h.inventory.Receive(c.UserContext(), actor(c), req)
	if err != nil {
		return err
	}
	return ok(c, res)
}

// ListStockIn handles GET /gudang/stock-in?from=&to=&distributorId=
func (h *InventoryHandler) ListStockIn(c *fiber.Ctx) error {
	var (
		f   repository.StockInFilter
		err error
	)
	if f.ListParams, err = listParams(c); err != nil {
		return err
	}
	if f.DistributorID, err = queryUUID(c, "distributorId"); err != nil {
		return err
	}
	if f.From, err = queryTime(c, "from", false); err != nil {
		return err
	}
	if f.To, err = queryTime(c, "to", true); err != nil {
		return err
	}
	page, err := h.inventory.ListStockIn(c.UserContext(), actor(c), f)
	if err != nil {
		return err
	}
	return ok(c, page)
}

func (h *InventoryHandler) GetStockIn(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	in, err := h.inventory.GetStockIn(c.UserContext(), actor(c), id)
	if err != nil {
		return err
	}
	return ok(c, in)
}
