package handler

import (
	"github.com/gofiber/fiber/v2"

	"github.com/DimasAnjayMabar/agusplastik-backend/internal/service"
)

// CatalogHandler serves products, product types and distributors.
type CatalogHandler struct {
	catalog service.CatalogService
}

func NewCatalogHandler(catalog service.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalog: catalog}
}

func (h *CatalogHandler) ListProducts(c *fiber.Ctx) error {
	f, err := productFilter(c)
	if err != nil {
		return err
	}
	page, err := h.catalog.ListProducts(c.UserContext(), actor(c), f)
	if err != nil {
		return err
	}
	return ok(c, page)
}

func (h *CatalogHandler) GetProduct(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	p, err := h.catalog.GetProduct(c.UserContext(), actor(c), id)
	if err != nil {
		return err
	}
	return ok(c, p)
}

func (h *CatalogHandler) UpdateProduct(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	var req service.UpdateProductRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	p, err := h.catalog.UpdateProduct(c.UserContext(), actor(c), id, req)
	if err != nil {
		return err
	}
	return ok(c, p)
}

func (h *CatalogHandler) DeleteProduct(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	if err := h.catalog.DeactivateProduct(c.UserContext(), actor(c), id); err != nil {
		return err
	}
	return ok(c, service.MessageResult{Message: "Produk berhasil dinonaktifkan"})
}

func (h *CatalogHandler) ProductHistory(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	rows, err := h.catalog.ProductHistory(c.UserContext(), actor(c), id)
	if err != nil {
		return err
	}
	return ok(c, rows)
}

func (h *CatalogHandler) ListTypes(c *fiber.Ctx) error {
	types, err := h.catalog.ListTypes(c.UserContext(), actor(c))
	if err != nil {
		return err
	}
	return ok(c, types)
}

func (h *CatalogHandler) CreateType(c *fiber.Ctx) error {
	var req service.CreateTypeRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	t, err := h.catalog.CreateType(c.UserContext(), actor(c), req)
	if err != nil {
		return err
	}
	return ok(c, t)
}

func (h *CatalogHandler) CreateDistributor(c *fiber.Ctx) error {
	var req service.DistributorRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	d, err := h.catalog.CreateDistributor(c.UserContext(), actor(c), req)
	if err != nil {
		return err
	}
	return ok(c, d)
}

func (h *CatalogHandler) ListDistributors(c *fiber.Ctx) error {
	p, err := listParams(c)
	if err != nil {
		return err
	}
	page, err := h.catalog.ListDistributors(c.UserContext(), actor(c), p)
	if err != nil {
		return err
	}
	return ok(c, page)
}

func (h *CatalogHandler) GetDistributor(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	d, err := h.catalog.GetDistributor(c.UserContext(), actor(c), id)
	if err != nil {
		return err
	}
	return ok(c, d)
}

func (h *CatalogHandler) UpdateDistributor(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	var req service.UpdateDistributorRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	d, err := h.catalog.UpdateDistributor(c.UserContext(), actor(c), id, req)
	if err != nil {
		return err
	}
	return ok(c, d)
}

func (h *CatalogHandler) DeleteDistributor(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	if err := h.catalog.DeactivateDistributor(c.UserContext(), actor(c), id); err != nil {
		return err
	}
	return ok(c, service.MessageResult{Message: "Distributor berhasil dinonaktifkan"})
}

func (h *CatalogHandler) DistributorHistory(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	rows, err := h.catalog.DistributorHistory(c.UserContext(), actor(c), id)
	if err != nil {
		return err
	}
	return ok(c, rows)
}
