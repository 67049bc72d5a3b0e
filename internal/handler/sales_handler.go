package handler

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/DimasAnjayMabar/agusplastik-backend/internal/model"
	"github.com/DimasAnjayMabar/agusplastik-backend/internal/repository"
	"github.com/DimasAnjayMabar/agusplastik-backend/internal/service"
)

type SalesHandler struct {
	sales service.SalesService
}

func NewSalesHandler(s service.SalesService) *SalesHandler {
	return &SalesHandler{sales: s}
}

// CreateTransaction handles POST /kasir/transactions/create-transaction
func (h *SalesHandler) CreateTransaction(c *fiber.Ctx) error {
	var req service.CreateTransactionRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	tx, err := h.sales.CreateTransaction(c.UserContext(), actor(c), req)
	if err != nil {
		return err
	}
	return ok(c, tx)
}

// List handles GET /kasir/transactions?status=&payment=&customerId=&from=&to=
func (h *SalesHandler) List(c *fiber.Ctx) error {
	var (
		f   repository.TransactionFilter
		err error
	)
	if f.ListParams, err = listParams(c); err != nil {
		return err
	}
	f.Status = model.TransactionStatus(c.Query("status"))
	f.Payment = model.PaymentMethod(c.Query("payment"))
	if f.CustomerID, err = queryUUID(c, "customerId"); err != nil {
		return err
	}
	if f.From, err = queryTime(c, "from", false); err != nil {
		return err
	}
	if f.To, err = queryTime(c, "to", true); err != nil {
		return err
	}
	page, err := h.sales.List(c.UserContext(), actor(c), f)
	if err != nil {
		return err
	}
	return ok(c, page)
}

func (h *SalesHandler) Get(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	tx, err := h.sales.Get(c.UserContext(), actor(c), id)
	if err != nil {
		return err
	}
	return ok(c, tx)
}

// AddInstallment handles POST /kasir/transactions/:id/installments
func (h *SalesHandler) AddInstallment(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	var req service.InstallmentRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	tx, err := h.sales.AddInstallment(c.UserContext(), actor(c), id, req)
	if err != nil {
		return err
	}
	return ok(c, tx)
}

// Receipt streams the transaction receipt as a PDF.
func (h *SalesHandler) Receipt(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	tx, pdf, err := h.sales.Receipt(c.UserContext(), actor(c), id)
	if err != nil {
		return err
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`inline; filename="%s.pdf"`, tx.Invoice))
	return c.Status(fiber.StatusOK).Send(pdf)
}
