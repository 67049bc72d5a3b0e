package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/DimasAnjayMabar/agusplastik-backend/internal/apperror"
	"github.com/DimasAnjayMabar/agusplastik-backend/internal/invoice"
	"github.com/DimasAnjayMabar/agusplastik-backend/internal/model"
	"github.com/DimasAnjayMabar/agusplastik-backend/internal/policy"
	"github.com/DimasAnjayMabar/agusplastik-backend/internal/receipt"
	"github.com/DimasAnjayMabar/agusplastik-backend/internal/repository"
	"github.com/DimasAnjayMabar/agusplastik-backend/internal/ws"
)

var (
	ErrOverpayment       = apperror.Conflict("OVERPAYMENT", "Jumlah bayar melebihi total transaksi")
	ErrInsufficientStock = apperror.Conflict("INSUFFICIENT_STOCK", "Stok produk tidak mencukupi")
	ErrNotCredit         = apperror.Conflict("NOT_CREDIT", "Transaksi bukan transaksi kredit")
)

// SalesService records cashier sales and credit repayments.
type SalesService interface {
	CreateTransaction(ctx context.Context, actor *Actor, req CreateTransactionRequest) (*model.Transaction, error)
	List(ctx context.Context, actor *Actor, f repository.TransactionFilter) (repository.Page[model.Transaction], error)
	Get(ctx context.Context, actor *Actor, id uuid.UUID) (*model.Transaction, error)
	AddInstallment(ctx context.Context, actor *Actor, id uuid.UUID, req InstallmentRequest) (*model.Transaction, error)
	Receipt(ctx context.Context, actor *Actor, id uuid.UUID) (*model.Transaction, []byte, error)
}

type TransactionItem struct {
	ProductID uuid.UUID       `json:"productId" validate:"uuid_required"`
	Quantity  int             `json:"quantity" validate:"gte=1"`
	Subtotal  decimal.Decimal `json:"subtotal" validate:"gte=0"`
}

type CustomerRef struct {
	ID uuid.UUID `json:"id" validate:"uuid_required"`
}

type CreateTransactionRequest struct {
	Payment    model.PaymentMethod `json:"payment" validate:"required,oneof=cash credit transfer qris"`
	PaidAmount *decimal.Decimal    `json:"paidAmount"`
	Items      []TransactionItem   `json:"items" validate:"required,min=1,dive"`
	DiscountID *uuid.UUID          `json:"discountId"`
	Customer   *CustomerRef        `json:"customer"`
}

type InstallmentRequest struct {
	Amount decimal.Decimal     `json:"amount" validate:"gt=0"`
	Method model.PaymentMethod `json:"method" validate:"omitempty,oneof=cash transfer qris"`
	Note   string              `json:"note" validate:"max=255"`
}

type salesService struct {
	base
}

func NewSalesService(store repository.Store, opts ...Option) SalesService {
	return &salesService{base: newBase(store, opts)}
}

// checkPayment applies the credit rules: credit needs a customer and a paid
// amount no larger than the total, other methods take neither.
func checkPayment(req *CreateTransactionRequest, total decimal.Decimal) error {
	if req.Payment != model.PaymentCredit {
		if req.PaidAmount != nil {
			return apperror.Validation("paidAmount hanya diisi untuk pembayaran kredit")
		}
		return nil
	}
	if req.PaidAmount == nil {
		return apperror.Validation("paidAmount wajib diisi untuk pembayaran kredit")
	}
	if req.PaidAmount.IsNegative() {
		return apperror.Validation("paidAmount tidak boleh negatif")
	}
	if req.Customer == nil {
		return apperror.Validation("Pelanggan wajib diisi untuk pembayaran kredit")
	}
	if req.PaidAmount.Round(2).GreaterThan(total) {
		return ErrOverpayment
	}
	return nil
}

// CreateTransaction books a sale, its stock-out mirror, the stock decrements
// and the initial credit payment as one unit.
func (s *salesService) CreateTransaction(ctx context.Context, actor *Actor, req CreateTransactionRequest) (*model.Transaction, error) {
	if err := actor.require(policy.Sell); err != nil {
		return nil, err
	}
	shopID, err := actor.shop()
	if err != nil {
		return nil, err
	}
	if err := validate(&req); err != nil {
		return nil, err
	}

	// 1. Total
	total := decimal.Zero
	for _, item := range req.Items {
		total = total.Add(item.Subtotal.Round(2))
	}

	// 2. Payment rules, before anything is written
	if err := checkPayment(&req, total); err != nil {
		return nil, err
	}

	now := s.now()
	trx := &model.Transaction{
		Invoice:     invoice.Generate(invoice.PrefixSale, now),
		ShopID:      shopID,
		TotalAmount: total,
		PaidAmount:  total,
		Payment:     req.Payment,
		DiscountID:  req.DiscountID,
		CreatedByID: actor.ID,
	}
	if req.Payment == model.PaymentCredit {
		trx.CustomerID = &req.Customer.ID
		trx.PaidAmount = req.PaidAmount.Round(2)
	}
	trx.Status = model.DeriveStatus(trx.Payment, trx.PaidAmount, trx.TotalAmount)

	err = s.store.Atomic(ctx, func(tx repository.Store) error {
		if trx.CustomerID != nil {
			c, err := tx.Customers().FindByID(ctx, *trx.CustomerID)
			if err != nil {
				return notFound(err, "Pelanggan tidak ditemukan")
			}
			if !c.IsActive || c.ShopID != shopID {
				return apperror.NotFound("Pelanggan tidak ditemukan")
			}
		}

		// 3. Stock and pricing check per line
		for i, item := range req.Items {
			sp, err := tx.Stock().Find(ctx, shopID, item.ProductID)
			if errors.Is(err, repository.ErrNotFound) || (err == nil && (sp.Product == nil || !sp.Product.IsActive)) {
				return apperror.Conflict("PRODUCT_NOT_IN_SHOP", fmt.Sprintf("Produk item ke-%d tidak tersedia di toko ini", i+1)).
					WithMeta("productId", item.ProductID)
			}
			if err != nil {
				return err
			}
			if sp.Stock < item.Quantity {
				return ErrInsufficientStock.WithMeta("productId", item.ProductID).WithMeta("available", sp.Stock)
			}
			expected := sp.Product.SellPrice.Mul(decimal.NewFromInt(int64(item.Quantity)))
			if item.Subtotal.Sub(expected).Abs().GreaterThan(model.SubtotalTolerance) {
				return apperror.Conflict("SUBTOTAL_MISMATCH", fmt.Sprintf("Subtotal item ke-%d tidak sesuai harga jual", i+1)).
					WithMeta("productId", item.ProductID).
					WithMeta("expected", expected.StringFixed(2))
			}
			trx.Details = append(trx.Details, model.TransactionDetail{
				ProductID:  item.ProductID,
				Quantity:   item.Quantity,
				Subtotal:   item.Subtotal.Round(2),
				DiscountID: req.DiscountID,
			})
		}

		// 4. Headers
		if err := tx.Transactions().Create(ctx, trx); err != nil {
			return err
		}
		out := &model.StockOut{
			Invoice:       invoice.Generate(invoice.PrefixStockOut, now),
			ShopID:        shopID,
			TransactionID: trx.ID,
			Reason:        model.StockOutReasonPrefix + trx.Invoice,
			CreatedByID:   actor.ID,
		}
		for _, d := range trx.Details {
			out.Details = append(out.Details, model.StockOutDetail{
				ProductID: d.ProductID,
				Quantity:  d.Quantity,
				Subtotal:  d.Subtotal,
			})
		}
		if err := tx.Stock().CreateStockOut(ctx, out); err != nil {
			return err
		}

		// 5. Decrement, guarded in storage so concurrent sales cannot oversell
		for _, d := range trx.Details {
			if err := tx.Stock().Decrement(ctx, shopID, d.ProductID, d.Quantity); err != nil {
				if errors.Is(err, repository.ErrInsufficientStock) {
					return ErrInsufficientStock.WithMeta("productId", d.ProductID)
				}
				return err
			}
		}

		// 6. Initial credit payment
		if trx.Payment == model.PaymentCredit && trx.PaidAmount.IsPositive() {
			return tx.Transactions().CreateInstallment(ctx, &model.Installment{
				TransactionID: trx.ID,
				AmountPaid:    trx.PaidAmount,
				Method:        model.PaymentCash,
				PaidAt:        now,
				Note:          model.InitialInstallmentNote,
				CreatedByID:   actor.ID,
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.pub.Publish(ws.Event{
		Type:   ws.EventStockUpdate,
		Action: "sale",
		ShopID: shopID,
		Payload: map[string]any{
			"invoice": trx.Invoice,
			"items":   len(trx.Details),
			"user":    actor.Username,
		},
	})
	s.pub.Publish(ws.Event{
		Type:   ws.EventTransactionUpdate,
		Action: "created",
		ShopID: shopID,
		Payload: map[string]any{
			"transactionId": trx.ID,
			"invoice":       trx.Invoice,
			"status":        trx.Status,
			"user":          actor.Username,
		},
	})

	return s.store.Transactions().FindByID(ctx, trx.ID)
}

func (s *salesService) List(ctx context.Context, actor *Actor, f repository.TransactionFilter) (repository.Page[model.Transaction], error) {
	if err := actor.require(policy.ViewTransactions); err != nil {
		return repository.Page[model.Transaction]{}, err
	}
	shopID, err := actor.shop()
	if err != nil {
		return repository.Page[model.Transaction]{}, err
	}
	f.ShopID = shopID
	f.ListParams = f.ListParams.Normalize()
	rows, total, err := s.store.Transactions().List(ctx, f)
	if err != nil {
		return repository.Page[model.Transaction]{}, err
	}
	return repository.NewPage(rows, total, f.ListParams), nil
}

func (s *salesService) find(ctx context.Context, tx repository.Store, actor *Actor, id uuid.UUID) (*model.Transaction, error) {
	trx, err := tx.Transactions().FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "Transaksi tidak ditemukan")
	}
	if !actor.sees(&trx.ShopID) {
		return nil, apperror.NotFound("Transaksi tidak ditemukan")
	}
	return trx, nil
}

func (s *salesService) Get(ctx context.Context, actor *Actor, id uuid.UUID) (*model.Transaction, error) {
	if err := actor.require(policy.ViewTransactions); err != nil {
		return nil, err
	}
	return s.find(ctx, s.store, actor, id)
}

// AddInstallment records a repayment on a credit sale.
func (s *salesService) AddInstallment(ctx context.Context, actor *Actor, id uuid.UUID, req InstallmentRequest) (*model.Transaction, error) {
	if err := actor.require(policy.Sell); err != nil {
		return nil, err
	}
	if err := validate(&req); err != nil {
		return nil, err
	}
	if req.Method == "" {
		req.Method = model.PaymentCash
	}
	amount := req.Amount.Round(2)

	var trx *model.Transaction
	err := s.store.Atomic(ctx, func(tx repository.Store) error {
		var err error
		if trx, err = s.find(ctx, tx, actor, id); err != nil {
			return err
		}
		if trx.Payment != model.PaymentCredit {
			return ErrNotCredit
		}
		if amount.GreaterThan(trx.Outstanding()) {
			return ErrOverpayment.WithMeta("outstanding", trx.Outstanding().StringFixed(2))
		}
		if err := tx.Transactions().ApplyPayment(ctx, trx.ID, amount); err != nil {
			if errors.Is(err, repository.ErrOverpayment) {
				return ErrOverpayment
			}
			return err
		}
		return tx.Transactions().CreateInstallment(ctx, &model.Installment{
			TransactionID: trx.ID,
			AmountPaid:    amount,
			Method:        req.Method,
			PaidAt:        s.now(),
			Note:          req.Note,
			CreatedByID:   actor.ID,
		})
	})
	if err != nil {
		return nil, err
	}

	updated, err := s.store.Transactions().FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.pub.Publish(ws.Event{
		Type:   ws.EventTransactionUpdate,
		Action: "installment",
		ShopID: updated.ShopID,
		Payload: map[string]any{
			"transactionId": updated.ID,
			"invoice":       updated.Invoice,
			"status":        updated.Status,
			"amount":        amount,
			"user":          actor.Username,
		},
	})
	return updated, nil
}

// Receipt renders the printable receipt of a sale.
func (s *salesService) Receipt(ctx context.Context, actor *Actor, id uuid.UUID) (*model.Transaction, []byte, error) {
	if err := actor.require(policy.ViewTransactions); err != nil {
		return nil, nil, err
	}
	trx, err := s.find(ctx, s.store, actor, id)
	if err != nil {
		return nil, nil, err
	}
	shop, err := s.store.Shops().FindByID(ctx, trx.ShopID)
	if err != nil {
		return nil, nil, notFound(err, "Toko tidak ditemukan")
	}
	pdf, err := receipt.Render(trx, shop.Name)
	if err != nil {
		return nil, nil, apperror.Internal(err)
	}
	return trx, pdf, nil
}
