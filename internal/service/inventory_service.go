package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/DimasAnjayMabar/agusplastik-backend/internal/apperror"
	"github.com/DimasAnjayMabar/agusplastik-backend/internal/audit"
	"github.com/DimasAnjayMabar/agusplastik-backend/internal/invoice"
	"github.com/DimasAnjayMabar/agusplastik-backend/internal/model"
	"github.com/DimasAnjayMabar/agusplastik-backend/internal/policy"
	"github.com/DimasAnjayMabar/agusplastik-backend/internal/repository"
	"github.com/DimasAnjayMabar/agusplastik-backend/internal/ws"
)

const barcodeAttempts = 10

var errBarcodeExhausted = errors.New("could not generate a unique barcode")

// InventoryService receives stock into the caller's shop.
type InventoryService interface {
	Receive(ctx context.Context, actor *Actor, req StockInRequest) (*StockInResult, error)
	ListStockIn(ctx context.Context, actor *Actor, f repository.StockInFilter) (repository.Page[model.StockIn], error)
	GetStockIn(ctx context.Context, actor *Actor, id uuid.UUID) (*model.StockIn, error)
}

type StockInItem struct {
	Name          string          `json:"name" validate:"required,max=255"`
	Stock         int             `json:"stock" validate:"gte=1"`
	Subtotal      decimal.Decimal `json:"subtotal" validate:"gte=0"`
	TypeID        uuid.UUID       `json:"typeId" validate:"uuid_required"`
	ProfitPercent decimal.Decimal `json:"profitPercent" validate:"gte=0"`
}

type StockInRequest struct {
	DistributorID *uuid.UUID    `json:"distributorId"`
	InvoiceDate   *time.Time    `json:"invoiceDate"`
	Products      []StockInItem `json:"products" validate:"required,min=1,dive"`
}

type StockInResult struct {
	StockInID    uuid.UUID       `json:"stockInId"`
	Invoice      string          `json:"invoice"`
	TotalProduct int             `json:"totalProduct"`
	TotalAmount  decimal.Decimal `json:"totalAmount"`
}

type inventoryService struct {
	base
}

func NewInventoryService(store repository.Store, opts ...Option) InventoryService {
	return &inventoryService{base: newBase(store, opts)}
}

// Receive books a whole delivery in one atomic unit: product upserts, price
// history, stock increments and the stock-in document.
func (s *inventoryService) Receive(ctx context.Context, actor *Actor, req StockInRequest) (*StockInResult, error) {
	if err := actor.require(policy.ReceiveStock); err != nil {
		return nil, err
	}
	shopID, err := actor.shop()
	if err != nil {
		return nil, err
	}
	if err := validate(&req); err != nil {
		return nil, err
	}
	if req.DistributorID != nil && *req.DistributorID == uuid.Nil {
		req.DistributorID = nil
	}

	now := s.now()
	doc := &model.StockIn{
		Invoice:       invoice.Generate(invoice.PrefixStockIn, now),
		ShopID:        shopID,
		DistributorID: req.DistributorID,
		InvoiceDate:   now,
		Reason:        model.StockInReason,
		TotalAmount:   decimal.Zero,
		CreatedByID:   actor.ID,
	}
	if req.InvoiceDate != nil && !req.InvoiceDate.IsZero() {
		doc.InvoiceDate = *req.InvoiceDate
	}

	err = s.store.Atomic(ctx, func(tx repository.Store) error {
		// 1. Distributor must exist and is linked to this shop on first delivery
		if doc.DistributorID != nil {
			d, err := tx.Distributors().FindByID(ctx, *doc.DistributorID)
			if err != nil {
				return notFound(err, "Distributor tidak ditemukan")
			}
			if !d.IsActive {
				return apperror.NotFound("Distributor tidak ditemukan")
			}
			if err := tx.Distributors().Link(ctx, d.ID, shopID); err != nil {
				return err
			}
		}

		// 2. Line items
		for i, item := range req.Products {
			if _, err := tx.ProductTypes().FindByID(ctx, item.TypeID); err != nil {
				return notFound(err, fmt.Sprintf("Jenis produk item ke-%d tidak ditemukan", i+1))
			}
			buy, sell := model.PricesFromSubtotal(item.Subtotal, item.Stock, item.ProfitPercent)

			product, err := s.upsertProduct(ctx, tx, actor, item, doc.DistributorID, buy, sell)
			if err != nil {
				return err
			}
			if err := tx.Stock().Increment(ctx, shopID, product.ID, item.Stock); err != nil {
				return err
			}

			doc.Details = append(doc.Details, model.StockInDetail{
				ProductID: product.ID,
				Quantity:  item.Stock,
				Subtotal:  item.Subtotal.Round(2),
				BuyPrice:  buy,
				SellPrice: sell,
			})
			doc.TotalAmount = doc.TotalAmount.Add(item.Subtotal.Round(2))
		}

		// 3. Document
		return tx.Stock().CreateStockIn(ctx, doc)
	})
	if err != nil {
		return nil, err
	}

	s.pub.Publish(ws.Event{
		Type:   ws.EventStockUpdate,
		Action: "stock_in",
		ShopID: shopID,
		Payload: map[string]any{
			"stockInId": doc.ID,
			"invoice":   doc.Invoice,
			"user":      actor.Username,
			"message":   fmt.Sprintf("%s menerima %d produk (%s)", actor.Username, len(doc.Details), doc.Invoice),
		},
	})

	return &StockInResult{
		StockInID:    doc.ID,
		Invoice:      doc.Invoice,
		TotalProduct: len(doc.Details),
		TotalAmount:  doc.TotalAmount,
	}, nil
}

// upsertProduct finds the product by (name, type, distributor) or creates it.
// A changed buy price reprices the product and leaves a history row.
func (s *inventoryService) upsertProduct(ctx context.Context, tx repository.Store, actor *Actor, item StockInItem, distributorID *uuid.UUID, buy, sell decimal.Decimal) (*model.Product, error) {
	existing, err := tx.Products().FindMatch(ctx, item.Name, item.TypeID, distributorID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	if existing == nil {
		barcode, err := s.uniqueBarcode(ctx, tx)
		if err != nil {
			return nil, err
		}
		product := &model.Product{
			Name:          item.Name,
			BuyPrice:      buy,
			SellPrice:     sell,
			Barcode:       barcode,
			TypeID:        item.TypeID,
			DistributorID: distributorID,
			IsActive:      true,
		}
		if err := tx.Products().Create(ctx, product); err != nil {
			return nil, err
		}
		return product, record(ctx, tx, model.HistoryProduct, product.ID, model.ActionCreated, nil, actor)
	}

	if existing.BuyPrice.Equal(buy) {
		return existing, nil
	}
	var d audit.Diff
	existing.BuyPrice = d.Decimal("buyPrice", existing.BuyPrice, &buy)
	existing.SellPrice = d.Decimal("sellPrice", existing.SellPrice, &sell)
	existing.Type, existing.Distributor = nil, nil
	if err := tx.Products().Save(ctx, existing); err != nil {
		return nil, err
	}
	return existing, record(ctx, tx, model.HistoryProduct, existing.ID, model.ActionPriceChange, d.Changes(), actor)
}

func (s *inventoryService) uniqueBarcode(ctx context.Context, tx repository.Store) (string, error) {
	for range barcodeAttempts {
		code := invoice.Barcode()
		exists, err := tx.Products().BarcodeExists(ctx, code)
		if err != nil {
			return "", err
		}
		if !exists {
			return code, nil
		}
	}
	return "", apperror.Internal(errBarcodeExhausted)
}

func (s *inventoryService) ListStockIn(ctx context.Context, actor *Actor, f repository.StockInFilter) (repository.Page[model.StockIn], error) {
	if err := actor.require(policy.ReceiveStock); err != nil {
		return repository.Page[model.StockIn]{}, err
	}
	shopID, err := actor.shop()
	if err != nil {
		return repository.Page[model.StockIn]{}, err
	}
	f.ShopID = shopID
	f.ListParams = f.ListParams.Normalize()
	rows, total, err := s.store.Stock().ListStockIn(ctx, f)
	if err != nil {
		return repository.Page[model.StockIn]{}, err
	}
	return repository.NewPage(rows, total, f.ListParams), nil
}

func (s *inventoryService) GetStockIn(ctx context.Context, actor *Actor, id uuid.UUID) (*model.StockIn, error) {
	if err := actor.require(policy.ReceiveStock); err != nil {
		return nil, err
	}
	doc, err := s.store.Stock().FindStockIn(ctx, id)
	if err != nil {
		return nil, notFound(err, "Data penerimaan barang tidak ditemukan")
	}
	if !actor.sees(&doc.ShopID) {
		return nil, apperror.NotFound("Data penerimaan barang tidak ditemukan")
	}
	return doc, nil
}
