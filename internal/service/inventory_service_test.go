package service

import (
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DimasAnjayMabar/agusplastik-backend/internal/model"
	"github.com/DimasAnjayMabar/agusplastik-backend/internal/repository"
)

func item(f *fixture, name string, qty int, subtotal, profit string) StockInItem {
	return StockInItem{Name: name, Stock: qty, Subtotal: dec(subtotal), TypeID: f.typeID, ProfitPercent: dec(profit)}
}

func TestReceive_CreatesProductAndStock(t *testing.T) {
	f := newFixture(t)
	svc := NewInventoryService(f.store, f.opts()...)

	res, err := svc.Receive(f.ctx, f.gudang, StockInRequest{
		Products: []StockInItem{item(f, "Kantong Kresek", 10, "100000", "20")},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, res.TotalProduct)
	assert.True(t, res.TotalAmount.Equal(dec("100000")))
	assert.Regexp(t, `^STI-20250310-\d{6}-\d{3}$`, res.Invoice)

	product, err := f.store.Products().FindMatch(f.ctx, "Kantong Kresek", f.typeID, nil)
	require.NoError(t, err)
	assert.True(t, product.BuyPrice.Equal(dec("10000")))
	assert.True(t, product.SellPrice.Equal(dec("12000")))
	assert.Len(t, product.Barcode, 8)
	assert.Equal(t, 10, f.stock(f.shopA, product.ID))

	doc, err := svc.GetStockIn(f.ctx, f.gudang, res.StockInID)
	require.NoError(t, err)
	assert.Equal(t, model.StockInReason, doc.Reason)
	require.Len(t, doc.Details, 1)
	assert.Equal(t, 10, doc.Details[0].Quantity)

	hist := f.store.HistoryFor(model.HistoryProduct, product.ID)
	require.Len(t, hist, 1)
	assert.Equal(t, model.ActionCreated, hist[0].Action)
	assert.Equal(t, []string{"stock_update:stock_in"}, f.pub.types())
}

func TestReceive_ExistingProductSamePriceOnlyAddsStock(t *testing.T) {
	f := newFixture(t)
	svc := NewInventoryService(f.store, f.opts()...)
	req := StockInRequest{Products: []StockInItem{item(f, "Ember", 4, "40000", "25")}}

	_, err := svc.Receive(f.ctx, f.gudang, req)
	require.NoError(t, err)
	_, err = svc.Receive(f.ctx, f.gudang, req)
	require.NoError(t, err)

	counts := f.store.Counts()
	assert.Equal(t, 1, counts.Products)
	assert.Equal(t, 2, counts.StockIns)

	product, err := f.store.Products().FindMatch(f.ctx, "Ember", f.typeID, nil)
	require.NoError(t, err)
	assert.Equal(t, 8, f.stock(f.shopA, product.ID))
	assert.Len(t, f.store.HistoryFor(model.HistoryProduct, product.ID), 1)
}

func TestReceive_PriceChangeIsAudited(t *testing.T) {
	f := newFixture(t)
	svc := NewInventoryService(f.store, f.opts()...)

	_, err := svc.Receive(f.ctx, f.gudang, StockInRequest{Products: []StockInItem{item(f, "Toples", 10, "100000", "20")}})
	require.NoError(t, err)
	_, err = svc.Receive(f.ctx, f.gudang, StockInRequest{Products: []StockInItem{item(f, "Toples", 10, "120000", "20")}})
	require.NoError(t, err)

	product, err := f.store.Products().FindMatch(f.ctx, "Toples", f.typeID, nil)
	require.NoError(t, err)
	assert.True(t, product.BuyPrice.Equal(dec("12000")))
	assert.True(t, product.SellPrice.Equal(dec("14400")))
	assert.Equal(t, 20, f.stock(f.shopA, product.ID))

	hist := f.store.HistoryFor(model.HistoryProduct, product.ID)
	require.Len(t, hist, 2)
	assert.Equal(t, model.ActionPriceChange, hist[0].Action)
	assert.Equal(t, "buyPrice", hist[0].Changes[0].Field)
	assert.Equal(t, "10000.00", hist[0].Changes[0].Old)
	assert.Equal(t, "12000.00", hist[0].Changes[0].New)
}

func TestReceive_LinksDistributorAndSeparatesProducts(t *testing.T) {
	f := newFixture(t)
	svc := NewInventoryService(f.store, f.opts()...)
	d := &model.Distributor{Name: "CV Sumber Plastik", IsActive: true}
	require.NoError(t, f.store.Distributors().Create(f.ctx, d))

	_, err := svc.Receive(f.ctx, f.gudang, StockInRequest{
		DistributorID: &d.ID,
		Products:      []StockInItem{item(f, "Gelas", 5, "5000", "10")},
	})
	require.NoError(t, err)
	_, err = svc.Receive(f.ctx, f.gudang, StockInRequest{
		Products: []StockInItem{item(f, "Gelas", 5, "5000", "10")},
	})
	require.NoError(t, err)

	linked, err := f.store.Distributors().IsLinked(f.ctx, d.ID, f.shopA.ID)
	require.NoError(t, err)
	assert.True(t, linked)
	// same name and type, different source
	assert.Equal(t, 2, f.store.Counts().Products)

	sourced, err := f.store.Products().FindMatch(f.ctx, "Gelas", f.typeID, &d.ID)
	require.NoError(t, err)
	require.NotNil(t, sourced.DistributorID)
	assert.Equal(t, d.ID, *sourced.DistributorID)
}

func TestReceive_FailureRollsBackWholeBatch(t *testing.T) {
	f := newFixture(t)
	svc := NewInventoryService(f.store, f.opts()...)
	before := f.store.Counts()

	bad := item(f, "Piring", 2, "10000", "10")
	bad.TypeID = uuid.New()
	_, err := svc.Receive(f.ctx, f.gudang, StockInRequest{
		Products: []StockInItem{item(f, "Mangkok", 3, "9000", "10"), bad},
	})
	assert.Equal(t, http.StatusNotFound, status(err))
	assert.Equal(t, before, f.store.Counts())
	assert.Empty(t, f.pub.types())

	inactive := &model.Distributor{Name: "PT Lama", IsActive: false}
	require.NoError(t, f.store.Distributors().Create(f.ctx, inactive))
	_, err = svc.Receive(f.ctx, f.gudang, StockInRequest{
		DistributorID: &inactive.ID,
		Products:      []StockInItem{item(f, "Mangkok", 3, "9000", "10")},
	})
	assert.Equal(t, http.StatusNotFound, status(err))
	assert.Equal(t, 0, f.store.Counts().StockIns)
}

func TestReceive_Validation(t *testing.T) {
	f := newFixture(t)
	svc := NewInventoryService(f.store, f.opts()...)

	for name, req := range map[string]StockInRequest{
		"empty batch":     {},
		"zero quantity":   {Products: []StockInItem{item(f, "Ember", 0, "1000", "10")}},
		"negative amount": {Products: []StockInItem{item(f, "Ember", 1, "-1", "10")}},
		"missing type":    {Products: []StockInItem{{Name: "Ember", Stock: 1, Subtotal: dec("1000")}}},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Receive(f.ctx, f.gudang, req)
			assert.Equal(t, http.StatusBadRequest, status(err))
		})
	}

	_, err := svc.Receive(f.ctx, f.kasir, StockInRequest{Products: []StockInItem{item(f, "Ember", 1, "1000", "10")}})
	assert.Equal(t, http.StatusForbidden, status(err))
}

func TestStockInThenSale_NetsAgainstShopStock(t *testing.T) {
	f := newFixture(t)
	inventory := NewInventoryService(f.store, f.opts()...)
	sales := NewSalesService(f.store, f.opts()...)
	dashboard := NewDashboardService(f.store, 10, f.opts()...)

	_, err := inventory.Receive(f.ctx, f.gudang, StockInRequest{Products: []StockInItem{item(f, "Sapu", 12, "120000", "50")}})
	require.NoError(t, err)
	product, err := f.store.Products().FindMatch(f.ctx, "Sapu", f.typeID, nil)
	require.NoError(t, err)

	_, err = sales.CreateTransaction(f.ctx, f.kasir, cashSale(product.ID, 5, "75000"))
	require.NoError(t, err)
	assert.Equal(t, 7, f.stock(f.shopA, product.ID))

	stats, err := dashboard.GetDashboardStats(f.ctx, f.gudang)
	require.NoError(t, err)
	assert.EqualValues(t, 1, stats.TotalProducts)
	assert.EqualValues(t, 1, stats.LowStockCount)
	assert.True(t, stats.TotalValuation.Equal(dec("70000")))

	movement, err := dashboard.GetStockMovement(f.ctx, f.admin, 3)
	require.NoError(t, err)
	require.Len(t, movement, 4)
	today := movement[len(movement)-1]
	assert.Equal(t, "2025-03-10", today.Date)
	assert.Equal(t, 12, today.Inbound)
	assert.Equal(t, 5, today.Outbound)
	assert.Zero(t, movement[0].Inbound)

	_, err = dashboard.GetDashboardStats(f.ctx, f.kasir)
	assert.Equal(t, http.StatusForbidden, status(err))
}

func TestListStockIn_FiltersByShop(t *testing.T) {
	f := newFixture(t)
	svc := NewInventoryService(f.store, f.opts()...)
	_, err := svc.Receive(f.ctx, f.gudang, StockInRequest{Products: []StockInItem{item(f, "Sapu", 1, "10000", "50")}})
	require.NoError(t, err)

	page, err := svc.ListStockIn(f.ctx, f.gudang, repository.StockInFilter{})
	require.NoError(t, err)
	assert.EqualValues(t, 1, page.Total)

	otherGudang := f.user(model.RoleGudang, f.shopB)
	page, err = svc.ListStockIn(f.ctx, otherGudang, repository.StockInFilter{})
	require.NoError(t, err)
	assert.Zero(t, page.Total)
}
