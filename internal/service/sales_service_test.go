package service

import (
	"bytes"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DimasAnjayMabar/agusplastik-backend/internal/model"
	"github.com/DimasAnjayMabar/agusplastik-backend/internal/repository"
)

func cashSale(productID uuid.UUID, qty int64, subtotal string) CreateTransactionRequest {
	return CreateTransactionRequest{
		Payment: model.PaymentCash,
		Items:   []TransactionItem{{ProductID: productID, Quantity: int(qty), Subtotal: dec(subtotal)}},
	}
}

func TestCreateTransaction_CashSale(t *testing.T) {
	f := newFixture(t)
	p := f.product(f.shopA, "Kantong Plastik", "10000", 5)
	svc := NewSalesService(f.store, f.opts()...)

	trx, err := svc.CreateTransaction(f.ctx, f.kasir, cashSale(p.ID, 2, "20000"))
	require.NoError(t, err)

	assert.True(t, trx.TotalAmount.Equal(dec("20000")))
	assert.True(t, trx.PaidAmount.Equal(trx.TotalAmount))
	assert.Equal(t, model.StatusPaid, trx.Status)
	assert.Nil(t, trx.CustomerID)
	assert.Regexp(t, `^TRX-20250310-\d{6}-\d{3}$`, trx.Invoice)
	require.Len(t, trx.Details, 1)
	assert.Equal(t, 2, trx.Details[0].Quantity)
	assert.Empty(t, trx.Installments)

	assert.Equal(t, 3, f.stock(f.shopA, p.ID))
	counts := f.store.Counts()
	assert.Equal(t, 1, counts.Transactions)
	assert.Equal(t, 1, counts.Details)
	assert.Equal(t, 1, counts.StockOuts)
	assert.Equal(t, 0, counts.Installments)

	assert.Equal(t, []string{"stock_update:sale", "transaction_update:created"}, f.pub.types())
}

func TestCreateTransaction_NonCreditIsAlwaysPaid(t *testing.T) {
	for _, method := range []model.PaymentMethod{model.PaymentCash, model.PaymentTransfer, model.PaymentQRIS} {
		t.Run(string(method), func(t *testing.T) {
			f := newFixture(t)
			p := f.product(f.shopA, "Ember", "15000", 10)
			req := cashSale(p.ID, 3, "45000")
			req.Payment = method

			trx, err := NewSalesService(f.store, f.opts()...).CreateTransaction(f.ctx, f.kasir, req)
			require.NoError(t, err)
			assert.Equal(t, model.StatusPaid, trx.Status)
			assert.True(t, trx.PaidAmount.Equal(dec("45000")))
		})
	}
}

func TestCreateTransaction_CreditStatus(t *testing.T) {
	cases := []struct {
		name         string
		paid         string
		status       model.TransactionStatus
		installments int
	}{
		{"unpaid", "0", model.StatusUnpaid, 0},
		{"partial", "20000", model.StatusPartial, 1},
		{"paid in full", "50000", model.StatusPaid, 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t)
			p := f.product(f.shopA, "Toples", "25000", 4)
			c := f.customer(f.shopA, "Bu Sari")

			trx, err := NewSalesService(f.store, f.opts()...).CreateTransaction(f.ctx, f.kasir, CreateTransactionRequest{
				Payment:    model.PaymentCredit,
				PaidAmount: ptr(dec(tc.paid)),
				Customer:   &CustomerRef{ID: c.ID},
				Items:      []TransactionItem{{ProductID: p.ID, Quantity: 2, Subtotal: dec("50000")}},
			})
			require.NoError(t, err)

			assert.Equal(t, tc.status, trx.Status)
			assert.True(t, trx.TotalAmount.Equal(dec("50000")))
			assert.True(t, trx.PaidAmount.Equal(dec(tc.paid)))
			require.NotNil(t, trx.CustomerID)
			assert.Equal(t, c.ID, *trx.CustomerID)
			require.Len(t, trx.Installments, tc.installments)
			if tc.installments > 0 {
				inst := trx.Installments[0]
				assert.True(t, inst.AmountPaid.Equal(dec(tc.paid)))
				assert.Equal(t, model.PaymentCash, inst.Method)
				assert.Equal(t, model.InitialInstallmentNote, inst.Note)
			}
		})
	}
}

func TestCreateTransaction_CreditOverpaymentWritesNothing(t *testing.T) {
	f := newFixture(t)
	p := f.product(f.shopA, "Toples", "25000", 4)
	c := f.customer(f.shopA, "Bu Sari")
	before := f.store.Counts()

	_, err := NewSalesService(f.store, f.opts()...).CreateTransaction(f.ctx, f.kasir, CreateTransactionRequest{
		Payment:    model.PaymentCredit,
		PaidAmount: ptr(dec("60000")),
		Customer:   &CustomerRef{ID: c.ID},
		Items:      []TransactionItem{{ProductID: p.ID, Quantity: 2, Subtotal: dec("50000")}},
	})
	assert.ErrorIs(t, err, ErrOverpayment)
	assert.Equal(t, http.StatusBadRequest, status(err))
	assert.Equal(t, before, f.store.Counts())
	assert.Equal(t, 4, f.stock(f.shopA, p.ID))
	assert.Empty(t, f.pub.types())
}

func TestCreateTransaction_PaymentRules(t *testing.T) {
	f := newFixture(t)
	p := f.product(f.shopA, "Toples", "25000", 4)
	c := f.customer(f.shopA, "Bu Sari")
	other := f.customer(f.shopB, "Pak Joko")
	svc := NewSalesService(f.store, f.opts()...)
	items := []TransactionItem{{ProductID: p.ID, Quantity: 1, Subtotal: dec("25000")}}

	cases := []struct {
		name   string
		req    CreateTransactionRequest
		status int
	}{
		{"cash with paid amount", CreateTransactionRequest{Payment: model.PaymentCash, PaidAmount: ptr(dec("1")), Items: items}, http.StatusBadRequest},
		{"credit without paid amount", CreateTransactionRequest{Payment: model.PaymentCredit, Customer: &CustomerRef{ID: c.ID}, Items: items}, http.StatusBadRequest},
		{"credit without customer", CreateTransactionRequest{Payment: model.PaymentCredit, PaidAmount: ptr(dec("0")), Items: items}, http.StatusBadRequest},
		{"credit with negative payment", CreateTransactionRequest{Payment: model.PaymentCredit, PaidAmount: ptr(dec("-1")), Customer: &CustomerRef{ID: c.ID}, Items: items}, http.StatusBadRequest},
		{"customer of another shop", CreateTransactionRequest{Payment: model.PaymentCredit, PaidAmount: ptr(dec("0")), Customer: &CustomerRef{ID: other.ID}, Items: items}, http.StatusNotFound},
		{"unknown method", CreateTransactionRequest{Payment: "barter", Items: items}, http.StatusBadRequest},
		{"no items", CreateTransactionRequest{Payment: model.PaymentCash}, http.StatusBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			before := f.store.Counts()
			_, err := svc.CreateTransaction(f.ctx, f.kasir, tc.req)
			require.Error(t, err)
			assert.Equal(t, tc.status, status(err))
			assert.Equal(t, before, f.store.Counts())
		})
	}
}

func TestCreateTransaction_StockAndPricingChecks(t *testing.T) {
	f := newFixture(t)
	p := f.product(f.shopA, "Gelas Plastik", "10000", 2)
	elsewhere := f.product(f.shopB, "Sendok", "5000", 10)
	svc := NewSalesService(f.store, f.opts()...)

	_, err := svc.CreateTransaction(f.ctx, f.kasir, cashSale(p.ID, 3, "30000"))
	assert.Equal(t, "INSUFFICIENT_STOCK", code(err))

	_, err = svc.CreateTransaction(f.ctx, f.kasir, cashSale(elsewhere.ID, 1, "5000"))
	assert.Equal(t, "PRODUCT_NOT_IN_SHOP", code(err))

	_, err = svc.CreateTransaction(f.ctx, f.kasir, cashSale(p.ID, 2, "19000"))
	assert.Equal(t, "SUBTOTAL_MISMATCH", code(err))

	assert.Equal(t, 0, f.store.Counts().Transactions)
	assert.Equal(t, 2, f.stock(f.shopA, p.ID))

	// within the rounding tolerance
	trx, err := svc.CreateTransaction(f.ctx, f.kasir, cashSale(p.ID, 2, "20000.01"))
	require.NoError(t, err)
	assert.True(t, trx.TotalAmount.Equal(dec("20000.01")))
	assert.Equal(t, 0, f.stock(f.shopA, p.ID))
}

func TestCreateTransaction_LaterItemFailureRollsBackEarlierOnes(t *testing.T) {
	f := newFixture(t)
	a := f.product(f.shopA, "Piring", "8000", 5)
	b := f.product(f.shopA, "Mangkok", "6000", 1)
	before := f.store.Counts()

	_, err := NewSalesService(f.store, f.opts()...).CreateTransaction(f.ctx, f.kasir, CreateTransactionRequest{
		Payment: model.PaymentCash,
		Items: []TransactionItem{
			{ProductID: a.ID, Quantity: 2, Subtotal: dec("16000")},
			{ProductID: b.ID, Quantity: 2, Subtotal: dec("12000")},
		},
	})
	assert.ErrorIs(t, err, ErrInsufficientStock)
	assert.Equal(t, before, f.store.Counts())
	assert.Equal(t, 5, f.stock(f.shopA, a.ID))
	assert.Equal(t, 1, f.stock(f.shopA, b.ID))
}

func TestCreateTransaction_RequiresCashierWithShop(t *testing.T) {
	f := newFixture(t)
	p := f.product(f.shopA, "Piring", "8000", 5)
	svc := NewSalesService(f.store, f.opts()...)

	_, err := svc.CreateTransaction(f.ctx, f.gudang, cashSale(p.ID, 1, "8000"))
	assert.Equal(t, http.StatusForbidden, status(err))

	loose := f.user(model.RoleKasir, nil)
	_, err = svc.CreateTransaction(f.ctx, loose, cashSale(p.ID, 1, "8000"))
	assert.ErrorIs(t, err, ErrNoShop)
}

func TestAddInstallment(t *testing.T) {
	f := newFixture(t)
	p := f.product(f.shopA, "Toples", "25000", 4)
	c := f.customer(f.shopA, "Bu Sari")
	svc := NewSalesService(f.store, f.opts()...)

	trx, err := svc.CreateTransaction(f.ctx, f.kasir, CreateTransactionRequest{
		Payment:    model.PaymentCredit,
		PaidAmount: ptr(dec("20000")),
		Customer:   &CustomerRef{ID: c.ID},
		Items:      []TransactionItem{{ProductID: p.ID, Quantity: 2, Subtotal: dec("50000")}},
	})
	require.NoError(t, err)

	_, err = svc.AddInstallment(f.ctx, f.kasir, trx.ID, InstallmentRequest{Amount: dec("30000.01")})
	assert.ErrorIs(t, err, ErrOverpayment)

	_, err = svc.AddInstallment(f.ctx, f.kasir, trx.ID, InstallmentRequest{Amount: decimal.Zero})
	assert.Equal(t, http.StatusBadRequest, status(err))

	f.advance(24 * time.Hour)
	updated, err := svc.AddInstallment(f.ctx, f.kasir, trx.ID, InstallmentRequest{Amount: dec("10000"), Method: model.PaymentTransfer})
	require.NoError(t, err)
	assert.Equal(t, model.StatusPartial, updated.Status)
	assert.True(t, updated.PaidAmount.Equal(dec("30000")))

	updated, err = svc.AddInstallment(f.ctx, f.kasir, trx.ID, InstallmentRequest{Amount: dec("20000"), Note: "Pelunasan"})
	require.NoError(t, err)
	assert.Equal(t, model.StatusPaid, updated.Status)
	require.Len(t, updated.Installments, 3)
	assert.Equal(t, model.InitialInstallmentNote, updated.Installments[0].Note)
	assert.Equal(t, model.PaymentTransfer, updated.Installments[1].Method)
	assert.Equal(t, model.PaymentCash, updated.Installments[2].Method)

	_, err = svc.AddInstallment(f.ctx, f.kasir, trx.ID, InstallmentRequest{Amount: dec("1")})
	assert.ErrorIs(t, err, ErrOverpayment)
}

func TestAddInstallment_RejectsNonCredit(t *testing.T) {
	f := newFixture(t)
	p := f.product(f.shopA, "Piring", "8000", 5)
	svc := NewSalesService(f.store, f.opts()...)
	trx, err := svc.CreateTransaction(f.ctx, f.kasir, cashSale(p.ID, 1, "8000"))
	require.NoError(t, err)

	_, err = svc.AddInstallment(f.ctx, f.kasir, trx.ID, InstallmentRequest{Amount: dec("1")})
	assert.ErrorIs(t, err, ErrNotCredit)
	assert.Equal(t, 0, f.store.Counts().Installments)
}

func TestTransactions_AreShopScoped(t *testing.T) {
	f := newFixture(t)
	p := f.product(f.shopA, "Piring", "8000", 5)
	svc := NewSalesService(f.store, f.opts()...)
	trx, err := svc.CreateTransaction(f.ctx, f.kasir, cashSale(p.ID, 1, "8000"))
	require.NoError(t, err)

	got, err := svc.Get(f.ctx, f.admin, trx.ID)
	require.NoError(t, err)
	assert.Equal(t, trx.Invoice, got.Invoice)

	otherKasir := f.user(model.RoleKasir, f.shopB)
	_, err = svc.Get(f.ctx, otherKasir, trx.ID)
	assert.Equal(t, http.StatusNotFound, status(err))

	page, err := svc.List(f.ctx, otherKasir, repository.TransactionFilter{})
	require.NoError(t, err)
	assert.Zero(t, page.Total)

	page, err = svc.List(f.ctx, f.kasir, repository.TransactionFilter{Status: model.StatusPaid})
	require.NoError(t, err)
	assert.EqualValues(t, 1, page.Total)
	assert.Equal(t, repository.DefaultPageSize, page.PageSize)
}

func TestReceipt(t *testing.T) {
	f := newFixture(t)
	p := f.product(f.shopA, "Piring", "8000", 5)
	svc := NewSalesService(f.store, f.opts()...)
	trx, err := svc.CreateTransaction(f.ctx, f.kasir, cashSale(p.ID, 2, "16000"))
	require.NoError(t, err)

	got, pdf, err := svc.Receipt(f.ctx, f.kasir, trx.ID)
	require.NoError(t, err)
	assert.Equal(t, trx.ID, got.ID)
	assert.True(t, bytes.HasPrefix(pdf, []byte("%PDF-")))
}
