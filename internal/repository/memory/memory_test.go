package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DimasAnjayMabar/agusplastik-backend/internal/model"
	"github.com/DimasAnjayMabar/agusplastik-backend/internal/repository"
)

func TestAtomic_RollsBackOnError(t *testing.T) {
	ctx := context.Background()
	s := New()
	shop := uuid.New()
	product := uuid.New()
	require.NoError(t, s.Stock().Increment(ctx, shop, product, 5))

	boom := errors.New("boom")
	err := s.Atomic(ctx, func(tx repository.Store) error {
		require.NoError(t, tx.Stock().Decrement(ctx, shop, product, 3))
		require.NoError(t, tx.Users().Create(ctx, &model.User{Username: "budi", Role: model.RoleKasir}))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	sp, err := s.Stock().Find(ctx, shop, product)
	require.NoError(t, err)
	assert.Equal(t, 5, sp.Stock)
	assert.Equal(t, 0, s.Counts().Users)
}

func TestAtomic_NestedJoinsOuterUnit(t *testing.T) {
	ctx := context.Background()
	s := New()
	err := s.Atomic(ctx, func(tx repository.Store) error {
		return tx.Atomic(ctx, func(inner repository.Store) error {
			return inner.Users().Create(ctx, &model.User{Username: "sari", Role: model.RoleGudang})
		})
	})
	require.NoError(t, err)
	assert.Equal(t, 1, s.Counts().Users)
}

func TestDecrement_NeverGoesNegative(t *testing.T) {
	ctx := context.Background()
	s := New()
	shop, product := uuid.New(), uuid.New()
	require.NoError(t, s.Stock().Increment(ctx, shop, product, 2))

	assert.ErrorIs(t, s.Stock().Decrement(ctx, shop, product, 3), repository.ErrInsufficientStock)
	assert.ErrorIs(t, s.Stock().Decrement(ctx, uuid.New(), product, 1), repository.ErrInsufficientStock)
	require.NoError(t, s.Stock().Decrement(ctx, shop, product, 2))

	sp, err := s.Stock().Find(ctx, shop, product)
	require.NoError(t, err)
	assert.Zero(t, sp.Stock)
}

func TestUsers_DuplicateUsernameIsUniqueViolation(t *testing.T) {
	ctx := context.Background()
	s := New()
	require.NoError(t, s.Users().Create(ctx, &model.User{Username: "budi", Role: model.RoleKasir}))

	err := s.Users().Create(ctx, &model.User{Username: "budi", Role: model.RoleGudang})
	var pgErr *pgconn.PgError
	require.ErrorAs(t, err, &pgErr)
	assert.Equal(t, "23505", pgErr.Code)
}

func TestTransactions_ApplyPaymentGuardsOutstanding(t *testing.T) {
	ctx := context.Background()
	s := New()
	trx := &model.Transaction{
		Invoice:     "TRX-1",
		TotalAmount: dec("50000"),
		PaidAmount:  dec("20000"),
		Payment:     model.PaymentCredit,
		Status:      model.StatusPartial,
	}
	require.NoError(t, s.Transactions().Create(ctx, trx))

	assert.ErrorIs(t, s.Transactions().ApplyPayment(ctx, trx.ID, dec("30000.01")), repository.ErrOverpayment)
	require.NoError(t, s.Transactions().ApplyPayment(ctx, trx.ID, dec("30000")))

	got, err := s.Transactions().FindByID(ctx, trx.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusPaid, got.Status)
	assert.True(t, got.PaidAmount.Equal(dec("50000")))
}

func TestUsers_ListFiltersAndPages(t *testing.T) {
	ctx := context.Background()
	s := New()
	shop := uuid.New()
	for _, name := range []string{"Andi", "Budi", "Citra"} {
		require.NoError(t, s.Users().Create(ctx, &model.User{Username: name, Name: name, Role: model.RoleKasir, ShopID: &shop, IsActive: true}))
	}
	require.NoError(t, s.Users().Create(ctx, &model.User{Username: "dewi", Name: "Dewi", Role: model.RoleGudang, IsActive: true}))

	rows, total, err := s.Users().List(ctx, repository.UserFilter{
		ListParams: repository.ListParams{Page: 1, PageSize: 2, SortBy: "name", SortOrder: "asc"},
		Roles:      []model.Role{model.RoleKasir},
		ShopID:     &shop,
	})
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	require.Len(t, rows, 2)
	assert.Equal(t, "Andi", rows[0].Name)
	assert.Equal(t, "Budi", rows[1].Name)
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }
