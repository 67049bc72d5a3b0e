//go:build integration

// Run with: go test -tags integration ./internal/repository/... -v
package repository_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcPostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"gorm.io/gorm"

	"github.com/DimasAnjayMabar/agusplastik-backend/internal/model"
	"github.com/DimasAnjayMabar/agusplastik-backend/internal/repository"
	"github.com/DimasAnjayMabar/agusplastik-backend/internal/service"
	"github.com/DimasAnjayMabar/agusplastik-backend/pkg/database"
)

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	ctx := context.Background()

	pgC, err := tcPostgres.Run(ctx, "postgres:16-alpine",
		tcPostgres.WithDatabase("agusplastik_test"),
		tcPostgres.WithUsername("agus"),
		tcPostgres.WithPassword("agus"),
		testcontainers.WithWaitStrategy(tcPostgres.BasicWaitStrategies()...),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = testcontainers.TerminateContainer(pgC) })

	dsn, err := pgC.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := database.ConnectDB(database.DefaultOptions(dsn))
	require.NoError(t, err)
	require.NoError(t, repository.Migrate(ctx, db))
	return db
}

func TestGormStore_ConcurrentSalesNeverOversell(t *testing.T) {
	db := setupDB(t)
	store := repository.NewStore(db)
	ctx := context.Background()

	shop := &model.Shop{Name: "Toko Pusat", IsActive: true}
	require.NoError(t, store.Shops().Create(ctx, shop))

	kasir := &model.User{Username: "kasir1", Name: "Kasir", Role: model.RoleKasir, ShopID: &shop.ID, IsActive: true}
	require.NoError(t, kasir.SetPassword("rahasia123"))
	require.NoError(t, store.Users().Create(ctx, kasir))

	types, err := store.ProductTypes().FindAll(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, types)

	product := &model.Product{
		Name:      "Gelas Plastik",
		BuyPrice:  decimal.NewFromInt(800),
		SellPrice: decimal.NewFromInt(1000),
		Barcode:   "10000001",
		TypeID:    types[0].ID,
		IsActive:  true,
	}
	require.NoError(t, store.Products().Create(ctx, product))
	const stock = 5
	require.NoError(t, store.Stock().Increment(ctx, shop.ID, product.ID, stock))

	sales := service.NewSalesService(store)
	actor := &service.Actor{ID: kasir.ID, Role: model.RoleKasir, Username: kasir.Username, ShopID: &shop.ID}

	const buyers = 12
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		sold     int
		rejected int
		other    []error
	)
	for i := 0; i < buyers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			// distinct milliseconds keep generated invoice numbers apart; the transactions still overlap
			time.Sleep(time.Duration(i) * 2 * time.Millisecond)
			_, err := sales.CreateTransaction(ctx, actor, service.CreateTransactionRequest{
				Payment: model.PaymentCash,
				Items: []service.TransactionItem{{
					ProductID: product.ID, Quantity: 1, Subtotal: decimal.NewFromInt(1000),
				}},
			})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				sold++
			case errors.Is(err, service.ErrInsufficientStock):
				rejected++
			default:
				other = append(other, err)
			}
		}(i)
	}
	wg.Wait()

	assert.Empty(t, other)
	assert.Equal(t, stock, sold)
	assert.Equal(t, buyers-stock, rejected)

	sp, err := store.Stock().Find(ctx, shop.ID, product.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, sp.Stock)

	page, total, err := store.Transactions().List(ctx, repository.TransactionFilter{
		ListParams: repository.ListParams{}.Normalize(),
		ShopID:     shop.ID,
	})
	require.NoError(t, err)
	assert.EqualValues(t, stock, total)
	assert.Len(t, page, stock)
}

func TestGormStore_AtomicRollsBack(t *testing.T) {
	db := setupDB(t)
	store := repository.NewStore(db)
	ctx := context.Background()

	boom := errors.New("boom")
	err := store.Atomic(ctx, func(tx repository.Store) error {
		if err := tx.Shops().Create(ctx, &model.Shop{Name: "Sementara", IsActive: true}); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	_, total, err := store.Shops().List(ctx, repository.ListParams{Search: "Sementara"}.Normalize())
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestGormStore_SessionTouchAndLookup(t *testing.T) {
	db := setupDB(t)
	store := repository.NewStore(db)
	ctx := context.Background()

	user := &model.User{Username: "owner", Name: "Pemilik", Role: model.RoleSuperadmin, IsActive: true}
	require.NoError(t, user.SetPassword("rahasia123"))
	require.NoError(t, store.Users().Create(ctx, user))

	now := time.Now().UTC().Truncate(time.Second)
	token := &model.AuthToken{Token: uuid.NewString(), UserID: user.ID, LastActive: now, ExpiresIn: 3600, CreatedAt: now}
	require.NoError(t, store.Tokens().Create(ctx, token))

	later := now.Add(time.Hour)
	require.NoError(t, store.Tokens().Touch(ctx, token.Token, later, 7200))

	got, err := store.Tokens().Find(ctx, token.Token)
	require.NoError(t, err)
	assert.True(t, got.LastActive.Equal(later))
	assert.EqualValues(t, 7200, got.ExpiresIn)

	require.NoError(t, store.Tokens().Delete(ctx, token.Token))
	_, err = store.Tokens().Find(ctx, token.Token)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestGormStore_SearchTreatsWildcardsLiterally(t *testing.T) {
	db := setupDB(t)
	store := repository.NewStore(db)
	ctx := context.Background()

	for _, name := range []string{"Diskon 50% Gelas", "Diskon 500 Piring", "Toko_Timur", "TokoBarat"} {
		require.NoError(t, store.Shops().Create(ctx, &model.Shop{Name: name, IsActive: true}))
	}

	shops, total, err := store.Shops().List(ctx, repository.ListParams{Search: "50%"}.Normalize())
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, shops, 1)
	assert.Equal(t, "Diskon 50% Gelas", shops[0].Name)

	shops, _, err = store.Shops().List(ctx, repository.ListParams{Search: "toko_"}.Normalize())
	require.NoError(t, err)
	require.Len(t, shops, 1)
	assert.Equal(t, "Toko_Timur", shops[0].Name)
}
