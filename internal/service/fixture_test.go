package service

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/DimasAnjayMabar/agusplastik-backend/internal/apperror"
	"github.com/DimasAnjayMabar/agusplastik-backend/internal/model"
	"github.com/DimasAnjayMabar/agusplastik-backend/internal/repository/memory"
	"github.com/DimasAnjayMabar/agusplastik-backend/internal/ws"
)

type recorder struct {
	mu     sync.Mutex
	events []ws.Event
}

func (r *recorder) Publish(e ws.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recorder) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Type+":"+e.Action)
	}
	return out
}

type fixture struct {
	t     *testing.T
	ctx   context.Context
	store *memory.Store
	now   time.Time
	pub   *recorder
	seq   int

	shopA, shopB *model.Shop
	super        *Actor
	admin        *Actor
	gudang       *Actor
	kasir        *Actor
	typeID       uuid.UUID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		t:     t,
		ctx:   context.Background(),
		store: memory.New(),
		now:   time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC),
		pub:   &recorder{},
	}
	f.store.SetClock(f.clock)

	f.shopA = f.shop("Toko Pusat")
	f.shopB = f.shop("Toko Cabang")
	f.super = f.user(model.RoleSuperadmin, nil)
	f.admin = f.user(model.RoleAdmin, f.shopA)
	f.gudang = f.user(model.RoleGudang, f.shopA)
	f.kasir = f.user(model.RoleKasir, f.shopA)

	typ := &model.ProductType{Name: "Plastik"}
	require.NoError(t, f.store.ProductTypes().Create(f.ctx, typ))
	f.typeID = typ.ID
	return f
}

func (f *fixture) clock() time.Time { return f.now }

func (f *fixture) advance(d time.Duration) { f.now = f.now.Add(d) }

func (f *fixture) opts() []Option {
	return []Option{WithClock(f.clock), WithPublisher(f.pub)}
}

func (f *fixture) shop(name string) *model.Shop {
	f.t.Helper()
	s := &model.Shop{Name: name, Address: "Jl. " + name, IsActive: true}
	require.NoError(f.t, f.store.Shops().Create(f.ctx, s))
	return s
}

// user stores an account directly. Admins also take the shop's admin slot.
func (f *fixture) user(role model.Role, shop *model.Shop) *Actor {
	f.t.Helper()
	f.seq++
	u := &model.User{
		Username: fmt.Sprintf("%s%d", role, f.seq),
		Name:     fmt.Sprintf("%s %d", role.Label(), f.seq),
		Role:     role,
		IsActive: true,
	}
	require.NoError(f.t, u.SetPassword("rahasia123"))
	if shop != nil {
		u.ShopID = &shop.ID
	}
	require.NoError(f.t, f.store.Users().Create(f.ctx, u))
	if role == model.RoleAdmin && shop != nil {
		shop.AdminID = &u.ID
		require.NoError(f.t, f.store.Shops().Save(f.ctx, shop))
	}
	return &Actor{ID: u.ID, Role: u.Role, Username: u.Username, Name: u.Name, ShopID: u.ShopID}
}

// product stocks a product at shop with the given sell price.
func (f *fixture) product(shop *model.Shop, name string, sell string, stock int) *model.Product {
	f.t.Helper()
	p := &model.Product{
		Name:      name,
		BuyPrice:  dec(sell).Mul(dec("0.8")).Round(2),
		SellPrice: dec(sell),
		Barcode:   fmt.Sprintf("%08d", 10000000+f.seq),
		TypeID:    f.typeID,
		IsActive:  true,
	}
	f.seq++
	require.NoError(f.t, f.store.Products().Create(f.ctx, p))
	if stock > 0 {
		require.NoError(f.t, f.store.Stock().Increment(f.ctx, shop.ID, p.ID, stock))
	}
	return p
}

func (f *fixture) customer(shop *model.Shop, name string) *model.Customer {
	f.t.Helper()
	c := &model.Customer{ShopID: shop.ID, Name: name, IsActive: true}
	require.NoError(f.t, f.store.Customers().Create(f.ctx, c))
	return c
}

func (f *fixture) stock(shop *model.Shop, productID uuid.UUID) int {
	f.t.Helper()
	sp, err := f.store.Stock().Find(f.ctx, shop.ID, productID)
	require.NoError(f.t, err)
	return sp.Stock
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func ptr[T any](v T) *T { return &v }

// code extracts the envelope code, or "" for unclassified errors.
func code(err error) string {
	if e, ok := apperror.As(err); ok {
		return e.Code
	}
	return ""
}

func status(err error) int {
	return apperror.Normalize(err).Status
}
