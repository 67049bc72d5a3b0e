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

func TestUpdateProduct_DiffAndNoOp(t *testing.T) {
	f := newFixture(t)
	svc := NewCatalogService(f.store, f.opts()...)
	p := f.product(f.shopA, "Baskom", "12000", 3)

	_, err := svc.UpdateProduct(f.ctx, f.gudang, p.ID, UpdateProductRequest{Name: ptr("Baskom"), SellPrice: ptr(dec("12000.00"))})
	assert.ErrorIs(t, err, ErrNoChanges)
	assert.Empty(t, f.store.HistoryFor(model.HistoryProduct, p.ID))

	other := &model.ProductType{Name: "Peralatan Rumah Tangga"}
	require.NoError(t, f.store.ProductTypes().Create(f.ctx, other))

	updated, err := svc.UpdateProduct(f.ctx, f.gudang, p.ID, UpdateProductRequest{
		SellPrice: ptr(dec("13500")),
		TypeID:    &other.ID,
	})
	require.NoError(t, err)
	assert.True(t, updated.SellPrice.Equal(dec("13500")))
	assert.Equal(t, other.ID, updated.TypeID)
	assert.Equal(t, 3, updated.Stock)

	hist, err := svc.ProductHistory(f.ctx, f.kasir, p.ID)
	require.NoError(t, err)
	require.Len(t, hist, 1)
	assert.Equal(t, `Data diperbarui: sellPrice dari "12000.00" menjadi "13500.00", type dari "Plastik" menjadi "Peralatan Rumah Tangga"`, hist[0].Description)
	assert.Equal(t, []string{"stock_update:product_updated"}, f.pub.types())
}

func TestUpdateProduct_Guards(t *testing.T) {
	f := newFixture(t)
	svc := NewCatalogService(f.store, f.opts()...)
	p := f.product(f.shopA, "Baskom", "12000", 3)
	elsewhere := f.product(f.shopB, "Rak", "50000", 1)

	_, err := svc.UpdateProduct(f.ctx, f.kasir, p.ID, UpdateProductRequest{Name: ptr("x")})
	assert.Equal(t, http.StatusForbidden, status(err))

	_, err = svc.UpdateProduct(f.ctx, f.gudang, elsewhere.ID, UpdateProductRequest{Name: ptr("x")})
	assert.Equal(t, http.StatusNotFound, status(err))

	_, err = svc.UpdateProduct(f.ctx, f.gudang, p.ID, UpdateProductRequest{SellPrice: ptr(dec("-5"))})
	assert.Equal(t, http.StatusBadRequest, status(err))

	unlinked := &model.Distributor{Name: "PT Jauh", IsActive: true}
	require.NoError(t, f.store.Distributors().Create(f.ctx, unlinked))
	_, err = svc.UpdateProduct(f.ctx, f.gudang, p.ID, UpdateProductRequest{DistributorID: &unlinked.ID})
	assert.Equal(t, http.StatusNotFound, status(err))
}

func TestDeactivateProduct_HidesItFromListings(t *testing.T) {
	f := newFixture(t)
	svc := NewCatalogService(f.store, f.opts()...)
	p := f.product(f.shopA, "Baskom", "12000", 3)
	f.product(f.shopA, "Ember", "9000", 3)

	require.NoError(t, svc.DeactivateProduct(f.ctx, f.gudang, p.ID))
	assert.Equal(t, http.StatusNotFound, status(svc.DeactivateProduct(f.ctx, f.gudang, p.ID)))

	active := true
	page, err := svc.ListProducts(f.ctx, f.kasir, repository.ProductFilter{ListParams: repository.ListParams{IsActive: &active}})
	require.NoError(t, err)
	require.EqualValues(t, 1, page.Total)
	assert.Equal(t, "Ember", page.Items[0].Name)
}

func TestDistributors_LinkedToCreatingShop(t *testing.T) {
	f := newFixture(t)
	svc := NewCatalogService(f.store, f.opts()...)
	otherGudang := f.user(model.RoleGudang, f.shopB)

	d, err := svc.CreateDistributor(f.ctx, f.gudang, DistributorRequest{Name: "CV Plastindo", Email: "cv@plastindo.id"})
	require.NoError(t, err)

	page, err := svc.ListDistributors(f.ctx, f.gudang, repository.ListParams{})
	require.NoError(t, err)
	assert.EqualValues(t, 1, page.Total)

	page, err = svc.ListDistributors(f.ctx, otherGudang, repository.ListParams{})
	require.NoError(t, err)
	assert.Zero(t, page.Total)
	_, err = svc.GetDistributor(f.ctx, otherGudang, d.ID)
	assert.Equal(t, http.StatusNotFound, status(err))

	_, err = svc.UpdateDistributor(f.ctx, f.gudang, d.ID, UpdateDistributorRequest{Name: ptr("CV Plastindo")})
	assert.ErrorIs(t, err, ErrNoChanges)
	updated, err := svc.UpdateDistributor(f.ctx, f.gudang, d.ID, UpdateDistributorRequest{Phone: ptr("0311234")})
	require.NoError(t, err)
	assert.Equal(t, "0311234", updated.Phone)

	require.NoError(t, svc.DeactivateDistributor(f.ctx, f.gudang, d.ID))
	page, err = svc.ListDistributors(f.ctx, f.gudang, repository.ListParams{})
	require.NoError(t, err)
	assert.Zero(t, page.Total, "inactive distributors are hidden by default")

	hist, err := svc.DistributorHistory(f.ctx, f.gudang, d.ID)
	require.NoError(t, err)
	require.Len(t, hist, 3)
	assert.Equal(t, model.ActionDeactivated, hist[0].Action)
	assert.Equal(t, model.ActionCreated, hist[2].Action)

	_, err = svc.CreateDistributor(f.ctx, f.gudang, DistributorRequest{Name: "Bad", Email: "bukan-email"})
	assert.Equal(t, http.StatusBadRequest, status(err))
}

func TestProductTypes(t *testing.T) {
	f := newFixture(t)
	svc := NewCatalogService(f.store, f.opts()...)

	created, err := svc.CreateType(f.ctx, f.gudang, CreateTypeRequest{Name: "Kemasan"})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, created.ID)

	_, err = svc.CreateType(f.ctx, f.gudang, CreateTypeRequest{Name: "Kemasan"})
	assert.Equal(t, http.StatusBadRequest, status(err))

	types, err := svc.ListTypes(f.ctx, f.kasir)
	require.NoError(t, err)
	assert.Len(t, types, 2)
}
