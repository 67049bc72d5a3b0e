package service

import (
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DimasAnjayMabar/agusplastik-backend/internal/apperror"
	"github.com/DimasAnjayMabar/agusplastik-backend/internal/model"
)

func (f *fixture) account(id uuid.UUID) *model.User {
	f.t.Helper()
	u, err := f.store.Users().FindByID(f.ctx, id)
	require.NoError(f.t, err)
	return u
}

func (f *fixture) adminOf(shop *model.Shop) *uuid.UUID {
	f.t.Helper()
	s, err := f.store.Shops().FindByID(f.ctx, shop.ID)
	require.NoError(f.t, err)
	return s.AdminID
}

func TestRegister_RoleHierarchyAndShopScope(t *testing.T) {
	f := newFixture(t)
	svc := NewUserService(f.store, f.opts()...)

	// admins always register into their own shop
	created, err := svc.Register(f.ctx, f.admin, model.RoleKasir, RegisterRequest{
		Username: "kasir-baru", Password: "rahasia123", Name: "Kasir Baru", ShopID: &f.shopB.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, f.shopA.ID, *created.ShopID)
	assert.Len(t, f.store.HistoryFor(model.HistoryUser, created.ID), 1)

	_, err = svc.Register(f.ctx, f.admin, model.RoleAdmin, RegisterRequest{
		Username: "admin-baru", Password: "rahasia123", Name: "Admin Baru",
	})
	assert.Equal(t, http.StatusForbidden, status(err))

	_, err = svc.Register(f.ctx, f.kasir, model.RoleKasir, RegisterRequest{
		Username: "kasir-lain", Password: "rahasia123", Name: "Kasir Lain",
	})
	assert.Equal(t, http.StatusForbidden, status(err))

	_, err = svc.Register(f.ctx, f.admin, model.RoleGudang, RegisterRequest{
		Username: "kasir-baru", Password: "rahasia123", Name: "Duplikat",
	})
	assert.Equal(t, "DUPLICATE", apperror.Normalize(err).Code)
}

func TestRegister_AdminTakesEmptyShopOnly(t *testing.T) {
	f := newFixture(t)
	svc := NewUserService(f.store, f.opts()...)

	_, err := svc.Register(f.ctx, f.super, model.RoleAdmin, RegisterRequest{
		Username: "admin-a2", Password: "rahasia123", Name: "Admin Kedua", ShopID: &f.shopA.ID,
	})
	assert.Equal(t, "SHOP_HAS_ADMIN", code(err))

	created, err := svc.Register(f.ctx, f.super, model.RoleAdmin, RegisterRequest{
		Username: "admin-b", Password: "rahasia123", Name: "Admin Cabang", ShopID: &f.shopB.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, created.ID, *f.adminOf(f.shopB))

	_, err = svc.Register(f.ctx, f.super, model.RoleKasir, RegisterRequest{
		Username: "kasir-x", Password: "rahasia123", Name: "Tanpa Toko",
	})
	assert.Equal(t, http.StatusBadRequest, status(err))
}

func TestUpdate_NoOpWritesNoHistory(t *testing.T) {
	f := newFixture(t)
	svc := NewUserService(f.store, f.opts()...)
	current := f.account(f.kasir.ID)

	_, err := svc.Update(f.ctx, f.admin, f.kasir.ID, UpdateUserRequest{Name: ptr(current.Name), Phone: ptr(current.Phone)})
	assert.ErrorIs(t, err, ErrNoChanges)
	assert.Equal(t, http.StatusBadRequest, status(err))
	assert.Empty(t, f.store.HistoryFor(model.HistoryUser, f.kasir.ID))

	updated, err := svc.Update(f.ctx, f.admin, f.kasir.ID, UpdateUserRequest{Name: ptr("Siti"), Phone: ptr("0812")})
	require.NoError(t, err)
	assert.Equal(t, "Siti", updated.Name)

	hist, err := svc.History(f.ctx, f.admin, f.kasir.ID)
	require.NoError(t, err)
	require.Len(t, hist, 1)
	assert.Len(t, hist[0].Changes, 2)
	assert.Contains(t, hist[0].Description, `name dari "`+current.Name+`" menjadi "Siti"`)
	assert.Contains(t, hist[0].Description, `phone dari (kosong) menjadi "0812"`)
}

func TestUpdate_RoleChangeIsSuperadminOnly(t *testing.T) {
	f := newFixture(t)
	svc := NewUserService(f.store, f.opts()...)
	gudang := model.RoleGudang
	admin := model.RoleAdmin

	_, err := svc.Update(f.ctx, f.admin, f.kasir.ID, UpdateUserRequest{Role: &gudang})
	assert.Equal(t, http.StatusForbidden, status(err))

	_, err = svc.Update(f.ctx, f.super, f.kasir.ID, UpdateUserRequest{Role: &admin})
	assert.Equal(t, http.StatusForbidden, status(err))

	updated, err := svc.Update(f.ctx, f.super, f.kasir.ID, UpdateUserRequest{Role: &gudang})
	require.NoError(t, err)
	assert.Equal(t, model.RoleGudang, updated.Role)
}

func TestAccounts_AreShopScopedForAdmins(t *testing.T) {
	f := newFixture(t)
	svc := NewUserService(f.store, f.opts()...)
	foreign := f.user(model.RoleKasir, f.shopB)

	page, err := svc.List(f.ctx, f.admin, UserQuery{})
	require.NoError(t, err)
	assert.EqualValues(t, 2, page.Total)

	page, err = svc.List(f.ctx, f.admin, UserQuery{Roles: []model.Role{model.RoleAdmin}})
	require.NoError(t, err)
	assert.Zero(t, page.Total)

	_, err = svc.Get(f.ctx, f.admin, foreign.ID)
	assert.Equal(t, http.StatusNotFound, status(err))

	page, err = svc.List(f.ctx, f.super, UserQuery{})
	require.NoError(t, err)
	assert.EqualValues(t, 4, page.Total)
}

func TestDeactivateAdmin_BlockedUntilStaffTransferred(t *testing.T) {
	f := newFixture(t)
	svc := NewUserService(f.store, f.opts()...)
	require.NoError(t, f.store.Tokens().Create(f.ctx, &model.AuthToken{
		Token: "session-admin", UserID: f.admin.ID, LastActive: f.now, ExpiresIn: 3600,
	}))

	err := svc.Deactivate(f.ctx, f.super, f.admin.ID)
	assert.Equal(t, "ADMIN_HAS_STAFF", code(err))
	assert.Equal(t, http.StatusBadRequest, status(err))
	assert.True(t, f.account(f.admin.ID).IsActive)

	res, err := svc.TransferStaff(f.ctx, f.super, TransferStaffRequest{
		StaffIDs:     []uuid.UUID{f.gudang.ID, f.kasir.ID},
		TargetShopID: f.shopB.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Count)

	require.NoError(t, svc.Deactivate(f.ctx, f.super, f.admin.ID))
	acc := f.account(f.admin.ID)
	assert.False(t, acc.IsActive)
	assert.Nil(t, acc.ShopID)
	assert.Nil(t, f.adminOf(f.shopA))
	assert.Equal(t, 0, f.store.Counts().Tokens)

	err = svc.Deactivate(f.ctx, f.super, f.admin.ID)
	assert.Equal(t, http.StatusNotFound, status(err))
}

func TestTransferStaff_SkipsStaffAlreadyAtTarget(t *testing.T) {
	f := newFixture(t)
	svc := NewUserService(f.store, f.opts()...)

	already := f.user(model.RoleKasir, f.shopB)
	inactive := f.user(model.RoleKasir, f.shopA)
	u := f.account(inactive.ID)
	u.IsActive = false
	require.NoError(t, f.store.Users().Save(f.ctx, u))

	res, err := svc.TransferStaff(f.ctx, f.super, TransferStaffRequest{
		StaffIDs:     []uuid.UUID{already.ID, f.gudang.ID, inactive.ID},
		TargetShopID: f.shopB.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Count)

	assert.Equal(t, f.shopB.ID, *f.account(f.gudang.ID).ShopID)
	hist := f.store.HistoryFor(model.HistoryUser, f.gudang.ID)
	require.Len(t, hist, 1)
	assert.Equal(t, model.ActionTransferred, hist[0].Action)
	assert.Equal(t, "Toko Cabang", hist[0].Changes[0].New)

	assert.Empty(t, f.store.HistoryFor(model.HistoryUser, already.ID))
	assert.Empty(t, f.store.HistoryFor(model.HistoryUser, inactive.ID))
	assert.Equal(t, f.shopA.ID, *f.account(inactive.ID).ShopID)

	res, err = svc.TransferStaff(f.ctx, f.super, TransferStaffRequest{
		StaffIDs:     []uuid.UUID{already.ID},
		TargetShopID: f.shopB.ID,
	})
	require.NoError(t, err)
	assert.Zero(t, res.Count)

	_, err = svc.TransferStaff(f.ctx, f.admin, TransferStaffRequest{
		StaffIDs:     []uuid.UUID{f.kasir.ID},
		TargetShopID: f.shopB.ID,
	})
	assert.Equal(t, http.StatusForbidden, status(err))
}

func TestTransferAdmin_Swap(t *testing.T) {
	cases := []struct {
		name         string
		moverHasShop bool
		targetHasAdm bool
	}{
		{"mover with shop, occupied target", true, true},
		{"mover with shop, empty target", true, false},
		{"mover without shop, occupied target", false, true},
		{"mover without shop, empty target", false, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t)
			svc := NewUserService(f.store, f.opts()...)

			mover := f.admin
			if !tc.moverHasShop {
				mover = f.user(model.RoleAdmin, nil)
			}
			var displaced *Actor
			if tc.targetHasAdm {
				displaced = f.user(model.RoleAdmin, f.shopB)
			}
			before := len(f.store.HistoryFor(model.HistoryUser, mover.ID))

			res, err := svc.TransferAdmin(f.ctx, f.super, TransferAdminRequest{AdminID: mover.ID, TargetShopID: f.shopB.ID})
			require.NoError(t, err)
			assert.Equal(t, 1, res.Count)

			assert.Equal(t, mover.ID, *f.adminOf(f.shopB))
			assert.Equal(t, f.shopB.ID, *f.account(mover.ID).ShopID)
			assert.Len(t, f.store.HistoryFor(model.HistoryUser, mover.ID), before+1)

			switch {
			case tc.moverHasShop && tc.targetHasAdm:
				assert.Equal(t, displaced.ID, *f.adminOf(f.shopA))
				assert.Equal(t, f.shopA.ID, *f.account(displaced.ID).ShopID)
			case tc.moverHasShop:
				assert.Nil(t, f.adminOf(f.shopA))
			case tc.targetHasAdm:
				assert.Nil(t, f.account(displaced.ID).ShopID)
				assert.Equal(t, f.admin.ID, *f.adminOf(f.shopA), "unrelated shop keeps its admin")
			}
			if displaced != nil {
				hist := f.store.HistoryFor(model.HistoryUser, displaced.ID)
				require.Len(t, hist, 1)
				assert.Equal(t, "Toko Cabang", hist[0].Changes[0].Old)
			}
		})
	}
}

func TestTransferAdmin_AlreadyAtTarget(t *testing.T) {
	f := newFixture(t)
	svc := NewUserService(f.store, f.opts()...)

	res, err := svc.TransferAdmin(f.ctx, f.super, TransferAdminRequest{AdminID: f.admin.ID, TargetShopID: f.shopA.ID})
	require.NoError(t, err)
	assert.Zero(t, res.Count)
	assert.Empty(t, f.store.HistoryFor(model.HistoryUser, f.admin.ID))

	_, err = svc.TransferAdmin(f.ctx, f.super, TransferAdminRequest{AdminID: f.kasir.ID, TargetShopID: f.shopB.ID})
	assert.Equal(t, http.StatusNotFound, status(err))
}

func TestProfile_SelfUpdate(t *testing.T) {
	f := newFixture(t)
	svc := NewUserService(f.store, f.opts()...)
	f.advance(time.Minute)

	updated, err := svc.UpdateProfile(f.ctx, f.gudang, UpdateUserRequest{Email: ptr("gudang@toko.id")})
	require.NoError(t, err)
	assert.Equal(t, "gudang@toko.id", updated.Email)

	role := model.RoleAdmin
	_, err = svc.UpdateProfile(f.ctx, f.gudang, UpdateUserRequest{Role: &role})
	assert.Equal(t, http.StatusForbidden, status(err))

	me, err := svc.Profile(f.ctx, f.gudang)
	require.NoError(t, err)
	assert.Equal(t, "gudang@toko.id", me.Email)
}
