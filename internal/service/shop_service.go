package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/DimasAnjayMabar/agusplastik-backend/internal/apperror"
	"github.com/DimasAnjayMabar/agusplastik-backend/internal/audit"
	"github.com/DimasAnjayMabar/agusplastik-backend/internal/model"
	"github.com/DimasAnjayMabar/agusplastik-backend/internal/policy"
	"github.com/DimasAnjayMabar/agusplastik-backend/internal/repository"
)

type ShopService interface {
	Create(ctx context.Context, actor *Actor, req CreateShopRequest) (*model.ShopResponse, error)
	List(ctx context.Context, actor *Actor, p repository.ListParams) (repository.Page[model.ShopResponse], error)
	Get(ctx context.Context, actor *Actor, id uuid.UUID) (*model.ShopResponse, error)
	Update(ctx context.Context, actor *Actor, id uuid.UUID, req UpdateShopRequest) (*model.ShopResponse, error)
	Deactivate(ctx context.Context, actor *Actor, id uuid.UUID) error
	History(ctx context.Context, actor *Actor, id uuid.UUID) ([]model.HistoryResponse, error)
	Staff(ctx context.Context, actor *Actor, id uuid.UUID, q UserQuery) (repository.Page[model.UserResponse], error)
	Products(ctx context.Context, actor *Actor, id uuid.UUID, f repository.ProductFilter) (repository.Page[model.StockedProduct], error)
}

type CreateShopRequest struct {
	Name    string `json:"name" validate:"required,max=255"`
	Address string `json:"address"`
}

type UpdateShopRequest struct {
	Name    *string `json:"name" validate:"omitempty,min=1,max=255"`
	Address *string `json:"address"`
}

type shopService struct {
	base
	users UserService
}

func NewShopService(store repository.Store, users UserService, opts ...Option) ShopService {
	return &shopService{base: newBase(store, opts), users: users}
}

func (s *shopService) Create(ctx context.Context, actor *Actor, req CreateShopRequest) (*model.ShopResponse, error) {
	if err := actor.require(policy.ManageShops); err != nil {
		return nil, err
	}
	if err := validate(&req); err != nil {
		return nil, err
	}
	shop := &model.Shop{Name: req.Name, Address: req.Address, IsActive: true}
	err := s.store.Atomic(ctx, func(tx repository.Store) error {
		if err := tx.Shops().Create(ctx, shop); err != nil {
			return err
		}
		return record(ctx, tx, model.HistoryShop, shop.ID, model.ActionCreated, nil, actor)
	})
	if err != nil {
		return nil, err
	}
	resp := shop.ToResponse()
	return &resp, nil
}

func (s *shopService) List(ctx context.Context, actor *Actor, p repository.ListParams) (repository.Page[model.ShopResponse], error) {
	if err := actor.require(policy.ManageShops); err != nil {
		return repository.Page[model.ShopResponse]{}, err
	}
	p = p.Normalize()
	shops, total, err := s.store.Shops().List(ctx, p)
	if err != nil {
		return repository.Page[model.ShopResponse]{}, err
	}
	items := make([]model.ShopResponse, 0, len(shops))
	for i := range shops {
		items = append(items, shops[i].ToResponse())
	}
	return repository.NewPage(items, total, p), nil
}

func (s *shopService) Get(ctx context.Context, actor *Actor, id uuid.UUID) (*model.ShopResponse, error) {
	if err := actor.require(policy.ManageShops); err != nil {
		return nil, err
	}
	shop, err := s.store.Shops().FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "Toko tidak ditemukan")
	}
	resp := shop.ToResponse()
	return &resp, nil
}

func (s *shopService) Update(ctx context.Context, actor *Actor, id uuid.UUID, req UpdateShopRequest) (*model.ShopResponse, error) {
	if err := actor.require(policy.ManageShops); err != nil {
		return nil, err
	}
	if err := validate(&req); err != nil {
		return nil, err
	}
	var updated *model.Shop
	err := s.store.Atomic(ctx, func(tx repository.Store) error {
		shop, err := tx.Shops().FindByID(ctx, id)
		if err != nil {
			return notFound(err, "Toko tidak ditemukan")
		}
		if !shop.IsActive {
			return apperror.NotFound("Toko tidak ditemukan")
		}
		var d audit.Diff
		shop.Name = d.String("name", shop.Name, req.Name)
		shop.Address = d.String("address", shop.Address, req.Address)
		if d.Empty() {
			return ErrNoChanges
		}
		if err := tx.Shops().Save(ctx, shop); err != nil {
			return err
		}
		updated = shop
		return record(ctx, tx, model.HistoryShop, shop.ID, model.ActionUpdated, d.Changes(), actor)
	})
	if err != nil {
		return nil, err
	}
	resp := updated.ToResponse()
	return &resp, nil
}

// Deactivate is refused while the shop still has an admin or active staff.
func (s *shopService) Deactivate(ctx context.Context, actor *Actor, id uuid.UUID) error {
	if err := actor.require(policy.ManageShops); err != nil {
		return err
	}
	return s.store.Atomic(ctx, func(tx repository.Store) error {
		shop, err := tx.Shops().FindByID(ctx, id)
		if err != nil {
			return notFound(err, "Toko tidak ditemukan")
		}
		if !shop.IsActive {
			return apperror.NotFound("Toko tidak ditemukan")
		}
		if shop.AdminID != nil {
			return apperror.Conflict("SHOP_IN_USE", "Toko masih memiliki admin, pindahkan admin terlebih dahulu")
		}
		n, err := tx.Users().CountActiveStaff(ctx, shop.ID)
		if err != nil {
			return err
		}
		if n > 0 {
			return apperror.Conflict("SHOP_IN_USE", "Toko masih memiliki staff aktif, pindahkan staff terlebih dahulu")
		}
		shop.IsActive = false
		if err := tx.Shops().Save(ctx, shop); err != nil {
			return err
		}
		return record(ctx, tx, model.HistoryShop, shop.ID, model.ActionDeactivated,
			[]audit.Change{{Field: "isActive", Old: "true", New: "false"}}, actor)
	})
}

func (s *shopService) History(ctx context.Context, actor *Actor, id uuid.UUID) ([]model.HistoryResponse, error) {
	if err := actor.require(policy.ManageShops); err != nil {
		return nil, err
	}
	if _, err := s.store.Shops().FindByID(ctx, id); err != nil {
		return nil, notFound(err, "Toko tidak ditemukan")
	}
	rows, err := s.store.History().List(ctx, model.HistoryShop, id)
	if err != nil {
		return nil, err
	}
	return historyResponses(rows), nil
}

func (s *shopService) Staff(ctx context.Context, actor *Actor, id uuid.UUID, q UserQuery) (repository.Page[model.UserResponse], error) {
	if err := actor.require(policy.ManageShops); err != nil {
		return repository.Page[model.UserResponse]{}, err
	}
	if _, err := s.store.Shops().FindByID(ctx, id); err != nil {
		return repository.Page[model.UserResponse]{}, notFound(err, "Toko tidak ditemukan")
	}
	if len(q.Roles) == 0 {
		q.Roles = []model.Role{model.RoleGudang, model.RoleKasir}
	}
	q.ShopID = &id
	return s.users.List(ctx, actor, q)
}

func (s *shopService) Products(ctx context.Context, actor *Actor, id uuid.UUID, f repository.ProductFilter) (repository.Page[model.StockedProduct], error) {
	if err := actor.require(policy.ManageShops); err != nil {
		return repository.Page[model.StockedProduct]{}, err
	}
	if _, err := s.store.Shops().FindByID(ctx, id); err != nil {
		return repository.Page[model.StockedProduct]{}, notFound(err, "Toko tidak ditemukan")
	}
	f.ShopID = id
	f.ListParams = f.ListParams.Normalize()
	rows, total, err := s.store.Products().ListStocked(ctx, f)
	if err != nil {
		return repository.Page[model.StockedProduct]{}, err
	}
	return repository.NewPage(rows, total, f.ListParams), nil
}
