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

// CustomerService manages the credit customers of the cashier's shop.
type CustomerService interface {
	Create(ctx context.Context, actor *Actor, req CustomerRequest) (*model.Customer, error)
	List(ctx context.Context, actor *Actor, p repository.ListParams) (repository.Page[model.Customer], error)
	Get(ctx context.Context, actor *Actor, id uuid.UUID) (*model.Customer, error)
	Update(ctx context.Context, actor *Actor, id uuid.UUID, req UpdateCustomerRequest) (*model.Customer, error)
	Deactivate(ctx context.Context, actor *Actor, id uuid.UUID) error
	History(ctx context.Context, actor *Actor, id uuid.UUID) ([]model.HistoryResponse, error)
}

type CustomerRequest struct {
	Name    string `json:"name" validate:"required,max=255"`
	NIK     string `json:"nik" validate:"omitempty,numeric,max=32"`
	Phone   string `json:"phone" validate:"omitempty,max=20"`
	Address string `json:"address"`
}

type UpdateCustomerRequest struct {
	Name    *string `json:"name" validate:"omitempty,min=1,max=255"`
	NIK     *string `json:"nik" validate:"omitempty,numeric,max=32"`
	Phone   *string `json:"phone" validate:"omitempty,max=20"`
	Address *string `json:"address"`
}

type customerService struct {
	base
}

func NewCustomerService(store repository.Store, opts ...Option) CustomerService {
	return &customerService{base: newBase(store, opts)}
}

func (s *customerService) Create(ctx context.Context, actor *Actor, req CustomerRequest) (*model.Customer, error) {
	if err := actor.require(policy.ManageCustomers); err != nil {
		return nil, err
	}
	shopID, err := actor.shop()
	if err != nil {
		return nil, err
	}
	if err := validate(&req); err != nil {
		return nil, err
	}

	c := &model.Customer{
		ShopID:   shopID,
		Name:     req.Name,
		NIK:      req.NIK,
		Phone:    req.Phone,
		Address:  req.Address,
		IsActive: true,
	}
	err = s.store.Atomic(ctx, func(tx repository.Store) error {
		if err := tx.Customers().Create(ctx, c); err != nil {
			return err
		}
		return record(ctx, tx, model.HistoryCustomer, c.ID, model.ActionCreated, nil, actor)
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (s *customerService) List(ctx context.Context, actor *Actor, p repository.ListParams) (repository.Page[model.Customer], error) {
	if err := actor.require(policy.ManageCustomers); err != nil {
		return repository.Page[model.Customer]{}, err
	}
	shopID, err := actor.shop()
	if err != nil {
		return repository.Page[model.Customer]{}, err
	}
	f := repository.CustomerFilter{ListParams: p.Normalize(), ShopID: shopID}
	rows, total, err := s.store.Customers().List(ctx, f)
	if err != nil {
		return repository.Page[model.Customer]{}, err
	}
	return repository.NewPage(rows, total, f.ListParams), nil
}

func (s *customerService) find(ctx context.Context, tx repository.Store, actor *Actor, id uuid.UUID) (*model.Customer, error) {
	c, err := tx.Customers().FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "Pelanggan tidak ditemukan")
	}
	if !actor.sees(&c.ShopID) {
		return nil, apperror.NotFound("Pelanggan tidak ditemukan")
	}
	return c, nil
}

func (s *customerService) Get(ctx context.Context, actor *Actor, id uuid.UUID) (*model.Customer, error) {
	if err := actor.require(policy.ManageCustomers); err != nil {
		return nil, err
	}
	return s.find(ctx, s.store, actor, id)
}

func (s *customerService) Update(ctx context.Context, actor *Actor, id uuid.UUID, req UpdateCustomerRequest) (*model.Customer, error) {
	if err := actor.require(policy.ManageCustomers); err != nil {
		return nil, err
	}
	if err := validate(&req); err != nil {
		return nil, err
	}
	var out *model.Customer
	err := s.store.Atomic(ctx, func(tx repository.Store) error {
		c, err := s.find(ctx, tx, actor, id)
		if err != nil {
			return err
		}
		if !c.IsActive {
			return apperror.NotFound("Pelanggan tidak ditemukan")
		}
		var diff audit.Diff
		c.Name = diff.String("name", c.Name, req.Name)
		c.NIK = diff.String("nik", c.NIK, req.NIK)
		c.Phone = diff.String("phone", c.Phone, req.Phone)
		c.Address = diff.String("address", c.Address, req.Address)
		if diff.Empty() {
			return ErrNoChanges
		}
		if err := tx.Customers().Save(ctx, c); err != nil {
			return err
		}
		out = c
		return record(ctx, tx, model.HistoryCustomer, c.ID, model.ActionUpdated, diff.Changes(), actor)
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *customerService) Deactivate(ctx context.Context, actor *Actor, id uuid.UUID) error {
	if err := actor.require(policy.ManageCustomers); err != nil {
		return err
	}
	return s.store.Atomic(ctx, func(tx repository.Store) error {
		c, err := s.find(ctx, tx, actor, id)
		if err != nil {
			return err
		}
		if !c.IsActive {
			return apperror.NotFound("Pelanggan tidak ditemukan")
		}
		c.IsActive = false
		if err := tx.Customers().Save(ctx, c); err != nil {
			return err
		}
		return record(ctx, tx, model.HistoryCustomer, c.ID, model.ActionDeactivated,
			[]audit.Change{{Field: "isActive", Old: "true", New: "false"}}, actor)
	})
}

func (s *customerService) History(ctx context.Context, actor *Actor, id uuid.UUID) ([]model.HistoryResponse, error) {
	if err := actor.require(policy.ManageCustomers); err != nil {
		return nil, err
	}
	if _, err := s.find(ctx, s.store, actor, id); err != nil {
		return nil, err
	}
	rows, err := s.store.History().List(ctx, model.HistoryCustomer, id)
	if err != nil {
		return nil, err
	}
	return historyResponses(rows), nil
}
