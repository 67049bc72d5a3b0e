package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/DimasAnjayMabar/agusplastik-backend/internal/apperror"
	"github.com/DimasAnjayMabar/agusplastik-backend/internal/audit"
	"github.com/DimasAnjayMabar/agusplastik-backend/internal/model"
	"github.com/DimasAnjayMabar/agusplastik-backend/internal/policy"
	"github.com/DimasAnjayMabar/agusplastik-backend/internal/repository"
	"github.com/DimasAnjayMabar/agusplastik-backend/internal/ws"
)

// CatalogService covers products, product types and distributors of the caller's shop.
type CatalogService interface {
	ListProducts(ctx context.Context, actor *Actor, f repository.ProductFilter) (repository.Page[model.StockedProduct], error)
	GetProduct(ctx context.Context, actor *Actor, id uuid.UUID) (*model.StockedProduct, error)
	UpdateProduct(ctx context.Context, actor *Actor, id uuid.UUID, req UpdateProductRequest) (*model.StockedProduct, error)
	DeactivateProduct(ctx context.Context, actor *Actor, id uuid.UUID) error
	ProductHistory(ctx context.Context, actor *Actor, id uuid.UUID) ([]model.HistoryResponse, error)

	ListTypes(ctx context.Context, actor *Actor) ([]model.ProductType, error)
	CreateType(ctx context.Context, actor *Actor, req CreateTypeRequest) (*model.ProductType, error)

	CreateDistributor(ctx context.Context, actor *Actor, req DistributorRequest) (*model.Distributor, error)
	ListDistributors(ctx context.Context, actor *Actor, p repository.ListParams) (repository.Page[model.Distributor], error)
	GetDistributor(ctx context.Context, actor *Actor, id uuid.UUID) (*model.Distributor, error)
	UpdateDistributor(ctx context.Context, actor *Actor, id uuid.UUID, req UpdateDistributorRequest) (*model.Distributor, error)
	DeactivateDistributor(ctx context.Context, actor *Actor, id uuid.UUID) error
	DistributorHistory(ctx context.Context, actor *Actor, id uuid.UUID) ([]model.HistoryResponse, error)
}

type UpdateProductRequest struct {
	Name          *string          `json:"name" validate:"omitempty,min=1,max=255"`
	SellPrice     *decimal.Decimal `json:"sellPrice"`
	TypeID        *uuid.UUID       `json:"typeId"`
	DistributorID *uuid.UUID       `json:"distributorId"` // uuid.Nil clears
	ImagePath     *string          `json:"imagePath"`
}

type CreateTypeRequest struct {
	Name string `json:"name" validate:"required,max=100"`
}

type DistributorRequest struct {
	Name          string `json:"name" validate:"required,max=255"`
	Phone         string `json:"phone" validate:"omitempty,max=20"`
	Email         string `json:"email" validate:"omitempty,email"`
	EcommerceLink string `json:"ecommerceLink" validate:"omitempty,url"`
	ImagePath     string `json:"imagePath"`
	Address       string `json:"address"`
}

type UpdateDistributorRequest struct {
	Name          *string `json:"name" validate:"omitempty,min=1,max=255"`
	Phone         *string `json:"phone" validate:"omitempty,max=20"`
	Email         *string `json:"email" validate:"omitempty,email"`
	EcommerceLink *string `json:"ecommerceLink" validate:"omitempty,url"`
	ImagePath     *string `json:"imagePath"`
	Address       *string `json:"address"`
}

type catalogService struct {
	base
}

func NewCatalogService(store repository.Store, opts ...Option) CatalogService {
	return &catalogService{base: newBase(store, opts)}
}

func (s *catalogService) ListProducts(ctx context.Context, actor *Actor, f repository.ProductFilter) (repository.Page[model.StockedProduct], error) {
	if err := actor.require(policy.ViewCatalog); err != nil {
		return repository.Page[model.StockedProduct]{}, err
	}
	shopID, err := actor.shop()
	if err != nil {
		return repository.Page[model.StockedProduct]{}, err
	}
	f.ShopID = shopID
	f.ListParams = f.ListParams.Normalize()
	rows, total, err := s.store.Products().ListStocked(ctx, f)
	if err != nil {
		return repository.Page[model.StockedProduct]{}, err
	}
	return repository.NewPage(rows, total, f.ListParams), nil
}

// stocked loads a product carried by the actor's shop.
func (s *catalogService) stocked(ctx context.Context, tx repository.Store, actor *Actor, id uuid.UUID) (*model.Product, int, error) {
	shopID, err := actor.shop()
	if err != nil {
		return nil, 0, err
	}
	sp, err := tx.Stock().Find(ctx, shopID, id)
	if err != nil {
		return nil, 0, notFound(err, "Produk tidak ditemukan")
	}
	product, err := tx.Products().FindByID(ctx, id)
	if err != nil {
		return nil, 0, notFound(err, "Produk tidak ditemukan")
	}
	return product, sp.Stock, nil
}

func (s *catalogService) GetProduct(ctx context.Context, actor *Actor, id uuid.UUID) (*model.StockedProduct, error) {
	if err := actor.require(policy.ViewCatalog); err != nil {
		return nil, err
	}
	product, stock, err := s.stocked(ctx, s.store, actor, id)
	if err != nil {
		return nil, err
	}
	return &model.StockedProduct{Product: *product, Stock: stock}, nil
}

func (s *catalogService) UpdateProduct(ctx context.Context, actor *Actor, id uuid.UUID, req UpdateProductRequest) (*model.StockedProduct, error) {
	if err := actor.require(policy.ManageCatalog); err != nil {
		return nil, err
	}
	if err := validate(&req); err != nil {
		return nil, err
	}
	if req.SellPrice != nil && req.SellPrice.IsNegative() {
		return nil, apperror.Validation("sellPrice tidak boleh negatif")
	}

	var out *model.StockedProduct
	err := s.store.Atomic(ctx, func(tx repository.Store) error {
		product, stock, err := s.stocked(ctx, tx, actor, id)
		if err != nil {
			return err
		}
		if !product.IsActive {
			return apperror.NotFound("Produk tidak ditemukan")
		}

		var d audit.Diff
		product.Name = d.String("name", product.Name, req.Name)
		product.SellPrice = d.Decimal("sellPrice", product.SellPrice, req.SellPrice)
		product.ImagePath = d.OptionalString("imagePath", product.ImagePath, req.ImagePath)
		if req.TypeID != nil && *req.TypeID != product.TypeID {
			t, err := tx.ProductTypes().FindByID(ctx, *req.TypeID)
			if err != nil {
				return notFound(err, "Jenis produk tidak ditemukan")
			}
			d.Record("type", typeName(product.Type), t.Name)
			product.TypeID, product.Type = t.ID, t
		}
		if req.DistributorID != nil && *req.DistributorID != uuid.Nil {
			if _, err := s.linkedDistributor(ctx, tx, actor, *req.DistributorID); err != nil {
				return err
			}
		}
		product.DistributorID = d.UUID("distributorId", product.DistributorID, req.DistributorID)
		if d.Empty() {
			return ErrNoChanges
		}

		product.Type, product.Distributor = nil, nil
		if err := tx.Products().Save(ctx, product); err != nil {
			return err
		}
		if err := record(ctx, tx, model.HistoryProduct, product.ID, model.ActionUpdated, d.Changes(), actor); err != nil {
			return err
		}
		fresh, err := tx.Products().FindByID(ctx, product.ID)
		if err != nil {
			return err
		}
		out = &model.StockedProduct{Product: *fresh, Stock: stock}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.pub.Publish(ws.Event{
		Type:    ws.EventStockUpdate,
		Action:  "product_updated",
		ShopID:  *actor.ShopID,
		Payload: map[string]any{"productId": out.ID, "name": out.Name, "sellPrice": out.SellPrice, "user": actor.Username},
	})
	return out, nil
}

func typeName(t *model.ProductType) string {
	if t == nil {
		return ""
	}
	return t.Name
}

func (s *catalogService) DeactivateProduct(ctx context.Context, actor *Actor, id uuid.UUID) error {
	if err := actor.require(policy.ManageCatalog); err != nil {
		return err
	}
	return s.store.Atomic(ctx, func(tx repository.Store) error {
		product, _, err := s.stocked(ctx, tx, actor, id)
		if err != nil {
			return err
		}
		if !product.IsActive {
			return apperror.NotFound("Produk tidak ditemukan")
		}
		product.IsActive = false
		product.Type, product.Distributor = nil, nil
		if err := tx.Products().Save(ctx, product); err != nil {
			return err
		}
		return record(ctx, tx, model.HistoryProduct, product.ID, model.ActionDeactivated,
			[]audit.Change{{Field: "isActive", Old: "true", New: "false"}}, actor)
	})
}

func (s *catalogService) ProductHistory(ctx context.Context, actor *Actor, id uuid.UUID) ([]model.HistoryResponse, error) {
	if err := actor.require(policy.ViewCatalog); err != nil {
		return nil, err
	}
	if _, _, err := s.stocked(ctx, s.store, actor, id); err != nil {
		return nil, err
	}
	rows, err := s.store.History().List(ctx, model.HistoryProduct, id)
	if err != nil {
		return nil, err
	}
	return historyResponses(rows), nil
}

func (s *catalogService) ListTypes(ctx context.Context, actor *Actor) ([]model.ProductType, error) {
	if err := actor.require(policy.ViewCatalog); err != nil {
		return nil, err
	}
	return s.store.ProductTypes().FindAll(ctx)
}

func (s *catalogService) CreateType(ctx context.Context, actor *Actor, req CreateTypeRequest) (*model.ProductType, error) {
	if err := actor.require(policy.ManageCatalog); err != nil {
		return nil, err
	}
	if err := validate(&req); err != nil {
		return nil, err
	}
	t := &model.ProductType{Name: req.Name}
	if err := s.store.ProductTypes().Create(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *catalogService) CreateDistributor(ctx context.Context, actor *Actor, req DistributorRequest) (*model.Distributor, error) {
	if err := actor.require(policy.ManageCatalog); err != nil {
		return nil, err
	}
	if err := validate(&req); err != nil {
		return nil, err
	}
	shopID, err := actor.shop()
	if err != nil {
		return nil, err
	}

	d := &model.Distributor{
		Name:          req.Name,
		Phone:         req.Phone,
		Email:         req.Email,
		EcommerceLink: req.EcommerceLink,
		Address:       req.Address,
		IsActive:      true,
	}
	if req.ImagePath != "" {
		d.ImagePath = &req.ImagePath
	}
	err = s.store.Atomic(ctx, func(tx repository.Store) error {
		if err := tx.Distributors().Create(ctx, d); err != nil {
			return err
		}
		if err := tx.Distributors().Link(ctx, d.ID, shopID); err != nil {
			return err
		}
		return record(ctx, tx, model.HistoryDistributor, d.ID, model.ActionCreated, nil, actor)
	})
	if err != nil {
		return nil, err
	}
	return d, nil
}

func (s *catalogService) ListDistributors(ctx context.Context, actor *Actor, p repository.ListParams) (repository.Page[model.Distributor], error) {
	if err := actor.require(policy.ViewCatalog); err != nil {
		return repository.Page[model.Distributor]{}, err
	}
	p = p.Normalize()
	f := repository.DistributorFilter{ListParams: p}
	if policy.ShopScoped(actor.Role) {
		shopID, err := actor.shop()
		if err != nil {
			return repository.Page[model.Distributor]{}, err
		}
		f.ShopID = &shopID
		if f.IsActive == nil {
			active := true
			f.IsActive = &active
		}
	}
	rows, total, err := s.store.Distributors().List(ctx, f)
	if err != nil {
		return repository.Page[model.Distributor]{}, err
	}
	return repository.NewPage(rows, total, p), nil
}

// linkedDistributor loads a distributor that supplies the actor's shop.
func (s *catalogService) linkedDistributor(ctx context.Context, tx repository.Store, actor *Actor, id uuid.UUID) (*model.Distributor, error) {
	d, err := tx.Distributors().FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "Distributor tidak ditemukan")
	}
	if !policy.ShopScoped(actor.Role) {
		return d, nil
	}
	shopID, err := actor.shop()
	if err != nil {
		return nil, err
	}
	linked, err := tx.Distributors().IsLinked(ctx, id, shopID)
	if err != nil {
		return nil, err
	}
	if !linked {
		return nil, apperror.NotFound("Distributor tidak ditemukan")
	}
	return d, nil
}

func (s *catalogService) GetDistributor(ctx context.Context, actor *Actor, id uuid.UUID) (*model.Distributor, error) {
	if err := actor.require(policy.ViewCatalog); err != nil {
		return nil, err
	}
	return s.linkedDistributor(ctx, s.store, actor, id)
}

func (s *catalogService) UpdateDistributor(ctx context.Context, actor *Actor, id uuid.UUID, req UpdateDistributorRequest) (*model.Distributor, error) {
	if err := actor.require(policy.ManageCatalog); err != nil {
		return nil, err
	}
	if err := validate(&req); err != nil {
		return nil, err
	}
	var out *model.Distributor
	err := s.store.Atomic(ctx, func(tx repository.Store) error {
		d, err := s.linkedDistributor(ctx, tx, actor, id)
		if err != nil {
			return err
		}
		if !d.IsActive {
			return apperror.NotFound("Distributor tidak ditemukan")
		}
		var diff audit.Diff
		d.Name = diff.String("name", d.Name, req.Name)
		d.Phone = diff.String("phone", d.Phone, req.Phone)
		d.Email = diff.String("email", d.Email, req.Email)
		d.EcommerceLink = diff.String("ecommerceLink", d.EcommerceLink, req.EcommerceLink)
		d.ImagePath = diff.OptionalString("imagePath", d.ImagePath, req.ImagePath)
		d.Address = diff.String("address", d.Address, req.Address)
		if diff.Empty() {
			return ErrNoChanges
		}
		if err := tx.Distributors().Save(ctx, d); err != nil {
			return err
		}
		out = d
		return record(ctx, tx, model.HistoryDistributor, d.ID, model.ActionUpdated, diff.Changes(), actor)
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *catalogService) DeactivateDistributor(ctx context.Context, actor *Actor, id uuid.UUID) error {
	if err := actor.require(policy.ManageCatalog); err != nil {
		return err
	}
	return s.store.Atomic(ctx, func(tx repository.Store) error {
		d, err := s.linkedDistributor(ctx, tx, actor, id)
		if err != nil {
			return err
		}
		if !d.IsActive {
			return apperror.NotFound("Distributor tidak ditemukan")
		}
		d.IsActive = false
		if err := tx.Distributors().Save(ctx, d); err != nil {
			return err
		}
		return record(ctx, tx, model.HistoryDistributor, d.ID, model.ActionDeactivated,
			[]audit.Change{{Field: "isActive", Old: "true", New: "false"}}, actor)
	})
}

func (s *catalogService) DistributorHistory(ctx context.Context, actor *Actor, id uuid.UUID) ([]model.HistoryResponse, error) {
	if err := actor.require(policy.ViewCatalog); err != nil {
		return nil, err
	}
	if _, err := s.linkedDistributor(ctx, s.store, actor, id); err != nil {
		return nil, err
	}
	rows, err := s.store.History().List(ctx, model.HistoryDistributor, id)
	if err != nil {
		return nil, err
	}
	return historyResponses(rows), nil
}
