package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/DimasAnjayMabar/agusplastik-backend/internal/model"
)

var (
	ErrNotFound          = errors.New("record not found")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrOverpayment       = errors.New("payment exceeds outstanding balance")
)

// Store is the explicit storage handle threaded through every service.
// Atomic runs fn against a Store bound to one database transaction:
// every write inside commits together or none do.
type Store interface {
	Users() UserRepository
	Shops() ShopRepository
	Tokens() TokenRepository
	Products() ProductRepository
	ProductTypes() ProductTypeRepository
	Stock() StockRepository
	Distributors() DistributorRepository
	Customers() CustomerRepository
	Transactions() TransactionRepository
	History() HistoryRepository
	Atomic(ctx context.Context, fn func(tx Store) error) error
}

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

type ListParams struct {
	Search    string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
	IsActive  *bool
}

func (p ListParams) Normalize() ListParams {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 {
		p.PageSize = DefaultPageSize
	}
	if p.PageSize > MaxPageSize {
		p.PageSize = MaxPageSize
	}
	return p
}

func (p ListParams) Offset() int { return (p.Page - 1) * p.PageSize }

// Desc defaults to newest first when the caller gives no ordering.
func (p ListParams) Desc() bool {
	if p.SortOrder == "" {
		return p.SortBy == ""
	}
	return p.SortOrder == "desc" || p.SortOrder == "DESC"
}

type Page[T any] struct {
	Items    []T   `json:"items"`
	Total    int64 `json:"total"`
	Page     int   `json:"page"`
	PageSize int   `json:"pageSize"`
}

func NewPage[T any](items []T, total int64, p ListParams) Page[T] {
	if items == nil {
		items = []T{}
	}
	return Page[T]{Items: items, Total: total, Page: p.Page, PageSize: p.PageSize}
}

type UserFilter struct {
	ListParams
	Roles  []model.Role
	ShopID *uuid.UUID
}

type ProductFilter struct {
	ListParams
	ShopID        uuid.UUID
	TypeID        *uuid.UUID
	DistributorID *uuid.UUID
	MinPrice      *decimal.Decimal
	MaxPrice      *decimal.Decimal
	MinStock      *int
	MaxStock      *int
}

type DistributorFilter struct {
	ListParams
	ShopID *uuid.UUID
}

type CustomerFilter struct {
	ListParams
	ShopID uuid.UUID
}

type TransactionFilter struct {
	ListParams
	ShopID     uuid.UUID
	Status     model.TransactionStatus
	Payment    model.PaymentMethod
	CustomerID *uuid.UUID
	From       *time.Time
	To         *time.Time
}

type StockInFilter struct {
	ListParams
	ShopID        uuid.UUID
	DistributorID *uuid.UUID
	From          *time.Time
	To            *time.Time
}

// StockMovementData untuk chart data
type StockMovementData struct {
	Date     string `json:"date"`
	Inbound  int    `json:"inbound"`
	Outbound int    `json:"outbound"`
}

// DashboardStats untuk overview stats
type DashboardStats struct {
	TotalProducts  int64           `json:"totalProducts"`
	LowStockCount  int64           `json:"lowStockCount"`
	TotalValuation decimal.Decimal `json:"totalValuation"`
}

type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	Save(ctx context.Context, user *model.User) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]model.User, error)
	FindByUsername(ctx context.Context, username string) (*model.User, error)
	List(ctx context.Context, f UserFilter) ([]model.User, int64, error)
	CountActiveStaff(ctx context.Context, shopID uuid.UUID) (int64, error)
	ExistsActive(ctx context.Context, role model.Role) (bool, error)
	UpdatePassword(ctx context.Context, id uuid.UUID, hashedPassword string) error
}

type ShopRepository interface {
	Create(ctx context.Context, shop *model.Shop) error
	Save(ctx context.Context, shop *model.Shop) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Shop, error)
	FindByAdmin(ctx context.Context, adminID uuid.UUID) (*model.Shop, error)
	List(ctx context.Context, p ListParams) ([]model.Shop, int64, error)
}

type TokenRepository interface {
	Create(ctx context.Context, token *model.AuthToken) error
	Find(ctx context.Context, token string) (*model.AuthToken, error)
	LatestForUser(ctx context.Context, userID uuid.UUID) (*model.AuthToken, error)
	Touch(ctx context.Context, token string, lastActive time.Time, expiresIn int64) error
	Delete(ctx context.Context, token string) error
	DeleteForUser(ctx context.Context, userID uuid.UUID) error
}

type ProductRepository interface {
	Create(ctx context.Context, product *model.Product) error
	Save(ctx context.Context, product *model.Product) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Product, error)
	// FindMatch looks up an active product by name, type and distributor (nil means unsourced).
	FindMatch(ctx context.Context, name string, typeID uuid.UUID, distributorID *uuid.UUID) (*model.Product, error)
	BarcodeExists(ctx context.Context, barcode string) (bool, error)
	ListStocked(ctx context.Context, f ProductFilter) ([]model.StockedProduct, int64, error)
}

type ProductTypeRepository interface {
	FindAll(ctx context.Context) ([]model.ProductType, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.ProductType, error)
	Create(ctx context.Context, t *model.ProductType) error
	SeedDefaults(ctx context.Context) error
}

type StockRepository interface {
	Find(ctx context.Context, shopID, productID uuid.UUID) (*model.ShopProduct, error)
	// Increment adds qty, creating the (shop, product) row when missing.
	Increment(ctx context.Context, shopID, productID uuid.UUID, qty int) error
	// Decrement subtracts qty only when enough stock remains, else ErrInsufficientStock.
	Decrement(ctx context.Context, shopID, productID uuid.UUID, qty int) error
	CreateStockIn(ctx context.Context, in *model.StockIn) error
	FindStockIn(ctx context.Context, id uuid.UUID) (*model.StockIn, error)
	ListStockIn(ctx context.Context, f StockInFilter) ([]model.StockIn, int64, error)
	CreateStockOut(ctx context.Context, out *model.StockOut) error
	Movement(ctx context.Context, shopID uuid.UUID, from, to time.Time) ([]StockMovementData, error)
	Stats(ctx context.Context, shopID uuid.UUID, lowStock int) (*DashboardStats, error)
}

type DistributorRepository interface {
	Create(ctx context.Context, d *model.Distributor) error
	Save(ctx context.Context, d *model.Distributor) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Distributor, error)
	List(ctx context.Context, f DistributorFilter) ([]model.Distributor, int64, error)
	Link(ctx context.Context, distributorID, shopID uuid.UUID) error
	IsLinked(ctx context.Context, distributorID, shopID uuid.UUID) (bool, error)
}

type CustomerRepository interface {
	Create(ctx context.Context, c *model.Customer) error
	Save(ctx context.Context, c *model.Customer) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Customer, error)
	List(ctx context.Context, f CustomerFilter) ([]model.Customer, int64, error)
}

type TransactionRepository interface {
	Create(ctx context.Context, tx *model.Transaction) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Transaction, error)
	List(ctx context.Context, f TransactionFilter) ([]model.Transaction, int64, error)
	// ApplyPayment adds amount to a credit sale and recomputes its status,
	// failing with ErrOverpayment when the result would exceed the total.
	ApplyPayment(ctx context.Context, id uuid.UUID, amount decimal.Decimal) error
	CreateInstallment(ctx context.Context, inst *model.Installment) error
}

type HistoryRepository interface {
	Append(ctx context.Context, h *model.History) error
	List(ctx context.Context, subject model.HistorySubject, subjectID uuid.UUID) ([]model.History, error)
}
