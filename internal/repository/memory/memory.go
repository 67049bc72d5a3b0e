// Package memory is an in-process Store used by unit tests and local demos.
// Atomic serializes callers and restores a snapshot when fn fails.
package memory

import (
	"context"
	"maps"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/DimasAnjayMabar/agusplastik-backend/internal/model"
	"github.com/DimasAnjayMabar/agusplastik-backend/internal/repository"
)

type stockKey struct {
	shop, product uuid.UUID
}

type data struct {
	users        map[uuid.UUID]model.User
	shops        map[uuid.UUID]model.Shop
	tokens       map[string]model.AuthToken
	products     map[uuid.UUID]model.Product
	types        map[uuid.UUID]model.ProductType
	stock        map[stockKey]int
	distributors map[uuid.UUID]model.Distributor
	links        map[stockKey]bool // distributor, shop
	customers    map[uuid.UUID]model.Customer
	transactions map[uuid.UUID]model.Transaction
	installments map[uuid.UUID]model.Installment
	stockIns     map[uuid.UUID]model.StockIn
	stockOuts    map[uuid.UUID]model.StockOut
	history      []model.History
}

func newData() *data {
	return &data{
		users:        map[uuid.UUID]model.User{},
		shops:        map[uuid.UUID]model.Shop{},
		tokens:       map[string]model.AuthToken{},
		products:     map[uuid.UUID]model.Product{},
		types:        map[uuid.UUID]model.ProductType{},
		stock:        map[stockKey]int{},
		distributors: map[uuid.UUID]model.Distributor{},
		links:        map[stockKey]bool{},
		customers:    map[uuid.UUID]model.Customer{},
		transactions: map[uuid.UUID]model.Transaction{},
		installments: map[uuid.UUID]model.Installment{},
		stockIns:     map[uuid.UUID]model.StockIn{},
		stockOuts:    map[uuid.UUID]model.StockOut{},
	}
}

// clone copies every map. Values are stored without associations and their
// slices are never mutated in place, so a shallow copy per map is enough.
func (d *data) clone() *data {
	return &data{
		users:        maps.Clone(d.users),
		shops:        maps.Clone(d.shops),
		tokens:       maps.Clone(d.tokens),
		products:     maps.Clone(d.products),
		types:        maps.Clone(d.types),
		stock:        maps.Clone(d.stock),
		distributors: maps.Clone(d.distributors),
		links:        maps.Clone(d.links),
		customers:    maps.Clone(d.customers),
		transactions: maps.Clone(d.transactions),
		installments: maps.Clone(d.installments),
		stockIns:     maps.Clone(d.stockIns),
		stockOuts:    maps.Clone(d.stockOuts),
		history:      slices.Clone(d.history),
	}
}

type state struct {
	mu   sync.RWMutex
	txMu sync.Mutex
	d    *data
	now  func() time.Time
}

type Store struct {
	st   *state
	inTx bool
}

var _ repository.Store = (*Store)(nil)

func New() *Store {
	return &Store{st: &state{d: newData(), now: time.Now}}
}

func (s *Store) Users() repository.UserRepository { return userRepo{s.st} }
func (s *Store) Shops() repository.ShopRepository { return shopRepo{s.st} }
func (s *Store) Tokens() repository.TokenRepository { return tokenRepo{s.st} }
func (s *Store) Products() repository.ProductRepository { return productRepo{s.st} }
func (s *Store) ProductTypes() repository.ProductTypeRepository { return typeRepo{s.st} }
func (s *Store) Stock() repository.StockRepository { return stockRepo{s.st} }
func (s *Store) Distributors() repository.DistributorRepository { return distributorRepo{s.st} }
func (s *Store) Customers() repository.CustomerRepository { return customerRepo{s.st} }
func (s *Store) Transactions() repository.TransactionRepository { return transactionRepo{s.st} }
func (s *Store) History() repository.HistoryRepository { return historyRepo{s.st} }

func (s *Store) Atomic(ctx context.Context, fn func(tx repository.Store) error) error {
	if s.inTx {
		return fn(s)
	}
	s.st.txMu.Lock()
	defer s.st.txMu.Unlock()

	s.st.mu.RLock()
	snapshot := s.st.d.clone()
	s.st.mu.RUnlock()

	if err := fn(&Store{st: s.st, inTx: true}); err != nil {
		s.st.mu.Lock()
		s.st.d = snapshot
		s.st.mu.Unlock()
		return err
	}
	return nil
}

// Snapshot counters used by tests to assert that failed operations wrote nothing.
type Counts struct {
	Users        int
	Shops        int
	Tokens       int
	Products     int
	ShopProducts int
	Distributors int
	Customers    int
	Transactions int
	Details      int
	Installments int
	StockIns     int
	StockOuts    int
	History      int
}

func (s *Store) Counts() Counts {
	s.st.mu.RLock()
	defer s.st.mu.RUnlock()
	d := s.st.d
	c := Counts{
		Users:        len(d.users),
		Shops:        len(d.shops),
		Tokens:       len(d.tokens),
		Products:     len(d.products),
		ShopProducts: len(d.stock),
		Distributors: len(d.distributors),
		Customers:    len(d.customers),
		Transactions: len(d.transactions),
		Installments: len(d.installments),
		StockIns:     len(d.stockIns),
		StockOuts:    len(d.stockOuts),
		History:      len(d.history),
	}
	for _, t := range d.transactions {
		c.Details += len(t.Details)
	}
	return c
}

// SetClock overrides the timestamp source for created rows.
func (s *Store) SetClock(now func() time.Time) {
	s.st.mu.Lock()
	s.st.now = now
	s.st.mu.Unlock()
}

func (st *state) stamp(b *model.BaseModel) {
	now := st.now()
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	if b.CreatedAt.IsZero() {
		b.CreatedAt = now
	}
	b.UpdatedAt = now
}

func contains(search string, fields ...string) bool {
	s := strings.ToLower(strings.TrimSpace(search))
	if s == "" {
		return true
	}
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), s) {
			return true
		}
	}
	return false
}

func activeMatches(want *bool, got bool) bool {
	return want == nil || *want == got
}

// page sorts rows with less (ascending), applies the requested direction, then slices.
func page[T any](rows []T, p repository.ListParams, less func(a, b T) bool) ([]T, int64) {
	sort.SliceStable(rows, func(i, j int) bool {
		if p.Desc() {
			return less(rows[j], rows[i])
		}
		return less(rows[i], rows[j])
	})
	total := int64(len(rows))
	start := min(p.Offset(), len(rows))
	end := min(start+p.PageSize, len(rows))
	return rows[start:end], total
}

func byCreated[T any](created func(T) time.Time) func(a, b T) bool {
	return func(a, b T) bool { return created(a).Before(created(b)) }
}

// duplicate mirrors the unique violation Postgres reports.
func duplicate(constraint string) error {
	return &pgconn.PgError{
		Code:           "23505",
		Message:        "duplicate key value violates unique constraint",
		ConstraintName: constraint,
	}
}
