package repository

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"
)

type gormStore struct {
	db *gorm.DB
}

// NewStore wraps the connection pool opened in main.
func NewStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) Users() UserRepository { return NewUserRepo(s.db) }
func (s *gormStore) Shops() ShopRepository { return NewShopRepo(s.db) }
func (s *gormStore) Tokens() TokenRepository { return NewTokenRepo(s.db) }
func (s *gormStore) Products() ProductRepository { return NewProductRepo(s.db) }
func (s *gormStore) ProductTypes() ProductTypeRepository { return NewProductTypeRepo(s.db) }
func (s *gormStore) Stock() StockRepository { return NewStockRepo(s.db) }
func (s *gormStore) Distributors() DistributorRepository { return NewDistributorRepo(s.db) }
func (s *gormStore) Customers() CustomerRepository { return NewCustomerRepo(s.db) }
func (s *gormStore) Transactions() TransactionRepository { return NewTransactionRepo(s.db) }
func (s *gormStore) History() HistoryRepository { return NewHistoryRepo(s.db) }

func (s *gormStore) Atomic(ctx context.Context, fn func(tx Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormStore{db: tx})
	})
}

func translate(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// like builds a contains pattern for LIKE ... ESCAPE '\'. Wildcards typed by the
// user match literally.
func like(search string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(strings.TrimSpace(search))) + "%"
}

// paginate counts and fetches one page. sortable maps API sort keys to columns,
// the "" entry being the default.
func paginate(q *gorm.DB, p ListParams, sortable map[string]string, dest any, preloads ...string) (int64, error) {
	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return 0, err
	}
	col, ok := sortable[p.SortBy]
	if !ok {
		col = sortable[""]
	}
	dir := " ASC"
	if p.Desc() {
		dir = " DESC"
	}
	find := q.Session(&gorm.Session{}).Order(col + dir).Offset(p.Offset()).Limit(p.PageSize)
	for _, pre := range preloads {
		find = find.Preload(pre)
	}
	return total, find.Find(dest).Error
}
