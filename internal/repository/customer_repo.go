package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/DimasAnjayMabar/agusplastik-backend/internal/model"
)

type customerRepo struct {
	db *gorm.DB
}

func NewCustomerRepo(db *gorm.DB) CustomerRepository {
	return &customerRepo{db}
}

var customerSortable = map[string]string{
	"":     "customers.created_at",
	"name": "customers.name",
}

func (r *customerRepo) Create(ctx context.Context, c *model.Customer) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *customerRepo) Save(ctx context.Context, c *model.Customer) error {
	return r.db.WithContext(ctx).Save(c).Error
}

func (r *customerRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Customer, error) {
	var c model.Customer
	if err := r.db.WithContext(ctx).First(&c, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &c, nil
}

func (r *customerRepo) List(ctx context.Context, f CustomerFilter) ([]model.Customer, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.Customer{}).Where("shop_id = ?", f.ShopID)
	if f.IsActive != nil {
		q = q.Where("is_active = ?", *f.IsActive)
	}
	if f.Search != "" {
		s := like(f.Search)
		q = q.Where("LOWER(name) LIKE ? ESCAPE '\\' OR nik LIKE ? ESCAPE '\\' OR phone LIKE ? ESCAPE '\\'", s, s, s)
	}
	var rows []model.Customer
	total, err := paginate(q, f.ListParams, customerSortable, &rows)
	return rows, total, err
}
