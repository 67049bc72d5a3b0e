package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/DimasAnjayMabar/agusplastik-backend/internal/model"
)

type distributorRepo struct {
	db *gorm.DB
}

func NewDistributorRepo(db *gorm.DB) DistributorRepository {
	return &distributorRepo{db}
}

var distributorSortable = map[string]string{
	"":     "distributors.created_at",
	"name": "distributors.name",
}

func (r *distributorRepo) Create(ctx context.Context, d *model.Distributor) error {
	return r.db.WithContext(ctx).Create(d).Error
}

func (r *distributorRepo) Save(ctx context.Context, d *model.Distributor) error {
	return r.db.WithContext(ctx).Save(d).Error
}

func (r *distributorRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Distributor, error) {
	var d model.Distributor
	if err := r.db.WithContext(ctx).First(&d, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &d, nil
}

func (r *distributorRepo) List(ctx context.Context, f DistributorFilter) ([]model.Distributor, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.Distributor{})
	if f.ShopID != nil {
		q = q.Where("distributors.id IN (?)",
			r.db.Model(&model.DistributorShop{}).Select("distributor_id").Where("shop_id = ?", *f.ShopID))
	}
	if f.IsActive != nil {
		q = q.Where("is_active = ?", *f.IsActive)
	}
	if f.Search != "" {
		s := like(f.Search)
		q = q.Where("LOWER(name) LIKE ? ESCAPE '\\' OR LOWER(email) LIKE ? ESCAPE '\\' OR phone LIKE ? ESCAPE '\\'", s, s, s)
	}
	var rows []model.Distributor
	total, err := paginate(q, f.ListParams, distributorSortable, &rows)
	return rows, total, err
}

func (r *distributorRepo) Link(ctx context.Context, distributorID, shopID uuid.UUID) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).
		Create(&model.DistributorShop{DistributorID: distributorID, ShopID: shopID}).Error
}

func (r *distributorRepo) IsLinked(ctx context.Context, distributorID, shopID uuid.UUID) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.DistributorShop{}).
		Where("distributor_id = ? AND shop_id = ?", distributorID, shopID).
		Count(&n).Error
	return n > 0, err
}
