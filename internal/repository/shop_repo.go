package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/DimasAnjayMabar/agusplastik-backend/internal/model"
)

type shopRepo struct {
	db *gorm.DB
}

func NewShopRepo(db *gorm.DB) ShopRepository {
	return &shopRepo{db}
}

var shopSortable = map[string]string{
	"":        "shops.created_at",
	"name":    "shops.name",
	"address": "shops.address",
}

func (r *shopRepo) Create(ctx context.Context, shop *model.Shop) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(shop).Error
}

func (r *shopRepo) Save(ctx context.Context, shop *model.Shop) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(shop).Error
}

func (r *shopRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Shop, error) {
	var shop model.Shop
	if err := r.db.WithContext(ctx).First(&shop, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	shops := []model.Shop{shop}
	if err := r.loadAdmins(ctx, shops); err != nil {
		return nil, err
	}
	return &shops[0], nil
}

func (r *shopRepo) FindByAdmin(ctx context.Context, adminID uuid.UUID) (*model.Shop, error) {
	var shop model.Shop
	if err := r.db.WithContext(ctx).First(&shop, "admin_id = ?", adminID).Error; err != nil {
		return nil, translate(err)
	}
	return &shop, nil
}

func (r *shopRepo) List(ctx context.Context, p ListParams) ([]model.Shop, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.Shop{})
	if p.IsActive != nil {
		q = q.Where("is_active = ?", *p.IsActive)
	}
	if p.Search != "" {
		s := like(p.Search)
		q = q.Where("LOWER(name) LIKE ? ESCAPE '\\' OR LOWER(address) LIKE ? ESCAPE '\\'", s, s)
	}
	var shops []model.Shop
	total, err := paginate(q, p, shopSortable, &shops)
	if err != nil {
		return nil, 0, err
	}
	return shops, total, r.loadAdmins(ctx, shops)
}

func (r *shopRepo) loadAdmins(ctx context.Context, shops []model.Shop) error {
	ids := make([]uuid.UUID, 0, len(shops))
	for _, s := range shops {
		if s.AdminID != nil {
			ids = append(ids, *s.AdminID)
		}
	}
	if len(ids) == 0 {
		return nil
	}
	var admins []model.User
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&admins).Error; err != nil {
		return err
	}
	byID := make(map[uuid.UUID]*model.User, len(admins))
	for i := range admins {
		byID[admins[i].ID] = &admins[i]
	}
	for i := range shops {
		if shops[i].AdminID != nil {
			shops[i].Admin = byID[*shops[i].AdminID]
		}
	}
	return nil
}
