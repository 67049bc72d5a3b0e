package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/DimasAnjayMabar/agusplastik-backend/internal/model"
)

type productRepo struct {
	db *gorm.DB
}

func NewProductRepo(db *gorm.DB) ProductRepository {
	return &productRepo{db}
}

var productSortable = map[string]string{
	"":          "products.created_at",
	"name":      "products.name",
	"sellPrice": "products.sell_price",
	"buyPrice":  "products.buy_price",
	"stock":     "shop_products.stock",
}

func (r *productRepo) Create(ctx context.Context, product *model.Product) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(product).Error
}

func (r *productRepo) Save(ctx context.Context, product *model.Product) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(product).Error
}

func (r *productRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	var product model.Product
	err := r.db.WithContext(ctx).Preload("Type").Preload("Distributor").First(&product, "id = ?", id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &product, nil
}

func (r *productRepo) FindMatch(ctx context.Context, name string, typeID uuid.UUID, distributorID *uuid.UUID) (*model.Product, error) {
	q := r.db.WithContext(ctx).Where("name = ? AND type_id = ? AND is_active = ?", name, typeID, true)
	if distributorID == nil {
		q = q.Where("distributor_id IS NULL")
	} else {
		q = q.Where("distributor_id = ?", *distributorID)
	}
	var product model.Product
	if err := q.Order("created_at ASC").First(&product).Error; err != nil {
		return nil, translate(err)
	}
	return &product, nil
}

func (r *productRepo) BarcodeExists(ctx context.Context, barcode string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Product{}).Where("barcode = ?", barcode).Count(&n).Error
	return n > 0, err
}

func (r *productRepo) ListStocked(ctx context.Context, f ProductFilter) ([]model.StockedProduct, int64, error) {
	q := r.db.WithContext(ctx).
		Table("shop_products").
		Select("products.*, shop_products.stock AS stock").
		Joins("JOIN products ON products.id = shop_products.product_id").
		Where("shop_products.shop_id = ?", f.ShopID)
	if f.IsActive != nil {
		q = q.Where("products.is_active = ?", *f.IsActive)
	}
	if f.TypeID != nil {
		q = q.Where("products.type_id = ?", *f.TypeID)
	}
	if f.DistributorID != nil {
		q = q.Where("products.distributor_id = ?", *f.DistributorID)
	}
	if f.MinPrice != nil {
		q = q.Where("products.sell_price >= ?", *f.MinPrice)
	}
	if f.MaxPrice != nil {
		q = q.Where("products.sell_price <= ?", *f.MaxPrice)
	}
	if f.MinStock != nil {
		q = q.Where("shop_products.stock >= ?", *f.MinStock)
	}
	if f.MaxStock != nil {
		q = q.Where("shop_products.stock <= ?", *f.MaxStock)
	}
	if f.Search != "" {
		s := like(f.Search)
		q = q.Where("LOWER(products.name) LIKE ? ESCAPE '\\' OR products.barcode LIKE ? ESCAPE '\\'", s, s)
	}
	var rows []model.StockedProduct
	total, err := paginate(q, f.ListParams, productSortable, &rows, "Type", "Distributor")
	return rows, total, err
}
