package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/DimasAnjayMabar/agusplastik-backend/internal/model"
)

type stockRepo struct {
	db *gorm.DB
}

func NewStockRepo(db *gorm.DB) StockRepository {
	return &stockRepo{db}
}

var stockInSortable = map[string]string{
	"":            "stock_ins.created_at",
	"invoiceDate": "stock_ins.invoice_date",
	"totalAmount": "stock_ins.total_amount",
}

func (r *stockRepo) Find(ctx context.Context, shopID, productID uuid.UUID) (*model.ShopProduct, error) {
	var sp model.ShopProduct
	err := r.db.WithContext(ctx).Preload("Product").
		First(&sp, "shop_id = ? AND product_id = ?", shopID, productID).Error
	if err != nil {
		return nil, translate(err)
	}
	return &sp, nil
}

func (r *stockRepo) Increment(ctx context.Context, shopID, productID uuid.UUID, qty int) error {
	row := model.ShopProduct{ShopID: shopID, ProductID: productID, Stock: qty}
	return r.db.WithContext(ctx).Omit("Product").Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "shop_id"}, {Name: "product_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{"stock": gorm.Expr("shop_products.stock + EXCLUDED.stock")}),
	}).Create(&row).Error
}

// Decrement is a single conditional UPDATE so concurrent sales cannot oversell.
func (r *stockRepo) Decrement(ctx context.Context, shopID, productID uuid.UUID, qty int) error {
	res := r.db.WithContext(ctx).Model(&model.ShopProduct{}).
		Where("shop_id = ? AND product_id = ? AND stock >= ?", shopID, productID, qty).
		UpdateColumn("stock", gorm.Expr("stock - ?", qty))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrInsufficientStock
	}
	return nil
}

func (r *stockRepo) CreateStockIn(ctx context.Context, in *model.StockIn) error {
	return r.db.WithContext(ctx).Omit("Distributor").Create(in).Error
}

func (r *stockRepo) FindStockIn(ctx context.Context, id uuid.UUID) (*model.StockIn, error) {
	var in model.StockIn
	err := r.db.WithContext(ctx).
		Preload("Distributor").
		Preload("Details").
		Preload("Details.Product").
		First(&in, "id = ?", id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &in, nil
}

func (r *stockRepo) ListStockIn(ctx context.Context, f StockInFilter) ([]model.StockIn, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.StockIn{}).Where("shop_id = ?", f.ShopID)
	if f.DistributorID != nil {
		q = q.Where("distributor_id = ?", *f.DistributorID)
	}
	if f.From != nil {
		q = q.Where("invoice_date >= ?", *f.From)
	}
	if f.To != nil {
		q = q.Where("invoice_date <= ?", *f.To)
	}
	if f.Search != "" {
		q = q.Where("LOWER(invoice) LIKE ? ESCAPE '\\'", like(f.Search))
	}
	var rows []model.StockIn
	total, err := paginate(q, f.ListParams, stockInSortable, &rows, "Distributor")
	return rows, total, err
}

func (r *stockRepo) CreateStockOut(ctx context.Context, out *model.StockOut) error {
	return r.db.WithContext(ctx).Create(out).Error
}

func (r *stockRepo) Movement(ctx context.Context, shopID uuid.UUID, from, to time.Time) ([]StockMovementData, error) {
	var results []StockMovementData

	// Query untuk aggregate pergerakan stok per hari
	err := r.db.WithContext(ctx).Raw(`
		SELECT to_char(day, 'YYYY-MM-DD') AS date,
			COALESCE(SUM(inbound), 0) AS inbound,
			COALESCE(SUM(outbound), 0) AS outbound
		FROM (
			SELECT DATE(si.created_at) AS day, d.quantity AS inbound, 0 AS outbound
			FROM stock_in_details d JOIN stock_ins si ON si.id = d.stock_in_id
			WHERE si.shop_id = ? AND si.created_at BETWEEN ? AND ?
			UNION ALL
			SELECT DATE(so.created_at) AS day, 0 AS inbound, d.quantity AS outbound
			FROM stock_out_details d JOIN stock_outs so ON so.id = d.stock_out_id
			WHERE so.shop_id = ? AND so.created_at BETWEEN ? AND ?
		) m
		GROUP BY day
		ORDER BY day ASC`,
		shopID, from, to, shopID, from, to,
	).Scan(&results).Error
	return results, err
}

func (r *stockRepo) Stats(ctx context.Context, shopID uuid.UUID, lowStock int) (*DashboardStats, error) {
	var stats DashboardStats
	base := func() *gorm.DB {
		return r.db.WithContext(ctx).Table("shop_products").
			Joins("JOIN products ON products.id = shop_products.product_id").
			Where("shop_products.shop_id = ? AND products.is_active = ?", shopID, true)
	}

	if err := base().Count(&stats.TotalProducts).Error; err != nil {
		return nil, err
	}
	if err := base().Where("shop_products.stock < ?", lowStock).Count(&stats.LowStockCount).Error; err != nil {
		return nil, err
	}
	if err := base().Select("COALESCE(SUM(shop_products.stock * products.buy_price), 0)").Scan(&stats.TotalValuation).Error; err != nil {
		return nil, err
	}
	return &stats, nil
}
