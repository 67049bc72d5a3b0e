package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/DimasAnjayMabar/agusplastik-backend/internal/model"
)

type transactionRepo struct {
	db *gorm.DB
}

func NewTransactionRepo(db *gorm.DB) TransactionRepository {
	return &transactionRepo{db}
}

var transactionSortable = map[string]string{
	"":            "transactions.created_at",
	"totalAmount": "transactions.total_amount",
	"invoice":     "transactions.invoice",
}

// Create inserts the header together with its Details.
func (r *transactionRepo) Create(ctx context.Context, tx *model.Transaction) error {
	return r.db.WithContext(ctx).Omit("Customer", "CreatedBy", "Installments").Create(tx).Error
}

func (r *transactionRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Transaction, error) {
	var t model.Transaction
	err := r.db.WithContext(ctx).
		Preload("Customer").
		Preload("CreatedBy").
		Preload("Details").
		Preload("Details.Product").
		Preload("Installments", func(db *gorm.DB) *gorm.DB { return db.Order("paid_at ASC") }).
		First(&t, "id = ?", id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &t, nil
}

func (r *transactionRepo) List(ctx context.Context, f TransactionFilter) ([]model.Transaction, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.Transaction{}).Where("shop_id = ?", f.ShopID)
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.Payment != "" {
		q = q.Where("payment = ?", f.Payment)
	}
	if f.CustomerID != nil {
		q = q.Where("customer_id = ?", *f.CustomerID)
	}
	if f.From != nil {
		q = q.Where("created_at >= ?", *f.From)
	}
	if f.To != nil {
		q = q.Where("created_at <= ?", *f.To)
	}
	if f.Search != "" {
		q = q.Where("LOWER(invoice) LIKE ? ESCAPE '\\'", like(f.Search))
	}
	var rows []model.Transaction
	total, err := paginate(q, f.ListParams, transactionSortable, &rows, "Customer")
	return rows, total, err
}

func (r *transactionRepo) ApplyPayment(ctx context.Context, id uuid.UUID, amount decimal.Decimal) error {
	res := r.db.WithContext(ctx).Model(&model.Transaction{}).
		Where("id = ? AND payment = ? AND paid_amount + ? <= total_amount", id, model.PaymentCredit, amount).
		Updates(map[string]interface{}{
			"paid_amount": gorm.Expr("paid_amount + ?", amount),
			"status": gorm.Expr("CASE WHEN paid_amount + ? >= total_amount THEN ? WHEN paid_amount + ? > 0 THEN ? ELSE ? END",
				amount, model.StatusPaid, amount, model.StatusPartial, model.StatusUnpaid),
			"updated_at": time.Now(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrOverpayment
	}
	return nil
}

func (r *transactionRepo) CreateInstallment(ctx context.Context, inst *model.Installment) error {
	return r.db.WithContext(ctx).Create(inst).Error
}
