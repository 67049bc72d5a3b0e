package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/DimasAnjayMabar/agusplastik-backend/internal/model"
)

// Migrate creates or updates the schema and seeds reference data.
func Migrate(ctx context.Context, db *gorm.DB) error {
	db = db.WithContext(ctx)
	err := db.AutoMigrate(
		&model.Shop{},
		&model.User{},
		&model.AuthToken{},
		&model.ProductType{},
		&model.Distributor{},
		&model.DistributorShop{},
		&model.Product{},
		&model.ShopProduct{},
		&model.Customer{},
		&model.Transaction{},
		&model.TransactionDetail{},
		&model.Installment{},
		&model.StockIn{},
		&model.StockInDetail{},
		&model.StockOut{},
		&model.StockOutDetail{},
	)
	if err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	for _, subject := range model.HistorySubjects {
		if err := db.Table(subject.Table()).AutoMigrate(&model.History{}); err != nil {
			return fmt.Errorf("auto migrate %s: %w", subject.Table(), err)
		}
	}
	return NewProductTypeRepo(db).SeedDefaults(ctx)
}
