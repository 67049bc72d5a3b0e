package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/DimasAnjayMabar/agusplastik-backend/internal/model"
)

type productTypeRepo struct {
	db *gorm.DB
}

func NewProductTypeRepo(db *gorm.DB) ProductTypeRepository {
	return &productTypeRepo{db: db}
}

func (r *productTypeRepo) FindAll(ctx context.Context) ([]model.ProductType, error) {
	var types []model.ProductType
	err := r.db.WithContext(ctx).Order("name ASC").Find(&types).Error
	return types, err
}

func (r *productTypeRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.ProductType, error) {
	var t model.ProductType
	if err := r.db.WithContext(ctx).First(&t, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &t, nil
}

func (r *productTypeRepo) Create(ctx context.Context, t *model.ProductType) error {
	return r.db.WithContext(ctx).Create(t).Error
}

func (r *productTypeRepo) SeedDefaults(ctx context.Context) error {
	for _, name := range model.DefaultProductTypes {
		var existing model.ProductType
		err := r.db.WithContext(ctx).Where("name = ?", name).First(&existing).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Type doesn't exist, create it
			if err := r.db.WithContext(ctx).Create(&model.ProductType{Name: name}).Error; err != nil {
				return err
			}
		} else if err != nil {
			return err
		}
	}
	return nil
}
