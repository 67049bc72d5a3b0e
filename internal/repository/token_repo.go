package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/DimasAnjayMabar/agusplastik-backend/internal/model"
)

type tokenRepo struct {
	db *gorm.DB
}

func NewTokenRepo(db *gorm.DB) TokenRepository {
	return &tokenRepo{db}
}

func (r *tokenRepo) Create(ctx context.Context, token *model.AuthToken) error {
	return r.db.WithContext(ctx).Omit("User").Create(token).Error
}

func (r *tokenRepo) Find(ctx context.Context, token string) (*model.AuthToken, error) {
	var t model.AuthToken
	if err := r.db.WithContext(ctx).First(&t, "token = ?", token).Error; err != nil {
		return nil, translate(err)
	}
	return &t, nil
}

func (r *tokenRepo) LatestForUser(ctx context.Context, userID uuid.UUID) (*model.AuthToken, error) {
	var t model.AuthToken
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("last_active DESC").First(&t).Error
	if err != nil {
		return nil, translate(err)
	}
	return &t, nil
}

func (r *tokenRepo) Touch(ctx context.Context, token string, lastActive time.Time, expiresIn int64) error {
	return r.db.WithContext(ctx).Model(&model.AuthToken{}).
		Where("token = ?", token).
		Updates(map[string]interface{}{"last_active": lastActive, "expires_in": expiresIn}).Error
}

func (r *tokenRepo) Delete(ctx context.Context, token string) error {
	return r.db.WithContext(ctx).Delete(&model.AuthToken{}, "token = ?", token).Error
}

func (r *tokenRepo) DeleteForUser(ctx context.Context, userID uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.AuthToken{}, "user_id = ?", userID).Error
}
