package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/DimasAnjayMabar/agusplastik-backend/internal/model"
)

type historyRepo struct {
	db *gorm.DB
}

func NewHistoryRepo(db *gorm.DB) HistoryRepository {
	return &historyRepo{db}
}

// Append writes into the subject's own table. History rows are never updated.
func (r *historyRepo) Append(ctx context.Context, h *model.History) error {
	if h.ID == uuid.Nil {
		h.ID = uuid.New()
	}
	if h.CreatedAt.IsZero() {
		h.CreatedAt = time.Now()
	}
	return r.db.WithContext(ctx).Table(h.Subject.Table()).Create(h).Error
}

func (r *historyRepo) List(ctx context.Context, subject model.HistorySubject, subjectID uuid.UUID) ([]model.History, error) {
	var rows []model.History
	err := r.db.WithContext(ctx).Table(subject.Table()).
		Where("subject_id = ?", subjectID).
		Order("created_at DESC").
		Find(&rows).Error
	for i := range rows {
		rows[i].Subject = subject
	}
	return rows, err
}
