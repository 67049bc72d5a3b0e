package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/DimasAnjayMabar/agusplastik-backend/internal/audit"
)

// HistorySubject selects the per-entity history table.
type HistorySubject string

const (
	HistoryUser        HistorySubject = "user"
	HistoryShop        HistorySubject = "shop"
	HistoryProduct     HistorySubject = "product"
	HistoryDistributor HistorySubject = "distributor"
	HistoryCustomer    HistorySubject = "customer"
)

var HistorySubjects = []HistorySubject{HistoryUser, HistoryShop, HistoryProduct, HistoryDistributor, HistoryCustomer}

func (s HistorySubject) Table() string {
	return string(s) + "_histories"
}

const (
	ActionCreated     = "Data dibuat"
	ActionUpdated     = "Data diperbarui"
	ActionDeactivated = "Data dinonaktifkan"
	ActionTransferred = "Dipindahkan"
	ActionPriceChange = "Harga diperbarui dari penerimaan barang"
	ActionPassword    = "Password diubah"
)

// History is an append-only audit row. The same shape backs every *_histories table.
type History struct {
	ID        uuid.UUID                         `gorm:"type:uuid;primary_key;" json:"id"`
	Subject   HistorySubject                    `gorm:"-" json:"subject"`
	SubjectID uuid.UUID                         `gorm:"type:uuid;index;not null" json:"subjectId"`
	Action    string                            `gorm:"type:varchar(100);not null" json:"action"`
	Changes   datatypes.JSONSlice[audit.Change] `gorm:"type:jsonb" json:"changes"`
	ActorID   *uuid.UUID                        `gorm:"type:uuid" json:"actorId"`
	CreatedAt time.Time                         `gorm:"index" json:"createdAt"`
}

func NewHistory(subject HistorySubject, subjectID uuid.UUID, action string, changes []audit.Change, actor *uuid.UUID) *History {
	return &History{
		ID:        uuid.New(),
		Subject:   subject,
		SubjectID: subjectID,
		Action:    action,
		Changes:   changes,
		ActorID:   actor,
	}
}

// Description renders the audit row for display.
func (h *History) Description() string {
	return audit.Render(h.Action, h.Changes)
}

type HistoryResponse struct {
	ID          uuid.UUID      `json:"id"`
	Action      string         `json:"action"`
	Description string         `json:"description"`
	Changes     []audit.Change `json:"changes"`
	ActorID     *uuid.UUID     `json:"actorId"`
	CreatedAt   time.Time      `json:"createdAt"`
}

func (h *History) ToResponse() HistoryResponse {
	return HistoryResponse{
		ID:          h.ID,
		Action:      h.Action,
		Description: h.Description(),
		Changes:     h.Changes,
		ActorID:     h.ActorID,
		CreatedAt:   h.CreatedAt,
	}
}
