package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	StockInReason = "Pembelian Produk Baru"
	// StockOutReasonPrefix is followed by the sales invoice.
	StockOutReasonPrefix = "Penjualan - "
)

// StockIn is one receiving event from a distributor (or unsourced when DistributorID is nil).
type StockIn struct {
	BaseModel
	Invoice       string          `gorm:"type:varchar(40);uniqueIndex;not null" json:"invoice"`
	ShopID        uuid.UUID       `gorm:"type:uuid;index;not null" json:"shopId"`
	DistributorID *uuid.UUID      `gorm:"type:uuid;index" json:"distributorId"`
	Distributor   *Distributor    `gorm:"foreignKey:DistributorID" json:"distributor,omitempty"`
	InvoiceDate   time.Time       `gorm:"not null;index" json:"invoiceDate"`
	Reason        string          `gorm:"type:varchar(255)" json:"reason"`
	TotalAmount   decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"totalAmount"`
	CreatedByID   uuid.UUID       `gorm:"type:uuid;not null" json:"createdBy"`
	Details       []StockInDetail `json:"details,omitempty"`
}

type StockInDetail struct {
	BaseModel
	StockInID uuid.UUID       `gorm:"type:uuid;index;not null" json:"stockInId"`
	ProductID uuid.UUID       `gorm:"type:uuid;index;not null" json:"productId"`
	Product   *Product        `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	Quantity  int             `gorm:"not null" json:"quantity"`
	Subtotal  decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"subtotal"`
	BuyPrice  decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"buyPrice"`
	SellPrice decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"sellPrice"`
}

// StockOut mirrors a sales transaction for inventory bookkeeping.
type StockOut struct {
	BaseModel
	Invoice       string           `gorm:"type:varchar(40);uniqueIndex;not null" json:"invoice"`
	ShopID        uuid.UUID        `gorm:"type:uuid;index;not null" json:"shopId"`
	TransactionID uuid.UUID        `gorm:"type:uuid;uniqueIndex;not null" json:"transactionId"`
	Reason        string           `gorm:"type:varchar(255)" json:"reason"`
	CreatedByID   uuid.UUID        `gorm:"type:uuid;not null" json:"createdBy"`
	Details       []StockOutDetail `json:"details,omitempty"`
}

type StockOutDetail struct {
	BaseModel
	StockOutID uuid.UUID       `gorm:"type:uuid;index;not null" json:"stockOutId"`
	ProductID  uuid.UUID       `gorm:"type:uuid;index;not null" json:"productId"`
	Quantity   int             `gorm:"not null" json:"quantity"`
	Subtotal   decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"subtotal"`
}
