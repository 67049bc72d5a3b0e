package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type PaymentMethod string

const (
	PaymentCash     PaymentMethod = "cash"
	PaymentCredit   PaymentMethod = "credit"
	PaymentTransfer PaymentMethod = "transfer"
	PaymentQRIS     PaymentMethod = "qris"
)

type TransactionStatus string

const (
	StatusPaid    TransactionStatus = "paid"
	StatusPartial TransactionStatus = "partial"
	StatusUnpaid  TransactionStatus = "unpaid"
)

// SubtotalTolerance is the accepted gap between a submitted line subtotal and sellPrice × quantity.
var SubtotalTolerance = decimal.RequireFromString("0.01")

// DeriveStatus computes the payment status. Only credit sales can be partial or unpaid.
func DeriveStatus(payment PaymentMethod, paid, total decimal.Decimal) TransactionStatus {
	if payment != PaymentCredit || paid.GreaterThanOrEqual(total) {
		return StatusPaid
	}
	if paid.IsPositive() {
		return StatusPartial
	}
	return StatusUnpaid
}

type Transaction struct {
	BaseModel
	Invoice      string              `gorm:"type:varchar(40);uniqueIndex;not null" json:"invoice"`
	ShopID       uuid.UUID           `gorm:"type:uuid;index;not null" json:"shopId"`
	CustomerID   *uuid.UUID          `gorm:"type:uuid;index" json:"customerId"`
	Customer     *Customer           `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
	TotalAmount  decimal.Decimal     `gorm:"type:numeric(14,2);not null" json:"totalAmount"`
	PaidAmount   decimal.Decimal     `gorm:"type:numeric(14,2);not null" json:"paidAmount"`
	Status       TransactionStatus   `gorm:"type:varchar(10);index;not null" json:"status"`
	Payment      PaymentMethod       `gorm:"type:varchar(10);not null" json:"payment"`
	DiscountID   *uuid.UUID          `gorm:"type:uuid" json:"discountId,omitempty"`
	CreatedByID  uuid.UUID           `gorm:"type:uuid;not null" json:"createdBy"`
	CreatedBy    *User               `gorm:"foreignKey:CreatedByID" json:"cashier,omitempty"`
	Details      []TransactionDetail `json:"details,omitempty"`
	Installments []Installment       `json:"installments,omitempty"`
}

// Outstanding is what remains to be paid.
func (t *Transaction) Outstanding() decimal.Decimal {
	rest := t.TotalAmount.Sub(t.PaidAmount)
	if rest.IsNegative() {
		return decimal.Zero
	}
	return rest
}

type TransactionDetail struct {
	BaseModel
	TransactionID uuid.UUID       `gorm:"type:uuid;index;not null" json:"transactionId"`
	ProductID     uuid.UUID       `gorm:"type:uuid;index;not null" json:"productId"`
	Product       *Product        `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	Quantity      int             `gorm:"not null" json:"quantity"`
	Subtotal      decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"subtotal"`
	DiscountID    *uuid.UUID      `gorm:"type:uuid" json:"discountId,omitempty"`
}

const InitialInstallmentNote = "Pembayaran awal"

type Installment struct {
	BaseModel
	TransactionID uuid.UUID       `gorm:"type:uuid;index;not null" json:"transactionId"`
	AmountPaid    decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"amountPaid"`
	Method        PaymentMethod   `gorm:"type:varchar(10);not null" json:"method"`
	PaidAt        time.Time       `gorm:"not null" json:"paidAt"`
	Note          string          `gorm:"type:text" json:"note"`
	CreatedByID   uuid.UUID       `gorm:"type:uuid;not null" json:"createdBy"`
}
