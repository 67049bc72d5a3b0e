package model

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type ProductType struct {
	BaseModel
	Name string `gorm:"type:varchar(100);uniqueIndex;not null" json:"name"`
}

// DefaultProductTypes are seeded on startup when missing.
var DefaultProductTypes = []string{"Umum", "Plastik", "Peralatan Rumah Tangga", "Kemasan"}

// Product is shop agnostic. Per shop stock lives in ShopProduct.
type Product struct {
	BaseModel
	Name          string          `gorm:"type:varchar(255);not null;index" json:"name"`
	BuyPrice      decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"buyPrice"`
	SellPrice     decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"sellPrice"`
	Barcode       string          `gorm:"type:varchar(32);uniqueIndex;not null" json:"barcode"`
	TypeID        uuid.UUID       `gorm:"type:uuid;not null;index" json:"typeId"`
	Type          *ProductType    `gorm:"foreignKey:TypeID" json:"type,omitempty"`
	DistributorID *uuid.UUID      `gorm:"type:uuid;index" json:"distributorId"`
	Distributor   *Distributor    `gorm:"foreignKey:DistributorID" json:"distributor,omitempty"`
	ImagePath     *string         `gorm:"type:varchar(255)" json:"imagePath,omitempty"`
	IsActive      bool            `gorm:"default:true" json:"isActive"`
}

// ShopProduct holds the stock counter of one product at one shop.
type ShopProduct struct {
	ShopID    uuid.UUID `gorm:"type:uuid;primaryKey" json:"shopId"`
	ProductID uuid.UUID `gorm:"type:uuid;primaryKey" json:"productId"`
	Product   *Product  `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	Stock     int       `gorm:"not null;default:0;check:stock >= 0" json:"stock"`
}

// StockedProduct is the listing shape: a product together with its stock at the caller's shop.
type StockedProduct struct {
	Product
	Stock int `json:"stock"`
}

// PricesFromSubtotal derives the unit buy price and the sell price for a received batch.
func PricesFromSubtotal(subtotal decimal.Decimal, qty int, profitPercent decimal.Decimal) (buy, sell decimal.Decimal) {
	buy = subtotal.Div(decimal.NewFromInt(int64(qty))).Round(2)
	sell = buy.Mul(decimal.NewFromInt(1).Add(profitPercent.Div(decimal.NewFromInt(100)))).Round(2)
	return buy, sell
}
