package model

import "github.com/google/uuid"

type Distributor struct {
	BaseModel
	Name          string  `gorm:"type:varchar(255);not null" json:"name"`
	Phone         string  `gorm:"type:varchar(20)" json:"phone"`
	Email         string  `gorm:"type:varchar(255)" json:"email"`
	EcommerceLink string  `gorm:"type:varchar(255)" json:"ecommerceLink"`
	ImagePath     *string `gorm:"type:varchar(255)" json:"imagePath,omitempty"`
	Address       string  `gorm:"type:text" json:"address"`
	IsActive      bool    `gorm:"default:true" json:"isActive"`
}

// DistributorShop links a distributor to every shop it supplies.
type DistributorShop struct {
	DistributorID uuid.UUID `gorm:"type:uuid;primaryKey" json:"distributorId"`
	ShopID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"shopId"`
}
