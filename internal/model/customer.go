package model

import "github.com/google/uuid"

type Customer struct {
	BaseModel
	ShopID   uuid.UUID `gorm:"type:uuid;index;not null" json:"shopId"`
	Name     string    `gorm:"type:varchar(255);not null" json:"name"`
	NIK      string    `gorm:"column:nik;type:varchar(32)" json:"nik"`
	Phone    string    `gorm:"type:varchar(20)" json:"phone"`
	Address  string    `gorm:"type:text" json:"address"`
	IsActive bool      `gorm:"default:true" json:"isActive"`
}
