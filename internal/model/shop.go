package model

import "github.com/google/uuid"

type Shop struct {
	BaseModel
	Name     string     `gorm:"type:varchar(255);uniqueIndex;not null" json:"name"`
	Address  string     `gorm:"type:text" json:"address"`
	AdminID  *uuid.UUID `gorm:"type:uuid;uniqueIndex" json:"adminId"`
	Admin    *User      `gorm:"-" json:"admin,omitempty"` // loaded by the repository, no FK to keep users -> shops acyclic
	IsActive bool       `gorm:"default:true" json:"isActive"`
}

const NoAdminLabel = "belum ada admin"

type ShopResponse struct {
	ID        uuid.UUID  `json:"id"`
	Name      string     `json:"name"`
	Address   string     `json:"address"`
	AdminID   *uuid.UUID `json:"adminId"`
	AdminName string     `json:"adminName"`
	IsActive  bool       `json:"isActive"`
}

func (s *Shop) ToResponse() ShopResponse {
	resp := ShopResponse{
		ID:        s.ID,
		Name:      s.Name,
		Address:   s.Address,
		AdminID:   s.AdminID,
		AdminName: NoAdminLabel,
		IsActive:  s.IsActive,
	}
	if s.Admin != nil {
		resp.AdminName = s.Admin.Name
	}
	return resp
}
