package model

import (
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// User represents every account kind. Staff (gudang, kasir) and admins point at a shop.
type User struct {
	BaseModel
	Username  string     `gorm:"type:varchar(100);uniqueIndex;not null" json:"username"`
	Password  string     `gorm:"type:varchar(255);not null" json:"-"` // Hidden from JSON
	Name      string     `gorm:"type:varchar(255);not null" json:"name"`
	Email     string     `gorm:"type:varchar(255)" json:"email"`
	Phone     string     `gorm:"type:varchar(20)" json:"phone"`
	NIK       string     `gorm:"column:nik;type:varchar(32)" json:"nik"`
	PhotoPath *string    `gorm:"type:varchar(255)" json:"photoPath,omitempty"`
	Role      Role       `gorm:"type:varchar(20);index;not null" json:"role"`
	ShopID    *uuid.UUID `gorm:"type:uuid;index" json:"shopId"`
	Shop      *Shop      `gorm:"foreignKey:ShopID" json:"shop,omitempty"`
	IsActive  bool       `gorm:"default:true;index" json:"isActive"`
}

// SetPassword hashes and sets the user's password
func (u *User) SetPassword(password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.Password = string(hashedPassword)
	return nil
}

// CheckPassword verifies if the provided password matches the stored hash
func (u *User) CheckPassword(password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password))
	return err == nil
}

// UserResponse is used for API responses (without sensitive data)
type UserResponse struct {
	ID        uuid.UUID  `json:"id"`
	Username  string     `json:"username"`
	Name      string     `json:"name"`
	Email     string     `json:"email"`
	Phone     string     `json:"phone"`
	NIK       string     `json:"nik"`
	PhotoPath *string    `json:"photoPath,omitempty"`
	Role      Role       `json:"role"`
	ShopID    *uuid.UUID `json:"shopId"`
	ShopName  string     `json:"shopName,omitempty"`
	IsActive  bool       `json:"isActive"`
	CreatedAt time.Time  `json:"createdAt"`
}

// ToResponse converts User to UserResponse
func (u *User) ToResponse() UserResponse {
	resp := UserResponse{
		ID:        u.ID,
		Username:  u.Username,
		Name:      u.Name,
		Email:     u.Email,
		Phone:     u.Phone,
		NIK:       u.NIK,
		PhotoPath: u.PhotoPath,
		Role:      u.Role,
		ShopID:    u.ShopID,
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt,
	}
	if u.Shop != nil {
		resp.ShopName = u.Shop.Name
	}
	return resp
}
