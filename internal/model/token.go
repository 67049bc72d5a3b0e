package model

import (
	"time"

	"github.com/google/uuid"
)

// AuthToken is a server side session. The row is authoritative: a signed bearer
// whose row is gone or expired is rejected.
type AuthToken struct {
	Token      string    `gorm:"type:varchar(64);primaryKey" json:"-"`
	UserID     uuid.UUID `gorm:"type:uuid;index;not null" json:"userId"`
	User       *User     `gorm:"foreignKey:UserID" json:"-"`
	LastActive time.Time `gorm:"not null" json:"lastActive"`
	ExpiresIn  int64     `gorm:"not null" json:"expiresIn"` // seconds
	CreatedAt  time.Time `json:"createdAt"`
}

func (t *AuthToken) ExpiresAt() time.Time {
	return t.LastActive.Add(time.Duration(t.ExpiresIn) * time.Second)
}

// Valid reports whether now is strictly before LastActive + ExpiresIn.
func (t *AuthToken) Valid(now time.Time) bool {
	return now.Before(t.ExpiresAt())
}
