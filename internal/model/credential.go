package model

import (
	"time"

	"gorm.io/gorm"
)

// Credential represents a user account stored in the database. The token is
// a fixed bearer credential generated once and reused; AuthCode is only set
// while an admin-created account is waiting for confirmation.
type Credential struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	Name      string         `json:"name" gorm:"type:varchar(100)"`
	Email     string         `json:"email" gorm:"type:varchar(100);index"`
	Password  string         `json:"-" gorm:"type:varchar(255)"`
	Token     string         `json:"-" gorm:"type:text"`
	AuthCode  *string        `json:"-" gorm:"type:varchar(100)"`
	Status    bool           `json:"status" gorm:"default:true"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}
