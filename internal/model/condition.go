package model

import (
	"time"

	"gorm.io/gorm"
)

// Condition is a named status tag shared across project timelines. Deleting
// a project never touches its conditions.
type Condition struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	Name      string         `json:"name" gorm:"type:varchar(100)"`
	Status    bool           `json:"status" gorm:"default:true"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}
