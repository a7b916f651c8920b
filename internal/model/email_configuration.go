package model

import (
	"time"

	"gorm.io/gorm"
)

// EmailConfiguration holds the SMTP settings for one sender address. The
// mail dispatcher selects a row by exact sender-email match.
type EmailConfiguration struct {
	ID         uint           `json:"id" gorm:"primaryKey"`
	Email      string         `json:"email" gorm:"type:varchar(100);index"`
	Password   string         `json:"-" gorm:"type:varchar(100)"`
	SMTPServer string         `json:"smtp_server" gorm:"type:varchar(100)"`
	SMTPPort   int            `json:"smtp_port"`
	UseSSL     bool           `json:"use_ssl" gorm:"default:false"`
	Status     bool           `json:"status" gorm:"default:true"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `json:"-" gorm:"index"`
}
