package model

import (
	"time"

	"gorm.io/gorm"
)

// Project is the aggregate root. Key is an opaque lookup token generated at
// creation and shared externally; it never changes.
type Project struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	Name      string         `json:"name" gorm:"type:varchar(100)"`
	Key       string         `json:"key" gorm:"type:varchar(20);uniqueIndex"`
	Status    bool           `json:"status" gorm:"default:true"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

// BeforeCreate hook fills in the random lookup key
func (p *Project) BeforeCreate(tx *gorm.DB) (err error) {
	if p.Key == "" {
		p.Key = generateProjectKey()
	}
	return nil
}

// Client is the contact attached to a project. Exactly one per project in
// practice.
type Client struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	ProjectID uint           `json:"project_id" gorm:"index;not null"`
	Name      string         `json:"name" gorm:"type:varchar(100)"`
	Email     string         `json:"email" gorm:"type:varchar(100)"`
	Status    bool           `json:"status" gorm:"default:true"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

// Information holds the cost and schedule metadata of a project. All value
// fields are nullable; dashboard metrics skip what is not set.
type Information struct {
	ID            uint           `json:"id" gorm:"primaryKey"`
	ProjectID     uint           `json:"project_id" gorm:"index;not null"`
	CostEstimate  *float64       `json:"cost_estimate"`
	CurrentCost   *float64       `json:"current_cost"`
	StartDate     *time.Time     `json:"start_date"`
	DeliveredDate *time.Time     `json:"delivered_date"`
	CurrentDate   *time.Time     `json:"current_date"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `json:"-" gorm:"index"`
}

// Ranking is one timeline entry of a project, tagged with a shared
// Condition. Ordering is insertion order.
type Ranking struct {
	ID          uint           `json:"id" gorm:"primaryKey"`
	ProjectID   uint           `json:"project_id" gorm:"index;not null"`
	ConditionID uint           `json:"condition_id" gorm:"index;not null"`
	Rank        string         `json:"rank" gorm:"type:varchar(100)"`
	LastUpdate  *time.Time     `json:"last_update"`
	Note        *string        `json:"note" gorm:"type:varchar(100)"`
	Description *string        `json:"description" gorm:"type:text"`
	Status      bool           `json:"status" gorm:"default:true"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `json:"-" gorm:"index"`

	// Relations
	Condition Condition `json:"condition,omitempty" gorm:"foreignKey:ConditionID"`
}
