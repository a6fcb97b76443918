package models

import (
	"time"

	"gorm.io/datatypes"
)

type Pet struct {
	ID       uint `gorm:"primaryKey" json:"id"`
	ClientID uint `gorm:"not null;index" json:"client_id"`

	Name      string          `gorm:"size:50;not null" json:"name"`
	Species   string          `gorm:"size:50;not null" json:"species"`
	Breed     string          `gorm:"size:50" json:"breed"`
	BirthDate *datatypes.Date `gorm:"type:date" json:"birth_date"`
	WeightKg  *float64        `json:"weight_kg"`
	Notes     string          `gorm:"type:text" json:"notes"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
