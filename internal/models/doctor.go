package models

import "time"

// Doctor is read-only for the scheduling core; the roster is managed elsewhere.
type Doctor struct {
	ID uint `gorm:"primaryKey" json:"id"`

	FullName        string `gorm:"size:100;not null" json:"full_name"`
	Specialization  string `gorm:"size:100" json:"specialization"`
	ExperienceYears int    `gorm:"default:0" json:"experience_years"`
	Price           int    `gorm:"default:1000" json:"price"`
	Bio             string `gorm:"type:text" json:"bio"`
	Phone           string `gorm:"size:20" json:"phone"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
