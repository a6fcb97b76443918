package models

import "time"

// Appointment rows store date_time as a zone-less timestamp holding the UTC
// wall clock. The unique index only guards exact duplicates of an active slot;
// overlap is enforced by the booking path.
type Appointment struct {
	ID uint `gorm:"primaryKey" json:"id"`

	DoctorID uint   `gorm:"not null;uniqueIndex:idx_appointments_doctor_slot,where:status <> 'cancelled'" json:"doctor_id"`
	Doctor   Doctor `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;" json:"doctor"`

	ClientID uint   `gorm:"not null;index" json:"client_id"`
	Client   Client `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;" json:"client"`

	PetID uint `gorm:"not null;index" json:"pet_id"`
	Pet   Pet  `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;" json:"pet"`

	DateTime time.Time `gorm:"type:timestamp;not null;uniqueIndex:idx_appointments_doctor_slot;index" json:"date_time"`

	Status string `gorm:"size:20;not null;default:'planned';index" json:"status"`

	Reason      string     `gorm:"type:text" json:"reason"`
	DoctorNotes *string    `gorm:"type:text" json:"doctor_notes"`
	CancelledAt *time.Time `json:"cancelled_at"`
	CompletedAt *time.Time `json:"completed_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
