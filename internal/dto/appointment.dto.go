package dto

import (
	"time"

	"github.com/kiryafn/vet-clinic-crm/internal/models"
)

type DoctorDTO struct {
	ID             uint    `json:"id"`
	FullName       string  `json:"full_name"`
	Specialization string  `json:"specialization"`
	Price          int    `json:"price"`
}

type ClientDTO struct {
	ID       uint   `json:"id"`
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
}

type PetDTO struct {
	ID      uint   `json:"id"`
	Name    string `json:"name"`
	Species string `json:"species"`
	Breed   string `json:"breed"`
}

// AppointmentDTO is the full record returned by single-appointment calls.
// Instants are always UTC.
type AppointmentDTO struct {
	ID          uint       `json:"id"`
	DateTime    time.Time  `json:"date_time"`
	EndTime     time.Time  `json:"end_time"`
	Status      string     `json:"status"`
	Reason      string     `json:"reason"`
	DoctorNotes *string    `json:"doctor_notes"`
	CancelledAt *time.Time `json:"cancelled_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`

	Doctor DoctorDTO `json:"doctor"`
	Client ClientDTO `json:"client"`
	Pet    PetDTO    `json:"pet"`

	CreatedAt time.Time `json:"created_at"`
}

func FromAppointment(ap *models.Appointment, duration time.Duration) AppointmentDTO {
	start := ap.DateTime.UTC()

	return AppointmentDTO{
		ID:          ap.ID,
		DateTime:    start,
		EndTime:     start.Add(duration),
		Status:      ap.Status,
		Reason:      ap.Reason,
		DoctorNotes: ap.DoctorNotes,
		CancelledAt: utcPtr(ap.CancelledAt),
		CompletedAt: utcPtr(ap.CompletedAt),
		Doctor: DoctorDTO{
			ID:             ap.Doctor.ID,
			FullName:       ap.Doctor.FullName,
			Specialization: ap.Doctor.Specialization,
			Price:          ap.Doctor.Price,
		},
		Client: ClientDTO{
			ID:       ap.Client.ID,
			FullName: ap.Client.FullName,
			Email:    ap.Client.Email,
			Phone:    ap.Client.Phone,
		},
		Pet: PetDTO{
			ID:      ap.Pet.ID,
			Name:    ap.Pet.Name,
			Species: ap.Pet.Species,
			Breed:   ap.Pet.Breed,
		},
		CreatedAt: ap.CreatedAt.UTC(),
	}
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
