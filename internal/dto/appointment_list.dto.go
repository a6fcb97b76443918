package dto

import (
	"time"

	"github.com/kiryafn/vet-clinic-crm/internal/models"
)

type AppointmentListDTO struct {
	ID         uint      `json:"id"`
	StartTime  time.Time `json:"start_time"`
	EndTime    time.Time `json:"end_time"`
	Status     string    `json:"status"`
	Reason     string    `json:"reason"`
	DoctorName string    `json:"doctor_name"`
	ClientName string    `json:"client_name"`
	PetName    string    `json:"pet_name"`
}

func ListFromAppointments(apps []models.Appointment, duration time.Duration) []AppointmentListDTO {
	out := make([]AppointmentListDTO, 0, len(apps))
	for _, ap := range apps {
		start := ap.DateTime.UTC()
		out = append(out, AppointmentListDTO{
			ID:         ap.ID,
			StartTime:  start,
			EndTime:    start.Add(duration),
			Status:     ap.Status,
			Reason:     ap.Reason,
			DoctorName: ap.Doctor.FullName,
			ClientName: ap.Client.FullName,
			PetName:    ap.Pet.Name,
		})
	}
	return out
}
