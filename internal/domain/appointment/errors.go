package appointment

import "github.com/kiryafn/vet-clinic-crm/internal/httperr"

var (
	ErrSlotConflict      = httperr.ErrBusiness("slot_conflict")
	ErrInvalidTransition = httperr.ErrBusiness("invalid_transition")
	ErrInvalidDate       = httperr.ErrBusiness("invalid_date")
	ErrInvalidDateTime   = httperr.ErrBusiness("invalid_date_time")
	ErrPastDateTime      = httperr.ErrBusiness("past_date_time")
	ErrNotYours          = httperr.ErrBusiness("not_your_appointment")
	ErrEmptyPatch        = httperr.ErrBusiness("empty_patch")
	ErrBookingBusy       = httperr.ErrBusiness("booking_busy")

	ErrAppointmentNotFound = httperr.ErrBusiness("appointment_not_found")
	ErrDoctorNotFound      = httperr.ErrBusiness("doctor_not_found")
	ErrClientNotFound      = httperr.ErrBusiness("client_not_found")
	ErrPetNotFound         = httperr.ErrBusiness("pet_not_found")
)
