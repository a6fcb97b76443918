package appointment

import "github.com/kiryafn/vet-clinic-crm/internal/models"

// Patch lists the fields of an appointment a caller may change after
// booking. Nil means "leave as is". Time, doctor and status are not patchable.
type Patch struct {
	Reason      *string
	DoctorNotes *string
}

func (p Patch) Empty() bool {
	return p.Reason == nil && p.DoctorNotes == nil
}

// Apply merges the patch field by field and reports whether anything changed.
func (p Patch) Apply(ap *models.Appointment) bool {
	changed := false

	if p.Reason != nil && *p.Reason != ap.Reason {
		ap.Reason = *p.Reason
		changed = true
	}

	if p.DoctorNotes != nil {
		if ap.DoctorNotes == nil || *ap.DoctorNotes != *p.DoctorNotes {
			notes := *p.DoctorNotes
			ap.DoctorNotes = &notes
			changed = true
		}
	}

	return changed
}
