package appointment

type Status string

const (
	StatusPlanned   Status = "planned"
	StatusCancelled Status = "cancelled"
	StatusCompleted Status = "completed"
)

// Occupies reports whether an appointment in this status blocks its interval.
// Completed visits keep blocking; only cancellation frees a slot.
func (s Status) Occupies() bool {
	return s != StatusCancelled
}

// Cancelled and completed are terminal.
var transitions = map[Status][]Status{
	StatusPlanned: {StatusCancelled, StatusCompleted},
}

func CanTransition(from, to Status) error {
	for _, next := range transitions[from] {
		if next == to {
			return nil
		}
	}
	return ErrInvalidTransition
}

func InitialStatus() Status {
	return StatusPlanned
}
