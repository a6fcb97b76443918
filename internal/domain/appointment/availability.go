package appointment

import (
	"time"

	"github.com/kiryafn/vet-clinic-crm/internal/timezone"
)

const (
	DefaultDuration      = 45 * time.Minute
	DefaultWorkStartHour = 9
	DefaultWorkEndHour   = 17
)

// SlotPolicy is the clinic-wide scheduling grid. Duration is used both when
// booking and when reading existing rows, so it must match the value the
// stored appointments were created under.
type SlotPolicy struct {
	Duration      time.Duration
	WorkStartHour int
	WorkEndHour   int
}

func DefaultPolicy() SlotPolicy {
	return SlotPolicy{
		Duration:      DefaultDuration,
		WorkStartHour: DefaultWorkStartHour,
		WorkEndHour:   DefaultWorkEndHour,
	}
}

// WorkWindow returns [workStart, workEnd) for the UTC calendar day of day.
func (p SlotPolicy) WorkWindow(day time.Time) (time.Time, time.Time) {
	start := timezone.DayStart(day)
	return start.Add(time.Duration(p.WorkStartHour) * time.Hour),
		start.Add(time.Duration(p.WorkEndHour) * time.Hour)
}

// Grid returns every slot start of the day, busy or not.
func (p SlotPolicy) Grid(day time.Time) []time.Time {
	workStart, workEnd := p.WorkWindow(day)

	var out []time.Time
	for cur := workStart; !cur.Add(p.Duration).After(workEnd); cur = cur.Add(p.Duration) {
		out = append(out, cur)
	}
	return out
}

// Interval is a half-open [Start, End) range.
type Interval struct {
	Start time.Time
	End   time.Time
}

func (p SlotPolicy) IntervalAt(start time.Time) Interval {
	s := timezone.NaiveUTC(start)
	return Interval{Start: s, End: s.Add(p.Duration)}
}

// Overlaps: a0 < b1 && a1 > b0. Touching intervals do not overlap.
func (a Interval) Overlaps(b Interval) bool {
	return a.Start.Before(b.End) && a.End.After(b.Start)
}

// SearchWindow bounds the stored starts that could overlap a slot starting at
// start. It also covers rows from the previous day near midnight.
func (p SlotPolicy) SearchWindow(start time.Time) (time.Time, time.Time) {
	s := timezone.NaiveUTC(start)
	return s.Add(-p.Duration), s.Add(p.Duration)
}
