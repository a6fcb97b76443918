package timezone

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNaiveUTC_ConvertsOffsetAndDropsFraction(t *testing.T) {
	moscow := time.FixedZone("MSK", 3*60*60)
	in := time.Date(2024, 6, 10, 12, 0, 0, 999_000_000, moscow)

	got := NaiveUTC(in)

	assert.Equal(t, time.Date(2024, 6, 10, 9, 0, 0, 0, time.UTC), got)
	assert.Equal(t, time.UTC, got.Location())
}

func TestParseInstant(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want time.Time
	}{
		{"zulu", "2024-06-10T09:00:00Z", time.Date(2024, 6, 10, 9, 0, 0, 0, time.UTC)},
		{"offset", "2024-06-10T11:30:00+02:00", time.Date(2024, 6, 10, 9, 30, 0, 0, time.UTC)},
		{"naive is utc", "2024-06-10T09:45:00", time.Date(2024, 6, 10, 9, 45, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseInstant(tt.in)
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "got %s", got)
		})
	}
}

func TestParseInstant_Invalid(t *testing.T) {
	for _, in := range []string{"", "tomorrow", "2024-13-01T09:00:00Z"} {
		_, err := ParseInstant(in)
		assert.ErrorIs(t, err, ErrInvalidInstant, in)
	}
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-06-10")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC), d)

	_, err = ParseDate("10/06/2024")
	assert.Error(t, err)

	_, err = ParseDate("2024-02-30")
	assert.Error(t, err)
}

func TestDayStartAndFormat(t *testing.T) {
	ny := time.FixedZone("EDT", -4*60*60)
	// 22:00 EDT on the 9th is 02:00 UTC on the 10th.
	in := time.Date(2024, 6, 9, 22, 0, 0, 0, ny)

	assert.Equal(t, time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC), DayStart(in))
	assert.Equal(t, "2024-06-10T02:00:00Z", Format(in))
}
