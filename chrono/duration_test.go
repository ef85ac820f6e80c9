package chrono

import (
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDuration(t *testing.T) {
	tests := []struct {
		input    string
		expected Duration
	}{
		{input: "P1D", expected: Duration{Days: 1}},
		{input: "PT1H", expected: Duration{Hours: 1}},
		{input: "P1W", expected: Duration{Weeks: 1}},
		{input: "P1Y2M3DT4H5M6S", expected: Duration{Years: 1, Months: 2, Days: 3, Hours: 4, Minutes: 5, Seconds: 6}},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			d, err := ParseDuration(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, d)
			assert.Equal(t, tt.input, d.String())
		})
	}

	for _, input := range []string{"", "P", "PT", "1D", "P1H", "P-1D", "P0D"} {
		t.Run("invalid "+input, func(t *testing.T) {
			_, err := ParseDuration(input)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidDuration))
		})
	}
}

func TestMove(t *testing.T) {
	day := MustParseDuration("P1D")
	start := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, time.Date(2019, 12, 31, 0, 0, 0, 0, time.UTC), day.Move(start, UTC, -1))
	assert.Equal(t, time.Date(2020, 1, 3, 0, 0, 0, 0, time.UTC), day.Move(start, UTC, 2))

	t.Run("calendar days keep wall clock across DST", func(t *testing.T) {
		ny := MustNewTimezone("America/New_York")
		// DST starts on 2020-03-08 in New York.
		before := time.Date(2020, 3, 7, 12, 0, 0, 0, ny.Location())
		moved := day.Move(before, ny, 1).In(ny.Location())
		assert.Equal(t, 12, moved.Hour())
		assert.Equal(t, 23*time.Hour, moved.Sub(before))

		hours := MustParseDuration("PT24H")
		assert.Equal(t, 24*time.Hour, hours.Move(before, ny, 1).Sub(before))
	})

	t.Run("months", func(t *testing.T) {
		month := MustParseDuration("P1M")
		assert.Equal(t, time.Date(2020, 2, 1, 0, 0, 0, 0, time.UTC), month.Move(start, UTC, 1))
		assert.Equal(t, time.Date(2019, 12, 1, 0, 0, 0, 0, time.UTC), month.Move(start, UTC, -1))
	})
}

func TestTimezone(t *testing.T) {
	var zero Timezone
	assert.Equal(t, "UTC", zero.String())
	assert.True(t, zero.Equals(UTC))

	_, err := NewTimezone("Mars/Olympus_Mons")
	require.Error(t, err)
}
