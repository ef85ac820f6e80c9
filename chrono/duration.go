package chrono

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// ErrInvalidDuration is returned when a duration is not a valid ISO 8601 duration.
var ErrInvalidDuration = errors.New("invalid duration")

var durationPattern = regexp.MustCompile(`^P(?:(\d+)Y)?(?:(\d+)M)?(?:(\d+)W)?(?:(\d+)D)?(?:T(?:(\d+)H)?(?:(\d+)M)?(?:(\d+)S)?)?$`)

// Duration is a calendar duration such as P1D or PT6H.
// Calendar parts (years, months, weeks, days) move wall-clock time in a timezone,
// clock parts (hours, minutes, seconds) move absolute time.
type Duration struct {
	Years   int
	Months  int
	Weeks   int
	Days    int
	Hours   int
	Minutes int
	Seconds int
}

// ParseDuration parses an ISO 8601 duration.
func ParseDuration(s string) (Duration, error) {
	m := durationPattern.FindStringSubmatch(s)
	if m == nil || s == "P" || strings.HasSuffix(s, "T") {
		return Duration{}, errors.Wrapf(ErrInvalidDuration, "%q", s)
	}

	parts := make([]int, 7)
	for i := range parts {
		if m[i+1] == "" {
			continue
		}
		n, err := strconv.Atoi(m[i+1])
		if err != nil {
			return Duration{}, errors.Wrapf(ErrInvalidDuration, "%q: %s", s, err)
		}
		parts[i] = n
	}

	d := Duration{
		Years:   parts[0],
		Months:  parts[1],
		Weeks:   parts[2],
		Days:    parts[3],
		Hours:   parts[4],
		Minutes: parts[5],
		Seconds: parts[6],
	}
	if d.IsZero() {
		return Duration{}, errors.Wrapf(ErrInvalidDuration, "%q is empty", s)
	}
	return d, nil
}

// MustParseDuration is like ParseDuration but panics on error.
func MustParseDuration(s string) Duration {
	d, err := ParseDuration(s)
	if err != nil {
		panic(err)
	}
	return d
}

func (d Duration) IsZero() bool {
	return d == Duration{}
}

// Move shifts t by step times the duration, doing calendar arithmetic in tz.
// The result is in UTC.
func (d Duration) Move(t time.Time, tz Timezone, step int) time.Time {
	local := t.In(tz.Location())
	local = local.AddDate(d.Years*step, d.Months*step, (d.Weeks*7+d.Days)*step)
	clock := time.Duration(d.Hours)*time.Hour +
		time.Duration(d.Minutes)*time.Minute +
		time.Duration(d.Seconds)*time.Second
	return local.Add(clock * time.Duration(step)).UTC()
}

func (d Duration) String() string {
	var b strings.Builder
	b.WriteString("P")
	write := func(n int, unit string) {
		if n != 0 {
			b.WriteString(strconv.Itoa(n))
			b.WriteString(unit)
		}
	}
	write(d.Years, "Y")
	write(d.Months, "M")
	write(d.Weeks, "W")
	write(d.Days, "D")
	if d.Hours != 0 || d.Minutes != 0 || d.Seconds != 0 {
		b.WriteString("T")
		write(d.Hours, "H")
		write(d.Minutes, "M")
		write(d.Seconds, "S")
	}
	return b.String()
}
