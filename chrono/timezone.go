package chrono

import (
	"time"

	"github.com/pkg/errors"
)

// Timezone is an IANA timezone. The zero value is UTC.
type Timezone struct {
	loc *time.Location
}

// UTC is the UTC timezone.
var UTC = Timezone{loc: time.UTC}

// NewTimezone loads the timezone with the given IANA name, e.g. "America/New_York".
func NewTimezone(name string) (Timezone, error) {
	loc, err := time.LoadLocation(name)
	if err != nil {
		return Timezone{}, errors.Wrapf(err, "load timezone %q", name)
	}
	return Timezone{loc: loc}, nil
}

// MustNewTimezone is like NewTimezone but panics on an unknown name.
func MustNewTimezone(name string) Timezone {
	tz, err := NewTimezone(name)
	if err != nil {
		panic(err)
	}
	return tz
}

func (tz Timezone) Location() *time.Location {
	if tz.loc == nil {
		return time.UTC
	}
	return tz.loc
}

func (tz Timezone) String() string {
	return tz.Location().String()
}

func (tz Timezone) Equals(other Timezone) bool {
	return tz.String() == other.String()
}
