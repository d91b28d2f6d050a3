// Package timeconv converts UTC epoch timestamps into the configured time zone.
//
// The zone database is embedded with time/tzdata so conversions behave the
// same on minimal runtime images that ship without /usr/share/zoneinfo.
package timeconv

import (
	"errors"
	"fmt"
	"math"
	"time"
	_ "time/tzdata"
)

var ErrInvalidTimezone = errors.New("invalid timezone")

// Converter re-expresses instants in a fixed location.
type Converter struct {
	loc *time.Location
}

// New resolves zone through the IANA database. An empty name is rejected
// rather than silently mapped to UTC.
func New(zone string) (*Converter, error) {
	if zone == "" {
		return nil, fmt.Errorf("%w: empty zone name", ErrInvalidTimezone)
	}
	loc, err := time.LoadLocation(zone)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrInvalidTimezone, zone, err)
	}
	return &Converter{loc: loc}, nil
}

// Convert interprets ts as seconds since the Unix epoch in UTC.
func (c *Converter) Convert(ts float64) time.Time {
	return c.In(FromEpoch(ts))
}

func (c *Converter) In(t time.Time) time.Time {
	return t.In(c.loc)
}

// FromEpoch turns fractional epoch seconds into a UTC time, keeping
// nanosecond precision where the float carries it.
func FromEpoch(ts float64) time.Time {
	sec, frac := math.Modf(ts)
	nsec := int64(math.Round(frac * 1e9))
	return time.Unix(int64(sec), nsec).UTC()
}
