package port

import "time"

// Localizer re-expresses an instant in the configured time zone.
type Localizer interface {
	In(t time.Time) time.Time
}
