package clock

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

// ErrDegraded marks a failure to combine stored civil date/time fields into
// an instant. Callers are expected to fall back to coarser date-only rules
// rather than reject the request.
var ErrDegraded = errors.New("clock: civil time could not be resolved")

const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

// Clock supplies the current instant in the engine's canonical civil
// timezone. Business logic never reads wall time directly; it receives a
// Clock so tests can pin instants.
type Clock interface {
	Now() time.Time
	Location() *time.Location
}

type systemClock struct {
	loc *time.Location
}

// System returns a wall clock pinned to loc.
func System(loc *time.Location) Clock {
	if loc == nil {
		loc = time.UTC
	}
	return systemClock{loc: loc}
}

func (c systemClock) Now() time.Time           { return time.Now().In(c.loc) }
func (c systemClock) Location() *time.Location { return c.loc }

// FixedClock is a settable clock for deterministic tests.
type FixedClock struct {
	mu  sync.Mutex
	now time.Time
}

func Fixed(now time.Time) *FixedClock {
	return &FixedClock{now: now}
}

func (c *FixedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *FixedClock) Location() *time.Location {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now.Location()
}

func (c *FixedClock) Set(now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = now
}

func (c *FixedClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// Combine resolves a stored civil date ("2006-01-02") and time of day
// ("15:04") into one instant in loc. The pair is combined before any
// comparison so boundary slots at the edge of the operational day follow the
// same ordering as every other slot.
func Combine(date, hhmm string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	d, err := time.ParseInLocation(DateLayout, date, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: date %q: %v", ErrDegraded, date, err)
	}
	t, err := time.Parse(TimeLayout, hhmm)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: time %q: %v", ErrDegraded, hhmm, err)
	}
	return time.Date(d.Year(), d.Month(), d.Day(), t.Hour(), t.Minute(), 0, 0, loc), nil
}

// DateOf formats the civil date of t in its own location.
func DateOf(t time.Time) string {
	return t.Format(DateLayout)
}

// TimeOf formats the time of day of t.
func TimeOf(t time.Time) string {
	return t.Format(TimeLayout)
}
