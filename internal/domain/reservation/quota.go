package reservation

import (
	"time"

	"courtside/internal/domain/shared/clock"
)

// Denial reason codes surfaced to callers of the booking operation.
const (
	ReasonRegularLimit     = "regular_limit_reached"
	ReasonShortNoticeLimit = "short_notice_limit_reached"
)

// Decision is the outcome of a quota check.
type Decision struct {
	Allowed bool
	Reason  string
	// Degraded is set when at least one reservation row could not be
	// resolved to an instant and the date-only fallback rule was applied.
	// The caller logs it; the member never sees it.
	Degraded bool
}

// QuotaPolicy enforces per-member booking limits. Regular and short-notice
// quotas are independent pools: a member at the regular limit may still make
// a short-notice booking, and vice versa.
type QuotaPolicy struct {
	RegularLimit     int
	ShortNoticeLimit int
}

func DefaultQuotaPolicy() QuotaPolicy {
	return QuotaPolicy{RegularLimit: 2, ShortNoticeLimit: 1}
}

// Check decides whether the holder of the given existing reservations may
// acquire another slot. existing must already be filtered to the holder's
// rows; cancelled rows are tolerated and ignored. Every code path that
// creates a reservation consults this check — there is no bypass.
func (p QuotaPolicy) Check(existing []*Reservation, shortNotice bool, now time.Time, loc *time.Location) Decision {
	today := clock.DateOf(now.In(loc))

	regular, short := 0, 0
	degraded := false
	for _, r := range existing {
		if r.Status != StatusActive {
			continue
		}
		active, err := r.IsActiveAt(now, loc)
		if err != nil {
			// Malformed stored time: fall back to the coarser date rule
			// instead of rejecting the member's request outright.
			degraded = true
			active = r.OccupiesFutureDate(today)
		}
		if !active {
			continue
		}
		if r.ShortNotice {
			short++
		} else {
			regular++
		}
	}

	if shortNotice {
		if short >= p.ShortNoticeLimit {
			return Decision{Reason: ReasonShortNoticeLimit, Degraded: degraded}
		}
		return Decision{Allowed: true, Degraded: degraded}
	}
	if regular >= p.RegularLimit {
		return Decision{Reason: ReasonRegularLimit, Degraded: degraded}
	}
	return Decision{Allowed: true, Degraded: degraded}
}
