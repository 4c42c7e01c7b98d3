package reservation

import (
	"fmt"
	"testing"
	"time"
)

func futureRes(id string, shortNotice bool, date string) *Reservation {
	return &Reservation{
		ID:          ID(id),
		CourtID:     1,
		Date:        date,
		Start:       "10:00",
		End:         "11:00",
		HolderID:    "m1",
		Status:      StatusActive,
		ShortNotice: shortNotice,
	}
}

func TestQuotaRegularLimit(t *testing.T) {
	loc := mustLoc(t)
	now := time.Date(2025, 6, 1, 9, 0, 0, 0, loc)
	policy := DefaultQuotaPolicy()

	existing := []*Reservation{
		futureRes("a", false, "2025-06-02"),
		futureRes("b", false, "2025-06-03"),
	}

	d := policy.Check(existing, false, now, loc)
	if d.Allowed {
		t.Fatal("third regular booking must be denied")
	}
	if d.Reason != ReasonRegularLimit {
		t.Fatalf("reason = %q, want %q", d.Reason, ReasonRegularLimit)
	}

	// Quotas are independent: same member, at the regular limit, may still
	// make a short-notice booking.
	d = policy.Check(existing, true, now, loc)
	if !d.Allowed {
		t.Fatalf("short-notice booking should succeed at regular limit: %+v", d)
	}
}

func TestQuotaShortNoticeLimit(t *testing.T) {
	loc := mustLoc(t)
	now := time.Date(2025, 6, 1, 9, 0, 0, 0, loc)
	policy := DefaultQuotaPolicy()

	existing := []*Reservation{futureRes("a", true, "2025-06-01")}

	d := policy.Check(existing, true, now, loc)
	if d.Allowed || d.Reason != ReasonShortNoticeLimit {
		t.Fatalf("second short-notice must be denied: %+v", d)
	}

	d = policy.Check(existing, false, now, loc)
	if !d.Allowed {
		t.Fatalf("regular booking should succeed at short-notice limit: %+v", d)
	}
}

func TestQuotaExpiredReservationsFreeTheSlot(t *testing.T) {
	loc := mustLoc(t)
	policy := DefaultQuotaPolicy()

	existing := []*Reservation{
		futureRes("a", false, "2025-06-01"),
		futureRes("b", false, "2025-06-01"),
	}
	existing[0].Start, existing[0].End = "07:00", "08:00"
	existing[1].Start, existing[1].End = "08:00", "09:00"

	// Both slots ended at 09:00; at 09:00 sharp neither counts (end
	// boundary exclusive) so a new booking is admitted.
	now := time.Date(2025, 6, 1, 9, 0, 0, 0, loc)
	if d := policy.Check(existing, false, now, loc); !d.Allowed {
		t.Fatalf("expired reservations must not count: %+v", d)
	}

	// One second earlier the 08:00 slot is still in progress.
	now = time.Date(2025, 6, 1, 8, 59, 59, 0, loc)
	d := policy.Check(append(existing, futureRes("c", false, "2025-06-02")), false, now, loc)
	if d.Allowed {
		t.Fatal("in-progress slot still counts toward the quota")
	}
}

func TestQuotaCancelledRowsIgnored(t *testing.T) {
	loc := mustLoc(t)
	now := time.Date(2025, 6, 1, 9, 0, 0, 0, loc)

	cancelled := futureRes("a", false, "2025-06-02")
	cancelled.Status = StatusCancelled
	existing := []*Reservation{cancelled, futureRes("b", false, "2025-06-02")}

	if d := DefaultQuotaPolicy().Check(existing, false, now, loc); !d.Allowed {
		t.Fatalf("cancelled row counted: %+v", d)
	}
}

func TestQuotaDateOnlyFallback(t *testing.T) {
	loc := mustLoc(t)
	now := time.Date(2025, 6, 1, 9, 0, 0, 0, loc)
	policy := DefaultQuotaPolicy()

	// Malformed end time on a future-dated row: the fallback keeps it
	// counting by date, and the decision is flagged as degraded.
	broken := futureRes("a", false, "2025-06-02")
	broken.End = "garbage"
	existing := []*Reservation{broken, futureRes("b", false, "2025-06-03")}

	d := policy.Check(existing, false, now, loc)
	if d.Allowed {
		t.Fatal("fallback must still enforce the limit")
	}
	if !d.Degraded {
		t.Fatal("degraded flag must be reported for operator visibility")
	}

	// A malformed row dated before today falls out under the date rule.
	past := futureRes("c", false, "2025-05-20")
	past.End = "garbage"
	d = policy.Check([]*Reservation{past, futureRes("d", false, "2025-06-03")}, false, now, loc)
	if !d.Allowed {
		t.Fatalf("past-dated degraded row must not count: %+v", d)
	}
	if !d.Degraded {
		t.Fatal("degraded flag missing")
	}
}

func TestQuotaNeverExceededUnderSequences(t *testing.T) {
	loc := mustLoc(t)
	policy := DefaultQuotaPolicy()
	now := time.Date(2025, 6, 1, 9, 0, 0, 0, loc)

	var held []*Reservation
	admitted := 0
	for i := 0; i < 10; i++ {
		d := policy.Check(held, false, now, loc)
		if !d.Allowed {
			continue
		}
		admitted++
		held = append(held, futureRes(fmt.Sprintf("r%d", i), false, "2025-06-02"))
	}
	if admitted != policy.RegularLimit {
		t.Fatalf("admitted %d regular bookings, limit is %d", admitted, policy.RegularLimit)
	}

	// Cancelling one frees exactly one admission.
	held[0].Status = StatusCancelled
	if d := policy.Check(held, false, now, loc); !d.Allowed {
		t.Fatalf("cancellation should free a quota slot: %+v", d)
	}
}
