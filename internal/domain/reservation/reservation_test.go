package reservation

import (
	"errors"
	"testing"
	"time"
)

func mustLoc(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("Europe/Berlin")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}
	return loc
}

func activeRes(t *testing.T, date, start, end string) *Reservation {
	t.Helper()
	r, err := New(CreateParams{
		ID:       "r1",
		CourtID:  3,
		Date:     date,
		Start:    start,
		End:      end,
		HolderID: "m1",
	})
	if err != nil {
		t.Fatalf("new reservation: %v", err)
	}
	return r
}

func TestIsActiveAtBoundaries(t *testing.T) {
	loc := mustLoc(t)
	r := activeRes(t, "2025-06-01", "14:00", "15:00")

	cases := []struct {
		name string
		now  time.Time
		want bool
	}{
		{"well before start", time.Date(2025, 5, 30, 9, 0, 0, 0, loc), true},
		{"one second before start", time.Date(2025, 6, 1, 13, 59, 59, 0, loc), true},
		{"exactly at start", time.Date(2025, 6, 1, 14, 0, 0, 0, loc), true},
		{"in progress", time.Date(2025, 6, 1, 14, 30, 0, 0, loc), true},
		{"one second before end", time.Date(2025, 6, 1, 14, 59, 59, 0, loc), true},
		{"exactly at end", time.Date(2025, 6, 1, 15, 0, 0, 0, loc), false},
		{"after end", time.Date(2025, 6, 1, 16, 0, 0, 0, loc), false},
		{"next day", time.Date(2025, 6, 2, 14, 0, 0, 0, loc), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := r.IsActiveAt(tc.now, loc)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Fatalf("IsActiveAt(%v) = %v, want %v", tc.now, got, tc.want)
			}
		})
	}
}

func TestIsActiveAtDayBoundarySlot(t *testing.T) {
	loc := mustLoc(t)
	// Last slot of the operational day; the combined-instant rule must not
	// confuse the 22:00 end with the following day.
	r := activeRes(t, "2025-06-01", "21:00", "22:00")

	now := time.Date(2025, 6, 1, 21, 59, 0, 0, loc)
	if got, _ := r.IsActiveAt(now, loc); !got {
		t.Fatal("slot should be active one minute before its end")
	}
	now = time.Date(2025, 6, 1, 22, 0, 0, 0, loc)
	if got, _ := r.IsActiveAt(now, loc); got {
		t.Fatal("slot should stop counting the instant it ends")
	}
}

func TestIsActiveAtCancelled(t *testing.T) {
	loc := mustLoc(t)
	r := activeRes(t, "2025-06-01", "14:00", "15:00")
	now := time.Date(2025, 6, 1, 10, 0, 0, 0, loc)
	if err := r.Cancel(CauseMember, "m1", now); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if got, _ := r.IsActiveAt(now, loc); got {
		t.Fatal("cancelled reservation must not be active")
	}
	if err := r.Cancel(CauseMember, "m1", now); !errors.Is(err, ErrAlreadyCancelled) {
		t.Fatalf("second cancel: want ErrAlreadyCancelled, got %v", err)
	}
}

func TestIsActiveAtMalformedTime(t *testing.T) {
	loc := mustLoc(t)
	r := activeRes(t, "2025-06-01", "14:00", "15:00")
	r.End = "25:99"
	if _, err := r.IsActiveAt(time.Now(), loc); err == nil {
		t.Fatal("malformed end time must surface an error")
	}
}

func TestNewValidation(t *testing.T) {
	if _, err := New(CreateParams{CourtID: 1, Date: "2025-06-01", Start: "14:00", End: "15:00"}); !errors.Is(err, ErrHolderRequired) {
		t.Fatalf("want ErrHolderRequired, got %v", err)
	}
	if _, err := New(CreateParams{HolderID: "m1", Date: "2025-06-01", Start: "15:00", End: "14:00"}); !errors.Is(err, ErrInvalidSlot) {
		t.Fatalf("want ErrInvalidSlot, got %v", err)
	}
	r, err := New(CreateParams{HolderID: "m1", CourtID: 2, Date: "2025-06-01", Start: "14:00", End: "15:00"})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if r.BookerID != "m1" {
		t.Fatalf("booker should default to holder, got %q", r.BookerID)
	}
	if evs := r.PendingEvents(); len(evs) != 1 || evs[0].EventName() != "reservation.created" {
		t.Fatalf("unexpected pending events: %v", evs)
	}
}

func TestCancelRecordsEvent(t *testing.T) {
	r := activeRes(t, "2025-06-01", "14:00", "15:00")
	r.ClearEvents()
	now := time.Date(2025, 6, 1, 13, 0, 0, 0, time.UTC)
	if err := r.Cancel(CauseBlock, "admin-1", now); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	evs := r.PendingEvents()
	if len(evs) != 1 || evs[0].EventName() != "reservation.cancelled" {
		t.Fatalf("unexpected events: %v", evs)
	}
	ev := evs[0].(ReservationCancelled)
	if ev.Cause != CauseBlock || ev.ActorID != "admin-1" {
		t.Fatalf("cause/actor not carried: %+v", ev)
	}
}
