package reservation

import (
	"context"
	"errors"
	"time"

	"courtside/internal/domain/court"
	"courtside/internal/domain/shared/clock"
	"courtside/internal/domain/shared/events"
)

var (
	ErrHolderRequired     = errors.New("reservation: holder id required")
	ErrInvalidSlot        = errors.New("reservation: end must be after start")
	ErrAlreadyCancelled   = errors.New("reservation: already cancelled")
	ErrReservationNotFound = errors.New("reservation: not found")
	// ErrSlotUnavailable is the race-lost outcome: another active reservation
	// or a block already occupies the slot. Retryable after a grid refresh.
	ErrSlotUnavailable = errors.New("reservation: slot no longer available")
)

type ID string

type Status string

const (
	StatusActive    Status = "ACTIVE"
	StatusCancelled Status = "CANCELLED"
)

// CancelCause records who or what ended the reservation.
type CancelCause string

const (
	CauseMember CancelCause = "MEMBER"
	CauseAdmin  CancelCause = "ADMIN"
	CauseBlock  CancelCause = "BLOCK"
)

// Reservation is one member's claim on one court slot. Date and times are
// stored as civil fields and combined into instants through the clock
// package whenever ordering matters.
type Reservation struct {
	ID          ID
	CourtID     court.ID
	Date        string // 2006-01-02
	Start       string // 15:04
	End         string // 15:04
	HolderID    string
	BookerID    string
	ShortNotice bool
	Status      Status
	CancelCause CancelCause
	CreatedAt   time.Time
	CancelledAt time.Time
	Version     int64
	events.EventRecorder
}

type Repository interface {
	ByID(ctx context.Context, id ID) (*Reservation, error)
	// Save persists the reservation. Creating a second active reservation for
	// the same (court, date, start) must fail with ErrSlotUnavailable; the
	// store, not the caller, is the final arbiter of that race.
	Save(ctx context.Context, r *Reservation) error
	ActiveByHolder(ctx context.Context, holderID string) ([]*Reservation, error)
	ByDate(ctx context.Context, date string) ([]*Reservation, error)
}

type CreateParams struct {
	ID          ID
	CourtID     court.ID
	Date        string
	Start       string
	End         string
	HolderID    string
	BookerID    string
	ShortNotice bool
	CreatedAt   time.Time
}

func New(params CreateParams) (*Reservation, error) {
	if params.HolderID == "" {
		return nil, ErrHolderRequired
	}
	if params.End <= params.Start {
		return nil, ErrInvalidSlot
	}
	booker := params.BookerID
	if booker == "" {
		booker = params.HolderID
	}
	now := params.CreatedAt.UTC()
	r := &Reservation{
		ID:          params.ID,
		CourtID:     params.CourtID,
		Date:        params.Date,
		Start:       params.Start,
		End:         params.End,
		HolderID:    params.HolderID,
		BookerID:    booker,
		ShortNotice: params.ShortNotice,
		Status:      StatusActive,
		CreatedAt:   now,
	}
	r.Record(ReservationCreated{ReservationID: r.ID, CourtID: r.CourtID, Date: r.Date, Start: r.Start, HolderID: r.HolderID, BookerID: r.BookerID, ShortNotice: r.ShortNotice, At: now})
	return r, nil
}

// StartInstant combines the civil date and start time into an instant in loc.
func (r *Reservation) StartInstant(loc *time.Location) (time.Time, error) {
	return clock.Combine(r.Date, r.Start, loc)
}

// EndInstant combines the civil date and end time into an instant in loc.
func (r *Reservation) EndInstant(loc *time.Location) (time.Time, error) {
	return clock.Combine(r.Date, r.End, loc)
}

// IsActiveAt reports whether the reservation still occupies its slot at now:
// true strictly before the end instant, false from the end instant on. The
// start boundary is inclusive, the end boundary exclusive.
func (r *Reservation) IsActiveAt(now time.Time, loc *time.Location) (bool, error) {
	if r.Status != StatusActive {
		return false, nil
	}
	end, err := r.EndInstant(loc)
	if err != nil {
		return false, err
	}
	return now.Before(end), nil
}

// OccupiesFutureDate is the degraded, date-only session rule used when the
// instant computation fails for malformed stored fields.
func (r *Reservation) OccupiesFutureDate(today string) bool {
	return r.Status == StatusActive && r.Date >= today
}

// Cancel marks the reservation cancelled. History is preserved; rows are
// never deleted.
func (r *Reservation) Cancel(cause CancelCause, actorID string, now time.Time) error {
	if r.Status == StatusCancelled {
		return ErrAlreadyCancelled
	}
	r.Status = StatusCancelled
	r.CancelCause = cause
	r.CancelledAt = now.UTC()
	r.Record(ReservationCancelled{ReservationID: r.ID, CourtID: r.CourtID, Date: r.Date, Start: r.Start, HolderID: r.HolderID, Cause: cause, ActorID: actorID, At: r.CancelledAt})
	return nil
}
