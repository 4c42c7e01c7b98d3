package reservation

import (
	"time"

	"courtside/internal/domain/court"
)

type ReservationCreated struct {
	ReservationID ID
	CourtID       court.ID
	Date          string
	Start         string
	HolderID      string
	BookerID      string
	ShortNotice   bool
	At            time.Time
}

func (e ReservationCreated) EventName() string     { return "reservation.created" }
func (e ReservationCreated) AggregateID() string   { return string(e.ReservationID) }
func (e ReservationCreated) OccurredAt() time.Time { return e.At }

type ReservationCancelled struct {
	ReservationID ID
	CourtID       court.ID
	Date          string
	Start         string
	HolderID      string
	Cause         CancelCause
	ActorID       string
	At            time.Time
}

func (e ReservationCancelled) EventName() string     { return "reservation.cancelled" }
func (e ReservationCancelled) AggregateID() string   { return string(e.ReservationID) }
func (e ReservationCancelled) OccurredAt() time.Time { return e.At }
