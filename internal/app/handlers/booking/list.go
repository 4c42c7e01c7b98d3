package booking

import (
	"context"
	"sort"

	"courtside/internal/app/uow"
	domainreservation "courtside/internal/domain/reservation"
	"courtside/internal/domain/shared/clock"
)

const memberReservationsKey = "booking.member_reservations"

type MemberReservationsQuery struct {
	HolderID string
}

func (q MemberReservationsQuery) Key() string { return memberReservationsKey }

type MemberReservationView struct {
	ReservationID string `json:"reservation_id"`
	CourtID       int    `json:"court_id"`
	Date          string `json:"date"`
	Start         string `json:"start"`
	End           string `json:"end"`
	ShortNotice   bool   `json:"short_notice"`
	Active        bool   `json:"active"`
}

// MemberReservationsHandler lists the holder's active reservations with
// their live session state, so a member can see what counts against their
// quota.
type MemberReservationsHandler struct {
	UoWFactory uow.Factory
	Clock      clock.Clock
}

func (h *MemberReservationsHandler) Handle(ctx context.Context, q MemberReservationsQuery) ([]MemberReservationView, error) {
	if q.HolderID == "" {
		return nil, domainreservation.ErrHolderRequired
	}
	unit, managed, err := beginIfUnmanaged(ctx, h.UoWFactory)
	if err != nil {
		return nil, err
	}
	if managed {
		defer func() { _ = unit.Rollback(ctx) }()
	}

	held, err := unit.Reservations().ActiveByHolder(ctx, q.HolderID)
	if err != nil {
		return nil, err
	}
	now := h.Clock.Now()
	loc := h.Clock.Location()

	out := make([]MemberReservationView, 0, len(held))
	for _, r := range held {
		if r.Status != domainreservation.StatusActive {
			continue
		}
		active, err := r.IsActiveAt(now, loc)
		if err != nil {
			active = r.OccupiesFutureDate(clock.DateOf(now))
		}
		out = append(out, MemberReservationView{
			ReservationID: string(r.ID),
			CourtID:       int(r.CourtID),
			Date:          r.Date,
			Start:         r.Start,
			End:           r.End,
			ShortNotice:   r.ShortNotice,
			Active:        active,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date < out[j].Date
		}
		return out[i].Start < out[j].Start
	})
	return out, nil
}
