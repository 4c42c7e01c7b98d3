package booking

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"courtside/internal/app/outbox"
	"courtside/internal/app/policies"
	"courtside/internal/app/uow"
	domaincourt "courtside/internal/domain/court"
	domainreservation "courtside/internal/domain/reservation"
	"courtside/internal/domain/schedule"
	"courtside/internal/domain/shared/clock"
)

const bookKey = "booking.book"

var (
	ErrUnitOfWorkRequired = errors.New("booking: unit of work required")
	ErrMissingFields      = errors.New("booking: date and start required")
	ErrSlotOutsideWindow  = errors.New("booking: start is not a bookable slot")
	ErrSlotInPast         = errors.New("booking: slot already ended")
	ErrCourtRetired       = errors.New("booking: court is retired")
	// ErrLimitExceeded wraps a quota denial; the reason code travels in
	// Rejection.
	ErrLimitExceeded = errors.New("booking: limit exceeded")
)

// Rejection carries the structured quota denial reason to the boundary.
type Rejection struct {
	Reason string
}

func (r Rejection) Error() string {
	return fmt.Sprintf("booking: rejected (%s)", r.Reason)
}

func (r Rejection) Unwrap() error { return ErrLimitExceeded }

type BookCommand struct {
	CommandID   string
	CourtID     domaincourt.ID
	Date        string
	Start       string
	HolderID    string
	BookerID    string
	ShortNotice bool
}

func (c BookCommand) Key() string { return bookKey }

func (c BookCommand) Validate() error {
	if c.HolderID == "" {
		return domainreservation.ErrHolderRequired
	}
	if c.Date == "" || c.Start == "" {
		return ErrMissingFields
	}
	return nil
}

type BookResult struct {
	ReservationID string `json:"reservation_id"`
	ShortNotice   bool   `json:"short_notice"`
}

// BookHandler is the single admission gate for reservation creation. Member
// bookings, short-notice bookings and admin-on-behalf bookings all dispatch
// this command; the quota is always checked against the holder.
type BookHandler struct {
	UoWFactory      uow.Factory
	Clock           clock.Clock
	Window          schedule.Window
	Quota           domainreservation.QuotaPolicy
	ShortNoticeLead time.Duration
	Outbox          outbox.Outbox
	Encoder         outbox.EventEncoder
	Audit           policies.Audit
	Logger          *slog.Logger
}

func (h *BookHandler) Handle(ctx context.Context, cmd BookCommand) (*BookResult, error) {
	unit, managed, err := beginIfUnmanaged(ctx, h.UoWFactory)
	if err != nil {
		return nil, err
	}
	if managed {
		ctx = uow.ContextWithUnitOfWork(ctx, unit)
	}
	committed := false
	if managed {
		defer func() {
			if !committed {
				_ = unit.Rollback(ctx)
			}
		}()
	}

	slot, ok := h.slotFor(cmd.Start)
	if !ok {
		return nil, ErrSlotOutsideWindow
	}

	now := h.Clock.Now()
	loc := h.Clock.Location()
	start, err := clock.Combine(cmd.Date, slot.Start, loc)
	if err != nil {
		return nil, err
	}
	end, err := clock.Combine(cmd.Date, slot.End, loc)
	if err != nil {
		return nil, err
	}
	if !end.After(now) {
		return nil, ErrSlotInPast
	}

	crt, err := unit.Courts().ByID(ctx, cmd.CourtID)
	if err != nil {
		return nil, err
	}
	if crt.Retired {
		return nil, ErrCourtRetired
	}

	// A booking made within the configured lead time of its own start is a
	// short-notice booking even when the caller did not flag it.
	shortNotice := cmd.ShortNotice
	if h.ShortNoticeLead > 0 && start.Sub(now) <= h.ShortNoticeLead {
		shortNotice = true
	}

	held, err := unit.Reservations().ActiveByHolder(ctx, cmd.HolderID)
	if err != nil {
		return nil, err
	}
	decision := h.Quota.Check(held, shortNotice, now, loc)
	if decision.Degraded && h.Logger != nil {
		h.Logger.Warn("quota check degraded to date-only rule", "holder", cmd.HolderID)
	}
	if !decision.Allowed {
		return nil, Rejection{Reason: decision.Reason}
	}

	// An administrative block on the slot wins before the store is even
	// asked; the store's uniqueness constraint arbitrates the rest.
	dayBlocks, err := unit.Blocks().ByDate(ctx, cmd.Date)
	if err != nil {
		return nil, err
	}
	for _, b := range dayBlocks {
		if b.CourtID == cmd.CourtID && b.Covers(cmd.Date, slot.Start, slot.End) {
			return nil, domainreservation.ErrSlotUnavailable
		}
	}

	res, err := domainreservation.New(domainreservation.CreateParams{
		ID:          domainreservation.ID(cmd.CommandID),
		CourtID:     cmd.CourtID,
		Date:        cmd.Date,
		Start:       slot.Start,
		End:         slot.End,
		HolderID:    cmd.HolderID,
		BookerID:    cmd.BookerID,
		ShortNotice: shortNotice,
		CreatedAt:   now,
	})
	if err != nil {
		return nil, err
	}
	if err := unit.Reservations().Save(ctx, res); err != nil {
		return nil, err
	}

	pending := res.PendingEvents()
	res.ClearEvents()
	if err := outbox.RecordDomainEvents(ctx, h.Outbox, h.Encoder, pending); err != nil {
		return nil, err
	}

	if managed {
		if err := unit.Commit(ctx); err != nil {
			return nil, err
		}
		committed = true
	}
	if h.Audit != nil {
		h.Audit.Record(ctx, policies.AuditEntry{Operation: bookKey, ActorID: cmd.BookerID, After: res})
	}
	return &BookResult{ReservationID: string(res.ID), ShortNotice: shortNotice}, nil
}

func (h *BookHandler) slotFor(start string) (schedule.SlotTime, bool) {
	for _, st := range h.Window.SlotTimes() {
		if st.Start == start {
			return st, true
		}
	}
	return schedule.SlotTime{}, false
}

// beginIfUnmanaged reuses a contextual unit of work when the transaction
// middleware opened one, otherwise starts its own.
func beginIfUnmanaged(ctx context.Context, factory uow.Factory) (uow.UnitOfWork, bool, error) {
	if unit, err := uow.Require(ctx); err == nil {
		return unit, false, nil
	}
	if factory == nil {
		return nil, false, ErrUnitOfWorkRequired
	}
	unit, err := factory.Begin(ctx, uow.TxOptions{})
	if err != nil {
		return nil, false, err
	}
	return unit, true, nil
}
