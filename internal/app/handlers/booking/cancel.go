package booking

import (
	"context"
	"errors"
	"log/slog"

	"courtside/internal/app/outbox"
	"courtside/internal/app/policies"
	"courtside/internal/app/uow"
	domainreservation "courtside/internal/domain/reservation"
	"courtside/internal/domain/shared/clock"
)

const cancelKey = "booking.cancel"

var (
	ErrNotCancellable = errors.New("booking: actor may not cancel this reservation")
	ErrMissingActor   = errors.New("booking: reservation id and actor required")
)

type CancelCommand struct {
	ReservationID string
	ActorID       string
	AsAdmin       bool
}

func (c CancelCommand) Key() string { return cancelKey }

func (c CancelCommand) Validate() error {
	if c.ReservationID == "" || c.ActorID == "" {
		return ErrMissingActor
	}
	return nil
}

type CancelResult struct {
	ReservationID string `json:"reservation_id"`
}

type CancelHandler struct {
	UoWFactory uow.Factory
	Clock      clock.Clock
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
	Audit      policies.Audit
	Logger     *slog.Logger
}

func (h *CancelHandler) Handle(ctx context.Context, cmd CancelCommand) (*CancelResult, error) {
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

	res, err := unit.Reservations().ByID(ctx, domainreservation.ID(cmd.ReservationID))
	if err != nil {
		return nil, err
	}
	if !cmd.AsAdmin && res.HolderID != cmd.ActorID && res.BookerID != cmd.ActorID {
		return nil, ErrNotCancellable
	}
	before := *res

	cause := domainreservation.CauseMember
	if cmd.AsAdmin {
		cause = domainreservation.CauseAdmin
	}
	if err := res.Cancel(cause, cmd.ActorID, h.Clock.Now()); err != nil {
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
		h.Audit.Record(ctx, policies.AuditEntry{Operation: cancelKey, ActorID: cmd.ActorID, Before: before, After: res})
	}
	return &CancelResult{ReservationID: string(res.ID)}, nil
}
