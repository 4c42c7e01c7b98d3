package blocks

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"courtside/internal/app/outbox"
	"courtside/internal/app/policies"
	"courtside/internal/app/uow"
	domainblock "courtside/internal/domain/block"
	domaincourt "courtside/internal/domain/court"
	domainreservation "courtside/internal/domain/reservation"
	"courtside/internal/domain/shared/clock"
	"courtside/internal/domain/shared/events"
)

const createKey = "blocks.create"

var ErrReasonDisabled = errors.New("blocks: reason is disabled")

type CreateBlockCommand struct {
	CourtIDs []domaincourt.ID
	Rule     domainblock.Rule
	Start    string
	End      string
	ReasonID string
	Details  string
	ActorID  string
}

func (c CreateBlockCommand) Key() string { return createKey }

func (c CreateBlockCommand) Validate() error {
	if len(c.CourtIDs) == 0 {
		return domainblock.ErrNoCourts
	}
	if c.End <= c.Start {
		return domainblock.ErrInvalidWindow
	}
	if c.ReasonID == "" {
		return domainblock.ErrReasonNotFound
	}
	return nil
}

type CreateBlockResult struct {
	BatchID   string   `json:"batch_id"`
	SeriesID  string   `json:"series_id,omitempty"`
	Rows      int      `json:"rows"`
	Cancelled []string `json:"cancelled_reservations,omitempty"`
}

// CreateBlockHandler commits one logical blocking event: one row per
// (court, date) pair, all sharing a fresh batch id, inside one transaction
// together with the cascade cancellation of every conflicting reservation.
// A block always wins; there is no rejection path for "already booked".
type CreateBlockHandler struct {
	UoWFactory uow.Factory
	Clock      clock.Clock
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
	Notifier   policies.Notifier
	Audit      policies.Audit
	Logger     *slog.Logger
}

func (h *CreateBlockHandler) Handle(ctx context.Context, cmd CreateBlockCommand) (*CreateBlockResult, error) {
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

	loc := h.Clock.Location()
	now := h.Clock.Now()

	dates, err := cmd.Rule.Expand(loc)
	if err != nil {
		return nil, err
	}
	reason, err := unit.Reasons().ByID(ctx, cmd.ReasonID)
	if err != nil {
		return nil, err
	}
	if !reason.Active {
		return nil, ErrReasonDisabled
	}

	conflicts, err := scanConflicts(ctx, unit, cmd.CourtIDs, dates, cmd.Start, cmd.End)
	if err != nil {
		return nil, err
	}

	batchID := domainblock.BatchID(uuid.NewString())
	var seriesID domainblock.SeriesID
	if cmd.Rule.Recurring() {
		seriesID = domainblock.SeriesID(uuid.NewString())
	}

	rows := make([]*domainblock.Block, 0, len(cmd.CourtIDs)*len(dates))
	for _, date := range dates {
		for _, courtID := range cmd.CourtIDs {
			rows = append(rows, &domainblock.Block{
				ID:        domainblock.ID(uuid.NewString()),
				CourtID:   courtID,
				Date:      date,
				Start:     cmd.Start,
				End:       cmd.End,
				ReasonID:  cmd.ReasonID,
				Details:   cmd.Details,
				BatchID:   batchID,
				SeriesID:  seriesID,
				CreatedBy: cmd.ActorID,
				CreatedAt: now.UTC(),
			})
		}
	}
	if err := unit.Blocks().InsertAll(ctx, rows); err != nil {
		return nil, err
	}
	if err := unit.Reasons().AdjustUsage(ctx, cmd.ReasonID, int64(len(rows))); err != nil {
		return nil, err
	}

	var pending []events.DomainEvent
	cancelledIDs := make([]string, 0, len(conflicts))
	for _, res := range conflicts {
		if err := res.Cancel(domainreservation.CauseBlock, cmd.ActorID, now); err != nil {
			return nil, err
		}
		if err := unit.Reservations().Save(ctx, res); err != nil {
			return nil, err
		}
		pending = append(pending, res.PendingEvents()...)
		res.ClearEvents()
		cancelledIDs = append(cancelledIDs, string(res.ID))
	}

	courtSet := make([]domaincourt.ID, len(cmd.CourtIDs))
	copy(courtSet, cmd.CourtIDs)
	pending = append(pending, domainblock.BatchCreated{
		BatchID:   batchID,
		SeriesID:  seriesID,
		CourtIDs:  courtSet,
		Dates:     dates,
		Start:     cmd.Start,
		End:       cmd.End,
		ReasonID:  cmd.ReasonID,
		Cancelled: len(conflicts),
		ActorID:   cmd.ActorID,
		At:        now.UTC(),
	})
	if err := outbox.RecordDomainEvents(ctx, h.Outbox, h.Encoder, pending); err != nil {
		return nil, err
	}

	if managed {
		if err := unit.Commit(ctx); err != nil {
			return nil, err
		}
		committed = true
	}

	for _, res := range conflicts {
		if h.Notifier != nil {
			h.Notifier.ReservationCancelled(ctx, res, domainreservation.CauseBlock)
		}
	}
	if h.Audit != nil {
		h.Audit.Record(ctx, policies.AuditEntry{Operation: createKey, ActorID: cmd.ActorID, After: map[string]any{
			"batch_id":  string(batchID),
			"series_id": string(seriesID),
			"rows":      len(rows),
			"cancelled": cancelledIDs,
		}})
	}
	return &CreateBlockResult{
		BatchID:   string(batchID),
		SeriesID:  string(seriesID),
		Rows:      len(rows),
		Cancelled: cancelledIDs,
	}, nil
}

// beginIfUnmanaged reuses the contextual unit of work when present.
func beginIfUnmanaged(ctx context.Context, factory uow.Factory) (uow.UnitOfWork, bool, error) {
	if unit, err := uow.Require(ctx); err == nil {
		return unit, false, nil
	}
	if factory == nil {
		return nil, false, uow.ErrUnitOfWorkMissing
	}
	unit, err := factory.Begin(ctx, uow.TxOptions{})
	if err != nil {
		return nil, false, err
	}
	return unit, true, nil
}
