package blocks

import (
	"context"
	"log/slog"

	"courtside/internal/app/outbox"
	"courtside/internal/app/policies"
	"courtside/internal/app/uow"
	domainblock "courtside/internal/domain/block"
	"courtside/internal/domain/shared/clock"
	"courtside/internal/domain/shared/events"
)

const deleteKey = "blocks.delete"

type DeleteBlockCommand struct {
	BatchID       string
	TargetBlockID string
	Scope         domainblock.Scope
	ActorID       string
}

func (c DeleteBlockCommand) Key() string { return deleteKey }

func (c DeleteBlockCommand) Validate() error {
	if c.BatchID == "" {
		return domainblock.ErrBatchNotFound
	}
	if _, ok := domainblock.ParseScope(string(c.Scope)); !ok {
		return ErrUnknownScope
	}
	return nil
}

type DeleteBlockResult struct {
	Removed  int `json:"removed"`
	Retained int `json:"retained"`
}

// DeleteBlockHandler removes blocking rows within the selected scope.
// Historical instances (date before today) are retained as evidence even
// when their series is deleted; removal of the remaining rows is
// all-or-nothing.
type DeleteBlockHandler struct {
	UoWFactory uow.Factory
	Clock      clock.Clock
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
	Audit      policies.Audit
	Logger     *slog.Logger
}

func (h *DeleteBlockHandler) Handle(ctx context.Context, cmd DeleteBlockCommand) (*DeleteBlockResult, error) {
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

	targets, seriesID, err := resolveScope(ctx, unit, cmd.BatchID, cmd.TargetBlockID, cmd.Scope)
	if err != nil {
		return nil, err
	}

	today := clock.DateOf(h.Clock.Now().In(h.Clock.Location()))
	var removable []domainblock.ID
	retained := 0
	usage := map[string]int64{}
	for _, row := range targets {
		if row.Date < today {
			retained++
			continue
		}
		removable = append(removable, row.ID)
		usage[row.ReasonID]--
	}
	if len(removable) > 0 {
		if err := unit.Blocks().DeleteAll(ctx, removable); err != nil {
			return nil, err
		}
		for reasonID, delta := range usage {
			if err := unit.Reasons().AdjustUsage(ctx, reasonID, delta); err != nil {
				return nil, err
			}
		}
	}

	ev := domainblock.BatchDeleted{
		BatchID:  domainblock.BatchID(cmd.BatchID),
		SeriesID: seriesID,
		Scope:    cmd.Scope,
		Removed:  len(removable),
		Retained: retained,
		ActorID:  cmd.ActorID,
		At:       h.Clock.Now().UTC(),
	}
	if err := outbox.RecordDomainEvents(ctx, h.Outbox, h.Encoder, []events.DomainEvent{ev}); err != nil {
		return nil, err
	}

	if managed {
		if err := unit.Commit(ctx); err != nil {
			return nil, err
		}
		committed = true
	}
	if h.Audit != nil {
		h.Audit.Record(ctx, policies.AuditEntry{Operation: deleteKey, ActorID: cmd.ActorID, After: ev})
	}
	return &DeleteBlockResult{Removed: len(removable), Retained: retained}, nil
}
