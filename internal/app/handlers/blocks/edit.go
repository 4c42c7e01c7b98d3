package blocks

import (
	"context"
	"errors"
	"log/slog"

	"courtside/internal/app/outbox"
	"courtside/internal/app/policies"
	"courtside/internal/app/uow"
	domainblock "courtside/internal/domain/block"
	"courtside/internal/domain/shared/clock"
	"courtside/internal/domain/shared/events"
)

const editKey = "blocks.edit"

var (
	ErrTargetRequired = errors.New("blocks: target block id required for this scope")
	ErrUnknownScope   = errors.New("blocks: unknown scope")
	ErrNoChanges      = errors.New("blocks: no changes provided")
)

type EditBlockCommand struct {
	BatchID       string
	TargetBlockID string
	Scope         domainblock.Scope
	Changes       domainblock.Changes
	ActorID       string
}

func (c EditBlockCommand) Key() string { return editKey }

func (c EditBlockCommand) Validate() error {
	if c.BatchID == "" {
		return domainblock.ErrBatchNotFound
	}
	if _, ok := domainblock.ParseScope(string(c.Scope)); !ok {
		return ErrUnknownScope
	}
	if c.Changes.Empty() {
		return ErrNoChanges
	}
	if c.Changes.Start != nil && c.Changes.End != nil && *c.Changes.End <= *c.Changes.Start {
		return domainblock.ErrInvalidWindow
	}
	return nil
}

type EditBlockResult struct {
	Touched int `json:"touched"`
}

// EditBlockHandler applies changes to one logical blocking event. For a
// series, the scope selects the rows: single marks its row modified, future
// touches the tail from the target's date on, all touches everything and
// clears per-row customizations. Non-series batches are always edited
// whole.
type EditBlockHandler struct {
	UoWFactory uow.Factory
	Clock      clock.Clock
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
	Audit      policies.Audit
	Logger     *slog.Logger
}

func (h *EditBlockHandler) Handle(ctx context.Context, cmd EditBlockCommand) (*EditBlockResult, error) {
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

	if cmd.Changes.ReasonID != nil {
		reason, err := unit.Reasons().ByID(ctx, *cmd.Changes.ReasonID)
		if err != nil {
			return nil, err
		}
		if !reason.Active {
			return nil, ErrReasonDisabled
		}
	}

	// Re-pointing a row at another reason moves its usage between the
	// counters, keeping each counter equal to its referencing rows.
	usage := map[string]int64{}
	for _, row := range targets {
		prevReason := row.ReasonID
		cmd.Changes.Apply(row)
		if row.End <= row.Start {
			return nil, domainblock.ErrInvalidWindow
		}
		if row.ReasonID != prevReason {
			usage[prevReason]--
			usage[row.ReasonID]++
		}
		switch cmd.Scope {
		case domainblock.ScopeSingle:
			if seriesID != "" {
				row.Modified = true
			}
		case domainblock.ScopeAll:
			// An all-scope edit supersedes earlier single-instance
			// customizations.
			row.Modified = false
		}
		if err := unit.Blocks().Update(ctx, row); err != nil {
			return nil, err
		}
	}
	for reasonID, delta := range usage {
		if delta == 0 {
			continue
		}
		if err := unit.Reasons().AdjustUsage(ctx, reasonID, delta); err != nil {
			return nil, err
		}
	}

	ev := domainblock.BatchEdited{
		BatchID:  domainblock.BatchID(cmd.BatchID),
		SeriesID: seriesID,
		Scope:    cmd.Scope,
		Touched:  len(targets),
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
		h.Audit.Record(ctx, policies.AuditEntry{Operation: editKey, ActorID: cmd.ActorID, After: ev})
	}
	return &EditBlockResult{Touched: len(targets)}, nil
}

// resolveScope loads the rows a scoped edit or deletion targets. It returns
// the rows and the series id (empty for plain batches).
func resolveScope(ctx context.Context, unit uow.UnitOfWork, batchID, targetID string, scope domainblock.Scope) ([]*domainblock.Block, domainblock.SeriesID, error) {
	batchRows, err := unit.Blocks().ByBatch(ctx, domainblock.BatchID(batchID))
	if err != nil {
		return nil, "", err
	}
	if len(batchRows) == 0 {
		return nil, "", domainblock.ErrBatchNotFound
	}
	seriesID := batchRows[0].SeriesID
	if seriesID == "" {
		// Every row of a plain batch shares one date and window; any scope
		// resolves to the whole batch.
		return batchRows, "", nil
	}

	seriesRows, err := unit.Blocks().BySeries(ctx, seriesID)
	if err != nil {
		return nil, "", err
	}
	switch scope {
	case domainblock.ScopeAll:
		return seriesRows, seriesID, nil
	case domainblock.ScopeSingle, domainblock.ScopeFuture:
		if targetID == "" {
			return nil, "", ErrTargetRequired
		}
		var target *domainblock.Block
		for _, row := range seriesRows {
			if row.ID == domainblock.ID(targetID) {
				target = row
				break
			}
		}
		if target == nil {
			return nil, "", domainblock.ErrBlockNotFound
		}
		if scope == domainblock.ScopeSingle {
			return []*domainblock.Block{target}, seriesID, nil
		}
		var tail []*domainblock.Block
		for _, row := range seriesRows {
			if row.Date >= target.Date {
				tail = append(tail, row)
			}
		}
		return tail, seriesID, nil
	default:
		return nil, "", ErrUnknownScope
	}
}
