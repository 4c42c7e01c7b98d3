package blocks

import (
	"context"

	"courtside/internal/app/uow"
	domainblock "courtside/internal/domain/block"
	domaincourt "courtside/internal/domain/court"
	"courtside/internal/domain/shared/clock"
)

const previewKey = "blocks.preview"

type PreviewQuery struct {
	CourtIDs []domaincourt.ID
	Rule     domainblock.Rule
	Start    string
	End      string
}

func (q PreviewQuery) Key() string { return previewKey }

func (q PreviewQuery) Validate() error {
	if len(q.CourtIDs) == 0 {
		return domainblock.ErrNoCourts
	}
	if q.End <= q.Start {
		return domainblock.ErrInvalidWindow
	}
	return nil
}

// PreviewHandler runs the creation-time conflict scan without writing
// anything, so an operator can review affected bookings before committing.
// Given no intervening writes, the result set equals what an immediate
// commit with the same parameters would cascade-cancel.
type PreviewHandler struct {
	UoWFactory uow.Factory
	Clock      clock.Clock
}

func (h *PreviewHandler) Handle(ctx context.Context, q PreviewQuery) ([]ConflictingReservation, error) {
	unit, managed, err := beginIfUnmanaged(ctx, h.UoWFactory)
	if err != nil {
		return nil, err
	}
	if managed {
		defer func() { _ = unit.Rollback(ctx) }()
	}

	dates, err := q.Rule.Expand(h.Clock.Location())
	if err != nil {
		return nil, err
	}
	conflicts, err := scanConflicts(ctx, unit, q.CourtIDs, dates, q.Start, q.End)
	if err != nil {
		return nil, err
	}
	return conflictViews(conflicts), nil
}
