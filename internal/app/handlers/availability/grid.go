package availability

import (
	"context"

	"courtside/internal/app/uow"
	domaincourt "courtside/internal/domain/court"
	"courtside/internal/domain/schedule"
	"courtside/internal/domain/shared/clock"
)

const gridKey = "availability.grid"

type GridQuery struct {
	CourtIDs []domaincourt.ID
	Date     string
	Viewer   schedule.Viewer
}

func (q GridQuery) Key() string { return gridKey }

// GridHandler is the read path everything else depends on: it projects
// reservations and blocks into one status per slot for a date.
type GridHandler struct {
	UoWFactory uow.Factory
	Clock      clock.Clock
	Window     schedule.Window
}

func (h *GridHandler) Handle(ctx context.Context, q GridQuery) (schedule.Grid, error) {
	unit, ok := uow.FromContext(ctx)
	if !ok {
		var err error
		unit, err = h.UoWFactory.Begin(ctx, uow.TxOptions{ReadOnly: true})
		if err != nil {
			return schedule.Grid{}, err
		}
		defer func() { _ = unit.Rollback(ctx) }()
	}

	courts := q.CourtIDs
	if len(courts) == 0 {
		all, err := unit.Courts().List(ctx)
		if err != nil {
			return schedule.Grid{}, err
		}
		for _, c := range all {
			if !c.Retired {
				courts = append(courts, c.ID)
			}
		}
	}

	reservations, err := unit.Reservations().ByDate(ctx, q.Date)
	if err != nil {
		return schedule.Grid{}, err
	}
	blocks, err := unit.Blocks().ByDate(ctx, q.Date)
	if err != nil {
		return schedule.Grid{}, err
	}
	return schedule.Build(h.Window, courts, q.Date, reservations, blocks, q.Viewer, h.Clock.Now(), h.Clock.Location())
}
