package availability

import (
	"context"
	"testing"
	"time"

	"courtside/internal/app/uow"
	domainblock "courtside/internal/domain/block"
	domaincourt "courtside/internal/domain/court"
	domainreservation "courtside/internal/domain/reservation"
	"courtside/internal/domain/schedule"
	"courtside/internal/domain/shared/clock"
	"courtside/internal/infra/storage/memory"
)

func TestGridDefaultsToActiveCourts(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()
	if err := store.Courts().Save(ctx, &domaincourt.Court{ID: 1, Name: "Center"}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if err := store.Courts().Save(ctx, &domaincourt.Court{ID: 2, Name: "Old", Retired: true}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	clk := clock.Fixed(time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC))
	h := &GridHandler{UoWFactory: store, Clock: clk, Window: schedule.DefaultWindow()}

	grid, err := h.Handle(ctx, GridQuery{Date: "2025-06-01"})
	if err != nil {
		t.Fatalf("grid: %v", err)
	}
	slots := len(schedule.DefaultWindow().SlotTimes())
	if len(grid.Cells) != slots {
		t.Fatalf("cells = %d, want %d for the single active court", len(grid.Cells), slots)
	}
	for _, cell := range grid.Cells {
		if cell.CourtID != 1 {
			t.Fatalf("retired court leaked into the grid: %+v", cell)
		}
	}
}

func TestGridOverlaysReservationsAndBlocks(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()
	if err := store.Courts().Save(ctx, &domaincourt.Court{ID: 1, Name: "Center"}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	res, err := domainreservation.New(domainreservation.CreateParams{
		ID: "r1", CourtID: 1, Date: "2025-06-01", Start: "14:00", End: "15:00",
		HolderID: "m1", CreatedAt: time.Now(),
	})
	if err != nil {
		t.Fatalf("reservation: %v", err)
	}
	res.ClearEvents()
	if err := store.Reservations().Save(ctx, res); err != nil {
		t.Fatalf("save: %v", err)
	}
	unit, _ := store.Begin(ctx, uow.TxOptions{})
	blockRow := &domainblock.Block{
		ID: "b1", CourtID: 1, Date: "2025-06-01", Start: "10:00", End: "11:00",
		ReasonID: "maint", BatchID: "batch-1",
	}
	if err := unit.Blocks().InsertAll(ctx, []*domainblock.Block{blockRow}); err != nil {
		t.Fatalf("insert block: %v", err)
	}

	clk := clock.Fixed(time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC))
	h := &GridHandler{UoWFactory: store, Clock: clk, Window: schedule.DefaultWindow()}

	grid, err := h.Handle(ctx, GridQuery{
		CourtIDs: []domaincourt.ID{1},
		Date:     "2025-06-01",
		Viewer:   schedule.Viewer{MemberID: "m1", Attribution: true},
	})
	if err != nil {
		t.Fatalf("grid: %v", err)
	}

	statuses := map[string]schedule.Status{}
	for _, cell := range grid.Cells {
		statuses[cell.Start] = cell.Status
	}
	if statuses["10:00"] != schedule.StatusBlocked {
		t.Fatalf("10:00 = %s, want blocked", statuses["10:00"])
	}
	if statuses["14:00"] != schedule.StatusReserved {
		t.Fatalf("14:00 = %s, want reserved", statuses["14:00"])
	}
	if statuses["06:00"] != schedule.StatusPast {
		t.Fatalf("06:00 = %s, want past", statuses["06:00"])
	}
	if statuses["09:00"] != schedule.StatusAvailable {
		t.Fatalf("09:00 = %s, want available", statuses["09:00"])
	}
}
