package blocks

import (
	"context"
	"errors"
	"testing"
	"time"

	"courtside/internal/app/uow"
	domainblock "courtside/internal/domain/block"
	domaincourt "courtside/internal/domain/court"
	domainreservation "courtside/internal/domain/reservation"
	"courtside/internal/domain/shared/clock"
	"courtside/internal/infra/storage/memory"
)

type notifierStub struct {
	cancelled []string
}

func (n *notifierStub) ReservationCancelled(_ context.Context, r *domainreservation.Reservation, _ domainreservation.CancelCause) {
	n.cancelled = append(n.cancelled, string(r.ID))
}

type blockEnv struct {
	store    *memory.Store
	clk      *clock.FixedClock
	notifier *notifierStub
	create   *CreateBlockHandler
	edit     *EditBlockHandler
	del      *DeleteBlockHandler
	preview  *PreviewHandler
}

func newBlockEnv(t *testing.T) *blockEnv {
	t.Helper()
	store := memory.NewStore()
	ctx := context.Background()
	for i := 1; i <= 3; i++ {
		if err := store.Courts().Save(ctx, &domaincourt.Court{ID: domaincourt.ID(i), Name: "Court"}); err != nil {
			t.Fatalf("seed court: %v", err)
		}
	}
	clk := clock.Fixed(time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC))
	seedReason(t, store, "maintenance")
	notifier := &notifierStub{}
	return &blockEnv{
		store:    store,
		clk:      clk,
		notifier: notifier,
		create:   &CreateBlockHandler{UoWFactory: store, Clock: clk, Notifier: notifier},
		edit:     &EditBlockHandler{UoWFactory: store, Clock: clk},
		del:      &DeleteBlockHandler{UoWFactory: store, Clock: clk},
		preview:  &PreviewHandler{UoWFactory: store, Clock: clk},
	}
}

func seedReason(t *testing.T, store *memory.Store, id string) {
	t.Helper()
	unit, err := store.Begin(context.Background(), uow.TxOptions{})
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	reason := &domainblock.Reason{ID: id, Name: id, Active: true}
	if err := unit.Reasons().Save(context.Background(), reason); err != nil {
		t.Fatalf("seed reason: %v", err)
	}
}

func seedReservation(t *testing.T, store *memory.Store, id string, court int, date, start, end, holder string) {
	t.Helper()
	res, err := domainreservation.New(domainreservation.CreateParams{
		ID:        domainreservation.ID(id),
		CourtID:   domaincourt.ID(court),
		Date:      date,
		Start:     start,
		End:       end,
		HolderID:  holder,
		CreatedAt: time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("reservation %s: %v", id, err)
	}
	res.ClearEvents()
	if err := store.Reservations().Save(context.Background(), res); err != nil {
		t.Fatalf("save reservation %s: %v", id, err)
	}
}

func TestCreateBlockCascadesCancellation(t *testing.T) {
	env := newBlockEnv(t)
	ctx := context.Background()

	seedReservation(t, env.store, "hit", 3, "2025-06-01", "14:00", "15:00", "m1")
	seedReservation(t, env.store, "before", 3, "2025-06-01", "12:00", "13:00", "m2")
	seedReservation(t, env.store, "otherCourt", 2, "2025-06-01", "14:00", "15:00", "m3")

	result, err := env.create.Handle(ctx, CreateBlockCommand{
		CourtIDs: []domaincourt.ID{3},
		Rule:     domainblock.SingleDate("2025-06-01"),
		Start:    "13:00",
		End:      "16:00",
		ReasonID: "maintenance",
		ActorID:  "staff",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if result.Rows != 1 {
		t.Fatalf("rows = %d, want 1", result.Rows)
	}
	if len(result.Cancelled) != 1 || result.Cancelled[0] != "hit" {
		t.Fatalf("cancelled = %v, want [hit]", result.Cancelled)
	}

	hit, _ := env.store.Reservations().ByID(ctx, "hit")
	if hit.Status != domainreservation.StatusCancelled || hit.CancelCause != domainreservation.CauseBlock {
		t.Fatalf("got %s/%s, want CANCELLED/BLOCK", hit.Status, hit.CancelCause)
	}
	untouched, _ := env.store.Reservations().ByID(ctx, "before")
	if untouched.Status != domainreservation.StatusActive {
		t.Fatal("a reservation ending at the block start must survive")
	}
	if len(env.notifier.cancelled) != 1 || env.notifier.cancelled[0] != "hit" {
		t.Fatalf("notifications = %v, want [hit]", env.notifier.cancelled)
	}

	unit, _ := env.store.Begin(ctx, uow.TxOptions{})
	reason, _ := unit.Reasons().ByID(ctx, "maintenance")
	if reason.UsageCount != 1 {
		t.Fatalf("usage = %d, want 1", reason.UsageCount)
	}
}

func TestPreviewMatchesCommit(t *testing.T) {
	env := newBlockEnv(t)
	ctx := context.Background()

	seedReservation(t, env.store, "a", 1, "2025-06-02", "10:00", "11:00", "m1")
	seedReservation(t, env.store, "b", 2, "2025-06-03", "10:00", "11:00", "m2")
	seedReservation(t, env.store, "miss", 1, "2025-06-02", "12:00", "13:00", "m3")

	rule := domainblock.DailyRun("2025-06-02", 2)
	courts := []domaincourt.ID{1, 2}

	previewed, err := env.preview.Handle(ctx, PreviewQuery{CourtIDs: courts, Rule: rule, Start: "10:00", End: "11:00"})
	if err != nil {
		t.Fatalf("preview: %v", err)
	}
	committed, err := env.create.Handle(ctx, CreateBlockCommand{
		CourtIDs: courts, Rule: rule, Start: "10:00", End: "11:00", ReasonID: "maintenance", ActorID: "staff",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if len(previewed) != len(committed.Cancelled) {
		t.Fatalf("preview %d conflicts, commit cancelled %d", len(previewed), len(committed.Cancelled))
	}
	for i, view := range previewed {
		if view.ReservationID != committed.Cancelled[i] {
			t.Fatalf("position %d: preview %s, commit %s", i, view.ReservationID, committed.Cancelled[i])
		}
	}
	if committed.SeriesID == "" {
		t.Fatal("recurring rule must produce a series id")
	}
	if committed.Rows != 4 {
		t.Fatalf("rows = %d, want courts x dates = 4", committed.Rows)
	}
}

func TestCreateBlockRejectsDisabledReason(t *testing.T) {
	env := newBlockEnv(t)
	ctx := context.Background()

	disable := &DeleteReasonHandler{UoWFactory: env.store}
	if _, err := disable.Handle(ctx, DeleteReasonCommand{ReasonID: "maintenance", ActorID: "staff"}); err != nil {
		t.Fatalf("disable: %v", err)
	}

	_, err := env.create.Handle(ctx, CreateBlockCommand{
		CourtIDs: []domaincourt.ID{1},
		Rule:     domainblock.SingleDate("2025-06-02"),
		Start:    "10:00",
		End:      "11:00",
		ReasonID: "maintenance",
		ActorID:  "staff",
	})
	if !errors.Is(err, ErrReasonDisabled) {
		t.Fatalf("got %v, want ErrReasonDisabled", err)
	}
}

func createWeeklySeries(t *testing.T, env *blockEnv) *CreateBlockResult {
	t.Helper()
	result, err := env.create.Handle(context.Background(), CreateBlockCommand{
		CourtIDs: []domaincourt.ID{1},
		Rule:     domainblock.WeeklyOn("2025-06-02", "2025-06-16", time.Monday),
		Start:    "10:00",
		End:      "12:00",
		ReasonID: "maintenance",
		ActorID:  "staff",
	})
	if err != nil {
		t.Fatalf("create series: %v", err)
	}
	if result.Rows != 3 {
		t.Fatalf("rows = %d, want 3 Mondays", result.Rows)
	}
	return result
}

func seriesRows(t *testing.T, env *blockEnv, seriesID string) map[string]*domainblock.Block {
	t.Helper()
	unit, _ := env.store.Begin(context.Background(), uow.TxOptions{})
	rows, err := unit.Blocks().BySeries(context.Background(), domainblock.SeriesID(seriesID))
	if err != nil {
		t.Fatalf("series rows: %v", err)
	}
	byDate := make(map[string]*domainblock.Block, len(rows))
	for _, row := range rows {
		byDate[row.Date] = row
	}
	return byDate
}

func TestEditScopes(t *testing.T) {
	env := newBlockEnv(t)
	ctx := context.Background()
	created := createWeeklySeries(t, env)

	rows := seriesRows(t, env, created.SeriesID)
	middle := rows["2025-06-09"]

	newEnd := "13:00"
	result, err := env.edit.Handle(ctx, EditBlockCommand{
		BatchID:       created.BatchID,
		TargetBlockID: string(middle.ID),
		Scope:         domainblock.ScopeSingle,
		Changes:       domainblock.Changes{End: &newEnd},
		ActorID:       "staff",
	})
	if err != nil {
		t.Fatalf("single edit: %v", err)
	}
	if result.Touched != 1 {
		t.Fatalf("touched = %d, want 1", result.Touched)
	}

	rows = seriesRows(t, env, created.SeriesID)
	if rows["2025-06-09"].End != "13:00" || !rows["2025-06-09"].Modified {
		t.Fatalf("edited row not updated: %+v", rows["2025-06-09"])
	}
	if first := rows["2025-06-02"]; first.End != "12:00" || first.Modified {
		t.Fatalf("sibling row must stay untouched: %+v", first)
	}

	newStart := "09:00"
	result, err = env.edit.Handle(ctx, EditBlockCommand{
		BatchID:       created.BatchID,
		TargetBlockID: string(middle.ID),
		Scope:         domainblock.ScopeFuture,
		Changes:       domainblock.Changes{Start: &newStart},
		ActorID:       "staff",
	})
	if err != nil {
		t.Fatalf("future edit: %v", err)
	}
	if result.Touched != 2 {
		t.Fatalf("future touched = %d, want target plus tail = 2", result.Touched)
	}

	rows = seriesRows(t, env, created.SeriesID)
	if rows["2025-06-02"].Start != "10:00" {
		t.Fatal("rows before the target date must keep their window")
	}
	if rows["2025-06-09"].Start != "09:00" || rows["2025-06-16"].Start != "09:00" {
		t.Fatal("target and later rows must take the new start")
	}

	allEnd := "11:00"
	if _, err := env.edit.Handle(ctx, EditBlockCommand{
		BatchID: created.BatchID,
		Scope:   domainblock.ScopeAll,
		Changes: domainblock.Changes{End: &allEnd},
		ActorID: "staff",
	}); err != nil {
		t.Fatalf("all edit: %v", err)
	}
	rows = seriesRows(t, env, created.SeriesID)
	for date, row := range rows {
		if row.End != "11:00" {
			t.Fatalf("%s end = %s, want 11:00", date, row.End)
		}
		if row.Modified {
			t.Fatalf("%s still marked modified after all-scope edit", date)
		}
	}
}

func TestEditRequiresTargetForScopedEdits(t *testing.T) {
	env := newBlockEnv(t)
	created := createWeeklySeries(t, env)

	newEnd := "13:00"
	_, err := env.edit.Handle(context.Background(), EditBlockCommand{
		BatchID: created.BatchID,
		Scope:   domainblock.ScopeSingle,
		Changes: domainblock.Changes{End: &newEnd},
		ActorID: "staff",
	})
	if !errors.Is(err, ErrTargetRequired) {
		t.Fatalf("got %v, want ErrTargetRequired", err)
	}
}

func TestDeleteRetainsHistoricalRows(t *testing.T) {
	env := newBlockEnv(t)
	ctx := context.Background()
	created := createWeeklySeries(t, env)

	// 2025-06-09 is a Monday; from there the first series row lies in the
	// past and must survive the deletion as evidence.
	env.clk.Set(time.Date(2025, 6, 9, 8, 0, 0, 0, time.UTC))

	result, err := env.del.Handle(ctx, DeleteBlockCommand{
		BatchID: created.BatchID,
		Scope:   domainblock.ScopeAll,
		ActorID: "staff",
	})
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if result.Removed != 2 || result.Retained != 1 {
		t.Fatalf("removed/retained = %d/%d, want 2/1", result.Removed, result.Retained)
	}

	rows := seriesRows(t, env, created.SeriesID)
	if len(rows) != 1 {
		t.Fatalf("rows left = %d, want 1", len(rows))
	}
	if _, ok := rows["2025-06-02"]; !ok {
		t.Fatal("the historical row must remain")
	}

	unit, _ := env.store.Begin(ctx, uow.TxOptions{})
	reason, _ := unit.Reasons().ByID(ctx, "maintenance")
	if reason.UsageCount != 1 {
		t.Fatalf("usage = %d, want 1 for the retained row", reason.UsageCount)
	}
}

func TestEditMovesReasonUsage(t *testing.T) {
	env := newBlockEnv(t)
	ctx := context.Background()
	seedReason(t, env.store, "resurfacing")
	created := createWeeklySeries(t, env)

	ghost := "ghost"
	if _, err := env.edit.Handle(ctx, EditBlockCommand{
		BatchID: created.BatchID,
		Scope:   domainblock.ScopeAll,
		Changes: domainblock.Changes{ReasonID: &ghost},
		ActorID: "staff",
	}); !errors.Is(err, domainblock.ErrReasonNotFound) {
		t.Fatalf("ghost reason: err = %v, want ErrReasonNotFound", err)
	}

	seedReason(t, env.store, "closed")
	unit, _ := env.store.Begin(ctx, uow.TxOptions{})
	closed, _ := unit.Reasons().ByID(ctx, "closed")
	closed.Disable()
	if err := unit.Reasons().Save(ctx, closed); err != nil {
		t.Fatalf("disable reason: %v", err)
	}
	closedID := "closed"
	if _, err := env.edit.Handle(ctx, EditBlockCommand{
		BatchID: created.BatchID,
		Scope:   domainblock.ScopeAll,
		Changes: domainblock.Changes{ReasonID: &closedID},
		ActorID: "staff",
	}); !errors.Is(err, ErrReasonDisabled) {
		t.Fatalf("disabled reason: err = %v, want ErrReasonDisabled", err)
	}

	rows := seriesRows(t, env, created.SeriesID)
	newReason := "resurfacing"
	if _, err := env.edit.Handle(ctx, EditBlockCommand{
		BatchID:       created.BatchID,
		TargetBlockID: string(rows["2025-06-09"].ID),
		Scope:         domainblock.ScopeSingle,
		Changes:       domainblock.Changes{ReasonID: &newReason},
		ActorID:       "staff",
	}); err != nil {
		t.Fatalf("single reason edit: %v", err)
	}
	assertUsage(t, env, "maintenance", 2)
	assertUsage(t, env, "resurfacing", 1)

	if _, err := env.edit.Handle(ctx, EditBlockCommand{
		BatchID: created.BatchID,
		Scope:   domainblock.ScopeAll,
		Changes: domainblock.Changes{ReasonID: &newReason},
		ActorID: "staff",
	}); err != nil {
		t.Fatalf("all reason edit: %v", err)
	}
	assertUsage(t, env, "maintenance", 0)
	assertUsage(t, env, "resurfacing", 3)

	result, err := env.del.Handle(ctx, DeleteBlockCommand{
		BatchID: created.BatchID,
		Scope:   domainblock.ScopeAll,
		ActorID: "staff",
	})
	if err != nil {
		t.Fatalf("delete after reason swap: %v", err)
	}
	if result.Removed != 3 {
		t.Fatalf("removed = %d, want 3", result.Removed)
	}
	assertUsage(t, env, "resurfacing", 0)
}

func assertUsage(t *testing.T, env *blockEnv, reasonID string, want int64) {
	t.Helper()
	unit, _ := env.store.Begin(context.Background(), uow.TxOptions{})
	reason, err := unit.Reasons().ByID(context.Background(), reasonID)
	if err != nil {
		t.Fatalf("reason %s: %v", reasonID, err)
	}
	if reason.UsageCount != want {
		t.Fatalf("usage(%s) = %d, want %d", reasonID, reason.UsageCount, want)
	}
}

func TestNonSeriesBatchEditsWhole(t *testing.T) {
	env := newBlockEnv(t)
	ctx := context.Background()

	created, err := env.create.Handle(ctx, CreateBlockCommand{
		CourtIDs: []domaincourt.ID{1, 2, 3},
		Rule:     domainblock.SingleDate("2025-06-02"),
		Start:    "10:00",
		End:      "11:00",
		ReasonID: "maintenance",
		ActorID:  "staff",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.SeriesID != "" {
		t.Fatal("single-date batch must not carry a series id")
	}

	newEnd := "12:00"
	result, err := env.edit.Handle(ctx, EditBlockCommand{
		BatchID: created.BatchID,
		Scope:   domainblock.ScopeSingle,
		Changes: domainblock.Changes{End: &newEnd},
		ActorID: "staff",
	})
	if err != nil {
		t.Fatalf("edit: %v", err)
	}
	if result.Touched != 3 {
		t.Fatalf("touched = %d, want the whole batch", result.Touched)
	}
}

func TestCreateBlockValidation(t *testing.T) {
	cmd := CreateBlockCommand{
		Rule:     domainblock.SingleDate("2025-06-02"),
		Start:    "10:00",
		End:      "11:00",
		ReasonID: "maintenance",
	}
	if err := cmd.Validate(); !errors.Is(err, domainblock.ErrNoCourts) {
		t.Fatalf("empty courts: got %v, want ErrNoCourts", err)
	}

	cmd.CourtIDs = []domaincourt.ID{1}
	cmd.End = "10:00"
	if err := cmd.Validate(); !errors.Is(err, domainblock.ErrInvalidWindow) {
		t.Fatalf("empty window: got %v, want ErrInvalidWindow", err)
	}
}
