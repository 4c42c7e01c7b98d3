package uow

import (
	"context"
	"errors"
	"testing"

	domainblock "courtside/internal/domain/block"
	domaincourt "courtside/internal/domain/court"
	domainreservation "courtside/internal/domain/reservation"
)

type stubUnit struct{}

func (stubUnit) Courts() domaincourt.Repository             { return nil }
func (stubUnit) Reservations() domainreservation.Repository { return nil }
func (stubUnit) Blocks() domainblock.Repository             { return nil }
func (stubUnit) Reasons() domainblock.ReasonRepository      { return nil }
func (stubUnit) Commit(context.Context) error               { return nil }
func (stubUnit) Rollback(context.Context) error             { return nil }

func TestRequire(t *testing.T) {
	ctx := context.Background()

	if _, err := Require(ctx); !errors.Is(err, ErrUnitOfWorkMissing) {
		t.Fatalf("bare context: err = %v, want ErrUnitOfWorkMissing", err)
	}

	unit := stubUnit{}
	got, err := Require(ContextWithUnitOfWork(ctx, unit))
	if err != nil {
		t.Fatalf("Require: %v", err)
	}
	if got != unit {
		t.Fatalf("Require returned %v, want the stored unit", got)
	}
}

func TestFromContextIgnoresForeignValues(t *testing.T) {
	type otherKey struct{}
	ctx := context.WithValue(context.Background(), otherKey{}, "x")
	if _, ok := FromContext(ctx); ok {
		t.Fatal("FromContext must not find a unit in a bare context")
	}
}
