package uow

import (
	"context"

	domainblock "courtside/internal/domain/block"
	domaincourt "courtside/internal/domain/court"
	domainreservation "courtside/internal/domain/reservation"
)

// UnitOfWork coordinates repositories inside one transaction boundary.
// Block-batch creation, cascade cancellation and audit emission run within a
// single unit, so a reader never observes a committed block whose
// conflicting reservations are still active.
type UnitOfWork interface {
	Courts() domaincourt.Repository
	Reservations() domainreservation.Repository
	Blocks() domainblock.Repository
	Reasons() domainblock.ReasonRepository

	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// Factory starts unit of work instances.
type Factory interface {
	Begin(ctx context.Context, opts TxOptions) (UnitOfWork, error)
}

// TxOptions configure transaction boundaries.
type TxOptions struct {
	ReadOnly bool
}
