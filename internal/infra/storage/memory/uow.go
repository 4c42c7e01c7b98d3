package memory

import (
	"context"

	"courtside/internal/app/uow"
	domainblock "courtside/internal/domain/block"
	domaincourt "courtside/internal/domain/court"
	domainreservation "courtside/internal/domain/reservation"
)

// Store bundles the in-memory repositories behind the unit-of-work factory.
// Repository operations take their own locks, so a unit is just a view onto
// the shared maps; Commit and Rollback are no-ops. Multi-row guarantees come
// from the repositories' all-or-nothing methods.
type Store struct {
	courts       *CourtRepository
	reservations *ReservationRepository
	blocks       *BlockRepository
	reasons      *ReasonRepository
}

func NewStore() *Store {
	return &Store{
		courts:       NewCourtRepository(),
		reservations: NewReservationRepository(),
		blocks:       NewBlockRepository(),
		reasons:      NewReasonRepository(),
	}
}

func (s *Store) Courts() *CourtRepository             { return s.courts }
func (s *Store) Reservations() *ReservationRepository { return s.reservations }

func (s *Store) Begin(ctx context.Context, opts uow.TxOptions) (uow.UnitOfWork, error) {
	return &unit{store: s}, nil
}

type unit struct {
	store *Store
}

func (u *unit) Courts() domaincourt.Repository             { return u.store.courts }
func (u *unit) Reservations() domainreservation.Repository { return u.store.reservations }
func (u *unit) Blocks() domainblock.Repository             { return u.store.blocks }
func (u *unit) Reasons() domainblock.ReasonRepository      { return u.store.reasons }

func (u *unit) Commit(ctx context.Context) error   { return nil }
func (u *unit) Rollback(ctx context.Context) error { return nil }
