package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"courtside/internal/app/uow"
	domainblock "courtside/internal/domain/block"
	domaincourt "courtside/internal/domain/court"
	domainreservation "courtside/internal/domain/reservation"
)

var ErrUnitOfWorkNotConfigured = errors.New("mongo: unit of work factory missing database")

// Factory wires Mongo sessions into the generic UnitOfWork interface. The
// repositories are stateless over their collections; transactional scoping
// comes from the session context injected by the middleware chain.
type Factory struct {
	DB *mongo.Database

	CourtRepo       domaincourt.Repository
	ReservationRepo domainreservation.Repository
	BlockRepo       domainblock.Repository
	ReasonRepo      domainblock.ReasonRepository
}

func (f Factory) Begin(ctx context.Context, opts uow.TxOptions) (uow.UnitOfWork, error) {
	if f.DB == nil {
		return nil, ErrUnitOfWorkNotConfigured
	}
	session, err := f.DB.Client().StartSession()
	if err != nil {
		return nil, err
	}
	txnOpts := options.Transaction().
		SetReadConcern(f.DB.ReadConcern()).
		SetWriteConcern(f.DB.WriteConcern())
	if err := session.StartTransaction(txnOpts); err != nil {
		session.EndSession(ctx)
		return nil, err
	}
	return &Unit{
		session:      session,
		courts:       f.CourtRepo,
		reservations: f.ReservationRepo,
		blocks:       f.BlockRepo,
		reasons:      f.ReasonRepo,
	}, nil
}

type Unit struct {
	session mongo.Session

	courts       domaincourt.Repository
	reservations domainreservation.Repository
	blocks       domainblock.Repository
	reasons      domainblock.ReasonRepository
}

func (u *Unit) Courts() domaincourt.Repository             { return u.courts }
func (u *Unit) Reservations() domainreservation.Repository { return u.reservations }
func (u *Unit) Blocks() domainblock.Repository             { return u.blocks }
func (u *Unit) Reasons() domainblock.ReasonRepository      { return u.reasons }

func (u *Unit) Commit(ctx context.Context) error {
	defer u.session.EndSession(ctx)
	return u.session.CommitTransaction(ctx)
}

func (u *Unit) Rollback(ctx context.Context) error {
	defer u.session.EndSession(ctx)
	return u.session.AbortTransaction(ctx)
}

// InjectContext makes the session visible to the repositories so collection
// calls join the transaction.
func (u *Unit) InjectContext(ctx context.Context) context.Context {
	return mongo.NewSessionContext(ctx, u.session)
}
