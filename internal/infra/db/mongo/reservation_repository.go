package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domaincourt "courtside/internal/domain/court"
	domainreservation "courtside/internal/domain/reservation"
)

var ErrConcurrentUpdate = errors.New("mongo: concurrent update detected")

type ReservationRepository struct {
	col *mongo.Collection
}

// NewReservationRepository sets up the collection and its indexes. The
// partial unique index over (court_id, date, start) restricted to ACTIVE rows
// is what turns a booking race into exactly one winner; cancelled history
// never collides with new bookings.
func NewReservationRepository(db *mongo.Database) *ReservationRepository {
	col := db.Collection("agg_reservation")
	slotIdx := mongo.IndexModel{
		Keys: bson.D{{Key: "court_id", Value: 1}, {Key: "date", Value: 1}, {Key: "start", Value: 1}},
		Options: options.Index().
			SetUnique(true).
			SetPartialFilterExpression(bson.M{"status": string(domainreservation.StatusActive)}),
	}
	holderIdx := mongo.IndexModel{Keys: bson.D{{Key: "holder_id", Value: 1}, {Key: "status", Value: 1}}}
	dateIdx := mongo.IndexModel{Keys: bson.D{{Key: "date", Value: 1}}}
	_, _ = col.Indexes().CreateMany(context.Background(), []mongo.IndexModel{slotIdx, holderIdx, dateIdx})
	return &ReservationRepository{col: col}
}

func (r *ReservationRepository) ByID(ctx context.Context, id domainreservation.ID) (*domainreservation.Reservation, error) {
	var doc reservationDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainreservation.ErrReservationNotFound
		}
		return nil, err
	}
	return doc.toAggregate(), nil
}

func (r *ReservationRepository) Save(ctx context.Context, res *domainreservation.Reservation) error {
	doc := newReservationDocument(res)
	filter := bson.M{"_id": doc.ID, "version": res.Version}
	doc.Version = res.Version + 1
	opts := options.Update().SetUpsert(true)
	out, err := r.col.UpdateOne(ctx, filter, bson.M{"$set": doc}, opts)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			// Either the slot index or the _id upsert collided. A fresh row
			// hitting the slot index means the race was lost.
			if res.Version == 0 {
				return domainreservation.ErrSlotUnavailable
			}
			return ErrConcurrentUpdate
		}
		return err
	}
	if out.MatchedCount == 0 && out.UpsertedCount == 0 {
		return ErrConcurrentUpdate
	}
	res.Version = doc.Version
	return nil
}

func (r *ReservationRepository) ActiveByHolder(ctx context.Context, holderID string) ([]*domainreservation.Reservation, error) {
	filter := bson.M{"holder_id": holderID, "status": string(domainreservation.StatusActive)}
	return r.find(ctx, filter)
}

func (r *ReservationRepository) ByDate(ctx context.Context, date string) ([]*domainreservation.Reservation, error) {
	return r.find(ctx, bson.M{"date": date})
}

func (r *ReservationRepository) find(ctx context.Context, filter bson.M) ([]*domainreservation.Reservation, error) {
	cur, err := r.col.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var out []*domainreservation.Reservation
	for cur.Next(ctx) {
		var doc reservationDocument
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		out = append(out, doc.toAggregate())
	}
	return out, cur.Err()
}

type reservationDocument struct {
	ID          string `bson:"_id"`
	CourtID     int    `bson:"court_id"`
	Date        string `bson:"date"`
	Start       string `bson:"start"`
	End         string `bson:"end"`
	HolderID    string `bson:"holder_id"`
	BookerID    string `bson:"booker_id"`
	ShortNotice bool   `bson:"short_notice"`
	Status      string `bson:"status"`
	CancelCause string `bson:"cancel_cause,omitempty"`
	CreatedAt   int64  `bson:"created_at"`
	CancelledAt int64  `bson:"cancelled_at,omitempty"`
	Version     int64  `bson:"version"`
}

func newReservationDocument(res *domainreservation.Reservation) reservationDocument {
	doc := reservationDocument{
		ID:          string(res.ID),
		CourtID:     int(res.CourtID),
		Date:        res.Date,
		Start:       res.Start,
		End:         res.End,
		HolderID:    res.HolderID,
		BookerID:    res.BookerID,
		ShortNotice: res.ShortNotice,
		Status:      string(res.Status),
		CancelCause: string(res.CancelCause),
		CreatedAt:   res.CreatedAt.UnixMilli(),
		Version:     res.Version,
	}
	if !res.CancelledAt.IsZero() {
		doc.CancelledAt = res.CancelledAt.UnixMilli()
	}
	return doc
}

func (d reservationDocument) toAggregate() *domainreservation.Reservation {
	res := &domainreservation.Reservation{
		ID:          domainreservation.ID(d.ID),
		CourtID:     domaincourt.ID(d.CourtID),
		Date:        d.Date,
		Start:       d.Start,
		End:         d.End,
		HolderID:    d.HolderID,
		BookerID:    d.BookerID,
		ShortNotice: d.ShortNotice,
		Status:      domainreservation.Status(d.Status),
		CancelCause: domainreservation.CancelCause(d.CancelCause),
		CreatedAt:   time.UnixMilli(d.CreatedAt).UTC(),
		Version:     d.Version,
	}
	if d.CancelledAt != 0 {
		res.CancelledAt = time.UnixMilli(d.CancelledAt).UTC()
	}
	return res
}
