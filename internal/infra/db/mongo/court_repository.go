package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domaincourt "courtside/internal/domain/court"
)

type CourtRepository struct {
	col *mongo.Collection
}

func NewCourtRepository(db *mongo.Database) *CourtRepository {
	return &CourtRepository{col: db.Collection("agg_court")}
}

func (r *CourtRepository) ByID(ctx context.Context, id domaincourt.ID) (*domaincourt.Court, error) {
	var doc courtDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": int(id)}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domaincourt.ErrCourtNotFound
		}
		return nil, err
	}
	return doc.toAggregate(), nil
}

func (r *CourtRepository) List(ctx context.Context) ([]*domaincourt.Court, error) {
	cur, err := r.col.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var out []*domaincourt.Court
	for cur.Next(ctx) {
		var doc courtDocument
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		out = append(out, doc.toAggregate())
	}
	return out, cur.Err()
}

func (r *CourtRepository) Save(ctx context.Context, c *domaincourt.Court) error {
	doc := courtDocument{ID: int(c.ID), Name: c.Name, Retired: c.Retired}
	opts := options.Replace().SetUpsert(true)
	_, err := r.col.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc, opts)
	return err
}

type courtDocument struct {
	ID      int    `bson:"_id"`
	Name    string `bson:"name"`
	Retired bool   `bson:"retired"`
}

func (d courtDocument) toAggregate() *domaincourt.Court {
	return &domaincourt.Court{ID: domaincourt.ID(d.ID), Name: d.Name, Retired: d.Retired}
}
