package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainblock "courtside/internal/domain/block"
)

type ReasonRepository struct {
	col *mongo.Collection
}

func NewReasonRepository(db *mongo.Database) *ReasonRepository {
	return &ReasonRepository{col: db.Collection("agg_block_reason")}
}

func (r *ReasonRepository) ByID(ctx context.Context, id string) (*domainblock.Reason, error) {
	var doc reasonDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainblock.ErrReasonNotFound
		}
		return nil, err
	}
	return doc.toAggregate(), nil
}

func (r *ReasonRepository) List(ctx context.Context) ([]*domainblock.Reason, error) {
	cur, err := r.col.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var out []*domainblock.Reason
	for cur.Next(ctx) {
		var doc reasonDocument
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		out = append(out, doc.toAggregate())
	}
	return out, cur.Err()
}

// Save upserts name and active state. The usage counter belongs to
// AdjustUsage and is deliberately left out of the update document.
func (r *ReasonRepository) Save(ctx context.Context, reason *domainblock.Reason) error {
	update := bson.M{
		"$set": bson.M{
			"name":       reason.Name,
			"active":     reason.Active,
			"created_at": reason.CreatedAt.UnixMilli(),
		},
		"$setOnInsert": bson.M{"usage_count": int64(0)},
	}
	opts := options.Update().SetUpsert(true)
	_, err := r.col.UpdateByID(ctx, reason.ID, update, opts)
	return err
}

func (r *ReasonRepository) AdjustUsage(ctx context.Context, id string, delta int64) error {
	out, err := r.col.UpdateByID(ctx, id, bson.M{"$inc": bson.M{"usage_count": delta}})
	if err != nil {
		return err
	}
	if out.MatchedCount == 0 {
		return domainblock.ErrReasonNotFound
	}
	return nil
}

type reasonDocument struct {
	ID         string `bson:"_id"`
	Name       string `bson:"name"`
	Active     bool   `bson:"active"`
	UsageCount int64  `bson:"usage_count"`
	CreatedAt  int64  `bson:"created_at"`
}

func (d reasonDocument) toAggregate() *domainblock.Reason {
	return &domainblock.Reason{
		ID:         d.ID,
		Name:       d.Name,
		Active:     d.Active,
		UsageCount: d.UsageCount,
		CreatedAt:  time.UnixMilli(d.CreatedAt).UTC(),
	}
}
