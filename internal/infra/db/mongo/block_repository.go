package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	domainblock "courtside/internal/domain/block"
	domaincourt "courtside/internal/domain/court"
)

type BlockRepository struct {
	col *mongo.Collection
}

func NewBlockRepository(db *mongo.Database) *BlockRepository {
	col := db.Collection("agg_block")
	batchIdx := mongo.IndexModel{Keys: bson.D{{Key: "batch_id", Value: 1}}}
	seriesIdx := mongo.IndexModel{Keys: bson.D{{Key: "series_id", Value: 1}}}
	dateIdx := mongo.IndexModel{Keys: bson.D{{Key: "date", Value: 1}}}
	_, _ = col.Indexes().CreateMany(context.Background(), []mongo.IndexModel{batchIdx, seriesIdx, dateIdx})
	return &BlockRepository{col: col}
}

func (r *BlockRepository) ByID(ctx context.Context, id domainblock.ID) (*domainblock.Block, error) {
	var doc blockDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainblock.ErrBlockNotFound
		}
		return nil, err
	}
	return doc.toAggregate(), nil
}

func (r *BlockRepository) ByBatch(ctx context.Context, batch domainblock.BatchID) ([]*domainblock.Block, error) {
	return r.find(ctx, bson.M{"batch_id": string(batch)})
}

func (r *BlockRepository) BySeries(ctx context.Context, series domainblock.SeriesID) ([]*domainblock.Block, error) {
	return r.find(ctx, bson.M{"series_id": string(series)})
}

func (r *BlockRepository) ByDate(ctx context.Context, date string) ([]*domainblock.Block, error) {
	return r.find(ctx, bson.M{"date": date})
}

// InsertAll relies on the caller's transaction for all-or-nothing semantics.
func (r *BlockRepository) InsertAll(ctx context.Context, rows []*domainblock.Block) error {
	if len(rows) == 0 {
		return nil
	}
	docs := make([]any, 0, len(rows))
	for _, b := range rows {
		docs = append(docs, newBlockDocument(b))
	}
	if _, err := r.col.InsertMany(ctx, docs); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domainblock.ErrDuplicateBlock
		}
		return err
	}
	return nil
}

func (r *BlockRepository) Update(ctx context.Context, b *domainblock.Block) error {
	doc := newBlockDocument(b)
	out, err := r.col.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc)
	if err != nil {
		return err
	}
	if out.MatchedCount == 0 {
		return domainblock.ErrBlockNotFound
	}
	return nil
}

func (r *BlockRepository) DeleteAll(ctx context.Context, ids []domainblock.ID) error {
	if len(ids) == 0 {
		return nil
	}
	raw := make([]string, 0, len(ids))
	for _, id := range ids {
		raw = append(raw, string(id))
	}
	out, err := r.col.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": raw}})
	if err != nil {
		return err
	}
	if out.DeletedCount != int64(len(ids)) {
		return domainblock.ErrBlockNotFound
	}
	return nil
}

func (r *BlockRepository) find(ctx context.Context, filter bson.M) ([]*domainblock.Block, error) {
	cur, err := r.col.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var out []*domainblock.Block
	for cur.Next(ctx) {
		var doc blockDocument
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		out = append(out, doc.toAggregate())
	}
	return out, cur.Err()
}

type blockDocument struct {
	ID        string `bson:"_id"`
	CourtID   int    `bson:"court_id"`
	Date      string `bson:"date"`
	Start     string `bson:"start"`
	End       string `bson:"end"`
	ReasonID  string `bson:"reason_id"`
	Details   string `bson:"details,omitempty"`
	BatchID   string `bson:"batch_id"`
	SeriesID  string `bson:"series_id,omitempty"`
	Modified  bool   `bson:"modified"`
	CreatedBy string `bson:"created_by"`
	CreatedAt int64  `bson:"created_at"`
}

func newBlockDocument(b *domainblock.Block) blockDocument {
	return blockDocument{
		ID:        string(b.ID),
		CourtID:   int(b.CourtID),
		Date:      b.Date,
		Start:     b.Start,
		End:       b.End,
		ReasonID:  b.ReasonID,
		Details:   b.Details,
		BatchID:   string(b.BatchID),
		SeriesID:  string(b.SeriesID),
		Modified:  b.Modified,
		CreatedBy: b.CreatedBy,
		CreatedAt: b.CreatedAt.UnixMilli(),
	}
}

func (d blockDocument) toAggregate() *domainblock.Block {
	return &domainblock.Block{
		ID:        domainblock.ID(d.ID),
		CourtID:   domaincourt.ID(d.CourtID),
		Date:      d.Date,
		Start:     d.Start,
		End:       d.End,
		ReasonID:  d.ReasonID,
		Details:   d.Details,
		BatchID:   domainblock.BatchID(d.BatchID),
		SeriesID:  domainblock.SeriesID(d.SeriesID),
		Modified:  d.Modified,
		CreatedBy: d.CreatedBy,
		CreatedAt: time.UnixMilli(d.CreatedAt).UTC(),
	}
}
