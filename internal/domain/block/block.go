package block

import (
	"context"
	"errors"
	"time"

	"courtside/internal/domain/court"
)

var (
	ErrBlockNotFound  = errors.New("block: not found")
	ErrDuplicateBlock = errors.New("block: id already exists")
	ErrBatchNotFound  = errors.New("block: batch not found")
	ErrInvalidWindow  = errors.New("block: end must be after start")
	ErrNoCourts       = errors.New("block: at least one court required")
	ErrReasonNotFound = errors.New("block: reason not found")
	ErrReasonInUse    = errors.New("block: reason referenced by existing blocks")
)

type ID string

type BatchID string

// SeriesID groups the rows generated by one recurrence rule. Empty for
// non-recurring batches.
type SeriesID string

// Block makes one court unavailable for one time window on one date. A
// logical blocking event is the set of rows sharing a BatchID (one row per
// court, or per court x date for a series); the grouping key is the
// aggregate, not a separate stored entity.
type Block struct {
	ID        ID
	CourtID   court.ID
	Date      string // 2006-01-02
	Start     string // 15:04
	End       string // 15:04
	ReasonID  string
	Details   string
	BatchID   BatchID
	SeriesID  SeriesID
	// Modified marks a series row edited independently of its siblings. An
	// "all"-scope edit resets it.
	Modified  bool
	CreatedBy string
	CreatedAt time.Time
}

// Covers reports whether the block window overlaps the [start, end) slot on
// the same date. Times are zero-padded HH:MM so lexicographic order matches
// chronological order.
func (b *Block) Covers(date, start, end string) bool {
	return b.Date == date && b.Start < end && start < b.End
}

type Repository interface {
	ByID(ctx context.Context, id ID) (*Block, error)
	ByBatch(ctx context.Context, batch BatchID) ([]*Block, error)
	BySeries(ctx context.Context, series SeriesID) ([]*Block, error)
	ByDate(ctx context.Context, date string) ([]*Block, error)
	// InsertAll persists every row or none of them.
	InsertAll(ctx context.Context, rows []*Block) error
	Update(ctx context.Context, b *Block) error
	// DeleteAll removes every row or none of them.
	DeleteAll(ctx context.Context, ids []ID) error
}

// Scope selects which rows of a series an edit or deletion touches. For a
// non-recurring batch every scope resolves to the whole batch, since all
// rows share one date and window by construction.
type Scope string

const (
	ScopeSingle Scope = "single"
	ScopeFuture Scope = "future"
	ScopeAll    Scope = "all"
)

func ParseScope(raw string) (Scope, bool) {
	switch Scope(raw) {
	case ScopeSingle, ScopeFuture, ScopeAll:
		return Scope(raw), true
	}
	return "", false
}

// Changes carries the editable fields of a blocking event; nil means leave
// unchanged.
type Changes struct {
	Start    *string
	End      *string
	ReasonID *string
	Details  *string
}

func (c Changes) Empty() bool {
	return c.Start == nil && c.End == nil && c.ReasonID == nil && c.Details == nil
}

// Apply mutates b with the non-nil fields.
func (c Changes) Apply(b *Block) {
	if c.Start != nil {
		b.Start = *c.Start
	}
	if c.End != nil {
		b.End = *c.End
	}
	if c.ReasonID != nil {
		b.ReasonID = *c.ReasonID
	}
	if c.Details != nil {
		b.Details = *c.Details
	}
}
