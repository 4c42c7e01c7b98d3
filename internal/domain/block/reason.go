package block

import (
	"context"
	"time"
)

// Reason is an administrator-managed blocking category. Historical blocks
// keep referencing a reason after it is disabled; a reason with usages is
// never deleted, only deactivated.
type Reason struct {
	ID         string
	Name       string
	Active     bool
	UsageCount int64
	CreatedAt  time.Time
}

// Disable deactivates the reason without touching history.
func (r *Reason) Disable() {
	r.Active = false
}

type ReasonRepository interface {
	ByID(ctx context.Context, id string) (*Reason, error)
	List(ctx context.Context) ([]*Reason, error)
	Save(ctx context.Context, r *Reason) error
	// AdjustUsage moves the usage counter by delta (positive on block
	// creation, negative on physical row deletion).
	AdjustUsage(ctx context.Context, id string, delta int64) error
}
