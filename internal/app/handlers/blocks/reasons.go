package blocks

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"courtside/internal/app/policies"
	"courtside/internal/app/uow"
	domainblock "courtside/internal/domain/block"
	"courtside/internal/domain/shared/clock"
)

const (
	createReasonKey = "blocks.create_reason"
	deleteReasonKey = "blocks.delete_reason"
)

var ErrNameRequired = errors.New("blocks: reason name required")

type CreateReasonCommand struct {
	Name    string
	ActorID string
}

func (c CreateReasonCommand) Key() string { return createReasonKey }

func (c CreateReasonCommand) Validate() error {
	if c.Name == "" {
		return ErrNameRequired
	}
	return nil
}

type CreateReasonResult struct {
	ReasonID string `json:"reason_id"`
}

type CreateReasonHandler struct {
	UoWFactory uow.Factory
	Clock      clock.Clock
	Audit      policies.Audit
}

func (h *CreateReasonHandler) Handle(ctx context.Context, cmd CreateReasonCommand) (*CreateReasonResult, error) {
	unit, managed, err := beginIfUnmanaged(ctx, h.UoWFactory)
	if err != nil {
		return nil, err
	}
	if managed {
		ctx = uow.ContextWithUnitOfWork(ctx, unit)
	}
	committed := false
	if managed {
		defer func() {
			if !committed {
				_ = unit.Rollback(ctx)
			}
		}()
	}

	reason := &domainblock.Reason{
		ID:        uuid.NewString(),
		Name:      cmd.Name,
		Active:    true,
		CreatedAt: h.Clock.Now().UTC(),
	}
	if err := unit.Reasons().Save(ctx, reason); err != nil {
		return nil, err
	}
	if managed {
		if err := unit.Commit(ctx); err != nil {
			return nil, err
		}
		committed = true
	}
	if h.Audit != nil {
		h.Audit.Record(ctx, policies.AuditEntry{Operation: createReasonKey, ActorID: cmd.ActorID, After: reason})
	}
	return &CreateReasonResult{ReasonID: reason.ID}, nil
}

type DeleteReasonCommand struct {
	ReasonID string
	ActorID  string
}

func (c DeleteReasonCommand) Key() string { return deleteReasonKey }

func (c DeleteReasonCommand) Validate() error {
	if c.ReasonID == "" {
		return domainblock.ErrReasonNotFound
	}
	return nil
}

type DeleteReasonResult struct {
	// Disabled is true when the reason was still referenced by blocks and
	// was deactivated instead of removed. Historical blocks keep their
	// reference either way.
	Disabled bool `json:"disabled"`
}

type DeleteReasonHandler struct {
	UoWFactory uow.Factory
	Audit      policies.Audit
}

func (h *DeleteReasonHandler) Handle(ctx context.Context, cmd DeleteReasonCommand) (*DeleteReasonResult, error) {
	unit, managed, err := beginIfUnmanaged(ctx, h.UoWFactory)
	if err != nil {
		return nil, err
	}
	if managed {
		ctx = uow.ContextWithUnitOfWork(ctx, unit)
	}
	committed := false
	if managed {
		defer func() {
			if !committed {
				_ = unit.Rollback(ctx)
			}
		}()
	}

	reason, err := unit.Reasons().ByID(ctx, cmd.ReasonID)
	if err != nil {
		return nil, err
	}
	before := *reason

	// Deletion is blocked while the reason is referenced; it is disabled
	// instead so history stays intact.
	reason.Disable()
	if err := unit.Reasons().Save(ctx, reason); err != nil {
		return nil, err
	}

	if managed {
		if err := unit.Commit(ctx); err != nil {
			return nil, err
		}
		committed = true
	}
	if h.Audit != nil {
		h.Audit.Record(ctx, policies.AuditEntry{Operation: deleteReasonKey, ActorID: cmd.ActorID, Before: before, After: reason})
	}
	return &DeleteReasonResult{Disabled: before.UsageCount > 0}, nil
}
