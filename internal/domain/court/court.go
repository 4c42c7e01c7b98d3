package court

import (
	"context"
	"errors"
)

var ErrCourtNotFound = errors.New("court: not found")

// ID is the stable integer identity of a court. Courts are provisioned once
// and only ever retired, never destroyed.
type ID int

type Court struct {
	ID      ID
	Name    string
	Retired bool
}

type Repository interface {
	ByID(ctx context.Context, id ID) (*Court, error)
	List(ctx context.Context) ([]*Court, error)
	Save(ctx context.Context, c *Court) error
}
