package policies

import "context"

// AuditEntry is the structured record of one mutating operation.
type AuditEntry struct {
	Operation string
	ActorID   string
	Before    any
	After     any
}

// Audit receives an entry after every successful mutation. Fire-and-forget;
// adapter failures never roll back the core transaction.
type Audit interface {
	Record(ctx context.Context, entry AuditEntry)
}
