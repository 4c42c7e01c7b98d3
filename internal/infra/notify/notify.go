package notify

import (
	"context"
	"log/slog"

	"courtside/internal/app/policies"
	"courtside/internal/domain/reservation"
	"courtside/internal/infra/obs"
)

// LogNotifier writes cancellation notices to the structured log. Production
// deployments replace it with a mail or push adapter fed from the event
// topics; the port contract is the same.
type LogNotifier struct {
	Logger *slog.Logger
}

func (n LogNotifier) ReservationCancelled(ctx context.Context, r *reservation.Reservation, cause reservation.CancelCause) {
	if n.Logger == nil {
		return
	}
	n.Logger.Info("notify reservation cancelled",
		"reservation_id", string(r.ID),
		"holder_id", r.HolderID,
		"court_id", int(r.CourtID),
		"date", r.Date,
		"start", r.Start,
		"cause", string(cause),
		"request_id", obs.RequestIDFromContext(ctx),
	)
}

var _ policies.Notifier = LogNotifier{}

// LogAudit records mutating operations as structured log entries.
type LogAudit struct {
	Logger *slog.Logger
}

func (a LogAudit) Record(ctx context.Context, entry policies.AuditEntry) {
	if a.Logger == nil {
		return
	}
	a.Logger.Info("audit",
		"operation", entry.Operation,
		"actor_id", entry.ActorID,
		"before", entry.Before,
		"after", entry.After,
		"request_id", obs.RequestIDFromContext(ctx),
	)
}

var _ policies.Audit = LogAudit{}
