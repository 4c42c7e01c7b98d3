package policies

import (
	"context"

	"courtside/internal/domain/reservation"
)

// Notifier informs a member that a block cancelled their reservation.
// Fire-and-forget: failures are logged by the adapter, never surfaced to the
// caller of the blocking operation, and never retried synchronously.
type Notifier interface {
	ReservationCancelled(ctx context.Context, r *reservation.Reservation, cause reservation.CancelCause)
}
