package ginserver

import (
	"errors"
	"net/http"

	gin "github.com/gin-gonic/gin"

	blocksapp "courtside/internal/app/handlers/blocks"
	bookingapp "courtside/internal/app/handlers/booking"
	domainblock "courtside/internal/domain/block"
	domaincourt "courtside/internal/domain/court"
	domainreservation "courtside/internal/domain/reservation"
	"courtside/internal/domain/shared/clock"
)

// writeError maps application and domain errors onto the HTTP boundary.
// Quota denials carry their machine-readable reason code; anything unmapped
// stays an opaque 500 so internals never leak.
func writeError(c *gin.Context, err error) {
	var rejection bookingapp.Rejection
	if errors.As(err, &rejection) {
		c.JSON(http.StatusConflict, gin.H{"error": "limit_exceeded", "reason": rejection.Reason})
		return
	}

	switch {
	case errors.Is(err, domainreservation.ErrSlotUnavailable):
		c.JSON(http.StatusConflict, gin.H{"error": "slot_unavailable"})
	case errors.Is(err, domainreservation.ErrAlreadyCancelled),
		errors.Is(err, bookingapp.ErrCourtRetired),
		errors.Is(err, blocksapp.ErrReasonDisabled):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, bookingapp.ErrNotCancellable):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, domainreservation.ErrReservationNotFound),
		errors.Is(err, domainblock.ErrBlockNotFound),
		errors.Is(err, domainblock.ErrBatchNotFound),
		errors.Is(err, domainblock.ErrReasonNotFound),
		errors.Is(err, domaincourt.ErrCourtNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, domainreservation.ErrHolderRequired),
		errors.Is(err, domainreservation.ErrInvalidSlot),
		errors.Is(err, domainblock.ErrNoCourts),
		errors.Is(err, domainblock.ErrInvalidWindow),
		errors.Is(err, domainblock.ErrEmptyRule),
		errors.Is(err, domainblock.ErrInvalidRule),
		errors.Is(err, bookingapp.ErrMissingFields),
		errors.Is(err, bookingapp.ErrMissingActor),
		errors.Is(err, bookingapp.ErrSlotOutsideWindow),
		errors.Is(err, bookingapp.ErrSlotInPast),
		errors.Is(err, blocksapp.ErrTargetRequired),
		errors.Is(err, blocksapp.ErrUnknownScope),
		errors.Is(err, blocksapp.ErrNoChanges),
		errors.Is(err, blocksapp.ErrNameRequired),
		errors.Is(err, clock.ErrDegraded):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
