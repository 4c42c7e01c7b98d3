package ginserver

import (
	"net/http"

	gin "github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"courtside/internal/app/commands"
	bookingapp "courtside/internal/app/handlers/booking"
	"courtside/internal/app/queries"
	domaincourt "courtside/internal/domain/court"
)

type BookingHandler struct {
	Commands commands.Bus
	Queries  queries.Bus
}

type createReservationRequest struct {
	CourtID     int    `json:"court_id"`
	Date        string `json:"date"`
	Start       string `json:"start"`
	HolderID    string `json:"holder_id"`
	ShortNotice bool   `json:"short_notice"`
}

func (h BookingHandler) Create(c *gin.Context) {
	p, ok := requireMember(c)
	if !ok {
		return
	}
	var req createReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// Booking on behalf of another member is an administrator move; a plain
	// member always holds their own reservation.
	holder := p.MemberID
	if req.HolderID != "" && req.HolderID != p.MemberID {
		if !p.Admin {
			c.JSON(http.StatusForbidden, gin.H{"error": "administrator role required"})
			return
		}
		holder = req.HolderID
	}

	cmd := bookingapp.BookCommand{
		CommandID:   uuid.NewString(),
		CourtID:     domaincourt.ID(req.CourtID),
		Date:        req.Date,
		Start:       req.Start,
		HolderID:    holder,
		BookerID:    p.MemberID,
		ShortNotice: req.ShortNotice,
	}
	result, err := commands.Dispatch[bookingapp.BookCommand, *bookingapp.BookResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (h BookingHandler) Cancel(c *gin.Context) {
	p, ok := requireMember(c)
	if !ok {
		return
	}
	cmd := bookingapp.CancelCommand{
		ReservationID: c.Param("id"),
		ActorID:       p.MemberID,
		AsAdmin:       p.Admin,
	}
	result, err := commands.Dispatch[bookingapp.CancelCommand, *bookingapp.CancelResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h BookingHandler) ListMine(c *gin.Context) {
	p, ok := requireMember(c)
	if !ok {
		return
	}
	query := bookingapp.MemberReservationsQuery{HolderID: p.MemberID}
	result, err := queries.Ask[bookingapp.MemberReservationsQuery, []bookingapp.MemberReservationView](c.Request.Context(), h.Queries, query)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"reservations": result})
}

var _ BookingHTTP = BookingHandler{}
