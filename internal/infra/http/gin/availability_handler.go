package ginserver

import (
	"net/http"
	"strconv"
	"strings"

	gin "github.com/gin-gonic/gin"

	availabilityapp "courtside/internal/app/handlers/availability"
	"courtside/internal/app/queries"
	domaincourt "courtside/internal/domain/court"
	"courtside/internal/domain/schedule"
)

type AvailabilityHandler struct {
	Queries queries.Bus
}

func (h AvailabilityHandler) Grid(c *gin.Context) {
	date := c.Query("date")
	if date == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date query parameter required"})
		return
	}
	courts, err := parseCourtIDs(c.Query("courts"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	viewer := schedule.Viewer{}
	if p, ok := currentPrincipal(c); ok {
		viewer = schedule.Viewer{MemberID: p.MemberID, Attribution: true}
	}

	query := availabilityapp.GridQuery{CourtIDs: courts, Date: date, Viewer: viewer}
	grid, err := queries.Ask[availabilityapp.GridQuery, schedule.Grid](c.Request.Context(), h.Queries, query)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, newGridResponse(grid))
}

func parseCourtIDs(raw string) ([]domaincourt.ID, error) {
	if raw == "" {
		return nil, nil
	}
	var out []domaincourt.ID
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.Atoi(part)
		if err != nil {
			return nil, err
		}
		out = append(out, domaincourt.ID(id))
	}
	return out, nil
}

type gridResponse struct {
	Date  string         `json:"date"`
	Times []slotTimeView `json:"times"`
	Cells []cellView     `json:"cells"`
}

type slotTimeView struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

type cellView struct {
	CourtID       int    `json:"court_id"`
	Date          string `json:"date"`
	Start         string `json:"start"`
	End           string `json:"end"`
	Status        string `json:"status"`
	HolderID      string `json:"holder_id,omitempty"`
	ReservationID string `json:"reservation_id,omitempty"`
	BlockReasonID string `json:"block_reason_id,omitempty"`
}

func newGridResponse(g schedule.Grid) gridResponse {
	resp := gridResponse{Date: g.Date}
	for _, t := range g.Times {
		resp.Times = append(resp.Times, slotTimeView{Start: t.Start, End: t.End})
	}
	for _, cell := range g.Cells {
		resp.Cells = append(resp.Cells, cellView{
			CourtID:       int(cell.CourtID),
			Date:          cell.Date,
			Start:         cell.Start,
			End:           cell.End,
			Status:        string(cell.Status),
			HolderID:      cell.HolderID,
			ReservationID: string(cell.ReservationID),
			BlockReasonID: cell.BlockReasonID,
		})
	}
	return resp
}

var _ AvailabilityHTTP = AvailabilityHandler{}
