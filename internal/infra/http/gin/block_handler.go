package ginserver

import (
	"net/http"
	"time"

	gin "github.com/gin-gonic/gin"

	"courtside/internal/app/commands"
	blocksapp "courtside/internal/app/handlers/blocks"
	"courtside/internal/app/queries"
	domainblock "courtside/internal/domain/block"
	domaincourt "courtside/internal/domain/court"
)

type BlockHandler struct {
	Commands commands.Bus
	Queries  queries.Bus
}

type ruleRequest struct {
	Kind     string `json:"kind"`
	Date     string `json:"date,omitempty"`
	From     string `json:"from,omitempty"`
	Until    string `json:"until,omitempty"`
	Days     int    `json:"days,omitempty"`
	Weekdays []int  `json:"weekdays,omitempty"`
}

func (r ruleRequest) toRule() domainblock.Rule {
	rule := domainblock.Rule{
		Kind:  domainblock.RuleKind(r.Kind),
		Date:  r.Date,
		From:  r.From,
		Until: r.Until,
		Days:  r.Days,
	}
	if rule.Kind == "" {
		rule.Kind = domainblock.RuleSingle
	}
	for _, wd := range r.Weekdays {
		rule.Weekdays = append(rule.Weekdays, time.Weekday(wd))
	}
	return rule
}

type createBlockRequest struct {
	CourtIDs []int       `json:"court_ids"`
	Rule     ruleRequest `json:"rule"`
	Start    string      `json:"start"`
	End      string      `json:"end"`
	ReasonID string      `json:"reason_id"`
	Details  string      `json:"details,omitempty"`
}

func (h BlockHandler) Create(c *gin.Context) {
	p, ok := requireAdmin(c)
	if !ok {
		return
	}
	var req createBlockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cmd := blocksapp.CreateBlockCommand{
		CourtIDs: toCourtIDs(req.CourtIDs),
		Rule:     req.Rule.toRule(),
		Start:    req.Start,
		End:      req.End,
		ReasonID: req.ReasonID,
		Details:  req.Details,
		ActorID:  p.MemberID,
	}
	result, err := commands.Dispatch[blocksapp.CreateBlockCommand, *blocksapp.CreateBlockResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

type previewBlockRequest struct {
	CourtIDs []int       `json:"court_ids"`
	Rule     ruleRequest `json:"rule"`
	Start    string      `json:"start"`
	End      string      `json:"end"`
}

func (h BlockHandler) Preview(c *gin.Context) {
	if _, ok := requireAdmin(c); !ok {
		return
	}
	var req previewBlockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	query := blocksapp.PreviewQuery{
		CourtIDs: toCourtIDs(req.CourtIDs),
		Rule:     req.Rule.toRule(),
		Start:    req.Start,
		End:      req.End,
	}
	result, err := queries.Ask[blocksapp.PreviewQuery, []blocksapp.ConflictingReservation](c.Request.Context(), h.Queries, query)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"conflicts": result})
}

type editBlockRequest struct {
	TargetBlockID string  `json:"target_block_id,omitempty"`
	Scope         string  `json:"scope"`
	Start         *string `json:"start,omitempty"`
	End           *string `json:"end,omitempty"`
	ReasonID      *string `json:"reason_id,omitempty"`
	Details       *string `json:"details,omitempty"`
}

func (h BlockHandler) Edit(c *gin.Context) {
	p, ok := requireAdmin(c)
	if !ok {
		return
	}
	var req editBlockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cmd := blocksapp.EditBlockCommand{
		BatchID:       c.Param("batch_id"),
		TargetBlockID: req.TargetBlockID,
		Scope:         domainblock.Scope(req.Scope),
		Changes: domainblock.Changes{
			Start:    req.Start,
			End:      req.End,
			ReasonID: req.ReasonID,
			Details:  req.Details,
		},
		ActorID: p.MemberID,
	}
	result, err := commands.Dispatch[blocksapp.EditBlockCommand, *blocksapp.EditBlockResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h BlockHandler) Delete(c *gin.Context) {
	p, ok := requireAdmin(c)
	if !ok {
		return
	}
	scope := c.DefaultQuery("scope", string(domainblock.ScopeAll))
	cmd := blocksapp.DeleteBlockCommand{
		BatchID:       c.Param("batch_id"),
		TargetBlockID: c.Query("target_block_id"),
		Scope:         domainblock.Scope(scope),
		ActorID:       p.MemberID,
	}
	result, err := commands.Dispatch[blocksapp.DeleteBlockCommand, *blocksapp.DeleteBlockResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

type createReasonRequest struct {
	Name string `json:"name"`
}

func (h BlockHandler) CreateReason(c *gin.Context) {
	p, ok := requireAdmin(c)
	if !ok {
		return
	}
	var req createReasonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cmd := blocksapp.CreateReasonCommand{Name: req.Name, ActorID: p.MemberID}
	result, err := commands.Dispatch[blocksapp.CreateReasonCommand, *blocksapp.CreateReasonResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (h BlockHandler) DisableReason(c *gin.Context) {
	p, ok := requireAdmin(c)
	if !ok {
		return
	}
	cmd := blocksapp.DeleteReasonCommand{ReasonID: c.Param("id"), ActorID: p.MemberID}
	result, err := commands.Dispatch[blocksapp.DeleteReasonCommand, *blocksapp.DeleteReasonResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func toCourtIDs(raw []int) []domaincourt.ID {
	out := make([]domaincourt.ID, 0, len(raw))
	for _, id := range raw {
		out = append(out, domaincourt.ID(id))
	}
	return out
}

var _ BlockHTTP = BlockHandler{}
