package blocks

import (
	"context"
	"sort"

	"courtside/internal/app/uow"
	domainblock "courtside/internal/domain/block"
	domaincourt "courtside/internal/domain/court"
	domainreservation "courtside/internal/domain/reservation"
)

// ConflictingReservation is one booking a proposed block would
// cascade-cancel.
type ConflictingReservation struct {
	ReservationID string `json:"reservation_id"`
	CourtID       int    `json:"court_id"`
	Date          string `json:"date"`
	Start         string `json:"start"`
	End           string `json:"end"`
	HolderID      string `json:"holder_id"`
	ShortNotice   bool   `json:"short_notice"`
}

// scanConflicts finds every active reservation the block window would cover
// on the given courts and dates. The result is sorted so a preview and the
// commit that follows it report the identical set in the identical order.
func scanConflicts(ctx context.Context, unit uow.UnitOfWork, courtIDs []domaincourt.ID, dates []string, start, end string) ([]*domainreservation.Reservation, error) {
	wanted := make(map[domaincourt.ID]bool, len(courtIDs))
	for _, id := range courtIDs {
		wanted[id] = true
	}

	probe := &domainblock.Block{Start: start, End: end}
	var conflicts []*domainreservation.Reservation
	for _, date := range dates {
		dayRes, err := unit.Reservations().ByDate(ctx, date)
		if err != nil {
			return nil, err
		}
		probe.Date = date
		for _, r := range dayRes {
			if r.Status != domainreservation.StatusActive || !wanted[r.CourtID] {
				continue
			}
			if probe.Covers(r.Date, r.Start, r.End) {
				conflicts = append(conflicts, r)
			}
		}
	}
	sort.Slice(conflicts, func(i, j int) bool {
		a, b := conflicts[i], conflicts[j]
		if a.Date != b.Date {
			return a.Date < b.Date
		}
		if a.CourtID != b.CourtID {
			return a.CourtID < b.CourtID
		}
		return a.Start < b.Start
	})
	return conflicts, nil
}

func conflictViews(conflicts []*domainreservation.Reservation) []ConflictingReservation {
	out := make([]ConflictingReservation, 0, len(conflicts))
	for _, r := range conflicts {
		out = append(out, ConflictingReservation{
			ReservationID: string(r.ID),
			CourtID:       int(r.CourtID),
			Date:          r.Date,
			Start:         r.Start,
			End:           r.End,
			HolderID:      r.HolderID,
			ShortNotice:   r.ShortNotice,
		})
	}
	return out
}
