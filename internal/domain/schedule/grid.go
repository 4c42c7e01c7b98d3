package schedule

import (
	"errors"
	"fmt"
	"time"

	"courtside/internal/domain/block"
	"courtside/internal/domain/court"
	"courtside/internal/domain/reservation"
	"courtside/internal/domain/shared/clock"
)

var ErrInvalidWindow = errors.New("schedule: invalid day window")

// Window bounds the bookable part of a day. Slots are fixed-length and
// enumerated on demand; they are never stored.
type Window struct {
	OpenHour    int
	CloseHour   int
	SlotMinutes int
}

func DefaultWindow() Window {
	return Window{OpenHour: 6, CloseHour: 22, SlotMinutes: 60}
}

func (w Window) Validate() error {
	if w.OpenHour < 0 || w.CloseHour > 24 || w.CloseHour <= w.OpenHour {
		return ErrInvalidWindow
	}
	if w.SlotMinutes <= 0 || (w.CloseHour-w.OpenHour)*60%w.SlotMinutes != 0 {
		return ErrInvalidWindow
	}
	return nil
}

// SlotTime is one start/end pair within the day window.
type SlotTime struct {
	Start string
	End   string
}

// SlotTimes enumerates the day's slot boundaries as zero-padded HH:MM.
func (w Window) SlotTimes() []SlotTime {
	total := (w.CloseHour - w.OpenHour) * 60
	n := total / w.SlotMinutes
	out := make([]SlotTime, 0, n)
	for i := 0; i < n; i++ {
		s := w.OpenHour*60 + i*w.SlotMinutes
		e := s + w.SlotMinutes
		out = append(out, SlotTime{
			Start: fmt.Sprintf("%02d:%02d", s/60, s%60),
			End:   fmt.Sprintf("%02d:%02d", e/60, e%60),
		})
	}
	return out
}

type Status string

const (
	StatusAvailable   Status = "available"
	StatusReserved    Status = "reserved"
	StatusShortNotice Status = "short_notice"
	StatusBlocked     Status = "blocked"
	StatusPast        Status = "past"
)

// Viewer is the identity context the grid is rendered for. Attribution
// gates holder identities and the short-notice distinction.
type Viewer struct {
	MemberID    string
	Attribution bool
}

type Cell struct {
	CourtID       court.ID
	Date          string
	Start         string
	End           string
	Status        Status
	HolderID      string
	ReservationID reservation.ID
	BlockReasonID string
}

// Grid is the authoritative per-slot status projection for one date,
// ordered by court then slot time.
type Grid struct {
	Date  string
	Times []SlotTime
	Cells []Cell
}

// Build overlays reservations and blocks into one status per slot. It is a
// pure read-side projection: no mutation, safe under concurrent calls.
//
// Precedence: past beats everything; a block beats a reservation for the
// same slot even when a stale, not-yet-cancelled reservation coexists, so
// the grid can never show an administratively blocked court as bookable.
func Build(w Window, courts []court.ID, date string, reservations []*reservation.Reservation, blocks []*block.Block, viewer Viewer, now time.Time, loc *time.Location) (Grid, error) {
	if err := w.Validate(); err != nil {
		return Grid{}, err
	}
	times := w.SlotTimes()

	type slotKey struct {
		court court.ID
		start string
	}
	held := make(map[slotKey]*reservation.Reservation, len(reservations))
	for _, r := range reservations {
		if r.Status != reservation.StatusActive || r.Date != date {
			continue
		}
		held[slotKey{court: r.CourtID, start: r.Start}] = r
	}

	grid := Grid{Date: date, Times: times, Cells: make([]Cell, 0, len(courts)*len(times))}
	for _, c := range courts {
		for _, st := range times {
			cell := Cell{CourtID: c, Date: date, Start: st.Start, End: st.End, Status: StatusAvailable}

			if r, ok := held[slotKey{court: c, start: st.Start}]; ok {
				cell.Status = StatusReserved
				if r.ShortNotice {
					cell.Status = StatusShortNotice
				}
				cell.ReservationID = r.ID
				cell.HolderID = r.HolderID
			}
			for _, b := range blocks {
				if b.CourtID == c && b.Covers(date, st.Start, st.End) {
					cell.Status = StatusBlocked
					cell.HolderID = ""
					cell.ReservationID = ""
					cell.BlockReasonID = b.ReasonID
					break
				}
			}

			end, err := clock.Combine(date, st.End, loc)
			if err != nil {
				return Grid{}, err
			}
			if !end.After(now) {
				cell.Status = StatusPast
				cell.HolderID = ""
				cell.ReservationID = ""
				cell.BlockReasonID = ""
			}

			if !viewer.Attribution {
				if cell.Status == StatusShortNotice {
					cell.Status = StatusReserved
				}
				cell.HolderID = ""
			}
			grid.Cells = append(grid.Cells, cell)
		}
	}
	return grid, nil
}
