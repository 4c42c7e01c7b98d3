package block

import (
	"errors"
	"time"

	"courtside/internal/domain/shared/clock"
)

var (
	ErrEmptyRule   = errors.New("block: recurrence rule produced no dates")
	ErrInvalidRule = errors.New("block: invalid recurrence rule")
)

type RuleKind string

const (
	RuleSingle RuleKind = "single"
	RuleDaily  RuleKind = "daily"
	RuleWeekly RuleKind = "weekly"
)

// Rule describes how a blocking event spreads across dates. Single targets
// one date, Daily a run of consecutive days, Weekly specific weekdays over a
// closed date range.
type Rule struct {
	Kind     RuleKind
	Date     string // single
	From     string // daily, weekly
	Until    string // weekly (inclusive)
	Days     int    // daily: number of consecutive days
	Weekdays []time.Weekday
}

func SingleDate(date string) Rule {
	return Rule{Kind: RuleSingle, Date: date}
}

func DailyRun(from string, days int) Rule {
	return Rule{Kind: RuleDaily, From: from, Days: days}
}

func WeeklyOn(from, until string, weekdays ...time.Weekday) Rule {
	return Rule{Kind: RuleWeekly, From: from, Until: until, Weekdays: weekdays}
}

func (r Rule) Recurring() bool {
	return r.Kind == RuleDaily || r.Kind == RuleWeekly
}

// Expand resolves the rule into the concrete, ordered list of civil dates it
// covers. An empty expansion is an error, never a silent no-op.
func (r Rule) Expand(loc *time.Location) ([]string, error) {
	switch r.Kind {
	case RuleSingle:
		if _, err := clock.Combine(r.Date, "00:00", loc); err != nil {
			return nil, ErrInvalidRule
		}
		return []string{r.Date}, nil
	case RuleDaily:
		if r.Days <= 0 {
			return nil, ErrInvalidRule
		}
		start, err := clock.Combine(r.From, "00:00", loc)
		if err != nil {
			return nil, ErrInvalidRule
		}
		dates := make([]string, 0, r.Days)
		for i := 0; i < r.Days; i++ {
			dates = append(dates, clock.DateOf(start.AddDate(0, 0, i)))
		}
		return dates, nil
	case RuleWeekly:
		if len(r.Weekdays) == 0 {
			return nil, ErrInvalidRule
		}
		start, err := clock.Combine(r.From, "00:00", loc)
		if err != nil {
			return nil, ErrInvalidRule
		}
		until, err := clock.Combine(r.Until, "00:00", loc)
		if err != nil {
			return nil, ErrInvalidRule
		}
		if until.Before(start) {
			return nil, ErrInvalidRule
		}
		wanted := make(map[time.Weekday]bool, len(r.Weekdays))
		for _, wd := range r.Weekdays {
			wanted[wd] = true
		}
		var dates []string
		for d := start; !d.After(until); d = d.AddDate(0, 0, 1) {
			if wanted[d.Weekday()] {
				dates = append(dates, clock.DateOf(d))
			}
		}
		if len(dates) == 0 {
			return nil, ErrEmptyRule
		}
		return dates, nil
	default:
		return nil, ErrInvalidRule
	}
}
