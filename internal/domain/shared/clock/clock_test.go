package clock

import (
	"errors"
	"testing"
	"time"
)

func TestCombine(t *testing.T) {
	loc, err := time.LoadLocation("Europe/Berlin")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}

	cases := []struct {
		name    string
		date    string
		hhmm    string
		want    time.Time
		wantErr bool
	}{
		{name: "regular slot", date: "2025-06-01", hhmm: "14:00", want: time.Date(2025, 6, 1, 14, 0, 0, 0, loc)},
		{name: "day boundary", date: "2025-06-01", hhmm: "22:00", want: time.Date(2025, 6, 1, 22, 0, 0, 0, loc)},
		{name: "dst spring forward day", date: "2025-03-30", hhmm: "06:00", want: time.Date(2025, 3, 30, 6, 0, 0, 0, loc)},
		{name: "malformed date", date: "01.06.2025", hhmm: "14:00", wantErr: true},
		{name: "malformed time", date: "2025-06-01", hhmm: "2pm", wantErr: true},
		{name: "empty time", date: "2025-06-01", hhmm: "", wantErr: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Combine(tc.date, tc.hhmm, loc)
			if tc.wantErr {
				if !errors.Is(err, ErrDegraded) {
					t.Fatalf("want ErrDegraded, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !got.Equal(tc.want) {
				t.Fatalf("got %v, want %v", got, tc.want)
			}
		})
	}
}

func TestFixedClock(t *testing.T) {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	c := Fixed(base)
	if !c.Now().Equal(base) {
		t.Fatalf("fixed clock drifted: %v", c.Now())
	}
	c.Advance(90 * time.Minute)
	if want := base.Add(90 * time.Minute); !c.Now().Equal(want) {
		t.Fatalf("advance: got %v, want %v", c.Now(), want)
	}
	c.Set(base)
	if !c.Now().Equal(base) {
		t.Fatalf("set: got %v", c.Now())
	}
}

func TestDateTimeOf(t *testing.T) {
	ts := time.Date(2025, 6, 1, 9, 5, 0, 0, time.UTC)
	if got := DateOf(ts); got != "2025-06-01" {
		t.Fatalf("DateOf: %q", got)
	}
	if got := TimeOf(ts); got != "09:05" {
		t.Fatalf("TimeOf: %q", got)
	}
}
