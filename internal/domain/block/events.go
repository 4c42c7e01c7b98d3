package block

import (
	"time"

	"courtside/internal/domain/court"
)

type BatchCreated struct {
	BatchID    BatchID
	SeriesID   SeriesID
	CourtIDs   []court.ID
	Dates      []string
	Start      string
	End        string
	ReasonID   string
	Cancelled  int
	ActorID    string
	At         time.Time
}

func (e BatchCreated) EventName() string     { return "block.batch_created" }
func (e BatchCreated) AggregateID() string   { return string(e.BatchID) }
func (e BatchCreated) OccurredAt() time.Time { return e.At }

type BatchEdited struct {
	BatchID  BatchID
	SeriesID SeriesID
	Scope    Scope
	Touched  int
	ActorID  string
	At       time.Time
}

func (e BatchEdited) EventName() string     { return "block.batch_edited" }
func (e BatchEdited) AggregateID() string   { return string(e.BatchID) }
func (e BatchEdited) OccurredAt() time.Time { return e.At }

type BatchDeleted struct {
	BatchID  BatchID
	SeriesID SeriesID
	Scope    Scope
	Removed  int
	Retained int
	ActorID  string
	At       time.Time
}

func (e BatchDeleted) EventName() string     { return "block.batch_deleted" }
func (e BatchDeleted) AggregateID() string   { return string(e.BatchID) }
func (e BatchDeleted) OccurredAt() time.Time { return e.At }
