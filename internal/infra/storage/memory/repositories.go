package memory

import (
	"context"
	"sort"
	"sync"

	domainblock "courtside/internal/domain/block"
	domaincourt "courtside/internal/domain/court"
	domainreservation "courtside/internal/domain/reservation"
)

// CourtRepository is a mutex-guarded in-memory court store.
type CourtRepository struct {
	mu    sync.RWMutex
	items map[domaincourt.ID]*domaincourt.Court
}

func NewCourtRepository() *CourtRepository {
	return &CourtRepository{items: make(map[domaincourt.ID]*domaincourt.Court)}
}

func (r *CourtRepository) ByID(ctx context.Context, id domaincourt.ID) (*domaincourt.Court, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.items[id]
	if !ok {
		return nil, domaincourt.ErrCourtNotFound
	}
	cp := *c
	return &cp, nil
}

func (r *CourtRepository) List(ctx context.Context) ([]*domaincourt.Court, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*domaincourt.Court, 0, len(r.items))
	for _, c := range r.items {
		cp := *c
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *CourtRepository) Save(ctx context.Context, c *domaincourt.Court) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *c
	r.items[c.ID] = &cp
	return nil
}

type slotKey struct {
	court domaincourt.ID
	date  string
	start string
}

// ReservationRepository stores reservations and enforces the active-slot
// uniqueness constraint the way a database index would: under one lock, so
// concurrent bookings of the same slot resolve with exactly one winner.
type ReservationRepository struct {
	mu     sync.RWMutex
	items  map[domainreservation.ID]*domainreservation.Reservation
	active map[slotKey]domainreservation.ID
}

func NewReservationRepository() *ReservationRepository {
	return &ReservationRepository{
		items:  make(map[domainreservation.ID]*domainreservation.Reservation),
		active: make(map[slotKey]domainreservation.ID),
	}
}

func (r *ReservationRepository) ByID(ctx context.Context, id domainreservation.ID) (*domainreservation.Reservation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	res, ok := r.items[id]
	if !ok {
		return nil, domainreservation.ErrReservationNotFound
	}
	cp := *res
	return &cp, nil
}

func (r *ReservationRepository) Save(ctx context.Context, res *domainreservation.Reservation) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := slotKey{court: res.CourtID, date: res.Date, start: res.Start}
	if res.Status == domainreservation.StatusActive {
		if holder, taken := r.active[key]; taken && holder != res.ID {
			return domainreservation.ErrSlotUnavailable
		}
		r.active[key] = res.ID
	} else if holder, ok := r.active[key]; ok && holder == res.ID {
		delete(r.active, key)
	}

	cp := *res
	cp.ClearEvents()
	r.items[res.ID] = &cp
	return nil
}

func (r *ReservationRepository) ActiveByHolder(ctx context.Context, holderID string) ([]*domainreservation.Reservation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*domainreservation.Reservation
	for _, res := range r.items {
		if res.HolderID == holderID && res.Status == domainreservation.StatusActive {
			cp := *res
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *ReservationRepository) ByDate(ctx context.Context, date string) ([]*domainreservation.Reservation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*domainreservation.Reservation
	for _, res := range r.items {
		if res.Date == date {
			cp := *res
			out = append(out, &cp)
		}
	}
	return out, nil
}

// BlockRepository keeps block rows with batch/series lookup maps.
type BlockRepository struct {
	mu       sync.RWMutex
	items    map[domainblock.ID]*domainblock.Block
	byBatch  map[domainblock.BatchID][]domainblock.ID
	bySeries map[domainblock.SeriesID][]domainblock.ID
}

func NewBlockRepository() *BlockRepository {
	return &BlockRepository{
		items:    make(map[domainblock.ID]*domainblock.Block),
		byBatch:  make(map[domainblock.BatchID][]domainblock.ID),
		bySeries: make(map[domainblock.SeriesID][]domainblock.ID),
	}
}

func (r *BlockRepository) ByID(ctx context.Context, id domainblock.ID) (*domainblock.Block, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.items[id]
	if !ok {
		return nil, domainblock.ErrBlockNotFound
	}
	cp := *b
	return &cp, nil
}

func (r *BlockRepository) ByBatch(ctx context.Context, batch domainblock.BatchID) ([]*domainblock.Block, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.collect(r.byBatch[batch]), nil
}

func (r *BlockRepository) BySeries(ctx context.Context, series domainblock.SeriesID) ([]*domainblock.Block, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.collect(r.bySeries[series]), nil
}

func (r *BlockRepository) ByDate(ctx context.Context, date string) ([]*domainblock.Block, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*domainblock.Block
	for _, b := range r.items {
		if b.Date == date {
			cp := *b
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *BlockRepository) collect(ids []domainblock.ID) []*domainblock.Block {
	out := make([]*domainblock.Block, 0, len(ids))
	for _, id := range ids {
		if b, ok := r.items[id]; ok {
			cp := *b
			out = append(out, &cp)
		}
	}
	return out
}

// InsertAll stores every row or none; duplicate ids abort the whole call.
func (r *BlockRepository) InsertAll(ctx context.Context, rows []*domainblock.Block) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, b := range rows {
		if _, exists := r.items[b.ID]; exists {
			return domainblock.ErrDuplicateBlock
		}
	}
	for _, b := range rows {
		cp := *b
		r.items[b.ID] = &cp
		r.byBatch[b.BatchID] = append(r.byBatch[b.BatchID], b.ID)
		if b.SeriesID != "" {
			r.bySeries[b.SeriesID] = append(r.bySeries[b.SeriesID], b.ID)
		}
	}
	return nil
}

func (r *BlockRepository) Update(ctx context.Context, b *domainblock.Block) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[b.ID]; !ok {
		return domainblock.ErrBlockNotFound
	}
	cp := *b
	r.items[b.ID] = &cp
	return nil
}

func (r *BlockRepository) DeleteAll(ctx context.Context, ids []domainblock.ID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, id := range ids {
		if _, ok := r.items[id]; !ok {
			return domainblock.ErrBlockNotFound
		}
	}
	for _, id := range ids {
		b := r.items[id]
		delete(r.items, id)
		r.byBatch[b.BatchID] = dropID(r.byBatch[b.BatchID], id)
		if b.SeriesID != "" {
			r.bySeries[b.SeriesID] = dropID(r.bySeries[b.SeriesID], id)
		}
	}
	return nil
}

func dropID(ids []domainblock.ID, id domainblock.ID) []domainblock.ID {
	out := ids[:0]
	for _, candidate := range ids {
		if candidate != id {
			out = append(out, candidate)
		}
	}
	return out
}

// ReasonRepository keeps blocking reasons and their usage counters.
type ReasonRepository struct {
	mu    sync.RWMutex
	items map[string]*domainblock.Reason
}

func NewReasonRepository() *ReasonRepository {
	return &ReasonRepository{items: make(map[string]*domainblock.Reason)}
}

func (r *ReasonRepository) ByID(ctx context.Context, id string) (*domainblock.Reason, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	reason, ok := r.items[id]
	if !ok {
		return nil, domainblock.ErrReasonNotFound
	}
	cp := *reason
	return &cp, nil
}

func (r *ReasonRepository) List(ctx context.Context) ([]*domainblock.Reason, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*domainblock.Reason, 0, len(r.items))
	for _, reason := range r.items {
		cp := *reason
		out = append(out, &cp)
	}
	return out, nil
}

func (r *ReasonRepository) Save(ctx context.Context, reason *domainblock.Reason) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.items[reason.ID]; ok {
		// Usage counters are owned by AdjustUsage; Save never clobbers them.
		reason.UsageCount = existing.UsageCount
	}
	cp := *reason
	r.items[reason.ID] = &cp
	return nil
}

func (r *ReasonRepository) AdjustUsage(ctx context.Context, id string, delta int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	reason, ok := r.items[id]
	if !ok {
		return domainblock.ErrReasonNotFound
	}
	reason.UsageCount += delta
	if reason.UsageCount < 0 {
		reason.UsageCount = 0
	}
	return nil
}
