package memory

import (
	"context"
	"errors"
	"sort"
	"sync"

	"farm-husbandry/internal/domain/events"
)

type eventRepo struct {
	mu   sync.RWMutex
	byID map[string]events.Event
}

func NewEventRepo() events.Repository {
	return &eventRepo{
		byID: make(map[string]events.Event),
	}
}

func (r *eventRepo) Create(ctx context.Context, e events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if e.ID == "" {
		return errors.New("event id required")
	}
	if _, exists := r.byID[e.ID]; exists {
		return errors.New("event already exists")
	}

	r.byID[e.ID] = e
	return nil
}

func (r *eventRepo) GetByID(ctx context.Context, id string) (events.Event, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.byID[id]
	if !ok {
		return events.Event{}, events.ErrNotFound
	}
	return e, nil
}

func (r *eventRepo) List(ctx context.Context, f events.ListFilter) ([]events.Event, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	limit := f.Limit
	if limit <= 0 {
		limit = 50
	}

	out := make([]events.Event, 0)
	for _, e := range r.byID {
		if f.Species != "" && e.Species != f.Species {
			continue
		}
		if f.Scope != "" && e.Scope != f.Scope {
			continue
		}
		if f.AnimalID != "" && e.AnimalID != f.AnimalID {
			continue
		}
		if f.CorralID != "" && e.CorralID != f.CorralID {
			continue
		}
		if f.From != nil && e.Date.Before(*f.From) {
			continue
		}
		if f.To != nil && e.Date.After(*f.To) {
			continue
		}
		out = append(out, e)
	}

	// Más reciente primero.
	sort.Slice(out, func(i, j int) bool {
		return out[i].Date.After(out[j].Date)
	})

	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *eventRepo) FindRecent(ctx context.Context, q events.RecentQuery) (events.Event, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var best events.Event
	found := false
	for _, e := range r.byID {
		if e.Species != q.Species || e.SubType != q.SubType {
			continue
		}
		if q.AnimalID != "" && e.AnimalID != q.AnimalID {
			continue
		}
		if q.CorralID != "" && e.CorralID != q.CorralID {
			continue
		}
		if e.Date.Before(q.Since) {
			continue
		}
		if q.ExcludeID != "" && e.ID == q.ExcludeID {
			continue
		}
		if !found || e.Date.After(best.Date) {
			best = e
			found = true
		}
	}
	if !found {
		return events.Event{}, events.ErrNotFound
	}
	return best, nil
}
