package hostelrepo

import (
	"context"
	"sort"
	"sync"

	"github.com/snu-hive/hostel-desk-api/internal/domain"
	"github.com/snu-hive/hostel-desk-api/internal/ports/out/hostelrepo"
)

// Repo is an in-memory implementation of hostelrepo.Repository.
// It is safe for concurrent use.
type Repo struct {
	mu   sync.RWMutex
	byID map[domain.HostelID]domain.Hostel
}

func NewRepo() *Repo {
	return &Repo{byID: make(map[domain.HostelID]domain.Hostel)}
}

func (r *Repo) Create(ctx context.Context, h domain.Hostel) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[h.ID]; ok {
		return hostelrepo.ErrAlreadyExists
	}
	r.byID[h.ID] = cloneHostel(h)
	return nil
}

func (r *Repo) GetByID(ctx context.Context, id domain.HostelID) (domain.Hostel, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()

	h, ok := r.byID[id]
	if !ok {
		return domain.Hostel{}, hostelrepo.ErrNotFound
	}
	return cloneHostel(h), nil
}

func (r *Repo) ListByWarden(ctx context.Context, wardenID domain.WardenID) ([]domain.Hostel, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.Hostel, 0)
	for _, h := range r.byID {
		if h.WardenID != nil && *h.WardenID == wardenID {
			out = append(out, cloneHostel(h))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func cloneHostel(h domain.Hostel) domain.Hostel {
	out := h
	if h.WardenID != nil {
		v := *h.WardenID
		out.WardenID = &v
	}
	return out
}
