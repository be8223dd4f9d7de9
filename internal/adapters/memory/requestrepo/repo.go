package requestrepo

import (
	"context"
	"sort"
	"sync"

	"github.com/snu-hive/hostel-desk-api/internal/domain"
	"github.com/snu-hive/hostel-desk-api/internal/ports/out/requestrepo"
)

// ComplaintRepo is an in-memory implementation of requestrepo.ComplaintRepository.
// It is safe for concurrent use.
type ComplaintRepo struct {
	mu   sync.RWMutex
	byID map[domain.ComplaintID]domain.Complaint
}

func NewComplaintRepo() *ComplaintRepo {
	return &ComplaintRepo{byID: make(map[domain.ComplaintID]domain.Complaint)}
}

func (r *ComplaintRepo) Create(ctx context.Context, c domain.Complaint) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[c.ID]; ok {
		return requestrepo.ErrAlreadyExists
	}
	r.byID[c.ID] = cloneComplaint(c)
	return nil
}

func (r *ComplaintRepo) GetByID(ctx context.Context, id domain.ComplaintID) (domain.Complaint, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.byID[id]
	if !ok {
		return domain.Complaint{}, requestrepo.ErrNotFound
	}
	return cloneComplaint(c), nil
}

func (r *ComplaintRepo) ListByRollNo(ctx context.Context, rollNo domain.RollNo) ([]domain.Complaint, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.Complaint, 0)
	for _, c := range r.byID {
		if c.RollNo == rollNo {
			out = append(out, cloneComplaint(c))
		}
	}
	sortComplaints(out)
	return out, nil
}

func (r *ComplaintRepo) ListByDepartment(ctx context.Context, dept domain.Department) ([]domain.Complaint, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.Complaint, 0)
	for _, c := range r.byID {
		if c.Department == dept {
			out = append(out, cloneComplaint(c))
		}
	}
	sortComplaints(out)
	return out, nil
}

func (r *ComplaintRepo) UpdateStatus(ctx context.Context, id domain.ComplaintID, status domain.ComplaintStatus) (domain.Complaint, error) {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.byID[id]
	if !ok {
		return domain.Complaint{}, requestrepo.ErrNotFound
	}
	c.Status = status
	r.byID[id] = c
	return cloneComplaint(c), nil
}

// FoodRequestRepo is an in-memory implementation of requestrepo.FoodRequestRepository.
// It is safe for concurrent use.
type FoodRequestRepo struct {
	mu   sync.RWMutex
	byID map[domain.FoodRequestID]domain.FoodRequest
}

func NewFoodRequestRepo() *FoodRequestRepo {
	return &FoodRequestRepo{byID: make(map[domain.FoodRequestID]domain.FoodRequest)}
}

func (r *FoodRequestRepo) Create(ctx context.Context, fr domain.FoodRequest) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[fr.ID]; ok {
		return requestrepo.ErrAlreadyExists
	}
	r.byID[fr.ID] = fr
	return nil
}

func (r *FoodRequestRepo) GetByID(ctx context.Context, id domain.FoodRequestID) (domain.FoodRequest, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()

	fr, ok := r.byID[id]
	if !ok {
		return domain.FoodRequest{}, requestrepo.ErrNotFound
	}
	return fr, nil
}

func (r *FoodRequestRepo) ListByRollNo(ctx context.Context, rollNo domain.RollNo) ([]domain.FoodRequest, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.FoodRequest, 0)
	for _, fr := range r.byID {
		if fr.RollNo == rollNo {
			out = append(out, fr)
		}
	}
	sortFoodRequests(out)
	return out, nil
}

func (r *FoodRequestRepo) ListByHostels(ctx context.Context, hostelIDs []domain.HostelID) ([]domain.FoodRequest, error) {
	_ = ctx
	want := make(map[domain.HostelID]bool, len(hostelIDs))
	for _, id := range hostelIDs {
		want[id] = true
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.FoodRequest, 0)
	for _, fr := range r.byID {
		if want[fr.HostelID] {
			out = append(out, fr)
		}
	}
	sortFoodRequests(out)
	return out, nil
}

func (r *FoodRequestRepo) UpdateStatus(ctx context.Context, id domain.FoodRequestID, status domain.FoodRequestStatus) (domain.FoodRequest, error) {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()

	fr, ok := r.byID[id]
	if !ok {
		return domain.FoodRequest{}, requestrepo.ErrNotFound
	}
	fr.Status = status
	r.byID[id] = fr
	return fr, nil
}

// LostFoundRepo is an in-memory implementation of requestrepo.LostFoundRepository.
// It is safe for concurrent use. Records are immutable after Create.
type LostFoundRepo struct {
	mu   sync.RWMutex
	byID map[domain.ReportID]domain.LostFoundReport
}

func NewLostFoundRepo() *LostFoundRepo {
	return &LostFoundRepo{byID: make(map[domain.ReportID]domain.LostFoundReport)}
}

func (r *LostFoundRepo) Create(ctx context.Context, rep domain.LostFoundReport) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[rep.ID]; ok {
		return requestrepo.ErrAlreadyExists
	}
	r.byID[rep.ID] = cloneReport(rep)
	return nil
}

func (r *LostFoundRepo) GetByID(ctx context.Context, id domain.ReportID) (domain.LostFoundReport, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()

	rep, ok := r.byID[id]
	if !ok {
		return domain.LostFoundReport{}, requestrepo.ErrNotFound
	}
	return cloneReport(rep), nil
}

func (r *LostFoundRepo) List(ctx context.Context, classification *domain.ReportClassification) ([]domain.LostFoundReport, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.LostFoundReport, 0)
	for _, rep := range r.byID {
		if classification != nil && rep.Classification != *classification {
			continue
		}
		out = append(out, cloneReport(rep))
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func sortComplaints(cs []domain.Complaint) {
	sort.Slice(cs, func(i, j int) bool {
		if !cs[i].CreatedAt.Equal(cs[j].CreatedAt) {
			return cs[i].CreatedAt.After(cs[j].CreatedAt)
		}
		return cs[i].ID < cs[j].ID
	})
}

func sortFoodRequests(frs []domain.FoodRequest) {
	sort.Slice(frs, func(i, j int) bool {
		if !frs[i].CreatedAt.Equal(frs[j].CreatedAt) {
			return frs[i].CreatedAt.After(frs[j].CreatedAt)
		}
		return frs[i].ID < frs[j].ID
	})
}

func cloneComplaint(c domain.Complaint) domain.Complaint {
	out := c
	if c.HostelID != nil {
		v := *c.HostelID
		out.HostelID = &v
	}
	return out
}

func cloneReport(rep domain.LostFoundReport) domain.LostFoundReport {
	out := rep
	if rep.RollNo != nil {
		v := *rep.RollNo
		out.RollNo = &v
	}
	if rep.ImagePath != nil {
		v := *rep.ImagePath
		out.ImagePath = &v
	}
	return out
}
