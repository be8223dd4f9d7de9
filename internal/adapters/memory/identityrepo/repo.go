package identityrepo

import (
	"context"
	"strings"
	"sync"

	"github.com/snu-hive/hostel-desk-api/internal/domain"
	hostelrepoport "github.com/snu-hive/hostel-desk-api/internal/ports/out/hostelrepo"
	"github.com/snu-hive/hostel-desk-api/internal/ports/out/identityrepo"
)

// Repo is an in-memory implementation of identityrepo.Repository.
// It is safe for concurrent use.
//
// CreateStudent holds the repo lock across the occupant count and the insert,
// which is what makes the hostel capacity invariant hold under concurrent
// registrations.
type Repo struct {
	hostels hostelrepoport.Repository

	mu             sync.RWMutex
	studentsByRoll map[domain.RollNo]domain.Student
	wardensByID    map[domain.WardenID]domain.Warden
	adminsByDept   map[domain.Department]domain.SupportAdmin
}

func NewRepo(hostels hostelrepoport.Repository) *Repo {
	return &Repo{
		hostels:        hostels,
		studentsByRoll: make(map[domain.RollNo]domain.Student),
		wardensByID:    make(map[domain.WardenID]domain.Warden),
		adminsByDept:   make(map[domain.Department]domain.SupportAdmin),
	}
}

func (r *Repo) CreateStudent(ctx context.Context, s domain.Student) error {
	h, err := r.hostels.GetByID(ctx, s.HostelID)
	if err != nil {
		return identityrepo.ErrHostelNotFound
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.studentsByRoll[s.RollNo]; ok {
		return identityrepo.ErrDuplicateKey
	}
	for _, existing := range r.studentsByRoll {
		if strings.EqualFold(existing.Email, s.Email) || existing.ContactNo == s.ContactNo {
			return identityrepo.ErrDuplicateKey
		}
	}

	occupants := 0
	for _, existing := range r.studentsByRoll {
		if existing.HostelID == s.HostelID {
			occupants++
		}
	}
	if occupants >= h.Capacity {
		return identityrepo.ErrHostelFull
	}

	r.studentsByRoll[s.RollNo] = cloneStudent(s)
	return nil
}

func (r *Repo) CreateWarden(ctx context.Context, w domain.Warden) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.wardensByID[w.ID]; ok {
		return identityrepo.ErrDuplicateKey
	}
	for _, existing := range r.wardensByID {
		if strings.EqualFold(existing.Email, w.Email) || existing.ContactNo == w.ContactNo {
			return identityrepo.ErrDuplicateKey
		}
	}
	r.wardensByID[w.ID] = w
	return nil
}

func (r *Repo) CreateSupportAdmin(ctx context.Context, a domain.SupportAdmin) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.adminsByDept[a.Department]; ok {
		return identityrepo.ErrDuplicateKey
	}
	for _, existing := range r.adminsByDept {
		if strings.EqualFold(existing.Email, a.Email) {
			return identityrepo.ErrDuplicateKey
		}
	}
	r.adminsByDept[a.Department] = cloneAdmin(a)
	return nil
}

func (r *Repo) GetStudentByRollNo(ctx context.Context, rollNo domain.RollNo) (domain.Student, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.studentsByRoll[rollNo]
	if !ok {
		return domain.Student{}, identityrepo.ErrNotFound
	}
	return cloneStudent(s), nil
}

func (r *Repo) GetStudentByEmail(ctx context.Context, email string) (domain.Student, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, s := range r.studentsByRoll {
		if strings.EqualFold(s.Email, email) {
			return cloneStudent(s), nil
		}
	}
	return domain.Student{}, identityrepo.ErrNotFound
}

func (r *Repo) GetWardenByID(ctx context.Context, id domain.WardenID) (domain.Warden, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()

	w, ok := r.wardensByID[id]
	if !ok {
		return domain.Warden{}, identityrepo.ErrNotFound
	}
	return w, nil
}

func (r *Repo) GetWardenByEmail(ctx context.Context, email string) (domain.Warden, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, w := range r.wardensByID {
		if strings.EqualFold(w.Email, email) {
			return w, nil
		}
	}
	return domain.Warden{}, identityrepo.ErrNotFound
}

func (r *Repo) GetAdminByDepartment(ctx context.Context, dept domain.Department) (domain.SupportAdmin, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.adminsByDept[dept]
	if !ok {
		return domain.SupportAdmin{}, identityrepo.ErrNotFound
	}
	return cloneAdmin(a), nil
}

func (r *Repo) GetAdminByEmail(ctx context.Context, email string) (domain.SupportAdmin, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, a := range r.adminsByDept {
		if strings.EqualFold(a.Email, email) {
			return cloneAdmin(a), nil
		}
	}
	return domain.SupportAdmin{}, identityrepo.ErrNotFound
}

func (r *Repo) ListStudentsByRollNos(ctx context.Context, rollNos []domain.RollNo) ([]domain.Student, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.Student, 0, len(rollNos))
	seen := make(map[domain.RollNo]bool, len(rollNos))
	for _, rn := range rollNos {
		if seen[rn] {
			continue
		}
		seen[rn] = true
		if s, ok := r.studentsByRoll[rn]; ok {
			out = append(out, cloneStudent(s))
		}
	}
	return out, nil
}

func (r *Repo) CountStudentsInHostel(ctx context.Context, hostelID domain.HostelID) (int, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()

	n := 0
	for _, s := range r.studentsByRoll {
		if s.HostelID == hostelID {
			n++
		}
	}
	return n, nil
}

func (r *Repo) LinkStudentExternal(ctx context.Context, rollNo domain.RollNo, link domain.ExternalLink) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.studentsByRoll[rollNo]
	if !ok {
		return identityrepo.ErrNotFound
	}
	if s.External != nil {
		if s.External.Provider == link.Provider && s.External.Subject == link.Subject {
			return nil // idempotent relink of the same subject
		}
		return identityrepo.ErrAlreadyLinked
	}
	s.External = &domain.ExternalLink{Provider: link.Provider, Subject: link.Subject}
	r.studentsByRoll[rollNo] = s
	return nil
}

func cloneStudent(s domain.Student) domain.Student {
	out := s
	if s.External != nil {
		v := *s.External
		out.External = &v
	}
	return out
}

func cloneAdmin(a domain.SupportAdmin) domain.SupportAdmin {
	out := a
	if a.WardenID != nil {
		v := *a.WardenID
		out.WardenID = &v
	}
	return out
}
