package requestrepo

import (
	"context"
	"errors"

	"github.com/snu-hive/hostel-desk-api/internal/domain"
)

var (
	// ErrNotFound indicates the requested record does not exist.
	ErrNotFound = errors.New("request not found")

	// ErrAlreadyExists indicates a record already exists with the provided ID.
	// Practically unreachable with server-generated IDs, but defended.
	ErrAlreadyExists = errors.New("request already exists")
)

// Result ordering expectations for every listing method: creation time
// descending, ID ascending as a tiebreaker, to keep behavior deterministic.

// ComplaintRepository persists complaints. The department routing attribute
// is immutable after Create; UpdateStatus touches only the status column.
type ComplaintRepository interface {
	Create(ctx context.Context, c domain.Complaint) error
	GetByID(ctx context.Context, id domain.ComplaintID) (domain.Complaint, error)
	ListByRollNo(ctx context.Context, rollNo domain.RollNo) ([]domain.Complaint, error)
	ListByDepartment(ctx context.Context, dept domain.Department) ([]domain.Complaint, error)
	UpdateStatus(ctx context.Context, id domain.ComplaintID, status domain.ComplaintStatus) (domain.Complaint, error)
}

// FoodRequestRepository persists food requests. The hostel routing attribute
// is immutable after Create.
type FoodRequestRepository interface {
	Create(ctx context.Context, fr domain.FoodRequest) error
	GetByID(ctx context.Context, id domain.FoodRequestID) (domain.FoodRequest, error)
	ListByRollNo(ctx context.Context, rollNo domain.RollNo) ([]domain.FoodRequest, error)
	ListByHostels(ctx context.Context, hostelIDs []domain.HostelID) ([]domain.FoodRequest, error)
	UpdateStatus(ctx context.Context, id domain.FoodRequestID, status domain.FoodRequestStatus) (domain.FoodRequest, error)
}

// LostFoundRepository persists lost-and-found reports. Reports are immutable
// after Create; there is deliberately no update method.
type LostFoundRepository interface {
	Create(ctx context.Context, r domain.LostFoundReport) error
	GetByID(ctx context.Context, id domain.ReportID) (domain.LostFoundReport, error)

	// List returns all reports, optionally filtered by classification when
	// classification is non-nil.
	List(ctx context.Context, classification *domain.ReportClassification) ([]domain.LostFoundReport, error)
}
