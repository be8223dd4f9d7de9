package hostelrepo

import (
	"context"
	"errors"

	"github.com/snu-hive/hostel-desk-api/internal/domain"
)

var (
	// ErrNotFound indicates the requested hostel does not exist.
	ErrNotFound = errors.New("hostel not found")

	// ErrAlreadyExists indicates a hostel already exists with the provided ID.
	ErrAlreadyExists = errors.New("hostel already exists")
)

// Repository provides access to persisted hostels.
//
// The authorization gate resolves warden scope through ListByWarden /
// GetByID on every decision; implementations must reflect current state,
// never a cached snapshot.
type Repository interface {
	Create(ctx context.Context, h domain.Hostel) error

	GetByID(ctx context.Context, id domain.HostelID) (domain.Hostel, error)

	// ListByWarden returns the hostels administered by the given warden,
	// ordered by ID ascending for deterministic behavior.
	ListByWarden(ctx context.Context, wardenID domain.WardenID) ([]domain.Hostel, error)
}
