package identityrepo

import (
	"context"

	"github.com/snu-hive/hostel-desk-api/internal/domain"
)

// Repository provides access to persisted identities.
//
// Uniqueness of natural keys, emails, and contact numbers within a role is
// enforced here, not at the application layer, so that it holds under
// concurrent writers.
//
// CreateStudent must additionally enforce the hostel capacity invariant
// atomically: the occupant count and the insert must happen inside one
// storage-level critical section (a lock in the memory adapter, a row lock +
// transaction in postgres). A plain read-then-write is not an acceptable
// implementation.
type Repository interface {
	// CreateStudent persists a new student after checking, atomically with
	// the insert, that the referenced hostel exists and has spare capacity.
	// Returns ErrHostelNotFound, ErrHostelFull, or ErrDuplicateKey.
	CreateStudent(ctx context.Context, s domain.Student) error
	CreateWarden(ctx context.Context, w domain.Warden) error
	CreateSupportAdmin(ctx context.Context, a domain.SupportAdmin) error

	GetStudentByRollNo(ctx context.Context, rollNo domain.RollNo) (domain.Student, error)
	GetStudentByEmail(ctx context.Context, email string) (domain.Student, error)
	GetWardenByID(ctx context.Context, id domain.WardenID) (domain.Warden, error)
	GetWardenByEmail(ctx context.Context, email string) (domain.Warden, error)
	GetAdminByDepartment(ctx context.Context, dept domain.Department) (domain.SupportAdmin, error)
	GetAdminByEmail(ctx context.Context, email string) (domain.SupportAdmin, error)

	// ListStudentsByRollNos returns the subset of students whose roll numbers
	// appear in rollNos. Missing roll numbers are skipped, not errors; the
	// request listings use this to decorate records with submitter details.
	ListStudentsByRollNos(ctx context.Context, rollNos []domain.RollNo) ([]domain.Student, error)

	// CountStudentsInHostel reports the current occupant count of a hostel.
	CountStudentsInHostel(ctx context.Context, hostelID domain.HostelID) (int, error)

	// LinkStudentExternal attaches an external provider link to an existing
	// student. A student carries at most one link; relinking a different
	// subject fails with ErrAlreadyLinked.
	LinkStudentExternal(ctx context.Context, rollNo domain.RollNo, link domain.ExternalLink) error
}
