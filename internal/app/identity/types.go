package identity

import "github.com/snu-hive/hostel-desk-api/internal/domain"

// PasswordHasher is the one-way keyed hash collaborator. The concrete
// algorithm lives in platform/auth/passhash.
type PasswordHasher interface {
	Hash(plain string) (string, error)
	Verify(plain, hash string) bool
}

type RegisterStudentInput struct {
	RollNo        string
	Name          string
	Dept          string
	Batch         int
	ContactNo     string
	Email         string
	Password      string
	RoomNo        string
	HostelID      string
	ParentContact string
}

type RegisterWardenInput struct {
	WardenID  string
	Name      string
	Email     string
	Password  string
	ContactNo string
}

type RegisterSupportAdminInput struct {
	Department    string
	Email         string
	Password      string
	StaffCapacity int
	WardenID      *string
}

type CreateHostelInput struct {
	HostelID string
	Name     string
	Capacity int
	WardenID *string
}

// LoginInput carries the natural key or email plus the secret. Which lookup
// applies depends on the role the session endpoint targets.
type LoginInput struct {
	Key      string
	Password string
}

// Session is a freshly issued token plus the minimal profile the original
// login responses carried.
type Session struct {
	Token       string
	Role        domain.Role
	ScopeKey    string
	DisplayName string
}

// StudentProfile is the student's own record with the hostel display name
// resolved. The secret hash never leaves the service.
type StudentProfile struct {
	RollNo        domain.RollNo
	Name          string
	Dept          string
	Batch         int
	ContactNo     string
	Email         string
	RoomNo        string
	HostelID      domain.HostelID
	HostelName    *string
	ParentContact string
}
