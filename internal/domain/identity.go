package domain

import "time"

// Role discriminates the three principal types. It is embedded in every token
// and checked by the role-specific verifiers.
type Role string

const (
	RoleStudent      Role = "STUDENT"
	RoleWarden       Role = "WARDEN"
	RoleSupportAdmin Role = "SUPPORT_ADMIN"
)

// Department is the support-department enum. It doubles as the natural key
// for a SupportAdmin identity and the routing attribute on complaints.
type Department string

const (
	DepartmentMaintenance  Department = "Maintenance"
	DepartmentPestControl  Department = "Pest-control"
	DepartmentHousekeeping Department = "Housekeeping"
	DepartmentIT           Department = "IT"
)

// Departments lists every valid support department.
func Departments() []Department {
	return []Department{DepartmentMaintenance, DepartmentPestControl, DepartmentHousekeeping, DepartmentIT}
}

func (d Department) IsValid() bool {
	switch d {
	case DepartmentMaintenance, DepartmentPestControl, DepartmentHousekeeping, DepartmentIT:
		return true
	}
	return false
}

// ExternalLink records a linked external identity provider. A provider link
// is the only mutation an Identity record accepts after creation.
type ExternalLink struct {
	Provider string
	Subject  string
}

// Student is the domain representation of a student identity.
// SecretHash is the one-way password hash; it must never be serialized
// toward a client.
type Student struct {
	RollNo        RollNo
	Name          string
	Dept          string
	Batch         int
	ContactNo     string
	Email         string
	SecretHash    string
	RoomNo        string
	HostelID      HostelID
	ParentContact string
	External      *ExternalLink

	CreatedAt time.Time
}

// Warden is the domain representation of a hostel warden identity.
type Warden struct {
	ID         WardenID
	Name       string
	Email      string
	SecretHash string
	ContactNo  string

	CreatedAt time.Time
}

// SupportAdmin is the domain representation of a support-department admin.
// The department is the natural key: at most one admin per department.
type SupportAdmin struct {
	Department    Department
	Email         string
	SecretHash    string
	StaffCapacity int
	WardenID      *WardenID

	CreatedAt time.Time
}
