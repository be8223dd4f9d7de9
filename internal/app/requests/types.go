package requests

import "github.com/snu-hive/hostel-desk-api/internal/domain"

// Actor is the verified identity context a request acts under: the role and
// the role's scope key (roll number, warden id, or department name).
type Actor struct {
	Role     domain.Role
	ScopeKey string
}

func (a Actor) rollNo() domain.RollNo         { return domain.RollNo(a.ScopeKey) }
func (a Actor) wardenID() domain.WardenID     { return domain.WardenID(a.ScopeKey) }
func (a Actor) department() domain.Department { return domain.Department(a.ScopeKey) }

type CreateComplaintInput struct {
	Department  string
	Description string
	HostelID    *string
}

type CreateFoodRequestInput struct {
	Meal string
	Date string // YYYY-MM-DD
}

type ReportLostFoundInput struct {
	ItemName       string
	Location       string
	Classification string
	ContactPhone   string
	ImagePath      *string
}

// ComplaintView decorates a complaint with submitter details for the
// department admin listing; the student fields stay nil in a student's own
// listing.
type ComplaintView struct {
	domain.Complaint

	SubmitterName   *string
	SubmitterHostel *domain.HostelID
	SubmitterRoom   *string
}

// FoodRequestView decorates a food request with submitter details for the
// warden listing.
type FoodRequestView struct {
	domain.FoodRequest

	SubmitterName *string
	SubmitterRoom *string
}

// LostFoundView decorates a report with the reporter's name when known.
type LostFoundView struct {
	domain.LostFoundReport

	SubmitterName *string
}
