package domain

import "time"

// ComplaintStatus is the complaint lifecycle enum. Any-to-any movement inside
// the enum is allowed for the owning department's admin; there is no enforced
// ordering.
type ComplaintStatus string

const (
	ComplaintPending    ComplaintStatus = "Pending"
	ComplaintInProgress ComplaintStatus = "In Progress"
	ComplaintResolved   ComplaintStatus = "Resolved"
	ComplaintRejected   ComplaintStatus = "Rejected"
)

func (s ComplaintStatus) IsValid() bool {
	switch s {
	case ComplaintPending, ComplaintInProgress, ComplaintResolved, ComplaintRejected:
		return true
	}
	return false
}

// Complaint is routed to a support department; the department is fixed at
// creation and scopes every later read and transition.
type Complaint struct {
	ID          ComplaintID
	RollNo      RollNo
	Department  Department
	HostelID    *HostelID
	Status      ComplaintStatus
	Description string
	CreatedAt   time.Time
}

// FoodRequestStatus is the food request lifecycle enum.
type FoodRequestStatus string

const (
	FoodRequestPending  FoodRequestStatus = "Pending"
	FoodRequestApproved FoodRequestStatus = "Approved"
	FoodRequestRejected FoodRequestStatus = "Rejected"
)

func (s FoodRequestStatus) IsValid() bool {
	switch s {
	case FoodRequestPending, FoodRequestApproved, FoodRequestRejected:
		return true
	}
	return false
}

// MealType enumerates the meals a food request may target.
type MealType string

const (
	MealBreakfast MealType = "Breakfast"
	MealLunch     MealType = "Lunch"
	MealDinner    MealType = "Dinner"
)

func (m MealType) IsValid() bool {
	switch m {
	case MealBreakfast, MealLunch, MealDinner:
		return true
	}
	return false
}

// FoodRequest is routed to the submitter's hostel. The hostel is derived from
// the student's own identity record at creation, never from client input.
type FoodRequest struct {
	ID        FoodRequestID
	RollNo    RollNo
	HostelID  HostelID
	Meal      MealType
	Date      time.Time // date-only semantics at the edges
	Status    FoodRequestStatus
	CreatedAt time.Time
}

// ReportClassification tags a lost-and-found report. It is a classification,
// not a lifecycle: reports are immutable once created.
type ReportClassification string

const (
	ReportLost  ReportClassification = "LOST"
	ReportFound ReportClassification = "FOUND"
)

func (c ReportClassification) IsValid() bool {
	return c == ReportLost || c == ReportFound
}

// LostFoundReport records a lost or found item. RollNo is nil for anonymous
// reports. ImagePath is an opaque reference into external storage.
type LostFoundReport struct {
	ID             ReportID
	RollNo         *RollNo
	ItemName       string
	Location       string
	Classification ReportClassification
	ContactPhone   string
	ImagePath      *string
	CreatedAt      time.Time
}
