package domain

// RollNo is a student's institutional roll number. It is the natural key for
// a Student identity and the scope key carried in student tokens.
type RollNo string

// WardenID is the natural key for a Warden identity.
type WardenID string

// HostelID identifies a hostel.
type HostelID string

// ComplaintID is an internal identifier for a complaint record.
type ComplaintID string

// FoodRequestID is an internal identifier for a food request record.
type FoodRequestID string

// ReportID is an internal identifier for a lost-and-found report.
type ReportID string
