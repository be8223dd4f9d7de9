package domain

// Hostel is a residence with a fixed capacity, optionally administered by a
// warden. The number of students referencing a hostel must never exceed its
// capacity; the identity repositories enforce that atomically.
type Hostel struct {
	ID       HostelID
	Name     string
	Capacity int
	WardenID *WardenID
}
