package requests

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/snu-hive/hostel-desk-api/internal/app/authz"
	"github.com/snu-hive/hostel-desk-api/internal/domain"
	clockport "github.com/snu-hive/hostel-desk-api/internal/ports/out/clock"
	"github.com/snu-hive/hostel-desk-api/internal/ports/out/identityrepo"
	"github.com/snu-hive/hostel-desk-api/internal/ports/out/requestrepo"
)

const maxComplaintDescription = 300

// Service is the request lifecycle engine: create/list/transition over the
// three trackable-request kinds. Every mutation goes through the
// authorization gate; listings re-derive the visible set from the actor's
// scope, never from client parameters.
type Service struct {
	complaints requestrepo.ComplaintRepository
	food       requestrepo.FoodRequestRepository
	lostfound  requestrepo.LostFoundRepository
	identities identityrepo.Repository
	gate       *authz.Gate
	clk        clockport.Clock

	newComplaintID   func() domain.ComplaintID
	newFoodRequestID func() domain.FoodRequestID
	newReportID      func() domain.ReportID
}

func NewService(
	complaints requestrepo.ComplaintRepository,
	food requestrepo.FoodRequestRepository,
	lostfound requestrepo.LostFoundRepository,
	identities identityrepo.Repository,
	gate *authz.Gate,
	clk clockport.Clock,
) *Service {
	return &Service{
		complaints: complaints,
		food:       food,
		lostfound:  lostfound,
		identities: identities,
		gate:       gate,
		clk:        clk,
		newComplaintID: func() domain.ComplaintID {
			return domain.ComplaintID("C-" + uuid.NewString())
		},
		newFoodRequestID: func() domain.FoodRequestID {
			return domain.FoodRequestID("F-" + uuid.NewString())
		},
		newReportID: func() domain.ReportID {
			return domain.ReportID("L-" + uuid.NewString())
		},
	}
}

// SetIDGeneratorsForTest overrides record ID generation for deterministic
// tests. It should not be used in production code.
func (s *Service) SetIDGeneratorsForTest(complaint func() domain.ComplaintID, food func() domain.FoodRequestID, report func() domain.ReportID) {
	if complaint != nil {
		s.newComplaintID = complaint
	}
	if food != nil {
		s.newFoodRequestID = food
	}
	if report != nil {
		s.newReportID = report
	}
}

func (s *Service) CreateComplaint(ctx context.Context, actor Actor, in CreateComplaintInput) (domain.Complaint, error) {
	if actor.Role != domain.RoleStudent {
		return domain.Complaint{}, notAuthorized()
	}

	details := map[string]any{}
	desc := strings.TrimSpace(in.Description)
	if desc == "" {
		details["description"] = "is required"
	} else if len(desc) > maxComplaintDescription {
		details["description"] = "must be at most 300 characters"
	}
	dept := domain.Department(strings.TrimSpace(in.Department))
	if !dept.IsValid() {
		details["department"] = "must be one of: Maintenance, Pest-control, Housekeeping, IT"
	}
	if len(details) > 0 {
		return domain.Complaint{}, validationError("invalid complaint", details)
	}

	c := domain.Complaint{
		ID:          s.newComplaintID(),
		RollNo:      actor.rollNo(),
		Department:  dept,
		Status:      domain.ComplaintPending,
		Description: desc,
		CreatedAt:   s.clk.Now(),
	}
	if in.HostelID != nil && strings.TrimSpace(*in.HostelID) != "" {
		hid := domain.HostelID(strings.TrimSpace(*in.HostelID))
		c.HostelID = &hid
	}

	if err := s.complaints.Create(ctx, c); err != nil {
		if errors.Is(err, requestrepo.ErrAlreadyExists) {
			return domain.Complaint{}, &Error{Status: 409, Code: "DUPLICATE_REQUEST", Message: "complaint id already exists"}
		}
		return domain.Complaint{}, err
	}
	return c, nil
}

// ListComplaints returns the complaints visible to the actor: a student sees
// its own submissions, an admin its department's (decorated with submitter
// details). A warden has no complaint scope, so it sees an empty sequence.
func (s *Service) ListComplaints(ctx context.Context, actor Actor) ([]ComplaintView, error) {
	switch actor.Role {
	case domain.RoleStudent:
		cs, err := s.complaints.ListByRollNo(ctx, actor.rollNo())
		if err != nil {
			return nil, err
		}
		out := make([]ComplaintView, 0, len(cs))
		for _, c := range cs {
			out = append(out, ComplaintView{Complaint: c})
		}
		return out, nil

	case domain.RoleSupportAdmin:
		cs, err := s.complaints.ListByDepartment(ctx, actor.department())
		if err != nil {
			return nil, err
		}
		students, err := s.studentIndex(ctx, complaintRollNos(cs))
		if err != nil {
			return nil, err
		}
		out := make([]ComplaintView, 0, len(cs))
		for _, c := range cs {
			v := ComplaintView{Complaint: c}
			if st, ok := students[c.RollNo]; ok {
				name, room, hostel := st.Name, st.RoomNo, st.HostelID
				v.SubmitterName = &name
				v.SubmitterRoom = &room
				v.SubmitterHostel = &hostel
			}
			out = append(out, v)
		}
		return out, nil

	default:
		return []ComplaintView{}, nil
	}
}

// TransitionComplaint moves a complaint to targetStatus. Only the admin of
// the complaint's department may do so, and any status inside the enum is a
// legal target: there is intentionally no ordering between states.
func (s *Service) TransitionComplaint(ctx context.Context, actor Actor, id domain.ComplaintID, targetStatus string) (domain.Complaint, error) {
	if actor.Role != domain.RoleSupportAdmin {
		return domain.Complaint{}, notAuthorized()
	}

	c, err := s.complaints.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, requestrepo.ErrNotFound) {
			return domain.Complaint{}, notFound("complaint not found")
		}
		return domain.Complaint{}, err
	}

	if !s.gate.AdminOwnsDepartment(actor.department(), c.Department) {
		return domain.Complaint{}, notAuthorized()
	}

	status := domain.ComplaintStatus(targetStatus)
	if !status.IsValid() {
		return domain.Complaint{}, validationError("invalid status", map[string]any{
			"status": "must be one of: Pending, In Progress, Resolved, Rejected",
		})
	}

	updated, err := s.complaints.UpdateStatus(ctx, id, status)
	if err != nil {
		if errors.Is(err, requestrepo.ErrNotFound) {
			return domain.Complaint{}, notFound("complaint not found")
		}
		return domain.Complaint{}, err
	}
	return updated, nil
}

// CreateFoodRequest derives the routing hostel from the acting student's own
// identity record, never from client input.
func (s *Service) CreateFoodRequest(ctx context.Context, actor Actor, in CreateFoodRequestInput) (domain.FoodRequest, error) {
	if actor.Role != domain.RoleStudent {
		return domain.FoodRequest{}, notAuthorized()
	}

	details := map[string]any{}
	meal := domain.MealType(strings.TrimSpace(in.Meal))
	if !meal.IsValid() {
		details["type"] = "must be Breakfast, Lunch or Dinner"
	}
	date, err := time.ParseInLocation("2006-01-02", strings.TrimSpace(in.Date), time.UTC)
	if err != nil {
		details["date"] = "invalid date format"
	} else if date.Before(todayUTC(s.clk.Now())) {
		details["date"] = "cannot request for past dates"
	}
	if len(details) > 0 {
		return domain.FoodRequest{}, validationError("invalid food request", details)
	}

	st, err := s.identities.GetStudentByRollNo(ctx, actor.rollNo())
	if err != nil {
		if errors.Is(err, identityrepo.ErrNotFound) {
			return domain.FoodRequest{}, validationError("student not assigned to any hostel", nil)
		}
		return domain.FoodRequest{}, err
	}
	if st.HostelID == "" {
		return domain.FoodRequest{}, validationError("student not assigned to any hostel", nil)
	}

	fr := domain.FoodRequest{
		ID:        s.newFoodRequestID(),
		RollNo:    actor.rollNo(),
		HostelID:  st.HostelID,
		Meal:      meal,
		Date:      date,
		Status:    domain.FoodRequestPending,
		CreatedAt: s.clk.Now(),
	}

	if err := s.food.Create(ctx, fr); err != nil {
		if errors.Is(err, requestrepo.ErrAlreadyExists) {
			return domain.FoodRequest{}, &Error{Status: 409, Code: "DUPLICATE_REQUEST", Message: "food request id already exists"}
		}
		return domain.FoodRequest{}, err
	}
	return fr, nil
}

// ListFoodRequests returns the food requests visible to the actor: a student
// its own, a warden those of its administered hostels (decorated with
// submitter details). An admin has no food-request scope.
func (s *Service) ListFoodRequests(ctx context.Context, actor Actor) ([]FoodRequestView, error) {
	switch actor.Role {
	case domain.RoleStudent:
		frs, err := s.food.ListByRollNo(ctx, actor.rollNo())
		if err != nil {
			return nil, err
		}
		out := make([]FoodRequestView, 0, len(frs))
		for _, fr := range frs {
			out = append(out, FoodRequestView{FoodRequest: fr})
		}
		return out, nil

	case domain.RoleWarden:
		hostelIDs, err := s.gate.WardenHostelIDs(ctx, actor.wardenID())
		if err != nil {
			return nil, err
		}
		frs, err := s.food.ListByHostels(ctx, hostelIDs)
		if err != nil {
			return nil, err
		}
		students, err := s.studentIndex(ctx, foodRequestRollNos(frs))
		if err != nil {
			return nil, err
		}
		out := make([]FoodRequestView, 0, len(frs))
		for _, fr := range frs {
			v := FoodRequestView{FoodRequest: fr}
			if st, ok := students[fr.RollNo]; ok {
				name, room := st.Name, st.RoomNo
				v.SubmitterName = &name
				v.SubmitterRoom = &room
			}
			out = append(out, v)
		}
		return out, nil

	default:
		return []FoodRequestView{}, nil
	}
}

// TransitionFoodRequest moves a food request to targetStatus. Only the warden
// administering the request's derived hostel may do so; the hostel-to-warden
// resolution happens on every call.
func (s *Service) TransitionFoodRequest(ctx context.Context, actor Actor, id domain.FoodRequestID, targetStatus string) (domain.FoodRequest, error) {
	if actor.Role != domain.RoleWarden {
		return domain.FoodRequest{}, notAuthorized()
	}

	fr, err := s.food.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, requestrepo.ErrNotFound) {
			return domain.FoodRequest{}, notFound("food request not found")
		}
		return domain.FoodRequest{}, err
	}

	ok, err := s.gate.WardenAdministersHostel(ctx, actor.wardenID(), fr.HostelID)
	if err != nil {
		return domain.FoodRequest{}, err
	}
	if !ok {
		return domain.FoodRequest{}, notAuthorized()
	}

	status := domain.FoodRequestStatus(targetStatus)
	if !status.IsValid() {
		return domain.FoodRequest{}, validationError("invalid status", map[string]any{
			"status": "must be Pending, Approved, or Rejected",
		})
	}

	updated, err := s.food.UpdateStatus(ctx, id, status)
	if err != nil {
		if errors.Is(err, requestrepo.ErrNotFound) {
			return domain.FoodRequest{}, notFound("food request not found")
		}
		return domain.FoodRequest{}, err
	}
	return updated, nil
}

// ReportLostFound records a lost or found item. Reports are immutable after
// creation; there is no transition operation for them.
func (s *Service) ReportLostFound(ctx context.Context, actor Actor, in ReportLostFoundInput) (domain.LostFoundReport, error) {
	if actor.Role != domain.RoleStudent {
		return domain.LostFoundReport{}, notAuthorized()
	}

	details := map[string]any{}
	if strings.TrimSpace(in.ItemName) == "" {
		details["itemName"] = "is required"
	}
	if strings.TrimSpace(in.Location) == "" {
		details["location"] = "is required"
	}
	if strings.TrimSpace(in.ContactPhone) == "" {
		details["phoneNumber"] = "is required"
	}
	classification := domain.ReportClassification(strings.ToUpper(strings.TrimSpace(in.Classification)))
	if !classification.IsValid() {
		details["status"] = "must be LOST or FOUND"
	}
	if len(details) > 0 {
		return domain.LostFoundReport{}, validationError("invalid report", details)
	}

	rollNo := actor.rollNo()
	rep := domain.LostFoundReport{
		ID:             s.newReportID(),
		RollNo:         &rollNo,
		ItemName:       strings.TrimSpace(in.ItemName),
		Location:       strings.TrimSpace(in.Location),
		Classification: classification,
		ContactPhone:   strings.TrimSpace(in.ContactPhone),
		CreatedAt:      s.clk.Now(),
	}
	if in.ImagePath != nil && strings.TrimSpace(*in.ImagePath) != "" {
		p := strings.TrimSpace(*in.ImagePath)
		rep.ImagePath = &p
	}

	if err := s.lostfound.Create(ctx, rep); err != nil {
		if errors.Is(err, requestrepo.ErrAlreadyExists) {
			return domain.LostFoundReport{}, &Error{Status: 409, Code: "DUPLICATE_REQUEST", Message: "report id already exists"}
		}
		return domain.LostFoundReport{}, err
	}
	return rep, nil
}

// ListLostFound is visible to every authenticated role, optionally filtered
// by classification.
func (s *Service) ListLostFound(ctx context.Context, actor Actor, classification *string) ([]LostFoundView, error) {
	_ = actor // all roles see the same set

	var filter *domain.ReportClassification
	if classification != nil && strings.TrimSpace(*classification) != "" {
		c := domain.ReportClassification(strings.ToUpper(strings.TrimSpace(*classification)))
		if !c.IsValid() {
			return nil, validationError("invalid classification", map[string]any{
				"classification": "must be LOST or FOUND",
			})
		}
		filter = &c
	}

	reps, err := s.lostfound.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	students, err := s.studentIndex(ctx, reportRollNos(reps))
	if err != nil {
		return nil, err
	}
	out := make([]LostFoundView, 0, len(reps))
	for _, rep := range reps {
		v := LostFoundView{LostFoundReport: rep}
		if rep.RollNo != nil {
			if st, ok := students[*rep.RollNo]; ok {
				name := st.Name
				v.SubmitterName = &name
			}
		}
		out = append(out, v)
	}
	return out, nil
}

func (s *Service) studentIndex(ctx context.Context, rollNos []domain.RollNo) (map[domain.RollNo]domain.Student, error) {
	if len(rollNos) == 0 {
		return map[domain.RollNo]domain.Student{}, nil
	}
	sts, err := s.identities.ListStudentsByRollNos(ctx, rollNos)
	if err != nil {
		return nil, err
	}
	out := make(map[domain.RollNo]domain.Student, len(sts))
	for _, st := range sts {
		out[st.RollNo] = st
	}
	return out, nil
}

func complaintRollNos(cs []domain.Complaint) []domain.RollNo {
	out := make([]domain.RollNo, 0, len(cs))
	for _, c := range cs {
		out = append(out, c.RollNo)
	}
	return out
}

func foodRequestRollNos(frs []domain.FoodRequest) []domain.RollNo {
	out := make([]domain.RollNo, 0, len(frs))
	for _, fr := range frs {
		out = append(out, fr.RollNo)
	}
	return out
}

func reportRollNos(reps []domain.LostFoundReport) []domain.RollNo {
	out := make([]domain.RollNo, 0, len(reps))
	for _, rep := range reps {
		if rep.RollNo != nil {
			out = append(out, *rep.RollNo)
		}
	}
	return out
}

func todayUTC(now time.Time) time.Time {
	y, m, d := now.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
