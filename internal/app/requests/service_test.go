package requests

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	memclock "github.com/snu-hive/hostel-desk-api/internal/adapters/memory/clock"
	memhostelrepo "github.com/snu-hive/hostel-desk-api/internal/adapters/memory/hostelrepo"
	memidentityrepo "github.com/snu-hive/hostel-desk-api/internal/adapters/memory/identityrepo"
	memrequestrepo "github.com/snu-hive/hostel-desk-api/internal/adapters/memory/requestrepo"
	"github.com/snu-hive/hostel-desk-api/internal/app/authz"
	"github.com/snu-hive/hostel-desk-api/internal/domain"
)

type fixture struct {
	svc        *Service
	hostels    *memhostelrepo.Repo
	identities *memidentityrepo.Repo
	clk        *memclock.ManualClock
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	hostels := memhostelrepo.NewRepo()
	identities := memidentityrepo.NewRepo(hostels)
	clk := memclock.NewManualClock(time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC))
	svc := NewService(
		memrequestrepo.NewComplaintRepo(),
		memrequestrepo.NewFoodRequestRepo(),
		memrequestrepo.NewLostFoundRepo(),
		identities,
		authz.NewGate(hostels),
		clk,
	)
	return &fixture{svc: svc, hostels: hostels, identities: identities, clk: clk}
}

func (f *fixture) mustHostel(t *testing.T, id string, warden string) {
	t.Helper()
	h := domain.Hostel{ID: domain.HostelID(id), Name: id + " Block", Capacity: 100}
	if warden != "" {
		wid := domain.WardenID(warden)
		h.WardenID = &wid
	}
	if err := f.hostels.Create(context.Background(), h); err != nil {
		t.Fatalf("create hostel %s: %v", id, err)
	}
}

func (f *fixture) mustStudent(t *testing.T, roll, hostel string) {
	t.Helper()
	err := f.identities.CreateStudent(context.Background(), domain.Student{
		RollNo:        domain.RollNo(roll),
		Name:          "Student " + roll,
		Dept:          "CSE",
		Batch:         2023,
		ContactNo:     "98" + roll,
		Email:         roll + "@snu.edu.in",
		SecretHash:    "x",
		RoomNo:        "101",
		HostelID:      domain.HostelID(hostel),
		ParentContact: "97" + roll,
		CreatedAt:     f.clk.Now(),
	})
	if err != nil {
		t.Fatalf("create student %s: %v", roll, err)
	}
}

func student(roll string) Actor {
	return Actor{Role: domain.RoleStudent, ScopeKey: roll}
}

func warden(id string) Actor {
	return Actor{Role: domain.RoleWarden, ScopeKey: id}
}

func admin(dept string) Actor {
	return Actor{Role: domain.RoleSupportAdmin, ScopeKey: dept}
}

func TestCreateComplaint_VisibilityScoping(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.mustHostel(t, "H1", "")
	f.mustStudent(t, "21BCS001", "H1")
	f.mustStudent(t, "21BCS002", "H1")
	ctx := context.Background()

	c, err := f.svc.CreateComplaint(ctx, student("21BCS001"), CreateComplaintInput{
		Department:  "IT",
		Description: "wifi down in room 101",
	})
	if err != nil {
		t.Fatalf("CreateComplaint err=%v", err)
	}
	if c.Status != domain.ComplaintPending || c.RollNo != "21BCS001" || c.Department != domain.DepartmentIT {
		t.Fatalf("complaint=%+v", c)
	}

	// Visible to the submitter.
	own, err := f.svc.ListComplaints(ctx, student("21BCS001"))
	if err != nil || len(own) != 1 || own[0].ID != c.ID {
		t.Fatalf("submitter list=%v err=%v", own, err)
	}
	// Visible to the owning department's admin, with submitter details joined.
	forIT, err := f.svc.ListComplaints(ctx, admin("IT"))
	if err != nil || len(forIT) != 1 {
		t.Fatalf("IT admin list=%v err=%v", forIT, err)
	}
	if forIT[0].SubmitterName == nil || *forIT[0].SubmitterName != "Student 21BCS001" {
		t.Fatalf("view=%+v", forIT[0])
	}
	// Invisible to other students and other departments.
	other, err := f.svc.ListComplaints(ctx, student("21BCS002"))
	if err != nil || len(other) != 0 {
		t.Fatalf("other student list=%v err=%v", other, err)
	}
	forMaint, err := f.svc.ListComplaints(ctx, admin("Maintenance"))
	if err != nil || len(forMaint) != 0 {
		t.Fatalf("Maintenance admin list=%v err=%v", forMaint, err)
	}
}

func TestCreateComplaint_Validation(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()

	longDesc := make([]byte, 301)
	for i := range longDesc {
		longDesc[i] = 'a'
	}

	cases := []struct {
		name string
		in   CreateComplaintInput
	}{
		{"missing description", CreateComplaintInput{Department: "IT"}},
		{"oversized description", CreateComplaintInput{Department: "IT", Description: string(longDesc)}},
		{"bad department", CreateComplaintInput{Department: "Laundry", Description: "x"}},
	}
	for _, tc := range cases {
		_, err := f.svc.CreateComplaint(ctx, student("21BCS001"), tc.in)
		ae := (*Error)(nil)
		if !errors.As(err, &ae) || ae.Status != 400 || ae.Code != "VALIDATION_ERROR" {
			t.Fatalf("%s: err=%v, want VALIDATION_ERROR 400", tc.name, err)
		}
	}

	// Non-student creation is denied.
	_, err := f.svc.CreateComplaint(ctx, admin("IT"), CreateComplaintInput{Department: "IT", Description: "x"})
	ae := (*Error)(nil)
	if !errors.As(err, &ae) || ae.Status != 403 {
		t.Fatalf("admin create err=%v, want 403", err)
	}
}

func TestTransitionComplaint_DepartmentScope(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.mustHostel(t, "H1", "")
	f.mustStudent(t, "21BCS001", "H1")
	ctx := context.Background()

	c, err := f.svc.CreateComplaint(ctx, student("21BCS001"), CreateComplaintInput{
		Department: "IT", Description: "wifi down",
	})
	if err != nil {
		t.Fatalf("CreateComplaint err=%v", err)
	}

	// Foreign department admin is denied and the record stays put.
	_, err = f.svc.TransitionComplaint(ctx, admin("Maintenance"), c.ID, "Resolved")
	ae := (*Error)(nil)
	if !errors.As(err, &ae) || ae.Status != 403 {
		t.Fatalf("foreign admin err=%v, want 403", err)
	}
	own, _ := f.svc.ListComplaints(ctx, student("21BCS001"))
	if own[0].Status != domain.ComplaintPending {
		t.Fatalf("status changed by denied transition: %v", own[0].Status)
	}

	// Owning admin may move to any enum member, in any order.
	for _, target := range []string{"Resolved", "In Progress", "Rejected", "Pending"} {
		updated, err := f.svc.TransitionComplaint(ctx, admin("IT"), c.ID, target)
		if err != nil {
			t.Fatalf("transition to %s err=%v", target, err)
		}
		if string(updated.Status) != target {
			t.Fatalf("status=%v want %v", updated.Status, target)
		}
	}

	// The new status is visible in a subsequent list.
	if _, err := f.svc.TransitionComplaint(ctx, admin("IT"), c.ID, "Resolved"); err != nil {
		t.Fatalf("transition err=%v", err)
	}
	own, _ = f.svc.ListComplaints(ctx, student("21BCS001"))
	if own[0].Status != domain.ComplaintResolved {
		t.Fatalf("status=%v want Resolved", own[0].Status)
	}

	// Invalid target status.
	_, err = f.svc.TransitionComplaint(ctx, admin("IT"), c.ID, "Escalated")
	if !errors.As(err, &ae) || ae.Status != 400 {
		t.Fatalf("bad status err=%v, want 400", err)
	}

	// Missing record.
	_, err = f.svc.TransitionComplaint(ctx, admin("IT"), "C-missing", "Resolved")
	if !errors.As(err, &ae) || ae.Status != 404 {
		t.Fatalf("missing complaint err=%v, want 404", err)
	}
}

func TestCreateFoodRequest_DerivesHostelServerSide(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.mustHostel(t, "H1", "W-1")
	f.mustStudent(t, "21BCS001", "H1")
	ctx := context.Background()

	fr, err := f.svc.CreateFoodRequest(ctx, student("21BCS001"), CreateFoodRequestInput{
		Meal: "Lunch", Date: "2025-03-11",
	})
	if err != nil {
		t.Fatalf("CreateFoodRequest err=%v", err)
	}
	if fr.HostelID != "H1" || fr.Status != domain.FoodRequestPending {
		t.Fatalf("request=%+v", fr)
	}
}

func TestCreateFoodRequest_RejectsPastDateBeforePersisting(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.mustHostel(t, "H1", "W-1")
	f.mustStudent(t, "21BCS001", "H1")
	ctx := context.Background()

	// Clock is 2025-03-10; the day itself is still requestable.
	if _, err := f.svc.CreateFoodRequest(ctx, student("21BCS001"), CreateFoodRequestInput{
		Meal: "Breakfast", Date: "2025-03-10",
	}); err != nil {
		t.Fatalf("same-day request err=%v", err)
	}

	_, err := f.svc.CreateFoodRequest(ctx, student("21BCS001"), CreateFoodRequestInput{
		Meal: "Lunch", Date: "2025-03-09",
	})
	ae := (*Error)(nil)
	if !errors.As(err, &ae) || ae.Status != 400 {
		t.Fatalf("past date err=%v, want 400", err)
	}
	listed, _ := f.svc.ListFoodRequests(ctx, student("21BCS001"))
	if len(listed) != 1 {
		t.Fatalf("rejected request persisted: %v", listed)
	}

	_, err = f.svc.CreateFoodRequest(ctx, student("21BCS001"), CreateFoodRequestInput{
		Meal: "Brunch", Date: "2025-03-11",
	})
	if !errors.As(err, &ae) || ae.Status != 400 {
		t.Fatalf("bad meal err=%v, want 400", err)
	}
}

func TestTransitionFoodRequest_WardenScope(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.mustHostel(t, "H1", "W-1")
	f.mustHostel(t, "H2", "W-2")
	f.mustStudent(t, "21BCS001", "H1")
	ctx := context.Background()

	fr, err := f.svc.CreateFoodRequest(ctx, student("21BCS001"), CreateFoodRequestInput{
		Meal: "Dinner", Date: "2025-03-11",
	})
	if err != nil {
		t.Fatalf("CreateFoodRequest err=%v", err)
	}

	// Warden of H2 cannot touch a request derived to H1; record unchanged.
	_, err = f.svc.TransitionFoodRequest(ctx, warden("W-2"), fr.ID, "Approved")
	ae := (*Error)(nil)
	if !errors.As(err, &ae) || ae.Status != 403 {
		t.Fatalf("foreign warden err=%v, want 403", err)
	}
	listed, _ := f.svc.ListFoodRequests(ctx, student("21BCS001"))
	if listed[0].Status != domain.FoodRequestPending {
		t.Fatalf("status changed by denied transition: %v", listed[0].Status)
	}

	// The administering warden may approve.
	updated, err := f.svc.TransitionFoodRequest(ctx, warden("W-1"), fr.ID, "Approved")
	if err != nil || updated.Status != domain.FoodRequestApproved {
		t.Fatalf("approve err=%v updated=%+v", err, updated)
	}

	// Students cannot transition even their own request.
	_, err = f.svc.TransitionFoodRequest(ctx, student("21BCS001"), fr.ID, "Rejected")
	if !errors.As(err, &ae) || ae.Status != 403 {
		t.Fatalf("student transition err=%v, want 403", err)
	}

	_, err = f.svc.TransitionFoodRequest(ctx, warden("W-1"), "F-missing", "Approved")
	if !errors.As(err, &ae) || ae.Status != 404 {
		t.Fatalf("missing request err=%v, want 404", err)
	}
}

func TestListFoodRequests_WardenSeesOnlyAdministeredHostels(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.mustHostel(t, "H1", "W-1")
	f.mustHostel(t, "H2", "W-2")
	f.mustStudent(t, "21BCS001", "H1")
	f.mustStudent(t, "21BCS002", "H2")
	ctx := context.Background()

	for i, roll := range []string{"21BCS001", "21BCS002"} {
		f.clk.Advance(time.Minute)
		if _, err := f.svc.CreateFoodRequest(ctx, student(roll), CreateFoodRequestInput{
			Meal: "Lunch", Date: fmt.Sprintf("2025-03-1%d", i+1),
		}); err != nil {
			t.Fatalf("create for %s err=%v", roll, err)
		}
	}

	mine, err := f.svc.ListFoodRequests(ctx, warden("W-1"))
	if err != nil {
		t.Fatalf("ListFoodRequests err=%v", err)
	}
	if len(mine) != 1 || mine[0].HostelID != "H1" {
		t.Fatalf("warden list=%v", mine)
	}
	if mine[0].SubmitterName == nil || *mine[0].SubmitterName != "Student 21BCS001" {
		t.Fatalf("missing submitter join: %+v", mine[0])
	}

	// An admin has no food-request scope: empty sequence, not an error.
	none, err := f.svc.ListFoodRequests(ctx, admin("IT"))
	if err != nil || len(none) != 0 {
		t.Fatalf("admin list=%v err=%v", none, err)
	}
}

func TestLostFound_CreateListFilter(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.mustHostel(t, "H1", "")
	f.mustStudent(t, "21BCS001", "H1")
	ctx := context.Background()

	img := "uploads/lostfound/abc.png"
	lost, err := f.svc.ReportLostFound(ctx, student("21BCS001"), ReportLostFoundInput{
		ItemName: "Blue bottle", Location: "Library", Classification: "lost", ContactPhone: "9800000001", ImagePath: &img,
	})
	if err != nil {
		t.Fatalf("ReportLostFound err=%v", err)
	}
	if lost.Classification != domain.ReportLost || lost.ImagePath == nil {
		t.Fatalf("report=%+v", lost)
	}
	f.clk.Advance(time.Minute)
	if _, err := f.svc.ReportLostFound(ctx, student("21BCS001"), ReportLostFoundInput{
		ItemName: "Black umbrella", Location: "Mess", Classification: "FOUND", ContactPhone: "9800000001",
	}); err != nil {
		t.Fatalf("ReportLostFound err=%v", err)
	}

	all, err := f.svc.ListLostFound(ctx, warden("W-1"), nil)
	if err != nil || len(all) != 2 {
		t.Fatalf("list all=%v err=%v", all, err)
	}
	// Newest first.
	if all[0].ItemName != "Black umbrella" {
		t.Fatalf("order=%v", all)
	}
	if all[0].SubmitterName == nil || *all[0].SubmitterName != "Student 21BCS001" {
		t.Fatalf("missing submitter join: %+v", all[0])
	}

	filter := "LOST"
	onlyLost, err := f.svc.ListLostFound(ctx, student("21BCS001"), &filter)
	if err != nil || len(onlyLost) != 1 || onlyLost[0].ID != lost.ID {
		t.Fatalf("filtered=%v err=%v", onlyLost, err)
	}

	bad := "STOLEN"
	_, err = f.svc.ListLostFound(ctx, student("21BCS001"), &bad)
	ae := (*Error)(nil)
	if !errors.As(err, &ae) || ae.Status != 400 {
		t.Fatalf("bad filter err=%v, want 400", err)
	}

	// Missing required fields.
	_, err = f.svc.ReportLostFound(ctx, student("21BCS001"), ReportLostFoundInput{Classification: "LOST"})
	if !errors.As(err, &ae) || ae.Status != 400 {
		t.Fatalf("missing fields err=%v, want 400", err)
	}
}

func TestListComplaints_OrderedNewestFirst(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.mustHostel(t, "H1", "")
	f.mustStudent(t, "21BCS001", "H1")
	ctx := context.Background()

	for _, desc := range []string{"first", "second", "third"} {
		f.clk.Advance(time.Minute)
		if _, err := f.svc.CreateComplaint(ctx, student("21BCS001"), CreateComplaintInput{
			Department: "IT", Description: desc,
		}); err != nil {
			t.Fatalf("create %s err=%v", desc, err)
		}
	}

	own, err := f.svc.ListComplaints(ctx, student("21BCS001"))
	if err != nil {
		t.Fatalf("ListComplaints err=%v", err)
	}
	if len(own) != 3 || own[0].Description != "third" || own[2].Description != "first" {
		t.Fatalf("order=%v", own)
	}
}
