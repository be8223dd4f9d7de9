// Package contracttest holds behavioral suites run against every adapter
// implementation of the outbound ports. The memory and postgres adapters must
// be indistinguishable through the port interfaces; these suites are the
// definition of "indistinguishable".
package contracttest

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/snu-hive/hostel-desk-api/internal/domain"
	hostelrepoport "github.com/snu-hive/hostel-desk-api/internal/ports/out/hostelrepo"
	identityrepoport "github.com/snu-hive/hostel-desk-api/internal/ports/out/identityrepo"
	requestrepoport "github.com/snu-hive/hostel-desk-api/internal/ports/out/requestrepo"
)

type CleanupFunc = func()

type HostelRepoFactory func(t *testing.T) (hostelrepoport.Repository, CleanupFunc)

// IdentityReposFactory builds an identity repository together with the hostel
// repository it enforces capacity against. Both must observe the same state.
type IdentityReposFactory func(t *testing.T) (hostelrepoport.Repository, identityrepoport.Repository, CleanupFunc)

type ComplaintRepoFactory func(t *testing.T) (requestrepoport.ComplaintRepository, CleanupFunc)
type FoodRequestRepoFactory func(t *testing.T) (requestrepoport.FoodRequestRepository, CleanupFunc)
type LostFoundRepoFactory func(t *testing.T) (requestrepoport.LostFoundRepository, CleanupFunc)

func RunHostelRepo(t *testing.T, newRepo HostelRepoFactory) {
	t.Helper()
	ctx := context.Background()

	repo, cleanup := newRepo(t)
	if cleanup != nil {
		t.Cleanup(cleanup)
	}

	w1 := domain.WardenID("W-100")

	// Created out of ID order so ListByWarden has to sort.
	if err := repo.Create(ctx, domain.Hostel{ID: "HB", Name: "Himalaya B", Capacity: 4, WardenID: &w1}); err != nil {
		t.Fatalf("Create HB: %v", err)
	}
	if err := repo.Create(ctx, domain.Hostel{ID: "HA", Name: "Himalaya A", Capacity: 3, WardenID: &w1}); err != nil {
		t.Fatalf("Create HA: %v", err)
	}
	if err := repo.Create(ctx, domain.Hostel{ID: "HC", Name: "Himalaya C", Capacity: 2}); err != nil {
		t.Fatalf("Create HC: %v", err)
	}

	if err := repo.Create(ctx, domain.Hostel{ID: "HA", Name: "Duplicate", Capacity: 1}); !errors.Is(err, hostelrepoport.ErrAlreadyExists) {
		t.Fatalf("duplicate Create: want ErrAlreadyExists, got %v", err)
	}

	got, err := repo.GetByID(ctx, "HA")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Name != "Himalaya A" || got.Capacity != 3 || got.WardenID == nil || *got.WardenID != w1 {
		t.Fatalf("unexpected hostel: %+v", got)
	}
	if _, err := repo.GetByID(ctx, "missing"); !errors.Is(err, hostelrepoport.ErrNotFound) {
		t.Fatalf("GetByID missing: want ErrNotFound, got %v", err)
	}

	list, err := repo.ListByWarden(ctx, w1)
	if err != nil {
		t.Fatalf("ListByWarden: %v", err)
	}
	if len(list) != 2 || list[0].ID != "HA" || list[1].ID != "HB" {
		t.Fatalf("expected [HA HB], got %+v", list)
	}

	none, err := repo.ListByWarden(ctx, "W-none")
	if err != nil {
		t.Fatalf("ListByWarden unknown: %v", err)
	}
	if len(none) != 0 {
		t.Fatalf("expected empty list, got %+v", none)
	}
}

func RunIdentityRepos(t *testing.T, newRepos IdentityReposFactory) {
	t.Helper()
	ctx := context.Background()

	hostels, repo, cleanup := newRepos(t)
	if cleanup != nil {
		t.Cleanup(cleanup)
	}

	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

	if err := hostels.Create(ctx, domain.Hostel{ID: "H1", Name: "North", Capacity: 2}); err != nil {
		t.Fatalf("Create hostel: %v", err)
	}

	student := func(roll, email, contact string) domain.Student {
		return domain.Student{
			RollNo:        domain.RollNo(roll),
			Name:          "Asha Rao",
			Dept:          "CSE",
			Batch:         2023,
			ContactNo:     contact,
			Email:         email,
			SecretHash:    "hash",
			RoomNo:        "101",
			HostelID:      "H1",
			ParentContact: "9000000000",
			CreatedAt:     now,
		}
	}

	if err := repo.CreateStudent(ctx, student("S-1", "asha@snu.edu.in", "9100000001")); err != nil {
		t.Fatalf("CreateStudent: %v", err)
	}

	got, err := repo.GetStudentByRollNo(ctx, "S-1")
	if err != nil {
		t.Fatalf("GetStudentByRollNo: %v", err)
	}
	if got.Email != "asha@snu.edu.in" || got.HostelID != "H1" || got.External != nil {
		t.Fatalf("unexpected student: %+v", got)
	}
	if !got.CreatedAt.Equal(now) {
		t.Fatalf("CreatedAt drifted: %v", got.CreatedAt)
	}

	// Email lookup is case-insensitive.
	if _, err := repo.GetStudentByEmail(ctx, "ASHA@SNU.EDU.IN"); err != nil {
		t.Fatalf("GetStudentByEmail upper: %v", err)
	}
	if _, err := repo.GetStudentByEmail(ctx, "nobody@snu.edu.in"); !errors.Is(err, identityrepoport.ErrNotFound) {
		t.Fatalf("GetStudentByEmail missing: want ErrNotFound, got %v", err)
	}

	// Duplicate natural key, email (any casing), and contact number.
	if err := repo.CreateStudent(ctx, student("S-1", "other@snu.edu.in", "9100000009")); !errors.Is(err, identityrepoport.ErrDuplicateKey) {
		t.Fatalf("duplicate roll: want ErrDuplicateKey, got %v", err)
	}
	if err := repo.CreateStudent(ctx, student("S-2", "Asha@SNU.edu.in", "9100000002")); !errors.Is(err, identityrepoport.ErrDuplicateKey) {
		t.Fatalf("duplicate email: want ErrDuplicateKey, got %v", err)
	}
	if err := repo.CreateStudent(ctx, student("S-2", "s2@snu.edu.in", "9100000001")); !errors.Is(err, identityrepoport.ErrDuplicateKey) {
		t.Fatalf("duplicate contact: want ErrDuplicateKey, got %v", err)
	}

	// Unknown hostel is rejected before anything is written.
	bad := student("S-2", "s2@snu.edu.in", "9100000002")
	bad.HostelID = "H-missing"
	if err := repo.CreateStudent(ctx, bad); !errors.Is(err, identityrepoport.ErrHostelNotFound) {
		t.Fatalf("unknown hostel: want ErrHostelNotFound, got %v", err)
	}
	if _, err := repo.GetStudentByRollNo(ctx, "S-2"); !errors.Is(err, identityrepoport.ErrNotFound) {
		t.Fatalf("rejected student must not persist, got %v", err)
	}

	// Fill the second capacity slot, then overflow.
	if err := repo.CreateStudent(ctx, student("S-2", "s2@snu.edu.in", "9100000002")); err != nil {
		t.Fatalf("CreateStudent S-2: %v", err)
	}
	if err := repo.CreateStudent(ctx, student("S-3", "s3@snu.edu.in", "9100000003")); !errors.Is(err, identityrepoport.ErrHostelFull) {
		t.Fatalf("full hostel: want ErrHostelFull, got %v", err)
	}
	if n, err := repo.CountStudentsInHostel(ctx, "H1"); err != nil || n != 2 {
		t.Fatalf("CountStudentsInHostel: n=%d err=%v", n, err)
	}

	// Concurrent registrations must never overshoot capacity.
	if err := hostels.Create(ctx, domain.Hostel{ID: "H2", Name: "South", Capacity: 3}); err != nil {
		t.Fatalf("Create hostel H2: %v", err)
	}
	const attempts = 8
	errs := make([]error, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s := student(
				fmt.Sprintf("C-%d", i),
				fmt.Sprintf("c%d@snu.edu.in", i),
				fmt.Sprintf("92000000%02d", i),
			)
			s.HostelID = "H2"
			errs[i] = repo.CreateStudent(ctx, s)
		}(i)
	}
	wg.Wait()
	admitted := 0
	for i, err := range errs {
		switch {
		case err == nil:
			admitted++
		case errors.Is(err, identityrepoport.ErrHostelFull):
		default:
			t.Fatalf("concurrent CreateStudent %d: %v", i, err)
		}
	}
	if admitted != 3 {
		t.Fatalf("expected exactly 3 admissions, got %d", admitted)
	}
	if n, err := repo.CountStudentsInHostel(ctx, "H2"); err != nil || n != 3 {
		t.Fatalf("CountStudentsInHostel after race: n=%d err=%v", n, err)
	}

	// ListStudentsByRollNos skips unknowns and dedupes.
	subset, err := repo.ListStudentsByRollNos(ctx, []domain.RollNo{"S-1", "S-404", "S-2", "S-1"})
	if err != nil {
		t.Fatalf("ListStudentsByRollNos: %v", err)
	}
	if len(subset) != 2 {
		t.Fatalf("expected 2 students, got %+v", subset)
	}

	// Wardens.
	warden := domain.Warden{ID: "W-1", Name: "R. Iyer", Email: "iyer@snu.edu.in", SecretHash: "hash", ContactNo: "9300000001", CreatedAt: now}
	if err := repo.CreateWarden(ctx, warden); err != nil {
		t.Fatalf("CreateWarden: %v", err)
	}
	if err := repo.CreateWarden(ctx, domain.Warden{ID: "W-2", Name: "Dup", Email: "IYER@snu.edu.in", SecretHash: "hash", ContactNo: "9300000002", CreatedAt: now}); !errors.Is(err, identityrepoport.ErrDuplicateKey) {
		t.Fatalf("duplicate warden email: want ErrDuplicateKey, got %v", err)
	}
	if _, err := repo.GetWardenByID(ctx, "W-1"); err != nil {
		t.Fatalf("GetWardenByID: %v", err)
	}
	if _, err := repo.GetWardenByEmail(ctx, "iyer@snu.edu.in"); err != nil {
		t.Fatalf("GetWardenByEmail: %v", err)
	}
	if _, err := repo.GetWardenByID(ctx, "W-404"); !errors.Is(err, identityrepoport.ErrNotFound) {
		t.Fatalf("GetWardenByID missing: want ErrNotFound, got %v", err)
	}

	// Support admins, keyed by department.
	wid := domain.WardenID("W-1")
	admin := domain.SupportAdmin{Department: domain.DepartmentIT, Email: "it@snu.edu.in", SecretHash: "hash", StaffCapacity: 5, WardenID: &wid, CreatedAt: now}
	if err := repo.CreateSupportAdmin(ctx, admin); err != nil {
		t.Fatalf("CreateSupportAdmin: %v", err)
	}
	if err := repo.CreateSupportAdmin(ctx, domain.SupportAdmin{Department: domain.DepartmentIT, Email: "it2@snu.edu.in", SecretHash: "hash", StaffCapacity: 5, CreatedAt: now}); !errors.Is(err, identityrepoport.ErrDuplicateKey) {
		t.Fatalf("duplicate department: want ErrDuplicateKey, got %v", err)
	}
	gotAdmin, err := repo.GetAdminByDepartment(ctx, domain.DepartmentIT)
	if err != nil {
		t.Fatalf("GetAdminByDepartment: %v", err)
	}
	if gotAdmin.WardenID == nil || *gotAdmin.WardenID != wid {
		t.Fatalf("expected warden link, got %+v", gotAdmin)
	}
	if _, err := repo.GetAdminByEmail(ctx, "IT@snu.edu.in"); err != nil {
		t.Fatalf("GetAdminByEmail: %v", err)
	}

	// External links: at most one per student, idempotent for the same subject.
	link := domain.ExternalLink{Provider: "google", Subject: "sub-123"}
	if err := repo.LinkStudentExternal(ctx, "S-404", link); !errors.Is(err, identityrepoport.ErrNotFound) {
		t.Fatalf("link unknown student: want ErrNotFound, got %v", err)
	}
	if err := repo.LinkStudentExternal(ctx, "S-1", link); err != nil {
		t.Fatalf("LinkStudentExternal: %v", err)
	}
	if err := repo.LinkStudentExternal(ctx, "S-1", link); err != nil {
		t.Fatalf("idempotent relink: %v", err)
	}
	if err := repo.LinkStudentExternal(ctx, "S-1", domain.ExternalLink{Provider: "google", Subject: "sub-456"}); !errors.Is(err, identityrepoport.ErrAlreadyLinked) {
		t.Fatalf("relink different subject: want ErrAlreadyLinked, got %v", err)
	}
	linked, err := repo.GetStudentByRollNo(ctx, "S-1")
	if err != nil {
		t.Fatalf("GetStudentByRollNo after link: %v", err)
	}
	if linked.External == nil || linked.External.Subject != "sub-123" {
		t.Fatalf("expected persisted link, got %+v", linked.External)
	}
}

func RunComplaintRepo(t *testing.T, newRepo ComplaintRepoFactory) {
	t.Helper()
	ctx := context.Background()

	repo, cleanup := newRepo(t)
	if cleanup != nil {
		t.Cleanup(cleanup)
	}

	base := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	hostel := domain.HostelID("H1")
	mk := func(id string, roll domain.RollNo, dept domain.Department, at time.Time) domain.Complaint {
		return domain.Complaint{
			ID:          domain.ComplaintID(id),
			RollNo:      roll,
			Department:  dept,
			HostelID:    &hostel,
			Status:      domain.ComplaintPending,
			Description: "leaking tap",
			CreatedAt:   at,
		}
	}

	// c2 and c3 share a timestamp so listing falls back to the ID tiebreak.
	if err := repo.Create(ctx, mk("c1", "S-1", domain.DepartmentMaintenance, base)); err != nil {
		t.Fatalf("Create c1: %v", err)
	}
	if err := repo.Create(ctx, mk("c3", "S-1", domain.DepartmentIT, base.Add(time.Hour))); err != nil {
		t.Fatalf("Create c3: %v", err)
	}
	if err := repo.Create(ctx, mk("c2", "S-1", domain.DepartmentMaintenance, base.Add(time.Hour))); err != nil {
		t.Fatalf("Create c2: %v", err)
	}
	if err := repo.Create(ctx, mk("c4", "S-2", domain.DepartmentMaintenance, base.Add(2*time.Hour))); err != nil {
		t.Fatalf("Create c4: %v", err)
	}

	if err := repo.Create(ctx, mk("c1", "S-9", domain.DepartmentIT, base)); !errors.Is(err, requestrepoport.ErrAlreadyExists) {
		t.Fatalf("duplicate Create: want ErrAlreadyExists, got %v", err)
	}

	got, err := repo.GetByID(ctx, "c1")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Department != domain.DepartmentMaintenance || got.HostelID == nil || *got.HostelID != hostel {
		t.Fatalf("unexpected complaint: %+v", got)
	}
	if _, err := repo.GetByID(ctx, "missing"); !errors.Is(err, requestrepoport.ErrNotFound) {
		t.Fatalf("GetByID missing: want ErrNotFound, got %v", err)
	}

	byRoll, err := repo.ListByRollNo(ctx, "S-1")
	if err != nil {
		t.Fatalf("ListByRollNo: %v", err)
	}
	assertComplaintOrder(t, byRoll, "c2", "c3", "c1")

	byDept, err := repo.ListByDepartment(ctx, domain.DepartmentMaintenance)
	if err != nil {
		t.Fatalf("ListByDepartment: %v", err)
	}
	assertComplaintOrder(t, byDept, "c4", "c2", "c1")

	updated, err := repo.UpdateStatus(ctx, "c1", domain.ComplaintResolved)
	if err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}
	if updated.Status != domain.ComplaintResolved || updated.Description != "leaking tap" {
		t.Fatalf("unexpected updated complaint: %+v", updated)
	}
	reread, err := repo.GetByID(ctx, "c1")
	if err != nil || reread.Status != domain.ComplaintResolved {
		t.Fatalf("status not persisted: %+v err=%v", reread, err)
	}
	if _, err := repo.UpdateStatus(ctx, "missing", domain.ComplaintResolved); !errors.Is(err, requestrepoport.ErrNotFound) {
		t.Fatalf("UpdateStatus missing: want ErrNotFound, got %v", err)
	}
}

func RunFoodRequestRepo(t *testing.T, newRepo FoodRequestRepoFactory) {
	t.Helper()
	ctx := context.Background()

	repo, cleanup := newRepo(t)
	if cleanup != nil {
		t.Cleanup(cleanup)
	}

	base := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	day := time.Date(2025, 3, 12, 0, 0, 0, 0, time.UTC)
	mk := func(id string, roll domain.RollNo, hostelID domain.HostelID, at time.Time) domain.FoodRequest {
		return domain.FoodRequest{
			ID:        domain.FoodRequestID(id),
			RollNo:    roll,
			HostelID:  hostelID,
			Meal:      domain.MealLunch,
			Date:      day,
			Status:    domain.FoodRequestPending,
			CreatedAt: at,
		}
	}

	if err := repo.Create(ctx, mk("f1", "S-1", "H1", base)); err != nil {
		t.Fatalf("Create f1: %v", err)
	}
	if err := repo.Create(ctx, mk("f2", "S-2", "H2", base.Add(time.Hour))); err != nil {
		t.Fatalf("Create f2: %v", err)
	}
	if err := repo.Create(ctx, mk("f3", "S-1", "H1", base.Add(2*time.Hour))); err != nil {
		t.Fatalf("Create f3: %v", err)
	}
	if err := repo.Create(ctx, mk("f1", "S-9", "H9", base)); !errors.Is(err, requestrepoport.ErrAlreadyExists) {
		t.Fatalf("duplicate Create: want ErrAlreadyExists, got %v", err)
	}

	got, err := repo.GetByID(ctx, "f1")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Meal != domain.MealLunch || !got.Date.Equal(day) || got.HostelID != "H1" {
		t.Fatalf("unexpected food request: %+v", got)
	}
	if _, err := repo.GetByID(ctx, "missing"); !errors.Is(err, requestrepoport.ErrNotFound) {
		t.Fatalf("GetByID missing: want ErrNotFound, got %v", err)
	}

	byRoll, err := repo.ListByRollNo(ctx, "S-1")
	if err != nil {
		t.Fatalf("ListByRollNo: %v", err)
	}
	if len(byRoll) != 2 || byRoll[0].ID != "f3" || byRoll[1].ID != "f1" {
		t.Fatalf("expected [f3 f1], got %+v", byRoll)
	}

	byHostels, err := repo.ListByHostels(ctx, []domain.HostelID{"H1", "H2"})
	if err != nil {
		t.Fatalf("ListByHostels: %v", err)
	}
	if len(byHostels) != 3 || byHostels[0].ID != "f3" || byHostels[1].ID != "f2" || byHostels[2].ID != "f1" {
		t.Fatalf("expected [f3 f2 f1], got %+v", byHostels)
	}

	empty, err := repo.ListByHostels(ctx, nil)
	if err != nil {
		t.Fatalf("ListByHostels nil: %v", err)
	}
	if len(empty) != 0 {
		t.Fatalf("expected empty list, got %+v", empty)
	}

	updated, err := repo.UpdateStatus(ctx, "f1", domain.FoodRequestApproved)
	if err != nil || updated.Status != domain.FoodRequestApproved {
		t.Fatalf("UpdateStatus: %+v err=%v", updated, err)
	}
	if _, err := repo.UpdateStatus(ctx, "missing", domain.FoodRequestApproved); !errors.Is(err, requestrepoport.ErrNotFound) {
		t.Fatalf("UpdateStatus missing: want ErrNotFound, got %v", err)
	}
}

func RunLostFoundRepo(t *testing.T, newRepo LostFoundRepoFactory) {
	t.Helper()
	ctx := context.Background()

	repo, cleanup := newRepo(t)
	if cleanup != nil {
		t.Cleanup(cleanup)
	}

	base := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	roll := domain.RollNo("S-1")
	image := "uploads/bottle.jpg"

	if err := repo.Create(ctx, domain.LostFoundReport{
		ID:             "r1",
		RollNo:         &roll,
		ItemName:       "water bottle",
		Location:       "library",
		Classification: domain.ReportLost,
		ContactPhone:   "9100000001",
		ImagePath:      &image,
		CreatedAt:      base,
	}); err != nil {
		t.Fatalf("Create r1: %v", err)
	}
	// Anonymous report: no roll number, no image.
	if err := repo.Create(ctx, domain.LostFoundReport{
		ID:             "r2",
		ItemName:       "umbrella",
		Location:       "mess hall",
		Classification: domain.ReportFound,
		ContactPhone:   "9100000002",
		CreatedAt:      base.Add(time.Hour),
	}); err != nil {
		t.Fatalf("Create r2: %v", err)
	}
	if err := repo.Create(ctx, domain.LostFoundReport{
		ID:             "r3",
		RollNo:         &roll,
		ItemName:       "calculator",
		Location:       "lab 2",
		Classification: domain.ReportLost,
		ContactPhone:   "9100000001",
		CreatedAt:      base.Add(2 * time.Hour),
	}); err != nil {
		t.Fatalf("Create r3: %v", err)
	}
	if err := repo.Create(ctx, domain.LostFoundReport{
		ID:             "r1",
		ItemName:       "dup",
		Location:       "x",
		Classification: domain.ReportLost,
		ContactPhone:   "0",
		CreatedAt:      base,
	}); !errors.Is(err, requestrepoport.ErrAlreadyExists) {
		t.Fatalf("duplicate Create: want ErrAlreadyExists, got %v", err)
	}

	got, err := repo.GetByID(ctx, "r1")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.RollNo == nil || *got.RollNo != roll || got.ImagePath == nil || *got.ImagePath != image {
		t.Fatalf("unexpected report: %+v", got)
	}
	anon, err := repo.GetByID(ctx, "r2")
	if err != nil {
		t.Fatalf("GetByID r2: %v", err)
	}
	if anon.RollNo != nil || anon.ImagePath != nil {
		t.Fatalf("expected anonymous report, got %+v", anon)
	}
	if _, err := repo.GetByID(ctx, "missing"); !errors.Is(err, requestrepoport.ErrNotFound) {
		t.Fatalf("GetByID missing: want ErrNotFound, got %v", err)
	}

	all, err := repo.List(ctx, nil)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all) != 3 || all[0].ID != "r3" || all[1].ID != "r2" || all[2].ID != "r1" {
		t.Fatalf("expected [r3 r2 r1], got %+v", all)
	}

	lost := domain.ReportLost
	filtered, err := repo.List(ctx, &lost)
	if err != nil {
		t.Fatalf("List lost: %v", err)
	}
	if len(filtered) != 2 || filtered[0].ID != "r3" || filtered[1].ID != "r1" {
		t.Fatalf("expected [r3 r1], got %+v", filtered)
	}
}

func assertComplaintOrder(t *testing.T, got []domain.Complaint, want ...domain.ComplaintID) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("expected %d complaints, got %+v", len(want), got)
	}
	for i, id := range want {
		if got[i].ID != id {
			t.Fatalf("position %d: want %s, got %s", i, id, got[i].ID)
		}
	}
}
