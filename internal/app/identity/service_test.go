package identity

import (
	"context"
	"errors"
	"testing"
	"time"

	memclock "github.com/snu-hive/hostel-desk-api/internal/adapters/memory/clock"
	memhostelrepo "github.com/snu-hive/hostel-desk-api/internal/adapters/memory/hostelrepo"
	memidentityrepo "github.com/snu-hive/hostel-desk-api/internal/adapters/memory/identityrepo"
	"github.com/snu-hive/hostel-desk-api/internal/domain"
	"github.com/snu-hive/hostel-desk-api/internal/platform/auth/tokens"
	"github.com/snu-hive/hostel-desk-api/internal/ports/out/identityprovider"
)

var signingKey = []byte("test-signing-key-not-for-production")

// fakeHasher keeps identity tests fast and deterministic.
type fakeHasher struct{}

func (fakeHasher) Hash(plain string) (string, error) { return "hashed:" + plain, nil }
func (fakeHasher) Verify(plain, hash string) bool    { return hash == "hashed:"+plain }

type fixture struct {
	svc     *Service
	hostels *memhostelrepo.Repo
	ids     *memidentityrepo.Repo
	clk     *memclock.ManualClock
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	hostels := memhostelrepo.NewRepo()
	ids := memidentityrepo.NewRepo(hostels)
	clk := memclock.NewManualClock(time.Unix(1_700_000_000, 0).UTC())
	issuer := tokens.NewIssuer(signingKey, time.Hour, clk)
	return &fixture{
		svc:     NewService(ids, hostels, fakeHasher{}, issuer, clk),
		hostels: hostels,
		ids:     ids,
		clk:     clk,
	}
}

func (f *fixture) mustHostel(t *testing.T, id string, capacity int, warden *domain.WardenID) {
	t.Helper()
	err := f.hostels.Create(context.Background(), domain.Hostel{
		ID: domain.HostelID(id), Name: id + " Block", Capacity: capacity, WardenID: warden,
	})
	if err != nil {
		t.Fatalf("create hostel %s: %v", id, err)
	}
}

func studentInput(roll, email string) RegisterStudentInput {
	return RegisterStudentInput{
		RollNo:        roll,
		Name:          "Asha Rao",
		Dept:          "CSE",
		Batch:         2023,
		ContactNo:     "98" + roll,
		Email:         email,
		Password:      "secret1",
		RoomNo:        "101",
		HostelID:      "H1",
		ParentContact: "97" + roll,
	}
}

func TestRegisterStudent_ThenLogin(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.mustHostel(t, "H1", 10, nil)
	ctx := context.Background()

	st, err := f.svc.RegisterStudent(ctx, studentInput("21BCS001", "asha@snu.edu.in"))
	if err != nil {
		t.Fatalf("RegisterStudent err=%v", err)
	}
	if st.SecretHash == "secret1" {
		t.Fatalf("password stored in the clear")
	}

	// Login by email.
	sess, err := f.svc.LoginStudent(ctx, LoginInput{Key: "asha@snu.edu.in", Password: "secret1"})
	if err != nil {
		t.Fatalf("LoginStudent err=%v", err)
	}
	if sess.ScopeKey != "21BCS001" || sess.Role != domain.RoleStudent {
		t.Fatalf("session=%+v", sess)
	}

	// Token claims must carry the stored natural key.
	ver := tokens.NewVerifier(signingKey, domain.RoleStudent, f.clk)
	claims, err := ver.Verify(sess.Token)
	if err != nil {
		t.Fatalf("Verify err=%v", err)
	}
	if claims.ScopeKey != "21BCS001" {
		t.Fatalf("claims=%+v", claims)
	}

	// Login by roll number works too.
	if _, err := f.svc.LoginStudent(ctx, LoginInput{Key: "21BCS001", Password: "secret1"}); err != nil {
		t.Fatalf("login by roll err=%v", err)
	}
}

func TestLoginStudent_WrongSecretAndUnknownLookAlike(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.mustHostel(t, "H1", 10, nil)
	ctx := context.Background()

	if _, err := f.svc.RegisterStudent(ctx, studentInput("21BCS001", "asha@snu.edu.in")); err != nil {
		t.Fatalf("RegisterStudent err=%v", err)
	}

	_, errWrong := f.svc.LoginStudent(ctx, LoginInput{Key: "asha@snu.edu.in", Password: "nope"})
	_, errUnknown := f.svc.LoginStudent(ctx, LoginInput{Key: "ghost@snu.edu.in", Password: "nope"})

	for name, err := range map[string]error{"wrong secret": errWrong, "unknown principal": errUnknown} {
		ae := (*Error)(nil)
		if !errors.As(err, &ae) || ae.Status != 401 || ae.Code != "AUTHENTICATION_FAILED" {
			t.Fatalf("%s: err=%v, want AUTHENTICATION_FAILED 401", name, err)
		}
	}
	// Both failure modes must be indistinguishable.
	if errWrong.Error() != errUnknown.Error() {
		t.Fatalf("login failures differ: %q vs %q", errWrong, errUnknown)
	}
}

func TestRegisterStudent_HostelMissingAndFull(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.mustHostel(t, "H1", 1, nil)
	ctx := context.Background()

	in := studentInput("21BCS001", "asha@snu.edu.in")
	in.HostelID = "H9"
	_, err := f.svc.RegisterStudent(ctx, in)
	ae := (*Error)(nil)
	if !errors.As(err, &ae) || ae.Code != "HOSTEL_NOT_FOUND" {
		t.Fatalf("missing hostel err=%v", err)
	}

	if _, err := f.svc.RegisterStudent(ctx, studentInput("21BCS001", "asha@snu.edu.in")); err != nil {
		t.Fatalf("first occupant err=%v", err)
	}
	_, err = f.svc.RegisterStudent(ctx, studentInput("21BCS002", "ravi@snu.edu.in"))
	if !errors.As(err, &ae) || ae.Status != 409 || ae.Code != "HOSTEL_FULL" {
		t.Fatalf("full hostel err=%v, want HOSTEL_FULL 409", err)
	}
}

func TestRegisterStudent_DuplicateEmailCreatesNoRecord(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.mustHostel(t, "H1", 10, nil)
	ctx := context.Background()

	if _, err := f.svc.RegisterStudent(ctx, studentInput("21BCS001", "asha@snu.edu.in")); err != nil {
		t.Fatalf("RegisterStudent err=%v", err)
	}
	_, err := f.svc.RegisterStudent(ctx, studentInput("21BCS002", "asha@snu.edu.in"))
	ae := (*Error)(nil)
	if !errors.As(err, &ae) || ae.Status != 409 || ae.Code != "DUPLICATE_IDENTITY" {
		t.Fatalf("duplicate email err=%v, want DUPLICATE_IDENTITY 409", err)
	}
	if _, err := f.ids.GetStudentByRollNo(ctx, "21BCS002"); err == nil {
		t.Fatalf("rejected registration left a record behind")
	}
}

func TestRegisterStudent_Validation(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.mustHostel(t, "H1", 10, nil)

	in := studentInput("21BCS001", "not-an-email")
	in.Password = "tiny"
	_, err := f.svc.RegisterStudent(context.Background(), in)
	ae := (*Error)(nil)
	if !errors.As(err, &ae) || ae.Status != 400 || ae.Code != "VALIDATION_ERROR" {
		t.Fatalf("err=%v, want VALIDATION_ERROR 400", err)
	}
	if ae.Details["email"] == nil || ae.Details["password"] == nil {
		t.Fatalf("details=%v", ae.Details)
	}
}

func TestRegisterWardenAndLogin(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.RegisterWarden(ctx, RegisterWardenInput{
		WardenID: "W-1", Name: "R Iyer", Email: "iyer@snu.edu.in", Password: "secret1", ContactNo: "9800000001",
	})
	if err != nil {
		t.Fatalf("RegisterWarden err=%v", err)
	}

	sess, err := f.svc.LoginWarden(ctx, LoginInput{Key: "iyer@snu.edu.in", Password: "secret1"})
	if err != nil {
		t.Fatalf("LoginWarden err=%v", err)
	}
	if sess.Role != domain.RoleWarden || sess.ScopeKey != "W-1" {
		t.Fatalf("session=%+v", sess)
	}

	// Duplicate warden id.
	_, err = f.svc.RegisterWarden(ctx, RegisterWardenInput{
		WardenID: "W-1", Name: "Other", Email: "other@snu.edu.in", Password: "secret1", ContactNo: "9800000002",
	})
	ae := (*Error)(nil)
	if !errors.As(err, &ae) || ae.Code != "DUPLICATE_IDENTITY" {
		t.Fatalf("duplicate warden err=%v", err)
	}
}

func TestRegisterSupportAdminAndLogin(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.RegisterSupportAdmin(ctx, RegisterSupportAdminInput{
		Department: "IT", Email: "it@snu.edu.in", Password: "secret1", StaffCapacity: 5,
	})
	if err != nil {
		t.Fatalf("RegisterSupportAdmin err=%v", err)
	}

	sess, err := f.svc.LoginSupportAdmin(ctx, LoginInput{Key: "it@snu.edu.in", Password: "secret1"})
	if err != nil {
		t.Fatalf("LoginSupportAdmin err=%v", err)
	}
	if sess.Role != domain.RoleSupportAdmin || sess.ScopeKey != "IT" {
		t.Fatalf("session=%+v", sess)
	}

	// Unknown department enum value.
	_, err = f.svc.RegisterSupportAdmin(ctx, RegisterSupportAdminInput{
		Department: "Laundry", Email: "l@snu.edu.in", Password: "secret1", StaffCapacity: 5,
	})
	ae := (*Error)(nil)
	if !errors.As(err, &ae) || ae.Code != "VALIDATION_ERROR" {
		t.Fatalf("invalid department err=%v", err)
	}
}

func TestCreateHostel(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()

	wid := "W-1"
	_, err := f.svc.CreateHostel(ctx, CreateHostelInput{HostelID: "H1", Name: "North Block", Capacity: 50, WardenID: &wid})
	ae := (*Error)(nil)
	if !errors.As(err, &ae) || ae.Code != "WARDEN_NOT_FOUND" {
		t.Fatalf("unknown warden err=%v", err)
	}

	if _, err := f.svc.RegisterWarden(ctx, RegisterWardenInput{
		WardenID: "W-1", Name: "R Iyer", Email: "iyer@snu.edu.in", Password: "secret1", ContactNo: "9800000001",
	}); err != nil {
		t.Fatalf("RegisterWarden err=%v", err)
	}

	h, err := f.svc.CreateHostel(ctx, CreateHostelInput{HostelID: "H1", Name: " North   Block ", Capacity: 50, WardenID: &wid})
	if err != nil {
		t.Fatalf("CreateHostel err=%v", err)
	}
	if h.Name != "North Block" || h.WardenID == nil || *h.WardenID != "W-1" {
		t.Fatalf("hostel=%+v", h)
	}

	_, err = f.svc.CreateHostel(ctx, CreateHostelInput{HostelID: "H1", Name: "North Block", Capacity: 50})
	if !errors.As(err, &ae) || ae.Status != 409 || ae.Code != "HOSTEL_ALREADY_EXISTS" {
		t.Fatalf("duplicate hostel err=%v", err)
	}

	_, err = f.svc.CreateHostel(ctx, CreateHostelInput{HostelID: "H2", Name: "South Block", Capacity: 0})
	if !errors.As(err, &ae) || ae.Code != "VALIDATION_ERROR" {
		t.Fatalf("zero capacity err=%v", err)
	}
}

func TestGetStudentProfile_ResolvesHostelName(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.mustHostel(t, "H1", 10, nil)
	ctx := context.Background()

	if _, err := f.svc.RegisterStudent(ctx, studentInput("21BCS001", "asha@snu.edu.in")); err != nil {
		t.Fatalf("RegisterStudent err=%v", err)
	}

	p, err := f.svc.GetStudentProfile(ctx, "21BCS001")
	if err != nil {
		t.Fatalf("GetStudentProfile err=%v", err)
	}
	if p.HostelName == nil || *p.HostelName != "H1 Block" {
		t.Fatalf("profile=%+v", p)
	}

	_, err = f.svc.GetStudentProfile(ctx, "21BCS999")
	ae := (*Error)(nil)
	if !errors.As(err, &ae) || ae.Status != 404 {
		t.Fatalf("missing profile err=%v", err)
	}
}

// fakeProvider is a canned external identity provider.
type fakeProvider struct {
	profiles map[string]identityprovider.Profile
}

func (f *fakeProvider) ResolveExternalProfile(_ context.Context, assertion string) (identityprovider.Profile, error) {
	p, ok := f.profiles[assertion]
	if !ok {
		return identityprovider.Profile{}, identityprovider.ErrUnresolvable
	}
	return p, nil
}

func (f *fakeProvider) Name() string { return "google" }

func TestExternalLogin_ExplicitCompletionPolicy(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.mustHostel(t, "H1", 10, nil)
	ctx := context.Background()

	provider := &fakeProvider{profiles: map[string]identityprovider.Profile{
		"good-token":    {Email: "asha@snu.edu.in", ExternalID: "g-123"},
		"foreign-token": {Email: "asha@gmail.com", ExternalID: "g-456"},
		"ghost-token":   {Email: "ghost@snu.edu.in", ExternalID: "g-789"},
	}}
	f.svc.WithExternalProvider(provider, "snu.edu.in")

	// Unknown email: no auto-provisioning, explicit completion required.
	_, err := f.svc.ExternalLogin(ctx, "ghost-token")
	ae := (*Error)(nil)
	if !errors.As(err, &ae) || ae.Status != 409 || ae.Code != "REGISTRATION_REQUIRED" {
		t.Fatalf("unknown email err=%v, want REGISTRATION_REQUIRED 409", err)
	}
	if _, err := f.ids.GetStudentByEmail(ctx, "ghost@snu.edu.in"); err == nil {
		t.Fatalf("external login auto-created an identity")
	}

	// Foreign email domain is an authentication failure.
	_, err = f.svc.ExternalLogin(ctx, "foreign-token")
	if !errors.As(err, &ae) || ae.Status != 401 {
		t.Fatalf("foreign domain err=%v, want 401", err)
	}

	// Unresolvable assertion is an authentication failure.
	_, err = f.svc.ExternalLogin(ctx, "bogus")
	if !errors.As(err, &ae) || ae.Status != 401 {
		t.Fatalf("unresolvable err=%v, want 401", err)
	}

	// Known student: session issued and link attached exactly once.
	if _, err := f.svc.RegisterStudent(ctx, studentInput("21BCS001", "asha@snu.edu.in")); err != nil {
		t.Fatalf("RegisterStudent err=%v", err)
	}
	sess, err := f.svc.ExternalLogin(ctx, "good-token")
	if err != nil {
		t.Fatalf("ExternalLogin err=%v", err)
	}
	if sess.ScopeKey != "21BCS001" {
		t.Fatalf("session=%+v", sess)
	}
	st, err := f.ids.GetStudentByRollNo(ctx, "21BCS001")
	if err != nil {
		t.Fatalf("GetStudentByRollNo err=%v", err)
	}
	if st.External == nil || st.External.Provider != "google" || st.External.Subject != "g-123" {
		t.Fatalf("external link=%+v", st.External)
	}

	// Relogin with the same subject is idempotent.
	if _, err := f.svc.ExternalLogin(ctx, "good-token"); err != nil {
		t.Fatalf("second ExternalLogin err=%v", err)
	}
}
