package identity

import (
	"context"
	"errors"
	"net/mail"
	"strings"

	"github.com/snu-hive/hostel-desk-api/internal/domain"
	"github.com/snu-hive/hostel-desk-api/internal/platform/auth/tokens"
	clockport "github.com/snu-hive/hostel-desk-api/internal/ports/out/clock"
	hostelrepoport "github.com/snu-hive/hostel-desk-api/internal/ports/out/hostelrepo"
	"github.com/snu-hive/hostel-desk-api/internal/ports/out/identityprovider"
	"github.com/snu-hive/hostel-desk-api/internal/ports/out/identityrepo"
)

const minPasswordLength = 6

// Service handles registration, login, and the student profile read.
//
// Uniqueness and hostel capacity are re-checked by the repository atomically
// with the insert; the pre-checks here only shape the error responses.
type Service struct {
	identities identityrepo.Repository
	hostels    hostelrepoport.Repository
	hasher     PasswordHasher
	issuer     *tokens.Issuer
	clk        clockport.Clock

	// provider is the optional external identity provider; nil disables
	// external login.
	provider identityprovider.Provider

	// allowedEmailDomain restricts external logins when non-empty.
	allowedEmailDomain string
}

func NewService(identities identityrepo.Repository, hostels hostelrepoport.Repository, hasher PasswordHasher, issuer *tokens.Issuer, clk clockport.Clock) *Service {
	return &Service{
		identities: identities,
		hostels:    hostels,
		hasher:     hasher,
		issuer:     issuer,
		clk:        clk,
	}
}

// WithExternalProvider enables external-provider login. allowedEmailDomain
// (without the "@") restricts which profiles are accepted; empty allows any.
func (s *Service) WithExternalProvider(p identityprovider.Provider, allowedEmailDomain string) *Service {
	s.provider = p
	s.allowedEmailDomain = strings.TrimPrefix(allowedEmailDomain, "@")
	return s
}

func (s *Service) RegisterStudent(ctx context.Context, in RegisterStudentInput) (domain.Student, error) {
	details := map[string]any{}
	requireField(details, "rollNo", in.RollNo)
	requireField(details, "name", in.Name)
	requireField(details, "dept", in.Dept)
	requireField(details, "contactNo", in.ContactNo)
	requireField(details, "roomNo", in.RoomNo)
	requireField(details, "hostelId", in.HostelID)
	requireField(details, "parentContact", in.ParentContact)
	if in.Batch <= 0 {
		details["batch"] = "must be a positive year"
	}
	if err := validateEmail(in.Email); err != nil {
		details["email"] = err.Error()
	}
	if len(in.Password) < minPasswordLength {
		details["password"] = "must be at least 6 characters long"
	}
	if len(details) > 0 {
		return domain.Student{}, validationError(details)
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return domain.Student{}, err
	}

	st := domain.Student{
		RollNo:        domain.RollNo(strings.TrimSpace(in.RollNo)),
		Name:          domain.NormalizeHumanName(in.Name),
		Dept:          strings.TrimSpace(in.Dept),
		Batch:         in.Batch,
		ContactNo:     strings.TrimSpace(in.ContactNo),
		Email:         strings.TrimSpace(in.Email),
		SecretHash:    hash,
		RoomNo:        strings.TrimSpace(in.RoomNo),
		HostelID:      domain.HostelID(strings.TrimSpace(in.HostelID)),
		ParentContact: strings.TrimSpace(in.ParentContact),
		CreatedAt:     s.clk.Now(),
	}

	if err := s.identities.CreateStudent(ctx, st); err != nil {
		switch {
		case errors.Is(err, identityrepo.ErrHostelNotFound):
			return domain.Student{}, &Error{Status: 400, Code: "HOSTEL_NOT_FOUND", Message: "this hostel does not exist"}
		case errors.Is(err, identityrepo.ErrHostelFull):
			return domain.Student{}, &Error{Status: 409, Code: "HOSTEL_FULL", Message: "this hostel is full"}
		case errors.Is(err, identityrepo.ErrDuplicateKey):
			return domain.Student{}, &Error{Status: 409, Code: "DUPLICATE_IDENTITY", Message: "roll number, email, or contact number already registered"}
		}
		return domain.Student{}, err
	}
	return st, nil
}

func (s *Service) RegisterWarden(ctx context.Context, in RegisterWardenInput) (domain.Warden, error) {
	details := map[string]any{}
	requireField(details, "wardenId", in.WardenID)
	requireField(details, "name", in.Name)
	requireField(details, "contactNo", in.ContactNo)
	if err := validateEmail(in.Email); err != nil {
		details["email"] = err.Error()
	}
	if len(in.Password) < minPasswordLength {
		details["password"] = "must be at least 6 characters long"
	}
	if len(details) > 0 {
		return domain.Warden{}, validationError(details)
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return domain.Warden{}, err
	}

	w := domain.Warden{
		ID:         domain.WardenID(strings.TrimSpace(in.WardenID)),
		Name:       domain.NormalizeHumanName(in.Name),
		Email:      strings.TrimSpace(in.Email),
		SecretHash: hash,
		ContactNo:  strings.TrimSpace(in.ContactNo),
		CreatedAt:  s.clk.Now(),
	}

	if err := s.identities.CreateWarden(ctx, w); err != nil {
		if errors.Is(err, identityrepo.ErrDuplicateKey) {
			return domain.Warden{}, &Error{Status: 409, Code: "DUPLICATE_IDENTITY", Message: "warden id, email, or contact number already registered"}
		}
		return domain.Warden{}, err
	}
	return w, nil
}

func (s *Service) RegisterSupportAdmin(ctx context.Context, in RegisterSupportAdminInput) (domain.SupportAdmin, error) {
	details := map[string]any{}
	dept := domain.Department(strings.TrimSpace(in.Department))
	if !dept.IsValid() {
		details["department"] = "must be one of: Maintenance, Pest-control, Housekeeping, IT"
	}
	if err := validateEmail(in.Email); err != nil {
		details["email"] = err.Error()
	}
	if len(in.Password) < minPasswordLength {
		details["password"] = "must be at least 6 characters long"
	}
	if in.StaffCapacity <= 0 {
		details["staffCapacity"] = "must be a positive number"
	}
	if len(details) > 0 {
		return domain.SupportAdmin{}, validationError(details)
	}

	var wardenID *domain.WardenID
	if in.WardenID != nil && strings.TrimSpace(*in.WardenID) != "" {
		wid := domain.WardenID(strings.TrimSpace(*in.WardenID))
		if _, err := s.identities.GetWardenByID(ctx, wid); err != nil {
			if errors.Is(err, identityrepo.ErrNotFound) {
				return domain.SupportAdmin{}, &Error{Status: 400, Code: "WARDEN_NOT_FOUND", Message: "the specified warden does not exist"}
			}
			return domain.SupportAdmin{}, err
		}
		wardenID = &wid
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return domain.SupportAdmin{}, err
	}

	a := domain.SupportAdmin{
		Department:    dept,
		Email:         strings.TrimSpace(in.Email),
		SecretHash:    hash,
		StaffCapacity: in.StaffCapacity,
		WardenID:      wardenID,
		CreatedAt:     s.clk.Now(),
	}

	if err := s.identities.CreateSupportAdmin(ctx, a); err != nil {
		if errors.Is(err, identityrepo.ErrDuplicateKey) {
			return domain.SupportAdmin{}, &Error{Status: 409, Code: "DUPLICATE_IDENTITY", Message: "department or email already registered"}
		}
		return domain.SupportAdmin{}, err
	}
	return a, nil
}

func (s *Service) CreateHostel(ctx context.Context, in CreateHostelInput) (domain.Hostel, error) {
	details := map[string]any{}
	requireField(details, "hostelId", in.HostelID)
	if domain.NormalizeHumanName(in.Name) == "" {
		details["name"] = "is required"
	}
	if in.Capacity < 1 {
		details["capacity"] = "must be a positive number"
	}
	if len(details) > 0 {
		return domain.Hostel{}, validationError(details)
	}

	var wardenID *domain.WardenID
	if in.WardenID != nil && strings.TrimSpace(*in.WardenID) != "" {
		wid := domain.WardenID(strings.TrimSpace(*in.WardenID))
		if _, err := s.identities.GetWardenByID(ctx, wid); err != nil {
			if errors.Is(err, identityrepo.ErrNotFound) {
				return domain.Hostel{}, &Error{Status: 400, Code: "WARDEN_NOT_FOUND", Message: "the specified warden does not exist"}
			}
			return domain.Hostel{}, err
		}
		wardenID = &wid
	}

	h := domain.Hostel{
		ID:       domain.HostelID(strings.TrimSpace(in.HostelID)),
		Name:     domain.NormalizeHumanName(in.Name),
		Capacity: in.Capacity,
		WardenID: wardenID,
	}

	if err := s.hostels.Create(ctx, h); err != nil {
		if errors.Is(err, hostelrepoport.ErrAlreadyExists) {
			return domain.Hostel{}, &Error{Status: 409, Code: "HOSTEL_ALREADY_EXISTS", Message: "hostel already exists"}
		}
		return domain.Hostel{}, err
	}
	return h, nil
}

// LoginStudent authenticates by email or roll number. Unknown principal and
// wrong secret produce the same response.
func (s *Service) LoginStudent(ctx context.Context, in LoginInput) (Session, error) {
	if strings.TrimSpace(in.Key) == "" || in.Password == "" {
		return Session{}, validationError(map[string]any{"key": "email or roll number and password are required"})
	}

	st, err := s.identities.GetStudentByEmail(ctx, strings.TrimSpace(in.Key))
	if errors.Is(err, identityrepo.ErrNotFound) {
		st, err = s.identities.GetStudentByRollNo(ctx, domain.RollNo(strings.TrimSpace(in.Key)))
	}
	if err != nil {
		if errors.Is(err, identityrepo.ErrNotFound) {
			return Session{}, authenticationError()
		}
		return Session{}, err
	}
	if !s.hasher.Verify(in.Password, st.SecretHash) {
		return Session{}, authenticationError()
	}
	return s.issueSession(domain.RoleStudent, string(st.RollNo), st.Name)
}

func (s *Service) LoginWarden(ctx context.Context, in LoginInput) (Session, error) {
	if strings.TrimSpace(in.Key) == "" || in.Password == "" {
		return Session{}, validationError(map[string]any{"key": "email or warden id and password are required"})
	}

	w, err := s.identities.GetWardenByEmail(ctx, strings.TrimSpace(in.Key))
	if errors.Is(err, identityrepo.ErrNotFound) {
		w, err = s.identities.GetWardenByID(ctx, domain.WardenID(strings.TrimSpace(in.Key)))
	}
	if err != nil {
		if errors.Is(err, identityrepo.ErrNotFound) {
			return Session{}, authenticationError()
		}
		return Session{}, err
	}
	if !s.hasher.Verify(in.Password, w.SecretHash) {
		return Session{}, authenticationError()
	}
	return s.issueSession(domain.RoleWarden, string(w.ID), w.Name)
}

func (s *Service) LoginSupportAdmin(ctx context.Context, in LoginInput) (Session, error) {
	if strings.TrimSpace(in.Key) == "" || in.Password == "" {
		return Session{}, validationError(map[string]any{"key": "email or department and password are required"})
	}

	a, err := s.identities.GetAdminByEmail(ctx, strings.TrimSpace(in.Key))
	if errors.Is(err, identityrepo.ErrNotFound) {
		a, err = s.identities.GetAdminByDepartment(ctx, domain.Department(strings.TrimSpace(in.Key)))
	}
	if err != nil {
		if errors.Is(err, identityrepo.ErrNotFound) {
			return Session{}, authenticationError()
		}
		return Session{}, err
	}
	if !s.hasher.Verify(in.Password, a.SecretHash) {
		return Session{}, authenticationError()
	}
	return s.issueSession(domain.RoleSupportAdmin, string(a.Department), string(a.Department))
}

// ExternalLogin resolves a provider assertion into a session for an existing
// student. First-time logins for unknown emails fail with a registration-
// required conflict: an Identity is never auto-created here. A known student
// gets the provider link attached on first external login.
func (s *Service) ExternalLogin(ctx context.Context, assertion string) (Session, error) {
	if s.provider == nil {
		return Session{}, &Error{Status: 404, Code: "EXTERNAL_LOGIN_DISABLED", Message: "external login is not configured"}
	}
	if strings.TrimSpace(assertion) == "" {
		return Session{}, authenticationError()
	}

	profile, err := s.provider.ResolveExternalProfile(ctx, assertion)
	if err != nil {
		if errors.Is(err, identityprovider.ErrUnresolvable) {
			return Session{}, authenticationError()
		}
		return Session{}, err
	}

	email := strings.ToLower(strings.TrimSpace(profile.Email))
	if email == "" || profile.ExternalID == "" {
		return Session{}, authenticationError()
	}
	if s.allowedEmailDomain != "" && !strings.HasSuffix(email, "@"+s.allowedEmailDomain) {
		return Session{}, authenticationError()
	}

	st, err := s.identities.GetStudentByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, identityrepo.ErrNotFound) {
			return Session{}, &Error{
				Status:  409,
				Code:    "REGISTRATION_REQUIRED",
				Message: "no identity exists for this account; complete registration first",
			}
		}
		return Session{}, err
	}

	link := domain.ExternalLink{Provider: s.provider.Name(), Subject: profile.ExternalID}
	if err := s.identities.LinkStudentExternal(ctx, st.RollNo, link); err != nil {
		if errors.Is(err, identityrepo.ErrAlreadyLinked) {
			return Session{}, &Error{Status: 409, Code: "PROVIDER_CONFLICT", Message: "identity is linked to a different external account"}
		}
		return Session{}, err
	}
	return s.issueSession(domain.RoleStudent, string(st.RollNo), st.Name)
}

// GetStudentProfile returns the authenticated student's own record with the
// hostel display name resolved.
func (s *Service) GetStudentProfile(ctx context.Context, rollNo domain.RollNo) (StudentProfile, error) {
	st, err := s.identities.GetStudentByRollNo(ctx, rollNo)
	if err != nil {
		if errors.Is(err, identityrepo.ErrNotFound) {
			return StudentProfile{}, &Error{Status: 404, Code: "STUDENT_NOT_FOUND", Message: "student not found"}
		}
		return StudentProfile{}, err
	}

	p := StudentProfile{
		RollNo:        st.RollNo,
		Name:          st.Name,
		Dept:          st.Dept,
		Batch:         st.Batch,
		ContactNo:     st.ContactNo,
		Email:         st.Email,
		RoomNo:        st.RoomNo,
		HostelID:      st.HostelID,
		ParentContact: st.ParentContact,
	}
	if h, err := s.hostels.GetByID(ctx, st.HostelID); err == nil {
		name := h.Name
		p.HostelName = &name
	}
	return p, nil
}

func (s *Service) issueSession(role domain.Role, scopeKey, displayName string) (Session, error) {
	tok, err := s.issuer.Issue(role, scopeKey)
	if err != nil {
		return Session{}, err
	}
	return Session{Token: tok, Role: role, ScopeKey: scopeKey, DisplayName: displayName}, nil
}

func requireField(details map[string]any, name, value string) {
	if strings.TrimSpace(value) == "" {
		details[name] = "is required"
	}
}

func validateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return errors.New("must be non-empty")
	}
	addr, err := mail.ParseAddress(email)
	if err != nil {
		return errors.New("invalid email format")
	}
	// Ensure no "Name <email@x>" format sneaks in.
	if addr.Address != email {
		return errors.New("must be a bare email address")
	}
	return nil
}

func validationError(details map[string]any) *Error {
	return &Error{Status: 400, Code: "VALIDATION_ERROR", Message: "invalid input", Details: details}
}

func authenticationError() *Error {
	return &Error{Status: 401, Code: "AUTHENTICATION_FAILED", Message: "try logging in with correct credentials"}
}
