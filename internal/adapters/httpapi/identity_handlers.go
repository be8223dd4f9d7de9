package httpapi

import (
	"context"
	"net/http"

	"github.com/snu-hive/hostel-desk-api/internal/app/identity"
	"github.com/snu-hive/hostel-desk-api/internal/domain"
)

type registerStudentRequest struct {
	RollNo        string `json:"roll_no"`
	Name          string `json:"name"`
	Dept          string `json:"dept"`
	Batch         int    `json:"batch"`
	ContactNo     string `json:"contact_no"`
	Email         string `json:"email"`
	Password      string `json:"password"`
	RoomNo        string `json:"room_no"`
	HostelID      string `json:"hostel_id"`
	ParentContact string `json:"parent_contact"`
}

type studentResponse struct {
	RollNo        string `json:"roll_no"`
	Name          string `json:"name"`
	Dept          string `json:"dept"`
	Batch         int    `json:"batch"`
	ContactNo     string `json:"contact_no"`
	Email         string `json:"email"`
	RoomNo        string `json:"room_no"`
	HostelID      string `json:"hostel_id"`
	ParentContact string `json:"parent_contact"`
}

func toStudentResponse(s domain.Student) studentResponse {
	return studentResponse{
		RollNo:        string(s.RollNo),
		Name:          s.Name,
		Dept:          s.Dept,
		Batch:         s.Batch,
		ContactNo:     s.ContactNo,
		Email:         s.Email,
		RoomNo:        s.RoomNo,
		HostelID:      string(s.HostelID),
		ParentContact: s.ParentContact,
	}
}

func (s *Server) handleRegisterStudent(w http.ResponseWriter, r *http.Request) {
	var req registerStudentRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	created, err := s.Identity.RegisterStudent(r.Context(), identity.RegisterStudentInput{
		RollNo:        req.RollNo,
		Name:          req.Name,
		Dept:          req.Dept,
		Batch:         req.Batch,
		ContactNo:     req.ContactNo,
		Email:         req.Email,
		Password:      req.Password,
		RoomNo:        req.RoomNo,
		HostelID:      req.HostelID,
		ParentContact: req.ParentContact,
	})
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toStudentResponse(created))
}

type registerWardenRequest struct {
	WardenID  string `json:"warden_id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	ContactNo string `json:"contact_no"`
}

type wardenResponse struct {
	WardenID  string `json:"warden_id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	ContactNo string `json:"contact_no"`
}

func (s *Server) handleRegisterWarden(w http.ResponseWriter, r *http.Request) {
	var req registerWardenRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	created, err := s.Identity.RegisterWarden(r.Context(), identity.RegisterWardenInput{
		WardenID:  req.WardenID,
		Name:      req.Name,
		Email:     req.Email,
		Password:  req.Password,
		ContactNo: req.ContactNo,
	})
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, wardenResponse{
		WardenID:  string(created.ID),
		Name:      created.Name,
		Email:     created.Email,
		ContactNo: created.ContactNo,
	})
}

type registerAdminRequest struct {
	Department    string  `json:"department"`
	Email         string  `json:"email"`
	Password      string  `json:"password"`
	StaffCapacity int     `json:"staff_capacity"`
	WardenID      *string `json:"warden_id"`
}

type adminResponse struct {
	Department    string  `json:"department"`
	Email         string  `json:"email"`
	StaffCapacity int     `json:"staff_capacity"`
	WardenID      *string `json:"warden_id,omitempty"`
}

func (s *Server) handleRegisterAdmin(w http.ResponseWriter, r *http.Request) {
	var req registerAdminRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	created, err := s.Identity.RegisterSupportAdmin(r.Context(), identity.RegisterSupportAdminInput{
		Department:    req.Department,
		Email:         req.Email,
		Password:      req.Password,
		StaffCapacity: req.StaffCapacity,
		WardenID:      req.WardenID,
	})
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	resp := adminResponse{
		Department:    string(created.Department),
		Email:         created.Email,
		StaffCapacity: created.StaffCapacity,
	}
	if created.WardenID != nil {
		v := string(*created.WardenID)
		resp.WardenID = &v
	}
	writeJSON(w, http.StatusCreated, resp)
}

type createHostelRequest struct {
	HostelID string  `json:"hostel_id"`
	Name     string  `json:"name"`
	Capacity int     `json:"capacity"`
	WardenID *string `json:"warden_id"`
}

type hostelResponse struct {
	HostelID string  `json:"hostel_id"`
	Name     string  `json:"name"`
	Capacity int     `json:"capacity"`
	WardenID *string `json:"warden_id,omitempty"`
}

func (s *Server) handleCreateHostel(w http.ResponseWriter, r *http.Request) {
	var req createHostelRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	created, err := s.Identity.CreateHostel(r.Context(), identity.CreateHostelInput{
		HostelID: req.HostelID,
		Name:     req.Name,
		Capacity: req.Capacity,
		WardenID: req.WardenID,
	})
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	resp := hostelResponse{
		HostelID: string(created.ID),
		Name:     created.Name,
		Capacity: created.Capacity,
	}
	if created.WardenID != nil {
		v := string(*created.WardenID)
		resp.WardenID = &v
	}
	writeJSON(w, http.StatusCreated, resp)
}

type loginRequest struct {
	Key      string `json:"key"`
	Password string `json:"password"`
}

type sessionResponse struct {
	Token    string `json:"token"`
	Role     string `json:"role"`
	ScopeKey string `json:"scope_key"`
	Name     string `json:"name,omitempty"`
}

func toSessionResponse(s identity.Session) sessionResponse {
	return sessionResponse{
		Token:    s.Token,
		Role:     string(s.Role),
		ScopeKey: s.ScopeKey,
		Name:     s.DisplayName,
	}
}

func (s *Server) handleLogin(login func(ctx context.Context, in identity.LoginInput) (identity.Session, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		sess, err := login(r.Context(), identity.LoginInput{Key: req.Key, Password: req.Password})
		if err != nil {
			writeAppError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, toSessionResponse(sess))
	}
}

type externalLoginRequest struct {
	Assertion string `json:"assertion"`
}

func (s *Server) handleExternalLogin(w http.ResponseWriter, r *http.Request) {
	var req externalLoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	sess, err := s.Identity.ExternalLogin(r.Context(), req.Assertion)
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toSessionResponse(sess))
}

type profileResponse struct {
	studentResponse

	HostelName *string `json:"hostel_name,omitempty"`
}

func (s *Server) handleStudentProfile(w http.ResponseWriter, r *http.Request) {
	actor, ok := ActorFromContext(r.Context())
	if !ok {
		writeError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "missing actor", nil)
		return
	}
	profile, err := s.Identity.GetStudentProfile(r.Context(), domain.RollNo(actor.ScopeKey))
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, profileResponse{
		studentResponse: studentResponse{
			RollNo:        string(profile.RollNo),
			Name:          profile.Name,
			Dept:          profile.Dept,
			Batch:         profile.Batch,
			ContactNo:     profile.ContactNo,
			Email:         profile.Email,
			RoomNo:        profile.RoomNo,
			HostelID:      string(profile.HostelID),
			ParentContact: profile.ParentContact,
		},
		HostelName: profile.HostelName,
	})
}
