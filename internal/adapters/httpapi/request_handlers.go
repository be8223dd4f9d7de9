package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/snu-hive/hostel-desk-api/internal/app/requests"
	"github.com/snu-hive/hostel-desk-api/internal/domain"
)

const dateLayout = "2006-01-02"

type complaintResponse struct {
	ComplaintID string    `json:"complaint_id"`
	RollNo      string    `json:"roll_no"`
	Department  string    `json:"department"`
	HostelID    *string   `json:"hostel_id,omitempty"`
	Status      string    `json:"status"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`

	SubmitterName   *string `json:"submitter_name,omitempty"`
	SubmitterHostel *string `json:"submitter_hostel,omitempty"`
	SubmitterRoom   *string `json:"submitter_room,omitempty"`
}

func toComplaintResponse(c domain.Complaint) complaintResponse {
	resp := complaintResponse{
		ComplaintID: string(c.ID),
		RollNo:      string(c.RollNo),
		Department:  string(c.Department),
		Status:      string(c.Status),
		Description: c.Description,
		CreatedAt:   c.CreatedAt,
	}
	if c.HostelID != nil {
		v := string(*c.HostelID)
		resp.HostelID = &v
	}
	return resp
}

func toComplaintViewResponse(v requests.ComplaintView) complaintResponse {
	resp := toComplaintResponse(v.Complaint)
	resp.SubmitterName = v.SubmitterName
	resp.SubmitterRoom = v.SubmitterRoom
	if v.SubmitterHostel != nil {
		h := string(*v.SubmitterHostel)
		resp.SubmitterHostel = &h
	}
	return resp
}

type createComplaintRequest struct {
	Department  string  `json:"department"`
	Description string  `json:"description"`
	HostelID    *string `json:"hostel_id"`
}

func (s *Server) handleCreateComplaint(w http.ResponseWriter, r *http.Request) {
	actor, ok := ActorFromContext(r.Context())
	if !ok {
		writeError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "missing actor", nil)
		return
	}
	var req createComplaintRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	created, err := s.Requests.CreateComplaint(r.Context(), actor, requests.CreateComplaintInput{
		Department:  req.Department,
		Description: req.Description,
		HostelID:    req.HostelID,
	})
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toComplaintResponse(created))
}

func (s *Server) handleListComplaints(w http.ResponseWriter, r *http.Request) {
	actor, ok := ActorFromContext(r.Context())
	if !ok {
		writeError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "missing actor", nil)
		return
	}
	views, err := s.Requests.ListComplaints(r.Context(), actor)
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	out := make([]complaintResponse, 0, len(views))
	for _, v := range views {
		out = append(out, toComplaintViewResponse(v))
	}
	writeJSON(w, http.StatusOK, out)
}

type transitionRequest struct {
	Status string `json:"status"`
}

func (s *Server) handleTransitionComplaint(w http.ResponseWriter, r *http.Request) {
	actor, ok := ActorFromContext(r.Context())
	if !ok {
		writeError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "missing actor", nil)
		return
	}
	var req transitionRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	id := domain.ComplaintID(chi.URLParam(r, "complaintID"))
	updated, err := s.Requests.TransitionComplaint(r.Context(), actor, id, req.Status)
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toComplaintResponse(updated))
}

type foodRequestResponse struct {
	RequestID string    `json:"request_id"`
	RollNo    string    `json:"roll_no"`
	HostelID  string    `json:"hostel_id"`
	Meal      string    `json:"meal"`
	Date      string    `json:"date"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`

	SubmitterName *string `json:"submitter_name,omitempty"`
	SubmitterRoom *string `json:"submitter_room,omitempty"`
}

func toFoodRequestResponse(fr domain.FoodRequest) foodRequestResponse {
	return foodRequestResponse{
		RequestID: string(fr.ID),
		RollNo:    string(fr.RollNo),
		HostelID:  string(fr.HostelID),
		Meal:      string(fr.Meal),
		Date:      fr.Date.Format(dateLayout),
		Status:    string(fr.Status),
		CreatedAt: fr.CreatedAt,
	}
}

type createFoodRequestRequest struct {
	Meal string `json:"meal"`
	Date string `json:"date"`
}

func (s *Server) handleCreateFoodRequest(w http.ResponseWriter, r *http.Request) {
	actor, ok := ActorFromContext(r.Context())
	if !ok {
		writeError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "missing actor", nil)
		return
	}
	var req createFoodRequestRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	created, err := s.Requests.CreateFoodRequest(r.Context(), actor, requests.CreateFoodRequestInput{
		Meal: req.Meal,
		Date: req.Date,
	})
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toFoodRequestResponse(created))
}

func (s *Server) handleListFoodRequests(w http.ResponseWriter, r *http.Request) {
	actor, ok := ActorFromContext(r.Context())
	if !ok {
		writeError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "missing actor", nil)
		return
	}
	views, err := s.Requests.ListFoodRequests(r.Context(), actor)
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	out := make([]foodRequestResponse, 0, len(views))
	for _, v := range views {
		resp := toFoodRequestResponse(v.FoodRequest)
		resp.SubmitterName = v.SubmitterName
		resp.SubmitterRoom = v.SubmitterRoom
		out = append(out, resp)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleTransitionFoodRequest(w http.ResponseWriter, r *http.Request) {
	actor, ok := ActorFromContext(r.Context())
	if !ok {
		writeError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "missing actor", nil)
		return
	}
	var req transitionRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	id := domain.FoodRequestID(chi.URLParam(r, "requestID"))
	updated, err := s.Requests.TransitionFoodRequest(r.Context(), actor, id, req.Status)
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toFoodRequestResponse(updated))
}

type lostFoundResponse struct {
	ReportID       string    `json:"report_id"`
	RollNo         *string   `json:"roll_no,omitempty"`
	ItemName       string    `json:"item_name"`
	Location       string    `json:"location"`
	Classification string    `json:"classification"`
	ContactPhone   string    `json:"contact_phone"`
	ImagePath      *string   `json:"image_path,omitempty"`
	CreatedAt      time.Time `json:"created_at"`

	SubmitterName *string `json:"submitter_name,omitempty"`
}

func toLostFoundResponse(rep domain.LostFoundReport) lostFoundResponse {
	resp := lostFoundResponse{
		ReportID:       string(rep.ID),
		ItemName:       rep.ItemName,
		Location:       rep.Location,
		Classification: string(rep.Classification),
		ContactPhone:   rep.ContactPhone,
		ImagePath:      rep.ImagePath,
		CreatedAt:      rep.CreatedAt,
	}
	if rep.RollNo != nil {
		v := string(*rep.RollNo)
		resp.RollNo = &v
	}
	return resp
}

type reportLostFoundRequest struct {
	ItemName       string  `json:"item_name"`
	Location       string  `json:"location"`
	Classification string  `json:"classification"`
	ContactPhone   string  `json:"contact_phone"`
	ImagePath      *string `json:"image_path"`
}

func (s *Server) handleReportLostFound(w http.ResponseWriter, r *http.Request) {
	actor, ok := ActorFromContext(r.Context())
	if !ok {
		writeError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "missing actor", nil)
		return
	}
	var req reportLostFoundRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	created, err := s.Requests.ReportLostFound(r.Context(), actor, requests.ReportLostFoundInput{
		ItemName:       req.ItemName,
		Location:       req.Location,
		Classification: req.Classification,
		ContactPhone:   req.ContactPhone,
		ImagePath:      req.ImagePath,
	})
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toLostFoundResponse(created))
}

func (s *Server) handleListLostFound(w http.ResponseWriter, r *http.Request) {
	actor, ok := ActorFromContext(r.Context())
	if !ok {
		writeError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "missing actor", nil)
		return
	}
	var classification *string
	if raw := r.URL.Query().Get("classification"); raw != "" {
		classification = &raw
	}
	views, err := s.Requests.ListLostFound(r.Context(), actor, classification)
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	out := make([]lostFoundResponse, 0, len(views))
	for _, v := range views {
		resp := toLostFoundResponse(v.LostFoundReport)
		resp.SubmitterName = v.SubmitterName
		out = append(out, resp)
	}
	writeJSON(w, http.StatusOK, out)
}
