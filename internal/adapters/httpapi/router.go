package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/snu-hive/hostel-desk-api/internal/app/identity"
	"github.com/snu-hive/hostel-desk-api/internal/app/requests"
	"github.com/snu-hive/hostel-desk-api/internal/domain"
)

// Server is the HTTP adapter. It decodes requests, delegates to the
// application services, and maps their errors onto the response envelope.
// All authorization decisions live below this layer.
type Server struct {
	Identity *identity.Service
	Requests *requests.Service
}

func NewServer(identitySvc *identity.Service, requestsSvc *requests.Service) *Server {
	return &Server{Identity: identitySvc, Requests: requestsSvc}
}

// NewRouter constructs the API HTTP router.
func NewRouter(s *Server, auth *Authenticator) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	// Health endpoint is unauthenticated, for infra checks.
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	// Registration and login are the unauthenticated surface.
	r.Post("/identities/student", s.handleRegisterStudent)
	r.Post("/identities/warden", s.handleRegisterWarden)
	r.Post("/identities/admin", s.handleRegisterAdmin)
	r.Post("/hostels", s.handleCreateHostel)

	r.Post("/sessions/student", s.handleLogin(s.Identity.LoginStudent))
	r.Post("/sessions/warden", s.handleLogin(s.Identity.LoginWarden))
	r.Post("/sessions/admin", s.handleLogin(s.Identity.LoginSupportAdmin))
	r.Post("/sessions/student/external", s.handleExternalLogin)

	r.Group(func(r chi.Router) {
		r.Use(auth.Require(domain.RoleStudent))
		r.Get("/identities/student/me", s.handleStudentProfile)
		r.Post("/requests/complaints", s.handleCreateComplaint)
		r.Post("/requests/food", s.handleCreateFoodRequest)
		r.Post("/requests/lostfound", s.handleReportLostFound)
	})

	r.Group(func(r chi.Router) {
		r.Use(auth.RequireAny())
		r.Get("/requests/complaints", s.handleListComplaints)
		r.Get("/requests/food", s.handleListFoodRequests)
		r.Get("/requests/lostfound", s.handleListLostFound)
	})

	r.Group(func(r chi.Router) {
		r.Use(auth.Require(domain.RoleSupportAdmin))
		r.Patch("/requests/complaints/{complaintID}/status", s.handleTransitionComplaint)
	})

	r.Group(func(r chi.Router) {
		r.Use(auth.Require(domain.RoleWarden))
		r.Patch("/requests/food/{requestID}/status", s.handleTransitionFoodRequest)
	})

	return r
}
