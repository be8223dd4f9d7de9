package httpapi

import (
	"net/http"
	"testing"
	"time"
)

func TestRegisterLoginAndProfile(t *testing.T) {
	t.Parallel()
	api := newTestAPI(t)

	api.seedHostel(t, "H1", 5, nil)
	api.seedStudent(t, "S-1", "asha@snu.edu.in", "9100000001", "H1")

	token := api.login(t, "student", "asha@snu.edu.in")

	rec := api.do(t, http.MethodGet, "/identities/student/me", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("profile: status=%d body=%s", rec.Code, rec.Body.String())
	}
	var profile struct {
		RollNo     string  `json:"roll_no"`
		HostelID   string  `json:"hostel_id"`
		HostelName *string `json:"hostel_name"`
	}
	decodeBody(t, rec, &profile)
	if profile.RollNo != "S-1" || profile.HostelID != "H1" {
		t.Fatalf("unexpected profile: %+v", profile)
	}
	if profile.HostelName == nil || *profile.HostelName != "Hostel H1" {
		t.Fatalf("expected resolved hostel name, got %+v", profile.HostelName)
	}
}

func TestRegisterStudent_Validation(t *testing.T) {
	t.Parallel()
	api := newTestAPI(t)

	rec := api.do(t, http.MethodPost, "/identities/student", "", map[string]any{
		"roll_no": "S-1",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status=%d body=%s", rec.Code, rec.Body.String())
	}
	var env struct {
		Code      string         `json:"code"`
		Errors    map[string]any `json:"errors"`
		RequestID string         `json:"requestId"`
	}
	decodeBody(t, rec, &env)
	if env.Code != "VALIDATION_ERROR" {
		t.Fatalf("unexpected code %q", env.Code)
	}
	if len(env.Errors) == 0 {
		t.Fatalf("expected field errors, got %+v", env.Errors)
	}
	if env.RequestID == "" {
		t.Fatalf("expected requestId in envelope, body=%s", rec.Body.String())
	}
}

func TestRegisterStudent_DuplicateAndFullHostel(t *testing.T) {
	t.Parallel()
	api := newTestAPI(t)

	api.seedHostel(t, "H1", 1, nil)
	api.seedStudent(t, "S-1", "asha@snu.edu.in", "9100000001", "H1")

	rec := api.do(t, http.MethodPost, "/identities/student", "", map[string]any{
		"roll_no":        "S-2",
		"name":           "Asha Rao",
		"dept":           "CSE",
		"batch":          2023,
		"contact_no":     "9100000002",
		"email":          "ASHA@snu.edu.in",
		"password":       "secret-1",
		"room_no":        "102",
		"hostel_id":      "H1",
		"parent_contact": "9000000000",
	})
	if rec.Code != http.StatusConflict {
		t.Fatalf("duplicate email: status=%d body=%s", rec.Code, rec.Body.String())
	}

	api.seedHostel(t, "H2", 5, nil)
	rec = api.do(t, http.MethodPost, "/identities/student", "", map[string]any{
		"roll_no":        "S-2",
		"name":           "Asha Rao",
		"dept":           "CSE",
		"batch":          2023,
		"contact_no":     "9100000002",
		"email":          "s2@snu.edu.in",
		"password":       "secret-1",
		"room_no":        "102",
		"hostel_id":      "H1",
		"parent_contact": "9000000000",
	})
	if rec.Code != http.StatusConflict {
		t.Fatalf("full hostel: status=%d body=%s", rec.Code, rec.Body.String())
	}
	var env struct {
		Code string `json:"code"`
	}
	decodeBody(t, rec, &env)
	if env.Code != "HOSTEL_FULL" {
		t.Fatalf("unexpected code %q", env.Code)
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	t.Parallel()
	api := newTestAPI(t)

	api.seedHostel(t, "H1", 5, nil)
	api.seedStudent(t, "S-1", "asha@snu.edu.in", "9100000001", "H1")

	for _, key := range []string{"asha@snu.edu.in", "nobody@snu.edu.in"} {
		rec := api.do(t, http.MethodPost, "/sessions/student", "", map[string]any{
			"key":      key,
			"password": "wrong-secret",
		})
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("key %q: status=%d body=%s", key, rec.Code, rec.Body.String())
		}
		var env struct {
			Code string `json:"code"`
		}
		decodeBody(t, rec, &env)
		if env.Code != "AUTHENTICATION_FAILED" {
			t.Fatalf("key %q: unexpected code %q", key, env.Code)
		}
	}
}

func TestAuth_TokenLifecycle(t *testing.T) {
	t.Parallel()
	api := newTestAPI(t)

	api.seedHostel(t, "H1", 5, nil)
	api.seedStudent(t, "S-1", "asha@snu.edu.in", "9100000001", "H1")
	token := api.login(t, "student", "asha@snu.edu.in")

	// No token, garbage token, then an expired one.
	if rec := api.do(t, http.MethodGet, "/identities/student/me", "", nil); rec.Code != http.StatusUnauthorized {
		t.Fatalf("missing token: status=%d", rec.Code)
	}
	if rec := api.do(t, http.MethodGet, "/identities/student/me", "not-a-token", nil); rec.Code != http.StatusUnauthorized {
		t.Fatalf("garbage token: status=%d", rec.Code)
	}

	api.clk.Advance(2 * time.Hour)
	if rec := api.do(t, http.MethodGet, "/identities/student/me", token, nil); rec.Code != http.StatusUnauthorized {
		t.Fatalf("expired token: status=%d", rec.Code)
	}
}

func TestAuth_RoleMismatch(t *testing.T) {
	t.Parallel()
	api := newTestAPI(t)

	api.seedWarden(t, "W-1", "iyer@snu.edu.in", "9300000001")
	wardenToken := api.login(t, "warden", "iyer@snu.edu.in")

	// A warden token is not accepted on a student-only route.
	rec := api.do(t, http.MethodGet, "/identities/student/me", wardenToken, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("warden on student route: status=%d body=%s", rec.Code, rec.Body.String())
	}
}

func TestCreateHostel_Conflict(t *testing.T) {
	t.Parallel()
	api := newTestAPI(t)

	api.seedHostel(t, "H1", 5, nil)
	rec := api.do(t, http.MethodPost, "/hostels", "", map[string]any{
		"hostel_id": "H1",
		"name":      "Duplicate",
		"capacity":  3,
	})
	if rec.Code != http.StatusConflict {
		t.Fatalf("status=%d body=%s", rec.Code, rec.Body.String())
	}
}

func TestHealthz(t *testing.T) {
	t.Parallel()
	api := newTestAPI(t)

	rec := api.do(t, http.MethodGet, "/healthz", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status=%d", rec.Code)
	}
}
