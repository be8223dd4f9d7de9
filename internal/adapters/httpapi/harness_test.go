package httpapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	memclock "github.com/snu-hive/hostel-desk-api/internal/adapters/memory/clock"
	memhostelrepo "github.com/snu-hive/hostel-desk-api/internal/adapters/memory/hostelrepo"
	memidentityrepo "github.com/snu-hive/hostel-desk-api/internal/adapters/memory/identityrepo"
	memrequestrepo "github.com/snu-hive/hostel-desk-api/internal/adapters/memory/requestrepo"
	"github.com/snu-hive/hostel-desk-api/internal/app/authz"
	"github.com/snu-hive/hostel-desk-api/internal/app/identity"
	"github.com/snu-hive/hostel-desk-api/internal/app/requests"
	"github.com/snu-hive/hostel-desk-api/internal/platform/auth/passhash"
	"github.com/snu-hive/hostel-desk-api/internal/platform/auth/tokens"
)

var testSigningKey = []byte("test-signing-key")

type testAPI struct {
	handler http.Handler
	clk     *memclock.ManualClock
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()

	clk := memclock.NewManualClock(time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC))
	hostels := memhostelrepo.NewRepo()
	identities := memidentityrepo.NewRepo(hostels)
	complaints := memrequestrepo.NewComplaintRepo()
	food := memrequestrepo.NewFoodRequestRepo()
	lostfound := memrequestrepo.NewLostFoundRepo()

	hasher := passhash.Bcrypt{Cost: bcrypt.MinCost}
	issuer := tokens.NewIssuer(testSigningKey, tokens.DefaultValidity, clk)
	identitySvc := identity.NewService(identities, hostels, hasher, issuer, clk)
	requestsSvc := requests.NewService(complaints, food, lostfound, identities, authz.NewGate(hostels), clk)

	auth := NewAuthenticator(testSigningKey, clk)
	return &testAPI{
		handler: NewRouter(NewServer(identitySvc, requestsSvc), auth),
		clk:     clk,
	}
}

func (a *testAPI) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, dst any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), dst); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
}

// seedHostel, seedStudent, and the login helpers drive the public API the way
// a client would, so the fixtures exercise the same paths as the tests.

func (a *testAPI) seedHostel(t *testing.T, hostelID string, capacity int, wardenID *string) {
	t.Helper()
	rec := a.do(t, http.MethodPost, "/hostels", "", map[string]any{
		"hostel_id": hostelID,
		"name":      "Hostel " + hostelID,
		"capacity":  capacity,
		"warden_id": wardenID,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("seed hostel: status=%d body=%s", rec.Code, rec.Body.String())
	}
}

func (a *testAPI) seedStudent(t *testing.T, rollNo, email, contact, hostelID string) {
	t.Helper()
	rec := a.do(t, http.MethodPost, "/identities/student", "", map[string]any{
		"roll_no":        rollNo,
		"name":           "Asha Rao",
		"dept":           "CSE",
		"batch":          2023,
		"contact_no":     contact,
		"email":          email,
		"password":       "secret-1",
		"room_no":        "101",
		"hostel_id":      hostelID,
		"parent_contact": "9000000000",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("seed student: status=%d body=%s", rec.Code, rec.Body.String())
	}
}

func (a *testAPI) seedWarden(t *testing.T, wardenID, email, contact string) {
	t.Helper()
	rec := a.do(t, http.MethodPost, "/identities/warden", "", map[string]any{
		"warden_id":  wardenID,
		"name":       "R. Iyer",
		"email":      email,
		"password":   "secret-1",
		"contact_no": contact,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("seed warden: status=%d body=%s", rec.Code, rec.Body.String())
	}
}

func (a *testAPI) seedAdmin(t *testing.T, department, email string) {
	t.Helper()
	rec := a.do(t, http.MethodPost, "/identities/admin", "", map[string]any{
		"department":     department,
		"email":          email,
		"password":       "secret-1",
		"staff_capacity": 5,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("seed admin: status=%d body=%s", rec.Code, rec.Body.String())
	}
}

func (a *testAPI) login(t *testing.T, rolePath, key string) string {
	t.Helper()
	rec := a.do(t, http.MethodPost, "/sessions/"+rolePath, "", map[string]any{
		"key":      key,
		"password": "secret-1",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("login %s: status=%d body=%s", rolePath, rec.Code, rec.Body.String())
	}
	var sess sessionResponse
	decodeBody(t, rec, &sess)
	if sess.Token == "" {
		t.Fatalf("login %s: empty token", rolePath)
	}
	return sess.Token
}
