package httpapi

import (
	"net/http"
	"strings"

	"github.com/snu-hive/hostel-desk-api/internal/app/requests"
	"github.com/snu-hive/hostel-desk-api/internal/domain"
	"github.com/snu-hive/hostel-desk-api/internal/platform/auth/tokens"
	clockport "github.com/snu-hive/hostel-desk-api/internal/ports/out/clock"
)

// Authenticator verifies bearer tokens against the role-pinned verifiers and
// stores the resulting actor in request context.
type Authenticator struct {
	verifiers map[domain.Role]*tokens.Verifier
}

func NewAuthenticator(signingKey []byte, clk clockport.Clock) *Authenticator {
	return &Authenticator{
		verifiers: map[domain.Role]*tokens.Verifier{
			domain.RoleStudent:      tokens.NewVerifier(signingKey, domain.RoleStudent, clk),
			domain.RoleWarden:       tokens.NewVerifier(signingKey, domain.RoleWarden, clk),
			domain.RoleSupportAdmin: tokens.NewVerifier(signingKey, domain.RoleSupportAdmin, clk),
		},
	}
}

// Require admits a bearer of any of the given roles. The tokens carry the
// role claim, so each allowed role's verifier is tried; all rejections
// collapse into one indistinguishable 401.
func (a *Authenticator) Require(roles ...domain.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, ok := bearerToken(r)
			if !ok {
				writeError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "missing bearer token", nil)
				return
			}

			for _, role := range roles {
				v, ok := a.verifiers[role]
				if !ok {
					continue
				}
				claims, err := v.Verify(raw)
				if err != nil {
					continue
				}
				actor := requests.Actor{Role: claims.Role, ScopeKey: claims.ScopeKey}
				next.ServeHTTP(w, r.WithContext(WithActor(r.Context(), actor)))
				return
			}
			writeError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "invalid token", nil)
		})
	}
}

// RequireAny admits any authenticated principal.
func (a *Authenticator) RequireAny() func(http.Handler) http.Handler {
	return a.Require(domain.RoleStudent, domain.RoleWarden, domain.RoleSupportAdmin)
}

func bearerToken(r *http.Request) (string, bool) {
	authz := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if !strings.HasPrefix(authz, prefix) {
		return "", false
	}
	raw := strings.TrimSpace(strings.TrimPrefix(authz, prefix))
	return raw, raw != ""
}
