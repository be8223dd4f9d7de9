package tokens

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/snu-hive/hostel-desk-api/internal/domain"
	clockport "github.com/snu-hive/hostel-desk-api/internal/ports/out/clock"
)

// ErrUnauthenticated is returned for every verification failure. Callers get
// no detail about which check failed.
var ErrUnauthenticated = errors.New("unauthenticated")

// DefaultValidity is the fixed token lifetime.
const DefaultValidity = time.Hour

// Claims is the verified identity context: which principal type the token
// belongs to and the scoping key that binds it to resources (roll number,
// warden id, or department name).
type Claims struct {
	Role     domain.Role
	ScopeKey string
}

type tokenClaims struct {
	Role     string `json:"role"`
	ScopeKey string `json:"scopeKey"`
	jwt.RegisteredClaims
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now().UTC() }

// Issuer signs time-boxed claim sets for verified identities. The signing key
// is configuration (see platform/config), never a source literal.
type Issuer struct {
	key      []byte
	validity time.Duration
	clock    clockport.Clock
}

func NewIssuer(signingKey []byte, validity time.Duration, clk clockport.Clock) *Issuer {
	if validity <= 0 {
		validity = DefaultValidity
	}
	if clk == nil {
		clk = realClock{}
	}
	return &Issuer{key: signingKey, validity: validity, clock: clk}
}

// Issue signs a claim set for the given role and scope key.
func (i *Issuer) Issue(role domain.Role, scopeKey string) (string, error) {
	now := i.clock.Now()
	claims := tokenClaims{
		Role:     string(role),
		ScopeKey: scopeKey,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.validity)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.key)
}

// Verifier validates presented tokens for one expected role. Verification is
// pure: no store lookups, no network.
type Verifier struct {
	key   []byte
	role  domain.Role
	clock clockport.Clock
}

func NewVerifier(signingKey []byte, role domain.Role, clk clockport.Clock) *Verifier {
	if clk == nil {
		clk = realClock{}
	}
	return &Verifier{key: signingKey, role: role, clock: clk}
}

// Verify checks the signature, expiry, and role discriminant of a presented
// token. Every failure mode collapses to ErrUnauthenticated.
func (v *Verifier) Verify(presented string) (Claims, error) {
	if presented == "" {
		return Claims{}, ErrUnauthenticated
	}

	var tc tokenClaims
	_, err := jwt.ParseWithClaims(presented, &tc,
		func(t *jwt.Token) (any, error) {
			// Pin the algorithm; reject "none" and asymmetric confusion.
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, ErrUnauthenticated
			}
			return v.key, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(v.clock.Now),
	)
	if err != nil {
		return Claims{}, ErrUnauthenticated
	}
	if tc.Role != string(v.role) || tc.ScopeKey == "" {
		return Claims{}, ErrUnauthenticated
	}
	return Claims{Role: v.role, ScopeKey: tc.ScopeKey}, nil
}
