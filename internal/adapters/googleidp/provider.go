// Package googleidp resolves Google OAuth access tokens into identity
// profiles via the userinfo endpoint.
package googleidp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/snu-hive/hostel-desk-api/internal/ports/out/identityprovider"
)

const defaultUserinfoURL = "https://openidconnect.googleapis.com/v1/userinfo"

// Provider implements identityprovider.Provider against Google's userinfo
// endpoint. The assertion is an OAuth access token obtained by the client.
type Provider struct {
	client      *http.Client
	userinfoURL string
}

type Option func(*Provider)

// WithHTTPClient overrides the HTTP client, mainly for tests.
func WithHTTPClient(c *http.Client) Option {
	return func(p *Provider) { p.client = c }
}

// WithUserinfoURL overrides the userinfo endpoint, mainly for tests.
func WithUserinfoURL(url string) Option {
	return func(p *Provider) { p.userinfoURL = url }
}

func New(opts ...Option) *Provider {
	p := &Provider{
		client:      &http.Client{Timeout: 10 * time.Second},
		userinfoURL: defaultUserinfoURL,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Provider) Name() string { return "google" }

type userinfoResponse struct {
	Sub           string `json:"sub"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
}

// ResolveExternalProfile exchanges an access token for the holder's verified
// email and stable subject. Any failure that means "this token does not
// identify anyone" maps to ErrUnresolvable; transport failures pass through
// so callers can distinguish an outage from a bad token.
func (p *Provider) ResolveExternalProfile(ctx context.Context, assertion string) (identityprovider.Profile, error) {
	assertion = strings.TrimSpace(assertion)
	if assertion == "" {
		return identityprovider.Profile{}, identityprovider.ErrUnresolvable
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.userinfoURL, nil)
	if err != nil {
		return identityprovider.Profile{}, fmt.Errorf("build userinfo request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+assertion)

	resp, err := p.client.Do(req)
	if err != nil {
		return identityprovider.Profile{}, fmt.Errorf("call userinfo: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return identityprovider.Profile{}, identityprovider.ErrUnresolvable
	default:
		return identityprovider.Profile{}, fmt.Errorf("userinfo returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return identityprovider.Profile{}, fmt.Errorf("read userinfo response: %w", err)
	}

	var info userinfoResponse
	if err := json.Unmarshal(body, &info); err != nil {
		return identityprovider.Profile{}, fmt.Errorf("decode userinfo response: %w", err)
	}
	if info.Sub == "" || info.Email == "" || !info.EmailVerified {
		return identityprovider.Profile{}, identityprovider.ErrUnresolvable
	}
	return identityprovider.Profile{
		Email:      info.Email,
		ExternalID: info.Sub,
	}, nil
}

var _ identityprovider.Provider = (*Provider)(nil)
