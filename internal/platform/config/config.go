package config

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// AuthConfig configures token issuing and verification.
//
// The signing key is deployment-provided. It must never appear as a literal
// in source; LoadAuthConfigFromEnv is the only production path to one.
type AuthConfig struct {
	SigningKey    []byte
	TokenValidity time.Duration

	// AllowedEmailDomain restricts external-provider logins to one email
	// domain (e.g. "snu.edu.in"). Empty disables the check.
	AllowedEmailDomain string
}

func LoadAuthConfigFromEnv() (AuthConfig, error) {
	key := os.Getenv("AUTH_SIGNING_KEY")
	if key == "" {
		return AuthConfig{}, fmt.Errorf("missing required env var: AUTH_SIGNING_KEY")
	}

	cfg := AuthConfig{
		SigningKey:         []byte(key),
		TokenValidity:      time.Hour,
		AllowedEmailDomain: strings.TrimPrefix(os.Getenv("AUTH_ALLOWED_EMAIL_DOMAIN"), "@"),
	}

	if v := os.Getenv("AUTH_TOKEN_VALIDITY"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return AuthConfig{}, fmt.Errorf("AUTH_TOKEN_VALIDITY must be a positive duration (e.g. 1h): %v", v)
		}
		cfg.TokenValidity = d
	}

	return cfg, nil
}
