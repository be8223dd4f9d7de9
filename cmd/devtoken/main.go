package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/snu-hive/hostel-desk-api/internal/domain"
	"github.com/snu-hive/hostel-desk-api/internal/platform/auth/tokens"
	platformclock "github.com/snu-hive/hostel-desk-api/internal/platform/clock"
)

// Dev-only token minter.
//
// It signs a session token with the same key the API verifies against, so
// local workflows can hit authenticated endpoints without registering and
// logging in first. NOT for production use.
func main() {
	role := flag.String("role", "STUDENT", "token role: STUDENT, WARDEN, or SUPPORT_ADMIN")
	scope := flag.String("scope", "", "scope key: roll number, warden id, or department")
	ttl := flag.Duration("ttl", tokens.DefaultValidity, "token validity")
	flag.Parse()

	key := os.Getenv("AUTH_SIGNING_KEY")
	if key == "" {
		log.Fatal("AUTH_SIGNING_KEY is required")
	}
	if *scope == "" {
		log.Fatal("-scope is required")
	}

	r := domain.Role(*role)
	switch r {
	case domain.RoleStudent, domain.RoleWarden, domain.RoleSupportAdmin:
	default:
		log.Fatalf("unknown role %q", *role)
	}

	issuer := tokens.NewIssuer([]byte(key), *ttl, platformclock.NewSystemClock())
	token, err := issuer.Issue(r, *scope)
	if err != nil {
		log.Fatalf("issue token: %v", err)
	}

	fmt.Println(token)
	fmt.Fprintf(os.Stderr, "role=%s scope=%s expires=%s\n", r, *scope, time.Now().UTC().Add(*ttl).Format(time.RFC3339))
}
