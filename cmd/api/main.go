package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/snu-hive/hostel-desk-api/internal/adapters/googleidp"
	"github.com/snu-hive/hostel-desk-api/internal/adapters/httpapi"
	memhostelrepo "github.com/snu-hive/hostel-desk-api/internal/adapters/memory/hostelrepo"
	memidentityrepo "github.com/snu-hive/hostel-desk-api/internal/adapters/memory/identityrepo"
	memrequestrepo "github.com/snu-hive/hostel-desk-api/internal/adapters/memory/requestrepo"
	postgres "github.com/snu-hive/hostel-desk-api/internal/adapters/postgres"
	pghostelrepo "github.com/snu-hive/hostel-desk-api/internal/adapters/postgres/hostelrepo"
	pgidentityrepo "github.com/snu-hive/hostel-desk-api/internal/adapters/postgres/identityrepo"
	pgrequestrepo "github.com/snu-hive/hostel-desk-api/internal/adapters/postgres/requestrepo"
	"github.com/snu-hive/hostel-desk-api/internal/app/authz"
	"github.com/snu-hive/hostel-desk-api/internal/app/identity"
	"github.com/snu-hive/hostel-desk-api/internal/app/requests"
	"github.com/snu-hive/hostel-desk-api/internal/platform/auth/passhash"
	"github.com/snu-hive/hostel-desk-api/internal/platform/auth/tokens"
	platformclock "github.com/snu-hive/hostel-desk-api/internal/platform/clock"
	"github.com/snu-hive/hostel-desk-api/internal/platform/config"
	hostelrepoport "github.com/snu-hive/hostel-desk-api/internal/ports/out/hostelrepo"
	identityrepoport "github.com/snu-hive/hostel-desk-api/internal/ports/out/identityrepo"
	requestrepoport "github.com/snu-hive/hostel-desk-api/internal/ports/out/requestrepo"
)

func main() {
	port := getenv("PORT", "8080")

	authCfg, err := config.LoadAuthConfigFromEnv()
	if err != nil {
		log.Fatalf("invalid auth config: %v", err)
	}

	clk := platformclock.NewSystemClock()

	storageBackend := getenv("STORAGE_BACKEND", "memory")
	var (
		hostelRepo    hostelrepoport.Repository
		identityRepo  identityrepoport.Repository
		complaintRepo requestrepoport.ComplaintRepository
		foodRepo      requestrepoport.FoodRequestRepository
		lostFoundRepo requestrepoport.LostFoundRepository
		cleanup       func()
	)

	switch storageBackend {
	case "postgres":
		dsn := os.Getenv("DATABASE_URL")
		pool, err := postgres.NewPool(context.Background(), dsn, postgres.PoolOptions{})
		if err != nil {
			log.Fatalf("invalid postgres config: %v", err)
		}
		cleanup = pool.Close

		if getenv("DATABASE_MIGRATE", "true") == "true" {
			if _, err := pool.Exec(context.Background(), postgres.Schema); err != nil {
				log.Fatalf("apply schema: %v", err)
			}
		}

		hostelRepo = pghostelrepo.NewRepo(pool)
		identityRepo = pgidentityrepo.NewRepo(pool)
		complaintRepo = pgrequestrepo.NewComplaintRepo(pool)
		foodRepo = pgrequestrepo.NewFoodRequestRepo(pool)
		lostFoundRepo = pgrequestrepo.NewLostFoundRepo(pool)
	default:
		hostels := memhostelrepo.NewRepo()
		hostelRepo = hostels
		identityRepo = memidentityrepo.NewRepo(hostels)
		complaintRepo = memrequestrepo.NewComplaintRepo()
		foodRepo = memrequestrepo.NewFoodRequestRepo()
		lostFoundRepo = memrequestrepo.NewLostFoundRepo()
	}

	if cleanup != nil {
		defer cleanup()
	}

	issuer := tokens.NewIssuer(authCfg.SigningKey, authCfg.TokenValidity, clk)
	identitySvc := identity.NewService(identityRepo, hostelRepo, passhash.Bcrypt{}, issuer, clk)
	if getenv("EXTERNAL_LOGIN", "off") == "google" {
		identitySvc = identitySvc.WithExternalProvider(googleidp.New(), authCfg.AllowedEmailDomain)
	}

	requestsSvc := requests.NewService(
		complaintRepo, foodRepo, lostFoundRepo,
		identityRepo, authz.NewGate(hostelRepo), clk,
	)

	api := httpapi.NewServer(identitySvc, requestsSvc)
	auth := httpapi.NewAuthenticator(authCfg.SigningKey, clk)
	handler := httpapi.NewRouter(api, auth)

	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	// Graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Printf("api listening on :%s (storage=%s)", port, storageBackend)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	<-ctx.Done()
	log.Printf("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
