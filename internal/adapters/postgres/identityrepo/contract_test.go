package identityrepo

import (
	"testing"

	"github.com/snu-hive/hostel-desk-api/internal/adapters/contracttest"
	pghostelrepo "github.com/snu-hive/hostel-desk-api/internal/adapters/postgres/hostelrepo"
	"github.com/snu-hive/hostel-desk-api/internal/adapters/postgres/testutil"
	hostelrepoport "github.com/snu-hive/hostel-desk-api/internal/ports/out/hostelrepo"
	identityrepoport "github.com/snu-hive/hostel-desk-api/internal/ports/out/identityrepo"
)

func TestContract_PostgresIdentityRepos(t *testing.T) {
	pool := testutil.OpenMigratedPool(t)

	contracttest.RunIdentityRepos(t, func(t *testing.T) (hostelrepoport.Repository, identityrepoport.Repository, func()) {
		t.Helper()
		return pghostelrepo.NewRepo(pool), NewRepo(pool), nil
	})
}
