package hostelrepo

import (
	"testing"

	"github.com/snu-hive/hostel-desk-api/internal/adapters/contracttest"
	"github.com/snu-hive/hostel-desk-api/internal/adapters/postgres/testutil"
	hostelrepoport "github.com/snu-hive/hostel-desk-api/internal/ports/out/hostelrepo"
)

func TestContract_PostgresHostelRepo(t *testing.T) {
	pool := testutil.OpenMigratedPool(t)

	contracttest.RunHostelRepo(t, func(t *testing.T) (hostelrepoport.Repository, func()) {
		t.Helper()
		return NewRepo(pool), nil
	})
}
