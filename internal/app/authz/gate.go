package authz

import (
	"context"

	"github.com/snu-hive/hostel-desk-api/internal/domain"
	hostelrepoport "github.com/snu-hive/hostel-desk-api/internal/ports/out/hostelrepo"
)

// Gate decides whether a principal may touch a resource by comparing scoping
// attributes. Decisions are always re-derived from current resource state:
// the warden check resolves hostel -> administering warden through the
// repository on every call and never trusts a warden id carried on the
// resource or supplied by a client.
type Gate struct {
	hostels hostelrepoport.Repository
}

func NewGate(hostels hostelrepoport.Repository) *Gate {
	return &Gate{hostels: hostels}
}

// StudentOwnsSubmission reports whether the acting student is the submitter.
func (g *Gate) StudentOwnsSubmission(actor domain.RollNo, submitter domain.RollNo) bool {
	return actor != "" && actor == submitter
}

// AdminOwnsDepartment reports whether the acting admin's department matches
// the resource's routing department exactly.
func (g *Gate) AdminOwnsDepartment(actor domain.Department, routing domain.Department) bool {
	return actor != "" && actor == routing
}

// WardenAdministersHostel reports whether the hostel a resource is routed to
// is administered by the acting warden. A missing hostel or an unassigned
// hostel denies.
func (g *Gate) WardenAdministersHostel(ctx context.Context, actor domain.WardenID, hostelID domain.HostelID) (bool, error) {
	h, err := g.hostels.GetByID(ctx, hostelID)
	if err != nil {
		if err == hostelrepoport.ErrNotFound {
			return false, nil
		}
		return false, err
	}
	return h.WardenID != nil && *h.WardenID == actor, nil
}

// WardenHostelIDs returns the hostels the acting warden administers. List
// endpoints use this to derive the visible set server-side.
func (g *Gate) WardenHostelIDs(ctx context.Context, actor domain.WardenID) ([]domain.HostelID, error) {
	hs, err := g.hostels.ListByWarden(ctx, actor)
	if err != nil {
		return nil, err
	}
	out := make([]domain.HostelID, 0, len(hs))
	for _, h := range hs {
		out = append(out, h.ID)
	}
	return out, nil
}
