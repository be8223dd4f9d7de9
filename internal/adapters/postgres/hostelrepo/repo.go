package hostelrepo

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/snu-hive/hostel-desk-api/internal/adapters/postgres"
	"github.com/snu-hive/hostel-desk-api/internal/domain"
	"github.com/snu-hive/hostel-desk-api/internal/ports/out/hostelrepo"
)

// Repo is a Postgres implementation of hostelrepo.Repository.
type Repo struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

func (r *Repo) Create(ctx context.Context, h domain.Hostel) error {
	if r.pool == nil {
		return errors.New("nil postgres pool")
	}
	var wardenID *string
	if h.WardenID != nil {
		v := string(*h.WardenID)
		wardenID = &v
	}
	_, err := r.pool.Exec(ctx, `
		INSERT INTO hostels (hostel_id, name, capacity, warden_id)
		VALUES ($1, $2, $3, $4)
	`, string(h.ID), h.Name, h.Capacity, wardenID)
	if err != nil {
		if pe, ok := postgres.AsPgError(err); ok && pe.Code == postgres.UniqueViolationCode {
			return hostelrepo.ErrAlreadyExists
		}
		return err
	}
	return nil
}

func (r *Repo) GetByID(ctx context.Context, id domain.HostelID) (domain.Hostel, error) {
	if r.pool == nil {
		return domain.Hostel{}, errors.New("nil postgres pool")
	}
	row := r.pool.QueryRow(ctx, `
		SELECT hostel_id, name, capacity, warden_id FROM hostels WHERE hostel_id = $1
	`, string(id))
	return scanHostel(row)
}

func (r *Repo) ListByWarden(ctx context.Context, wardenID domain.WardenID) ([]domain.Hostel, error) {
	if r.pool == nil {
		return nil, errors.New("nil postgres pool")
	}
	rows, err := r.pool.Query(ctx, `
		SELECT hostel_id, name, capacity, warden_id
		FROM hostels
		WHERE warden_id = $1
		ORDER BY hostel_id ASC
	`, string(wardenID))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.Hostel, 0)
	for rows.Next() {
		h, err := scanHostel(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanHostel(row rowScanner) (domain.Hostel, error) {
	var h domain.Hostel
	var id string
	var wardenID *string
	if err := row.Scan(&id, &h.Name, &h.Capacity, &wardenID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Hostel{}, hostelrepo.ErrNotFound
		}
		return domain.Hostel{}, err
	}
	h.ID = domain.HostelID(id)
	if wardenID != nil {
		wid := domain.WardenID(*wardenID)
		h.WardenID = &wid
	}
	return h, nil
}
