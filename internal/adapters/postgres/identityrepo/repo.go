package identityrepo

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/snu-hive/hostel-desk-api/internal/adapters/postgres"
	"github.com/snu-hive/hostel-desk-api/internal/domain"
	"github.com/snu-hive/hostel-desk-api/internal/ports/out/identityrepo"
)

// Repo is a Postgres implementation of identityrepo.Repository.
//
// CreateStudent takes a row lock on the target hostel so that the occupant
// count and the insert form one serializable unit; the capacity invariant
// holds under concurrent registrations.
type Repo struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

func (r *Repo) CreateStudent(ctx context.Context, s domain.Student) error {
	if r.pool == nil {
		return errors.New("nil postgres pool")
	}

	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		var capacity int
		err := tx.QueryRow(ctx, `
			SELECT capacity FROM hostels WHERE hostel_id = $1 FOR UPDATE
		`, string(s.HostelID)).Scan(&capacity)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return identityrepo.ErrHostelNotFound
			}
			return err
		}

		var occupants int
		if err := tx.QueryRow(ctx, `
			SELECT COUNT(*) FROM students WHERE hostel_id = $1
		`, string(s.HostelID)).Scan(&occupants); err != nil {
			return err
		}
		if occupants >= capacity {
			return identityrepo.ErrHostelFull
		}

		var provider, subject *string
		if s.External != nil {
			provider = &s.External.Provider
			subject = &s.External.Subject
		}
		_, err = tx.Exec(ctx, `
			INSERT INTO students (
				roll_no, name, dept, batch, contact_no, email, secret_hash,
				room_no, hostel_id, parent_contact,
				external_provider, external_subject, created_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		`,
			string(s.RollNo), s.Name, s.Dept, s.Batch, s.ContactNo, s.Email, s.SecretHash,
			s.RoomNo, string(s.HostelID), s.ParentContact,
			provider, subject, s.CreatedAt.UTC(),
		)
		if err != nil {
			if pe, ok := postgres.AsPgError(err); ok && pe.Code == postgres.UniqueViolationCode {
				return identityrepo.ErrDuplicateKey
			}
			return err
		}
		return nil
	})
}

func (r *Repo) CreateWarden(ctx context.Context, w domain.Warden) error {
	if r.pool == nil {
		return errors.New("nil postgres pool")
	}
	_, err := r.pool.Exec(ctx, `
		INSERT INTO wardens (warden_id, name, email, secret_hash, contact_no, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, string(w.ID), w.Name, w.Email, w.SecretHash, w.ContactNo, w.CreatedAt.UTC())
	if err != nil {
		if pe, ok := postgres.AsPgError(err); ok && pe.Code == postgres.UniqueViolationCode {
			return identityrepo.ErrDuplicateKey
		}
		return err
	}
	return nil
}

func (r *Repo) CreateSupportAdmin(ctx context.Context, a domain.SupportAdmin) error {
	if r.pool == nil {
		return errors.New("nil postgres pool")
	}
	var wardenID *string
	if a.WardenID != nil {
		v := string(*a.WardenID)
		wardenID = &v
	}
	_, err := r.pool.Exec(ctx, `
		INSERT INTO support_admins (department, email, secret_hash, staff_capacity, warden_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, string(a.Department), a.Email, a.SecretHash, a.StaffCapacity, wardenID, a.CreatedAt.UTC())
	if err != nil {
		if pe, ok := postgres.AsPgError(err); ok && pe.Code == postgres.UniqueViolationCode {
			return identityrepo.ErrDuplicateKey
		}
		return err
	}
	return nil
}

const studentColumns = `
	roll_no, name, dept, batch, contact_no, email, secret_hash,
	room_no, hostel_id, parent_contact,
	external_provider, external_subject, created_at
`

func (r *Repo) GetStudentByRollNo(ctx context.Context, rollNo domain.RollNo) (domain.Student, error) {
	if r.pool == nil {
		return domain.Student{}, errors.New("nil postgres pool")
	}
	row := r.pool.QueryRow(ctx, `
		SELECT `+studentColumns+` FROM students WHERE roll_no = $1
	`, string(rollNo))
	return scanStudent(row)
}

func (r *Repo) GetStudentByEmail(ctx context.Context, email string) (domain.Student, error) {
	if r.pool == nil {
		return domain.Student{}, errors.New("nil postgres pool")
	}
	row := r.pool.QueryRow(ctx, `
		SELECT `+studentColumns+` FROM students WHERE lower(email) = lower($1)
	`, email)
	return scanStudent(row)
}

func (r *Repo) GetWardenByID(ctx context.Context, id domain.WardenID) (domain.Warden, error) {
	if r.pool == nil {
		return domain.Warden{}, errors.New("nil postgres pool")
	}
	row := r.pool.QueryRow(ctx, `
		SELECT warden_id, name, email, secret_hash, contact_no, created_at
		FROM wardens WHERE warden_id = $1
	`, string(id))
	return scanWarden(row)
}

func (r *Repo) GetWardenByEmail(ctx context.Context, email string) (domain.Warden, error) {
	if r.pool == nil {
		return domain.Warden{}, errors.New("nil postgres pool")
	}
	row := r.pool.QueryRow(ctx, `
		SELECT warden_id, name, email, secret_hash, contact_no, created_at
		FROM wardens WHERE lower(email) = lower($1)
	`, email)
	return scanWarden(row)
}

func (r *Repo) GetAdminByDepartment(ctx context.Context, dept domain.Department) (domain.SupportAdmin, error) {
	if r.pool == nil {
		return domain.SupportAdmin{}, errors.New("nil postgres pool")
	}
	row := r.pool.QueryRow(ctx, `
		SELECT department, email, secret_hash, staff_capacity, warden_id, created_at
		FROM support_admins WHERE department = $1
	`, string(dept))
	return scanAdmin(row)
}

func (r *Repo) GetAdminByEmail(ctx context.Context, email string) (domain.SupportAdmin, error) {
	if r.pool == nil {
		return domain.SupportAdmin{}, errors.New("nil postgres pool")
	}
	row := r.pool.QueryRow(ctx, `
		SELECT department, email, secret_hash, staff_capacity, warden_id, created_at
		FROM support_admins WHERE lower(email) = lower($1)
	`, email)
	return scanAdmin(row)
}

func (r *Repo) ListStudentsByRollNos(ctx context.Context, rollNos []domain.RollNo) ([]domain.Student, error) {
	if r.pool == nil {
		return nil, errors.New("nil postgres pool")
	}
	if len(rollNos) == 0 {
		return []domain.Student{}, nil
	}
	keys := make([]string, 0, len(rollNos))
	for _, rn := range rollNos {
		keys = append(keys, string(rn))
	}
	rows, err := r.pool.Query(ctx, `
		SELECT `+studentColumns+` FROM students WHERE roll_no = ANY($1)
	`, keys)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.Student, 0, len(rollNos))
	for rows.Next() {
		s, err := scanStudent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *Repo) CountStudentsInHostel(ctx context.Context, hostelID domain.HostelID) (int, error) {
	if r.pool == nil {
		return 0, errors.New("nil postgres pool")
	}
	var n int
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM students WHERE hostel_id = $1
	`, string(hostelID)).Scan(&n)
	return n, err
}

func (r *Repo) LinkStudentExternal(ctx context.Context, rollNo domain.RollNo, link domain.ExternalLink) error {
	if r.pool == nil {
		return errors.New("nil postgres pool")
	}

	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		var provider, subject *string
		err := tx.QueryRow(ctx, `
			SELECT external_provider, external_subject FROM students WHERE roll_no = $1 FOR UPDATE
		`, string(rollNo)).Scan(&provider, &subject)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return identityrepo.ErrNotFound
			}
			return err
		}
		if provider != nil {
			if *provider == link.Provider && subject != nil && *subject == link.Subject {
				return nil
			}
			return identityrepo.ErrAlreadyLinked
		}
		_, err = tx.Exec(ctx, `
			UPDATE students SET external_provider = $2, external_subject = $3 WHERE roll_no = $1
		`, string(rollNo), link.Provider, link.Subject)
		return err
	})
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanStudent(row rowScanner) (domain.Student, error) {
	var s domain.Student
	var roll, hostel string
	var provider, subject *string
	err := row.Scan(
		&roll, &s.Name, &s.Dept, &s.Batch, &s.ContactNo, &s.Email, &s.SecretHash,
		&s.RoomNo, &hostel, &s.ParentContact,
		&provider, &subject, &s.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Student{}, identityrepo.ErrNotFound
		}
		return domain.Student{}, err
	}
	s.RollNo = domain.RollNo(roll)
	s.HostelID = domain.HostelID(hostel)
	if provider != nil && subject != nil {
		s.External = &domain.ExternalLink{Provider: *provider, Subject: *subject}
	}
	return s, nil
}

func scanWarden(row rowScanner) (domain.Warden, error) {
	var w domain.Warden
	var id string
	err := row.Scan(&id, &w.Name, &w.Email, &w.SecretHash, &w.ContactNo, &w.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Warden{}, identityrepo.ErrNotFound
		}
		return domain.Warden{}, err
	}
	w.ID = domain.WardenID(id)
	return w, nil
}

func scanAdmin(row rowScanner) (domain.SupportAdmin, error) {
	var a domain.SupportAdmin
	var dept string
	var wardenID *string
	err := row.Scan(&dept, &a.Email, &a.SecretHash, &a.StaffCapacity, &wardenID, &a.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.SupportAdmin{}, identityrepo.ErrNotFound
		}
		return domain.SupportAdmin{}, err
	}
	a.Department = domain.Department(dept)
	if wardenID != nil {
		wid := domain.WardenID(*wardenID)
		a.WardenID = &wid
	}
	return a, nil
}
