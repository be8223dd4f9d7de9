package requestrepo

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/snu-hive/hostel-desk-api/internal/adapters/postgres"
	"github.com/snu-hive/hostel-desk-api/internal/domain"
	"github.com/snu-hive/hostel-desk-api/internal/ports/out/requestrepo"
)

// ComplaintRepo is a Postgres implementation of requestrepo.ComplaintRepository.
type ComplaintRepo struct {
	pool *pgxpool.Pool
}

func NewComplaintRepo(pool *pgxpool.Pool) *ComplaintRepo {
	return &ComplaintRepo{pool: pool}
}

const complaintColumns = `complaint_id, roll_no, department, hostel_id, status, description, created_at`

func (r *ComplaintRepo) Create(ctx context.Context, c domain.Complaint) error {
	if r.pool == nil {
		return errors.New("nil postgres pool")
	}
	var hostelID *string
	if c.HostelID != nil {
		v := string(*c.HostelID)
		hostelID = &v
	}
	_, err := r.pool.Exec(ctx, `
		INSERT INTO complaints (`+complaintColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, string(c.ID), string(c.RollNo), string(c.Department), hostelID, string(c.Status), c.Description, c.CreatedAt.UTC())
	if err != nil {
		if pe, ok := postgres.AsPgError(err); ok && pe.Code == postgres.UniqueViolationCode {
			return requestrepo.ErrAlreadyExists
		}
		return err
	}
	return nil
}

func (r *ComplaintRepo) GetByID(ctx context.Context, id domain.ComplaintID) (domain.Complaint, error) {
	if r.pool == nil {
		return domain.Complaint{}, errors.New("nil postgres pool")
	}
	row := r.pool.QueryRow(ctx, `
		SELECT `+complaintColumns+` FROM complaints WHERE complaint_id = $1
	`, string(id))
	return scanComplaint(row)
}

func (r *ComplaintRepo) ListByRollNo(ctx context.Context, rollNo domain.RollNo) ([]domain.Complaint, error) {
	return r.list(ctx, `roll_no = $1`, string(rollNo))
}

func (r *ComplaintRepo) ListByDepartment(ctx context.Context, dept domain.Department) ([]domain.Complaint, error) {
	return r.list(ctx, `department = $1`, string(dept))
}

func (r *ComplaintRepo) list(ctx context.Context, where string, arg any) ([]domain.Complaint, error) {
	if r.pool == nil {
		return nil, errors.New("nil postgres pool")
	}
	rows, err := r.pool.Query(ctx, `
		SELECT `+complaintColumns+` FROM complaints
		WHERE `+where+`
		ORDER BY created_at DESC, complaint_id ASC
	`, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.Complaint, 0)
	for rows.Next() {
		c, err := scanComplaint(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *ComplaintRepo) UpdateStatus(ctx context.Context, id domain.ComplaintID, status domain.ComplaintStatus) (domain.Complaint, error) {
	if r.pool == nil {
		return domain.Complaint{}, errors.New("nil postgres pool")
	}
	row := r.pool.QueryRow(ctx, `
		UPDATE complaints SET status = $2 WHERE complaint_id = $1
		RETURNING `+complaintColumns+`
	`, string(id), string(status))
	return scanComplaint(row)
}

// FoodRequestRepo is a Postgres implementation of requestrepo.FoodRequestRepository.
type FoodRequestRepo struct {
	pool *pgxpool.Pool
}

func NewFoodRequestRepo(pool *pgxpool.Pool) *FoodRequestRepo {
	return &FoodRequestRepo{pool: pool}
}

const foodRequestColumns = `food_request_id, roll_no, hostel_id, meal, request_date, status, created_at`

func (r *FoodRequestRepo) Create(ctx context.Context, fr domain.FoodRequest) error {
	if r.pool == nil {
		return errors.New("nil postgres pool")
	}
	_, err := r.pool.Exec(ctx, `
		INSERT INTO food_requests (`+foodRequestColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, string(fr.ID), string(fr.RollNo), string(fr.HostelID), string(fr.Meal), fr.Date, string(fr.Status), fr.CreatedAt.UTC())
	if err != nil {
		if pe, ok := postgres.AsPgError(err); ok && pe.Code == postgres.UniqueViolationCode {
			return requestrepo.ErrAlreadyExists
		}
		return err
	}
	return nil
}

func (r *FoodRequestRepo) GetByID(ctx context.Context, id domain.FoodRequestID) (domain.FoodRequest, error) {
	if r.pool == nil {
		return domain.FoodRequest{}, errors.New("nil postgres pool")
	}
	row := r.pool.QueryRow(ctx, `
		SELECT `+foodRequestColumns+` FROM food_requests WHERE food_request_id = $1
	`, string(id))
	return scanFoodRequest(row)
}

func (r *FoodRequestRepo) ListByRollNo(ctx context.Context, rollNo domain.RollNo) ([]domain.FoodRequest, error) {
	if r.pool == nil {
		return nil, errors.New("nil postgres pool")
	}
	rows, err := r.pool.Query(ctx, `
		SELECT `+foodRequestColumns+` FROM food_requests
		WHERE roll_no = $1
		ORDER BY created_at DESC, food_request_id ASC
	`, string(rollNo))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectFoodRequests(rows)
}

func (r *FoodRequestRepo) ListByHostels(ctx context.Context, hostelIDs []domain.HostelID) ([]domain.FoodRequest, error) {
	if r.pool == nil {
		return nil, errors.New("nil postgres pool")
	}
	if len(hostelIDs) == 0 {
		return []domain.FoodRequest{}, nil
	}
	keys := make([]string, 0, len(hostelIDs))
	for _, id := range hostelIDs {
		keys = append(keys, string(id))
	}
	rows, err := r.pool.Query(ctx, `
		SELECT `+foodRequestColumns+` FROM food_requests
		WHERE hostel_id = ANY($1)
		ORDER BY created_at DESC, food_request_id ASC
	`, keys)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectFoodRequests(rows)
}

func (r *FoodRequestRepo) UpdateStatus(ctx context.Context, id domain.FoodRequestID, status domain.FoodRequestStatus) (domain.FoodRequest, error) {
	if r.pool == nil {
		return domain.FoodRequest{}, errors.New("nil postgres pool")
	}
	row := r.pool.QueryRow(ctx, `
		UPDATE food_requests SET status = $2 WHERE food_request_id = $1
		RETURNING `+foodRequestColumns+`
	`, string(id), string(status))
	return scanFoodRequest(row)
}

// LostFoundRepo is a Postgres implementation of requestrepo.LostFoundRepository.
type LostFoundRepo struct {
	pool *pgxpool.Pool
}

func NewLostFoundRepo(pool *pgxpool.Pool) *LostFoundRepo {
	return &LostFoundRepo{pool: pool}
}

const reportColumns = `report_id, roll_no, item_name, location, classification, contact_phone, image_path, created_at`

func (r *LostFoundRepo) Create(ctx context.Context, rep domain.LostFoundReport) error {
	if r.pool == nil {
		return errors.New("nil postgres pool")
	}
	var rollNo *string
	if rep.RollNo != nil {
		v := string(*rep.RollNo)
		rollNo = &v
	}
	_, err := r.pool.Exec(ctx, `
		INSERT INTO lost_found_reports (`+reportColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, string(rep.ID), rollNo, rep.ItemName, rep.Location, string(rep.Classification), rep.ContactPhone, rep.ImagePath, rep.CreatedAt.UTC())
	if err != nil {
		if pe, ok := postgres.AsPgError(err); ok && pe.Code == postgres.UniqueViolationCode {
			return requestrepo.ErrAlreadyExists
		}
		return err
	}
	return nil
}

func (r *LostFoundRepo) GetByID(ctx context.Context, id domain.ReportID) (domain.LostFoundReport, error) {
	if r.pool == nil {
		return domain.LostFoundReport{}, errors.New("nil postgres pool")
	}
	row := r.pool.QueryRow(ctx, `
		SELECT `+reportColumns+` FROM lost_found_reports WHERE report_id = $1
	`, string(id))
	return scanReport(row)
}

func (r *LostFoundRepo) List(ctx context.Context, classification *domain.ReportClassification) ([]domain.LostFoundReport, error) {
	if r.pool == nil {
		return nil, errors.New("nil postgres pool")
	}

	var (
		rows pgx.Rows
		err  error
	)
	if classification != nil {
		rows, err = r.pool.Query(ctx, `
			SELECT `+reportColumns+` FROM lost_found_reports
			WHERE classification = $1
			ORDER BY created_at DESC, report_id ASC
		`, string(*classification))
	} else {
		rows, err = r.pool.Query(ctx, `
			SELECT `+reportColumns+` FROM lost_found_reports
			ORDER BY created_at DESC, report_id ASC
		`)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.LostFoundReport, 0)
	for rows.Next() {
		rep, err := scanReport(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rep)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanComplaint(row rowScanner) (domain.Complaint, error) {
	var c domain.Complaint
	var id, roll, dept, status string
	var hostelID *string
	err := row.Scan(&id, &roll, &dept, &hostelID, &status, &c.Description, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Complaint{}, requestrepo.ErrNotFound
		}
		return domain.Complaint{}, err
	}
	c.ID = domain.ComplaintID(id)
	c.RollNo = domain.RollNo(roll)
	c.Department = domain.Department(dept)
	c.Status = domain.ComplaintStatus(status)
	if hostelID != nil {
		hid := domain.HostelID(*hostelID)
		c.HostelID = &hid
	}
	return c, nil
}

func scanFoodRequest(row rowScanner) (domain.FoodRequest, error) {
	var fr domain.FoodRequest
	var id, roll, hostel, meal, status string
	err := row.Scan(&id, &roll, &hostel, &meal, &fr.Date, &status, &fr.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.FoodRequest{}, requestrepo.ErrNotFound
		}
		return domain.FoodRequest{}, err
	}
	fr.ID = domain.FoodRequestID(id)
	fr.RollNo = domain.RollNo(roll)
	fr.HostelID = domain.HostelID(hostel)
	fr.Meal = domain.MealType(meal)
	fr.Status = domain.FoodRequestStatus(status)
	return fr, nil
}

func collectFoodRequests(rows pgx.Rows) ([]domain.FoodRequest, error) {
	out := make([]domain.FoodRequest, 0)
	for rows.Next() {
		fr, err := scanFoodRequest(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, fr)
	}
	return out, rows.Err()
}

func scanReport(row rowScanner) (domain.LostFoundReport, error) {
	var rep domain.LostFoundReport
	var id, classification string
	var rollNo *string
	err := row.Scan(&id, &rollNo, &rep.ItemName, &rep.Location, &classification, &rep.ContactPhone, &rep.ImagePath, &rep.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.LostFoundReport{}, requestrepo.ErrNotFound
		}
		return domain.LostFoundReport{}, err
	}
	rep.ID = domain.ReportID(id)
	rep.Classification = domain.ReportClassification(classification)
	if rollNo != nil {
		rn := domain.RollNo(*rollNo)
		rep.RollNo = &rn
	}
	return rep, nil
}
