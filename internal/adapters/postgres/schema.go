package postgres

// Schema is the DDL for every table the postgres adapters use. The test
// harness applies it to a scratch database; deployments run it as a
// migration. Statements are idempotent so reapplying is safe.
const Schema = `
CREATE TABLE IF NOT EXISTS hostels (
	hostel_id  TEXT PRIMARY KEY,
	name       TEXT NOT NULL,
	capacity   INT  NOT NULL CHECK (capacity > 0),
	warden_id  TEXT NULL
);

CREATE TABLE IF NOT EXISTS students (
	roll_no           TEXT PRIMARY KEY,
	name              TEXT NOT NULL,
	dept              TEXT NOT NULL,
	batch             INT  NOT NULL,
	contact_no        TEXT NOT NULL,
	email             TEXT NOT NULL,
	secret_hash       TEXT NOT NULL,
	room_no           TEXT NOT NULL,
	hostel_id         TEXT NOT NULL REFERENCES hostels(hostel_id),
	parent_contact    TEXT NOT NULL,
	external_provider TEXT NULL,
	external_subject  TEXT NULL,
	created_at        TIMESTAMPTZ NOT NULL,
	CONSTRAINT students_contact_no_unique UNIQUE (contact_no)
);

CREATE UNIQUE INDEX IF NOT EXISTS students_email_unique ON students (lower(email));
CREATE INDEX IF NOT EXISTS students_hostel_idx ON students (hostel_id);

CREATE TABLE IF NOT EXISTS wardens (
	warden_id   TEXT PRIMARY KEY,
	name        TEXT NOT NULL,
	email       TEXT NOT NULL,
	secret_hash TEXT NOT NULL,
	contact_no  TEXT NOT NULL,
	created_at  TIMESTAMPTZ NOT NULL,
	CONSTRAINT wardens_contact_no_unique UNIQUE (contact_no)
);

CREATE UNIQUE INDEX IF NOT EXISTS wardens_email_unique ON wardens (lower(email));

CREATE TABLE IF NOT EXISTS support_admins (
	department     TEXT PRIMARY KEY,
	email          TEXT NOT NULL,
	secret_hash    TEXT NOT NULL,
	staff_capacity INT  NOT NULL CHECK (staff_capacity > 0),
	warden_id      TEXT NULL REFERENCES wardens(warden_id),
	created_at     TIMESTAMPTZ NOT NULL
);

CREATE UNIQUE INDEX IF NOT EXISTS support_admins_email_unique ON support_admins (lower(email));

CREATE TABLE IF NOT EXISTS complaints (
	complaint_id TEXT PRIMARY KEY,
	roll_no      TEXT NOT NULL,
	department   TEXT NOT NULL,
	hostel_id    TEXT NULL,
	status       TEXT NOT NULL,
	description  TEXT NOT NULL,
	created_at   TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS complaints_department_idx ON complaints (department, created_at DESC);
CREATE INDEX IF NOT EXISTS complaints_roll_no_idx    ON complaints (roll_no, created_at DESC);

CREATE TABLE IF NOT EXISTS food_requests (
	food_request_id TEXT PRIMARY KEY,
	roll_no         TEXT NOT NULL,
	hostel_id       TEXT NOT NULL,
	meal            TEXT NOT NULL,
	request_date    DATE NOT NULL,
	status          TEXT NOT NULL,
	created_at      TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS food_requests_hostel_idx  ON food_requests (hostel_id, created_at DESC);
CREATE INDEX IF NOT EXISTS food_requests_roll_no_idx ON food_requests (roll_no, created_at DESC);

CREATE TABLE IF NOT EXISTS lost_found_reports (
	report_id      TEXT PRIMARY KEY,
	roll_no        TEXT NULL,
	item_name      TEXT NOT NULL,
	location       TEXT NOT NULL,
	classification TEXT NOT NULL,
	contact_phone  TEXT NOT NULL,
	image_path     TEXT NULL,
	created_at     TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS lost_found_classification_idx ON lost_found_reports (classification, created_at DESC);
`
