package sink

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"harvest/internal/domain"
	"harvest/internal/port"
)

// SQLiteSink upserts faculty records keyed by profile URL.
type SQLiteSink struct {
	db    *sql.DB
	runID string
}

var _ port.FacultySink = (*SQLiteSink)(nil)

func OpenSQLite(ctx context.Context, path, runID string) (*SQLiteSink, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, err
	}

	if err := initSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	return &SQLiteSink{db: db, runID: runID}, nil
}

func initSchema(ctx context.Context, db *sql.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS faculty (
	profile_url TEXT PRIMARY KEY,
	first_name TEXT NOT NULL,
	last_name TEXT NOT NULL,
	university TEXT,
	department TEXT,
	grad_school TEXT,
	grad_degree TEXT,
	run_id TEXT,
	scraped_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_faculty_university ON faculty(university);
`
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to init schema: %w", err)
	}
	return nil
}

func (s *SQLiteSink) Write(ctx context.Context, records []domain.Faculty) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
INSERT INTO faculty (profile_url, first_name, last_name, university, department, grad_school, grad_degree, run_id, scraped_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(profile_url) DO UPDATE SET
	first_name = excluded.first_name,
	last_name = excluded.last_name,
	university = excluded.university,
	department = excluded.department,
	grad_school = excluded.grad_school,
	grad_degree = excluded.grad_degree,
	run_id = excluded.run_id,
	scraped_at = excluded.scraped_at`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	now := time.Now().UTC().Format(time.RFC3339)
	for _, r := range records {
		_, err := stmt.ExecContext(ctx, r.ProfileURL, r.FirstName, r.LastName, r.University, r.Department, r.GradSchool, r.GradDegree, s.runID, now)
		if err != nil {
			return fmt.Errorf("failed to store %s: %w", r.ProfileURL, err)
		}
	}

	return tx.Commit()
}

// List returns stored records ordered by last then first name.
func (s *SQLiteSink) List(ctx context.Context) ([]domain.Faculty, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT first_name, last_name, university, department, grad_school, grad_degree, profile_url
FROM faculty ORDER BY last_name, first_name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Faculty
	for rows.Next() {
		var f domain.Faculty
		var university, department, school, degree sql.NullString
		if err := rows.Scan(&f.FirstName, &f.LastName, &university, &department, &school, &degree, &f.ProfileURL); err != nil {
			return nil, err
		}
		f.University = university.String
		f.Department = department.String
		f.GradSchool = school.String
		f.GradDegree = degree.String
		out = append(out, f)
	}
	return out, rows.Err()
}

func (s *SQLiteSink) Close() error {
	return s.db.Close()
}
