package history

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Run is one completed export: which account, what range, and how much was
// written.
type Run struct {
	ID          int64
	Email       string
	StartDate   string
	EndDate     string
	Days        int
	RowsWritten int
	Seconds     float64
	CreatedAt   time.Time
}

// Service records and lists export runs.
type Service interface {
	Record(Run) error
	List() ([]Run, error)
	Close() error
}

type service struct {
	db *sql.DB
}

func New(path string) (Service, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("error opening history database: %w", err)
	}
	s := &service{db: db}
	if err := s.init(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *service) init() error {
	_, err := s.db.Exec(
		`CREATE TABLE IF NOT EXISTS ExportRun (
			id INTEGER PRIMARY KEY,
			email TEXT,
			startDate TEXT,
			endDate TEXT,
			days INTEGER,
			rowsWritten INTEGER,
			seconds REAL,
			createdAt TIMESTAMP
		)`,
	)
	if err != nil {
		return fmt.Errorf("error initializing history database: %w", err)
	}
	return nil
}

func (s *service) Record(r Run) error {
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now()
	}
	_, err := s.db.Exec(
		`INSERT INTO ExportRun (email, startDate, endDate, days, rowsWritten, seconds, createdAt)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		r.Email, r.StartDate, r.EndDate, r.Days, r.RowsWritten, r.Seconds, r.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("error recording export run: %w", err)
	}
	return nil
}

func (s *service) List() ([]Run, error) {
	rows, err := s.db.Query(
		`SELECT id, email, startDate, endDate, days, rowsWritten, seconds, createdAt
		 FROM ExportRun ORDER BY createdAt DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("error querying export runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		if err := rows.Scan(
			&r.ID, &r.Email, &r.StartDate, &r.EndDate,
			&r.Days, &r.RowsWritten, &r.Seconds, &r.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("error scanning export run: %w", err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

func (s *service) Close() error {
	return s.db.Close()
}
