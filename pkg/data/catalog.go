package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

const (
	catalogSourcePrefix = "catalog:"
	classSeparator      = ","

	insertRegistrationSQL = `INSERT INTO registration (
			reg_number,
			name,
			reg_date,
			owner
		)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(reg_number) DO UPDATE SET
			name = ?,
			reg_date = ?,
			owner = ?
	`

	deleteRegistrationClassesSQL = `DELETE FROM registration_class WHERE reg_number = ?`

	insertRegistrationClassSQL = `INSERT OR IGNORE INTO registration_class (reg_number, class) VALUES (?, ?)`

	selectRegistrationsSQL = `SELECT
			r.reg_number,
			r.name,
			r.reg_date,
			COALESCE(r.owner, '') AS owner,
			COALESCE(GROUP_CONCAT(c.class, ','), '') AS classes
		FROM registration r
		LEFT JOIN registration_class c ON r.reg_number = c.reg_number
		GROUP BY r.reg_number, r.name, r.reg_date, r.owner
		ORDER BY r.reg_number
	`

	selectRegistrationSQL = `SELECT
			r.reg_number,
			r.name,
			r.reg_date,
			COALESCE(r.owner, '') AS owner,
			COALESCE(GROUP_CONCAT(c.class, ','), '') AS classes
		FROM registration r
		LEFT JOIN registration_class c ON r.reg_number = c.reg_number
		WHERE r.reg_number = ?
		GROUP BY r.reg_number, r.name, r.reg_date, r.owner
	`

	deleteAllClassesSQL       = `DELETE FROM registration_class`
	deleteAllRegistrationsSQL = `DELETE FROM registration`
)

var catalogStateQueries = map[string]string{
	"registrations": "SELECT COUNT(*) FROM registration",
	"classes":       "SELECT COUNT(DISTINCT class) FROM registration_class",
	"owners":        "SELECT COUNT(DISTINCT owner) FROM registration WHERE owner IS NOT NULL AND owner != ''",
}

// CatalogSource serves registrations from the sqlite catalogue.
type CatalogSource struct {
	db   *sql.DB
	path string
}

// NewCatalogSource wraps an open catalogue database.
func NewCatalogSource(db *sql.DB, path string) *CatalogSource {
	return &CatalogSource{db: db, path: path}
}

func (s *CatalogSource) Name() string {
	return catalogSourcePrefix + s.path
}

func (s *CatalogSource) Search(ctx context.Context, c *Criteria) ([]*Record, error) {
	if s.db == nil {
		return nil, errDBNotInitialized
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, selectRegistrationsSQL)
	if err != nil {
		return nil, fmt.Errorf("failed to execute registration select statement: %w", err)
	}
	defer rows.Close()

	list := make([]*Record, 0)
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate registrations: %w", err)
	}

	return filter(list, c), nil
}

func (s *CatalogSource) Get(ctx context.Context, regNumber string) (*Record, error) {
	if s.db == nil {
		return nil, errDBNotInitialized
	}

	row := s.db.QueryRowContext(ctx, selectRegistrationSQL, strings.TrimSpace(regNumber))
	r, err := scanRecord(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return r, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (*Record, error) {
	r := &Record{}
	var classes string
	if err := row.Scan(&r.RegNumber, &r.Name, &r.RegDate, &r.Owner, &classes); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan row: %w", err)
	}
	if classes != "" {
		r.Classes = NormalizeClasses(strings.Split(classes, classSeparator))
	}
	return r, nil
}

// SaveRecords upserts registrations and replaces their class lists.
func SaveRecords(db *sql.DB, records []*Record) error {
	if db == nil {
		return errDBNotInitialized
	}

	if len(records) == 0 {
		return nil
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	for i, r := range records {
		if r == nil || strings.TrimSpace(r.RegNumber) == "" {
			rollbackTransaction(tx)
			return fmt.Errorf("registration[%d] has no registration number", i)
		}

		num := strings.TrimSpace(r.RegNumber)
		date := NormalizeDate(r.RegDate)

		if _, err := tx.Exec(insertRegistrationSQL,
			num, r.Name, date, r.Owner,
			r.Name, date, r.Owner); err != nil {
			slog.Error("failed to insert registration",
				"index", i,
				"error", err,
				"reg_number", num,
				"name", r.Name,
				"reg_date", r.RegDate,
			)
			rollbackTransaction(tx)
			return fmt.Errorf("error inserting registration[%d]: %s: %w", i, num, err)
		}

		if _, err := tx.Exec(deleteRegistrationClassesSQL, num); err != nil {
			rollbackTransaction(tx)
			return fmt.Errorf("error clearing classes of %s: %w", num, err)
		}

		for _, c := range NormalizeClasses(r.Classes) {
			if _, err := tx.Exec(insertRegistrationClassSQL, num, c); err != nil {
				rollbackTransaction(tx)
				return fmt.Errorf("error inserting class %s of %s: %w", c, num, err)
			}
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// ClearCatalog deletes every registration.
func ClearCatalog(db *sql.DB) error {
	if db == nil {
		return errDBNotInitialized
	}

	for _, q := range []string{deleteAllClassesSQL, deleteAllRegistrationsSQL} {
		if _, err := db.Exec(q); err != nil {
			return fmt.Errorf("failed to clear catalog: %w", err)
		}
	}
	return nil
}

// GetCatalogState returns record counts of the catalogue.
func GetCatalogState(db *sql.DB) (map[string]int64, error) {
	if db == nil {
		return nil, errDBNotInitialized
	}

	state := make(map[string]int64)
	for k, q := range catalogStateQueries {
		var count int64
		if err := db.QueryRow(q).Scan(&count); err != nil {
			return nil, fmt.Errorf("error getting %s count: %w", k, err)
		}
		state[k] = count
	}

	return state, nil
}

func rollbackTransaction(tx *sql.Tx) {
	if err := tx.Rollback(); err != nil {
		slog.Error("failed to rollback transaction", "error", err)
	}
}
