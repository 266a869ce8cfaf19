// Package catalog is the persistence collaborator: the authoritative
// supplier registry plus the durable store for resolved delivery rows and
// monthly supply plans.
package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS suppliers (
	id             TEXT PRIMARY KEY,
	corporate_name TEXT NOT NULL UNIQUE,
	created_at     TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS deliveries (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	supplier_id   TEXT NOT NULL REFERENCES suppliers(id) ON DELETE CASCADE,
	entry_date    TEXT NOT NULL,
	origin_volume REAL NOT NULL DEFAULT 0,
	entry_volume  REAL NOT NULL DEFAULT 0,
	moisture      REAL NOT NULL DEFAULT 0,
	density       REAL NOT NULL DEFAULT 0,
	fines         REAL NOT NULL DEFAULT 0,
	vehicle_plate TEXT,
	origin_ticket TEXT UNIQUE
);

CREATE TABLE IF NOT EXISTS monthly_plans (
	id             INTEGER PRIMARY KEY AUTOINCREMENT,
	supplier_id    TEXT NOT NULL REFERENCES suppliers(id) ON DELETE CASCADE,
	month          INTEGER NOT NULL,
	year           INTEGER NOT NULL,
	planned_volume REAL NOT NULL,
	UNIQUE (supplier_id, month, year)
);
`

// Supplier is a canonical entity in the registry.
type Supplier struct {
	ID            string `json:"id"`
	CorporateName string `json:"corporate_name"`
}

// Delivery is one resolved delivery row ready for bulk persistence.
type Delivery struct {
	EntryDate    time.Time
	OriginVolume float64
	EntryVolume  float64
	Moisture     float64
	Density      float64
	Fines        float64
	VehiclePlate string
	OriginTicket string
}

// MonthlyPlan is the planned supply volume for one supplier and month.
type MonthlyPlan struct {
	Month         int
	Year          int
	PlannedVolume float64
}

// Store wraps the SQLite database holding suppliers and resolved rows.
type Store struct {
	db *sql.DB
}

// Open opens (and if necessary creates) the catalog database at dbPath with
// WAL mode enabled. The parent directory is created when missing.
func Open(dbPath string) (*Store, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=ON")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Single writer connection for SQLite
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// AddSupplier registers a canonical supplier. The corporate name must be
// unique; registering a duplicate is an error.
func (s *Store) AddSupplier(ctx context.Context, corporateName string) (Supplier, error) {
	supplier := Supplier{ID: uuid.NewString(), CorporateName: corporateName}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO suppliers (id, corporate_name) VALUES (?, ?)`,
		supplier.ID, supplier.CorporateName)
	if err != nil {
		return Supplier{}, fmt.Errorf("failed to add supplier %q: %w", corporateName, err)
	}

	return supplier, nil
}

// SupplierByName returns the supplier registered under corporateName.
func (s *Store) SupplierByName(ctx context.Context, corporateName string) (Supplier, error) {
	var supplier Supplier
	err := s.db.QueryRowContext(ctx,
		`SELECT id, corporate_name FROM suppliers WHERE corporate_name = ?`,
		corporateName).Scan(&supplier.ID, &supplier.CorporateName)
	if errors.Is(err, sql.ErrNoRows) {
		return Supplier{}, fmt.Errorf("supplier %q not found in the catalog", corporateName)
	}
	if err != nil {
		return Supplier{}, fmt.Errorf("failed to query supplier %q: %w", corporateName, err)
	}

	return supplier, nil
}

// Names returns every canonical corporate name, ordered. This is the
// read-only catalog a resolution run matches against.
func (s *Store) Names(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT corporate_name FROM suppliers ORDER BY corporate_name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list supplier names: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan supplier name: %w", err)
		}
		names = append(names, name)
	}

	return names, rows.Err()
}

// CountSuppliers returns the number of registered suppliers.
func (s *Store) CountSuppliers(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM suppliers`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count suppliers: %w", err)
	}
	return count, nil
}

// AddDeliveries bulk-inserts resolved delivery rows for one supplier in a
// single transaction. Rows whose origin ticket was already ingested are
// silently ignored, so re-running a workbook is safe. It returns the number
// of rows actually inserted.
func (s *Store) AddDeliveries(ctx context.Context, corporateName string, deliveries []Delivery) (int, error) {
	supplier, err := s.SupplierByName(ctx, corporateName)
	if err != nil {
		return 0, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO deliveries
			(supplier_id, entry_date, origin_volume, entry_volume, moisture, density, fines, vehicle_plate, origin_ticket)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, NULLIF(?, ''))
		ON CONFLICT (origin_ticket) DO NOTHING`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare delivery insert: %w", err)
	}
	defer stmt.Close()

	inserted := 0
	for _, d := range deliveries {
		res, err := stmt.ExecContext(ctx,
			supplier.ID, d.EntryDate.Format("2006-01-02"),
			d.OriginVolume, d.EntryVolume, d.Moisture, d.Density, d.Fines,
			d.VehiclePlate, d.OriginTicket)
		if err != nil {
			return 0, fmt.Errorf("failed to insert delivery for %q: %w", corporateName, err)
		}
		if n, err := res.RowsAffected(); err == nil {
			inserted += int(n)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit deliveries: %w", err)
	}

	return inserted, nil
}

// CountDeliveries returns the number of persisted delivery rows for the
// given supplier.
func (s *Store) CountDeliveries(ctx context.Context, corporateName string) (int, error) {
	supplier, err := s.SupplierByName(ctx, corporateName)
	if err != nil {
		return 0, err
	}

	var count int
	err = s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM deliveries WHERE supplier_id = ?`, supplier.ID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count deliveries: %w", err)
	}
	return count, nil
}

// UpsertMonthlyPlan inserts or updates the planned volume for one supplier,
// month and year.
func (s *Store) UpsertMonthlyPlan(ctx context.Context, corporateName string, plan MonthlyPlan) error {
	if plan.Month < 1 || plan.Month > 12 {
		return fmt.Errorf("invalid month %d", plan.Month)
	}

	supplier, err := s.SupplierByName(ctx, corporateName)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO monthly_plans (supplier_id, month, year, planned_volume)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (supplier_id, month, year) DO UPDATE SET planned_volume = excluded.planned_volume`,
		supplier.ID, plan.Month, plan.Year, plan.PlannedVolume)
	if err != nil {
		return fmt.Errorf("failed to upsert monthly plan for %q: %w", corporateName, err)
	}

	return nil
}

// MonthlyPlanVolume returns the planned volume stored for one supplier,
// month and year.
func (s *Store) MonthlyPlanVolume(ctx context.Context, corporateName string, month, year int) (float64, error) {
	supplier, err := s.SupplierByName(ctx, corporateName)
	if err != nil {
		return 0, err
	}

	var volume float64
	err = s.db.QueryRowContext(ctx,
		`SELECT planned_volume FROM monthly_plans WHERE supplier_id = ? AND month = ? AND year = ?`,
		supplier.ID, month, year).Scan(&volume)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("no monthly plan for %q in %d/%d", corporateName, month, year)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to query monthly plan: %w", err)
	}

	return volume, nil
}
