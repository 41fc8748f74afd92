package storage

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/shiftbook/internal/payroll"
)

const timestampLayout = "2006-01-02T15:04:05.000000000Z07:00"

// PayslipRecord is a payslip as stored in the ledger.
type PayslipRecord struct {
	ID            string    `json:"id"`
	RunID         string    `json:"run_id"`
	DriverID      string    `json:"driver_id"`
	Month         int       `json:"month"`
	BonusCount    int       `json:"bonus_count"`
	ActualHours   string    `json:"actual_hours"`
	RequiredHours string    `json:"required_hours"`
	NetPay        int       `json:"net_pay"`
	CreatedAt     time.Time `json:"created_at"`
}

// Database is the payroll ledger. Every payroll run appends one row per
// driver; nothing is updated in place.
type Database struct {
	db *sql.DB
}

func New(path string) (*Database, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}

	database := &Database{db: db}
	if err := database.createTables(); err != nil {
		db.Close()
		return nil, err
	}

	return database, nil
}

func (d *Database) createTables() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS payslips (
			id TEXT PRIMARY KEY,
			run_id TEXT NOT NULL,
			driver_id TEXT NOT NULL,
			month INTEGER NOT NULL,
			bonus_count INTEGER NOT NULL DEFAULT 0,
			actual_hours TEXT NOT NULL,
			required_hours TEXT NOT NULL,
			net_pay INTEGER NOT NULL,
			created_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_payslips_month ON payslips(month)`,
		`CREATE INDEX IF NOT EXISTS idx_payslips_driver ON payslips(driver_id, month)`,
	}

	for _, query := range queries {
		if _, err := d.db.Exec(query); err != nil {
			return fmt.Errorf("failed to create table: %w", err)
		}
	}

	return nil
}

func (d *Database) Close() error {
	return d.db.Close()
}

// InsertPayslips stores one payroll run in a single transaction and returns
// its run ID.
func (d *Database) InsertPayslips(slips []payroll.Payslip) (string, error) {
	runID := uuid.NewString()
	now := time.Now().UTC().Format(timestampLayout)

	tx, err := d.db.Begin()
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(
		`INSERT INTO payslips (id, run_id, driver_id, month, bonus_count, actual_hours, required_hours, net_pay, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return "", err
	}
	defer stmt.Close()

	for _, s := range slips {
		if _, err := stmt.Exec(uuid.NewString(), runID, s.DriverID, s.Month, s.BonusCount, s.ActualHours, s.RequiredHours, s.NetPay, now); err != nil {
			return "", fmt.Errorf("failed to insert payslip for %s: %w", s.DriverID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", err
	}
	return runID, nil
}

// GetPayslipsForMonth returns every stored payslip for month, newest run
// first.
func (d *Database) GetPayslipsForMonth(month int) ([]PayslipRecord, error) {
	rows, err := d.db.Query(
		`SELECT id, run_id, driver_id, month, bonus_count, actual_hours, required_hours, net_pay, created_at
		 FROM payslips WHERE month = ?
		 ORDER BY created_at DESC, rowid DESC`,
		month,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []PayslipRecord
	for rows.Next() {
		r, err := scanPayslip(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *r)
	}

	return records, rows.Err()
}

// GetLatestPayslip returns the newest payslip for the driver and month, or
// nil if none was stored.
func (d *Database) GetLatestPayslip(driverID string, month int) (*PayslipRecord, error) {
	row := d.db.QueryRow(
		`SELECT id, run_id, driver_id, month, bonus_count, actual_hours, required_hours, net_pay, created_at
		 FROM payslips WHERE driver_id = ? AND month = ?
		 ORDER BY created_at DESC, rowid DESC LIMIT 1`,
		driverID, month,
	)

	r, err := scanPayslip(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return r, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanPayslip(s scanner) (*PayslipRecord, error) {
	var r PayslipRecord
	var createdAt string

	if err := s.Scan(&r.ID, &r.RunID, &r.DriverID, &r.Month, &r.BonusCount, &r.ActualHours, &r.RequiredHours, &r.NetPay, &createdAt); err != nil {
		return nil, err
	}

	t, err := time.Parse(timestampLayout, createdAt)
	if err != nil {
		return nil, fmt.Errorf("bad created_at %q: %w", createdAt, err)
	}
	r.CreatedAt = t
	return &r, nil
}
