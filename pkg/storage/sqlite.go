package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/PauloCosta30/flight-alert-bot/pkg/model"

	_ "modernc.org/sqlite"
)

// SQLite implements the Storage interface using an SQLite database.
type SQLite struct {
	db *sql.DB
}

// NewSQLite opens or creates an SQLite database at the given path.
func NewSQLite(dbPath string) (*SQLite, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// SQLite allows a single writer; one pooled connection keeps writes
	// serialized and the PRAGMAs below applied to every statement.
	db.SetMaxOpenConns(1)

	// Enable WAL mode for concurrent reads
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	// Commits must reach stable storage before they are acknowledged
	if _, err := db.Exec("PRAGMA synchronous=FULL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set synchronous mode: %w", err)
	}

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLite{db: db}, nil
}

func (s *SQLite) CreateAlert(ctx context.Context, alert *model.Alert) error {
	if alert.ID == "" {
		alert.ID = uuid.New().String()
	}
	if alert.CreatedAt.IsZero() {
		alert.CreatedAt = time.Now().UTC()
	}
	if alert.Status == "" {
		alert.Status = model.StatusActive
	}
	if err := alert.Validate(); err != nil {
		return fmt.Errorf("invalid alert: %w", err)
	}

	result, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO alerts
		   (id, owner_id, origin, origin_city, destination, max_price,
		    date_start, date_end, trip_type, status, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		alert.ID, alert.OwnerID, alert.Origin, alert.OriginCity, alert.Destination,
		alert.MaxPrice, alert.DateSpec.Start, nullTime(alert.DateSpec.End),
		string(alert.TripType), string(alert.Status), alert.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert alert: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("alert %q: %w", alert.ID, ErrDuplicateID)
	}
	return nil
}

func (s *SQLite) GetAlert(ctx context.Context, id string) (*model.Alert, error) {
	row := s.db.QueryRowContext(ctx, selectAlert+" WHERE id = ?", id)
	alert, err := scanAlert(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("alert %q: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get alert: %w", err)
	}
	return alert, nil
}

func (s *SQLite) ListByOwner(ctx context.Context, ownerID int64) ([]model.Alert, error) {
	rows, err := s.db.QueryContext(ctx,
		selectAlert+" WHERE owner_id = ? ORDER BY created_at, id", ownerID)
	if err != nil {
		return nil, fmt.Errorf("list alerts by owner: %w", err)
	}
	defer rows.Close()
	return scanAlerts(rows)
}

func (s *SQLite) ListActive(ctx context.Context) ([]model.Alert, error) {
	rows, err := s.db.QueryContext(ctx,
		selectAlert+" WHERE status = ? ORDER BY created_at, id", string(model.StatusActive))
	if err != nil {
		return nil, fmt.Errorf("list active alerts: %w", err)
	}
	defer rows.Close()
	return scanAlerts(rows)
}

// UpdateAlert rewrites the mutable columns of the stored record in a single
// statement. Immutable fields keep their creation-time values.
func (s *SQLite) UpdateAlert(ctx context.Context, alert *model.Alert) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE alerts
		 SET status = ?, last_checked_at = ?, last_notified_price = ?, last_notified_at = ?
		 WHERE id = ?`,
		string(alert.Status), nullTime(alert.LastCheckedAt),
		nullFloat(alert.LastNotifiedPrice), nullTimePtr(alert.LastNotifiedAt),
		alert.ID,
	)
	if err != nil {
		return fmt.Errorf("update alert: %w", err)
	}
	return affectedOrNotFound(result, alert.ID)
}

func (s *SQLite) SetStatus(ctx context.Context, id string, status model.AlertStatus) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE alerts SET status = ? WHERE id = ?`, string(status), id)
	if err != nil {
		return fmt.Errorf("set alert status: %w", err)
	}
	return affectedOrNotFound(result, id)
}

func (s *SQLite) MarkChecked(ctx context.Context, id string, at time.Time) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE alerts SET last_checked_at = ? WHERE id = ?`, at.UTC(), id)
	if err != nil {
		return fmt.Errorf("mark alert checked: %w", err)
	}
	return affectedOrNotFound(result, id)
}

func (s *SQLite) RecordNotification(ctx context.Context, id string, price float64, at time.Time) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE alerts SET last_notified_price = ?, last_notified_at = ? WHERE id = ?`,
		price, at.UTC(), id)
	if err != nil {
		return fmt.Errorf("record notification: %w", err)
	}
	return affectedOrNotFound(result, id)
}

func (s *SQLite) Close() error {
	return s.db.Close()
}

const selectAlert = `SELECT id, owner_id, origin, origin_city, destination, max_price,
	date_start, date_end, trip_type, status, created_at,
	last_checked_at, last_notified_price, last_notified_at
FROM alerts`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAlert(row rowScanner) (*model.Alert, error) {
	var a model.Alert
	var dateEnd, lastChecked, lastNotifiedAt sql.NullTime
	var lastNotifiedPrice sql.NullFloat64
	var tripType, status string

	err := row.Scan(
		&a.ID, &a.OwnerID, &a.Origin, &a.OriginCity, &a.Destination, &a.MaxPrice,
		&a.DateSpec.Start, &dateEnd, &tripType, &status, &a.CreatedAt,
		&lastChecked, &lastNotifiedPrice, &lastNotifiedAt,
	)
	if err != nil {
		return nil, err
	}

	a.TripType = model.TripType(tripType)
	a.Status = model.AlertStatus(status)
	if dateEnd.Valid {
		a.DateSpec.End = dateEnd.Time
	}
	if lastChecked.Valid {
		a.LastCheckedAt = lastChecked.Time
	}
	if lastNotifiedPrice.Valid {
		val := lastNotifiedPrice.Float64
		a.LastNotifiedPrice = &val
	}
	if lastNotifiedAt.Valid {
		val := lastNotifiedAt.Time
		a.LastNotifiedAt = &val
	}
	return &a, nil
}

func scanAlerts(rows *sql.Rows) ([]model.Alert, error) {
	var alerts []model.Alert
	for rows.Next() {
		a, err := scanAlert(rows)
		if err != nil {
			return nil, fmt.Errorf("scan alert row: %w", err)
		}
		alerts = append(alerts, *a)
	}
	return alerts, rows.Err()
}

func affectedOrNotFound(result sql.Result, id string) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("alert %q: %w", id, ErrNotFound)
	}
	return nil
}

func nullTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t.UTC()
}

func nullTimePtr(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC()
}

func nullFloat(f *float64) any {
	if f == nil {
		return nil
	}
	return *f
}
