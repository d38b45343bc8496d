package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"equipment-maintenance-api/internal/model"
)

// Sentinel errors surfaced to the service layer.
var (
	ErrEquipmentNotFound = errors.New("equipment not found")
	ErrDuplicateID       = errors.New("equipment with this ID already exists")
)

// Timestamps are persisted as RFC 3339 text so the sqlite and postgres
// backends behave identically (the schema stores TEXT columns).
const timestampLayout = time.RFC3339

// PaginationParams holds pagination parameters for repository queries.
type PaginationParams struct {
	Offset int
	Limit  int
}

// PaginatedResult holds paginated query results.
type PaginatedResult struct {
	Items      []model.Equipment
	TotalCount int
}

// EquipmentRepository is an interface for interacting with equipment data.
// Every mutating call issues a single statement and persists immediately.
type EquipmentRepository interface {
	CreateEquipment(ctx context.Context, equipment model.Equipment) error
	GetAllEquipment(ctx context.Context) ([]model.Equipment, error)
	GetAllEquipmentPaginated(ctx context.Context, params PaginationParams) (*PaginatedResult, error)
	GetEquipmentByID(ctx context.Context, id string) (*model.Equipment, error)
	UpdateEquipment(ctx context.Context, id string, equipment model.Equipment) error
	UpdateMaintenanceSchedule(ctx context.Context, id string, status model.Status, nextMaintenance time.Time) error
	UpdateStatus(ctx context.Context, id string, status model.Status) error
	DeleteEquipment(ctx context.Context, id string) error
	EquipmentExists(ctx context.Context, id string) (bool, error)
	CountEquipment(ctx context.Context) (int, error)
}

type equipmentRepository struct {
	DB *sql.DB
}

// NewEquipmentRepository creates a new EquipmentRepository.
func NewEquipmentRepository(db *sql.DB) EquipmentRepository {
	return &equipmentRepository{DB: db}
}

// CreateEquipment adds a new equipment record to the database.
func (r *equipmentRepository) CreateEquipment(ctx context.Context, equipment model.Equipment) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	query := `
		INSERT INTO equipment (id, type, last_maintenance, next_maintenance, status)
		VALUES ($1, $2, $3, $4, $5)`

	_, err := r.DB.ExecContext(ctx, query,
		equipment.ID,
		equipment.Type,
		equipment.LastMaintenance.Format(timestampLayout),
		equipment.NextMaintenance.Format(timestampLayout),
		string(equipment.Status),
	)

	if err != nil {
		if isDuplicateKeyError(err) {
			return fmt.Errorf("%w: %s", ErrDuplicateID, equipment.ID)
		}
		return fmt.Errorf("failed to create equipment: %w", err)
	}

	return nil
}

// GetAllEquipment retrieves every equipment record.
func (r *equipmentRepository) GetAllEquipment(ctx context.Context) ([]model.Equipment, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	query := `
		SELECT id, type, last_maintenance, next_maintenance, status
		FROM equipment
		ORDER BY id`

	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query equipment: %w", err)
	}
	defer rows.Close()

	return scanEquipmentRows(rows)
}

// GetAllEquipmentPaginated retrieves equipment records with pagination support.
func (r *equipmentRepository) GetAllEquipmentPaginated(ctx context.Context, params PaginationParams) (*PaginatedResult, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	query := `
		SELECT id, type, last_maintenance, next_maintenance, status
		FROM equipment
		ORDER BY id
		LIMIT $1 OFFSET $2`

	rows, err := r.DB.QueryContext(ctx, query, params.Limit, params.Offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query equipment: %w", err)
	}
	defer rows.Close()

	items, err := scanEquipmentRows(rows)
	if err != nil {
		return nil, err
	}

	var totalCount int
	countQuery := `SELECT COUNT(*) FROM equipment`
	if err := r.DB.QueryRowContext(ctx, countQuery).Scan(&totalCount); err != nil {
		return nil, fmt.Errorf("failed to get total count of equipment: %w", err)
	}

	return &PaginatedResult{Items: items, TotalCount: totalCount}, nil
}

// GetEquipmentByID retrieves a single equipment record by its ID.
func (r *equipmentRepository) GetEquipmentByID(ctx context.Context, id string) (*model.Equipment, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	query := `
		SELECT id, type, last_maintenance, next_maintenance, status
		FROM equipment
		WHERE id = $1`

	row := r.DB.QueryRowContext(ctx, query, id)

	equipment, err := scanEquipmentRow(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrEquipmentNotFound
		}
		return nil, fmt.Errorf("failed to get equipment by ID: %w", err)
	}
	return equipment, nil
}

// UpdateEquipment updates every mutable field of an equipment record.
// The ID itself is immutable.
func (r *equipmentRepository) UpdateEquipment(ctx context.Context, id string, equipment model.Equipment) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	query := `
		UPDATE equipment
		SET type = $1, last_maintenance = $2, next_maintenance = $3, status = $4
		WHERE id = $5`

	result, err := r.DB.ExecContext(ctx, query,
		equipment.Type,
		equipment.LastMaintenance.Format(timestampLayout),
		equipment.NextMaintenance.Format(timestampLayout),
		string(equipment.Status),
		id,
	)
	if err != nil {
		return fmt.Errorf("failed to update equipment: %w", err)
	}

	return requireRowsAffected(result)
}

// UpdateMaintenanceSchedule updates the status and next maintenance date
// together, as done by a maintenance request.
func (r *equipmentRepository) UpdateMaintenanceSchedule(ctx context.Context, id string, status model.Status, nextMaintenance time.Time) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	query := `
		UPDATE equipment
		SET status = $1, next_maintenance = $2
		WHERE id = $3`

	result, err := r.DB.ExecContext(ctx, query, string(status), nextMaintenance.Format(timestampLayout), id)
	if err != nil {
		return fmt.Errorf("failed to update maintenance schedule: %w", err)
	}

	return requireRowsAffected(result)
}

// UpdateStatus updates only the status of an equipment record.
func (r *equipmentRepository) UpdateStatus(ctx context.Context, id string, status model.Status) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	query := `UPDATE equipment SET status = $1 WHERE id = $2`

	result, err := r.DB.ExecContext(ctx, query, string(status), id)
	if err != nil {
		return fmt.Errorf("failed to update equipment status: %w", err)
	}

	return requireRowsAffected(result)
}

// DeleteEquipment deletes an equipment record from the database.
func (r *equipmentRepository) DeleteEquipment(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	query := `DELETE FROM equipment WHERE id = $1`

	result, err := r.DB.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete equipment: %w", err)
	}

	return requireRowsAffected(result)
}

// EquipmentExists checks if an equipment record with the given ID exists.
func (r *equipmentRepository) EquipmentExists(ctx context.Context, id string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	query := `SELECT EXISTS(SELECT 1 FROM equipment WHERE id = $1)`

	var exists bool
	if err := r.DB.QueryRowContext(ctx, query, id).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check equipment existence: %w", err)
	}

	return exists, nil
}

// CountEquipment returns the number of equipment records.
func (r *equipmentRepository) CountEquipment(ctx context.Context) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var count int
	if err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM equipment`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count equipment: %w", err)
	}
	return count, nil
}

// rowScanner covers both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanEquipmentRow(row rowScanner) (*model.Equipment, error) {
	var (
		e          model.Equipment
		last, next string
		status     string
	)
	if err := row.Scan(&e.ID, &e.Type, &last, &next, &status); err != nil {
		return nil, err
	}

	var err error
	if e.LastMaintenance, err = time.Parse(timestampLayout, last); err != nil {
		return nil, fmt.Errorf("failed to parse last_maintenance for %s: %w", e.ID, err)
	}
	if e.NextMaintenance, err = time.Parse(timestampLayout, next); err != nil {
		return nil, fmt.Errorf("failed to parse next_maintenance for %s: %w", e.ID, err)
	}
	e.Status = model.Status(status)

	return &e, nil
}

func scanEquipmentRows(rows *sql.Rows) ([]model.Equipment, error) {
	var records []model.Equipment
	for rows.Next() {
		e, err := scanEquipmentRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan equipment: %w", err)
		}
		records = append(records, *e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return records, nil
}

func requireRowsAffected(result sql.Result) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrEquipmentNotFound
	}
	return nil
}

// isDuplicateKeyError recognizes primary key violations from both backends
// (PostgreSQL error 23505 and the sqlite UNIQUE constraint message).
func isDuplicateKeyError(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "duplicate key value violates unique constraint") ||
		strings.Contains(msg, "UNIQUE constraint failed")
}
