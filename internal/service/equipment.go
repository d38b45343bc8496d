package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"equipment-maintenance-api/internal/lifecycle"
	"equipment-maintenance-api/internal/model"
	"equipment-maintenance-api/internal/repository"
	apperrors "equipment-maintenance-api/pkg/errors"
	"equipment-maintenance-api/pkg/validation"
)

// EquipmentService applies the equipment lifecycle rules on top of the
// repository: each mutation validates against the current snapshot, then
// either fully persists or fails before any write.
type EquipmentService struct {
	repo   repository.EquipmentRepository
	picker lifecycle.DayPicker
	now    func() time.Time
	logger *log.Logger
}

// PaginatedViewResult holds a page of decorated equipment records.
type PaginatedViewResult struct {
	Items      []model.EquipmentView
	TotalCount int
}

// Distributions holds the category counts rendered as charts by the dashboard.
type Distributions struct {
	Status  map[model.Status]int  `json:"status"`
	Urgency map[model.Urgency]int `json:"urgency"`
}

// NewEquipmentService creates a new equipment service.
func NewEquipmentService(repo repository.EquipmentRepository, picker lifecycle.DayPicker, logger *log.Logger) *EquipmentService {
	return NewEquipmentServiceWithClock(repo, picker, logger, time.Now)
}

// NewEquipmentServiceWithClock creates a service with an explicit clock,
// used by tests to pin the derived metrics to a fixed instant.
func NewEquipmentServiceWithClock(repo repository.EquipmentRepository, picker lifecycle.DayPicker, logger *log.Logger, now func() time.Time) *EquipmentService {
	if logger == nil {
		logger = log.Default()
	}
	if now == nil {
		now = time.Now
	}
	return &EquipmentService{
		repo:   repo,
		picker: picker,
		now:    now,
		logger: logger,
	}
}

// Snapshot returns every equipment record decorated with derived fields.
func (s *EquipmentService) Snapshot(ctx context.Context) ([]model.EquipmentView, error) {
	records, err := s.repo.GetAllEquipment(ctx)
	if err != nil {
		return nil, apperrors.DatabaseError("failed to retrieve equipment", err)
	}
	return lifecycle.Views(records, s.now()), nil
}

// SnapshotPaginated returns a page of decorated equipment records.
func (s *EquipmentService) SnapshotPaginated(ctx context.Context, params repository.PaginationParams) (*PaginatedViewResult, error) {
	result, err := s.repo.GetAllEquipmentPaginated(ctx, params)
	if err != nil {
		return nil, apperrors.DatabaseError("failed to retrieve equipment", err)
	}
	return &PaginatedViewResult{
		Items:      lifecycle.Views(result.Items, s.now()),
		TotalCount: result.TotalCount,
	}, nil
}

// GetEquipment returns a single decorated equipment record.
func (s *EquipmentService) GetEquipment(ctx context.Context, id string) (*model.EquipmentView, error) {
	equipment, err := s.getExisting(ctx, id)
	if err != nil {
		return nil, err
	}
	view := lifecycle.View(*equipment, s.now())
	return &view, nil
}

// DueSoon returns the records whose next maintenance falls within the horizon.
func (s *EquipmentService) DueSoon(ctx context.Context, horizonDays int) ([]model.EquipmentView, error) {
	records, err := s.repo.GetAllEquipment(ctx)
	if err != nil {
		return nil, apperrors.DatabaseError("failed to retrieve equipment", err)
	}
	now := s.now()
	return lifecycle.Views(lifecycle.DueSoon(records, now, horizonDays), now), nil
}

// GetDistributions returns the status and urgency category counts.
func (s *EquipmentService) GetDistributions(ctx context.Context) (*Distributions, error) {
	records, err := s.repo.GetAllEquipment(ctx)
	if err != nil {
		return nil, apperrors.DatabaseError("failed to retrieve equipment", err)
	}
	now := s.now()
	return &Distributions{
		Status:  lifecycle.CountByStatus(records),
		Urgency: lifecycle.CountByUrgency(records, now),
	}, nil
}

// AddEquipment creates a new equipment record. The maintenance dates are
// assigned from the randomized scheduling windows; the next date is not
// guaranteed to fall after the last one.
func (s *EquipmentService) AddEquipment(ctx context.Context, id, equipmentType string, status model.Status) (*model.Equipment, error) {
	if errs := validation.ValidateAddEquipmentInput(id, equipmentType, status); len(errs) > 0 {
		return nil, validationError(errs)
	}

	exists, err := s.repo.EquipmentExists(ctx, id)
	if err != nil {
		return nil, apperrors.DatabaseError("failed to check equipment existence", err)
	}
	if exists {
		return nil, apperrors.AlreadyExistsError("equipment").WithDetail("id", id)
	}

	last, next := lifecycle.NewEquipmentSchedule(s.now(), s.picker)
	equipment := model.Equipment{
		ID:              id,
		Type:            equipmentType,
		LastMaintenance: last,
		NextMaintenance: next,
		Status:          status,
	}

	if err := s.repo.CreateEquipment(ctx, equipment); err != nil {
		if errors.Is(err, repository.ErrDuplicateID) {
			return nil, apperrors.AlreadyExistsError("equipment").WithDetail("id", id)
		}
		return nil, apperrors.DatabaseError("failed to create equipment", err)
	}

	s.logger.Printf("Equipment added: ID=%s, Type=%s, Status=%s", id, equipmentType, status)

	return &equipment, nil
}

// RequestMaintenance marks the equipment as under maintenance and schedules
// the next maintenance inside the request window. Returns the updated record.
func (s *EquipmentService) RequestMaintenance(ctx context.Context, id string) (*model.Equipment, error) {
	if err := validation.ValidateEquipmentID(id); err != nil {
		return nil, apperrors.ValidationError(err.Error())
	}

	equipment, err := s.getExisting(ctx, id)
	if err != nil {
		return nil, err
	}

	next := lifecycle.RequestSchedule(s.now(), s.picker)
	if err := s.repo.UpdateMaintenanceSchedule(ctx, id, model.StatusUnderMaintenance, next); err != nil {
		return nil, s.translateRepoError(err, "update maintenance schedule")
	}

	equipment.Status = model.StatusUnderMaintenance
	equipment.NextMaintenance = next

	s.logger.Printf("Maintenance requested: ID=%s, next=%s", id, next.Format(time.RFC3339))

	return equipment, nil
}

// MarkOperational sets the equipment status to Operational regardless of its
// prior status; only existence is validated. Returns the updated record.
func (s *EquipmentService) MarkOperational(ctx context.Context, id string) (*model.Equipment, error) {
	if err := validation.ValidateEquipmentID(id); err != nil {
		return nil, apperrors.ValidationError(err.Error())
	}

	equipment, err := s.getExisting(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.repo.UpdateStatus(ctx, id, model.StatusOperational); err != nil {
		return nil, s.translateRepoError(err, "update equipment status")
	}

	equipment.Status = model.StatusOperational

	s.logger.Printf("Equipment marked operational: ID=%s", id)

	return equipment, nil
}

// UpdateEquipment replaces the mutable fields of an existing record.
func (s *EquipmentService) UpdateEquipment(ctx context.Context, id string, equipment model.Equipment) (*model.Equipment, error) {
	if err := validation.ValidateEquipmentID(id); err != nil {
		return nil, apperrors.ValidationError(err.Error())
	}
	if err := validation.ValidateEquipmentType(equipment.Type); err != nil {
		return nil, apperrors.ValidationError(err.Error())
	}
	if err := validation.ValidateStatus(equipment.Status); err != nil {
		return nil, apperrors.ValidationError(err.Error())
	}

	if err := s.repo.UpdateEquipment(ctx, id, equipment); err != nil {
		return nil, s.translateRepoError(err, "update equipment")
	}

	equipment.ID = id

	s.logger.Printf("Equipment updated: ID=%s", id)

	return &equipment, nil
}

// DeleteEquipment removes an equipment record. No history is retained.
func (s *EquipmentService) DeleteEquipment(ctx context.Context, id string) error {
	if err := validation.ValidateEquipmentID(id); err != nil {
		return apperrors.ValidationError(err.Error())
	}

	if err := s.repo.DeleteEquipment(ctx, id); err != nil {
		return s.translateRepoError(err, "delete equipment")
	}

	s.logger.Printf("Equipment deleted: ID=%s", id)

	return nil
}

// SeedIfEmpty populates an empty store with count randomized demo records and
// returns how many were inserted. A non-empty store is left untouched.
func (s *EquipmentService) SeedIfEmpty(ctx context.Context, count int) (int, error) {
	existing, err := s.repo.CountEquipment(ctx)
	if err != nil {
		return 0, apperrors.DatabaseError("failed to count equipment", err)
	}
	if existing > 0 || count <= 0 {
		return 0, nil
	}

	now := s.now()
	for i := 0; i < count; i++ {
		last, next := lifecycle.NewEquipmentSchedule(now, s.picker)
		equipment := model.Equipment{
			ID:              fmt.Sprintf("EQUIP%04d", i+1),
			Type:            model.EquipmentTypes[s.picker.Days(0, len(model.EquipmentTypes))],
			LastMaintenance: last,
			NextMaintenance: next,
			Status:          model.Statuses[s.picker.Days(0, len(model.Statuses))],
		}
		if err := s.repo.CreateEquipment(ctx, equipment); err != nil {
			return i, apperrors.DatabaseError("failed to seed equipment", err)
		}
	}

	s.logger.Printf("Seeded %d equipment records", count)

	return count, nil
}

// getExisting loads the current record for id, translating a missing row
// into a not-found application error.
func (s *EquipmentService) getExisting(ctx context.Context, id string) (*model.Equipment, error) {
	equipment, err := s.repo.GetEquipmentByID(ctx, id)
	if err != nil {
		return nil, s.translateRepoError(err, "retrieve equipment")
	}
	return equipment, nil
}

func (s *EquipmentService) translateRepoError(err error, operation string) error {
	switch {
	case errors.Is(err, repository.ErrEquipmentNotFound):
		return apperrors.NotFoundError("equipment")
	case errors.Is(err, repository.ErrDuplicateID):
		return apperrors.AlreadyExistsError("equipment")
	default:
		return apperrors.DatabaseError(fmt.Sprintf("failed to %s", operation), err)
	}
}

func validationError(messages []string) error {
	err := apperrors.ValidationError("validation failed")
	for i, msg := range messages {
		err.WithDetail(fmt.Sprintf("error_%d", i), msg)
	}
	return err
}
