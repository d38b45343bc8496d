package service

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"equipment-maintenance-api/internal/lifecycle"
	"equipment-maintenance-api/internal/model"
	"equipment-maintenance-api/internal/repository"
	apperrors "equipment-maintenance-api/pkg/errors"
)

// MockEquipmentRepository is a function-field mock of EquipmentRepository.
type MockEquipmentRepository struct {
	CreateEquipmentFunc           func(ctx context.Context, equipment model.Equipment) error
	GetAllEquipmentFunc           func(ctx context.Context) ([]model.Equipment, error)
	GetAllEquipmentPaginatedFunc  func(ctx context.Context, params repository.PaginationParams) (*repository.PaginatedResult, error)
	GetEquipmentByIDFunc          func(ctx context.Context, id string) (*model.Equipment, error)
	UpdateEquipmentFunc           func(ctx context.Context, id string, equipment model.Equipment) error
	UpdateMaintenanceScheduleFunc func(ctx context.Context, id string, status model.Status, next time.Time) error
	UpdateStatusFunc              func(ctx context.Context, id string, status model.Status) error
	DeleteEquipmentFunc           func(ctx context.Context, id string) error
	EquipmentExistsFunc           func(ctx context.Context, id string) (bool, error)
	CountEquipmentFunc            func(ctx context.Context) (int, error)

	// Records captured by CreateEquipment
	Created []model.Equipment
}

func (m *MockEquipmentRepository) CreateEquipment(ctx context.Context, equipment model.Equipment) error {
	m.Created = append(m.Created, equipment)
	if m.CreateEquipmentFunc != nil {
		return m.CreateEquipmentFunc(ctx, equipment)
	}
	return nil
}

func (m *MockEquipmentRepository) GetAllEquipment(ctx context.Context) ([]model.Equipment, error) {
	if m.GetAllEquipmentFunc != nil {
		return m.GetAllEquipmentFunc(ctx)
	}
	return []model.Equipment{}, nil
}

func (m *MockEquipmentRepository) GetAllEquipmentPaginated(ctx context.Context, params repository.PaginationParams) (*repository.PaginatedResult, error) {
	if m.GetAllEquipmentPaginatedFunc != nil {
		return m.GetAllEquipmentPaginatedFunc(ctx, params)
	}
	return &repository.PaginatedResult{Items: []model.Equipment{}, TotalCount: 0}, nil
}

func (m *MockEquipmentRepository) GetEquipmentByID(ctx context.Context, id string) (*model.Equipment, error) {
	if m.GetEquipmentByIDFunc != nil {
		return m.GetEquipmentByIDFunc(ctx, id)
	}
	return nil, repository.ErrEquipmentNotFound
}

func (m *MockEquipmentRepository) UpdateEquipment(ctx context.Context, id string, equipment model.Equipment) error {
	if m.UpdateEquipmentFunc != nil {
		return m.UpdateEquipmentFunc(ctx, id, equipment)
	}
	return nil
}

func (m *MockEquipmentRepository) UpdateMaintenanceSchedule(ctx context.Context, id string, status model.Status, next time.Time) error {
	if m.UpdateMaintenanceScheduleFunc != nil {
		return m.UpdateMaintenanceScheduleFunc(ctx, id, status, next)
	}
	return nil
}

func (m *MockEquipmentRepository) UpdateStatus(ctx context.Context, id string, status model.Status) error {
	if m.UpdateStatusFunc != nil {
		return m.UpdateStatusFunc(ctx, id, status)
	}
	return nil
}

func (m *MockEquipmentRepository) DeleteEquipment(ctx context.Context, id string) error {
	if m.DeleteEquipmentFunc != nil {
		return m.DeleteEquipmentFunc(ctx, id)
	}
	return nil
}

func (m *MockEquipmentRepository) EquipmentExists(ctx context.Context, id string) (bool, error) {
	if m.EquipmentExistsFunc != nil {
		return m.EquipmentExistsFunc(ctx, id)
	}
	return false, nil
}

func (m *MockEquipmentRepository) CountEquipment(ctx context.Context) (int, error) {
	if m.CountEquipmentFunc != nil {
		return m.CountEquipmentFunc(ctx)
	}
	return 0, nil
}

// stubPicker returns scripted day values.
type stubPicker struct {
	returns []int
	calls   int
}

func (p *stubPicker) Days(min, max int) int {
	v := p.returns[p.calls%len(p.returns)]
	p.calls++
	return v
}

var testNow = time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

func newTestService(repo repository.EquipmentRepository, picker lifecycle.DayPicker) *EquipmentService {
	logger := log.New(bytes.NewBuffer(nil), "", 0) // Silent logger for tests
	return NewEquipmentServiceWithClock(repo, picker, logger, func() time.Time { return testNow })
}

func storedEquipment(id string, status model.Status) *model.Equipment {
	return &model.Equipment{
		ID:              id,
		Type:            "MRI",
		LastMaintenance: testNow.Add(-lifecycle.Day(100)),
		NextMaintenance: testNow.Add(lifecycle.Day(20)),
		Status:          status,
	}
}

func assertAppErrorCode(t *testing.T, err error, code apperrors.ErrorCode) {
	t.Helper()
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok, "expected AppError, got %v", err)
	assert.Equal(t, code, appErr.Code)
}

func TestAddEquipment_Success(t *testing.T) {
	repo := &MockEquipmentRepository{}
	picker := &stubPicker{returns: []int{40, 50}}
	svc := newTestService(repo, picker)

	equipment, err := svc.AddEquipment(context.Background(), "EQUIP0042", "Ventilator", model.StatusOperational)

	require.NoError(t, err)
	require.Len(t, repo.Created, 1)

	// Backdate 40 days, next offset 50 days from the backdated date
	assert.Equal(t, testNow.Add(-lifecycle.Day(40)), equipment.LastMaintenance)
	assert.Equal(t, testNow.Add(lifecycle.Day(10)), equipment.NextMaintenance)
	assert.Equal(t, "EQUIP0042", equipment.ID)
	assert.Equal(t, "Ventilator", equipment.Type)
	assert.Equal(t, model.StatusOperational, equipment.Status)
	assert.Equal(t, *equipment, repo.Created[0])
}

func TestAddEquipment_DateRanges(t *testing.T) {
	repo := &MockEquipmentRepository{}
	svc := newTestService(repo, lifecycle.NewDayPicker(3))

	for i := 0; i < 50; i++ {
		equipment, err := svc.AddEquipment(context.Background(), fmt.Sprintf("EQUIP%04d", i), "X-ray", model.StatusFaulty)
		require.NoError(t, err)

		backdate := lifecycle.DaysSince(equipment.LastMaintenance, testNow)
		assert.GreaterOrEqual(t, backdate, lifecycle.BackdateMinDays)
		assert.Less(t, backdate, lifecycle.BackdateMaxDays)

		offset := lifecycle.DaysSince(equipment.LastMaintenance, equipment.NextMaintenance)
		assert.GreaterOrEqual(t, offset, lifecycle.NextOffsetMinDays)
		assert.Less(t, offset, lifecycle.NextOffsetMaxDays)
	}
}

func TestAddEquipment_AlreadyExists(t *testing.T) {
	repo := &MockEquipmentRepository{
		EquipmentExistsFunc: func(ctx context.Context, id string) (bool, error) {
			return true, nil
		},
	}
	svc := newTestService(repo, &stubPicker{returns: []int{40}})

	_, err := svc.AddEquipment(context.Background(), "EQUIP0001", "MRI", model.StatusOperational)

	assertAppErrorCode(t, err, apperrors.ErrorCodeAlreadyExists)
	assert.Empty(t, repo.Created, "no write may happen after a failed existence check")
}

func TestAddEquipment_ValidationFailure(t *testing.T) {
	repo := &MockEquipmentRepository{}
	svc := newTestService(repo, &stubPicker{returns: []int{40}})

	tests := []struct {
		name   string
		id     string
		etype  string
		status model.Status
	}{
		{"empty id", "", "MRI", model.StatusOperational},
		{"bad id charset", "EQUIP 001", "MRI", model.StatusOperational},
		{"unknown type", "EQUIP0001", "Tricorder", model.StatusOperational},
		{"unknown status", "EQUIP0001", "MRI", model.Status("Broken")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.AddEquipment(context.Background(), tt.id, tt.etype, tt.status)
			assertAppErrorCode(t, err, apperrors.ErrorCodeValidation)
		})
	}

	assert.Empty(t, repo.Created)
}

func TestRequestMaintenance_Success(t *testing.T) {
	var gotStatus model.Status
	var gotNext time.Time

	repo := &MockEquipmentRepository{
		GetEquipmentByIDFunc: func(ctx context.Context, id string) (*model.Equipment, error) {
			return storedEquipment(id, model.StatusOperational), nil
		},
		UpdateMaintenanceScheduleFunc: func(ctx context.Context, id string, status model.Status, next time.Time) error {
			gotStatus = status
			gotNext = next
			return nil
		},
	}
	svc := newTestService(repo, &stubPicker{returns: []int{35}})

	equipment, err := svc.RequestMaintenance(context.Background(), "EQUIP0001")

	require.NoError(t, err)
	assert.Equal(t, model.StatusUnderMaintenance, gotStatus)
	assert.Equal(t, testNow.Add(lifecycle.Day(35)), gotNext)

	// Returned record reflects the mutation, other fields untouched
	assert.Equal(t, model.StatusUnderMaintenance, equipment.Status)
	assert.Equal(t, gotNext, equipment.NextMaintenance)
	assert.Equal(t, "MRI", equipment.Type)
	assert.Equal(t, testNow.Add(-lifecycle.Day(100)), equipment.LastMaintenance)
}

func TestRequestMaintenance_WindowBounds(t *testing.T) {
	var nexts []time.Time
	repo := &MockEquipmentRepository{
		GetEquipmentByIDFunc: func(ctx context.Context, id string) (*model.Equipment, error) {
			return storedEquipment(id, model.StatusOperational), nil
		},
		UpdateMaintenanceScheduleFunc: func(ctx context.Context, id string, status model.Status, next time.Time) error {
			nexts = append(nexts, next)
			return nil
		},
	}
	svc := newTestService(repo, lifecycle.NewDayPicker(9))

	for i := 0; i < 50; i++ {
		_, err := svc.RequestMaintenance(context.Background(), "EQUIP0001")
		require.NoError(t, err)
	}

	for _, next := range nexts {
		days := lifecycle.DaysSince(testNow, next)
		assert.GreaterOrEqual(t, days, lifecycle.RequestWindowMinDays)
		assert.Less(t, days, lifecycle.RequestWindowMaxDays)
	}
}

func TestRequestMaintenance_NotFound(t *testing.T) {
	repo := &MockEquipmentRepository{} // GetEquipmentByID defaults to not found
	svc := newTestService(repo, &stubPicker{returns: []int{35}})

	_, err := svc.RequestMaintenance(context.Background(), "EQUIP9999")

	assertAppErrorCode(t, err, apperrors.ErrorCodeNotFound)
}

func TestMarkOperational_RegardlessOfPriorStatus(t *testing.T) {
	for _, prior := range []model.Status{model.StatusUnderMaintenance, model.StatusFaulty, model.StatusOperational} {
		var gotStatus model.Status
		repo := &MockEquipmentRepository{
			GetEquipmentByIDFunc: func(ctx context.Context, id string) (*model.Equipment, error) {
				return storedEquipment(id, prior), nil
			},
			UpdateStatusFunc: func(ctx context.Context, id string, status model.Status) error {
				gotStatus = status
				return nil
			},
		}
		svc := newTestService(repo, &stubPicker{returns: []int{35}})

		equipment, err := svc.MarkOperational(context.Background(), "EQUIP0001")

		require.NoError(t, err)
		assert.Equal(t, model.StatusOperational, gotStatus)
		assert.Equal(t, model.StatusOperational, equipment.Status)
	}
}

func TestMarkOperational_NotFound(t *testing.T) {
	repo := &MockEquipmentRepository{}
	svc := newTestService(repo, &stubPicker{returns: []int{35}})

	_, err := svc.MarkOperational(context.Background(), "EQUIP9999")

	assertAppErrorCode(t, err, apperrors.ErrorCodeNotFound)
}

func TestDeleteEquipment_NotFound(t *testing.T) {
	repo := &MockEquipmentRepository{
		DeleteEquipmentFunc: func(ctx context.Context, id string) error {
			return repository.ErrEquipmentNotFound
		},
	}
	svc := newTestService(repo, &stubPicker{returns: []int{35}})

	err := svc.DeleteEquipment(context.Background(), "EQUIP9999")

	assertAppErrorCode(t, err, apperrors.ErrorCodeNotFound)
}

func TestUpdateEquipment_NotFound(t *testing.T) {
	repo := &MockEquipmentRepository{
		UpdateEquipmentFunc: func(ctx context.Context, id string, equipment model.Equipment) error {
			return repository.ErrEquipmentNotFound
		},
	}
	svc := newTestService(repo, &stubPicker{returns: []int{35}})

	_, err := svc.UpdateEquipment(context.Background(), "EQUIP9999", *storedEquipment("EQUIP9999", model.StatusFaulty))

	assertAppErrorCode(t, err, apperrors.ErrorCodeNotFound)
}

func TestSnapshot_DerivedFields(t *testing.T) {
	repo := &MockEquipmentRepository{
		GetAllEquipmentFunc: func(ctx context.Context) ([]model.Equipment, error) {
			return []model.Equipment{
				*storedEquipment("EQUIP0001", model.StatusOperational),
			}, nil
		},
	}
	svc := newTestService(repo, &stubPicker{returns: []int{35}})

	views, err := svc.Snapshot(context.Background())

	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, 100, views[0].DaysSinceLastMaintenance)
	assert.Equal(t, model.UrgencyMedium, views[0].Urgency)
}

func TestDueSoon_FiltersByHorizon(t *testing.T) {
	atHorizon := storedEquipment("EQUIP0001", model.StatusOperational)
	atHorizon.NextMaintenance = testNow.Add(lifecycle.Day(60))
	inside := storedEquipment("EQUIP0002", model.StatusOperational)
	inside.NextMaintenance = testNow.Add(lifecycle.Day(59))

	repo := &MockEquipmentRepository{
		GetAllEquipmentFunc: func(ctx context.Context) ([]model.Equipment, error) {
			return []model.Equipment{*atHorizon, *inside}, nil
		},
	}
	svc := newTestService(repo, &stubPicker{returns: []int{35}})

	due, err := svc.DueSoon(context.Background(), 60)

	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.Equal(t, "EQUIP0002", due[0].ID)
}

func TestGetDistributions(t *testing.T) {
	repo := &MockEquipmentRepository{
		GetAllEquipmentFunc: func(ctx context.Context) ([]model.Equipment, error) {
			high := storedEquipment("EQUIP0001", model.StatusFaulty)
			high.LastMaintenance = testNow.Add(-lifecycle.Day(200))
			low := storedEquipment("EQUIP0002", model.StatusOperational)
			low.LastMaintenance = testNow.Add(-lifecycle.Day(10))
			return []model.Equipment{*high, *low}, nil
		},
	}
	svc := newTestService(repo, &stubPicker{returns: []int{35}})

	distributions, err := svc.GetDistributions(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, distributions.Status[model.StatusFaulty])
	assert.Equal(t, 1, distributions.Status[model.StatusOperational])
	assert.Equal(t, 1, distributions.Urgency[model.UrgencyHigh])
	assert.Equal(t, 1, distributions.Urgency[model.UrgencyLow])
}

func TestSeedIfEmpty_PopulatesEmptyStore(t *testing.T) {
	repo := &MockEquipmentRepository{
		CountEquipmentFunc: func(ctx context.Context) (int, error) { return 0, nil },
	}
	svc := newTestService(repo, lifecycle.NewDayPicker(42))

	seeded, err := svc.SeedIfEmpty(context.Background(), 30)

	require.NoError(t, err)
	assert.Equal(t, 30, seeded)
	require.Len(t, repo.Created, 30)

	assert.Equal(t, "EQUIP0001", repo.Created[0].ID)
	assert.Equal(t, "EQUIP0030", repo.Created[29].ID)

	for _, e := range repo.Created {
		assert.True(t, model.IsValidEquipmentType(e.Type))
		assert.True(t, model.IsValidStatus(e.Status))
		backdate := lifecycle.DaysSince(e.LastMaintenance, testNow)
		assert.GreaterOrEqual(t, backdate, lifecycle.BackdateMinDays)
		assert.Less(t, backdate, lifecycle.BackdateMaxDays)
	}
}

func TestSeedIfEmpty_SkipsNonEmptyStore(t *testing.T) {
	repo := &MockEquipmentRepository{
		CountEquipmentFunc: func(ctx context.Context) (int, error) { return 5, nil },
	}
	svc := newTestService(repo, lifecycle.NewDayPicker(42))

	seeded, err := svc.SeedIfEmpty(context.Background(), 30)

	require.NoError(t, err)
	assert.Zero(t, seeded)
	assert.Empty(t, repo.Created)
}
