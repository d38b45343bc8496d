package handler

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"equipment-maintenance-api/internal/lifecycle"
	"equipment-maintenance-api/internal/model"
	"equipment-maintenance-api/internal/repository"
	"equipment-maintenance-api/internal/service"
)

// Constants for request timeouts.
const (
	DefaultTimeout     = 10 * time.Second
	LongRunningTimeout = 15 * time.Second
)

// ErrorResponse structure for consistent JSON error responses.
type ErrorResponse struct {
	Error   string            `json:"error"`
	Code    string            `json:"code,omitempty"`
	Details map[string]string `json:"details,omitempty"`
}

// SuccessResponse structure for consistent JSON success responses.
type SuccessResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// Service is the contract the handlers need from the equipment service.
type Service interface {
	Snapshot(ctx context.Context) ([]model.EquipmentView, error)
	SnapshotPaginated(ctx context.Context, params repository.PaginationParams) (*service.PaginatedViewResult, error)
	GetEquipment(ctx context.Context, id string) (*model.EquipmentView, error)
	DueSoon(ctx context.Context, horizonDays int) ([]model.EquipmentView, error)
	GetDistributions(ctx context.Context) (*service.Distributions, error)
	AddEquipment(ctx context.Context, id, equipmentType string, status model.Status) (*model.Equipment, error)
	RequestMaintenance(ctx context.Context, id string) (*model.Equipment, error)
	MarkOperational(ctx context.Context, id string) (*model.Equipment, error)
	UpdateEquipment(ctx context.Context, id string, equipment model.Equipment) (*model.Equipment, error)
	DeleteEquipment(ctx context.Context, id string) error
}

// AddEquipmentRequest is the payload of the add-equipment form.
type AddEquipmentRequest struct {
	ID     string       `json:"id"`
	Type   string       `json:"type"`
	Status model.Status `json:"status"`
}

// EquipmentHandler handles the HTTP requests for equipment.
type EquipmentHandler struct {
	Service            Service
	Logger             *log.Logger
	DueSoonHorizonDays int

	// Helper components for cleaner code organization
	ErrorHandler   *ErrorHandler
	ResponseHelper *ResponseHelper
}

// NewEquipmentHandler creates a new EquipmentHandler with dependencies and helpers.
func NewEquipmentHandler(svc Service, logger *log.Logger, dueSoonHorizonDays int) *EquipmentHandler {
	if logger == nil {
		logger = log.Default()
	}
	if dueSoonHorizonDays <= 0 {
		dueSoonHorizonDays = lifecycle.DefaultDueSoonHorizonDays
	}

	return &EquipmentHandler{
		Service:            svc,
		Logger:             logger,
		DueSoonHorizonDays: dueSoonHorizonDays,
		ErrorHandler:       NewErrorHandler(logger),
		ResponseHelper:     NewResponseHelper(),
	}
}

// AddEquipmentHandler handles the creation of a new equipment record.
func (h *EquipmentHandler) AddEquipmentHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.ResponseHelper.CreateRequestContext(r, DefaultTimeout)
	defer cancel()

	var req AddEquipmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.ErrorHandler.HandleJSONDecodeError(w, err)
		return
	}

	equipment, err := h.Service.AddEquipment(ctx, req.ID, req.Type, req.Status)
	if err != nil {
		h.ErrorHandler.HandleServiceError(w, err, "add equipment")
		return
	}

	h.ErrorHandler.SendSuccessResponse(w, http.StatusCreated, "Equipment added successfully", equipment)
}

// GetAllEquipmentHandler handles the retrieval of the equipment snapshot with
// derived urgency columns, paginated.
func (h *EquipmentHandler) GetAllEquipmentHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.ResponseHelper.CreateRequestContext(r, LongRunningTimeout)
	defer cancel()

	paginationParams := h.ResponseHelper.ParsePaginationParams(r)

	result, err := h.Service.SnapshotPaginated(ctx, repository.PaginationParams{
		Offset: paginationParams.Offset,
		Limit:  paginationParams.Limit,
	})
	if err != nil {
		h.ErrorHandler.HandleServiceError(w, err, "retrieve equipment")
		return
	}

	paginationMeta := h.ResponseHelper.CalculatePaginationMeta(paginationParams, result.TotalCount)

	responseData := h.ResponseHelper.CreatePaginatedListResponseData(result.Items, paginationMeta, map[string]interface{}{
		"equipment": result.Items,
	})
	delete(responseData, "items") // Remove generic "items" key since we have "equipment"

	h.ErrorHandler.SendJSONResponse(w, http.StatusOK, responseData)
}

// GetEquipmentHandler handles the retrieval of a single equipment record by ID.
func (h *EquipmentHandler) GetEquipmentHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.ResponseHelper.CreateRequestContext(r, DefaultTimeout)
	defer cancel()

	id := mux.Vars(r)["id"]
	if !h.ErrorHandler.RequireEquipmentID(w, id) {
		return
	}

	equipment, err := h.Service.GetEquipment(ctx, id)
	if err != nil {
		h.ErrorHandler.HandleServiceError(w, err, "retrieve equipment")
		return
	}

	h.ErrorHandler.SendJSONResponse(w, http.StatusOK, equipment)
}

// GetDueSoonHandler returns the records whose next maintenance falls within
// the horizon (default from configuration, overridable with ?days=).
func (h *EquipmentHandler) GetDueSoonHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.ResponseHelper.CreateRequestContext(r, LongRunningTimeout)
	defer cancel()

	horizonDays := h.ResponseHelper.ParseHorizonDays(r, h.DueSoonHorizonDays)

	due, err := h.Service.DueSoon(ctx, horizonDays)
	if err != nil {
		h.ErrorHandler.HandleServiceError(w, err, "retrieve due-soon equipment")
		return
	}

	responseData := h.ResponseHelper.CreateListResponseData(due, len(due), map[string]interface{}{
		"horizon_days": horizonDays,
		"equipment":    due,
	})
	delete(responseData, "items")

	h.ErrorHandler.SendJSONResponse(w, http.StatusOK, responseData)
}

// GetStatsHandler returns the status and urgency distributions used by the
// dashboard charts.
func (h *EquipmentHandler) GetStatsHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.ResponseHelper.CreateRequestContext(r, LongRunningTimeout)
	defer cancel()

	distributions, err := h.Service.GetDistributions(ctx)
	if err != nil {
		h.ErrorHandler.HandleServiceError(w, err, "retrieve equipment statistics")
		return
	}

	h.ErrorHandler.SendJSONResponse(w, http.StatusOK, distributions)
}

// RequestMaintenanceHandler marks the equipment as under maintenance and
// schedules the next maintenance date. Returns the updated record.
func (h *EquipmentHandler) RequestMaintenanceHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.ResponseHelper.CreateRequestContext(r, DefaultTimeout)
	defer cancel()

	id := mux.Vars(r)["id"]
	if !h.ErrorHandler.RequireEquipmentID(w, id) {
		return
	}

	equipment, err := h.Service.RequestMaintenance(ctx, id)
	if err != nil {
		h.ErrorHandler.HandleServiceError(w, err, "request maintenance")
		return
	}

	h.ErrorHandler.SendSuccessResponse(w, http.StatusOK, "Maintenance requested successfully", equipment)
}

// MarkOperationalHandler sets the equipment status back to Operational.
func (h *EquipmentHandler) MarkOperationalHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.ResponseHelper.CreateRequestContext(r, DefaultTimeout)
	defer cancel()

	id := mux.Vars(r)["id"]
	if !h.ErrorHandler.RequireEquipmentID(w, id) {
		return
	}

	equipment, err := h.Service.MarkOperational(ctx, id)
	if err != nil {
		h.ErrorHandler.HandleServiceError(w, err, "mark equipment operational")
		return
	}

	h.ErrorHandler.SendSuccessResponse(w, http.StatusOK, "Equipment marked operational", equipment)
}

// UpdateEquipmentHandler handles the update of an equipment record.
func (h *EquipmentHandler) UpdateEquipmentHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.ResponseHelper.CreateRequestContext(r, DefaultTimeout)
	defer cancel()

	id := mux.Vars(r)["id"]
	if !h.ErrorHandler.RequireEquipmentID(w, id) {
		return
	}

	var equipment model.Equipment
	if err := json.NewDecoder(r.Body).Decode(&equipment); err != nil {
		h.ErrorHandler.HandleJSONDecodeError(w, err)
		return
	}

	updated, err := h.Service.UpdateEquipment(ctx, id, equipment)
	if err != nil {
		h.ErrorHandler.HandleServiceError(w, err, "update equipment")
		return
	}

	h.ErrorHandler.SendSuccessResponse(w, http.StatusOK, "Equipment updated successfully", updated)
}

// DeleteEquipmentHandler handles the deletion of an equipment record.
func (h *EquipmentHandler) DeleteEquipmentHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.ResponseHelper.CreateRequestContext(r, DefaultTimeout)
	defer cancel()

	id := mux.Vars(r)["id"]
	if !h.ErrorHandler.RequireEquipmentID(w, id) {
		return
	}

	if err := h.Service.DeleteEquipment(ctx, id); err != nil {
		h.ErrorHandler.HandleServiceError(w, err, "delete equipment")
		return
	}

	h.ErrorHandler.SendSuccessResponse(w, http.StatusOK, "Equipment deleted successfully", map[string]interface{}{
		"id": id,
	})
}

// HealthHandler provides a health check endpoint.
func (h *EquipmentHandler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	healthData := h.ResponseHelper.CreateHealthCheckData()
	h.ErrorHandler.SendSuccessResponse(w, http.StatusOK, "Service is healthy", healthData)
}
