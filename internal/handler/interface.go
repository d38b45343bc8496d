package handler

import (
	"net/http"
)

// EquipmentHandlerInterface defines the contract for equipment HTTP handlers.
// This interface enables easy testing, mocking, and dependency injection.
type EquipmentHandlerInterface interface {
	// Equipment CRUD operations
	AddEquipmentHandler(w http.ResponseWriter, r *http.Request)
	GetAllEquipmentHandler(w http.ResponseWriter, r *http.Request)
	GetEquipmentHandler(w http.ResponseWriter, r *http.Request)
	UpdateEquipmentHandler(w http.ResponseWriter, r *http.Request)
	DeleteEquipmentHandler(w http.ResponseWriter, r *http.Request)

	// Lifecycle actions
	RequestMaintenanceHandler(w http.ResponseWriter, r *http.Request)
	MarkOperationalHandler(w http.ResponseWriter, r *http.Request)

	// Derived views
	GetDueSoonHandler(w http.ResponseWriter, r *http.Request)
	GetStatsHandler(w http.ResponseWriter, r *http.Request)

	// Health and monitoring
	HealthHandler(w http.ResponseWriter, r *http.Request)
}

// Ensure EquipmentHandler implements EquipmentHandlerInterface at compile time
var _ EquipmentHandlerInterface = (*EquipmentHandler)(nil)
