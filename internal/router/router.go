package router

import (
	"github.com/gorilla/mux"

	"equipment-maintenance-api/internal/config"
	"equipment-maintenance-api/internal/handler"
	"equipment-maintenance-api/internal/middleware"
)

// NewRouter creates a new router and sets up the routes with security middleware.
func NewRouter(h handler.EquipmentHandlerInterface, cfg *config.Config) *mux.Router {
	r := mux.NewRouter()

	// Initialize security middleware
	securityMW := middleware.NewSecurityMiddleware(&cfg.Security)

	// Apply global middleware in order
	r.Use(securityMW.SecurityHeaders)
	r.Use(securityMW.CORS)
	r.Use(securityMW.TrustedProxy)
	r.Use(securityMW.RateLimit)
	r.Use(securityMW.RequestTimeout)

	api := r.PathPrefix("/api/v1").Subrouter()

	// Derived views, registered ahead of the {id} routes
	api.HandleFunc("/equipment/due-soon", h.GetDueSoonHandler).Methods("GET")
	api.HandleFunc("/equipment/stats", h.GetStatsHandler).Methods("GET")

	// Equipment CRUD operations
	api.HandleFunc("/equipment", h.AddEquipmentHandler).Methods("POST")
	api.HandleFunc("/equipment", h.GetAllEquipmentHandler).Methods("GET")
	api.HandleFunc("/equipment/{id}", h.GetEquipmentHandler).Methods("GET")
	api.HandleFunc("/equipment/{id}", h.UpdateEquipmentHandler).Methods("PUT")
	api.HandleFunc("/equipment/{id}", h.DeleteEquipmentHandler).Methods("DELETE")

	// Lifecycle actions
	api.HandleFunc("/equipment/{id}/maintenance-request", h.RequestMaintenanceHandler).Methods("POST")
	api.HandleFunc("/equipment/{id}/operational", h.MarkOperationalHandler).Methods("POST")

	// Health check
	api.HandleFunc("/health", h.HealthHandler).Methods("GET")

	return r
}
