package model

import (
	"time"
)

// Status represents the operational state of a piece of equipment.
type Status string

const (
	StatusOperational      Status = "Operational"
	StatusUnderMaintenance Status = "Under Maintenance"
	StatusFaulty           Status = "Faulty"
)

// Statuses lists every valid equipment status.
var Statuses = []Status{
	StatusOperational,
	StatusUnderMaintenance,
	StatusFaulty,
}

// IsValidStatus reports whether s is one of the known statuses.
func IsValidStatus(s Status) bool {
	for _, known := range Statuses {
		if s == known {
			return true
		}
	}
	return false
}

// EquipmentTypes is the catalogue of equipment categories tracked by the system.
var EquipmentTypes = []string{
	"X-ray",
	"MRI",
	"CT Scan",
	"Ultrasound",
	"Ventilator",
	"ECG machine",
	"EEG machine",
	"EMG machine",
	"Blood Gas Analyzer",
	"Defibrillator",
	"Hospital Bed",
}

// IsValidEquipmentType reports whether t is in the equipment type catalogue.
func IsValidEquipmentType(t string) bool {
	for _, known := range EquipmentTypes {
		if t == known {
			return true
		}
	}
	return false
}

// Equipment represents a persisted piece of hospital equipment.
// ID is the primary key and is immutable after creation.
type Equipment struct {
	ID              string    `json:"id"`
	Type            string    `json:"type"`
	LastMaintenance time.Time `json:"last_maintenance"`
	NextMaintenance time.Time `json:"next_maintenance"`
	Status          Status    `json:"status"`
}

// Urgency is the derived maintenance urgency label. It is computed from the
// days elapsed since the last maintenance and is never stored.
type Urgency string

const (
	UrgencyHigh   Urgency = "High"
	UrgencyMedium Urgency = "Medium"
	UrgencyLow    Urgency = "Low"
)

// EquipmentView is an Equipment record decorated with derived display fields.
type EquipmentView struct {
	Equipment
	DaysSinceLastMaintenance int     `json:"days_since_last_maintenance"`
	Urgency                  Urgency `json:"urgency"`
}
