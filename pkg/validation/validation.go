package validation

import (
	"fmt"
	"regexp"
	"strings"

	"equipment-maintenance-api/internal/model"
)

// Equipment ID validation constants.
const (
	MaxEquipmentIDLength = 64
)

var equipmentIDPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// ValidateEquipmentID validates an equipment identifier.
func ValidateEquipmentID(id string) error {
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("equipment ID is required")
	}

	if len(id) > MaxEquipmentIDLength {
		return fmt.Errorf("equipment ID cannot exceed %d characters", MaxEquipmentIDLength)
	}

	if !equipmentIDPattern.MatchString(id) {
		return fmt.Errorf("equipment ID can only contain letters, digits, hyphens and underscores")
	}

	return nil
}

// ValidateEquipmentType validates that the type is in the catalogue.
func ValidateEquipmentType(equipmentType string) error {
	if equipmentType == "" {
		return fmt.Errorf("equipment type is required")
	}

	if !model.IsValidEquipmentType(equipmentType) {
		return fmt.Errorf("unknown equipment type: %s", equipmentType)
	}

	return nil
}

// ValidateStatus validates that the status is one of the enumerated values.
func ValidateStatus(status model.Status) error {
	if status == "" {
		return fmt.Errorf("status is required")
	}

	if !model.IsValidStatus(status) {
		return fmt.Errorf("unknown status: %s", status)
	}

	return nil
}

// ValidateRequired checks if a string field is not empty.
func ValidateRequired(fieldName, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%s is required", fieldName)
	}
	return nil
}

// ValidateAddEquipmentInput validates all fields supplied by the add form.
func ValidateAddEquipmentInput(id, equipmentType string, status model.Status) []string {
	var errors []string

	if err := ValidateEquipmentID(id); err != nil {
		errors = append(errors, err.Error())
	}

	if err := ValidateEquipmentType(equipmentType); err != nil {
		errors = append(errors, err.Error())
	}

	if err := ValidateStatus(status); err != nil {
		errors = append(errors, err.Error())
	}

	return errors
}
