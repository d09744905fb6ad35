// Package validate holds the pure record validators applied before any
// remote call is attempted. A failed validation never reaches the network.
package validate

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"example.com/fleetcontrol/internal/models"
)

// Plates are exactly 3 letters followed by 4 digits, e.g. ABC1234.
var plateRE = regexp.MustCompile(`^[A-Z]{3}[0-9]{4}$`)

// Error reports a failed local precondition, naming the offending fields.
type Error struct {
	Fields  []string
	Message string
}

func (e *Error) Error() string {
	if len(e.Fields) > 0 {
		return fmt.Sprintf("%s: %s", e.Message, strings.Join(e.Fields, ", "))
	}
	return e.Message
}

// NormalizePlate trims surrounding whitespace and uppercases a raw plate.
func NormalizePlate(raw string) string {
	return strings.ToUpper(strings.TrimSpace(raw))
}

// ValidPlateFormat reports whether the plate, after normalization, is three
// letters followed by four digits.
func ValidPlateFormat(plate string) bool {
	return plateRE.MatchString(NormalizePlate(plate))
}

// PlateUnique reports whether no vehicle in the collection carries the same
// normalized plate. The vehicle with excludeID is ignored so that editing a
// record does not flag itself as a duplicate; pass 0 when creating.
func PlateUnique(plate string, vehicles []models.Vehicle, excludeID int64) bool {
	normalized := NormalizePlate(plate)
	for _, v := range vehicles {
		if v.ID == excludeID {
			continue
		}
		if NormalizePlate(v.Plate) == normalized {
			return false
		}
	}
	return true
}

// RequiredFields returns the names of fields whose values are empty or
// whitespace-only, in stable order.
func RequiredFields(fields map[string]string) []string {
	var missing []string
	for name, value := range fields {
		if strings.TrimSpace(value) == "" {
			missing = append(missing, name)
		}
	}
	sort.Strings(missing)
	return missing
}

// Vehicle validates a vehicle submission against the currently loaded
// collection. The uniqueness check is a user-experience guard only; the
// server remains the authority and may still reject duplicates.
func Vehicle(input models.VehicleInput, loaded []models.Vehicle, excludeID int64) error {
	if missing := RequiredFields(map[string]string{
		"make":  input.Make,
		"model": input.Model,
		"plate": input.Plate,
	}); len(missing) > 0 {
		return &Error{Fields: missing, Message: "missing required fields"}
	}
	if !ValidPlateFormat(input.Plate) {
		return &Error{Fields: []string{"plate"}, Message: "plate must be 3 letters followed by 4 digits"}
	}
	if !PlateUnique(input.Plate, loaded, excludeID) {
		return &Error{Fields: []string{"plate"}, Message: fmt.Sprintf("plate %s is already registered", NormalizePlate(input.Plate))}
	}
	return nil
}
