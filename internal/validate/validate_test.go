package validate

import (
	"testing"

	"example.com/fleetcontrol/internal/models"

	"github.com/stretchr/testify/require"
)

func TestNormalizePlate(t *testing.T) {
	require.Equal(t, "ABC1234", NormalizePlate("  abc1234 "))
	require.Equal(t, "XYZ0001", NormalizePlate("xyz0001"))
	require.Equal(t, "", NormalizePlate("   "))
}

func TestValidPlateFormat(t *testing.T) {
	cases := []struct {
		plate string
		valid bool
	}{
		{"ABC1234", true},
		{"abc1234", true}, // case-insensitive, normalized first
		{" abc1234 ", true},
		{"AB1234", false},  // only 2 letters
		{"ABCD123", false}, // 4 letters
		{"ABC123", false},  // only 3 digits
		{"ABC12345", false},
		{"1234ABC", false},
		{"", false},
	}

	for _, tc := range cases {
		require.Equal(t, tc.valid, ValidPlateFormat(tc.plate), "plate %q", tc.plate)
	}
}

func TestPlateUnique(t *testing.T) {
	vehicles := []models.Vehicle{
		{ID: 1, Plate: "ABC1234"},
		{ID: 2, Plate: "DEF5678"},
	}

	// Another vehicle holds the plate
	require.False(t, PlateUnique("ABC1234", vehicles, 0))
	// Matching is on the normalized plate
	require.False(t, PlateUnique(" abc1234 ", vehicles, 0))
	// Only the excluded vehicle holds the plate: editing does not flag itself
	require.True(t, PlateUnique("ABC1234", vehicles, 1))
	// Excluding one vehicle does not hide another holder
	require.False(t, PlateUnique("DEF5678", vehicles, 1))
	// Unclaimed plate
	require.True(t, PlateUnique("GHI9999", vehicles, 0))
	// Empty collection
	require.True(t, PlateUnique("ABC1234", nil, 0))
}

func TestRequiredFields(t *testing.T) {
	missing := RequiredFields(map[string]string{
		"make":  "Toyota",
		"model": "   ",
		"plate": "",
	})
	require.Equal(t, []string{"model", "plate"}, missing)

	require.Empty(t, RequiredFields(map[string]string{"make": "Toyota"}))
	require.Empty(t, RequiredFields(nil))
}

func TestVehicle(t *testing.T) {
	loaded := []models.Vehicle{{ID: 7, Plate: "AAA1111"}}

	// Valid submission
	err := Vehicle(models.VehicleInput{Make: "Toyota", Model: "Hilux", Plate: "BBB2222"}, loaded, 0)
	require.NoError(t, err)

	// Missing fields are reported by name
	err = Vehicle(models.VehicleInput{Plate: "BBB2222"}, loaded, 0)
	var vErr *Error
	require.ErrorAs(t, err, &vErr)
	require.Equal(t, []string{"make", "model"}, vErr.Fields)

	// Bad plate format
	err = Vehicle(models.VehicleInput{Make: "Toyota", Model: "Hilux", Plate: "B2"}, loaded, 0)
	require.ErrorAs(t, err, &vErr)
	require.Equal(t, []string{"plate"}, vErr.Fields)

	// Duplicate plate against the loaded collection
	err = Vehicle(models.VehicleInput{Make: "Toyota", Model: "Hilux", Plate: "aaa1111"}, loaded, 0)
	require.Error(t, err)

	// Same plate on the record being edited is allowed
	err = Vehicle(models.VehicleInput{Make: "Toyota", Model: "Hilux", Plate: "AAA1111"}, loaded, 7)
	require.NoError(t, err)
}
