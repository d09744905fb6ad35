package models

import "time"

// TripStatus is the derived state of a trip record.
type TripStatus string

const (
	StatusPending   TripStatus = "pending"
	StatusCompleted TripStatus = "completed"
)

// Vehicle represents a fleet vehicle as served by the upstream API.
type Vehicle struct {
	ID        int64     `json:"id"`
	Make      string    `json:"make"`
	Model     string    `json:"model"`
	Plate     string    `json:"plate"`
	Enabled   bool      `json:"enabled"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// VehicleInput carries the caller-supplied attributes of a vehicle.
// Server-assigned fields (id, timestamps) are never part of it.
type VehicleInput struct {
	Make    string `json:"make"`
	Model   string `json:"model"`
	Plate   string `json:"plate"`
	Enabled bool   `json:"enabled"`
}

// VehiclePatch is a partial vehicle update. Nil fields are left untouched.
type VehiclePatch struct {
	Make    *string `json:"make,omitempty"`
	Model   *string `json:"model,omitempty"`
	Plate   *string `json:"plate,omitempty"`
	Enabled *bool   `json:"enabled,omitempty"`
}

// Apply merges the patch into a vehicle.
func (p VehiclePatch) Apply(v *Vehicle) {
	if p.Make != nil {
		v.Make = *p.Make
	}
	if p.Model != nil {
		v.Model = *p.Model
	}
	if p.Plate != nil {
		v.Plate = *p.Plate
	}
	if p.Enabled != nil {
		v.Enabled = *p.Enabled
	}
}

// CheckoutEvent records the start of a trip. It exists independently of any
// check-in; the vehicle's display model is denormalized onto it so trip views
// do not need the vehicle collection.
type CheckoutEvent struct {
	ID                int64    `json:"id"`
	VehicleID         int64    `json:"vehicle_id"`
	DriverName        string   `json:"driver_name"`
	VehicleModel      string   `json:"vehicle_model"`
	DepartureDate     string   `json:"departure_date"`
	DepartureTime     string   `json:"departure_time"`
	DepartureOdometer *float64 `json:"departure_odometer,omitempty"`
}

// CheckoutInput carries the caller-supplied attributes of a checkout event.
type CheckoutInput struct {
	VehicleID         int64    `json:"vehicle_id"`
	DriverName        string   `json:"driver_name"`
	VehicleModel      string   `json:"vehicle_model"`
	DepartureDate     string   `json:"departure_date"`
	DepartureTime     string   `json:"departure_time"`
	DepartureOdometer *float64 `json:"departure_odometer,omitempty"`
}

// CheckInEvent closes a trip. At most one exists per checkout event.
type CheckInEvent struct {
	ID              int64    `json:"id"`
	CheckoutEventID int64    `json:"checkout_event_id"`
	ArrivalDate     string   `json:"arrival_date"`
	ArrivalTime     string   `json:"arrival_time"`
	ArrivalOdometer *float64 `json:"arrival_odometer,omitempty"`
}

// CheckInInput carries the caller-supplied attributes of a check-in event.
type CheckInInput struct {
	CheckoutEventID int64    `json:"checkout_event_id"`
	ArrivalDate     string   `json:"arrival_date"`
	ArrivalTime     string   `json:"arrival_time"`
	ArrivalOdometer *float64 `json:"arrival_odometer,omitempty"`
}

// TripRecord is the read-only merge of a checkout event with its matching
// check-in, if any. Its identity is the checkout event's id. It is derived
// from the two source collections on every fetch and never mutated directly.
type TripRecord struct {
	ID                int64      `json:"id"`
	DriverName        string     `json:"driver_name"`
	VehicleModel      string     `json:"vehicle_model"`
	DepartureDate     string     `json:"departure_date"`
	DepartureTime     string     `json:"departure_time"`
	DepartureOdometer *float64   `json:"departure_odometer,omitempty"`
	ArrivalDate       *string    `json:"arrival_date"`
	ArrivalTime       *string    `json:"arrival_time"`
	ArrivalOdometer   *float64   `json:"arrival_odometer,omitempty"`
	Status            TripStatus `json:"status"`
}
