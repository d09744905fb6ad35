// Package upstream is a development implementation of the remote fleet API
// the client core reconciles against: resource endpoints for vehicles,
// checkout events and check-in events with plain CRUD semantics, backed by
// Postgres. The core never imports it; it exists so the whole system can run
// locally.
package upstream

import "time"

// Vehicle is the persisted vehicle record. The JSON shape matches what the
// client models expect on the wire.
type Vehicle struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Make      string    `gorm:"not null" json:"make"`
	Model     string    `gorm:"not null" json:"model"`
	Plate     string    `gorm:"not null;uniqueIndex" json:"plate"`
	Enabled   bool      `gorm:"not null;default:true" json:"enabled"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// CheckoutEvent is the persisted start-of-trip record.
type CheckoutEvent struct {
	ID                int64    `gorm:"primaryKey;autoIncrement" json:"id"`
	VehicleID         int64    `gorm:"index;not null" json:"vehicle_id"`
	DriverName        string   `gorm:"not null" json:"driver_name"`
	VehicleModel      string   `json:"vehicle_model"`
	DepartureDate     string   `gorm:"not null" json:"departure_date"`
	DepartureTime     string   `gorm:"not null" json:"departure_time"`
	DepartureOdometer *float64 `json:"departure_odometer,omitempty"`
}

// CheckInEvent is the persisted end-of-trip record; at most one per checkout.
type CheckInEvent struct {
	ID              int64    `gorm:"primaryKey;autoIncrement" json:"id"`
	CheckoutEventID int64    `gorm:"uniqueIndex;not null" json:"checkout_event_id"`
	ArrivalDate     string   `gorm:"not null" json:"arrival_date"`
	ArrivalTime     string   `gorm:"not null" json:"arrival_time"`
	ArrivalOdometer *float64 `json:"arrival_odometer,omitempty"`
}
