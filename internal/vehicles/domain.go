package vehicles

import "time"

// Status marks whether a vehicle is currently in service.
type Status string

const (
	StatusActive   Status = "ACTIVE"
	StatusInactive Status = "INACTIVE"
)

// Valid reports whether the status is a known value.
func (s Status) Valid() bool {
	return s == StatusActive || s == StatusInactive
}

// Vehicle is a tracked fleet vehicle. Telemetry fields hold the last
// reported values; updated_at is bumped on every write.
type Vehicle struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Status    Status    `json:"status"`
	FuelLevel float64   `json:"fuel_level"`
	Odometer  float64   `json:"odometer"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	Speed     float64   `json:"speed"`
	UpdatedAt time.Time `json:"updated_at"`
}
