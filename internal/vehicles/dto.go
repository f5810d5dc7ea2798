package vehicles

// Telemetry bounds are enforced uniformly on every write path: create, full
// update and location update all go through the same validator tags.

// CreateVehicleRequest is the parsed body of POST /api/vehicles.
type CreateVehicleRequest struct {
	Name      string  `json:"name" validate:"required,max=200"`
	Status    Status  `json:"status" validate:"omitempty,oneof=ACTIVE INACTIVE"`
	FuelLevel float64 `json:"fuel_level" validate:"gte=0,lte=100"`
	Odometer  float64 `json:"odometer" validate:"gte=0"`
	Latitude  float64 `json:"latitude" validate:"gte=-90,lte=90"`
	Longitude float64 `json:"longitude" validate:"gte=-180,lte=180"`
	Speed     float64 `json:"speed" validate:"gte=0"`
}

// UpdateVehicleRequest is the parsed body of PUT /api/vehicles/{id}.
// Absent fields keep their stored values.
type UpdateVehicleRequest struct {
	Name      *string  `json:"name,omitempty" validate:"omitempty,min=1,max=200"`
	Status    *Status  `json:"status,omitempty" validate:"omitempty,oneof=ACTIVE INACTIVE"`
	FuelLevel *float64 `json:"fuel_level,omitempty" validate:"omitempty,gte=0,lte=100"`
	Odometer  *float64 `json:"odometer,omitempty" validate:"omitempty,gte=0"`
	Latitude  *float64 `json:"latitude,omitempty" validate:"omitempty,gte=-90,lte=90"`
	Longitude *float64 `json:"longitude,omitempty" validate:"omitempty,gte=-180,lte=180"`
	Speed     *float64 `json:"speed,omitempty" validate:"omitempty,gte=0"`
}

// UpdateLocationRequest is the parsed body of PUT /api/vehicles/{id}/location,
// the narrow endpoint telemetry agents post to.
type UpdateLocationRequest struct {
	Latitude  *float64 `json:"latitude,omitempty" validate:"omitempty,gte=-90,lte=90"`
	Longitude *float64 `json:"longitude,omitempty" validate:"omitempty,gte=-180,lte=180"`
	Speed     *float64 `json:"speed,omitempty" validate:"omitempty,gte=0"`
	FuelLevel *float64 `json:"fuel_level,omitempty" validate:"omitempty,gte=0,lte=100"`
}
