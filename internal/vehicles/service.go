package vehicles

import (
	"context"
	"fmt"

	"golang.org/x/sync/singleflight"
)

// Service wraps vehicle business rules over the repository and the listing
// cache. Bounds checking happens in the handler's DTO validation; by the time
// a request reaches the service its values are in range.
type Service struct {
	repo  Repository
	cache *Cache
	group singleflight.Group
}

// NewService constructs a new Service.
func NewService(repo Repository, cache *Cache) *Service {
	return &Service{repo: repo, cache: cache}
}

// Get fetches a single vehicle.
func (s *Service) Get(ctx context.Context, id int64) (*Vehicle, error) {
	return s.repo.Get(ctx, id)
}

// List returns all vehicles, serving from the cache when warm. Concurrent
// misses for the same key collapse into a single repository query.
func (s *Service) List(ctx context.Context) ([]Vehicle, error) {
	key, err := s.cache.BuildKey(ctx, "list")
	if err != nil {
		// Cache trouble must not take down reads.
		return s.repo.List(ctx)
	}
	result, err, _ := s.group.Do(key, func() (any, error) {
		var out []Vehicle
		err := s.cache.FetchJSON(ctx, key, &out, func(ctx context.Context) (any, error) {
			return s.repo.List(ctx)
		})
		return out, err
	})
	if err != nil {
		return s.repo.List(ctx)
	}
	return result.([]Vehicle), nil
}

// Create inserts a vehicle, defaulting status to ACTIVE.
func (s *Service) Create(ctx context.Context, req CreateVehicleRequest) (*Vehicle, error) {
	status := req.Status
	if status == "" {
		status = StatusActive
	}
	created, err := s.repo.Create(ctx, Vehicle{
		Name:      req.Name,
		Status:    status,
		FuelLevel: req.FuelLevel,
		Odometer:  req.Odometer,
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
		Speed:     req.Speed,
	})
	if err != nil {
		return nil, fmt.Errorf("vehicles: create: %w", err)
	}
	s.invalidate(ctx)
	return created, nil
}

// Update applies a partial update.
func (s *Service) Update(ctx context.Context, id int64, req UpdateVehicleRequest) (*Vehicle, error) {
	updates := make(map[string]any)
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Status != nil {
		updates["status"] = *req.Status
	}
	if req.FuelLevel != nil {
		updates["fuel_level"] = *req.FuelLevel
	}
	if req.Odometer != nil {
		updates["odometer"] = *req.Odometer
	}
	if req.Latitude != nil {
		updates["latitude"] = *req.Latitude
	}
	if req.Longitude != nil {
		updates["longitude"] = *req.Longitude
	}
	if req.Speed != nil {
		updates["speed"] = *req.Speed
	}
	if len(updates) == 0 {
		return s.repo.Get(ctx, id)
	}

	updated, err := s.repo.Update(ctx, id, updates)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return updated, nil
}

// UpdateLocation applies a telemetry ping: position, speed and fuel.
func (s *Service) UpdateLocation(ctx context.Context, id int64, req UpdateLocationRequest) (*Vehicle, error) {
	updates := make(map[string]any)
	if req.Latitude != nil {
		updates["latitude"] = *req.Latitude
	}
	if req.Longitude != nil {
		updates["longitude"] = *req.Longitude
	}
	if req.Speed != nil {
		updates["speed"] = *req.Speed
	}
	if req.FuelLevel != nil {
		updates["fuel_level"] = *req.FuelLevel
	}
	if len(updates) == 0 {
		return s.repo.Get(ctx, id)
	}

	updated, err := s.repo.Update(ctx, id, updates)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return updated, nil
}

// Delete removes a vehicle.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

func (s *Service) invalidate(ctx context.Context) {
	// Best effort: a failed bump only means one TTL window of staleness.
	_ = s.cache.Bump(ctx)
}
