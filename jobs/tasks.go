// Package jobs defines the background task types and the Asynq worker that
// processes them.
package jobs

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskVehicleStaleScan marks vehicles with stale telemetry as inactive.
	TaskVehicleStaleScan = "vehicle:stale_scan"
)

// DefaultStaleWindow is how long a vehicle may go without a telemetry update
// before the scan considers it out of service.
const DefaultStaleWindow = 24 * time.Hour

// StaleScanPayload configures a stale-vehicle scan run.
type StaleScanPayload struct {
	Window time.Duration `json:"window"`
}

// NewStaleScanTask constructs an Asynq task for the stale-vehicle scan.
func NewStaleScanTask(window time.Duration) (*asynq.Task, error) {
	if window <= 0 {
		window = DefaultStaleWindow
	}
	data, err := json.Marshal(StaleScanPayload{Window: window})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskVehicleStaleScan, data), nil
}
