package jobs

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewStaleScanTask(t *testing.T) {
	task, err := NewStaleScanTask(6 * time.Hour)
	require.NoError(t, err)
	assert.Equal(t, TaskVehicleStaleScan, task.Type())

	var payload StaleScanPayload
	require.NoError(t, json.Unmarshal(task.Payload(), &payload))
	assert.Equal(t, 6*time.Hour, payload.Window)
}

func TestNewStaleScanTaskDefaultsWindow(t *testing.T) {
	for _, window := range []time.Duration{0, -time.Hour} {
		task, err := NewStaleScanTask(window)
		require.NoError(t, err)

		var payload StaleScanPayload
		require.NoError(t, json.Unmarshal(task.Payload(), &payload))
		assert.Equal(t, DefaultStaleWindow, payload.Window)
	}
}
