// Package guard forces test mode before any configuration loads. Import it
// for side effects from test files that exercise runtime wiring.
package guard

import (
	"os"
	"sync"
)

var once sync.Once

func init() {
	once.Do(func() {
		if os.Getenv("FLEETWATCH_TEST_MODE") == "" {
			_ = os.Setenv("FLEETWATCH_TEST_MODE", "1")
		}
	})
}
