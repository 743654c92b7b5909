package teamintegrationtests

import (
	"log"
	"os"
	"sync"
	"testing"

	"github.com/Podium-Debate/podium-engine/integration_tests/testutils"
)

var (
	testEnvOnce sync.Once
	testEnvErr  error
)

// TestMain initializes and cleans up the shared test environment for
// team integration tests.
func TestMain(m *testing.M) {
	testEnvOnce.Do(func() {
		testEnv, testEnvErr = testutils.NewTestEnvironment(nil)
	})
	if testEnvErr != nil {
		log.Fatalf("Failed to setup test environment: %v", testEnvErr)
	}

	oldAppEnv := os.Getenv("APP_ENV")
	os.Setenv("APP_ENV", "test")

	exitCode := m.Run()

	os.Setenv("APP_ENV", oldAppEnv)
	if testEnv != nil {
		testEnv.Cleanup()
	}
	os.Exit(exitCode)
}
