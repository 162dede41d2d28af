package testutil

import (
	"os"
	"testing"
)

// RequireTestEnvironment ensures that tests are running in the test
// environment. It fails the test immediately if GO_ENV is not "test".
func RequireTestEnvironment(t *testing.T) {
	t.Helper()

	env := os.Getenv("GO_ENV")
	if env != "test" {
		t.Fatalf("SAFETY CHECK FAILED: tests must run with GO_ENV=test. Current GO_ENV=%q.", env)
	}
}

// MustSetTestEnvironment sets GO_ENV to test. Use this in TestMain or
// suite setup functions.
func MustSetTestEnvironment() {
	if err := os.Setenv("GO_ENV", "test"); err != nil {
		panic("failed to set GO_ENV=test: " + err.Error())
	}
}
