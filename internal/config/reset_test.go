package config

import "sync"

// ResetForTesting resets the global config state without taking the lock, for
// use from t.Cleanup in tests that point STREAMIO_CONFIG at a temp file.
func ResetForTesting() {
	globalConfig = nil
	errConfig = nil
	configOnce = sync.Once{}
}
