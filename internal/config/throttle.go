package config

import (
	"encoding/json"
	"os"
	"sync"

	"cerebrum/internal/cognition"
)

// ThrottleFile reads the throttle document from disk on every call, keeping
// the last good config when the file is missing or malformed. The engine
// polls it on the config-reload tick, so edits apply without a restart.
type ThrottleFile struct {
	path string

	mu   sync.Mutex
	last cognition.ThrottleConfig
	ok   bool
}

func NewThrottleFile(path string) *ThrottleFile {
	return &ThrottleFile{path: path}
}

// Load returns the current throttle config. The first failed read falls
// back to defaults; later failures return the last good value.
func (t *ThrottleFile) Load() (cognition.ThrottleConfig, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	data, err := os.ReadFile(t.path)
	if err != nil {
		return t.fallback(), err
	}
	var cfg cognition.ThrottleConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return t.fallback(), err
	}
	t.last = cfg
	t.ok = true
	return cfg, nil
}

func (t *ThrottleFile) fallback() cognition.ThrottleConfig {
	if t.ok {
		return t.last
	}
	return cognition.DefaultThrottleConfig()
}
