package browser

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// pageState remembers the last visited URL so successive browser commands
// resume where the previous one left off, mirroring how an operator uses a
// single long-lived tab.
type pageState struct {
	URL string `json:"url"`
}

func (d *Driver) loadState() pageState {
	data, err := os.ReadFile(d.cfg.StateFile)
	if err != nil {
		return pageState{}
	}
	var st pageState
	if err := json.Unmarshal(data, &st); err != nil {
		return pageState{}
	}
	return st
}

func (d *Driver) saveState(url string) error {
	if err := os.MkdirAll(filepath.Dir(d.cfg.StateFile), 0o755); err != nil {
		return fmt.Errorf("create state directory: %w", err)
	}
	data, err := json.Marshal(pageState{URL: url})
	if err != nil {
		return err
	}
	return os.WriteFile(d.cfg.StateFile, data, 0o644)
}

// profileDir returns the persistent user-data directory, creating it if
// needed. Login sessions survive between runs because every launch reuses
// the same profile.
func (d *Driver) profileDir() (string, error) {
	dir := filepath.Join(d.cfg.ProfileDir, "chromium")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create browser profile directory: %w", err)
	}
	return dir, nil
}
