package tui

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"
)

const maxRecent = 10

// RecentEntry is one table a scan wrote, newest first in the recent file.
type RecentEntry struct {
	Path     string    `json:"path"`
	OpenedAt time.Time `json:"opened_at"`
	Rows     int       `json:"rows"`
}

// recentFilePath can be swapped in tests.
var recentFilePath = func() string {
	cfg, _ := os.UserConfigDir()
	return filepath.Join(cfg, "gridplaces", "recent.json")
}

func LoadRecent() []RecentEntry {
	data, err := os.ReadFile(recentFilePath())
	if err != nil {
		return nil
	}
	var entries []RecentEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil
	}
	return entries
}

// SaveRecent records a written table. Failures are ignored: the list is a
// convenience and never blocks a scan.
func SaveRecent(path string, rows int) {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}

	entries := LoadRecent()
	filtered := make([]RecentEntry, 0, len(entries)+1)
	filtered = append(filtered, RecentEntry{Path: abs, OpenedAt: time.Now(), Rows: rows})
	for _, e := range entries {
		if e.Path != abs {
			filtered = append(filtered, e)
		}
	}
	if len(filtered) > maxRecent {
		filtered = filtered[:maxRecent]
	}

	data, err := json.MarshalIndent(filtered, "", "  ")
	if err != nil {
		return
	}
	file := recentFilePath()
	if err := os.MkdirAll(filepath.Dir(file), 0o755); err != nil {
		return
	}
	_ = os.WriteFile(file, data, 0o644)
}
