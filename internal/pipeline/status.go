package pipeline

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"
)

const statusFileName = "status.json"

// Status records the outcome of the most recent pipeline run. It doubles as
// the minimum-interval gate between runs.
type Status struct {
	Status      string         `json:"status"`
	LastUpdated time.Time      `json:"last_updated"`
	Details     map[string]any `json:"details"`
}

// writeStatus persists the run status. Failing to write status is logged
// but never fails the run itself.
func writeStatus(dataDir, status string, details map[string]any) {
	if details == nil {
		details = map[string]any{}
	}
	s := Status{
		Status:      status,
		LastUpdated: time.Now(),
		Details:     details,
	}

	if err := os.MkdirAll(dataDir, 0755); err != nil {
		log.Warn().Err(err).Str("dir", dataDir).Msg("Could not create data directory for status file")
		return
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		log.Warn().Err(err).Msg("Could not marshal status")
		return
	}

	path := filepath.Join(dataDir, statusFileName)
	if err := os.WriteFile(path, data, 0644); err != nil {
		log.Warn().Err(err).Str("path", path).Msg("Could not write status file")
	}
}

// readStatus loads the last run status, or nil when none exists or the file
// cannot be decoded.
func readStatus(dataDir string) *Status {
	data, err := os.ReadFile(filepath.Join(dataDir, statusFileName))
	if err != nil {
		return nil
	}

	var s Status
	if err := json.Unmarshal(data, &s); err != nil {
		log.Warn().Err(err).Msg("Status file is corrupt, ignoring")
		return nil
	}
	return &s
}
