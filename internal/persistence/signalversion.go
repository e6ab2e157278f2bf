package persistence

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/sawpanic/tradesignal/internal/atomicio"
)

// SignalVersionFile is the on-disk shape of data/signal-versions.json (spec
// §6): `{activeVersion:"…"}`.
type SignalVersionFile struct {
	ActiveVersion string `json:"activeVersion"`
}

// SaveActiveSignalVersion persists the currently active signal version.
func SaveActiveSignalVersion(path, version string) error {
	b, err := json.Marshal(SignalVersionFile{ActiveVersion: version})
	if err != nil {
		return fmt.Errorf("marshal signal version: %w", err)
	}
	return atomicio.WriteFile(path, b, filePerm)
}

// LoadActiveSignalVersion reads path, returning defaultVersion if the file
// doesn't exist yet (first run).
func LoadActiveSignalVersion(path, defaultVersion string) (string, error) {
	b, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return defaultVersion, nil
	}
	if err != nil {
		return "", fmt.Errorf("read signal version: %w", err)
	}

	var file SignalVersionFile
	if err := json.Unmarshal(b, &file); err != nil {
		return "", fmt.Errorf("unmarshal signal version: %w", err)
	}
	if file.ActiveVersion == "" {
		return defaultVersion, nil
	}
	return file.ActiveVersion, nil
}
