package monitor

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"courtwatch/pkg/slot"
)

// writeReport dumps one scan's results to a timestamped JSON file so runs can
// be audited after the fact. Reports carry plain records only.
func writeReport(dir string, scan slot.DateMap, now time.Time) error {
	if dir == "" {
		dir = "reports"
	}
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("create reports dir: %w", err)
	}

	name := fmt.Sprintf("available_courts_%s.json", now.Format("20060102_150405"))
	path := filepath.Join(dir, name)

	data, err := json.MarshalIndent(scan, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal scan report: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("write scan report: %w", err)
	}

	slog.Info("Scan report saved", "path", path)
	return nil
}
