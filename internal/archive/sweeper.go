package archive

import (
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"newsarchive/internal/types"
)

// Sweep removes date-named directories under root and root/Published that
// are older than retentionDays relative to now. Directories whose names are
// not ISO dates are left alone. Returns the number of directories removed.
// A retention window of zero or less disables sweeping entirely.
func Sweep(root string, retentionDays int, now time.Time, logger *slog.Logger) (int, error) {
	if retentionDays <= 0 {
		return 0, nil
	}
	logger = logger.With("component", "sweeper")
	cutoff := types.Day(now).AddDate(0, 0, -retentionDays)

	removed := 0
	for _, base := range []string{root, filepath.Join(root, PublishedDir)} {
		entries, err := os.ReadDir(base)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return removed, &types.StorageError{Path: base, Err: err}
		}
		for _, e := range entries {
			if !e.IsDir() {
				continue
			}
			day, err := time.Parse("2006-01-02", e.Name())
			if err != nil {
				continue
			}
			if !day.Before(cutoff) {
				continue
			}
			path := filepath.Join(base, e.Name())
			if err := os.RemoveAll(path); err != nil {
				logger.Error("failed to remove expired folder", "path", path, "error", err)
				continue
			}
			removed++
			logger.Info("removed expired folder", "path", path)
		}
	}
	return removed, nil
}
