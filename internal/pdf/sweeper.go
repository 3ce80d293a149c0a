package pdf

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"elca-web/internal/logging"
)

// FilePrefix marks generated files in the PDF directory. The sweep never
// touches anything else.
const FilePrefix = "elca-"

// SweepDir removes generated PDFs in dir that are older than maxAge and
// returns how many were removed.
func SweepDir(dir string, maxAge time.Duration, now time.Time) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, err
	}

	removed := 0
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, FilePrefix) || !strings.HasSuffix(name, ".pdf") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		if now.Sub(info.ModTime()) <= maxAge {
			continue
		}
		if err := os.Remove(filepath.Join(dir, name)); err != nil && !os.IsNotExist(err) {
			logging.Log.WithError(err).WithField("file", name).Warn("failed to remove expired pdf")
			continue
		}
		removed++
	}
	return removed, nil
}

// RunSweeper calls SweepDir every interval until ctx is done.
func RunSweeper(ctx context.Context, dir string, maxAge, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			n, err := SweepDir(dir, maxAge, now)
			if err != nil {
				logging.Log.WithError(err).WithField("dir", dir).Warn("pdf sweep failed")
				continue
			}
			if n > 0 {
				logging.Log.WithField("removed", n).Info("expired pdfs removed")
			}
		}
	}
}
