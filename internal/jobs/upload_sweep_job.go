package job

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/maheshrc27/linkfeed/internal/service"
)

const DefaultUploadMaxAge = time.Hour

type PathChecker interface {
	IsPathReferenced(ctx context.Context, path string) (bool, error)
}

// UploadSweepJob removes local upload files that no post or profile points
// to. Files younger than maxAge are skipped so uploads still in flight
// survive.
type UploadSweepJob struct {
	dir    string
	maxAge time.Duration
	pc     PathChecker
	now    func() time.Time
}

func NewUploadSweepJob(dir string, maxAge time.Duration, pc PathChecker) *UploadSweepJob {
	return &UploadSweepJob{
		dir:    dir,
		maxAge: maxAge,
		pc:     pc,
		now:    time.Now,
	}
}

func (j *UploadSweepJob) SweepUploads() {
	removed, err := j.Sweep(context.Background())
	if err != nil {
		slog.Info(err.Error())
		return
	}
	if removed > 0 {
		slog.Info(fmt.Sprintf("upload sweep removed %d orphaned files", removed))
	}
}

func (j *UploadSweepJob) Sweep(ctx context.Context) (int, error) {
	entries, err := os.ReadDir(j.dir)
	if err != nil {
		return 0, fmt.Errorf("failed to read upload directory: %w", err)
	}

	cutoff := j.now().Add(-j.maxAge)
	removed := 0

	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}

		info, err := entry.Info()
		if err != nil || info.ModTime().After(cutoff) {
			continue
		}

		referenced, err := j.pc.IsPathReferenced(ctx, service.UploadsPrefix+entry.Name())
		if err != nil {
			return removed, err
		}
		if referenced {
			continue
		}

		if err := os.Remove(filepath.Join(j.dir, entry.Name())); err != nil {
			slog.Info(err.Error())
			continue
		}
		removed++
	}

	return removed, nil
}
