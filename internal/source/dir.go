package source

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/sells-group/wifisurvey/internal/model"
)

// Dir watches a directory for batch files. Each file is read once, in name
// order; its batches are delivered before the next file is opened. Next
// returns ErrExhausted while no unread file is present.
type Dir struct {
	path string

	mu      sync.Mutex
	seen    map[string]bool
	pending []model.ObservationBatch
}

// NewDir creates a source over the batch files in path.
func NewDir(path string) *Dir {
	return &Dir{path: path, seen: make(map[string]bool)}
}

// Next returns the next unread batch.
func (d *Dir) Next(ctx context.Context) (model.ObservationBatch, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	for len(d.pending) == 0 {
		if err := ctx.Err(); err != nil {
			return model.ObservationBatch{}, err
		}
		file, err := d.nextFile()
		if err != nil {
			return model.ObservationBatch{}, err
		}
		if file == "" {
			return model.ObservationBatch{}, ErrExhausted
		}
		// A file that fails to decode is skipped for good.
		d.seen[file] = true
		batches, err := LoadFile(file)
		if err != nil {
			return model.ObservationBatch{}, err
		}
		zap.L().Debug("source: loaded batch file",
			zap.String("component", "source"),
			zap.String("file", file),
			zap.Int("batches", len(batches)),
		)
		d.pending = batches
	}

	b := d.pending[0]
	d.pending = d.pending[1:]
	return b, nil
}

func (d *Dir) nextFile() (string, error) {
	files, err := listBatchFiles(d.path)
	if err != nil {
		return "", err
	}
	for _, f := range files {
		if !d.seen[f] {
			return f, nil
		}
	}
	return "", nil
}
