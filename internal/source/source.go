// Package source delivers observation batches to the pipeline: batch files
// from disk, polled at a bounded rate with retries.
package source

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/sells-group/wifisurvey/internal/model"
)

// ErrExhausted is returned by Next when a source has no batch to deliver.
var ErrExhausted = eris.New("source: exhausted")

// Source produces scan batches, one per call.
type Source interface {
	Next(ctx context.Context) (model.ObservationBatch, error)
}

// Memory serves a fixed list of batches in order.
type Memory struct {
	batches []model.ObservationBatch
	pos     int
}

// NewMemory creates a source over batches.
func NewMemory(batches ...model.ObservationBatch) *Memory {
	return &Memory{batches: batches}
}

// Next returns the next batch or ErrExhausted.
func (m *Memory) Next(ctx context.Context) (model.ObservationBatch, error) {
	if err := ctx.Err(); err != nil {
		return model.ObservationBatch{}, err
	}
	if m.pos >= len(m.batches) {
		return model.ObservationBatch{}, ErrExhausted
	}
	b := m.batches[m.pos]
	m.pos++
	return b, nil
}

// Remaining returns how many batches are left.
func (m *Memory) Remaining() int {
	return len(m.batches) - m.pos
}
