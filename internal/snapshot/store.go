package snapshot

import (
	"sync/atomic"

	"github.com/rotisserie/eris"
)

// ErrStaleCycle is returned when a commit's sequence is not newer than the
// committed snapshot's.
var ErrStaleCycle = eris.New("snapshot: stale cycle")

// Store publishes the latest committed snapshot. Readers never block and
// always see a whole snapshot.
type Store struct {
	seq     atomic.Uint64
	current atomic.Pointer[Snapshot]
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{}
}

// NextSeq allocates the next cycle sequence number, starting at 1.
func (s *Store) NextSeq() uint64 {
	return s.seq.Add(1)
}

// Current returns the committed snapshot, or nil before the first commit.
func (s *Store) Current() *Snapshot {
	return s.current.Load()
}

// Commit publishes snap if its sequence is strictly greater than the
// committed one. Otherwise it returns ErrStaleCycle and leaves the store
// unchanged.
func (s *Store) Commit(snap *Snapshot) error {
	if snap == nil {
		return eris.New("snapshot: commit nil snapshot")
	}
	for {
		cur := s.current.Load()
		if cur != nil && snap.CycleSeq <= cur.CycleSeq {
			return eris.Wrapf(ErrStaleCycle, "cycle %d superseded by %d", snap.CycleSeq, cur.CycleSeq)
		}
		if s.current.CompareAndSwap(cur, snap) {
			return nil
		}
	}
}
