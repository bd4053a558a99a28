package reconcile

import "sync/atomic"

// Sequencer hands out monotonically increasing refresh tokens.
type Sequencer struct{ n atomic.Uint64 }

// Next issues the next token.
func (s *Sequencer) Next() uint64 { return s.n.Add(1) }

// Latest returns the most recently issued token.
func (s *Sequencer) Latest() uint64 { return s.n.Load() }
