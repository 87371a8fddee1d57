package memory

import (
	"context"
	"sync"

	"budget/internal/core"
)

// Sink keeps the last exported balance sheet in memory. Used by tests and
// local runs without Google credentials.
type Sink struct {
	mu     sync.Mutex
	days   []core.DayBalance
	writes int
}

func New() *Sink {
	return &Sink{}
}

// WriteBalanceSheet replaces the stored snapshot with a copy of days.
func (s *Sink) WriteBalanceSheet(_ context.Context, days []core.DayBalance) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.days = append([]core.DayBalance(nil), days...)
	s.writes++
	return nil
}

// Last returns a copy of the most recently written snapshot.
func (s *Sink) Last() []core.DayBalance {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.DayBalance(nil), s.days...)
}

// Writes reports how many snapshots have been written.
func (s *Sink) Writes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writes
}
