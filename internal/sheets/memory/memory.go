package memory

import (
	"context"
	"strconv"
	"sync"

	"stokvel/internal/core"
	"stokvel/internal/ledger"
)

// Sink is an in-memory export sink for local development and tests.
type Sink struct {
	mu   sync.Mutex
	rows []core.ExportRow
}

var _ ledger.ExportSink = (*Sink)(nil)

func New() *Sink {
	return &Sink{}
}

// AppendRow implements ledger.ExportSink.
func (s *Sink) AppendRow(_ context.Context, row core.ExportRow) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows = append(s.rows, row)
	return strconv.Itoa(len(s.rows)), nil
}

// Rows returns a copy of everything appended so far.
func (s *Sink) Rows() []core.ExportRow {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.ExportRow, len(s.rows))
	copy(out, s.rows)
	return out
}
