package worker

import (
	"context"
	"sync"

	"viveka/internal/core"
	"viveka/internal/ports"
	gsheet "viveka/internal/sheets/google"
)

// fakeSheet keeps the rows a real loan sheet would hold.
type fakeSheet struct {
	mu     sync.Mutex
	rows   [][]any
	writes int
	err    error
}

var _ ports.LoanSheetWriter = (*fakeSheet)(nil)

func newFakeSheet() *fakeSheet {
	return &fakeSheet{}
}

func (s *fakeSheet) WriteLoans(_ context.Context, loans []core.Loan) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.rows = gsheet.LoanRows(loans)
	s.writes++
	return nil
}

// failWith makes later writes return err until it is reset with nil.
func (s *fakeSheet) failWith(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}

func (s *fakeSheet) Rows() [][]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([][]any, len(s.rows))
	for i, r := range s.rows {
		out[i] = append([]any(nil), r...)
	}
	return out
}

func (s *fakeSheet) Writes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writes
}
