package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"panini/internal/core"
	"panini/internal/sheets"
)

var _ sheets.LedgerMirror = (*Store)(nil)

// Deletion is a tombstone row.
type Deletion struct {
	Entity string
	ID     string
	At     time.Time
}

// Store is an in-process LedgerMirror used when no spreadsheet is configured.
type Store struct {
	mu           sync.Mutex
	transactions []core.TransactionDetail
	payments     []core.PaymentDetail
	deletions    []Deletion
	rows         int
}

// New returns an empty store.
func New() *Store {
	return &Store{}
}

// AppendTransaction records t and returns its row reference.
func (s *Store) AppendTransaction(_ context.Context, t core.TransactionDetail) (string, error) {
	if errs := t.Validate(); len(errs) > 0 {
		return "", errs
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transactions = append(s.transactions, t)
	return s.nextRef(), nil
}

// AppendPayment records p and returns its row reference.
func (s *Store) AppendPayment(_ context.Context, p core.PaymentDetail) (string, error) {
	if errs := p.Validate(); len(errs) > 0 {
		return "", errs
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.payments = append(s.payments, p)
	return s.nextRef(), nil
}

// AppendDeletion records a tombstone for entity id.
func (s *Store) AppendDeletion(_ context.Context, entity, id string, at time.Time) (string, error) {
	if id == "" {
		return "", fmt.Errorf("deletion of %s without id", entity)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deletions = append(s.deletions, Deletion{Entity: entity, ID: id, At: at})
	return s.nextRef(), nil
}

// nextRef must be called with mu held.
func (s *Store) nextRef() string {
	s.rows++
	return fmt.Sprintf("mem:%d", s.rows)
}

// Transactions returns a copy of the mirrored transactions.
func (s *Store) Transactions() []core.TransactionDetail {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.TransactionDetail(nil), s.transactions...)
}

// Payments returns a copy of the mirrored payments.
func (s *Store) Payments() []core.PaymentDetail {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.PaymentDetail(nil), s.payments...)
}

// Deletions returns a copy of the recorded tombstones.
func (s *Store) Deletions() []Deletion {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Deletion(nil), s.deletions...)
}
