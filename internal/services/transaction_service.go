package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"panini/internal/amqp"
	"panini/internal/core"
	"panini/internal/storage"
)

// TransactionInput is a transaction as submitted, before normalisation.
type TransactionInput struct {
	Description  string
	Amount       core.Money
	Date         core.Date
	UserID       string
	CategoryID   string
	Kind         core.TransactionKind
	Installments int
	Paid         int
	Notes        string
}

func (in TransactionInput) transaction() core.Transaction {
	t := core.Transaction{
		Description:  strings.TrimSpace(in.Description),
		Amount:       in.Amount,
		Date:         in.Date,
		UserID:       in.UserID,
		CategoryID:   in.CategoryID,
		Installments: in.Installments,
		Paid:         in.Paid,
		Notes:        strings.TrimSpace(in.Notes),
	}
	t.Panini, t.Personal = core.ParseKind(string(in.Kind))
	if t.Installments < 1 {
		t.Installments = 1
	}
	if t.Paid < 0 {
		t.Paid = 0
	}
	if t.Paid > t.Installments {
		t.Paid = t.Installments
	}
	return t
}

// Validate reports the field errors Create would reject the input with.
func (in TransactionInput) Validate() core.ValidationErrors {
	return in.transaction().Validate()
}

// TransactionService manages ledger transactions and emits a ledger event
// for every change.
type TransactionService struct {
	repo   *storage.SQLiteRepository
	events *Events
	now    func() time.Time
	newID  func() string
}

// NewTransactionService creates a transaction service.
func NewTransactionService(repo *storage.SQLiteRepository, events *Events) *TransactionService {
	return &TransactionService{
		repo:   repo,
		events: events,
		now:    time.Now,
		newID:  uuid.NewString,
	}
}

// Create stores a new transaction. New installment plans start with nothing paid.
func (s *TransactionService) Create(ctx context.Context, in TransactionInput) (core.Transaction, error) {
	in.Paid = 0
	t := in.transaction()
	if errs := t.Validate(); len(errs) > 0 {
		return core.Transaction{}, errs
	}
	t.ID = s.newID()
	t.CreatedAt = s.now().UTC()
	if err := s.repo.CreateTransaction(ctx, t); err != nil {
		return core.Transaction{}, err
	}
	s.events.Emit(ctx, amqp.TransactionSaved, t.ID)
	return t, nil
}

// Update replaces the editable fields; paid is clamped to the plan length.
func (s *TransactionService) Update(ctx context.Context, id string, in TransactionInput) (core.Transaction, error) {
	t := in.transaction()
	if errs := t.Validate(); len(errs) > 0 {
		return core.Transaction{}, errs
	}
	t.ID = id
	if err := s.repo.UpdateTransaction(ctx, t); err != nil {
		return core.Transaction{}, err
	}
	s.events.Emit(ctx, amqp.TransactionSaved, id)
	return t, nil
}

// Delete removes a transaction and emits a deletion event.
func (s *TransactionService) Delete(ctx context.Context, id string) error {
	if err := s.repo.DeleteTransaction(ctx, id); err != nil {
		return err
	}
	s.events.Emit(ctx, amqp.TransactionDeleted, id)
	return nil
}

// Get returns the transaction with its member and category names.
func (s *TransactionService) Get(ctx context.Context, id string) (core.TransactionDetail, error) {
	return s.repo.GetTransaction(ctx, id)
}

// List returns the newest transactions first. A negative limit returns all.
func (s *TransactionService) List(ctx context.Context, limit int) ([]core.TransactionDetail, error) {
	return s.repo.ListTransactions(ctx, limit)
}

// Search lists transactions whose description or notes contain term. An empty
// term lists the latest transactions.
func (s *TransactionService) Search(ctx context.Context, term string, limit int) ([]core.TransactionDetail, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return s.List(ctx, limit)
	}
	return s.repo.SearchTransactions(ctx, term, limit)
}

// OpenInstallmentPlans returns the plans with installments left to pay.
func (s *TransactionService) OpenInstallmentPlans(ctx context.Context) ([]core.TransactionDetail, error) {
	return s.repo.ListOpenInstallmentPlans(ctx)
}
