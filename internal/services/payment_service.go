package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"panini/internal/amqp"
	"panini/internal/core"
	"panini/internal/metrics"
	"panini/internal/storage"
)

// PaymentInput is a payment as submitted, before normalisation.
type PaymentInput struct {
	Description string
	Amount      core.Money
	SenderID    string
	ReceiverID  string
	Panini      bool
	Notes       string
}

func (in PaymentInput) payment() core.Payment {
	p := core.Payment{
		Description: strings.TrimSpace(in.Description),
		Amount:      in.Amount,
		SenderID:    in.SenderID,
		ReceiverID:  in.ReceiverID,
		Panini:      in.Panini,
		Notes:       strings.TrimSpace(in.Notes),
	}
	if p.Panini {
		p.ReceiverID = p.SenderID
	}
	return p
}

// Validate reports the field errors RecordPayment would reject the input with.
func (in PaymentInput) Validate() core.ValidationErrors {
	return in.payment().Validate()
}

// PaymentService records payments between members and drives installment plans.
type PaymentService struct {
	repo    *storage.SQLiteRepository
	events  *Events
	metrics *metrics.Metrics
	cycle   time.Duration

	// mu serialises ledger writers inside this process; the immediate SQLite
	// transaction covers other processes sharing the file.
	mu sync.Mutex

	now   func() time.Time
	newID func() string
}

// NewPaymentService creates a payment service. cycle is the billing window
// in which only the first payment advances installment plans.
func NewPaymentService(repo *storage.SQLiteRepository, events *Events, m *metrics.Metrics, cycle time.Duration) *PaymentService {
	if cycle <= 0 {
		cycle = core.BillingCycle
	}
	return &PaymentService{
		repo:    repo,
		events:  events,
		metrics: m,
		cycle:   cycle,
		now:     time.Now,
		newID:   uuid.NewString,
	}
}

// RecordPayment validates and stores a new payment.
//
// A Panini payment is a contribution by its sender, so the receiver is forced
// to the sender and installment plans are left alone. Any other payment that
// is the first of its billing cycle advances every open plan by one
// installment. Reading the latest payment, advancing plans and inserting the
// payment commit together or not at all.
func (s *PaymentService) RecordPayment(ctx context.Context, in PaymentInput) (core.Payment, error) {
	p := in.payment()
	if errs := p.Validate(); len(errs) > 0 {
		return core.Payment{}, errs
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p.ID = s.newID()
	p.CreatedAt = s.now().UTC()

	var (
		openedCycle bool
		advanced    int64
	)
	err := s.repo.WithLedgerTx(ctx, func(tx storage.LedgerTx) error {
		if !p.Panini {
			latest, err := tx.LatestPaymentAt(ctx)
			if err != nil {
				return err
			}
			if core.FirstOfCycle(latest, p.CreatedAt, s.cycle) {
				openedCycle = true
				if advanced, err = tx.AdvanceOpenInstallmentPlans(ctx); err != nil {
					return err
				}
			}
		}
		return tx.CreatePayment(ctx, p)
	})
	if err != nil {
		return core.Payment{}, fmt.Errorf("record payment: %w", err)
	}

	slog.InfoContext(ctx, "Payment recorded",
		"id", p.ID,
		"amount_cents", p.Amount.Cents,
		"panini", p.Panini,
		"opened_cycle", openedCycle,
		"plans_advanced", advanced)

	s.metrics.PaymentRecorded(p.Panini, advanced, openedCycle)
	s.events.Emit(ctx, amqp.PaymentRecorded, p.ID)
	return p, nil
}

// UpdatePayment edits an existing payment. It applies the same Panini
// normalisation but never advances installment plans.
func (s *PaymentService) UpdatePayment(ctx context.Context, id string, in PaymentInput) (core.Payment, error) {
	p := in.payment()
	if errs := p.Validate(); len(errs) > 0 {
		return core.Payment{}, errs
	}
	p.ID = id
	if err := s.repo.UpdatePayment(ctx, p); err != nil {
		return core.Payment{}, err
	}
	s.events.Emit(ctx, amqp.PaymentUpdated, id)
	return p, nil
}

// DeletePayment removes a payment. Installment progress is not rolled back.
func (s *PaymentService) DeletePayment(ctx context.Context, id string) error {
	if err := s.repo.DeletePayment(ctx, id); err != nil {
		return err
	}
	s.events.Emit(ctx, amqp.PaymentDeleted, id)
	return nil
}

// GetPayment returns the payment with sender and receiver names.
func (s *PaymentService) GetPayment(ctx context.Context, id string) (core.PaymentDetail, error) {
	return s.repo.GetPayment(ctx, id)
}

// ListPayments returns the most recent payments first. A negative limit returns all.
func (s *PaymentService) ListPayments(ctx context.Context, limit int) ([]core.PaymentDetail, error) {
	return s.repo.ListPayments(ctx, limit)
}
