package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"panini/internal/core"
)

// SQLiteRepository is the single store of the ledger.
type SQLiteRepository struct {
	db      *sql.DB
	queries *Queries
}

// DSN builds the modernc connection string. Writes open with BEGIN IMMEDIATE so
// read-then-write sequences inside one transaction are serialised.
func DSN(dbPath string) string {
	return "file:" + dbPath +
		"?_pragma=foreign_keys(1)" +
		"&_pragma=busy_timeout(5000)" +
		"&_pragma=journal_mode(WAL)" +
		"&_txlock=immediate"
}

// NewSQLiteRepository opens dbPath in WAL mode with foreign keys enforced
// and applies pending migrations.
func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", DSN(dbPath))
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(DSN(dbPath)); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{
		db:      db,
		queries: New(db),
	}, nil
}

// Close closes the database.
func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping reports whether the database answers queries.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.queries.Ping(ctx)
}

// WithTx runs fn inside one write transaction, committing only when fn succeeds.
func (r *SQLiteRepository) WithTx(ctx context.Context, fn func(q *Queries) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(r.queries.WithTx(tx)); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return core.ErrNotFound
	}
	return err
}

// inUse maps a foreign key violation raised by a delete to core.ErrInUse.
func inUse(err error) error {
	var se *sqlite.Error
	if errors.As(err, &se) && se.Code()&0xff == sqlite3.SQLITE_CONSTRAINT {
		return core.ErrInUse
	}
	return err
}

func affected(n int64, err error) error {
	if err != nil {
		return err
	}
	if n == 0 {
		return core.ErrNotFound
	}
	return nil
}

// Users

// CreateUser inserts u with now as its creation time.
func (r *SQLiteRepository) CreateUser(ctx context.Context, u core.User, now time.Time) error {
	if err := r.queries.CreateUser(ctx, User{ID: u.ID, Email: u.Email, Name: u.Name, CreatedAt: formatTimestamp(now)}); err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	slog.InfoContext(ctx, "User saved", "id", u.ID, "email", u.Email)
	return nil
}

// UpdateUser returns core.ErrNotFound when no row matches.
func (r *SQLiteRepository) UpdateUser(ctx context.Context, u core.User) error {
	if err := affected(r.queries.UpdateUser(ctx, User{ID: u.ID, Email: u.Email, Name: u.Name})); err != nil {
		return fmt.Errorf("update user %s: %w", u.ID, err)
	}
	return nil
}

// DeleteUser returns core.ErrInUse while the ledger references the user.
func (r *SQLiteRepository) DeleteUser(ctx context.Context, id string) error {
	if err := affected(r.queries.DeleteUser(ctx, id)); err != nil {
		return fmt.Errorf("delete user %s: %w", id, inUse(err))
	}
	return nil
}

func (r *SQLiteRepository) GetUser(ctx context.Context, id string) (core.User, error) {
	u, err := r.queries.GetUser(ctx, id)
	if err != nil {
		return core.User{}, fmt.Errorf("get user %s: %w", id, notFound(err))
	}
	return toCoreUser(u), nil
}

func (r *SQLiteRepository) GetUserByEmail(ctx context.Context, email string) (core.User, error) {
	u, err := r.queries.GetUserByEmail(ctx, email)
	if err != nil {
		return core.User{}, fmt.Errorf("get user by email: %w", notFound(err))
	}
	return toCoreUser(u), nil
}

// ListUsers returns every member ordered by name.
func (r *SQLiteRepository) ListUsers(ctx context.Context) ([]core.User, error) {
	rows, err := r.queries.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	users := make([]core.User, len(rows))
	for i, u := range rows {
		users[i] = toCoreUser(u)
	}
	return users, nil
}

func toCoreUser(u User) core.User {
	return core.User{ID: u.ID, Email: u.Email, Name: u.Name}
}

// Categories

// CreateCategory inserts c with now as its creation time.
func (r *SQLiteRepository) CreateCategory(ctx context.Context, c core.Category, now time.Time) error {
	err := r.queries.CreateCategory(ctx, Category{
		ID: c.ID, Name: c.Name, Color: c.Color, Icon: c.Icon, CreatedAt: formatTimestamp(now),
	})
	if err != nil {
		return fmt.Errorf("create category: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) UpdateCategory(ctx context.Context, c core.Category) error {
	if err := affected(r.queries.UpdateCategory(ctx, Category{ID: c.ID, Name: c.Name, Color: c.Color, Icon: c.Icon})); err != nil {
		return fmt.Errorf("update category %s: %w", c.ID, err)
	}
	return nil
}

// DeleteCategory returns core.ErrInUse while transactions reference the category.
func (r *SQLiteRepository) DeleteCategory(ctx context.Context, id string) error {
	if err := affected(r.queries.DeleteCategory(ctx, id)); err != nil {
		return fmt.Errorf("delete category %s: %w", id, inUse(err))
	}
	return nil
}

func (r *SQLiteRepository) GetCategory(ctx context.Context, id string) (core.Category, error) {
	c, err := r.queries.GetCategory(ctx, id)
	if err != nil {
		return core.Category{}, fmt.Errorf("get category %s: %w", id, notFound(err))
	}
	return toCoreCategory(c), nil
}

func (r *SQLiteRepository) ListCategories(ctx context.Context) ([]core.Category, error) {
	rows, err := r.queries.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	cats := make([]core.Category, len(rows))
	for i, c := range rows {
		cats[i] = toCoreCategory(c)
	}
	return cats, nil
}

func toCoreCategory(c Category) core.Category {
	return core.Category{ID: c.ID, Name: c.Name, Color: c.Color, Icon: c.Icon}
}

// Transactions

// CreateTransaction inserts t.
func (r *SQLiteRepository) CreateTransaction(ctx context.Context, t core.Transaction) error {
	if err := r.queries.CreateTransaction(ctx, fromCoreTransaction(t)); err != nil {
		return fmt.Errorf("create transaction: %w", err)
	}
	slog.InfoContext(ctx, "Transaction saved to SQLite",
		"id", t.ID,
		"amount_cents", t.Amount.Cents,
		"kind", t.Kind(),
		"installments", t.Installments)
	return nil
}

func (r *SQLiteRepository) UpdateTransaction(ctx context.Context, t core.Transaction) error {
	if err := affected(r.queries.UpdateTransaction(ctx, fromCoreTransaction(t))); err != nil {
		return fmt.Errorf("update transaction %s: %w", t.ID, err)
	}
	return nil
}

// DeleteTransaction returns core.ErrNotFound when no row matches.
func (r *SQLiteRepository) DeleteTransaction(ctx context.Context, id string) error {
	if err := affected(r.queries.DeleteTransaction(ctx, id)); err != nil {
		return fmt.Errorf("delete transaction %s: %w", id, err)
	}
	return nil
}

func (r *SQLiteRepository) GetTransaction(ctx context.Context, id string) (core.TransactionDetail, error) {
	row, err := r.queries.GetTransaction(ctx, id)
	if err != nil {
		return core.TransactionDetail{}, fmt.Errorf("get transaction %s: %w", id, notFound(err))
	}
	return toCoreTransactionDetail(row), nil
}

// ListTransactions returns the newest transactions first. A negative limit returns all.
func (r *SQLiteRepository) ListTransactions(ctx context.Context, limit int) ([]core.TransactionDetail, error) {
	rows, err := r.queries.ListTransactions(ctx, int64(limit))
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return toCoreTransactionDetails(rows), nil
}

// SearchTransactions matches term as a literal substring of description or notes.
func (r *SQLiteRepository) SearchTransactions(ctx context.Context, term string, limit int) ([]core.TransactionDetail, error) {
	escaped := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(term)
	rows, err := r.queries.SearchTransactions(ctx, escaped, int64(limit))
	if err != nil {
		return nil, fmt.Errorf("search transactions: %w", err)
	}
	return toCoreTransactionDetails(rows), nil
}

// ListOpenInstallmentPlans returns the plans with installments left to pay.
func (r *SQLiteRepository) ListOpenInstallmentPlans(ctx context.Context) ([]core.TransactionDetail, error) {
	rows, err := r.queries.ListOpenInstallmentPlans(ctx)
	if err != nil {
		return nil, fmt.Errorf("list open installment plans: %w", err)
	}
	return toCoreTransactionDetails(rows), nil
}

func fromCoreTransaction(t core.Transaction) Transaction {
	return Transaction{
		ID:           t.ID,
		Description:  t.Description,
		AmountCents:  t.Amount.Cents,
		Date:         formatDate(t.Date.Time),
		UserID:       t.UserID,
		CategoryID:   t.CategoryID,
		Panini:       t.Panini,
		Personal:     t.Personal,
		Installments: int64(t.Installments),
		Paid:         int64(t.Paid),
		Notes:        t.Notes,
		CreatedAt:    formatTimestamp(t.CreatedAt),
	}
}

func toCoreTransactionDetail(row TransactionRow) core.TransactionDetail {
	return core.TransactionDetail{
		Transaction: core.Transaction{
			ID:           row.ID,
			Description:  row.Description,
			Amount:       core.Money{Cents: row.AmountCents},
			Date:         core.Date{Time: parseDate(row.Date)},
			UserID:       row.UserID,
			CategoryID:   row.CategoryID,
			Panini:       row.Panini,
			Personal:     row.Personal,
			Installments: int(row.Installments),
			Paid:         int(row.Paid),
			Notes:        row.Notes,
			CreatedAt:    parseTimestamp(row.CreatedAt),
		},
		UserName:      row.UserName,
		CategoryName:  row.CategoryName,
		CategoryColor: row.CategoryColor,
		CategoryIcon:  row.CategoryIcon,
	}
}

func toCoreTransactionDetails(rows []TransactionRow) []core.TransactionDetail {
	out := make([]core.TransactionDetail, len(rows))
	for i, row := range rows {
		out[i] = toCoreTransactionDetail(row)
	}
	return out
}

// Aggregates

// SharedSpent is the household total split between members.
func (r *SQLiteRepository) SharedSpent(ctx context.Context) (core.Money, error) {
	total, err := r.queries.SumSharedSpent(ctx)
	if err != nil {
		return core.Money{}, fmt.Errorf("sum shared spent: %w", err)
	}
	return core.Money{Cents: total}, nil
}

// SharedSpentByUser is the part of SharedSpent paid by userID.
func (r *SQLiteRepository) SharedSpentByUser(ctx context.Context, userID string) (core.Money, error) {
	total, err := r.queries.SumSharedSpentByUser(ctx, userID)
	if err != nil {
		return core.Money{}, fmt.Errorf("sum shared spent by user: %w", err)
	}
	return core.Money{Cents: total}, nil
}

// PaniniSpentByUser is what userID spent on behalf of the Panini.
func (r *SQLiteRepository) PaniniSpentByUser(ctx context.Context, userID string) (core.Money, error) {
	total, err := r.queries.SumPaniniSpentByUser(ctx, userID)
	if err != nil {
		return core.Money{}, fmt.Errorf("sum panini spent by user: %w", err)
	}
	return core.Money{Cents: total}, nil
}

// PaymentsSent sums every payment sent by userID.
func (r *SQLiteRepository) PaymentsSent(ctx context.Context, userID string) (core.Money, error) {
	total, err := r.queries.SumPaymentsSent(ctx, userID)
	if err != nil {
		return core.Money{}, fmt.Errorf("sum payments sent: %w", err)
	}
	return core.Money{Cents: total}, nil
}

// PaymentsReceived sums every payment received by userID.
func (r *SQLiteRepository) PaymentsReceived(ctx context.Context, userID string) (core.Money, error) {
	total, err := r.queries.SumPaymentsReceived(ctx, userID)
	if err != nil {
		return core.Money{}, fmt.Errorf("sum payments received: %w", err)
	}
	return core.Money{Cents: total}, nil
}

// PaniniContributions sums the Panini payments sent by userID.
func (r *SQLiteRepository) PaniniContributions(ctx context.Context, userID string) (core.Money, error) {
	total, err := r.queries.SumPaniniPaymentsBySender(ctx, userID)
	if err != nil {
		return core.Money{}, fmt.Errorf("sum panini contributions: %w", err)
	}
	return core.Money{Cents: total}, nil
}

// SpentByCategory sums one-off, non-personal spending per category for the
// inclusive day range [start, end].
func (r *SQLiteRepository) SpentByCategory(ctx context.Context, start, end core.Date) ([]core.CategoryAmount, error) {
	rows, err := r.queries.SumSpentByCategory(ctx, formatDate(start.Time), formatDate(end.Time))
	if err != nil {
		return nil, fmt.Errorf("sum spent by category: %w", err)
	}
	out := make([]core.CategoryAmount, len(rows))
	for i, cs := range rows {
		out[i] = core.CategoryAmount{
			CategoryID: cs.CategoryID,
			Name:       cs.Name,
			Color:      cs.Color,
			Icon:       cs.Icon,
			Amount:     core.Money{Cents: cs.TotalAmount},
		}
	}
	return out, nil
}

// OutstandingInstallments sums one month of every open plan; an empty userID
// covers the whole household.
func (r *SQLiteRepository) OutstandingInstallments(ctx context.Context, userID string) (core.Money, error) {
	var (
		total int64
		err   error
	)
	if userID == "" {
		total, err = r.queries.SumOutstandingInstallments(ctx)
	} else {
		total, err = r.queries.SumOutstandingInstallmentsByUser(ctx, userID)
	}
	if err != nil {
		return core.Money{}, fmt.Errorf("sum outstanding installments: %w", err)
	}
	return core.Money{Cents: total}, nil
}

// Payments

// UpdatePayment returns core.ErrNotFound when no row matches.
func (r *SQLiteRepository) UpdatePayment(ctx context.Context, p core.Payment) error {
	if err := affected(r.queries.UpdatePayment(ctx, fromCorePayment(p))); err != nil {
		return fmt.Errorf("update payment %s: %w", p.ID, err)
	}
	return nil
}

// DeletePayment returns core.ErrNotFound when no row matches.
func (r *SQLiteRepository) DeletePayment(ctx context.Context, id string) error {
	if err := affected(r.queries.DeletePayment(ctx, id)); err != nil {
		return fmt.Errorf("delete payment %s: %w", id, err)
	}
	return nil
}

func (r *SQLiteRepository) GetPayment(ctx context.Context, id string) (core.PaymentDetail, error) {
	row, err := r.queries.GetPayment(ctx, id)
	if err != nil {
		return core.PaymentDetail{}, fmt.Errorf("get payment %s: %w", id, notFound(err))
	}
	return toCorePaymentDetail(row), nil
}

// ListPayments returns the newest payments first. A negative limit returns all.
func (r *SQLiteRepository) ListPayments(ctx context.Context, limit int) ([]core.PaymentDetail, error) {
	rows, err := r.queries.ListPayments(ctx, int64(limit))
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	out := make([]core.PaymentDetail, len(rows))
	for i, row := range rows {
		out[i] = toCorePaymentDetail(row)
	}
	return out, nil
}

// LedgerTx exposes the payment ledger operations that must run in one transaction.
type LedgerTx struct {
	q *Queries
}

// WithLedgerTx runs fn inside one immediate write transaction.
func (r *SQLiteRepository) WithLedgerTx(ctx context.Context, fn func(tx LedgerTx) error) error {
	return r.WithTx(ctx, func(q *Queries) error {
		return fn(LedgerTx{q: q})
	})
}

// LatestPaymentAt returns the zero time when no payment exists yet.
func (l LedgerTx) LatestPaymentAt(ctx context.Context) (time.Time, error) {
	createdAt, err := l.q.LatestPaymentCreatedAt(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("latest payment: %w", err)
	}
	return parseTimestamp(createdAt), nil
}

// AdvanceOpenInstallmentPlans marks one more installment paid on every open shared plan.
func (l LedgerTx) AdvanceOpenInstallmentPlans(ctx context.Context) (int64, error) {
	n, err := l.q.AdvanceOpenInstallmentPlans(ctx)
	if err != nil {
		return 0, fmt.Errorf("advance installment plans: %w", err)
	}
	return n, nil
}

// CreatePayment inserts p inside the ledger transaction.
func (l LedgerTx) CreatePayment(ctx context.Context, p core.Payment) error {
	if err := l.q.CreatePayment(ctx, fromCorePayment(p)); err != nil {
		return fmt.Errorf("create payment: %w", err)
	}
	return nil
}

func fromCorePayment(p core.Payment) Payment {
	return Payment{
		ID:          p.ID,
		Description: p.Description,
		AmountCents: p.Amount.Cents,
		SenderID:    p.SenderID,
		ReceiverID:  p.ReceiverID,
		Panini:      p.Panini,
		Notes:       p.Notes,
		CreatedAt:   formatTimestamp(p.CreatedAt),
	}
}

func toCorePaymentDetail(row PaymentRow) core.PaymentDetail {
	return core.PaymentDetail{
		Payment: core.Payment{
			ID:          row.ID,
			Description: row.Description,
			Amount:      core.Money{Cents: row.AmountCents},
			SenderID:    row.SenderID,
			ReceiverID:  row.ReceiverID,
			Panini:      row.Panini,
			Notes:       row.Notes,
			CreatedAt:   parseTimestamp(row.CreatedAt),
		},
		SenderName:   row.SenderName,
		ReceiverName: row.ReceiverName,
	}
}

// Reminders

// CreateReminder inserts rem.
func (r *SQLiteRepository) CreateReminder(ctx context.Context, rem core.Reminder) error {
	if err := r.queries.CreateReminder(ctx, fromCoreReminder(rem)); err != nil {
		return fmt.Errorf("create reminder: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) UpdateReminder(ctx context.Context, rem core.Reminder) error {
	if err := affected(r.queries.UpdateReminder(ctx, fromCoreReminder(rem))); err != nil {
		return fmt.Errorf("update reminder %s: %w", rem.ID, err)
	}
	return nil
}

// DeleteReminder returns core.ErrNotFound when no row matches.
func (r *SQLiteRepository) DeleteReminder(ctx context.Context, id string) error {
	if err := affected(r.queries.DeleteReminder(ctx, id)); err != nil {
		return fmt.Errorf("delete reminder %s: %w", id, err)
	}
	return nil
}

func (r *SQLiteRepository) GetReminder(ctx context.Context, id string) (core.Reminder, error) {
	rem, err := r.queries.GetReminder(ctx, id)
	if err != nil {
		return core.Reminder{}, fmt.Errorf("get reminder %s: %w", id, notFound(err))
	}
	return toCoreReminder(rem), nil
}

// ListReminders returns every reminder ordered by date.
func (r *SQLiteRepository) ListReminders(ctx context.Context) ([]core.Reminder, error) {
	rows, err := r.queries.ListReminders(ctx)
	if err != nil {
		return nil, fmt.Errorf("list reminders: %w", err)
	}
	return toCoreReminders(rows), nil
}

// UpcomingOneShotReminders returns non repeating reminders dated at or after from.
func (r *SQLiteRepository) UpcomingOneShotReminders(ctx context.Context, from time.Time, limit int) ([]core.Reminder, error) {
	rows, err := r.queries.ListUpcomingOneShotReminders(ctx, formatTimestamp(from), int64(limit))
	if err != nil {
		return nil, fmt.Errorf("list upcoming reminders: %w", err)
	}
	return toCoreReminders(rows), nil
}

// RecurringReminders returns every repeating reminder.
func (r *SQLiteRepository) RecurringReminders(ctx context.Context) ([]core.Reminder, error) {
	rows, err := r.queries.ListRecurringReminders(ctx)
	if err != nil {
		return nil, fmt.Errorf("list recurring reminders: %w", err)
	}
	return toCoreReminders(rows), nil
}

func fromCoreReminder(rem core.Reminder) Reminder {
	return Reminder{
		ID:          rem.ID,
		Title:       rem.Title,
		Description: rem.Description,
		Date:        formatTimestamp(rem.Date),
		AllDay:      rem.AllDay,
		Color:       rem.Color,
		Repeat:      string(rem.Repeat),
	}
}

func toCoreReminder(rem Reminder) core.Reminder {
	return core.Reminder{
		ID:          rem.ID,
		Title:       rem.Title,
		Description: rem.Description,
		Date:        parseTimestamp(rem.Date),
		AllDay:      rem.AllDay,
		Color:       rem.Color,
		Repeat:      core.Repeat(rem.Repeat),
	}
}

func toCoreReminders(rows []Reminder) []core.Reminder {
	out := make([]core.Reminder, len(rows))
	for i, rem := range rows {
		out[i] = toCoreReminder(rem)
	}
	return out
}
