package storage

import (
	"context"
	"database/sql"
)

// Users

const createUser = `INSERT INTO users (id, email, name, created_at) VALUES (?, ?, ?, ?)`

func (q *Queries) CreateUser(ctx context.Context, arg User) error {
	_, err := q.db.ExecContext(ctx, createUser, arg.ID, arg.Email, arg.Name, arg.CreatedAt)
	return err
}

const updateUser = `UPDATE users SET email = ?, name = ? WHERE id = ?`

func (q *Queries) UpdateUser(ctx context.Context, arg User) (int64, error) {
	res, err := q.db.ExecContext(ctx, updateUser, arg.Email, arg.Name, arg.ID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const deleteUser = `DELETE FROM users WHERE id = ?`

func (q *Queries) DeleteUser(ctx context.Context, id string) (int64, error) {
	res, err := q.db.ExecContext(ctx, deleteUser, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const userColumns = `id, email, name, created_at`

func scanUser(row interface{ Scan(...any) error }) (User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Email, &u.Name, &u.CreatedAt)
	return u, err
}

const getUser = `SELECT ` + userColumns + ` FROM users WHERE id = ?`

func (q *Queries) GetUser(ctx context.Context, id string) (User, error) {
	return scanUser(q.db.QueryRowContext(ctx, getUser, id))
}

const getUserByEmail = `SELECT ` + userColumns + ` FROM users WHERE email = ?`

func (q *Queries) GetUserByEmail(ctx context.Context, email string) (User, error) {
	return scanUser(q.db.QueryRowContext(ctx, getUserByEmail, email))
}

const listUsers = `SELECT ` + userColumns + ` FROM users ORDER BY name, email`

func (q *Queries) ListUsers(ctx context.Context) ([]User, error) {
	rows, err := q.db.QueryContext(ctx, listUsers)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, u)
	}
	return items, rows.Err()
}

// Categories

const createCategory = `INSERT INTO categories (id, name, color, icon, created_at) VALUES (?, ?, ?, ?, ?)`

func (q *Queries) CreateCategory(ctx context.Context, arg Category) error {
	_, err := q.db.ExecContext(ctx, createCategory, arg.ID, arg.Name, arg.Color, arg.Icon, arg.CreatedAt)
	return err
}

const updateCategory = `UPDATE categories SET name = ?, color = ?, icon = ? WHERE id = ?`

func (q *Queries) UpdateCategory(ctx context.Context, arg Category) (int64, error) {
	res, err := q.db.ExecContext(ctx, updateCategory, arg.Name, arg.Color, arg.Icon, arg.ID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const deleteCategory = `DELETE FROM categories WHERE id = ?`

func (q *Queries) DeleteCategory(ctx context.Context, id string) (int64, error) {
	res, err := q.db.ExecContext(ctx, deleteCategory, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const categoryColumns = `id, name, color, icon, created_at`

func scanCategory(row interface{ Scan(...any) error }) (Category, error) {
	var c Category
	err := row.Scan(&c.ID, &c.Name, &c.Color, &c.Icon, &c.CreatedAt)
	return c, err
}

const getCategory = `SELECT ` + categoryColumns + ` FROM categories WHERE id = ?`

func (q *Queries) GetCategory(ctx context.Context, id string) (Category, error) {
	return scanCategory(q.db.QueryRowContext(ctx, getCategory, id))
}

const listCategories = `SELECT ` + categoryColumns + ` FROM categories ORDER BY name`

func (q *Queries) ListCategories(ctx context.Context) ([]Category, error) {
	rows, err := q.db.QueryContext(ctx, listCategories)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, c)
	}
	return items, rows.Err()
}

// Transactions

const createTransaction = `INSERT INTO transactions (
    id, description, amount_cents, date, user_id, category_id,
    panini, personal, installments, paid, notes, created_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

func (q *Queries) CreateTransaction(ctx context.Context, arg Transaction) error {
	_, err := q.db.ExecContext(ctx, createTransaction,
		arg.ID, arg.Description, arg.AmountCents, arg.Date, arg.UserID, arg.CategoryID,
		arg.Panini, arg.Personal, arg.Installments, arg.Paid, arg.Notes, arg.CreatedAt,
	)
	return err
}

const updateTransaction = `UPDATE transactions SET
    description = ?, amount_cents = ?, date = ?, user_id = ?, category_id = ?,
    panini = ?, personal = ?, installments = ?, paid = ?, notes = ?
WHERE id = ?`

func (q *Queries) UpdateTransaction(ctx context.Context, arg Transaction) (int64, error) {
	res, err := q.db.ExecContext(ctx, updateTransaction,
		arg.Description, arg.AmountCents, arg.Date, arg.UserID, arg.CategoryID,
		arg.Panini, arg.Personal, arg.Installments, arg.Paid, arg.Notes, arg.ID,
	)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const deleteTransaction = `DELETE FROM transactions WHERE id = ?`

func (q *Queries) DeleteTransaction(ctx context.Context, id string) (int64, error) {
	res, err := q.db.ExecContext(ctx, deleteTransaction, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const transactionRowSelect = `SELECT
    t.id, t.description, t.amount_cents, t.date, t.user_id, t.category_id,
    t.panini, t.personal, t.installments, t.paid, t.notes, t.created_at,
    COALESCE(NULLIF(u.name, ''), u.email), c.name, c.color, c.icon
FROM transactions t
JOIN users u ON u.id = t.user_id
JOIN categories c ON c.id = t.category_id`

func scanTransactionRow(row interface{ Scan(...any) error }) (TransactionRow, error) {
	var t TransactionRow
	err := row.Scan(
		&t.ID, &t.Description, &t.AmountCents, &t.Date, &t.UserID, &t.CategoryID,
		&t.Panini, &t.Personal, &t.Installments, &t.Paid, &t.Notes, &t.CreatedAt,
		&t.UserName, &t.CategoryName, &t.CategoryColor, &t.CategoryIcon,
	)
	return t, err
}

func (q *Queries) queryTransactionRows(ctx context.Context, query string, args ...any) ([]TransactionRow, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []TransactionRow
	for rows.Next() {
		t, err := scanTransactionRow(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, t)
	}
	return items, rows.Err()
}

const getTransaction = transactionRowSelect + ` WHERE t.id = ?`

func (q *Queries) GetTransaction(ctx context.Context, id string) (TransactionRow, error) {
	return scanTransactionRow(q.db.QueryRowContext(ctx, getTransaction, id))
}

const listTransactions = transactionRowSelect + `
ORDER BY t.date DESC, t.created_at DESC
LIMIT ?`

func (q *Queries) ListTransactions(ctx context.Context, limit int64) ([]TransactionRow, error) {
	return q.queryTransactionRows(ctx, listTransactions, limit)
}

const searchTransactions = transactionRowSelect + `
WHERE t.description LIKE '%' || ? || '%' ESCAPE '\'
   OR t.notes LIKE '%' || ? || '%' ESCAPE '\'
ORDER BY t.date DESC, t.created_at DESC
LIMIT ?`

func (q *Queries) SearchTransactions(ctx context.Context, pattern string, limit int64) ([]TransactionRow, error) {
	return q.queryTransactionRows(ctx, searchTransactions, pattern, pattern, limit)
}

const listOpenInstallmentPlans = transactionRowSelect + `
WHERE t.personal = 0 AND t.panini = 0 AND t.installments > 1 AND t.paid < t.installments
ORDER BY t.date ASC`

// ListOpenInstallmentPlans returns plans with installments left, oldest first.
func (q *Queries) ListOpenInstallmentPlans(ctx context.Context) ([]TransactionRow, error) {
	return q.queryTransactionRows(ctx, listOpenInstallmentPlans)
}

const advanceOpenInstallmentPlans = `UPDATE transactions
SET paid = paid + 1
WHERE personal = 0 AND panini = 0 AND installments > 1 AND paid < installments`

// AdvanceOpenInstallmentPlans applies one installment to every open plan and
// returns how many plans moved.
func (q *Queries) AdvanceOpenInstallmentPlans(ctx context.Context) (int64, error) {
	res, err := q.db.ExecContext(ctx, advanceOpenInstallmentPlans)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// Aggregates. Every SUM is wrapped in COALESCE so unknown ids sum to zero.

const sumSharedSpent = `SELECT COALESCE(SUM(amount_cents), 0) FROM transactions
WHERE panini = 0 AND personal = 0 AND installments = 1`

// SumSharedSpent sums one-off shared transactions of the whole household.
func (q *Queries) SumSharedSpent(ctx context.Context) (int64, error) {
	var total int64
	err := q.db.QueryRowContext(ctx, sumSharedSpent).Scan(&total)
	return total, err
}

const sumSharedSpentByUser = sumSharedSpent + ` AND user_id = ?`

// SumSharedSpentByUser sums one-off shared transactions paid by userID.
func (q *Queries) SumSharedSpentByUser(ctx context.Context, userID string) (int64, error) {
	var total int64
	err := q.db.QueryRowContext(ctx, sumSharedSpentByUser, userID).Scan(&total)
	return total, err
}

const sumPaniniSpentByUser = `SELECT COALESCE(SUM(amount_cents), 0) FROM transactions
WHERE panini = 1 AND personal = 0 AND installments = 1 AND user_id = ?`

// SumPaniniSpentByUser sums one-off Panini transactions paid by userID.
func (q *Queries) SumPaniniSpentByUser(ctx context.Context, userID string) (int64, error) {
	var total int64
	err := q.db.QueryRowContext(ctx, sumPaniniSpentByUser, userID).Scan(&total)
	return total, err
}

const sumPaymentsSent = `SELECT COALESCE(SUM(amount_cents), 0) FROM payments WHERE sender_id = ?`

// SumPaymentsSent sums every payment sent by userID, Panini ones included.
func (q *Queries) SumPaymentsSent(ctx context.Context, userID string) (int64, error) {
	var total int64
	err := q.db.QueryRowContext(ctx, sumPaymentsSent, userID).Scan(&total)
	return total, err
}

const sumPaymentsReceived = `SELECT COALESCE(SUM(amount_cents), 0) FROM payments WHERE receiver_id = ?`

// SumPaymentsReceived sums every payment received by userID.
func (q *Queries) SumPaymentsReceived(ctx context.Context, userID string) (int64, error) {
	var total int64
	err := q.db.QueryRowContext(ctx, sumPaymentsReceived, userID).Scan(&total)
	return total, err
}

const sumPaniniPaymentsBySender = `SELECT COALESCE(SUM(amount_cents), 0) FROM payments
WHERE panini = 1 AND sender_id = ?`

// SumPaniniPaymentsBySender sums the Panini contributions of userID.
func (q *Queries) SumPaniniPaymentsBySender(ctx context.Context, userID string) (int64, error) {
	var total int64
	err := q.db.QueryRowContext(ctx, sumPaniniPaymentsBySender, userID).Scan(&total)
	return total, err
}

const sumSpentByCategory = `SELECT
    t.category_id, c.name, c.color, c.icon, SUM(t.amount_cents) AS total_amount
FROM transactions t
JOIN categories c ON c.id = t.category_id
WHERE t.personal = 0 AND t.installments = 1 AND t.date >= ? AND t.date <= ?
GROUP BY t.category_id, c.name, c.color, c.icon
ORDER BY total_amount DESC, c.name`

// SumSpentByCategory groups one-off, non-personal spending in [start, end].
// Dates are YYYY-MM-DD strings.
func (q *Queries) SumSpentByCategory(ctx context.Context, start, end string) ([]CategorySum, error) {
	rows, err := q.db.QueryContext(ctx, sumSpentByCategory, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []CategorySum
	for rows.Next() {
		var cs CategorySum
		if err := rows.Scan(&cs.CategoryID, &cs.Name, &cs.Color, &cs.Icon, &cs.TotalAmount); err != nil {
			return nil, err
		}
		items = append(items, cs)
	}
	return items, rows.Err()
}

const sumOutstandingInstallments = `SELECT COALESCE(SUM(amount_cents / installments), 0) FROM transactions
WHERE personal = 0 AND panini = 0 AND installments > 1 AND paid < installments`

// SumOutstandingInstallments sums the monthly share of every open shared plan.
func (q *Queries) SumOutstandingInstallments(ctx context.Context) (int64, error) {
	var total int64
	err := q.db.QueryRowContext(ctx, sumOutstandingInstallments).Scan(&total)
	return total, err
}

const sumOutstandingInstallmentsByUser = sumOutstandingInstallments + ` AND user_id = ?`

// SumOutstandingInstallmentsByUser limits SumOutstandingInstallments to userID.
func (q *Queries) SumOutstandingInstallmentsByUser(ctx context.Context, userID string) (int64, error) {
	var total int64
	err := q.db.QueryRowContext(ctx, sumOutstandingInstallmentsByUser, userID).Scan(&total)
	return total, err
}

// Payments

const createPayment = `INSERT INTO payments (
    id, description, amount_cents, sender_id, receiver_id, panini, notes, created_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

func (q *Queries) CreatePayment(ctx context.Context, arg Payment) error {
	_, err := q.db.ExecContext(ctx, createPayment,
		arg.ID, arg.Description, arg.AmountCents, arg.SenderID, arg.ReceiverID,
		arg.Panini, arg.Notes, arg.CreatedAt,
	)
	return err
}

const updatePayment = `UPDATE payments SET
    description = ?, amount_cents = ?, sender_id = ?, receiver_id = ?, panini = ?, notes = ?
WHERE id = ?`

func (q *Queries) UpdatePayment(ctx context.Context, arg Payment) (int64, error) {
	res, err := q.db.ExecContext(ctx, updatePayment,
		arg.Description, arg.AmountCents, arg.SenderID, arg.ReceiverID, arg.Panini, arg.Notes, arg.ID,
	)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const deletePayment = `DELETE FROM payments WHERE id = ?`

func (q *Queries) DeletePayment(ctx context.Context, id string) (int64, error) {
	res, err := q.db.ExecContext(ctx, deletePayment, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const paymentRowSelect = `SELECT
    p.id, p.description, p.amount_cents, p.sender_id, p.receiver_id, p.panini, p.notes, p.created_at,
    COALESCE(NULLIF(s.name, ''), s.email), COALESCE(NULLIF(r.name, ''), r.email)
FROM payments p
JOIN users s ON s.id = p.sender_id
JOIN users r ON r.id = p.receiver_id`

func scanPaymentRow(row interface{ Scan(...any) error }) (PaymentRow, error) {
	var p PaymentRow
	err := row.Scan(
		&p.ID, &p.Description, &p.AmountCents, &p.SenderID, &p.ReceiverID, &p.Panini, &p.Notes, &p.CreatedAt,
		&p.SenderName, &p.ReceiverName,
	)
	return p, err
}

const getPayment = paymentRowSelect + ` WHERE p.id = ?`

func (q *Queries) GetPayment(ctx context.Context, id string) (PaymentRow, error) {
	return scanPaymentRow(q.db.QueryRowContext(ctx, getPayment, id))
}

const listPayments = paymentRowSelect + ` ORDER BY p.created_at DESC LIMIT ?`

func (q *Queries) ListPayments(ctx context.Context, limit int64) ([]PaymentRow, error) {
	rows, err := q.db.QueryContext(ctx, listPayments, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []PaymentRow
	for rows.Next() {
		p, err := scanPaymentRow(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, p)
	}
	return items, rows.Err()
}

const latestPaymentCreatedAt = `SELECT created_at FROM payments ORDER BY created_at DESC LIMIT 1`

// LatestPaymentCreatedAt returns sql.ErrNoRows when no payment exists.
func (q *Queries) LatestPaymentCreatedAt(ctx context.Context) (string, error) {
	var createdAt string
	err := q.db.QueryRowContext(ctx, latestPaymentCreatedAt).Scan(&createdAt)
	return createdAt, err
}

// Reminders

const createReminder = `INSERT INTO reminders (id, title, description, date, all_day, color, repeat)
VALUES (?, ?, ?, ?, ?, ?, ?)`

func (q *Queries) CreateReminder(ctx context.Context, arg Reminder) error {
	_, err := q.db.ExecContext(ctx, createReminder,
		arg.ID, arg.Title, arg.Description, arg.Date, arg.AllDay, arg.Color, arg.Repeat,
	)
	return err
}

const updateReminder = `UPDATE reminders SET
    title = ?, description = ?, date = ?, all_day = ?, color = ?, repeat = ?
WHERE id = ?`

func (q *Queries) UpdateReminder(ctx context.Context, arg Reminder) (int64, error) {
	res, err := q.db.ExecContext(ctx, updateReminder,
		arg.Title, arg.Description, arg.Date, arg.AllDay, arg.Color, arg.Repeat, arg.ID,
	)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const deleteReminder = `DELETE FROM reminders WHERE id = ?`

func (q *Queries) DeleteReminder(ctx context.Context, id string) (int64, error) {
	res, err := q.db.ExecContext(ctx, deleteReminder, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const reminderColumns = `id, title, description, date, all_day, color, repeat`

func scanReminder(row interface{ Scan(...any) error }) (Reminder, error) {
	var r Reminder
	err := row.Scan(&r.ID, &r.Title, &r.Description, &r.Date, &r.AllDay, &r.Color, &r.Repeat)
	return r, err
}

func (q *Queries) queryReminders(ctx context.Context, query string, args ...any) ([]Reminder, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Reminder
	for rows.Next() {
		r, err := scanReminder(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, r)
	}
	return items, rows.Err()
}

const getReminder = `SELECT ` + reminderColumns + ` FROM reminders WHERE id = ?`

func (q *Queries) GetReminder(ctx context.Context, id string) (Reminder, error) {
	return scanReminder(q.db.QueryRowContext(ctx, getReminder, id))
}

const listReminders = `SELECT ` + reminderColumns + ` FROM reminders ORDER BY date ASC`

func (q *Queries) ListReminders(ctx context.Context) ([]Reminder, error) {
	return q.queryReminders(ctx, listReminders)
}

const listUpcomingOneShotReminders = `SELECT ` + reminderColumns + ` FROM reminders
WHERE repeat = 'never' AND date >= ?
ORDER BY date ASC
LIMIT ?`

// ListUpcomingOneShotReminders returns non repeating reminders from a timestamp on.
func (q *Queries) ListUpcomingOneShotReminders(ctx context.Context, from string, limit int64) ([]Reminder, error) {
	return q.queryReminders(ctx, listUpcomingOneShotReminders, from, limit)
}

const listRecurringReminders = `SELECT ` + reminderColumns + ` FROM reminders
WHERE repeat IN ('yearly', 'monthly', 'weekly', 'daily')
ORDER BY date ASC`

// ListRecurringReminders returns every repeating reminder.
func (q *Queries) ListRecurringReminders(ctx context.Context) ([]Reminder, error) {
	return q.queryReminders(ctx, listRecurringReminders)
}

// Health

// Ping runs a trivial query to prove the database answers.
func (q *Queries) Ping(ctx context.Context) error {
	var one int
	if err := q.db.QueryRowContext(ctx, `SELECT 1`).Scan(&one); err != nil {
		return err
	}
	if one != 1 {
		return sql.ErrNoRows
	}
	return nil
}
