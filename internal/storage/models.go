package storage

// User is a row of the users table.
type User struct {
	ID        string
	Email     string
	Name      string
	CreatedAt string
}

// Category is a row of the categories table.
type Category struct {
	ID        string
	Name      string
	Color     string
	Icon      string
	CreatedAt string
}

// Transaction is a row of the transactions table. Dates are YYYY-MM-DD.
type Transaction struct {
	ID           string
	Description  string
	AmountCents  int64
	Date         string
	UserID       string
	CategoryID   string
	Panini       bool
	Personal     bool
	Installments int64
	Paid         int64
	Notes        string
	CreatedAt    string
}

// TransactionRow is a transaction joined with its member and category.
type TransactionRow struct {
	Transaction
	UserName      string
	CategoryName  string
	CategoryColor string
	CategoryIcon  string
}

// Payment is a row of the payments table.
type Payment struct {
	ID          string
	Description string
	AmountCents int64
	SenderID    string
	ReceiverID  string
	Panini      bool
	Notes       string
	CreatedAt   string
}

// PaymentRow is a payment joined with the sender and receiver names.
type PaymentRow struct {
	Payment
	SenderName   string
	ReceiverName string
}

// Reminder is a row of the reminders table.
type Reminder struct {
	ID          string
	Title       string
	Description string
	Date        string
	AllDay      bool
	Color       string
	Repeat      string
}

// CategorySum is the spending of one category over a date range.
type CategorySum struct {
	CategoryID  string
	Name        string
	Color       string
	Icon        string
	TotalAmount int64
}
