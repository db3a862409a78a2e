package core

import "time"

// HouseholdMembers is the number of members sharing non-Panini costs.
const HouseholdMembers = 2

// BillingCycle is the window in which only the first payment advances installment plans.
const BillingCycle = 21 * 24 * time.Hour

// Balance statuses, named from the point of view of the member.
const (
	StatusSettled Status = "settled"
	StatusOwed    Status = "owed"
	StatusOwes    Status = "owes"
)

// Status classifies a balance by its sign.
type Status string

// Label is the text shown next to a balance.
func (s Status) Label() string {
	switch s {
	case StatusOwed:
		return "te deben"
	case StatusOwes:
		return "debes"
	default:
		return "estás a mano"
	}
}

// ClassifyBalance maps a positive amount to owed, negative to owes and zero to settled.
func ClassifyBalance(m Money) Status {
	switch m.Sign() {
	case 1:
		return StatusOwed
	case -1:
		return StatusOwes
	default:
		return StatusSettled
	}
}

// Balance is a signed amount together with its classification.
type Balance struct {
	Amount Money
	Status Status
}

// NewBalance classifies m.
func NewBalance(m Money) Balance {
	return Balance{Amount: m, Status: ClassifyBalance(m)}
}

// HouseholdTotals holds the aggregate sums feeding a user's household balance.
// Spent sums only cover shared one-off transactions (not panini, not personal,
// a single installment).
type HouseholdTotals struct {
	UserSpent        Money
	TotalSpent       Money
	PaymentsSent     Money
	PaymentsReceived Money
}

// HouseholdBalance is userSpent + (sent - received) - totalSpent/members.
// A members value below one falls back to HouseholdMembers.
func HouseholdBalance(t HouseholdTotals, members int) Balance {
	if members < 1 {
		members = HouseholdMembers
	}
	perUser := t.TotalSpent.Div(int64(members))
	payments := t.PaymentsSent.Sub(t.PaymentsReceived)
	return NewBalance(t.UserSpent.Add(payments).Sub(perUser))
}

// PaniniTotals holds a user's activity against the Panini sub-ledger.
type PaniniTotals struct {
	UserSpent     Money
	Contributions Money
}

// PaniniBalance is userSpent - contributions.
func PaniniBalance(t PaniniTotals) Balance {
	return NewBalance(t.UserSpent.Sub(t.Contributions))
}

// FirstOfCycle reports whether a payment recorded at now opens a new billing
// cycle, given the creation time of the latest payment (zero when none exists).
func FirstOfCycle(latest, now time.Time, cycle time.Duration) bool {
	if latest.IsZero() {
		return true
	}
	return now.Sub(latest) >= cycle
}

// CategoryTotals maps category id to the amount spent. Absent categories spent nothing.
type CategoryTotals map[string]Money

// Get returns the amount spent in categoryID.
func (c CategoryTotals) Get(categoryID string) Money {
	return c[categoryID]
}

// Total sums every category.
func (c CategoryTotals) Total() Money {
	var sum Money
	for _, m := range c {
		sum = sum.Add(m)
	}
	return sum
}
