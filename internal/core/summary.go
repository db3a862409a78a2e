package core

// CategoryAmount represents an amount aggregated by category.
type CategoryAmount struct {
	CategoryID string
	Name       string
	Color      string
	Icon       string
	Amount     Money
}

// MonthOverview is a compact summary for a specific year+month.
type MonthOverview struct {
	Year       int
	Month      int // 1-12
	Total      Money
	ByCategory []CategoryAmount
}

// Summary is what the dashboard shows for the signed in member.
type Summary struct {
	User                  User
	Household             Balance
	Panini                Balance
	UserInstallments      Money
	HouseholdInstallments Money
}
