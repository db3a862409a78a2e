package services

import (
	"context"
	"fmt"
	"time"

	"panini/internal/core"
	"panini/internal/storage"
)

// ReportService answers the read-only spending reports.
type ReportService struct {
	repo *storage.SQLiteRepository
}

// NewReportService creates a report service.
func NewReportService(repo *storage.SQLiteRepository) *ReportService {
	return &ReportService{repo: repo}
}

// TotalSpentByCategory sums one-off, non-personal spending per category in
// the inclusive range. Categories without spending are absent.
func (s *ReportService) TotalSpentByCategory(ctx context.Context, start, end core.Date) (core.CategoryTotals, error) {
	rows, err := s.repo.SpentByCategory(ctx, start, end)
	if err != nil {
		return nil, err
	}
	totals := make(core.CategoryTotals, len(rows))
	for _, r := range rows {
		totals[r.CategoryID] = r.Amount
	}
	return totals, nil
}

// OutstandingInstallmentMonthly is one month of every open plan. An empty
// userID covers the whole household.
func (s *ReportService) OutstandingInstallmentMonthly(ctx context.Context, userID string) (core.Money, error) {
	return s.repo.OutstandingInstallments(ctx, userID)
}

// MonthOverview reports category spending for one calendar month, largest first.
func (s *ReportService) MonthOverview(ctx context.Context, year, month int) (core.MonthOverview, error) {
	if month < 1 || month > 12 {
		return core.MonthOverview{}, fmt.Errorf("month overview: invalid month %d", month)
	}
	start := core.NewDate(year, month, 1)
	end := core.DateOf(start.AddDate(0, 1, -1))

	rows, err := s.repo.SpentByCategory(ctx, start, end)
	if err != nil {
		return core.MonthOverview{}, err
	}

	overview := core.MonthOverview{Year: year, Month: month, ByCategory: rows}
	for _, r := range rows {
		overview.Total = overview.Total.Add(r.Amount)
	}
	return overview, nil
}

// CurrentMonth returns year and month of now in UTC.
func CurrentMonth(now time.Time) (int, int) {
	now = now.UTC()
	return now.Year(), int(now.Month())
}
