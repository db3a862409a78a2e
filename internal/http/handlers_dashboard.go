package http

import (
	"context"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"panini/internal/core"
)

type memberBalance struct {
	User    core.User
	Balance core.Balance
}

type categoryRow struct {
	core.CategoryAmount
	Width int
}

type monthOverviewData struct {
	Year, Month int
	Total       core.Money
	Rows        []categoryRow
	MaxName     string
	Prev, Next  MonthParams
}

type dashboardData struct {
	Summary   core.Summary
	Members   []memberBalance
	Overview  monthOverviewData
	Reminders []core.Reminder
}

// newMonthOverviewData scales each category bar against the largest one.
func newMonthOverviewData(ov core.MonthOverview) monthOverviewData {
	p := MonthParams{Year: ov.Year, Month: ov.Month}
	data := monthOverviewData{Year: ov.Year, Month: ov.Month, Total: ov.Total, Prev: p.Prev(), Next: p.Next()}

	var maxCents int64
	for _, c := range ov.ByCategory {
		if c.Amount.Cents > maxCents {
			maxCents = c.Amount.Cents
			data.MaxName = c.Name
		}
	}
	for _, c := range ov.ByCategory {
		width := 0
		if maxCents > 0 && c.Amount.Cents > 0 {
			width = int((c.Amount.Cents*100 + maxCents/2) / maxCents)
			if width < 2 {
				width = 2
			}
			if width > 100 {
				width = 100
			}
		}
		data.Rows = append(data.Rows, categoryRow{CategoryAmount: c, Width: width})
	}
	return data
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	me, ok := s.currentUser(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 7*time.Second)
	defer cancel()

	now := s.now()
	month := ParseMonthParams(r.URL.Query(), now)

	var (
		data     dashboardData
		overview core.MonthOverview
		users    []core.User
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		data.Summary, err = s.svc.Balances.Summary(gctx, me)
		return err
	})
	g.Go(func() (err error) {
		overview, err = s.svc.Reports.MonthOverview(gctx, month.Year, month.Month)
		return err
	})
	g.Go(func() (err error) {
		data.Reminders, err = s.svc.Reminders.Upcoming(gctx, now)
		return err
	})
	g.Go(func() (err error) {
		users, err = s.svc.Users.List(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		s.serverError(w, r, "load dashboard", err)
		return
	}

	for _, u := range users {
		b, err := s.svc.Balances.ComputeUserBalance(ctx, u.ID)
		if err != nil {
			s.serverError(w, r, "compute member balance", err)
			return
		}
		data.Members = append(data.Members, memberBalance{User: u, Balance: b})
	}
	data.Overview = newMonthOverviewData(overview)

	s.render(w, r, http.StatusOK, "dashboard.html", view{Title: "Inicio", Nav: "home", Me: me, Data: data})
}

// handleMonthOverview renders the category breakdown partial for ?year=&month=.
func (s *Server) handleMonthOverview(w http.ResponseWriter, r *http.Request) {
	month := ParseMonthParams(r.URL.Query(), s.now())

	ctx, cancel := context.WithTimeout(r.Context(), 7*time.Second)
	defer cancel()

	ov, err := s.svc.Reports.MonthOverview(ctx, month.Year, month.Month)
	if err != nil {
		s.serverError(w, r, "month overview", err)
		return
	}
	s.renderPartial(w, r, "month_overview", newMonthOverviewData(ov))
}

type installmentsData struct {
	Plans     []installmentPlan
	Monthly   core.Money
	Remaining core.Money
}

type installmentPlan struct {
	core.TransactionDetail
	Monthly   core.Money
	Remaining core.Money
	Percent   int
}

func (s *Server) handleInstallments(w http.ResponseWriter, r *http.Request) {
	me, ok := s.currentUser(w, r)
	if !ok {
		return
	}

	plans, err := s.svc.Transactions.OpenInstallmentPlans(r.Context())
	if err != nil {
		s.serverError(w, r, "list installment plans", err)
		return
	}

	var data installmentsData
	for _, p := range plans {
		monthly := p.MonthlyInstallment()
		left := int64(p.Installments - p.Paid)
		plan := installmentPlan{
			TransactionDetail: p,
			Monthly:           monthly,
			Remaining:         monthly.Mul(left),
			Percent:           p.Paid * 100 / p.Installments,
		}
		data.Plans = append(data.Plans, plan)
		data.Monthly = data.Monthly.Add(plan.Monthly)
		data.Remaining = data.Remaining.Add(plan.Remaining)
	}

	s.render(w, r, http.StatusOK, "installments.html", view{Title: "Cuotas", Nav: "installments", Me: me, Data: data})
}

// monthRange is the inclusive first and last day of the month.
func monthRange(p MonthParams) (core.Date, core.Date) {
	start := core.NewDate(p.Year, p.Month, 1)
	return start, core.DateOf(start.AddDate(0, 1, -1))
}
