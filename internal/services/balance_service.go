package services

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"panini/internal/cache"
	"panini/internal/core"
	"panini/internal/storage"
)

// BalanceService turns ledger aggregates into per-user balances.
//
// The aggregate reads of one computation are independent, so they run
// concurrently. Dashboard summaries are cached until the next ledger change.
type BalanceService struct {
	repo    *storage.SQLiteRepository
	members int
	cache   *cache.LRUCache[core.Summary]
}

// NewBalanceService splits shared spending between members and caches
// summaries for ttl. A members value below one falls back to HouseholdMembers.
func NewBalanceService(repo *storage.SQLiteRepository, events *Events, members int, ttl time.Duration) *BalanceService {
	if members < 1 {
		members = core.HouseholdMembers
	}
	s := &BalanceService{
		repo:    repo,
		members: members,
		cache:   cache.NewLRUCache[core.Summary](64, ttl),
	}
	if events != nil {
		events.OnChange(s.cache.Clear)
	}
	return s
}

// Cache is exposed so the caller can register it for periodic cleanup.
func (s *BalanceService) Cache() *cache.LRUCache[core.Summary] {
	return s.cache
}

// ComputeUserBalance returns what the household owes the user (positive) or
// the user owes the household (negative). Unknown users get a settled balance.
func (s *BalanceService) ComputeUserBalance(ctx context.Context, userID string) (core.Balance, error) {
	var t core.HouseholdTotals
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		t.UserSpent, err = s.repo.SharedSpentByUser(gctx, userID)
		return err
	})
	g.Go(func() (err error) {
		t.TotalSpent, err = s.repo.SharedSpent(gctx)
		return err
	})
	g.Go(func() (err error) {
		t.PaymentsSent, err = s.repo.PaymentsSent(gctx, userID)
		return err
	})
	g.Go(func() (err error) {
		t.PaymentsReceived, err = s.repo.PaymentsReceived(gctx, userID)
		return err
	})
	if err := g.Wait(); err != nil {
		return core.Balance{}, fmt.Errorf("compute user balance: %w", err)
	}
	return core.HouseholdBalance(t, s.members), nil
}

// ComputePaniniBalance returns the user's position in the Panini sub-ledger.
func (s *BalanceService) ComputePaniniBalance(ctx context.Context, userID string) (core.Balance, error) {
	var t core.PaniniTotals
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		t.UserSpent, err = s.repo.PaniniSpentByUser(gctx, userID)
		return err
	})
	g.Go(func() (err error) {
		t.Contributions, err = s.repo.PaniniContributions(gctx, userID)
		return err
	})
	if err := g.Wait(); err != nil {
		return core.Balance{}, fmt.Errorf("compute panini balance: %w", err)
	}
	return core.PaniniBalance(t), nil
}

// Summary gathers both balances and the open installment load for the dashboard.
// Only the ledger figures are cached; User is always the one passed in.
func (s *BalanceService) Summary(ctx context.Context, user core.User) (core.Summary, error) {
	if cached, ok := s.cache.Get(user.ID); ok {
		cached.User = user
		return cached, nil
	}
	gen := s.cache.Generation()

	sum := core.Summary{User: user}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		sum.Household, err = s.ComputeUserBalance(gctx, user.ID)
		return err
	})
	g.Go(func() (err error) {
		sum.Panini, err = s.ComputePaniniBalance(gctx, user.ID)
		return err
	})
	g.Go(func() (err error) {
		sum.UserInstallments, err = s.repo.OutstandingInstallments(gctx, user.ID)
		return err
	})
	g.Go(func() (err error) {
		sum.HouseholdInstallments, err = s.repo.OutstandingInstallments(gctx, "")
		return err
	})
	if err := g.Wait(); err != nil {
		return core.Summary{}, err
	}

	s.cache.SetIfGeneration(gen, user.ID, sum)
	return sum, nil
}
