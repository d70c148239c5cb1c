// Package dashboard owns the live budget state: the persisted ledger, the
// most recently fetched weekly plan and price map, and the derived summary
// handed to the HTTP layer. All mutations funnel through here so that every
// change leaves the derived state consistent with the ledger.
package dashboard

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"nutrisight/internal/analytics"
	"nutrisight/internal/core"
	"nutrisight/internal/ledger"
	"nutrisight/internal/plan"
)

// FallbackPricePaise is charged when neither the candidate nor the price map
// knows a dish's price.
const FallbackPricePaise int64 = 5000

// Fetcher retrieves the weekly plan and price map. Implementations degrade
// to empty values on failure rather than returning an error.
type Fetcher interface {
	FetchAll(ctx context.Context, credential string) (plan.Weekly, plan.Prices)
}

// Publisher notifies downstream consumers that an entry was logged.
type Publisher interface {
	PublishEntryLogged(ctx context.Context, entryID string) error
}

// Candidate is a plan meal decorated with ledger-derived state.
type Candidate struct {
	core.MealCandidate
	AddedToday bool `json:"added_today"`
}

// Snapshot is a self-consistent view of the dashboard at one point in time.
type Snapshot struct {
	Summary    core.BudgetSummary   `json:"summary"`
	Entries    []core.SpendingEntry `json:"entries"`
	Candidates []Candidate          `json:"candidates"`
	AddedToday []string             `json:"added_today"`
	PlanReady  bool                 `json:"plan_ready"`
}

type Service struct {
	store     *ledger.Store
	fetcher   Fetcher
	publisher Publisher

	mu         sync.Mutex
	weekly     plan.Weekly
	prices     plan.Prices
	candidates []core.MealCandidate
	planReady  bool
	planGen    uint64

	subMu sync.Mutex
	subs  []chan struct{}
}

// New builds a service over the given ledger store. fetcher and publisher
// may be nil; plan refreshes and event publishing are then skipped.
func New(store *ledger.Store, fetcher Fetcher, publisher Publisher) *Service {
	return &Service{
		store:     store,
		fetcher:   fetcher,
		publisher: publisher,
		prices:    plan.Prices{},
	}
}

// SetPublisher wires the event publisher after construction, useful when the
// broker connection is established later than the service.
func (s *Service) SetPublisher(p Publisher) {
	s.mu.Lock()
	s.publisher = p
	s.mu.Unlock()
}

// Snapshot recomputes the derived view from the current ledger and plan.
func (s *Service) Snapshot(ctx context.Context) (Snapshot, error) {
	entries, wallet, err := s.store.Load(ctx)
	if err != nil {
		return Snapshot{}, fmt.Errorf("load ledger: %w", err)
	}

	now := time.Now()
	added := addedToday(entries, now)

	s.mu.Lock()
	candidates := make([]Candidate, 0, len(s.candidates))
	for _, c := range s.candidates {
		candidates = append(candidates, Candidate{
			MealCandidate: c,
			AddedToday:    added[strings.ToLower(c.Dish)],
		})
	}
	planReady := s.planReady
	s.mu.Unlock()

	names := make([]string, 0, len(added))
	for _, e := range entries {
		if core.SameDay(e.LoggedAt, now) {
			key := strings.ToLower(e.Dish)
			if added[key] {
				names = append(names, e.Dish)
				delete(added, key)
			}
		}
	}

	return Snapshot{
		Summary:    analytics.Summarize(entries, wallet, now),
		Entries:    entries,
		Candidates: candidates,
		AddedToday: names,
		PlanReady:  planReady,
	}, nil
}

func addedToday(entries []core.SpendingEntry, now time.Time) map[string]bool {
	set := make(map[string]bool)
	for _, e := range entries {
		if core.SameDay(e.LoggedAt, now) {
			set[strings.ToLower(e.Dish)] = true
		}
	}
	return set
}

// LogMeal appends a spending entry for the candidate. The price is resolved
// in order: the candidate's own price, the fetched price map, then the fixed
// fallback. The returned notice is non-empty when the fallback was used.
func (s *Service) LogMeal(ctx context.Context, c core.MealCandidate) (core.SpendingEntry, string, error) {
	dish := strings.TrimSpace(c.Dish)
	if dish == "" {
		return core.SpendingEntry{}, "", core.ErrEmptyDish
	}

	price, notice := s.resolvePrice(dish, c.PricePaise)

	category := c.Category
	if category == "" {
		category = core.Snack
	}

	entry := core.SpendingEntry{
		ID:       uuid.NewString(),
		LoggedAt: time.Now(),
		Dish:     dish,
		Price:    core.Money{Paise: price},
		Category: category,
		Calories: c.Calories,
		Diet:     c.Diet,
	}

	if err := s.store.Append(ctx, entry); err != nil {
		return core.SpendingEntry{}, "", fmt.Errorf("append entry: %w", err)
	}

	s.publishLogged(ctx, entry.ID)
	s.notifySubscribers()
	return entry, notice, nil
}

func (s *Service) resolvePrice(dish string, explicit int64) (int64, string) {
	if explicit > 0 {
		return explicit, ""
	}
	s.mu.Lock()
	p, ok := s.prices[dish]
	s.mu.Unlock()
	if ok && p > 0 {
		return p, ""
	}
	return FallbackPricePaise, fmt.Sprintf("no price for %q, charged %s", dish, core.Money{Paise: FallbackPricePaise})
}

func (s *Service) publishLogged(ctx context.Context, entryID string) {
	s.mu.Lock()
	pub := s.publisher
	s.mu.Unlock()
	if pub == nil {
		return
	}
	if err := pub.PublishEntryLogged(ctx, entryID); err != nil {
		slog.WarnContext(ctx, "Failed to publish entry logged event",
			"error", err,
			"entry_id", entryID)
	}
}

// RemoveEntry deletes the entry with the given id. Removing an unknown id
// succeeds without changing anything.
func (s *Service) RemoveEntry(ctx context.Context, id string) error {
	if err := s.store.Remove(ctx, id); err != nil {
		return err
	}
	s.notifySubscribers()
	return nil
}

// ClearAll wipes every logged entry. The wallet is untouched.
func (s *Service) ClearAll(ctx context.Context) error {
	if err := s.store.Clear(ctx); err != nil {
		return err
	}
	s.notifySubscribers()
	return nil
}

// SetWallet replaces the monthly wallet amount.
func (s *Service) SetWallet(ctx context.Context, v core.Money) error {
	if err := s.store.SetWallet(ctx, v); err != nil {
		return err
	}
	s.notifySubscribers()
	return nil
}

// RefreshPlan fetches the weekly plan and price map and swaps them in. Each
// call supersedes in-flight ones: a fetch that completes after a newer
// request started is discarded so stale data never overwrites fresh data.
func (s *Service) RefreshPlan(ctx context.Context, credential string) {
	if s.fetcher == nil {
		return
	}

	s.mu.Lock()
	s.planGen++
	gen := s.planGen
	s.mu.Unlock()

	weekly, prices := s.fetcher.FetchAll(ctx, credential)

	s.mu.Lock()
	if gen != s.planGen {
		s.mu.Unlock()
		slog.DebugContext(ctx, "Discarding stale plan fetch", "generation", gen)
		return
	}
	s.weekly = weekly
	if prices == nil {
		prices = plan.Prices{}
	}
	s.prices = prices
	s.candidates = plan.Candidates(weekly)
	s.planReady = len(s.candidates) > 0
	s.mu.Unlock()

	slog.InfoContext(ctx, "Refreshed weekly plan",
		"candidates", len(s.candidates),
		"prices", len(prices))
	s.notifySubscribers()
}

// Subscribe returns a channel that receives a signal after every state
// change. Slow subscribers miss intermediate signals but always get one for
// the latest state.
func (s *Service) Subscribe() <-chan struct{} {
	ch := make(chan struct{}, 1)
	s.subMu.Lock()
	s.subs = append(s.subs, ch)
	s.subMu.Unlock()
	return ch
}

func (s *Service) notifySubscribers() {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	for _, ch := range s.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}
