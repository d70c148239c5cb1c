// Package ledger is the local spending ledger: an ordered list of immutable
// spending entries plus a scalar wallet budget, persisted through the kv
// store. Every mutation is written through synchronously before it returns,
// and every read goes back to the kv store, so a second Store over the same
// backing store (the worker process) observes appends made after it started.
package ledger

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"nutrisight/internal/core"
	"nutrisight/internal/kv"
)

const (
	entriesKey = "budget.entries"
	walletKey  = "budget.wallet"

	// DefaultWalletPaise is the monthly budget a fresh ledger starts with.
	DefaultWalletPaise = 300000 // ₹3000.00
)

type Store struct {
	mu      sync.Mutex
	kv      kv.Store
	entries []core.SpendingEntry
	wallet  core.Money
}

func NewStore(store kv.Store) *Store {
	return &Store{kv: store}
}

// Load reads the persisted ledger. Corrupt or missing persisted data never
// propagates: it falls back to the documented defaults (empty ledger,
// default wallet) with a warning.
func (s *Store) Load(ctx context.Context) ([]core.SpendingEntry, core.Money, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.loadLocked(ctx); err != nil {
		return nil, core.Money{}, err
	}
	return s.copyEntriesLocked(), s.wallet, nil
}

func (s *Store) loadLocked(ctx context.Context) error {
	s.entries = nil
	s.wallet = core.Money{Paise: DefaultWalletPaise}

	raw, ok, err := s.kv.Get(ctx, entriesKey)
	if err != nil {
		return fmt.Errorf("load entries: %w", err)
	}
	if ok {
		var entries []core.SpendingEntry
		if err := json.Unmarshal(raw, &entries); err != nil {
			slog.WarnContext(ctx, "Corrupt ledger entries, starting empty", "error", err)
		} else {
			s.entries = entries
		}
	}

	raw, ok, err = s.kv.Get(ctx, walletKey)
	if err != nil {
		return fmt.Errorf("load wallet: %w", err)
	}
	if ok {
		var paise int64
		if err := json.Unmarshal(raw, &paise); err != nil || paise <= 0 {
			slog.WarnContext(ctx, "Corrupt wallet value, using default", "error", err, "raw", string(raw))
		} else {
			s.wallet = core.Money{Paise: paise}
		}
	}

	return nil
}

// Append validates and persists a new entry at the end of the ledger.
// The entry's identifier must not collide with an existing one.
func (s *Store) Append(ctx context.Context, e core.SpendingEntry) error {
	if err := e.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.loadLocked(ctx); err != nil {
		return err
	}
	for _, existing := range s.entries {
		if existing.ID == e.ID {
			return fmt.Errorf("duplicate entry id %q", e.ID)
		}
	}

	next := append(s.copyEntriesLocked(), e)
	if err := s.persistEntriesLocked(ctx, next); err != nil {
		return err
	}
	s.entries = next

	slog.InfoContext(ctx, "Spending entry appended",
		"id", e.ID,
		"dish", e.Dish,
		"amount_paise", e.Price.Paise,
		"category", e.Category)
	return nil
}

// Remove deletes the entry with the given identifier. Removing an unknown
// identifier is a no-op, not an error.
func (s *Store) Remove(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.loadLocked(ctx); err != nil {
		return err
	}

	idx := -1
	for i, e := range s.entries {
		if e.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		slog.DebugContext(ctx, "Remove of unknown entry ignored", "id", id)
		return nil
	}

	next := append(s.copyEntriesLocked()[:idx], s.entries[idx+1:]...)
	if err := s.persistEntriesLocked(ctx, next); err != nil {
		return err
	}
	s.entries = next

	slog.InfoContext(ctx, "Spending entry removed", "id", id)
	return nil
}

// Clear drops every entry. The wallet is untouched.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.loadLocked(ctx); err != nil {
		return err
	}
	if err := s.persistEntriesLocked(ctx, nil); err != nil {
		return err
	}
	s.entries = nil

	slog.InfoContext(ctx, "Ledger cleared")
	return nil
}

// SetWallet overwrites the monthly budget. Non-positive values are
// rejected and leave the prior wallet intact.
func (s *Store) SetWallet(ctx context.Context, v core.Money) error {
	if err := v.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.loadLocked(ctx); err != nil {
		return err
	}

	raw, err := json.Marshal(v.Paise)
	if err != nil {
		return fmt.Errorf("marshal wallet: %w", err)
	}
	if err := s.kv.Set(ctx, walletKey, raw); err != nil {
		return fmt.Errorf("persist wallet: %w", err)
	}
	s.wallet = v

	slog.InfoContext(ctx, "Wallet budget updated", "amount_paise", v.Paise)
	return nil
}

// Entry returns the entry with the given identifier, used by the worker to
// resolve queue messages back to ledger rows.
func (s *Store) Entry(ctx context.Context, id string) (core.SpendingEntry, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.loadLocked(ctx); err != nil {
		return core.SpendingEntry{}, false, err
	}
	for _, e := range s.entries {
		if e.ID == id {
			return e, true, nil
		}
	}
	return core.SpendingEntry{}, false, nil
}

func (s *Store) persistEntriesLocked(ctx context.Context, entries []core.SpendingEntry) error {
	raw, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("marshal entries: %w", err)
	}
	if err := s.kv.Set(ctx, entriesKey, raw); err != nil {
		return fmt.Errorf("persist entries: %w", err)
	}
	return nil
}

func (s *Store) copyEntriesLocked() []core.SpendingEntry {
	out := make([]core.SpendingEntry, len(s.entries))
	copy(out, s.entries)
	return out
}
