package analytics

import (
	"testing"
	"time"

	"nutrisight/internal/core"
)

var now = time.Date(2025, 6, 15, 14, 0, 0, 0, time.UTC)

func entry(id string, daysAgo int, paise int64, cat core.MealSlot) core.SpendingEntry {
	return core.SpendingEntry{
		ID:       id,
		LoggedAt: now.AddDate(0, 0, -daysAgo),
		Dish:     "dish-" + id,
		Price:    core.Money{Paise: paise},
		Category: cat,
	}
}

func TestDailyBucketsWindowShape(t *testing.T) {
	tests := []struct {
		name    string
		entries []core.SpendingEntry
	}{
		{"empty ledger", nil},
		{"entries inside window", []core.SpendingEntry{
			entry("a", 0, 100, core.Lunch),
			entry("b", 5, 250, core.Dinner),
		}},
		{"entries outside window ignored", []core.SpendingEntry{
			entry("old", 31, 9999, core.Lunch),
			entry("future", -1, 9999, core.Lunch),
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buckets := DailyBuckets(tt.entries, core.Money{Paise: 300000}, now, WindowDays)
			if len(buckets) != WindowDays {
				t.Fatalf("expected %d buckets, got %d", WindowDays, len(buckets))
			}
			// Chronological, gapless, ending today.
			last := buckets[len(buckets)-1].Date
			if !core.SameDay(last, now) {
				t.Errorf("last bucket %v should be today %v", last, now)
			}
			for i := 1; i < len(buckets); i++ {
				if want := buckets[i-1].Date.AddDate(0, 0, 1); !buckets[i].Date.Equal(want) {
					t.Fatalf("bucket %d date %v, want %v", i, buckets[i].Date, want)
				}
			}
		})
	}
}

func TestDailyBucketsSums(t *testing.T) {
	entries := []core.SpendingEntry{
		entry("a", 0, 10000, core.Lunch),
		entry("b", 0, 5000, core.Snack),
		entry("c", 3, 2000, core.Dinner),
		entry("out", 31, 7777, core.Lunch), // outside the window
	}
	buckets := DailyBuckets(entries, core.Money{}, now, WindowDays)

	if got := buckets[WindowDays-1].Total.Paise; got != 15000 {
		t.Errorf("today bucket = %d, want 15000", got)
	}
	if got := buckets[WindowDays-4].Total.Paise; got != 2000 {
		t.Errorf("3-days-ago bucket = %d, want 2000", got)
	}
	var windowSum int64
	for _, b := range buckets {
		windowSum += b.Total.Paise
	}
	if windowSum != 17000 {
		t.Errorf("window sum = %d, want 17000 (out-of-window entry leaked in)", windowSum)
	}
}

func TestOverBudgetClassification(t *testing.T) {
	wallet := core.Money{Paise: 433000} // week-equivalent = 100000
	entries := []core.SpendingEntry{
		entry("big", 0, 100001, core.Dinner),
		entry("ok", 1, 100000, core.Lunch), // exactly at the line is not over
	}
	buckets := DailyBuckets(entries, wallet, now, WindowDays)
	if !buckets[WindowDays-1].OverBudget {
		t.Errorf("today should be over budget")
	}
	if buckets[WindowDays-2].OverBudget {
		t.Errorf("yesterday at exactly the week-equivalent should not be over budget")
	}

	// Zero wallet never classifies anything as over.
	buckets = DailyBuckets(entries, core.Money{}, now, WindowDays)
	for i, b := range buckets {
		if b.OverBudget {
			t.Fatalf("bucket %d over budget with zero wallet", i)
		}
	}
}

func TestTotalsAndRemaining(t *testing.T) {
	entries := []core.SpendingEntry{
		entry("a", 0, 10000, core.Lunch),
		entry("b", 0, 5000, core.Lunch),
		entry("c", 2, 1000, core.Snack),
	}
	total := TotalSpend(entries)
	if total.Paise != 16000 {
		t.Errorf("total = %d, want 16000", total.Paise)
	}
	if got := TodaySpend(entries, now); got.Paise != 15000 {
		t.Errorf("today = %d, want 15000", got.Paise)
	}
	if got := Remaining(core.Money{Paise: 300000}, total); got.Paise != 284000 {
		t.Errorf("remaining = %d, want 284000", got.Paise)
	}
	// Never negative.
	if got := Remaining(core.Money{Paise: 100}, total); got.Paise != 0 {
		t.Errorf("remaining = %d, want 0", got.Paise)
	}
}

func TestProjection(t *testing.T) {
	t.Run("no non-zero buckets", func(t *testing.T) {
		buckets := DailyBuckets(nil, core.Money{}, now, WindowDays)
		if got := Projection(buckets); got.Paise != 0 {
			t.Errorf("projection = %d, want 0", got.Paise)
		}
	})

	t.Run("fewer than seven non-zero days", func(t *testing.T) {
		entries := []core.SpendingEntry{
			entry("a", 0, 3000, core.Lunch),
			entry("b", 4, 1000, core.Lunch),
		}
		buckets := DailyBuckets(entries, core.Money{}, now, WindowDays)
		// mean(3000, 1000) * 30 = 60000
		if got := Projection(buckets); got.Paise != 60000 {
			t.Errorf("projection = %d, want 60000", got.Paise)
		}
	})

	t.Run("only the last seven non-zero days count", func(t *testing.T) {
		var entries []core.SpendingEntry
		// Eight non-zero days at 1000 each; the oldest must be excluded.
		for i := 0; i < 8; i++ {
			entries = append(entries, entry(string(rune('a'+i)), i*2, 1000, core.Lunch))
		}
		entries[7].Price.Paise = 999999 // oldest, beyond the 7 most recent non-zero
		buckets := DailyBuckets(entries, core.Money{}, now, WindowDays)
		if got := Projection(buckets); got.Paise != 30000 {
			t.Errorf("projection = %d, want 30000", got.Paise)
		}
	})

	t.Run("rounds to nearest", func(t *testing.T) {
		entries := []core.SpendingEntry{
			entry("a", 0, 100, core.Lunch),
			entry("b", 1, 101, core.Lunch),
			entry("c", 2, 100, core.Lunch),
		}
		buckets := DailyBuckets(entries, core.Money{}, now, WindowDays)
		// mean = 100.333... * 30 = 3010
		if got := Projection(buckets); got.Paise != 3010 {
			t.Errorf("projection = %d, want 3010", got.Paise)
		}
	})
}

func TestCategoryBreakdown(t *testing.T) {
	entries := []core.SpendingEntry{
		entry("a", 0, 1000, core.Breakfast),
		entry("b", 0, 5000, core.Lunch),
		entry("c", 1, 4000, core.Breakfast),
		entry("d", 2, 5000, core.Snack), // ties with lunch; lunch was seen first
	}
	got := CategoryBreakdown(entries)
	want := []core.CategoryTotal{
		{Category: core.Breakfast, Total: core.Money{Paise: 5000}},
		{Category: core.Lunch, Total: core.Money{Paise: 5000}},
		{Category: core.Snack, Total: core.Money{Paise: 5000}},
	}
	// Breakfast sums to 5000 too: all three tie, order is first-seen.
	if len(got) != len(want) {
		t.Fatalf("got %d rows, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i].Category != want[i].Category || got[i].Total != want[i].Total {
			t.Errorf("row %d = %+v, want %+v", i, got[i], want[i])
		}
	}

	// Sums across categories equal total spend.
	var sum int64
	for _, r := range got {
		sum += r.Total.Paise
	}
	if total := TotalSpend(entries); sum != total.Paise {
		t.Errorf("breakdown sum %d != total %d", sum, total.Paise)
	}
}

func TestSummarizeScenarios(t *testing.T) {
	wallet := core.Money{Paise: 300000}

	t.Run("empty ledger", func(t *testing.T) {
		s := Summarize(nil, wallet, now)
		if s.Total.Paise != 0 || s.Remaining.Paise != 300000 || s.Projection.Paise != 0 {
			t.Errorf("unexpected summary: %+v", s)
		}
		if len(s.ByCategory) != 0 {
			t.Errorf("expected empty breakdown, got %v", s.ByCategory)
		}
		if len(s.Buckets) != WindowDays {
			t.Errorf("expected %d buckets, got %d", WindowDays, len(s.Buckets))
		}
	})

	t.Run("two entries today", func(t *testing.T) {
		entries := []core.SpendingEntry{
			entry("a", 0, 10000, core.Lunch),
			entry("b", 0, 5000, core.Snack),
		}
		s := Summarize(entries, wallet, now)
		if s.Total.Paise != 15000 {
			t.Errorf("total = %d, want 15000", s.Total.Paise)
		}
		if s.Today.Paise != 15000 {
			t.Errorf("today = %d, want 15000", s.Today.Paise)
		}
		if s.Remaining.Paise != 285000 {
			t.Errorf("remaining = %d, want 285000", s.Remaining.Paise)
		}
	})
}
