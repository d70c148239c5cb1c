// Package analytics computes derived budget statistics from the spending
// ledger. Everything here is a pure function of (entries, wallet, now):
// results are recomputed on every call and never cached, so a mutation to
// the ledger is visible in the next aggregation pass.
package analytics

import (
	"math"
	"sort"
	"time"

	"nutrisight/internal/core"
)

const (
	// WindowDays is the trailing window covered by the daily buckets.
	WindowDays = 30

	// ProjectionDays is how many trailing non-zero buckets feed the
	// monthly projection.
	ProjectionDays = 7

	// WeeksPerMonth converts a monthly wallet into a week-equivalent
	// figure for the over-budget day classification.
	WeeksPerMonth = 4.33
)

// DailyBuckets produces one bucket per calendar day for a trailing window of
// windowDays ending at now, chronologically ordered with no gaps. Days
// without entries yield a zero total. Runs in O(entries + windowDays).
func DailyBuckets(entries []core.SpendingEntry, wallet core.Money, now time.Time, windowDays int) []core.DailyBucket {
	if windowDays <= 0 {
		return nil
	}

	y, m, d := now.Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, now.Location())
	start := today.AddDate(0, 0, -(windowDays - 1))

	sums := make(map[string]int64, windowDays)
	for _, e := range entries {
		day := e.Day()
		if day.Before(start) || day.After(today) {
			continue
		}
		sums[day.Format("2006-01-02")] += e.Price.Paise
	}

	// Week-equivalent ceiling used only for classification, never alerts.
	var weekBudget float64
	if wallet.Paise > 0 {
		weekBudget = float64(wallet.Paise) / WeeksPerMonth
	}

	buckets := make([]core.DailyBucket, 0, windowDays)
	for day := start; !day.After(today); day = day.AddDate(0, 0, 1) {
		total := sums[day.Format("2006-01-02")]
		buckets = append(buckets, core.DailyBucket{
			Date:       day,
			Total:      core.Money{Paise: total},
			OverBudget: wallet.Paise > 0 && float64(total) > weekBudget,
		})
	}
	return buckets
}

// TotalSpend sums all entry prices in the ledger.
func TotalSpend(entries []core.SpendingEntry) core.Money {
	var total int64
	for _, e := range entries {
		total += e.Price.Paise
	}
	return core.Money{Paise: total}
}

// TodaySpend sums the entries logged on the same calendar day as now.
func TodaySpend(entries []core.SpendingEntry, now time.Time) core.Money {
	var total int64
	for _, e := range entries {
		if core.SameDay(e.LoggedAt, now) {
			total += e.Price.Paise
		}
	}
	return core.Money{Paise: total}
}

// Remaining returns max(wallet - total, 0); it is never negative.
func Remaining(wallet, total core.Money) core.Money {
	rem := wallet.Paise - total.Paise
	if rem < 0 {
		rem = 0
	}
	return core.Money{Paise: rem}
}

// Projection extrapolates a monthly spend from the trailing buckets: the
// mean of the last ProjectionDays non-zero daily totals multiplied by 30,
// rounded to the nearest paisa. With no non-zero days in that range the
// projection is zero. This is a plain trailing-average extrapolation, not a
// statistical model.
func Projection(buckets []core.DailyBucket) core.Money {
	var sum, n int64
	for i := len(buckets) - 1; i >= 0 && n < ProjectionDays; i-- {
		if buckets[i].Total.Paise > 0 {
			sum += buckets[i].Total.Paise
			n++
		}
	}
	if n == 0 {
		return core.Money{}
	}
	avg := float64(sum) / float64(n)
	return core.Money{Paise: int64(math.Round(avg * 30))}
}

// CategoryBreakdown groups entry prices by category, sorted by descending
// total. Ties keep the order categories were first seen in the ledger.
func CategoryBreakdown(entries []core.SpendingEntry) []core.CategoryTotal {
	sums := make(map[core.MealSlot]int64)
	var order []core.MealSlot
	for _, e := range entries {
		if _, seen := sums[e.Category]; !seen {
			order = append(order, e.Category)
		}
		sums[e.Category] += e.Price.Paise
	}

	out := make([]core.CategoryTotal, 0, len(order))
	for _, cat := range order {
		out = append(out, core.CategoryTotal{Category: cat, Total: core.Money{Paise: sums[cat]}})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Total.Paise > out[j].Total.Paise
	})
	return out
}

// Summarize runs the full aggregation pass over the ledger for the default
// 30-day window ending at now.
func Summarize(entries []core.SpendingEntry, wallet core.Money, now time.Time) core.BudgetSummary {
	buckets := DailyBuckets(entries, wallet, now, WindowDays)
	total := TotalSpend(entries)
	return core.BudgetSummary{
		Wallet:     wallet,
		Total:      total,
		Today:      TodaySpend(entries, now),
		Remaining:  Remaining(wallet, total),
		Projection: Projection(buckets),
		Buckets:    buckets,
		ByCategory: CategoryBreakdown(entries),
	}
}
