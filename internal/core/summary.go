package core

import "time"

// DailyBucket is a single calendar day's aggregated spend. Buckets are
// derived data, recomputed on every aggregation pass and never persisted.
type DailyBucket struct {
	Date       time.Time `json:"date"`
	Total      Money     `json:"total"`
	OverBudget bool      `json:"over_budget"`
}

// CategoryTotal is an amount aggregated by meal category.
type CategoryTotal struct {
	Category MealSlot `json:"category"`
	Total    Money    `json:"total"`
}

// BudgetSummary is the full derived view of the ledger for a trailing
// window ending today.
type BudgetSummary struct {
	Wallet     Money           `json:"wallet"`
	Total      Money           `json:"total_spent"`
	Today      Money           `json:"today_spent"`
	Remaining  Money           `json:"remaining"`
	Projection Money           `json:"projected_month"`
	Buckets    []DailyBucket   `json:"daily"`
	ByCategory []CategoryTotal `json:"by_category"`
}
