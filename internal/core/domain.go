package core

import (
	"errors"
	"strings"
	"time"
)

const (
	Breakfast MealSlot = "breakfast"
	Lunch     MealSlot = "lunch"
	Dinner    MealSlot = "dinner"
	Snack     MealSlot = "snack"
)

// SlotOrder is the canonical iteration order for meal slots within a day.
var SlotOrder = []MealSlot{Breakfast, Lunch, Dinner, Snack}

type (
	// MealSlot names the slot a meal belongs to. The set is open: the four
	// canonical slots are known, but any non-empty string is accepted.
	MealSlot string

	Money struct {
		Paise int64
	}

	// SpendingEntry is one immutable row of the local spending ledger.
	// Entries are never updated in place; a correction is a remove plus a
	// fresh append.
	SpendingEntry struct {
		ID       string    `json:"id"`
		LoggedAt time.Time `json:"logged_at"`
		Dish     string    `json:"dish"`
		Price    Money     `json:"price"`
		Category MealSlot  `json:"category"`
		Calories float64   `json:"calories_kcal"`
		Diet     string    `json:"veg_nonveg"`
	}

	// MealCandidate is a deduplicated, loggable meal derived from the
	// remote weekly plan. PricePaise is zero when the plan carried no
	// price hint for the dish.
	MealCandidate struct {
		Dish       string   `json:"dish_name"`
		Category   MealSlot `json:"category"`
		Calories   float64  `json:"calories_kcal"`
		Protein    float64  `json:"protein_g"`
		Diet       string   `json:"veg_nonveg"`
		PricePaise int64    `json:"price_paise"`
	}
)

var (
	ErrInvalidAmount = errors.New("invalid amount")
	ErrEmptyID       = errors.New("empty entry id")
	ErrEmptyDish     = errors.New("empty dish name")
	ErrEmptySlot     = errors.New("empty meal slot")
	ErrZeroTimestamp = errors.New("zero timestamp")
)

func (m Money) Validate() error {
	if m.Paise <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (s MealSlot) Validate() error {
	if strings.TrimSpace(string(s)) == "" {
		return ErrEmptySlot
	}
	return nil
}

// IsVeg reports whether the dietary flag marks a vegetarian meal.
// The flag is free text and compared case-insensitively.
func IsVeg(diet string) bool {
	return strings.EqualFold(strings.TrimSpace(diet), "veg")
}

func (e SpendingEntry) Validate() error {
	if strings.TrimSpace(e.ID) == "" {
		return ErrEmptyID
	}
	if e.LoggedAt.IsZero() {
		return ErrZeroTimestamp
	}
	if strings.TrimSpace(e.Dish) == "" {
		return ErrEmptyDish
	}
	if len(e.Dish) > 200 {
		return errors.New("dish name too long (max 200 characters)")
	}
	if err := e.Price.Validate(); err != nil {
		return err
	}
	if err := e.Category.Validate(); err != nil {
		return err
	}
	if e.Calories < 0 {
		return errors.New("negative calorie count")
	}
	return nil
}

// Day returns the calendar day the entry was logged on, truncated to
// midnight in the entry's own location.
func (e SpendingEntry) Day() time.Time {
	y, m, d := e.LoggedAt.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, e.LoggedAt.Location())
}

// SameDay reports whether two instants fall on the same calendar day.
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
