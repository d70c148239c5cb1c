// Package plan models the remote weekly meal plan and derives loggable
// meal candidates from it.
package plan

import (
	"math"

	"nutrisight/internal/core"
)

// Meal is a single recommended meal as returned by the plan service.
// PriceINR may be zero when the service has no price for the dish.
type Meal struct {
	DishName  string  `json:"dish_name"`
	Calories  float64 `json:"calories_kcal"`
	Protein   float64 `json:"protein_g"`
	Carbs     float64 `json:"carbs_g"`
	Fats      float64 `json:"fats_g"`
	Category  string  `json:"category"`
	VegNonVeg string  `json:"veg_nonveg"`
	PriceINR  float64 `json:"price_inr"`
}

// Day holds one day of the weekly plan. Slots without a recommendation
// carry a nil meal.
type Day struct {
	Day   int                     `json:"day"`
	Meals map[core.MealSlot]*Meal `json:"meals"`
}

// Weekly is the plan service's seven-day response. DailyTargets is passed
// through untouched for the presentation layer.
type Weekly struct {
	UserID       string             `json:"user_id"`
	DailyTargets map[string]float64 `json:"daily_targets"`
	Days         []Day              `json:"days"`
}

// Prices maps dish names to their reference price in paise.
type Prices map[string]int64

// Candidates flattens a weekly plan into one candidate per distinct dish
// name, in first-encountered order: outer iteration over days, inner
// iteration over the canonical slot order within a day; empty slots are
// skipped. When a dish appears more than once only the first occurrence's
// attributes are kept.
func Candidates(w Weekly) []core.MealCandidate {
	seen := make(map[string]struct{})
	var out []core.MealCandidate

	for _, day := range w.Days {
		for _, slot := range core.SlotOrder {
			meal, ok := day.Meals[slot]
			if !ok || meal == nil || meal.DishName == "" {
				continue
			}
			if _, dup := seen[meal.DishName]; dup {
				continue
			}
			seen[meal.DishName] = struct{}{}

			cat := core.MealSlot(meal.Category)
			if cat == "" {
				cat = slot
			}
			out = append(out, core.MealCandidate{
				Dish:       meal.DishName,
				Category:   cat,
				Calories:   meal.Calories,
				Protein:    meal.Protein,
				Diet:       meal.VegNonVeg,
				PricePaise: RupeesToPaise(meal.PriceINR),
			})
		}
	}
	return out
}

// RupeesToPaise converts a float rupee amount from the wire into integer
// paise, rounding half away from zero. Non-positive amounts map to zero so
// "no price" survives the conversion.
func RupeesToPaise(inr float64) int64 {
	if inr <= 0 {
		return 0
	}
	return int64(math.Round(inr * 100))
}
