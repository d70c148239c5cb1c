package plan

import (
	"reflect"
	"testing"

	"nutrisight/internal/core"
)

func meal(dish, cat string, price float64) *Meal {
	return &Meal{DishName: dish, Category: cat, Calories: 200, Protein: 10, VegNonVeg: "Veg", PriceINR: price}
}

func TestCandidatesFirstSeenOrder(t *testing.T) {
	w := Weekly{Days: []Day{
		{Day: 1, Meals: map[core.MealSlot]*Meal{
			core.Breakfast: meal("Poha", "breakfast", 30),
			core.Lunch:     meal("Dal Rice", "lunch", 55),
			core.Dinner:    nil, // empty slot skipped
			core.Snack:     meal("Chaat", "snack", 25),
		}},
		{Day: 2, Meals: map[core.MealSlot]*Meal{
			core.Breakfast: meal("Poha", "breakfast", 999), // dup, first sighting wins
			core.Lunch:     meal("Rajma", "lunch", 70),
		}},
	}}

	got := Candidates(w)
	var names []string
	for _, c := range got {
		names = append(names, c.Dish)
	}
	want := []string{"Poha", "Dal Rice", "Chaat", "Rajma"}
	if !reflect.DeepEqual(names, want) {
		t.Fatalf("order = %v, want %v", names, want)
	}
	if got[0].PricePaise != 3000 {
		t.Errorf("duplicate dish kept later price %d, want 3000 from first sighting", got[0].PricePaise)
	}
}

func TestCandidatesIdempotent(t *testing.T) {
	w := Weekly{Days: []Day{
		{Day: 1, Meals: map[core.MealSlot]*Meal{
			core.Breakfast: meal("Idli", "breakfast", 20),
			core.Dinner:    meal("Khichdi", "dinner", 45),
		}},
	}}
	first := Candidates(w)
	second := Candidates(w)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("two runs differ: %v vs %v", first, second)
	}
}

func TestCandidatesEmptyPlan(t *testing.T) {
	if got := Candidates(Weekly{}); len(got) != 0 {
		t.Fatalf("expected no candidates, got %v", got)
	}
	w := Weekly{Days: []Day{{Day: 1, Meals: map[core.MealSlot]*Meal{}}}}
	if got := Candidates(w); len(got) != 0 {
		t.Fatalf("expected no candidates for empty slots, got %v", got)
	}
}

func TestCandidatesCategoryFallsBackToSlot(t *testing.T) {
	w := Weekly{Days: []Day{
		{Day: 1, Meals: map[core.MealSlot]*Meal{
			core.Lunch: {DishName: "Thali", PriceINR: 80},
		}},
	}}
	got := Candidates(w)
	if len(got) != 1 || got[0].Category != core.Lunch {
		t.Fatalf("expected lunch category from slot, got %v", got)
	}
}

func TestRupeesToPaise(t *testing.T) {
	cases := []struct {
		in   float64
		want int64
	}{
		{0, 0},
		{-5, 0},
		{30, 3000},
		{55.5, 5550},
		{0.005, 1}, // rounds half away from zero
	}
	for _, tc := range cases {
		if got := RupeesToPaise(tc.in); got != tc.want {
			t.Errorf("RupeesToPaise(%v) = %d, want %d", tc.in, got, tc.want)
		}
	}
}
