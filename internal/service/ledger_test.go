package service

import (
	"errors"
	"math"
	"testing"
)

func TestLedgerAddEntry(t *testing.T) {
	catalog := newTestCatalog(t, sampleCatalogCSV)
	ledger := NewLedger()

	entry, err := ledger.AddEntry(catalog, MealBreakfast, "Apple", 100, UnitGrams)
	if err != nil {
		t.Fatalf("AddEntry returned error: %v", err)
	}
	if entry.Meal != MealBreakfast || entry.Food != "Apple" || entry.Quantity != 100 || entry.Unit != UnitGrams {
		t.Fatalf("unexpected entry: %+v", entry)
	}
	if entry.Macros != (Macros{Kcal: 52, Protein: 0.3, Carbs: 14, Fat: 0.2}) {
		t.Fatalf("unexpected macros: %+v", entry.Macros)
	}
	if ledger.Len() != 1 || len(ledger.Entries(MealBreakfast)) != 1 {
		t.Fatalf("expected one breakfast entry, got %d", ledger.Len())
	}
}

func TestLedgerAddEntryRoundsQuantity(t *testing.T) {
	catalog := newTestCatalog(t, sampleCatalogCSV)
	ledger := NewLedger()

	entry, err := ledger.AddEntry(catalog, MealLunch, "Apple", 33.33, UnitGrams)
	if err != nil {
		t.Fatalf("AddEntry returned error: %v", err)
	}
	if entry.Quantity != 33.3 {
		t.Fatalf("expected quantity rounded to 33.3, got %v", entry.Quantity)
	}
	// 52 * 0.3333 = 17.3316
	if entry.Kcal != 17.3 {
		t.Fatalf("expected macros from the unrounded quantity, got %v", entry.Kcal)
	}
}

func TestLedgerAddEntryRejectsInvalidInput(t *testing.T) {
	catalog := newTestCatalog(t, sampleCatalogCSV)

	tests := []struct {
		name     string
		meal     MealSlot
		food     string
		quantity float64
		unit     Unit
		wantErr  error
	}{
		{name: "zero quantity", meal: MealBreakfast, food: "Apple", quantity: 0, unit: UnitGrams, wantErr: ErrInvalidEntry},
		{name: "negative quantity", meal: MealBreakfast, food: "Apple", quantity: -5, unit: UnitGrams, wantErr: ErrInvalidEntry},
		{name: "nan quantity", meal: MealBreakfast, food: "Apple", quantity: math.NaN(), unit: UnitGrams, wantErr: ErrInvalidEntry},
		{name: "infinite quantity", meal: MealBreakfast, food: "Apple", quantity: math.Inf(1), unit: UnitGrams, wantErr: ErrInvalidEntry},
		{name: "no food", meal: MealBreakfast, food: "  ", quantity: 100, unit: UnitGrams, wantErr: ErrInvalidEntry},
		{name: "unknown meal", meal: MealSlot("Brunch"), food: "Apple", quantity: 100, unit: UnitGrams, wantErr: ErrInvalidEntry},
		{name: "unknown unit", meal: MealBreakfast, food: "Apple", quantity: 100, unit: Unit("cups"), wantErr: ErrInvalidEntry},
		{name: "unknown food", meal: MealBreakfast, food: "Durian", quantity: 100, unit: UnitGrams, wantErr: ErrUnknownFood},
		{name: "overflowing quantity", meal: MealBreakfast, food: "Chicken breast", quantity: 1.5e308, unit: UnitGrams, wantErr: ErrInvalidEntry},
		{name: "overflowing portions", meal: MealBreakfast, food: "Apple", quantity: 1.5e308, unit: UnitPortion, wantErr: ErrInvalidEntry},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ledger := NewLedger()
			if _, err := ledger.AddEntry(catalog, tt.meal, tt.food, tt.quantity, tt.unit); !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
			if ledger.Len() != 0 {
				t.Fatalf("expected ledger to stay empty, got %d entries", ledger.Len())
			}
		})
	}
}

func TestLedgerAdvanceMealSaturates(t *testing.T) {
	ledger := NewLedger()

	expected := []string{"Lunch", "Snack", "Dinner", FinishedLabel, FinishedLabel}
	for i, label := range expected {
		index := ledger.AdvanceMeal()
		if ledger.CurrentLabel() != label {
			t.Fatalf("advance %d: expected %s, got %s", i+1, label, ledger.CurrentLabel())
		}
		if want := min(i+1, 4); index != want {
			t.Fatalf("advance %d: expected index %d, got %d", i+1, want, index)
		}
	}

	for i := 0; i < 10; i++ {
		ledger.AdvanceMeal()
	}
	if ledger.CurrentIndex() != 4 || !ledger.Finished() {
		t.Fatalf("expected cursor to stay at 4, got %d", ledger.CurrentIndex())
	}
	if _, ok := ledger.CurrentMeal(); ok {
		t.Fatal("expected no current meal after finishing")
	}
}

func TestLedgerTotals(t *testing.T) {
	catalog := newTestCatalog(t, sampleCatalogCSV)
	ledger := NewLedger()

	mustAdd := func(meal MealSlot, food string, quantity float64, unit Unit) {
		t.Helper()
		if _, err := ledger.AddEntry(catalog, meal, food, quantity, unit); err != nil {
			t.Fatalf("AddEntry(%s, %s) returned error: %v", meal, food, err)
		}
	}

	mustAdd(MealBreakfast, "Banana", 100, UnitGrams)
	mustAdd(MealBreakfast, "Apple", 100, UnitGrams)
	mustAdd(MealLunch, "Apple", 2, UnitPortion)
	for i := 0; i < 10; i++ {
		mustAdd(MealSnack, "Apple", 50, UnitGrams)
	}

	tests := []struct {
		meal     MealSlot
		expected Macros
	}{
		{MealBreakfast, Macros{Kcal: 141, Protein: 1.4, Carbs: 37, Fat: 0.5}},
		{MealLunch, Macros{Kcal: 156, Protein: 0.9, Carbs: 42, Fat: 0.6}},
		{MealSnack, Macros{Kcal: 260, Protein: 2, Carbs: 70, Fat: 1}},
		{MealDinner, Macros{}},
	}
	for _, tt := range tests {
		if got := ledger.MealTotals(tt.meal); got != tt.expected {
			t.Fatalf("MealTotals(%s) = %+v, want %+v", tt.meal, got, tt.expected)
		}
	}

	want := Macros{Kcal: 557, Protein: 4.3, Carbs: 149, Fat: 2.1}
	if got := ledger.GrandTotals(); got != want {
		t.Fatalf("GrandTotals() = %+v, want %+v", got, want)
	}
}

func TestLedgerEntriesOrder(t *testing.T) {
	catalog := newTestCatalog(t, sampleCatalogCSV)
	ledger := NewLedger()

	for _, step := range []struct {
		meal MealSlot
		food string
	}{
		{MealDinner, "Chicken breast"},
		{MealBreakfast, "Banana"},
		{MealBreakfast, "Apple"},
	} {
		if _, err := ledger.AddEntry(catalog, step.meal, step.food, 100, UnitGrams); err != nil {
			t.Fatalf("AddEntry returned error: %v", err)
		}
	}

	all := ledger.AllEntries()
	got := []string{all[0].Food, all[1].Food, all[2].Food}
	want := []string{"Banana", "Apple", "Chicken breast"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("AllEntries order = %q, want %q", got, want)
		}
	}

	breakfast := ledger.Entries(MealBreakfast)
	breakfast[0].Food = "changed"
	if ledger.Entries(MealBreakfast)[0].Food != "Banana" {
		t.Fatal("expected Entries to return a copy")
	}
}

func TestLedgerReset(t *testing.T) {
	catalog := newTestCatalog(t, sampleCatalogCSV)
	ledger := NewLedger()

	if _, err := ledger.AddEntry(catalog, MealBreakfast, "Apple", 100, UnitGrams); err != nil {
		t.Fatalf("AddEntry returned error: %v", err)
	}
	ledger.AdvanceMeal()
	ledger.AdvanceMeal()

	ledger.Reset()

	if ledger.Len() != 0 || ledger.CurrentIndex() != 0 || ledger.CurrentLabel() != "Breakfast" {
		t.Fatalf("expected empty ledger at Breakfast, got %d entries at %s", ledger.Len(), ledger.CurrentLabel())
	}
	if ledger.GrandTotals() != (Macros{}) {
		t.Fatalf("expected zero totals, got %+v", ledger.GrandTotals())
	}
}

func TestRestoreLedger(t *testing.T) {
	entries := []LogEntry{
		{Meal: MealLunch, Food: "Apple", Quantity: 100, Unit: UnitGrams, Macros: Macros{Kcal: 52}},
		{Meal: MealBreakfast, Food: "Banana", Quantity: 1, Unit: UnitPortion, Macros: Macros{Kcal: 106.8}},
	}

	ledger, err := RestoreLedger(2, entries)
	if err != nil {
		t.Fatalf("RestoreLedger returned error: %v", err)
	}
	if ledger.CurrentLabel() != "Snack" {
		t.Fatalf("expected Snack, got %s", ledger.CurrentLabel())
	}
	if ledger.GrandTotals().Kcal != 158.8 {
		t.Fatalf("unexpected totals: %+v", ledger.GrandTotals())
	}

	if _, err := RestoreLedger(5, nil); !errors.Is(err, ErrInvalidLedger) {
		t.Fatalf("expected ErrInvalidLedger for cursor 5, got %v", err)
	}
	if _, err := RestoreLedger(0, []LogEntry{{Meal: "Brunch"}}); !errors.Is(err, ErrInvalidLedger) {
		t.Fatalf("expected ErrInvalidLedger for unknown meal, got %v", err)
	}
}

func TestParseMealSlot(t *testing.T) {
	if meal, ok := ParseMealSlot(" dinner "); !ok || meal != MealDinner {
		t.Fatalf("expected Dinner, got %q %v", meal, ok)
	}
	if _, ok := ParseMealSlot("Brunch"); ok {
		t.Fatal("expected Brunch to be rejected")
	}
}

func TestLedgerTotalsAfterRejectedOverflow(t *testing.T) {
	catalog := newTestCatalog(t, sampleCatalogCSV)
	ledger := NewLedger()

	if _, err := ledger.AddEntry(catalog, MealBreakfast, "Chicken breast", 1.5e308, UnitGrams); !errors.Is(err, ErrInvalidEntry) {
		t.Fatalf("expected ErrInvalidEntry, got %v", err)
	}
	if _, err := ledger.AddEntry(catalog, MealBreakfast, "Apple", 100, UnitGrams); err != nil {
		t.Fatalf("AddEntry returned error: %v", err)
	}

	if ledger.Len() != 1 {
		t.Fatalf("expected only the valid entry, got %d", ledger.Len())
	}
	want := Macros{Kcal: 52, Protein: 0.3, Carbs: 14, Fat: 0.2}
	if got := ledger.MealTotals(MealBreakfast); got != want {
		t.Fatalf("MealTotals() = %+v, want %+v", got, want)
	}
	if got := ledger.GrandTotals(); got != want {
		t.Fatalf("GrandTotals() = %+v, want %+v", got, want)
	}
}

func TestLedgerRejectsEntryThatOverflowsTotals(t *testing.T) {
	catalog := newTestCatalog(t, sampleCatalogCSV)
	ledger := NewLedger()

	// 单条有限，但两条相加超出 float64 范围
	if _, err := ledger.AddEntry(catalog, MealBreakfast, "Chicken breast", 1e308, UnitGrams); err != nil {
		t.Fatalf("AddEntry returned error: %v", err)
	}
	before := ledger.GrandTotals()

	if _, err := ledger.AddEntry(catalog, MealLunch, "Chicken breast", 1e308, UnitGrams); !errors.Is(err, ErrInvalidEntry) {
		t.Fatalf("expected ErrInvalidEntry, got %v", err)
	}
	if ledger.Len() != 1 {
		t.Fatalf("expected the rejected entry not to be stored, got %d entries", ledger.Len())
	}
	if got := ledger.GrandTotals(); got != before || math.IsInf(got.Kcal, 0) {
		t.Fatalf("expected totals to stay %+v, got %+v", before, got)
	}
}
