package view

import (
	"bytes"
	"html/template"
	"strings"
	"testing"
)

func TestTrackerTemplate(t *testing.T) {
	tmpl := Templates()

	t.Run("catalog error hides ledger", func(t *testing.T) {
		var buf bytes.Buffer
		err := tmpl.ExecuteTemplate(&buf, "tracker.html", map[string]any{
			"title":        "Daily Intake Tracker",
			"help":         template.HTML("<p><strong>How to use</strong></p>"),
			"catalogError": "no catalog loaded: could not read catalog",
		})
		if err != nil {
			t.Fatalf("execute template: %v", err)
		}
		out := buf.String()
		if !strings.Contains(out, "no catalog loaded") || !strings.Contains(out, "<strong>How to use</strong>") {
			t.Fatalf("expected error and help in output:\n%s", out)
		}
		if strings.Contains(out, `action="/items"`) {
			t.Fatal("expected item form to be hidden without a catalog")
		}
	})

	t.Run("ledger view", func(t *testing.T) {
		type totals struct{ Kcal, Protein, Carbs, Fat float64 }
		type summary struct {
			Meal   string
			Totals totals
		}
		type entry struct {
			Meal, Food, Unit                     string
			Quantity, Kcal, Protein, Carbs, Fat float64
		}

		var buf bytes.Buffer
		err := tmpl.ExecuteTemplate(&buf, "tracker.html", map[string]any{
			"title":           "Daily Intake Tracker",
			"catalogSource":   "foods.csv",
			"date":            "2025-10-01",
			"units":           []string{"grams", "portion"},
			"unit":            "portion",
			"currentMeal":     "Lunch",
			"foods":           []string{"Apple", "<Banana>"},
			"defaultQuantity": 1.0,
			"entries":         []entry{{Meal: "Breakfast", Food: "Apple", Unit: "grams", Quantity: 100, Kcal: 52, Protein: 0.3, Carbs: 14, Fat: 0.2}},
			"summaries":       []summary{{Meal: "Breakfast", Totals: totals{52, 0.3, 14, 0.2}}},
			"total":           totals{52, 0.3, 14, 0.2},
			"hasEntries":      true,
		})
		if err != nil {
			t.Fatalf("execute template: %v", err)
		}
		out := buf.String()
		for _, want := range []string{
			"Meal: Lunch",
			`value="portion" checked`,
			"&lt;Banana&gt;",
			"52.0 kcal | P 0.3 g | C 14.0 g | F 0.2 g",
			`href="/export.csv"`,
		} {
			if !strings.Contains(out, want) {
				t.Fatalf("expected %q in output:\n%s", want, out)
			}
		}
	})
}
