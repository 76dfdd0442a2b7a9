package main

import (
	"bytes"
	"testing"

	"github.com/intakelog/internal/service"
)

func TestWriteSampleCatalogParses(t *testing.T) {
	for _, withPortions := range []bool{true, false} {
		var buf bytes.Buffer
		if err := writeSampleCatalog(&buf, withPortions); err != nil {
			t.Fatalf("write sample catalog: %v", err)
		}

		catalog, err := service.ParseCatalog("sample.csv", &buf)
		if err != nil {
			t.Fatalf("parse sample catalog (portions=%v): %v", withPortions, err)
		}
		if catalog.Len() != len(sampleFoods) {
			t.Fatalf("expected %d foods, got %d", len(sampleFoods), catalog.Len())
		}

		apple, ok := catalog.Lookup("Apple")
		if !ok {
			t.Fatalf("expected Apple in sample catalog")
		}
		if apple.PortionSize != 150 || apple.Per100.Kcal != 52 {
			t.Fatalf("unexpected Apple record: %+v", apple)
		}
		if diff := apple.PerPortion.Kcal - 78; diff > 1e-9 || diff < -1e-9 {
			t.Fatalf("expected 78 kcal per portion, got %v", apple.PerPortion.Kcal)
		}
	}
}
