package usecase

import (
	"testing"
)

func TestConceptCatalogExactAliasResolution(t *testing.T) {
	catalog := NewConceptCatalog()

	got := catalog.Resolve([]string{"total revenue"})
	if len(got) != 1 || got[0] != "Revenues" {
		t.Fatalf("expected [Revenues], got %v", got)
	}

	got = catalog.Resolve([]string{"Net Income"})
	if len(got) != 1 || got[0] != "NetIncomeLoss" {
		t.Fatalf("expected [NetIncomeLoss], got %v", got)
	}
}

func TestConceptCatalogConceptIDIsItsOwnAlias(t *testing.T) {
	catalog := NewConceptCatalog()

	got := catalog.Resolve([]string{"StockholdersEquity"})
	if len(got) != 1 || got[0] != "StockholdersEquity" {
		t.Fatalf("expected [StockholdersEquity], got %v", got)
	}
}

func TestConceptCatalogFuzzyFallbackNeverEmpty(t *testing.T) {
	catalog := NewConceptCatalog()

	got := catalog.Resolve([]string{"quarterly revenue figure"})
	if len(got) == 0 {
		t.Fatalf("expected fuzzy candidates, got none")
	}
	if len(got) > fuzzyTopK {
		t.Fatalf("expected at most %d fuzzy candidates, got %d", fuzzyTopK, len(got))
	}
	if got[0] != "Revenues" {
		t.Fatalf("expected Revenues as closest concept, got %v", got)
	}
}

func TestConceptCatalogFuzzyIsDeterministic(t *testing.T) {
	catalog := NewConceptCatalog()

	first := catalog.Resolve([]string{"how much money"})
	for i := 0; i < 5; i++ {
		again := catalog.Resolve([]string{"how much money"})
		if len(again) != len(first) {
			t.Fatalf("resolution length changed between runs: %v vs %v", first, again)
		}
		for j := range first {
			if first[j] != again[j] {
				t.Fatalf("resolution order changed between runs: %v vs %v", first, again)
			}
		}
	}
}

func TestConceptCatalogNoHintsMeansNoRestriction(t *testing.T) {
	catalog := NewConceptCatalog()
	if got := catalog.Resolve(nil); got != nil {
		t.Fatalf("expected nil for no hints, got %v", got)
	}
	if got := catalog.Resolve([]string{"  "}); len(got) != 0 {
		t.Fatalf("expected empty for blank hint, got %v", got)
	}
}

func TestConceptCatalogDeduplicatesAcrossHints(t *testing.T) {
	catalog := NewConceptCatalog()

	got := catalog.Resolve([]string{"revenue", "net sales"})
	if len(got) != 1 || got[0] != "Revenues" {
		t.Fatalf("expected deduplicated [Revenues], got %v", got)
	}
}

func TestSplitAlphaNumLowerBreaksCamelCase(t *testing.T) {
	tokens := splitAlphaNumLower("NetCashProvidedByUsedInOperatingActivities")
	want := []string{"net", "cash", "provided", "by", "used", "in", "operating", "activities"}
	if len(tokens) != len(want) {
		t.Fatalf("expected %v, got %v", want, tokens)
	}
	for i := range want {
		if tokens[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, tokens)
		}
	}
}
