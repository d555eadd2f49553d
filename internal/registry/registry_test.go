package registry

import (
	"context"
	"path/filepath"
	"testing"
)

func openTestRegistry(t *testing.T) *Registry {
	t.Helper()
	r, err := Open(filepath.Join(t.TempDir(), "cards.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = r.Close() })
	return r
}

func seed(t *testing.T, r *Registry) {
	t.Helper()
	cards := []Card{
		{Asset: "FREEDOMKEK", Series: 1, Number: 1, Artist: "scrilla", Supply: 300},
		{Asset: "FAKEASF", Series: 1, Number: 2, Artist: "anon", Supply: 500},
		{Asset: "KEKLAMBO", Series: 4, Number: 12, Artist: "lamborare", Supply: 100},
	}
	for _, c := range cards {
		if err := r.Upsert(context.Background(), c); err != nil {
			t.Fatalf("Upsert(%s): %v", c.Asset, err)
		}
	}
}

func TestRegistry_LookupCaseInsensitive(t *testing.T) {
	r := openTestRegistry(t)
	seed(t, r)

	for _, name := range []string{"FREEDOMKEK", "freedomkek", "FreedomKek"} {
		card, ok := r.Lookup(context.Background(), name)
		if !ok {
			t.Errorf("Lookup(%q) miss", name)
			continue
		}
		if card.Artist != "scrilla" || card.Supply != 300 {
			t.Errorf("Lookup(%q) = %+v", name, card)
		}
	}
	if _, ok := r.Lookup(context.Background(), "NOPE"); ok {
		t.Error("unknown asset must miss")
	}
}

func TestRegistry_KnownIdentifiers(t *testing.T) {
	r := openTestRegistry(t)
	if len(r.KnownIdentifiers()) != 0 {
		t.Error("fresh registry must have no identifiers")
	}
	seed(t, r)
	ids := r.KnownIdentifiers()
	if len(ids) != 3 {
		t.Fatalf("identifiers = %v", ids)
	}
	if ids[0] != "FREEDOMKEK" {
		t.Errorf("identifiers must be ordered by series/number: %v", ids)
	}
}

func TestRegistry_Upsert(t *testing.T) {
	r := openTestRegistry(t)
	seed(t, r)
	if err := r.Upsert(context.Background(), Card{Asset: "FREEDOMKEK", Series: 1, Number: 1, Artist: "scrilla", Supply: 299}); err != nil {
		t.Fatal(err)
	}
	card, _ := r.Lookup(context.Background(), "FREEDOMKEK")
	if card.Supply != 299 {
		t.Errorf("supply = %d after upsert, want 299", card.Supply)
	}
	if err := r.Upsert(context.Background(), Card{Asset: "  "}); err == nil {
		t.Error("blank asset must be rejected")
	}
}

func TestParseNavToken(t *testing.T) {
	tests := []struct {
		token      string
		wantSeries int
		wantNumber int
		wantOK     bool
	}{
		{"s4c12", 4, 12, true},
		{"S4 C12", 4, 12, true},
		{"s1c1", 1, 1, true},
		{" s10 c3 ", 10, 3, true},
		{"s4cX", 0, 0, false},
		{"sXc12", 0, 0, false},
		{"4c12", 0, 0, false},
		{"s4", 0, 0, false},
		{"c12", 0, 0, false},
		{"", 0, 0, false},
		{"s0c1", 0, 0, false},
		{"s-1c2", 0, 0, false},
	}
	for _, tt := range tests {
		series, number, ok := ParseNavToken(tt.token)
		if ok != tt.wantOK || series != tt.wantSeries || number != tt.wantNumber {
			t.Errorf("ParseNavToken(%q) = (%d, %d, %v), want (%d, %d, %v)",
				tt.token, series, number, ok, tt.wantSeries, tt.wantNumber, tt.wantOK)
		}
	}
}

func TestRegistry_ByNavToken(t *testing.T) {
	r := openTestRegistry(t)
	seed(t, r)

	card, ok := r.ByNavToken(context.Background(), "s4c12")
	if !ok || card.Asset != "KEKLAMBO" {
		t.Errorf("ByNavToken(s4c12) = (%+v, %v)", card, ok)
	}
	if _, ok := r.ByNavToken(context.Background(), "s9c9"); ok {
		t.Error("missing card must return ok=false")
	}
	if _, ok := r.ByNavToken(context.Background(), "s4cQQ"); ok {
		t.Error("non-numeric index must return ok=false, not an error")
	}
}
