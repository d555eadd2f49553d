package query

import (
	"strings"
	"testing"
)

func TestExpand(t *testing.T) {
	tests := []struct {
		name     string
		in       string
		contains []string
	}{
		{"fee expands", "what is the submission fee", []string{"cost", "price", "submit", "application"}},
		{"fake rare expands", "tell me about Fake Rare history", []string{"fakerare", "fake-rare"}},
		{"burn expands", "where do I burn the card", []string{"burned", "destroy"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Expand(tt.in)
			if !strings.HasPrefix(got, tt.in) {
				t.Errorf("expansion must preserve the original prefix: %q", got)
			}
			for _, want := range tt.contains {
				if !strings.Contains(got, want) {
					t.Errorf("Expand(%q) = %q, missing %q", tt.in, got, want)
				}
			}
		})
	}
}

func TestExpand_NoMatchVerbatim(t *testing.T) {
	in := "zzz qqq xyzzy"
	if got := Expand(in); got != in {
		t.Errorf("Expand(%q) = %q, want input unchanged", in, got)
	}
}

func TestExpand_IdempotentGrowth(t *testing.T) {
	// Expanding twice must keep everything a single expansion produced;
	// duplicates are tolerated downstream.
	in := "submission fee for series 5"
	once := Expand(in)
	twice := Expand(once)
	for _, tok := range strings.Fields(once) {
		if !strings.Contains(twice, tok) {
			t.Errorf("second expansion lost token %q", tok)
		}
	}
}

func TestExpand_Deterministic(t *testing.T) {
	in := "fee burn artist series"
	first := Expand(in)
	for i := 0; i < 20; i++ {
		if got := Expand(in); got != first {
			t.Fatalf("non-deterministic expansion: %q vs %q", got, first)
		}
	}
}
