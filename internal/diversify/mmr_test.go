package diversify

import (
	"testing"

	"github.com/kektech/cardbot/internal/models"
)

func passage(id, text string, score float64) *models.Passage {
	return &models.Passage{ID: id, Text: text, Score: score}
}

func TestSelectDiverse_SmallInputUnchanged(t *testing.T) {
	passages := []*models.Passage{
		passage("a", "first passage", 0.9),
		passage("b", "second passage", 0.5),
	}
	got := SelectDiverse(passages, 5, DefaultLambda)
	if len(got) != 2 {
		t.Fatalf("expected 2 passages, got %d", len(got))
	}
	if got[0] != passages[0] || got[1] != passages[1] {
		t.Error("input at or below target count must be returned unchanged")
	}
}

func TestSelectDiverse_OutputLength(t *testing.T) {
	passages := []*models.Passage{
		passage("a", "freedomkek origin story", 0.9),
		passage("b", "freedomkek origin story retold", 0.85),
		passage("c", "submission fee schedule", 0.8),
		passage("d", "series five artist list", 0.7),
		passage("e", "burn address details", 0.6),
	}
	for k := 1; k <= len(passages); k++ {
		got := SelectDiverse(passages, k, DefaultLambda)
		if len(got) != k {
			t.Errorf("targetCount=%d: got %d passages", k, len(got))
		}
	}
}

func TestSelectDiverse_TopScoreFirst(t *testing.T) {
	passages := []*models.Passage{
		passage("low", "something else", 0.2),
		passage("top", "the best passage", 0.95),
		passage("mid", "a middle passage", 0.5),
		passage("mid2", "another middle passage", 0.45),
	}
	got := SelectDiverse(passages, 2, DefaultLambda)
	if got[0].ID != "top" {
		t.Errorf("output[0] = %q, want the globally highest-scored passage", got[0].ID)
	}
}

func TestSelectDiverse_PrefersNovelty(t *testing.T) {
	// "dup" has a higher raw score than "novel" but repeats the seed text
	// verbatim; with lambda weighting novelty it should lose.
	passages := []*models.Passage{
		passage("seed", "freedomkek supply and issuance numbers", 0.9),
		passage("dup", "freedomkek supply and issuance numbers", 0.55),
		passage("novel", "series four artists and their cards", 0.5),
	}
	got := SelectDiverse(passages, 2, 0.5)
	if got[1].ID != "novel" {
		t.Errorf("second pick = %q, want the novel passage", got[1].ID)
	}
}

func TestSelectDiverse_TieFirstOccurrenceWins(t *testing.T) {
	passages := []*models.Passage{
		passage("seed", "alpha beta", 0.9),
		passage("t1", "gamma delta", 0.5),
		passage("t2", "epsilon zeta", 0.5),
	}
	got := SelectDiverse(passages, 2, DefaultLambda)
	if got[1].ID != "t1" {
		t.Errorf("tie break picked %q, want first occurrence t1", got[1].ID)
	}
}
