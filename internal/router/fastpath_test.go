package router

import (
	"encoding/json"
	"math"
	"strings"
	"testing"

	"github.com/kektech/cardbot/internal/config"
	"github.com/kektech/cardbot/internal/models"
)

func fpConfig() config.FastPathConfig {
	return config.Defaults().FastPath
}

func cand(id string, st models.SourceType, similarity, weighted float64) models.RouterCandidate {
	return models.RouterCandidate{ID: id, SourceType: st, Similarity: similarity, WeightedScore: weighted}
}

func TestDetectFastPath_Empty(t *testing.T) {
	got := DetectFastPath(nil, nil, fpConfig())
	if got.Triggered {
		t.Error("empty candidates must not trigger")
	}
	if len(got.Reasons) == 0 {
		t.Error("empty-candidate decisions still need an explicit reason")
	}
}

func TestDetectFastPath_DominantCardTriggers(t *testing.T) {
	// >=90% of the weighted mass is structured-fact with no close second.
	candidates := []models.RouterCandidate{
		cand("card", models.SourceCard, 0.95, 1.14),
		cand("doc", models.SourceDocs, 0.10, 0.11),
	}
	got := DetectFastPath(candidates, nil, fpConfig())
	if !got.Triggered {
		t.Fatalf("expected trigger; reasons: %v", got.Reasons)
	}
	if got.Primary == nil || got.Primary.ID != "card" {
		t.Errorf("primary = %+v, want the card candidate", got.Primary)
	}
	if got.Metrics.CardShare < 0.9 {
		t.Errorf("card share = %v, want >= 0.9", got.Metrics.CardShare)
	}
	if got.Score <= 0 {
		t.Errorf("score = %v, want positive", got.Score)
	}
}

func TestDetectFastPath_EvenSplitDoesNotTrigger(t *testing.T) {
	candidates := []models.RouterCandidate{
		cand("card", models.SourceCard, 0.60, 0.72),
		cand("mem", models.SourceMemory, 0.55, 0.715),
	}
	got := DetectFastPath(candidates, nil, fpConfig())
	if got.Triggered {
		t.Errorf("near-even split must not trigger; reasons: %v", got.Reasons)
	}
}

func TestDetectFastPath_TopNotCard(t *testing.T) {
	candidates := []models.RouterCandidate{
		cand("mem", models.SourceMemory, 0.95, 1.24),
		cand("card", models.SourceCard, 0.20, 0.24),
	}
	got := DetectFastPath(candidates, nil, fpConfig())
	if got.Triggered {
		t.Error("non-card top candidate must not trigger")
	}
}

func TestDetectFastPath_SingleCandidateInfiniteDominance(t *testing.T) {
	candidates := []models.RouterCandidate{
		cand("card", models.SourceCard, 0.9, 1.08),
	}
	got := DetectFastPath(candidates, nil, fpConfig())
	if !math.IsInf(got.Metrics.DominanceRatio, 1) {
		t.Errorf("dominance ratio = %v, want +Inf for a single positive candidate", got.Metrics.DominanceRatio)
	}
	if !got.Triggered {
		t.Errorf("lone dominant card must trigger; reasons: %v", got.Reasons)
	}
}

func TestDetectFastPath_InfiniteDominanceSerializes(t *testing.T) {
	candidates := []models.RouterCandidate{
		cand("card", models.SourceCard, 0.9, 1.08),
	}
	got := DetectFastPath(candidates, nil, fpConfig())

	body, err := json.Marshal(&got)
	if err != nil {
		t.Fatalf("fast path decision must always marshal: %v", err)
	}
	var decoded struct {
		Metrics struct {
			DominanceRatio float64 `json:"dominance_ratio"`
		} `json:"metrics"`
	}
	if err := json.Unmarshal(body, &decoded); err != nil {
		t.Fatal(err)
	}
	if decoded.Metrics.DominanceRatio != models.DominanceRatioCap {
		t.Errorf("serialized dominance ratio = %v, want cap %v",
			decoded.Metrics.DominanceRatio, models.DominanceRatioCap)
	}
	// The in-memory value stays infinite; only the wire form is capped.
	if !math.IsInf(got.Metrics.DominanceRatio, 1) {
		t.Errorf("in-memory dominance ratio = %v, want +Inf", got.Metrics.DominanceRatio)
	}
}

func TestDetectFastPath_ZeroScores(t *testing.T) {
	candidates := []models.RouterCandidate{
		cand("a", models.SourceCard, 0, 0),
		cand("b", models.SourceDocs, 0, 0),
	}
	got := DetectFastPath(candidates, nil, fpConfig())
	if got.Triggered {
		t.Error("zero weighted scores must not trigger")
	}
	if got.Metrics.DominanceRatio != 0 {
		t.Errorf("dominance ratio = %v, want 0", got.Metrics.DominanceRatio)
	}
}

func TestDetectFastPath_SuppliedMetricsRespected(t *testing.T) {
	candidates := []models.RouterCandidate{
		cand("card", models.SourceCard, 0.95, 1.14),
	}
	supplied := &models.FastPathMetrics{CardAggregate: 5, TotalAggregate: 10}
	got := DetectFastPath(candidates, supplied, fpConfig())
	if got.Metrics.CardShare != 0.5 {
		t.Errorf("card share = %v, want 0.5 from supplied aggregates", got.Metrics.CardShare)
	}
}

func TestDetectFastPath_ReasonsRecordEveryCheck(t *testing.T) {
	candidates := []models.RouterCandidate{
		cand("doc", models.SourceDocs, 0.5, 0.55),
	}
	got := DetectFastPath(candidates, nil, fpConfig())
	joined := strings.Join(got.Reasons, "\n")
	for _, fragment := range []string{"top candidate source", "dominance ratio", "card share", "top card similarity", "triggered=false"} {
		if !strings.Contains(joined, fragment) {
			t.Errorf("reasons missing %q: %v", fragment, got.Reasons)
		}
	}
}
