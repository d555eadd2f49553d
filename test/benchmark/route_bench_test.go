package benchmark

import (
	"fmt"
	"testing"

	"github.com/kektech/cardbot/internal/config"
	"github.com/kektech/cardbot/internal/diversify"
	"github.com/kektech/cardbot/internal/models"
	"github.com/kektech/cardbot/internal/query"
	"github.com/kektech/cardbot/internal/router"
)

func benchPassages(n int) []*models.Passage {
	passages := make([]*models.Passage, n)
	types := []models.SourceType{models.SourceCard, models.SourceDocs, models.SourceMemory, models.SourceChatLog}
	for i := 0; i < n; i++ {
		passages[i] = &models.Passage{
			ID:         fmt.Sprintf("p%d", i),
			Text:       fmt.Sprintf("passage %d about fake rares, submission rules, and card lore in the directory", i),
			Score:      float64(n-i) / float64(n),
			SourceType: types[i%len(types)],
		}
	}
	return passages
}

func BenchmarkClassify(b *testing.B) {
	c := query.NewClassifier(query.DefaultThresholds())
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = c.Classify("what is the submission fee for series 4?", query.ClassifyOptions{})
	}
}

func BenchmarkExpand(b *testing.B) {
	for i := 0; i < b.N; i++ {
		_ = query.Expand("submission rules and burn fee")
	}
}

func BenchmarkSelectDiverse(b *testing.B) {
	passages := benchPassages(100)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = diversify.SelectDiverse(passages, 8, diversify.DefaultLambda)
	}
}

func BenchmarkBuildCandidates(b *testing.B) {
	passages := benchPassages(50)
	cfg := config.Defaults()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = router.BuildCandidates(passages, cfg)
	}
}
