// Package config provides layered, immutable router configuration:
// defaults < optional file < environment overrides, resolved once per process.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/kektech/cardbot/internal/models"
)

// FastPathConfig holds the thresholds gating the card fast path.
type FastPathConfig struct {
	CardAggregateMin float64 `yaml:"card_aggregate_min" json:"card_aggregate_min"`
	TopSimilarityMin float64 `yaml:"top_similarity_min" json:"top_similarity_min"`
	DominanceMargin  float64 `yaml:"dominance_margin" json:"dominance_margin"`
}

// RolloutConfig gates gradual enablement of the router.
type RolloutConfig struct {
	Enabled    bool `yaml:"enabled" json:"enabled"`
	Percentage int  `yaml:"percentage" json:"percentage"`
}

// ClassifierConfig holds the classifier's tunable word-count thresholds.
type ClassifierConfig struct {
	ShortQuestionMaxWords int `yaml:"short_question_max_words" json:"short_question_max_words"`
	TieBreakMaxWords      int `yaml:"tie_break_max_words" json:"tie_break_max_words"`
	ProperNounMaxWords    int `yaml:"proper_noun_max_words" json:"proper_noun_max_words"`
	QuestionFactBonus     int `yaml:"question_fact_bonus" json:"question_fact_bonus"`
}

// RouterConfig is the fully-resolved router configuration. It is resolved
// once at process start and treated as immutable afterward; per-call
// overrides operate on shallow copies only.
type RouterConfig struct {
	SourceWeights    map[models.SourceType]float64
	MatchThresholds  map[models.SourceType]float64
	TopKPerSource    int
	PreviewLength    int
	MinConfidence    float64
	MaxTokensHint    int
	ModelSizeHint    string
	DiversifyTarget  int
	Lambda           float64
	RetrievalTimeout time.Duration
	FastPath         FastPathConfig
	Rollout          RolloutConfig
	Classifier       ClassifierConfig
}

// Clone returns a copy safe to mutate per call. Maps are copied so a
// shallow-merged override can never write back into the shared config.
func (c RouterConfig) Clone() RouterConfig {
	out := c
	out.SourceWeights = make(map[models.SourceType]float64, len(c.SourceWeights))
	for k, v := range c.SourceWeights {
		out.SourceWeights[k] = v
	}
	out.MatchThresholds = make(map[models.SourceType]float64, len(c.MatchThresholds))
	for k, v := range c.MatchThresholds {
		out.MatchThresholds[k] = v
	}
	return out
}

// Defaults returns the built-in router configuration.
func Defaults() RouterConfig {
	return RouterConfig{
		SourceWeights: map[models.SourceType]float64{
			models.SourceMemory:  1.3,
			models.SourceCard:    1.2,
			models.SourceDocs:    1.1,
			models.SourceChatLog: 0.8,
			models.SourceUnknown: 1.0,
		},
		MatchThresholds: map[models.SourceType]float64{
			models.SourceChatLog: 0.35,
			models.SourceDocs:    0.25,
		},
		TopKPerSource:    3,
		PreviewLength:    280,
		MinConfidence:    0.55,
		MaxTokensHint:    1024,
		ModelSizeHint:    "small",
		DiversifyTarget:  8,
		Lambda:           0.7,
		RetrievalTimeout: 5 * time.Second,
		FastPath: FastPathConfig{
			CardAggregateMin: 0.6,
			TopSimilarityMin: 0.75,
			DominanceMargin:  0.25,
		},
		Rollout: RolloutConfig{
			Enabled:    true,
			Percentage: 100,
		},
		Classifier: ClassifierConfig{
			ShortQuestionMaxWords: 6,
			TieBreakMaxWords:      6,
			ProperNounMaxWords:    3,
			QuestionFactBonus:     1,
		},
	}
}

// FileConfig is the optional on-disk layer. Every field is a pointer so
// unset keys fall through to the prior layer.
type FileConfig struct {
	SourceWeights    map[string]float64 `yaml:"source_weights" json:"source_weights"`
	MatchThresholds  map[string]float64 `yaml:"match_thresholds" json:"match_thresholds"`
	TopKPerSource    *int               `yaml:"top_k_per_source" json:"top_k_per_source"`
	PreviewLength    *int               `yaml:"preview_length" json:"preview_length"`
	MinConfidence    *float64           `yaml:"min_confidence" json:"min_confidence"`
	MaxTokensHint    *int               `yaml:"max_tokens" json:"max_tokens"`
	ModelSizeHint    *string            `yaml:"model_size" json:"model_size"`
	DiversifyTarget  *int               `yaml:"diversify_target" json:"diversify_target"`
	Lambda           *float64           `yaml:"lambda" json:"lambda"`
	RetrievalTimeout *string            `yaml:"retrieval_timeout" json:"retrieval_timeout"`
	FastPath         *FastPathFile      `yaml:"fastpath" json:"fastpath"`
	Rollout          *RolloutFile       `yaml:"rollout" json:"rollout"`
	Classifier       *ClassifierFile    `yaml:"classifier" json:"classifier"`
}

// FastPathFile mirrors FastPathConfig with optional fields.
type FastPathFile struct {
	CardAggregateMin *float64 `yaml:"card_aggregate_min" json:"card_aggregate_min"`
	TopSimilarityMin *float64 `yaml:"top_similarity_min" json:"top_similarity_min"`
	DominanceMargin  *float64 `yaml:"dominance_margin" json:"dominance_margin"`
}

// RolloutFile mirrors RolloutConfig with optional fields.
type RolloutFile struct {
	Enabled    *bool `yaml:"enabled" json:"enabled"`
	Percentage *int  `yaml:"percentage" json:"percentage"`
}

// ClassifierFile mirrors ClassifierConfig with optional fields.
type ClassifierFile struct {
	ShortQuestionMaxWords *int `yaml:"short_question_max_words" json:"short_question_max_words"`
	TieBreakMaxWords      *int `yaml:"tie_break_max_words" json:"tie_break_max_words"`
	ProperNounMaxWords    *int `yaml:"proper_noun_max_words" json:"proper_noun_max_words"`
	QuestionFactBonus     *int `yaml:"question_fact_bonus" json:"question_fact_bonus"`
}

// LoadFile reads the optional router config file. JSON is parsed for .json
// paths, YAML otherwise. Returns nil with an error for the caller to log;
// a missing or malformed file never aborts startup.
func LoadFile(path string) (*FileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var fc FileConfig
	if strings.EqualFold(filepath.Ext(path), ".json") {
		if err := json.Unmarshal(data, &fc); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	} else {
		if err := yaml.Unmarshal(data, &fc); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}
	return &fc, nil
}
