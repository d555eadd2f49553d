package config

import (
	"strconv"
	"time"

	"github.com/kektech/cardbot/internal/models"
)

// Environment variable names recognized by Resolve. Every value is validated
// independently; an invalid value retains the prior layer's setting.
const (
	EnvTopK          = "CARDBOT_TOP_K"
	EnvPreviewLength = "CARDBOT_PREVIEW_LENGTH"
	EnvMinConfidence = "CARDBOT_MIN_CONFIDENCE"
	EnvMaxTokens     = "CARDBOT_MAX_TOKENS"
	EnvModelSize     = "CARDBOT_MODEL_SIZE"
	EnvWeightChat    = "CARDBOT_WEIGHT_CHAT"
	EnvWeightDocs    = "CARDBOT_WEIGHT_DOCS"
	EnvWeightMemory  = "CARDBOT_WEIGHT_MEMORY"
	EnvWeightCard    = "CARDBOT_WEIGHT_CARD"
	EnvWeightUnknown = "CARDBOT_WEIGHT_UNKNOWN"
)

var envWeightKeys = map[string]models.SourceType{
	EnvWeightChat:    models.SourceChatLog,
	EnvWeightDocs:    models.SourceDocs,
	EnvWeightMemory:  models.SourceMemory,
	EnvWeightCard:    models.SourceCard,
	EnvWeightUnknown: models.SourceUnknown,
}

var validModelSizes = map[string]bool{"small": true, "medium": true, "large": true}

// Resolve layers defaults < file < env into a RouterConfig. It is pure:
// all three layers arrive as parameters, so tests never touch the real
// environment. The result is meant to be computed once per process and
// treated as immutable afterward.
func Resolve(defaults RouterConfig, file *FileConfig, env map[string]string) RouterConfig {
	cfg := defaults.Clone()
	applyFile(&cfg, file)
	applyEnv(&cfg, env)
	return cfg
}

func applyFile(cfg *RouterConfig, file *FileConfig) {
	if file == nil {
		return
	}
	for name, w := range file.SourceWeights {
		cfg.SourceWeights[models.ParseSourceType(name)] = w
	}
	for name, th := range file.MatchThresholds {
		cfg.MatchThresholds[models.ParseSourceType(name)] = th
	}
	if file.TopKPerSource != nil && *file.TopKPerSource > 0 {
		cfg.TopKPerSource = *file.TopKPerSource
	}
	if file.PreviewLength != nil && *file.PreviewLength > 0 {
		cfg.PreviewLength = *file.PreviewLength
	}
	if file.MinConfidence != nil && *file.MinConfidence >= 0 && *file.MinConfidence <= 1 {
		cfg.MinConfidence = *file.MinConfidence
	}
	if file.MaxTokensHint != nil && *file.MaxTokensHint > 0 {
		cfg.MaxTokensHint = *file.MaxTokensHint
	}
	if file.ModelSizeHint != nil && validModelSizes[*file.ModelSizeHint] {
		cfg.ModelSizeHint = *file.ModelSizeHint
	}
	if file.DiversifyTarget != nil && *file.DiversifyTarget > 0 {
		cfg.DiversifyTarget = *file.DiversifyTarget
	}
	if file.Lambda != nil && *file.Lambda >= 0 && *file.Lambda <= 1 {
		cfg.Lambda = *file.Lambda
	}
	if file.RetrievalTimeout != nil {
		if d, err := time.ParseDuration(*file.RetrievalTimeout); err == nil && d > 0 {
			cfg.RetrievalTimeout = d
		}
	}
	if fp := file.FastPath; fp != nil {
		if fp.CardAggregateMin != nil && *fp.CardAggregateMin > 0 {
			cfg.FastPath.CardAggregateMin = *fp.CardAggregateMin
		}
		if fp.TopSimilarityMin != nil && *fp.TopSimilarityMin > 0 {
			cfg.FastPath.TopSimilarityMin = *fp.TopSimilarityMin
		}
		if fp.DominanceMargin != nil && *fp.DominanceMargin >= 0 {
			cfg.FastPath.DominanceMargin = *fp.DominanceMargin
		}
	}
	if r := file.Rollout; r != nil {
		if r.Enabled != nil {
			cfg.Rollout.Enabled = *r.Enabled
		}
		if r.Percentage != nil && *r.Percentage >= 0 && *r.Percentage <= 100 {
			cfg.Rollout.Percentage = *r.Percentage
		}
	}
	if c := file.Classifier; c != nil {
		if c.ShortQuestionMaxWords != nil && *c.ShortQuestionMaxWords > 0 {
			cfg.Classifier.ShortQuestionMaxWords = *c.ShortQuestionMaxWords
		}
		if c.TieBreakMaxWords != nil && *c.TieBreakMaxWords > 0 {
			cfg.Classifier.TieBreakMaxWords = *c.TieBreakMaxWords
		}
		if c.ProperNounMaxWords != nil && *c.ProperNounMaxWords > 0 {
			cfg.Classifier.ProperNounMaxWords = *c.ProperNounMaxWords
		}
		if c.QuestionFactBonus != nil && *c.QuestionFactBonus > 0 {
			cfg.Classifier.QuestionFactBonus = *c.QuestionFactBonus
		}
	}
}

func applyEnv(cfg *RouterConfig, env map[string]string) {
	if n, ok := envInt(env, EnvTopK); ok && n > 0 {
		cfg.TopKPerSource = n
	}
	if n, ok := envInt(env, EnvPreviewLength); ok && n > 0 {
		cfg.PreviewLength = n
	}
	if f, ok := envFloat(env, EnvMinConfidence); ok && f >= 0 && f <= 1 {
		cfg.MinConfidence = f
	}
	if n, ok := envInt(env, EnvMaxTokens); ok && n > 0 {
		cfg.MaxTokensHint = n
	}
	if v, ok := env[EnvModelSize]; ok && validModelSizes[v] {
		cfg.ModelSizeHint = v
	}
	for key, src := range envWeightKeys {
		if f, ok := envFloat(env, key); ok && f > 0 {
			cfg.SourceWeights[src] = f
		}
	}
}

func envInt(env map[string]string, key string) (int, bool) {
	v, ok := env[key]
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return n, true
}

func envFloat(env map[string]string, key string) (float64, bool) {
	v, ok := env[key]
	if !ok {
		return 0, false
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// EnvSnapshot captures the recognized variables from the real environment
// via the supplied getter (usually os.LookupEnv).
func EnvSnapshot(lookup func(string) (string, bool)) map[string]string {
	keys := []string{
		EnvTopK, EnvPreviewLength, EnvMinConfidence, EnvMaxTokens, EnvModelSize,
		EnvWeightChat, EnvWeightDocs, EnvWeightMemory, EnvWeightCard, EnvWeightUnknown,
	}
	out := make(map[string]string)
	for _, k := range keys {
		if v, ok := lookup(k); ok {
			out[k] = v
		}
	}
	return out
}
