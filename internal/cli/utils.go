// Package cli provides CLI output helpers for cardbot.
package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/kektech/cardbot/internal/models"
	"github.com/kektech/cardbot/pkg/utils"
)

// OutputFormat is the format for route result output.
type OutputFormat string

const (
	// OutputText is human-readable text (default).
	OutputText OutputFormat = "text"
	// OutputJSON is structured JSON for machine consumption.
	OutputJSON OutputFormat = "json"
)

// WriteRouteResult writes a routing assessment to w in the given format.
// Use OutputJSON for parseable output consumable by other apps.
func WriteRouteResult(w io.Writer, result *models.RouteResult, format OutputFormat) error {
	switch format {
	case OutputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	default:
		writeRouteResultText(w, result)
		return nil
	}
}

func writeRouteResultText(w io.Writer, result *models.RouteResult) {
	fmt.Fprintf(w, "intent:      %s\n", result.Intent)
	fmt.Fprintf(w, "mode:        %s\n", result.Decision.Mode)
	fmt.Fprintf(w, "confidence:  %.2f\n", result.Decision.Confidence)
	if result.FastPath != nil && result.FastPath.Triggered {
		fmt.Fprintf(w, "fast_path:   yes (score %.2f)\n", result.FastPath.Score)
	}
	if result.ExpandedQuery != "" && result.ExpandedQuery != result.Query {
		fmt.Fprintf(w, "expanded:    %s\n", result.ExpandedQuery)
	}
	if result.Metrics.CacheHit {
		fmt.Fprintf(w, "cache_hit:   yes\n")
	}
	fmt.Fprintf(w, "candidates:  %d (%d retrieved in %dms)\n",
		len(result.Candidates), result.Metrics.RetrievedCount, result.Metrics.RetrievalMillis)
	for i, c := range result.Candidates {
		writeOneCandidate(w, i+1, c)
	}
}

func writeOneCandidate(w io.Writer, rank int, c models.RouterCandidate) {
	fmt.Fprintf(w, "─────────────────────────────────────────────────────────\n")
	fmt.Fprintf(w, "Rank: %d | %s/%s | Score: %.4f (Similarity: %.4f × Weight: %.2f)\n",
		rank, c.SourceType, c.Kind, c.WeightedScore, c.Similarity, c.PriorityWeight)
	fmt.Fprintf(w, "ID: %s\n", c.ID)
	if c.StructuredRef != "" {
		fmt.Fprintf(w, "Ref: %s\n", c.StructuredRef)
	}
	fmt.Fprintf(w, "\n%s\n", utils.Truncate(c.FullText, 200))
	fmt.Fprintln(w)
}
