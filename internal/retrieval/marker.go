package retrieval

import (
	"regexp"
	"strings"
	"time"

	"github.com/kektech/cardbot/internal/models"
)

// Passages carry provenance as an embedded text marker so heterogeneous
// stores can tag content without a side channel:
//
//	[[src:curated-memory|author=scrilla|ts=2021-09-01T00:00:00Z|ref=directory/s1]] visible text
//
// Card-tagged passages additionally carry [[card:ASSET]] anywhere in the
// text. Both markers are stripped from the visible text.

var (
	srcMarkerRe  = regexp.MustCompile(`^\s*\[\[src:([^\]|]+)((?:\|[^\]=|]+=[^\]|]*)*)\]\]\s*`)
	cardMarkerRe = regexp.MustCompile(`\[\[card:([A-Za-z0-9._-]+)\]\]`)
)

// Marker is the parsed form of an embedded provenance marker.
type Marker struct {
	SourceType models.SourceType
	Author     string
	Timestamp  time.Time
	Ref        string
}

// markerAliases maps short marker labels to source types. Full type names
// are accepted as well.
var markerAliases = map[string]models.SourceType{
	"chat":   models.SourceChatLog,
	"docs":   models.SourceDocs,
	"memory": models.SourceMemory,
	"card":   models.SourceCard,
}

// ParseMarker extracts the leading provenance marker and any card tags from
// text. It returns the marker (nil when absent), the tagged card asset (""
// when untagged), and the cleaned visible text.
func ParseMarker(text string) (*Marker, string, string) {
	var marker *Marker
	cleaned := text

	if m := srcMarkerRe.FindStringSubmatch(cleaned); m != nil {
		marker = &Marker{SourceType: parseMarkerType(m[1])}
		for _, pair := range strings.Split(strings.TrimPrefix(m[2], "|"), "|") {
			k, v, ok := strings.Cut(pair, "=")
			if !ok {
				continue
			}
			switch k {
			case "author":
				marker.Author = v
			case "ts":
				if ts, err := time.Parse(time.RFC3339, v); err == nil {
					marker.Timestamp = ts
				}
			case "ref":
				marker.Ref = v
			}
		}
		cleaned = cleaned[len(m[0]):]
	}

	card := ""
	if m := cardMarkerRe.FindStringSubmatch(cleaned); m != nil {
		card = m[1]
		cleaned = cardMarkerRe.ReplaceAllString(cleaned, "")
	}

	return marker, card, strings.TrimSpace(cleaned)
}

func parseMarkerType(label string) models.SourceType {
	label = strings.ToLower(strings.TrimSpace(label))
	if st, ok := markerAliases[label]; ok {
		return st
	}
	return models.ParseSourceType(label)
}

// CardTagQuery builds the identifier-scoped lookup query for an asset.
func CardTagQuery(asset string) string {
	return "[[card:" + asset + "]]"
}
