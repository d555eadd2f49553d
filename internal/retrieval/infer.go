package retrieval

import (
	"fmt"
	"hash/fnv"
	"strings"
	"time"

	"github.com/kektech/cardbot/internal/models"
)

// rawExportSignals are fragments that identify raw chat-export shaped text.
var rawExportSignals = []string{`"message_id"`, `"from_id"`, `"forwarded_from"`}

// longDocMinLength is the length past which untimed, unauthored text is
// presumed to be reference material.
const longDocMinLength = 240

// hitToPassage converts one raw hit into a passage, inferring its source
// type through an ordered pattern match:
//
//  1. embedded provenance marker (also yields author/timestamp/ref)
//  2. explicit source metadata equality
//  3. structural signals (message/chat/from identifiers, raw-export text)
//  4. heuristic fallback (timestamp+author -> chat, long untimed -> docs)
//
// Hits whose cleaned text is empty are dropped (nil return).
func hitToPassage(hit models.RawHit) *models.Passage {
	marker, card, cleaned := ParseMarker(hit.Text)
	if cleaned == "" {
		return nil
	}

	p := &models.Passage{
		Text:  cleaned,
		Score: hit.Relevance(),
	}
	if marker != nil {
		p.Author = marker.Author
		p.Timestamp = marker.Timestamp
		p.SourceRef = marker.Ref
	}
	if meta := hit.Meta; meta != nil {
		if p.Author == "" {
			p.Author = firstNonEmpty(meta.Author, meta.From)
		}
		if p.Timestamp.IsZero() && meta.Timestamp != "" {
			if ts, err := time.Parse(time.RFC3339, meta.Timestamp); err == nil {
				p.Timestamp = ts
			}
		}
		if p.SourceRef == "" {
			p.SourceRef = meta.Ref
		}
	}
	if card != "" {
		p.SourceType = models.SourceCard
		if p.SourceRef == "" {
			p.SourceRef = card
		}
	} else {
		p.SourceType = inferSourceType(marker, hit.Meta, cleaned, p.Author, p.Timestamp)
	}
	p.ID = passageID(p.SourceRef, cleaned)
	return p
}

func inferSourceType(marker *Marker, meta *models.HitMeta, text string, author string, ts time.Time) models.SourceType {
	// 1. Embedded marker wins outright.
	if marker != nil && marker.SourceType != models.SourceUnknown {
		return marker.SourceType
	}

	// 2. Explicit source metadata.
	if meta != nil && meta.Source != "" {
		if st := models.ParseSourceType(meta.Source); st != models.SourceUnknown {
			return st
		}
	}

	// 3. Structural signals of a chat export.
	if meta != nil && (meta.MessageID != "" || meta.ChatID != "" || meta.From != "") {
		return models.SourceChatLog
	}
	for _, sig := range rawExportSignals {
		if strings.Contains(text, sig) {
			return models.SourceChatLog
		}
	}

	// 4. Heuristic fallback.
	if !ts.IsZero() && author != "" {
		return models.SourceChatLog
	}
	if ts.IsZero() && len(text) >= longDocMinLength {
		return models.SourceDocs
	}
	return models.SourceUnknown
}

// passageID derives a stable id so identical passages arriving from the
// generic and identifier-scoped lookups deduplicate.
func passageID(ref, text string) string {
	h := fnv.New64a()
	h.Write([]byte(ref))
	h.Write([]byte{0})
	h.Write([]byte(text))
	return fmt.Sprintf("p-%016x", h.Sum64())
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
