// Package models defines core data structures for passages, candidates, and router decisions.
package models

import (
	"strings"
	"time"
)

// SourceType is the provenance category of a passage. The set is fixed.
type SourceType string

const (
	// SourceChatLog is a passage lifted from a conversational log.
	SourceChatLog SourceType = "conversational-log"
	// SourceDocs is a passage from a reference document (wiki, directory page).
	SourceDocs SourceType = "reference-document"
	// SourceMemory is a curated community memory.
	SourceMemory SourceType = "curated-memory"
	// SourceCard is a structured fact tied to a card registry entry.
	SourceCard SourceType = "structured-fact"
	// SourceUnknown is used when no inference rule applies.
	SourceUnknown SourceType = "unknown"
)

// KnownSourceTypes lists every source type in the fixed builder ordering:
// structured facts first, conversational logs last.
var KnownSourceTypes = []SourceType{
	SourceCard,
	SourceMemory,
	SourceDocs,
	SourceChatLog,
	SourceUnknown,
}

// ParseSourceType maps a label to a SourceType, defaulting to SourceUnknown.
func ParseSourceType(s string) SourceType {
	switch SourceType(strings.ToLower(strings.TrimSpace(s))) {
	case SourceChatLog:
		return SourceChatLog
	case SourceDocs:
		return SourceDocs
	case SourceMemory:
		return SourceMemory
	case SourceCard:
		return SourceCard
	default:
		return SourceUnknown
	}
}

// Passage is a retrievable unit of text with a relevance score and provenance.
// Score is the boosted value once the retriever has applied trust weights, so
// it is comparable across sources but not necessarily within [0,1].
type Passage struct {
	ID         string     `json:"id"`
	Text       string     `json:"text"`
	Score      float64    `json:"score"`
	SourceType SourceType `json:"source_type"`
	SourceRef  string     `json:"source_ref,omitempty"`
	Timestamp  time.Time  `json:"timestamp,omitzero"`
	Author     string     `json:"author,omitempty"`
}

// SearchScope narrows retrieval to a conversational scope.
type SearchScope struct {
	RoomID string `json:"room_id,omitempty"`
}

// RawHit is one result from an external retrieval capability. Score and
// Similarity are alternatives; capabilities set whichever they have and
// Relevance picks the populated one.
type RawHit struct {
	Text       string   `json:"text"`
	Score      float64  `json:"score,omitempty"`
	Similarity float64  `json:"similarity,omitempty"`
	Meta       *HitMeta `json:"metadata,omitempty"`
}

// HitMeta carries the optional, explicitly-shaped metadata a capability may
// attach to a hit. Each field corresponds to one known upstream shape; source
// inference pattern-matches over them in a fixed order.
type HitMeta struct {
	Source    string `json:"source,omitempty"`
	MessageID string `json:"message_id,omitempty"`
	ChatID    string `json:"chat_id,omitempty"`
	From      string `json:"from,omitempty"`
	Author    string `json:"author,omitempty"`
	Timestamp string `json:"timestamp,omitempty"`
	Ref       string `json:"ref,omitempty"`
}

// Relevance returns the hit's raw similarity, preferring Similarity over Score.
func (h *RawHit) Relevance() float64 {
	if h.Similarity != 0 {
		return h.Similarity
	}
	return h.Score
}
