package retrieval

import (
	"testing"
	"time"

	"github.com/kektech/cardbot/internal/models"
)

func TestParseMarker_Full(t *testing.T) {
	text := "[[src:memory|author=scrilla|ts=2021-09-01T00:00:00Z|ref=directory/s1]] FREEDOMKEK opened series one."
	marker, card, cleaned := ParseMarker(text)
	if marker == nil {
		t.Fatal("expected a marker")
	}
	if marker.SourceType != models.SourceMemory {
		t.Errorf("source type = %v, want curated-memory", marker.SourceType)
	}
	if marker.Author != "scrilla" {
		t.Errorf("author = %q", marker.Author)
	}
	want := time.Date(2021, 9, 1, 0, 0, 0, 0, time.UTC)
	if !marker.Timestamp.Equal(want) {
		t.Errorf("timestamp = %v, want %v", marker.Timestamp, want)
	}
	if marker.Ref != "directory/s1" {
		t.Errorf("ref = %q", marker.Ref)
	}
	if card != "" {
		t.Errorf("card = %q, want empty", card)
	}
	if cleaned != "FREEDOMKEK opened series one." {
		t.Errorf("cleaned = %q", cleaned)
	}
}

func TestParseMarker_FullTypeName(t *testing.T) {
	marker, _, _ := ParseMarker("[[src:reference-document]] from the directory page")
	if marker == nil || marker.SourceType != models.SourceDocs {
		t.Errorf("marker = %+v, want reference-document", marker)
	}
}

func TestParseMarker_CardTag(t *testing.T) {
	_, card, cleaned := ParseMarker("Supply 300, artist scrilla. [[card:FREEDOMKEK]]")
	if card != "FREEDOMKEK" {
		t.Errorf("card = %q", card)
	}
	if cleaned != "Supply 300, artist scrilla." {
		t.Errorf("cleaned = %q", cleaned)
	}
}

func TestParseMarker_None(t *testing.T) {
	marker, card, cleaned := ParseMarker("  plain text  ")
	if marker != nil || card != "" {
		t.Errorf("unexpected marker %v / card %q", marker, card)
	}
	if cleaned != "plain text" {
		t.Errorf("cleaned = %q", cleaned)
	}
}

func TestParseMarker_UnknownType(t *testing.T) {
	marker, _, cleaned := ParseMarker("[[src:weird]] body")
	if marker == nil || marker.SourceType != models.SourceUnknown {
		t.Errorf("marker = %+v, want unknown source type", marker)
	}
	if cleaned != "body" {
		t.Errorf("cleaned = %q", cleaned)
	}
}
