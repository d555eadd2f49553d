package snapshot

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/kektech/cardbot/internal/models"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(nil)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestLoadDirIndexesMatchingFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "rules.md", "Submission rules: burn 100 XCP and wait for curation.")
	writeFile(t, dir, "lore.txt", "FREEDOMKEK was the genesis card of the collection.")
	writeFile(t, dir, "ignored.csv", "a,b,c")

	store := newTestStore(t)
	if err := store.LoadDir(dir, []string{".md", ".txt"}); err != nil {
		t.Fatalf("LoadDir: %v", err)
	}
	if got := store.Len(); got != 2 {
		t.Fatalf("Len = %d, want 2", got)
	}
}

func TestLoadDirMissingDirectory(t *testing.T) {
	store := newTestStore(t)
	if err := store.LoadDir(filepath.Join(t.TempDir(), "nope"), []string{".md"}); err != nil {
		t.Fatalf("LoadDir on missing dir: %v", err)
	}
	if store.Len() != 0 {
		t.Fatalf("Len = %d, want 0", store.Len())
	}
}

func TestSearchByKeywordNormalizesScores(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "genesis.md", "FREEDOMKEK is the genesis card, series 1 card 1.")
	writeFile(t, dir, "other.md", "The directory lists every card by series.")

	store := newTestStore(t)
	if err := store.LoadDir(dir, []string{".md"}); err != nil {
		t.Fatalf("LoadDir: %v", err)
	}

	hits, err := store.SearchByKeyword(context.Background(), "freedomkek genesis", models.SearchScope{}, 10, 0)
	if err != nil {
		t.Fatalf("SearchByKeyword: %v", err)
	}
	if len(hits) == 0 {
		t.Fatal("no hits for freedomkek genesis")
	}
	best := hits[0]
	for _, h := range hits[1:] {
		if h.Score > best.Score {
			best = h
		}
	}
	if best.Score != 1.0 {
		t.Fatalf("best score = %v, want 1.0", best.Score)
	}
	for _, h := range hits {
		if h.Meta == nil || h.Meta.Source != string(models.SourceDocs) {
			t.Fatalf("hit meta source = %+v, want docs", h.Meta)
		}
		if h.Score < 0 || h.Score > 1 {
			t.Fatalf("score %v out of range", h.Score)
		}
	}
}

func TestSearchByKeywordMinScoreFilters(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.md", "burn fee schedule for submissions")
	writeFile(t, dir, "b.md", "unrelated chatter about wallets")

	store := newTestStore(t)
	if err := store.LoadDir(dir, []string{".md"}); err != nil {
		t.Fatalf("LoadDir: %v", err)
	}
	hits, err := store.SearchByKeyword(context.Background(), "burn fee", models.SearchScope{}, 10, 0.99)
	if err != nil {
		t.Fatalf("SearchByKeyword: %v", err)
	}
	for _, h := range hits {
		if h.Score < 0.99 {
			t.Fatalf("score %v below min", h.Score)
		}
	}
}

func TestRemoveDropsDocument(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "gone.md", "soon to be removed document about wallets")

	store := newTestStore(t)
	if err := store.LoadDir(dir, []string{".md"}); err != nil {
		t.Fatalf("LoadDir: %v", err)
	}
	if err := store.Remove(path); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if store.Len() != 0 {
		t.Fatalf("Len = %d after remove, want 0", store.Len())
	}
	hits, err := store.SearchByKeyword(context.Background(), "wallets", models.SearchScope{}, 10, 0)
	if err != nil {
		t.Fatalf("SearchByKeyword: %v", err)
	}
	if len(hits) != 0 {
		t.Fatalf("got %d hits after remove, want 0", len(hits))
	}
}

func TestWatcherReindexesOnWrite(t *testing.T) {
	dir := t.TempDir()
	store := newTestStore(t)
	w := NewWatcher(dir, []string{".md"}, store, nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := w.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer w.Stop()

	writeFile(t, dir, "new.md", "a freshly dropped card announcement")

	deadline := time.Now().Add(5 * time.Second)
	for store.Len() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("watcher did not index new file")
		}
		time.Sleep(50 * time.Millisecond)
	}
}
