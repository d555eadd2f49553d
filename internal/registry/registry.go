// Package registry provides the SQLite-backed card registry: the source of
// known structured-fact identifiers and card lookups.
package registry

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	_ "github.com/mattn/go-sqlite3"
)

// Card is one registry entry.
type Card struct {
	Asset  string `json:"asset"`
	Series int    `json:"series"`
	Number int    `json:"number"`
	Artist string `json:"artist"`
	Supply int    `json:"supply"`
}

// Registry stores cards in SQLite and serves identifier lookups. The
// identifier list is cached in memory and refreshed on writes, since the
// retriever consults it on every query.
type Registry struct {
	db *sql.DB

	mu          sync.RWMutex
	identifiers []string
}

// Open opens or creates the registry database at dbPath and initializes
// the schema. Parent directories are created if they do not exist.
func Open(dbPath string) (*Registry, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create registry directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open registry database: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable WAL: %w", err)
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize registry schema: %w", err)
	}

	r := &Registry{db: db}
	if err := r.refreshIdentifiers(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return r, nil
}

func initSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS cards (
		asset TEXT PRIMARY KEY,
		series INTEGER NOT NULL,
		number INTEGER NOT NULL,
		artist TEXT,
		supply INTEGER,
		UNIQUE(series, number)
	);

	CREATE INDEX IF NOT EXISTS idx_cards_series ON cards(series, number);
	`
	_, err := db.Exec(schema)
	return err
}

// Close closes the underlying database.
func (r *Registry) Close() error {
	return r.db.Close()
}

// Upsert inserts or replaces a card and refreshes the identifier cache.
func (r *Registry) Upsert(ctx context.Context, card Card) error {
	if strings.TrimSpace(card.Asset) == "" {
		return errors.New("card asset must not be empty")
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO cards (asset, series, number, artist, supply)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(asset) DO UPDATE SET
		   series=excluded.series, number=excluded.number,
		   artist=excluded.artist, supply=excluded.supply`,
		card.Asset, card.Series, card.Number, card.Artist, card.Supply,
	)
	if err != nil {
		return fmt.Errorf("upsert card %s: %w", card.Asset, err)
	}
	return r.refreshIdentifiers(ctx)
}

// Lookup returns the card for asset, matching case-insensitively.
// The second return is false when no card matches.
func (r *Registry) Lookup(ctx context.Context, asset string) (Card, bool) {
	var c Card
	row := r.db.QueryRowContext(ctx,
		`SELECT asset, series, number, artist, supply FROM cards WHERE asset = ? COLLATE NOCASE`,
		asset,
	)
	if err := row.Scan(&c.Asset, &c.Series, &c.Number, &c.Artist, &c.Supply); err != nil {
		return Card{}, false
	}
	return c, true
}

// ByNavToken resolves a series/card navigation token like "s4c12" or
// "S4 C12". Malformed tokens, including non-numeric indices, return
// ok=false rather than an error.
func (r *Registry) ByNavToken(ctx context.Context, token string) (Card, bool) {
	series, number, ok := ParseNavToken(token)
	if !ok {
		return Card{}, false
	}
	var c Card
	row := r.db.QueryRowContext(ctx,
		`SELECT asset, series, number, artist, supply FROM cards WHERE series = ? AND number = ?`,
		series, number,
	)
	if err := row.Scan(&c.Asset, &c.Series, &c.Number, &c.Artist, &c.Supply); err != nil {
		return Card{}, false
	}
	return c, true
}

// ParseNavToken parses "s<series>c<number>" with optional whitespace between
// the parts. Both indices must be positive decimal integers.
func ParseNavToken(token string) (series, number int, ok bool) {
	t := strings.ToLower(strings.TrimSpace(token))
	if !strings.HasPrefix(t, "s") {
		return 0, 0, false
	}
	rest := strings.TrimSpace(t[1:])
	cut := strings.IndexByte(rest, 'c')
	if cut < 0 {
		return 0, 0, false
	}
	series, ok = parsePositiveInt(strings.TrimSpace(rest[:cut]))
	if !ok {
		return 0, 0, false
	}
	number, ok = parsePositiveInt(strings.TrimSpace(rest[cut+1:]))
	if !ok {
		return 0, 0, false
	}
	return series, number, true
}

func parsePositiveInt(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	n := 0
	for _, c := range s {
		if c < '0' || c > '9' {
			return 0, false
		}
		n = n*10 + int(c-'0')
	}
	if n <= 0 {
		return 0, false
	}
	return n, true
}

// KnownIdentifiers returns the cached asset names. The slice is shared and
// must be treated as read-only.
func (r *Registry) KnownIdentifiers() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.identifiers
}

func (r *Registry) refreshIdentifiers(ctx context.Context) error {
	rows, err := r.db.QueryContext(ctx, `SELECT asset FROM cards ORDER BY series, number`)
	if err != nil {
		return fmt.Errorf("load card identifiers: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var asset string
		if err := rows.Scan(&asset); err != nil {
			return fmt.Errorf("scan card identifier: %w", err)
		}
		ids = append(ids, asset)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate card identifiers: %w", err)
	}

	r.mu.Lock()
	r.identifiers = ids
	r.mu.Unlock()
	return nil
}
