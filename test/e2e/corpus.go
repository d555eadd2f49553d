// Package e2e runs the full routing pipeline over a synthetic community
// knowledge corpus.
package e2e

import "github.com/kektech/cardbot/internal/models"

// Document is one knowledge snapshot file in the corpus.
type Document struct {
	Name    string
	Content string
}

// KnownCard is a registry entry the corpus expects to exist.
type KnownCard struct {
	Asset  string
	Series int
	Number int
	Artist string
	Supply int
}

// RouteCase is one query with its expected routing outcome.
type RouteCase struct {
	Description string
	Query       string
	WantIntent  models.Intent
	// WantSubstring must appear in the full text of at least one candidate.
	// Empty means no retrieval expectation (e.g. filler queries).
	WantSubstring string
}

// Corpus bundles documents, cards, and query test cases.
type Corpus struct {
	Documents []Document
	Cards     []KnownCard
	TestCases []RouteCase
}

// BuildCorpus returns the synthetic card-community corpus.
func BuildCorpus() *Corpus {
	return &Corpus{
		Documents: []Document{
			{
				Name: "freedomkek.md",
				Content: "[[src:card|ref=card:FREEDOMKEK]] FREEDOMKEK is the genesis card of the " +
					"collection, series 1 card 1, issued with a supply of 300 by an anonymous artist.",
			},
			{
				Name: "fakewhale.md",
				Content: "[[src:card|ref=card:FAKEWHALE]] FAKEWHALE appears in series 4 as card 12, " +
					"a limited issuance celebrating the largest collectors.",
			},
			{
				Name: "submission-rules.md",
				Content: "Submission rules: artists burn the entry fee on-chain and wait for curation. " +
					"Accepted cards are listed in the directory with their series and number.",
			},
			{
				Name: "origin-lore.md",
				Content: "[[src:memory|ref=memory:origin]] The community grew out of the rare pepe scene. " +
					"Its history is kept alive in curated lore threads about the earliest fake rares.",
			},
			{
				Name: "wallet-guide.md",
				Content: "To hold fake rares you need a Counterparty-compatible wallet. The guide walks " +
					"through seed backup, asset visibility, and sending cards between addresses.",
			},
			{
				Name: "chat-excerpt.md",
				Content: "[[src:chat|author=pepefan|ts=2024-05-01T12:00:00Z]] gm everyone, the new drop " +
					"from series 4 looks wild, FAKEWHALE is already trading above floor.",
			},
		},
		Cards: []KnownCard{
			{Asset: "FREEDOMKEK", Series: 1, Number: 1, Artist: "anon", Supply: 300},
			{Asset: "FAKEWHALE", Series: 4, Number: 12, Artist: "whalepainter", Supply: 50},
		},
		TestCases: []RouteCase{
			{
				Description:   "card definition question",
				Query:         "what is FREEDOMKEK?",
				WantIntent:    models.IntentFacts,
				WantSubstring: "genesis card",
			},
			{
				Description:   "submission fee question",
				Query:         "what is the submission fee?",
				WantIntent:    models.IntentFacts,
				WantSubstring: "burn the entry fee",
			},
			{
				Description:   "history question",
				Query:         "tell me about the history of fake rares",
				WantIntent:    models.IntentLore,
				WantSubstring: "rare pepe scene",
			},
			{
				Description:   "wallet howto",
				Query:         "how do I hold fake rares in a wallet?",
				WantIntent:    models.IntentFacts,
				WantSubstring: "Counterparty-compatible wallet",
			},
			{
				Description: "filler greeting",
				Query:       "gm",
				WantIntent:  models.IntentLore,
			},
		},
	}
}
