package query

import (
	"sort"
	"strings"
)

// synonyms maps lowercase query substrings to terms appended when matched.
// Expansion is strictly additive: the original text is never altered.
var synonyms = map[string][]string{
	"fake rare":  {"fakerare", "fake-rare"},
	"rare pepe":  {"rarepepe", "pepe card"},
	"submission": {"submit", "application", "entry"},
	"fee":        {"cost", "price", "payment"},
	"burn":       {"burned", "destroy", "destruction"},
	"artist":     {"creator", "designer"},
	"series":     {"set", "collection"},
	"supply":     {"issuance", "quantity"},
	"rules":      {"requirements", "guidelines"},
	"directory":  {"gallery", "listing"},
	"wallet":     {"address", "dispenser"},
	"lore":       {"history", "story", "origin"},
}

// Expand appends synonyms for every matched substring key to the query.
// With no matches the input is returned verbatim. Pure and deterministic:
// matched keys are applied in sorted order.
func Expand(text string) string {
	lowered := strings.ToLower(text)

	var matched []string
	for key := range synonyms {
		if strings.Contains(lowered, key) {
			matched = append(matched, key)
		}
	}
	if len(matched) == 0 {
		return text
	}
	sort.Strings(matched)

	var b strings.Builder
	b.WriteString(text)
	for _, key := range matched {
		b.WriteByte(' ')
		b.WriteString(strings.Join(synonyms[key], " "))
	}
	return b.String()
}
