// Package lexicon expands queries with synonym phrasings from a static
// lexicon, optionally extended from a YAML file.
package lexicon

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ragline/docqa/internal/core/domain"
)

// defaultSynonyms covers phrasing gaps common in workplace document queries,
// where users say "time off" and documents say "vacation".
var defaultSynonyms = map[string][]string{
	"time off":   {"vacation", "leave", "pto"},
	"vacation":   {"time off", "leave"},
	"sick leave": {"medical leave", "sick days"},
	"set up":     {"configure", "install"},
	"setup":      {"configure", "install"},
	"wifi":       {"wireless network"},
	"vpn":        {"remote access"},
	"laptop":     {"computer", "notebook"},
	"policy":     {"guidelines", "rules"},
	"salary":     {"compensation", "pay"},
	"remote":     {"work from home"},
}

type Expander struct {
	synonyms map[string][]string
	phrases  []string // matching order: longest phrase first, then lexical
}

func New() *Expander {
	return newExpander(defaultSynonyms)
}

// NewFromFile merges a YAML lexicon (phrase to list of alternates) over the
// built-in defaults. File entries win on conflict.
func NewFromFile(path string) (*Expander, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read lexicon: %w", err)
	}

	var loaded map[string][]string
	if err := yaml.Unmarshal(raw, &loaded); err != nil {
		return nil, fmt.Errorf("parse lexicon: %w", err)
	}

	merged := make(map[string][]string, len(defaultSynonyms)+len(loaded))
	for phrase, alternates := range defaultSynonyms {
		merged[phrase] = alternates
	}
	for phrase, alternates := range loaded {
		merged[strings.ToLower(strings.TrimSpace(phrase))] = alternates
	}
	return newExpander(merged), nil
}

func newExpander(synonyms map[string][]string) *Expander {
	phrases := make([]string, 0, len(synonyms))
	for phrase := range synonyms {
		phrases = append(phrases, phrase)
	}
	sort.Slice(phrases, func(i, j int) bool {
		if len(phrases[i]) != len(phrases[j]) {
			return len(phrases[i]) > len(phrases[j])
		}
		return phrases[i] < phrases[j]
	})
	return &Expander{synonyms: synonyms, phrases: phrases}
}

// Expand returns the original query as variant 0 followed by substituted
// phrasings, deduplicated, capped at maxVariants total.
func (e *Expander) Expand(_ context.Context, query string, maxVariants int) (domain.ExpandedQuerySet, error) {
	if maxVariants <= 0 {
		maxVariants = 4
	}

	out := domain.ExpandedQuerySet{
		Original: query,
		Variants: []string{query},
	}
	seen := map[string]struct{}{strings.ToLower(query): {}}

	lower := strings.ToLower(query)
	for _, phrase := range e.phrases {
		if len(out.Variants) >= maxVariants {
			break
		}
		idx := strings.Index(lower, phrase)
		if idx < 0 || !wholePhraseAt(lower, phrase, idx) {
			continue
		}

		for _, alternate := range e.synonyms[phrase] {
			if len(out.Variants) >= maxVariants {
				break
			}
			variant := query[:idx] + alternate + query[idx+len(phrase):]
			key := strings.ToLower(variant)
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			out.Variants = append(out.Variants, variant)
		}
	}
	return out, nil
}

// wholePhraseAt rejects matches inside a larger word, like "pto" in "laptop".
func wholePhraseAt(s, phrase string, idx int) bool {
	if idx > 0 && isWordByte(s[idx-1]) {
		return false
	}
	end := idx + len(phrase)
	if end < len(s) && isWordByte(s[end]) {
		return false
	}
	return true
}

func isWordByte(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= '0' && b <= '9')
}
