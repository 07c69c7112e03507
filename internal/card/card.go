// Package card derives deterministic, non-sensitive memory cards from
// redacted session content.
//
// Generation is a pure heuristic, not a model: the same input always yields
// the same card byte-for-byte. It must only ever see the redaction engine's
// output, never the raw session.
package card

import (
	"sort"
	"strings"
	"unicode"

	"github.com/cascadehq/memvault/internal/model"
)

const (
	titleLimit   = 80
	snippetLimit = 100

	maxSummary  = 3
	maxDecided  = 3
	maxTodos    = 3
	maxEntities = 10
	maxKeywords = 10
	maxQuotes   = 3

	placeholderTitle = "Untitled session"
)

var decisionKeywords = []string{"decided", "decision", "will use", "agreed", "chose", "going with"}

var todoKeywords = []string{"todo", "to-do", "need to", "must", "should", "follow up", "next step"}

// Generate builds a memory card from a redacted session.
func Generate(session *model.Session) model.MemoryCard {
	c := model.MemoryCard{Title: placeholderTitle}

	for _, m := range session.Messages {
		if m.Role == model.RoleUser {
			c.Title = truncate(collapse(m.Content), titleLimit)
			break
		}
	}

	for i, m := range session.Messages {
		if i >= maxSummary {
			break
		}
		c.Summary = append(c.Summary, string(m.Role)+": "+truncate(collapse(m.Content), snippetLimit))
	}

	for _, m := range session.Messages {
		lower := strings.ToLower(m.Content)
		if len(c.Decisions) < maxDecided && containsAny(lower, decisionKeywords) {
			c.Decisions = append(c.Decisions, truncate(collapse(m.Content), snippetLimit))
		}
		if len(c.Todos) < maxTodos && containsAny(lower, todoKeywords) {
			c.Todos = append(c.Todos, truncate(collapse(m.Content), snippetLimit))
		}
		if len(c.Quotes) < maxQuotes && strings.ContainsAny(m.Content, "?!") {
			c.Quotes = append(c.Quotes, truncate(collapse(m.Content), snippetLimit))
		}
	}

	c.Keywords = keywords(session)
	c.Entities = entities(session)
	return c
}

// keywords returns the ten most frequent tokens longer than four characters,
// ties broken by first-seen order.
func keywords(session *model.Session) []string {
	counts := map[string]int{}
	firstSeen := map[string]int{}
	pos := 0

	for _, m := range session.Messages {
		for _, tok := range strings.Fields(m.Content) {
			tok = strings.ToLower(strings.Trim(tok, ".,;:!?\"'()[]{}"))
			if len(tok) <= 4 {
				continue
			}
			if _, ok := counts[tok]; !ok {
				firstSeen[tok] = pos
				pos++
			}
			counts[tok]++
		}
	}

	toks := make([]string, 0, len(counts))
	for t := range counts {
		toks = append(toks, t)
	}
	sort.Slice(toks, func(i, j int) bool {
		if counts[toks[i]] != counts[toks[j]] {
			return counts[toks[i]] > counts[toks[j]]
		}
		return firstSeen[toks[i]] < firstSeen[toks[j]]
	})

	if len(toks) > maxKeywords {
		toks = toks[:maxKeywords]
	}
	return toks
}

// entities returns capitalized tokens longer than two characters in order of
// first appearance, deduplicated, capped at ten.
func entities(session *model.Session) []string {
	var out []string
	seen := map[string]bool{}

	for _, m := range session.Messages {
		for _, tok := range strings.Fields(m.Content) {
			tok = strings.Trim(tok, ".,;:!?\"'()[]{}")
			if len(tok) <= 2 || seen[tok] {
				continue
			}
			runes := []rune(tok)
			if !unicode.IsUpper(runes[0]) {
				continue
			}
			seen[tok] = true
			out = append(out, tok)
			if len(out) == maxEntities {
				return out
			}
		}
	}
	return out
}

func containsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}

// collapse normalizes whitespace runs to single spaces.
func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// truncate cuts s to limit runes with an ellipsis when shortened.
func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "..."
}
