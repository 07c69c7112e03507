package index

import (
	"context"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/cascadehq/memvault/internal/model"
)

// ContextParams holds parameters for context assembly.
type ContextParams struct {
	Query  string
	Tags   []string
	Budget int // max tokens in output (rough proxy: 1 token ≈ 4 chars)
}

// ContextCard is a scored card rendering for context output.
type ContextCard struct {
	SessionID string  `json:"session_id"`
	Locator   string  `json:"locator"`
	Content   string  `json:"content"`
	Score     float64 `json:"score"`
	Excerpt   bool    `json:"excerpt,omitempty"`
}

// ContextResult is the assembled context response.
type ContextResult struct {
	Budget int           `json:"budget"`
	Used   int           `json:"used"`
	Cards  []ContextCard `json:"cards"`
}

// Context packs the best-matching memory cards into a token budget for prompt
// injection. Only card-derived text is emitted — the blob store is never
// touched, so no plaintext can leak through this path.
func (i *SQLiteIndex) Context(ctx context.Context, p ContextParams) (*ContextResult, error) {
	budget := p.Budget
	if budget <= 0 {
		budget = 4000
	}
	charBudget := budget * 4

	hits, err := i.Search(ctx, SearchParams{Query: p.Query, Tags: p.Tags, Limit: 50})
	if err != nil {
		return nil, err
	}
	if len(hits) == 0 {
		return &ContextResult{Budget: budget, Cards: []ContextCard{}}, nil
	}

	// Blend search relevance with recency (exponential decay, ~7 day
	// half-life) so stale sessions fall behind equally relevant fresh ones.
	now := time.Now()
	type scored struct {
		hit   Hit
		score float64
	}
	var candidates []scored
	for _, h := range hits {
		age := now.Sub(h.Entry.CreatedAt).Hours() / 24.0
		recency := math.Exp(-0.1 * age)
		candidates = append(candidates, scored{hit: h, score: h.Score*0.7 + recency*0.3})
	}
	sort.Slice(candidates, func(a, b int) bool {
		return candidates[a].score > candidates[b].score
	})

	result := &ContextResult{Budget: budget, Cards: []ContextCard{}}
	used := 0

	for _, c := range candidates {
		content := renderCard(c.hit.Entry.Card)
		if used+len(content) <= charBudget {
			result.Cards = append(result.Cards, ContextCard{
				SessionID: c.hit.Entry.SessionID,
				Locator:   c.hit.Entry.Locator,
				Content:   content,
				Score:     math.Round(c.score*100) / 100,
			})
			used += len(content)
			continue
		}
		if remaining := charBudget - used; remaining >= 100 {
			excerpt := content[:remaining] + "..."
			result.Cards = append(result.Cards, ContextCard{
				SessionID: c.hit.Entry.SessionID,
				Locator:   c.hit.Entry.Locator,
				Content:   excerpt,
				Score:     math.Round(c.score*100) / 100,
				Excerpt:   true,
			})
			used += len(excerpt)
		}
		break
	}

	result.Used = used / 4
	return result, nil
}

// renderCard flattens a card into injectable text: title, bullets, then any
// decisions and todos.
func renderCard(c model.MemoryCard) string {
	var b strings.Builder
	b.WriteString("# " + c.Title + "\n")
	for _, s := range c.Summary {
		b.WriteString("- " + s + "\n")
	}
	for _, d := range c.Decisions {
		b.WriteString("decision: " + d + "\n")
	}
	for _, t := range c.Todos {
		b.WriteString("todo: " + t + "\n")
	}
	return b.String()
}
