package cli

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/cascadehq/memvault/internal/model"
	"github.com/cascadehq/memvault/internal/vault"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("212"))

	metaStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))

	snippetStyle = lipgloss.NewStyle().
			Padding(0, 2)

	roleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39"))

	scoreStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Italic(true)
)

func renderHits(hits []vault.QueryHit) {
	if len(hits) == 0 {
		fmt.Println("no matches")
		return
	}
	for _, h := range hits {
		fmt.Println(titleStyle.Render(h.Title))
		fmt.Println(metaStyle.Render(fmt.Sprintf("%s  %s  %s",
			h.SessionID, h.Locator, h.CreatedAt.Format(time.RFC3339))))
		if h.Snippet != "" {
			fmt.Println(snippetStyle.Render(h.Snippet))
		}
		fmt.Println(scoreStyle.Render(fmt.Sprintf("score %.3f  tags %v", h.Score, h.Tags)))
		fmt.Println()
	}
}

func renderSession(r *vault.RetrieveResult) {
	fmt.Println(titleStyle.Render(r.Card.Title))
	fmt.Println(metaStyle.Render(fmt.Sprintf("session %s  verified=%t",
		r.Session.ID, r.CryptoVerified)))
	fmt.Println()
	for _, m := range r.Session.Messages {
		label := string(m.Role)
		if !m.Timestamp.IsZero() {
			label += " " + m.Timestamp.Format(time.RFC3339)
		}
		fmt.Println(roleStyle.Render(label))
		fmt.Println(snippetStyle.Render(m.Content))
	}
}

func renderCardSummary(c model.MemoryCard) {
	fmt.Println(titleStyle.Render(c.Title))
	for _, s := range c.Summary {
		fmt.Println(snippetStyle.Render("- " + s))
	}
	if len(c.Keywords) > 0 {
		fmt.Println(metaStyle.Render(fmt.Sprintf("keywords: %v", c.Keywords)))
	}
}
