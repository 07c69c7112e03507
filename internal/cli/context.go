package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cascadehq/memvault/internal/index"
)

func init() {
	cmd := &cobra.Command{
		Use:   "context [query]",
		Short: "Assemble memory cards into a prompt-injection budget",
		Long: "Packs the best-matching memory cards (titles, bullets, decisions, todos)\n" +
			"into a token budget. Card text only; encrypted blobs are never read.",
		Args: cobra.MinimumNArgs(1),
		Run:  runContext,
	}

	cmd.Flags().StringSliceP("tag", "t", nil, "Require at least one of these tags")
	cmd.Flags().IntP("budget", "b", 4000, "Token budget (≈4 chars per token)")

	RootCmd.AddCommand(cmd)
}

func runContext(cmd *cobra.Command, args []string) {
	tags, _ := cmd.Flags().GetStringSlice("tag")
	budget, _ := cmd.Flags().GetInt("budget")

	e, err := openVault()
	if err != nil {
		exitErr("open vault", err)
	}
	defer e.close()

	result, err := e.idx.Context(cmd.Context(), index.ContextParams{
		Query:  strings.Join(args, " "),
		Tags:   tags,
		Budget: budget,
	})
	if err != nil {
		exitErr("context", err)
	}

	if formatFlag == "text" {
		for _, c := range result.Cards {
			fmt.Println(c.Content)
		}
		return
	}
	b, _ := json.MarshalIndent(result, "", "  ")
	fmt.Println(string(b))
}
