package cli

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/cascadehq/memvault/internal/vault"
)

func init() {
	cmd := &cobra.Command{
		Use:   "search [query]",
		Short: "Search stored sessions by memory card",
		Long:  "Full-text search over indexed memory cards. Never touches the blob store.",
		Args:  cobra.MinimumNArgs(1),
		Run:   runSearch,
	}

	cmd.Flags().StringSliceP("tag", "t", nil, "Require at least one of these tags")
	cmd.Flags().String("since", "", "Only sessions created at or after this RFC3339 time")
	cmd.Flags().String("until", "", "Only sessions created at or before this RFC3339 time")
	cmd.Flags().IntP("limit", "l", 10, "Max results")

	RootCmd.AddCommand(cmd)
}

func runSearch(cmd *cobra.Command, args []string) {
	tags, _ := cmd.Flags().GetStringSlice("tag")
	since, _ := cmd.Flags().GetString("since")
	until, _ := cmd.Flags().GetString("until")
	limit, _ := cmd.Flags().GetInt("limit")
	query := strings.Join(args, " ")

	var timeRange *vault.TimeRange
	if since != "" || until != "" {
		timeRange = &vault.TimeRange{}
		if since != "" {
			t, err := time.Parse(time.RFC3339, since)
			if err != nil {
				exitErr("parse --since", err)
			}
			timeRange.Start = t
		}
		if until != "" {
			t, err := time.Parse(time.RFC3339, until)
			if err != nil {
				exitErr("parse --until", err)
			}
			timeRange.End = t
		}
	}

	e, err := openVault()
	if err != nil {
		exitErr("open vault", err)
	}
	defer e.close()

	hits, err := e.vault.QueryMemories(cmd.Context(), query, tags, timeRange, limit)
	if err != nil {
		exitErr("search", err)
	}

	if formatFlag == "text" {
		renderHits(hits)
		return
	}
	if len(hits) == 0 {
		fmt.Println("[]")
		return
	}
	b, _ := json.MarshalIndent(hits, "", "  ")
	fmt.Println(string(b))
}
