package cli

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/cascadehq/memvault/internal/vault"
)

func init() {
	cmd := &cobra.Command{
		Use:   "cost [bytes]",
		Short: "Estimate monthly storage cost for a payload size",
		Long:  "Pure arithmetic over a byte count and the configured pricing; no I/O.",
		Args:  cobra.ExactArgs(1),
		Run:   runCost,
	}

	cmd.Flags().IntP("redundancy", "r", 3, "Replica count")

	RootCmd.AddCommand(cmd)
}

func runCost(cmd *cobra.Command, args []string) {
	redundancy, _ := cmd.Flags().GetInt("redundancy")

	bytes, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || bytes < 0 {
		exitErr("parse bytes", fmt.Errorf("expected a non-negative integer, got %q", args[0]))
	}

	cfg, err := loadConfigOnly()
	if err != nil {
		exitErr("load config", err)
	}

	estimate := vault.EstimateStorageCost(bytes, redundancy, cfg.Pricing)
	b, _ := json.MarshalIndent(estimate, "", "  ")
	fmt.Println(string(b))
}
