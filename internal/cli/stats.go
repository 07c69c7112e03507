package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show index and blob store statistics",
		Args:  cobra.NoArgs,
		Run:   runStats,
	}

	RootCmd.AddCommand(cmd)
}

type statsOutput struct {
	Index     interface{} `json:"index"`
	BlobCount int         `json:"blob_count"`
	BlobBytes int64       `json:"blob_bytes"`
}

func runStats(cmd *cobra.Command, args []string) {
	e, err := openVault()
	if err != nil {
		exitErr("open vault", err)
	}
	defer e.close()

	idxStats, err := e.idx.Stats(cmd.Context(), e.cfg.IndexPath())
	if err != nil {
		exitErr("index stats", err)
	}

	count, bytes, err := e.blobs.Stats()
	if err != nil {
		exitErr("blob stats", err)
	}

	b, _ := json.MarshalIndent(statsOutput{Index: idxStats, BlobCount: count, BlobBytes: bytes}, "", "  ")
	fmt.Println(string(b))
}
