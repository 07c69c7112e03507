package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func init() {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the index (cards, locators, tags) as JSON or YAML",
		Long: "Writes the index's public surface to stdout or a file. Exports contain no\n" +
			"plaintext sessions and no keys; blobs must be moved separately.",
		Args: cobra.NoArgs,
		Run:  runExport,
	}

	cmd.Flags().StringP("out", "o", "", "Output file (default stdout)")
	cmd.Flags().Bool("yaml", false, "Emit YAML instead of JSON")

	RootCmd.AddCommand(cmd)
}

func runExport(cmd *cobra.Command, args []string) {
	out, _ := cmd.Flags().GetString("out")
	asYAML, _ := cmd.Flags().GetBool("yaml")

	e, err := openVault()
	if err != nil {
		exitErr("open vault", err)
	}
	defer e.close()

	entries, err := e.idx.ExportAll(cmd.Context())
	if err != nil {
		exitErr("export", err)
	}

	var b []byte
	if asYAML {
		b, err = yaml.Marshal(entries)
	} else {
		b, err = json.MarshalIndent(entries, "", "  ")
	}
	if err != nil {
		exitErr("encode export", err)
	}

	if out == "" {
		fmt.Println(string(b))
		return
	}
	if err := os.WriteFile(out, b, 0o644); err != nil {
		exitErr("write export", err)
	}
	fmt.Printf("exported %d entries to %s\n", len(entries), out)
}
