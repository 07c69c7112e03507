package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/cascadehq/memvault/internal/model"
)

func init() {
	cmd := &cobra.Command{
		Use:   "import [file]",
		Short: "Import index entries from an export",
		Args:  cobra.ExactArgs(1),
		Run:   runImport,
	}

	RootCmd.AddCommand(cmd)
}

func runImport(cmd *cobra.Command, args []string) {
	data, err := os.ReadFile(args[0])
	if err != nil {
		exitErr("read import", err)
	}

	var entries []model.IndexEntry
	if strings.HasSuffix(args[0], ".yaml") || strings.HasSuffix(args[0], ".yml") {
		err = yaml.Unmarshal(data, &entries)
	} else {
		err = json.Unmarshal(data, &entries)
	}
	if err != nil {
		exitErr("parse import", err)
	}

	e, err := openVault()
	if err != nil {
		exitErr("open vault", err)
	}
	defer e.close()

	n, err := e.idx.Import(cmd.Context(), entries)
	if err != nil {
		exitErr("import", err)
	}
	fmt.Printf("imported %d entries\n", n)
}
