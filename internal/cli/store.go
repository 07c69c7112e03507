package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/cascadehq/memvault/internal/model"
)

func init() {
	cmd := &cobra.Command{
		Use:   "store [session.json]",
		Short: "Redact, encrypt, and store a session",
		Long: "Reads a session JSON file (or stdin with -), scrubs it against the redaction\n" +
			"rule catalog, encrypts the result, uploads it to the blob store, and indexes\n" +
			"its memory card. A critical rule hit aborts with nothing persisted.",
		Args: cobra.ExactArgs(1),
		Run:  runStore,
	}

	cmd.Flags().StringSliceP("tag", "t", nil, "Tags for the index entry (repeatable)")
	cmd.Flags().StringToString("meta", nil, "Extra metadata key=value pairs")

	RootCmd.AddCommand(cmd)
}

func runStore(cmd *cobra.Command, args []string) {
	tags, _ := cmd.Flags().GetStringSlice("tag")
	meta, _ := cmd.Flags().GetStringToString("meta")

	var data []byte
	var err error
	if args[0] == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(args[0])
	}
	if err != nil {
		exitErr("read session", err)
	}

	session, err := model.ParseSession(data)
	if err != nil {
		exitErr("parse session", err)
	}
	if session.ID == "" {
		session.ID = uuid.New().String()
	}

	e, err := openVault()
	if err != nil {
		exitErr("open vault", err)
	}
	defer e.close()

	result, err := e.vault.StoreSession(cmd.Context(), session, tags, meta)
	if err != nil {
		exitErr("store", err)
	}

	if formatFlag == "text" {
		renderCardSummary(result.Card)
		fmt.Println(result.Locator)
		return
	}
	b, _ := json.MarshalIndent(result, "", "  ")
	fmt.Println(string(b))
}
