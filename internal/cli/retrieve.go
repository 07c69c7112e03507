package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "retrieve [locator]",
		Short: "Download, verify, and decrypt a stored session",
		Long: "Looks the locator up in the index, downloads the ciphertext, verifies its\n" +
			"SHA-256 against the indexed value, and decrypts. Fails closed on any mismatch.",
		Args: cobra.ExactArgs(1),
		Run:  runRetrieve,
	}

	RootCmd.AddCommand(cmd)
}

func runRetrieve(cmd *cobra.Command, args []string) {
	e, err := openVault()
	if err != nil {
		exitErr("open vault", err)
	}
	defer e.close()

	result, err := e.vault.RetrieveSession(cmd.Context(), args[0])
	if err != nil {
		exitErr("retrieve", err)
	}

	if formatFlag == "text" {
		renderSession(result)
		return
	}
	b, _ := json.MarshalIndent(result, "", "  ")
	fmt.Println(string(b))
}
