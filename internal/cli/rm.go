package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "rm [session-id]",
		Short: "Remove a session from the index and blob store",
		Long: "Deletes the index entry. The blob is removed too unless another session\n" +
			"still references the same content address.",
		Args: cobra.ExactArgs(1),
		Run:  runRm,
	}

	RootCmd.AddCommand(cmd)
}

func runRm(cmd *cobra.Command, args []string) {
	e, err := openVault()
	if err != nil {
		exitErr("open vault", err)
	}
	defer e.close()

	blobRemoved, err := e.vault.DeleteSession(cmd.Context(), args[0])
	if err != nil {
		exitErr("rm", err)
	}

	if blobRemoved {
		fmt.Printf("removed %s (blob deleted)\n", args[0])
	} else {
		fmt.Printf("removed %s (blob kept: still referenced or already gone)\n", args[0])
	}
}
