// Package cli implements the memvault CLI commands.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cascadehq/memvault/internal/blob"
	"github.com/cascadehq/memvault/internal/config"
	"github.com/cascadehq/memvault/internal/cryptobox"
	"github.com/cascadehq/memvault/internal/index"
	"github.com/cascadehq/memvault/internal/vault"
)

var (
	homeFlag   string
	formatFlag string
)

// RootCmd is the top-level command.
var RootCmd = &cobra.Command{
	Use:   "memvault",
	Short: "Encrypted, searchable session memory",
	Long: "memvault stores agent sessions as redacted, client-side encrypted, content-addressed\n" +
		"blobs and indexes a non-sensitive summary card locally for search.",
}

func init() {
	RootCmd.PersistentFlags().StringVar(&homeFlag, "home", "", "Vault directory (default: $MEMVAULT_HOME or ~/.memvault)")
	RootCmd.PersistentFlags().StringVarP(&formatFlag, "format", "f", "json", "Output format: json or text")
}

// env bundles the opened subsystem for one command invocation.
type env struct {
	cfg   config.Config
	idx   *index.SQLiteIndex
	blobs *blob.Store
	vault *vault.Vault
}

func openVault() (*env, error) {
	cfg, err := config.Load(homeFlag)
	if err != nil {
		return nil, err
	}

	idx, err := index.NewSQLiteIndex(cfg.IndexPath())
	if err != nil {
		return nil, err
	}
	blobs, err := blob.NewStore(cfg.BlobDir())
	if err != nil {
		idx.Close()
		return nil, err
	}
	keyring, err := cryptobox.NewFileKeyring(cfg.KeyDir())
	if err != nil {
		idx.Close()
		return nil, err
	}

	return &env{
		cfg:   cfg,
		idx:   idx,
		blobs: blobs,
		vault: vault.New(cryptobox.NewBox(keyring), blobs, idx, cfg.KeyID),
	}, nil
}

func (e *env) close() {
	e.idx.Close()
}

// loadConfigOnly resolves configuration without opening the index or blob
// store; used by commands with no storage side effects.
func loadConfigOnly() (config.Config, error) {
	return config.Load(homeFlag)
}

func exitErr(msg string, err error) {
	fmt.Fprintf(os.Stderr, "error: %s: %v (kind: %s)\n", msg, err, vault.KindOf(err))
	os.Exit(1)
}
