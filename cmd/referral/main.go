package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/cryptogift/ledger/internal/interfaces/cli/cleanup"
	"github.com/cryptogift/ledger/internal/interfaces/cli/common"
	"github.com/cryptogift/ledger/internal/interfaces/cli/reindex"
	"github.com/cryptogift/ledger/internal/interfaces/cli/server"
	"github.com/cryptogift/ledger/internal/interfaces/cli/version"
)

func main() {
	flags := &common.Flags{}

	rootCmd := &cobra.Command{
		Use:          "referral",
		Short:        "CryptoGift referral ledger",
		Long:         `Tracks referral clicks, attributes gift activations to referrers and serves earnings and stats.`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVarP(&flags.Env, "env", "e", "development", "Environment (development, test, production)")
	rootCmd.PersistentFlags().StringVarP(&flags.ConfigPath, "config", "c", "", "Path to config file (default: ./configs/config.yaml)")

	rootCmd.AddCommand(
		server.NewCommand(flags),
		cleanup.NewCommand(flags),
		reindex.NewCommand(flags),
		version.NewCommand(),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
