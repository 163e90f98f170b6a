package reindex

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cryptogift/ledger/internal/infrastructure/repository"
	"github.com/cryptogift/ledger/internal/interfaces/cli/common"
	httpRouter "github.com/cryptogift/ledger/internal/interfaces/http"
)

func NewCommand(flags *common.Flags) *cobra.Command {
	var concurrency int

	cmd := &cobra.Command{
		Use:   "reindex",
		Short: "Rebuild lookup indexes and cached stats",
		Long: `Walk every stored referral record, rebuild the wallet, IP and referrer indexes
from it and recompute every referrer's cached stats. Safe to run on a live store.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), cmd, *flags, concurrency)
		},
	}

	cmd.Flags().IntVar(&concurrency, "concurrency", defaultConcurrency, "Number of records loaded in parallel")
	return cmd
}

func run(ctx context.Context, cmd *cobra.Command, flags common.Flags, concurrency int) error {
	rt, err := common.Bootstrap(ctx, flags)
	if err != nil {
		return err
	}
	defer rt.Close()

	reindexer := NewReindexer(
		repository.NewReferralRepository(rt.Store, rt.Logger),
		httpRouter.NewReferralService(rt.Store, rt.Config, rt.Logger),
		concurrency,
		rt.Logger,
	)

	report, err := reindexer.Run(ctx)
	if err != nil {
		return fmt.Errorf("reindex failed: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "indexed %d records (%d skipped) for %d referrers, refreshed %d stats\n",
		report.Records, report.Skipped, report.Referrers, report.StatsRefreshed)
	return nil
}
