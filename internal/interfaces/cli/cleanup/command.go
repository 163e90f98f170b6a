package cleanup

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cryptogift/ledger/internal/interfaces/cli/common"
	httpRouter "github.com/cryptogift/ledger/internal/interfaces/http"
)

func NewCommand(flags *common.Flags) *cobra.Command {
	return &cobra.Command{
		Use:   "cleanup",
		Short: "Purge expired recent activations",
		Long:  `Remove activation feed entries older than referral.recent_activation_ttl once and exit. Meant for an external cron when the in-process scheduler is disabled.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), cmd, *flags)
		},
	}
}

func run(ctx context.Context, cmd *cobra.Command, flags common.Flags) error {
	rt, err := common.Bootstrap(ctx, flags)
	if err != nil {
		return err
	}
	defer rt.Close()

	service := httpRouter.NewReferralService(rt.Store, rt.Config, rt.Logger)
	result, err := service.CleanupRecentActivations(ctx)
	if err != nil {
		return fmt.Errorf("cleanup failed: %w", err)
	}

	rt.Logger.Infow("activation feed cleaned", "removed", result.Removed)
	fmt.Fprintf(cmd.OutOrStdout(), "removed %d expired activations\n", result.Removed)
	return nil
}
