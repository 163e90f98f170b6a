package version

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cryptogift/ledger/internal/shared/version"
)

func NewCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the build version",
		Run: func(cmd *cobra.Command, args []string) {
			kind := "development build"
			if version.IsRelease() {
				kind = "release"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s (%s)\n", version.String(), kind)
		},
	}
}
