package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var resetTokensCmd = &cobra.Command{
	Use:   "reset-tokens",
	Short: "Maintain password reset tokens",
}

var resetTokensReapCmd = &cobra.Command{
	Use:   "reap",
	Short: "Delete every expired password reset token",
	Args:  cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		ctx := context.Background()

		userAuthService, cleanup, err := newUserAuthServiceForCommands(ctx)
		if err != nil {
			return err
		}
		defer cleanup()

		removed, err := userAuthService.ReapExpiredResetTokens(ctx)
		if err != nil {
			return err
		}

		fmt.Printf("removed %d expired reset token(s)\n", removed)
		return nil
	},
}

func init() {
	resetTokensCmd.AddCommand(resetTokensReapCmd)
	rootCmd.AddCommand(resetTokensCmd)
}
