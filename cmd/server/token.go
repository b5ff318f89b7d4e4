package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/iliyamo/class-schedule/internal/middleware"
	"github.com/iliyamo/class-schedule/internal/utils"
)

var (
	tokenRole string
	tokenTTL  time.Duration
)

// tokenCmd mints editor tokens for local development and smoke tests.
var tokenCmd = &cobra.Command{
	Use:   "token <username>",
	Short: "Print a signed editor or admin token",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if tokenRole != middleware.RoleEditor && tokenRole != middleware.RoleAdmin {
			return fmt.Errorf("unknown role %q", tokenRole)
		}
		at, err := utils.NewAccessToken(os.Getenv("JWT_SECRET"), args[0], tokenRole, tokenTTL, time.Now())
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), at.Token)
		return nil
	},
}

func init() {
	tokenCmd.Flags().StringVar(&tokenRole, "role", middleware.RoleEditor, "editor or admin")
	tokenCmd.Flags().DurationVar(&tokenTTL, "ttl", 8*time.Hour, "token lifetime")
}
