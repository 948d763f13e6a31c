package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/jalvarado/sitegate/internal/config"
	"github.com/jalvarado/sitegate/settings"
)

var (
	rotateNewPassword string
	rotateLogoutAll   bool
)

var rotateCmd = &cobra.Command{
	Use:   "rotate",
	Short: "Rotate the site password or invalidate all sessions",
	Long: `Rotate writes directly to the configured settings store, bypassing
the HTTP admin endpoint. With --new-password it changes the site
password; with --logout-all it bumps the password version without
changing the password. Either way every outstanding session becomes
stale.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if rotateNewPassword == "" && !rotateLogoutAll {
			return fmt.Errorf("one of --new-password or --logout-all is required")
		}
		if rotateNewPassword != "" && rotateLogoutAll {
			return fmt.Errorf("--new-password and --logout-all are mutually exclusive")
		}

		cfg, err := config.Load()
		if err != nil {
			return err
		}

		store, closeStore, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer closeStore()

		logger := slog.New(slog.NewJSONHandler(os.Stderr, nil))
		rotator := settings.NewRotator(store, settings.WithRotatorLogger(logger))

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		var newVersion int
		if rotateLogoutAll {
			newVersion, err = rotator.LogoutAll(ctx, "cli")
		} else {
			newVersion, err = rotator.ChangePassword(ctx, rotateNewPassword, "cli")
		}
		if err != nil {
			return fmt.Errorf("rotation failed: %w", err)
		}

		fmt.Printf("Password version is now %d; all existing sessions are invalid.\n", newVersion)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(rotateCmd)
	rotateCmd.Flags().StringVar(&rotateNewPassword, "new-password", "", "New site password")
	rotateCmd.Flags().BoolVar(&rotateLogoutAll, "logout-all", false, "Bump the version without changing the password")
}
