package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// Version is stamped at build time via -ldflags.
var Version = "dev"

var rootCmd = &cobra.Command{
	Use:   "sitegate",
	Short: "SiteGate is a site-wide password gate",
	Long: `A password gate that fronts an entire site with a single shared
password. Visitors who present it receive a signed session cookie;
rotating the password invalidates every outstanding session at once.`,
}

func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}
