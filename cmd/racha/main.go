package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	// Version information - will be set at build time
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func main() {
	// A .env file is a development convenience; absence is fine.
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:   "racha",
		Short: "Racha habit tracker server and tooling",
		Long: `Racha is a multi-user habit tracker: daily tasks, completion streaks,
and groups that share progress through invite codes.`,
	}

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
