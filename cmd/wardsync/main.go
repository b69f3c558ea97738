package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jarombrown/wardsync/internal/config"
)

// Version is the current wardsync version
const Version = "0.3.2"

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "wardsync",
	Short: "wardsync - Membership directory synchronization",
	Long: `Synchronizes the local ward directory database from the Member Tools API:
members, households, organizations, callings, youth interviews, and
auto-detected calling changes.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load()
		if err != nil {
			return err
		}
		cfg = loaded

		// Flags win over config file and environment
		if cmd.Flags().Changed("db") {
			cfg.DBPath, _ = cmd.Flags().GetString("db")
		}
		if cmd.Flags().Changed("tokens") {
			cfg.TokensFile, _ = cmd.Flags().GetString("tokens")
		}
		if cmd.Flags().Changed("seed") {
			cfg.SeedFile, _ = cmd.Flags().GetString("seed")
		}
		if cmd.Flags().Changed("log-file") {
			cfg.LogFile, _ = cmd.Flags().GetString("log-file")
		}
		if cmd.Flags().Changed("dry-run") {
			cfg.DryRun, _ = cmd.Flags().GetBool("dry-run")
		}
		if cmd.Flags().Changed("unit") {
			cfg.UnitNumber, _ = cmd.Flags().GetInt("unit")
		}
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("wardsync version %s\n", Version)
	},
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Database file path")
	rootCmd.PersistentFlags().String("tokens", "", "OAuth token file path")
	rootCmd.PersistentFlags().String("seed", "", "Standard roster seed file path")
	rootCmd.PersistentFlags().String("log-file", "", "Rotating sync log file path")
	rootCmd.PersistentFlags().Bool("dry-run", false, "Fetch and summarize without writing")
	rootCmd.PersistentFlags().Int("unit", 0, "Restrict processing to this unit number")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(syncCmd)
	rootCmd.AddCommand(statusCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
