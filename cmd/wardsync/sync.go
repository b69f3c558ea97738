package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/jarombrown/wardsync/internal/membertools"
	"github.com/jarombrown/wardsync/internal/storage/sqlite"
	syncengine "github.com/jarombrown/wardsync/internal/sync"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Synchronize the directory from the Member Tools API",
	Long: `Fetches the full membership snapshot and reconciles it against the local
database. Members and households are upserted in place; organizations,
callings, and assignments are hard-refreshed with user-entered data
preserved; calling changes made outside the app are detected and recorded.`,
	RunE: runSync,
}

func runSync(cmd *cobra.Command, args []string) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	logger, logCloser := syncengine.NewLogger(cfg.LogFile)
	if logCloser != nil {
		defer func() { _ = logCloser.Close() }()
	}

	bold := color.New(color.Bold).SprintFunc()
	cyan := color.New(color.FgCyan).SprintFunc()
	green := color.New(color.FgGreen).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()

	fmt.Println(bold("Membership directory sync"))
	if cfg.DryRun {
		fmt.Println(yellow("DRY RUN - no database writes"))
	}

	tokens, err := membertools.LoadTokens(cfg.TokensFile)
	if err != nil {
		return fmt.Errorf("credentials: %w", err)
	}

	client := membertools.NewClient(tokens, membertools.Options{
		BaseURL:  cfg.APIBaseURL,
		TokenURL: cfg.TokenURL,
		ClientID: cfg.ClientID,
		Timeout:  cfg.HTTPTimeout,
	})

	fmt.Println(cyan("Authenticating..."))
	user, err := client.CurrentUser(ctx)
	if err != nil {
		return fmt.Errorf("authentication: %w", err)
	}
	fmt.Printf("Authenticated as %s (%s)\n", user.PreferredName, user.Username)

	homeUnit := cfg.UnitNumber
	if homeUnit == 0 && len(user.HomeUnits) > 0 {
		homeUnit = user.HomeUnits[0]
	}
	fmt.Printf("Home unit: %d\n", homeUnit)

	fmt.Println(cyan("Fetching snapshot..."))
	snap, err := client.FetchSnapshot(ctx, cfg.Timezone)
	if err != nil {
		return fmt.Errorf("snapshot fetch: %w", err)
	}
	fmt.Printf("Received %d households, %d organization trees\n",
		len(snap.Households), len(snap.Organizations))

	var store *sqlite.SQLiteStorage
	if !cfg.DryRun {
		store, err = sqlite.New(cfg.DBPath)
		if err != nil {
			return fmt.Errorf("storage: %w", err)
		}
		defer func() { _ = store.Close() }()
	}

	engine := newEngine(store, logger)
	summary, err := engine.Run(ctx, snap, homeUnit)
	if err != nil {
		return fmt.Errorf("sync: %w", err)
	}

	fmt.Println()
	fmt.Println(bold("Sync complete"))
	fmt.Printf("  Households:  %d\n", summary.Households)
	fmt.Printf("  Members:     %d\n", summary.Members)
	if !cfg.DryRun {
		fmt.Printf("  Organizations: %d  Callings: %d  Assignments: %d\n",
			summary.Organizations, summary.Callings, summary.Assignments)
		fmt.Printf("  Annotations restored: %d\n", summary.AnnotationsRestored)
		if summary.NewAssignments > 0 || summary.Releases > 0 {
			fmt.Println(yellow(fmt.Sprintf("  External changes detected: %d new assignments, %d releases",
				summary.NewAssignments, summary.Releases)))
		} else {
			fmt.Println(green("  No external calling changes detected"))
		}
	}
	fmt.Printf("  Youth interviews due: %d BYI, %d BCYI\n", summary.InterviewsBYI, summary.InterviewsBCYI)
	fmt.Printf("  Temple recommends: %d active, %d expired, %d expiring soon\n",
		summary.Recommends.Active, summary.Recommends.Expired, summary.Recommends.ExpiringSoon)
	return nil
}

// newEngine wires the engine; a nil store is only legal in dry-run mode,
// where the engine never touches storage.
func newEngine(store *sqlite.SQLiteStorage, logger syncengine.Logger) *syncengine.Engine {
	if store == nil {
		return syncengine.NewEngine(nil, cfg, logger)
	}
	return syncengine.NewEngine(store, cfg, logger)
}
