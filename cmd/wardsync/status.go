package main

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/jarombrown/wardsync/internal/storage/sqlite"
	"github.com/jarombrown/wardsync/internal/types"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the current roster and any in-flight calling changes",
	RunE:  runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	store, err := sqlite.New(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("storage: %w", err)
	}
	defer func() { _ = store.Close() }()

	bold := color.New(color.Bold).SprintFunc()
	cyan := color.New(color.FgCyan).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()

	members, err := store.CountMembers(ctx)
	if err != nil {
		return err
	}

	orgs, err := store.GetOrganizations(ctx)
	if err != nil {
		return err
	}
	assignments, err := store.GetActiveAssignments(ctx)
	if err != nil {
		return err
	}

	callingCount := 0
	for _, org := range orgs {
		callings, err := store.GetCallings(ctx, org.ID)
		if err != nil {
			return err
		}
		callingCount += len(callings)
	}

	fmt.Println(bold("Directory status"))
	fmt.Printf("  Database: %s\n", store.Path())
	fmt.Printf("  Members: %d\n", members)
	fmt.Printf("  Organizations: %d  Callings: %d  Active assignments: %d\n",
		len(orgs), callingCount, len(assignments))

	changes, err := store.GetCallingChanges(ctx)
	if err != nil {
		return err
	}

	var open []*types.CallingChange
	for _, c := range changes {
		if c.Status != types.ChangeCompleted {
			open = append(open, c)
		}
	}

	if len(open) == 0 {
		fmt.Println("  No open calling changes")
		return nil
	}

	fmt.Println()
	fmt.Println(bold(fmt.Sprintf("Open calling changes (%d)", len(open))))
	for _, c := range open {
		fmt.Printf("  %s %s (%s) [%s/%s]\n",
			yellow(fmt.Sprintf("#%d", c.ID)), c.CallingTitle, c.OrgName, c.Status, c.Source)
		tasks, err := store.GetTasks(ctx, c.ID)
		if err != nil {
			return err
		}
		for _, t := range tasks {
			marker := " "
			if t.Status == types.TaskDone {
				marker = "x"
			}
			fmt.Printf("    [%s] %s\n", marker, cyan(string(t.Type)))
		}
	}
	return nil
}
