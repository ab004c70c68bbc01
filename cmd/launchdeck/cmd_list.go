package main

import (
	"context"
	"fmt"
	"strings"

	"launchdeck/cmd/launchdeck/ui"
	"launchdeck/internal/app"
	"launchdeck/internal/launches"
	"launchdeck/internal/reconcile"
	"launchdeck/internal/table"

	"github.com/spf13/cobra"
)

var (
	listUpcoming      bool
	listOffset        int
	listLimit         int
	listFavoritesOnly bool
	listRockets       []string
	listStatus        string
)

// listCmd prints one fetched window as a table
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Fetch one window of launches and print it",
	Long: `Fetches past (or upcoming) launches, merges them with your favorites and
prints the same columns the interactive table shows, sorted favorites first.

--rocket accepts a rocket name, a rocket type, or one of the group names
"Rocket Name" / "Rocket Type", and may be repeated.`,
	Args: cobra.NoArgs,
	RunE: runList,
}

func init() {
	listCmd.Flags().BoolVar(&listUpcoming, "upcoming", false, "List upcoming launches instead of past ones")
	listCmd.Flags().IntVar(&listOffset, "offset", 0, "Skip this many past launches")
	listCmd.Flags().IntVar(&listLimit, "limit", 0, "Launches per window (default from config)")
	listCmd.Flags().BoolVar(&listFavoritesOnly, "favorites-only", false, "Only print favorited launches")
	listCmd.Flags().StringArrayVar(&listRockets, "rocket", nil, "Rocket filter value (repeatable)")
	listCmd.Flags().StringVar(&listStatus, "status", "", "Status filter: succeed or failed")
}

func runList(cmd *cobra.Command, args []string) error {
	status, err := parseStatus(listStatus)
	if err != nil {
		return err
	}
	if listOffset < 0 {
		return fmt.Errorf("--offset must not be negative, got %d", listOffset)
	}
	if listLimit < 0 {
		return fmt.Errorf("--limit must not be negative, got %d", listLimit)
	}
	if listUpcoming && listOffset > 0 {
		return fmt.Errorf("--offset applies to past launches only")
	}
	if listLimit > 0 {
		cfg.Query.Limit = listLimit
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	session, err := a.NewSession(ctx)
	if err != nil {
		return err
	}
	if listUpcoming {
		session.SetMode(launches.Upcoming)
	} else {
		session.SetMode(launches.Past)
		session.SetOffset(listOffset)
	}

	if err := session.Refresh(ctx, a.Client); err != nil {
		return err
	}

	f := table.Filters{Rocket: listRockets}
	if status != 0 {
		f.Status = []table.StatusValue{status}
	}
	rows := table.Sort(table.Apply(session.Rows(), f, session.FilterSets()), session.SortState())
	if listFavoritesOnly {
		rows = favoritesOnly(rows)
	}

	out := cmd.OutOrStdout()
	if len(rows) == 0 {
		fmt.Fprintln(out, "No launches match.")
		return nil
	}
	fmt.Fprint(out, ui.LaunchTable{
		Rows:      rows,
		Cursor:    -1,
		Location:  a.Location,
		SortState: session.SortState(),
	}.View(ui.DefaultStyles()))

	w := session.Window()
	fmt.Fprintf(out, "%d of %d launches (%s, offset %d, limit %d)\n",
		len(rows), len(session.Rows()), w.Kind, w.Offset, w.Limit)
	return nil
}

func parseStatus(s string) (table.StatusValue, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return 0, nil
	case "succeed", "success":
		return table.StatusSucceed, nil
	case "failed", "fail":
		return table.StatusFailed, nil
	default:
		return 0, fmt.Errorf("invalid --status %q (valid: succeed, failed)", s)
	}
}

func favoritesOnly(rows []reconcile.ViewRow) []reconcile.ViewRow {
	out := rows[:0:0]
	for _, r := range rows {
		if r.Favorite {
			out = append(out, r)
		}
	}
	return out
}
