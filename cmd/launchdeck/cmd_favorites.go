package main

import (
	"fmt"
	"strings"

	"launchdeck/internal/app"
	"launchdeck/internal/table"

	"github.com/spf13/cobra"
)

var favoritesStarredOnly bool

var favoriteCmd = &cobra.Command{
	Use:   "favorite <launch-id>",
	Short: "Toggle a launch's favorite flag",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id := strings.TrimSpace(args[0])
		if id == "" {
			return app.ErrNoKey
		}

		a, err := app.New(cmd.Context(), cfg, logger)
		if err != nil {
			return err
		}
		defer a.Close()

		v, err := a.Favorites.Toggle(cmd.Context(), id)
		if err != nil {
			return fmt.Errorf("failed to toggle %s: %w", id, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", table.FavoriteMark(v), id)
		return nil
	},
}

var favoritesCmd = &cobra.Command{
	Use:   "favorites",
	Short: "List every launch id in the favorites map",
	Long: `Lists every launch id launchdeck has seen with its favorite flag. Ids are
added (unstarred) the first time a launch is fetched.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := app.New(cmd.Context(), cfg, logger)
		if err != nil {
			return err
		}
		defer a.Close()

		m, err := a.Favorites.Get(cmd.Context())
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		n := 0
		for _, id := range m.IDs() {
			if favoritesStarredOnly && !m[id] {
				continue
			}
			fmt.Fprintf(out, "%s %s\n", table.FavoriteMark(m[id]), id)
			n++
		}
		if n == 0 {
			fmt.Fprintln(out, "No favorites yet.")
		}
		return nil
	},
}

func init() {
	favoritesCmd.Flags().BoolVar(&favoritesStarredOnly, "starred", false, "Only list starred launches")
}
