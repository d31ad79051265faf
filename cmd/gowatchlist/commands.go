package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/amaumene/gowatchlist/internal/controllers"
	"github.com/amaumene/gowatchlist/internal/models"
	"github.com/spf13/cobra"
)

func newSearchCommand(ctx *commandContext) *cobra.Command {
	var kind string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search the catalog for movies and series",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			app, err := initializeCatalog(cfg, logger)
			if err != nil {
				return err
			}
			defer app.Search.Close()
			defer app.Popular.Close()

			query := strings.Join(args, " ")

			if kind == "" {
				result, err := app.Search.Search(cmd.Context(), query)
				if err != nil {
					return fmt.Errorf("search failed: %w", err)
				}
				return printSearch(cmd.OutOrStdout(), result.Results, result.Failures, asJSON)
			}

			parsed, err := models.ParseMediaKind(kind)
			if err != nil {
				return err
			}
			result, err := app.Search.SearchKind(cmd.Context(), query, parsed)
			if err != nil {
				return fmt.Errorf("search failed: %w", err)
			}
			return printSearch(cmd.OutOrStdout(), result.Results, result.Failures, asJSON)
		},
	}

	cmd.Flags().StringVar(&kind, "kind", "", "Restrict the search to movie or tv")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print results as JSON")
	return cmd
}

func newPopularCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:       "popular [movie|tv]",
		Short:     "Show the popular movies and series",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{"movie", "tv"},
		RunE: func(cmd *cobra.Command, args []string) error {
			var only models.MediaKind
			if len(args) == 1 {
				parsed, err := models.ParseMediaKind(args[0])
				if err != nil {
					return err
				}
				only = parsed
			}

			cfg, logger, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			app, err := initializeCatalog(cfg, logger)
			if err != nil {
				return err
			}
			defer app.Search.Close()
			defer app.Popular.Close()

			var items []models.MediaItem
			if only != models.MediaKindTV {
				movies, err := app.Popular.Movies(cmd.Context())
				if err != nil {
					return fmt.Errorf("failed to fetch popular movies: %w", err)
				}
				for _, m := range movies {
					items = append(items, m)
				}
			}
			if only != models.MediaKindMovie {
				series, err := app.Popular.Series(cmd.Context())
				if err != nil {
					return fmt.Errorf("failed to fetch popular series: %w", err)
				}
				for _, s := range series {
					items = append(items, s)
				}
			}
			return printSearch(cmd.OutOrStdout(), items, nil, asJSON)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print results as JSON")
	return cmd
}

func newListCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:       "list <watched|watchlist>",
		Short:     "Print a tracking list, most recent first",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{string(models.ListWatched), string(models.ListWatchlist)},
		RunE: func(cmd *cobra.Command, args []string) error {
			list, err := models.ParseList(args[0])
			if err != nil {
				return err
			}
			app, release, err := openTracking(cmd, ctx)
			if err != nil {
				return err
			}
			defer release()

			records, err := app.Tracking.List(list)
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), records)
			}

			if len(records) == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "%s is empty\n", list)
				return nil
			}
			rows := make([][]string, 0, len(records))
			for _, rec := range records {
				rows = append(rows, []string{rec.Key().String(), rec.Title, rec.TrackedAt().Format("2006-01-02 15:04")})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Key", "Title", "Tracked"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignRight},
			))
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print records as JSON")
	return cmd
}

func newToggleCommand(ctx *commandContext) *cobra.Command {
	var title, poster string

	cmd := &cobra.Command{
		Use:   "toggle <watched|watchlist> <movie|tv> <id>",
		Short: "Add an item to a list, or remove it if already present",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			list, err := models.ParseList(args[0])
			if err != nil {
				return err
			}
			key, err := parseTarget(args[1], args[2])
			if err != nil {
				return err
			}
			if title == "" {
				title = key.String()
			}
			item := itemFor(key, title, poster)

			app, release, err := openTracking(cmd, ctx)
			if err != nil {
				return err
			}
			defer release()

			added, err := app.Tracking.Toggle(cmd.Context(), list, item)
			if err != nil {
				return err
			}
			verb := "Removed"
			if added {
				verb = "Added"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s %q %s %s\n", verb, key, title, preposition(added), list)
			return nil
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "Title to store with the item")
	cmd.Flags().StringVar(&poster, "poster", "", "Poster path to store with the item")
	return cmd
}

func newRemoveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <watched|watchlist> <movie|tv> <id>",
		Short: "Remove an item from a list",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			list, err := models.ParseList(args[0])
			if err != nil {
				return err
			}
			key, err := parseTarget(args[1], args[2])
			if err != nil {
				return err
			}

			app, release, err := openTracking(cmd, ctx)
			if err != nil {
				return err
			}
			defer release()

			if err := app.Tracking.Remove(cmd.Context(), list, key); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %s from %s\n", key, list)
			return nil
		},
	}
}

// openTracking opens the store and loads both lists. release closes it.
func openTracking(cmd *cobra.Command, ctx *commandContext) (*trackingApp, func(), error) {
	cfg, logger, err := ctx.ensureConfig()
	if err != nil {
		return nil, nil, err
	}
	app, cleanup, err := initializeTracking(cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	release := func() {
		if err := app.Store.Close(); err != nil {
			logger.WithError(err).Warn("Failed to close tracking store")
		}
		cleanup()
	}
	if err := app.Store.Load(cmd.Context()); err != nil {
		release()
		return nil, nil, err
	}
	return app, release, nil
}

func parseTarget(kind, id string) (models.Key, error) {
	parsed, err := models.ParseMediaKind(kind)
	if err != nil {
		return models.Key{}, err
	}
	n, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return models.Key{}, fmt.Errorf("invalid id %q: %w", id, err)
	}
	key := models.Key{ID: n, Kind: parsed}
	return key, key.Validate()
}

func itemFor(key models.Key, title, poster string) models.MediaItem {
	var posterPath *string
	if poster != "" {
		posterPath = &poster
	}
	if key.Kind == models.MediaKindTV {
		return models.Series{ID: key.ID, Name: title, PosterPath: posterPath}
	}
	return models.Movie{ID: key.ID, Title: title, PosterPath: posterPath}
}

func preposition(added bool) string {
	if added {
		return "to"
	}
	return "from"
}

func printSearch(out io.Writer, items []models.MediaItem, failures []controllers.SearchFailure, asJSON bool) error {
	views := models.ViewsOf(items)
	if asJSON {
		return writeJSON(out, views)
	}

	for _, f := range failures {
		fmt.Fprintf(out, "warning: %s search failed: %s\n", f.Kind, f.Error)
	}
	if len(views) == 0 {
		fmt.Fprintln(out, "No results")
		return nil
	}

	rows := make([][]string, 0, len(views))
	for _, v := range views {
		year := ""
		if v.Year > 0 {
			year = strconv.Itoa(v.Year)
		}
		rows = append(rows, []string{
			models.Key{ID: v.ID, Kind: v.MediaType}.String(),
			v.Title,
			year,
			strconv.FormatFloat(v.VoteAverage, 'f', 1, 64),
		})
	}
	_, err := fmt.Fprintln(out, renderTable(
		[]string{"Key", "Title", "Year", "Rating"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignRight, alignRight},
	))
	return err
}

func writeJSON(out io.Writer, v interface{}) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
