package app

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/petpalfinder/backend/internal/config"
	"github.com/petpalfinder/backend/internal/filters"
	"github.com/petpalfinder/backend/internal/logging"
	"github.com/petpalfinder/backend/internal/storage"
)

// criteriaFlags binds filter flags shared by search and export.
type criteriaFlags struct {
	types            []string
	genders          []string
	ages             []string
	sizes            []string
	goodWithChildren bool
	goodWithDogs     bool
	goodWithCats     bool
	distanceKm       int
	sort             string
}

func (f *criteriaFlags) register(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringSliceVar(&f.types, "type", nil, "animal types, repeat or comma-separate for several")
	flags.StringSliceVar(&f.genders, "gender", nil, "genders to include")
	flags.StringSliceVar(&f.ages, "age", nil, "ages to include")
	flags.StringSliceVar(&f.sizes, "size", nil, "sizes to include")
	flags.BoolVar(&f.goodWithChildren, "good-with-children", false, "only animals good with children")
	flags.BoolVar(&f.goodWithDogs, "good-with-dogs", false, "only animals good with dogs")
	flags.BoolVar(&f.goodWithCats, "good-with-cats", false, "only animals good with cats")
	flags.IntVar(&f.distanceKm, "distance-km", filters.DefaultDistanceKm, "search radius in kilometres")
	flags.StringVar(&f.sort, "sort", filters.SortDistance, "result order: distance or recent")
}

func (f *criteriaFlags) criteria() filters.Criteria {
	return filters.Criteria{
		Types:            f.types,
		Genders:          f.genders,
		Ages:             f.ages,
		Sizes:            f.sizes,
		GoodWithChildren: f.goodWithChildren,
		GoodWithDogs:     f.goodWithDogs,
		GoodWithCats:     f.goodWithCats,
		DistanceKm:       f.distanceKm,
		Sort:             f.sort,
	}
}

// cliSetup loads config and builds components with logs on stderr, keeping
// stdout for command output.
func cliSetup(cmd *cobra.Command) (context.Context, config.Config, *components, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, config.Config{}, nil, err
	}

	logger := logging.NewTo(cmd.ErrOrStderr(), cfg.LogLevel)
	ctx := logging.WithLogger(cmd.Context(), logger)

	deps, err := buildDependencies(ctx, cfg, logger)
	if err != nil {
		return nil, config.Config{}, nil, err
	}
	return ctx, cfg, deps, nil
}

func newSearchCommand() *cobra.Command {
	var (
		flags criteriaFlags
		page  int
		limit int
	)

	cmd := &cobra.Command{
		Use:   "search LOCATION",
		Short: "Run one search and print the results as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cfg, deps, err := cliSetup(cmd)
			if err != nil {
				return err
			}
			defer deps.Close()

			if limit <= 0 {
				limit = cfg.PageSize
			}

			result, err := deps.searcher.Search(ctx, strings.TrimSpace(args[0]), page, limit, flags.criteria())
			if err != nil {
				return err
			}
			if len(result.FailedTypes) > 0 {
				logging.FromContext(ctx).Warn("some types failed", slog.Any("types", result.FailedTypes))
			}
			return writeJSON(cmd, result)
		},
	}

	flags.register(cmd)
	cmd.Flags().IntVar(&page, "page", 1, "page to fetch")
	cmd.Flags().IntVar(&limit, "limit", 0, "results per page, up to 100")
	return cmd
}

func newExportCommand() *cobra.Command {
	var (
		flags criteriaFlags
		pages int
	)

	cmd := &cobra.Command{
		Use:   "export LOCATION",
		Short: "Search, page through the results and store them as a JSON document",
		Long: `Export runs a search session, loads up to --pages pages and writes the
session snapshot to the configured S3 bucket, or below PETPAL_EXPORT_DIR when no
bucket is set.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, _, deps, err := cliSetup(cmd)
			if err != nil {
				return err
			}
			defer deps.Close()

			session := deps.sessions.Create()
			defer deps.sessions.Delete(session.ID)

			if err := session.Start(ctx, strings.TrimSpace(args[0]), flags.criteria()); err != nil {
				return err
			}
			for loaded := 1; loaded < pages; loaded++ {
				more, err := session.NextPage(ctx)
				if err != nil {
					return err
				}
				if !more {
					break
				}
			}

			location, err := deps.exporter.ExportJSON(ctx, session.Snapshot())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), location)
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().IntVar(&pages, "pages", 1, "maximum number of pages to load")
	return cmd
}

func exportStore(ctx context.Context, cfg config.Config) (storage.ObjectStore, error) {
	if cfg.ObjectStore.Bucket == "" {
		return storage.NewLocalStorage(cfg.ExportDir), nil
	}
	return storage.NewS3Storage(ctx, cfg.ObjectStore)
}

func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
