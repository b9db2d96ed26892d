package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yungbote/sdgraph-backend/internal/app"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			return a.Serve(ctx)
		})
	},
}

var importCmd = &cobra.Command{
	Use:   "import <path>...",
	Short: "Import YAML/JSON bundles or directories of CSV tables",
	Long: `Each path is imported in its own session. A .json, .yaml or .yml file is
a bundle mapping table names to rows; a directory holds one <table>.csv
per table. Re-importing the same data creates nothing.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			for _, path := range args {
				res, err := a.Services.Imports.ImportPath(ctx, path)
				if err != nil {
					return fmt.Errorf("import %s: %w", path, err)
				}
				if err := enc.Encode(res); err != nil {
					return err
				}
			}
			return nil
		})
	},
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the store schema",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := app.LoadConfig(configDir)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if err := app.Migrate(cfg); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "schema up to date")
		return nil
	},
}

var projectCmd = &cobra.Command{
	Use:   "project",
	Short: "Mirror the stored graph into Neo4j",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			if a.Cfg.Neo4jURI == "" {
				fmt.Fprintln(cmd.ErrOrStderr(), "NEO4J_URI is not set; nothing to project")
				return nil
			}
			stats, err := a.Services.Imports.Project(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "projected %d nodes, %d relationships\n", stats.Nodes, stats.Relationships)
			return nil
		})
	},
}
