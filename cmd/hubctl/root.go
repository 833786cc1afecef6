package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"knowledge-hub-be/internal/bootstrap"
	"knowledge-hub-be/internal/config"
	"knowledge-hub-be/internal/migration"
	"knowledge-hub-be/internal/pkg/logger"
	"knowledge-hub-be/pkg/database"
	"knowledge-hub-be/pkg/queue"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	verbose     bool
	forceInline bool
	jsonOutput  bool
)

var rootCmd = &cobra.Command{
	Use:   "hubctl",
	Short: "Operate a Knowledge Hub note store",
	Long: `hubctl adds, lists and searches notes, runs the retention sweep and
re-dispatches notes for enrichment. It reads the same environment as the API.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		color.Red("Error: %v", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Also log to stdout")
	rootCmd.PersistentFlags().BoolVar(&forceInline, "inline", false, "Enrich in this process instead of using the queue")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Print JSON instead of text")
}

// withContainer builds the same component graph as the API for one command.
func withContainer(ctx context.Context, fn func(c *bootstrap.Container) error) error {
	cfg := config.Load()
	// nobody consumes an in-memory queue once this process exits
	if forceInline || cfg.Queue.Backend == queue.BackendMemory {
		cfg.Queue.Backend = queue.BackendNone
	}

	// CLI runs land in the API's log file so they show up under /api/system/logs
	var log logger.ILogger = logger.NewIsolatedLogger(cfg.App.LogFilePath)
	if verbose {
		log = logger.NewZapLogger(cfg.App.LogFilePath, false)
	}

	db, err := database.NewGormDBFromDSN(cfg.Database.Connection)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	if !database.IsPostgres(db) {
		if err := migration.Run(db, log); err != nil {
			return err
		}
	}

	c, err := bootstrap.NewContainer(ctx, db, cfg, log)
	if err != nil {
		return err
	}
	defer c.Close()

	return fn(c)
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
