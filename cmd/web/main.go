package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/de-tools/evidence-atlas/pkg/server"
	"github.com/de-tools/evidence-atlas/pkg/services/config"
	"github.com/de-tools/evidence-atlas/pkg/store/duckdb"
	"github.com/de-tools/evidence-atlas/pkg/store/duckdb/evidence"
)

var cfgPath string

func main() {
	var rootCmd = &cobra.Command{
		Use:   "web",
		Short: "Serve the latest evidence snapshot over HTTP",
		RunE:  runServer,
	}

	rootCmd.Flags().StringVarP(&cfgPath, "config", "c", "", "Path to an optional YAML settings file")

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func runServer(cmd *cobra.Command, _ []string) error {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		logger.Warn().Err(err).Msg("failed to load .env file")
	}

	settings, err := config.Load(cfgPath)
	if err != nil {
		return err
	}

	db, err := duckdb.NewDB(duckdb.Settings{
		DbPath: settings.DBPath,
	})
	if err != nil {
		return fmt.Errorf("failed to create DuckDB instance: %w", err)
	}
	defer db.Close()

	store, err := evidence.NewStore(db)
	if err != nil {
		return fmt.Errorf("failed to create evidence store: %w", err)
	}

	logger.Info().Msgf("Serving evidence snapshot from `%s`", settings.DBPath)

	web := server.NewWebAPI(logger, server.Config{
		Addr: settings.ListenAddr,
		Dependencies: server.Dependencies{
			Evidence: store,
		},
	})
	return web.Start()
}
