package main

import (
	"errors"
	"fmt"

	"github.com/OCAP2/acmi/internal/archive"
	"github.com/OCAP2/acmi/internal/config"
	"github.com/OCAP2/acmi/internal/ingest"
	"github.com/OCAP2/acmi/internal/logging"
	"github.com/OCAP2/acmi/internal/storage"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newIngestCmd() *cobra.Command {
	var storageType string

	cmd := &cobra.Command{
		Use:   "ingest FILE...",
		Short: "Import recordings into the configured storage backend",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.GetStorageConfig()
			if storageType != "" {
				cfg.Type = storageType
			}
			return runIngest(cmd, cfg, args)
		},
	}
	cmd.Flags().StringVar(&storageType, "storage", "", "override storage.type (memory, sqlite, postgres, influx)")
	return cmd
}

func runIngest(cmd *cobra.Command, cfg config.StorageConfig, paths []string) (err error) {
	backend, err := initStorage(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := backend.Close(); closeErr != nil {
			err = errors.Join(err, fmt.Errorf("closing storage: %w", closeErr))
		}
	}()

	svc := ingest.New(ingest.Dependencies{
		Backend: backend,
		Session: SessionCtx,
		Logger:  Logger,
	})

	for _, path := range paths {
		if err := ingestFile(cmd, svc, backend, path); err != nil {
			return err
		}
	}
	return nil
}

func initStorage(cfg config.StorageConfig) (storage.Backend, error) {
	Logger.Debug("Creating storage backend", "type", cfg.Type)

	backend, err := storage.NewBackend(cfg, storage.Options{
		Logger:   Logger,
		DBLogger: logging.NewZerolog(LogFile, viper.GetString("logLevel"), cfg.Type),
		DB:       config.GetDBConfig(),
		Influx:   config.GetInfluxConfig(),
	})
	if err != nil {
		Logger.Error("Failed to create storage backend", "error", err)
		return nil, err
	}
	if err := backend.Init(); err != nil {
		Logger.Error("Failed to initialize storage backend", "error", err)
		return nil, err
	}
	Logger.Info("Storage backend initialized", "type", cfg.Type)
	return backend, nil
}

func ingestFile(cmd *cobra.Command, svc *ingest.Service, backend storage.Backend, path string) error {
	r, format, err := archive.Open(path)
	if err != nil {
		return err
	}
	defer r.Close()
	Logger.Info("Importing recording", "path", path, "format", format.String())

	stats, err := svc.Ingest(cmd.Context(), r, path)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s: %d frames, %d objects, %d events, %.2fs\n",
		path, stats.Frames, stats.Objects, stats.Events, stats.LastOffset)
	if exp, ok := backend.(storage.Exporter); ok && exp.ExportedFilePath() != "" {
		fmt.Fprintf(out, "exported %s\n", exp.ExportedFilePath())
	}
	return nil
}
