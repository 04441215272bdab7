// Command acmi reads, rewrites and imports Tacview ACMI flight recordings.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/OCAP2/acmi/internal/config"
	"github.com/OCAP2/acmi/internal/logging"
	"github.com/OCAP2/acmi/internal/session"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// module defs - BuildDate can be set at build time via ldflags
var (
	CurrentVersion string = "0.0.1"
	BuildDate      string = "unknown"

	AppName string = "acmi"
)

// global variables
var (
	// SlogManager handles all slog-based logging
	SlogManager *logging.SlogManager = logging.NewSlogManager()

	// Logger is the slog logger (convenience reference)
	Logger *slog.Logger = slog.Default()

	// SessionCtx tracks the import in progress for log records
	SessionCtx *session.Context = session.NewContext()

	SessionStartTime time.Time = time.Now()

	// LogFile is the session log file, also used by the zerolog loggers
	LogFile *os.File

	// closers are released once the command finishes
	closers []io.Closer
)

func newRootCmd() *cobra.Command {
	var configDir string

	cmd := &cobra.Command{
		Use:           AppName,
		Short:         "Read, rewrite and import Tacview ACMI recordings",
		Version:       fmt.Sprintf("%s (built %s)", CurrentVersion, BuildDate),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setup(configDir)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			teardown()
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&configDir, "config", ".", "directory containing "+config.FileName)
	flags.String("log-level", "", "log level (debug, info, warn, error)")
	flags.String("logs-dir", "", "directory for log files")
	_ = viper.BindPFlag("logLevel", flags.Lookup("log-level"))
	_ = viper.BindPFlag("logsDir", flags.Lookup("logs-dir"))

	cmd.AddCommand(
		newDumpCmd(),
		newRewriteCmd(),
		newIngestCmd(),
	)
	return cmd
}

// setup loads the config and routes logs to the session log file and,
// when enabled, to Graylog.
func setup(configDir string) error {
	configErr := config.Load(configDir)

	logFile, err := logging.OpenLogFile(viper.GetString("logsDir"), AppName, SessionStartTime)
	if err != nil {
		return err
	}
	closers = append(closers, logFile)
	LogFile = logFile

	var graylog io.Writer
	if gl := config.GetGraylogConfig(); gl.Enabled {
		w, err := logging.NewGraylogWriter(gl.Address, AppName)
		if err != nil {
			fmt.Fprintf(os.Stderr, "graylog disabled: %v\n", err)
		} else {
			graylog = w
			closers = append(closers, w)
		}
	}

	SlogManager.Setup(logFile, viper.GetString("logLevel"), graylog, SessionCtx.Attrs)
	Logger = SlogManager.Logger()

	if configErr != nil {
		Logger.Warn("Failed to load config, using defaults!", "error", configErr)
	} else {
		Logger.Info("Loaded config", "file", viper.ConfigFileUsed())
	}
	Logger.Info("Logging to file", "path", logFile.Name(), "version", CurrentVersion)
	return nil
}

func teardown() {
	for i := len(closers) - 1; i >= 0; i-- {
		_ = closers[i].Close()
	}
	closers = nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := newRootCmd()
	if err := root.ExecuteContext(ctx); err != nil {
		teardown()
		fmt.Fprintln(os.Stderr, "Error:", err)
		stop()
		os.Exit(1)
	}
}
