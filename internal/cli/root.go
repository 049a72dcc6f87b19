package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/oklog/ulid/v2"
	"github.com/spf13/cobra"

	"harvest/config"
)

var (
	cfgFile  string
	cfg      *config.Config
	rootDir  string
	logLevel string
	runID    string
)

var rootCmd = &cobra.Command{
	Use:   "harvest",
	Short: "Harvest - n-gram counting, S3 publishing and faculty directory scraping",
	Long: `Harvest runs small batch jobs: it counts n-gram frequencies over a list of
remote text documents, uploads the resulting files to S3 with signed links,
and scrapes faculty directories into structured records.

Example usage:
  harvest ngram --top 10              # Count n-grams for the configured corpus
  harvest upload --bucket my-bucket   # Publish output files with signed links
  harvest scrape --site apu           # Scrape a faculty directory to CSV`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error

		if rootDir == "" {
			rootDir, err = os.Getwd()
			if err != nil {
				return fmt.Errorf("failed to get working directory: %w", err)
			}
		}

		if cfgFile != "" {
			cfg, err = config.Load(cfgFile)
		} else {
			cfg, err = config.LoadFromDir(rootDir)
		}
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		if logLevel != "" {
			cfg.Logging.Level = logLevel
		}

		runID = ulid.Make().String()
		logger, err := newLogger(cfg.Logging, os.Stderr)
		if err != nil {
			return err
		}
		slog.SetDefault(logger.With("run_id", runID))

		return nil
	},
}

// Execute runs the root command with a context cancelled on SIGINT or SIGTERM.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./harvest.yaml)")
	rootCmd.PersistentFlags().StringVarP(&rootDir, "dir", "d", "", "root directory (default is current directory)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error")
}

func GetConfig() *config.Config {
	return cfg
}

func GetRootDir() string {
	return rootDir
}

// GetRunID returns the identifier of the current invocation.
func GetRunID() string {
	return runID
}
