// buzzmill is the content pipeline daemon and its operator CLI: topic
// harvesting, post and reply generation, and production service control.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"buzzmill/internal/config"
)

var (
	cfgPath string
	cfg     *config.Config
	logger  *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "buzzmill",
	Short: "Topic harvesting and content generation pipeline",
	Long: `buzzmill harvests trending topics from RSS feeds and community sites,
filters exact and near-duplicates against the content store, generates posts
with five persona replies each, and drives downstream video production.

Run the daemon:
  buzzmill run

Operate it manually:
  buzzmill harvest          # dry-run topic collection
  buzzmill cycle            # one short cycle now
  buzzmill cycle --long     # one curation cycle now
  buzzmill status           # store and production service health
  buzzmill stats --days 7   # production performance stats
  buzzmill seed-personas    # load the starter persona pool`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(cfgPath)
		if err != nil {
			return err
		}
		logger, err = newLogger(cfg.LogLevel)
		if err != nil {
			return err
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func newLogger(level string) (*zap.Logger, error) {
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	zcfg := zap.NewProductionConfig()
	zcfg.Level = zap.NewAtomicLevelAt(lvl)
	zcfg.Encoding = "console"
	zcfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	return zcfg.Build()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "path to config file (default: ./buzzmill.yaml)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
