package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the pipeline daemon",
	Long: `Start both periodic cycles and block until interrupted.

The short cycle harvests topics and generates posts with replies every
cycle.short_interval. The long cycle requests curated batch production on
cycle.long_schedule. SIGINT or SIGTERM stops the schedule and waits for any
running cycle to finish.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		p, err := buildPipeline(ctx)
		if err != nil {
			return err
		}
		defer p.Close()

		if err := p.sched.Start(ctx); err != nil {
			return err
		}

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigCh
		logger.Info("shutdown signal received", zap.String("signal", sig.String()))

		p.sched.Stop()
		cancel()
		return nil
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
}
