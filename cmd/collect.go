package cmd

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/kilianp07/gridstatus/app"
	"github.com/kilianp07/gridstatus/infra/logger"
)

var collectWatch bool

var collectCmd = &cobra.Command{
	Use:   "collect",
	Short: "Run every poller job once, or keep polling with --watch",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if len(cfg.Poller.Jobs) == 0 && cfg.Poller.JobsFile == "" {
			return fmt.Errorf("no poller jobs configured")
		}
		svc, err := app.New(cfg)
		if err != nil {
			return err
		}
		defer func() {
			if err := svc.Close(); err != nil {
				logger.New("main").Errorf("service close: %v", err)
			}
		}()
		ctx := cmd.Context()
		if collectWatch {
			return svc.Run(ctx, false)
		}

		evs := svc.Collect(ctx)
		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "JOB\tSTATUS\tRECORDS\tDURATION\tERROR")
		failed := 0
		for _, ev := range evs {
			if ev.Failed() {
				failed++
			}
			fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\n", ev.Job, ev.Status(), ev.Records, ev.Duration.Round(time.Millisecond), ev.Error)
		}
		if err := tw.Flush(); err != nil {
			return err
		}
		if failed > 0 {
			return fmt.Errorf("%d of %d jobs failed", failed, len(evs))
		}
		return nil
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the poller and serve the HTTP API",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		svc, err := app.New(cfg)
		if err != nil {
			return err
		}
		defer func() {
			if err := svc.Close(); err != nil {
				logger.New("main").Errorf("service close: %v", err)
			}
		}()
		ctx := cmd.Context()
		return svc.Run(ctx, true)
	},
}

func init() {
	collectCmd.Flags().BoolVarP(&collectWatch, "watch", "w", false, "keep polling until interrupted")
	rootCmd.AddCommand(collectCmd, serveCmd)
}
