package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kilianp07/gridstatus/app"
	"github.com/kilianp07/gridstatus/config"
	"github.com/kilianp07/gridstatus/core/iso"
	"github.com/kilianp07/gridstatus/core/model"
	"github.com/kilianp07/gridstatus/infra/logger"
	"github.com/kilianp07/gridstatus/pkg/export"
)

const defaultConfig = "config.yaml"

var (
	cfgPath string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:           "gridstatus",
	Short:         "Electricity grid data from ISOs and the EIA",
	SilenceUsage:  true,
	SilenceErrors: false,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		// Keep stdout for command output.
		logger.SetOutput(cmd.ErrOrStderr())
		if verbose {
			return logger.SetLevel("debug")
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", defaultConfig, "configuration file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

// Execute runs the CLI. Interrupts cancel the command context.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

// loadConfig reads the configuration. A missing default file is not an error.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path := cfgPath
	if !cmd.Flags().Changed("config") {
		if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
			path = ""
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if !verbose {
		if err := logger.SetLevel(cfg.Logging.Level); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// isoFlags selects the operator and date of a dataset command.
type isoFlags struct {
	iso  string
	date string
	end  string
}

func (f *isoFlags) add(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.iso, "iso", "miso", "operator id")
	cmd.Flags().StringVar(&f.date, "date", "latest", `"latest", "today" or a date (YYYY-MM-DD)`)
	cmd.Flags().StringVar(&f.end, "end", "", "exclusive end date of a range")
}

func (f *isoFlags) resolve(cmd *cobra.Command) (iso.ISO, model.DateSpec, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, model.DateSpec{}, err
	}
	i, err := app.NewISO(cfg, f.iso, nil)
	if err != nil {
		return nil, model.DateSpec{}, err
	}
	d, err := model.ParseDateRange(f.date, f.end, i.Location())
	if err != nil {
		return nil, model.DateSpec{}, err
	}
	return i, d, nil
}

// outputFlags select the export format and destination.
type outputFlags struct {
	format string
	out    string
}

func (f *outputFlags) add(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.format, "format", "f", "csv", "output format: csv, json or xlsx")
	cmd.Flags().StringVarP(&f.out, "out", "o", "", "output file (default stdout)")
}

// resolveFormat infers the format from the output extension unless --format
// was given.
func (f *outputFlags) resolveFormat(cmd *cobra.Command) (export.Format, error) {
	if !cmd.Flags().Changed("format") && f.out != "" {
		if ext := strings.TrimPrefix(filepath.Ext(f.out), "."); ext != "" {
			if ff, err := export.ParseFormat(ext); err == nil {
				return ff, nil
			}
		}
	}
	return export.ParseFormat(f.format)
}

func (f *outputFlags) write(cmd *cobra.Command, recs []model.Record) error {
	format, err := f.resolveFormat(cmd)
	if err != nil {
		return err
	}
	w, closeFn, err := openOutput(cmd, f.out)
	if err != nil {
		return err
	}
	if err := export.Write(w, format, recs); err != nil {
		_ = closeFn()
		return err
	}
	return closeFn()
}

func openOutput(cmd *cobra.Command, path string) (io.Writer, func() error, error) {
	if path == "" || path == "-" {
		return cmd.OutOrStdout(), func() error { return nil }, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create output: %w", err)
	}
	return f, f.Close, nil
}
