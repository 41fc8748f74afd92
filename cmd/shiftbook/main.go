package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/shiftbook/internal/archive"
	"github.com/shiftbook/internal/config"
	"github.com/shiftbook/internal/logging"
	"github.com/shiftbook/internal/payroll"
	"github.com/shiftbook/internal/rates"
	"github.com/shiftbook/internal/shifts"
	"github.com/shiftbook/internal/storage"
	"github.com/shiftbook/internal/work"
)

var (
	cfgFile string
	verbose bool

	cfg        *config.Config
	logger     *zap.Logger
	rules      work.Rules
	shiftStore *shifts.Store
	rateStore  *rates.Store
	calculator *payroll.Calculator
	archiver   *archive.Archiver
	db         *storage.Database
)

// Commands carrying this annotation may run with an invalid config file.
const annotationEditsConfig = "edits-config"

var rootCmd = &cobra.Command{
	Use:   "shiftbook",
	Short: "Delivery driver shift log and monthly payroll",
	Long: `Shiftbook records delivery driver shifts in a flat text file and computes
monthly active hours, required hours and net pay from the driver rate file.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(cfgFile)
		if err != nil {
			return err
		}
		level := cfg.LogLevel
		if err := cfg.Validate(); err != nil {
			if cmd.Annotations[annotationEditsConfig] == "" {
				return err
			}
			level = ""
		}

		logger, err = logging.New(level, verbose)
		if err != nil {
			return err
		}

		rules = work.Default()
		shiftStore = shifts.Open(cfg.ShiftsPath, rules, shifts.WithLogger(logger))
		rateStore = rates.Open(cfg.RatesPath)
		calculator = payroll.New(shiftStore, rateStore, rules, logger)
		archiver = archive.New(shiftStore, calculator, cfg.HistoryPath)

		logger.Debug("Loaded configuration",
			zap.String("shifts", cfg.ShiftsPath),
			zap.String("rates", cfg.RatesPath),
			zap.String("db", cfg.DatabasePath))
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return cleanup()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default ~/.shiftbook.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(bonusCmd)
	rootCmd.AddCommand(activeCmd)
	rootCmd.AddCommand(requiredCmd)
	rootCmd.AddCommand(netpayCmd)
	rootCmd.AddCommand(payslipCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(slipsCmd)
	rootCmd.AddCommand(calcCmd)
	rootCmd.AddCommand(archiveCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(chartCmd)
	rootCmd.AddCommand(configCmd)
}

// openLedger opens the payroll ledger on first use.
func openLedger() (*storage.Database, error) {
	if db != nil {
		return db, nil
	}
	if err := os.MkdirAll(filepath.Dir(cfg.DatabasePath), 0755); err != nil {
		return nil, err
	}
	ledger, err := storage.New(cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open ledger: %w", err)
	}
	db = ledger
	return db, nil
}

// cleanup closes the ledger and flushes the logger. It is safe to call more
// than once; main calls it again because cobra skips post-run hooks when a
// command fails.
func cleanup() error {
	var err error
	if db != nil {
		err = db.Close()
		db = nil
	}
	if logger != nil {
		_ = logger.Sync()
	}
	return err
}

func main() {
	err := rootCmd.Execute()
	if cerr := cleanup(); cerr != nil && logger != nil {
		logger.Warn("Failed to close ledger", zap.Error(cerr))
	}
	if err != nil {
		os.Exit(1)
	}
}
