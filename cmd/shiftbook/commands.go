package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/shiftbook/internal/config"
	"github.com/shiftbook/internal/shifts"
	"github.com/shiftbook/internal/timemath"
)

var addCmd = &cobra.Command{
	Use:   "add <driver-id> <driver-name> <date> <start> <end>",
	Short: "Record a shift",
	Long: `Record a shift for a driver. Times use "h:mm:ss am|pm" and must be quoted,
for example: shiftbook add D1001 "Ahmed Hassan" 2025-04-05 "8:00:00 am" "4:30:00 pm"`,
	Args: cobra.ExactArgs(5),
	RunE: func(cmd *cobra.Command, args []string) error {
		rec, err := shiftStore.Add(shifts.NewShift{
			DriverID:   args[0],
			DriverName: args[1],
			Date:       args[2],
			StartTime:  args[3],
			EndTime:    args[4],
		})
		if err != nil {
			return err
		}

		quota := "missed"
		if rec.MetQuota {
			quota = "met"
		}
		fmt.Printf("Recorded %s on %s | Shift: %s | Idle: %s | Active: %s | Quota %s\n",
			rec.DriverID, rec.Date, rec.ShiftDuration, rec.IdleTime, rec.ActiveTime, quota)
		return nil
	},
}

var bonusCmd = &cobra.Command{
	Use:   "bonus",
	Short: "Manage shift bonuses",
}

var bonusSetCmd = &cobra.Command{
	Use:   "set <driver-id> <date> [true|false]",
	Short: "Set or clear the bonus flag on a shift",
	Args:  cobra.RangeArgs(2, 3),
	RunE: func(cmd *cobra.Command, args []string) error {
		value := true
		if len(args) == 3 {
			v, err := strconv.ParseBool(args[2])
			if err != nil {
				return fmt.Errorf("invalid bonus value %q", args[2])
			}
			value = v
		}

		if err := shiftStore.SetBonus(args[0], args[1], value); err != nil {
			return err
		}
		fmt.Printf("Bonus for %s on %s set to %t\n", args[0], args[1], value)
		return nil
	},
}

var bonusCountCmd = &cobra.Command{
	Use:   "count <driver-id> <month>",
	Short: "Count bonuses in a month (-1 for an unknown driver)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		month, err := timemath.ParseMonth(args[1])
		if err != nil {
			return err
		}
		count, err := shiftStore.CountBonusPerMonth(args[0], month)
		if err != nil {
			return err
		}
		fmt.Println(count)
		return nil
	},
}

var activeCmd = &cobra.Command{
	Use:   "active <driver-id> <month>",
	Short: "Total active hours for a driver in a month",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		month, err := timemath.ParseMonth(args[1])
		if err != nil {
			return err
		}
		total, err := shiftStore.TotalActiveHoursPerMonth(args[0], month)
		if err != nil {
			return err
		}
		fmt.Println(total)
		return nil
	},
}

var requiredCmd = &cobra.Command{
	Use:   "required <driver-id> <month>",
	Short: "Required hours for a driver in a month",
	Long:  `Required hours for a driver in a month. The bonus count comes from the shift file unless --bonus is given.`,
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		month, err := timemath.ParseMonth(args[1])
		if err != nil {
			return err
		}

		bonuses, _ := cmd.Flags().GetInt("bonus")
		if !cmd.Flags().Changed("bonus") {
			bonuses, err = shiftStore.CountBonusPerMonth(args[0], month)
			if err != nil {
				return err
			}
			bonuses = max(bonuses, 0)
		}

		required, err := calculator.RequiredHoursPerMonth(args[0], month, bonuses)
		if err != nil {
			return err
		}
		fmt.Println(required)
		return nil
	},
}

var netpayCmd = &cobra.Command{
	Use:   "netpay <driver-id> <actual-hours> <required-hours>",
	Short: "Net pay for given actual and required hours",
	Long:  `Net pay after deducting whole missing hours beyond the driver's tier buffer. Hours use h:mm:ss.`,
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		net, err := calculator.NetPay(args[0], args[1], args[2])
		if err != nil {
			return err
		}
		fmt.Println(net)
		return nil
	},
}

var payslipCmd = &cobra.Command{
	Use:   "payslip <driver-id> <month>",
	Short: "Compute a driver's payslip for a month",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		month, err := timemath.ParseMonth(args[1])
		if err != nil {
			return err
		}
		slip, err := calculator.Payslip(args[0], month)
		if err != nil {
			return err
		}

		fmt.Printf("Payslip %s | Month %02d\n", slip.DriverID, slip.Month)
		fmt.Printf("Bonuses: %d | Active: %s | Required: %s | Net pay: %d\n",
			slip.BonusCount, slip.ActualHours, slip.RequiredHours, slip.NetPay)
		return nil
	},
}

var runCmd = &cobra.Command{
	Use:   "run <month>",
	Short: "Compute payslips for every driver and record them in the ledger",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		month, err := timemath.ParseMonth(args[0])
		if err != nil {
			return err
		}
		slips, err := calculator.RunMonth(month)
		if err != nil {
			return err
		}

		dryRun, _ := cmd.Flags().GetBool("dry-run")
		runID := "not recorded"
		if !dryRun {
			ledger, err := openLedger()
			if err != nil {
				return err
			}
			runID, err = ledger.InsertPayslips(slips)
			if err != nil {
				return err
			}
		}

		fmt.Printf("Payroll %02d (%s)\n", month, runID)
		fmt.Printf("%-8s %8s %10s %10s %10s\n", "DRIVER", "BONUSES", "ACTIVE", "REQUIRED", "NET")
		total := 0
		for _, s := range slips {
			fmt.Printf("%-8s %8d %10s %10s %10d\n", s.DriverID, s.BonusCount, s.ActualHours, s.RequiredHours, s.NetPay)
			total += s.NetPay
		}
		fmt.Printf("Total net pay: %d\n", total)
		return nil
	},
}

var slipsCmd = &cobra.Command{
	Use:   "slips <month> [driver-id]",
	Short: "Show recorded payslips from the ledger",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		month, err := timemath.ParseMonth(args[0])
		if err != nil {
			return err
		}
		asJSON, _ := cmd.Flags().GetBool("json")
		ledger, err := openLedger()
		if err != nil {
			return err
		}

		if len(args) == 2 {
			rec, err := ledger.GetLatestPayslip(args[1], month)
			if err != nil {
				return err
			}
			if rec == nil {
				return fmt.Errorf("no payslip recorded for %s in month %02d", args[1], month)
			}
			if asJSON {
				return writeJSON(rec)
			}
			fmt.Printf("%s | %s | Active: %s | Required: %s | Net: %d\n",
				rec.CreatedAt.Format("2006-01-02 15:04"), rec.DriverID, rec.ActualHours, rec.RequiredHours, rec.NetPay)
			return nil
		}

		records, err := ledger.GetPayslipsForMonth(month)
		if err != nil {
			return err
		}
		if asJSON {
			return writeJSON(records)
		}
		if len(records) == 0 {
			fmt.Println("No payslips recorded.")
			return nil
		}
		for _, r := range records {
			fmt.Printf("%s | %s | %s | Active: %s | Required: %s | Net: %d\n",
				r.CreatedAt.Format("2006-01-02 15:04"), r.RunID[:8], r.DriverID, r.ActualHours, r.RequiredHours, r.NetPay)
		}
		return nil
	},
}

var calcCmd = &cobra.Command{
	Use:   "calc <start> <end>",
	Short: "Shift, idle and active time between two clock times",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		shift, err := timemath.ShiftDuration(args[0], args[1])
		if err != nil {
			return err
		}
		idle, err := rules.IdleTime(args[0], args[1])
		if err != nil {
			return err
		}
		active, err := timemath.ActiveTime(shift, idle)
		if err != nil {
			return err
		}
		fmt.Printf("Shift: %s | Idle: %s | Active: %s\n", shift, idle, active)
		return nil
	},
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show current configuration",
	Long:  `Display the current configuration settings and payroll rules.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Printf("Config: Shifts=%s | Rates=%s | DB=%s | History=%s | Log=%s\n",
			cfg.ShiftsPath, cfg.RatesPath, cfg.DatabasePath, cfg.HistoryPath, cfg.LogLevel)
		fmt.Printf("Rules: Window: %s-%s | Quota: %s (%s from %s to %s) | Bonus: -%dh\n",
			timemath.FormatDuration(rules.Window.Start), timemath.FormatDuration(rules.Window.End),
			timemath.FormatDuration(rules.StandardQuota), timemath.FormatDuration(rules.ReducedQuota),
			rules.ReducedFrom.Format(timemath.DateLayout), rules.ReducedTo.Format(timemath.DateLayout),
			rules.BonusAllowance/3600)
		return nil
	},
}

var configInitCmd = &cobra.Command{
	Use:         "init",
	Short:       "Write the default configuration file",
	Annotations: map[string]string{annotationEditsConfig: "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		path := configPath()
		force, _ := cmd.Flags().GetBool("force")
		if _, err := os.Stat(path); err == nil && !force {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		}

		if err := config.Save(config.Default(), path); err != nil {
			return fmt.Errorf("failed to save config: %w", err)
		}
		fmt.Printf("Wrote default configuration to %s\n", path)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:         "set <key> <value>",
	Short:       "Set one configuration value",
	Long:        `Set one configuration value in the config file. Keys: ShiftsPath, RatesPath, DatabasePath, HistoryPath, LogLevel.`,
	Args:        cobra.ExactArgs(2),
	Annotations: map[string]string{annotationEditsConfig: "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		path := configPath()
		// Environment overrides are not written back.
		fileCfg, err := config.ReadFile(path)
		if err != nil {
			return err
		}
		if err := fileCfg.Set(args[0], args[1]); err != nil {
			return err
		}
		if err := fileCfg.Validate(); err != nil {
			return err
		}
		if err := config.Save(fileCfg, path); err != nil {
			return fmt.Errorf("failed to save config: %w", err)
		}

		fmt.Printf("Set %s = %s in %s\n", args[0], strings.TrimSpace(args[1]), path)
		return nil
	},
}

func configPath() string {
	if cfgFile != "" {
		return cfgFile
	}
	return config.DefaultPath()
}

func writeJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func init() {
	bonusCmd.AddCommand(bonusSetCmd)
	bonusCmd.AddCommand(bonusCountCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configSetCmd)

	requiredCmd.Flags().Int("bonus", 0, "Override the bonus count")
	runCmd.Flags().Bool("dry-run", false, "Compute without recording to the ledger")
	slipsCmd.Flags().Bool("json", false, "Output as JSON")
	configInitCmd.Flags().Bool("force", false, "Overwrite an existing config file")
}
