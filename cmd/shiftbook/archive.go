package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/shiftbook/internal/timemath"
	"github.com/shiftbook/internal/visualization"
)

var archiveCmd = &cobra.Command{
	Use:   "archive",
	Short: "Archive months to markdown",
	Long:  `Write a month's payslips and shift rows to markdown files in the history directory.`,
}

var archiveMonthCmd = &cobra.Command{
	Use:   "month <MM>",
	Short: "Archive a specific month",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		month, err := timemath.ParseMonth(args[0])
		if err != nil {
			return err
		}

		path, err := archiver.ArchiveMonth(month)
		if err != nil {
			return err
		}

		fmt.Printf("Archived %s to %s\n", time.Month(month), path)
		return nil
	},
}

var archiveListCmd = &cobra.Command{
	Use:   "list",
	Short: "List archived months",
	RunE: func(cmd *cobra.Command, args []string) error {
		archives, err := archiver.ListArchives()
		if err != nil {
			return err
		}

		if len(archives) == 0 {
			fmt.Println("No archives found")
			return nil
		}

		fmt.Println("Archived months:")
		for _, a := range archives {
			fmt.Printf("  %s\n", a)
		}
		return nil
	},
}

var archiveShowCmd = &cobra.Command{
	Use:   "show <MM>",
	Short: "Show archived month data",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		month, err := timemath.ParseMonth(args[0])
		if err != nil {
			return err
		}

		content, err := archiver.ReadArchive(month)
		if err != nil {
			return err
		}

		fmt.Println(content)
		return nil
	},
}

var exportCmd = &cobra.Command{
	Use:   "export <MM> [file.xlsx]",
	Short: "Export a month's payroll and shifts to a spreadsheet",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		month, err := timemath.ParseMonth(args[0])
		if err != nil {
			return err
		}

		path := filepath.Join(cfg.HistoryPath, fmt.Sprintf("payroll-%02d.xlsx", month))
		if len(args) == 2 {
			path = args[1]
		}
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return err
		}

		if err := archiver.ExportWorkbook(month, path); err != nil {
			return err
		}
		fmt.Printf("Exported %s to %s\n", time.Month(month), path)
		return nil
	},
}

var chartCmd = &cobra.Command{
	Use:   "chart <driver-id> <MM>",
	Short: "Chart a driver's active hours (SVG) or payslip (HTML)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		month, err := timemath.ParseMonth(args[1])
		if err != nil {
			return err
		}
		records, err := shiftStore.DriverMonth(args[0], month)
		if err != nil {
			return err
		}

		visualizer := visualization.New(rules)
		var out string
		if asHTML, _ := cmd.Flags().GetBool("html"); asHTML {
			slip, err := calculator.Payslip(args[0], month)
			if err != nil {
				return err
			}
			out = visualizer.GeneratePayslipHTML(slip, records)
		} else {
			out = visualizer.GenerateMonthSVG(args[0], month, records)
		}

		if output, _ := cmd.Flags().GetString("output"); output != "" {
			return os.WriteFile(output, []byte(out), 0644)
		}
		fmt.Println(out)
		return nil
	},
}

func init() {
	archiveCmd.AddCommand(archiveMonthCmd)
	archiveCmd.AddCommand(archiveListCmd)
	archiveCmd.AddCommand(archiveShowCmd)

	chartCmd.Flags().Bool("html", false, "Render the payslip as HTML instead of the SVG chart")
	chartCmd.Flags().StringP("output", "o", "", "Output file path")
}
