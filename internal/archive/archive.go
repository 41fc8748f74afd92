package archive

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/shiftbook/internal/payroll"
	"github.com/shiftbook/internal/shifts"
)

var ErrNoShifts = errors.New("no shifts found")

// Archiver writes monthly payroll summaries to markdown and xlsx files.
type Archiver struct {
	shifts      *shifts.Store
	calc        *payroll.Calculator
	historyPath string
}

// New creates a new Archiver
func New(shiftStore *shifts.Store, calc *payroll.Calculator, historyPath string) *Archiver {
	return &Archiver{
		shifts:      shiftStore,
		calc:        calc,
		historyPath: historyPath,
	}
}

// MonthSummary contains archived month data
type MonthSummary struct {
	Month    int
	Payslips []payroll.Payslip
	Shifts   map[string][]shifts.Record
}

func fileName(month int) string {
	return fmt.Sprintf("month-%02d.md", month)
}

// Summarize collects the payslips and shift rows for month.
func (a *Archiver) Summarize(month int) (*MonthSummary, error) {
	slips, err := a.calc.RunMonth(month)
	if err != nil {
		return nil, fmt.Errorf("failed to compute payroll: %w", err)
	}

	summary := &MonthSummary{
		Month:    month,
		Payslips: slips,
		Shifts:   make(map[string][]shifts.Record),
	}

	total := 0
	for _, slip := range slips {
		records, err := a.shifts.DriverMonth(slip.DriverID, month)
		if err != nil {
			return nil, fmt.Errorf("failed to get shifts: %w", err)
		}
		summary.Shifts[slip.DriverID] = records
		total += len(records)
	}

	if total == 0 {
		return nil, fmt.Errorf("%w for month %d", ErrNoShifts, month)
	}
	return summary, nil
}

// ArchiveMonth exports a month's payroll and shifts to markdown.
func (a *Archiver) ArchiveMonth(month int) (string, error) {
	summary, err := a.Summarize(month)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(a.historyPath, 0755); err != nil {
		return "", fmt.Errorf("failed to create history directory: %w", err)
	}

	filePath := filepath.Join(a.historyPath, fileName(month))
	if err := os.WriteFile(filePath, []byte(generateMarkdown(summary)), 0644); err != nil {
		return "", fmt.Errorf("failed to write archive: %w", err)
	}

	return filePath, nil
}

func generateMarkdown(summary *MonthSummary) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("# %s\n\n", time.Month(summary.Month)))

	sb.WriteString("## Payroll\n\n")
	sb.WriteString("| Driver | Bonuses | Active | Required | Net Pay |\n")
	sb.WriteString("|--------|---------|--------|----------|---------|\n")
	totalPay := 0
	for _, s := range summary.Payslips {
		sb.WriteString(fmt.Sprintf("| %s | %d | %s | %s | %d |\n",
			s.DriverID, s.BonusCount, s.ActualHours, s.RequiredHours, s.NetPay))
		totalPay += s.NetPay
	}
	sb.WriteString(fmt.Sprintf("\nTotal net pay: %d\n\n", totalPay))

	drivers := make([]string, 0, len(summary.Shifts))
	for id := range summary.Shifts {
		drivers = append(drivers, id)
	}
	sort.Strings(drivers)

	sb.WriteString("## Shifts\n\n")
	for _, id := range drivers {
		records := summary.Shifts[id]
		if len(records) == 0 {
			continue
		}
		sb.WriteString(fmt.Sprintf("### %s (%s)\n\n", id, records[0].DriverName))
		sb.WriteString("| Date | Start | End | Active | Idle | Quota | Bonus |\n")
		sb.WriteString("|------|-------|-----|--------|------|-------|-------|\n")
		for _, r := range records {
			sb.WriteString(fmt.Sprintf("| %s | %s | %s | %s | %s | %s | %s |\n",
				r.Date, r.StartTime, r.EndTime, r.ActiveTime, r.IdleTime, yesNo(r.MetQuota), yesNo(r.HasBonus)))
		}
		sb.WriteString("\n")
	}

	sb.WriteString(fmt.Sprintf("---\n*Archived: %s*\n", time.Now().Format("2006-01-02 15:04")))

	return sb.String()
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

// ListArchives returns list of archived months
func (a *Archiver) ListArchives() ([]string, error) {
	entries, err := os.ReadDir(a.historyPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var archives []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasPrefix(e.Name(), "month-") && strings.HasSuffix(e.Name(), ".md") {
			archives = append(archives, e.Name())
		}
	}

	sort.Strings(archives)
	return archives, nil
}

// ReadArchive reads a specific month's archive
func (a *Archiver) ReadArchive(month int) (string, error) {
	data, err := os.ReadFile(filepath.Join(a.historyPath, fileName(month)))
	if err != nil {
		return "", fmt.Errorf("archive not found: %s", fileName(month))
	}

	return string(data), nil
}
