package archive

import (
	"fmt"
	"sort"

	"github.com/xuri/excelize/v2"
)

const (
	payrollSheet = "Payroll"
	shiftsSheet  = "Shifts"
)

// ExportWorkbook writes the month's payroll and shift rows to an xlsx file.
func (a *Archiver) ExportWorkbook(month int, path string) error {
	summary, err := a.Summarize(month)
	if err != nil {
		return err
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", payrollSheet); err != nil {
		return err
	}
	if _, err := f.NewSheet(shiftsSheet); err != nil {
		return err
	}

	if err := f.SetSheetRow(payrollSheet, "A1", &[]any{"DriverID", "Month", "Bonuses", "ActiveHours", "RequiredHours", "NetPay"}); err != nil {
		return err
	}
	for i, s := range summary.Payslips {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []any{s.DriverID, s.Month, s.BonusCount, s.ActualHours, s.RequiredHours, s.NetPay}
		if err := f.SetSheetRow(payrollSheet, cell, &row); err != nil {
			return err
		}
	}

	if err := f.SetSheetRow(shiftsSheet, "A1", &[]any{"DriverID", "DriverName", "Date", "StartTime", "EndTime", "ShiftDuration", "IdleTime", "ActiveTime", "MetQuota", "HasBonus"}); err != nil {
		return err
	}

	drivers := make([]string, 0, len(summary.Shifts))
	for id := range summary.Shifts {
		drivers = append(drivers, id)
	}
	sort.Strings(drivers)

	next := 2
	for _, id := range drivers {
		for _, r := range summary.Shifts[id] {
			cell, err := excelize.CoordinatesToCellName(1, next)
			if err != nil {
				return err
			}
			row := []any{r.DriverID, r.DriverName, r.Date, r.StartTime, r.EndTime, r.ShiftDuration, r.IdleTime, r.ActiveTime, r.MetQuota, r.HasBonus}
			if err := f.SetSheetRow(shiftsSheet, cell, &row); err != nil {
				return err
			}
			next++
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}
