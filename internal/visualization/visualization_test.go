package visualization

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/shiftbook/internal/payroll"
	"github.com/shiftbook/internal/shifts"
	"github.com/shiftbook/internal/work"
)

var aprilShifts = []shifts.Record{
	{DriverID: "D1001", DriverName: "Ahmed Hassan", Date: "2025-04-05", StartTime: "8:00:00 am", EndTime: "4:30:00 pm", ActiveTime: "8:30:00", MetQuota: true},
	{DriverID: "D1001", DriverName: "Ahmed Hassan", Date: "2025-04-06", StartTime: "7:00:00 am", EndTime: "4:00:00 pm", ActiveTime: "8:00:00", MetQuota: false},
	{DriverID: "D1001", DriverName: "Ahmed Hassan", Date: "2025-04-15", StartTime: "9:00:00 am", EndTime: "4:00:00 pm", ActiveTime: "7:00:00", MetQuota: true, HasBonus: true},
}

func TestGenerateMonthSVGBasics(t *testing.T) {
	v := New(work.Default())

	svg := v.GenerateMonthSVG("D1001", 4, aprilShifts)

	assert.True(t, strings.HasPrefix(svg, "<?xml"))
	assert.Contains(t, svg, "D1001 - April")
	assert.Contains(t, svg, "Shifts: 3 | Active: 23.5h")
	assert.Contains(t, svg, ">05</text>")
	assert.Contains(t, svg, ">15</text>")
	assert.Contains(t, svg, ">Quota</text>")
	assert.Equal(t, 1, strings.Count(svg, `fill="#FF9800"`))
	assert.Equal(t, 4, strings.Count(svg, "<rect"), "background + 3 bars")
}

func TestGenerateMonthSVGEmpty(t *testing.T) {
	v := New(work.Default())

	svg := v.GenerateMonthSVG("D1001", 6, nil)

	assert.Contains(t, svg, "Shifts: 0 | Active: 0.0h")
	assert.Equal(t, 1, strings.Count(svg, "<rect"))
}

func TestGeneratePayslipHTML(t *testing.T) {
	v := New(work.Default())
	slip := payroll.Payslip{
		DriverID:      "D1001",
		Month:         4,
		BonusCount:    1,
		ActualHours:   "13:24:00",
		RequiredHours: "26:48:00",
		NetPay:        29838,
	}

	page := v.GeneratePayslipHTML(slip, aprilShifts)

	assert.Contains(t, page, "<!DOCTYPE html>")
	assert.Contains(t, page, "<h1>Payslip D1001</h1>")
	assert.Contains(t, page, "Generated on ")
	assert.Contains(t, page, `style="width: 50.0%"`)
	assert.Contains(t, page, "<div class=\"stat-value\">29838</div>")
	assert.Contains(t, page, "<tr><td>2025-04-06</td><td>7:00:00 am</td><td>4:00:00 pm</td><td>8:00:00</td><td>missed</td></tr>")
	assert.Equal(t, 3, strings.Count(page, "<tr><td>"))
}

func TestGeneratePayslipHTMLCapsProgress(t *testing.T) {
	v := New(work.Default())
	slip := payroll.Payslip{DriverID: "D1001", Month: 4, ActualHours: "40:00:00", RequiredHours: "0:00:00"}

	page := v.GeneratePayslipHTML(slip, nil)

	assert.Contains(t, page, `style="width: 100.0%"`)
}

func TestOutputEscapesRecordFields(t *testing.T) {
	v := New(work.Default())
	records := []shifts.Record{
		{DriverID: "<D1>", DriverName: "A&B", Date: "2025-04-05", StartTime: "8:00:00 am", EndTime: "<b>", ActiveTime: "8:30:00", MetQuota: true},
	}

	svg := v.GenerateMonthSVG("<D1>", 4, records)
	assert.Contains(t, svg, "&lt;D1&gt; - April")
	assert.NotContains(t, svg, "<D1>")

	page := v.GeneratePayslipHTML(payroll.Payslip{DriverID: "<D1>", Month: 4, ActualHours: "8:30:00", RequiredHours: "8:24:00"}, records)
	assert.Contains(t, page, "<h1>Payslip &lt;D1&gt;</h1>")
	assert.Contains(t, page, "<td>&lt;b&gt;</td>")
	assert.NotContains(t, page, "<D1>")
	assert.NotContains(t, page, "<b>")
}
