package visualization

import (
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/shiftbook/internal/payroll"
	"github.com/shiftbook/internal/shifts"
	"github.com/shiftbook/internal/timemath"
	"github.com/shiftbook/internal/work"
)

type Visualizer struct {
	rules work.Rules
}

func New(rules work.Rules) *Visualizer {
	return &Visualizer{rules: rules}
}

// GenerateMonthSVG draws one bar per shift showing its active hours.
func (v *Visualizer) GenerateMonthSVG(driverID string, month int, records []shifts.Record) string {
	width := 600
	height := 300
	padding := 40
	maxHours := 12.0 // Max hours per shift to display
	plotHeight := float64(height - 2*padding)
	barWidth := float64(width-2*padding) / float64(max(len(records), 1))

	var days []string
	var bars strings.Builder
	totalHours := 0.0
	for i, r := range records {
		seconds, _ := timemath.ParseDuration(r.ActiveTime)
		h := float64(seconds) / 3600
		totalHours += h

		barHeight := (h / maxHours) * plotHeight
		if barHeight > plotHeight {
			barHeight = plotHeight
		}

		x := float64(padding) + float64(i)*barWidth + 2
		y := float64(height) - float64(padding) - barHeight

		color := "#FF9800"
		if r.MetQuota {
			color = "#4CAF50"
		}

		bars.WriteString(fmt.Sprintf(`<rect x="%.0f" y="%.0f" width="%.0f" height="%.0f" fill="%s" rx="3"/>
    <text x="%.0f" y="%d" text-anchor="middle" font-size="10" fill="#333">%.1fh</text>`,
			x, y, max(barWidth-4, 1), barHeight, color,
			x+barWidth/2-2, int(y)-5, h))

		day := r.Date
		if len(day) == len(timemath.DateLayout) {
			day = day[8:]
		}
		days = append(days, html.EscapeString(day))
	}

	quotaHours := float64(v.rules.StandardQuota) / 3600
	quotaY := float64(height) - float64(padding) - (quotaHours/maxHours)*plotHeight

	return fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %d %d" width="%d" height="%d">
  <defs>
    <linearGradient id="bgGrad" x1="0%%" y1="0%%" x2="0%%" y2="100%%">
      <stop offset="0%%" style="stop-color:#f5f7fa"/>
      <stop offset="100%%" style="stop-color:#e4e8ec"/>
    </linearGradient>
  </defs>
  <rect width="%d" height="%d" fill="url(#bgGrad)" rx="10"/>
  <text x="%d" y="30" text-anchor="middle" font-size="18" font-weight="bold" fill="#2c3e50">%s - %s</text>
  <text x="%d" y="55" text-anchor="middle" font-size="12" fill="#7f8c8d">Shifts: %d | Active: %.1fh</text>

  <!-- Quota line -->
  <line x1="%d" y1="%.0f" x2="%d" y2="%.0f" stroke="#E74C3C" stroke-width="2" stroke-dasharray="5,5"/>
  <text x="%d" y="%.0f" font-size="10" fill="#E74C3C">Quota</text>

  <!-- Bars -->
  %s

  <!-- X-axis labels -->
  %s

  <!-- Grid lines -->
  %s
</svg>`,
		width, height, width, height,
		width, height,
		width/2, html.EscapeString(driverID), time.Month(month),
		width/2, len(records), totalHours,
		padding, quotaY, width-padding, quotaY,
		width-padding-30, quotaY-5,
		bars.String(),
		v.generateXLabels(days, float64(padding), barWidth, float64(height-padding)),
		v.generateGridLines(height, padding, width),
	)
}

// GeneratePayslipHTML renders a printable payslip with the month's shifts.
func (v *Visualizer) GeneratePayslipHTML(slip payroll.Payslip, records []shifts.Record) string {
	actual, _ := timemath.ParseDuration(slip.ActualHours)
	required, _ := timemath.ParseDuration(slip.RequiredHours)
	progress := 100.0
	if required > 0 {
		progress = min(float64(actual)/float64(required)*100, 100)
	}

	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
  <meta charset="UTF-8">
  <title>Payslip %s - %s</title>
  <style>
    body { font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; margin: 40px; background: #f5f7fa; }
    .container { max-width: 800px; margin: 0 auto; }
    .card { background: white; border-radius: 10px; padding: 24px; margin-bottom: 20px; box-shadow: 0 2px 8px rgba(0,0,0,0.1); }
    h1 { color: #2c3e50; margin-bottom: 8px; }
    h2 { color: #34495e; font-size: 18px; margin-bottom: 16px; }
    .subtitle { color: #7f8c8d; margin-bottom: 30px; }
    .stat { display: inline-block; text-align: center; padding: 20px; margin: 10px; background: #f8f9fa; border-radius: 8px; min-width: 120px; }
    .stat-value { font-size: 28px; font-weight: bold; color: #3498DB; }
    .stat-label { font-size: 12px; color: #7f8c8d; margin-top: 4px; }
    .progress-bar { height: 24px; background: #E0E0E0; border-radius: 12px; overflow: hidden; margin: 16px 0; }
    .progress-fill { height: 100%%; background: linear-gradient(90deg, #4CAF50, #8BC34A); border-radius: 12px; }
    table { width: 100%%; border-collapse: collapse; margin-top: 16px; }
    th, td { padding: 12px; text-align: left; border-bottom: 1px solid #eee; }
    th { color: #7f8c8d; font-weight: 500; }
  </style>
</head>
<body>
  <div class="container">
    <h1>Payslip %s</h1>
    <p class="subtitle">%s | Generated on %s</p>

    <div class="card">
      <h2>Summary</h2>
      <div class="stat">
        <div class="stat-value">%s</div>
        <div class="stat-label">Active Hours</div>
      </div>
      <div class="stat">
        <div class="stat-value">%s</div>
        <div class="stat-label">Required Hours</div>
      </div>
      <div class="stat">
        <div class="stat-value">%d</div>
        <div class="stat-label">Bonuses</div>
      </div>
      <div class="stat">
        <div class="stat-value">%d</div>
        <div class="stat-label">Net Pay</div>
      </div>
    </div>

    <div class="card">
      <h2>Required Hours Progress</h2>
      <div class="progress-bar">
        <div class="progress-fill" style="width: %.1f%%"></div>
      </div>
    </div>

    <div class="card">
      <h2>Shifts</h2>
      <table>
        <tr><th>Date</th><th>Start</th><th>End</th><th>Active</th><th>Quota</th></tr>
        %s
      </table>
    </div>
  </div>
</body>
</html>`,
		html.EscapeString(slip.DriverID), time.Month(slip.Month),
		html.EscapeString(slip.DriverID),
		time.Month(slip.Month), time.Now().Format("Monday, January 2, 2006"),
		html.EscapeString(slip.ActualHours),
		html.EscapeString(slip.RequiredHours),
		slip.BonusCount,
		slip.NetPay,
		progress,
		v.formatShiftRows(records),
	)
}

func (v *Visualizer) formatShiftRows(records []shifts.Record) string {
	var rows []string
	for _, r := range records {
		quota := "missed"
		if r.MetQuota {
			quota = "met"
		}
		rows = append(rows, fmt.Sprintf("<tr><td>%s</td><td>%s</td><td>%s</td><td>%s</td><td>%s</td></tr>",
			html.EscapeString(r.Date), html.EscapeString(r.StartTime), html.EscapeString(r.EndTime),
			html.EscapeString(r.ActiveTime), quota))
	}

	return strings.Join(rows, "\n")
}

func (v *Visualizer) generateXLabels(days []string, padding float64, barWidth float64, y float64) string {
	var labels strings.Builder
	for i, day := range days {
		x := padding + float64(i)*barWidth + barWidth/2
		labels.WriteString(fmt.Sprintf(`<text x="%.0f" y="%d" text-anchor="middle" font-size="12" fill="#7f8c8d">%s</text>`,
			x, int(y)+20, day))
	}
	return labels.String()
}

func (v *Visualizer) generateGridLines(height int, padding int, width int) string {
	var lines strings.Builder
	for i := 1; i <= 4; i++ {
		y := float64(height) - float64(padding) - (float64(i)/4.0)*float64(height-2*padding)
		lines.WriteString(fmt.Sprintf(`<line x1="%d" y1="%.0f" x2="%d" y2="%.0f" stroke="#E0E0E0"/>`,
			padding, y, width-padding, y))
	}
	return lines.String()
}
