package payroll

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/shiftbook/internal/rates"
	"github.com/shiftbook/internal/shifts"
	"github.com/shiftbook/internal/timemath"
	"github.com/shiftbook/internal/work"
)

// Calculator combines the shift file and the rate file into monthly pay.
type Calculator struct {
	shifts *shifts.Store
	rates  *rates.Store
	rules  work.Rules
	log    *zap.Logger
}

func New(shiftStore *shifts.Store, rateStore *rates.Store, rules work.Rules, log *zap.Logger) *Calculator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Calculator{
		shifts: shiftStore,
		rates:  rateStore,
		rules:  rules,
		log:    log,
	}
}

// Payslip is the computed pay for one driver and month.
type Payslip struct {
	DriverID      string
	Month         int
	BonusCount    int
	ActualHours   string
	RequiredHours string
	NetPay        int
}

// RequiredHoursPerMonth sums the daily quota over the driver's shifts in
// month, skipping shifts on the driver's day off, then takes the bonus
// allowance off. The result never goes below zero.
func (c *Calculator) RequiredHoursPerMonth(driverID string, month, bonusCount int) (string, error) {
	rate, err := c.rates.Lookup(driverID)
	if err != nil {
		return "", err
	}
	dayOff, err := rate.DayOffWeekday()
	if err != nil {
		return "", err
	}

	records, err := c.shifts.DriverMonth(driverID, month)
	if err != nil {
		return "", err
	}

	required := 0
	for _, r := range records {
		day, err := time.Parse(timemath.DateLayout, r.Date)
		if err != nil {
			return "", fmt.Errorf("shift %s has bad date %q: %w", r.DriverID, r.Date, err)
		}
		if day.Weekday() == dayOff {
			continue
		}
		required += c.rules.QuotaFor(day)
	}

	if bonusCount > 0 {
		required -= bonusCount * c.rules.BonusAllowance
	}
	return timemath.FormatDuration(max(required, 0)), nil
}

// NetPay deducts pay for missing hours beyond the driver's tier buffer. Only
// whole hours are billed and the result never goes below zero.
func (c *Calculator) NetPay(driverID, actualHours, requiredHours string) (int, error) {
	actual, err := timemath.ParseDuration(actualHours)
	if err != nil {
		return 0, err
	}
	required, err := timemath.ParseDuration(requiredHours)
	if err != nil {
		return 0, err
	}

	rate, err := c.rates.Lookup(driverID)
	if err != nil {
		return 0, err
	}
	buffer, err := rate.Allowance(c.rules)
	if err != nil {
		return 0, err
	}

	missing := required - actual
	if missing <= buffer {
		return rate.BasePay, nil
	}

	billable := (missing - buffer) / 3600
	net := rate.BasePay - billable*c.rules.HourlyDeduction(rate.BasePay)
	return max(net, 0), nil
}

// Payslip computes every monthly figure for one driver.
func (c *Calculator) Payslip(driverID string, month int) (Payslip, error) {
	bonuses, err := c.shifts.CountBonusPerMonth(driverID, month)
	if err != nil {
		return Payslip{}, err
	}
	if bonuses < 0 {
		bonuses = 0
	}

	actual, err := c.shifts.TotalActiveHoursPerMonth(driverID, month)
	if err != nil {
		return Payslip{}, err
	}
	required, err := c.RequiredHoursPerMonth(driverID, month, bonuses)
	if err != nil {
		return Payslip{}, err
	}
	net, err := c.NetPay(driverID, actual, required)
	if err != nil {
		return Payslip{}, err
	}

	return Payslip{
		DriverID:      driverID,
		Month:         month,
		BonusCount:    bonuses,
		ActualHours:   actual,
		RequiredHours: required,
		NetPay:        net,
	}, nil
}

// RunMonth computes a payslip for every driver in the rate file.
func (c *Calculator) RunMonth(month int) ([]Payslip, error) {
	all, err := c.rates.All()
	if err != nil {
		return nil, err
	}

	slips := make([]Payslip, 0, len(all))
	for _, r := range all {
		slip, err := c.Payslip(r.DriverID, month)
		if err != nil {
			return nil, fmt.Errorf("payslip for %s: %w", r.DriverID, err)
		}
		slips = append(slips, slip)
	}

	c.log.Info("Computed payroll", zap.Int("month", month), zap.Int("drivers", len(slips)))
	return slips, nil
}
