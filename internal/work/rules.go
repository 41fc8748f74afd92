package work

import (
	"time"

	"github.com/shiftbook/internal/timemath"
)

// =============================================================================
// DELIVERY RULES CONFIGURATION
// =============================================================================
// Edit these values to match the current delivery contract.
//
// 1. DeliveryStartHour / DeliveryEndHour bound the window in which driving
//    counts as active. Anything outside it is idle time.
// 2. StandardQuotaMinutes is the daily active-time target. During the reduced
//    period (ReducedPeriodStart..ReducedPeriodEnd, inclusive) the target drops
//    to ReducedQuotaMinutes.
// 3. Each bonus earned in a month takes BonusAllowanceHours off the required
//    hours for that month.
// 4. Missing hours beyond a driver's tier buffer are deducted at
//    BasePay / DeductionDivisor per whole hour.
// =============================================================================

const (
	DeliveryStartHour = 8
	DeliveryEndHour   = 22

	// StandardQuotaMinutes - 8h24m of active time per working day
	StandardQuotaMinutes = 8*60 + 24

	// ReducedQuotaMinutes - holiday period quota
	ReducedQuotaMinutes = 6 * 60
	ReducedPeriodStart  = "2025-04-10"
	ReducedPeriodEnd    = "2025-04-30"

	BonusAllowanceHours = 2

	// DeductionDivisor - base pay is split into this many billable hours
	DeductionDivisor = 185
)

// TierBufferHours maps a driver tier to the missing hours tolerated before
// any deduction applies.
var TierBufferHours = map[int]int{
	1: 50,
	2: 20,
	3: 10,
	4: 3,
}

// Rules carries the policy values into the stores and the payroll
// calculator. Use Default unless a test needs something else.
type Rules struct {
	Window         timemath.Window
	StandardQuota  int // seconds
	ReducedQuota   int // seconds
	ReducedFrom    time.Time
	ReducedTo      time.Time
	BonusAllowance int // seconds per bonus
	TierBuffers    map[int]int
	Divisor        int
}

// Default returns the rules described by the constants above.
func Default() Rules {
	from, _ := time.Parse(timemath.DateLayout, ReducedPeriodStart)
	to, _ := time.Parse(timemath.DateLayout, ReducedPeriodEnd)

	buffers := make(map[int]int, len(TierBufferHours))
	for tier, hours := range TierBufferHours {
		buffers[tier] = hours * 3600
	}

	return Rules{
		Window: timemath.Window{
			Start: DeliveryStartHour * 3600,
			End:   DeliveryEndHour * 3600,
		},
		StandardQuota:  StandardQuotaMinutes * 60,
		ReducedQuota:   ReducedQuotaMinutes * 60,
		ReducedFrom:    from,
		ReducedTo:      to,
		BonusAllowance: BonusAllowanceHours * 3600,
		TierBuffers:    buffers,
		Divisor:        DeductionDivisor,
	}
}

// QuotaFor returns the required active seconds for the given day.
func (r Rules) QuotaFor(date time.Time) int {
	day := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	if !day.Before(r.ReducedFrom) && !day.After(r.ReducedTo) {
		return r.ReducedQuota
	}
	return r.StandardQuota
}

// MetQuota reports whether activeTime reaches the quota for date. Malformed
// input never meets the quota.
func (r Rules) MetQuota(date, activeTime string) bool {
	day, err := time.Parse(timemath.DateLayout, date)
	if err != nil {
		return false
	}
	active, err := timemath.ParseDuration(activeTime)
	if err != nil {
		return false
	}
	return active >= r.QuotaFor(day)
}

// IdleTime measures the shift against the configured delivery window.
func (r Rules) IdleTime(start, end string) (string, error) {
	return timemath.IdleTime(start, end, r.Window)
}

// BufferFor returns the tolerated missing seconds for tier, and false for an
// unknown tier.
func (r Rules) BufferFor(tier int) (int, bool) {
	seconds, ok := r.TierBuffers[tier]
	return seconds, ok
}

// HourlyDeduction returns the amount deducted per missing hour.
func (r Rules) HourlyDeduction(basePay int) int {
	if r.Divisor <= 0 {
		return 0
	}
	return basePay / r.Divisor
}
