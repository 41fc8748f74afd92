package rates

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/gocarina/gocsv"

	"github.com/shiftbook/internal/work"
)

var (
	ErrNotFound    = errors.New("driver rate not found")
	ErrUnknownTier = errors.New("unknown driver tier")
	ErrBadDayOff   = errors.New("invalid day off")
)

// Rate is one row of the rate file: DriverID,DayOff,BasePay,Tier.
type Rate struct {
	DriverID string `csv:"driver_id"`
	DayOff   string `csv:"day_off"`
	BasePay  int    `csv:"base_pay"`
	Tier     int    `csv:"tier"`
}

// DayOffWeekday parses DayOff as an English weekday name.
func (r Rate) DayOffWeekday() (time.Weekday, error) {
	for d := time.Sunday; d <= time.Saturday; d++ {
		if strings.EqualFold(strings.TrimSpace(r.DayOff), d.String()) {
			return d, nil
		}
	}
	return time.Sunday, fmt.Errorf("%w: %q for %s", ErrBadDayOff, r.DayOff, r.DriverID)
}

// Allowance returns the missing seconds the driver may accumulate before
// deductions start.
func (r Rate) Allowance(rules work.Rules) (int, error) {
	seconds, ok := rules.BufferFor(r.Tier)
	if !ok {
		return 0, fmt.Errorf("%w: %d for %s", ErrUnknownTier, r.Tier, r.DriverID)
	}
	return seconds, nil
}

// Store reads a rate file. The file is re-read on every call.
type Store struct {
	path string
}

func Open(path string) *Store {
	return &Store{path: path}
}

func (s *Store) Path() string {
	return s.path
}

// All returns every rate row in file order.
func (s *Store) All() ([]Rate, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rate file: %w", err)
	}

	var kept []string
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "DriverID,") {
			continue
		}
		kept = append(kept, line)
	}
	if len(kept) == 0 {
		return nil, nil
	}

	var out []Rate
	if err := gocsv.UnmarshalWithoutHeaders(bytes.NewBufferString(strings.Join(kept, "\n")), &out); err != nil {
		return nil, fmt.Errorf("failed to parse rate file %s: %w", s.path, err)
	}
	for i := range out {
		out[i].DriverID = strings.TrimSpace(out[i].DriverID)
	}
	return out, nil
}

// Lookup returns the rate row for driverID.
func (s *Store) Lookup(driverID string) (Rate, error) {
	all, err := s.All()
	if err != nil {
		return Rate{}, err
	}
	for _, r := range all {
		if r.DriverID == driverID {
			return r, nil
		}
	}
	return Rate{}, fmt.Errorf("%w: %s", ErrNotFound, driverID)
}
