package shifts

import (
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/shiftbook/internal/timemath"
	"github.com/shiftbook/internal/work"
)

var (
	ErrValidation = errors.New("invalid shift")
	ErrDuplicate  = errors.New("shift already recorded for driver and date")
	ErrNotFound   = errors.New("shift not found")
)

// NewShift holds the caller-supplied fields of a shift. Everything else on
// the stored Record is derived.
type NewShift struct {
	DriverID   string
	DriverName string
	Date       string
	StartTime  string
	EndTime    string
}

// Store reads and rewrites a shift file. Each call loads the whole file and,
// for mutations, replaces it in one rename. Callers must not share a file
// between concurrent writers.
type Store struct {
	path  string
	rules work.Rules
	log   *zap.Logger
}

type Option func(*Store)

func WithLogger(log *zap.Logger) Option {
	return func(s *Store) {
		if log != nil {
			s.log = log
		}
	}
}

// Open returns a Store for path. The file is not touched until the first
// operation.
func Open(path string, rules work.Rules, opts ...Option) *Store {
	s := &Store{
		path:  path,
		rules: rules,
		log:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) Path() string {
	return s.path
}

// Add validates shift, derives its duration fields and inserts it after the
// driver's last row. Fields are stored trimmed. On any failure the zero
// Record is returned and the file is left as it was.
func (s *Store) Add(shift NewShift) (Record, error) {
	shift = shift.trimmed()
	if err := validate(shift); err != nil {
		s.log.Warn("Rejected shift", zap.String("driver_id", shift.DriverID), zap.String("date", shift.Date), zap.Error(err))
		return Record{}, err
	}

	records, err := s.load()
	if err != nil {
		return Record{}, fmt.Errorf("failed to read shift file: %w", err)
	}

	for _, r := range records {
		if r.DriverID == shift.DriverID && r.Date == shift.Date {
			s.log.Warn("Duplicate shift", zap.String("driver_id", shift.DriverID), zap.String("date", shift.Date))
			return Record{}, fmt.Errorf("%w: %s on %s", ErrDuplicate, shift.DriverID, shift.Date)
		}
	}

	record, err := s.derive(shift)
	if err != nil {
		return Record{}, err
	}

	insertAt := len(records)
	for i := len(records) - 1; i >= 0; i-- {
		if records[i].DriverID == shift.DriverID {
			insertAt = i + 1
			break
		}
	}
	records = append(records, Record{})
	copy(records[insertAt+1:], records[insertAt:])
	records[insertAt] = record

	if err := s.save(records); err != nil {
		return Record{}, err
	}

	s.log.Info("Added shift",
		zap.String("driver_id", record.DriverID),
		zap.String("date", record.Date),
		zap.String("active", record.ActiveTime),
		zap.Bool("met_quota", record.MetQuota))
	return record, nil
}

func (s *Store) derive(shift NewShift) (Record, error) {
	duration, err := timemath.ShiftDuration(shift.StartTime, shift.EndTime)
	if err != nil {
		return Record{}, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	idle, err := s.rules.IdleTime(shift.StartTime, shift.EndTime)
	if err != nil {
		return Record{}, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	active, err := timemath.ActiveTime(duration, idle)
	if err != nil {
		return Record{}, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	return Record{
		DriverID:      shift.DriverID,
		DriverName:    shift.DriverName,
		Date:          shift.Date,
		StartTime:     shift.StartTime,
		EndTime:       shift.EndTime,
		ShiftDuration: duration,
		IdleTime:      idle,
		ActiveTime:    active,
		MetQuota:      s.rules.MetQuota(shift.Date, active),
		HasBonus:      false,
	}, nil
}

func (n NewShift) trimmed() NewShift {
	return NewShift{
		DriverID:   strings.TrimSpace(n.DriverID),
		DriverName: strings.TrimSpace(n.DriverName),
		Date:       strings.TrimSpace(n.Date),
		StartTime:  strings.TrimSpace(n.StartTime),
		EndTime:    strings.TrimSpace(n.EndTime),
	}
}

func validate(shift NewShift) error {
	fields := []struct {
		name, value string
	}{
		{"driverID", shift.DriverID},
		{"driverName", shift.DriverName},
		{"date", shift.Date},
		{"startTime", shift.StartTime},
		{"endTime", shift.EndTime},
	}
	for _, f := range fields {
		if f.value == "" {
			return fmt.Errorf("%w: %s is required", ErrValidation, f.name)
		}
		if strings.ContainsAny(f.value, ",\r\n") {
			return fmt.Errorf("%w: %s must not contain commas or line breaks", ErrValidation, f.name)
		}
	}

	if !timemath.ValidDate(shift.Date) {
		return fmt.Errorf("%w: date %q is not a calendar date", ErrValidation, shift.Date)
	}
	if !timemath.ValidClock(shift.StartTime) {
		return fmt.Errorf("%w: startTime %q", ErrValidation, shift.StartTime)
	}
	if !timemath.ValidClock(shift.EndTime) {
		return fmt.Errorf("%w: endTime %q", ErrValidation, shift.EndTime)
	}
	return nil
}

// SetBonus rewrites the HasBonus flag of the row for driverID on date.
func (s *Store) SetBonus(driverID, date string, value bool) error {
	records, err := s.load()
	if err != nil {
		return fmt.Errorf("failed to read shift file: %w", err)
	}

	idx := -1
	for i, r := range records {
		if r.DriverID == driverID && r.Date == date {
			idx = i
			break
		}
	}
	if idx < 0 {
		return fmt.Errorf("%w: %s on %s", ErrNotFound, driverID, date)
	}

	records[idx].HasBonus = value
	if err := s.save(records); err != nil {
		return err
	}

	s.log.Info("Set bonus", zap.String("driver_id", driverID), zap.String("date", date), zap.Bool("value", value))
	return nil
}

// CountBonusPerMonth counts the driver's bonus rows in month. It returns -1
// when the driver has no rows at all.
func (s *Store) CountBonusPerMonth(driverID string, month int) (int, error) {
	if err := checkMonth(month); err != nil {
		return 0, err
	}
	records, err := s.loadOrEmpty()
	if err != nil {
		return 0, err
	}

	found := false
	count := 0
	for _, r := range records {
		if r.DriverID != driverID {
			continue
		}
		found = true
		if timemath.MonthOf(r.Date) == month && r.HasBonus {
			count++
		}
	}
	if !found {
		return -1, nil
	}
	return count, nil
}

// TotalActiveHoursPerMonth sums the driver's active time in month.
func (s *Store) TotalActiveHoursPerMonth(driverID string, month int) (string, error) {
	records, err := s.DriverMonth(driverID, month)
	if err != nil {
		return "", err
	}

	total := 0
	for _, r := range records {
		seconds, err := timemath.ParseDuration(r.ActiveTime)
		if err != nil {
			return "", fmt.Errorf("shift %s on %s: %w", r.DriverID, r.Date, err)
		}
		if total > math.MaxInt-seconds {
			return "", fmt.Errorf("%w: total for %s overflows", timemath.ErrInvalidDuration, driverID)
		}
		total += seconds
	}
	return timemath.FormatDuration(total), nil
}

// DriverMonth returns the driver's rows in month, in file order.
func (s *Store) DriverMonth(driverID string, month int) ([]Record, error) {
	if err := checkMonth(month); err != nil {
		return nil, err
	}
	records, err := s.loadOrEmpty()
	if err != nil {
		return nil, err
	}

	var out []Record
	for _, r := range records {
		if r.DriverID == driverID && timemath.MonthOf(r.Date) == month {
			out = append(out, r)
		}
	}
	return out, nil
}

func checkMonth(month int) error {
	if month < 1 || month > 12 {
		return fmt.Errorf("%w: %d", timemath.ErrInvalidMonth, month)
	}
	return nil
}

// Records returns every row in file order.
func (s *Store) Records() ([]Record, error) {
	return s.loadOrEmpty()
}

// Drivers returns the distinct driver IDs in order of first appearance.
func (s *Store) Drivers() ([]string, error) {
	records, err := s.loadOrEmpty()
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var ids []string
	for _, r := range records {
		if !seen[r.DriverID] {
			seen[r.DriverID] = true
			ids = append(ids, r.DriverID)
		}
	}
	return ids, nil
}

func (s *Store) load() ([]Record, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, err
	}

	var records []Record
	for i, line := range strings.Split(string(data), "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" || line == Header {
			continue
		}
		r, err := Decode(line)
		if err != nil {
			return nil, fmt.Errorf("%s line %d: %w", s.path, i+1, err)
		}
		records = append(records, r)
	}
	return records, nil
}

// loadOrEmpty treats a missing file as an empty store.
func (s *Store) loadOrEmpty() ([]Record, error) {
	records, err := s.load()
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	return records, err
}

func (s *Store) save(records []Record) error {
	lines := make([]string, 0, len(records)+1)
	lines = append(lines, Header)
	for _, r := range records {
		lines = append(lines, r.Encode())
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".shifts-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.WriteString(strings.Join(lines, "\n")); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write shift file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write shift file: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		return fmt.Errorf("failed to write shift file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("failed to replace shift file: %w", err)
	}

	s.log.Debug("Rewrote shift file", zap.String("path", s.path), zap.Int("rows", len(records)))
	return nil
}
