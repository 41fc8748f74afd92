package shifts

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shiftbook/internal/timemath"
	"github.com/shiftbook/internal/work"
)

const fixture = Header + `
D1001,Ahmed Hassan,2025-04-05,8:00:00 am,4:30:00 pm,8:30:00,0:00:00,8:30:00,true,false
D1001,Ahmed Hassan,2025-04-06,7:00:00 am,4:00:00 pm,9:00:00,1:00:00,8:00:00,false,false
D1001,Ahmed Hassan,2025-04-15,9:00:00 am,4:00:00 pm,7:00:00,0:00:00,7:00:00,true,true
D1001,Ahmed Hassan,2025-04-20,10:00:00 am,8:00:00 pm,10:00:00,0:00:00,10:00:00,true,false
D1002,Sara Ali,2025-04-05,9:00:00 am,6:00:00 pm,9:00:00,0:00:00,9:00:00,true,false
D1002,Sara Ali,2025-05-02,9:00:00 am,6:00:00 pm,9:00:00,0:00:00,9:00:00,true,true

D1003,Omar Khaled,2025-04-05,8:00:00 am,5:00:00 pm,9:00:00,0:00:00,9:00:00,true,false
D1003,Omar Khaled,2025-04-07,8:00:00 am,5:00:00 pm,9:00:00,0:00:00,9:00:00,true,false
D1003,Omar Khaled,2025-04-08,8:00:00 am,5:00:00 pm,9:00:00,0:00:00,9:00:00,true,false
`

func newTestStore(t *testing.T, content string) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "shifts.txt")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return Open(path, work.Default())
}

func readLines(t *testing.T, s *Store) []string {
	t.Helper()
	data, err := os.ReadFile(s.Path())
	require.NoError(t, err)
	return strings.Split(string(data), "\n")
}

func TestAddInsertsAfterDriverRows(t *testing.T) {
	s := newTestStore(t, fixture)

	r, err := s.Add(NewShift{
		DriverID:   "D1001",
		DriverName: "Ahmed Hassan",
		Date:       "2025-04-21",
		StartTime:  "6:32:26 am",
		EndTime:    "7:26:20 pm",
	})
	require.NoError(t, err)

	assert.Equal(t, Record{
		DriverID:      "D1001",
		DriverName:    "Ahmed Hassan",
		Date:          "2025-04-21",
		StartTime:     "6:32:26 am",
		EndTime:       "7:26:20 pm",
		ShiftDuration: "12:53:54",
		IdleTime:      "1:27:34",
		ActiveTime:    "11:26:20",
		MetQuota:      true,
		HasBonus:      false,
	}, r)

	lines := readLines(t, s)
	require.Equal(t, Header, lines[0])
	assert.Equal(t, r.Encode(), lines[5])
	assert.True(t, strings.HasPrefix(lines[6], "D1002,"))
	// blank lines are dropped on rewrite
	assert.Len(t, lines, 11)
}

func TestAddAppendsNewDriver(t *testing.T) {
	s := newTestStore(t, fixture)

	r, err := s.Add(NewShift{
		DriverID:   "D1004",
		DriverName: "Mona Adel",
		Date:       "2025-04-05",
		StartTime:  "9:00:00 am",
		EndTime:    "5:00:00 pm",
	})
	require.NoError(t, err)
	assert.False(t, r.MetQuota)

	lines := readLines(t, s)
	assert.Equal(t, r.Encode(), lines[len(lines)-1])
}

func TestAddDuplicateLeavesFileUnchanged(t *testing.T) {
	s := newTestStore(t, fixture)
	shift := NewShift{
		DriverID:   "D1002",
		DriverName: "Sara Ali",
		Date:       "2025-04-06",
		StartTime:  "8:00:00 am",
		EndTime:    "4:00:00 pm",
	}

	_, err := s.Add(shift)
	require.NoError(t, err)
	before, err := os.ReadFile(s.Path())
	require.NoError(t, err)

	r, err := s.Add(shift)
	assert.ErrorIs(t, err, ErrDuplicate)
	assert.Equal(t, Record{}, r)

	after, err := os.ReadFile(s.Path())
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestAddRejectsInvalidInput(t *testing.T) {
	valid := NewShift{
		DriverID:   "D1001",
		DriverName: "Ahmed Hassan",
		Date:       "2025-04-22",
		StartTime:  "8:00:00 am",
		EndTime:    "5:00:00 pm",
	}

	tests := []struct {
		name   string
		mutate func(*NewShift)
	}{
		{"missing driver", func(s *NewShift) { s.DriverID = "" }},
		{"blank name", func(s *NewShift) { s.DriverName = "   " }},
		{"comma in name", func(s *NewShift) { s.DriverName = "Hassan, Ahmed" }},
		{"impossible date", func(s *NewShift) { s.Date = "2025-02-29" }},
		{"malformed date", func(s *NewShift) { s.Date = "22/04/2025" }},
		{"24h clock", func(s *NewShift) { s.StartTime = "17:00:00" }},
		{"hour out of range", func(s *NewShift) { s.EndTime = "13:00:00 pm" }},
		{"missing end", func(s *NewShift) { s.EndTime = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestStore(t, fixture)
			shift := valid
			tt.mutate(&shift)

			r, err := s.Add(shift)
			assert.ErrorIs(t, err, ErrValidation)
			assert.Equal(t, Record{}, r)

			data, err := os.ReadFile(s.Path())
			require.NoError(t, err)
			assert.Equal(t, fixture, string(data))
		})
	}
}

func TestAddTrimsFields(t *testing.T) {
	s := newTestStore(t, fixture)

	_, err := s.Add(NewShift{
		DriverID:   " D1001",
		DriverName: "Ahmed Hassan",
		Date:       "2025-04-06 ",
		StartTime:  "7:00:00 am",
		EndTime:    "4:00:00 pm",
	})
	assert.ErrorIs(t, err, ErrDuplicate)

	r, err := s.Add(NewShift{
		DriverID:   " D1001 ",
		DriverName: " Ahmed Hassan",
		Date:       "2025-04-22",
		StartTime:  " 8:00:00 am",
		EndTime:    "5:00:00 pm ",
	})
	require.NoError(t, err)
	assert.Equal(t, "D1001", r.DriverID)
	assert.Equal(t, "Ahmed Hassan", r.DriverName)
	assert.Equal(t, "8:00:00 am", r.StartTime)
	assert.Equal(t, "5:00:00 pm", r.EndTime)

	drivers, err := s.Drivers()
	require.NoError(t, err)
	assert.Equal(t, []string{"D1001", "D1002", "D1003"}, drivers)
}

func TestAddMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.txt")
	s := Open(path, work.Default())

	r, err := s.Add(NewShift{
		DriverID:   "D1001",
		DriverName: "Ahmed Hassan",
		Date:       "2025-04-22",
		StartTime:  "8:00:00 am",
		EndTime:    "5:00:00 pm",
	})
	assert.Error(t, err)
	assert.Equal(t, Record{}, r)

	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))
}

func TestAddEmptyFileWritesHeader(t *testing.T) {
	s := newTestStore(t, "")

	r, err := s.Add(NewShift{
		DriverID:   "D1001",
		DriverName: "Ahmed Hassan",
		Date:       "2025-04-22",
		StartTime:  "8:00:00 am",
		EndTime:    "5:00:00 pm",
	})
	require.NoError(t, err)

	data, err := os.ReadFile(s.Path())
	require.NoError(t, err)
	assert.Equal(t, Header+"\n"+r.Encode(), string(data))
}

func TestSetBonus(t *testing.T) {
	s := newTestStore(t, fixture)
	before := readLines(t, s)

	require.NoError(t, s.SetBonus("D1001", "2025-04-06", true))

	after := readLines(t, s)
	var target string
	for _, line := range after {
		if strings.HasPrefix(line, "D1001,") && strings.Contains(line, "2025-04-06") {
			target = line
		}
	}
	assert.True(t, strings.HasSuffix(target, ",true"))

	// every other row is untouched
	changed := 0
	beforeRows := nonBlank(before)
	afterRows := nonBlank(after)
	require.Len(t, afterRows, len(beforeRows))
	for i := range beforeRows {
		if beforeRows[i] != afterRows[i] {
			changed++
		}
	}
	assert.Equal(t, 1, changed)

	count, err := s.CountBonusPerMonth("D1001", 4)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestSetBonusUnknownRow(t *testing.T) {
	s := newTestStore(t, fixture)

	err := s.SetBonus("D1001", "2025-04-30", true)
	assert.ErrorIs(t, err, ErrNotFound)

	data, err := os.ReadFile(s.Path())
	require.NoError(t, err)
	assert.Equal(t, fixture, string(data))
}

func TestCountBonusPerMonth(t *testing.T) {
	s := newTestStore(t, fixture)

	tests := []struct {
		driverID string
		month    int
		expected int
	}{
		{"D1001", 4, 1},
		{"D1001", 5, 0},
		{"D1002", 5, 1},
		{"D1003", 4, 0},
		{"D9999", 4, -1},
	}

	for _, tt := range tests {
		t.Run(tt.driverID, func(t *testing.T) {
			count, err := s.CountBonusPerMonth(tt.driverID, tt.month)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, count)
		})
	}
}

func TestTotalActiveHoursPerMonth(t *testing.T) {
	s := newTestStore(t, fixture)

	tests := []struct {
		driverID string
		month    int
		expected string
	}{
		{"D1001", 4, "33:30:00"},
		{"D1002", 5, "9:00:00"},
		{"D1003", 4, "27:00:00"},
		{"D1001", 6, "0:00:00"},
		{"D9999", 4, "0:00:00"},
	}

	for _, tt := range tests {
		t.Run(tt.driverID, func(t *testing.T) {
			total, err := s.TotalActiveHoursPerMonth(tt.driverID, tt.month)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, total)
		})
	}
}

func TestMonthOutOfRange(t *testing.T) {
	s := newTestStore(t, Header+"\nD1001,Ahmed Hassan,2025/04/05,8:00:00 am,4:30:00 pm,8:30:00,0:00:00,8:30:00,true,true")

	for _, month := range []int{0, 13, -4} {
		_, err := s.CountBonusPerMonth("D1001", month)
		assert.ErrorIs(t, err, timemath.ErrInvalidMonth)

		_, err = s.TotalActiveHoursPerMonth("D1001", month)
		assert.ErrorIs(t, err, timemath.ErrInvalidMonth)

		_, err = s.DriverMonth("D1001", month)
		assert.ErrorIs(t, err, timemath.ErrInvalidMonth)
	}

	count, err := s.CountBonusPerMonth("D1001", 4)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestTotalActiveHoursOverflow(t *testing.T) {
	big := timemath.FormatDuration(timemath.MaxDurationHours * 3600)
	s := newTestStore(t, Header+
		"\nD1001,Ahmed Hassan,2025-04-05,8:00:00 am,4:30:00 pm,"+big+",0:00:00,"+big+",true,false"+
		"\nD1001,Ahmed Hassan,2025-04-06,8:00:00 am,4:30:00 pm,"+big+",0:00:00,"+big+",true,false")

	_, err := s.TotalActiveHoursPerMonth("D1001", 4)
	assert.ErrorIs(t, err, timemath.ErrInvalidDuration)
}

func TestTotalActiveHoursAboveHundred(t *testing.T) {
	var sb strings.Builder
	sb.WriteString(Header)
	for day := 1; day <= 12; day++ {
		sb.WriteString("\nD1001,Ahmed Hassan,2025-03-")
		sb.WriteString([]string{"01", "02", "03", "04", "05", "06", "07", "08", "09", "10", "11", "12"}[day-1])
		sb.WriteString(",8:00:00 am,6:00:00 pm,10:00:00,0:00:00,10:00:00,true,false")
	}
	s := newTestStore(t, sb.String())

	total, err := s.TotalActiveHoursPerMonth("D1001", 3)
	require.NoError(t, err)
	assert.Equal(t, "120:00:00", total)
}

func TestReadsOnMissingFile(t *testing.T) {
	s := Open(filepath.Join(t.TempDir(), "missing.txt"), work.Default())

	count, err := s.CountBonusPerMonth("D1001", 4)
	require.NoError(t, err)
	assert.Equal(t, -1, count)

	total, err := s.TotalActiveHoursPerMonth("D1001", 4)
	require.NoError(t, err)
	assert.Equal(t, "0:00:00", total)

	drivers, err := s.Drivers()
	require.NoError(t, err)
	assert.Empty(t, drivers)
}

func TestDriversAndDriverMonth(t *testing.T) {
	s := newTestStore(t, fixture)

	drivers, err := s.Drivers()
	require.NoError(t, err)
	assert.Equal(t, []string{"D1001", "D1002", "D1003"}, drivers)

	rows, err := s.DriverMonth("D1002", 4)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "2025-04-05", rows[0].Date)
}

func TestMalformedRowFailsLoad(t *testing.T) {
	s := newTestStore(t, Header+"\nD1001,broken\n")

	_, err := s.Records()
	assert.ErrorIs(t, err, ErrMalformedRow)
}

func nonBlank(lines []string) []string {
	var out []string
	for _, l := range lines {
		if strings.TrimSpace(l) != "" {
			out = append(out, l)
		}
	}
	return out
}
