package shifts

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Header is the first line of every shift file.
const Header = "DriverID,DriverName,Date,StartTime,EndTime,ShiftDuration,IdleTime,ActiveTime,MetQuota,HasBonus"

const fieldCount = 10

var ErrMalformedRow = errors.New("malformed shift row")

// Record is one row of the shift file.
type Record struct {
	DriverID      string `json:"driver_id"`
	DriverName    string `json:"driver_name"`
	Date          string `json:"date"`
	StartTime     string `json:"start_time"`
	EndTime       string `json:"end_time"`
	ShiftDuration string `json:"shift_duration"`
	IdleTime      string `json:"idle_time"`
	ActiveTime    string `json:"active_time"`
	MetQuota      bool   `json:"met_quota"`
	HasBonus      bool   `json:"has_bonus"`
}

// Encode renders the record as a comma-joined line. Fields are written
// verbatim; there is no quoting.
func (r Record) Encode() string {
	return strings.Join([]string{
		r.DriverID,
		r.DriverName,
		r.Date,
		r.StartTime,
		r.EndTime,
		r.ShiftDuration,
		r.IdleTime,
		r.ActiveTime,
		strconv.FormatBool(r.MetQuota),
		strconv.FormatBool(r.HasBonus),
	}, ",")
}

// Decode parses a line produced by Encode.
func Decode(line string) (Record, error) {
	fields := strings.Split(strings.TrimRight(line, "\r"), ",")
	if len(fields) != fieldCount {
		return Record{}, fmt.Errorf("%w: want %d fields, got %d", ErrMalformedRow, fieldCount, len(fields))
	}

	metQuota, err := parseBool(fields[8])
	if err != nil {
		return Record{}, err
	}
	hasBonus, err := parseBool(fields[9])
	if err != nil {
		return Record{}, err
	}

	return Record{
		DriverID:      fields[0],
		DriverName:    fields[1],
		Date:          fields[2],
		StartTime:     fields[3],
		EndTime:       fields[4],
		ShiftDuration: fields[5],
		IdleTime:      fields[6],
		ActiveTime:    fields[7],
		MetQuota:      metQuota,
		HasBonus:      hasBonus,
	}, nil
}

func parseBool(s string) (bool, error) {
	switch strings.TrimSpace(s) {
	case "true":
		return true, nil
	case "false":
		return false, nil
	}
	return false, fmt.Errorf("%w: bad boolean %q", ErrMalformedRow, s)
}
