package sheet

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Date bounds accepted by ParseDayCount and ParseDate.
const (
	MinYear = 1900
	MaxYear = 2100

	// AverageMonthDays converts a day difference into months.
	AverageMonthDays = 30.44
)

var datePattern = regexp.MustCompile(`^(\d{2})/(\d{2})/(\d{4})$`) //nolint:gochecknoglobals // Compiled once.

// Date is a calendar date as typed into a date cell.
type Date struct {
	Day, Month, Year int
}

// String formats d as dd/mm/yyyy.
func (d Date) String() string {
	return fmt.Sprintf("%02d/%02d/%04d", d.Day, d.Month, d.Year)
}

// ParseDate parses a strict dd/mm/yyyy date. Months 4, 6, 9 and 11 have 30
// days and February accepts up to 29 regardless of the year.
func ParseDate(s string) (Date, error) {
	m := datePattern.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return Date{}, fmt.Errorf("%w: %q is not dd/mm/yyyy", ErrInvalidDate, s)
	}
	day, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])
	year, _ := strconv.Atoi(m[3])

	d := Date{Day: day, Month: month, Year: year}
	if !d.inRange() {
		return Date{}, fmt.Errorf("%w: %q out of range", ErrInvalidDate, s)
	}
	switch {
	case (month == 4 || month == 6 || month == 9 || month == 11) && day > 30,
		month == 2 && day > 29:
		return Date{}, fmt.Errorf("%w: %q has no such day", ErrInvalidDate, s)
	}
	return d, nil
}

func (d Date) inRange() bool {
	return d.Year >= MinYear && d.Year <= MaxYear &&
		d.Month >= 1 && d.Month <= 12 &&
		d.Day >= 1 && d.Day <= 31
}

// ParseDayCount returns the number of days between 01/01/1900 and the date
// in s. The check is looser than ParseDate: "1/3/2020" is accepted.
func ParseDayCount(s string) (int, error) {
	parts := strings.Split(strings.TrimSpace(s), "/")
	if len(parts) != 3 {
		return 0, fmt.Errorf("%w: %q is not dd/mm/yyyy", ErrInvalidDate, s)
	}
	var vals [3]int
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return 0, fmt.Errorf("%w: %q is not dd/mm/yyyy", ErrInvalidDate, s)
		}
		vals[i] = n
	}
	d := Date{Day: vals[0], Month: vals[1], Year: vals[2]}
	if !d.inRange() {
		return 0, fmt.Errorf("%w: %q out of range", ErrInvalidDate, s)
	}
	return d.days(), nil
}

func (d Date) days() int {
	n := (d.Year - MinYear) * 365
	for y := MinYear; y < d.Year; y++ {
		n += leap(y)
	}
	monthDays := [13]int{0, 31, 28, 31, 30, 31, 30, 31, 31, 30, 31, 30, 31}
	monthDays[2] += leap(d.Year)
	for m := 1; m < d.Month; m++ {
		n += monthDays[m]
	}
	return n + d.Day - 1
}

func leap(y int) int {
	if y%4 == 0 && (y%100 != 0 || y%400 == 0) {
		return 1
	}
	return 0
}
