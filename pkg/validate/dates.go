package validate

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/goliatone/go-formguard/pkg/messages"
)

var machineDate = regexp.MustCompile(`^(\d{4})-(\d{2})-(\d{2})$`)

// DateParts extracts year, month and day from either a machine date
// (YYYY-MM-DD) or the masked form (DD.MM.YYYY, any separators). ok is false
// when the value has neither shape; the calendar is not checked.
func DateParts(value string) (year, month, day int, ok bool) {
	if m := machineDate.FindStringSubmatch(value); m != nil {
		year, _ = strconv.Atoi(m[1])
		month, _ = strconv.Atoi(m[2])
		day, _ = strconv.Atoi(m[3])
		return year, month, day, true
	}
	d := digitsOnly(value)
	if len(d) != 8 {
		return 0, 0, 0, false
	}
	day, _ = strconv.Atoi(d[0:2])
	month, _ = strconv.Atoi(d[2:4])
	year, _ = strconv.Atoi(d[4:8])
	return year, month, day, true
}

// ISODate converts a date value to zero-padded YYYY-MM-DD so that lexical
// order matches calendar order.
func ISODate(value string) (string, bool) {
	year, month, day, ok := DateParts(value)
	if !ok || !validCalendarDate(year, month, day) {
		return "", false
	}
	return fmt.Sprintf("%04d-%02d-%02d", year, month, day), true
}

// LeapYear applies the Gregorian rule.
func LeapYear(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}

// DaysIn returns the number of days of month in year.
func DaysIn(year, month int) int {
	switch month {
	case 2:
		if LeapYear(year) {
			return 29
		}
		return 28
	case 4, 6, 9, 11:
		return 30
	default:
		return 31
	}
}

func validCalendarDate(year, month, day int) bool {
	if year < 1 || month < 1 || month > 12 {
		return false
	}
	return day >= 1 && day <= DaysIn(year, month)
}

func date(value string) Outcome {
	if value == "" {
		return OK()
	}
	year, month, day, ok := DateParts(value)
	if !ok {
		return Fail(messages.Date, nil)
	}
	if !validCalendarDate(year, month, day) {
		return Fail(messages.DateInvalid, nil)
	}
	return OK()
}

func clock(value string) Outcome {
	if value == "" {
		return OK()
	}
	d := digitsOnly(value)
	if len(d) != 4 {
		return Fail(messages.Time, nil)
	}
	hour, _ := strconv.Atoi(d[:2])
	minute, _ := strconv.Atoi(d[2:])
	if hour > 23 || minute > 59 {
		return Fail(messages.Time, nil)
	}
	return OK()
}

// Age returns the age in whole calendar years derived from a birth date,
// computed as the difference of years the way the age field displays it.
func Age(birth string, currentYear int) (int, bool) {
	year, month, day, ok := DateParts(birth)
	if !ok || !validCalendarDate(year, month, day) || year > currentYear {
		return 0, false
	}
	return currentYear - year, true
}
