package dto

import (
	"strings"
	"time"

	"anoa.com/boardinghouse/pkg/apperror"
	"github.com/shopspring/decimal"
)

const (
	DateLayout  = "2006-01-02"
	ClockLayout = "15:04:05"
)

// maxMoney bounds decimal(10,2) columns.
var maxMoney = decimal.New(1, 8)

type IDRequest struct {
	ID uint `uri:"id" binding:"required,min=1"`
}

type SearchQuery struct {
	Q string `form:"q"`
}

// MemberRef is the read-only member decoration on member-owned records.
type MemberRef struct {
	MemberName  string `json:"member_name"`
	MemberEmail string `json:"member_email,omitempty"`
	MemberRoom  string `json:"member_room"`
}

func FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(DateLayout)
}

// ParseDate reads a YYYY-MM-DD value as a UTC calendar date.
func ParseDate(field, value string) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, strings.TrimSpace(value), time.UTC)
	if err != nil {
		return time.Time{}, apperror.Invalid(field, "date has wrong format, use YYYY-MM-DD")
	}
	return t, nil
}

// Today is the current calendar date, normalized like ParseDate.
func Today() time.Time {
	now := time.Now()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

// ParseClock accepts HH:MM or HH:MM:SS and returns HH:MM:SS.
func ParseClock(field, value string) (string, error) {
	value = strings.TrimSpace(value)
	for _, layout := range []string{ClockLayout, "15:04"} {
		if t, err := time.Parse(layout, value); err == nil {
			return t.Format(ClockLayout), nil
		}
	}
	return "", apperror.Invalid(field, "time has wrong format, use hh:mm[:ss]")
}

func Money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// CheckMoney records a field error when d does not fit decimal(10,2) or is
// negative.
func CheckMoney(fields map[string]string, field string, d decimal.Decimal) {
	switch {
	case d.IsNegative():
		fields[field] = "ensure this value is greater than or equal to 0"
	case !d.Equal(d.Round(2)):
		fields[field] = "ensure that there are no more than 2 decimal places"
	case d.GreaterThanOrEqual(maxMoney):
		fields[field] = "ensure that there are no more than 10 digits in total"
	}
}

// FieldErrors turns a non-empty field map into a validation error.
func FieldErrors(fields map[string]string) error {
	if len(fields) == 0 {
		return nil
	}
	return &apperror.ValidationError{Fields: fields}
}
