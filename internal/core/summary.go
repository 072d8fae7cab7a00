package core

import (
	"strconv"
	"time"
)

// MonthTotals aggregates one calendar month.
type MonthTotals struct {
	Month   YearMonth
	Income  Money
	Expense Money
}

// Balance is income minus expense; it may be negative.
func (t MonthTotals) Balance() Money {
	return Money{Cents: t.Income.Cents - t.Expense.Cents}
}

// YearMonth identifies one calendar month.
type YearMonth struct {
	Year  int
	Month int // 1-12
}

// CurrentMonth returns the month containing now.
func CurrentMonth(now time.Time) YearMonth {
	return YearMonth{Year: now.Year(), Month: int(now.Month())}
}

func (ym YearMonth) Validate() error {
	if ym.Month < 1 || ym.Month > 12 {
		return &ValidationError{Field: "month", Err: ErrInvalidMonth}
	}
	if ym.Year < 1 || ym.Year > 9999 {
		return &ValidationError{Field: "year", Err: ErrInvalidYear}
	}
	return nil
}

// Next returns the following month, rolling the year over after December.
func (ym YearMonth) Next() YearMonth {
	if ym.Month == 12 {
		return YearMonth{Year: ym.Year + 1, Month: 1}
	}
	return YearMonth{Year: ym.Year, Month: ym.Month + 1}
}

// Prev returns the preceding month, rolling the year back before January.
func (ym YearMonth) Prev() YearMonth {
	if ym.Month == 1 {
		return YearMonth{Year: ym.Year - 1, Month: 12}
	}
	return YearMonth{Year: ym.Year, Month: ym.Month - 1}
}

// Bounds returns the first and last day of the month.
func (ym YearMonth) Bounds() (first, last Date) {
	first = NewDate(ym.Year, ym.Month, 1)
	last = Date{Time: first.AddDate(0, 1, -1)}
	return first, last
}

func (ym YearMonth) Contains(d Date) bool {
	return d.Year() == ym.Year && int(d.Month()) == ym.Month
}

// Label renders the month for headings, e.g. "March 2025".
func (ym YearMonth) Label() string {
	return time.Month(ym.Month).String() + " " + strconv.Itoa(ym.Year)
}

