package http

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"bilancio/internal/core"
)

// ParseMonthParams extracts year and month from v, defaulting each to the
// month containing now. Non-numeric or out-of-range values are a ValidationError.
func ParseMonthParams(v url.Values, now time.Time) (core.YearMonth, error) {
	ym := core.CurrentMonth(now)

	if s := strings.TrimSpace(v.Get("year")); s != "" {
		y, err := strconv.Atoi(s)
		if err != nil {
			return core.YearMonth{}, &core.ValidationError{Field: "year", Err: core.ErrInvalidYear}
		}
		ym.Year = y
	}
	if s := strings.TrimSpace(v.Get("month")); s != "" {
		m, err := strconv.Atoi(s)
		if err != nil {
			return core.YearMonth{}, &core.ValidationError{Field: "month", Err: core.ErrInvalidMonth}
		}
		ym.Month = m
	}

	if err := ym.Validate(); err != nil {
		return core.YearMonth{}, err
	}
	return ym, nil
}

// formValues echoes a transaction form back to the browser.
type formValues struct {
	Action      string
	Submit      string
	Year, Month int
	Type        string
	Amount      string
	Description string
	Date        string
}

func formFromRequest(form url.Values) formValues {
	return formValues{
		Type:        strings.TrimSpace(form.Get("type")),
		Amount:      strings.TrimSpace(form.Get("amount")),
		Description: sanitizeInput(form.Get("description")),
		Date:        strings.TrimSpace(form.Get("date")),
	}
}

func formFromTransaction(t core.Transaction) formValues {
	return formValues{
		Type:        t.Kind.String(),
		Amount:      t.Amount.String(),
		Description: t.Description,
		Date:        t.Date.String(),
	}
}

// toTransaction validates the submitted values. An empty date means today.
func (f formValues) toTransaction(today core.Date) (core.Transaction, error) {
	kind, err := core.ParseKind(f.Type)
	if err != nil {
		return core.Transaction{}, err
	}
	amount, err := core.ParseAmount(f.Amount)
	if err != nil {
		return core.Transaction{}, err
	}
	date := today
	if f.Date != "" {
		if date, err = core.ParseDate(f.Date); err != nil {
			return core.Transaction{}, err
		}
	}

	t := core.Transaction{
		Kind:        kind,
		Amount:      amount,
		Description: f.Description,
		Date:        date,
	}
	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}
	return t, nil
}

// parseID reads the {id} path segment.
func parseID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, &core.ValidationError{Field: "id", Err: errInvalidID}
	}
	return id, nil
}

// redirectMonth picks the month to return to after a delete: the hidden
// year/month form fields, then the Referer query, then none.
func redirectMonth(r *http.Request, now time.Time) (core.YearMonth, bool) {
	if r.PostForm.Has("year") && r.PostForm.Has("month") {
		if ym, err := ParseMonthParams(r.PostForm, now); err == nil {
			return ym, true
		}
	}
	if ref := r.Referer(); ref != "" {
		if u, err := url.Parse(ref); err == nil {
			q := u.Query()
			if q.Has("year") && q.Has("month") {
				if ym, err := ParseMonthParams(q, now); err == nil {
					return ym, true
				}
			}
		}
	}
	return core.YearMonth{}, false
}
