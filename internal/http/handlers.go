package http

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"bilancio/internal/core"
	"bilancio/internal/log"
)

// indexPage is the data for index.html.
type indexPage struct {
	Month        core.YearMonth
	Prev, Next   core.YearMonth
	Totals       core.MonthTotals
	Transactions []core.Transaction
	Form         formValues
	Flash        string
	Error        string
}

// editPage is the data for edit.html.
type editPage struct {
	ID    int64
	Form  formValues
	Back  core.YearMonth
	Error string
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// handleReady reports whether the store answers a ping.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	if err := s.store.Ping(ctx); err != nil {
		log.FromContext(r.Context()).WarnContext(r.Context(), "Readiness check failed",
			log.FieldError, err,
			log.FieldErrorType, log.ErrorTypeDatabase)
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("not ready"))
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	s.renderError(w, r, http.StatusNotFound, "The page you asked for does not exist.")
}

func (s *Server) today() core.Date {
	return core.DateOf(s.now())
}

// addForm returns an empty add form for ym. The date defaults to today when
// today falls in ym, else to the first of ym.
func (s *Server) addForm(ym core.YearMonth) formValues {
	date := s.today()
	if !ym.Contains(date) {
		date, _ = ym.Bounds()
	}
	return formValues{
		Action: "/add",
		Submit: "Add",
		Year:   ym.Year,
		Month:  ym.Month,
		Type:   core.Expense.String(),
		Date:   date.String(),
	}
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	ym, err := ParseMonthParams(r.URL.Query(), s.now())
	if err != nil {
		s.fail(w, r, log.OpRead, err)
		return
	}

	page := indexPage{
		Month: ym,
		Form:  s.addForm(ym),
		Flash: popFlash(w, r),
	}
	s.renderMonth(w, r, page)
}

// renderMonth loads totals and rows for page.Month concurrently and renders
// the month view with status 200.
func (s *Server) renderMonth(w http.ResponseWriter, r *http.Request, page indexPage) {
	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		totals, err := s.store.TotalsForMonth(ctx, page.Month)
		page.Totals = totals
		return err
	})
	g.Go(func() error {
		txs, err := s.store.ListForMonth(ctx, page.Month)
		page.Transactions = txs
		return err
	})
	if err := g.Wait(); err != nil {
		s.fail(w, r, log.OpList, err)
		return
	}

	page.Prev = page.Month.Prev()
	page.Next = page.Month.Next()
	s.render(w, r, http.StatusOK, "index.html", page)
}

func (s *Server) handleAdd(w http.ResponseWriter, r *http.Request) {
	logger := log.FromContext(r.Context()).WithComponent(log.ComponentHandler)
	if err := r.ParseForm(); err != nil {
		s.renderError(w, r, http.StatusBadRequest, "Malformed form submission.")
		return
	}

	submitted := formFromRequest(r.PostForm)
	t, err := submitted.toTransaction(s.today())
	if err == nil {
		t.ID, err = s.store.Add(r.Context(), t)
	}
	if err != nil {
		if !core.IsValidation(err) {
			s.fail(w, r, log.OpCreate, err)
			return
		}
		// Re-render the month the form was posted from, keeping the input.
		ym, perr := ParseMonthParams(r.PostForm, s.now())
		if perr != nil {
			ym = core.CurrentMonth(s.now())
		}
		logger.InfoContext(r.Context(), "Transaction rejected",
			log.FieldOperation, log.OpValidate,
			log.FieldError, err)

		form := s.addForm(ym)
		form.Type, form.Amount, form.Description, form.Date =
			submitted.Type, submitted.Amount, submitted.Description, submitted.Date
		s.renderMonth(w, r, indexPage{Month: ym, Form: form, Error: validationMessage(err)})
		return
	}

	logger.InfoContext(r.Context(), "Transaction created",
		log.NewFields().WithTransaction(t.ID, t.Kind.String(), t.Amount.Cents, t.Date.String()).ToSlice()...)
	setFlash(w, "Added "+t.Kind.String()+" of "+t.Amount.String()+".")
	http.Redirect(w, r, monthURL(t.Date.YearMonth()), http.StatusFound)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		s.fail(w, r, log.OpDelete, err)
		return
	}
	if err := r.ParseForm(); err != nil {
		s.renderError(w, r, http.StatusBadRequest, "Malformed form submission.")
		return
	}

	if err := s.store.Delete(r.Context(), id); err != nil {
		s.fail(w, r, log.OpDelete, err)
		return
	}
	log.FromContext(r.Context()).WithComponent(log.ComponentHandler).InfoContext(r.Context(), "Transaction deleted",
		log.FieldTxID, id)

	target := "/"
	if ym, ok := redirectMonth(r, s.now()); ok {
		target = monthURL(ym)
	}
	setFlash(w, "Transaction deleted.")
	http.Redirect(w, r, target, http.StatusFound)
}

func editForm(id int64) formValues {
	return formValues{Action: "/edit/" + strconv.FormatInt(id, 10), Submit: "Save"}
}

func (s *Server) handleEditForm(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		s.fail(w, r, log.OpRead, err)
		return
	}
	t, err := s.store.Get(r.Context(), id)
	if err != nil {
		s.fail(w, r, log.OpRead, err)
		return
	}

	form := formFromTransaction(t)
	base := editForm(id)
	form.Action, form.Submit = base.Action, base.Submit
	s.render(w, r, http.StatusOK, "edit.html", editPage{ID: id, Form: form, Back: t.Date.YearMonth()})
}

func (s *Server) handleEdit(w http.ResponseWriter, r *http.Request) {
	logger := log.FromContext(r.Context()).WithComponent(log.ComponentHandler)
	id, err := parseID(r)
	if err != nil {
		s.fail(w, r, log.OpUpdate, err)
		return
	}
	current, err := s.store.Get(r.Context(), id)
	if err != nil {
		s.fail(w, r, log.OpUpdate, err)
		return
	}
	if err := r.ParseForm(); err != nil {
		s.renderError(w, r, http.StatusBadRequest, "Malformed form submission.")
		return
	}

	submitted := formFromRequest(r.PostForm)
	t, err := submitted.toTransaction(current.Date)
	if err == nil {
		t.ID = id
		err = s.store.Update(r.Context(), t)
	}
	if err != nil {
		if !core.IsValidation(err) {
			s.fail(w, r, log.OpUpdate, err)
			return
		}
		base := editForm(id)
		submitted.Action, submitted.Submit = base.Action, base.Submit
		s.render(w, r, http.StatusOK, "edit.html", editPage{
			ID:    id,
			Form:  submitted,
			Back:  current.Date.YearMonth(),
			Error: validationMessage(err),
		})
		return
	}

	logger.InfoContext(r.Context(), "Transaction updated",
		log.NewFields().WithTransaction(t.ID, t.Kind.String(), t.Amount.Cents, t.Date.String()).ToSlice()...)
	setFlash(w, "Transaction updated.")
	http.Redirect(w, r, monthURL(t.Date.YearMonth()), http.StatusFound)
}
