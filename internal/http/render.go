package http

import (
	"bytes"
	"errors"
	"net/http"

	"bilancio/internal/core"
	"bilancio/internal/log"
)

// errorPage is the data for error.html.
type errorPage struct {
	Status  int
	Title   string
	Message string
}

// render executes a page into a buffer first, so a template failure still
// produces a clean 500 instead of a half-written body.
func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, name string, data any) {
	logger := log.FromContext(r.Context()).WithComponent(log.ComponentTemplate)

	t, ok := s.pages[name]
	if !ok {
		logger.ErrorContext(r.Context(), "Templates not loaded",
			log.FieldTemplate, name,
			log.FieldErrorType, log.ErrorTypeConfiguration)
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", data); err != nil {
		logger.ErrorContext(r.Context(), "Template execution failed",
			log.FieldTemplate, name,
			log.FieldError, err,
			log.FieldErrorType, log.ErrorTypeInternal)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func (s *Server) renderError(w http.ResponseWriter, r *http.Request, status int, message string) {
	s.render(w, r, status, "error.html", errorPage{
		Status:  status,
		Title:   http.StatusText(status),
		Message: message,
	})
}

// fail maps err onto an error page: validation problems are 400, a missing
// transaction is 404, anything else is logged and reported as 500.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	logger := log.FromContext(r.Context()).WithComponent(log.ComponentHandler)

	var ve *core.ValidationError
	switch {
	case errors.As(err, &ve):
		logger.WarnContext(r.Context(), "Rejected request",
			log.FieldOperation, op,
			log.FieldError, err,
			log.FieldErrorType, log.ErrorTypeValidation)
		s.renderError(w, r, http.StatusBadRequest, validationMessage(err))
	case errors.Is(err, core.ErrNotFound):
		s.renderError(w, r, http.StatusNotFound, "That transaction does not exist.")
	default:
		errType := log.ErrorTypeInternal
		if core.IsStorage(err) {
			errType = log.ErrorTypeDatabase
		}
		logger.ErrorContext(r.Context(), "Request failed",
			log.FieldOperation, op,
			log.FieldError, err,
			log.FieldErrorType, errType)
		s.renderError(w, r, http.StatusInternalServerError, "Something went wrong. Please try again.")
	}
}

// validationMessage is the human-readable part of a ValidationError.
func validationMessage(err error) string {
	var ve *core.ValidationError
	if errors.As(err, &ve) && ve.Err != nil {
		return ve.Err.Error()
	}
	return err.Error()
}
