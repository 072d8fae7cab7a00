package http

import (
	"context"
	"html/template"
	"io/fs"
	"net/http"
	"time"

	"bilancio/internal/core"
	"bilancio/internal/log"
	"bilancio/internal/middleware/security"
	"bilancio/internal/middleware/trace"
	appweb "bilancio/web"
)

// TransactionStore is the persistence the handlers depend on.
type TransactionStore interface {
	Add(ctx context.Context, t core.Transaction) (int64, error)
	Update(ctx context.Context, t core.Transaction) error
	Delete(ctx context.Context, id int64) error
	Get(ctx context.Context, id int64) (core.Transaction, error)
	ListForMonth(ctx context.Context, ym core.YearMonth) ([]core.Transaction, error)
	TotalsForMonth(ctx context.Context, ym core.YearMonth) (core.MonthTotals, error)
	Ping(ctx context.Context) error
}

type Server struct {
	http.Server
	store  TransactionStore
	pages  map[string]*template.Template
	logger *log.Logger
	now    func() time.Time
}

// Option configures a Server.
type Option func(*Server)

// WithClock overrides the clock used for the default month and date.
func WithClock(now func() time.Time) Option {
	return func(s *Server) { s.now = now }
}

// WithLogger sets the logger placed in every request context.
func WithLogger(logger *log.Logger) Option {
	return func(s *Server) { s.logger = logger }
}

// pageNames are the templates rendered as full pages inside layout.html.
var pageNames = []string{"index.html", "edit.html", "error.html"}

// NewServer configures routes and templates, returning a ready-to-run http.Server.
func NewServer(addr string, store TransactionStore, opts ...Option) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:              addr,
			ReadTimeout:       10 * time.Second,
			ReadHeaderTimeout: 5 * time.Second,
			WriteTimeout:      10 * time.Second,
			IdleTimeout:       60 * time.Second,
			MaxHeaderBytes:    1 << 16,
		},
		store:  store,
		logger: log.New(log.DefaultConfig()).WithComponent(log.ComponentHTTP),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	pages, err := parsePages(appweb.TemplatesFS)
	if err != nil {
		s.logger.Error("Failed parsing templates", log.FieldError, err)
	}
	s.pages = pages

	// Static assets (served from embedded FS)
	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		mux.Handle("GET /static/", security.StaticAssetMiddleware(3600)(static))
	} else {
		s.logger.Error("Failed to mount embedded static FS", log.FieldError, err)
	}

	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("POST /add", s.handleAdd)
	mux.HandleFunc("POST /delete/{id}", s.handleDelete)
	mux.HandleFunc("GET /edit/{id}", s.handleEditForm)
	mux.HandleFunc("POST /edit/{id}", s.handleEdit)
	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.HandleFunc("/", s.handleNotFound)

	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())
	tracer := trace.NewMiddleware(security.ClientIP)

	var h http.Handler = headers.Middleware(mux)
	h = log.RequestIDMiddleware(trace.RequestID)(h)
	h = tracer.Middleware(h)
	h = log.Middleware(s.logger)(h)
	s.Handler = h

	return s
}

func parsePages(fsys fs.FS) (map[string]*template.Template, error) {
	funcs := template.FuncMap{
		"money":    func(m core.Money) string { return m.String() },
		"monthURL": monthURL,
	}
	pages := make(map[string]*template.Template, len(pageNames))
	for _, name := range pageNames {
		t, err := template.New(name).Funcs(funcs).ParseFS(fsys,
			"templates/layout.html", "templates/form.html", "templates/"+name)
		if err != nil {
			return nil, err
		}
		pages[name] = t
	}
	return pages, nil
}
