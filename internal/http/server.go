package http

import (
	"context"
	"html/template"
	"io/fs"
	"net/http"
	"sync"
	"time"

	applog "salesdash/internal/log"
	"salesdash/internal/middleware/cors"
	"salesdash/internal/middleware/ratelimit"
	"salesdash/internal/middleware/security"
	"salesdash/internal/middleware/trace"
	"salesdash/internal/services"
	appweb "salesdash/web"
)

// Options configures the HTTP layer
type Options struct {
	Logger         *applog.Logger
	AllowedOrigins []string
	// InitRateLimit is the number of /initialize calls allowed per client per minute
	InitRateLimit int
	// TrustedProxies are CIDRs, beyond the private ranges, allowed to set
	// the client address through forwarding headers
	TrustedProxies []string
}

type Server struct {
	http.Server
	analytics   *services.AnalyticsService
	templates   *template.Template
	logger      *applog.Logger
	initLimiter *ratelimit.Limiter
	detector    *security.Detector
	trace       *trace.Middleware
	started     time.Time

	shutdownOnce sync.Once
}

// NewServer configures routes, middleware and templates, returning a
// ready-to-run server.
func NewServer(addr string, analytics *services.AnalyticsService, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	logger = logger.WithComponent(applog.ComponentHTTP)

	mux := http.NewServeMux()
	s := &Server{
		Server: http.Server{
			Addr:              addr,
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      60 * time.Second,
			IdleTimeout:       120 * time.Second,
		},
		analytics: analytics,
		logger:    logger,
		initLimiter: ratelimit.NewLimiter(ratelimit.Config{
			RequestsPerWindow: opts.InitRateLimit,
			Window:            time.Minute,
		}),
		detector: security.NewDetector(),
		started:  time.Now(),
	}
	for _, cidr := range opts.TrustedProxies {
		if err := s.detector.AddTrustedProxy(cidr); err != nil {
			logger.Warn("Ignoring trusted proxy", applog.FieldError, err,
				applog.FieldErrorType, applog.ErrorTypeConfiguration)
		}
	}
	s.trace = trace.NewMiddleware(logger, s.detector.ExtractClientIP)

	t, err := parseTemplates()
	if err != nil {
		logger.Warn("Failed parsing templates", applog.FieldError, err,
			applog.FieldErrorType, applog.ErrorTypeConfiguration)
	}
	s.templates = t

	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		mux.Handle("/static/", security.StaticAssetMiddleware(3600)(static))
	} else {
		logger.Warn("Failed to mount embedded static FS", applog.FieldError, err)
	}

	// JSON endpoints are served at the root and again under /api
	api := []struct {
		path    string
		handler http.HandlerFunc
	}{
		{"/initialize", s.rateLimitInit(s.handleInitialize)},
		{"/transactions", s.handleTransactions},
		{"/statistics", s.handleStatistics},
		{"/bar-chart", s.handleBarChart},
		{"/pie-chart", s.handlePieChart},
		{"/combined-data", s.handleCombined},
	}
	for _, route := range api {
		h := getOnly(route.handler)
		mux.Handle(route.path, h)
		mux.Handle("/api"+route.path, h)
	}

	mux.Handle("/healthz", getOnly(s.handleHealth))
	mux.Handle("/readyz", getOnly(s.handleReady))
	mux.Handle("/{$}", getOnly(s.handleDashboard))
	mux.Handle("/dashboard", getOnly(s.handleDashboard))
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		writeJSONError(w, http.StatusNotFound, "Not found")
	})

	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())
	corsMiddleware := cors.NewMiddleware(cors.Config{AllowedOrigins: opts.AllowedOrigins})

	var h http.Handler = mux
	h = headers.Middleware(h)
	h = corsMiddleware.Middleware(h)
	h = s.flagSuspicious(h)
	h = s.trace.Middleware(h)
	s.Handler = h

	return s
}

func parseTemplates() (*template.Template, error) {
	return template.New("").Funcs(templateFuncs).ParseFS(appweb.TemplatesFS, "templates/*.html")
}

// getOnly rejects every method other than GET with a JSON 405
func getOnly(next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.Header().Set("Allow", http.MethodGet)
			writeJSONError(w, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}
		next(w, r)
	})
}

// rateLimitInit bounds how often one client can reload the dataset
func (s *Server) rateLimitInit(next http.HandlerFunc) http.HandlerFunc {
	limited := s.initLimiter.Middleware(s.detector.ExtractClientIP, func(w http.ResponseWriter, r *http.Request) {
		applog.FromContext(r.Context()).WithComponent(applog.ComponentRateLimit).WarnContext(r.Context(),
			"Rate limit exceeded",
			applog.FieldClientIP, s.detector.ExtractClientIP(r),
			applog.FieldPath, r.URL.Path)
		writeJSONError(w, http.StatusTooManyRequests, "Rate limit exceeded. Please try again later.")
	})(next)
	return limited.ServeHTTP
}

// flagSuspicious logs requests that look like probes; they are still served
func (s *Server) flagSuspicious(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.detector.DetectSuspiciousRequest(r) {
			applog.FromContext(r.Context()).WarnContext(r.Context(), "Suspicious request",
				applog.FieldClientIP, s.detector.ExtractClientIP(r),
				applog.FieldMethod, r.Method,
				applog.FieldPath, r.URL.Path)
		}
		next.ServeHTTP(w, r)
	})
}

// Shutdown stops background goroutines and gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.initLimiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}
