package web

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"fintrack/internal/api"
	"fintrack/internal/core"
	"fintrack/internal/events"
	applog "fintrack/internal/log"
	"fintrack/internal/session"
	"fintrack/internal/sheets"
	"fintrack/internal/views"
	appweb "fintrack/web"
)

type Server struct {
	http.Server
	templates *template.Template

	client *api.Client
	store  session.Store
	router *views.Router
	symbol string

	// Optional outbound adapters. Both are nil-safe.
	publisher *events.Publisher
	appender  sheets.TransactionAppender

	rateLimiter  *rateLimiter
	structured   *applog.StructuredLogger
	shutdownOnce sync.Once
}

// Deps carries everything the server needs. Publisher and Appender are
// optional.
type Deps struct {
	Client         *api.Client
	Store          session.Store
	Publisher      *events.Publisher
	Appender       sheets.TransactionAppender
	CurrencySymbol string
	Logger         *applog.Logger
}

// Simple in-memory rate limiter
type rateLimiter struct {
	mu           sync.Mutex
	clients      map[string]*clientInfo
	stopCleanup  chan struct{}
	shutdownOnce sync.Once
}

type clientInfo struct {
	lastRequest time.Time
	requests    int
}

func newRateLimiter() *rateLimiter {
	rl := &rateLimiter{
		clients:     make(map[string]*clientInfo),
		stopCleanup: make(chan struct{}),
	}
	go rl.startCleanup()
	return rl
}

// startCleanup runs periodic cleanup to remove stale client entries
func (rl *rateLimiter) startCleanup() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.cleanupStaleEntries()
		case <-rl.stopCleanup:
			return
		}
	}
}

// cleanupStaleEntries removes client entries older than 10 minutes
func (rl *rateLimiter) cleanupStaleEntries() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cutoff := time.Now().Add(-10 * time.Minute)
	for ip, client := range rl.clients {
		if client.lastRequest.Before(cutoff) {
			delete(rl.clients, ip)
		}
	}
}

func (rl *rateLimiter) stop() {
	rl.shutdownOnce.Do(func() {
		if rl.stopCleanup != nil {
			close(rl.stopCleanup)
		}
	})
}

func (rl *rateLimiter) allow(clientIP string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	client, exists := rl.clients[clientIP]

	if !exists {
		rl.clients[clientIP] = &clientInfo{
			lastRequest: now,
			requests:    1,
		}
		return true
	}

	// Reset counter if more than 1 minute has passed
	if now.Sub(client.lastRequest) > time.Minute {
		client.requests = 1
		client.lastRequest = now
		return true
	}

	// Allow up to 60 requests per minute
	client.requests++
	client.lastRequest = now

	return client.requests <= 60
}

// NewServer configures routes and templates, returning a ready-to-run http.Server.
func NewServer(addr string, deps Deps) *Server {
	mux := http.NewServeMux()

	logger := deps.Logger
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}

	s := &Server{
		Server: http.Server{
			Addr:    addr,
			Handler: mux,
		},
		client:      deps.Client,
		store:       deps.Store,
		router:      views.NewRouter(deps.Client, deps.CurrencySymbol),
		symbol:      deps.CurrencySymbol,
		publisher:   deps.Publisher,
		appender:    deps.Appender,
		rateLimiter: newRateLimiter(),
		structured:  applog.NewStructuredLogger(logger.WithComponent(applog.ComponentHTTP)),
	}

	// Parse embedded templates at startup.
	t, err := template.ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		slog.Warn("Failed parsing templates", "error", err)
	}
	s.templates = t

	// Static assets (served from embedded FS)
	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		mux.Handle("/static/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Tiny cache for static assets
			w.Header().Set("Cache-Control", "public, max-age=3600, immutable")
			static.ServeHTTP(w, r)
		}))
	} else {
		slog.Warn("Failed to mount embedded static FS", "error", err)
	}

	mux.HandleFunc("/healthz", handleHealth)
	mux.HandleFunc("/readyz", s.handleReady)

	mux.HandleFunc("/login", s.withSecurityHeaders(s.handleLogin))
	mux.HandleFunc("/register", s.withSecurityHeaders(s.handleRegister))
	mux.HandleFunc("/forgot-password", s.withSecurityHeaders(s.handleForgotPassword))
	mux.HandleFunc("/logout", s.withSecurityHeaders(s.handleLogout))

	mux.HandleFunc("/", s.withSecurityHeaders(s.requireSession(s.handleIndex)))
	mux.HandleFunc("/views/", s.withSecurityHeaders(s.requireSession(s.handleView)))

	mux.HandleFunc("/transactions", s.withSecurityHeaders(s.requireSession(s.handleCreateTransaction)))
	mux.HandleFunc("/transactions/edit", s.withSecurityHeaders(s.requireSession(s.handleEditTransaction)))
	mux.HandleFunc("/transactions/delete/confirm", s.withSecurityHeaders(s.requireSession(s.handleConfirmDelete)))
	mux.HandleFunc("/transactions/delete", s.withSecurityHeaders(s.requireSession(s.handleDeleteTransaction)))
	mux.HandleFunc("/transactions/export", s.withSecurityHeaders(s.requireSession(s.handleExport)))
	mux.HandleFunc("/transactions/export/sheets", s.withSecurityHeaders(s.requireSession(s.handleExportSheets)))

	mux.HandleFunc("/profile", s.withSecurityHeaders(s.requireSession(s.handleUpdateProfile)))

	return s
}

// Shutdown gracefully shuts down the server and cleanup routines
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		if s.rateLimiter != nil {
			s.rateLimiter.stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})

	return shutdownErr
}

func isMutating(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodPatch:
		return true
	}
	return false
}

// withSecurityHeaders adds security headers, rate limiting, and request logging to responses
func (s *Server) withSecurityHeaders(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// Extract client IP (considering proxies)
		clientIP := r.Header.Get("X-Forwarded-For")
		if clientIP == "" {
			clientIP = r.Header.Get("X-Real-IP")
		}
		if clientIP == "" {
			clientIP = r.RemoteAddr
		}

		// Generate request ID for tracing
		requestID := generateRequestID()

		ctx := context.WithValue(r.Context(), applog.ContextKey(applog.FieldRequestID), requestID)
		r = r.WithContext(ctx)

		s.structured.LogHTTPStart(ctx, r, clientIP)

		// Rate limit mutating requests only; reads stay cheap.
		if isMutating(r.Method) && !s.rateLimiter.allow(clientIP) {
			slog.WarnContext(ctx, "Rate limit exceeded", "client_ip", clientIP, "method", r.Method, "url", r.URL.Path)
			w.Header().Set("Retry-After", "60")
			http.Error(w, "Rate limit exceeded. Please try again later.", http.StatusTooManyRequests)
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("X-XSS-Protection", "1; mode=block")
		w.Header().Set("Content-Security-Policy", "default-src 'self'; script-src 'self' https://unpkg.com 'unsafe-eval'; style-src 'self' 'unsafe-inline'; img-src 'self' data:; connect-src 'self'")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		// Create a custom response writer to capture status code
		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		duration := time.Since(start)
		s.structured.LogHTTPEnd(ctx, r, rw.statusCode, duration.Milliseconds(), clientIP)
	}
}

// requireSession guards app routes. Browsers get a redirect to the login
// page; htmx requests get an HX-Redirect so the whole page navigates.
func (s *Server) requireSession(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, err := s.store.Current(r.Context())
		if err != nil {
			if !errors.Is(err, session.ErrNotAuthenticated) {
				slog.ErrorContext(r.Context(), "Session lookup failed", "error", err)
			}
			s.redirectToLogin(w, r, false)
			return
		}
		ctx := context.WithValue(r.Context(), sessionContextKey, sess)
		next(w, r.WithContext(ctx))
	}
}

type contextKey string

const sessionContextKey contextKey = "session"

// sessionFrom returns the session placed in the context by requireSession.
func sessionFrom(ctx context.Context) core.Session {
	sess, _ := ctx.Value(sessionContextKey).(core.Session)
	return sess
}

// redirectToLogin sends the caller to the login page, via HX-Redirect for
// htmx requests and a plain 303 otherwise.
func (s *Server) redirectToLogin(w http.ResponseWriter, r *http.Request, expired bool) {
	target := "/login"
	if expired {
		target = "/login?expired=1"
	}
	if r.Header.Get("HX-Request") == "true" {
		NewHTMXResponse().Redirect(target).Write(w)
		return
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// handleAPIError maps client errors to responses. Session expiry always
// results in exactly one redirect; everything else surfaces as a
// notification banner.
func (s *Server) handleAPIError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, api.ErrSessionExpired) {
		s.redirectToLogin(w, r, true)
		return
	}

	var apiErr *api.APIError
	switch {
	case errors.As(err, &apiErr):
		slog.WarnContext(r.Context(), "Backend rejected request", "status", apiErr.Status, "message", apiErr.Message)
		NewHTMXResponse().
			Status(http.StatusUnprocessableEntity).
			TriggerErrorNotification(apiErr.Message).
			Write(w)
	case errors.Is(err, api.ErrNetwork):
		slog.ErrorContext(r.Context(), "Backend unreachable", "error", err)
		NewHTMXResponse().
			Status(http.StatusBadGateway).
			TriggerErrorNotification("Could not reach the server. Please try again.").
			Write(w)
	default:
		slog.ErrorContext(r.Context(), "Unexpected error", "error", err)
		NewHTMXResponse().
			Status(http.StatusInternalServerError).
			TriggerErrorNotification("Something went wrong.").
			Write(w)
	}
}

// responseWriter wraps http.ResponseWriter to capture the status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// generateRequestID creates a unique request ID for tracing
func generateRequestID() string {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		// Fallback to timestamp if random fails
		return fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	return "req_" + hex.EncodeToString(bytes)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.templates == nil {
		http.Error(w, "templates not loaded", http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, name string, data any) {
	s.renderStatus(w, r, http.StatusOK, name, data)
}

func (s *Server) renderStatus(w http.ResponseWriter, r *http.Request, status int, name string, data any) {
	if s.templates == nil {
		slog.ErrorContext(r.Context(), "Templates not loaded", "url", r.URL.Path)
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if status != http.StatusOK {
		w.WriteHeader(status)
	}
	if err := s.templates.ExecuteTemplate(w, name, data); err != nil {
		slog.ErrorContext(r.Context(), "Template execution failed", "error", err, "template", name)
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
