// Package server assembles the route table and the middleware chain.
package server

import (
	"log/slog"
	"net/http"

	"github.com/diewo77/crm-documents/auth"
	"github.com/diewo77/crm-documents/httpx"
	"github.com/diewo77/crm-documents/internal/db"
	"github.com/diewo77/crm-documents/internal/email"
	"github.com/diewo77/crm-documents/internal/handlers"
	"github.com/diewo77/crm-documents/internal/logging"
	"github.com/diewo77/crm-documents/internal/metrics"
	"github.com/diewo77/crm-documents/internal/middleware"
	"github.com/diewo77/crm-documents/internal/services"
	"gorm.io/gorm"
)

// Options are the collaborators of the HTTP layer.
type Options struct {
	Settings services.Settings
	Sender   email.Sender
	MailFrom string
	Users    *auth.Directory
	Sessions *auth.Sessions
	Metrics  *metrics.Metrics
	Log      *slog.Logger
}

// New constructs the root http.Handler with all routes and middlewares applied.
func New(gdb *gorm.DB, opts Options) http.Handler {
	log := opts.Log
	if log == nil {
		log = logging.Discard()
	}
	settings := opts.Settings
	settings.Logger = log
	settings.Metrics = opts.Metrics
	sender := opts.Sender
	if sender == nil {
		sender = email.LogSender{Log: log}
	}

	mux := http.NewServeMux()

	// --- Health endpoints ---
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		if err := db.Ping(r.Context(), gdb); err != nil {
			httpx.JSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded"})
			return
		}
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if opts.Metrics != nil {
		mux.Handle("GET /metrics", opts.Metrics.Handler())
	}

	api := func(pattern string, h http.HandlerFunc) {
		mux.Handle(pattern, auth.RequireAuth(h))
	}

	// Auth endpoints
	ah := handlers.NewAuthHandler(opts.Users, opts.Sessions, log)
	mux.HandleFunc("POST /api/auth/login", ah.Login)
	mux.HandleFunc("POST /api/auth/logout", ah.Logout)
	mux.HandleFunc("GET /api/auth/session", ah.Session)

	// Proposals
	ph := handlers.NewProposalHandler(services.NewProposalService(gdb, settings), log)
	api("GET /api/proposals", ph.List)
	api("POST /api/proposals", ph.Create)
	api("GET /api/proposals/{id}", ph.Get)
	api("PUT /api/proposals/{id}", ph.Update)
	api("DELETE /api/proposals/{id}", ph.Delete)
	api("GET /api/proposals/{id}/pdf", ph.PDF)

	// Invoices
	ih := handlers.NewInvoiceHandler(services.NewInvoiceService(gdb, settings), log)
	api("GET /api/invoices", ih.List)
	api("POST /api/invoices", ih.Create)
	api("GET /api/invoices/revenue", ih.Revenue)
	api("GET /api/invoices/{id}", ih.Get)
	api("PUT /api/invoices/{id}", ih.Update)
	api("DELETE /api/invoices/{id}", ih.Delete)
	api("GET /api/invoices/{id}/pdf", ih.PDF)
	api("GET /api/proposals/{id}/invoice", ih.Import)

	// Emails
	eh := handlers.NewEmailHandler(services.NewEmailService(gdb, sender, opts.MailFrom, log, opts.Metrics), log)
	api("GET /api/emails/templates", eh.Templates)
	api("POST /api/emails/templates", eh.CreateTemplate)
	api("GET /api/emails/templates/{id}", eh.Template)
	api("PUT /api/emails/templates/{id}", eh.UpdateTemplate)
	api("DELETE /api/emails/templates/{id}", eh.DeleteTemplate)
	api("POST /api/emails/send", eh.Send)
	api("GET /api/emails/logs", eh.Logs)

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
	})

	var h http.Handler = middleware.Metrics(opts.Metrics)(mux)
	h = opts.Sessions.Middleware(h)
	h = middleware.Prefs(h)
	h = withRecover(log, h)
	h = middleware.Logging(log)(h)
	return middleware.RequestID(h)
}

func withRecover(log *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				log.ErrorContext(r.Context(), "panic recovered", "path", r.URL.Path, "panic", rec)
				httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
			}
		}()
		next.ServeHTTP(w, r)
	})
}
