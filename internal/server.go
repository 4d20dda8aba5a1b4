package internal

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"hardware-management-api/internal/auth"
	"hardware-management-api/internal/config"
	"hardware-management-api/internal/handlers"
	"hardware-management-api/internal/logger"
	"hardware-management-api/internal/models"
	"hardware-management-api/internal/notify"
	"hardware-management-api/internal/store"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

//go:embed openapi
var openapiFS embed.FS

type Server struct {
	Store      store.Store
	Router     *chi.Mux
	JWTManager *auth.JWTManager
	Revoked    *auth.RevocationList
	Directory  auth.Directory
	Notifier   notify.Notifier
	Metrics    *Metrics
	Logger     *zap.Logger
	Config     *config.Config

	loginLimiter  *ipLimiter
	now           func() time.Time
	notifyTimeout time.Duration
	notifying     sync.WaitGroup
}

// defaultNotifyTimeout bounds one event delivery, retries included
const defaultNotifyTimeout = 15 * time.Second

// NewServer wires the router around st. The credential directory is the
// users file when one is configured, otherwise the demo directory.
func NewServer(cfg *config.Config, st store.Store, log *zap.Logger) (*Server, error) {
	if log == nil {
		log = zap.NewNop()
	}

	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTAudience, cfg.JWTExpiry)
	if err := jwtManager.ValidateConfig(); err != nil {
		return nil, fmt.Errorf("JWT configuration validation failed: %w", err)
	}

	var dir auth.Directory
	switch {
	case cfg.UsersFile != "":
		fd, err := auth.LoadUsersFile(cfg.UsersFile)
		if err != nil {
			return nil, err
		}
		log.Info("loaded users file", zap.String("path", cfg.UsersFile), zap.Int("users", fd.Len()))
		dir = fd
	case cfg.DemoMode:
		log.Warn("demo mode: any password is accepted and roles come from the email")
		dir = auth.DemoDirectory{}
	default:
		return nil, errors.New("no credential directory: set USERS_FILE or DEMO_MODE")
	}

	s := &Server{
		Store:         st,
		Router:        chi.NewRouter(),
		JWTManager:    jwtManager,
		Revoked:       auth.NewRevocationList(),
		Directory:     dir,
		Notifier:      notify.New(cfg.NotifyWebhookURL, logger.Named(log, "notify")),
		Metrics:       NewMetrics(),
		Logger:        log,
		Config:        cfg,
		loginLimiter:  newIPLimiter(cfg.LoginRatePerMinute),
		now:           time.Now,
		notifyTimeout: defaultNotifyTimeout,
	}
	s.routes()
	return s, nil
}

func (s *Server) routes() {
	r := s.Router
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(securityHeaders)
	r.Use(requestLogger(logger.Named(s.Logger, "http")))

	if s.Config.EnableMetrics {
		r.Use(s.Metrics.Middleware())
		r.Get("/metrics", s.Metrics.Handler().ServeHTTP)
	}

	// Public routes
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		if _, err := w.Write([]byte("ok")); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	})
	r.Get("/ready", s.ready)
	r.With(s.loginLimiter.Middleware).Post("/auth/login", s.loginUser)
	s.mountDocs(r)

	r.Group(func(r chi.Router) {
		r.Use(auth.AuthMiddleware(s.JWTManager, s.Revoked))
		s.mountProtectedRoutes(r)
		// unknown paths sit behind the session check too
		r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
			writeError(w, http.StatusNotFound, "NOT_FOUND", "resource not found")
		})
	})
}

// Flush waits for pending notifications or until ctx is done
func (s *Server) Flush(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.notifying.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("pending notifications: %w", ctx.Err())
	}
}

// Close drains pending notifications, then releases the notifier and the
// store when they hold resources
func (s *Server) Close(ctx context.Context) error {
	flushErr := s.Flush(ctx)
	if c, ok := s.Notifier.(io.Closer); ok {
		_ = c.Close()
	}
	if c, ok := s.Store.(io.Closer); ok {
		if err := c.Close(); err != nil {
			return err
		}
	}
	return flushErr
}

type pinger interface {
	Ping(ctx context.Context) error
}

// ready reports whether the store answers
func (s *Server) ready(w http.ResponseWriter, r *http.Request) {
	if p, ok := s.Store.(pinger); ok {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := p.Ping(ctx); err != nil {
			s.Logger.Warn("readiness check failed", zap.Error(err))
			writeError(w, http.StatusServiceUnavailable, "NOT_READY", "database unavailable")
			return
		}
	}
	if _, err := w.Write([]byte("ready")); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// mountDocs serves the OpenAPI spec and Swagger UI
func (s *Server) mountDocs(r chi.Router) {
	if !s.Config.EnableSwagger {
		return
	}

	r.Get("/openapi.yaml", func(w http.ResponseWriter, _ *http.Request) {
		data, err := openapiFS.ReadFile("openapi/openapi.yaml")
		if err != nil {
			http.Error(w, "Failed to read OpenAPI spec", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/x-yaml")
		if _, err := w.Write(data); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	})

	r.Get("/docs", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`<!doctype html>
<html lang="en">
<head>
    <meta charset="utf-8">
    <meta name="viewport" content="width=device-width, initial-scale=1">
    <title>Hardware Management API - Documentation</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5.9.0/swagger-ui.css">
    <style>
        body { margin: 0; background: #f7f7f7; }
        .swagger-ui .topbar { display: none; }
    </style>
</head>
<body>
    <div id="swagger-ui"></div>
    <script src="https://unpkg.com/swagger-ui-dist@5.9.0/swagger-ui-bundle.js"></script>
    <script>
        window.onload = function() {
            window.ui = SwaggerUIBundle({
                url: '/openapi.yaml',
                dom_id: '#swagger-ui',
                deepLinking: true,
                tryItOutEnabled: true
            });
        };
    </script>
</body>
</html>`))
	})
}

// mountProtectedRoutes mounts all routes that require a session
func (s *Server) mountProtectedRoutes(r chi.Router) {
	adminOnly := auth.MustRole(models.RoleAdmin)
	hrOnly := auth.MustRole(models.RoleHR)

	// Session
	r.Post("/auth/logout", s.logoutUser)
	r.Get("/auth/session", s.getSession)
	r.Get("/navigation", s.getNavigation)
	r.Get("/navigation/resolve", s.resolveNavigation)

	r.Get("/dashboard", s.getDashboard)

	// Assets
	r.Get("/assets", s.listAssets)
	r.Get("/assets/filters", s.assetFilters)
	r.With(adminOnly).Post("/assets", s.createAsset)
	r.Route("/assets/{id}", func(r chi.Router) {
		r.Get("/", s.getAsset)
		r.With(adminOnly).Put("/", s.updateAsset)
		r.With(adminOnly).Delete("/", s.deleteAsset)
		r.Get("/qr.png", s.assetQR)
		r.Post("/issues", s.reportIssue)

		r.Get("/maintenance", s.listMaintenance)
		r.With(auth.Staff).Post("/maintenance", s.logMaintenance)

		r.With(auth.Staff).Post("/issue", s.issueAsset)
		r.With(auth.Staff).Post("/return", s.returnAsset)
		r.Get("/assignments", s.listAssignments)
		r.With(auth.Staff).Get("/assignments/{assignmentID}/handover.xlsx", s.handoverDocument)
	})
	r.Get("/maintenance/{id}", s.listMaintenance)

	// Requests
	r.Get("/requests/form", s.requestForm)
	r.Get("/requests/mine", s.myRequests)
	r.Post("/requests", s.createRequest)
	r.With(auth.Staff).Get("/requests", s.listRequests)
	r.Get("/requests/{id}", s.getRequest)
	r.With(auth.Staff).Post("/requests/{id}/approve", s.approveRequest)
	r.With(auth.Staff).Post("/requests/{id}/reject", s.rejectRequest)
	r.With(hrOnly).Get("/onboarding", s.onboarding)

	// Excel import
	importsHandler := handlers.NewImportsHandler(s.Store, logger.Named(s.Logger, "imports"))
	r.With(adminOnly).Post("/imports/excel", importsHandler.UploadExcel)
}

// record appends to the activity feed. Failures are logged, not returned.
func (s *Server) record(ctx context.Context, typ models.ActivityType, message, actor string) {
	_, err := s.Store.AddActivity(ctx, models.Activity{
		Type:      typ,
		Message:   message,
		Actor:     actor,
		CreatedAt: s.now(),
	})
	if err != nil {
		s.Logger.Warn("failed to record activity", zap.String("type", string(typ)), zap.Error(err))
	}
}

// notify sends a workflow event in the background, bounded by
// notifyTimeout. Failures are logged, not returned.
func (s *Server) notify(ctx context.Context, e notify.Event) {
	if e.Timestamp.IsZero() {
		e.Timestamp = s.now().UTC()
	}
	e.Message = notify.Truncate(e.Message)

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.notifyTimeout)
	s.notifying.Add(1)
	go func() {
		defer s.notifying.Done()
		defer cancel()
		if err := s.Notifier.Notify(ctx, e); err != nil {
			s.Logger.Warn("notification failed", zap.String("type", string(e.Type)), zap.Error(err))
		}
	}()
}

// assetLink is the client URL of an asset detail page
func (s *Server) assetLink(id int64) string {
	return fmt.Sprintf("%s/assets/%d", s.Config.PublicBaseURL, id)
}
