package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/staffdir/apiserver/config"
	"github.com/staffdir/apiserver/internal/db"
	"github.com/staffdir/apiserver/internal/events"
	"github.com/staffdir/apiserver/internal/handlers"
	"github.com/staffdir/apiserver/internal/services"
	"github.com/staffdir/apiserver/internal/storage"
	"github.com/staffdir/apiserver/internal/store"
)

// Server wraps the HTTP server and router.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	db         *sql.DB
	publisher  *events.Publisher
}

// New constructs a Server with basic middleware and defaults, seeds
// the initial admin account, and makes sure the asset backend is
// ready.
func New(ctx context.Context, cfg config.Config) (*Server, error) {
	if strings.TrimSpace(cfg.Auth.JWTSecret) == "" {
		return nil, errors.New("JWT_SECRET is required")
	}

	dbConn, err := db.Open(ctx, cfg)
	if err != nil {
		return nil, err
	}

	contactRepo := store.NewContactRepository(dbConn)
	adminRepo := store.NewAdminRepository(dbConn)

	adminService := services.NewAdminService(adminRepo, nil)
	if err := adminService.EnsureDefaultAdmin(ctx, cfg.Auth.AdminUsername, cfg.Auth.AdminPassword); err != nil {
		_ = dbConn.Close()
		return nil, fmt.Errorf("seed admin account: %w", err)
	}

	backend, err := newStorageBackend(ctx, cfg.Storage)
	if err != nil {
		_ = dbConn.Close()
		return nil, err
	}
	assetStorage := storage.NewStorage(backend)
	if err := assetStorage.Ensure(ctx); err != nil {
		_ = dbConn.Close()
		return nil, fmt.Errorf("prepare asset storage: %w", err)
	}
	assetStore := services.NewAssetStore(assetStorage, nil)

	publisher, err := newEventsPublisher(ctx, cfg.Events)
	if err != nil {
		_ = dbConn.Close()
		return nil, err
	}

	contactService := services.NewContactService(contactRepo, assetStore, publisher, nil)

	authMiddleware := handlers.RequireAuth(cfg.Auth.JWTSecret)

	router := chi.NewRouter()
	router.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Recoverer,
		middleware.Logger,
		middleware.Timeout(60*time.Second),
	)
	router.Get("/healthz", handlers.Healthz)
	router.Route("/api", func(r chi.Router) {
		handlers.AuthRouter(r, adminService, cfg.Auth.JWTSecret)
		r.Route("/contacts", func(r chi.Router) {
			handlers.ContactRouter(r, contactService, adminService, authMiddleware)
		})
	})
	router.Route("/uploads", func(r chi.Router) {
		handlers.UploadsRouter(r, assetStore)
	})

	port := cfg.ServerPort
	if port == 0 {
		port = 8080
	}

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &Server{
		httpServer: httpServer,
		router:     router,
		db:         dbConn,
		publisher:  publisher,
	}, nil
}

// Router exposes the chi router for route registration.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// Start runs the HTTP server.
func (s *Server) Start() error {
	return s.httpServer.ListenAndServe()
}

// Shutdown attempts a graceful shutdown.
func (s *Server) Shutdown() error {
	if s.publisher != nil {
		_ = s.publisher.Close()
	}
	if s.db != nil {
		_ = s.db.Close()
	}
	return s.httpServer.Close()
}

func newStorageBackend(ctx context.Context, cfg config.StorageConfig) (storage.ObjectStorage, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Backend)) {
	case "", "local":
		return storage.NewLocalStorage(cfg.UploadsDir)
	case "minio":
		return storage.NewMinioStorage(cfg.Minio)
	case "gcs":
		return storage.NewGCSStorage(ctx, cfg.GCS)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}

func newEventsPublisher(ctx context.Context, cfg config.EventsConfig) (*events.Publisher, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Backend)) {
	case "", "none":
		return nil, nil
	case "rabbitmq":
		backend, err := events.NewRabbitMQBackend(cfg.RabbitMQ)
		if err != nil {
			return nil, err
		}
		return events.NewPublisher(backend, cfg.Channel), nil
	case "pubsub":
		backend, err := events.NewPubSubBackend(ctx, cfg.PubSub)
		if err != nil {
			return nil, err
		}
		return events.NewPublisher(backend, cfg.Channel), nil
	default:
		return nil, fmt.Errorf("unknown events backend %q", cfg.Backend)
	}
}
