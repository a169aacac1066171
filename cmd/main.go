package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"github.com/ukydev/carbvium/internal/auth"
	"github.com/ukydev/carbvium/internal/config"
	"github.com/ukydev/carbvium/internal/db"
	"github.com/ukydev/carbvium/internal/events"
	"github.com/ukydev/carbvium/internal/handlers"
	"github.com/ukydev/carbvium/internal/middleware"
)

// server bundles the handlers the router mounts.
type server struct {
	cfg       *config.Config
	vehicles  *handlers.VehicleHandler
	accounts  *handlers.AuthHandler
	authMW    *middleware.AuthMiddleware
	rateLimit *middleware.RateLimitMiddleware
	health    handlers.HealthCheck
}

func (s *server) routes() http.Handler {
	mux := http.NewServeMux()

	public := func(h http.HandlerFunc) http.Handler { return s.authMW.Identify(h) }
	protected := func(h http.HandlerFunc) http.Handler { return s.authMW.Authenticate(h) }

	mux.HandleFunc("GET /{$}", handlers.Root)
	mux.Handle("GET /health", handlers.Health(s.health))
	mux.Handle("GET /metrics", promhttp.Handler())

	mux.Handle("GET /api/vehicles", public(s.vehicles.ListVehicles))
	mux.Handle("GET /api/vehicle/{uniqueId}", public(s.vehicles.GetVehicle))
	mux.Handle("GET /api/top15-carbon", public(s.vehicles.TopCarbon))
	mux.Handle("GET /api/top15-carbon/filtered", public(s.vehicles.FilteredTopCarbon))
	mux.Handle("GET /api/recommendation", public(s.vehicles.Recommendation))

	mux.HandleFunc("POST /api/auth/signup", s.accounts.Signup)
	mux.HandleFunc("POST /api/auth/login", s.accounts.Login)
	mux.HandleFunc("POST /api/auth/logout", s.accounts.Logout)
	mux.Handle("GET /api/auth/me", protected(s.accounts.Me))

	return middleware.Chain(mux,
		middleware.RequestID,
		middleware.Logging,
		middleware.CORS,
		s.rateLimit.RateLimit(s.cfg.RateLimitRequests, s.cfg.RateLimitWindow),
	)
}

func newPublisher(cfg *config.Config) events.Publisher {
	if cfg.MQTTBroker == "" {
		return events.NopPublisher{}
	}
	pub, err := events.NewMQTTPublisher(cfg.MQTTBroker, cfg.MQTTClientID, cfg.MQTTTopic)
	if err != nil {
		log.WithError(err).WithField("broker", cfg.MQTTBroker).Warn("Search events disabled")
		return events.NopPublisher{}
	}
	log.WithField("topic", cfg.MQTTTopic).Info("Publishing search events")
	return pub
}

func main() {
	cfg := config.Load()
	cfg.ConfigureLogging()

	client, err := db.ConnectMongo(cfg.MongoURI)
	if err != nil {
		log.WithError(err).Fatal("Failed to connect to MongoDB")
	}
	log.Info("Connected to MongoDB successfully!")
	database := client.Database(cfg.MongoDB)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := db.EnsureIndexes(ctx, database); err != nil {
		log.WithError(err).Warn("Failed to create indexes")
	}
	cancel()

	store := db.NewVehicleStore(&db.MongoVehicleCollection{Collection: database.Collection(db.VehiclesCollection)})
	authService := auth.NewService(cfg.JWTSecret, cfg.JWTExpiry,
		&db.MongoUserCollection{Collection: database.Collection(db.UsersCollection)},
		&db.MongoTokenRevocations{Collection: database.Collection(db.RevokedTokensCollection)},
	)

	publisher := newPublisher(cfg)
	defer publisher.Close()

	s := &server{
		cfg: cfg,
		vehicles: handlers.NewVehicleHandler(store,
			handlers.WithPublisher(publisher),
			handlers.WithPolicy(cfg.FilterPolicy()),
			handlers.WithTopN(cfg.TopN),
		),
		accounts:  handlers.NewAuthHandler(authService),
		authMW:    middleware.NewAuthMiddleware(authService),
		rateLimit: middleware.NewRateLimitMiddleware(),
		health: func(ctx context.Context) error {
			return client.Ping(ctx, nil)
		},
	}

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      s.routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithField("addr", httpServer.Addr).Info("HTTP server listening")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-sigCh:
		log.WithField("signal", sig.String()).Info("Received shutdown signal")
	case err := <-errCh:
		log.WithError(err).Error("HTTP server error")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("Shutdown error")
	}
	if err := client.Disconnect(shutdownCtx); err != nil {
		log.WithError(err).Error("MongoDB disconnect error")
	}
	log.Info("Server stopped")
}
