package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"golang.org/x/sync/errgroup"

	"github.com/joao-fontenele/plantnet-market/internal/auth"
	"github.com/joao-fontenele/plantnet-market/internal/config"
	"github.com/joao-fontenele/plantnet-market/internal/inventory"
	"github.com/joao-fontenele/plantnet-market/internal/messaging"
	"github.com/joao-fontenele/plantnet-market/internal/orders"
	"github.com/joao-fontenele/plantnet-market/internal/telemetry"
	"github.com/joao-fontenele/plantnet-market/internal/users"
	"github.com/joao-fontenele/plantnet-market/internal/web"
)

const serviceName = "plantnet-api"

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg, err := config.LoadAPI()
	if err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracer, err := telemetry.InitTracerProvider(ctx, cfg.OTLPEndpoint, serviceName, cfg.ServiceVersion)
	if err != nil {
		logger.Error("failed to initialize tracer", "error", err)
		os.Exit(1)
	}
	defer func() { _ = shutdownTracer(context.Background()) }()

	metricsHandler, shutdownMeter, err := telemetry.InitMeterProvider(serviceName, cfg.ServiceVersion)
	if err != nil {
		logger.Error("failed to initialize meter", "error", err)
		os.Exit(1)
	}
	defer func() { _ = shutdownMeter(context.Background()) }()

	metrics, err := telemetry.NewMarketplace(otel.Meter(serviceName))
	if err != nil {
		logger.Error("failed to create counters", "error", err)
		os.Exit(1)
	}

	db, err := telemetry.OpenDB(ctx, cfg.PostgresURL)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer func() { _ = db.Close() }()

	// Prices are sent to the dashboard as JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true

	var publisher orders.Publisher
	if len(cfg.KafkaBrokers) > 0 {
		producer := messaging.NewProducer(cfg.KafkaBrokers, cfg.OrdersTopic)
		defer func() { _ = producer.Close() }()
		publisher = producer
	} else {
		logger.Warn("KAFKA_BROKERS not set, order events are disabled")
	}

	userRepo := users.NewUserRepository(db)
	userService := users.NewService(userRepo, logger)

	verifier := auth.NewVerifier(cfg.TokenSecret, cfg.TokenTTL)
	gate := auth.NewGate(verifier, userRepo, metrics, logger)

	plantService := inventory.NewService(
		inventory.NewPlantRepository(db),
		inventory.NewLedger(db, metrics, logger),
		logger,
	)
	orderService := orders.NewService(orders.NewOrderRepository(db), userRepo, publisher, metrics, logger)

	authHandler := auth.NewHandler(verifier, auth.Cookies{Production: cfg.Production()}, logger)
	userHandler := users.NewHandler(userService, logger)
	plantHandler := inventory.NewHandler(plantService, logger)
	orderHandler := orders.NewHandler(orderService, logger)

	routes := map[string]http.HandlerFunc{
		"GET /{$}":     handleBanner(logger),
		"GET /healthz": handleHealth(db.PingContext, logger),

		"POST /jwt":   authHandler.HandleIssue,
		"GET /logout": authHandler.HandleLogout,

		"POST /users/{email}":       userHandler.HandleRegister,
		"GET /users/{email}":        gate.Admin(userHandler.HandleList),
		"GET /users/role/{email}":   gate.Authenticated(userHandler.HandleGetRole),
		"PATCH /users/role/{email}": gate.Admin(userHandler.HandleSetRole),
		"PATCH /users/{email}":      gate.Authenticated(userHandler.HandleRequestPromotion),

		"GET /plants":                 plantHandler.HandleListPlants,
		"GET /plants/{id}":            plantHandler.HandleGetPlant,
		"POST /plants":                gate.Seller(plantHandler.HandleCreatePlant),
		"GET /plants/seller":          gate.Seller(plantHandler.HandleSellerPlants),
		"DELETE /plants/{id}":         gate.Seller(plantHandler.HandleDeletePlant),
		"PATCH /plants/quantity/{id}": gate.Authenticated(plantHandler.HandleUpdateQuantity),

		"POST /orders":              gate.Authenticated(orderHandler.HandleCreate),
		"GET /orders/{email}":       gate.Authenticated(orderHandler.HandleListCustomer),
		"GET /orders":               gate.Seller(orderHandler.HandleListSeller),
		"DELETE /orders/{id}":       gate.Authenticated(orderHandler.HandleCancel),
		"PATCH /orders/status/{id}": gate.Seller(orderHandler.HandleUpdateStatus),
	}

	mux := http.NewServeMux()
	for pattern, h := range routes {
		mux.HandleFunc(pattern, telemetry.WithHTTPRoute(h))
	}

	var handler http.Handler = mux
	handler = web.CORS(cfg.AllowedOrigins, handler)
	handler = web.LogRequests(logger, handler)
	handler = telemetry.NewHTTPHandler(handler, serviceName)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	metricsMux := http.NewServeMux()
	metricsMux.Handle("GET /metrics", metricsHandler)
	metricsServer := &http.Server{
		Addr:              ":" + cfg.MetricsPort,
		Handler:           metricsMux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("starting api", "port", cfg.Port)
		return serve(server)
	})
	g.Go(func() error {
		logger.Info("starting metrics server", "port", cfg.MetricsPort)
		return serve(metricsServer)
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return errors.Join(server.Shutdown(shutdownCtx), metricsServer.Shutdown(shutdownCtx))
	})

	if err := g.Wait(); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

func serve(s *http.Server) error {
	if err := s.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func handleBanner(logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		web.WriteJSON(w, logger, http.StatusOK, map[string]string{"message": "plantnet server is running"})
	}
}

func handleHealth(ping func(context.Context) error, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := ping(ctx); err != nil {
			logger.Error("health check failed", "error", err)
			web.WriteError(w, logger, http.StatusServiceUnavailable, "database unavailable")
			return
		}
		web.WriteJSON(w, logger, http.StatusOK, map[string]string{"status": "ok"})
	}
}
