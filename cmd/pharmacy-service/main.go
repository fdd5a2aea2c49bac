package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	authhandler "github.com/medistock/medistock-backend/internal/auth/handler"
	"github.com/medistock/medistock-backend/internal/auth/jwt"
	authmw "github.com/medistock/medistock-backend/internal/auth/middleware"
	authrepo "github.com/medistock/medistock-backend/internal/auth/repository"
	authservice "github.com/medistock/medistock-backend/internal/auth/service"
	"github.com/medistock/medistock-backend/internal/inventory/events"
	"github.com/medistock/medistock-backend/internal/inventory/handler"
	"github.com/medistock/medistock-backend/internal/inventory/repository"
	"github.com/medistock/medistock-backend/internal/inventory/service"
	"github.com/medistock/medistock-backend/pkg/access"
	"github.com/medistock/medistock-backend/pkg/config"
	"github.com/medistock/medistock-backend/pkg/database"
	"github.com/medistock/medistock-backend/pkg/httputil"
	"github.com/medistock/medistock-backend/pkg/logger"
	"github.com/medistock/medistock-backend/pkg/messaging"
)

func main() {
	// Load configuration with validation (fails fast in production if required config is missing)
	cfg, err := config.LoadWithValidation("pharmacy-service")
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}

	log := logger.New("pharmacy-service", cfg.Server.Environment)
	log.Info().Msg("starting Pharmacy Service")

	// Connect to database
	db, err := database.New(&cfg.Database, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	// Connect to RabbitMQ
	rmq, err := messaging.New(&cfg.RabbitMQ, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to RabbitMQ")
	}
	defer rmq.Close()

	amqpPublisher, err := messaging.NewPublisher(rmq, messaging.ExchangeInventoryEvents, "pharmacy-service", log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create event publisher")
	}
	publisher := events.NewInventoryEventPublisher(amqpPublisher, log)

	// Repositories
	userRepo := authrepo.NewUserRepository(db)
	medicineRepo := repository.NewMedicineRepository(db)
	movementRepo := repository.NewMovementRepository(db)
	supplierRepo := repository.NewSupplierRepository(db)
	saleRepo := repository.NewSaleRepository(db)
	alertRepo := repository.NewAlertRepository(db)

	// Services
	jwtManager := jwt.NewManager(&cfg.JWT)
	authSvc := authservice.NewAuthService(userRepo, jwtManager, log)
	medicineSvc := service.NewMedicineService(medicineRepo, publisher, log)
	stockSvc := service.NewStockService(db, medicineRepo, movementRepo, saleRepo, publisher, log)
	analyticsSvc := service.NewAnalyticsService(medicineRepo, movementRepo, supplierRepo, saleRepo, log)
	supplierSvc := service.NewSupplierService(supplierRepo, log)
	alertSvc := service.NewAlertService(alertRepo, log)
	dashboardSvc := service.NewDashboardService(medicineRepo, movementRepo, saleRepo, alertRepo, log)

	// Alert scanner on its cron schedule
	scanner := service.NewAlertScanner(medicineRepo, alertRepo, publisher, cfg.Alerts.ExpiryWarningDays, log)
	scheduler := service.NewAlertScheduler(scanner, cfg.Alerts.Schedule, log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := scheduler.Start(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to start alert scheduler")
	}
	defer scheduler.Stop()

	// Handlers
	authHandler := authhandler.NewAuthHandler(authSvc, log)
	medicineHandler := handler.NewMedicineHandler(medicineSvc, log)
	stockHandler := handler.NewStockHandler(stockSvc, log)
	analyticsHandler := handler.NewAnalyticsHandler(analyticsSvc, log)
	supplierHandler := handler.NewSupplierHandler(supplierSvc, log)
	alertHandler := handler.NewAlertHandler(alertSvc, log)
	dashboardHandler := handler.NewDashboardHandler(dashboardSvc, log)

	// Router
	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(httputil.RequestID)
	r.Use(httputil.Logger(log))
	r.Use(httputil.Recoverer(log))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		httputil.JSON(w, http.StatusOK, map[string]interface{}{
			"status":   "healthy",
			"service":  "pharmacy-service",
			"database": db.Health(r.Context()),
			"rabbitmq": rmq.Health(),
		})
	})

	r.Route("/api/v1", func(r chi.Router) {
		// Public routes
		authHandler.RegisterPublicRoutes(r)

		// Authenticated routes
		r.Group(func(r chi.Router) {
			r.Use(authmw.Authenticator(jwtManager, log))

			// Any staff member
			r.Group(func(r chi.Router) {
				r.Use(authmw.RequireStaff())
				authHandler.RegisterProtectedRoutes(r)
				medicineHandler.RegisterReadRoutes(r)
				stockHandler.RegisterReadRoutes(r)
				supplierHandler.RegisterReadRoutes(r)
				alertHandler.RegisterRoutes(r)
				dashboardHandler.RegisterRoutes(r)
			})

			// Catalog writes and stock operations
			r.Group(func(r chi.Router) {
				r.Use(authmw.RequireAnyRole(access.RoleAdmin, access.RolePharmacist, access.RoleStoreManager))
				medicineHandler.RegisterWriteRoutes(r)
				stockHandler.RegisterOperationRoutes(r)
			})

			// Catalog deletion is admin only
			r.Group(func(r chi.Router) {
				r.Use(authmw.RequireAnyRole(access.RoleAdmin))
				medicineHandler.RegisterDeleteRoutes(r)
			})

			// Dispensing
			r.Group(func(r chi.Router) {
				r.Use(authmw.RequireAnyRole(access.RoleAdmin, access.RolePharmacist))
				stockHandler.RegisterSaleRoutes(r)
			})

			// Supplier management
			r.Group(func(r chi.Router) {
				r.Use(authmw.RequireAnyRole(access.RoleAdmin, access.RoleStoreManager))
				supplierHandler.RegisterWriteRoutes(r)
			})

			// Analytics
			r.Group(func(r chi.Router) {
				r.Use(authmw.RequireAnyRole(access.RoleAdmin, access.RoleStoreManager))
				analyticsHandler.RegisterRoutes(r)
			})
		})
	})

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Info().Str("addr", addr).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}
