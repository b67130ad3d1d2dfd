package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/cors"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	_ "github.com/tair/empowhr-payroll/docs"
	"github.com/tair/empowhr-payroll/internal/payroll"
	"github.com/tair/empowhr-payroll/internal/payroll/directory"
	"github.com/tair/empowhr-payroll/internal/payroll/domain"
	"github.com/tair/empowhr-payroll/internal/payroll/gateway"
	"github.com/tair/empowhr-payroll/internal/payroll/handler"
	"github.com/tair/empowhr-payroll/internal/payroll/probe"
	"github.com/tair/empowhr-payroll/internal/payroll/repository"
	"github.com/tair/empowhr-payroll/internal/payroll/usecase/command"
	"github.com/tair/empowhr-payroll/kafka"
	"github.com/tair/empowhr-payroll/pkg/auth"
	"github.com/tair/empowhr-payroll/pkg/config"
	"github.com/tair/empowhr-payroll/pkg/database"
	"github.com/tair/empowhr-payroll/pkg/logger"
	"github.com/tair/empowhr-payroll/pkg/tracing"
)

func serveCmd() *cobra.Command {
	var migrate bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API, the gRPC health server and the Kafka reconciler",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := bootstrap()
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			return runServe(cfg, migrate)
		},
	}

	cmd.Flags().BoolVar(&migrate, "migrate", true, "apply migrations before serving")
	return cmd
}

func runServe(cfg *config.Config, migrate bool) error {
	logger.Logger.Info().
		Str("service", cfg.ServiceName).
		Str("environment", cfg.Environment).
		Str("log_level", cfg.LogLevel).
		Msg("Starting payroll service")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Tracing.Enabled {
		tp, err := tracing.InitTracer(cfg.ServiceName, cfg.ServiceVersion, cfg.Tracing.JaegerEndpoint)
		if err != nil {
			logger.Logger.Error().Err(err).Msg("Failed to initialize tracer")
		} else {
			defer func() {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := tracing.Shutdown(shutdownCtx, tp); err != nil {
					logger.Logger.Error().Err(err).Msg("Failed to shutdown tracer")
				}
			}()
		}
	}

	db, err := database.NewGormConnection(cfg.DatabaseConfig())
	if err != nil {
		return err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}
	defer sqlDB.Close()

	if migrate {
		if err := repository.AutoMigrate(db); err != nil {
			return err
		}
		logger.Logger.Info().Msg("Database initialized successfully")
	}

	gw, err := buildGateway(cfg)
	if err != nil {
		return err
	}

	dir, closeDir, err := buildDirectory(cfg, db)
	if err != nil {
		return err
	}
	defer closeDir()

	var publisher command.PaymentEventPublisher = command.NoopPublisher{}
	if len(cfg.Kafka.Brokers) > 0 {
		p, err := kafka.NewPublisher(cfg.Kafka.Brokers)
		if err != nil {
			logger.Logger.Error().Err(err).Msg("Kafka publisher unavailable, payment events disabled")
		} else {
			defer p.Close()
			publisher = p
		}
	}

	var verifier *auth.Verifier
	if cfg.Auth.JWTSecret != "" {
		verifier = auth.NewVerifier(cfg.Auth.JWTSecret, cfg.Auth.Issuer)
	} else {
		logger.Logger.Warn().Msg("JWT_SECRET not set, API authentication is disabled")
	}

	var limiter *handler.RateLimiter
	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer rdb.Close()
		limiter = handler.NewRateLimiter(rdb, cfg.Redis.RateLimit, cfg.Redis.RateWindow)
	}

	payrollHandler, err := payroll.InitializeHandler(db, gw, dir, publisher, handler.DefaultMiddlewareConfig(verifier, limiter))
	if err != nil {
		return fmt.Errorf("failed to initialize handler: %w", err)
	}

	if len(cfg.Kafka.Brokers) > 0 {
		if err := startReconciler(ctx, cfg, db); err != nil {
			logger.Logger.Error().Err(err).Msg("Kafka reconciler unavailable")
		}
	}

	health := probe.NewHealthServer()
	health.AddCheck(probe.ServiceDatabase, true, sqlDB.PingContext)
	health.AddCheck(probe.ServiceGateway, false, gw.Ping)
	go health.Run(ctx, 15*time.Second)

	grpcServer := probe.NewServer(health)
	lis, err := net.Listen("tcp", ":"+cfg.GRPC.Port)
	if err != nil {
		return fmt.Errorf("failed to listen on gRPC port %s: %w", cfg.GRPC.Port, err)
	}
	go func() {
		logger.Logger.Info().Str("port", cfg.GRPC.Port).Msg("gRPC health server started")
		if err := grpcServer.Serve(lis); err != nil {
			logger.Logger.Error().Err(err).Msg("gRPC server stopped")
		}
	}()

	httpServer := newHTTPServer(cfg, payrollHandler, sqlDB.PingContext)
	go func() {
		logger.Logger.Info().
			Str("port", cfg.HTTP.Port).
			Str("metrics_endpoint", "/metrics").
			Str("swagger", "/swagger/index.html").
			Msg("HTTP server started")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Logger.Error().Err(err).Msg("HTTP server failed")
			stop()
		}
	}()

	<-ctx.Done()
	logger.Logger.Info().Msg("Shutting down server...")

	health.Shutdown()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Logger.Error().Err(err).Msg("HTTP server shutdown failed")
	}
	grpcServer.GracefulStop()
	return nil
}

func newHTTPServer(cfg *config.Config, h *handler.PayrollHandler, dbPing handler.HealthChecker) *http.Server {
	router := mux.NewRouter()

	handler.RegisterMiddlewares(router, h.GetMiddlewareConfig())
	h.RegisterRoutes(router)
	h.RegisterHealthCheck(router, dbPing)
	handler.RegisterSwaggerDocs(router, nil)
	router.Handle("/metrics", promhttp.Handler())

	c := cors.New(cors.Options{
		AllowedOrigins:   cfg.HTTP.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	})

	return &http.Server{
		Addr:              ":" + cfg.HTTP.Port,
		Handler:           c.Handler(router),
		ReadHeaderTimeout: 10 * time.Second,
	}
}

func buildGateway(cfg *config.Config) (domain.CheckoutGateway, error) {
	if !cfg.Gateway.Enabled {
		logger.Logger.Warn().Msg("Payment gateway disabled; only manual payments can be recorded")
		return gateway.Disabled{}, nil
	}
	gw, err := gateway.NewStripeGateway(gateway.Config{
		SecretKey:        cfg.Gateway.StripeSecretKey,
		Currency:         cfg.Gateway.Currency,
		ClientURL:        cfg.Gateway.ClientURL,
		Timeout:          cfg.Gateway.Timeout,
		ProductImageURL:  cfg.Gateway.ProductImageURL,
		AllowedCountries: cfg.Gateway.AllowedCountries,
		BreakerFailures:  cfg.Gateway.BreakerFailures,
		BreakerCooldown:  cfg.Gateway.BreakerCooldown,
		APIURL:           cfg.Gateway.APIURL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize stripe gateway: %w", err)
	}
	return gw, nil
}

// buildDirectory returns a nil directory when enforcement is off, so request
// creation skips the employee check.
func buildDirectory(cfg *config.Config, db *gorm.DB) (domain.EmployeeDirectory, func(), error) {
	noop := func() {}
	if !cfg.Directory.Enforce {
		return nil, noop, nil
	}

	dbCfg, external := cfg.DirectoryDatabaseConfig()
	if !external {
		sqlDB, err := db.DB()
		if err != nil {
			return nil, noop, fmt.Errorf("failed to get database instance: %w", err)
		}
		dir, err := directory.NewSQLDirectory(sqlDB, cfg.Directory.Table)
		if err != nil {
			return nil, noop, err
		}
		return dir, noop, nil
	}

	sqlDB, err := database.NewPostgresConnection(dbCfg)
	if err != nil {
		return nil, noop, fmt.Errorf("failed to connect to user directory: %w", err)
	}
	dir, err := directory.NewSQLDirectory(sqlDB, cfg.Directory.Table)
	if err != nil {
		sqlDB.Close()
		return nil, noop, err
	}
	return dir, func() { sqlDB.Close() }, nil
}

func startReconciler(ctx context.Context, cfg *config.Config, db *gorm.DB) error {
	reconciler, err := payroll.InitializeReconciler(db)
	if err != nil {
		return err
	}

	consumer, err := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, []string{kafka.TopicPaymentRecorded})
	if err != nil {
		return err
	}
	consumer.RegisterHandler(kafka.EventTypePaymentRecorded, kafka.ReconcileOnPayment(reconciler))

	go func() {
		<-ctx.Done()
		if err := consumer.Close(); err != nil {
			logger.Logger.Error().Err(err).Msg("Failed to close Kafka consumer")
		}
	}()
	return consumer.Start(ctx)
}
