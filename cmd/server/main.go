package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"payroll-chain.backend/internal/config"
	"payroll-chain.backend/internal/infrastructure/blockchain"
	"payroll-chain.backend/internal/infrastructure/gateway"
	"payroll-chain.backend/internal/infrastructure/jobs"
	"payroll-chain.backend/internal/infrastructure/repositories"
	"payroll-chain.backend/internal/interfaces/http/handlers"
	"payroll-chain.backend/internal/interfaces/http/middleware"
	"payroll-chain.backend/internal/usecases"
	"payroll-chain.backend/pkg/jwt"
	"payroll-chain.backend/pkg/logger"
	"payroll-chain.backend/pkg/redis"
)

var (
	loadDotenv = godotenv.Load
	loadCfg    = config.Load
	initLog    = logger.Init
	initRedis  = redis.Init
	openDB     = func(dsn string) (*gorm.DB, error) {
		return gorm.Open(postgres.New(postgres.Config{
			DSN:                  dsn,
			PreferSimpleProtocol: true,
		}), &gorm.Config{
			PrepareStmt: false,
		})
	}
	runServer = func(r *gin.Engine, port string) error { return r.Run(":" + port) }
	getStdDB  = func(db *gorm.DB) (*sql.DB, error) { return db.DB() }
)

func main() {
	if err := runMainProcess(); err != nil {
		log.Fatal(err)
	}
}

func runMainProcess() error {
	if err := loadDotenv(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := loadCfg()

	initLog(cfg.Server.Env)
	logger.Info(context.Background(), "Logger initialized", zap.String("env", cfg.Server.Env))

	if err := initRedis(cfg.Redis.URL, cfg.Redis.PASSWORD); err != nil {
		logger.Error(context.Background(), "Failed to initialize Redis", zap.Error(err))
		return fmt.Errorf("failed to initialize redis: %w", err)
	}
	logger.Info(context.Background(), "Redis initialized")

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := openDB(cfg.Database.URL())
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := getStdDB(db)
	if err != nil {
		return fmt.Errorf("failed to get generic database object: %w", err)
	}
	defer sqlDB.Close()

	if err := sqlDB.Ping(); err != nil {
		log.Printf("⚠️ Database not available: %v (endpoints will return errors)", err)
	} else {
		log.Println("✅ Connected to PostgreSQL via GORM")
	}

	jwtService := jwt.NewJWTService(
		cfg.JWT.Secret,
		cfg.JWT.AccessExpiry,
		cfg.JWT.RefreshExpiry,
	)

	// Repositories
	adminRepo := repositories.NewAdminRepository(db)
	workerRepo := repositories.NewWorkerRepository(db)
	runRepo := repositories.NewPayrollRunRepository(db)
	itemRepo := repositories.NewPayrollItemRepository(db)
	transferRepo := repositories.NewTransferRepository(db)
	gasRepo := repositories.NewGasStationRepository(db)
	paymasterRepo := repositories.NewPaymasterRepository(db)
	auditRepo := repositories.NewAuditLogRepository(db)
	uow := repositories.NewUnitOfWork(db)

	// External clients
	clientFactory := blockchain.NewClientFactory(cfg.Chains)
	defer clientFactory.Close()
	gatewayClient := gateway.NewClient(cfg.Gateway)
	attestationClient := gateway.NewAttestationClient(cfg.Attestation)

	// Usecases. The gas usecase doubles as the sponsor for payroll wallet
	// payouts and as the operation recorder for gateway webhooks.
	authUsecase := usecases.NewAuthUsecase(adminRepo, jwtService)
	gasUsecase := usecases.NewGasUsecase(gasRepo, paymasterRepo, gatewayClient, cfg.Paymaster)
	payrollUsecase := usecases.NewPayrollUsecase(workerRepo, runRepo, itemRepo, auditRepo, uow, gatewayClient, gasUsecase, clientFactory, cfg.SupportedChains(), cfg.Gateway.TreasuryWalletRef)
	transferUsecase := usecases.NewTransferUsecase(transferRepo, workerRepo, auditRepo, gatewayClient, attestationClient, clientFactory, cfg.Attestation)
	workerUsecase := usecases.NewWorkerUsecase(workerRepo, clientFactory, cfg.SupportedChains())
	webhookUsecase := usecases.NewWebhookUsecase(itemRepo, transferRepo, auditRepo, gasUsecase)

	// Handlers
	authHandler := handlers.NewAuthHandler(authUsecase)
	payrollHandler := handlers.NewPayrollHandler(payrollUsecase)
	workerHandler := handlers.NewWorkerHandler(workerUsecase, transferUsecase, gasUsecase)
	webhookHandler := handlers.NewWebhookHandler(webhookUsecase)

	authMiddleware := middleware.AuthMiddleware(jwtService)

	// Background jobs
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	provisioningJob := jobs.NewProvisioningJob(workerRepo, gatewayClient)
	go provisioningJob.Start(ctx)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.LoggerMiddleware())

	applyCORSMiddleware(r)
	registerHealthRoute(r)
	registerMetricsRoute(r)
	registerAPIV1Routes(r, routeDeps{
		authHandler:     authHandler,
		payrollHandler:  payrollHandler,
		workerHandler:   workerHandler,
		webhookHandler:  webhookHandler,
		authMiddleware:  authMiddleware,
		webhookSecret:   cfg.Gateway.WebhookSecret,
		webhookRPS:      cfg.Gateway.RequestsPerSecond,
		webhookRPSBurst: cfg.Gateway.Burst,
	})

	log.Println("📋 Registered Routes:")
	for _, route := range r.Routes() {
		log.Printf("   %s %s", route.Method, route.Path)
	}

	// Graceful shutdown
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		log.Println("🛑 Shutting down server...")
		provisioningJob.Stop()
		cancel()
	}()

	log.Printf("🚀 Payroll-Chain Backend starting on port %s", cfg.Server.Port)
	log.Printf("📚 API: http://localhost:%s/api/v1", cfg.Server.Port)
	log.Printf("❤️ Health: http://localhost:%s/health", cfg.Server.Port)

	if err := runServer(r, cfg.Server.Port); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}
