package main

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	"payroll-chain.backend/internal/interfaces/http/handlers"
	"payroll-chain.backend/internal/interfaces/http/middleware"
)

type routeDeps struct {
	authHandler     *handlers.AuthHandler
	payrollHandler  *handlers.PayrollHandler
	workerHandler   *handlers.WorkerHandler
	webhookHandler  *handlers.WebhookHandler
	authMiddleware  gin.HandlerFunc
	webhookSecret   string
	webhookRPS      float64
	webhookRPSBurst int
}

func applyCORSMiddleware(r *gin.Engine) {
	r.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Authorization, Content-Type, Idempotency-Key, X-Request-ID")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	})
}

func registerHealthRoute(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
			"time":   time.Now().UTC().Format(time.RFC3339),
		})
	})
}

func registerMetricsRoute(r *gin.Engine) {
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
}

func registerAPIV1Routes(r *gin.Engine, d routeDeps) {
	v1 := r.Group("/api/v1")
	{
		// Auth routes
		auth := v1.Group("/auth")
		{
			auth.POST("/login", d.authHandler.Login)
			auth.GET("/me", d.authMiddleware, d.authHandler.Me)
		}

		// Payroll routes (protected)
		payroll := v1.Group("/payroll")
		payroll.Use(d.authMiddleware)
		{
			payroll.POST("/upload", d.payrollHandler.UploadCSV)
			payroll.POST("/runs", middleware.IdempotencyMiddleware(), d.payrollHandler.CreateRun)
			payroll.POST("/runs/:id/execute", d.payrollHandler.ExecuteRun)
			payroll.GET("/runs/:id", d.payrollHandler.GetRun)
			payroll.GET("/runs", d.payrollHandler.ListRuns)
		}

		// Worker routes (protected)
		workers := v1.Group("/workers")
		workers.Use(d.authMiddleware)
		{
			workers.GET("/:id/balance", d.workerHandler.GetBalance)
			workers.POST("/:id/transfer", d.workerHandler.InitiateTransfer)
			workers.GET("/:id/transfers", d.workerHandler.ListTransfers)
			workers.POST("/:id/gasless-transaction", d.workerHandler.GaslessTransaction)
			workers.POST("/:id/usdc-gas-transaction", d.workerHandler.USDCGasTransaction)
		}

		// Gateway webhooks (HMAC-signed, rate limited)
		webhooks := v1.Group("/webhooks")
		webhooks.Use(
			middleware.RateLimitByIP(rate.Limit(d.webhookRPS), d.webhookRPSBurst),
			middleware.SignatureMiddleware(d.webhookSecret),
		)
		{
			webhooks.POST("/:family", d.webhookHandler.Handle)
		}
	}
}
