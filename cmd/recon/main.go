package main

import (
	"log"
	"os"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/ngnetgroupmall/KDV-Kontrol-PRO-Sistemi-sub001/internal/api/handlers"
	"github.com/ngnetgroupmall/KDV-Kontrol-PRO-Sistemi-sub001/internal/api/responses"
	"github.com/ngnetgroupmall/KDV-Kontrol-PRO-Sistemi-sub001/internal/core/executor"
	"github.com/ngnetgroupmall/KDV-Kontrol-PRO-Sistemi-sub001/internal/core/mapping"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, using process environment")
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatal("could not build logger: ", err)
	}
	defer logger.Sync()
	responses.InitLogger(logger)

	workers := 4
	if raw := os.Getenv("RECON_WORKERS"); raw != "" {
		if n, perr := strconv.Atoi(raw); perr == nil && n > 0 {
			workers = n
		}
	}

	templates := mapping.NewTemplateStore()
	exec := executor.New(workers, templates, logger)
	defer exec.Close()

	reconHandler := handlers.NewReconHandler(exec)
	ledgerHandler := handlers.NewLedgerHandler(exec)
	templateHandler := handlers.NewTemplateHandler(templates)

	router := gin.Default()

	apiV1 := router.Group("/api/v1")
	{
		apiV1.POST("/recon/inspect", reconHandler.HandleInspect(templates))
		apiV1.POST("/recon/parse", reconHandler.HandleParse)
		apiV1.POST("/recon/reconcile", reconHandler.HandleReconcile)
		apiV1.POST("/ledger/analyze", ledgerHandler.HandleAnalyze)

		apiV1.GET("/mapping/templates", templateHandler.HandleList)
		apiV1.GET("/mapping/templates/:fingerprint", templateHandler.HandleGet)
		apiV1.PUT("/mapping/templates/:fingerprint", templateHandler.HandlePut)
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "UP", "service": "recon-service"})
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "8085"
	}
	logger.Info("recon service listening", zap.String("port", port))
	if err := router.Run(":" + port); err != nil {
		log.Fatal("server failed: ", err)
	}
}
