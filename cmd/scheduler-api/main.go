package main

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/hallplan/exam-scheduler-api/api/swagger"
	"github.com/hallplan/exam-scheduler-api/internal/handler"
	"github.com/hallplan/exam-scheduler-api/internal/middleware"
	"github.com/hallplan/exam-scheduler-api/internal/scheduler"
	"github.com/hallplan/exam-scheduler-api/internal/service"
	"github.com/hallplan/exam-scheduler-api/pkg/config"
	"github.com/hallplan/exam-scheduler-api/pkg/jobs"
	"github.com/hallplan/exam-scheduler-api/pkg/logger"
	corsmiddleware "github.com/hallplan/exam-scheduler-api/pkg/middleware/cors"
	reqidmiddleware "github.com/hallplan/exam-scheduler-api/pkg/middleware/requestid"
)

// @title Exam Scheduler API
// @version 0.1.0
// @description Exam timetabling and seating assignment service
// @BasePath /api/v1
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	validate := validator.New()
	metricsSvc := service.NewMetricsService()

	datasetSvc := service.NewDatasetService(logr, service.DatasetServiceConfig{
		TTL:            cfg.Datasets.TTL,
		MaxUploadBytes: cfg.Datasets.MaxUploadBytes,
		PreviewRows:    cfg.Datasets.PreviewRows,
	})

	engine := scheduler.New(scheduler.Config{
		DefaultSlotsPerDay:   cfg.Scheduler.DefaultSlotsPerDay,
		SpacingWindow:        cfg.Scheduler.SpacingWindow,
		BlockConflictingDays: cfg.Scheduler.BlockConflictingDays,
		AnnealingIterations:  cfg.Scheduler.AnnealingIterations,
	})

	scheduleSvc := service.NewScheduleService(datasetSvc, engine, metricsSvc, validate, logr, service.ScheduleServiceConfig{
		ResultTTL:           cfg.Scheduler.ResultTTL,
		DefaultEfficiency:   cfg.Scheduler.DefaultEfficiency,
		DefaultSlotDuration: cfg.Scheduler.DefaultSlotDuration,
		DefaultSeed:         cfg.Scheduler.Seed,
	})

	reportSvc := service.NewReportService(scheduleSvc, logr, service.ReportServiceConfig{
		Enabled:    cfg.Reports.Enabled,
		StorageDir: cfg.Reports.StorageDir,
	})
	reportQueue := jobs.NewQueue("reports", reportSvc.Handle, jobs.QueueConfig{
		Workers:     cfg.Reports.WorkerConcurrency,
		MaxAttempts: cfg.Reports.WorkerRetries,
		Logger:      logr,
	})
	reportSvc.AttachQueue(reportQueue)
	if cfg.Reports.Enabled {
		reportQueue.Start(context.Background())
		defer reportQueue.Stop()
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/ready", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", gin.WrapH(metricsSvc.Handler()))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	datasetHandler := handler.NewDatasetHandler(datasetSvc)
	scheduleHandler := handler.NewScheduleHandler(scheduleSvc)
	reportHandler := handler.NewReportHandler(reportSvc)

	api := r.Group(cfg.APIPrefix)
	{
		api.POST("/datasets/enrollment", datasetHandler.UploadEnrollment)
		api.POST("/datasets/rooms", datasetHandler.UploadRooms)
		api.POST("/datasets/sample", datasetHandler.GenerateSample)
		api.GET("/datasets/:id", datasetHandler.Get)

		api.POST("/schedules/generate", scheduleHandler.Generate)
		api.GET("/schedules/:id", scheduleHandler.Get)
		api.GET("/schedules/:id/seating", scheduleHandler.Seating)
		api.GET("/schedules/:id/seating/export", scheduleHandler.SeatingExport)
		api.GET("/schedules/:id/seating.csv", scheduleHandler.SeatingCSV)
		api.GET("/schedules/:id/analytics", scheduleHandler.Analytics)
		api.POST("/schedules/:id/report", reportHandler.Create)

		api.GET("/reports/:id", reportHandler.Status)
		api.GET("/reports/:id/download", reportHandler.Download)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
