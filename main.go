// File: fixmo/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fixmo/config"
	"fixmo/cron"
	"fixmo/database"
	appointmentRepo "fixmo/database/repository/appointment"
	availabilityRepo "fixmo/database/repository/availability"
	"fixmo/handlers"
	"fixmo/middleware"
	"fixmo/routes"
	"fixmo/services/notification"
	"fixmo/services/schedule"
	"fixmo/utils"

	"github.com/gin-gonic/gin"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()

	mongoClient, err := database.Connect(config.AppConfig.DatabaseURL)
	if err != nil {
		logger.Sugar().Fatalf("main: %v", err)
	}
	utils.InitCache()

	// Create the Gin router.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())
	router.Use(middleware.RateLimitMiddleware())

	// repositories.
	availRepo := availabilityRepo.NewMongoAvailabilityRepo(mongoClient)
	apptRepo := appointmentRepo.NewMongoAppointmentRepo(mongoClient)

	indexCtx, indexCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer indexCancel()
	if err := availRepo.EnsureIndexes(indexCtx); err != nil {
		logger.Sugar().Fatalf("main: %v", err)
	}
	if err := apptRepo.EnsureIndexes(indexCtx); err != nil {
		logger.Sugar().Fatalf("main: %v", err)
	}

	// services.
	notifier := notification.NewLogNotificationService(logger)
	availCache := schedule.NewRedisAvailabilityCache(
		utils.GetCacheClient(),
		time.Duration(config.AppConfig.AvailabilityCacheTTLSec)*time.Second,
	)

	engine := schedule.NewDefaultScheduleEngine(availRepo, apptRepo, notifier, availCache)
	engine.CommitTimeout = time.Duration(config.AppConfig.BookingCommitTimeoutSec) * time.Second
	engine.StaleHorizon = time.Duration(config.AppConfig.StaleHorizonDays) * 24 * time.Hour

	scheduleHandler := handlers.NewScheduleHandler(engine, logger)

	// Assemble the handler bundle.
	handlerBundle := &handlers.HandlerBundle{
		ResolveAvailabilityHandler: scheduleHandler.ResolveAvailabilityHandler,
		SetWeeklyTemplateHandler:   scheduleHandler.SetWeeklyTemplateHandler,
		ListTemplateHandler:        scheduleHandler.ListTemplateHandler,
		SetTemplateActiveHandler:   scheduleHandler.SetTemplateActiveHandler,

		RequestBookingHandler:        scheduleHandler.RequestBookingHandler,
		GetAppointmentHandler:        scheduleHandler.GetAppointmentHandler,
		TransitionAppointmentHandler: scheduleHandler.TransitionAppointmentHandler,
		RescheduleHandler:            scheduleHandler.RescheduleHandler,

		RunWeeklySyncHandler: scheduleHandler.RunWeeklySyncHandler,
	}

	routes.RegisterRoutes(router, handlerBundle)

	// Background maintenance: asynq worker plus the periodic enqueuer.
	syncServer := cron.InitSyncWorker(engine)
	schedulerCtx, schedulerCancel := context.WithCancel(context.Background())
	cron.StartSyncScheduler(schedulerCtx,
		time.Duration(config.AppConfig.WeeklySyncIntervalHours)*time.Hour)

	utils.StartHealthMonitor(utils.GetCacheClient(), mongoClient)

	// Start the HTTP server.
	port := config.AppConfig.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("main: server is shutting down...")

	schedulerCancel()
	syncServer.Shutdown()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Fatalf("main: server forced to shutdown: %v", err)
	}

	if err := mongoClient.Disconnect(ctx); err != nil {
		logger.Sugar().Warnf("main: mongo disconnect: %v", err)
	}

	logger.Sugar().Info("main: server stopped gracefully")
}
