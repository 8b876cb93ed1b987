package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fitcabinet/coach-crm/internal/access"
	"fitcabinet/coach-crm/internal/api"
	"fitcabinet/coach-crm/internal/config"
	"fitcabinet/coach-crm/internal/mailer"
	"fitcabinet/coach-crm/internal/repository/mongo"
	"fitcabinet/coach-crm/internal/service"
	"fitcabinet/coach-crm/internal/storage"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
)

func main() {
	log.Info("Starting coach CRM server...")

	// --- Configuration ---
	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatal("Could not load config", "error", err)
	}
	log.Info("Configuration loaded")

	// --- Database Connection ---
	dbClient, err := mongo.ConnectDB(cfg.Database.URI)
	if err != nil {
		log.Fatal("Could not connect to MongoDB", "error", err)
	}
	defer func() {
		log.Info("Disconnecting MongoDB...")
		if err := mongo.DisconnectDB(dbClient); err != nil {
			log.Error("Failed to disconnect MongoDB", "error", err)
		}
	}()
	appDB := dbClient.Database(cfg.Database.Name)
	log.Info("Database connection established")

	// --- Ensure Indexes ---
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Minute)
		defer cancel()
		mongo.EnsureUserIndexes(ctx, appDB.Collection("users"))
		mongo.EnsureClientIndexes(ctx, appDB.Collection("clients"))
		mongo.EnsureClientAttributeIndexes(ctx, appDB.Collection("client_attributes"))
		mongo.EnsureSessionIndexes(ctx, appDB.Collection("sessions"))
		mongo.EnsureCommentIndexes(ctx, appDB.Collection("session_comments"))
		mongo.EnsureNotificationIndexes(ctx, appDB.Collection("notifications"))
		log.Info("Index creation process completed")
	}()

	// --- Initialize Storage & Mail ---
	fileStorage, err := storage.NewS3Storage(cfg.S3)
	if err != nil {
		log.Fatal("Failed to initialize S3 storage", "error", err)
	}
	mail := mailer.NewSMTPMailer(cfg.SMTP)

	// --- Initialize Repositories ---
	userRepo := mongo.NewMongoUserRepository(appDB)
	clientRepo := mongo.NewMongoClientRepository(appDB)
	attrRepo := mongo.NewMongoClientAttributeRepository(appDB)
	sessionRepo := mongo.NewMongoSessionRepository(appDB)
	commentRepo := mongo.NewMongoCommentRepository(appDB)
	notificationRepo := mongo.NewMongoNotificationRepository(appDB)
	catalogRepo := mongo.NewMongoCatalogRepository(appDB)
	txnRunner := mongo.NewTransactionRunner(dbClient)

	// --- Initialize Services ---
	guard := access.NewGuard(clientRepo, sessionRepo)
	notifier := service.NewNotifier(notificationRepo)

	authService := service.NewAuthService(userRepo, cfg.JWT.Secret, cfg.JWT.Expiration)
	clientService := service.NewClientService(
		userRepo, clientRepo, sessionRepo, commentRepo, attrRepo,
		notificationRepo, txnRunner, guard, mail,
	)
	sessionService := service.NewSessionService(sessionRepo, commentRepo, guard, notifier, fileStorage)
	notificationService := service.NewNotificationService(notificationRepo)
	catalogService := service.NewCatalogService(catalogRepo)

	// --- Initialize Gin Engine ---
	router := gin.Default()

	api.SetupRoutes(router, cfg.JWT.Secret,
		authService, clientService, sessionService, notificationService, catalogService)

	// --- Start HTTP Server ---
	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	log.Info("Server starting", "address", cfg.Server.Address)

	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("ListenAndServe error", "error", err)
		}
	}()

	// --- Graceful Shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	if err := server.Shutdown(ctxShutdown); err != nil {
		log.Fatal("Server forced to shutdown", "error", err)
	}

	log.Info("Server exiting")
}
