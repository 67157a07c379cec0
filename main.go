package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"quizhub-service/internal/config"
	"quizhub-service/internal/database/mongo"
	"quizhub-service/internal/database/redis"
	"quizhub-service/internal/event"
	"quizhub-service/internal/handlers"
	"quizhub-service/internal/middleware"
	"quizhub-service/internal/repository"
	"quizhub-service/internal/service"
	"quizhub-service/pkg/discovery"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func setupLogging(logDir string) (*os.File, error) {
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %v", err)
	}

	logFileName := fmt.Sprintf("log_%s.log", time.Now().Format("2006-01-02"))
	file, err := os.OpenFile(filepath.Join(logDir, logFileName), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %v", err)
	}

	log.SetOutput(io.MultiWriter(file, os.Stdout))
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)

	return file, nil
}

func main() {
	cfg := config.ServiceConfig

	logFile, err := setupLogging(cfg.Server.LogDir)
	if err != nil {
		log.Fatalf("Failed to set up logging: %v", err)
	}
	defer logFile.Close()

	// Repositories
	attemptRepo := repository.NewAttemptRepository(mongo.Mongo_Database)
	quizRepo := repository.NewQuizRepository(mongo.Mongo_Database)
	categoryRepo := repository.NewCategoryRepository(mongo.Mongo_Database)
	profileRepo := repository.NewProfileRepository(mongo.Mongo_Database)
	cacheRepo := repository.NewCacheRepository(redis.Redis_Client, cfg.Redis.CacheTTL)

	indexCtx, cancelIndexes := context.WithTimeout(context.Background(), 30*time.Second)
	for _, create := range []func(context.Context) error{
		attemptRepo.CreateIndexes,
		quizRepo.CreateIndexes,
		categoryRepo.CreateIndexes,
		profileRepo.CreateIndexes,
	} {
		if err := create(indexCtx); err != nil {
			log.Printf("Warning: Failed to create database indexes: %v", err)
		}
	}
	cancelIndexes()

	// Events
	eventPublisher, err := event.NewEventPublisher(cfg.RabbitMQ.URI, cfg.RabbitMQ.Exchange)
	if err != nil {
		log.Printf("Warning: Failed to initialize event publisher: %v", err)
	}

	// Services
	quizService := service.NewQuizService(quizRepo, categoryRepo, cacheRepo)
	categoryService := service.NewCategoryService(categoryRepo, quizRepo)
	statsService := service.NewStatsService(attemptRepo, profileRepo)
	attemptService := service.NewAttemptService(attemptRepo, quizService, statsService, eventPublisher, cfg.Quiz.GracePeriod)

	eventConsumer, err := event.NewEventConsumer(cfg.RabbitMQ.URI, cfg.RabbitMQ.QueueName, statsService)
	if err != nil {
		log.Printf("Warning: Failed to initialize event consumer: %v", err)
	} else {
		if err := eventConsumer.Start(); err != nil {
			log.Printf("Warning: Failed to start event consumer: %v", err)
		}
	}

	// Handlers
	quizHandler := handlers.NewQuizHandler(quizService)
	categoryHandler := handlers.NewCategoryHandler(categoryService)
	attemptHandler := handlers.NewAttemptHandler(attemptService)
	profileHandler := handlers.NewProfileHandler(statsService)

	r := gin.Default()
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type", "Content-Length", "Accept-Encoding", "Authorization", "accept", "origin", "Cache-Control", "X-Requested-With", "X-User-ID"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "QuizHub Service is healthy")
	})

	publicQuiz := r.Group("/public/quiz")
	{
		publicQuiz.GET("/categories", categoryHandler.ListCategories)
		publicQuiz.GET("/categories/:slug", categoryHandler.GetCategory)
		publicQuiz.GET("/list", quizHandler.ListQuizzes)
		publicQuiz.GET("/list/:id", quizHandler.GetQuiz)
	}

	publicProfile := r.Group("/public/profile")
	{
		publicProfile.GET("/:userId/stats", profileHandler.UserStats)
	}

	protectedQuiz := r.Group("/protected/quiz")
	protectedQuiz.Use(middleware.RequireUser())
	{
		protectedQuiz.POST("/list", quizHandler.CreateQuiz)
		protectedQuiz.PUT("/list/:id", quizHandler.UpdateQuiz)
		protectedQuiz.DELETE("/list/:id", quizHandler.DeleteQuiz)
		protectedQuiz.POST("/categories", categoryHandler.CreateCategory)
		protectedQuiz.PUT("/categories/:slug", categoryHandler.UpdateCategory)
		protectedQuiz.DELETE("/categories/:slug", categoryHandler.DeleteCategory)
		protectedQuiz.POST("/list/:id/start", attemptHandler.StartAttempt)
		protectedQuiz.POST("/submit", attemptHandler.SubmitAttempt)
		protectedQuiz.GET("/history", attemptHandler.History)
	}

	protectedProfile := r.Group("/protected/profile")
	protectedProfile.Use(middleware.RequireUser())
	{
		protectedProfile.GET("/me/stats", profileHandler.MyStats)
	}

	registry, err := discovery.NewServiceRegistry(cfg)
	if err != nil {
		log.Printf("Warning: Failed to create service registry: %v", err)
	} else if err := registry.Register(); err != nil {
		log.Printf("Warning: Failed to register with Consul: %v", err)
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	shutdownChan := make(chan os.Signal, 1)
	signal.Notify(shutdownChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Printf("Starting server on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Error starting server: %v", err)
		}
	}()

	<-shutdownChan
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Error shutting down HTTP server: %v", err)
	}

	if eventConsumer != nil {
		if err := eventConsumer.Stop(); err != nil {
			log.Printf("Error stopping event consumer: %v", err)
		}
	}

	if eventPublisher != nil {
		if err := eventPublisher.Close(); err != nil {
			log.Printf("Error closing event publisher: %v", err)
		}
	}

	mongo.DisconnectMongo()

	if registry != nil {
		if err := registry.Deregister(); err != nil {
			log.Printf("Error deregistering from service discovery: %v", err)
		}
	}

	log.Println("Server shutdown complete")
}
