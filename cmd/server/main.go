package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"peer_review_hub/internal/api"
	"peer_review_hub/internal/app/service"
	"peer_review_hub/internal/app/worker"
	"peer_review_hub/internal/common/security"
	"peer_review_hub/internal/domain/repository"
	"peer_review_hub/internal/platform/config"
	"peer_review_hub/internal/platform/database"
	"peer_review_hub/internal/platform/queue"
	"syscall"
	"time"
)

func main() {
	// 1. Load Configuration
	config.Load()
	fmt.Println("Configuration loaded.")

	// 2. Initialize JWT
	security.InitJWT()
	fmt.Println("JWT initialized.")

	// 3. Initialize Database
	database.Connect()
	defer database.Close()
	if err := database.Migrate(context.Background()); err != nil {
		log.Fatalf("Could not apply database schema: %v", err)
	}
	fmt.Println("Database connected and schema applied.")

	// 4. Initialize Redis
	queue.ConnectRedis()
	defer queue.CloseRedis()
	fmt.Println("Redis connected.")

	// 5. Initialize Repositories
	userRepo := repository.NewPgUserRepository(database.DB)
	projectRepo := repository.NewPgProjectRepository(database.DB)
	reviewRepo := repository.NewPgReviewRepository(database.DB)

	// 6. Initialize Services
	authService := service.NewAuthService(userRepo)
	aggregationService := service.NewAggregationService(projectRepo, reviewRepo)
	repairQueue := service.NewAggregationQueue(queue.RDB)
	projectService := service.NewProjectService(projectRepo, reviewRepo)
	queueService := service.NewQueueService(projectRepo)
	reviewService := service.NewReviewService(reviewRepo, projectRepo, aggregationService, repairQueue)

	// 7. Initialize Reconcile Worker (as a goroutine)
	reconcileWorker := worker.NewReconcileWorker(queue.RDB, aggregationService)
	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()
	go reconcileWorker.Start(workerCtx)
	fmt.Println("Reconcile worker started.")

	// 8. Initialize Router & HTTP Server
	router := api.NewRouter(authService, projectService, queueService, reviewService, aggregationService)

	server := &http.Server{
		Addr:         ":" + config.AppConfig.APIPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// 9. Graceful Shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Printf("Server starting on port %s", config.AppConfig.APIPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Could not listen on %s: %v\n", config.AppConfig.APIPort, err)
		}
	}()
	log.Println("Server started successfully.")

	<-stop // Wait for interrupt signal

	log.Println("Shutting down server...")
	workerCancel() // Signal worker to stop

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server shutdown failed: %v", err)
	}

	log.Println("Server and worker stopped gracefully.")
}
