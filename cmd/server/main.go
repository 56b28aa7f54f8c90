package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"codearena/internal/api"
	"codearena/internal/app/judge"
	"codearena/internal/app/service"
	"codearena/internal/common/clock"
	"codearena/internal/common/security"
	"codearena/internal/domain/repository"
	"codearena/internal/platform/config"
	"codearena/internal/platform/database"
	"codearena/internal/platform/queue"
)

func main() {
	// 1. Load Configuration
	config.Load()

	// 2. Initialize JWT
	security.InitJWT()

	// 3. Initialize Database
	database.Connect()
	defer database.Close()

	// 4. Initialize Redis (certificate dispatch queue)
	queue.ConnectRedis()
	defer queue.CloseRedis()

	// 5. Initialize Repositories
	userRepo := repository.NewPgUserRepository(database.DB)
	problemRepo := repository.NewPgProblemRepository(database.DB)
	contestRepo := repository.NewPgContestRepository(database.DB)
	submissionRepo := repository.NewPgSubmissionRepository(database.DB)

	// 6. Judge client and services
	judgeClient := judge.NewClient(
		config.AppConfig.JudgeURL,
		config.AppConfig.JudgeAPIKey,
		config.AppConfig.JudgeTimeout,
	)
	clk := clock.System()

	authService := service.NewAuthService(userRepo)
	problemService := service.NewProblemService(problemRepo, database.DB)
	contestService := service.NewContestService(contestRepo, problemRepo, database.DB, clk)
	evalService := service.NewEvaluationService(problemRepo, submissionRepo, judgeClient, config.AppConfig.JudgeMaxConcurrency)
	leaderboardService := service.NewLeaderboardService(contestRepo, submissionRepo, userRepo, clk)
	certificateService := service.NewCertificateService(
		contestRepo,
		leaderboardService,
		queue.RDB,
		config.AppConfig.CertificateQueueName,
		config.AppConfig.CertificateTopN,
		clk,
	)

	// 7. Router & HTTP Server
	router := api.NewRouter(authService, problemService, contestService, evalService, leaderboardService, certificateService)

	server := &http.Server{
		Addr:         ":" + config.AppConfig.APIPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 120 * time.Second, // submissions wait on the judge
		IdleTimeout:  120 * time.Second,
	}

	// 8. Graceful Shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Printf("Server starting on port %s", config.AppConfig.APIPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Could not listen on %s: %v\n", config.AppConfig.APIPort, err)
		}
	}()

	<-stop // Wait for interrupt signal

	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server shutdown failed: %v", err)
	}

	log.Println("Server stopped gracefully.")
}
