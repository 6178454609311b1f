package cli

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"quiz-rest-service/internal/app"
	"quiz-rest-service/internal/config"
	"quiz-rest-service/internal/infra/authapi"
	"quiz-rest-service/internal/infra/memory"
	"quiz-rest-service/internal/infra/postgres"
	infraredis "quiz-rest-service/internal/infra/redis"
	transport "quiz-rest-service/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the quiz REST server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	var verifier authapi.TokenVerifier
	switch {
	case cfg.Auth.URL != "":
		verifier = authapi.NewClient(cfg.Auth.URL, cfg.Auth.AnonKey, nil)
	case cfg.Auth.DevSecret != "":
		log.Printf("no auth provider configured, using dev HS256 verifier")
		verifier = authapi.NewDevVerifier(cfg.Auth.DevSecret)
	default:
		return fmt.Errorf("auth.url or auth.dev_secret must be configured")
	}

	if cfg.Redis.Addr != "" {
		redisClient := goredis.NewClient(&goredis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		cacheTTL := config.TTLDuration(cfg.Auth.CacheTTL, time.Minute)
		verifier = infraredis.NewTokenCache(redisClient, verifier, cacheTTL)
	}

	var stores app.StoreProvider
	if cfg.Postgres.URL != "" {
		stores = postgres.NewStore(postgres.NewDB(cfg.Postgres.URL))
	} else {
		log.Printf("no postgres configured, using in-memory store with sample questions")
		memStore := memory.NewStore()
		memStore.SeedQuestions(sampleQuestions())
		stores = memStore
	}

	service := app.NewQuizService(cfg.Quiz.QuestionsPerAttempt)
	router := transport.NewRouter(service, stores, verifier)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Printf("starting quiz service on :%s", finalPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("failed to start server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Println("shutting down server...")
	case <-ctx.Done():
		log.Println("context canceled, shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
