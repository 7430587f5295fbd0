package cli

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"quizdeck-service/internal/app"
	"quizdeck-service/internal/auth"
	"quizdeck-service/internal/config"
	"quizdeck-service/internal/infra/memory"
	pgstore "quizdeck-service/internal/infra/postgres"
	redisstore "quizdeck-service/internal/infra/redis"
	"quizdeck-service/internal/notify"
	transport "quizdeck-service/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the quiz platform server",
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

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		pool, err = pgstore.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer pool.Close()
	}

	var (
		users    app.UserRepository
		quizzes  app.QuizRepository
		attempts app.AttemptRepository
	)
	if pool != nil {
		users = pgstore.NewUserRepository(pool)
		quizzes = pgstore.NewQuizRepository(pool)
		attempts = pgstore.NewAttemptRepository(pool)
	} else {
		users = memory.NewUserRepository()
		quizzes = memory.NewQuizRepository()
		attempts = memory.NewAttemptRepository()
	}

	var cache app.Cache
	var revocations auth.RevocationList
	if redisClient != nil {
		cache = redisstore.NewCache(redisClient)
		revocations = redisstore.NewRevocationList(redisClient)
	} else {
		cache = memory.NewCache()
		revocations = memory.NewRevocationList()
	}

	tokenTTL := config.Duration(cfg.Auth.TokenTTL, 24*time.Hour)
	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, tokenTTL, revocations)

	var mailer app.Mailer
	if cfg.SMTP.Host != "" {
		mailer = notify.NewSMTPMailer(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.From, cfg.SMTP.Username, cfg.SMTP.Password)
	} else {
		mailer = notify.LogMailer{}
	}

	hub := notify.NewHub()

	lockout := app.LockoutPolicy{
		Threshold:    cfg.Auth.LockoutThreshold,
		LockDuration: config.Duration(cfg.Auth.LockoutDuration, 15*time.Minute),
	}
	if lockout.Threshold <= 0 {
		lockout.Threshold = 3
	}

	cacheTTL := config.Duration(cfg.Quiz.CacheTTL, 10*time.Minute)
	scoringDelay := config.Duration(cfg.Quiz.ScoringDelay, 2*time.Second)

	accountSvc := app.NewAccountService(users, tokens, mailer, lockout)
	quizSvc := app.NewQuizService(quizzes, cache, cacheTTL, hub)

	worker := app.NewScoreWorker(attempts, users, hub, mailer, scoringDelay)
	worker.Start(4)
	defer worker.Stop()

	attemptSvc := app.NewAttemptService(attempts, quizSvc, users, worker)
	reportSvc := app.NewReportService(attemptSvc, mailer, notify.BuildQuizReportPDF)

	uploadDir := cfg.Server.UploadDir
	if uploadDir == "" {
		uploadDir = "uploads"
	}
	baseURL := cfg.Server.BaseURL
	if baseURL == "" {
		baseURL = "http://localhost:" + finalPort
	}

	handlers := transport.Handlers{
		Auth:     transport.NewAuthHandler(accountSvc),
		Users:    transport.NewUserHandler(accountSvc),
		Quizzes:  transport.NewQuizHandler(quizSvc, accountSvc, reportSvc),
		Attempts: transport.NewAttemptHandler(attemptSvc),
		Uploads:  transport.NewUploadHandler(accountSvc, uploadDir, baseURL),
		WS:       transport.NewWSHandler(tokens, hub),
	}

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      transport.NewRouter(tokens, handlers, uploadDir),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Printf("starting quizdeck service on :%s", finalPort)
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
