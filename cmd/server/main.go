package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"lifelog/internal/db"
	"lifelog/internal/generation"
	"lifelog/internal/handlers"
	mw "lifelog/internal/middleware"
	"lifelog/internal/normalize"
	"lifelog/internal/retrieval"
	"lifelog/internal/taxonomy"
)

func mustGetenv(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func main() {
	_ = godotenv.Load()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		slog.Error("DATABASE_URL is required")
		os.Exit(1)
	}

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		slog.Error("JWT_SECRET is required")
		os.Exit(1)
	}

	port := mustGetenv("PORT", "8080")

	dbConn, err := sqlx.Open("pgx", databaseURL)
	if err != nil {
		slog.Error("failed to open db", slog.Any("err", err))
		os.Exit(1)
	}
	dbConn.SetMaxOpenConns(10)
	dbConn.SetConnMaxLifetime(2 * time.Hour)
	if err = dbConn.Ping(); err != nil {
		slog.Error("failed to ping db", slog.Any("err", err))
		os.Exit(1)
	}
	if err := db.RunMigrations(dbConn); err != nil {
		slog.Error("failed migrations", slog.Any("err", err))
		os.Exit(1)
	}

	zapLogger, err := zap.NewProduction()
	if os.Getenv("APP_ENV") == "development" {
		zapLogger, err = zap.NewDevelopment()
	}
	if err != nil {
		slog.Error("failed to build request logger", slog.Any("err", err))
		os.Exit(1)
	}
	defer zapLogger.Sync()

	llmCfg := generation.FromEnv()
	var llm generation.Client
	if llmCfg.APIKey == "" {
		slog.Warn("LLM_API_KEY not set; auto logging and chat are disabled")
	} else {
		llm = generation.NewOpenAIClient(llmCfg)
	}

	resolver := taxonomy.NewResolver(dbConn)
	saver := normalize.NewSaver(dbConn, resolver)
	engine := retrieval.NewEngine(dbConn)

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(mw.ZapRequestLogger(zapLogger))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	authHandler := handlers.NewAuthHandler(dbConn, []byte(jwtSecret))
	logsHandler := handlers.NewLogsHandler(saver, engine, llm)
	chatHandler := handlers.NewChatHandler(dbConn, engine, llm)
	taxonomyHandler := handlers.NewTaxonomyHandler(dbConn)
	statsHandler := handlers.NewStatsHandler(dbConn)
	goalsHandler := handlers.NewGoalsHandler(dbConn)
	authMW := mw.NewAuthMiddleware([]byte(jwtSecret))

	r.Route("/api", func(api chi.Router) {
		api.Post("/auth/signup", authHandler.Signup)
		api.Post("/auth/login", authHandler.Login)
		api.Group(func(pr chi.Router) {
			pr.Use(authMW.RequireAuth)
			pr.Post("/logs", logsHandler.Create)
			pr.Post("/logs/auto", logsHandler.AutoCreate)
			pr.Get("/logs", logsHandler.List)
			pr.Get("/logs/search", logsHandler.Search)
			pr.Get("/logs/recent", logsHandler.Recent)
			pr.Post("/chat", chatHandler.Converse)
			pr.Get("/domains", taxonomyHandler.ListDomains)
			pr.Get("/domains/{id}/activities", taxonomyHandler.ListActivities)
			pr.Get("/stats/overview", statsHandler.Overview)
			pr.Post("/goals", goalsHandler.Create)
			pr.Get("/goals", goalsHandler.List)
		})
	})

	srv := &http.Server{Addr: ":" + port, Handler: r}
	go func() {
		slog.Info("server starting", slog.String("addr", ":"+port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", slog.Any("err", err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("shutdown initiated")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctx)
	slog.Info("server stopped")
}
