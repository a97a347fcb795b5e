// Command server streams live tournament progress. Runner processes publish
// events to redis; the server relays them to WebSocket viewers and serves
// stored results from postgres.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/ItayH27/tanks-game-simulation/internal/auth"
	"github.com/ItayH27/tanks-game-simulation/internal/config"
	"github.com/ItayH27/tanks-game-simulation/internal/handler"
	"github.com/ItayH27/tanks-game-simulation/internal/logger"
	"github.com/ItayH27/tanks-game-simulation/internal/middleware"
	"github.com/ItayH27/tanks-game-simulation/internal/progress"
	"github.com/ItayH27/tanks-game-simulation/internal/repository"
	"github.com/ItayH27/tanks-game-simulation/internal/repository/postgres"
	redisrepo "github.com/ItayH27/tanks-game-simulation/internal/repository/redis"
)

func main() {
	logger.Init()
	cfg := config.Load()
	if path := os.Getenv("TANKS_CONFIG"); path != "" {
		fileCfg, err := config.LoadFile(path)
		if err != nil {
			log.Fatal().Err(err).Msg("Config load failed")
		}
		cfg = fileCfg
	}
	log.Info().
		Bool("database", cfg.DatabaseURL != "").
		Bool("redis", cfg.RedisURL != "").
		Msg("Config loaded")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// WebSocket hub
	wsHub := handler.NewHub()

	// Results store (optional)
	var repo repository.TournamentRepository
	if cfg.DatabaseURL != "" {
		db, err := postgres.Connect(cfg.DatabaseURL)
		if err != nil {
			log.Fatal().Err(err).Msg("Database connection failed")
		}
		defer db.Close()
		repo = postgres.NewTournamentRepo(db)
	}

	// Live progress (optional)
	var cache repository.ProgressCache
	if cfg.RedisURL != "" {
		redisClient, err := redisrepo.NewClient(cfg.RedisURL)
		if err != nil {
			log.Fatal().Err(err).Msg("Redis connection failed")
		}
		defer redisClient.Close()
		cache = redisClient
		go progress.NewRelay(redisClient.Underlying(), wsHub).Start(ctx)
	} else {
		log.Warn().Msg("REDIS_URL not set, live progress disabled")
	}

	// Auth
	jwtMgr := auth.NewJWTManager(cfg.JWTSecret)

	// Handlers
	tournamentHandler := handler.NewTournamentHandler(repo, cache, jwtMgr)
	wsHandler := handler.NewWSHandler(wsHub, jwtMgr)

	// Router
	mux := http.NewServeMux()
	authMw := auth.Middleware(jwtMgr)

	mux.HandleFunc("GET /healthz", handler.Health)

	// Protected API routes
	api := http.NewServeMux()
	api.HandleFunc("GET /tournaments/{id}", tournamentHandler.GetTournament)
	api.HandleFunc("GET /tournaments/{id}/standings", tournamentHandler.GetStandings)
	api.HandleFunc("POST /tournaments/{id}/viewers", tournamentHandler.CreateViewerToken)

	mux.Handle("/api/v1/", http.StripPrefix("/api/v1", authMw(api)))

	// WebSocket (auth via query param, not middleware)
	mux.HandleFunc("GET /api/v1/ws", wsHandler.ServeWS)

	// Apply global middleware
	root := middleware.Chain(mux, middleware.Logger, middleware.Recover, middleware.CORS("*"))

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      root,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server")

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("Server shutdown error")
	}
	log.Info().Msg("Server stopped")
}
