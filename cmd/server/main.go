package main

import (
	"context"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"

	"opensocial/internal/config"
	"opensocial/internal/db"
	"opensocial/internal/logger"
	"opensocial/internal/ratelimit"
	rdb "opensocial/internal/redis"
	"opensocial/internal/router"
	"opensocial/internal/services"
)

func main() {
	cfg := config.Load()
	logger.Init(cfg.Env)
	log := logger.Get()

	conn, err := db.Init(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("database init failed")
	}
	log.Info().Msg("database connection established")

	// The limiter falls back to process-local state when redis is not
	// configured, which is fine for a single node.
	var store ratelimit.Store
	if cfg.RedisAddr != "" {
		client, err := rdb.NewClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			log.Fatal().Err(err).Msg("redis init failed")
		}
		store = ratelimit.NewRedisStore(client)
		log.Info().Str("addr", cfg.RedisAddr).Msg("redis connected")
	} else {
		store = ratelimit.NewMemoryStore()
		log.Warn().Msg("redis not configured, rate limits are per-process")
	}
	limiter := ratelimit.NewLimiter(store)

	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.Default()

	sessionStore := cookie.NewStore([]byte(cfg.SessionSecret))
	r.Use(sessions.Sessions("opensocial_session", sessionStore))

	router.RegisterRoutes(r, conn, limiter, &cfg)

	services.NewRankingService(conn).StartScheduled(context.Background())

	log.Info().Str("port", cfg.Port).Msg("server starting")
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}
