package server

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"transflow/cache"
	"transflow/config"
	"transflow/core/auth"
	"transflow/core/spotify"
	"transflow/db"
	"transflow/logger"
	"transflow/model"
	"transflow/repository"

	"github.com/gorilla/mux"
)

// Start initializes and starts the HTTP server.
func Start() {
	cfg := config.Load()

	logger.InitLogger(logger.Config{
		Level:      logger.LogLevel(cfg.LogLevel),
		OutputPath: cfg.LogPath,
		MaxSize:    100,
		MaxBackups: 3,
		MaxAge:     28,
		Compress:   true,
	})

	auth.Init(cfg.JWTSecret, cfg.JWTExpiry)

	server := &http.Server{
		Addr:         cfg.ListenAddr,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Connect to the database.
	if err := db.ConnectGormDB(cfg); err != nil {
		logger.Fatal("Failed to connect to database", logger.ErrorField(err))
	}
	defer db.CloseGormDB()

	if err := db.AutoMigrateModels(
		&model.User{},
		&model.Transition{},
		&model.Rating{},
		&model.Favorite{},
	); err != nil {
		logger.Fatal("Failed to migrate database", logger.ErrorField(err))
	}

	// Connect to Redis. The rating cache degrades to direct aggregation
	// when Redis is unavailable, so this is not fatal.
	var ratingCache *cache.RatingCache
	if err := db.ConnectRedis(cfg); err != nil {
		logger.Warn("Failed to connect to Redis, rating cache disabled", logger.ErrorField(err))
	} else {
		defer db.CloseRedis()
		ratingCache = cache.NewRatingCache(db.RedisClient)
		logger.Info("Successfully connected to Redis")
	}

	userRepo := repository.NewGormUserRepository(db.GormDB)
	transitionRepo := repository.NewGormTransitionRepository(db.GormDB)
	ratingRepo := repository.NewGormRatingRepository(db.GormDB)
	favoriteRepo := repository.NewGormFavoriteRepository(db.GormDB)

	spotifyClient := spotify.NewClient(cfg.SpotifyClientID, cfg.SpotifyClientSecret)

	apiHandler := NewAPIHandler(userRepo, transitionRepo, ratingRepo, favoriteRepo, ratingCache, spotifyClient, cfg)

	router := mux.NewRouter()
	router.Use(corsMiddleware)
	router.Use(requestLogMiddleware)

	// Authentication.
	router.HandleFunc("/api/auth/register", apiHandler.RegisterHandler).Methods(http.MethodPost)
	router.HandleFunc("/api/auth/login", apiHandler.LoginHandler).Methods(http.MethodPost)

	// Transitions.
	router.HandleFunc("/api/transitions", apiHandler.ListTransitionsHandler).Methods(http.MethodGet)
	router.HandleFunc("/api/transitions", apiHandler.AuthMiddleware(apiHandler.CreateTransitionHandler)).Methods(http.MethodPost)
	router.HandleFunc("/api/transitions/mine", apiHandler.AuthMiddleware(apiHandler.MyTransitionsHandler)).Methods(http.MethodGet)
	router.HandleFunc("/api/transitions/{id}", apiHandler.OptionalAuthMiddleware(apiHandler.GetTransitionHandler)).Methods(http.MethodGet)
	router.HandleFunc("/api/transitions/{id}/rating", apiHandler.AuthMiddleware(apiHandler.RateTransitionHandler)).Methods(http.MethodPost)
	router.HandleFunc("/api/transitions/{id}/favorite", apiHandler.AuthMiddleware(apiHandler.AddFavoriteHandler)).Methods(http.MethodPut)
	router.HandleFunc("/api/transitions/{id}/favorite", apiHandler.AuthMiddleware(apiHandler.RemoveFavoriteHandler)).Methods(http.MethodDelete)

	// Favorites, recommendations, achievements, analytics.
	router.HandleFunc("/api/favorites", apiHandler.AuthMiddleware(apiHandler.ListFavoritesHandler)).Methods(http.MethodGet)
	router.HandleFunc("/api/recommendations", apiHandler.AuthMiddleware(apiHandler.RecommendationsHandler)).Methods(http.MethodGet)
	router.HandleFunc("/api/achievements", apiHandler.AuthMiddleware(apiHandler.AchievementsHandler)).Methods(http.MethodGet)
	router.HandleFunc("/api/analytics", apiHandler.AuthMiddleware(apiHandler.AnalyticsHandler)).Methods(http.MethodGet)

	// Spotify integration.
	router.HandleFunc("/api/spotify/search", apiHandler.AuthMiddleware(apiHandler.SpotifySearchHandler)).Methods(http.MethodGet)
	router.HandleFunc("/api/playlists/export", apiHandler.AuthMiddleware(apiHandler.ExportPlaylistHandler)).Methods(http.MethodPost)

	// Health.
	router.HandleFunc("/api/health", apiHandler.HealthHandler(pingDatabase, pingRedis)).Methods(http.MethodGet)

	server.Handler = router

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Server starting", logger.String("addr", cfg.ListenAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", logger.ErrorField(err))
		}
	}()

	<-stop
	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", logger.ErrorField(err))
	}

	logger.Info("Server stopped")
}

// corsMiddleware applies permissive CORS headers for the web frontend.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS, HEAD")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Spotify-Token")
		w.Header().Set("Access-Control-Max-Age", "86400") // 24 hours

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// requestLogMiddleware logs each request with its duration.
func requestLogMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		logger.Debug("Request handled",
			logger.String("method", r.Method),
			logger.String("path", r.URL.Path),
			logger.Duration("duration", time.Since(start)))
	})
}

// pingDatabase checks database liveness for the health endpoint.
func pingDatabase(ctx context.Context) error {
	sqlDB, err := db.GormDB.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// pingRedis checks Redis liveness for the health endpoint.
func pingRedis(ctx context.Context) error {
	if db.RedisClient == nil {
		return nil
	}
	return db.RedisClient.Ping(ctx).Err()
}
