package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"rideshare-backend/internal/config"
	"rideshare-backend/internal/db"
	"rideshare-backend/internal/middleware"
	"rideshare-backend/internal/routes"
	"rideshare-backend/internal/services"
	"rideshare-backend/internal/websocket"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func setupLogger(format string) {
	var handler slog.Handler
	if format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, nil)
	} else {
		handler = slog.NewTextHandler(os.Stdout, nil)
	}
	slog.SetDefault(slog.New(handler))
}

// openStore выбирает хранилище: Postgres по умолчанию, память для локального запуска
func openStore(cfg config.Config) (db.Store, error) {
	if cfg.Storage == "memory" {
		slog.Warn("используется хранилище в памяти, данные не сохраняются между перезапусками")
		return db.NewMemoryStore(), nil
	}

	conn, err := db.ConnectPostgres(cfg)
	if err != nil {
		return nil, err
	}
	if err := db.Migrate(conn); err != nil {
		return nil, err
	}
	return db.NewGormStore(conn), nil
}

func openCache(cfg config.Config) *db.TripsCache {
	if !cfg.CacheEnabled {
		return db.NewTripsCache(nil, 0)
	}
	client, err := db.NewRedisClient(cfg)
	if err != nil {
		slog.Warn("Redis недоступен, продолжаем без кэширования", "error", err)
		return db.NewTripsCache(nil, 0)
	}
	slog.Info("успешное подключение к Redis")
	return db.NewTripsCache(client, cfg.TripsCacheTTL)
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Файл .env не найден, используем переменные окружения")
	}

	cfg := config.Load()
	setupLogger(cfg.LogFormat)

	// Устанавливаем режим релиза для продакшена
	if cfg.GinMode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	if cfg.JWTSecret == "" {
		slog.Error("JWT_SECRET не задан")
		os.Exit(1)
	}

	store, err := openStore(cfg)
	if err != nil {
		slog.Error("ошибка подключения к хранилищу", "error", err)
		os.Exit(1)
	}

	cache := openCache(cfg)
	defer cache.Close()

	// Запускаем WebSocket менеджер
	manager := websocket.NewWebSocketManager()
	manager.Start()
	defer manager.Stop()
	notifier := websocket.NewStatusNotifier(manager)

	bookings := services.NewBookingAggregator(store, cache)
	deps := routes.Deps{
		Trips:     services.NewTripService(store, bookings, notifier),
		Requests:  services.NewRequestService(store, bookings, notifier),
		Bookings:  bookings,
		Fleet:     services.NewFleetService(store),
		WebSocket: manager,
		JWTSecret: cfg.JWTSecret,
	}

	r := gin.New()
	r.Use(gin.Logger())
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())

	// Добавляем middleware для сбора метрик
	r.Use(middleware.PrometheusMiddleware())

	// Настройка доверенных прокси
	r.SetTrustedProxies([]string{"127.0.0.1"})

	// Настройка CORS
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	routes.SetupRoutes(r.Group("/api"), deps)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		slog.Info("сервер запущен", "port", cfg.Port, "storage", cfg.Storage)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("ошибка запуска сервера", "error", err)
			os.Exit(1)
		}
	}()

	// Ожидаем сигнал для graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("получен сигнал завершения, закрываем соединения")

	// Даем 30 секунд на завершение текущих запросов
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("ошибка при graceful shutdown", "error", err)
		return
	}
	slog.Info("сервер корректно завершил работу")
}
