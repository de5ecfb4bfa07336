package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"flight-reservation/config"
	"flight-reservation/internal/cache"
	"flight-reservation/internal/database"
	"flight-reservation/internal/handler"
	"flight-reservation/internal/middleware"
	"flight-reservation/internal/notify"
	"flight-reservation/internal/queue"
	"flight-reservation/internal/repository"
	"flight-reservation/internal/seatmap"
	"flight-reservation/internal/service"
	"flight-reservation/internal/worker"
	"flight-reservation/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	log := logger.WithComponent("server")
	defer logger.Sync()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("Failed to load config", zap.Error(err))
	}
	if err := logger.SetLevel(cfg.Log.Level); err != nil {
		log.Warn("Invalid log level, keep default", zap.String("level", cfg.Log.Level))
	}
	if cfg.Auth.JWTSecret == "" {
		log.Fatal("JWT_SECRET is required")
	}
	gin.SetMode(cfg.Server.Mode)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := database.InitDatabase(&cfg.Database)
	if err != nil {
		log.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer pool.Close()

	if cfg.Database.Migrate {
		if err := database.Migrate(ctx, pool); err != nil {
			log.Fatal("Failed to migrate database", zap.Error(err))
		}
	}

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		log.Fatal("Failed to initialize redis", zap.Error(err))
	}
	defer rdb.Close()

	eventQueue, err := newEventQueue(ctx, cfg.Queue, rdb)
	if err != nil {
		log.Fatal("Failed to initialize ticket event queue", zap.Error(err))
	}

	publisher, err := notify.NewPublisher(cfg.Notify)
	if err != nil {
		log.Fatal("Failed to initialize notification publisher", zap.Error(err))
	}
	defer publisher.Close()

	// repositories
	flightRepository := repository.NewFlightRepository(pool)
	seatRepository := repository.NewSeatRepository(pool)
	ticketRepository := repository.NewTicketRepository(pool)

	// services
	availabilityCache := cache.NewFlightAvailabilityCache(rdb, cfg.Booking.AvailabilityTTL)
	catalog := seatmap.NewCatalog(cfg.Booking)

	flightService := service.NewFlightService(pool, flightRepository, seatRepository, ticketRepository, availabilityCache, catalog)
	layoutService := service.NewLayoutService(flightRepository, seatRepository, cfg.Booking.MaxPassengers)
	reservationService := service.NewReservationService(pool, flightRepository, seatRepository, ticketRepository, eventQueue, cfg.Booking.MaxPassengers)
	cancellationService := service.NewCancellationService(pool, flightRepository, seatRepository, ticketRepository, eventQueue)
	ticketService := service.NewTicketService(ticketRepository)

	// worker
	ticketWorker := worker.NewTicketEventWorker(flightService, publisher, eventQueue)
	if err := ticketWorker.Start(ctx); err != nil {
		log.Fatal("Failed to start ticket event worker", zap.Error(err))
	}

	router := gin.New()
	router.Use(gin.Recovery(), middleware.AccessLog())

	handler.NewHealthHandler(map[string]handler.Pinger{
		"postgres": pool,
		"redis":    handler.PingFunc(func(ctx context.Context) error { return rdb.Ping(ctx).Err() }),
	}).RegisterRoutes(router)

	api := router.Group("/api/v1",
		middleware.Timeout(cfg.Server.RequestTimeout),
		middleware.JWTAuth(cfg.Auth.JWTSecret, cfg.Auth.Issuer),
	)
	admin := api.Group("/admin", middleware.RequireRole(middleware.RoleEmployee, middleware.RoleManager))

	handler.NewFlightHandler(flightService, layoutService).RegisterRoutes(api, admin)
	handler.NewBookingHandler(reservationService, cancellationService, ticketService, layoutService).RegisterRoutes(api, admin)

	srv := &http.Server{
		Addr:    cfg.Server.Address,
		Handler: router,
	}

	go func() {
		log.Info("Server listening", zap.String("address", cfg.Server.Address))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server shutdown failed", zap.Error(err))
	}
	ticketWorker.Wait()
}

// newEventQueue 正式環境使用 Redis Stream，開發可切換為記憶體隊列
func newEventQueue(ctx context.Context, cfg config.QueueConfig, rdb *redis.Client) (queue.TicketEventQueue, error) {
	switch cfg.Driver {
	case "memory":
		return queue.NewMemoryTicketEventQueue(cfg.BufferSize, cfg.MaxRetryCount), nil
	default:
		return queue.NewRedisStreamTicketEventQueue(ctx, rdb, cfg.ConsumerID, queue.RedisStreamConfig{
			ClaimMinIdleTime:   cfg.ClaimMinIdleTime,
			MaxRetryCount:      cfg.MaxRetryCount,
			ReadGroupBlockTime: cfg.ReadGroupBlockTime,
		})
	}
}
