package membershipservice

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"

	"github.com/mediacareers/membership-service/internal/cache"
	"github.com/mediacareers/membership-service/internal/config"
	libRabbitmq "github.com/mediacareers/membership-service/internal/lib/rabbitmq"
	"github.com/mediacareers/membership-service/internal/migrations"
	"github.com/mediacareers/membership-service/internal/rabbitmq"

	"github.com/mediacareers/membership-service/internal/lib/jwt"
	authservice "github.com/mediacareers/membership-service/internal/services/auth"
	entitlementservice "github.com/mediacareers/membership-service/internal/services/entitlement"
	"github.com/mediacareers/membership-service/internal/storage/repository"
)

// App инкапсулирует HTTP-сервер и внешние соединения сервиса членства.
type App struct {
	server *http.Server
	logger *slog.Logger
	db     *repository.Storage
	cache  *cache.Cache
}

// New создает приложение: подключает хранилище, кеш и брокер,
// применяет миграции и собирает маршруты.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, err
	}
	if err = migrations.Run(db.DB, cfg.MigrationsPath); err != nil {
		return nil, err
	}

	cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		return nil, err
	}

	rabbitConn, err := rabbitmq.Connect(cfg.RabbitConnectionString, 5, 3*time.Second)
	if err != nil {
		return nil, err
	}
	rabbitChannel, err := libRabbitmq.SetupChannel(rabbitConn, libRabbitmq.GetNotificationQueues())
	if err != nil {
		return nil, err
	}
	notifier := libRabbitmq.NewNotifier(rabbitChannel)

	jwtMaker := jwt.NewJWTMaker(cfg.JWTSecretKey, cfg.TokenTTL)
	auth := authservice.NewAuthService(db, jwtMaker)
	entitlements := entitlementservice.NewEntitlementService(db, cacheRedis, cfg.Membership, logger)

	router := chi.NewRouter()
	RegisterRoutes(router, cfg, logger, auth, entitlements, notifier)

	srv := &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &App{
		server: srv,
		logger: logger,
		db:     db,
		cache:  cacheRedis,
	}, nil
}

// Run запускает сервер и блокируется до остановки контекста или ошибки.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		_ = a.db.DB.Close()
		return err
	}
}
