package app

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/stockoms/internal/domain"
	healthcheck "github.com/vladislavdragonenkov/stockoms/internal/health"
	"github.com/vladislavdragonenkov/stockoms/internal/service/orders"
	"github.com/vladislavdragonenkov/stockoms/internal/storage/memory"
	"github.com/vladislavdragonenkov/stockoms/internal/storage/postgres"
	"github.com/vladislavdragonenkov/stockoms/internal/transport/httpapi"
	"github.com/vladislavdragonenkov/stockoms/internal/version"
)

// Config описывает минимальные настройки запуска приложения.
type Config struct {
	HTTPAddr    string
	MetricsAddr string
	// PostgresDSN — строка подключения; пустая означает in-memory хранилище
	// с посевом демонстрационного каталога.
	PostgresDSN string
}

// DefaultConfig возвращает базовые адреса API и HTTP-метрик.
func DefaultConfig() Config {
	return Config{
		HTTPAddr:    ":8080",
		MetricsAddr: ":9090",
	}
}

// repositories собирает весь набор хранилищ, с которым работает сервис.
type repositories struct {
	orders      domain.OrderRepository
	products    domain.ProductRepository
	orderReader domain.OrderReadRepository
	catalog     domain.ProductReadRepository
	timeline    domain.TimelineRepository
}

// Run запускает сервис заказов и блокируется до отмены контекста или
// фатальной ошибки сервера.
func Run(ctx context.Context, cfg Config) error {
	logger := log.WithField("component", "app")

	healthHandler := healthcheck.NewHandler(version.String())

	repos, cleanup, err := initStorage(ctx, cfg, logger, healthHandler)
	if err != nil {
		return err
	}
	defer cleanup()

	svc := orders.NewService(
		repos.orders,
		repos.products,
		repos.orderReader,
		repos.catalog,
		repos.timeline,
		orders.DefaultRetryConfig(),
		logger.WithField("layer", "orders"),
	)

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	httpapi.NewHandler(svc, logger.WithField("layer", "httpapi")).Register(router)

	metricsSrv := startMetricsServer(ctx, cfg.MetricsAddr, logger, healthHandler)
	apiSrv := &http.Server{Addr: cfg.HTTPAddr, Handler: router}

	errCh := make(chan error, 1)
	go func() {
		logger.Infof("HTTP API listening on %s", cfg.HTTPAddr)
		errCh <- apiSrv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received, stopping HTTP API")
		shutdownHTTP(apiSrv, logger)
		shutdownHTTP(metricsSrv, logger)
		return ctx.Err()
	case err := <-errCh:
		shutdownHTTP(metricsSrv, logger)
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// initStorage выбирает реализацию хранилища по конфигурации и регистрирует
// её health-проверку.
func initStorage(ctx context.Context, cfg Config, logger *log.Entry, healthHandler *healthcheck.Handler) (repositories, func(), error) {
	if cfg.PostgresDSN == "" {
		logger.Info("postgres DSN is not set, using in-memory storage")

		store := memory.NewStore()
		repos := repositories{
			orders:      memory.NewOrderRepository(store),
			products:    memory.NewProductRepository(store),
			orderReader: memory.NewOrderReadRepository(store),
			catalog:     memory.NewProductReadRepository(store),
			timeline:    memory.NewTimelineRepository(),
		}
		if err := seedCatalog(repos.products, logger); err != nil {
			return repositories{}, nil, err
		}
		healthHandler.RegisterCheck("storage", func() error { return nil })

		return repos, func() {}, nil
	}

	store, err := postgres.Open(ctx, cfg.PostgresDSN)
	if err != nil {
		return repositories{}, nil, err
	}
	if err := store.EnsureSchema(ctx); err != nil {
		_ = store.Close()
		return repositories{}, nil, err
	}
	logger.Info("postgres storage initialized, schema is up to date")

	repos := repositories{
		orders:      postgres.NewOrderRepository(store),
		products:    postgres.NewProductRepository(store),
		orderReader: postgres.NewOrderReadRepository(store),
		catalog:     postgres.NewProductReadRepository(store),
		timeline:    postgres.NewTimelineRepository(store),
	}
	healthHandler.RegisterCheck("storage", func() error {
		return store.Ping(context.Background())
	})

	cleanup := func() {
		if err := store.Close(); err != nil {
			logger.WithError(err).Warn("close postgres store failed")
		}
	}
	return repos, cleanup, nil
}

// startMetricsServer запускает HTTP-обработчик /metrics и health-эндпоинты.
func startMetricsServer(ctx context.Context, addr string, logger *log.Entry, healthHandler *healthcheck.Handler) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/healthz", healthHandler)
	mux.HandleFunc("/livez", healthcheck.LivenessHandler)
	mux.HandleFunc("/readyz", healthHandler.ReadinessHandler)

	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		logger.Infof("metrics available at %s/metrics", addr)
		logger.Infof("health checks: %s/healthz, %s/livez, %s/readyz", addr, addr, addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Warn("metrics server failed")
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownHTTP(srv, logger)
	}()

	return srv
}

// shutdownHTTP аккуратно останавливает HTTP-сервер.
func shutdownHTTP(srv *http.Server, logger *log.Entry) {
	if srv == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.WithError(err).Warn("http shutdown with error")
	}
}
