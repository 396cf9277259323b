package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"strings"
	"syscall"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/stockoms/internal/app"
)

const (
	envHTTPAddr    = "STOCKOMS_HTTP_ADDR"
	envMetricsAddr = "STOCKOMS_METRICS_ADDR"
	envPostgresDSN = "STOCKOMS_POSTGRES_DSN"
	envLogLevel    = "STOCKOMS_LOG_LEVEL"
)

// envLookup абстрагирует os.LookupEnv для тестируемости чтения конфигурации.
type envLookup func(key string) (string, bool)

// setupLogger настраивает формат и уровень логирования для сервиса.
func setupLogger(lookup envLookup) {
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	log.SetLevel(log.InfoLevel)

	if v, ok := lookup(envLogLevel); ok {
		level, err := log.ParseLevel(strings.TrimSpace(v))
		if err != nil {
			log.WithField("value", v).Warn("unknown log level, keeping info")
			return
		}
		log.SetLevel(level)
	}
}

// readConfigFromEnv формирует конфигурацию приложения, позволяя переопределить
// адреса и хранилище через переменные окружения.
func readConfigFromEnv(lookup envLookup) app.Config {
	cfg := app.DefaultConfig()
	if v, ok := lookup(envHTTPAddr); ok && strings.TrimSpace(v) != "" {
		cfg.HTTPAddr = strings.TrimSpace(v)
	}
	if v, ok := lookup(envMetricsAddr); ok && strings.TrimSpace(v) != "" {
		cfg.MetricsAddr = strings.TrimSpace(v)
	}
	if v, ok := lookup(envPostgresDSN); ok && strings.TrimSpace(v) != "" {
		cfg.PostgresDSN = strings.TrimSpace(v)
	}
	return cfg
}

func main() {
	setupLogger(os.LookupEnv)
	cfg := readConfigFromEnv(os.LookupEnv)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.WithFields(log.Fields{
		"http_addr":    cfg.HTTPAddr,
		"metrics_addr": cfg.MetricsAddr,
		"postgres":     cfg.PostgresDSN != "",
	}).Info("запускаем сервис заказов")

	if err := app.Run(ctx, cfg); err != nil && !errors.Is(err, context.Canceled) {
		log.WithError(err).Fatal("приложение завершилось с ошибкой")
	}

	log.Info("сервис заказов остановлен")
}
