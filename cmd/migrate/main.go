package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/stockoms/internal/storage/postgres"
)

const usage = `migrate — управление схемой PostgreSQL.

Команды:
  up      применить все непримененные миграции (или -steps N)
  down    откатить последнюю миграцию (или -steps N)
  status  показать текущую версию схемы

Строка подключения берётся из STOCKOMS_POSTGRES_DSN или флага -dsn.`

func main() {
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})

	var (
		dsn   = flag.String("dsn", "", "строка подключения к PostgreSQL")
		steps = flag.Int("steps", 0, "количество шагов миграции (0 = все для up, 1 для down)")
	)
	flag.Usage = func() {
		fmt.Fprintln(os.Stderr, usage)
		fmt.Fprintln(os.Stderr)
		flag.PrintDefaults()
	}
	flag.Parse()

	command := strings.ToLower(strings.TrimSpace(flag.Arg(0)))
	if command == "" {
		flag.Usage()
		os.Exit(2)
	}

	connString := strings.TrimSpace(*dsn)
	if connString == "" {
		connString = strings.TrimSpace(os.Getenv("STOCKOMS_POSTGRES_DSN"))
	}
	if connString == "" {
		log.Fatal("строка подключения не задана: используйте -dsn или STOCKOMS_POSTGRES_DSN")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	store, err := postgres.Open(ctx, connString)
	if err != nil {
		log.WithError(err).Fatal("не удалось подключиться к PostgreSQL")
	}
	defer func() {
		_ = store.Close()
	}()

	switch command {
	case "up":
		if err := store.MigrateUp(ctx, *steps); err != nil {
			log.WithError(err).Fatal("миграция up завершилась с ошибкой")
		}
		version, count, err := store.MigrationStatus(ctx)
		if err != nil {
			log.WithError(err).Fatal("не удалось прочитать статус миграций")
		}
		log.WithFields(log.Fields{"version": version, "applied": count}).Info("миграции применены")
	case "down":
		if err := store.MigrateDown(ctx, *steps); err != nil {
			log.WithError(err).Fatal("миграция down завершилась с ошибкой")
		}
		version, count, err := store.MigrationStatus(ctx)
		if err != nil {
			log.WithError(err).Fatal("не удалось прочитать статус миграций")
		}
		log.WithFields(log.Fields{"version": version, "applied": count}).Info("откат выполнен")
	case "status":
		version, count, err := store.MigrationStatus(ctx)
		if err != nil {
			log.WithError(err).Fatal("не удалось прочитать статус миграций")
		}
		log.WithFields(log.Fields{"version": version, "applied": count}).Info("статус схемы")
	default:
		log.WithField("command", command).Error("неизвестная команда")
		flag.Usage()
		os.Exit(2)
	}
}
