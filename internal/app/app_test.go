package app

import (
	"context"
	"io"
	"testing"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/stockoms/internal/domain"
	healthcheck "github.com/vladislavdragonenkov/stockoms/internal/health"
	"github.com/vladislavdragonenkov/stockoms/internal/storage/memory"
)

func testAppLogger() *log.Entry {
	logger := log.New()
	logger.SetOutput(io.Discard)
	return logger.WithField("component", "app-test")
}

func TestDefaultConfig(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	if cfg.HTTPAddr != ":8080" {
		t.Fatalf("unexpected default HTTP addr: %s", cfg.HTTPAddr)
	}
	if cfg.MetricsAddr != ":9090" {
		t.Fatalf("unexpected default metrics addr: %s", cfg.MetricsAddr)
	}
	if cfg.PostgresDSN != "" {
		t.Fatalf("expected empty DSN by default, got %s", cfg.PostgresDSN)
	}
}

func TestSeedCatalog(t *testing.T) {
	t.Parallel()

	store := memory.NewStore()
	products := memory.NewProductRepository(store)

	if err := seedCatalog(products, testAppLogger()); err != nil {
		t.Fatalf("seed catalog: %v", err)
	}

	product, err := products.Get("prod-keyboard")
	if err != nil {
		t.Fatalf("get seeded product: %v", err)
	}
	if product.Available <= 0 || product.UnitPriceMinor <= 0 {
		t.Fatalf("seeded product has no usable stock or price: %+v", product)
	}

	// Повторный посев в тот же каталог — ошибка, а не тихая перезапись.
	if err := seedCatalog(products, testAppLogger()); err == nil {
		t.Fatal("expected error on double seed")
	}
}

func TestInitStorage_MemoryMode(t *testing.T) {
	t.Parallel()

	healthHandler := healthcheck.NewHandler("")
	repos, cleanup, err := initStorage(context.Background(), Config{}, testAppLogger(), healthHandler)
	if err != nil {
		t.Fatalf("init memory storage: %v", err)
	}
	defer cleanup()

	if repos.orders == nil || repos.products == nil || repos.orderReader == nil ||
		repos.catalog == nil || repos.timeline == nil {
		t.Fatalf("incomplete repository set: %+v", repos)
	}

	// Каталог посеян и доступен через read-путь.
	found, err := repos.catalog.GetByIDs([]string{"prod-keyboard", "prod-mouse"})
	if err != nil {
		t.Fatalf("catalog lookup: %v", err)
	}
	if len(found) != 2 {
		t.Fatalf("expected 2 seeded products, got %d", len(found))
	}

	if _, err := repos.orders.Get("missing"); !domain.IsNotFound(err) {
		t.Fatalf("expected not found from fresh storage, got %v", err)
	}
}
