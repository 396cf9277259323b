package app

import (
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/stockoms/internal/domain"
)

// seedCatalog наполняет in-memory каталог демонстрационными товарами.
// Ядро сервиса предполагает, что товары существуют до создания заказов,
// поэтому dev-режим обязан поставить каталог сам.
func seedCatalog(products domain.ProductRepository, logger *log.Entry) error {
	now := time.Now().UTC()

	seed := []domain.Product{
		{ID: "prod-keyboard", Name: "Mechanical keyboard", UnitPriceMinor: 459900, Available: 25},
		{ID: "prod-mouse", Name: "Wireless mouse", UnitPriceMinor: 129900, Available: 40},
		{ID: "prod-monitor", Name: "27-inch monitor", UnitPriceMinor: 2199900, Available: 10},
		{ID: "prod-headset", Name: "USB headset", UnitPriceMinor: 349900, Available: 15},
		{ID: "prod-dock", Name: "USB-C dock", UnitPriceMinor: 899900, Available: 8},
	}

	for i := range seed {
		seed[i].CreatedAt = now
		seed[i].UpdatedAt = now
		if err := products.Create(seed[i]); err != nil {
			return fmt.Errorf("seed product %s: %w", seed[i].ID, err)
		}
	}

	logger.WithField("products", len(seed)).Info("demo catalog seeded")
	return nil
}
