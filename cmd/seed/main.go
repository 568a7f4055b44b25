// Command seed loads a products JSON file into the configured document
// store. The file is an array of catalog products:
//
//	[{"id": "p1", "name": "...", "price": "100", "image": "...",
//	  "category": "...", "description": "...", "stock": 10}]
package main

import (
	"context"
	"encoding/json"
	"flag"
	"os"

	"github.com/rs/zerolog/log"

	"github.com/jarodlopez/homemartshop/internal/config"
	"github.com/jarodlopez/homemartshop/internal/infrastructure/store"
	logx "github.com/jarodlopez/homemartshop/pkg/logger"
)

func main() {
	path := flag.String("file", "products.json", "path to the products JSON file")
	flag.Parse()

	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	logx.Init(cfg.Environment)

	data, err := os.ReadFile(*path)
	if err != nil {
		log.Fatal().Err(err).Str("file", *path).Msg("failed to read products file")
	}

	var products []store.Product
	if err := json.Unmarshal(data, &products); err != nil {
		log.Fatal().Err(err).Msg("failed to parse products file")
	}

	docs, closeStore, err := store.FromConfig(ctx, cfg.Store)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize document store")
	}
	defer closeStore()

	for _, p := range products {
		if err := docs.PutProduct(ctx, p); err != nil {
			log.Fatal().Err(err).Str("product_id", p.ID).Msg("failed to seed product")
		}
		log.Info().Str("product_id", p.ID).Str("name", p.Name).Msg("seeded")
	}
	log.Info().Int("count", len(products)).Msg("catalog seeded")
}
