package main

import (
	"context"
	"database/sql"
	"sync"
	"sync/atomic"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"dineline_reviews/internal/adapters/observability"
	redisad "dineline_reviews/internal/adapters/redis"
	"dineline_reviews/internal/adapters/yelp"
	"dineline_reviews/internal/app"
	"dineline_reviews/internal/shared"
	mysqlrepo "dineline_reviews/internal/storage/mysql"
)

// ingestor warms the Yelp review cache for WARM_RESTAURANT_IDS.
func main() {
	ctx := context.Background()
	cfg := shared.Load()

	log.Logger = observability.NewLogger(cfg.AppEnv)

	log.Info().
		Str("base", cfg.YelpBase).
		Int("workers", cfg.Workers).
		Int("restaurants", len(cfg.RestaurantIDs)).
		Msg("cache warmer starting")

	if len(cfg.RestaurantIDs) == 0 {
		log.Warn().Msg("WARM_RESTAURANT_IDS is empty; nothing to do")
		return
	}

	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("sql.Open failed")
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		log.Fatal().Err(err).Msg("db.Ping failed")
	}
	log.Info().Msg("db ping ok")

	repo := mysqlrepo.New(db)

	client, err := yelp.New(cfg.YelpBase, cfg.YelpKey, cfg.YelpRPS)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize Yelp client")
	}
	cache := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	defer cache.Close()

	warm := app.NewWarmService(repo, client, cache, cfg.CacheTTL)
	sem := semaphore.NewWeighted(int64(max(cfg.Workers, 1)))
	var wg sync.WaitGroup
	var failed atomic.Int64

	for _, id := range cfg.RestaurantIDs {
		// acquire before launching the goroutine; release inside it
		if err := sem.Acquire(ctx, 1); err != nil {
			log.Fatal().Err(err).Msg("semaphore acquire failed")
		}

		wg.Add(1)
		go func(restaurantID int64) {
			defer wg.Done()
			defer sem.Release(1)

			n, err := warm.WarmRestaurant(ctx, restaurantID)
			if err != nil {
				failed.Add(1)
				log.Warn().Int64("id", restaurantID).Err(err).Msg("warm failed")
				return
			}
			log.Info().Int64("id", restaurantID).Int("reviews", n).Msg("warm ok")
		}(id)
	}

	wg.Wait()
	log.Info().Int64("failed", failed.Load()).Msg("cache warm completed")
}
