package main // Entry point package

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	glog "github.com/labstack/gommon/log"

	"github.com/iliyamo/grand-theater/internal/config"
	"github.com/iliyamo/grand-theater/internal/database"
	"github.com/iliyamo/grand-theater/internal/handler"
	"github.com/iliyamo/grand-theater/internal/middleware"
	"github.com/iliyamo/grand-theater/internal/queue"
	"github.com/iliyamo/grand-theater/internal/repository"
	"github.com/iliyamo/grand-theater/internal/router"
)

func main() {
	_ = godotenv.Load() // a missing .env is fine; the environment wins

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := openStorage(ctx, cfg)
	if err != nil {
		log.Fatalf("storage: %v", err)
	}
	defer closeStore()

	if cfg.SeedFixtures {
		seeded, err := repository.Seed(ctx, store, time.Now())
		if err != nil {
			log.Fatalf("seed: %v", err)
		}
		if seeded {
			log.Printf("seeded %d fixture movies", len(repository.FixtureMovies))
		} else {
			log.Printf("catalog already populated, skipping fixtures")
		}
	}

	rdb := config.NewRedisClient(config.LoadRedisConfig())
	if rdb == nil {
		log.Printf("redis unavailable: response cache and rate limit disabled")
	} else {
		defer rdb.Close()
	}

	broker := config.LoadBrokerConfig()
	var events queue.Publisher = queue.NopPublisher{}
	if broker.Enabled {
		events = queue.NewAMQPPublisher(broker.URL)
		if broker.ConsumerEnabled {
			go func() {
				if err := queue.StartContactConsumer(ctx, broker.URL, broker.ContactLogDir); err != nil && !errors.Is(err, context.Canceled) {
					log.Printf("contact consumer stopped: %v", err)
				}
			}()
		}
	}

	e := echo.New()
	e.HideBanner = true
	if cfg.IsDev() {
		e.Logger.SetLevel(glog.DEBUG)
	} else {
		e.Logger.SetLevel(glog.INFO)
	}
	e.Use(echomw.Recover())
	e.Use(middleware.RequestLogger())

	cacheCfg := config.LoadCacheConfig()
	router.RegisterRoutes(e)
	router.RegisterPublic(e, handler.NewPublicHandler(store, events),
		middleware.NewRedisCache(cacheCfg, rdb),
		middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))
	router.RegisterAdmin(e, handler.NewAdminHandler(store, events),
		middleware.PurgeCacheOnWrite(cacheCfg, rdb))

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s, storage=%s)", addr, cfg.Env, cfg.StorageDriver)

	go func() {
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal(err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}
}

// openStorage builds the backend named by cfg.StorageDriver. The returned
// func releases it.
func openStorage(ctx context.Context, cfg config.Config) (repository.Storage, func(), error) {
	if cfg.StorageDriver != config.DriverMySQL {
		return repository.NewMemStorage(), func() {}, nil
	}
	db, err := database.Open(cfg)
	if err != nil {
		return nil, nil, err
	}
	if err := database.EnsureSchema(ctx, db); err != nil {
		_ = db.Close()
		return nil, nil, err
	}
	return repository.NewMySQLStorage(db), func() { _ = db.Close() }, nil
}
