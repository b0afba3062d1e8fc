package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/radieske/group-bet-platform-poc/internal/settlement-service/cache"
	shttp "github.com/radieske/group-bet-platform-poc/internal/settlement-service/http"
	"github.com/radieske/group-bet-platform-poc/internal/settlement-service/producer"
	"github.com/radieske/group-bet-platform-poc/internal/settlement-service/repo"
	"github.com/radieske/group-bet-platform-poc/internal/settlement-service/service"
	scache "github.com/radieske/group-bet-platform-poc/internal/shared/cache"
	"github.com/radieske/group-bet-platform-poc/internal/shared/config"
	"github.com/radieske/group-bet-platform-poc/internal/shared/db"
	"github.com/radieske/group-bet-platform-poc/internal/shared/kafka"
	"github.com/radieske/group-bet-platform-poc/internal/shared/logger"
	"github.com/radieske/group-bet-platform-poc/internal/shared/metrics"
)

func main() {
	cfg := config.Load()

	// Inicializa logger estruturado
	log, err := logger.New("settlement-service", cfg.Env)
	if err != nil {
		panic(err)
	}
	defer log.Sync()
	log.Info("starting service", zap.String("env", cfg.Env))

	// Postgres
	pg, err := db.ConnectPostgres(cfg.PostgresDSN)
	if err != nil {
		log.Fatal("postgres connect", zap.Error(err))
	}
	defer pg.Close()

	// Redis (snapshot do pool por evento)
	rdb, err := scache.ConnectRedis(cfg.RedisAddr)
	if err != nil {
		log.Fatal("redis connect", zap.Error(err))
	}
	defer rdb.Close()

	// Kafka writers (publicação pós-commit)
	settledWriter := kafka.NewWriter(cfg.KafkaBrokers, cfg.TopicEventSettled)
	defer settledWriter.Close()
	placedWriter := kafka.NewWriter(cfg.KafkaBrokers, cfg.TopicWagerPlaced)
	defer placedWriter.Close()

	// deps
	store := repo.NewPostgres(pg)
	poolCache := cache.New(rdb, cfg.RedisPoolCachePrefix, time.Duration(cfg.PoolCacheTTLSeconds)*time.Second)
	publ := producer.NewKafkaPublisher(settledWriter, placedWriter)
	svc := service.New(log, store, poolCache, publ)

	// HTTP público
	api := shttp.NewServer(log, svc)
	apiSrv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler: api.Router(),
	}

	// metrics/health
	metrics.StartMetricsServer(cfg.MetricsPort, func(ctx context.Context) error {
		if err := pg.PingContext(ctx); err != nil {
			return err
		}
		return rdb.Ping(ctx).Err()
	})
	log.Info("metrics/health", zap.String("addr", ":"+cfg.MetricsPort))

	log.Info("settlement-service listening", zap.String("addr", fmt.Sprintf(":%s", cfg.HTTPPort)))
	if err := apiSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal("api", zap.Error(err))
	}
}
