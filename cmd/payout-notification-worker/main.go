package main

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	pnDto "github.com/radieske/group-bet-platform-poc/internal/payout-notification/dto"
	"github.com/radieske/group-bet-platform-poc/internal/settlement-service/repo"
	scache "github.com/radieske/group-bet-platform-poc/internal/shared/cache"
	"github.com/radieske/group-bet-platform-poc/internal/shared/config"
	"github.com/radieske/group-bet-platform-poc/internal/shared/db"
	"github.com/radieske/group-bet-platform-poc/internal/shared/kafka"
	"github.com/radieske/group-bet-platform-poc/internal/shared/logger"
	"github.com/radieske/group-bet-platform-poc/internal/shared/metrics"
)

func main() {
	cfg := config.Load()
	log, err := logger.New("payout-notification-worker", cfg.Env)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	// Postgres para trilha de auditoria das notificações
	pg, err := db.ConnectPostgres(cfg.PostgresDSN)
	if err != nil {
		log.Fatal("pg connect", zap.Error(err))
	}
	defer pg.Close()

	// Redis para o ranking de ganhos por usuário
	rdb, err := scache.ConnectRedis(cfg.RedisAddr)
	if err != nil {
		log.Fatal("redis connect", zap.Error(err))
	}
	defer rdb.Close()

	// Kafka consumer: consome event_settled
	reader := kafka.NewReader(cfg.KafkaBrokers, cfg.TopicEventSettled, "payout-notification")
	defer reader.Close()

	// DLQ para mensagens envenenadas
	var dlqWriter *kafkago.Writer
	if cfg.TopicEventSettledDLQ != "" {
		dlqWriter = kafka.NewWriter(cfg.KafkaBrokers, cfg.TopicEventSettledDLQ)
		defer dlqWriter.Close()
	}

	// metrics/health
	metrics.StartMetricsServer(cfg.MetricsPort, func(ctx context.Context) error {
		if err := pg.PingContext(ctx); err != nil {
			return err
		}
		return rdb.Ping(ctx).Err()
	})

	log.Info("payout-notification-worker started",
		zap.String("consume", cfg.TopicEventSettled),
		zap.String("leaderboard", cfg.RedisLeaderboardKey),
	)

	store := repo.NewPostgres(pg)
	ctx := context.Background()

	// Loop principal: consome liquidações e materializa notificações + ranking
	for {
		msg, err := reader.ReadMessage(ctx)
		if err != nil {
			log.Warn("kafka read", zap.Error(err))
			time.Sleep(time.Second)
			continue
		}

		var settled pnDto.EventSettled
		if jerr := json.Unmarshal(msg.Value, &settled); jerr != nil {
			log.Error("unmarshal event_settled", zap.Error(jerr))
			if dlqWriter != nil {
				_ = kafka.WriteJSON(ctx, dlqWriter, string(msg.Key), msg.Value)
			}
			continue
		}

		if err := processOne(ctx, log, store, rdb, cfg, &settled); err != nil {
			log.Error("process settlement", zap.String("eventId", settled.EventID), zap.Error(err))
			// Backoff simples para evitar flood em caso de erro
			time.Sleep(500 * time.Millisecond)
		}
	}
}

// processOne materializa os efeitos de uma liquidação fora do caminho crítico:
// 1. Incrementa o ranking de ganhos de cada usuário creditado (ZINCRBY)
// 2. Grava a notificação de pagamento para auditoria
// Estornos não entram no ranking: não há ganho líquido.
func processOne(
	ctx context.Context,
	log *zap.Logger,
	store *repo.Postgres,
	rdb *redis.Client,
	cfg config.Config,
	settled *pnDto.EventSettled,
) error {
	for _, c := range settled.Credits {
		amount, err := decimal.NewFromString(c.Amount)
		if err != nil {
			log.Warn("bad credit amount",
				zap.String("eventId", settled.EventID),
				zap.String("userId", c.UserID),
				zap.String("amount", c.Amount),
			)
			continue
		}

		if !settled.Refunded {
			score, _ := amount.Float64()
			if err := rdb.ZIncrBy(ctx, cfg.RedisLeaderboardKey, score, c.UserID).Err(); err != nil {
				return err
			}
		}

		if err := store.InsertNotification(ctx, settled.EventID, c.UserID, amount); err != nil {
			return err
		}
	}

	// mantém o ranking limitado às maiores posições
	if n, err := rdb.ZCard(ctx, cfg.RedisLeaderboardKey).Result(); err == nil && n > int64(cfg.LeaderboardMaxEntries) {
		_ = rdb.ZRemRangeByRank(ctx, cfg.RedisLeaderboardKey, 0, n-int64(cfg.LeaderboardMaxEntries)-1).Err()
	}

	log.Info("settlement processed",
		zap.String("eventId", settled.EventID),
		zap.String("winningSide", settled.WinningSide),
		zap.Bool("refunded", settled.Refunded),
		zap.Int("credits", len(settled.Credits)),
	)
	return nil
}
