package service

import (
	"context"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/radieske/group-bet-platform-poc/internal/settlement-service/repo"
	"github.com/radieske/group-bet-platform-poc/pkg/contracts/events"
)

// Store é o contrato de persistência consumido pelo orquestrador.
type Store interface {
	CreateEvent(ctx context.Context, e *repo.Event) (string, error)
	GetEvent(ctx context.Context, eventID string) (*repo.Event, error)
	UpdateEvent(ctx context.Context, e *repo.Event) error
	DeleteEvent(ctx context.Context, eventID string) error
	ListWagersByEvent(ctx context.Context, eventID string) ([]repo.EventWager, error)
	PlaceWager(ctx context.Context, w *repo.Wager) (string, error)
	ApplySettlement(ctx context.Context, eventID string, winner repo.Side, credits []repo.SettlementCredit) error
	GetBalance(ctx context.Context, userID string) (decimal.Decimal, error)
}

// Publisher publica os eventos de integração depois do commit;
// nenhuma chamada externa acontece dentro da transação.
type Publisher interface {
	PublishEventSettled(ctx context.Context, e events.EventSettled) error
	PublishWagerPlaced(ctx context.Context, e events.WagerPlaced) error
}

// SnapshotCache guarda o snapshot do pool por evento.
type SnapshotCache interface {
	Get(ctx context.Context, eventID string, dst any) (bool, error)
	Set(ctx context.Context, eventID string, v any) error
	Invalidate(ctx context.Context, eventID string) error
}

// Service orquestra eventos, apostas e liquidação.
type Service struct {
	log   *zap.Logger
	store Store
	cache SnapshotCache
	publ  Publisher
}

func New(log *zap.Logger, store Store, cache SnapshotCache, publ Publisher) *Service {
	return &Service{log: log, store: store, cache: cache, publ: publ}
}
