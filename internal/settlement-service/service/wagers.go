package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/radieske/group-bet-platform-poc/internal/settlement-service/dto"
	"github.com/radieske/group-bet-platform-poc/internal/settlement-service/metrics"
	"github.com/radieske/group-bet-platform-poc/internal/settlement-service/repo"
	ev "github.com/radieske/group-bet-platform-poc/pkg/contracts/events"
)

// PlaceWager aposta em um dos lados de um evento ainda aberto.
// O valor sai do saldo do usuário na colocação (escrow) via débito
// atômico condicional; uma aposta por usuário por evento.
func (s *Service) PlaceWager(ctx context.Context, req dto.PlaceWagerRequest, requesterID string) (string, error) {
	if !req.Amount.IsPositive() {
		return "", ErrInvalidAmount
	}

	event, err := s.store.GetEvent(ctx, req.EventID)
	if err != nil {
		return "", mapStorageErr(err)
	}
	if event.Completed {
		return "", ErrAlreadySettled
	}
	if !time.Now().Before(event.StartTime) {
		return "", ErrInvalidTimeWindow
	}

	side, ok := event.SideOf(req.SideChoice)
	if !ok {
		return "", ErrInvalidSide
	}

	id, err := s.store.PlaceWager(ctx, &repo.Wager{
		EventID:    req.EventID,
		UserID:     requesterID,
		SideChoice: side,
		Amount:     req.Amount,
	})
	if err != nil {
		return "", mapStorageErr(err)
	}

	metrics.RecordWagerPlaced()
	s.log.Info("wager placed",
		zap.String("wagerId", id),
		zap.String("eventId", req.EventID),
		zap.String("userId", requesterID),
		zap.String("amount", req.Amount.StringFixed(2)),
	)

	// efeitos externos fora da transação
	if err := s.publ.PublishWagerPlaced(ctx, ev.WagerPlaced{
		WagerID:    id,
		EventID:    req.EventID,
		UserID:     requesterID,
		SideChoice: string(side),
		Amount:     req.Amount.StringFixed(2),
	}); err != nil {
		s.log.Warn("publish wager_placed", zap.String("wagerId", id), zap.Error(err))
	}
	if err := s.cache.Invalidate(ctx, req.EventID); err != nil {
		s.log.Warn("pool cache invalidate", zap.String("eventId", req.EventID), zap.Error(err))
	}

	return id, nil
}

// ListEventWagers lista as apostas de um evento.
func (s *Service) ListEventWagers(ctx context.Context, eventID string) ([]repo.EventWager, error) {
	if _, err := s.store.GetEvent(ctx, eventID); err != nil {
		return nil, mapStorageErr(err)
	}
	wagers, err := s.store.ListWagersByEvent(ctx, eventID)
	if err != nil {
		return nil, mapStorageErr(err)
	}
	return wagers, nil
}

// GetBalance retorna o saldo disponível do usuário.
func (s *Service) GetBalance(ctx context.Context, userID string) (decimal.Decimal, error) {
	bal, err := s.store.GetBalance(ctx, userID)
	if err != nil {
		return decimal.Zero, mapStorageErr(err)
	}
	return bal, nil
}
