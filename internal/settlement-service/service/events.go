package service

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/radieske/group-bet-platform-poc/internal/settlement-service/dto"
	"github.com/radieske/group-bet-platform-poc/internal/settlement-service/lifecycle"
	"github.com/radieske/group-bet-platform-poc/internal/settlement-service/repo"
)

var titleCaser = cases.Title(language.Und)

func mapGuardErr(err error) error {
	switch {
	case errors.Is(err, lifecycle.ErrUnauthorized):
		return ErrUnauthorized
	case errors.Is(err, lifecycle.ErrInvalidTimeWindow):
		return ErrInvalidTimeWindow
	default:
		return err
	}
}

// CreateEvent registra um novo evento de dois lados.
// Nomes dos lados são normalizados em title case antes de persistir.
func (s *Service) CreateEvent(ctx context.Context, req dto.CreateEventRequest, organizerID string) (string, error) {
	if !req.StartTime.Before(req.EndTime) {
		return "", ErrInvalidTimeWindow
	}

	e := &repo.Event{
		GroupID:     req.GroupID,
		SideA:       titleCaser.String(req.SideA),
		SideB:       titleCaser.String(req.SideB),
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		OrganizerID: &organizerID,
	}
	id, err := s.store.CreateEvent(ctx, e)
	if err != nil {
		return "", mapStorageErr(err)
	}

	s.log.Info("event created", zap.String("eventId", id), zap.String("organizerId", organizerID))
	return id, nil
}

// UpdateEvent altera um evento ainda não iniciado; só o organizador pode.
func (s *Service) UpdateEvent(ctx context.Context, eventID, requesterID string, req dto.UpdateEventRequest) error {
	event, err := s.store.GetEvent(ctx, eventID)
	if err != nil {
		return mapStorageErr(err)
	}

	if err := lifecycle.GuardEdit(event, requesterID, time.Now()); err != nil {
		return mapGuardErr(err)
	}
	if !req.StartTime.Before(req.EndTime) {
		return ErrInvalidTimeWindow
	}

	event.SideA = titleCaser.String(req.SideA)
	event.SideB = titleCaser.String(req.SideB)
	event.StartTime = req.StartTime
	event.EndTime = req.EndTime

	if err := s.store.UpdateEvent(ctx, event); err != nil {
		return mapStorageErr(err)
	}

	// lados renomeados mudam os rótulos do snapshot
	if err := s.cache.Invalidate(ctx, eventID); err != nil {
		s.log.Warn("pool cache invalidate", zap.String("eventId", eventID), zap.Error(err))
	}

	s.log.Info("event updated", zap.String("eventId", eventID), zap.String("requesterId", requesterID))
	return nil
}

// DeleteEvent remove um evento antes do início ou depois do fim;
// as apostas caem junto por cascata.
func (s *Service) DeleteEvent(ctx context.Context, eventID, requesterID string) error {
	event, err := s.store.GetEvent(ctx, eventID)
	if err != nil {
		return mapStorageErr(err)
	}

	if err := lifecycle.GuardDelete(event, requesterID, time.Now()); err != nil {
		return mapGuardErr(err)
	}

	if err := s.store.DeleteEvent(ctx, eventID); err != nil {
		return mapStorageErr(err)
	}

	if err := s.cache.Invalidate(ctx, eventID); err != nil {
		s.log.Warn("pool cache invalidate", zap.String("eventId", eventID), zap.Error(err))
	}

	s.log.Info("event deleted", zap.String("eventId", eventID), zap.String("requesterId", requesterID))
	return nil
}

// EventDetail retorna o evento com o snapshot do pool (total e ganhos
// potenciais por participante), servido do cache quando possível.
func (s *Service) EventDetail(ctx context.Context, eventID string) (*dto.EventDetailResponse, error) {
	event, err := s.store.GetEvent(ctx, eventID)
	if err != nil {
		return nil, mapStorageErr(err)
	}

	resp := &dto.EventDetailResponse{Event: toEventResponse(event)}

	var cached dto.PoolSnapshot
	if hit, err := s.cache.Get(ctx, eventID, &cached); err == nil && hit {
		resp.Pool = cached
		return resp, nil
	} else if err != nil {
		s.log.Warn("pool cache get", zap.String("eventId", eventID), zap.Error(err))
	}

	wagers, err := s.store.ListWagersByEvent(ctx, eventID)
	if err != nil {
		return nil, mapStorageErr(err)
	}

	resp.Pool = buildPoolSnapshot(event, wagers)

	if err := s.cache.Set(ctx, eventID, resp.Pool); err != nil {
		s.log.Warn("pool cache set", zap.String("eventId", eventID), zap.Error(err))
	}
	return resp, nil
}

func toEventResponse(e *repo.Event) dto.EventResponse {
	out := dto.EventResponse{
		EventID:   e.ID,
		GroupID:   e.GroupID,
		SideA:     e.SideA,
		SideB:     e.SideB,
		StartTime: e.StartTime,
		EndTime:   e.EndTime,
		Completed: e.Completed,
	}
	if e.OrganizerID != nil {
		out.OrganizerID = *e.OrganizerID
	}
	return out
}

func buildPoolSnapshot(event *repo.Event, wagers []repo.EventWager) dto.PoolSnapshot {
	snap := dto.PoolSnapshot{
		EventID:      event.ID,
		TotalPool:    decimal.Zero,
		Participants: make([]dto.PoolParticipant, 0, len(wagers)),
	}

	sideTotals := map[repo.Side]decimal.Decimal{
		repo.SideA: decimal.Zero,
		repo.SideB: decimal.Zero,
	}
	for _, w := range wagers {
		snap.TotalPool = snap.TotalPool.Add(w.Amount)
		sideTotals[w.SideChoice] = sideTotals[w.SideChoice].Add(w.Amount)
	}

	sideLabels := map[repo.Side]string{repo.SideA: event.SideA, repo.SideB: event.SideB}
	for _, w := range wagers {
		own := sideTotals[w.SideChoice]
		other := snap.TotalPool.Sub(own)

		// sem pool oposto não há ganho líquido (cenário de estorno)
		gain := decimal.Zero
		if other.IsPositive() && own.IsPositive() {
			gain = w.Amount.Mul(other).Div(own).RoundBank(2)
		}

		snap.Participants = append(snap.Participants, dto.PoolParticipant{
			UserID:        w.UserID,
			Username:      w.Username,
			SideChoice:    sideLabels[w.SideChoice],
			Amount:        w.Amount,
			PotentialGain: gain,
			Status:        w.Status,
		})
	}
	return snap
}
