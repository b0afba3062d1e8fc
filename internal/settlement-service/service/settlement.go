package service

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/radieske/group-bet-platform-poc/internal/settlement-service/engine"
	"github.com/radieske/group-bet-platform-poc/internal/settlement-service/metrics"
	"github.com/radieske/group-bet-platform-poc/internal/settlement-service/repo"
	ev "github.com/radieske/group-bet-platform-poc/pkg/contracts/events"
)

// UserCredit é um crédito não nulo aplicado a um usuário na liquidação.
type UserCredit struct {
	UserID   string
	Username string
	Credit   decimal.Decimal
}

// SettlementResult resume uma liquidação bem-sucedida.
type SettlementResult struct {
	EventID     string
	WinningSide string // nome declarado do lado vencedor
	Refunded    bool   // true quando o pool degenerou em estorno
	Credits     []UserCredit
}

// SettleEvent liquida um evento exatamente uma vez:
//
//	Open → (validações) → Settling (só durante a transação) → Completed
//
// Validações, nesta ordem: evento existe, solicitante é o organizador,
// evento ainda aberto, vencedor declarado é um dos dois lados, pool não
// vazio. Depois computa o plano de pagamento com o engine (função pura) e
// aplica tudo numa única transação via repo.ApplySettlement. Se a transação
// abortar, o evento permanece aberto — liquidação parcial nunca é
// observável. Publicação Kafka e invalidação de cache só após o commit.
func (s *Service) SettleEvent(ctx context.Context, eventID, requesterID, declaredWinner string) (*SettlementResult, error) {
	start := time.Now()

	event, err := s.store.GetEvent(ctx, eventID)
	if err != nil {
		return nil, mapStorageErr(err)
	}

	if event.OrganizerID == nil || *event.OrganizerID != requesterID {
		return nil, ErrUnauthorized
	}

	// Gate monotônico: evento liquidado nunca reabre. Resultado benigno,
	// não um alarme.
	if event.Completed {
		metrics.RecordSettlement("idempotent", "none", 0, start)
		return nil, ErrAlreadySettled
	}

	winner, ok := event.SideOf(declaredWinner)
	if !ok {
		return nil, ErrInvalidWinner
	}

	eventWagers, err := s.store.ListWagersByEvent(ctx, eventID)
	if err != nil {
		return nil, mapStorageErr(err)
	}
	if len(eventWagers) == 0 {
		return nil, ErrEmptyPool
	}

	wagers := make([]repo.Wager, len(eventWagers))
	usernames := make(map[string]string, len(eventWagers))
	for i, w := range eventWagers {
		wagers[i] = w.Wager
		usernames[w.UserID] = w.Username
	}

	plan, err := engine.ComputePayouts(wagers, winner)
	if err != nil {
		return nil, ErrEmptyPool
	}

	credits := make([]repo.SettlementCredit, len(plan))
	for i, ins := range plan {
		credits[i] = repo.SettlementCredit{
			WagerID: ins.WagerID,
			UserID:  ins.UserID,
			Credit:  ins.Credit,
			Refund:  ins.Refund,
		}
	}

	if err := s.store.ApplySettlement(ctx, eventID, winner, credits); err != nil {
		mapped := mapStorageErr(err)
		if errors.Is(mapped, ErrAlreadySettled) {
			// corrida: outra liquidação venceu o flip de completed
			metrics.RecordSettlement("idempotent", "none", 0, start)
			return nil, ErrAlreadySettled
		}
		metrics.RecordSettlement("fail", "none", 0, start)
		return nil, mapped
	}

	result := &SettlementResult{
		EventID:     eventID,
		WinningSide: declaredWinner,
		Refunded:    plan[0].Refund,
	}
	total := decimal.Zero
	for _, ins := range plan {
		if !ins.Credit.IsPositive() {
			continue
		}
		total = total.Add(ins.Credit)
		result.Credits = append(result.Credits, UserCredit{
			UserID:   ins.UserID,
			Username: usernames[ins.UserID],
			Credit:   ins.Credit,
		})
	}

	mode := "proportional"
	if result.Refunded {
		mode = "refund"
	}
	payout, _ := total.Float64()
	metrics.RecordSettlement("success", mode, payout, start)

	s.log.Info("event settled",
		zap.String("eventId", eventID),
		zap.String("winningSide", declaredWinner),
		zap.Bool("refunded", result.Refunded),
		zap.Int("wagers", len(plan)),
		zap.String("totalCredited", total.StringFixed(2)),
	)

	// efeitos externos só depois do commit
	msg := ev.EventSettled{
		EventID:     eventID,
		WinningSide: declaredWinner,
		Refunded:    result.Refunded,
	}
	for _, c := range result.Credits {
		msg.Credits = append(msg.Credits, ev.UserCredit{UserID: c.UserID, Amount: c.Credit.StringFixed(2)})
	}
	if err := s.publ.PublishEventSettled(ctx, msg); err != nil {
		s.log.Warn("publish event_settled", zap.String("eventId", eventID), zap.Error(err))
	}
	if err := s.cache.Invalidate(ctx, eventID); err != nil {
		s.log.Warn("pool cache invalidate", zap.String("eventId", eventID), zap.Error(err))
	}

	return result, nil
}
