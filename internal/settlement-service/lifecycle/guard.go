// Package lifecycle concentra as regras de janela de tempo e posse que
// liberam (ou não) a mutação de um evento.
package lifecycle

import (
	"errors"
	"time"

	"github.com/radieske/group-bet-platform-poc/internal/settlement-service/repo"
)

var (
	ErrUnauthorized      = errors.New("requester is not the event organizer")
	ErrInvalidTimeWindow = errors.New("operation not allowed in the current time window")
)

// CanEdit permite edição apenas antes do início do evento.
func CanEdit(e *repo.Event, now time.Time) bool {
	return now.Before(e.StartTime)
}

// CanDelete permite remoção antes do início ou depois do fim;
// nunca com o evento em andamento.
func CanDelete(e *repo.Event, now time.Time) bool {
	return now.Before(e.StartTime) || now.After(e.EndTime)
}

// Authorize exige que o solicitante seja o organizador do evento.
// Organizador nulo (dono removido do grupo) nega qualquer solicitante.
func Authorize(e *repo.Event, requesterID string) error {
	if e.OrganizerID == nil || *e.OrganizerID != requesterID {
		return ErrUnauthorized
	}
	return nil
}

// GuardEdit combina posse + janela pra edição.
func GuardEdit(e *repo.Event, requesterID string, now time.Time) error {
	if err := Authorize(e, requesterID); err != nil {
		return err
	}
	if !CanEdit(e, now) {
		return ErrInvalidTimeWindow
	}
	return nil
}

// GuardDelete combina posse + janela pra remoção.
func GuardDelete(e *repo.Event, requesterID string, now time.Time) error {
	if err := Authorize(e, requesterID); err != nil {
		return err
	}
	if !CanDelete(e, now) {
		return ErrInvalidTimeWindow
	}
	return nil
}
