package service

import (
	"errors"
	"fmt"

	"github.com/radieske/group-bet-platform-poc/internal/settlement-service/repo"
)

// Taxonomia de falhas exposta ao chamador. Violações de regra de negócio
// voltam como erros tipados; só falha genuína de storage vira
// ErrStorageFailure (sempre com rollback, nunca com efeito parcial).
var (
	ErrEventNotFound       = errors.New("event not found")
	ErrUnauthorized        = errors.New("requester is not the event organizer")
	ErrInvalidWinner       = errors.New("declared winner is not one of the event sides")
	ErrInvalidSide         = errors.New("side choice is not one of the event sides")
	ErrAlreadySettled      = errors.New("event already settled")
	ErrEmptyPool           = errors.New("no wagers placed on this event")
	ErrWagerExists         = errors.New("user already has a wager on this event")
	ErrInsufficientFunds   = errors.New("insufficient funds")
	ErrInvalidAmount       = errors.New("wager amount must be positive")
	ErrInvalidTimeWindow   = errors.New("operation not allowed in the current time window")
	ErrTransactionConflict = errors.New("transaction conflict, retry")
	ErrStorageFailure      = errors.New("storage failure")
)

// mapStorageErr traduz erros do repositório pra taxonomia do serviço.
func mapStorageErr(err error) error {
	switch {
	case errors.Is(err, repo.ErrNotFound):
		return ErrEventNotFound
	case errors.Is(err, repo.ErrAlreadySettled):
		return ErrAlreadySettled
	case errors.Is(err, repo.ErrWagerExists):
		return ErrWagerExists
	case errors.Is(err, repo.ErrInsufficientFunds):
		return ErrInsufficientFunds
	case repo.IsRetryableTxError(err):
		return fmt.Errorf("%w: %v", ErrTransactionConflict, err)
	default:
		return fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}
}
