package repo

import (
	"time"

	"github.com/shopspring/decimal"
)

// Side identifica um dos dois lados de um evento.
type Side string

const (
	SideA Side = "SIDE_A"
	SideB Side = "SIDE_B"
)

// Status de uma aposta. Enumeração fechada: PENDING é o estado inicial,
// WON/LOST são terminais e gravados exatamente uma vez pela liquidação.
const (
	WagerPending = "PENDING"
	WagerWon     = "WON"
	WagerLost    = "LOST"
)

// Event é o modelo persistido no Postgres.
type Event struct {
	ID          string
	GroupID     string
	SideA       string
	SideB       string
	SideAScore  *int
	SideBScore  *int
	StartTime   time.Time
	EndTime     time.Time
	Completed   bool
	OrganizerID *string // NULL quando o organizador saiu do grupo
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// SideOf mapeia o nome declarado para SIDE_A/SIDE_B.
// Retorna false quando o nome não é nenhum dos dois lados do evento.
func (e *Event) SideOf(name string) (Side, bool) {
	switch name {
	case e.SideA:
		return SideA, true
	case e.SideB:
		return SideB, true
	}
	return "", false
}

// Wager é o modelo persistido no Postgres.
type Wager struct {
	ID         string
	EventID    string
	UserID     string
	SideChoice Side
	Amount     decimal.Decimal
	Status     string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
