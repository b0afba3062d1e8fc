package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

type EventResponse struct {
	EventID     string    `json:"eventId"`
	GroupID     string    `json:"groupId"`
	SideA       string    `json:"sideA"`
	SideB       string    `json:"sideB"`
	StartTime   time.Time `json:"startTime"`
	EndTime     time.Time `json:"endTime"`
	Completed   bool      `json:"completed"`
	OrganizerID string    `json:"organizerId,omitempty"`
}

// PoolParticipant é a visão de um apostador dentro do snapshot do pool.
// PotentialGain é o ganho líquido estimado caso o lado escolhido vença
// (zero quando o lado oposto não tem apostas — cenário de estorno).
type PoolParticipant struct {
	UserID        string          `json:"userId"`
	Username      string          `json:"username"`
	SideChoice    string          `json:"sideChoice"`
	Amount        decimal.Decimal `json:"amount"`
	PotentialGain decimal.Decimal `json:"potentialGain"`
	Status        string          `json:"status"`
}

type PoolSnapshot struct {
	EventID      string            `json:"eventId"`
	TotalPool    decimal.Decimal   `json:"totalPool"`
	Participants []PoolParticipant `json:"participants"`
}

type EventDetailResponse struct {
	Event EventResponse `json:"event"`
	Pool  PoolSnapshot  `json:"pool"`
}

type WagerResponse struct {
	WagerID string `json:"wagerId"`
	Status  string `json:"status"`
}

type CreditEntry struct {
	UserID   string          `json:"userId"`
	Username string          `json:"username,omitempty"`
	Credit   decimal.Decimal `json:"credit"`
}

type SettlementResponse struct {
	EventID        string        `json:"eventId"`
	WinningSide    string        `json:"winningSide"`
	Refunded       bool          `json:"refunded"`
	AlreadySettled bool          `json:"alreadySettled,omitempty"`
	Credits        []CreditEntry `json:"credits,omitempty"`
}

type BalanceResponse struct {
	UserID         string          `json:"userId"`
	AvailableFunds decimal.Decimal `json:"availableFunds"`
}
