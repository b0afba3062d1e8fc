package dto

import "time"

// EventSettled é a mensagem consumida do tópico event_settled.
// Espelho do contrato em pkg/contracts/events.
type EventSettled struct {
	EventID     string       `json:"eventId"`
	WinningSide string       `json:"winningSide"`
	Refunded    bool         `json:"refunded"`
	Credits     []UserCredit `json:"credits"`
	Ts          time.Time    `json:"ts"`
}

type UserCredit struct {
	UserID string `json:"userId"`
	Amount string `json:"amount"`
}
