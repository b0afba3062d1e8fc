package events

import "time"

// Evento emitido pelo settlement-service após o commit da liquidação.
type EventSettled struct {
	EventID     string       `json:"eventId"`
	WinningSide string       `json:"winningSide"` // nome do lado vencedor declarado
	Refunded    bool         `json:"refunded"`    // true quando a liquidação degenerou em estorno
	Credits     []UserCredit `json:"credits"`
	Ts          time.Time    `json:"ts"`
}

type UserCredit struct {
	UserID string `json:"userId"`
	Amount string `json:"amount"` // decimal serializado como string
}
