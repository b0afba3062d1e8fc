package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

type CreateEventRequest struct {
	GroupID   string    `json:"groupId"`
	SideA     string    `json:"sideA"`
	SideB     string    `json:"sideB"`
	StartTime time.Time `json:"startTime"`
	EndTime   time.Time `json:"endTime"`
}

type UpdateEventRequest struct {
	SideA     string    `json:"sideA"`
	SideB     string    `json:"sideB"`
	StartTime time.Time `json:"startTime"`
	EndTime   time.Time `json:"endTime"`
}

type PlaceWagerRequest struct {
	EventID    string          `json:"eventId"`
	SideChoice string          `json:"sideChoice"` // nome do lado, ex: "Team Rocket"
	Amount     decimal.Decimal `json:"amount"`
}

type SettleEventRequest struct {
	WinningSide string `json:"winningSide"` // nome declarado do vencedor
}
