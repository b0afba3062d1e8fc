package events

type WagerPlaced struct {
	WagerID    string `json:"wager_id"`
	EventID    string `json:"event_id"`
	UserID     string `json:"user_id"`
	SideChoice string `json:"side_choice"` // "SIDE_A" | "SIDE_B"
	Amount     string `json:"amount"`      // decimal serializado como string
	TsUnixMs   int64  `json:"ts_unix_ms"`
}
