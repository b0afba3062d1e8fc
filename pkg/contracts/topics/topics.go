package topics

const (
	// Ciclo de vida das apostas
	WagerPlaced = "wager_placed"

	// Liquidação de eventos
	EventSettled = "event_settled"

	// DLQs
	EventSettledDLQ = "event_settled_dlq"
)
