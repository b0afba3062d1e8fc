package producer

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/radieske/group-bet-platform-poc/pkg/contracts/events"
)

type KafkaPublisher struct {
	SettledWriter *kafka.Writer
	PlacedWriter  *kafka.Writer
}

func NewKafkaPublisher(settled, placed *kafka.Writer) *KafkaPublisher {
	return &KafkaPublisher{SettledWriter: settled, PlacedWriter: placed}
}

func (p *KafkaPublisher) PublishEventSettled(ctx context.Context, e events.EventSettled) error {
	e.Ts = time.Now()
	b, _ := json.Marshal(e)
	return p.SettledWriter.WriteMessages(ctx, kafka.Message{Key: []byte(e.EventID), Value: b})
}

func (p *KafkaPublisher) PublishWagerPlaced(ctx context.Context, e events.WagerPlaced) error {
	e.TsUnixMs = time.Now().UnixMilli()
	b, _ := json.Marshal(e)
	return p.PlacedWriter.WriteMessages(ctx, kafka.Message{Key: []byte(e.EventID), Value: b})
}
