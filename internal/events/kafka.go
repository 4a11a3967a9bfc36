package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
)

// KafkaPublisher mirrors ledger events to a Kafka topic for downstream
// consumers (reporting, archival). Best-effort: a broker outage is logged
// and dropped, never surfaced to the payment path.
type KafkaPublisher struct {
	writer *kafka.Writer
	log    zerolog.Logger
}

func NewKafkaPublisher(brokers []string, topic string, log zerolog.Logger) *KafkaPublisher {
	return &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.LeastBytes{},
			RequiredAcks: kafka.RequireOne,
		},
		log: log,
	}
}

func (p *KafkaPublisher) Publish(evt Event) {
	if evt.Name == KeepAlive {
		return
	}

	data, err := json.Marshal(evt)
	if err != nil {
		p.log.Error().Err(err).Str("event", evt.Name).Msg("marshal event")
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		err := p.writer.WriteMessages(ctx, kafka.Message{
			Key:   []byte(evt.TenantID),
			Value: data,
		})
		if err != nil {
			p.log.Warn().Err(err).Str("event", evt.Name).Msg("kafka publish failed")
		}
	}()
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
