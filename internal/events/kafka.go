package events

import (
	"context"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	kafkago "github.com/segmentio/kafka-go"
)

// KafkaPublisher writes activity to a Kafka topic keyed by user id, so one
// user's events stay ordered within a partition.
type KafkaPublisher struct {
	writer *kafkago.Writer
}

func NewKafkaPublisher(brokers []string, topic string) (*KafkaPublisher, error) {
	if len(brokers) == 0 {
		return nil, fmt.Errorf("kafka publisher requires at least one broker")
	}
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireOne,
		BatchTimeout: 50 * time.Millisecond,
		WriteTimeout: 2 * time.Second,
		MaxAttempts:  3,
	}
	return &KafkaPublisher{writer: w}, nil
}

func (p *KafkaPublisher) Publish(ctx context.Context, activities ...Activity) error {
	if len(activities) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, len(activities))
	for i := range activities {
		msg, err := serializeToMessage(activities[i])
		if err != nil {
			return err
		}
		msgs[i] = msg
	}
	return p.writer.WriteMessages(ctx, msgs...)
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

func serializeToMessage(a Activity) (kafkago.Message, error) {
	data, err := json.Marshal(a)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize activity: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(a.UserID),
		Value: data,
		Time:  a.OccurredAt,
		Headers: []kafkago.Header{
			{Key: "event_type", Value: []byte(a.Type)},
		},
	}, nil
}
