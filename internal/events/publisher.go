package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"
)

// MessagePersistedEvent is emitted after a message crosses the durability
// boundary. Downstream consumers (analytics, mobile push) feed off it; the
// send path never depends on publish success.
type MessagePersistedEvent struct {
	MessageID  string    `json:"message_id"`
	ChatID     string    `json:"chat_id"`
	SenderID   string    `json:"sender_id"`
	ReceiverID string    `json:"receiver_id"`
	DateSent   time.Time `json:"date_sent"`
}

type Publisher interface {
	MessagePersisted(ctx context.Context, evt MessagePersistedEvent) error
	Close() error
}

type kafkaPublisher struct {
	writer *kafka.Writer
}

func NewKafkaPublisher(brokers []string, topic string) Publisher {
	w := &kafka.Writer{
		Addr:     kafka.TCP(brokers...),
		Topic:    topic,
		Balancer: &kafka.LeastBytes{},
	}
	return &kafkaPublisher{writer: w}
}

func (p *kafkaPublisher) MessagePersisted(ctx context.Context, evt MessagePersistedEvent) error {
	value, err := json.Marshal(evt)
	if err != nil {
		return err
	}
	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(evt.ChatID),
		Value: value,
		Time:  time.Now(),
	})
}

func (p *kafkaPublisher) Close() error {
	return p.writer.Close()
}
