package kafka

import (
	"context"
	"errors"
	"time"

	"github.com/segmentio/kafka-go"
)

var ErrDisabled = errors.New("kafka disabled")

type Message struct {
	Key   string
	Value []byte
}

// Producer writes to a single topic. A Producer with no brokers is disabled.
type Producer struct {
	brokers []string
	writer  *kafka.Writer
}

func NewProducer(brokers []string, topic string) *Producer {
	p := &Producer{brokers: brokers}
	if len(brokers) == 0 {
		return p
	}
	p.writer = &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
		BatchTimeout:           50 * time.Millisecond,
		WriteTimeout:           5 * time.Second,
	}
	return p
}

func (p *Producer) Enabled() bool {
	return p != nil && p.writer != nil
}

func (p *Producer) Publish(ctx context.Context, msgs ...Message) error {
	if !p.Enabled() {
		return ErrDisabled
	}
	if len(msgs) == 0 {
		return nil
	}
	now := time.Now().UTC()
	out := make([]kafka.Message, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, kafka.Message{Key: []byte(m.Key), Value: m.Value, Time: now})
	}
	return p.writer.WriteMessages(ctx, out...)
}

func (p *Producer) Close() error {
	if !p.Enabled() {
		return nil
	}
	return p.writer.Close()
}
