package marketdata

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/segmentio/kafka-go"

	"github.com/daemonX10/papertrade/internal/domain"
)

// TickPublisher mirrors every broadcast cycle to a Kafka topic so
// downstream processors can consume the same tick firehose the
// streaming consumers see. It is optional: the hub skips mirroring when
// no publisher is configured.
type TickPublisher struct {
	writer *kafka.Writer
	in     chan []domain.Tick
	logger *slog.Logger
}

// NewTickPublisher creates a publisher for the given broker and topic.
func NewTickPublisher(brokerURL, topic string, logger *slog.Logger) *TickPublisher {
	return &TickPublisher{
		writer: &kafka.Writer{
			Addr:     kafka.TCP(brokerURL),
			Topic:    topic,
			Balancer: &kafka.LeastBytes{},
		},
		in:     make(chan []domain.Tick, 8),
		logger: logger,
	}
}

// Publish enqueues a batch without blocking the hub. Batches are dropped
// when the queue is full; the firehose is best-effort like the stream.
func (p *TickPublisher) Publish(ticks []domain.Tick) {
	select {
	case p.in <- ticks:
	default:
		p.logger.Warn("kafka publisher backlogged, dropping tick batch")
	}
}

// Run writes enqueued batches until ctx is cancelled, then closes the
// writer.
func (p *TickPublisher) Run(ctx context.Context) {
	defer func() {
		if err := p.writer.Close(); err != nil {
			p.logger.Error("kafka writer close", slog.String("error", err.Error()))
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case ticks := <-p.in:
			if err := p.write(ctx, ticks); err != nil {
				p.logger.Error("kafka publish failed", slog.String("error", err.Error()))
			}
		}
	}
}

func (p *TickPublisher) write(ctx context.Context, ticks []domain.Tick) error {
	msgs := make([]kafka.Message, 0, len(ticks))
	for _, tick := range ticks {
		value, err := json.Marshal(tick)
		if err != nil {
			return err
		}
		msgs = append(msgs, kafka.Message{
			Key:   []byte(tick.Symbol),
			Value: value,
		})
	}
	return p.writer.WriteMessages(ctx, msgs...)
}
