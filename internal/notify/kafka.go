package notify

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/twmb/franz-go/pkg/kgo"

	"avgverzoek/internal/accessrequest/models"
)

// Producer is the subset of *kgo.Client the notifier uses.
type Producer interface {
	ProduceSync(ctx context.Context, rs ...*kgo.Record) kgo.ProduceResults
}

// KafkaNotifier publishes status changes keyed by access request ID, so all
// changes to one request land on one partition in order.
type KafkaNotifier struct {
	producer Producer
	topic    string
	logger   *slog.Logger
}

func NewKafkaNotifier(producer Producer, topic string, logger *slog.Logger) *KafkaNotifier {
	return &KafkaNotifier{producer: producer, topic: topic, logger: logger}
}

func (n *KafkaNotifier) NotifyStatusChanged(ctx context.Context, event models.StatusChanged) error {
	payload, err := encodeStatusChanged(event)
	if err != nil {
		return fmt.Errorf("encode status change: %w", err)
	}
	record := &kgo.Record{
		Topic: n.topic,
		Key:   []byte(event.AccessRequestID.String()),
		Value: payload,
		Headers: []kgo.RecordHeader{
			{Key: "event_type", Value: []byte("access_request.status_changed")},
		},
	}
	if err := n.producer.ProduceSync(ctx, record).FirstErr(); err != nil {
		return fmt.Errorf("produce status change: %w", err)
	}
	n.logger.DebugContext(ctx, "status change published",
		"access_request_id", event.AccessRequestID.String(),
		"topic", n.topic,
	)
	return nil
}

// LogNotifier writes status changes to the log. Used when no brokers are
// configured.
type LogNotifier struct {
	logger *slog.Logger
}

func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) NotifyStatusChanged(ctx context.Context, event models.StatusChanged) error {
	n.logger.InfoContext(ctx, "access request status changed",
		"access_request_id", event.AccessRequestID.String(),
		"company_id", event.CompanyID.String(),
		"request_number", event.Number.String(),
		"previous_status", string(event.Previous),
		"status", string(event.Status),
		"log_type", "event",
	)
	return nil
}
