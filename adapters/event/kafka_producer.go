package event

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/khoahotran/pathwise/internal/application/service"
	"github.com/khoahotran/pathwise/internal/config"
	"github.com/khoahotran/pathwise/pkg/logger"
)

const DefaultReconcileTopic = "store.reconcile"

// messageWriter is the part of *kafka.Writer the producer needs.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type KafkaProducerClient struct {
	ReconcileWriter messageWriter
	logger          logger.Logger
}

func NewKafkaProducerClient(cfg config.Config, log logger.Logger) (*KafkaProducerClient, error) {
	brokers := cfg.Kafka.Brokers
	if len(brokers) == 0 {
		return nil, fmt.Errorf("config Kafka brokers not found")
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        ReconcileTopic(cfg),
		Balancer:     &kafka.Hash{},
		BatchTimeout: 50 * time.Millisecond,
	}

	log.Info("Initialize Kafka producer successfully.", zap.String("topic", writer.Topic))
	return &KafkaProducerClient{ReconcileWriter: writer, logger: log}, nil
}

func ReconcileTopic(cfg config.Config) string {
	if cfg.Kafka.ReconcileTopic != "" {
		return cfg.Kafka.ReconcileTopic
	}
	return DefaultReconcileTopic
}

// PublishReconcile keys messages by user so one user's replays stay ordered
// on a single partition.
func (c *KafkaProducerClient) PublishReconcile(ctx context.Context, ev service.ReconcileEvent) error {
	value, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("cannot encode reconcile event: %w", err)
	}
	msg := kafka.Message{
		Key:   []byte(ev.UserID.String()),
		Value: value,
		Headers: []kafka.Header{
			{Key: "collection", Value: []byte(ev.Collection)},
			{Key: "op", Value: []byte(ev.Op)},
		},
	}
	if err := c.ReconcileWriter.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("cannot publish reconcile event: %w", err)
	}
	return nil
}

func (c *KafkaProducerClient) Close() {
	if c.ReconcileWriter != nil {
		if err := c.ReconcileWriter.Close(); err != nil {
			c.logger.Error("Failed to close Kafka producer", err)
			return
		}
	}
	c.logger.Info("Closed Kafka producer")
}
