package repository

import (
	"context"
	"fmt"
	"os"
	"time"

	"flight-event-mock-service/internal/domain/entity"
	"flight-event-mock-service/internal/domain/repository"
	"flight-event-mock-service/pkg/logger"

	"github.com/segmentio/kafka-go"
)

// KafkaPublisher publishes task messages to the brokers named by each message
type KafkaPublisher struct {
	timeout  time.Duration
	clientID string
	logger   logger.Logger
}

// NewKafkaPublisher creates a new publisher. timeout bounds delivery and
// acknowledgement of each message.
func NewKafkaPublisher(timeout time.Duration, logger logger.Logger) repository.EventPublisher {
	clientID, err := os.Hostname()
	if err != nil || clientID == "" {
		clientID = "flight-event-mock"
	}

	return &KafkaPublisher{
		timeout:  timeout,
		clientID: clientID,
		logger:   logger,
	}
}

// Publish writes msg and waits for the leader acknowledgement
func (p *KafkaPublisher) Publish(ctx context.Context, msg *entity.PublishMessage) error {
	if len(msg.BootstrapServers) == 0 {
		return fmt.Errorf("no bootstrap servers configured")
	}
	if msg.Topic == "" {
		return fmt.Errorf("topic name is required")
	}

	writer := &kafka.Writer{
		Addr:                   kafka.TCP(msg.BootstrapServers...),
		Topic:                  msg.Topic,
		Balancer:               &kafka.LeastBytes{},
		RequiredAcks:           kafka.RequireOne,
		WriteTimeout:           p.timeout,
		AllowAutoTopicCreation: true,
		Transport: &kafka.Transport{
			ClientID:    p.clientID,
			DialTimeout: p.timeout,
		},
	}
	defer writer.Close()

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	if err := writer.WriteMessages(ctx, kafka.Message{Value: msg.Value, Time: time.Now()}); err != nil {
		return fmt.Errorf("failed to publish to %s: %w", msg.Topic, err)
	}

	p.logger.Info("Message delivered", "topic", msg.Topic, "bytes", len(msg.Value))
	return nil
}
