package utils

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/sparklewash/carwash-backend/config"
)

var bookingWriter *kafka.Writer

// InitKafka sets up the writer for the booking events topic. Kafka is
// optional in local development; when no brokers are configured the
// publish helpers become no-ops.
func InitKafka(cfg *config.Config) {
	if cfg.KafkaBrokers == "" {
		log.Println("Kafka brokers not configured, event publishing disabled")
		return
	}

	bookingWriter = &kafka.Writer{
		Addr:         kafka.TCP(strings.Split(cfg.KafkaBrokers, ",")...),
		Topic:        cfg.KafkaBookingTopic,
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 50 * time.Millisecond,
	}
}

// PublishBookingEvent writes one lifecycle event, keyed by booking ID so
// events for the same booking stay ordered within a partition.
func PublishBookingEvent(key string, payload []byte) {
	if bookingWriter == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := bookingWriter.WriteMessages(ctx, kafka.Message{
		Key:   []byte(key),
		Value: payload,
	})
	if err != nil {
		GetLogger().Warn("kafka publish failed", zap.Error(err))
	}
}

// NewBookingReader creates a consumer for the booking events topic.
func NewBookingReader(cfg *config.Config, groupID string) *kafka.Reader {
	if cfg.KafkaBrokers == "" {
		return nil
	}
	return kafka.NewReader(kafka.ReaderConfig{
		Brokers:  strings.Split(cfg.KafkaBrokers, ","),
		GroupID:  groupID,
		Topic:    cfg.KafkaBookingTopic,
		MinBytes: 1,
		MaxBytes: 10e6,
	})
}

func CloseKafka() {
	if bookingWriter != nil {
		_ = bookingWriter.Close()
	}
}
