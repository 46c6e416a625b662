package utils

import (
	"log"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/sharath018/gencon-schedule-backend/config"
)

// NewKafkaWriter returns a writer for topic, or nil when no brokers are configured.
func NewKafkaWriter(cfg *config.Config, topic string) *kafka.Writer {
	if len(cfg.KafkaBrokers) == 0 {
		log.Println("ℹ️  KAFKA_BROKERS not set, Kafka publishing disabled")
		return nil
	}
	log.Printf("✅ Kafka writer ready (topic=%s, brokers=%v)", topic, cfg.KafkaBrokers)
	return &kafka.Writer{
		Addr:                   kafka.TCP(cfg.KafkaBrokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		BatchTimeout:           50 * time.Millisecond,
		AllowAutoTopicCreation: true,
	}
}

// NewKafkaReader returns a consumer-group reader for topic, or nil when no
// brokers are configured.
func NewKafkaReader(cfg *config.Config, topic string) *kafka.Reader {
	if len(cfg.KafkaBrokers) == 0 {
		return nil
	}
	return kafka.NewReader(kafka.ReaderConfig{
		Brokers:        cfg.KafkaBrokers,
		GroupID:        cfg.KafkaGroupID,
		Topic:          topic,
		MinBytes:       1,
		MaxBytes:       10e6,
		CommitInterval: time.Second,
	})
}
