package notification

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/segmentio/kafka-go"
)

// MessageWriter is the part of *kafka.Writer the publisher uses.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

// MessageReader is the part of *kafka.Reader the consumer uses.
type MessageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Close() error
}

// RedisPublisher is the part of *redis.Client the publisher uses.
type RedisPublisher interface {
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
}

// CacheRefresher drops and rebuilds read-side caches after an import.
type CacheRefresher interface {
	Invalidate(ctx context.Context) error
	Warm(ctx context.Context, year int) error
}

// Publisher fans an import-completed message out to Kafka and to the Redis
// channel the SSE stream listens on. Without Kafka, caches are refreshed in
// process instead.
type Publisher struct {
	writer MessageWriter
	redis  RedisPublisher
	local  CacheRefresher
}

// NewPublisher accepts nil for any of its collaborators.
func NewPublisher(writer MessageWriter, rdb RedisPublisher, local CacheRefresher) *Publisher {
	return &Publisher{writer: writer, redis: rdb, local: local}
}

func (p *Publisher) ImportCompleted(ctx context.Context, ev ImportCompleted) error {
	if ev.Type == "" {
		ev.Type = TypeImportComplete
	}
	if ev.FinishedAt.IsZero() {
		ev.FinishedAt = time.Now().UTC()
	}
	payload, err := json.Marshal(ev)
	if err != nil {
		return err
	}

	var errs []error
	if p.writer != nil {
		msg := kafka.Message{
			Key:   []byte(ev.RunID),
			Value: payload,
			Headers: []kafka.Header{
				{Key: "type", Value: []byte(ev.Type)},
			},
		}
		if err := p.writer.WriteMessages(ctx, msg); err != nil {
			errs = append(errs, fmt.Errorf("kafka: %w", err))
		}
	} else if p.local != nil {
		if err := refresh(ctx, p.local, ev); err != nil {
			errs = append(errs, fmt.Errorf("cache refresh: %w", err))
		}
	}

	if p.redis != nil {
		if err := p.redis.Publish(ctx, ImportsChannel, payload).Err(); err != nil {
			errs = append(errs, fmt.Errorf("redis: %w", err))
		}
	}
	return errors.Join(errs...)
}

// ===========================
// 📥 Kafka consumer

// StartKafkaConsumer refreshes caches for every import-completed message
// until ctx is cancelled. Malformed messages are logged and skipped.
func StartKafkaConsumer(ctx context.Context, reader MessageReader, refresher CacheRefresher) {
	if reader == nil {
		return
	}
	go func() {
		defer reader.Close()
		log.Println("🚀 Kafka import consumer started")
		for {
			msg, err := reader.ReadMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					log.Println("🛑 Kafka import consumer stopped")
					return
				}
				log.Printf("❌ Kafka read failed: %v", err)
				time.Sleep(time.Second)
				continue
			}
			if err := HandleMessage(ctx, msg, refresher); err != nil {
				log.Printf("⚠️ Skipping import message at offset %d: %v", msg.Offset, err)
			}
		}
	}()
}

// HandleMessage decodes one Kafka message and refreshes caches for it.
func HandleMessage(ctx context.Context, msg kafka.Message, refresher CacheRefresher) error {
	var ev ImportCompleted
	if err := json.Unmarshal(msg.Value, &ev); err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	if ev.Type != TypeImportComplete {
		return nil
	}
	return refresh(ctx, refresher, ev)
}

func refresh(ctx context.Context, refresher CacheRefresher, ev ImportCompleted) error {
	if err := refresher.Invalidate(ctx); err != nil {
		return err
	}
	for _, year := range ev.Years {
		if err := refresher.Warm(ctx, year); err != nil {
			return err
		}
	}
	log.Printf("🔄 Caches refreshed after import %s (years=%v)", ev.RunID, ev.Years)
	return nil
}
