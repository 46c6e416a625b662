package notification

import (
	"context"
	"encoding/json"
	"errors"
	"reflect"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/segmentio/kafka-go"
)

type fakeWriter struct {
	msgs []kafka.Message
	err  error
}

func (f *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	f.msgs = append(f.msgs, msgs...)
	return f.err
}

type fakeRedis struct {
	channel  string
	payloads []string
	err      error
}

func (f *fakeRedis) Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd {
	f.channel = channel
	f.payloads = append(f.payloads, string(message.([]byte)))
	cmd := redis.NewIntCmd(ctx)
	if f.err != nil {
		cmd.SetErr(f.err)
	}
	return cmd
}

type fakeRefresher struct {
	invalidated int
	warmed      []int
}

func (f *fakeRefresher) Invalidate(context.Context) error {
	f.invalidated++
	return nil
}

func (f *fakeRefresher) Warm(_ context.Context, year int) error {
	f.warmed = append(f.warmed, year)
	return nil
}

func TestPublisherWritesKafkaAndRedis(t *testing.T) {
	w := &fakeWriter{}
	r := &fakeRedis{}
	local := &fakeRefresher{}
	p := NewPublisher(w, r, local)

	err := p.ImportCompleted(context.Background(), ImportCompleted{RunID: "run-1", Years: []int{2024}})
	if err != nil {
		t.Fatalf("ImportCompleted: %v", err)
	}
	if len(w.msgs) != 1 || string(w.msgs[0].Key) != "run-1" {
		t.Fatalf("kafka messages = %+v", w.msgs)
	}

	var ev ImportCompleted
	if err := json.Unmarshal(w.msgs[0].Value, &ev); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if ev.Type != TypeImportComplete || ev.FinishedAt.IsZero() {
		t.Errorf("event = %+v", ev)
	}
	if r.channel != ImportsChannel || len(r.payloads) != 1 {
		t.Errorf("redis = %+v", r)
	}
	// with Kafka configured the consumer refreshes caches, not the publisher
	if local.invalidated != 0 {
		t.Errorf("local refresh ran %d times", local.invalidated)
	}
}

func TestPublisherRefreshesLocallyWithoutKafka(t *testing.T) {
	local := &fakeRefresher{}
	p := NewPublisher(nil, nil, local)

	if err := p.ImportCompleted(context.Background(), ImportCompleted{RunID: "run-2", Years: []int{2023, 2024}}); err != nil {
		t.Fatalf("ImportCompleted: %v", err)
	}
	if local.invalidated != 1 || !reflect.DeepEqual(local.warmed, []int{2023, 2024}) {
		t.Errorf("refresher = %+v", local)
	}
}

func TestPublisherJoinsErrors(t *testing.T) {
	kafkaErr := errors.New("broker down")
	redisErr := errors.New("redis down")
	p := NewPublisher(&fakeWriter{err: kafkaErr}, &fakeRedis{err: redisErr}, nil)

	err := p.ImportCompleted(context.Background(), ImportCompleted{RunID: "run-3"})
	if !errors.Is(err, kafkaErr) || !errors.Is(err, redisErr) {
		t.Fatalf("err = %v, want both failures", err)
	}
}

func TestHandleMessage(t *testing.T) {
	payload, _ := json.Marshal(ImportCompleted{Type: TypeImportComplete, RunID: "run-4", Years: []int{2024}})

	tests := []struct {
		name        string
		value       []byte
		wantErr     bool
		invalidated int
	}{
		{"import completed", payload, false, 1},
		{"other type", []byte(`{"type":"something.else"}`), false, 0},
		{"malformed", []byte(`{`), true, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ref := &fakeRefresher{}
			err := HandleMessage(context.Background(), kafka.Message{Value: tt.value}, ref)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if ref.invalidated != tt.invalidated {
				t.Errorf("invalidated = %d, want %d", ref.invalidated, tt.invalidated)
			}
		})
	}
}
