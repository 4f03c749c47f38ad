package events

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/appiumctl/api/internal/ledger"
	"github.com/appiumctl/api/internal/logger"
	"github.com/appiumctl/api/internal/model"
)

func TestNewMessage(t *testing.T) {
	at := time.Date(2026, 1, 31, 16, 41, 0, 0, time.UTC)
	ev := model.JobEvent{
		Type: model.JobEventAdvanced,
		Job: model.Job{
			ID:            "job-1",
			Status:        model.StatusInProgress,
			Playback:      model.PlaybackPlay,
			ProgressIndex: 0,
		},
		Entry: &ledger.Entry{Message: "Generating proxy for Dallas, Texas", StepLabel: "generating proxy", Timestamp: at},
	}

	msg := NewMessage(ev)
	if msg.JobID != "job-1" || msg.Step != "generating proxy" || !msg.At.Equal(at) || msg.Progress != 0 {
		t.Errorf("unexpected message: %+v", msg)
	}

	ev.Entry = nil
	ev.Type = model.JobEventPaused
	if msg := NewMessage(ev); msg.Message != "" || msg.Event != model.JobEventPaused {
		t.Errorf("unexpected message without entry: %+v", msg)
	}
}

func TestPublishesToRedis(t *testing.T) {
	redisClient := redis.NewClient(&redis.Options{
		Addr: "localhost:6379",
		DB:   15, // use DB 15 for tests to avoid collision
	})
	t.Cleanup(func() { redisClient.Close() })

	ctx := context.Background()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		t.Skipf("redis not available: %v", err)
	}

	channel := "jobs:events:test"
	sub := redisClient.Subscribe(ctx, channel)
	defer sub.Close()
	if _, err := sub.Receive(ctx); err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	pub := NewRedisPublisher(redisClient, channel, logger.Nop())
	pub.Notify(model.JobEvent{
		Type: model.JobEventStopped,
		Job:  model.Job{ID: "job-7", Status: model.StatusPending, Playback: model.PlaybackStop, ProgressIndex: -1},
	})
	pub.Close()

	select {
	case m := <-sub.Channel():
		var got Message
		if err := json.Unmarshal([]byte(m.Payload), &got); err != nil {
			t.Fatalf("invalid payload %q: %v", m.Payload, err)
		}
		if got.JobID != "job-7" || got.Event != model.JobEventStopped {
			t.Errorf("unexpected published message: %+v", got)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for published event")
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	redisClient := redis.NewClient(&redis.Options{Addr: "localhost:0"})
	t.Cleanup(func() { redisClient.Close() })

	pub := NewRedisPublisher(redisClient, "", logger.Nop())
	if pub.channel != DefaultChannel {
		t.Errorf("expected default channel, got %q", pub.channel)
	}
	pub.Close()
	pub.Close()
}

func TestNotifyAfterCloseIsDropped(t *testing.T) {
	redisClient := redis.NewClient(&redis.Options{Addr: "localhost:0"})
	t.Cleanup(func() { redisClient.Close() })

	pub := NewRedisPublisher(redisClient, "", logger.Nop())
	pub.Close()
	pub.Notify(model.JobEvent{Type: model.JobEventCreated, Job: model.Job{ID: "job-1"}})
}
