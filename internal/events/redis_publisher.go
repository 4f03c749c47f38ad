// Package events mirrors job transitions onto a Redis pub/sub channel so that
// processes other than the API server can follow job progress.
package events

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/appiumctl/api/internal/logger"
	"github.com/appiumctl/api/internal/model"
)

const DefaultChannel = "jobs:events"

// Message is the payload published for each transition.
type Message struct {
	Event    model.JobEventType `json:"event"`
	JobID    string             `json:"jobId"`
	Status   model.Status       `json:"status"`
	Playback model.Playback     `json:"playback"`
	Progress int                `json:"progressIndex"`
	Message  string             `json:"message,omitempty"`
	Step     string             `json:"step,omitempty"`
	At       time.Time          `json:"at"`
}

// NewMessage flattens a job event into its published form.
func NewMessage(ev model.JobEvent) Message {
	msg := Message{
		Event:    ev.Type,
		JobID:    ev.Job.ID,
		Status:   ev.Job.Status,
		Playback: ev.Job.Playback,
		Progress: ev.Job.ProgressIndex,
		At:       ev.Job.UpdatedAt,
	}
	if ev.Entry != nil {
		msg.Message = ev.Entry.Message
		msg.Step = ev.Entry.StepLabel
		msg.At = ev.Entry.Timestamp
	}
	return msg
}

// RedisPublisher publishes job events from a background goroutine so that
// Notify never waits on the network.
type RedisPublisher struct {
	redis   *redis.Client
	channel string
	log     *logger.Logger

	mu     sync.RWMutex
	closed bool
	queue  chan Message
	wg     sync.WaitGroup
}

func NewRedisPublisher(redisClient *redis.Client, channel string, log *logger.Logger) *RedisPublisher {
	if channel == "" {
		channel = DefaultChannel
	}
	p := &RedisPublisher{
		redis:   redisClient,
		channel: channel,
		log:     log,
		queue:   make(chan Message, 1024),
	}
	p.wg.Add(1)
	go p.run()
	return p
}

// Notify queues the event for publishing, dropping it if the queue is full
// or the publisher is closed.
func (p *RedisPublisher) Notify(ev model.JobEvent) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		return
	}
	select {
	case p.queue <- NewMessage(ev):
	default:
		p.log.Warn("event queue full, dropping", "job_id", ev.Job.ID, "event", ev.Type)
	}
}

// Close drains queued events and stops the publisher.
func (p *RedisPublisher) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	close(p.queue)
	p.mu.Unlock()

	p.wg.Wait()
}

func (p *RedisPublisher) run() {
	defer p.wg.Done()

	for msg := range p.queue {
		data, err := json.Marshal(msg)
		if err != nil {
			p.log.Error("failed to marshal event", "job_id", msg.JobID, "error", err)
			continue
		}

		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		if err := p.redis.Publish(ctx, p.channel, data).Err(); err != nil {
			p.log.Warn("failed to publish event", "job_id", msg.JobID, "error", err)
		}
		cancel()
	}
}
