package services

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"hotspotportal/utils"

	"github.com/redis/go-redis/v9"
)

// Notifier delivers operational alerts. Notify must not block the caller
// and never reports failure.
type Notifier interface {
	Notify(ctx context.Context, kind string, payload map[string]interface{})
}

type Publisher interface {
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
}

type Alert struct {
	Kind    string                 `json:"kind"`
	Payload map[string]interface{} `json:"payload"`
	SentAt  time.Time              `json:"sent_at"`
}

// RedisNotifier publishes alerts on a Redis pub/sub channel for the
// notification worker to pick up.
type RedisNotifier struct {
	publisher Publisher
	channel   string
	timeout   time.Duration
	sent      chan struct{}
}

func NewRedisNotifier(publisher Publisher, channel string) *RedisNotifier {
	return &RedisNotifier{
		publisher: publisher,
		channel:   channel,
		timeout:   2 * time.Second,
	}
}

func (n *RedisNotifier) Notify(ctx context.Context, kind string, payload map[string]interface{}) {
	data, err := json.Marshal(Alert{Kind: kind, Payload: payload, SentAt: time.Now().UTC()})
	if err != nil {
		log.Printf("Alert %s dropped: %v", kind, err)
		return
	}

	go func() {
		defer n.signal()

		pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), n.timeout)
		defer cancel()

		if err := n.publisher.Publish(pctx, n.channel, data).Err(); err != nil {
			utils.TrackError("notify", "publish_failed")
			log.Printf("Alert %s not delivered: %v", kind, err)
		}
	}()
}

func (n *RedisNotifier) signal() {
	if n.sent != nil {
		n.sent <- struct{}{}
	}
}

// LogNotifier only writes alerts to the log. It is used when ALERT_SINK is
// "log".
type LogNotifier struct{}

func (LogNotifier) Notify(_ context.Context, kind string, payload map[string]interface{}) {
	log.Printf("ALERT %s: %v", kind, payload)
}
