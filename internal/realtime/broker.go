package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultChannel is the redis pub/sub channel shared by all instances.
const DefaultChannel = "realestate:realtime"

const (
	minResubscribeWait = 500 * time.Millisecond
	maxResubscribeWait = 30 * time.Second
)

// envelope is what travels over redis between instances.
type envelope struct {
	Room  string          `json:"room"`
	Frame json.RawMessage `json:"frame"`
}

// RedisBroker publishes events through redis so every instance's hub
// can deliver them to its own connections. While its own subscription is
// down it delivers to the local hub instead.
type RedisBroker struct {
	client   *redis.Client
	hub      *Hub
	channel  string
	relaying atomic.Bool

	minWait time.Duration
	maxWait time.Duration
}

var _ Publisher = (*RedisBroker)(nil)

// NewRedisBroker creates a broker bound to hub.
func NewRedisBroker(client *redis.Client, hub *Hub, channel string) *RedisBroker {
	if channel == "" {
		channel = DefaultChannel
	}
	return &RedisBroker{
		client:  client,
		hub:     hub,
		channel: channel,
		minWait: minResubscribeWait,
		maxWait: maxResubscribeWait,
	}
}

// Relaying reports whether the redis subscription is currently up.
func (b *RedisBroker) Relaying() bool {
	return b.relaying.Load()
}

// Publish sends the event to every subscribed instance.
func (b *RedisBroker) Publish(ctx context.Context, room, event string, data any) error {
	if !b.relaying.Load() {
		return b.hub.Publish(ctx, room, event, data)
	}
	frame, err := EncodeFrame(event, data)
	if err != nil {
		return err
	}
	payload, err := json.Marshal(envelope{Room: room, Frame: frame})
	if err != nil {
		return fmt.Errorf("marshal envelope: %w", err)
	}
	if err := b.client.Publish(ctx, b.channel, payload).Err(); err != nil {
		return fmt.Errorf("publish to %s: %w", b.channel, err)
	}
	return nil
}

// Run relays redis messages into the local hub until ctx is done. A failed
// or dropped subscription is retried with exponential backoff.
func (b *RedisBroker) Run(ctx context.Context) error {
	wait := b.minWait
	for {
		err := b.subscribe(ctx)
		if ctx.Err() != nil {
			return nil
		}
		if err != nil {
			log.Printf("realtime: %v, retrying in %s", err, wait)
		} else {
			// the subscription was up; start over from the short wait
			wait = b.minWait
		}

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(wait):
		}
		if err != nil {
			wait *= 2
			if wait > b.maxWait {
				wait = b.maxWait
			}
		}
	}
}

// subscribe relays one subscription until it closes or ctx is done.
func (b *RedisBroker) subscribe(ctx context.Context) error {
	sub := b.client.Subscribe(ctx, b.channel)
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("subscribe %s: %w", b.channel, err)
	}
	b.relaying.Store(true)
	defer b.relaying.Store(false)
	log.Printf("realtime: relaying redis channel %s", b.channel)

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				log.Printf("realtime: redis channel %s closed", b.channel)
				return nil
			}
			b.relay([]byte(msg.Payload))
		}
	}
}

func (b *RedisBroker) relay(payload []byte) int {
	var env envelope
	if err := json.Unmarshal(payload, &env); err != nil || env.Room == "" {
		log.Printf("realtime: discarding malformed broker payload")
		return 0
	}
	return b.hub.Deliver(env.Room, env.Frame)
}
