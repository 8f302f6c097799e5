package store

import (
	"context"
	"sync"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// ChangeChannel is the pub/sub channel carrying "collection changed" notices.
const ChangeChannel = "projects.changed"

// Relay tells other instances that the collection changed. A notice carries
// only the origin of the write; receivers reload the collection themselves.
type Relay interface {
	Publish(ctx context.Context, origin string) error
	// Listen calls onChange for every notice until ctx is done.
	Listen(ctx context.Context, onChange func(origin string)) error
}

// LocalRelay connects instances living in the same process.
type LocalRelay struct {
	mu        sync.RWMutex
	nextID    int
	listeners map[int]func(string)
}

func NewLocalRelay() *LocalRelay {
	return &LocalRelay{listeners: make(map[int]func(string))}
}

func (r *LocalRelay) Publish(ctx context.Context, origin string) error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, listener := range r.listeners {
		listener(origin)
	}
	return nil
}

func (r *LocalRelay) Listen(ctx context.Context, onChange func(origin string)) error {
	r.mu.Lock()
	id := r.nextID
	r.nextID++
	r.listeners[id] = onChange
	r.mu.Unlock()

	<-ctx.Done()

	r.mu.Lock()
	delete(r.listeners, id)
	r.mu.Unlock()
	return nil
}

// RedisRelay fans notices out through a Redis channel so that every server
// instance behind a load balancer refreshes its live subscribers.
type RedisRelay struct {
	client  redis.UniversalClient
	channel string
}

func NewRedisRelay(client redis.UniversalClient) *RedisRelay {
	return &RedisRelay{client: client, channel: ChangeChannel}
}

// NewRedisRelayFromURL parses a redis:// URL and checks the connection.
func NewRedisRelayFromURL(ctx context.Context, rawURL string) (*RedisRelay, error) {
	opts, err := redis.ParseURL(rawURL)
	if err != nil {
		return nil, err
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, err
	}
	return NewRedisRelay(client), nil
}

func (r *RedisRelay) Publish(ctx context.Context, origin string) error {
	return r.client.Publish(ctx, r.channel, origin).Err()
}

func (r *RedisRelay) Listen(ctx context.Context, onChange func(origin string)) error {
	pubsub := r.client.Subscribe(ctx, r.channel)
	defer pubsub.Close()

	if _, err := pubsub.Receive(ctx); err != nil {
		return err
	}
	log.Info().Str("channel", r.channel).Msg("Listening for project changes")

	messages := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-messages:
			if !ok {
				return nil
			}
			onChange(msg.Payload)
		}
	}
}

func (r *RedisRelay) Close() error {
	return r.client.Close()
}
