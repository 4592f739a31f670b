package worker

import (
	"context"
	"crypto/tls"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"localist_backend/internal/events"
	"localist_backend/platform/config"
	"localist_backend/platform/logger"
)

// Client enqueues background tasks. A nil client silently drops tasks, so
// deployments without Redis still work, just without address backfill.
type Client struct {
	client *asynq.Client
	queue  string
}

// NewClient creates an enqueuing client from the Redis configuration.
func NewClient(cfg config.WorkerConfig) (*Client, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	queue := cfg.GetAsynqQueueName()
	if queue == "" {
		queue = "default"
	}

	return &Client{
		client: asynq.NewClient(opt),
		queue:  queue,
	}, nil
}

func (c *Client) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}

// EnqueuePinReverseGeocode schedules an address lookup for a pin.
func (c *Client) EnqueuePinReverseGeocode(ctx context.Context, payload PinReverseGeocodePayload) error {
	if c == nil || c.client == nil {
		return nil
	}

	task, err := NewPinReverseGeocodeTask(payload)
	if err != nil {
		return err
	}

	_, err = c.client.EnqueueContext(ctx, task, asynq.Queue(c.queue))
	return err
}

// RegisterHandlers subscribes the client to pin creations so every new pin
// gets an address backfill task.
func (c *Client) RegisterHandlers(bus events.Bus, log *logger.Logger) {
	bus.Subscribe(events.PinCreated{}.EventName(), events.HandlerFunc(func(ctx context.Context, e events.Event) error {
		created, ok := e.(events.PinCreated)
		if !ok {
			return nil
		}
		err := c.EnqueuePinReverseGeocode(ctx, PinReverseGeocodePayload{
			PinID: created.PinID.String(),
			Lat:   created.Location.Lat,
			Lon:   created.Location.Lon,
		})
		if err != nil {
			log.Error("enqueue reverse geocode failed", "pin_id", created.PinID, "error", err)
		}
		return nil
	}))
}

func redisClientOpt(redisURL string, tlsInsecure bool) (asynq.RedisClientOpt, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return asynq.RedisClientOpt{}, err
	}

	var tlsConfig *tls.Config
	if opt.TLSConfig != nil {
		clone := opt.TLSConfig.Clone()
		if tlsInsecure {
			clone.InsecureSkipVerify = true
		}
		tlsConfig = clone
	} else if tlsInsecure {
		tlsConfig = &tls.Config{InsecureSkipVerify: true}
	}

	return asynq.RedisClientOpt{
		Addr:      opt.Addr,
		Password:  opt.Password,
		DB:        opt.DB,
		TLSConfig: tlsConfig,
	}, nil
}
