package worker

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"localist_backend/internal/search/geocode"
	"localist_backend/platform/config"
	"localist_backend/platform/logger"
)

// AddressWriter is the slice of the pin store the worker needs.
type AddressWriter interface {
	UpdateAddress(ctx context.Context, id uuid.UUID, address string) error
}

// Worker consumes background tasks from Redis.
type Worker struct {
	server   *asynq.Server
	mux      *asynq.ServeMux
	pins     AddressWriter
	geocoder *geocode.Client
	log      *logger.Logger
}

// NewWorker creates the task server with its handlers registered.
func NewWorker(cfg config.WorkerConfig, pins AddressWriter, geocoder *geocode.Client, log *logger.Logger) (*Worker, error) {
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

	concurrency := cfg.GetAsynqConcurrency()
	if concurrency < 1 {
		concurrency = 10
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			queue: 1,
		},
	})

	mux := asynq.NewServeMux()
	w := &Worker{
		server:   server,
		mux:      mux,
		pins:     pins,
		geocoder: geocoder,
		log:      log,
	}

	mux.HandleFunc(TaskPinReverseGeocode, w.handlePinReverseGeocode)

	return w, nil
}

// handlePinReverseGeocode resolves the pin's coordinates to an address and
// stores it. A provider miss is terminal, not retried; the pin simply keeps
// no address.
func (w *Worker) handlePinReverseGeocode(ctx context.Context, task *asynq.Task) error {
	payload, err := ParsePinReverseGeocodePayload(task)
	if err != nil {
		return err
	}

	pinID, err := uuid.Parse(payload.PinID)
	if err != nil {
		return err
	}

	props, err := w.geocoder.Reverse(ctx, payload.Lat, payload.Lon)
	if err != nil {
		return err
	}
	if props == nil {
		return nil
	}

	address := geocode.FormatAddress(props)
	if address == "" {
		return nil
	}

	if err := w.pins.UpdateAddress(ctx, pinID, address); err != nil {
		return err
	}

	w.log.Info("pin address backfilled", "pin_id", pinID, "address", address)
	return nil
}

// Run serves tasks until the context is canceled.
func (w *Worker) Run(ctx context.Context) {
	if w == nil || w.server == nil {
		return
	}

	go func() {
		<-ctx.Done()
		w.server.Shutdown()
	}()

	if err := w.server.Run(w.mux); err != nil {
		w.log.Error("task worker stopped", "error", err)
	}
}
