package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/aescanero/dago-hbs-helpers/internal/config"
	"github.com/aescanero/dago-hbs-helpers/internal/helpers"
	"github.com/aescanero/dago-hbs-helpers/internal/render"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	// ErrorStreamSuffix is appended to the result stream for failed renders
	ErrorStreamSuffix = ".errors"

	// shutdownTimeout bounds how long Stop waits for the processing loop
	shutdownTimeout = 5 * time.Second
)

// Error kinds reported on the error stream
const (
	KindInvalidRequest  = "invalid_request"
	KindArity           = "arity"
	KindInvalidDividend = "invalid_dividend"
	KindRender          = "render"
)

// Worker consumes render requests from a Redis stream
type Worker struct {
	id            string
	config        *config.Config
	redisClient   *redis.Client
	renderer      *render.Renderer
	logger        *zap.Logger
	ctx           context.Context
	cancel        context.CancelFunc
	done          chan struct{}
	started       atomic.Bool
	streamKey     string
	consumerGroup string
	resultStream  string
}

// NewWorker creates a new worker
func NewWorker(
	cfg *config.Config,
	redisClient *redis.Client,
	renderer *render.Renderer,
	logger *zap.Logger,
) *Worker {
	if logger == nil {
		logger = zap.NewNop()
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Worker{
		id:            cfg.WorkerID,
		config:        cfg,
		redisClient:   redisClient,
		renderer:      renderer,
		logger:        logger,
		ctx:           ctx,
		cancel:        cancel,
		done:          make(chan struct{}),
		streamKey:     cfg.StreamKey,
		consumerGroup: cfg.ConsumerGroup,
		resultStream:  cfg.ResultStream,
	}
}

// Start creates the consumer group and starts the processing loop
func (w *Worker) Start() error {
	w.logger.Info("starting render worker",
		zap.String("worker_id", w.id),
		zap.String("stream_key", w.streamKey),
		zap.String("consumer_group", w.consumerGroup),
	)

	if err := w.ensureConsumerGroup(); err != nil {
		return fmt.Errorf("failed to ensure consumer group: %w", err)
	}

	w.started.Store(true)
	go w.processWork()

	w.logger.Info("render worker started", zap.String("worker_id", w.id))
	return nil
}

// Running reports whether the processing loop is active
func (w *Worker) Running() bool {
	if w.ctx.Err() != nil {
		return false
	}
	select {
	case <-w.done:
		return false
	default:
		return w.started.Load()
	}
}

// Stop stops the worker and waits for the in-flight message
func (w *Worker) Stop() error {
	w.logger.Info("stopping render worker", zap.String("worker_id", w.id))

	w.cancel()
	if !w.started.Load() {
		return nil
	}

	select {
	case <-w.done:
	case <-time.After(shutdownTimeout):
		return fmt.Errorf("worker %s did not stop within %s", w.id, shutdownTimeout)
	}

	w.logger.Info("render worker stopped", zap.String("worker_id", w.id))
	return nil
}

// ensureConsumerGroup creates the consumer group if it doesn't exist
func (w *Worker) ensureConsumerGroup() error {
	err := w.redisClient.XGroupCreateMkStream(w.ctx, w.streamKey, w.consumerGroup, "0").Err()
	if err != nil {
		if strings.HasPrefix(err.Error(), "BUSYGROUP") {
			w.logger.Debug("consumer group already exists",
				zap.String("group", w.consumerGroup),
			)
			return nil
		}
		return fmt.Errorf("failed to create consumer group: %w", err)
	}

	w.logger.Info("created consumer group",
		zap.String("group", w.consumerGroup),
		zap.String("stream", w.streamKey),
	)
	return nil
}

// processWork runs until the worker context is cancelled
func (w *Worker) processWork() {
	defer close(w.done)
	w.logger.Info("starting work processing loop")

	for {
		select {
		case <-w.ctx.Done():
			w.logger.Info("work processing loop stopped")
			return
		default:
		}

		if _, err := w.readBatch(w.ctx); err != nil {
			if w.ctx.Err() != nil {
				continue
			}
			w.logger.Error("failed to read from stream", zap.Error(err))

			select {
			case <-w.ctx.Done():
			case <-time.After(time.Second):
			}
		}
	}
}

// readBatch reads pending messages for this consumer and handles them.
// It returns the number of messages handled.
func (w *Worker) readBatch(ctx context.Context) (int, error) {
	streams, err := w.redisClient.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    w.consumerGroup,
		Consumer: w.id,
		Streams:  []string{w.streamKey, ">"},
		Count:    1,
		Block:    w.config.BlockTime,
	}).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, err
	}

	handled := 0
	for _, stream := range streams {
		for _, message := range stream.Messages {
			w.handleMessage(ctx, message)
			handled++
		}
	}
	return handled, nil
}

// handleMessage renders a single request and always acknowledges it
func (w *Worker) handleMessage(ctx context.Context, message redis.XMessage) {
	messageID := message.ID
	w.logger.Debug("processing render request",
		zap.String("message_id", messageID),
	)
	defer w.acknowledgeMessage(ctx, messageID)

	workRequest, err := parseWorkRequest(message.Values)
	if err != nil {
		w.logger.Error("failed to parse work request",
			zap.String("message_id", messageID),
			zap.Error(err),
		)
		w.publishError(ctx, &WorkRequest{RequestID: messageID}, KindInvalidRequest, err)
		return
	}

	started := time.Now()
	result, err := w.renderer.Render(ctx, &workRequest.Request)
	if err != nil {
		kind := errorKind(err)
		w.logger.Warn("render failed",
			zap.String("message_id", messageID),
			zap.String("request_id", workRequest.RequestID),
			zap.String("kind", kind),
			zap.Error(err),
		)
		w.publishError(ctx, workRequest, kind, err)
		return
	}

	if err := w.publishResult(ctx, workRequest, result, time.Since(started)); err != nil {
		w.logger.Error("failed to publish result",
			zap.String("request_id", workRequest.RequestID),
			zap.Error(err),
		)
		w.publishError(ctx, workRequest, KindRender, err)
	}
}

// WorkRequest is the payload of the "data" field of a stream message
type WorkRequest struct {
	RequestID string `json:"request_id"`
	render.Request
}

// parseWorkRequest parses a work request from a Redis message
func parseWorkRequest(values map[string]interface{}) (*WorkRequest, error) {
	dataStr, ok := values["data"].(string)
	if !ok {
		return nil, fmt.Errorf("missing or invalid 'data' field")
	}

	var request WorkRequest
	if err := json.Unmarshal([]byte(dataStr), &request); err != nil {
		return nil, fmt.Errorf("failed to unmarshal work request: %w", err)
	}

	if request.RequestID == "" {
		return nil, fmt.Errorf("request_id is required")
	}

	return &request, nil
}

// errorKind classifies a render failure for consumers of the error stream
func errorKind(err error) string {
	switch {
	case errors.Is(err, helpers.ErrArity):
		return KindArity
	case errors.Is(err, helpers.ErrInvalidDividend):
		return KindInvalidDividend
	case errors.Is(err, render.ErrInvalidRequest), errors.Is(err, render.ErrNoTemplate):
		return KindInvalidRequest
	default:
		return KindRender
	}
}

// publishResult publishes a successful render to the result stream
func (w *Worker) publishResult(ctx context.Context, request *WorkRequest, result *render.Result, took time.Duration) error {
	event := map[string]interface{}{
		"request_id":  request.RequestID,
		"worker_id":   w.id,
		"output":      result.Output,
		"variant":     result.Variant,
		"path_taken":  result.PathTaken,
		"duration_ms": took.Milliseconds(),
		"timestamp":   time.Now().UTC(),
	}

	if err := w.publish(ctx, w.resultStream, event); err != nil {
		return err
	}

	w.logger.Info("published render result",
		zap.String("request_id", request.RequestID),
		zap.String("path_taken", result.PathTaken),
		zap.Int("variant", result.Variant),
	)
	return nil
}

// publishError publishes a failed render to the error stream
func (w *Worker) publishError(ctx context.Context, request *WorkRequest, kind string, err error) {
	event := map[string]interface{}{
		"request_id": request.RequestID,
		"worker_id":  w.id,
		"kind":       kind,
		"error":      err.Error(),
		"timestamp":  time.Now().UTC(),
	}

	var arityErr *helpers.ArityError
	if errors.As(err, &arityErr) {
		event["helper"] = arityErr.Helper
	}

	if publishErr := w.publish(ctx, w.resultStream+ErrorStreamSuffix, event); publishErr != nil {
		w.logger.Error("failed to publish error event", zap.Error(publishErr))
	}
}

func (w *Worker) publish(ctx context.Context, stream string, event map[string]interface{}) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	_, err = w.redisClient.XAdd(ctx, &redis.XAddArgs{
		Stream: stream,
		Values: map[string]interface{}{
			"data": string(data),
		},
	}).Result()
	if err != nil {
		return fmt.Errorf("failed to publish to stream %s: %w", stream, err)
	}

	return nil
}

// acknowledgeMessage acknowledges a message from the stream
func (w *Worker) acknowledgeMessage(ctx context.Context, messageID string) {
	// a cancelled loop context must not leave the message pending
	if ctx.Err() != nil {
		ctx = context.Background()
	}

	err := w.redisClient.XAck(ctx, w.streamKey, w.consumerGroup, messageID).Err()
	if err != nil {
		w.logger.Error("failed to acknowledge message",
			zap.String("message_id", messageID),
			zap.Error(err),
		)
	}
}
