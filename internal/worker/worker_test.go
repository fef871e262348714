package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aescanero/dago-hbs-helpers/internal/config"
	"github.com/aescanero/dago-hbs-helpers/internal/helpers"
	"github.com/aescanero/dago-hbs-helpers/internal/render"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func testConfig() *config.Config {
	return &config.Config{
		WorkerID:      "render-test",
		StreamKey:     "render.requests",
		ConsumerGroup: "render-workers",
		ResultStream:  "render.completed",
		BlockTime:     20 * time.Millisecond,
		HealthPort:    8083,
		LogLevel:      "debug",
	}
}

func newTestWorker(t *testing.T) (*Worker, *redis.Client, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	logger := zaptest.NewLogger(t)
	w := NewWorker(testConfig(), client, render.NewRenderer(nil, logger), logger)
	require.NoError(t, w.ensureConsumerGroup())

	return w, client, mr
}

func enqueue(t *testing.T, client *redis.Client, request WorkRequest) {
	t.Helper()

	data, err := json.Marshal(request)
	require.NoError(t, err)

	err = client.XAdd(context.Background(), &redis.XAddArgs{
		Stream: testConfig().StreamKey,
		Values: map[string]interface{}{"data": string(data)},
	}).Err()
	require.NoError(t, err)
}

func readEvents(t *testing.T, client *redis.Client, stream string) []map[string]interface{} {
	t.Helper()

	messages, err := client.XRange(context.Background(), stream, "-", "+").Result()
	require.NoError(t, err)

	events := make([]map[string]interface{}, 0, len(messages))
	for _, message := range messages {
		data, ok := message.Values["data"].(string)
		require.True(t, ok, "message %s has no data field", message.ID)

		var event map[string]interface{}
		require.NoError(t, json.Unmarshal([]byte(data), &event))
		events = append(events, event)
	}
	return events
}

func pendingCount(t *testing.T, w *Worker, client *redis.Client) int {
	t.Helper()

	streams, err := client.XReadGroup(context.Background(), &redis.XReadGroupArgs{
		Group:    w.consumerGroup,
		Consumer: w.id,
		Streams:  []string{w.streamKey, "0"},
		Block:    -1,
	}).Result()
	if errors.Is(err, redis.Nil) {
		return 0
	}
	require.NoError(t, err)

	count := 0
	for _, stream := range streams {
		count += len(stream.Messages)
	}
	return count
}

func TestEnsureConsumerGroupIsIdempotent(t *testing.T) {
	w, _, _ := newTestWorker(t)
	assert.NoError(t, w.ensureConsumerGroup())
}

func TestWorkerPublishesResult(t *testing.T) {
	w, client, _ := newTestWorker(t)
	ctx := context.Background()

	enqueue(t, client, WorkRequest{
		RequestID: "r-1",
		Request: render.Request{
			Template: `{{join tags ", "}}|{{#each rows}}{{modChoose @index "even" "odd"}} {{/each}}`,
			Data: map[string]interface{}{
				"tags": []interface{}{"go", "redis"},
				"rows": []interface{}{1, 2, 3},
			},
		},
	})

	handled, err := w.readBatch(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, handled)

	results := readEvents(t, client, w.resultStream)
	require.Len(t, results, 1)
	assert.Equal(t, "r-1", results[0]["request_id"])
	assert.Equal(t, "render-test", results[0]["worker_id"])
	assert.Equal(t, "go, redis|even odd even ", results[0]["output"])
	assert.Equal(t, render.PathFallback, results[0]["path_taken"])
	assert.EqualValues(t, -1, results[0]["variant"])

	assert.Empty(t, readEvents(t, client, w.resultStream+ErrorStreamSuffix))
	assert.Zero(t, pendingCount(t, w, client))
}

func TestWorkerSelectsVariant(t *testing.T) {
	w, client, _ := newTestWorker(t)

	enqueue(t, client, WorkRequest{
		RequestID: "r-2",
		Request: render.Request{
			Template: "fallback",
			Variants: []render.Variant{
				{Condition: "data.count > 10.0", Template: "many"},
				{Condition: "data.count > 0.0", Template: "{{join items glue=\"+\"}}"},
			},
			Data: map[string]interface{}{"count": 2, "items": "single"},
		},
	})

	_, err := w.readBatch(context.Background())
	require.NoError(t, err)

	results := readEvents(t, client, w.resultStream)
	require.Len(t, results, 1)
	assert.Equal(t, "single", results[0]["output"])
	assert.Equal(t, render.PathVariant, results[0]["path_taken"])
	assert.EqualValues(t, 1, results[0]["variant"])
}

func TestWorkerPublishesErrors(t *testing.T) {
	tests := []struct {
		name     string
		request  WorkRequest
		kind     string
		helper   string
		contains string
	}{
		{
			name:     "modChoose without values",
			request:  WorkRequest{RequestID: "e-1", Request: render.Request{Template: "{{modChoose 3}}"}},
			kind:     KindArity,
			helper:   helpers.NameModChoose,
			contains: "modChoose",
		},
		{
			name:     "join with too many arguments",
			request:  WorkRequest{RequestID: "e-2", Request: render.Request{Template: `{{join list "," "x"}}`, Data: map[string]interface{}{"list": []interface{}{"a"}}}},
			kind:     KindArity,
			helper:   helpers.NameJoin,
			contains: "join",
		},
		{
			name:     "invalid dividend",
			request:  WorkRequest{RequestID: "e-3", Request: render.Request{Template: `{{modChoose "abc" "a" "b"}}`}},
			kind:     KindInvalidDividend,
			contains: "abc",
		},
		{
			name:     "empty request",
			request:  WorkRequest{RequestID: "e-4"},
			kind:     KindInvalidRequest,
			contains: "invalid request",
		},
		{
			name:     "unparsable template",
			request:  WorkRequest{RequestID: "e-5", Request: render.Request{Template: "{{#if x}}"}},
			kind:     KindInvalidRequest,
			contains: "template",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, client, _ := newTestWorker(t)

			enqueue(t, client, tt.request)
			_, err := w.readBatch(context.Background())
			require.NoError(t, err)

			assert.Empty(t, readEvents(t, client, w.resultStream))

			failures := readEvents(t, client, w.resultStream+ErrorStreamSuffix)
			require.Len(t, failures, 1)
			assert.Equal(t, tt.request.RequestID, failures[0]["request_id"])
			assert.Equal(t, tt.kind, failures[0]["kind"])
			assert.Contains(t, failures[0]["error"], tt.contains)
			if tt.helper != "" {
				assert.Equal(t, tt.helper, failures[0]["helper"])
			} else {
				assert.NotContains(t, failures[0], "helper")
			}

			assert.Zero(t, pendingCount(t, w, client))
		})
	}
}

func TestWorkerAcknowledgesMalformedMessages(t *testing.T) {
	w, client, _ := newTestWorker(t)
	ctx := context.Background()

	id, err := client.XAdd(ctx, &redis.XAddArgs{
		Stream: w.streamKey,
		Values: map[string]interface{}{"payload": "nope"},
	}).Result()
	require.NoError(t, err)

	_, err = w.readBatch(ctx)
	require.NoError(t, err)

	failures := readEvents(t, client, w.resultStream+ErrorStreamSuffix)
	require.Len(t, failures, 1)
	assert.Equal(t, id, failures[0]["request_id"])
	assert.Equal(t, KindInvalidRequest, failures[0]["kind"])
	assert.Zero(t, pendingCount(t, w, client))
}

func TestReadBatchEmptyStream(t *testing.T) {
	w, _, _ := newTestWorker(t)

	handled, err := w.readBatch(context.Background())
	require.NoError(t, err)
	assert.Zero(t, handled)
}

func TestWorkerStartStop(t *testing.T) {
	w, client, _ := newTestWorker(t)
	assert.False(t, w.Running())

	require.NoError(t, w.Start())
	assert.True(t, w.Running())

	for i := 0; i < 3; i++ {
		enqueue(t, client, WorkRequest{
			RequestID: fmt.Sprintf("loop-%d", i),
			Request: render.Request{
				Template: "{{modChoose n \"a\" \"b\"}}",
				Data:     map[string]interface{}{"n": i},
			},
		})
	}

	assert.Eventually(t, func() bool {
		n, err := client.XLen(context.Background(), w.resultStream).Result()
		return err == nil && n == 3
	}, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, w.Stop())
	assert.False(t, w.Running())

	var outputs []interface{}
	for _, event := range readEvents(t, client, w.resultStream) {
		outputs = append(outputs, event["output"])
	}
	assert.Equal(t, []interface{}{"a", "b", "a"}, outputs)
}

func TestParseWorkRequest(t *testing.T) {
	tests := []struct {
		name    string
		values  map[string]interface{}
		wantErr string
	}{
		{name: "missing data", values: map[string]interface{}{}, wantErr: "missing or invalid 'data' field"},
		{name: "non string data", values: map[string]interface{}{"data": 42}, wantErr: "missing or invalid 'data' field"},
		{name: "bad json", values: map[string]interface{}{"data": "{"}, wantErr: "failed to unmarshal work request"},
		{name: "missing request id", values: map[string]interface{}{"data": `{"template":"x"}`}, wantErr: "request_id is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseWorkRequest(tt.values)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}

	request, err := parseWorkRequest(map[string]interface{}{
		"data": `{"request_id":"ok","template":"{{join a}}","data":{"a":[1,2]}}`,
	})
	require.NoError(t, err)
	assert.Equal(t, "ok", request.RequestID)
	assert.Equal(t, "{{join a}}", request.Template)
	assert.Equal(t, []interface{}{float64(1), float64(2)}, request.Data["a"])
}

func TestErrorKind(t *testing.T) {
	assert.Equal(t, KindArity, errorKind(fmt.Errorf("wrapped: %w", &helpers.ArityError{Helper: "join", Want: "1 or 2", Got: 3})))
	assert.Equal(t, KindInvalidDividend, errorKind(&helpers.DividendError{Value: "x"}))
	assert.Equal(t, KindInvalidRequest, errorKind(render.ErrNoTemplate))
	assert.Equal(t, KindInvalidRequest, errorKind(fmt.Errorf("%w: template or variants are required", render.ErrInvalidRequest)))
	assert.Equal(t, KindRender, errorKind(errors.New("invalid request lookalike")))
	assert.Equal(t, KindRender, errorKind(errors.New("boom")))
}

func TestHealthServer(t *testing.T) {
	w, client, mr := newTestWorker(t)
	hs := NewHealthServer(0, client, w, zaptest.NewLogger(t))
	handler := hs.Handler()

	get := func(path string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		return rec
	}

	rec := get("/health")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"healthy","checks":{"redis":"healthy"}}`, rec.Body.String())

	// worker not started yet
	rec = get("/ready")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "render loop is not running")

	require.NoError(t, w.Start())
	t.Cleanup(func() { _ = w.Stop() })

	rec = get("/ready")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ready","checks":{"redis":"ready","worker":"ready"}}`, rec.Body.String())

	mr.Close()

	rec = get("/health")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "unhealthy")

	rec = get("/ready")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestHealthServerWithoutReadiness(t *testing.T) {
	_, client, _ := newTestWorker(t)
	handler := NewHealthServer(0, client, nil, nil).Handler()

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ready","checks":{"redis":"ready"}}`, rec.Body.String())
}
