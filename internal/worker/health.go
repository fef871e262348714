package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const probeTimeout = 2 * time.Second

// Readiness reports whether the render loop accepts work
type Readiness interface {
	Running() bool
}

// HealthResponse is the body of /health and /ready
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// probe is a named dependency check
type probe struct {
	name  string
	check func(ctx context.Context) error
}

// HealthServer serves liveness and readiness probes for the render worker
type HealthServer struct {
	port   int
	logger *zap.Logger
	server *http.Server

	liveness  []probe
	readiness []probe
}

// NewHealthServer creates a new health server. /health checks Redis;
// /ready additionally requires readiness to report a running loop, unless
// readiness is nil.
func NewHealthServer(port int, redisClient *redis.Client, readiness Readiness, logger *zap.Logger) *HealthServer {
	if logger == nil {
		logger = zap.NewNop()
	}

	redisProbe := probe{name: "redis", check: func(ctx context.Context) error {
		return redisClient.Ping(ctx).Err()
	}}

	hs := &HealthServer{
		port:      port,
		logger:    logger,
		liveness:  []probe{redisProbe},
		readiness: []probe{redisProbe},
	}

	if readiness != nil {
		hs.readiness = append(hs.readiness, probe{name: "worker", check: func(context.Context) error {
			if !readiness.Running() {
				return errors.New("render loop is not running")
			}
			return nil
		}})
	}

	return hs
}

// Handler returns the mux serving /health and /ready
func (hs *HealthServer) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", hs.handle(hs.liveness, "healthy", "unhealthy"))
	mux.HandleFunc("/ready", hs.handle(hs.readiness, "ready", "not ready"))
	return mux
}

// Start starts the health check server in the background
func (hs *HealthServer) Start() error {
	hs.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", hs.port),
		Handler:           hs.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	hs.logger.Info("starting health server", zap.Int("port", hs.port))

	go func() {
		if err := hs.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			hs.logger.Error("health server error", zap.Error(err))
		}
	}()

	return nil
}

// Stop shuts the health server down
func (hs *HealthServer) Stop() error {
	if hs.server == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	hs.logger.Info("stopping health server")
	return hs.server.Shutdown(ctx)
}

// handle runs every probe and answers 200 with okStatus when all pass,
// 503 with failStatus otherwise
func (hs *HealthServer) handle(probes []probe, okStatus, failStatus string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), probeTimeout)
		defer cancel()

		resp := HealthResponse{Status: okStatus, Checks: make(map[string]string, len(probes))}
		code := http.StatusOK

		for _, p := range probes {
			if err := p.check(ctx); err != nil {
				resp.Checks[p.name] = fmt.Sprintf("%s: %v", failStatus, err)
				resp.Status = failStatus
				code = http.StatusServiceUnavailable
				continue
			}
			resp.Checks[p.name] = okStatus
		}

		hs.respondJSON(w, code, resp)
	}
}

func (hs *HealthServer) respondJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		hs.logger.Error("failed to encode response", zap.Error(err))
	}
}
