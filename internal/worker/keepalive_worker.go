// Package worker hosts the bot's periodic background loops.
package worker

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/report-bot/internal/gateway"
	"github.com/spec-kit/report-bot/internal/observability"
)

// highLatencyThreshold triggers a warning log on the heartbeat tick.
const highLatencyThreshold = 5 * time.Second

// KeepAliveWorker runs two loops: a heartbeat monitor that records liveness
// and logs uptime/latency, and an hourly ping posted to the report channel
// so the channel shows the bot is alive. Both are best-effort.
type KeepAliveWorker struct {
	gw      gateway.Gateway
	runtime *observability.Runtime
	logger  *zap.Logger

	channelID         string
	heartbeatInterval time.Duration
	pingInterval      time.Duration

	latency func() time.Duration
	guilds  func() int
}

// NewKeepAliveWorker creates the worker. latency and guilds read live
// gateway telemetry and may be nil when unavailable.
func NewKeepAliveWorker(
	gw gateway.Gateway,
	runtime *observability.Runtime,
	logger *zap.Logger,
	channelID string,
	heartbeatInterval, pingInterval time.Duration,
	latency func() time.Duration,
	guilds func() int,
) *KeepAliveWorker {
	if latency == nil {
		latency = func() time.Duration { return 0 }
	}
	if guilds == nil {
		guilds = func() int { return 0 }
	}
	return &KeepAliveWorker{
		gw:                gw,
		runtime:           runtime,
		logger:            logger,
		channelID:         channelID,
		heartbeatInterval: heartbeatInterval,
		pingInterval:      pingInterval,
		latency:           latency,
		guilds:            guilds,
	}
}

// Run blocks until ctx is cancelled.
func (w *KeepAliveWorker) Run(ctx context.Context) {
	heartbeat := time.NewTicker(w.heartbeatInterval)
	defer heartbeat.Stop()
	ping := time.NewTicker(w.pingInterval)
	defer ping.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("keep-alive worker stopped")
			return
		case <-heartbeat.C:
			w.tickHeartbeat()
		case <-ping.C:
			w.tickPing(ctx)
		}
	}
}

func (w *KeepAliveWorker) tickHeartbeat() {
	w.runtime.Heartbeat()

	stats := w.runtime.Stats()
	latency := w.latency()
	w.logger.Info("heartbeat",
		zap.Float64("uptime_hours", stats.Uptime.Hours()),
		zap.Duration("latency", latency),
		zap.Int("guilds", w.guilds()))

	if latency > highLatencyThreshold {
		w.logger.Warn("high gateway latency", zap.Duration("latency", latency))
	}
}

func (w *KeepAliveWorker) tickPing(ctx context.Context) {
	text := fmt.Sprintf("⏰ Hourly ping — still alive (%s)", time.Now().Format("2006-01-02 15:04:05"))
	if _, err := w.gw.SendMessage(ctx, w.channelID, text, nil); err != nil {
		w.logger.Warn("keep-alive ping failed", zap.Error(err))
		return
	}
	w.logger.Info("keep-alive ping sent")
}
