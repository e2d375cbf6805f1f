package observability

import (
	"sync"
	"time"
)

// Runtime tracks process-level health counters: uptime, gateway heartbeat,
// connection churn, and how much work the bot has handled. Read by the
// !status command and the ops HTTP server.
type Runtime struct {
	mu              sync.Mutex
	startTime       time.Time
	lastHeartbeat   time.Time
	disconnections  int64
	reconnections   int64
	commandsHandled int64
	classifications int64
}

// NewRuntime starts the uptime clock.
func NewRuntime() *Runtime {
	now := time.Now()
	return &Runtime{startTime: now, lastHeartbeat: now}
}

// Heartbeat records a liveness tick.
func (r *Runtime) Heartbeat() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lastHeartbeat = time.Now()
}

// RecordDisconnect increments the disconnect counter.
func (r *Runtime) RecordDisconnect() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.disconnections++
}

// RecordReconnect increments the reconnect counter.
func (r *Runtime) RecordReconnect() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reconnections++
	r.lastHeartbeat = time.Now()
}

// RecordCommand counts a handled chat command.
func (r *Runtime) RecordCommand() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.commandsHandled++
}

// RecordClassification counts a completed classification.
func (r *Runtime) RecordClassification() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.classifications++
}

// Snapshot is a point-in-time view of the runtime counters.
type Snapshot struct {
	Uptime          time.Duration
	LastHeartbeat   time.Time
	Disconnections  int64
	Reconnections   int64
	CommandsHandled int64
	Classifications int64
}

// Stats returns the current counters.
func (r *Runtime) Stats() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return Snapshot{
		Uptime:          time.Since(r.startTime),
		LastHeartbeat:   r.lastHeartbeat,
		Disconnections:  r.disconnections,
		Reconnections:   r.reconnections,
		CommandsHandled: r.commandsHandled,
		Classifications: r.classifications,
	}
}
