// Package metrics provides observability for the arena server.
// Counters are cheap atomics so the answer hot path never blocks on them.
package metrics

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"
)

// Collector gathers performance metrics.
type Collector struct {
	// Session metrics
	SessionsStarted  int64
	SessionsFinished int64

	// Answer metrics
	AnswersCorrect int64
	AnswersWrong   int64
	QuestionsServed int64

	// Event metrics
	EventsWritten    int64
	EventWriteLatSum int64 // nanoseconds
	EventWriteLatMax int64
	EventWriteErrors int64

	// WebSocket metrics
	WSConnectionsActive int64
	WSMessagesIn        int64
	WSMessagesOut       int64
	WSErrors            int64

	// System
	StartTime time.Time
	mu        sync.RWMutex
}

// Global collector instance
var collector = &Collector{
	StartTime: time.Now(),
}

// Get returns the global collector.
func Get() *Collector {
	return collector
}

// RecordSessionStart records a new session entering play.
func (c *Collector) RecordSessionStart() {
	atomic.AddInt64(&c.SessionsStarted, 1)
}

// RecordSessionEnd records a session reaching game over.
func (c *Collector) RecordSessionEnd() {
	atomic.AddInt64(&c.SessionsFinished, 1)
}

// RecordAnswer records one accepted answer transition.
func (c *Collector) RecordAnswer(correct bool) {
	if correct {
		atomic.AddInt64(&c.AnswersCorrect, 1)
	} else {
		atomic.AddInt64(&c.AnswersWrong, 1)
	}
}

// RecordQuestionServed records one question handed to a player.
func (c *Collector) RecordQuestionServed() {
	atomic.AddInt64(&c.QuestionsServed, 1)
}

// RecordEventWrite records an event write to the database.
func (c *Collector) RecordEventWrite(latency time.Duration, err error) {
	atomic.AddInt64(&c.EventsWritten, 1)
	atomic.AddInt64(&c.EventWriteLatSum, int64(latency))

	if int64(latency) > atomic.LoadInt64(&c.EventWriteLatMax) {
		atomic.StoreInt64(&c.EventWriteLatMax, int64(latency))
	}

	if err != nil {
		atomic.AddInt64(&c.EventWriteErrors, 1)
	}
}

// RecordWSConnection records WebSocket connection changes.
func (c *Collector) RecordWSConnection(delta int64) {
	atomic.AddInt64(&c.WSConnectionsActive, delta)
}

// RecordWSMessage records WebSocket messages.
func (c *Collector) RecordWSMessage(incoming bool) {
	if incoming {
		atomic.AddInt64(&c.WSMessagesIn, 1)
	} else {
		atomic.AddInt64(&c.WSMessagesOut, 1)
	}
}

// RecordWSError records a WebSocket error.
func (c *Collector) RecordWSError() {
	atomic.AddInt64(&c.WSErrors, 1)
}

// Snapshot returns current metrics as a map.
func (c *Collector) Snapshot() map[string]interface{} {
	c.mu.RLock()
	defer c.mu.RUnlock()

	eventsWritten := atomic.LoadInt64(&c.EventsWritten)

	var eventAvg float64
	if eventsWritten > 0 {
		eventAvg = float64(atomic.LoadInt64(&c.EventWriteLatSum)) / float64(eventsWritten) / 1e6 // ms
	}

	return map[string]interface{}{
		"uptime_seconds": time.Since(c.StartTime).Seconds(),

		"sessions": map[string]interface{}{
			"started":  atomic.LoadInt64(&c.SessionsStarted),
			"finished": atomic.LoadInt64(&c.SessionsFinished),
		},

		"answers": map[string]interface{}{
			"correct":          atomic.LoadInt64(&c.AnswersCorrect),
			"wrong":            atomic.LoadInt64(&c.AnswersWrong),
			"questions_served": atomic.LoadInt64(&c.QuestionsServed),
		},

		"events": map[string]interface{}{
			"written":          eventsWritten,
			"avg_write_lat_ms": eventAvg,
			"max_write_lat_ms": float64(atomic.LoadInt64(&c.EventWriteLatMax)) / 1e6,
			"errors":           atomic.LoadInt64(&c.EventWriteErrors),
		},

		"websocket": map[string]interface{}{
			"active_connections": atomic.LoadInt64(&c.WSConnectionsActive),
			"messages_in":        atomic.LoadInt64(&c.WSMessagesIn),
			"messages_out":       atomic.LoadInt64(&c.WSMessagesOut),
			"errors":             atomic.LoadInt64(&c.WSErrors),
		},
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Cache-Control", "no-cache")

		snapshot := collector.Snapshot()
		json.NewEncoder(w).Encode(snapshot)
	}
}

// PrometheusHandler returns metrics in Prometheus format.
func PrometheusHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")

		c := collector

		fmt.Fprintf(w, "# HELP arena_sessions_started Total sessions started\n")
		fmt.Fprintf(w, "# TYPE arena_sessions_started counter\n")
		fmt.Fprintf(w, "arena_sessions_started %d\n\n", atomic.LoadInt64(&c.SessionsStarted))

		fmt.Fprintf(w, "# HELP arena_sessions_finished Total sessions finished\n")
		fmt.Fprintf(w, "# TYPE arena_sessions_finished counter\n")
		fmt.Fprintf(w, "arena_sessions_finished %d\n\n", atomic.LoadInt64(&c.SessionsFinished))

		fmt.Fprintf(w, "# HELP arena_answers_total Total answers by outcome\n")
		fmt.Fprintf(w, "# TYPE arena_answers_total counter\n")
		fmt.Fprintf(w, "arena_answers_total{outcome=\"correct\"} %d\n", atomic.LoadInt64(&c.AnswersCorrect))
		fmt.Fprintf(w, "arena_answers_total{outcome=\"wrong\"} %d\n\n", atomic.LoadInt64(&c.AnswersWrong))

		fmt.Fprintf(w, "# HELP arena_questions_served Total questions served\n")
		fmt.Fprintf(w, "# TYPE arena_questions_served counter\n")
		fmt.Fprintf(w, "arena_questions_served %d\n\n", atomic.LoadInt64(&c.QuestionsServed))

		fmt.Fprintf(w, "# HELP arena_events_written Total events written\n")
		fmt.Fprintf(w, "# TYPE arena_events_written counter\n")
		fmt.Fprintf(w, "arena_events_written %d\n\n", atomic.LoadInt64(&c.EventsWritten))

		fmt.Fprintf(w, "# HELP arena_event_write_errors Total event write errors\n")
		fmt.Fprintf(w, "# TYPE arena_event_write_errors counter\n")
		fmt.Fprintf(w, "arena_event_write_errors %d\n\n", atomic.LoadInt64(&c.EventWriteErrors))

		fmt.Fprintf(w, "# HELP arena_ws_connections Active WebSocket connections\n")
		fmt.Fprintf(w, "# TYPE arena_ws_connections gauge\n")
		fmt.Fprintf(w, "arena_ws_connections %d\n\n", atomic.LoadInt64(&c.WSConnectionsActive))

		fmt.Fprintf(w, "# HELP arena_ws_messages_total Total WebSocket messages\n")
		fmt.Fprintf(w, "# TYPE arena_ws_messages_total counter\n")
		fmt.Fprintf(w, "arena_ws_messages_total{direction=\"in\"} %d\n", atomic.LoadInt64(&c.WSMessagesIn))
		fmt.Fprintf(w, "arena_ws_messages_total{direction=\"out\"} %d\n", atomic.LoadInt64(&c.WSMessagesOut))
	}
}
