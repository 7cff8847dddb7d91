// internal/eventlog/eventlog.go
package eventlog

import (
	"context"
	"fmt"
	"sync"
	"time"

	"custom-pricing-service/internal/common/config"
	"custom-pricing-service/internal/common/metrics"
)

// Level classifies an event log entry.
type Level string

const (
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
	LevelAlarm Level = "alarm"
)

// Entry is one recorded lifecycle event.
type Entry struct {
	Time   time.Time              `json:"timestamp"`
	Level  Level                  `json:"level"`
	Action string                 `json:"action"`
	Fields map[string]interface{} `json:"fields,omitempty"`
}

// Sink receives a copy of every recorded entry. Sinks must not block;
// slow destinations should buffer internally.
type Sink interface {
	Write(entry Entry)
}

// Notifier delivers alarm notifications to an external channel.
type Notifier interface {
	Notify(ctx context.Context, subject, message string) error
}

// Log is a bounded in-memory event log. When the buffer is full the
// oldest entries are overwritten.
type Log struct {
	mu      sync.Mutex
	entries []Entry
	next    int
	full    bool

	capacity       int
	alarmThreshold int
	alarmWindow    time.Duration
	lastAlarmAt    time.Time

	sinks    []Sink
	notifier Notifier
	now      func() time.Time
}

func New(cfg config.EventLogConfig, sinks ...Sink) *Log {
	capacity := cfg.Capacity
	if capacity <= 0 {
		capacity = 1000
	}
	threshold := cfg.AlarmThreshold
	if threshold <= 0 {
		threshold = 5
	}
	window := cfg.AlarmWindow
	if window <= 0 {
		window = 10 * time.Minute
	}
	return &Log{
		entries:        make([]Entry, capacity),
		capacity:       capacity,
		alarmThreshold: threshold,
		alarmWindow:    window,
		sinks:          sinks,
		now:            time.Now,
	}
}

// SetNotifier attaches the alarm notifier. Safe to leave unset.
func (l *Log) SetNotifier(n Notifier) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.notifier = n
}

// Record appends an entry, stamps it with the current time, and mirrors
// it to all sinks.
func (l *Log) Record(level Level, action string, fields map[string]interface{}) {
	entry := Entry{
		Time:   l.now().UTC(),
		Level:  level,
		Action: action,
		Fields: fields,
	}

	l.mu.Lock()
	l.entries[l.next] = entry
	l.next = (l.next + 1) % l.capacity
	if l.next == 0 {
		l.full = true
	}
	sinks := l.sinks
	l.mu.Unlock()

	metrics.EventLogEntries.WithLabelValues(string(level)).Inc()

	for _, s := range sinks {
		s.Write(entry)
	}
}

// Recent returns up to limit entries in insertion order, oldest first.
// A non-positive limit defaults to 100; limits are clamped to [1, 500].
func (l *Log) Recent(limit int) []Entry {
	if limit <= 0 {
		limit = 100
	}
	if limit > 500 {
		limit = 500
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	ordered := l.snapshotLocked()
	if len(ordered) > limit {
		ordered = ordered[len(ordered)-limit:]
	}

	out := make([]Entry, len(ordered))
	copy(out, ordered)
	return out
}

// CheckErrorAlarm fires an alarm entry when the number of error-level
// entries inside the alarm window reaches the threshold. At most one
// alarm fires per window.
func (l *Log) CheckErrorAlarm(ctx context.Context) bool {
	l.mu.Lock()

	now := l.now()
	cutoff := now.Add(-l.alarmWindow)

	errorCount := 0
	for _, e := range l.snapshotLocked() {
		if e.Level == LevelError && e.Time.After(cutoff) {
			errorCount++
		}
	}

	if errorCount < l.alarmThreshold || l.lastAlarmAt.After(cutoff) {
		l.mu.Unlock()
		return false
	}

	l.lastAlarmAt = now
	notifier := l.notifier
	threshold := l.alarmThreshold
	window := l.alarmWindow
	l.mu.Unlock()

	l.Record(LevelAlarm, "error_spike", map[string]interface{}{
		"errorCount": errorCount,
		"threshold":  threshold,
		"window":     window.String(),
	})
	metrics.AlarmsFired.Inc()

	if notifier != nil {
		subject := "Variant lifecycle error spike"
		message := fmt.Sprintf("Detected %d errors within %s", errorCount, window)
		// Best effort, a failed notification must not fail the caller.
		_ = notifier.Notify(ctx, subject, message)
	}

	return true
}

// snapshotLocked returns the live entries oldest first. Caller holds mu.
func (l *Log) snapshotLocked() []Entry {
	if !l.full {
		return l.entries[:l.next]
	}
	out := make([]Entry, 0, l.capacity)
	out = append(out, l.entries[l.next:]...)
	out = append(out, l.entries[:l.next]...)
	return out
}
