package adsgo

import (
	"testing"
	"time"
)

func TestStateMonitorTransition(t *testing.T) {
	client := &Client{logger: DefaultLogger, metrics: DefaultMetrics}
	monitor := newStateMonitor(client, time.Second)

	var calls []string
	client.stateCallback = func(old, new ConnectionState, err error) {
		calls = append(calls, old.String()+"->"+new.String())
	}

	monitor.transition(StateConnected, nil)
	if len(calls) != 0 {
		t.Fatalf("transition to the same state should not invoke the callback, got %v", calls)
	}

	monitor.transition(StateError, nil)
	if len(calls) != 1 || calls[0] != "connected->error" {
		t.Fatalf("unexpected callback calls: %v", calls)
	}

	monitor.transition(StateConnected, nil)
	if len(calls) != 2 || calls[1] != "error->connected" {
		t.Fatalf("unexpected callback calls: %v", calls)
	}
}

func TestStateMonitorMaybeReconnectDisabled(t *testing.T) {
	client := &Client{logger: DefaultLogger, metrics: DefaultMetrics, dialTimeout: time.Second}
	monitor := newStateMonitor(client, time.Second)
	monitor.autoReconnect = false

	// With auto-reconnect disabled this must be a no-op regardless of the
	// connection's actual state; there is no dial attempt to observe, so we
	// only assert it doesn't panic or flip currentState.
	monitor.maybeReconnect()
	if monitor.currentState != StateConnected {
		t.Errorf("currentState changed to %v though auto-reconnect is disabled", monitor.currentState)
	}
}

func TestStateMonitorMaybeReconnectHonorsInterval(t *testing.T) {
	// Points at a port that refuses connections immediately so the dial
	// attempt fails fast instead of hanging for the full timeout.
	client := &Client{
		logger:      DefaultLogger,
		metrics:     DefaultMetrics,
		dialAddress: "127.0.0.1:1",
		dialTimeout: 200 * time.Millisecond,
	}
	monitor := newStateMonitor(client, time.Second)
	monitor.autoReconnect = true
	monitor.reconnectInterval = time.Hour

	monitor.maybeReconnect()
	first := monitor.lastReconnectAttempt
	if first.IsZero() {
		t.Fatal("expected lastReconnectAttempt to be set after the first attempt")
	}

	monitor.maybeReconnect()
	if !monitor.lastReconnectAttempt.Equal(first) {
		t.Error("second call within reconnectInterval should not have attempted another reconnect")
	}
}
