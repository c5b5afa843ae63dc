package adsgo

import (
	"context"
	"encoding/binary"
	"sync"
	"time"

	"github.com/larskjeldsen/adsgo/internal/ads"
)

// stateMonitor periodically polls ReadState to detect PLC state transitions
// and connection loss that would otherwise only surface as an error on the
// next caller-initiated operation. Enabled via WithStateMonitor.
type stateMonitor struct {
	client   *Client
	interval time.Duration

	// autoReconnect and reconnectInterval mirror WithAutoReconnect /
	// WithReconnectInterval; set by New before start.
	autoReconnect     bool
	reconnectInterval time.Duration

	// connectionDownDelay gates how stale lastSeen must be before a failed
	// ReadState is escalated to a declared connection loss, so a single
	// dropped poll doesn't flap the connection state.
	connectionDownDelay time.Duration
	lastSeen            time.Time

	// monitorSymbolVersion mirrors monitorPlcSymbolVersion; when false the
	// internal symbol-version poll is skipped entirely.
	monitorSymbolVersion bool
	hideConsoleWarnings  bool

	stopCh   chan struct{}
	stopOnce sync.Once
	done     chan struct{}

	lastADSState         ads.ADSState
	lastDeviceState      uint16
	lastSymbolVersion    uint32
	haveBaseline         bool
	connectionLost       bool
	currentState         ConnectionState
	lastReconnectAttempt time.Time
}

func newStateMonitor(client *Client, interval time.Duration) *stateMonitor {
	return &stateMonitor{
		client:               client,
		interval:             interval,
		connectionDownDelay:  5 * time.Second,
		monitorSymbolVersion: true,
		stopCh:               make(chan struct{}),
		done:                 make(chan struct{}),
		currentState:         StateConnected,
		lastSeen:             time.Now(),
	}
}

// pastDownDelay reports whether the last successful ReadState is old enough
// to declare the connection lost.
func (m *stateMonitor) pastDownDelay() bool {
	return time.Since(m.lastSeen) >= m.connectionDownDelay
}

// transition updates the monitor's view of the connection state and, if it
// changed, invokes the client's state callback (if any).
func (m *stateMonitor) transition(new ConnectionState, err error) {
	old := m.currentState
	if old == new {
		return
	}
	m.currentState = new
	if m.client.stateCallback != nil {
		m.client.stateCallback(old, new, err)
	}
}

func (m *stateMonitor) start() {
	go m.run()
}

func (m *stateMonitor) stop() {
	m.stopOnce.Do(func() { close(m.stopCh) })
	<-m.done
}

func (m *stateMonitor) run() {
	defer close(m.done)

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-m.stopCh:
			return
		case <-ticker.C:
			m.poll()
		}
	}
}

func (m *stateMonitor) poll() {
	ctx, cancel := context.WithTimeout(context.Background(), m.interval)
	defer cancel()

	m.client.metrics.HealthCheckStarted()
	state, err := m.client.ReadState(ctx)
	if err != nil {
		m.client.metrics.HealthCheckCompleted(false)
		if !m.connectionLost && m.pastDownDelay() {
			m.connectionLost = true
			m.transition(StateError, err)
			m.client.emitEvent(Event{Type: EventConnectionLost, Err: err})
		}
		if m.connectionLost {
			m.maybeReconnect()
		}
		return
	}

	m.lastSeen = time.Now()
	m.client.metrics.HealthCheckCompleted(true)

	if m.connectionLost {
		m.connectionLost = false
		m.transition(StateConnected, nil)
		m.client.emitEvent(Event{Type: EventReconnected})
	}

	if !m.haveBaseline {
		m.lastADSState = state.ADSState
		m.lastDeviceState = state.DeviceState
		if m.monitorSymbolVersion {
			m.pollSymbolVersion(ctx)
		}
		m.haveBaseline = true
		return
	}

	if state.ADSState != m.lastADSState || state.DeviceState != m.lastDeviceState {
		m.lastADSState = state.ADSState
		m.lastDeviceState = state.DeviceState
		m.client.emitEvent(Event{
			Type:        EventPlcRuntimeStateChange,
			ADSState:    state.ADSState,
			DeviceState: state.DeviceState,
		})
	}

	if m.monitorSymbolVersion {
		m.pollSymbolVersion(ctx)
	}
}

// maybeReconnect attempts to redial the target once the connection has been
// observed lost, honoring reconnectInterval between attempts. No-op unless
// auto-reconnect was enabled via WithAutoReconnect.
func (m *stateMonitor) maybeReconnect() {
	if !m.autoReconnect {
		return
	}
	if !m.lastReconnectAttempt.IsZero() && time.Since(m.lastReconnectAttempt) < m.reconnectInterval {
		return
	}
	m.lastReconnectAttempt = time.Now()

	ctx, cancel := context.WithTimeout(context.Background(), m.client.dialTimeout)
	defer cancel()

	if err := m.client.reconnect(ctx); err != nil {
		if !m.hideConsoleWarnings {
			m.client.logger.Warn("adsgo: reconnect attempt failed", "error", err)
		}
		return
	}

	m.connectionLost = false
	m.transition(StateConnected, nil)
	m.client.emitEvent(Event{Type: EventReconnected})
}

// pollSymbolVersion reads ADSIGRP_SYM_VERSION (0xF008) and, on a change,
// invalidates the symbol and type caches and emits
// EventPlcSymbolVersionChange so callers know any cached handles are stale.
func (m *stateMonitor) pollSymbolVersion(ctx context.Context) {
	data, err := m.client.Read(ctx, ads.IndexGroupSymbolVersion, 0, 4)
	if err != nil || len(data) < 1 {
		return
	}
	var version uint32
	if len(data) >= 4 {
		version = binary.LittleEndian.Uint32(data)
	} else {
		version = uint32(data[0])
	}

	if !m.haveBaseline {
		m.lastSymbolVersion = version
		return
	}

	if version != m.lastSymbolVersion {
		m.lastSymbolVersion = version

		m.client.symbolTableMu.Lock()
		m.client.symbolTable.Invalidate()
		m.client.symbolTableMu.Unlock()

		m.client.typeCatalogMu.Lock()
		m.client.typeCatalog.Invalidate()
		m.client.typeCatalogMu.Unlock()

		m.client.emitEvent(Event{Type: EventPlcSymbolVersionChange, SymbolVersion: version})
	}
}
