package adsgo

import (
	"context"
	"fmt"
	"time"

	"github.com/larskjeldsen/adsgo/internal/ams"
	"github.com/larskjeldsen/adsgo/internal/transport"
)

// ConnectionState mirrors the transport layer's connection state machine so
// callers observing state transitions (via WithStateCallback) don't need to
// import the internal transport package.
type ConnectionState = transport.ConnectionState

const (
	StateConnecting    = transport.StateConnecting
	StateConnected     = transport.StateConnected
	StateDisconnecting = transport.StateDisconnecting
	StateClosed        = transport.StateClosed
	StateError         = transport.StateError
)

// StateCallback is invoked whenever the client's connection state changes,
// including transitions driven by auto-reconnect. It must not block for
// long; it runs on the state-monitor goroutine.
type StateCallback func(old, new ConnectionState, err error)

// WithAutoReconnect enables automatic reconnection when a health check (see
// WithHealthCheck or WithStateMonitor) observes the connection has been
// lost. Reconnect attempts redial the original target address and, on
// success, re-issue every active notification subscription. Disabled by
// default: without it, a dropped connection simply fails subsequent calls.
func WithAutoReconnect(enabled bool) Option {
	return func(c *clientConfig) error {
		c.autoReconnect = enabled
		return nil
	}
}

// WithReconnectInterval sets the minimum delay between reconnect attempts
// once auto-reconnect is triggered (optional, defaults to 5s).
func WithReconnectInterval(interval time.Duration) Option {
	return func(c *clientConfig) error {
		if interval <= 0 {
			return fmt.Errorf("adsgo: reconnect interval must be positive")
		}
		c.reconnectInterval = interval
		return nil
	}
}

// WithHealthCheck enables periodic ReadState polling at the given interval
// to detect connection loss, independent of WithStateMonitor. If both are
// set, the state monitor runs once at the shorter of the two intervals.
func WithHealthCheck(interval time.Duration) Option {
	return func(c *clientConfig) error {
		if interval <= 0 {
			return fmt.Errorf("adsgo: health check interval must be positive")
		}
		c.healthCheckInterval = interval
		return nil
	}
}

// WithStateCallback registers a callback invoked on every connection state
// transition observed by the state monitor, including reconnects.
func WithStateCallback(cb StateCallback) Option {
	return func(c *clientConfig) error {
		c.stateCallback = cb
		return nil
	}
}

// reconnect redials the original target address, swaps in the new
// transport connection, restores the notification and router-note
// handlers, and re-issues every still-open subscription. Called by the
// state monitor after it detects the connection has been lost.
func (c *Client) reconnect(ctx context.Context) error {
	c.metrics.ConnectionAttempts()

	dialCtx, cancel := context.WithTimeout(ctx, c.dialTimeout)
	defer cancel()

	newConn, err := transport.Dial(dialCtx, c.dialAddress, c.dialTimeout, c.dialOpts)
	if err != nil {
		c.metrics.ConnectionFailures()
		return fmt.Errorf("adsgo: reconnect: %w", err)
	}

	old := c.getConn()

	c.connMu.Lock()
	c.conn = newConn
	if !c.sourcePinned {
		c.sourceNetID = newConn.LocalNetID
		c.sourcePort = ams.Port(newConn.LocalPort)
	}
	c.connMu.Unlock()

	newConn.SetNotificationHandler(c.handleNotification)
	newConn.SetRouterNoteHandler(c.handleRouterNote)

	if old != nil {
		old.Close()
	}

	c.metrics.ConnectionSuccesses()
	c.metrics.ConnectionActive(true)
	c.metrics.Reconnections()

	c.subscriptionsMu.RLock()
	hasSubs := len(c.subscriptions) > 0
	c.subscriptionsMu.RUnlock()
	if hasSubs {
		resubCtx, resubCancel := context.WithTimeout(context.Background(), c.dialTimeout)
		c.resubscribeAll(resubCtx)
		resubCancel()
	}

	c.logger.Info("adsgo: reconnected", "address", c.dialAddress)
	return nil
}
