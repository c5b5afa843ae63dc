package adsgo

import "github.com/larskjeldsen/adsgo/internal/ads"

// EventType identifies the kind of asynchronous event delivered on a
// Client's event channel.
type EventType int

const (
	// EventConnected fires once, after New completes the handshake.
	EventConnected EventType = iota
	// EventDisconnected fires when Close is called; a connection that dies
	// emits EventConnectionLost instead.
	EventDisconnected
	// EventConnectionLost fires when the state monitor detects the
	// connection died without a graceful Close.
	EventConnectionLost
	// EventReconnected fires after a dropped connection is reestablished.
	EventReconnected
	// EventPlcSymbolVersionChange fires when the state monitor's poll of the
	// PLC's symbol version (a Read of 0xF008) sees it change, meaning the
	// program was downloaded and the symbol/type caches are stale.
	EventPlcSymbolVersionChange
	// EventPlcRuntimeStateChange fires when the PLC's ADSState changes
	// (e.g. Run to Stop).
	EventPlcRuntimeStateChange
	// EventTcSystemStateChange stands for a change of the TwinCAT system
	// service's ADS state. No code path in this client emits it: the state
	// monitor polls only the target port, not the system service.
	EventTcSystemStateChange
	// EventRouterStateChange fires when the local AMS router reports a
	// state transition via a router-note packet.
	EventRouterStateChange
	// EventClientError stands for an internal error outside of a specific
	// operation's return value. No code path in this client emits it.
	EventClientError
	// EventClientWarning reports a non-fatal condition, such as a
	// subscription that could not be re-established after a reconnect.
	EventClientWarning
)

func (t EventType) String() string {
	switch t {
	case EventConnected:
		return "connected"
	case EventDisconnected:
		return "disconnected"
	case EventConnectionLost:
		return "connection_lost"
	case EventReconnected:
		return "reconnected"
	case EventPlcSymbolVersionChange:
		return "plc_symbol_version_change"
	case EventPlcRuntimeStateChange:
		return "plc_runtime_state_change"
	case EventTcSystemStateChange:
		return "tc_system_state_change"
	case EventRouterStateChange:
		return "router_state_change"
	case EventClientError:
		return "client_error"
	case EventClientWarning:
		return "client_warning"
	default:
		return "unknown"
	}
}

// Event is a single asynchronous notification about client or PLC state.
type Event struct {
	Type EventType

	// ADSState/DeviceState are populated for EventPlcRuntimeStateChange and
	// EventTcSystemStateChange.
	ADSState    ads.ADSState
	DeviceState uint16

	// SymbolVersion is populated for EventPlcSymbolVersionChange.
	SymbolVersion uint32

	// RouterCommandFlag is populated for EventRouterStateChange.
	RouterCommandFlag uint16

	// Err is populated for EventClientError, EventClientWarning, and
	// EventConnectionLost.
	Err error
}

// Events returns the channel on which the client delivers asynchronous
// events. The channel is closed when Close is called. Reading from it is
// optional: events are dropped if the channel is full so a slow or absent
// reader never blocks client operations.
func (c *Client) Events() <-chan Event {
	return c.events
}

func (c *Client) emitEvent(ev Event) {
	c.eventsMu.RLock()
	defer c.eventsMu.RUnlock()
	select {
	case c.events <- ev:
	default:
		c.metrics.NotificationDropped()
	}
}

// handleRouterNote is wired into transport.Conn.SetRouterNoteHandler and
// republishes router-note packets as EventRouterStateChange events.
func (c *Client) handleRouterNote(commandFlag uint16, data []byte) {
	c.emitEvent(Event{Type: EventRouterStateChange, RouterCommandFlag: commandFlag})
}
