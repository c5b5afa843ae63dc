// Package transport implements the TCP transport for AMS router and ADS
// communication: the raw socket, the router port-connect handshake, and
// invoke-ID based request/response multiplexing.
package transport

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/larskjeldsen/adsgo/internal/ams"
)

// ConnectionState represents the state of the connection.
type ConnectionState int32

const (
	StateConnecting ConnectionState = iota
	StateConnected
	StateDisconnecting
	StateClosed
	StateError
)

func (s ConnectionState) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateDisconnecting:
		return "disconnecting"
	case StateClosed:
		return "closed"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}

var (
	ErrConnectionClosed = errors.New("connection closed")
	ErrConnectionFailed = errors.New("connection failed")
)

// NotificationHandler is called when an ADS Notification packet (CommandID
// 0x0008) is received.
type NotificationHandler func(*ams.Packet)

// RouterNoteHandler is called when a router-protocol packet with no AMS
// header arrives outside of the port-connect handshake itself — today this
// is only the router-note (command flag 0x1001) the TwinCAT router sends
// on its own state transitions (start/stop/removed).
type RouterNoteHandler func(commandFlag uint16, data []byte)

type Conn struct {
	conn                net.Conn
	mu                  sync.Mutex
	state               atomic.Int32 // ConnectionState
	timeout             time.Duration
	invokeID            atomic.Uint32
	responses           chan *pendingResponse
	pending             map[uint32]chan<- *ams.Packet
	pendingMu           sync.RWMutex
	notificationHandler NotificationHandler
	notifHandlerMu      sync.RWMutex
	routerNoteHandler   RouterNoteHandler
	routerNoteMu        sync.RWMutex
	shutdownCtx         context.Context
	shutdownCancel      context.CancelFunc
	lastError           error
	errorMu             sync.RWMutex

	// LocalNetID/LocalPort are populated by the router port-connect
	// handshake when the caller does not pin a local AMS identity; the
	// router assigns one for the lifetime of the TCP connection.
	LocalNetID ams.NetID
	LocalPort  uint16
}

type pendingResponse struct {
	invokeID uint32
	packet   *ams.Packet
	err      error
}

// DialOptions configures the router handshake performed after the TCP
// socket connects.
type DialOptions struct {
	// RequestedPort is the AMS port to register with the router via the
	// port-connect frame. 0 lets the router assign an ephemeral port.
	RequestedPort uint16

	// SkipRegister forces a local AMS identity instead of performing the
	// router port-connect handshake, for callers that pin localAmsNetId/
	// localAdsPort and want to skip router registration entirely.
	SkipRegister bool
	LocalNetID   ams.NetID
	LocalPort    uint16
}

func Dial(ctx context.Context, address string, timeout time.Duration, opts DialOptions) (*Conn, error) {
	dialer := &net.Dialer{
		Timeout:   timeout,
		KeepAlive: 30 * time.Second,
	}
	netConn, err := dialer.DialContext(ctx, "tcp", address)
	if err != nil {
		return nil, fmt.Errorf("transport: dial %s: %w", address, err)
	}

	if tcpConn, ok := netConn.(*net.TCPConn); ok {
		if err := tcpConn.SetKeepAlive(true); err != nil {
			netConn.Close()
			return nil, fmt.Errorf("transport: failed to set keepalive: %w", err)
		}
		if err := tcpConn.SetKeepAlivePeriod(30 * time.Second); err != nil {
			netConn.Close()
			return nil, fmt.Errorf("transport: failed to set keepalive period: %w", err)
		}
		if err := tcpConn.SetNoDelay(true); err != nil {
			netConn.Close()
			return nil, fmt.Errorf("transport: failed to set nodelay: %w", err)
		}
	}

	shutdownCtx, shutdownCancel := context.WithCancel(context.Background())

	conn := &Conn{
		conn:           netConn,
		timeout:        timeout,
		responses:      make(chan *pendingResponse, 16),
		pending:        make(map[uint32]chan<- *ams.Packet),
		shutdownCtx:    shutdownCtx,
		shutdownCancel: shutdownCancel,
	}
	conn.state.Store(int32(StateConnected))

	if opts.SkipRegister {
		conn.LocalNetID = opts.LocalNetID
		conn.LocalPort = opts.LocalPort
	} else if err := conn.portConnect(opts.RequestedPort, timeout); err != nil {
		netConn.Close()
		shutdownCancel()
		return nil, fmt.Errorf("transport: router port-connect: %w", err)
	}

	go conn.readLoop()
	go conn.dispatchLoop()

	return conn, nil
}

// portConnect performs the router handshake: send a port-connect frame
// (command flag 0x1000) carrying the requested port, and read back the
// router's reply carrying the assigned local NetID and port. This runs
// before the read/dispatch goroutines start, so it reads synchronously.
func (c *Conn) portConnect(requestedPort uint16, timeout time.Duration) error {
	payload := make([]byte, 2)
	payload[0] = byte(requestedPort)
	payload[1] = byte(requestedPort >> 8)

	req := ams.NewRouterPacket(ams.CommandFlagPortConnect, payload)
	if timeout > 0 {
		c.conn.SetWriteDeadline(time.Now().Add(timeout))
		c.conn.SetReadDeadline(time.Now().Add(timeout))
	}
	if err := ams.WritePacket(c.conn, req); err != nil {
		return fmt.Errorf("send port-connect: %w", err)
	}

	resp, err := ams.ReadPacket(c.conn)
	if err != nil {
		return fmt.Errorf("read port-connect reply: %w", err)
	}
	if timeout > 0 {
		c.conn.SetWriteDeadline(time.Time{})
		c.conn.SetReadDeadline(time.Time{})
	}

	if resp.TCPHeader.CommandFlag != ams.CommandFlagPortConnect || len(resp.Data) < 8 {
		return fmt.Errorf("unexpected port-connect reply (flag=0x%04x len=%d)", resp.TCPHeader.CommandFlag, len(resp.Data))
	}

	copy(c.LocalNetID[:], resp.Data[0:6])
	c.LocalPort = uint16(resp.Data[6]) | uint16(resp.Data[7])<<8
	return nil
}

func (c *Conn) Close() error {
	return c.CloseWithTimeout(5 * time.Second)
}

// CloseWithTimeout closes the connection with a timeout for graceful shutdown.
func (c *Conn) CloseWithTimeout(timeout time.Duration) error {
	if !c.compareAndSwapState(StateConnected, StateDisconnecting) {
		currentState := ConnectionState(c.state.Load())
		if currentState == StateClosed || currentState == StateDisconnecting {
			return nil
		}
		c.state.Store(int32(StateDisconnecting))
	}

	c.shutdownCancel()

	c.FailAllPending(ErrConnectionClosed)

	err := c.conn.Close()

	close(c.responses)

	c.state.Store(int32(StateClosed))

	return err
}

// FailAllPending closes every pending request's response channel so
// in-flight SendRequest calls unblock with a connection-lost error instead
// of waiting out their full timeout. Used both on graceful close and when
// the read loop detects the socket has died.
func (c *Conn) FailAllPending(cause error) {
	c.pendingMu.Lock()
	for _, ch := range c.pending {
		close(ch)
	}
	c.pending = make(map[uint32]chan<- *ams.Packet)
	c.pendingMu.Unlock()
	if cause != nil {
		c.setError(cause)
	}
}

func (c *Conn) compareAndSwapState(old, new ConnectionState) bool {
	return c.state.CompareAndSwap(int32(old), int32(new))
}

func (c *Conn) getState() ConnectionState {
	return ConnectionState(c.state.Load())
}

// State returns the connection's current state.
func (c *Conn) State() ConnectionState {
	return c.getState()
}

// LastError returns the error that most recently moved the connection into
// StateError, if any.
func (c *Conn) LastError() error {
	return c.getError()
}

func (c *Conn) setError(err error) {
	c.errorMu.Lock()
	c.lastError = err
	c.errorMu.Unlock()
	c.state.Store(int32(StateError))
}

func (c *Conn) getError() error {
	c.errorMu.RLock()
	defer c.errorMu.RUnlock()
	return c.lastError
}

func (c *Conn) NextInvokeID() uint32 {
	return c.invokeID.Add(1)
}

// SetNotificationHandler sets the handler for notification packets (CommandID 0x0008).
func (c *Conn) SetNotificationHandler(handler NotificationHandler) {
	c.notifHandlerMu.Lock()
	c.notificationHandler = handler
	c.notifHandlerMu.Unlock()
}

// SetRouterNoteHandler sets the handler invoked for router-note packets
// received after the handshake completes.
func (c *Conn) SetRouterNoteHandler(handler RouterNoteHandler) {
	c.routerNoteMu.Lock()
	c.routerNoteHandler = handler
	c.routerNoteMu.Unlock()
}

func (c *Conn) SendRequest(ctx context.Context, req *ams.Packet) (*ams.Packet, error) {
	state := c.getState()
	if state != StateConnected {
		if err := c.getError(); err != nil {
			return nil, fmt.Errorf("transport: connection %s: %w", state, err)
		}
		return nil, fmt.Errorf("transport: connection %s", state)
	}

	respCh := make(chan *ams.Packet, 1)
	invokeID := req.Header.InvokeID

	c.pendingMu.Lock()
	if _, exists := c.pending[invokeID]; exists {
		c.pendingMu.Unlock()
		return nil, fmt.Errorf("transport: invoke id %d is already pending", invokeID)
	}
	c.pending[invokeID] = respCh
	c.pendingMu.Unlock()

	defer func() {
		c.pendingMu.Lock()
		delete(c.pending, invokeID)
		c.pendingMu.Unlock()
	}()

	if c.timeout > 0 {
		if err := c.conn.SetWriteDeadline(time.Now().Add(c.timeout)); err != nil {
			c.setError(err)
			return nil, fmt.Errorf("transport: failed to set write deadline: %w", err)
		}
	}

	c.mu.Lock()
	err := ams.WritePacket(c.conn, req)
	c.mu.Unlock()

	if err != nil {
		c.setError(err)
		return nil, fmt.Errorf("transport: write failed: %w", err)
	}

	select {
	case resp := <-respCh:
		if resp == nil {
			if err := c.getError(); err != nil {
				return nil, fmt.Errorf("transport: connection closed: %w", err)
			}
			return nil, ErrConnectionClosed
		}
		return resp, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-c.shutdownCtx.Done():
		return nil, ErrConnectionClosed
	case <-time.After(c.timeout):
		return nil, fmt.Errorf("transport: request timeout after %v", c.timeout)
	}
}

func (c *Conn) readLoop() {
	defer func() {
		if c.getState() == StateConnected {
			c.setError(errors.New("read loop terminated unexpectedly"))
		}
	}()

	for {
		select {
		case <-c.shutdownCtx.Done():
			return
		default:
		}

		if c.getState() != StateConnected {
			return
		}

		if c.timeout > 0 {
			if err := c.conn.SetReadDeadline(time.Now().Add(c.timeout * 2)); err != nil {
				c.setError(fmt.Errorf("failed to set read deadline: %w", err))
				c.responses <- &pendingResponse{err: err}
				return
			}
		}

		packet, err := ams.ReadPacket(c.conn)
		if err != nil {
			if c.getState() == StateConnected {
				c.setError(fmt.Errorf("read packet failed: %w", err))
				c.responses <- &pendingResponse{err: err}
			}
			return
		}

		c.responses <- &pendingResponse{
			invokeID: packet.Header.InvokeID,
			packet:   packet,
		}
	}
}

func (c *Conn) dispatchLoop() {
	for resp := range c.responses {
		if resp.err != nil {
			go c.Close()
			return
		}

		if resp.packet.TCPHeader.CommandFlag != ams.CommandFlagADS {
			if resp.packet.TCPHeader.CommandFlag == ams.CommandFlagRouterNote {
				c.routerNoteMu.RLock()
				handler := c.routerNoteHandler
				c.routerNoteMu.RUnlock()
				if handler != nil {
					go handler(resp.packet.TCPHeader.CommandFlag, resp.packet.Data)
				}
			}
			continue
		}

		if resp.packet.Header.CommandID == 0x0008 {
			c.notifHandlerMu.RLock()
			handler := c.notificationHandler
			c.notifHandlerMu.RUnlock()

			if handler != nil {
				go handler(resp.packet)
			}
			continue
		}

		c.pendingMu.RLock()
		ch, ok := c.pending[resp.invokeID]
		c.pendingMu.RUnlock()

		if ok && ch != nil {
			select {
			case ch <- resp.packet:
			default:
			}
		}
	}
}
