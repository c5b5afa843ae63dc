// Package adsgo provides a Go client library for TwinCAT ADS/AMS communication over TCP.
package adsgo

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/larskjeldsen/adsgo/internal/ads"
	"github.com/larskjeldsen/adsgo/internal/ams"
	"github.com/larskjeldsen/adsgo/internal/symbols"
	"github.com/larskjeldsen/adsgo/internal/transport"
)

// Client represents an ADS client connection to a single AMS device (ADS
// port on a TwinCAT NetID). A Client is safe for concurrent use.
type Client struct {
	conn         *transport.Conn
	connMu       sync.RWMutex
	targetNetID  ams.NetID
	targetPort   ams.Port
	sourceNetID  ams.NetID
	sourcePort   ams.Port
	sourcePinned bool
	dialAddress  string
	dialTimeout  time.Duration
	dialOpts     transport.DialOptions

	logger  Logger
	metrics Metrics

	autoReconnect     bool
	reconnectInterval time.Duration
	stateCallback     StateCallback

	subscriptions   map[uint32]*Subscription
	subscriptionsMu sync.RWMutex

	symbolTable   *symbols.Table
	symbolTableMu sync.RWMutex

	typeCatalog   *symbols.TypeCatalog
	typeCatalogMu sync.RWMutex

	events   chan Event
	eventsMu sync.RWMutex

	monitor *stateMonitor

	objectifyEnumerations      bool
	convertDatesToJavascript   bool
	disableCaching             bool
	monitorPlcSymbolVersion    bool
	deleteUnknownSubscriptions bool
	rawClient                  bool
	allowHalfOpen              bool
	hideConsoleWarnings        bool
}

// DeviceInfo represents device information returned by ReadDeviceInfo.
type DeviceInfo struct {
	Name         string
	MajorVersion uint8
	MinorVersion uint8
	VersionBuild uint16
}

// DeviceState represents the state of an ADS device.
type DeviceState struct {
	ADSState    ads.ADSState
	DeviceState uint16
}

// Option is a functional option for configuring a Client.
type Option func(*clientConfig) error

type clientConfig struct {
	address       string
	routerAddress string
	routerPort    uint16
	targetNetID   ams.NetID
	targetPort    ams.Port
	sourceNetID   ams.NetID
	sourcePort    ams.Port
	localAmsNetID ams.NetID
	localAdsPort  uint16
	timeout       time.Duration
	localPort     uint16

	logger  Logger
	metrics Metrics

	stateMonitorInterval time.Duration

	autoReconnect       bool
	reconnectInterval   time.Duration
	healthCheckInterval time.Duration
	stateCallback       StateCallback

	objectifyEnumerations      bool
	convertDatesToJavascript   bool
	disableCaching             bool
	readAndCacheSymbols        bool
	readAndCacheDataTypes      bool
	monitorPlcSymbolVersion    bool
	deleteUnknownSubscriptions bool
	rawClient                  bool
	allowHalfOpen              bool
	hideConsoleWarnings        bool
	connectionCheckInterval    time.Duration
	connectionDownDelay        time.Duration
}

// WithTarget sets the target TCP address (required), e.g. "10.0.1.5:48898".
func WithTarget(address string) Option {
	return func(c *clientConfig) error {
		if address == "" {
			return fmt.Errorf("adsgo: target address cannot be empty")
		}
		c.address = address
		return nil
	}
}

// WithAMSNetID sets the target AMS NetID (required).
func WithAMSNetID(netID ams.NetID) Option {
	return func(c *clientConfig) error {
		c.targetNetID = netID
		return nil
	}
}

// WithAMSPort sets the target AMS port (optional, defaults to 851, the first PLC runtime).
func WithAMSPort(port ams.Port) Option {
	return func(c *clientConfig) error {
		c.targetPort = port
		return nil
	}
}

// WithSourceNetID pins the source AMS NetID (optional). When unset, the
// router's port-connect reply supplies one.
func WithSourceNetID(netID ams.NetID) Option {
	return func(c *clientConfig) error {
		c.sourceNetID = netID
		return nil
	}
}

// WithSourcePort pins the source AMS port (optional). When unset, the
// router assigns an ephemeral port during the handshake.
func WithSourcePort(port ams.Port) Option {
	return func(c *clientConfig) error {
		c.sourcePort = port
		return nil
	}
}

// WithTimeout sets the timeout for requests (optional, defaults to 5s).
func WithTimeout(timeout time.Duration) Option {
	return func(c *clientConfig) error {
		if timeout <= 0 {
			return fmt.Errorf("adsgo: timeout must be positive")
		}
		c.timeout = timeout
		return nil
	}
}

// WithStateMonitor enables periodic ReadState polling at the given interval,
// emitting Event values on connection loss, PLC state changes, and recovery.
// See Client.Events.
func WithStateMonitor(interval time.Duration) Option {
	return func(c *clientConfig) error {
		if interval <= 0 {
			return fmt.Errorf("adsgo: state monitor interval must be positive")
		}
		c.stateMonitorInterval = interval
		return nil
	}
}

// WithRouterAddress sets the AMS router's host address (optional, defaults
// to "127.0.0.1"). Ignored if WithTarget is also given.
func WithRouterAddress(address string) Option {
	return func(c *clientConfig) error {
		c.routerAddress = address
		return nil
	}
}

// WithRouterTCPPort sets the AMS router's TCP port (optional, defaults to
// 48898). Ignored if WithTarget is also given.
func WithRouterTCPPort(port uint16) Option {
	return func(c *clientConfig) error {
		c.routerPort = port
		return nil
	}
}

// WithLocalAMSNetID forces the client's local AMS NetID instead of letting
// the router assign one, and skips router registration entirely (see
// WithLocalADSPort).
func WithLocalAMSNetID(netID ams.NetID) Option {
	return func(c *clientConfig) error {
		c.localAmsNetID = netID
		c.sourceNetID = netID
		return nil
	}
}

// WithLocalADSPort forces the client's local ADS port instead of letting the
// router assign one, and skips router registration entirely.
func WithLocalADSPort(port uint16) Option {
	return func(c *clientConfig) error {
		c.localAdsPort = port
		c.sourcePort = ams.Port(port)
		return nil
	}
}

// WithObjectifyEnumerations controls whether decoded ENUM values surface as
// {Name, Value} (the default) or as the bare underlying integer.
func WithObjectifyEnumerations(enabled bool) Option {
	return func(c *clientConfig) error {
		c.objectifyEnumerations = enabled
		return nil
	}
}

// WithConvertDatesToJavascript controls whether auto-detected DATE/TOD/DT
// values surface from ReadSymbolValue as millisecond epoch integers (the
// default, matching JavaScript's Date numeric form) instead of time.Time/
// time.Duration. Typed accessors (ReadDate, etc.) are unaffected.
func WithConvertDatesToJavascript(enabled bool) Option {
	return func(c *clientConfig) error {
		c.convertDatesToJavascript = enabled
		return nil
	}
}

// WithDisableCaching bypasses the symbol and data-type caches entirely: every
// lookup triggers a fresh network fetch.
func WithDisableCaching(disabled bool) Option {
	return func(c *clientConfig) error {
		c.disableCaching = disabled
		return nil
	}
}

// WithReadAndCacheSymbols prefetches and caches the full symbol table on
// connect, instead of loading it lazily on first symbol access.
func WithReadAndCacheSymbols(enabled bool) Option {
	return func(c *clientConfig) error {
		c.readAndCacheSymbols = enabled
		return nil
	}
}

// WithReadAndCacheDataTypes prefetches and caches the full data-type table on
// connect, instead of loading it lazily on first struct/enum access.
func WithReadAndCacheDataTypes(enabled bool) Option {
	return func(c *clientConfig) error {
		c.readAndCacheDataTypes = enabled
		return nil
	}
}

// WithMonitorPlcSymbolVersion enables (the default) or disables the state
// monitor's poll of the PLC's SymbolVersion address. When the version
// changes, the symbol and type caches are invalidated (not refetched) and
// EventPlcSymbolVersionChange is emitted. No notification subscription is
// used for this.
func WithMonitorPlcSymbolVersion(enabled bool) Option {
	return func(c *clientConfig) error {
		c.monitorPlcSymbolVersion = enabled
		return nil
	}
}

// WithDeleteUnknownSubscriptions enables a best-effort DeleteNotification
// back to the PLC whenever a notification sample arrives for a handle this
// client no longer has registered.
func WithDeleteUnknownSubscriptions(enabled bool) Option {
	return func(c *clientConfig) error {
		c.deleteUnknownSubscriptions = enabled
		return nil
	}
}

// WithRawClient disables every PLC-runtime-specific behavior: no state
// monitor, no symbol-version poll, no half-open gating. The client
// becomes a thin Read/Write/Subscribe transport.
func WithRawClient(enabled bool) Option {
	return func(c *clientConfig) error {
		c.rawClient = enabled
		return nil
	}
}

// WithAllowHalfOpen permits New to return successfully even when the target
// PLC runtime is not in Run state. In that case the cache prefetch and the
// symbol-version poll are skipped for this client; they are not started
// later when the runtime reaches Run.
func WithAllowHalfOpen(enabled bool) Option {
	return func(c *clientConfig) error {
		c.allowHalfOpen = enabled
		return nil
	}
}

// WithHideConsoleWarnings suppresses the warning-level log lines this client
// would otherwise emit for recoverable conditions (reconnect attempts,
// unknown notification handles).
func WithHideConsoleWarnings(enabled bool) Option {
	return func(c *clientConfig) error {
		c.hideConsoleWarnings = enabled
		return nil
	}
}

// WithConnectionCheckInterval sets how often the state monitor polls
// ReadState (optional, defaults to 1s).
func WithConnectionCheckInterval(interval time.Duration) Option {
	return func(c *clientConfig) error {
		if interval <= 0 {
			return fmt.Errorf("adsgo: connection check interval must be positive")
		}
		c.connectionCheckInterval = interval
		return nil
	}
}

// WithConnectionDownDelay sets how long the last successful ReadState may
// age before the connection is declared lost (optional, defaults to 5s).
func WithConnectionDownDelay(delay time.Duration) Option {
	return func(c *clientConfig) error {
		if delay <= 0 {
			return fmt.Errorf("adsgo: connection down delay must be positive")
		}
		c.connectionDownDelay = delay
		return nil
	}
}

// New creates a new ADS client with the given options, dialing the target
// and performing the AMS router port-connect handshake before returning.
func New(opts ...Option) (*Client, error) {
	cfg := &clientConfig{
		targetPort:              ams.PortPLCRuntime1,
		timeout:                 5 * time.Second,
		logger:                  DefaultLogger,
		metrics:                 DefaultMetrics,
		reconnectInterval:       5 * time.Second,
		routerAddress:           "127.0.0.1",
		routerPort:              48898,
		objectifyEnumerations:   true,
		convertDatesToJavascript: true,
		monitorPlcSymbolVersion: true,
		connectionCheckInterval: time.Second,
		connectionDownDelay:     5 * time.Second,
	}

	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}

	if cfg.address == "" {
		cfg.address = fmt.Sprintf("%s:%d", cfg.routerAddress, cfg.routerPort)
	}

	cfg.metrics.ConnectionAttempts()

	ctx, cancel := context.WithTimeout(context.Background(), cfg.timeout)
	defer cancel()

	skipRegister := cfg.localAmsNetID != (ams.NetID{}) || cfg.localAdsPort != 0
	dialOpts := transport.DialOptions{
		RequestedPort: cfg.localPort,
		SkipRegister:  skipRegister,
		LocalNetID:    cfg.localAmsNetID,
		LocalPort:     cfg.localAdsPort,
	}
	conn, err := transport.Dial(ctx, cfg.address, cfg.timeout, dialOpts)
	if err != nil {
		cfg.metrics.ConnectionFailures()
		return nil, fmt.Errorf("adsgo: connection failed: %w", err)
	}

	sourcePinned := skipRegister || cfg.sourceNetID != (ams.NetID{}) || cfg.sourcePort != 0

	sourceNetID := cfg.sourceNetID
	sourcePort := cfg.sourcePort
	if sourceNetID == (ams.NetID{}) {
		sourceNetID = conn.LocalNetID
	}
	if sourcePort == 0 {
		sourcePort = ams.Port(conn.LocalPort)
	}

	client := &Client{
		conn:              conn,
		targetNetID:       cfg.targetNetID,
		targetPort:        cfg.targetPort,
		sourceNetID:       sourceNetID,
		sourcePort:        sourcePort,
		sourcePinned:      sourcePinned,
		dialAddress:       cfg.address,
		dialTimeout:       cfg.timeout,
		dialOpts:          dialOpts,
		logger:            cfg.logger,
		metrics:           cfg.metrics,
		autoReconnect:     cfg.autoReconnect,
		reconnectInterval: cfg.reconnectInterval,
		stateCallback:     cfg.stateCallback,
		subscriptions:     make(map[uint32]*Subscription),
		symbolTable:       symbols.NewTable(),
		typeCatalog:       symbols.NewTypeCatalog(),
		events:            make(chan Event, 32),

		objectifyEnumerations:      cfg.objectifyEnumerations,
		convertDatesToJavascript:   cfg.convertDatesToJavascript,
		disableCaching:             cfg.disableCaching,
		monitorPlcSymbolVersion:    cfg.monitorPlcSymbolVersion,
		deleteUnknownSubscriptions: cfg.deleteUnknownSubscriptions,
		rawClient:                  cfg.rawClient,
		allowHalfOpen:              cfg.allowHalfOpen,
		hideConsoleWarnings:        cfg.hideConsoleWarnings,
	}

	conn.SetNotificationHandler(client.handleNotification)
	conn.SetRouterNoteHandler(client.handleRouterNote)

	cfg.metrics.ConnectionSuccesses()
	cfg.metrics.ConnectionActive(true)
	client.logger.Info("adsgo: connected", "address", cfg.address, "target_netid", cfg.targetNetID.String(), "target_port", cfg.targetPort)
	client.emitEvent(Event{Type: EventConnected})

	runtimeReady := true
	if !cfg.rawClient {
		if state, err := client.ReadState(ctx); err == nil {
			runtimeReady = state.ADSState == ads.StateRun
		}
		if !runtimeReady && !cfg.allowHalfOpen {
			conn.Close()
			return nil, fmt.Errorf("adsgo: PLC runtime not in Run state (set WithAllowHalfOpen to connect anyway)")
		}
	}

	if runtimeReady && !cfg.rawClient && (cfg.readAndCacheSymbols || cfg.readAndCacheDataTypes) {
		if err := client.RefreshSymbols(ctx); err != nil {
			client.logger.Warn("adsgo: symbol/data-type prefetch failed", "error", err)
		}
	}

	if !cfg.rawClient {
		monitorInterval := cfg.stateMonitorInterval
		if monitorInterval == 0 || (cfg.healthCheckInterval > 0 && cfg.healthCheckInterval < monitorInterval) {
			monitorInterval = cfg.healthCheckInterval
		}
		if monitorInterval == 0 {
			monitorInterval = cfg.connectionCheckInterval
		}
		if monitorInterval > 0 {
			client.monitor = newStateMonitor(client, monitorInterval)
			client.monitor.autoReconnect = cfg.autoReconnect
			client.monitor.reconnectInterval = cfg.reconnectInterval
			client.monitor.connectionDownDelay = cfg.connectionDownDelay
			client.monitor.monitorSymbolVersion = cfg.monitorPlcSymbolVersion && runtimeReady
			client.monitor.hideConsoleWarnings = cfg.hideConsoleWarnings
			client.monitor.start()
		}
	}

	return client, nil
}

// Close closes the client connection and all active subscriptions.
func (c *Client) Close() error {
	if c.monitor != nil {
		c.monitor.stop()
	}

	c.subscriptionsMu.Lock()
	subs := make([]*Subscription, 0, len(c.subscriptions))
	for _, sub := range c.subscriptions {
		subs = append(subs, sub)
	}
	c.subscriptionsMu.Unlock()

	for _, sub := range subs {
		sub.Close()
	}

	c.metrics.ConnectionActive(false)
	c.emitEvent(Event{Type: EventDisconnected})
	close(c.events)

	if conn := c.getConn(); conn != nil {
		return conn.Close()
	}
	return nil
}

// getConn returns the current transport connection. It is guarded by connMu
// because auto-reconnect replaces the connection in place after a dropped
// session.
func (c *Client) getConn() *transport.Conn {
	c.connMu.RLock()
	defer c.connMu.RUnlock()
	return c.conn
}

func (c *Client) sendRequest(ctx context.Context, commandID ads.CommandID, reqData []byte) (*ams.Packet, error) {
	conn := c.getConn()
	invokeID := conn.NextInvokeID()
	c.connMu.RLock()
	targetNetID, targetPort, sourceNetID, sourcePort := c.targetNetID, c.targetPort, c.sourceNetID, c.sourcePort
	c.connMu.RUnlock()
	reqPacket := ams.NewRequestPacket(
		targetNetID, targetPort,
		sourceNetID, sourcePort,
		uint16(commandID), invokeID, reqData,
	)

	respPacket, err := conn.SendRequest(ctx, reqPacket)
	if err != nil {
		return nil, err
	}

	if respPacket.Header.ErrorCode != 0 {
		return nil, ads.Error(respPacket.Header.ErrorCode)
	}

	return respPacket, nil
}

// GetSymbolHandle retrieves a handle for the given symbol name. The handle
// can be used with Read/Write against IndexGroupSymbolValueByHandle.
// Handles should be released with ReleaseSymbolHandle when no longer needed.
func (c *Client) GetSymbolHandle(ctx context.Context, symbolName string) (uint32, error) {
	nameBytes := append([]byte(symbolName), 0)

	readData, err := c.ReadWrite(ctx, ads.IndexGroupSymbolHandleByName, 0, 4, nameBytes)
	if err != nil {
		return 0, fmt.Errorf("get symbol handle for %q: %w", symbolName, err)
	}

	var resp ads.GetSymbolHandleByNameResponse
	if err := resp.UnmarshalBinary(readData); err != nil {
		return 0, fmt.Errorf("parse symbol handle response: %w", err)
	}

	return resp.Handle, nil
}

// ReleaseSymbolHandle releases a previously acquired symbol handle.
func (c *Client) ReleaseSymbolHandle(ctx context.Context, handle uint32) error {
	req := ads.ReleaseSymbolHandleRequest{Handle: handle}
	data, _ := req.MarshalBinary()

	if err := c.Write(ctx, ads.IndexGroupReleaseSymbolHandle, 0, data); err != nil {
		return fmt.Errorf("release symbol handle %d: %w", handle, err)
	}
	return nil
}

// GetSymbolUploadInfo retrieves counts and sizes for the symbol table and
// data-type table caches.
func (c *Client) GetSymbolUploadInfo(ctx context.Context) (ads.SymbolUploadInfoResponse, error) {
	readData, err := c.Read(ctx, ads.IndexGroupSymbolUploadInfo2, 0, 24)
	if err != nil {
		return ads.SymbolUploadInfoResponse{}, fmt.Errorf("get symbol upload info: %w", err)
	}

	var resp ads.SymbolUploadInfoResponse
	if err := resp.UnmarshalBinary(readData); err != nil {
		return ads.SymbolUploadInfoResponse{}, fmt.Errorf("parse symbol upload info: %w", err)
	}
	return resp, nil
}

// UploadSymbolTable downloads the complete symbol table from the PLC in raw
// TwinCAT upload format.
func (c *Client) UploadSymbolTable(ctx context.Context) ([]byte, error) {
	info, err := c.GetSymbolUploadInfo(ctx)
	if err != nil {
		return nil, err
	}
	if info.SymbolLength == 0 {
		return nil, fmt.Errorf("symbol table is empty")
	}

	readData, err := c.Read(ctx, ads.IndexGroupSymbolUpload, 0, info.SymbolLength)
	if err != nil {
		return nil, fmt.Errorf("upload symbol table: %w", err)
	}
	return readData, nil
}

// GetDataTypeUploadInfo retrieves the number and total byte length of
// data-type table entries.
func (c *Client) GetDataTypeUploadInfo(ctx context.Context) (dataTypeCount, dataTypeLength uint32, err error) {
	info, err := c.GetSymbolUploadInfo(ctx)
	if err != nil {
		return 0, 0, err
	}
	return info.DataTypeCount, info.DataTypeLength, nil
}

// UploadDataTypeTable retrieves the complete recursive data-type table from
// the PLC in raw TwinCAT upload format.
func (c *Client) UploadDataTypeTable(ctx context.Context) ([]byte, error) {
	_, dataTypeLength, err := c.GetDataTypeUploadInfo(ctx)
	if err != nil {
		return nil, err
	}
	if dataTypeLength == 0 {
		return nil, fmt.Errorf("data type table is empty")
	}

	readData, err := c.Read(ctx, ads.IndexGroupSymbolDataTypeUpload, 0, dataTypeLength)
	if err != nil {
		return nil, fmt.Errorf("upload data type table: %w", err)
	}
	return readData, nil
}

// RefreshSymbols downloads and parses both the symbol table and data-type
// table from the PLC. Call this before using symbol-based operations; it is
// also called automatically on first use and after a PlcSymbolVersionChange
// event invalidates the cache.
func (c *Client) RefreshSymbols(ctx context.Context) error {
	symData, err := c.UploadSymbolTable(ctx)
	if err != nil {
		return fmt.Errorf("refresh symbols: %w", err)
	}

	c.symbolTableMu.Lock()
	loadErr := c.symbolTable.Load(symData)
	c.symbolTableMu.Unlock()
	if loadErr != nil {
		return fmt.Errorf("load symbols: %w", loadErr)
	}

	if typeData, err := c.UploadDataTypeTable(ctx); err == nil {
		c.typeCatalogMu.Lock()
		c.typeCatalog.LoadDataTypeTable(typeData)
		c.typeCatalogMu.Unlock()
	}

	return nil
}

// ensureSymbolsLoaded automatically loads symbols if not already loaded.
func (c *Client) ensureSymbolsLoaded(ctx context.Context) error {
	if c.disableCaching {
		return c.RefreshSymbols(ctx)
	}

	c.symbolTableMu.RLock()
	loaded := c.symbolTable.IsLoaded()
	c.symbolTableMu.RUnlock()

	if !loaded {
		return c.RefreshSymbols(ctx)
	}
	return nil
}

// GetSymbol retrieves symbol information by name.
func (c *Client) GetSymbol(name string) (*symbols.Symbol, error) {
	c.symbolTableMu.RLock()
	defer c.symbolTableMu.RUnlock()
	return c.symbolTable.Get(name)
}

// ListSymbols returns all symbols in the cache, loading it first if needed.
func (c *Client) ListSymbols(ctx context.Context) ([]*symbols.Symbol, error) {
	if err := c.ensureSymbolsLoaded(ctx); err != nil {
		return nil, err
	}
	c.symbolTableMu.RLock()
	defer c.symbolTableMu.RUnlock()
	return c.symbolTable.List()
}

// FindSymbols searches for symbols matching the pattern (case-insensitive substring).
func (c *Client) FindSymbols(ctx context.Context, pattern string) ([]*symbols.Symbol, error) {
	if err := c.ensureSymbolsLoaded(ctx); err != nil {
		return nil, err
	}
	c.symbolTableMu.RLock()
	defer c.symbolTableMu.RUnlock()
	return c.symbolTable.Find(pattern)
}

// resolveArraySymbol resolves a symbol name to its IndexGroup/IndexOffset/Size,
// loading the symbol cache first if needed. Named for its most common use
// (WSTRING/STRING buffers and arrays, where Size differs from a fixed-type
// width), but used as the general symbol-to-address lookup.
func (c *Client) resolveArraySymbol(ctx context.Context, symbolName string) (indexGroup, indexOffset, size uint32, err error) {
	if err := c.ensureSymbolsLoaded(ctx); err != nil {
		return 0, 0, 0, err
	}
	sym, err := c.GetSymbol(symbolName)
	if err != nil {
		return 0, 0, 0, err
	}
	return sym.IndexGroup, sym.IndexOffset, sym.Size, nil
}

// ReadSymbol reads data from a PLC symbol by name. Automatically loads the
// symbol table on first call.
func (c *Client) ReadSymbol(ctx context.Context, symbolName string) ([]byte, error) {
	indexGroup, indexOffset, size, err := c.resolveArraySymbol(ctx, symbolName)
	if err != nil {
		return nil, fmt.Errorf("read symbol %q: %w", symbolName, err)
	}
	return c.Read(ctx, indexGroup, indexOffset, size)
}

// WriteSymbol writes data to a PLC symbol by name. Automatically loads the
// symbol table on first call.
func (c *Client) WriteSymbol(ctx context.Context, symbolName string, data []byte) error {
	indexGroup, indexOffset, size, err := c.resolveArraySymbol(ctx, symbolName)
	if err != nil {
		return fmt.Errorf("write symbol %q: %w", symbolName, err)
	}
	if uint32(len(data)) != size {
		return fmt.Errorf("write symbol %q: data size mismatch (expected %d bytes, got %d)",
			symbolName, size, len(data))
	}
	return c.Write(ctx, indexGroup, indexOffset, data)
}

// ReadDeviceInfo reads the device name and version.
func (c *Client) ReadDeviceInfo(ctx context.Context) (*DeviceInfo, error) {
	req := ads.ReadDeviceInfoRequest{}
	reqData, _ := req.MarshalBinary()

	respPacket, err := c.sendRequest(ctx, ads.CmdReadDeviceInfo, reqData)
	if err != nil {
		return nil, err
	}

	var resp ads.ReadDeviceInfoResponse
	if err := resp.UnmarshalBinary(respPacket.Data); err != nil {
		return nil, err
	}
	if resp.Result != 0 {
		return nil, ads.Error(resp.Result)
	}

	return &DeviceInfo{
		Name:         resp.DeviceName,
		MajorVersion: resp.MajorVersion,
		MinorVersion: resp.MinorVersion,
		VersionBuild: resp.VersionBuild,
	}, nil
}

// Read reads data from the ADS device at the given index group/offset.
func (c *Client) Read(ctx context.Context, indexGroup, indexOffset, length uint32) ([]byte, error) {
	start := time.Now()
	c.metrics.OperationStarted("read")

	req := ads.ReadRequest{IndexGroup: indexGroup, IndexOffset: indexOffset, Length: length}
	reqData, _ := req.MarshalBinary()

	respPacket, err := c.sendRequest(ctx, ads.CmdRead, reqData)
	if err != nil {
		c.metrics.OperationCompleted("read", time.Since(start), err)
		return nil, err
	}

	var resp ads.ReadResponse
	if err := resp.UnmarshalBinary(respPacket.Data); err != nil {
		c.metrics.OperationCompleted("read", time.Since(start), err)
		return nil, err
	}
	if resp.Result != 0 {
		err := ads.Error(resp.Result)
		c.metrics.OperationCompleted("read", time.Since(start), err)
		return nil, err
	}

	c.metrics.BytesReceived(int64(len(resp.Data)))
	c.metrics.OperationCompleted("read", time.Since(start), nil)
	return resp.Data, nil
}

// Write writes data to the ADS device at the given index group/offset.
func (c *Client) Write(ctx context.Context, indexGroup, indexOffset uint32, data []byte) error {
	start := time.Now()
	c.metrics.OperationStarted("write")

	req := ads.WriteRequest{IndexGroup: indexGroup, IndexOffset: indexOffset, Length: uint32(len(data)), Data: data}
	reqData, _ := req.MarshalBinary()

	respPacket, err := c.sendRequest(ctx, ads.CmdWrite, reqData)
	if err != nil {
		c.metrics.OperationCompleted("write", time.Since(start), err)
		return err
	}

	var resp ads.WriteResponse
	if err := resp.UnmarshalBinary(respPacket.Data); err != nil {
		c.metrics.OperationCompleted("write", time.Since(start), err)
		return err
	}
	if resp.Result != 0 {
		err := ads.Error(resp.Result)
		c.metrics.OperationCompleted("write", time.Since(start), err)
		return err
	}

	c.metrics.BytesSent(int64(len(data)))
	c.metrics.OperationCompleted("write", time.Since(start), nil)
	return nil
}

// ReadState reads the ADS and device state.
func (c *Client) ReadState(ctx context.Context) (*DeviceState, error) {
	req := ads.ReadStateRequest{}
	reqData, _ := req.MarshalBinary()

	respPacket, err := c.sendRequest(ctx, ads.CmdReadState, reqData)
	if err != nil {
		return nil, err
	}

	var resp ads.ReadStateResponse
	if err := resp.UnmarshalBinary(respPacket.Data); err != nil {
		return nil, err
	}
	if resp.Result != 0 {
		return nil, ads.Error(resp.Result)
	}

	return &DeviceState{ADSState: resp.ADSState, DeviceState: resp.DeviceState}, nil
}

// WriteControl changes the ADS state of the device: start, stop, or reset
// the PLC, or perform other vendor-specific state transitions. data is
// optional and may be nil for most operations.
func (c *Client) WriteControl(ctx context.Context, adsState ads.ADSState, deviceState uint16, data []byte) error {
	req := ads.WriteControlRequest{ADSState: adsState, DeviceState: deviceState, Length: uint32(len(data)), Data: data}
	reqData, _ := req.MarshalBinary()

	respPacket, err := c.sendRequest(ctx, ads.CmdWriteControl, reqData)
	if err != nil {
		return err
	}

	var resp ads.WriteControlResponse
	if err := resp.UnmarshalBinary(respPacket.Data); err != nil {
		return err
	}
	if resp.Result != 0 {
		return ads.Error(resp.Result)
	}
	return nil
}

// ReadWrite writes and reads data in a single round trip.
func (c *Client) ReadWrite(ctx context.Context, indexGroup, indexOffset, readLength uint32, writeData []byte) ([]byte, error) {
	req := ads.ReadWriteRequest{
		IndexGroup:  indexGroup,
		IndexOffset: indexOffset,
		ReadLength:  readLength,
		WriteLength: uint32(len(writeData)),
		Data:        writeData,
	}
	reqData, _ := req.MarshalBinary()

	respPacket, err := c.sendRequest(ctx, ads.CmdReadWrite, reqData)
	if err != nil {
		return nil, err
	}

	var resp ads.ReadWriteResponse
	if err := resp.UnmarshalBinary(respPacket.Data); err != nil {
		return nil, err
	}
	if resp.Result != 0 {
		return nil, ads.Error(resp.Result)
	}
	return resp.Data, nil
}
