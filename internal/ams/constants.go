package ams

// TCP command flags: the discriminator in TCPHeader.CommandFlag. 0 means the
// payload is an ADS command carrying the full 32-byte AMS header; the rest
// are router-protocol handshake commands carrying their own small payloads.
const (
	CommandFlagADS          uint16 = 0x0000
	CommandFlagPortClose    uint16 = 0x0001
	CommandFlagPortConnect  uint16 = 0x1000
	CommandFlagRouterNote   uint16 = 0x1001
	CommandFlagGetLocalAddr uint16 = 0x1002
)

// State flag bits for the StateFlags field in AMS Header.
const (
	// StateFlagResponse indicates a response packet (bit 0).
	// 0 = Request, 1 = Response
	StateFlagResponse uint16 = 0x0001

	// StateFlagADS must be set for ADS commands (bit 2).
	StateFlagADS uint16 = 0x0004

	// StateFlagUDP indicates UDP protocol (bit 7).
	// 0 = TCP, 1 = UDP
	StateFlagUDP uint16 = 0x0080
)

// Predefined state flag combinations for common use cases.
const (
	// StateFlagsTCPRequest represents a TCP request (0x0004).
	StateFlagsTCPRequest = StateFlagADS

	// StateFlagsTCPResponse represents a TCP response (0x0005).
	StateFlagsTCPResponse = StateFlagADS | StateFlagResponse

	// StateFlagsUDPRequest represents a UDP request (0x0084).
	StateFlagsUDPRequest = StateFlagADS | StateFlagUDP

	// StateFlagsUDPResponse represents a UDP response (0x0085).
	StateFlagsUDPResponse = StateFlagADS | StateFlagUDP | StateFlagResponse
)

// Common AMS port numbers used by TwinCAT runtime.
const (
	PortLogger        Port = 100   // Logger
	PortEventLogger   Port = 110   // EventLogger
	PortRouter        Port = 1     // AMS Router
	PortSystemService Port = 10000 // System Service
	PortPLCRuntime1   Port = 851   // First PLC runtime
	PortPLCRuntime2   Port = 852   // Second PLC runtime
	PortPLCRuntime3   Port = 853   // Third PLC runtime
	PortPLCRuntime4   Port = 854   // Fourth PLC runtime
)

// RouterState values carried in the payload of a router-note packet
// (CommandFlagRouterNote): a u32 state followed by nothing else of interest
// to this client.
type RouterState uint32

const (
	RouterStateStop    RouterState = 0
	RouterStateStart   RouterState = 1
	RouterStateRemoved RouterState = 2
)

func (s RouterState) String() string {
	switch s {
	case RouterStateStop:
		return "stop"
	case RouterStateStart:
		return "start"
	case RouterStateRemoved:
		return "removed"
	default:
		return "unknown"
	}
}
