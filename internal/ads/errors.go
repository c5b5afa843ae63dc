package ads

import "fmt"

// Error is a well-known ADS result code as returned in the Result field of
// every command response. The zero value means success.
type Error uint32

const (
	ErrNoError                           Error = 0x0000
	ErrInternal                          Error = 0x0001
	ErrNoRTime                           Error = 0x0002
	ErrAllocLockedMemory                 Error = 0x0003
	ErrInsertMailBoxError                Error = 0x0004
	ErrWrongReceiveHMSG                  Error = 0x0005
	ErrTargetPortNotFound                Error = 0x0006
	ErrTargetMachineNotFound             Error = 0x0007
	ErrUnknownCmdID                      Error = 0x0008
	ErrBadTaskID                         Error = 0x0009
	ErrNoIO                              Error = 0x000A
	ErrUnknownAMSCmd                     Error = 0x000B
	ErrWin32Error                        Error = 0x000C
	ErrPortNotConnected                  Error = 0x000D
	ErrInvalidAMSLength                  Error = 0x000E
	ErrInvalidAMSNetID                   Error = 0x000F
	ErrLowInstLevel                      Error = 0x0010
	ErrNoDebugAvailable                  Error = 0x0011
	ErrPortDisabled                      Error = 0x0012
	ErrPortAlreadyConnected              Error = 0x0013
	ErrAMSSyncWin32Error                 Error = 0x0014
	ErrAMSSyncTimeout                    Error = 0x0015
	ErrAMSSyncAMSError                   Error = 0x0016
	ErrAMSSyncNoIndexMap                 Error = 0x0017
	ErrInvalidAMSPort                    Error = 0x0018
	ErrNoMemory                          Error = 0x0019
	ErrTCPSendError                      Error = 0x001A
	ErrHostUnreachable                   Error = 0x001B
	ErrInvalidAMSFragment                Error = 0x001C
	ErrTLSSendError                      Error = 0x001D
	ErrAccessDenied                      Error = 0x001E

	ErrDeviceError                      Error = 0x0700
	ErrDeviceSrvNotSupp                 Error = 0x0701
	ErrDeviceInvalidIndexGroup          Error = 0x0702
	ErrDeviceInvalidIndexOffset         Error = 0x0703
	ErrDeviceInvalidAccess              Error = 0x0704
	ErrDeviceInvalidSize                Error = 0x0705
	ErrDeviceInvalidData                Error = 0x0706
	ErrDeviceNotReady                   Error = 0x0707
	ErrDeviceBusy                       Error = 0x0708
	ErrDeviceInvalidContext             Error = 0x0709
	ErrDeviceNoMemory                   Error = 0x070A
	ErrDeviceInvalidParm                Error = 0x070B
	ErrDeviceNotFound                   Error = 0x070C
	ErrDeviceSyntax                     Error = 0x070D
	ErrDeviceIncompatible               Error = 0x070E
	ErrDeviceExists                     Error = 0x070F
	ErrDeviceSymbolNotFound             Error = 0x0710
	ErrDeviceSymbolVersionInvalid       Error = 0x0711
	ErrDeviceInvalidState               Error = 0x0712
	ErrDeviceTransModeNotSupported      Error = 0x0713
	ErrDeviceNotifyHandleInvalid        Error = 0x0714
	ErrDeviceClientUnknown              Error = 0x0715
	ErrDeviceNoMoreHandles              Error = 0x0716
	ErrDeviceInvalidWatchSize           Error = 0x0717
	ErrDeviceNotInit                    Error = 0x0718
	ErrDeviceTimeout                    Error = 0x0719
	ErrDeviceNoInterface                Error = 0x071A
	ErrDeviceInvalidInterface           Error = 0x071B
	ErrDeviceInvalidCLSID               Error = 0x071C
	ErrDeviceInvalidObjID               Error = 0x071D
	ErrDeviceRequestPending             Error = 0x071E
	ErrDeviceInvalidContextHandle       Error = 0x071F
	ErrDeviceNoLocking                  Error = 0x0720
	ErrDeviceNoDatabase                 Error = 0x0721
	ErrDeviceDataNotFound               Error = 0x0722
	ErrDeviceInvalidHandle              Error = 0x0723

	ErrClientError                      Error = 0x0740
	ErrClientInvalidParm                Error = 0x0741
	ErrClientListEmpty                  Error = 0x0742
	ErrClientVarUsed                    Error = 0x0743
	ErrClientDuplicateInvokeID          Error = 0x0744
	ErrClientSyncTimeout                Error = 0x0745
	ErrClientW32Error                   Error = 0x0746
	ErrClientTimeoutInvalid             Error = 0x0747
	ErrClientPortNotOpen                Error = 0x0748
	ErrClientNoAMSAddr                  Error = 0x0749
	ErrClientSyncInternal               Error = 0x0750
	ErrClientAddHash                    Error = 0x0751
	ErrClientRemoveHash                 Error = 0x0752
	ErrClientNoMoreSym                  Error = 0x0753
	ErrClientSyncResInvalid             Error = 0x0754
	ErrClientSyncPortLocked             Error = 0x0755
)

func (e Error) Error() string {
	if s, ok := errorStrings[e]; ok {
		return s
	}
	return fmt.Sprintf("ADS error 0x%04X", uint32(e))
}

// IsError reports whether the code represents a failure; ErrNoError is the
// only success value.
func (e Error) IsError() bool {
	return e != ErrNoError
}

// IsNotFound reports whether the code indicates a missing symbol, data
// type, or other lookup miss, used by the public API to surface a
// sentinel not-found error distinct from other ADS failures.
func (e Error) IsNotFound() bool {
	switch e {
	case ErrDeviceSymbolNotFound, ErrDeviceNotFound, ErrDeviceDataNotFound:
		return true
	default:
		return false
	}
}

var errorStrings = map[Error]string{
	ErrNoError:                     "no error",
	ErrInternal:                    "internal error",
	ErrNoRTime:                     "no real-time",
	ErrAllocLockedMemory:           "failed to allocate locked memory",
	ErrInsertMailBoxError:          "failed to insert into mailbox",
	ErrWrongReceiveHMSG:            "wrong receive message",
	ErrTargetPortNotFound:          "target port not found",
	ErrTargetMachineNotFound:       "target machine not found",
	ErrUnknownCmdID:                "unknown command ID",
	ErrBadTaskID:                   "invalid task ID",
	ErrNoIO:                        "no IO",
	ErrUnknownAMSCmd:               "unknown AMS command",
	ErrWin32Error:                  "win32 error",
	ErrPortNotConnected:            "port not connected",
	ErrInvalidAMSLength:            "invalid AMS length",
	ErrInvalidAMSNetID:             "invalid AMS NetID",
	ErrLowInstLevel:                "installation level too low",
	ErrNoDebugAvailable:            "no debugging available",
	ErrPortDisabled:                "port disabled",
	ErrPortAlreadyConnected:        "port already connected",
	ErrAMSSyncWin32Error:           "AMS sync win32 error",
	ErrAMSSyncTimeout:              "AMS sync timeout",
	ErrAMSSyncAMSError:             "AMS sync AMS error",
	ErrAMSSyncNoIndexMap:           "AMS sync no index map",
	ErrInvalidAMSPort:              "invalid AMS port",
	ErrNoMemory:                    "no memory",
	ErrTCPSendError:                "TCP send error",
	ErrHostUnreachable:             "host unreachable",
	ErrInvalidAMSFragment:          "invalid AMS fragment",
	ErrTLSSendError:                "TLS send error",
	ErrAccessDenied:                "access denied",

	ErrDeviceError:                 "general device error",
	ErrDeviceSrvNotSupp:            "service not supported by device",
	ErrDeviceInvalidIndexGroup:     "invalid index group",
	ErrDeviceInvalidIndexOffset:    "invalid index offset",
	ErrDeviceInvalidAccess:         "invalid access",
	ErrDeviceInvalidSize:           "invalid size",
	ErrDeviceInvalidData:           "invalid data",
	ErrDeviceNotReady:              "device not ready",
	ErrDeviceBusy:                  "device busy",
	ErrDeviceInvalidContext:        "invalid context",
	ErrDeviceNoMemory:              "device out of memory",
	ErrDeviceInvalidParm:           "invalid parameter",
	ErrDeviceNotFound:              "not found",
	ErrDeviceSyntax:                "syntax error",
	ErrDeviceIncompatible:          "objects incompatible",
	ErrDeviceExists:                "object already exists",
	ErrDeviceSymbolNotFound:        "symbol not found",
	ErrDeviceSymbolVersionInvalid:  "symbol version invalid",
	ErrDeviceInvalidState:          "invalid object state",
	ErrDeviceTransModeNotSupported: "transmission mode not supported",
	ErrDeviceNotifyHandleInvalid:   "notification handle invalid",
	ErrDeviceClientUnknown:         "notification client not registered",
	ErrDeviceNoMoreHandles:         "no more notification handles",
	ErrDeviceInvalidWatchSize:      "notification size too large",
	ErrDeviceNotInit:               "device not initialized",
	ErrDeviceTimeout:               "device timeout",
	ErrDeviceNoInterface:           "query interface failed",
	ErrDeviceInvalidInterface:      "interface not supported",
	ErrDeviceInvalidCLSID:          "invalid class ID",
	ErrDeviceInvalidObjID:          "invalid object ID",
	ErrDeviceRequestPending:        "request pending",
	ErrDeviceInvalidContextHandle:  "invalid context handle",
	ErrDeviceNoLocking:             "no locking available",
	ErrDeviceNoDatabase:            "no database available",
	ErrDeviceDataNotFound:          "data not found",
	ErrDeviceInvalidHandle:         "invalid handle",

	ErrClientError:                "client error",
	ErrClientInvalidParm:          "invalid parameter",
	ErrClientListEmpty:            "list empty",
	ErrClientVarUsed:              "variable still in use",
	ErrClientDuplicateInvokeID:    "duplicate invoke ID",
	ErrClientSyncTimeout:          "timeout waiting for response",
	ErrClientW32Error:             "windows error in client",
	ErrClientTimeoutInvalid:       "invalid timeout value",
	ErrClientPortNotOpen:          "client port not open",
	ErrClientNoAMSAddr:            "no AMS address",
	ErrClientSyncInternal:         "internal error in sync call",
	ErrClientAddHash:              "failed to add hash",
	ErrClientRemoveHash:           "failed to remove hash",
	ErrClientNoMoreSym:            "no more symbols",
	ErrClientSyncResInvalid:       "sync result invalid",
	ErrClientSyncPortLocked:       "sync port locked",
}
