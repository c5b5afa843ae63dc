package ads

import (
	"encoding/binary"
	"fmt"
)

// TransmissionMode selects how the PLC decides when to push a notification
// sample: on every value change, or on a fixed cycle regardless of change.
type TransmissionMode uint32

const (
	TransModeNone      TransmissionMode = 0
	TransModeClientCycle TransmissionMode = 1
	TransModeClient1    TransmissionMode = 2
	TransModeServerCycle TransmissionMode = 3
	TransModeServerOnChange TransmissionMode = 4
	TransModeClientOnChange TransmissionMode = 5
	// TransModeOnChange and TransModeCyclic are the two modes this client
	// actually issues; the remaining values above exist on the wire but are
	// legacy TC2 modes this client never selects.
	TransModeOnChange TransmissionMode = 4
	TransModeCyclic    TransmissionMode = 3
)

// AddDeviceNotificationRequest registers a cyclic or on-change notification
// for a raw {index-group, index-offset, length} address.
//
// Wire layout: u32 ig | u32 io | u32 size | u32 mode | u32 maxDelay_100ns |
// u32 cycleTime_100ns | 16 reserved zero bytes.
type AddDeviceNotificationRequest struct {
	IndexGroup       uint32
	IndexOffset      uint32
	Length           uint32
	TransmissionMode TransmissionMode
	MaxDelay         uint32 // milliseconds; converted to 100ns ticks on the wire
	CycleTime        uint32 // milliseconds; converted to 100ns ticks on the wire
}

func (r *AddDeviceNotificationRequest) MarshalBinary() ([]byte, error) {
	buf := make([]byte, 40)
	binary.LittleEndian.PutUint32(buf[0:4], r.IndexGroup)
	binary.LittleEndian.PutUint32(buf[4:8], r.IndexOffset)
	binary.LittleEndian.PutUint32(buf[8:12], r.Length)
	binary.LittleEndian.PutUint32(buf[12:16], uint32(r.TransmissionMode))
	binary.LittleEndian.PutUint32(buf[16:20], r.MaxDelay*10000)
	binary.LittleEndian.PutUint32(buf[20:24], r.CycleTime*10000)
	// buf[24:40] stays zero (16 reserved bytes)
	return buf, nil
}

// AddDeviceNotificationResponse carries the PLC-assigned notification handle.
type AddDeviceNotificationResponse struct {
	Result             uint32
	NotificationHandle uint32
}

func (r *AddDeviceNotificationResponse) UnmarshalBinary(data []byte) error {
	if len(data) < 8 {
		return fmt.Errorf("ads: add device notification response requires 8 bytes, got %d", len(data))
	}
	r.Result = binary.LittleEndian.Uint32(data[0:4])
	r.NotificationHandle = binary.LittleEndian.Uint32(data[4:8])
	return nil
}

// DeleteDeviceNotificationRequest releases a previously registered handle.
// Wire layout: u32 handle.
type DeleteDeviceNotificationRequest struct {
	NotificationHandle uint32
}

func (r *DeleteDeviceNotificationRequest) MarshalBinary() ([]byte, error) {
	buf := make([]byte, 4)
	binary.LittleEndian.PutUint32(buf[0:4], r.NotificationHandle)
	return buf, nil
}

// DeleteDeviceNotificationResponse carries only the outer ADS result, which
// is folded into Result for symmetry with the other response types.
type DeleteDeviceNotificationResponse struct {
	Result uint32
}

func (r *DeleteDeviceNotificationResponse) UnmarshalBinary(data []byte) error {
	if len(data) < 4 {
		return fmt.Errorf("ads: delete device notification response requires 4 bytes, got %d", len(data))
	}
	r.Result = binary.LittleEndian.Uint32(data[0:4])
	return nil
}

// Sample is one value sample within a StampHeader.
type Sample struct {
	NotificationHandle uint32
	Data               []byte
}

// StampHeader groups all samples that share one PLC timestamp.
type StampHeader struct {
	// Timestamp is the PLC clock in 100-nanosecond ticks since
	// 1601-01-01 00:00:00 UTC (Windows FILETIME).
	Timestamp uint64
	Samples   []Sample
}

// DeviceNotificationRequest is the payload of an inbound Notification
// (CommandID 0x0008) packet, carrying one or more stamped sample batches.
//
// Wire layout: u32 totalLength | u32 stampCount | for each stamp:
// {u64 plcTime100nsSince1601 | u32 sampleCount | for each sample:
// {u32 handle | u32 size | size bytes}}.
type DeviceNotificationRequest struct {
	StampHeaders []StampHeader
}

func (n *DeviceNotificationRequest) UnmarshalBinary(data []byte) error {
	if len(data) < 8 {
		return fmt.Errorf("ads: device notification requires at least 8 bytes, got %d", len(data))
	}

	stampCount := binary.LittleEndian.Uint32(data[4:8])
	offset := 8

	headers := make([]StampHeader, 0, stampCount)
	for i := uint32(0); i < stampCount; i++ {
		if offset+12 > len(data) {
			return fmt.Errorf("ads: truncated stamp header at index %d", i)
		}
		stamp := StampHeader{
			Timestamp: binary.LittleEndian.Uint64(data[offset : offset+8]),
		}
		sampleCount := binary.LittleEndian.Uint32(data[offset+8 : offset+12])
		offset += 12

		samples := make([]Sample, 0, sampleCount)
		for j := uint32(0); j < sampleCount; j++ {
			if offset+8 > len(data) {
				return fmt.Errorf("ads: truncated sample header at stamp %d sample %d", i, j)
			}
			handle := binary.LittleEndian.Uint32(data[offset : offset+4])
			size := binary.LittleEndian.Uint32(data[offset+4 : offset+8])
			offset += 8

			if offset+int(size) > len(data) {
				return fmt.Errorf("ads: truncated sample data at stamp %d sample %d", i, j)
			}
			sampleData := make([]byte, size)
			copy(sampleData, data[offset:offset+int(size)])
			offset += int(size)

			samples = append(samples, Sample{NotificationHandle: handle, Data: sampleData})
		}
		stamp.Samples = samples
		headers = append(headers, stamp)
	}

	n.StampHeaders = headers
	return nil
}

// FileTimeEpochOffset100ns is the number of 100ns ticks between the
// FILETIME epoch (1601-01-01) and the Unix epoch (1970-01-01).
const FileTimeEpochOffset100ns = 116444736000000000
