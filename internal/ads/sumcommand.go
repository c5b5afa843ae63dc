package ads

import (
	"encoding/binary"
	"fmt"
)

// SumReadItem describes one sub-read in a SumCommandRead ReadWrite call.
type SumReadItem struct {
	IndexGroup  uint32
	IndexOffset uint32
	ReadLength  uint32
}

// SumReadResult is one item of a SumCommandRead reply: an independent error
// code plus the raw bytes read for that item (ReadLength bytes regardless of
// error, matching how TwinCAT always reserves the space).
type SumReadResult struct {
	Result uint32
	Data   []byte
}

// EncodeSumReadRequest builds the ReadWrite write-payload for a
// SumCommandRead call: N fixed 12-byte sub-headers, no blobs.
func EncodeSumReadRequest(items []SumReadItem) []byte {
	buf := make([]byte, 12*len(items))
	for i, it := range items {
		o := i * 12
		binary.LittleEndian.PutUint32(buf[o:o+4], it.IndexGroup)
		binary.LittleEndian.PutUint32(buf[o+4:o+8], it.IndexOffset)
		binary.LittleEndian.PutUint32(buf[o+8:o+12], it.ReadLength)
	}
	return buf
}

// SumReadTotalReadLength returns the read-buffer size the caller must
// request: N error codes (4 bytes each) plus each item's declared ReadLength.
func SumReadTotalReadLength(items []SumReadItem) uint32 {
	total := uint32(4 * len(items))
	for _, it := range items {
		total += it.ReadLength
	}
	return total
}

// DecodeSumReadResponse splits a SumCommandRead read-payload into per-item
// results: N u32 error codes, followed by each item's read-length bytes, in
// the same order as the request.
func DecodeSumReadResponse(data []byte, items []SumReadItem) ([]SumReadResult, error) {
	n := len(items)
	if len(data) < 4*n {
		return nil, fmt.Errorf("ads: sum-read response requires at least %d bytes for error codes, got %d", 4*n, len(data))
	}

	results := make([]SumReadResult, n)
	for i := 0; i < n; i++ {
		results[i].Result = binary.LittleEndian.Uint32(data[i*4 : i*4+4])
	}

	offset := 4 * n
	for i, it := range items {
		length := int(it.ReadLength)
		if offset+length > len(data) {
			return nil, fmt.Errorf("ads: sum-read response truncated at item %d", i)
		}
		buf := make([]byte, length)
		copy(buf, data[offset:offset+length])
		results[i].Data = buf
		offset += length
	}

	return results, nil
}

// SumWriteItem describes one sub-write in a SumCommandWrite ReadWrite call.
type SumWriteItem struct {
	IndexGroup  uint32
	IndexOffset uint32
	Data        []byte
}

// EncodeSumWriteRequest builds the ReadWrite write-payload for a
// SumCommandWrite call: N fixed 12-byte sub-headers (ig, io, length),
// followed by the concatenation of all write blobs in order.
func EncodeSumWriteRequest(items []SumWriteItem) []byte {
	headerLen := 12 * len(items)
	dataLen := 0
	for _, it := range items {
		dataLen += len(it.Data)
	}
	buf := make([]byte, headerLen+dataLen)
	for i, it := range items {
		o := i * 12
		binary.LittleEndian.PutUint32(buf[o:o+4], it.IndexGroup)
		binary.LittleEndian.PutUint32(buf[o+4:o+8], it.IndexOffset)
		binary.LittleEndian.PutUint32(buf[o+8:o+12], uint32(len(it.Data)))
	}
	offset := headerLen
	for _, it := range items {
		copy(buf[offset:], it.Data)
		offset += len(it.Data)
	}
	return buf
}

// SumWriteTotalReadLength returns the read-buffer size for a SumCommandWrite
// call: one u32 error code per item, no blobs on the read side.
func SumWriteTotalReadLength(items []SumWriteItem) uint32 {
	return uint32(4 * len(items))
}

// DecodeSumWriteResponse parses the N u32 error codes returned by a
// SumCommandWrite call, in request order.
func DecodeSumWriteResponse(data []byte, n int) ([]uint32, error) {
	if len(data) < 4*n {
		return nil, fmt.Errorf("ads: sum-write response requires %d bytes, got %d", 4*n, len(data))
	}
	results := make([]uint32, n)
	for i := 0; i < n; i++ {
		results[i] = binary.LittleEndian.Uint32(data[i*4 : i*4+4])
	}
	return results, nil
}

// SumReadWriteItem describes one sub-readwrite in a SumCommandReadWrite call.
type SumReadWriteItem struct {
	IndexGroup  uint32
	IndexOffset uint32
	ReadLength  uint32
	WriteData   []byte
}

// SumReadWriteResult is one item of a SumCommandReadWrite reply.
type SumReadWriteResult struct {
	Result uint32
	Data   []byte
}

// EncodeSumReadWriteRequest builds the ReadWrite write-payload for a
// SumCommandReadWrite call: N fixed 16-byte sub-headers (ig, io, readLength,
// writeLength) followed by the concatenation of all write blobs in order.
func EncodeSumReadWriteRequest(items []SumReadWriteItem) []byte {
	headerLen := 16 * len(items)
	dataLen := 0
	for _, it := range items {
		dataLen += len(it.WriteData)
	}
	buf := make([]byte, headerLen+dataLen)
	for i, it := range items {
		o := i * 16
		binary.LittleEndian.PutUint32(buf[o:o+4], it.IndexGroup)
		binary.LittleEndian.PutUint32(buf[o+4:o+8], it.IndexOffset)
		binary.LittleEndian.PutUint32(buf[o+8:o+12], it.ReadLength)
		binary.LittleEndian.PutUint32(buf[o+12:o+16], uint32(len(it.WriteData)))
	}
	offset := headerLen
	for _, it := range items {
		copy(buf[offset:], it.WriteData)
		offset += len(it.WriteData)
	}
	return buf
}

// SumReadWriteTotalReadLength returns the read-buffer size: N error codes
// plus each item's declared ReadLength.
func SumReadWriteTotalReadLength(items []SumReadWriteItem) uint32 {
	total := uint32(4 * len(items))
	for _, it := range items {
		total += it.ReadLength
	}
	return total
}

// DecodeSumReadWriteResponse splits a SumCommandReadWrite read-payload into
// per-item results, mirroring DecodeSumReadResponse.
func DecodeSumReadWriteResponse(data []byte, items []SumReadWriteItem) ([]SumReadWriteResult, error) {
	n := len(items)
	if len(data) < 4*n {
		return nil, fmt.Errorf("ads: sum-readwrite response requires at least %d bytes for error codes, got %d", 4*n, len(data))
	}

	results := make([]SumReadWriteResult, n)
	for i := 0; i < n; i++ {
		results[i].Result = binary.LittleEndian.Uint32(data[i*4 : i*4+4])
	}

	offset := 4 * n
	for i, it := range items {
		length := int(it.ReadLength)
		if offset+length > len(data) {
			return nil, fmt.Errorf("ads: sum-readwrite response truncated at item %d", i)
		}
		buf := make([]byte, length)
		copy(buf, data[offset:offset+length])
		results[i].Data = buf
		offset += length
	}

	return results, nil
}
