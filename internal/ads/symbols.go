// Package ads implements symbol resolution commands for TwinCAT 3.
package ads

import (
	"encoding/binary"
	"fmt"
)

// Symbol-related index groups as per ADS specification.
const (
	IndexGroupSymbolHandleByName   uint32 = 0xF003 // Get symbol handle by name (ReadWrite)
	IndexGroupSymbolValueByName    uint32 = 0xF004 // Read/write symbol by name directly
	IndexGroupSymbolValueByHandle  uint32 = 0xF005 // Read/write symbol by handle
	IndexGroupReleaseSymbolHandle  uint32 = 0xF006 // Release symbol handle (Write)
	IndexGroupSymbolInfoByName     uint32 = 0xF007 // Get symbol info by name (Read)
	IndexGroupSymbolVersion        uint32 = 0xF008 // Get symbol version (Read, u32)
	IndexGroupSymbolInfoByNameEx   uint32 = 0xF009 // Get symbol info by name (ReadWrite, TC3)
	IndexGroupSymbolUpload         uint32 = 0xF00B // Upload the full symbol table (Read)
	IndexGroupSymbolUploadInfo     uint32 = 0xF00C // Upload info: symbol+type counts/lengths (Read)
	IndexGroupSymbolDataTypeUpload uint32 = 0xF00D // Upload the full data-type table (Read)
	IndexGroupSymbolUploadInfo2    uint32 = 0xF00F // Extended upload info (Read)
	IndexGroupDataTypeInfoByNameEx uint32 = 0xF012 // Get data type info by name (ReadWrite)

	// IndexGroupRpcMethodCall invokes a function-block method on an
	// instance addressed by variable handle (ReadWrite). The write payload
	// is the method's VTable index (u32) followed by the encoded input/
	// in-out parameters in declaration order; the read payload is the
	// return value followed by the encoded out/in-out parameters.
	IndexGroupRpcMethodCall uint32 = 0xF060
)

// GetSymbolHandleByNameRequest retrieves a handle for a symbol name.
// IndexGroup: 0xF003, IndexOffset: 0x00000000
type GetSymbolHandleByNameRequest struct {
	SymbolName string
}

func (r *GetSymbolHandleByNameRequest) MarshalBinary() ([]byte, error) {
	// Symbol name as null-terminated string
	nameBytes := []byte(r.SymbolName)
	buf := make([]byte, len(nameBytes)+1) // +1 for null terminator
	copy(buf, nameBytes)
	buf[len(nameBytes)] = 0
	return buf, nil
}

// GetSymbolHandleByNameResponse contains the symbol handle.
type GetSymbolHandleByNameResponse struct {
	Handle uint32
}

func (r *GetSymbolHandleByNameResponse) UnmarshalBinary(data []byte) error {
	if len(data) < 4 {
		return fmt.Errorf("ads: symbol handle response requires 4 bytes, got %d", len(data))
	}
	r.Handle = binary.LittleEndian.Uint32(data[0:4])
	return nil
}

// ReleaseSymbolHandleRequest releases a symbol handle.
// IndexGroup: 0xF006, IndexOffset: 0x00000000
type ReleaseSymbolHandleRequest struct {
	Handle uint32
}

func (r *ReleaseSymbolHandleRequest) MarshalBinary() ([]byte, error) {
	buf := make([]byte, 4)
	binary.LittleEndian.PutUint32(buf[0:4], r.Handle)
	return buf, nil
}

// ReleaseSymbolHandleResponse is empty (uses standard Result in Write response).
type ReleaseSymbolHandleResponse struct{}

func (r *ReleaseSymbolHandleResponse) UnmarshalBinary(data []byte) error {
	return nil
}

// SymbolUploadInfoRequest gets information about the symbol table.
// IndexGroup: 0xF00C, IndexOffset: 0x00000000
type SymbolUploadInfoRequest struct{}

func (r *SymbolUploadInfoRequest) MarshalBinary() ([]byte, error) {
	return []byte{}, nil
}

// SymbolUploadInfoResponse contains symbol and data-type table metadata, as
// returned by a Read against IndexGroupSymbolUploadInfo2.
type SymbolUploadInfoResponse struct {
	SymbolCount    uint32 // Number of symbols
	SymbolLength   uint32 // Total size of symbol upload data in bytes
	DataTypeCount  uint32 // Number of data-type entries
	DataTypeLength uint32 // Total size of data-type upload data in bytes
	ExtraCount     uint32 // Number of extra (reserved) entries
	ExtraLength    uint32 // Total size of extra data in bytes
}

func (r *SymbolUploadInfoResponse) UnmarshalBinary(data []byte) error {
	if len(data) < 8 {
		return fmt.Errorf("ads: symbol upload info response requires at least 8 bytes, got %d", len(data))
	}
	r.SymbolCount = binary.LittleEndian.Uint32(data[0:4])
	r.SymbolLength = binary.LittleEndian.Uint32(data[4:8])
	if len(data) >= 24 {
		r.DataTypeCount = binary.LittleEndian.Uint32(data[8:12])
		r.DataTypeLength = binary.LittleEndian.Uint32(data[12:16])
		r.ExtraCount = binary.LittleEndian.Uint32(data[16:20])
		r.ExtraLength = binary.LittleEndian.Uint32(data[20:24])
	}
	return nil
}

// SymbolUploadRequest requests the complete symbol table.
// IndexGroup: 0xF00B, IndexOffset: 0x00000000
type SymbolUploadRequest struct{}

func (r *SymbolUploadRequest) MarshalBinary() ([]byte, error) {
	return []byte{}, nil
}

// SymbolUploadResponse contains the raw symbol table data.
// The data format is complex and requires parsing (see parser.go).
type SymbolUploadResponse struct {
	Data []byte
}

func (r *SymbolUploadResponse) UnmarshalBinary(data []byte) error {
	r.Data = make([]byte, len(data))
	copy(r.Data, data)
	return nil
}

// SymbolInfoByNameRequest gets detailed info about a symbol.
// IndexGroup: 0xF007, IndexOffset: 0x00000000
type SymbolInfoByNameRequest struct {
	SymbolName string
}

func (r *SymbolInfoByNameRequest) MarshalBinary() ([]byte, error) {
	nameBytes := []byte(r.SymbolName)
	buf := make([]byte, len(nameBytes)+1)
	copy(buf, nameBytes)
	buf[len(nameBytes)] = 0
	return buf, nil
}

// DataTypeUploadRequest requests the complete recursive data-type table.
// IndexGroup: 0xF00D, IndexOffset: 0x00000000
type DataTypeUploadRequest struct{}

func (r *DataTypeUploadRequest) MarshalBinary() ([]byte, error) {
	return []byte{}, nil
}

// DataTypeUploadResponse contains the raw data-type table data. The format
// is a sequence of recursive nodes; see internal/symbols for parsing.
type DataTypeUploadResponse struct {
	Data []byte
}

func (r *DataTypeUploadResponse) UnmarshalBinary(data []byte) error {
	r.Data = make([]byte, len(data))
	copy(r.Data, data)
	return nil
}

// DataTypeUploadInfoResponse is an alias view of SymbolUploadInfoResponse
// scoped to the data-type portion of the upload-info reply; some callers
// only care about the data-type count/length.
type DataTypeUploadInfoResponse struct {
	DataTypeCount  uint32
	DataTypeLength uint32
}

func (r *DataTypeUploadInfoResponse) UnmarshalBinary(data []byte) error {
	var full SymbolUploadInfoResponse
	if err := full.UnmarshalBinary(data); err != nil {
		return err
	}
	r.DataTypeCount = full.DataTypeCount
	r.DataTypeLength = full.DataTypeLength
	return nil
}

// SymbolEntry represents a parsed symbol from the upload data.
type SymbolEntry struct {
	EntryLength   uint32
	IndexGroup    uint32
	IndexOffset   uint32
	Size          uint32
	DataType      uint32
	Flags         uint32
	NameLength    uint16
	TypeLength    uint16
	CommentLength uint16
	Name          string
	Type          string
	Comment       string
}

// Symbol flags
const (
	SymbolFlagPersistent       uint32 = 0x00000001
	SymbolFlagBitValue         uint32 = 0x00000002
	SymbolFlagRemanent         uint32 = 0x00000008
	SymbolFlagTComInterfacePtr uint32 = 0x00000010
	SymbolFlagTypeGUID         uint32 = 0x00000020
	SymbolFlagAttributes       uint32 = 0x00001000
	SymbolFlagStatic           uint32 = 0x00004000
)
