package adsgo

import (
	"context"
	"encoding/binary"
	"fmt"
	"math"
	"time"

	"github.com/larskjeldsen/adsgo/internal/ads"
)

// Type-safe read methods for common TwinCAT types.

// ReadBool reads a BOOL value from a symbol by name.
func (c *Client) ReadBool(ctx context.Context, symbolName string) (bool, error) {
	data, err := c.ReadSymbol(ctx, symbolName)
	if err != nil {
		return false, err
	}
	if len(data) < 1 {
		return false, fmt.Errorf("insufficient data: expected at least 1 byte, got %d", len(data))
	}
	return data[0] != 0, nil
}

// ReadInt8 reads an INT8/SINT value from a symbol by name.
func (c *Client) ReadInt8(ctx context.Context, symbolName string) (int8, error) {
	data, err := c.ReadSymbol(ctx, symbolName)
	if err != nil {
		return 0, err
	}
	if len(data) < 1 {
		return 0, fmt.Errorf("insufficient data: expected at least 1 byte, got %d", len(data))
	}
	return int8(data[0]), nil
}

// ReadUint8 reads a UINT8/USINT/BYTE value from a symbol by name.
func (c *Client) ReadUint8(ctx context.Context, symbolName string) (uint8, error) {
	data, err := c.ReadSymbol(ctx, symbolName)
	if err != nil {
		return 0, err
	}
	if len(data) < 1 {
		return 0, fmt.Errorf("insufficient data: expected at least 1 byte, got %d", len(data))
	}
	return data[0], nil
}

// ReadInt16 reads an INT16/INT value from a symbol by name.
func (c *Client) ReadInt16(ctx context.Context, symbolName string) (int16, error) {
	data, err := c.ReadSymbol(ctx, symbolName)
	if err != nil {
		return 0, err
	}
	if len(data) < 2 {
		return 0, fmt.Errorf("insufficient data: expected at least 2 bytes, got %d", len(data))
	}
	return int16(binary.LittleEndian.Uint16(data)), nil
}

// ReadUint16 reads a UINT16/UINT/WORD value from a symbol by name.
func (c *Client) ReadUint16(ctx context.Context, symbolName string) (uint16, error) {
	data, err := c.ReadSymbol(ctx, symbolName)
	if err != nil {
		return 0, err
	}
	if len(data) < 2 {
		return 0, fmt.Errorf("insufficient data: expected at least 2 bytes, got %d", len(data))
	}
	return binary.LittleEndian.Uint16(data), nil
}

// ReadInt32 reads an INT32/DINT value from a symbol by name.
func (c *Client) ReadInt32(ctx context.Context, symbolName string) (int32, error) {
	data, err := c.ReadSymbol(ctx, symbolName)
	if err != nil {
		return 0, err
	}
	if len(data) < 4 {
		return 0, fmt.Errorf("insufficient data: expected at least 4 bytes, got %d", len(data))
	}
	return int32(binary.LittleEndian.Uint32(data)), nil
}

// ReadUint32 reads a UINT32/UDINT/DWORD value from a symbol by name.
func (c *Client) ReadUint32(ctx context.Context, symbolName string) (uint32, error) {
	data, err := c.ReadSymbol(ctx, symbolName)
	if err != nil {
		return 0, err
	}
	if len(data) < 4 {
		return 0, fmt.Errorf("insufficient data: expected at least 4 bytes, got %d", len(data))
	}
	return binary.LittleEndian.Uint32(data), nil
}

// ReadInt64 reads an INT64/LINT value from a symbol by name.
func (c *Client) ReadInt64(ctx context.Context, symbolName string) (int64, error) {
	data, err := c.ReadSymbol(ctx, symbolName)
	if err != nil {
		return 0, err
	}
	if len(data) < 8 {
		return 0, fmt.Errorf("insufficient data: expected at least 8 bytes, got %d", len(data))
	}
	return int64(binary.LittleEndian.Uint64(data)), nil
}

// ReadUint64 reads a UINT64/ULINT/LWORD value from a symbol by name.
func (c *Client) ReadUint64(ctx context.Context, symbolName string) (uint64, error) {
	data, err := c.ReadSymbol(ctx, symbolName)
	if err != nil {
		return 0, err
	}
	if len(data) < 8 {
		return 0, fmt.Errorf("insufficient data: expected at least 8 bytes, got %d", len(data))
	}
	return binary.LittleEndian.Uint64(data), nil
}

// ReadFloat32 reads a REAL/FLOAT value from a symbol by name.
func (c *Client) ReadFloat32(ctx context.Context, symbolName string) (float32, error) {
	data, err := c.ReadSymbol(ctx, symbolName)
	if err != nil {
		return 0, err
	}
	if len(data) < 4 {
		return 0, fmt.Errorf("insufficient data: expected at least 4 bytes, got %d", len(data))
	}
	return math.Float32frombits(binary.LittleEndian.Uint32(data)), nil
}

// ReadFloat64 reads an LREAL/DOUBLE value from a symbol by name.
func (c *Client) ReadFloat64(ctx context.Context, symbolName string) (float64, error) {
	data, err := c.ReadSymbol(ctx, symbolName)
	if err != nil {
		return 0, err
	}
	if len(data) < 8 {
		return 0, fmt.Errorf("insufficient data: expected at least 8 bytes, got %d", len(data))
	}
	return math.Float64frombits(binary.LittleEndian.Uint64(data)), nil
}

// ReadString reads a STRING value from a symbol by name.
// TwinCAT strings are null-terminated and may have a fixed buffer size.
// Returns the string up to the first null byte.
func (c *Client) ReadString(ctx context.Context, symbolName string) (string, error) {
	data, err := c.ReadSymbol(ctx, symbolName)
	if err != nil {
		return "", err
	}
	return ads.DecodeCP1252(nullTerminate(data)), nil
}

// ReadWString reads a WSTRING (wide string, UTF-16LE) value from a symbol.
// Returns the string as UTF-8.
func (c *Client) ReadWString(ctx context.Context, symbolName string) (string, error) {
	if err := c.ensureSymbolsLoaded(ctx); err != nil {
		return "", err
	}

	indexGroup, indexOffset, size, err := c.resolveArraySymbol(ctx, symbolName)
	if err != nil {
		return "", fmt.Errorf("read wstring %q: %w", symbolName, err)
	}

	data, err := c.Read(ctx, indexGroup, indexOffset, size)
	if err != nil {
		return "", err
	}

	return ads.DecodeUTF16LE(data), nil
}

// ReadTime reads a TIME value from a symbol and returns it as time.Duration.
// TIME is stored as a 32-bit unsigned integer representing milliseconds.
func (c *Client) ReadTime(ctx context.Context, symbolName string) (time.Duration, error) {
	val, err := c.ReadUint32(ctx, symbolName)
	if err != nil {
		return 0, err
	}
	return ads.DecodeTimeOfDay(val), nil
}

// ReadLTime reads an LTIME value from a symbol and returns it as time.Duration.
// LTIME is stored as a 64-bit signed integer representing nanoseconds.
func (c *Client) ReadLTime(ctx context.Context, symbolName string) (time.Duration, error) {
	val, err := c.ReadInt64(ctx, symbolName)
	if err != nil {
		return 0, err
	}
	return ads.DecodeLTime(val), nil
}

// ReadDate reads a DATE value from a symbol and returns it as time.Time.
func (c *Client) ReadDate(ctx context.Context, symbolName string) (time.Time, error) {
	val, err := c.ReadUint32(ctx, symbolName)
	if err != nil {
		return time.Time{}, err
	}
	return ads.DecodeDate(val), nil
}

// ReadTimeOfDay reads a TIME_OF_DAY value from a symbol and returns it as time.Duration.
func (c *Client) ReadTimeOfDay(ctx context.Context, symbolName string) (time.Duration, error) {
	val, err := c.ReadUint32(ctx, symbolName)
	if err != nil {
		return 0, err
	}
	return ads.DecodeTimeOfDay(val), nil
}

// ReadDateAndTime reads a DATE_AND_TIME value from a symbol and returns it as time.Time.
func (c *Client) ReadDateAndTime(ctx context.Context, symbolName string) (time.Time, error) {
	val, err := c.ReadUint32(ctx, symbolName)
	if err != nil {
		return time.Time{}, err
	}
	return ads.DecodeDateAndTime(val), nil
}

// Type-safe write methods for common TwinCAT types.

// WriteBool writes a BOOL value to a symbol by name.
func (c *Client) WriteBool(ctx context.Context, symbolName string, value bool) error {
	data := make([]byte, 1)
	if value {
		data[0] = 1
	}
	return c.WriteSymbol(ctx, symbolName, data)
}

// WriteInt8 writes an INT8/SINT value to a symbol by name.
func (c *Client) WriteInt8(ctx context.Context, symbolName string, value int8) error {
	return c.WriteSymbol(ctx, symbolName, []byte{byte(value)})
}

// WriteUint8 writes a UINT8/USINT/BYTE value to a symbol by name.
func (c *Client) WriteUint8(ctx context.Context, symbolName string, value uint8) error {
	return c.WriteSymbol(ctx, symbolName, []byte{value})
}

// WriteInt16 writes an INT16/INT value to a symbol by name.
func (c *Client) WriteInt16(ctx context.Context, symbolName string, value int16) error {
	data := make([]byte, 2)
	binary.LittleEndian.PutUint16(data, uint16(value))
	return c.WriteSymbol(ctx, symbolName, data)
}

// WriteUint16 writes a UINT16/UINT/WORD value to a symbol by name.
func (c *Client) WriteUint16(ctx context.Context, symbolName string, value uint16) error {
	data := make([]byte, 2)
	binary.LittleEndian.PutUint16(data, value)
	return c.WriteSymbol(ctx, symbolName, data)
}

// WriteInt32 writes an INT32/DINT value to a symbol by name.
func (c *Client) WriteInt32(ctx context.Context, symbolName string, value int32) error {
	data := make([]byte, 4)
	binary.LittleEndian.PutUint32(data, uint32(value))
	return c.WriteSymbol(ctx, symbolName, data)
}

// WriteUint32 writes a UINT32/UDINT/DWORD value to a symbol by name.
func (c *Client) WriteUint32(ctx context.Context, symbolName string, value uint32) error {
	data := make([]byte, 4)
	binary.LittleEndian.PutUint32(data, value)
	return c.WriteSymbol(ctx, symbolName, data)
}

// WriteInt64 writes an INT64/LINT value to a symbol by name.
func (c *Client) WriteInt64(ctx context.Context, symbolName string, value int64) error {
	data := make([]byte, 8)
	binary.LittleEndian.PutUint64(data, uint64(value))
	return c.WriteSymbol(ctx, symbolName, data)
}

// WriteUint64 writes a UINT64/ULINT/LWORD value to a symbol by name.
func (c *Client) WriteUint64(ctx context.Context, symbolName string, value uint64) error {
	data := make([]byte, 8)
	binary.LittleEndian.PutUint64(data, value)
	return c.WriteSymbol(ctx, symbolName, data)
}

// WriteFloat32 writes a REAL/FLOAT value to a symbol by name.
func (c *Client) WriteFloat32(ctx context.Context, symbolName string, value float32) error {
	data := make([]byte, 4)
	binary.LittleEndian.PutUint32(data, math.Float32bits(value))
	return c.WriteSymbol(ctx, symbolName, data)
}

// WriteFloat64 writes an LREAL/DOUBLE value to a symbol by name.
func (c *Client) WriteFloat64(ctx context.Context, symbolName string, value float64) error {
	data := make([]byte, 8)
	binary.LittleEndian.PutUint64(data, math.Float64bits(value))
	return c.WriteSymbol(ctx, symbolName, data)
}

// WriteString writes a STRING value to a symbol by name.
// TwinCAT strings have a fixed buffer size. The value is null-terminated
// and padded with zeros to fill the buffer.
func (c *Client) WriteString(ctx context.Context, symbolName string, value string) error {
	if err := c.ensureSymbolsLoaded(ctx); err != nil {
		return err
	}

	indexGroup, indexOffset, size, err := c.resolveArraySymbol(ctx, symbolName)
	if err != nil {
		return fmt.Errorf("write string %q: %w", symbolName, err)
	}

	data := make([]byte, size)
	encoded := ads.EncodeCP1252(value)
	maxLen := int(size) - 1
	if len(encoded) > maxLen {
		encoded = encoded[:maxLen]
	}
	copy(data, encoded)

	return c.Write(ctx, indexGroup, indexOffset, data)
}

// WriteWString writes a string value to a WSTRING symbol.
// The string is converted from UTF-8 to UTF-16LE.
func (c *Client) WriteWString(ctx context.Context, symbolName string, value string) error {
	if err := c.ensureSymbolsLoaded(ctx); err != nil {
		return err
	}

	indexGroup, indexOffset, size, err := c.resolveArraySymbol(ctx, symbolName)
	if err != nil {
		return fmt.Errorf("write wstring %q: %w", symbolName, err)
	}

	data := make([]byte, size)
	encoded := ads.EncodeUTF16LE(value)
	maxLen := (int(size) / 2) * 2 - 2
	if maxLen < 0 {
		maxLen = 0
	}
	if len(encoded) > maxLen {
		encoded = encoded[:maxLen]
	}
	copy(data, encoded)

	return c.Write(ctx, indexGroup, indexOffset, data)
}

// WriteTime writes a time.Duration value to a TIME symbol.
func (c *Client) WriteTime(ctx context.Context, symbolName string, value time.Duration) error {
	return c.WriteUint32(ctx, symbolName, ads.EncodeTimeOfDay(value))
}

// WriteLTime writes a time.Duration value to an LTIME symbol.
func (c *Client) WriteLTime(ctx context.Context, symbolName string, value time.Duration) error {
	return c.WriteInt64(ctx, symbolName, ads.EncodeLTime(value))
}

// WriteDate writes a time.Time value to a DATE symbol.
func (c *Client) WriteDate(ctx context.Context, symbolName string, value time.Time) error {
	return c.WriteUint32(ctx, symbolName, ads.EncodeDate(value))
}

// WriteTimeOfDay writes a time.Duration value to a TIME_OF_DAY symbol.
func (c *Client) WriteTimeOfDay(ctx context.Context, symbolName string, value time.Duration) error {
	return c.WriteUint32(ctx, symbolName, ads.EncodeTimeOfDay(value))
}

// WriteDateAndTime writes a time.Time value to a DATE_AND_TIME symbol.
func (c *Client) WriteDateAndTime(ctx context.Context, symbolName string, value time.Time) error {
	return c.WriteUint32(ctx, symbolName, ads.EncodeDateAndTime(value))
}

// nullTerminate returns the prefix of data up to (not including) the first
// null byte, or all of data if none is present.
func nullTerminate(data []byte) []byte {
	for i, b := range data {
		if b == 0 {
			return data[:i]
		}
	}
	return data
}
