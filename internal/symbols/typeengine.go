package symbols

import (
	"encoding/binary"
	"fmt"
	"math"
	"strings"

	"github.com/larskjeldsen/adsgo/internal/ads"
)

// EnumResult is the decoded value of an ENUM, pairing the matched member
// name (empty if the raw value matches no known member) with its
// underlying value.
type EnumResult struct {
	Name  string
	Value interface{}
}

// DecodeOptions controls decode-time behavior that isn't determined by the
// type tree alone.
type DecodeOptions struct {
	// ObjectifyEnumerations, when true (the default), decodes ENUM values as
	// EnumResult{Name, Value}. When false, the matched member name is
	// discarded and the bare underlying value is returned instead.
	ObjectifyEnumerations bool
}

// DefaultDecodeOptions matches the client's default configuration.
var DefaultDecodeOptions = DecodeOptions{ObjectifyEnumerations: true}

// Decode converts a raw byte buffer into a structured Go value, driven
// entirely by t's recursive shape: primitive, array, enum, union, struct,
// pointer/reference, or zero-size. It never performs I/O; every type it
// needs (array element, struct member, union member) must already be
// present in t's own SubItems/Fields, the same recursive tree
// ParseDataTypeTable produces.
func Decode(data []byte, t TypeInfo) (interface{}, error) {
	return DecodeOpts(data, t, DefaultDecodeOptions)
}

// DecodeOpts is Decode with explicit DecodeOptions, threaded recursively
// into every array element, struct field, and union member.
func DecodeOpts(data []byte, t TypeInfo, opts DecodeOptions) (interface{}, error) {
	if t.Size == 0 {
		return nil, nil
	}
	if len(data) < int(t.Size) {
		return nil, fmt.Errorf("decode %q: need %d bytes, got %d", t.Name, t.Size, len(data))
	}
	data = data[:t.Size]

	switch {
	case t.IsPointer || t.IsReference:
		return decodeAddress(data), nil
	case t.IsArray:
		return decodeArray(data, t, opts)
	case t.IsUnion:
		return decodeUnion(data, t, opts)
	case t.IsEnum:
		return decodeEnum(data, t, opts)
	case t.IsStruct:
		return decodeStruct(data, t, opts)
	default:
		return decodePrimitive(data, t)
	}
}

// Encode is Decode's inverse: given a structured Go value and its type, it
// produces the raw byte buffer the PLC expects. Members absent from a
// map[string]interface{} value are encoded as zero bytes, matching
// autoFill semantics for struct writes.
func Encode(value interface{}, t TypeInfo) ([]byte, error) {
	if t.Size == 0 {
		return nil, nil
	}

	switch {
	case t.IsPointer || t.IsReference:
		return encodeAddress(value, t)
	case t.IsArray:
		return encodeArray(value, t)
	case t.IsUnion:
		return encodeUnion(value, t)
	case t.IsEnum:
		return encodeEnum(value, t)
	case t.IsStruct:
		return encodeStruct(value, t)
	default:
		return encodePrimitive(value, t)
	}
}

func decodeArray(data []byte, t TypeInfo, opts DecodeOptions) (interface{}, error) {
	total := uint32(1)
	for _, dim := range t.ArrayDims {
		total *= dim.ElementCount
	}
	if total == 0 {
		return []interface{}{}, nil
	}
	if len(t.SubItems) == 0 {
		return nil, fmt.Errorf("decode array %q: no element type in SubItems", t.Name)
	}
	elemType := t.SubItems[0]
	elemSize := elemType.Size
	if elemSize == 0 && total > 0 {
		elemSize = t.Size / total
	}

	result := make([]interface{}, 0, total)
	for i := uint32(0); i < total; i++ {
		offset := i * elemSize
		if offset+elemSize > uint32(len(data)) {
			break
		}
		elemType.Size = elemSize
		value, err := DecodeOpts(data[offset:offset+elemSize], elemType, opts)
		if err != nil {
			return nil, fmt.Errorf("decode array %q element %d: %w", t.Name, i, err)
		}
		result = append(result, value)
	}
	return result, nil
}

func encodeArray(value interface{}, t TypeInfo) ([]byte, error) {
	elements, ok := value.([]interface{})
	if !ok {
		return nil, fmt.Errorf("encode array %q: expected []interface{}, got %T", t.Name, value)
	}
	if len(t.SubItems) == 0 {
		return nil, fmt.Errorf("encode array %q: no element type in SubItems", t.Name)
	}
	elemType := t.SubItems[0]

	buf := make([]byte, 0, t.Size)
	for i, elem := range elements {
		encoded, err := Encode(elem, elemType)
		if err != nil {
			return nil, fmt.Errorf("encode array %q element %d: %w", t.Name, i, err)
		}
		buf = append(buf, encoded...)
	}
	if uint32(len(buf)) < t.Size {
		buf = append(buf, make([]byte, t.Size-uint32(len(buf)))...)
	}
	return buf, nil
}

// decodeUnion decodes every member at offset 0 and returns the one the PLC
// currently considers active is not knowable from bytes alone, so all
// members are returned keyed by name; callers pick the relevant one.
func decodeUnion(data []byte, t TypeInfo, opts DecodeOptions) (interface{}, error) {
	result := make(map[string]interface{}, len(t.SubItems))
	for _, member := range t.SubItems {
		if int(member.Size) > len(data) {
			continue
		}
		value, err := DecodeOpts(data[:member.Size], member, opts)
		if err != nil {
			return nil, fmt.Errorf("decode union %q member %q: %w", t.Name, member.Name, err)
		}
		result[member.Name] = value
	}
	return result, nil
}

func encodeUnion(value interface{}, t TypeInfo) ([]byte, error) {
	members, ok := value.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("encode union %q: expected map[string]interface{}, got %T", t.Name, value)
	}
	buf := make([]byte, t.Size)
	for _, member := range t.SubItems {
		v, present := members[member.Name]
		if !present {
			continue
		}
		encoded, err := Encode(v, member)
		if err != nil {
			return nil, fmt.Errorf("encode union %q member %q: %w", t.Name, member.Name, err)
		}
		copy(buf, encoded)
		return buf, nil // union members share offset 0; first present value wins
	}
	return buf, nil
}

func decodeEnum(data []byte, t TypeInfo, opts DecodeOptions) (interface{}, error) {
	if !opts.ObjectifyEnumerations {
		return rawIntValue(data), nil
	}
	for _, ev := range t.EnumValues {
		if bytesEqual(ev.Value, data) {
			return EnumResult{Name: ev.Name, Value: rawIntValue(data)}, nil
		}
	}
	return EnumResult{Value: rawIntValue(data)}, nil
}

func encodeEnum(value interface{}, t TypeInfo) ([]byte, error) {
	switch v := value.(type) {
	case EnumResult:
		return encodeEnumByValue(v.Value, t)
	case string:
		for _, ev := range t.EnumValues {
			if strings.EqualFold(ev.Name, v) {
				buf := make([]byte, t.Size)
				copy(buf, ev.Value)
				return buf, nil
			}
		}
		return nil, fmt.Errorf("encode enum %q: unknown member %q", t.Name, v)
	default:
		return encodeEnumByValue(value, t)
	}
}

func encodeEnumByValue(value interface{}, t TypeInfo) ([]byte, error) {
	buf := make([]byte, t.Size)
	switch v := value.(type) {
	case int:
		putRawInt(buf, int64(v))
	case int32:
		putRawInt(buf, int64(v))
	case int64:
		putRawInt(buf, v)
	case uint32:
		putRawInt(buf, int64(v))
	default:
		return nil, fmt.Errorf("encode enum %q: unsupported value type %T", t.Name, value)
	}
	return buf, nil
}

func decodeStruct(data []byte, t TypeInfo, opts DecodeOptions) (interface{}, error) {
	if len(t.Fields) == 0 {
		return map[string]interface{}{"_raw": append([]byte(nil), data...)}, nil
	}
	result := make(map[string]interface{}, len(t.Fields))
	for _, field := range t.Fields {
		if field.Type.IsBitValue {
			if int(field.Offset) >= len(data) {
				continue
			}
			result[field.Name] = ads.GetBit(data[field.Offset], uint(field.BitOffset))
			continue
		}
		if int(field.Offset)+int(field.Type.Size) > len(data) {
			continue
		}
		value, err := DecodeOpts(data[field.Offset:field.Offset+field.Type.Size], field.Type, opts)
		if err != nil {
			return nil, fmt.Errorf("decode struct %q field %q: %w", t.Name, field.Name, err)
		}
		result[field.Name] = value
	}
	return result, nil
}

func encodeStruct(value interface{}, t TypeInfo) ([]byte, error) {
	members, ok := value.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("encode struct %q: expected map[string]interface{}, got %T", t.Name, value)
	}
	buf := make([]byte, t.Size)
	for _, field := range t.Fields {
		v, present := members[field.Name]
		if !present {
			continue // autoFill: leave the member's bytes zeroed
		}
		if field.Type.IsBitValue {
			set, ok := v.(bool)
			if !ok {
				return nil, fmt.Errorf("encode struct %q field %q: expected bool, got %T", t.Name, field.Name, v)
			}
			if int(field.Offset) >= len(buf) {
				continue
			}
			if set {
				buf[field.Offset] = ads.SetBit(buf[field.Offset], uint(field.BitOffset))
			} else {
				buf[field.Offset] = ads.ClearBit(buf[field.Offset], uint(field.BitOffset))
			}
			continue
		}
		encoded, err := Encode(v, field.Type)
		if err != nil {
			return nil, fmt.Errorf("encode struct %q field %q: %w", t.Name, field.Name, err)
		}
		end := int(field.Offset) + len(encoded)
		if end > len(buf) {
			end = len(buf)
			encoded = encoded[:end-int(field.Offset)]
		}
		copy(buf[field.Offset:end], encoded)
	}
	return buf, nil
}

func decodeAddress(data []byte) interface{} {
	switch len(data) {
	case 4:
		return binary.LittleEndian.Uint32(data)
	case 8:
		return binary.LittleEndian.Uint64(data)
	default:
		return data
	}
}

func encodeAddress(value interface{}, t TypeInfo) ([]byte, error) {
	buf := make([]byte, t.Size)
	switch v := value.(type) {
	case uint32:
		if len(buf) >= 4 {
			binary.LittleEndian.PutUint32(buf, v)
		}
	case uint64:
		if len(buf) >= 8 {
			binary.LittleEndian.PutUint64(buf, v)
		}
	default:
		return nil, fmt.Errorf("encode pointer %q: unsupported value type %T", t.Name, value)
	}
	return buf, nil
}

func decodePrimitive(data []byte, t TypeInfo) (interface{}, error) {
	switch t.BaseType {
	case DataTypeBool, DataTypeBit:
		return data[0] != 0, nil
	case DataTypeInt8:
		return int8(data[0]), nil
	case DataTypeUInt8:
		return data[0], nil
	case DataTypeInt16:
		return int16(binary.LittleEndian.Uint16(data)), nil
	case DataTypeUInt16:
		return binary.LittleEndian.Uint16(data), nil
	case DataTypeInt32:
		return int32(binary.LittleEndian.Uint32(data)), nil
	case DataTypeUInt32:
		return binary.LittleEndian.Uint32(data), nil
	case DataTypeInt64:
		return int64(binary.LittleEndian.Uint64(data)), nil
	case DataTypeUInt64:
		return binary.LittleEndian.Uint64(data), nil
	case DataTypeReal32:
		return math.Float32frombits(binary.LittleEndian.Uint32(data)), nil
	case DataTypeReal64:
		return math.Float64frombits(binary.LittleEndian.Uint64(data)), nil
	case DataTypeString:
		return ads.DecodeCP1252(trimNullBytes(data)), nil
	case DataTypeWString:
		return ads.DecodeUTF16LE(data), nil
	default:
		return fmt.Sprintf("0x%x", data), nil
	}
}

func encodePrimitive(value interface{}, t TypeInfo) ([]byte, error) {
	buf := make([]byte, t.Size)
	switch v := value.(type) {
	case bool:
		if v {
			buf[0] = 1
		}
	case int8:
		buf[0] = byte(v)
	case uint8:
		buf[0] = v
	case int16:
		binary.LittleEndian.PutUint16(buf, uint16(v))
	case uint16:
		binary.LittleEndian.PutUint16(buf, v)
	case int32:
		binary.LittleEndian.PutUint32(buf, uint32(v))
	case uint32:
		binary.LittleEndian.PutUint32(buf, v)
	case int64:
		binary.LittleEndian.PutUint64(buf, uint64(v))
	case uint64:
		binary.LittleEndian.PutUint64(buf, v)
	case float32:
		binary.LittleEndian.PutUint32(buf, math.Float32bits(v))
	case float64:
		binary.LittleEndian.PutUint64(buf, math.Float64bits(v))
	case string:
		if t.BaseType == DataTypeWString {
			copy(buf, ads.EncodeUTF16LE(v))
		} else {
			copy(buf, ads.EncodeCP1252(v))
		}
	default:
		return nil, fmt.Errorf("encode %q: unsupported value type %T", t.Name, value)
	}
	return buf, nil
}

func trimNullBytes(data []byte) []byte {
	for i, b := range data {
		if b == 0 {
			return data[:i]
		}
	}
	return data
}

func bytesEqual(a, b []byte) bool {
	if len(a) != len(b) {
		if len(a) > len(b) {
			a = a[:len(b)]
		} else {
			b = b[:len(a)]
		}
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func rawIntValue(data []byte) interface{} {
	switch len(data) {
	case 1:
		return data[0]
	case 2:
		return binary.LittleEndian.Uint16(data)
	case 4:
		return binary.LittleEndian.Uint32(data)
	case 8:
		return binary.LittleEndian.Uint64(data)
	default:
		return data
	}
}

func putRawInt(buf []byte, v int64) {
	switch len(buf) {
	case 1:
		buf[0] = byte(v)
	case 2:
		binary.LittleEndian.PutUint16(buf, uint16(v))
	case 4:
		binary.LittleEndian.PutUint32(buf, uint32(v))
	case 8:
		binary.LittleEndian.PutUint64(buf, uint64(v))
	}
}
