// Package symbols implements symbol table and data-type table parsing and
// caching for TwinCAT 3.
package symbols

import (
	"encoding/binary"
	"fmt"
	"strings"
)

// DataType represents TwinCAT data types.
type DataType uint32

const (
	DataTypeVoid        DataType = 0
	DataTypeInt8        DataType = 16
	DataTypeUInt8       DataType = 17
	DataTypeInt16       DataType = 2
	DataTypeUInt16      DataType = 18
	DataTypeInt32       DataType = 3
	DataTypeUInt32      DataType = 19
	DataTypeInt64       DataType = 20
	DataTypeUInt64      DataType = 21
	DataTypeReal32      DataType = 4
	DataTypeReal64      DataType = 5
	DataTypeBool        DataType = 33
	DataTypeString      DataType = 30
	DataTypeWString     DataType = 31
	DataTypeReal80      DataType = 32
	DataTypeBit         DataType = 1
	DataTypeTime        DataType = 36
	DataTypeTimeOfDay   DataType = 37
	DataTypeDate        DataType = 38
	DataTypeDateAndTime DataType = 39
	DataTypeBigType     DataType = 65 // struct/array/enum/union, resolved via sub-items
)

// Data-type entry flags, mirrored from the AdsDataType wire structure.
const (
	DataTypeFlagDataType    uint32 = 0x00000001 // entry describes a named data type, not a symbol
	DataTypeFlagDataItem    uint32 = 0x00000002
	DataTypeFlagReferenceTo uint32 = 0x00000004
	DataTypeFlagMethodDeref uint32 = 0x00000008
	DataTypeFlagOversample  uint32 = 0x00000010
	DataTypeFlagBitValue    uint32 = 0x00000020
	DataTypeFlagPropItem    uint32 = 0x00000040
	DataTypeFlagTypeGuid    uint32 = 0x00000080
	DataTypeFlagPersistent  uint32 = 0x00000100
	DataTypeFlagCopyMask    uint32 = 0x00000200
	DataTypeFlagTComInterfacePtr uint32 = 0x00000400
	DataTypeFlagMethodInfos uint32 = 0x00000800
	DataTypeFlagAttributes  uint32 = 0x00001000
	DataTypeFlagEnumInfos   uint32 = 0x00002000
	DataTypeFlagAlignment   uint32 = 0x00010000
	DataTypeFlagStatic      uint32 = 0x10000000
	DataTypeFlagIgnorePtr   uint32 = 0x20000000
)

// ArrayDimension is a single array-info entry: lower bound plus element
// count, matching how TwinCAT describes ARRAY types on the wire (no upper
// bound, just a count from the lower bound).
type ArrayDimension struct {
	LowerBound int32
	ElementCount uint32
}

// EnumValue is one named constant of an ENUM data type.
type EnumValue struct {
	Name  string
	Value []byte // raw underlying-type bytes; width is TypeInfo.Size
}

// RPC method parameter directions, mirrored from the PLC's VAR_INPUT /
// VAR_OUTPUT / VAR_IN_OUT method declaration.
const (
	RpcParamFlagIn    uint32 = 0x0001
	RpcParamFlagOut   uint32 = 0x0002
	RpcParamFlagInOut uint32 = RpcParamFlagIn | RpcParamFlagOut
)

// RpcMethodParam is one parameter of an RPC-callable method.
type RpcMethodParam struct {
	Name     string
	TypeName string
	Size     uint32
	Flags    uint32
}

// In reports whether the parameter carries an input value.
func (p RpcMethodParam) In() bool { return p.Flags&RpcParamFlagIn != 0 }

// Out reports whether the parameter's value is written back after the call.
func (p RpcMethodParam) Out() bool { return p.Flags&RpcParamFlagOut != 0 }

// RpcMethod describes one method of a function-block data type, callable
// over ADS via a ReadWrite against the instance's variable handle.
type RpcMethod struct {
	Name           string
	VTableIndex    uint32 // method call identifier, prefixed to the ReadWrite write payload
	ReturnTypeName string
	ReturnSize     uint32
	Parameters     []RpcMethodParam
}

// Attribute is a free-form name/value pair TwinCAT attaches to a data type
// (e.g. pragma-derived attributes like "TcDisplayMode").
type Attribute struct {
	Name  string
	Value string
}

// TypeInfo represents parsed type information, either a flat primitive or a
// full recursive node from the data-type table (struct, array, union,
// enum, pointer/reference).
type TypeInfo struct {
	Name      string   // type name as declared in PLC source
	BaseType  DataType // base data type ID
	Size      uint32   // size in bytes
	Offset    uint32   // offset within the containing type, for sub-items
	Flags     uint32
	Comment   string

	IsArray     bool
	ArrayDims   []ArrayDimension
	IsStruct    bool
	IsUnion     bool
	IsEnum      bool
	IsPointer   bool
	IsReference bool

	IsBitValue bool  // sub-item is a bit-packed BOOL within its container byte
	BitOffset  uint8 // bit position within the byte at Offset, valid when IsBitValue

	SubItems   []TypeInfo // struct/union members, or array element type (len 1)
	Fields     []FieldInfo // same members as SubItems, addressed by name for struct decoding
	EnumValues []EnumValue
	Attributes []Attribute
	TypeGUID   [16]byte
	RpcMethods []RpcMethod // function-block methods, present when DataTypeFlagMethodInfos is set
}

// FindRpcMethod looks up a method by name, case-insensitively, as TwinCAT
// symbol names are.
func (t TypeInfo) FindRpcMethod(name string) (RpcMethod, bool) {
	for _, m := range t.RpcMethods {
		if strings.EqualFold(m.Name, name) {
			return m, true
		}
	}
	return RpcMethod{}, false
}

// FieldInfo represents a struct field addressed by name, offset and type.
// It duplicates the information already in TypeInfo.SubItems in a shape
// that is more convenient for name-based field lookup.
type FieldInfo struct {
	Name      string
	Offset    uint32
	Type      TypeInfo
	BitOffset uint8
	BitSize   uint8
}

// fieldsFromSubItems builds the Fields convenience slice from SubItems.
func fieldsFromSubItems(subItems []TypeInfo) []FieldInfo {
	if len(subItems) == 0 {
		return nil
	}
	fields := make([]FieldInfo, len(subItems))
	for i, sub := range subItems {
		field := FieldInfo{Name: sub.Name, Offset: sub.Offset, Type: sub}
		if sub.IsBitValue {
			field.BitOffset = sub.BitOffset
			field.BitSize = 1
		}
		fields[i] = field
	}
	return fields
}

// Symbol represents a parsed PLC symbol.
type Symbol struct {
	Name        string
	Type        TypeInfo
	IndexGroup  uint32
	IndexOffset uint32
	Size        uint32
	Flags       uint32
	Comment     string
}

// ParseSymbolTable parses raw symbol upload data (IndexGroupSymbolUpload).
func ParseSymbolTable(data []byte) ([]Symbol, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("symbol data is empty")
	}

	var symbols []Symbol
	offset := 0

	for offset < len(data) {
		if offset+4 > len(data) {
			break
		}

		entryLength := binary.LittleEndian.Uint32(data[offset : offset+4])
		if entryLength == 0 {
			break
		}

		if offset+int(entryLength) > len(data) {
			return nil, fmt.Errorf("invalid entry length %d at offset %d", entryLength, offset)
		}

		entryData := data[offset : offset+int(entryLength)]
		symbol, err := parseSymbolEntry(entryData)
		if err != nil {
			return nil, fmt.Errorf("parse symbol at offset %d: %w", offset, err)
		}

		symbols = append(symbols, symbol)
		offset += int(entryLength)
	}

	return symbols, nil
}

func parseSymbolEntry(data []byte) (Symbol, error) {
	if len(data) < 30 {
		return Symbol{}, fmt.Errorf("symbol entry too short: %d bytes", len(data))
	}

	symbol := Symbol{
		IndexGroup:  binary.LittleEndian.Uint32(data[4:8]),
		IndexOffset: binary.LittleEndian.Uint32(data[8:12]),
		Size:        binary.LittleEndian.Uint32(data[12:16]),
		Flags:       binary.LittleEndian.Uint32(data[20:24]),
	}

	dataTypeID := binary.LittleEndian.Uint32(data[16:20])
	nameLength := binary.LittleEndian.Uint16(data[24:26])
	typeLength := binary.LittleEndian.Uint16(data[26:28])
	commentLength := binary.LittleEndian.Uint16(data[28:30])

	stringOffset := 30
	if stringOffset+int(nameLength) > len(data) {
		return Symbol{}, fmt.Errorf("invalid name length")
	}
	symbol.Name = parseString(data[stringOffset : stringOffset+int(nameLength)+1])
	stringOffset += int(nameLength) + 1

	if stringOffset+int(typeLength) > len(data) {
		return Symbol{}, fmt.Errorf("invalid type length")
	}
	typeName := parseString(data[stringOffset : stringOffset+int(typeLength)+1])
	stringOffset += int(typeLength) + 1

	if stringOffset+int(commentLength) > len(data) {
		return Symbol{}, fmt.Errorf("invalid comment length")
	}
	symbol.Comment = parseString(data[stringOffset : stringOffset+int(commentLength)+1])

	symbol.Type = parseTypeInfo(typeName, DataType(dataTypeID), symbol.Size)

	return symbol, nil
}

func parseTypeInfo(typeName string, dataTypeID DataType, size uint32) TypeInfo {
	typeInfo := TypeInfo{
		Name:     typeName,
		BaseType: dataTypeID,
		Size:     size,
	}

	if strings.Contains(typeName, "ARRAY") {
		typeInfo.IsArray = true
		typeInfo.ArrayDims = parseArrayDimensions(typeName)
	}

	if dataTypeID == DataTypeBigType || !isSimpleType(dataTypeID) {
		typeInfo.IsStruct = true
	}

	return typeInfo
}

func parseArrayDimensions(typeName string) []ArrayDimension {
	var dims []ArrayDimension

	start := strings.Index(typeName, "[")
	end := strings.Index(typeName, "]")

	if start == -1 || end == -1 {
		return dims
	}

	rangeStr := typeName[start+1 : end]
	ranges := strings.Split(rangeStr, ",")

	for _, r := range ranges {
		parts := strings.Split(strings.TrimSpace(r), "..")
		if len(parts) == 2 {
			var low, high int32
			fmt.Sscanf(parts[0], "%d", &low)
			fmt.Sscanf(parts[1], "%d", &high)
			dims = append(dims, ArrayDimension{LowerBound: low, ElementCount: uint32(high-low) + 1})
		}
	}

	return dims
}

func parseString(data []byte) string {
	for i, b := range data {
		if b == 0 {
			return string(data[:i])
		}
	}
	return string(data)
}

func isSimpleType(dt DataType) bool {
	switch dt {
	case DataTypeInt8, DataTypeUInt8, DataTypeInt16, DataTypeUInt16,
		DataTypeInt32, DataTypeUInt32, DataTypeInt64, DataTypeUInt64,
		DataTypeReal32, DataTypeReal64, DataTypeBool, DataTypeBit:
		return true
	default:
		return false
	}
}

func (dt DataType) String() string {
	switch dt {
	case DataTypeInt8:
		return "SINT"
	case DataTypeUInt8:
		return "USINT"
	case DataTypeInt16:
		return "INT"
	case DataTypeUInt16:
		return "UINT"
	case DataTypeInt32:
		return "DINT"
	case DataTypeUInt32:
		return "UDINT"
	case DataTypeInt64:
		return "LINT"
	case DataTypeUInt64:
		return "ULINT"
	case DataTypeReal32:
		return "REAL"
	case DataTypeReal64:
		return "LREAL"
	case DataTypeBool:
		return "BOOL"
	case DataTypeString:
		return "STRING"
	default:
		return fmt.Sprintf("TYPE_%d", dt)
	}
}

// ParseDataTypeTable parses raw data-type upload data
// (IndexGroupSymbolDataTypeUpload) into a flat slice of top-level type
// nodes, each fully recursive over its own sub-items.
func ParseDataTypeTable(data []byte) ([]TypeInfo, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("data type data is empty")
	}

	var types []TypeInfo
	offset := 0

	for offset < len(data) {
		if offset+4 > len(data) {
			break
		}
		entryLength := binary.LittleEndian.Uint32(data[offset : offset+4])
		if entryLength == 0 {
			break
		}
		if offset+int(entryLength) > len(data) {
			return nil, fmt.Errorf("invalid data type entry length %d at offset %d", entryLength, offset)
		}

		node, _, err := parseDataTypeEntry(data[offset : offset+int(entryLength)])
		if err != nil {
			return nil, fmt.Errorf("parse data type at offset %d: %w", offset, err)
		}
		types = append(types, node)
		offset += int(entryLength)
	}

	return types, nil
}

// parseDataTypeEntry parses one recursive AdsDataType node. It returns the
// node and the number of bytes consumed (== the entry's own EntryLength
// field, present for symmetry with recursive callers that pre-slice by it).
//
// Wire layout: u32 entryLength | u32 version | u32 hashValue | u32
// typeHashValue | u32 size | u32 offset | u32 dataType | u32 flags |
// u16 nameLength | u16 typeLength | u16 commentLength | u16 arrayDimCount |
// u16 subItemCount | [16]byte guid (if TypeGuid flag) | name (null-term) |
// type (null-term) | comment (null-term) | arrayDimCount * {i32 lowerBound,
// u32 elementCount} | subItemCount recursive entries | (if EnumInfos flag)
// u16 enumCount + enumCount * {name (null-term), Size raw bytes} | (if
// Attributes flag) u16 attribCount + attribCount * {u8 nameLen, u8
// valueLen, name, value}.
func parseDataTypeEntry(data []byte) (TypeInfo, int, error) {
	const fixedHeaderLen = 36
	if len(data) < fixedHeaderLen {
		return TypeInfo{}, 0, fmt.Errorf("data type entry too short: %d bytes", len(data))
	}

	size := binary.LittleEndian.Uint32(data[16:20])
	offsetField := binary.LittleEndian.Uint32(data[20:24])
	dataTypeID := binary.LittleEndian.Uint32(data[24:28])
	flags := binary.LittleEndian.Uint32(data[28:32])

	nameLength := binary.LittleEndian.Uint16(data[32:34])
	typeLength := binary.LittleEndian.Uint16(data[34:36])

	pos := fixedHeaderLen
	if pos+6 > len(data) {
		return TypeInfo{}, 0, fmt.Errorf("data type entry truncated before header tail")
	}
	commentLength := binary.LittleEndian.Uint16(data[pos : pos+2])
	arrayDimCount := binary.LittleEndian.Uint16(data[pos+2 : pos+4])
	subItemCount := binary.LittleEndian.Uint16(data[pos+4 : pos+6])
	pos += 6

	node := TypeInfo{
		BaseType: DataType(dataTypeID),
		Size:     size,
		Offset:   offsetField,
		Flags:    flags,
	}

	if flags&DataTypeFlagBitValue != 0 {
		node.IsBitValue = true
		node.Offset = offsetField / 8
		node.BitOffset = uint8(offsetField % 8)
	}

	if flags&DataTypeFlagTypeGuid != 0 {
		if pos+16 > len(data) {
			return TypeInfo{}, 0, fmt.Errorf("data type entry truncated reading GUID")
		}
		copy(node.TypeGUID[:], data[pos:pos+16])
		pos += 16
	}

	readStr := func(length uint16) (string, error) {
		if pos+int(length)+1 > len(data) {
			return "", fmt.Errorf("data type entry truncated reading string")
		}
		s := parseString(data[pos : pos+int(length)+1])
		pos += int(length) + 1
		return s, nil
	}

	var err error
	node.Name, err = readStr(nameLength)
	if err != nil {
		return TypeInfo{}, 0, err
	}
	typeName, err := readStr(typeLength)
	if err != nil {
		return TypeInfo{}, 0, err
	}
	node.Comment, err = readStr(commentLength)
	if err != nil {
		return TypeInfo{}, 0, err
	}

	if strings.Contains(typeName, "ARRAY") || arrayDimCount > 0 {
		node.IsArray = true
	}

	for i := uint16(0); i < arrayDimCount; i++ {
		if pos+8 > len(data) {
			return TypeInfo{}, 0, fmt.Errorf("data type entry truncated reading array dim %d", i)
		}
		lower := int32(binary.LittleEndian.Uint32(data[pos : pos+4]))
		count := binary.LittleEndian.Uint32(data[pos+4 : pos+8])
		node.ArrayDims = append(node.ArrayDims, ArrayDimension{LowerBound: lower, ElementCount: count})
		pos += 8
	}

	for i := uint16(0); i < subItemCount; i++ {
		if pos+4 > len(data) {
			return TypeInfo{}, 0, fmt.Errorf("data type entry truncated before sub-item %d length", i)
		}
		subLen := int(binary.LittleEndian.Uint32(data[pos : pos+4]))
		if pos+subLen > len(data) {
			return TypeInfo{}, 0, fmt.Errorf("data type entry truncated at sub-item %d", i)
		}
		sub, _, err := parseDataTypeEntry(data[pos : pos+subLen])
		if err != nil {
			return TypeInfo{}, 0, fmt.Errorf("sub-item %d: %w", i, err)
		}
		node.SubItems = append(node.SubItems, sub)
		pos += subLen
	}
	node.Fields = fieldsFromSubItems(node.SubItems)

	switch {
	case subItemCount > 0 && flags&DataTypeFlagEnumInfos == 0:
		node.IsStruct = isUnionByOverlap(node.SubItems)
		if node.IsStruct && isUnionLayout(node.SubItems) {
			node.IsUnion = true
			node.IsStruct = false
		}
	}

	if flags&DataTypeFlagEnumInfos != 0 {
		if pos+2 > len(data) {
			return TypeInfo{}, 0, fmt.Errorf("data type entry truncated before enum count")
		}
		node.IsEnum = true
		enumCount := binary.LittleEndian.Uint16(data[pos : pos+2])
		pos += 2
		for i := uint16(0); i < enumCount; i++ {
			nameEnd := pos
			for nameEnd < len(data) && data[nameEnd] != 0 {
				nameEnd++
			}
			if nameEnd >= len(data) {
				return TypeInfo{}, 0, fmt.Errorf("data type entry truncated reading enum name %d", i)
			}
			name := string(data[pos:nameEnd])
			pos = nameEnd + 1
			if pos+int(size) > len(data) {
				return TypeInfo{}, 0, fmt.Errorf("data type entry truncated reading enum value %d", i)
			}
			value := make([]byte, size)
			copy(value, data[pos:pos+int(size)])
			pos += int(size)
			node.EnumValues = append(node.EnumValues, EnumValue{Name: name, Value: value})
		}
	}

	if flags&DataTypeFlagAttributes != 0 && pos+2 <= len(data) {
		attribCount := binary.LittleEndian.Uint16(data[pos : pos+2])
		pos += 2
		for i := uint16(0); i < attribCount; i++ {
			if pos+2 > len(data) {
				break
			}
			nameLen := int(data[pos])
			valueLen := int(data[pos+1])
			pos += 2
			if pos+nameLen+valueLen > len(data) {
				break
			}
			node.Attributes = append(node.Attributes, Attribute{
				Name:  string(data[pos : pos+nameLen]),
				Value: string(data[pos+nameLen : pos+nameLen+valueLen]),
			})
			pos += nameLen + valueLen
		}
	}

	if flags&DataTypeFlagMethodInfos != 0 && pos+2 <= len(data) {
		methods, newPos, err := parseRpcMethods(data, pos)
		if err != nil {
			return TypeInfo{}, 0, err
		}
		node.RpcMethods = methods
		pos = newPos
	}

	if flags&DataTypeFlagReferenceTo != 0 {
		node.IsReference = true
	}
	if strings.HasPrefix(typeName, "POINTER TO") {
		node.IsPointer = true
	}

	node.Name = typeNameOrSelf(node.Name, typeName)

	return node, len(data), nil
}

// parseRpcMethods parses the method-info block appended to a data-type
// entry when DataTypeFlagMethodInfos is set.
//
// Layout: u16 methodCount | methodCount * { u32 entryLength | u32
// vtableIndex | u32 returnSize | u16 returnTypeLen | u16 nameLen | u16
// paramCount | returnType (null-term) | name (null-term) | paramCount *
// { u32 size | u32 flags | u16 typeLen | u16 nameLen | type (null-term) |
// name (null-term) } }.
func parseRpcMethods(data []byte, pos int) ([]RpcMethod, int, error) {
	methodCount := binary.LittleEndian.Uint16(data[pos : pos+2])
	pos += 2

	methods := make([]RpcMethod, 0, methodCount)
	for i := uint16(0); i < methodCount; i++ {
		if pos+4 > len(data) {
			return nil, 0, fmt.Errorf("rpc method %d: truncated before entry length", i)
		}
		entryLength := int(binary.LittleEndian.Uint32(data[pos : pos+4]))
		entryStart := pos
		pos += 4

		if pos+14 > len(data) {
			return nil, 0, fmt.Errorf("rpc method %d: truncated header", i)
		}
		method := RpcMethod{
			VTableIndex: binary.LittleEndian.Uint32(data[pos : pos+4]),
			ReturnSize:  binary.LittleEndian.Uint32(data[pos+4 : pos+8]),
		}
		returnTypeLen := binary.LittleEndian.Uint16(data[pos+8 : pos+10])
		nameLen := binary.LittleEndian.Uint16(data[pos+10 : pos+12])
		paramCount := binary.LittleEndian.Uint16(data[pos+12 : pos+14])
		pos += 14

		readStr := func(length uint16) (string, error) {
			if pos+int(length)+1 > len(data) {
				return "", fmt.Errorf("rpc method %d: truncated string", i)
			}
			s := parseString(data[pos : pos+int(length)+1])
			pos += int(length) + 1
			return s, nil
		}

		var err error
		method.ReturnTypeName, err = readStr(returnTypeLen)
		if err != nil {
			return nil, 0, err
		}
		method.Name, err = readStr(nameLen)
		if err != nil {
			return nil, 0, err
		}

		for p := uint16(0); p < paramCount; p++ {
			if pos+12 > len(data) {
				return nil, 0, fmt.Errorf("rpc method %d param %d: truncated header", i, p)
			}
			param := RpcMethodParam{
				Size:  binary.LittleEndian.Uint32(data[pos : pos+4]),
				Flags: binary.LittleEndian.Uint32(data[pos+4 : pos+8]),
			}
			typeLen := binary.LittleEndian.Uint16(data[pos+8 : pos+10])
			paramNameLen := binary.LittleEndian.Uint16(data[pos+10 : pos+12])
			pos += 12

			param.TypeName, err = readStr(typeLen)
			if err != nil {
				return nil, 0, err
			}
			param.Name, err = readStr(paramNameLen)
			if err != nil {
				return nil, 0, err
			}
			method.Parameters = append(method.Parameters, param)
		}

		if entryLength > 0 {
			pos = entryStart + entryLength
		}
		methods = append(methods, method)
	}

	return methods, pos, nil
}

// typeNameOrSelf keeps the declared member name but falls back to the type
// name for top-level (unnamed) entries.
func typeNameOrSelf(name, typeName string) string {
	if name != "" {
		return name
	}
	return typeName
}

// isUnionByOverlap only reports whether the node has more than one
// sub-item; sub-item offsets are not inspected here (isUnionLayout does
// that). A node with a single sub-item gets false.
func isUnionByOverlap(items []TypeInfo) bool {
	return len(items) > 1
}

func isUnionLayout(items []TypeInfo) bool {
	if len(items) < 2 {
		return false
	}
	for _, it := range items {
		if it.IsBitValue {
			return false // bit-packed flags legitimately share a byte offset
		}
		if it.Offset != 0 {
			return false
		}
	}
	return true
}
