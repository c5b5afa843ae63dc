package adsgo

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/larskjeldsen/adsgo/internal/symbols"
)

// Struct field access methods.

// ReadStructField reads a field from a struct by path (e.g., "MAIN.myStruct.field1").
// This reads the entire struct and extracts the field using whatever type
// information is available (registered type, or uploaded from the PLC).
func (c *Client) ReadStructField(ctx context.Context, structPath string, fieldName string) ([]byte, error) {
	if err := c.ensureSymbolsLoaded(ctx); err != nil {
		return nil, err
	}
	symbol, structTypeName, err := c.getAndValidateStructSymbol(structPath)
	if err != nil {
		return nil, err
	}
	raw, err := c.ReadSymbol(ctx, structPath)
	if err != nil {
		return nil, fmt.Errorf("read struct %q: %w", structPath, err)
	}
	typeInfo, hasTypeInfo := c.resolveTypeInfo(ctx, structTypeName)
	if !hasTypeInfo {
		typeInfo = symbol.Type
	}
	for _, f := range typeInfo.Fields {
		if strings.EqualFold(f.Name, fieldName) {
			end := int(f.Offset) + int(f.Type.Size)
			if end > len(raw) {
				return nil, fmt.Errorf("field %q extends beyond struct data", fieldName)
			}
			return raw[f.Offset:end], nil
		}
	}
	return nil, fmt.Errorf("field %q not found in %q", fieldName, structTypeName)
}

// WriteStructField writes a field to a struct by path: it reads the struct,
// overwrites the field's bytes at the resolved offset, and writes the whole
// struct back.
func (c *Client) WriteStructField(ctx context.Context, structPath string, fieldName string, fieldData []byte) error {
	symbol, structTypeName, err := c.getAndValidateStructSymbol(structPath)
	if err != nil {
		return err
	}
	typeInfo, hasTypeInfo := c.resolveTypeInfo(ctx, structTypeName)
	if !hasTypeInfo {
		typeInfo = symbol.Type
	}
	if len(typeInfo.Fields) == 0 {
		return fmt.Errorf("write struct field %q: no detailed type information for %q", fieldName, structTypeName)
	}

	structData, err := c.ReadSymbol(ctx, structPath)
	if err != nil {
		return fmt.Errorf("read struct %q: %w", structPath, err)
	}

	for _, f := range typeInfo.Fields {
		if !strings.EqualFold(f.Name, fieldName) {
			continue
		}
		end := int(f.Offset) + int(f.Type.Size)
		if end > len(structData) {
			return fmt.Errorf("field %q extends beyond struct data", fieldName)
		}
		if len(fieldData) != int(f.Type.Size) {
			return fmt.Errorf("field %q: expected %d bytes, got %d", fieldName, f.Type.Size, len(fieldData))
		}
		copy(structData[f.Offset:end], fieldData)
		return c.WriteSymbol(ctx, structPath, structData)
	}
	return fmt.Errorf("field %q not found in %q", fieldName, structTypeName)
}

// ReadStructFieldInt16 reads an INT16 field from a struct, addressed by direct symbol path.
func (c *Client) ReadStructFieldInt16(ctx context.Context, fieldPath string) (int16, error) {
	return c.ReadInt16(ctx, fieldPath)
}

// ReadStructFieldUint16 reads a UINT16 field from a struct.
func (c *Client) ReadStructFieldUint16(ctx context.Context, fieldPath string) (uint16, error) {
	return c.ReadUint16(ctx, fieldPath)
}

// ReadStructFieldInt32 reads an INT32 field from a struct.
func (c *Client) ReadStructFieldInt32(ctx context.Context, fieldPath string) (int32, error) {
	return c.ReadInt32(ctx, fieldPath)
}

// ReadStructFieldUint32 reads a UINT32 field from a struct.
func (c *Client) ReadStructFieldUint32(ctx context.Context, fieldPath string) (uint32, error) {
	return c.ReadUint32(ctx, fieldPath)
}

// ReadStructFieldBool reads a BOOL field from a struct.
func (c *Client) ReadStructFieldBool(ctx context.Context, fieldPath string) (bool, error) {
	return c.ReadBool(ctx, fieldPath)
}

// WriteStructFieldInt16 writes an INT16 field to a struct.
func (c *Client) WriteStructFieldInt16(ctx context.Context, fieldPath string, value int16) error {
	return c.WriteInt16(ctx, fieldPath, value)
}

// WriteStructFieldUint16 writes a UINT16 field to a struct.
func (c *Client) WriteStructFieldUint16(ctx context.Context, fieldPath string, value uint16) error {
	return c.WriteUint16(ctx, fieldPath, value)
}

// WriteStructFieldInt32 writes an INT32 field to a struct.
func (c *Client) WriteStructFieldInt32(ctx context.Context, fieldPath string, value int32) error {
	return c.WriteInt32(ctx, fieldPath, value)
}

// WriteStructFieldUint32 writes a UINT32 field to a struct.
func (c *Client) WriteStructFieldUint32(ctx context.Context, fieldPath string, value uint32) error {
	return c.WriteUint32(ctx, fieldPath, value)
}

// WriteStructFieldBool writes a BOOL field to a struct.
func (c *Client) WriteStructFieldBool(ctx context.Context, fieldPath string, value bool) error {
	return c.WriteBool(ctx, fieldPath, value)
}

// RegisterType registers a custom type definition for automatic struct parsing.
// This lets ReadStructAsMap parse structs the caller already knows the shape
// of, without waiting on a PLC data-type upload.
func (c *Client) RegisterType(typeInfo symbols.TypeInfo) {
	c.typeCatalogMu.Lock()
	defer c.typeCatalogMu.Unlock()
	c.typeCatalog.Register(typeInfo.Name, typeInfo)
}

// GetRegisteredType retrieves a registered type definition.
func (c *Client) GetRegisteredType(typeName string) (symbols.TypeInfo, bool) {
	c.typeCatalogMu.RLock()
	defer c.typeCatalogMu.RUnlock()
	return c.typeCatalog.Get(typeName)
}

// ListRegisteredTypes returns all known type names: both caller-registered
// and PLC-uploaded.
func (c *Client) ListRegisteredTypes() []string {
	c.typeCatalogMu.RLock()
	defer c.typeCatalogMu.RUnlock()
	return c.typeCatalog.List()
}

// fetchTypeInfoFromPLC retrieves type information for a single named type,
// uploading the full data-type table on first use and caching it in the
// type catalog for subsequent lookups.
func (c *Client) fetchTypeInfoFromPLC(ctx context.Context, typeName string) (symbols.TypeInfo, error) {
	if !c.disableCaching {
		c.typeCatalogMu.RLock()
		info, ok := c.typeCatalog.Get(typeName)
		c.typeCatalogMu.RUnlock()
		if ok {
			return info, nil
		}
	}

	data, err := c.UploadDataTypeTable(ctx)
	if err != nil {
		return symbols.TypeInfo{}, fmt.Errorf("upload data type table: %w", err)
	}

	c.typeCatalogMu.Lock()
	err = c.typeCatalog.LoadDataTypeTable(data)
	info, ok := c.typeCatalog.Get(typeName)
	c.typeCatalogMu.Unlock()
	if err != nil {
		return symbols.TypeInfo{}, fmt.Errorf("parse data type table: %w", err)
	}
	if !ok {
		return symbols.TypeInfo{}, fmt.Errorf("type %q not found in PLC data type table", typeName)
	}
	return info, nil
}

// ReadStructAsMap reads a struct symbol and returns its fields as a map.
// The map keys are field names; values are interface{} holding the parsed
// field value. If no detailed type information is available, the map
// carries "_raw"/"_size"/"_type" instead.
func (c *Client) ReadStructAsMap(ctx context.Context, symbolName string) (map[string]interface{}, error) {
	if err := c.ensureSymbolsLoaded(ctx); err != nil {
		return nil, err
	}

	symbol, structTypeName, err := c.getAndValidateStructSymbol(symbolName)
	if err != nil {
		return nil, err
	}

	structData, err := c.ReadSymbol(ctx, symbolName)
	if err != nil {
		return nil, fmt.Errorf("read struct %q: %w", symbolName, err)
	}

	typeInfo, hasTypeInfo := c.resolveTypeInfo(ctx, structTypeName)

	return parseStructData(structData, typeInfo, hasTypeInfo, symbol), nil
}

var arrayIndexPattern = regexp.MustCompile(`^(.+)\[(\d+)\]$`)

// parseArrayAccess splits a symbol path like "MAIN.arr[3]" into its base
// name and element index. A path with no bracket suffix is returned
// unchanged with index -1.
func parseArrayAccess(symbolName string) (baseName string, index int, err error) {
	m := arrayIndexPattern.FindStringSubmatch(symbolName)
	if m == nil {
		return symbolName, -1, nil
	}
	idx, convErr := strconv.Atoi(m[2])
	if convErr != nil {
		return "", 0, fmt.Errorf("parse array index in %q: %w", symbolName, convErr)
	}
	return m[1], idx, nil
}

// extractArrayElementType returns the element type name from a synthesized
// "ARRAY [l..u] OF <Type>" type name, as produced by the symbol table for
// array-typed symbols.
func extractArrayElementType(typeName string) (elementType string, isArray bool) {
	const marker = " OF "
	upper := strings.ToUpper(typeName)
	if !strings.HasPrefix(upper, "ARRAY ") {
		return "", false
	}
	idx := strings.Index(upper, marker)
	if idx < 0 {
		return "", false
	}
	return strings.TrimSpace(typeName[idx+len(marker):]), true
}

// getAndValidateStructSymbol gets the symbol and validates it's a struct
// (or array-of-struct) type.
func (c *Client) getAndValidateStructSymbol(symbolName string) (*symbols.Symbol, string, error) {
	baseName, _, err := parseArrayAccess(symbolName)
	if err != nil {
		return nil, "", err
	}

	symbol, err := c.symbolTable.Get(baseName)
	if err != nil {
		return nil, "", fmt.Errorf("get symbol %q: %w", baseName, err)
	}

	structTypeName := symbol.Type.Name
	if elementType, isArray := extractArrayElementType(symbol.Type.Name); isArray {
		structTypeName = elementType
	}

	if !symbol.Type.IsStruct && !strings.Contains(strings.ToUpper(symbol.Type.Name), "ARRAY") {
		return nil, "", fmt.Errorf("%q is not a struct type", symbolName)
	}

	return symbol, structTypeName, nil
}

// resolveTypeInfo gets type info from the catalog or fetches/uploads it from the PLC.
func (c *Client) resolveTypeInfo(ctx context.Context, structTypeName string) (symbols.TypeInfo, bool) {
	c.typeCatalogMu.RLock()
	typeInfo, hasTypeInfo := c.typeCatalog.Get(structTypeName)
	c.typeCatalogMu.RUnlock()

	if !hasTypeInfo || len(typeInfo.Fields) == 0 {
		if fetched, err := c.fetchTypeInfoFromPLC(ctx, structTypeName); err == nil {
			typeInfo = fetched
			hasTypeInfo = true
		}
	}

	return typeInfo, hasTypeInfo
}

// parseStructData parses struct data using available type information.
func parseStructData(structData []byte, typeInfo symbols.TypeInfo, hasTypeInfo bool, symbol *symbols.Symbol) map[string]interface{} {
	result := make(map[string]interface{})

	if hasTypeInfo && len(typeInfo.Fields) > 0 {
		parseFieldsFromTypeInfo(result, structData, typeInfo.Fields)
		return result
	}

	if len(symbol.Type.Fields) > 0 {
		parseFieldsFromTypeInfo(result, structData, symbol.Type.Fields)
		return result
	}

	addRawStructInfo(result, structData, symbol.Type.Name)
	return result
}

// parseFieldsFromTypeInfo parses fields using type information.
func parseFieldsFromTypeInfo(result map[string]interface{}, structData []byte, fields []symbols.FieldInfo) {
	for _, field := range fields {
		if int(field.Offset)+int(field.Type.Size) > len(structData) {
			continue
		}
		fieldData := structData[field.Offset : field.Offset+field.Type.Size]
		result[field.Name] = parseFieldValue(fieldData, field.Type)
	}
}

// addRawStructInfo adds raw struct information when type info is not available.
func addRawStructInfo(result map[string]interface{}, structData []byte, typeName string) {
	result["_raw"] = structData
	result["_size"] = len(structData)
	result["_type"] = typeName
	result["_note"] = "type information not available from PLC; data type upload may not be supported by this TwinCAT version"
}

// parseFieldValue parses a field value based on its type.
func parseFieldValue(data []byte, typeInfo symbols.TypeInfo) interface{} {
	if len(data) == 0 {
		return nil
	}

	if typeInfo.IsArray {
		return fmt.Sprintf("<array %d bytes>", len(data))
	}

	if typeInfo.IsStruct {
		return parseNestedStruct(data, typeInfo)
	}

	if value := parseSimpleTypeByID(data, typeInfo.BaseType); value != nil {
		return value
	}

	return fmt.Sprintf("0x%x", data)
}

// parseNestedStruct handles parsing of nested struct types.
func parseNestedStruct(data []byte, typeInfo symbols.TypeInfo) interface{} {
	if len(typeInfo.Fields) == 0 {
		return fmt.Sprintf("<struct %s, %d bytes>", typeInfo.Name, len(data))
	}

	nestedResult := make(map[string]interface{})
	for _, field := range typeInfo.Fields {
		if int(field.Offset)+int(field.Type.Size) > len(data) {
			continue
		}
		fieldData := data[field.Offset : field.Offset+field.Type.Size]
		nestedResult[field.Name] = parseFieldValue(fieldData, field.Type)
	}
	return nestedResult
}
