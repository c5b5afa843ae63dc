package adsgo

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/larskjeldsen/adsgo/internal/symbols"
)

func TestParseSimpleTypeByName(t *testing.T) {
	u32 := make([]byte, 4)
	binary.LittleEndian.PutUint32(u32, 42)

	f32 := make([]byte, 4)
	binary.LittleEndian.PutUint32(f32, math.Float32bits(3.5))

	tests := []struct {
		name     string
		typeName string
		data     []byte
		want     interface{}
	}{
		{"bool true", "BOOL", []byte{1}, true},
		{"bool false", "BOOL", []byte{0}, false},
		{"dint", "DINT", u32, int32(42)},
		{"udint lowercase", "udint", u32, uint32(42)},
		{"real", "REAL", f32, float32(3.5)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseSimpleTypeByName(tt.data, tt.typeName)
			if err != nil {
				t.Fatalf("parseSimpleTypeByName(%q) error: %v", tt.typeName, err)
			}
			if got != tt.want {
				t.Errorf("parseSimpleTypeByName(%q) = %v, want %v", tt.typeName, got, tt.want)
			}
		})
	}
}

func TestParseSimpleTypeByNameInsufficientData(t *testing.T) {
	if _, err := parseSimpleTypeByName(nil, "BOOL"); err == nil {
		t.Error("expected error for insufficient data, got nil")
	}
}

func TestParseSimpleTypeByID(t *testing.T) {
	if got := parseSimpleTypeByID([]byte{1}, symbols.DataTypeBool); got != true {
		t.Errorf("parseSimpleTypeByID(bool) = %v, want true", got)
	}

	data := make([]byte, 8)
	binary.LittleEndian.PutUint64(data, 1234567890)
	if got := parseSimpleTypeByID(data, symbols.DataTypeUInt64); got != uint64(1234567890) {
		t.Errorf("parseSimpleTypeByID(uint64) = %v, want 1234567890", got)
	}

	strData := []byte("hello\x00garbage")
	if got := parseSimpleTypeByID(strData, symbols.DataTypeString); got != "hello" {
		t.Errorf("parseSimpleTypeByID(string) = %v, want %q", got, "hello")
	}
}

func TestIsSimpleTypeName(t *testing.T) {
	simple := []string{"BOOL", "dint", " LREAL ", "WSTRING", "LTIME", "DATE_AND_TIME"}
	for _, name := range simple {
		if !isSimpleTypeName(name) {
			t.Errorf("isSimpleTypeName(%q) = false, want true", name)
		}
	}

	if isSimpleTypeName("ST_CustomStruct") {
		t.Error("isSimpleTypeName(ST_CustomStruct) = true, want false")
	}
}

func TestDecodeWString(t *testing.T) {
	// "Hi" in UTF-16LE, null terminated.
	data := []byte{'H', 0, 'i', 0, 0, 0}
	if got := decodeWString(data); got != "Hi" {
		t.Errorf("decodeWString(...) = %q, want %q", got, "Hi")
	}
}
