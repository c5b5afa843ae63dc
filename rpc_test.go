package adsgo

import (
	"bytes"
	"encoding/binary"
	"math"
	"testing"

	"github.com/larskjeldsen/adsgo/internal/symbols"
)

func testCalculatorMethod() symbols.RpcMethod {
	return symbols.RpcMethod{
		Name:           "Calculator",
		VTableIndex:    3,
		ReturnTypeName: "BOOL",
		ReturnSize:     1,
		Parameters: []symbols.RpcMethodParam{
			{Name: "Value1", TypeName: "REAL", Size: 4, Flags: symbols.RpcParamFlagIn},
			{Name: "Value2", TypeName: "DINT", Size: 4, Flags: symbols.RpcParamFlagIn},
			{Name: "Sum", TypeName: "REAL", Size: 4, Flags: symbols.RpcParamFlagOut},
			{Name: "Product", TypeName: "REAL", Size: 4, Flags: symbols.RpcParamFlagOut},
			{Name: "Division", TypeName: "REAL", Size: 4, Flags: symbols.RpcParamFlagOut},
		},
	}
}

func TestEncodeRpcCallPayload(t *testing.T) {
	method := testCalculatorMethod()
	inputs := map[string]interface{}{
		"Value1": float32(2.5),
		"Value2": int32(4),
	}

	payload, err := encodeRpcCallPayload(method, inputs)
	if err != nil {
		t.Fatalf("encodeRpcCallPayload: %v", err)
	}

	wantLen := 4 + 4 + 4 // vtable index + Value1 + Value2
	if len(payload) != wantLen {
		t.Fatalf("payload length = %d, want %d", len(payload), wantLen)
	}

	if gotVTable := binary.LittleEndian.Uint32(payload[0:4]); gotVTable != method.VTableIndex {
		t.Errorf("vtable index = %d, want %d", gotVTable, method.VTableIndex)
	}

	gotValue1 := math.Float32frombits(binary.LittleEndian.Uint32(payload[4:8]))
	if gotValue1 != 2.5 {
		t.Errorf("Value1 = %v, want 2.5", gotValue1)
	}

	gotValue2 := int32(binary.LittleEndian.Uint32(payload[8:12]))
	if gotValue2 != 4 {
		t.Errorf("Value2 = %v, want 4", gotValue2)
	}
}

func TestEncodeRpcCallPayloadMissingInput(t *testing.T) {
	method := testCalculatorMethod()
	payload, err := encodeRpcCallPayload(method, map[string]interface{}{"Value1": float32(1)})
	if err != nil {
		t.Fatalf("encodeRpcCallPayload: %v", err)
	}
	// Value2 omitted entirely -> zero-filled, not an error.
	if len(payload) != 12 {
		t.Fatalf("payload length = %d, want 12", len(payload))
	}
	if got := binary.LittleEndian.Uint32(payload[8:12]); got != 0 {
		t.Errorf("Value2 = %d, want 0", got)
	}
}

func TestDecodeRpcCallResponse(t *testing.T) {
	method := testCalculatorMethod()

	var buf bytes.Buffer
	buf.WriteByte(1) // returnValue = true

	writeF32 := func(v float32) {
		b := make([]byte, 4)
		binary.LittleEndian.PutUint32(b, math.Float32bits(v))
		buf.Write(b)
	}
	writeF32(6.5)  // Sum = 2.5 + 4
	writeF32(10.0) // Product = 2.5 * 4
	writeF32(0.625) // Division = 2.5 / 4

	returnValue, outputs, err := decodeRpcCallResponse(method, buf.Bytes())
	if err != nil {
		t.Fatalf("decodeRpcCallResponse: %v", err)
	}

	if returnValue != true {
		t.Errorf("returnValue = %v, want true", returnValue)
	}
	if outputs["Sum"] != float32(6.5) {
		t.Errorf("Sum = %v, want 6.5", outputs["Sum"])
	}
	if outputs["Product"] != float32(10.0) {
		t.Errorf("Product = %v, want 10.0", outputs["Product"])
	}
	if outputs["Division"] != float32(0.625) {
		t.Errorf("Division = %v, want 0.625", outputs["Division"])
	}
}

func TestDecodeRpcCallResponseTruncated(t *testing.T) {
	method := testCalculatorMethod()
	if _, _, err := decodeRpcCallResponse(method, []byte{1}); err == nil {
		t.Error("expected error for truncated response, got nil")
	}
}

func TestFindRpcMethod(t *testing.T) {
	typeInfo := symbols.TypeInfo{RpcMethods: []symbols.RpcMethod{testCalculatorMethod()}}

	if _, ok := typeInfo.FindRpcMethod("calculator"); !ok {
		t.Error("FindRpcMethod should be case-insensitive")
	}
	if _, ok := typeInfo.FindRpcMethod("DoesNotExist"); ok {
		t.Error("FindRpcMethod should not find a nonexistent method")
	}
}
