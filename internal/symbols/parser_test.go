package symbols

import (
	"bytes"
	"encoding/binary"
	"testing"
)

// buildRpcMethodBytes builds one method entry (including its own entryLength
// prefix) for the MethodInfos block, matching parseRpcMethods' layout.
func buildRpcMethodBytes(vtableIndex, returnSize uint32, returnType, name string, params []RpcMethodParam) []byte {
	var body bytes.Buffer

	u32 := func(v uint32) { binary.Write(&body, binary.LittleEndian, v) }
	u16 := func(v uint16) { binary.Write(&body, binary.LittleEndian, v) }
	str := func(s string) { body.WriteString(s); body.WriteByte(0) }

	u32(vtableIndex)
	u32(returnSize)
	u16(uint16(len(returnType)))
	u16(uint16(len(name)))
	u16(uint16(len(params)))
	str(returnType)
	str(name)

	for _, p := range params {
		u32(p.Size)
		u32(p.Flags)
		u16(uint16(len(p.TypeName)))
		u16(uint16(len(p.Name)))
		str(p.TypeName)
		str(p.Name)
	}

	var full bytes.Buffer
	binary.Write(&full, binary.LittleEndian, uint32(body.Len()+4))
	full.Write(body.Bytes())
	return full.Bytes()
}

// buildDataTypeEntry builds one top-level AdsDataType entry with an empty
// name (the root-of-named-type convention) and an optional MethodInfos
// block appended after the (empty) sub-item/enum/attribute sections.
func buildDataTypeEntry(typeName string, flags uint32, methods [][]byte) []byte {
	var body bytes.Buffer
	u32 := func(v uint32) { binary.Write(&body, binary.LittleEndian, v) }
	u16 := func(v uint16) { binary.Write(&body, binary.LittleEndian, v) }
	str := func(s string) { body.WriteString(s); body.WriteByte(0) }

	u32(0)                     // version
	u32(0)                     // hashValue
	u32(0)                     // typeHashValue
	u32(0)                     // size
	u32(0)                     // offset
	u32(uint32(DataTypeBigType)) // dataType
	u32(flags)                 // flags
	u16(0)                     // nameLength (root entry: empty name)
	u16(uint16(len(typeName))) // typeLength
	u16(0)                     // commentLength
	u16(0)                     // arrayDimCount
	u16(0)                     // subItemCount

	str("")       // name
	str(typeName) // type
	str("")       // comment

	if flags&DataTypeFlagMethodInfos != 0 {
		u16(uint16(len(methods)))
		for _, m := range methods {
			body.Write(m)
		}
	}

	var full bytes.Buffer
	binary.Write(&full, binary.LittleEndian, uint32(body.Len()+4))
	full.Write(body.Bytes())
	return full.Bytes()
}

func TestParseDataTypeTableWithRpcMethods(t *testing.T) {
	methodBytes := buildRpcMethodBytes(3, 1, "BOOL", "Calculator", []RpcMethodParam{
		{Name: "Value1", TypeName: "REAL", Size: 4, Flags: RpcParamFlagIn},
		{Name: "Sum", TypeName: "REAL", Size: 4, Flags: RpcParamFlagOut},
	})

	entry := buildDataTypeEntry("FB_Calc", DataTypeFlagMethodInfos, [][]byte{methodBytes})

	types, err := ParseDataTypeTable(entry)
	if err != nil {
		t.Fatalf("ParseDataTypeTable: %v", err)
	}
	if len(types) != 1 {
		t.Fatalf("got %d types, want 1", len(types))
	}

	fb := types[0]
	if fb.Name != "FB_Calc" {
		t.Errorf("Name = %q, want %q", fb.Name, "FB_Calc")
	}
	if len(fb.RpcMethods) != 1 {
		t.Fatalf("got %d rpc methods, want 1", len(fb.RpcMethods))
	}

	method, ok := fb.FindRpcMethod("calculator")
	if !ok {
		t.Fatal("FindRpcMethod(calculator) not found")
	}
	if method.VTableIndex != 3 {
		t.Errorf("VTableIndex = %d, want 3", method.VTableIndex)
	}
	if method.ReturnTypeName != "BOOL" || method.ReturnSize != 1 {
		t.Errorf("return = (%q, %d), want (BOOL, 1)", method.ReturnTypeName, method.ReturnSize)
	}
	if len(method.Parameters) != 2 {
		t.Fatalf("got %d params, want 2", len(method.Parameters))
	}
	if !method.Parameters[0].In() || method.Parameters[0].Out() {
		t.Errorf("Value1 flags = %d, want In only", method.Parameters[0].Flags)
	}
	if !method.Parameters[1].Out() || method.Parameters[1].In() {
		t.Errorf("Sum flags = %d, want Out only", method.Parameters[1].Flags)
	}
}
