package symbols

import (
	"encoding/binary"
	"math"
	"testing"
)

func TestDecodePrimitiveInt32(t *testing.T) {
	data := make([]byte, 4)
	binary.LittleEndian.PutUint32(data, 123456)
	ti := TypeInfo{BaseType: DataTypeInt32, Size: 4}

	got, err := Decode(data, ti)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got != int32(123456) {
		t.Errorf("Decode = %v, want 123456", got)
	}
}

func TestDecodeEncodeRoundTripFloat(t *testing.T) {
	ti := TypeInfo{BaseType: DataTypeReal32, Size: 4}

	encoded, err := Encode(float32(3.25), ti)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	decoded, err := Decode(encoded, ti)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if decoded != float32(3.25) {
		t.Errorf("round trip = %v, want 3.25", decoded)
	}
	if math.Float32bits(decoded.(float32)) != math.Float32bits(3.25) {
		t.Errorf("bit pattern mismatch")
	}
}

func TestDecodeArray(t *testing.T) {
	elemType := TypeInfo{BaseType: DataTypeInt16, Size: 2}
	arrType := TypeInfo{
		IsArray:   true,
		Size:      6,
		ArrayDims: []ArrayDimension{{LowerBound: 0, ElementCount: 3}},
		SubItems:  []TypeInfo{elemType},
	}

	data := make([]byte, 6)
	binary.LittleEndian.PutUint16(data[0:2], 10)
	binary.LittleEndian.PutUint16(data[2:4], 20)
	binary.LittleEndian.PutUint16(data[4:6], 30)

	got, err := Decode(data, arrType)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	elements, ok := got.([]interface{})
	if !ok || len(elements) != 3 {
		t.Fatalf("got %v, want 3 elements", got)
	}
	if elements[0] != int16(10) || elements[1] != int16(20) || elements[2] != int16(30) {
		t.Errorf("elements = %v", elements)
	}
}

func TestEncodeArrayRoundTrip(t *testing.T) {
	elemType := TypeInfo{BaseType: DataTypeInt16, Size: 2}
	arrType := TypeInfo{
		IsArray:   true,
		Size:      4,
		ArrayDims: []ArrayDimension{{LowerBound: 0, ElementCount: 2}},
		SubItems:  []TypeInfo{elemType},
	}

	encoded, err := Encode([]interface{}{int16(7), int16(8)}, arrType)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	decoded, err := Decode(encoded, arrType)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	elements := decoded.([]interface{})
	if elements[0] != int16(7) || elements[1] != int16(8) {
		t.Errorf("round trip = %v", elements)
	}
}

func TestDecodeStruct(t *testing.T) {
	fieldA := TypeInfo{Name: "A", BaseType: DataTypeInt32, Size: 4, Offset: 0}
	fieldB := TypeInfo{Name: "B", BaseType: DataTypeBool, Size: 1, Offset: 4}
	structType := TypeInfo{
		Name:     "ST_Sample",
		IsStruct: true,
		Size:     5,
		SubItems: []TypeInfo{fieldA, fieldB},
		Fields:   fieldsFromSubItems([]TypeInfo{fieldA, fieldB}),
	}

	data := make([]byte, 5)
	binary.LittleEndian.PutUint32(data[0:4], 99)
	data[4] = 1

	got, err := Decode(data, structType)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	fields, ok := got.(map[string]interface{})
	if !ok {
		t.Fatalf("got %T, want map", got)
	}
	if fields["A"] != int32(99) {
		t.Errorf("A = %v, want 99", fields["A"])
	}
	if fields["B"] != true {
		t.Errorf("B = %v, want true", fields["B"])
	}
}

func TestEncodeStructRoundTrip(t *testing.T) {
	fieldA := TypeInfo{Name: "A", BaseType: DataTypeInt32, Size: 4, Offset: 0}
	fieldB := TypeInfo{Name: "B", BaseType: DataTypeBool, Size: 1, Offset: 4}
	structType := TypeInfo{
		Name:     "ST_Sample",
		IsStruct: true,
		Size:     5,
		SubItems: []TypeInfo{fieldA, fieldB},
		Fields:   fieldsFromSubItems([]TypeInfo{fieldA, fieldB}),
	}

	encoded, err := Encode(map[string]interface{}{"A": int32(7), "B": true}, structType)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	decoded, err := Decode(encoded, structType)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	fields := decoded.(map[string]interface{})
	if fields["A"] != int32(7) || fields["B"] != true {
		t.Errorf("round trip = %v", fields)
	}
}

func TestEncodeStructAutoFillsMissingMembers(t *testing.T) {
	fieldA := TypeInfo{Name: "A", BaseType: DataTypeInt32, Size: 4, Offset: 0}
	structType := TypeInfo{
		Name:     "ST_Partial",
		IsStruct: true,
		Size:     4,
		SubItems: []TypeInfo{fieldA},
		Fields:   fieldsFromSubItems([]TypeInfo{fieldA}),
	}

	encoded, err := Encode(map[string]interface{}{}, structType)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if len(encoded) != 4 || encoded[0] != 0 {
		t.Errorf("encoded = %v, want zero-filled 4 bytes", encoded)
	}
}

func TestDecodeEnumMatchesMember(t *testing.T) {
	enumType := TypeInfo{
		IsEnum: true,
		Size:   2,
		EnumValues: []EnumValue{
			{Name: "Idle", Value: []byte{0, 0}},
			{Name: "Running", Value: []byte{100, 0}},
		},
	}

	got, err := Decode([]byte{100, 0}, enumType)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	result, ok := got.(EnumResult)
	if !ok || result.Name != "Running" {
		t.Errorf("got %+v, want Running", got)
	}
}

func TestDecodeUnionSharedOffset(t *testing.T) {
	memberA := TypeInfo{Name: "AsDint", BaseType: DataTypeInt32, Size: 4, Offset: 0}
	memberB := TypeInfo{Name: "AsReal", BaseType: DataTypeReal32, Size: 4, Offset: 0}
	unionType := TypeInfo{
		Name:     "U_Sample",
		IsUnion:  true,
		Size:     4,
		SubItems: []TypeInfo{memberA, memberB},
	}

	data := make([]byte, 4)
	binary.LittleEndian.PutUint32(data, 7)

	got, err := Decode(data, unionType)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	members := got.(map[string]interface{})
	if members["AsDint"] != int32(7) {
		t.Errorf("AsDint = %v, want 7", members["AsDint"])
	}
	if _, ok := members["AsReal"]; !ok {
		t.Error("expected AsReal member to be present")
	}
}

func TestDecodeZeroSize(t *testing.T) {
	got, err := Decode(nil, TypeInfo{Size: 0})
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got != nil {
		t.Errorf("got %v, want nil", got)
	}
}
