package ads

import (
	"bytes"
	"testing"
)

func TestSumReadRoundTrip(t *testing.T) {
	items := []SumReadItem{
		{IndexGroup: 0x4020, IndexOffset: 0, ReadLength: 2},
		{IndexGroup: 0x4020, IndexOffset: 4, ReadLength: 4},
	}

	req := EncodeSumReadRequest(items)
	if len(req) != 24 {
		t.Fatalf("EncodeSumReadRequest length = %d, want 24", len(req))
	}

	readLen := SumReadTotalReadLength(items)
	if readLen != 8+2+4 {
		t.Fatalf("SumReadTotalReadLength = %d, want %d", readLen, 8+2+4)
	}

	resp := make([]byte, 0, readLen)
	resp = append(resp, 0, 0, 0, 0) // item 0 error code = 0
	resp = append(resp, 7, 0, 0, 0) // item 1 error code = 7
	resp = append(resp, []byte{0xAA, 0xBB}...)
	resp = append(resp, []byte{1, 2, 3, 4}...)

	results, err := DecodeSumReadResponse(resp, items)
	if err != nil {
		t.Fatalf("DecodeSumReadResponse: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	if results[0].Result != 0 || !bytes.Equal(results[0].Data, []byte{0xAA, 0xBB}) {
		t.Errorf("results[0] = %+v", results[0])
	}
	if results[1].Result != 7 || !bytes.Equal(results[1].Data, []byte{1, 2, 3, 4}) {
		t.Errorf("results[1] = %+v", results[1])
	}
}

func TestSumReadResponseTruncated(t *testing.T) {
	items := []SumReadItem{{IndexGroup: 1, IndexOffset: 0, ReadLength: 4}}
	if _, err := DecodeSumReadResponse([]byte{0, 0, 0, 0}, items); err == nil {
		t.Error("expected error for truncated response, got nil")
	}
}

func TestSumWriteRoundTrip(t *testing.T) {
	items := []SumWriteItem{
		{IndexGroup: 0x4020, IndexOffset: 0, Data: []byte{1, 2}},
		{IndexGroup: 0x4020, IndexOffset: 4, Data: []byte{3, 4, 5}},
	}

	req := EncodeSumWriteRequest(items)
	wantLen := 12*2 + 2 + 3
	if len(req) != wantLen {
		t.Fatalf("EncodeSumWriteRequest length = %d, want %d", len(req), wantLen)
	}

	if readLen := SumWriteTotalReadLength(items); readLen != 8 {
		t.Fatalf("SumWriteTotalReadLength = %d, want 8", readLen)
	}

	resp := []byte{0, 0, 0, 0, 6, 0, 0, 0}
	codes, err := DecodeSumWriteResponse(resp, len(items))
	if err != nil {
		t.Fatalf("DecodeSumWriteResponse: %v", err)
	}
	if codes[0] != 0 || codes[1] != 6 {
		t.Errorf("codes = %v, want [0 6]", codes)
	}
}

func TestSumReadWriteRoundTrip(t *testing.T) {
	items := []SumReadWriteItem{
		{IndexGroup: 0xF003, IndexOffset: 0, ReadLength: 4, WriteData: []byte("MAIN.a")},
		{IndexGroup: 0xF003, IndexOffset: 0, ReadLength: 4, WriteData: []byte("MAIN.b")},
	}

	req := EncodeSumReadWriteRequest(items)
	wantLen := 16*2 + len("MAIN.a") + len("MAIN.b")
	if len(req) != wantLen {
		t.Fatalf("EncodeSumReadWriteRequest length = %d, want %d", len(req), wantLen)
	}

	readLen := SumReadWriteTotalReadLength(items)
	if readLen != 8+4+4 {
		t.Fatalf("SumReadWriteTotalReadLength = %d, want %d", readLen, 8+4+4)
	}

	resp := make([]byte, 0, readLen)
	resp = append(resp, 0, 0, 0, 0)
	resp = append(resp, 0, 0, 0, 0)
	resp = append(resp, []byte{0x10, 0, 0, 0}...)
	resp = append(resp, []byte{0x20, 0, 0, 0}...)

	results, err := DecodeSumReadWriteResponse(resp, items)
	if err != nil {
		t.Fatalf("DecodeSumReadWriteResponse: %v", err)
	}
	if len(results) != 2 || results[0].Result != 0 || results[1].Result != 0 {
		t.Errorf("unexpected results: %+v", results)
	}
	if !bytes.Equal(results[0].Data, []byte{0x10, 0, 0, 0}) {
		t.Errorf("results[0].Data = %v", results[0].Data)
	}
}
