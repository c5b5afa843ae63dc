package adsgo

import "testing"

func TestParseArrayAccess(t *testing.T) {
	tests := []struct {
		name        string
		symbolName  string
		wantBase    string
		wantIndex   int
		wantErr     bool
	}{
		{"no brackets", "MAIN.counter", "MAIN.counter", -1, false},
		{"simple index", "MAIN.arr[3]", "MAIN.arr", 3, false},
		{"nested path", "MAIN.structA.arr[12]", "MAIN.structA.arr", 12, false},
		{"zero index", "MAIN.arr[0]", "MAIN.arr", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			base, idx, err := parseArrayAccess(tt.symbolName)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseArrayAccess(%q) error = %v, wantErr %v", tt.symbolName, err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if base != tt.wantBase || idx != tt.wantIndex {
				t.Errorf("parseArrayAccess(%q) = (%q, %d), want (%q, %d)",
					tt.symbolName, base, idx, tt.wantBase, tt.wantIndex)
			}
		})
	}
}

func TestExtractArrayElementType(t *testing.T) {
	tests := []struct {
		name         string
		typeName     string
		wantElement  string
		wantIsArray  bool
	}{
		{"simple array", "ARRAY [0..9] OF INT", "INT", true},
		{"lowercase array", "array [0..9] of DINT", "DINT", true},
		{"struct element", "ARRAY [1..5] OF ST_Sample", "ST_Sample", true},
		{"not an array", "ST_Sample", "", false},
		{"missing OF marker", "ARRAY [0..9]", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			element, isArray := extractArrayElementType(tt.typeName)
			if isArray != tt.wantIsArray || element != tt.wantElement {
				t.Errorf("extractArrayElementType(%q) = (%q, %v), want (%q, %v)",
					tt.typeName, element, isArray, tt.wantElement, tt.wantIsArray)
			}
		})
	}
}
