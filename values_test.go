package adsgo

import "testing"

func TestNullTerminate(t *testing.T) {
	tests := []struct {
		name string
		in   []byte
		want string
	}{
		{"no null byte", []byte("hello"), "hello"},
		{"trailing null", []byte("hello\x00\x00\x00"), "hello"},
		{"all null", []byte{0, 0, 0}, ""},
		{"empty", []byte{}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := string(nullTerminate(tt.in))
			if got != tt.want {
				t.Errorf("nullTerminate(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
