package adsgo

import "testing"

func TestVariableHandleFields(t *testing.T) {
	h := &VariableHandle{Handle: 42, Symbol: "MAIN.counter"}
	if h.Handle != 42 || h.Symbol != "MAIN.counter" {
		t.Errorf("VariableHandle = %+v, want {42 MAIN.counter}", h)
	}
}
