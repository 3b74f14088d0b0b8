package meterapi

import (
	"encoding/json"
	"testing"
)

// TestValue_UnmarshalJSON verifies string, numeric, null and missing
// value encodings.
func TestValue_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name string
		json string
		want Value
	}{
		{name: "quoted number", json: `{"date": "d", "value": "540"}`, want: "540"},
		{name: "bare integer", json: `{"date": "d", "value": 540}`, want: "540"},
		{name: "bare float", json: `{"date": "d", "value": 12.5}`, want: "12.5"},
		{name: "null", json: `{"date": "d", "value": null}`, want: ""},
		{name: "missing", json: `{"date": "d"}`, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var r Reading
			if err := json.Unmarshal([]byte(tt.json), &r); err != nil {
				t.Fatalf("Unmarshal() error = %v", err)
			}
			if r.Value != tt.want {
				t.Errorf("Value = %q, want %q", r.Value, tt.want)
			}
		})
	}
}

// TestValue_UnmarshalJSON_Invalid verifies unterminated strings are rejected.
func TestValue_UnmarshalJSON_Invalid(t *testing.T) {
	var v Value
	if err := v.UnmarshalJSON([]byte(`"540`)); err == nil {
		t.Error("expected error for unterminated string literal")
	}
}
