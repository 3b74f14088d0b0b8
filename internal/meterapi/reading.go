package meterapi

import (
	"bytes"
	"fmt"
)

// Reading is one interval measurement returned by the metering API.
//
// Readings are ephemeral: they exist only between a fetch and the
// conversion to store points, and are never persisted in this form.
type Reading struct {
	// Date is the reading timestamp in "YYYY-MM-DD HH:MM:SS" form.
	Date string `json:"date"`

	// Value is the measured power. The API emits it as a quoted string;
	// bare JSON numbers are accepted too.
	Value Value `json:"value"`

	// MeasureType describes the kind of measurement (e.g. "B", "P").
	MeasureType string `json:"measure_type"`

	// IntervalLength is the measurement interval (e.g. "PT30M").
	IntervalLength string `json:"interval_length"`
}

// intervalPayload is the metering API response envelope.
type intervalPayload struct {
	IntervalReading []Reading `json:"interval_reading"`
}

// Value is a reading value that tolerates both string and numeric JSON
// encodings. The empty string means the field was absent.
type Value string

// UnmarshalJSON accepts "123.4", 123.4 and null.
func (v *Value) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*v = ""
		return nil
	}
	if data[0] == '"' {
		if len(data) < 2 || data[len(data)-1] != '"' {
			return fmt.Errorf("invalid value literal %q", data)
		}
		*v = Value(data[1 : len(data)-1])
		return nil
	}
	*v = Value(data)
	return nil
}
