package ingestion

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	v1 "github.com/gridpulse-lab/gridpulse/internal/api/v1"
)

var (
	// ErrMalformedPayload means the payload is not valid JSON.
	ErrMalformedPayload = errors.New("malformed payload")

	// ErrMissingLoad means the payload is not an object or its "load" section
	// is absent, null, false, zero or an empty string.
	ErrMissingLoad = errors.New("payload has no load section")

	// ErrInvalidEncoding means the payload bytes are not valid UTF-8.
	ErrInvalidEncoding = errors.New("payload is not valid UTF-8")
)

// envelope is the outer payload shape. Only "load" is read.
type envelope struct {
	Load json.RawMessage `json:"load"`
}

// loadSection keeps every field raw so each one is parsed on its own and a
// bad field never poisons the others.
type loadSection struct {
	Voltage       json.RawMessage `json:"voltage"`
	Voltage3Phase json.RawMessage `json:"voltage_3phase"`
	Current       json.RawMessage `json:"current"`
	PowerFactor   json.RawMessage `json:"pf"`
	Frequency     json.RawMessage `json:"frequency"`
	PowerFactorT  json.RawMessage `json:"pfT"`
}

// MapPayload turns one raw broker message into a row for deviceID.
// ID and TimeKey are left for the store to assign.
func MapPayload(raw []byte, deviceID string) (v1.TelemetryRow, error) {
	row := v1.TelemetryRow{DeviceID: deviceID}

	if !json.Valid(raw) {
		return row, ErrMalformedPayload
	}

	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return row, ErrMissingLoad
	}

	var env envelope
	if err := json.Unmarshal(trimmed, &env); err != nil {
		return row, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	if isFalsy(env.Load) {
		return row, ErrMissingLoad
	}

	var load loadSection
	if err := json.Unmarshal(env.Load, &load); err != nil {
		// load is present but not an object: nothing usable, all fields nil.
		return row, nil
	}

	row.Voltage = parsePhases(load.Voltage)
	row.Voltage3Phase = parsePhases(load.Voltage3Phase)
	row.Current = parsePhases(load.Current)
	row.PowerFactor = parsePhases(load.PowerFactor)
	row.Frequency = parseScalar(load.Frequency)
	row.PowerFactorT = parseScalar(load.PowerFactorT)

	return row, nil
}

// parsePhases reads indices 0..2 of a JSON array. Anything that is not an
// array reads as empty.
func parsePhases(raw json.RawMessage) v1.Phase {
	var items []json.RawMessage
	if isNull(raw) || json.Unmarshal(raw, &items) != nil {
		return v1.Phase{}
	}

	var p v1.Phase
	for i, item := range items {
		switch i {
		case 0:
			p.R = parseScalar(item)
		case 1:
			p.Y = parseScalar(item)
		case 2:
			p.B = parseScalar(item)
		}
	}
	return p
}

// parseScalar returns a finite float from a JSON number or numeric string,
// nil for anything else.
func parseScalar(raw json.RawMessage) *float64 {
	raw = bytes.TrimSpace(raw)
	if isNull(raw) {
		return nil
	}

	var s string
	switch raw[0] {
	case '"':
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil
		}
		s = strings.TrimSpace(s)
		if s == "" {
			return nil
		}
	case '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		s = string(raw)
	default:
		return nil
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}

func isNull(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) == 0 || bytes.Equal(raw, []byte("null"))
}

// isFalsy reports whether raw is absent, null, false, a numeric zero or "".
func isFalsy(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	if isNull(raw) {
		return true
	}
	switch raw[0] {
	case 'f':
		return string(raw) == "false"
	case '"':
		return string(raw) == `""`
	case '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		f, err := strconv.ParseFloat(string(raw), 64)
		return err == nil && f == 0
	}
	return false
}
