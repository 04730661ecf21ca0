package v1

import (
	"encoding/json"
	"testing"
)

func TestTelemetryRow_Validate(t *testing.T) {
	tests := []struct {
		name    string
		row     TelemetryRow
		wantErr bool
	}{
		{name: "device set", row: TelemetryRow{DeviceID: "sensor/3phase10"}},
		{name: "missing device", row: TelemetryRow{}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.row.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestPhase_At(t *testing.T) {
	r, y := 230.0, 0.0
	p := Phase{R: &r, Y: &y}

	if got := p.At(0); got == nil || *got != 230 {
		t.Errorf("At(0) = %v, want 230", got)
	}
	if got := p.At(1); got == nil || *got != 0 {
		t.Errorf("At(1) = %v, want 0 (zero is a reading)", got)
	}
	if got := p.At(2); got != nil {
		t.Errorf("At(2) = %v, want nil", *got)
	}
	if got := p.At(3); got != nil {
		t.Errorf("At(3) = %v, want nil", *got)
	}
}

func TestTelemetryRow_JSONKeepsNulls(t *testing.T) {
	freq := 50.0
	row := TelemetryRow{DeviceID: "sensor/3phase10", Frequency: &freq}

	data, err := json.Marshal(row)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded["pf_t"] != nil {
		t.Errorf("pf_t = %v, want null", decoded["pf_t"])
	}
	if decoded["frequency"] != 50.0 {
		t.Errorf("frequency = %v, want 50", decoded["frequency"])
	}
	voltage, ok := decoded["voltage"].(map[string]any)
	if !ok || voltage["r"] != nil {
		t.Errorf("voltage = %v, want object with null r", decoded["voltage"])
	}
}
