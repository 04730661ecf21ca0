package postgres

import (
	"fmt"

	v1 "github.com/gridpulse-lab/gridpulse/internal/api/v1"
)

// insertArgs flattens a row into the positional args of queryInsertTelemetry.
// nil pointers are sent as SQL NULL by database/sql.
func insertArgs(row *v1.TelemetryRow) []interface{} {
	return []interface{}{
		row.DeviceID,
		row.Voltage.R, row.Voltage.Y, row.Voltage.B,
		row.Voltage3Phase.R, row.Voltage3Phase.Y, row.Voltage3Phase.B,
		row.Current.R, row.Current.Y, row.Current.B,
		row.Frequency, row.PowerFactorT,
		row.PowerFactor.R, row.PowerFactor.Y, row.PowerFactor.B,
	}
}

type scanner interface {
	Scan(dest ...interface{}) error
}

// scanTelemetryRow scans id, device_id, time_key and the measurement columns.
// Compatible with both sql.Row (single) and sql.Rows (multiple).
func scanTelemetryRow(row scanner) (*v1.TelemetryRow, error) {
	var r v1.TelemetryRow

	err := row.Scan(
		&r.ID,
		&r.DeviceID,
		&r.TimeKey,
		&r.Voltage.R, &r.Voltage.Y, &r.Voltage.B,
		&r.Voltage3Phase.R, &r.Voltage3Phase.Y, &r.Voltage3Phase.B,
		&r.Current.R, &r.Current.Y, &r.Current.B,
		&r.Frequency, &r.PowerFactorT,
		&r.PowerFactor.R, &r.PowerFactor.Y, &r.PowerFactor.B,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to scan telemetry row: %w", err)
	}

	return &r, nil
}
