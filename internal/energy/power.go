package energy

import v1 "github.com/gridpulse-lab/gridpulse/internal/api/v1"

// InstantPower returns the row's total real power in watts: the sum over the
// R/Y/B phases of voltage x current x power factor. A phase with any missing
// factor contributes zero, matching the aggregate query.
func InstantPower(row *v1.TelemetryRow) float64 {
	if row == nil {
		return 0
	}

	var watts float64
	for i := 0; i < 3; i++ {
		v := row.Voltage.At(i)
		a := row.Current.At(i)
		pf := row.PowerFactor.At(i)
		if v == nil || a == nil || pf == nil {
			continue
		}
		watts += *v * *a * *pf
	}
	return watts
}
