package energy

import "time"

// DailyReport is the today/yesterday payload of GET /v1/energy/daily.
type DailyReport struct {
	DeviceID       string    `json:"device_id"`
	EmissionFactor float64   `json:"ef_kgco2_per_kwh"`
	Today          DayReport `json:"today"`
	Yesterday      DayReport `json:"yesterday"`
}

// DayReport is one calendar day of a DailyReport.
type DayReport struct {
	Date     string     `json:"date"`
	KWh      float64    `json:"kwh"`
	KgCO2    float64    `json:"kgco2"`
	KWLatest float64    `json:"kw_latest"`
	KWTime   *time.Time `json:"kw_time"`
	Meta     Meta       `json:"meta"`
}

// Meta exposes how a day's figures were derived.
type Meta struct {
	KWhTotal       float64    `json:"kwh_total"`
	SecondsCovered int64      `json:"seconds_covered"`
	GapSeconds     int64      `json:"gap_seconds"`
	MaxDT          int64      `json:"max_dt"`
	FirstTime      *time.Time `json:"first_time"`
	LastTime       *time.Time `json:"last_time"`
	RowsCount      int64      `json:"rows_count"`
	Mode           string     `json:"mode"`
	SampleSeconds  int        `json:"sample_sec"`
}

// Summary is the payload of GET /v1/energy/kwh.
type Summary struct {
	Status        string     `json:"status"`
	DeviceID      string     `json:"device_id"`
	SampleSeconds int        `json:"sample_sec"`
	KWhToday      float64    `json:"kwh_today"`
	KWhYesterday  float64    `json:"kwh_yesterday"`
	LatestTimeKey *time.Time `json:"latest_time_key"`
	ElapsedMS     float64    `json:"elapsed_ms"`
}
