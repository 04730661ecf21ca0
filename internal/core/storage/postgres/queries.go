package postgres

// SQL for the append-only telemetry table. Windows are half-open [start, end).

const tableName = "full_history"

// telemetryColumns is the measurement column list shared by insert and scan.
const telemetryColumns = `
			load_v_r, load_v_y, load_v_b,
			load_v3_r, load_v3_y, load_v3_b,
			load_i_r, load_i_y, load_i_b,
			load_freq, load_pf_t,
			load_pf_r, load_pf_y, load_pf_b`

// instantPowerExpr is per-row instantaneous power in watts.
// A phase with any NULL factor contributes zero instead of nulling the row.
const instantPowerExpr = `
			COALESCE(load_v_r * load_i_r * load_pf_r, 0) +
			COALESCE(load_v_y * load_i_y * load_pf_y, 0) +
			COALESCE(load_v_b * load_i_b * load_pf_b, 0)`

const (
	// queryInsertTelemetry appends one sample. time_key comes from the
	// column default (server clock) and is returned with the row id.
	queryInsertTelemetry = `
		INSERT INTO full_history (
			device_id,` + telemetryColumns + `
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING id, time_key
	`

	// queryWindowStats is the single aggregate behind daily energy.
	queryWindowStats = `
		SELECT
			COUNT(*) AS rows_count,
			COALESCE(SUM(` + instantPowerExpr + `
			), 0) AS sum_w,
			MIN(time_key) AS first_time,
			MAX(time_key) AS last_time
		FROM full_history
		WHERE device_id = $1
		  AND time_key >= $2
		  AND time_key < $3
	`

	queryLatestInWindow = `
		SELECT
			id, device_id, time_key,` + telemetryColumns + `
		FROM full_history
		WHERE device_id = $1
		  AND time_key >= $2
		  AND time_key < $3
		ORDER BY time_key DESC, id DESC
		LIMIT 1
	`

	queryLatestTimeKeyByDevice = `
		SELECT time_key
		FROM full_history
		WHERE device_id = $1
		ORDER BY time_key DESC
		LIMIT 1
	`

	queryLatestTimeKey = `
		SELECT time_key
		FROM full_history
		ORDER BY time_key DESC
		LIMIT 1
	`

	queryTableExists = `
		SELECT EXISTS (
			SELECT FROM information_schema.tables
			WHERE table_name = $1
		)
	`

	queryServerInfo = `
		SELECT
			current_database(),
			current_setting('server_version'),
			current_setting('TimeZone'),
			now()
	`
)
