package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for the ingestion service

var (
	// API Call metrics
	APICallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nba_api_calls_total",
			Help: "Total number of stats API calls",
		},
		[]string{"endpoint", "status"},
	)

	APICallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "nba_api_call_duration_seconds",
			Help:    "Duration of API calls in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)

	APIRetriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nba_api_retries_total",
			Help: "Total number of retried stats API calls",
		},
		[]string{"operation"},
	)

	// Database metrics
	DBQueriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nba_db_queries_total",
			Help: "Total number of database queries",
		},
		[]string{"operation", "table", "status"},
	)

	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "nba_db_query_duration_seconds",
			Help:    "Duration of database queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "table"},
	)

	RecordsRejected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nba_records_rejected_total",
			Help: "Records dropped by pre-write validation",
		},
		[]string{"table"},
	)

	DBConnectionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "nba_db_connections_active",
			Help: "Number of active database connections",
		},
	)

	DBConnectionsIdle = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "nba_db_connections_idle",
			Help: "Number of idle database connections",
		},
	)

	// Cache metrics
	CacheHitsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "nba_cache_hits_total",
			Help: "Total number of cache hits",
		},
	)

	CacheMissesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "nba_cache_misses_total",
			Help: "Total number of cache misses",
		},
	)

	CacheOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "nba_cache_operation_duration_seconds",
			Help:    "Duration of cache operations in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"operation"},
	)

	// Sync metrics
	SyncOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nba_sync_operations_total",
			Help: "Total number of sync stages run",
		},
		[]string{"stage", "status"},
	)

	SyncDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "nba_sync_duration_seconds",
			Help:    "Duration of sync stages in seconds",
			Buckets: []float64{1, 5, 10, 30, 60, 120, 300, 600, 1800, 3600},
		},
		[]string{"stage"},
	)

	BoxScoreGamesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nba_box_score_games_total",
			Help: "Box score games processed by outcome",
		},
		[]string{"outcome"},
	)

	StarterClassifications = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "nba_starter_classifications",
			Help: "Players per starter role in the last inference run",
		},
		[]string{"role"},
	)

	TeamsIngested = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "nba_teams_ingested_total",
			Help: "Total number of teams in database",
		},
	)

	PlayersIngested = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "nba_players_ingested_total",
			Help: "Total number of players in database",
		},
	)

	GamesIngested = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "nba_games_ingested_total",
			Help: "Total number of games in database",
		},
	)

	BoxScoresIngested = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "nba_box_scores_ingested_total",
			Help: "Total number of box score rows in database",
		},
	)

	// Error metrics
	ErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nba_errors_total",
			Help: "Total number of errors",
		},
		[]string{"component", "error_type"},
	)

	// System metrics
	SystemUptime = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "nba_system_uptime_seconds",
			Help: "System uptime in seconds",
		},
	)

	LastSuccessfulSync = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "nba_last_successful_sync_timestamp",
			Help: "Timestamp of last successful sync run",
		},
	)
)

// RecordAPICall records an API call metric
func RecordAPICall(endpoint, status string, duration float64) {
	APICallsTotal.WithLabelValues(endpoint, status).Inc()
	APICallDuration.WithLabelValues(endpoint).Observe(duration)
}

// RecordRetry records a retried provider call
func RecordRetry(operation string) {
	APIRetriesTotal.WithLabelValues(operation).Inc()
}

// RecordDBQuery records a database query metric
func RecordDBQuery(operation, table, status string, duration float64) {
	DBQueriesTotal.WithLabelValues(operation, table, status).Inc()
	DBQueryDuration.WithLabelValues(operation, table).Observe(duration)
}

// RecordRejected records records dropped by validation
func RecordRejected(table string, count int) {
	RecordsRejected.WithLabelValues(table).Add(float64(count))
}

// RecordCacheHit records a cache hit
func RecordCacheHit() {
	CacheHitsTotal.Inc()
}

// RecordCacheMiss records a cache miss
func RecordCacheMiss() {
	CacheMissesTotal.Inc()
}

// RecordCacheOperation records a cache operation duration
func RecordCacheOperation(operation string, duration float64) {
	CacheOperationDuration.WithLabelValues(operation).Observe(duration)
}

// RecordStage records one pipeline stage
func RecordStage(stage, status string, duration float64) {
	SyncOperationsTotal.WithLabelValues(stage, status).Inc()
	SyncDuration.WithLabelValues(stage).Observe(duration)
}

// RecordSync records a whole pipeline run
func RecordSync(status string, duration float64) {
	RecordStage("total", status, duration)
	if status == "success" {
		LastSuccessfulSync.SetToCurrentTime()
	}
}

// RecordBoxScoreGame records the outcome of one game in the box score loop
func RecordBoxScoreGame(outcome string) {
	BoxScoreGamesTotal.WithLabelValues(outcome).Inc()
}

// UpdateStarterClassifications sets the per-role player counts
func UpdateStarterClassifications(starters, bench, unknown int) {
	StarterClassifications.WithLabelValues("starter").Set(float64(starters))
	StarterClassifications.WithLabelValues("bench").Set(float64(bench))
	StarterClassifications.WithLabelValues("unknown").Set(float64(unknown))
}

// RecordError records an error
func RecordError(component, errorType string) {
	ErrorsTotal.WithLabelValues(component, errorType).Inc()
}

// UpdateDBConnectionStats updates database connection pool statistics
func UpdateDBConnectionStats(active, idle int32) {
	DBConnectionsActive.Set(float64(active))
	DBConnectionsIdle.Set(float64(idle))
}

// UpdateIngestionStats updates ingestion statistics
func UpdateIngestionStats(teams, players, games, boxScores int64) {
	TeamsIngested.Set(float64(teams))
	PlayersIngested.Set(float64(players))
	GamesIngested.Set(float64(games))
	BoxScoresIngested.Set(float64(boxScores))
}
