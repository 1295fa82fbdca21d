package recordstore

import "github.com/VictoriaMetrics/metrics"

var (
	loadsTotal            = metrics.NewCounter("dyndb_store_loads_total")
	loadErrorsTotal       = metrics.NewCounter("dyndb_store_load_errors_total")
	savesTotal            = metrics.NewCounter("dyndb_store_saves_total")
	saveErrorsTotal       = metrics.NewCounter("dyndb_store_save_errors_total")
	fragmentsWrittenTotal = metrics.NewCounter("dyndb_store_fragments_written_total")
	saveDuration          = metrics.NewHistogram("dyndb_store_save_duration_seconds")
	deletesTotal          = metrics.NewCounter("dyndb_store_deletes_total")
)
