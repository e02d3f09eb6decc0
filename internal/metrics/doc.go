// Package metrics records continuity run metrics.
//
// Components receive a Recorder through dependency injection and default to
// NoopRecorder, so nothing needs a nil check:
//
//	checker := continuity.New(cfg, continuity.WithRecorder(metrics.NoopRecorder{}))
//
// When metrics.textfile is configured, the CLI swaps in a PrometheusRecorder
// backed by its own registry and writes the registry to a node_exporter
// textfile after each run:
//
//	reg := prom.NewRegistry()
//	rec := metrics.NewPrometheusRecorder(reg)
//	// ... run checks ...
//	_ = metrics.WriteTextfile(path, reg)
package metrics
