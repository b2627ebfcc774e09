// Package metrics records conversion metrics.
//
// Components receive a Recorder and default to NoopRecorder, so metrics
// collection needs no nil checks at call sites:
//
//	type Migrator struct {
//	    recorder metrics.Recorder
//	}
//
// When metrics.textfile is configured the migrate command swaps in a
// PrometheusRecorder and writes its registry in the Prometheus text format
// after each run, ready for the node exporter textfile collector.
package metrics
