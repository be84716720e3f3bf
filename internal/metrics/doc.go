// Package metrics defines the Prometheus instruments for probes and
// conversion jobs. Instruments are registered on the default registry via
// promauto; expose them by mounting promhttp.Handler() (the HTTP control
// surface does this at /metrics).
package metrics
