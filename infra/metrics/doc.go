// Package metrics provides the Prometheus and InfluxDB sinks, the /metrics
// HTTP server and a collector feeding session events into a sink. Importing
// the package registers the "nop", "prometheus" and "influx" sink types.
package metrics
