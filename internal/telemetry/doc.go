// Package telemetry collects run metrics in a private Prometheus registry.
//
// A hashing run is a short-lived batch job, so metrics are not served over
// HTTP. Instead they are written once at the end of the run in the text
// exposition format, for the node exporter's textfile collector to pick
// up. Metric labels never carry identifiers or secrets.
package telemetry
