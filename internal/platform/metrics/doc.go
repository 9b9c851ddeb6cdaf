// Package metrics exports dispatcher activity and spellchecker state to
// Prometheus.
package metrics
