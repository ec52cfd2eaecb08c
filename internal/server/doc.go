// Package server runs the courier ops HTTP server.
//
// Routes:
//
//	/healthz   liveness, always OK while the process serves
//	/readyz    readiness, runs every WithReadinessCheck concurrently
//	/metrics   Prometheus exposition when WithMetrics is set
//
// Tools such as the dev mailbox are added with WithMount. Run blocks until
// the context ends or SIGINT/SIGTERM arrives. Startup hooks run before the
// listener serves; shutdown hooks run in order after it stopped.
package server
