// Package api hosts the operator HTTP server that runs beside a crawl.
// Routes:
//   - GET /healthz for liveness probes.
//   - GET /metrics for Prometheus scraping.
//   - GET /v1/run for the current run status.
package api
