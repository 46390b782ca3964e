// Package server provides the administrative HTTP server.
//
// # Overview
//
// The admin server exposes the read-only governance surfaces and the
// provider mutation path:
//
//   - GET  /healthz                           liveness probe
//   - GET  /metrics                           Prometheus metrics
//   - GET  /v1/accounts/{account}/status      rate limit and budget snapshot
//   - GET  /v1/providers                      provider configurations
//   - POST /v1/providers                      create a provider configuration
//   - PUT  /v1/providers/{id}                 update a provider configuration
//   - DELETE /v1/providers/{id}               delete a provider configuration
//   - POST /v1/cache/invalidate              drop cached provider lists
//   - GET  /v1/cache/stats                    cache hit/miss counters
//   - GET  /v1/audit/stats                    audit queue counters
//
// Provider mutations go through the cached repository, which writes to
// the store and invalidates the affected cache entries, so admitted
// requests observe changes within one read.
//
// The server is not a proxy: governed LLM traffic never flows through
// it. It exists for operators and the management plane.
package server
