// Package server provides the optional Gin HTTP server that exposes
// health, readiness and version endpoints for the bot.
//
// The server follows the component pattern so bootstrap starts and stops
// it with the rest of the infrastructure.
//
// # Middleware
//
// Built-in middleware (server/middleware), applied around every route:
//
//   - Recovery: panic recovery with structured logging
//   - RequestID: request id generation and propagation
//   - RequestLogger: request logging with duration tracking
//
// # Endpoints
//
// Built-in endpoints (server/endpoint):
//
//   - /health: component health aggregation
//   - /ready: readiness probe
//   - /version: build version information
package server
