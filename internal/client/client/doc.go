// Package client contains client-side building blocks for jobmarket.
//
// # Overview
//
// The package provides:
//  1. A transport-agnostic API contract (see the Client interface):
//     Register, Login, Logout, Ping and the job search and posting calls.
//  2. A concrete HTTP implementation (see HTTPClient) that keeps the session's
//     token pair, sends the access token as a bearer credential, and refreshes
//     it transparently when the server answers 401 with reason token_expired.
//  3. Local persistence bootstrap utilities (InitDatabase, RunMigrations) for
//     the CLI, wiring an SQLite database and applying embedded goose migrations.
//
// # Error Handling
//
// Server responses are mapped onto sentinel errors that callers match with
// errors.Is: ErrUnauthorized, ErrSessionExpired, ErrForbidden, ErrNotFound,
// ErrConflict, ErrBadRequest, ErrTimeout and ErrUnavailable.
//
// All operations accept context.Context and honor cancellation/timeouts.
package client
