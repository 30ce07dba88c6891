// Package client contains the console's transport to the remote API and the
// local database bootstrap.
//
// # Overview
//
// The package provides:
//  1. HTTPClient, which talks HTTPS JSON and multipart to the API. It attaches
//     the bearer credential from a TokenSource and a fresh X-Request-ID to
//     every call, and can seal and open Envelope bodies on sensitive endpoints.
//  2. Local persistence bootstrap (InitDatabase, RunMigrations) wiring an
//     SQLite database and applying embedded goose migrations.
//
// # Error Handling
//
// Transport failures and non-2xx replies are reported as *APIError or wrapped
// common.ErrRequestFailed; a 401 additionally matches common.ErrAuthExpired.
// A reply body that cannot be opened matches common.ErrDecryptionFailed.
// Nothing is retried.
//
// # Concurrency & Contexts
//
// HTTPClient is safe for concurrent use. Every call takes a context.Context;
// cancelling it aborts the request in flight.
package client
