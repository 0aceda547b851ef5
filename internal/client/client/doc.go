// Package client contains the transport layer of the qaforum client.
//
// # Overview
//
// The package provides:
//  1. The API contract (see the Client interface) mirroring the forum
//     endpoints: user verification, sign-in, registration, and question and
//     answer CRUD.
//  2. A concrete HTTP/JSON implementation (see HTTPClient). Authenticated
//     calls go through a single helper that attaches the credential as a
//     bearer Authorization header using an oauth2 transport; every request
//     carries an X-Request-ID and passes a client-side rate limiter.
//  3. Local persistence bootstrap (InitDatabase, RunMigrations) wiring an
//     SQLite database with embedded goose migrations.
//
// # Error Handling
//
// Failures are mapped onto sentinel errors matched with errors.Is:
// ErrUnavailable (no response), ErrUnauthorized (credential rejected),
// ErrNotFound, ErrRejected and ErrMalformedResponse. Error responses are
// returned as *ServerError so callers can show the server's message.
//
// All operations accept context.Context and honor cancellation.
package client
