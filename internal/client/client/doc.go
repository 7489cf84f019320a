// Package client contains the transport side of the chat client.
//
// # Overview
//
// The package provides:
//  1. The Client interface describing the backend API: Login, Register,
//     Profile, Rooms and RoomMessages.
//  2. RESTClient, a JSON-over-HTTP implementation that rate limits outbound
//     requests, injects the bearer token from a TokenSource and maps status
//     codes to sentinel errors.
//  3. Local persistence bootstrap (InitDatabase, RunMigrations) that opens
//     the SQLite database and applies the embedded goose migrations.
//
// # Error Handling
//
// Failures are reported as sentinel errors matched with errors.Is:
// ErrUnavailable, ErrUnauthorized, ErrInvalidCredentials,
// ErrUnexpectedResponse and ErrNoSession. Non-2xx replies come back as
// *APIError, which unwraps to one of them.
package client
