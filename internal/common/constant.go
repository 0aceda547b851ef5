// Package common contains shared constants and small helpers used across
// qaforum components.
package common

// CredentialKey is the fixed name under which the bearer credential is
// persisted in the local metadata store. Absence of the key means the client
// is signed out.
const CredentialKey = "authToken"

// RequestIDHeaderName carries a per-request correlation id on outbound calls.
const RequestIDHeaderName = "X-Request-ID"

// AppName is used for the start-up banner and the default data directory.
const AppName = "qaforum"
