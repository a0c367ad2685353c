// Package common contains shared constants and sentinel errors used across
// Mori components.
package common

// AccessTokenHeaderName is the gRPC metadata key used to carry the
// access token on outbound requests.
const AccessTokenHeaderName = "access_token"

// RequestIDHeaderName carries an optional caller-supplied request id.
const RequestIDHeaderName = "x-request-id"
