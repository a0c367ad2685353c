// Package client talks to the Mori backend.
//
// GRPCClient wraps the typed api.Client over a single connection. It keeps
// the session tokens, attaches the access token to every call and, when the
// server answers "token expired", refreshes once and retries. gRPC status
// codes are mapped to the sentinel errors in errors.go.
//
// WatchNotifications subscribes to the live notification feed over
// WebSocket.
package client
