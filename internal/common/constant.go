// Package common contains shared constants and sentinel errors used across
// LingoPal client components.
package common

// AuthorizationHeaderName is the HTTP header used to carry the access token
// on outbound requests.
const AuthorizationHeaderName = "Authorization"

// DeviceIDHeaderName carries the best-effort device identifier on requests
// to the auth backend.
const DeviceIDHeaderName = "Device-Id"

// RequestIDHeaderName carries a per-request correlation id so client and
// backend logs can be matched up.
const RequestIDHeaderName = "X-Request-Id"

// UnknownDeviceID is sent when no device identifier could be resolved or
// persisted.
const UnknownDeviceID = "unknown-device"

// DefaultLocale is used when no system locale can be resolved.
const DefaultLocale = "en-US"
