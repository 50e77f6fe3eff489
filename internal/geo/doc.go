// Package geo acquires the user's coordinates and caches the most recent fix.
//
// The Acquirer turns a Provider (the host's location capability) into a
// single blocking call with a fixed request policy: high accuracy, a 10s
// timeout, and no reuse of cached platform fixes. Failures are reported as
// *GeoError carrying the W3C geolocation error code.
//
// The Cache holds at most one Coordinates value shared by every download
// workflow of a session. It is last-write-wins and is never persisted.
//
// # Providers
//
//   - StaticProvider: fixed coordinates from configuration
//   - IPProvider: approximate position from an IP geolocation endpoint
//   - DeniedProvider: a capability whose permission prompt was refused
package geo
