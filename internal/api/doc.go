// Package api is the HTTP binding to the inventory backend. It builds requests
// for every endpoint the client uses, attaches the bearer token from the
// session, and normalizes the backend's loosely shaped JSON responses behind a
// single Envelope type. All failures are returned as *apperr.Error.
package api
