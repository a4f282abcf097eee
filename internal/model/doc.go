// Package model defines the data structures shared across the client: record
// bags returned by the backend, call and task statuses, page arithmetic and
// the display labels for backend enum codes. Structures are plain values so
// the UI can bind them directly.
package model
