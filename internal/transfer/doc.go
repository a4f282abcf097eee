// Package transfer moves resource data between the backend and files on disk:
// CSV export, CSV import and order receipt download. Each transfer runs as a
// background task with status reported through an update callback.
package transfer
