// Package integration provides end-to-end tests for the frs-sync server.
// A fake FRS API stands in for the upstream service while the server runs
// in-process with file storage.
package integration
