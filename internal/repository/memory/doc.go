// Package memory implements every repository in process memory. It backs
// the "memory" storage driver for local runs and is the store used by the
// handler tests. Ids are random UUIDs; anything that does not parse as one
// is a malformed id.
package memory
