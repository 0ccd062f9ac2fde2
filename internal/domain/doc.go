// Package domain defines the records of the massmail console (users,
// contacts, templates, scheduled emails and per-sender counters) together
// with the sentinel errors every layer wraps.
//
// Nothing here talks to a store or the network. Keep it that way:
//   - no imports from other internal/ packages
//   - no *sql.DB, http.Request or context.Context in struct fields
//   - json and db tags are fine; bson mapping lives in repository/mongo
//   - pure helpers such as recipient parsing belong here
package domain
