// Package identity registers admin accounts and authenticates operators.
//
// Passwords are stored as the unsalted SHA-256 hex digest so existing
// account documents keep working. Only superusers may log in.
package identity
