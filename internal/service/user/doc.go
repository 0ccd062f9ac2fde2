// Package user implements administration of accounts: the admin and sender
// listings, create/update/delete, and resolving a sender reference (id or
// username) to an account.
package user
