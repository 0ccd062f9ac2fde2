// Package contact manages the address book and its CSV bulk import.
package contact
