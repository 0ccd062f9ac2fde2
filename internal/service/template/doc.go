// Package template manages stored message templates.
//
// A template belongs to one user or to the shared pool (owner "superuser").
// Listing for a user returns their own templates plus the shared ones.
// Update and Delete address templates by name across every owner: all
// templates carrying the name are changed together.
package template
