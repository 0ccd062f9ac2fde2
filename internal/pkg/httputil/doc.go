// Package httputil writes the console's JSON envelope and maps service
// errors onto HTTP status codes. Handlers never write to the
// ResponseWriter directly.
package httputil
