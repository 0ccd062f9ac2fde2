// Package mongo implements the repositories on MongoDB. Collection and field
// names match the documents written by earlier versions of the console, so
// an existing massmaildb database can be opened as is.
package mongo
