// Package scheduler fires scheduled emails at their fire time.
package scheduler
