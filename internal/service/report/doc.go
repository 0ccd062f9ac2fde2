// Package report computes dashboard figures from the counter and
// scheduled-email collections. Nothing is cached; every call reads the store.
// A store failure degrades the affected figure to its zero value and the
// failure is reported next to it instead of failing the whole dashboard.
package report
