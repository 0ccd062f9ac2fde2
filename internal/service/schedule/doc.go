// Package schedule owns the lifecycle of deferred sends.
//
// A record is created Pending and leaves that state exactly once: to Sent
// after the provider accepted the message, or to Failed with the error that
// stopped it. Failed records go back to Pending only through Retry. Every
// transition is conditional on the current status, so a record that was
// already fired by another process is never sent again.
//
// The service does not own timers. An Armer (the scheduler) is told when a
// record must fire and calls Fire when it does.
package schedule
