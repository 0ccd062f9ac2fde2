// Package mail composes and sends messages on behalf of a sender account.
//
// A send makes one provider call. On success the sender's counter grows by
// the number of distinct, lower-cased addresses across To, Cc and Bcc. The
// counter's delivered and inbox fields grow by the same amount: they are a
// simulated metric, not delivery feedback. The send and the counter update
// are not atomic; a failed update after an accepted send is logged and
// reported, never turned into a send failure.
package mail
