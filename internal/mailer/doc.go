// Package mailer assembles MIME messages and hands them to an outbound
// provider: the Gmail API (OAuth), AWS SES, or an SMTP relay.
//
// Every Sender makes exactly one provider call per Send. Retrying is the
// caller's decision.
package mailer
