package logger

import (
	"regexp"
	"strings"
)

// Recipients, senders and usernames are all e-mail addresses here, so any
// address inside a logged value is masked unless KeepPII is set.
var emailRegex = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)

func redactPIIValue(val string) string {
	return emailRegex.ReplaceAllStringFunc(val, RedactEmail)
}

// RedactEmail keeps the first two characters of the local part and the
// domain: "john.doe@example.com" becomes "jo***@example.com". Local parts of
// two characters or less are masked entirely.
func RedactEmail(email string) string {
	if strings.Count(email, "@") != 1 {
		return "***@***"
	}
	local, domain, _ := strings.Cut(email, "@")
	if len(local) <= 2 {
		return "***@" + domain
	}
	return local[:2] + "***@" + domain
}
