package domain

import "strings"

// ParseRecipients splits a comma-separated address list, trimming blanks.
func ParseRecipients(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// JoinRecipients is the inverse of ParseRecipients.
func JoinRecipients(addrs []string) string {
	return strings.Join(addrs, ",")
}

// UniqueRecipients returns the distinct, lower-cased addresses across every
// list, in first-seen order.
func UniqueRecipients(lists ...[]string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, list := range lists {
		for _, addr := range list {
			a := strings.ToLower(strings.TrimSpace(addr))
			if a == "" {
				continue
			}
			if _, ok := seen[a]; ok {
				continue
			}
			seen[a] = struct{}{}
			out = append(out, a)
		}
	}
	return out
}
