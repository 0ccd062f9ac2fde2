package domain

import "time"

// Contact is an address-book entry keyed by username (usually an e-mail).
type Contact struct {
	ID       string    `json:"id" db:"id"`
	Username string    `json:"username" db:"username"`
	AddedAt  time.Time `json:"added_at" db:"added_at"`
}

// ImportReport classifies every row of a bulk contact import. Each list
// holds the usernames behind the matching count.
type ImportReport struct {
	Added              int      `json:"added"`
	DuplicateInFile    int      `json:"duplicate_in_file"`
	AlreadyExists      int      `json:"already_exists"`
	Skipped            int      `json:"skipped"`
	AddedUsernames     []string `json:"added_usernames,omitempty"`
	DuplicateUsernames []string `json:"duplicate_usernames,omitempty"`
	ExistingUsernames  []string `json:"existing_usernames,omitempty"`
}

// Total returns the number of rows the import looked at.
func (r ImportReport) Total() int {
	return r.Added + r.DuplicateInFile + r.AlreadyExists + r.Skipped
}
