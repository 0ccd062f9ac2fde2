package domain

import "time"

// SharedOwner is the owner value of templates visible to every user.
const SharedOwner = "superuser"

// Template is a named message body owned by a user or shared.
type Template struct {
	ID        string    `json:"id" db:"id"`
	OwnerID   string    `json:"user_id" db:"user_id"`
	Name      string    `json:"template_name" db:"template_name"`
	Content   string    `json:"template_content" db:"template_content"`
	Shared    bool      `json:"superuser" db:"superuser"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// IsSharedOwner reports whether owner denotes the shared template pool.
func IsSharedOwner(owner string) bool {
	return owner == "" || owner == SharedOwner
}
