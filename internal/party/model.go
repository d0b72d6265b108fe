package party

import "time"

// Friend is a contact in a user's directory. It either links to a
// registered account (FriendUserID set) or is a manual, unregistered
// contact known only by name.
type Friend struct {
	ID           int64     `json:"id"`
	UserID       int64     `json:"user_id"`
	FriendUserID *int64    `json:"friend_user_id,omitempty"`
	Name         string    `json:"name"`
	CreatedAt    time.Time `json:"created_at"`

	// Populated via JOIN when the contact is registered
	FriendUsername *string `json:"friend_username,omitempty"`
	FriendEmail    *string `json:"friend_email,omitempty"`
}

// IsRegistered reports whether the contact links to a registered account
func (f *Friend) IsRegistered() bool {
	return f.FriendUserID != nil
}

// Ref is a resolved counterparty slot: exactly one of UserID or Name is
// populated. A registered slot can approve, be notified and allocate; a
// manual slot is a label only.
type Ref struct {
	UserID *int64
	Name   *string
}

// Registered builds a Ref for a registered account
func Registered(userID int64) Ref {
	return Ref{UserID: &userID}
}

// Manual builds a Ref for an unregistered contact
func Manual(name string) Ref {
	return Ref{Name: &name}
}

// IsRegistered reports whether the slot holds a registered account
func (r Ref) IsRegistered() bool {
	return r.UserID != nil
}
