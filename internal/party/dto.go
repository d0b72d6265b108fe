package party

// AddFriendRequest represents the request to add a contact.
// Provide user_id or email for a registered contact, or just name for a
// manual one.
type AddFriendRequest struct {
	UserID *int64  `json:"user_id,omitempty"`
	Email  *string `json:"email,omitempty"`
	Name   *string `json:"name,omitempty"`
}

// FriendResponse represents the response for a contact
type FriendResponse struct {
	ID             int64   `json:"id"`
	FriendUserID   *int64  `json:"friend_user_id,omitempty"`
	Name           string  `json:"name"`
	Registered     bool    `json:"registered"`
	FriendUsername *string `json:"friend_username,omitempty"`
	FriendEmail    *string `json:"friend_email,omitempty"`
	CreatedAt      string  `json:"created_at"`
}

// ToResponse converts a Friend model to a FriendResponse DTO
func (f *Friend) ToResponse() *FriendResponse {
	return &FriendResponse{
		ID:             f.ID,
		FriendUserID:   f.FriendUserID,
		Name:           f.Name,
		Registered:     f.IsRegistered(),
		FriendUsername: f.FriendUsername,
		FriendEmail:    f.FriendEmail,
		CreatedAt:      f.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
}
