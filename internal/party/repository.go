package party

import (
	"context"
	"database/sql"
	"fmt"
)

// Repository handles friend directory persistence
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new party repository
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new contact into the owner's directory
func (r *Repository) Create(ctx context.Context, ownerID int64, friendUserID *int64, name string) (*Friend, error) {
	query := `
		INSERT INTO friends (user_id, friend_user_id, name)
		VALUES ($1, $2, $3)
		RETURNING id, user_id, friend_user_id, name, created_at
	`

	friend := &Friend{}
	err := r.db.QueryRowContext(ctx, query, ownerID, friendUserID, name).Scan(
		&friend.ID,
		&friend.UserID,
		&friend.FriendUserID,
		&friend.Name,
		&friend.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create friend: %w", err)
	}

	return friend, nil
}

// GetByID retrieves a contact by id, scoped to its owner
func (r *Repository) GetByID(ctx context.Context, ownerID, id int64) (*Friend, error) {
	query := `
		SELECT f.id, f.user_id, f.friend_user_id, f.name, f.created_at, u.username, u.email
		FROM friends f
		LEFT JOIN users u ON f.friend_user_id = u.id
		WHERE f.id = $1 AND f.user_id = $2
	`

	friend := &Friend{}
	err := r.db.QueryRowContext(ctx, query, id, ownerID).Scan(
		&friend.ID,
		&friend.UserID,
		&friend.FriendUserID,
		&friend.Name,
		&friend.CreatedAt,
		&friend.FriendUsername,
		&friend.FriendEmail,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get friend: %w", err)
	}

	return friend, nil
}

// GetByFriendUserID retrieves the contact linking the owner to a registered user
func (r *Repository) GetByFriendUserID(ctx context.Context, ownerID, friendUserID int64) (*Friend, error) {
	query := `
		SELECT f.id, f.user_id, f.friend_user_id, f.name, f.created_at, u.username, u.email
		FROM friends f
		LEFT JOIN users u ON f.friend_user_id = u.id
		WHERE f.user_id = $1 AND f.friend_user_id = $2
	`

	friend := &Friend{}
	err := r.db.QueryRowContext(ctx, query, ownerID, friendUserID).Scan(
		&friend.ID,
		&friend.UserID,
		&friend.FriendUserID,
		&friend.Name,
		&friend.CreatedAt,
		&friend.FriendUsername,
		&friend.FriendEmail,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get friend: %w", err)
	}

	return friend, nil
}

// ListByOwner retrieves all contacts in a user's directory
func (r *Repository) ListByOwner(ctx context.Context, ownerID int64, limit, offset int) ([]*Friend, int, error) {
	var total int
	countQuery := `SELECT COUNT(*) FROM friends WHERE user_id = $1`
	if err := r.db.QueryRowContext(ctx, countQuery, ownerID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count friends: %w", err)
	}

	query := `
		SELECT f.id, f.user_id, f.friend_user_id, f.name, f.created_at, u.username, u.email
		FROM friends f
		LEFT JOIN users u ON f.friend_user_id = u.id
		WHERE f.user_id = $1
		ORDER BY f.name
		LIMIT $2 OFFSET $3
	`

	rows, err := r.db.QueryContext(ctx, query, ownerID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list friends: %w", err)
	}
	defer rows.Close()

	var friends []*Friend
	for rows.Next() {
		friend := &Friend{}
		if err := rows.Scan(
			&friend.ID,
			&friend.UserID,
			&friend.FriendUserID,
			&friend.Name,
			&friend.CreatedAt,
			&friend.FriendUsername,
			&friend.FriendEmail,
		); err != nil {
			return nil, 0, fmt.Errorf("failed to scan friend: %w", err)
		}
		friends = append(friends, friend)
	}

	return friends, total, nil
}

// Delete removes a contact from the owner's directory
func (r *Repository) Delete(ctx context.Context, ownerID, id int64) (bool, error) {
	query := `DELETE FROM friends WHERE id = $1 AND user_id = $2`
	result, err := r.db.ExecContext(ctx, query, id, ownerID)
	if err != nil {
		return false, fmt.Errorf("failed to delete friend: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to delete friend: %w", err)
	}

	return affected > 0, nil
}
