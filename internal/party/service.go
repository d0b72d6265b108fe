package party

import (
	"context"
	"errors"

	"github.com/aldawsari/tadayun/internal/user"
)

// Common errors
var (
	ErrFriendNotFound       = errors.New("friend not found")
	ErrFriendAlreadyExists  = errors.New("contact already in your directory")
	ErrCannotBefriendSelf   = errors.New("cannot add yourself as a contact")
	ErrCounterpartyRequired = errors.New("a counterparty reference is required")
	ErrCounterpartyNotFound = errors.New("counterparty not found")
	ErrAmbiguousRef         = errors.New("provide exactly one of friend_id, user_id or name")
)

// Service handles friend directory business logic and counterparty
// resolution for the collection core.
type Service struct {
	repo     *Repository
	userRepo *user.Repository
}

// NewService creates a new party service
func NewService(repo *Repository, userRepo *user.Repository) *Service {
	return &Service{repo: repo, userRepo: userRepo}
}

// AddFriend adds a contact to the caller's directory. A registered contact
// is referenced by user id or email; a manual contact only needs a name.
func (s *Service) AddFriend(ctx context.Context, ownerID int64, req *AddFriendRequest) (*Friend, error) {
	switch {
	case req.UserID != nil:
		return s.addRegistered(ctx, ownerID, *req.UserID)

	case req.Email != nil:
		u, err := s.userRepo.GetByEmail(ctx, *req.Email)
		if err != nil {
			return nil, err
		}
		if u == nil {
			return nil, ErrCounterpartyNotFound
		}
		return s.addRegistered(ctx, ownerID, u.ID)

	case req.Name != nil && *req.Name != "":
		return s.repo.Create(ctx, ownerID, nil, *req.Name)

	default:
		return nil, ErrCounterpartyRequired
	}
}

func (s *Service) addRegistered(ctx context.Context, ownerID, friendUserID int64) (*Friend, error) {
	if ownerID == friendUserID {
		return nil, ErrCannotBefriendSelf
	}

	u, err := s.userRepo.GetByID(ctx, friendUserID)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrCounterpartyNotFound
	}

	existing, err := s.repo.GetByFriendUserID(ctx, ownerID, friendUserID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrFriendAlreadyExists
	}

	return s.repo.Create(ctx, ownerID, &friendUserID, u.Username)
}

// List retrieves the caller's directory with pagination
func (s *Service) List(ctx context.Context, ownerID int64, page, perPage int) ([]*Friend, int, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}

	offset := (page - 1) * perPage
	return s.repo.ListByOwner(ctx, ownerID, perPage, offset)
}

// Remove deletes a contact from the caller's directory
func (s *Service) Remove(ctx context.Context, ownerID, id int64) error {
	deleted, err := s.repo.Delete(ctx, ownerID, id)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrFriendNotFound
	}
	return nil
}

// ResolveCounterparty turns a raw counterparty reference into a Ref.
// Exactly one of friendID, userID or name must be provided: a friend id is
// looked up in the caller's directory (registered or manual depending on
// the contact), a user id must exist as a registered account, and a
// non-empty name passes through as a manual label.
func (s *Service) ResolveCounterparty(ctx context.Context, ownerID int64, friendID, userID *int64, name *string) (Ref, error) {
	provided := 0
	if friendID != nil {
		provided++
	}
	if userID != nil {
		provided++
	}
	if name != nil && *name != "" {
		provided++
	}
	if provided == 0 {
		return Ref{}, ErrCounterpartyRequired
	}
	if provided > 1 {
		return Ref{}, ErrAmbiguousRef
	}

	switch {
	case friendID != nil:
		friend, err := s.repo.GetByID(ctx, ownerID, *friendID)
		if err != nil {
			return Ref{}, err
		}
		if friend == nil {
			return Ref{}, ErrFriendNotFound
		}
		if friend.IsRegistered() {
			return Registered(*friend.FriendUserID), nil
		}
		return Manual(friend.Name), nil

	case userID != nil:
		if *userID == ownerID {
			return Ref{}, ErrCannotBefriendSelf
		}
		u, err := s.userRepo.GetByID(ctx, *userID)
		if err != nil {
			return Ref{}, err
		}
		if u == nil {
			return Ref{}, ErrCounterpartyNotFound
		}
		return Registered(u.ID), nil

	default:
		return Manual(*name), nil
	}
}
