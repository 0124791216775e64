// Package identity turns a bare user ID into the fully-resolved caller value
// the authorization core works with: user record, privilege tier and active
// org bindings with their path snapshots.
package identity

import (
	"context"
	"fmt"
	"time"

	"qbank/internal/authz"
	"qbank/internal/orgtree"
	"qbank/internal/store"
)

type Service struct {
	store store.Store
}

func NewService(s store.Store) *Service {
	return &Service{store: s}
}

// Resolve loads the user and their bindings active at the time of the call.
func (s *Service) Resolve(ctx context.Context, userID string) (*authz.User, error) {
	row, err := s.store.UserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	bindings, err := s.store.ActiveBindings(ctx, userID, time.Now())
	if err != nil {
		return nil, fmt.Errorf("resolve identity %s: %w", userID, err)
	}

	user := &authz.User{
		ID:         row.ID,
		Name:       row.Name,
		Email:      row.Email,
		Type:       row.Type,
		Status:     row.Status,
		SuperAdmin: row.IsSuperAdmin(),
	}
	for _, b := range bindings {
		resolved := authz.Binding{
			OrgID:    b.OrgID,
			Path:     orgtree.Parse(b.PathSnapshot),
			Relation: b.RelationType,
		}
		if b.RoleID != nil {
			resolved.RoleID = *b.RoleID
		}
		if b.Role != nil {
			resolved.RoleName = b.Role.Name
			resolved.Tier = b.Role.Tier
			resolved.CanAuthor = b.Role.CanAuthor
		}
		user.Bindings = append(user.Bindings, resolved)
	}
	return user, nil
}
