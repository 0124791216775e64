// Package authz decides whether a resolved user may view or edit a question.
// Four independent clauses, first hit wins, no deny overrides: super-admin,
// ownership, bidirectional path visibility (view only), ACL overlay.
package authz

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"qbank/internal/models"
	"qbank/internal/orgtree"
)

// AclSource supplies the explicit grants for one resource. Satisfied by the
// store layer.
type AclSource interface {
	AclForResource(ctx context.Context, resourceID string, statuses ...models.ApprovalStatus) ([]models.AclEntry, error)
}

type Resolver struct {
	acl AclSource
	log *zap.Logger
}

func NewResolver(acl AclSource, log *zap.Logger) *Resolver {
	return &Resolver{acl: acl, log: log}
}

// CanView reports whether user may read q.
func (r *Resolver) CanView(ctx context.Context, user *User, q *models.Question) (bool, error) {
	return r.allowed(ctx, user, q, models.PermView)
}

// CanEdit reports whether user may overwrite q in place. Default path
// visibility never grants edit; only ownership, super-admin, or an
// effective ACL entry at EDIT or above does.
func (r *Resolver) CanEdit(ctx context.Context, user *User, q *models.Question) (bool, error) {
	return r.allowed(ctx, user, q, models.PermEdit)
}

func (r *Resolver) allowed(ctx context.Context, user *User, q *models.Question, level models.PermLevel) (bool, error) {
	if user.SuperAdmin {
		return true, nil
	}
	if q.OwnerID == user.ID {
		return true, nil
	}
	if level <= models.PermView {
		qPath := orgtree.Parse(q.OrgPath)
		for _, b := range user.Bindings {
			if orgtree.IsAncestorOrSame(b.Path, qPath) {
				return true, nil
			}
		}
	}
	entries, err := r.acl.AclForResource(ctx, q.ID, models.StatusNoneRequired, models.StatusApproved)
	if err != nil {
		return false, fmt.Errorf("load acl entries: %w", err)
	}
	orgIDs := user.OrgIDs()
	paths := user.Paths()
	for i := range entries {
		if entryGrants(&entries[i], user.ID, orgIDs, paths, level) {
			r.log.Debug("acl grant hit",
				zap.String("user", user.ID),
				zap.String("question", q.ID),
				zap.String("entry", entries[i].ID))
			return true, nil
		}
	}
	return false, nil
}

// VisibleFilter returns the list-query predicate equivalent to CanView.
func (r *Resolver) VisibleFilter(user *User) Filter {
	if user.SuperAdmin {
		return Filter{All: true}
	}
	return Filter{
		UserID: user.ID,
		OrgIDs: user.OrgIDs(),
		Paths:  user.Paths(),
	}
}
