// Package store is the persistence boundary of the authorization core.
// GormStore is the MySQL-backed implementation; MemoryStore backs unit
// tests. Both report missing rows as apperr.ErrNotFound and uniqueness
// collisions as apperr.ErrConflict.
package store

import (
	"context"
	"time"

	"qbank/internal/authz"
	"qbank/internal/models"
)

// ListQuery carries the caller-supplied list filters and pagination.
type ListQuery struct {
	Subject    string
	Grade      string
	Difficulty string
	Type       string
	Page       int
	Limit      int
}

func (q ListQuery) normalized() ListQuery {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 1 || q.Limit > 100 {
		q.Limit = 20
	}
	return q
}

type Store interface {
	// Org tree
	OrgNodeByID(ctx context.Context, id string) (*models.OrgNode, error)
	OrgNodeByPath(ctx context.Context, path string) (*models.OrgNode, error)
	OrgNodesByPrefix(ctx context.Context, prefix string) ([]models.OrgNode, error)
	// EnsureOrgNode inserts the node if no row with its ID exists yet.
	EnsureOrgNode(ctx context.Context, node *models.OrgNode) error

	// Identities
	UserByID(ctx context.Context, id string) (*models.User, error)
	UserByEmail(ctx context.Context, email string) (*models.User, error)
	// ActiveBindings returns the user's bindings effective at now, with Org
	// and Role preloaded.
	ActiveBindings(ctx context.Context, userID string, now time.Time) ([]models.UserOrgBinding, error)
	// EnsureBinding inserts the binding if the (user, org) pair is unbound.
	EnsureBinding(ctx context.Context, b *models.UserOrgBinding) error

	// ACL
	AclForResource(ctx context.Context, resourceID string, statuses ...models.ApprovalStatus) ([]models.AclEntry, error)
	AclByID(ctx context.Context, id string) (*models.AclEntry, error)
	// CreateAcl inserts one entry; a PendingKey collision yields
	// apperr.ErrConflict.
	CreateAcl(ctx context.Context, e *models.AclEntry) error
	SaveAcl(ctx context.Context, e *models.AclEntry) error

	// Questions
	QuestionByID(ctx context.Context, id string) (*models.Question, error)
	// CreateQuestion inserts the question and its owner grant atomically; a
	// question must never be visible without its owner ACL row.
	CreateQuestion(ctx context.Context, q *models.Question, ownerGrant *models.AclEntry) error
	UpdateQuestionContent(ctx context.Context, id, content string) error
	// ListQuestions applies the visibility filter plus caller filters and
	// returns one page with the total match count.
	ListQuestions(ctx context.Context, f authz.Filter, q ListQuery) ([]models.Question, int64, error)
	CountQuestions(ctx context.Context, f authz.Filter) (int64, error)
	// CountPendingForOwner counts PENDING edit requests across the owner's
	// questions.
	CountPendingForOwner(ctx context.Context, ownerID string) (int64, error)
}
