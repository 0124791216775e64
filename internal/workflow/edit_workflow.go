// Package workflow runs the edit-request approval state machine over ACL
// entries: NONE -> PENDING -> APPROVED | REJECTED. An edit request is an
// AclEntry at EDIT level with PENDING status; approval makes it effective
// on the next resolver evaluation, rejection is terminal.
package workflow

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"qbank/internal/apperr"
	"qbank/internal/audit"
	"qbank/internal/authz"
	"qbank/internal/models"
	"qbank/internal/store"
)

type Workflow struct {
	store store.Store
	audit audit.Sink
	log   *zap.Logger
}

func New(s store.Store, sink audit.Sink, log *zap.Logger) *Workflow {
	return &Workflow{store: s, audit: sink, log: log}
}

// RequestEdit files an edit request for the question. Any authenticated
// user may ask; no access check happens here. Returns Conflict when an
// entry for (question, user, EDIT) is already PENDING or APPROVED. The
// PENDING half of that guard is also enforced by the store's pending-key
// uniqueness, which closes the window between check and insert.
func (w *Workflow) RequestEdit(ctx context.Context, user *authz.User, questionID string) (string, error) {
	q, err := w.store.QuestionByID(ctx, questionID)
	if err != nil {
		return "", err
	}

	existing, err := w.store.AclForResource(ctx, q.ID, models.StatusPending, models.StatusApproved)
	if err != nil {
		return "", fmt.Errorf("check existing requests: %w", err)
	}
	for _, e := range existing {
		if e.GranteeType == models.GranteeUser && e.GranteeID == user.ID && e.PermLevel == models.PermEdit {
			return "", fmt.Errorf("edit request for %s by %s already %s: %w",
				q.ID, user.ID, e.Status, apperr.ErrConflict)
		}
	}

	key := pendingKey(q.ID, user.ID, models.PermEdit)
	entry := models.AclEntry{
		ID:           "ACL_" + uuid.NewString(),
		ResourceID:   q.ID,
		ResourceType: "question",
		GranteeType:  models.GranteeUser,
		GranteeID:    user.ID,
		PermLevel:    models.PermEdit,
		Status:       models.StatusPending,
		Source:       models.SourceRequested,
		RequesterID:  &user.ID,
		PendingKey:   &key,
	}
	if err := w.store.CreateAcl(ctx, &entry); err != nil {
		return "", err
	}

	w.audit.Record(ctx, audit.Event{
		ActorID:    user.ID,
		ActorName:  user.Name,
		Action:     "acl.request_edit",
		TargetType: "question",
		TargetID:   q.ID,
		Outcome:    "success",
		Detail:     fmt.Sprintf("%s requested edit access to %s", user.Name, q.Title),
	})
	w.log.Info("edit request filed",
		zap.String("question", q.ID),
		zap.String("requester", user.ID),
		zap.String("entry", entry.ID))
	return entry.ID, nil
}

// ListPending returns the open edit requests for a question. Only the
// owner or a super-admin may see them.
func (w *Workflow) ListPending(ctx context.Context, actor *authz.User, questionID string) ([]models.AclEntry, error) {
	q, err := w.store.QuestionByID(ctx, questionID)
	if err != nil {
		return nil, err
	}
	if err := requireOwner(actor, q); err != nil {
		return nil, err
	}
	entries, err := w.store.AclForResource(ctx, q.ID, models.StatusPending)
	if err != nil {
		return nil, err
	}
	requests := entries[:0]
	for _, e := range entries {
		if e.PermLevel == models.PermEdit {
			requests = append(requests, e)
		}
	}
	return requests, nil
}

// Resolve approves or rejects one pending request. Re-resolving an entry
// that already reached a terminal state is an InvalidTransition and leaves
// the row untouched.
func (w *Workflow) Resolve(ctx context.Context, actor *authz.User, entryID string, approve bool) error {
	entry, err := w.store.AclByID(ctx, entryID)
	if err != nil {
		return err
	}
	q, err := w.store.QuestionByID(ctx, entry.ResourceID)
	if err != nil {
		return err
	}
	if err := requireOwner(actor, q); err != nil {
		return err
	}
	if entry.Status != models.StatusPending {
		return fmt.Errorf("entry %s is %s: %w", entry.ID, entry.Status, apperr.ErrInvalidTransition)
	}

	if approve {
		entry.Status = models.StatusApproved
	} else {
		entry.Status = models.StatusRejected
	}
	entry.ApproverID = &actor.ID
	entry.PendingKey = nil
	if err := w.store.SaveAcl(ctx, entry); err != nil {
		return err
	}

	w.audit.Record(ctx, audit.Event{
		ActorID:    actor.ID,
		ActorName:  actor.Name,
		Action:     "acl.resolve",
		TargetType: "acl_entry",
		TargetID:   entry.ID,
		Outcome:    string(entry.Status),
		Detail:     fmt.Sprintf("%s %s edit request on %s", actor.Name, entry.Status, q.Title),
	})
	w.log.Info("edit request resolved",
		zap.String("entry", entry.ID),
		zap.String("approver", actor.ID),
		zap.String("status", string(entry.Status)))
	return nil
}

func requireOwner(actor *authz.User, q *models.Question) error {
	if actor.SuperAdmin || actor.ID == q.OwnerID {
		return nil
	}
	return fmt.Errorf("only the owner of %s may manage its requests: %w", q.ID, apperr.ErrForbidden)
}

func pendingKey(resourceID, granteeID string, level models.PermLevel) string {
	return fmt.Sprintf("%s/%s/%d", resourceID, granteeID, level)
}

// IsDuplicate reports whether err came from the duplicate-request guard.
func IsDuplicate(err error) bool {
	return errors.Is(err, apperr.ErrConflict)
}
