package workflow_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"qbank/internal/apperr"
	"qbank/internal/audit"
	"qbank/internal/authz"
	"qbank/internal/models"
	"qbank/internal/store"
	"qbank/internal/workflow"
)

func setup(t *testing.T) (*workflow.Workflow, *store.MemoryStore, *authz.Resolver) {
	t.Helper()
	st := store.NewMemoryStore()
	wf := workflow.New(st, audit.NopSink{}, zap.NewNop())
	return wf, st, authz.NewResolver(st, zap.NewNop())
}

func seedQuestion(t *testing.T, st *store.MemoryStore, id, ownerID string) *models.Question {
	t.Helper()
	q := &models.Question{
		ID: id, Title: id, Content: "original content", Type: "single-choice",
		Subject: "math", Grade: "grade-1", OrgPath: "/1000/1100", OwnerID: ownerID, Enabled: true,
	}
	grant := &models.AclEntry{
		ID: "ACL_" + id, ResourceID: id, ResourceType: "question",
		GranteeType: models.GranteeUser, GranteeID: ownerID,
		PermLevel: models.PermOwner, Status: models.StatusNoneRequired,
	}
	require.NoError(t, st.CreateQuestion(context.Background(), q, grant))
	return q
}

func user(id string) *authz.User {
	return &authz.User{ID: id, Name: "user " + id, Status: models.UserActive}
}

func TestRequestEditCreatesPendingEntry(t *testing.T) {
	wf, st, _ := setup(t)
	ctx := context.Background()
	seedQuestion(t, st, "Q1", "owner")

	entryID, err := wf.RequestEdit(ctx, user("C"), "Q1")
	require.NoError(t, err)

	entry, err := st.AclByID(ctx, entryID)
	require.NoError(t, err)
	require.Equal(t, models.StatusPending, entry.Status)
	require.Equal(t, models.PermEdit, entry.PermLevel)
	require.Equal(t, models.GranteeUser, entry.GranteeType)
	require.Equal(t, "C", entry.GranteeID)
	require.NotNil(t, entry.RequesterID)
	require.Equal(t, "C", *entry.RequesterID)
	require.NotNil(t, entry.PendingKey)
}

func TestRequestEditUnknownQuestion(t *testing.T) {
	wf, _, _ := setup(t)
	_, err := wf.RequestEdit(context.Background(), user("C"), "missing")
	require.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestDuplicateRequestConflicts(t *testing.T) {
	wf, st, _ := setup(t)
	ctx := context.Background()
	seedQuestion(t, st, "Q1", "owner")

	_, err := wf.RequestEdit(ctx, user("C"), "Q1")
	require.NoError(t, err)

	_, err = wf.RequestEdit(ctx, user("C"), "Q1")
	require.ErrorIs(t, err, apperr.ErrConflict)

	// only one pending row exists
	entries, err := st.AclForResource(ctx, "Q1", models.StatusPending)
	require.NoError(t, err)
	require.Len(t, entries, 1)
}

func TestRequestAfterApprovalConflicts(t *testing.T) {
	wf, st, _ := setup(t)
	ctx := context.Background()
	seedQuestion(t, st, "Q1", "owner")

	entryID, err := wf.RequestEdit(ctx, user("C"), "Q1")
	require.NoError(t, err)
	require.NoError(t, wf.Resolve(ctx, user("owner"), entryID, true))

	_, err = wf.RequestEdit(ctx, user("C"), "Q1")
	require.ErrorIs(t, err, apperr.ErrConflict)
}

func TestRequestAfterRejectionIsAllowed(t *testing.T) {
	wf, st, _ := setup(t)
	ctx := context.Background()
	seedQuestion(t, st, "Q1", "owner")

	entryID, err := wf.RequestEdit(ctx, user("C"), "Q1")
	require.NoError(t, err)
	require.NoError(t, wf.Resolve(ctx, user("owner"), entryID, false))

	again, err := wf.RequestEdit(ctx, user("C"), "Q1")
	require.NoError(t, err)
	require.NotEqual(t, entryID, again)
}

func TestListPendingRequiresOwner(t *testing.T) {
	wf, st, _ := setup(t)
	ctx := context.Background()
	seedQuestion(t, st, "Q1", "owner")
	_, err := wf.RequestEdit(ctx, user("C"), "Q1")
	require.NoError(t, err)

	_, err = wf.ListPending(ctx, user("C"), "Q1")
	require.ErrorIs(t, err, apperr.ErrForbidden)

	entries, err := wf.ListPending(ctx, user("owner"), "Q1")
	require.NoError(t, err)
	require.Len(t, entries, 1)

	admin := &authz.User{ID: "root", SuperAdmin: true}
	entries, err = wf.ListPending(ctx, admin, "Q1")
	require.NoError(t, err)
	require.Len(t, entries, 1)
}

func TestResolveRequiresOwner(t *testing.T) {
	wf, st, _ := setup(t)
	ctx := context.Background()
	seedQuestion(t, st, "Q1", "owner")
	entryID, err := wf.RequestEdit(ctx, user("C"), "Q1")
	require.NoError(t, err)

	err = wf.Resolve(ctx, user("C"), entryID, true)
	require.ErrorIs(t, err, apperr.ErrForbidden)
}

func TestApprovalUnlocksEdit(t *testing.T) {
	wf, st, resolver := setup(t)
	ctx := context.Background()
	q := seedQuestion(t, st, "Q1", "owner")
	requester := user("C")

	canEdit, err := resolver.CanEdit(ctx, requester, q)
	require.NoError(t, err)
	require.False(t, canEdit)

	entryID, err := wf.RequestEdit(ctx, requester, "Q1")
	require.NoError(t, err)

	// still nothing while pending
	canEdit, err = resolver.CanEdit(ctx, requester, q)
	require.NoError(t, err)
	require.False(t, canEdit)

	require.NoError(t, wf.Resolve(ctx, user("owner"), entryID, true))

	// effective on the next evaluation, no propagation delay
	canEdit, err = resolver.CanEdit(ctx, requester, q)
	require.NoError(t, err)
	require.True(t, canEdit)

	entry, err := st.AclByID(ctx, entryID)
	require.NoError(t, err)
	require.Equal(t, models.StatusApproved, entry.Status)
	require.NotNil(t, entry.ApproverID)
	require.Equal(t, "owner", *entry.ApproverID)
	require.Nil(t, entry.PendingKey)
}

func TestRejectionKeepsEditDenied(t *testing.T) {
	wf, st, resolver := setup(t)
	ctx := context.Background()
	q := seedQuestion(t, st, "Q1", "owner")
	requester := user("C")

	entryID, err := wf.RequestEdit(ctx, requester, "Q1")
	require.NoError(t, err)
	require.NoError(t, wf.Resolve(ctx, user("owner"), entryID, false))

	canEdit, err := resolver.CanEdit(ctx, requester, q)
	require.NoError(t, err)
	require.False(t, canEdit)
}

func TestResolvingTerminalEntryFails(t *testing.T) {
	wf, st, _ := setup(t)
	ctx := context.Background()
	seedQuestion(t, st, "Q1", "owner")

	entryID, err := wf.RequestEdit(ctx, user("C"), "Q1")
	require.NoError(t, err)
	require.NoError(t, wf.Resolve(ctx, user("owner"), entryID, false))

	before, err := st.AclByID(ctx, entryID)
	require.NoError(t, err)

	err = wf.Resolve(ctx, user("owner"), entryID, true)
	require.ErrorIs(t, err, apperr.ErrInvalidTransition)

	after, err := st.AclByID(ctx, entryID)
	require.NoError(t, err)
	require.Equal(t, before.Status, after.Status)
	require.Equal(t, *before.ApproverID, *after.ApproverID)
}
