package authz_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"qbank/internal/authz"
	"qbank/internal/models"
	"qbank/internal/orgtree"
	"qbank/internal/store"
)

func newResolver(t *testing.T) (*authz.Resolver, *store.MemoryStore) {
	t.Helper()
	st := store.NewMemoryStore()
	return authz.NewResolver(st, zap.NewNop()), st
}

func boundUser(id string, paths ...string) *authz.User {
	u := &authz.User{ID: id, Name: id, Type: models.UserTeacher, Status: models.UserActive}
	for _, p := range paths {
		parsed := orgtree.Parse(p)
		u.Bindings = append(u.Bindings, authz.Binding{
			OrgID:    parsed[len(parsed)-1],
			Path:     parsed,
			Relation: models.RelationPrimary,
		})
	}
	return u
}

func addQuestion(t *testing.T, st *store.MemoryStore, id, ownerID, orgPath string) *models.Question {
	t.Helper()
	q := &models.Question{
		ID: id, Title: id, Content: "content of " + id, Type: "single-choice",
		Subject: "math", Grade: "grade-1", OrgPath: orgPath, OwnerID: ownerID, Enabled: true,
	}
	grant := &models.AclEntry{
		ID: "ACL_" + id, ResourceID: id, ResourceType: "question",
		GranteeType: models.GranteeUser, GranteeID: ownerID,
		PermLevel: models.PermOwner, Status: models.StatusNoneRequired,
		Source: models.SourceDefault,
	}
	require.NoError(t, st.CreateQuestion(context.Background(), q, grant))
	return q
}

func TestSuperAdminSeesEverything(t *testing.T) {
	r, st := newResolver(t)
	ctx := context.Background()
	q := addQuestion(t, st, "Q1", "someone-else", "/9999/1")

	admin := &authz.User{ID: "root", SuperAdmin: true}
	canView, err := r.CanView(ctx, admin, q)
	require.NoError(t, err)
	require.True(t, canView)
	canEdit, err := r.CanEdit(ctx, admin, q)
	require.NoError(t, err)
	require.True(t, canEdit)
}

func TestOwnerAlwaysEdits(t *testing.T) {
	r, st := newResolver(t)
	ctx := context.Background()
	// no bindings, no extra ACL rows needed: ownership alone suffices
	q := addQuestion(t, st, "Q1", "U003", "/1000/1100")

	owner := boundUser("U003")
	canEdit, err := r.CanEdit(ctx, owner, q)
	require.NoError(t, err)
	require.True(t, canEdit)
}

func TestPathVisibilityIsBidirectional(t *testing.T) {
	r, st := newResolver(t)
	ctx := context.Background()
	q := addQuestion(t, st, "Q1", "U003", "/1000/1100")

	cases := []struct {
		name string
		user *authz.User
		want bool
	}{
		{"class binding sees phase-level share above it", boundUser("A", "/1000/1100/1110/1111"), true},
		{"sibling grade binding still under shared phase", boundUser("B", "/1000/1100/1120"), true},
		{"tenant root sees down the subtree", boundUser("C", "/1000"), true},
		{"other tenant sees nothing", boundUser("D", "/2000/2100"), false},
		{"no bindings at all", boundUser("E"), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := r.CanView(ctx, tc.user, q)
			require.NoError(t, err)
			require.Equal(t, tc.want, got)
		})
	}
}

func TestPathVisibilityNeverGrantsEdit(t *testing.T) {
	r, st := newResolver(t)
	ctx := context.Background()
	q := addQuestion(t, st, "Q1", "U003", "/1000/1100")

	viewer := boundUser("B", "/1000/1100/1120")
	canView, err := r.CanView(ctx, viewer, q)
	require.NoError(t, err)
	require.True(t, canView)

	canEdit, err := r.CanEdit(ctx, viewer, q)
	require.NoError(t, err)
	require.False(t, canEdit)
}

func TestAclOverlay(t *testing.T) {
	ctx := context.Background()

	addEntry := func(t *testing.T, st *store.MemoryStore, e models.AclEntry) {
		e.ResourceType = "question"
		require.NoError(t, st.CreateAcl(ctx, &e))
	}

	t.Run("approved edit grant elevates a stranger", func(t *testing.T) {
		r, st := newResolver(t)
		q := addQuestion(t, st, "Q1", "U003", "/1000/1100")
		addEntry(t, st, models.AclEntry{
			ID: "E1", ResourceID: q.ID, GranteeType: models.GranteeUser, GranteeID: "C",
			PermLevel: models.PermEdit, Status: models.StatusApproved,
		})
		stranger := boundUser("C", "/2000/2100")
		canEdit, err := r.CanEdit(ctx, stranger, q)
		require.NoError(t, err)
		require.True(t, canEdit)
	})

	t.Run("pending entry confers nothing", func(t *testing.T) {
		r, st := newResolver(t)
		q := addQuestion(t, st, "Q1", "U003", "/1000/1100")
		addEntry(t, st, models.AclEntry{
			ID: "E1", ResourceID: q.ID, GranteeType: models.GranteeUser, GranteeID: "C",
			PermLevel: models.PermEdit, Status: models.StatusPending,
		})
		stranger := boundUser("C", "/2000/2100")
		canView, err := r.CanView(ctx, stranger, q)
		require.NoError(t, err)
		require.False(t, canView)
	})

	t.Run("rejected entry confers nothing", func(t *testing.T) {
		r, st := newResolver(t)
		q := addQuestion(t, st, "Q1", "U003", "/1000/1100")
		addEntry(t, st, models.AclEntry{
			ID: "E1", ResourceID: q.ID, GranteeType: models.GranteeUser, GranteeID: "C",
			PermLevel: models.PermEdit, Status: models.StatusRejected,
		})
		stranger := boundUser("C", "/2000/2100")
		canEdit, err := r.CanEdit(ctx, stranger, q)
		require.NoError(t, err)
		require.False(t, canEdit)
	})

	t.Run("view-level grant does not allow edit", func(t *testing.T) {
		r, st := newResolver(t)
		q := addQuestion(t, st, "Q1", "U003", "/1000/1100")
		addEntry(t, st, models.AclEntry{
			ID: "E1", ResourceID: q.ID, GranteeType: models.GranteeUser, GranteeID: "C",
			PermLevel: models.PermView, Status: models.StatusNoneRequired,
		})
		stranger := boundUser("C", "/2000/2100")
		canView, err := r.CanView(ctx, stranger, q)
		require.NoError(t, err)
		require.True(t, canView)
		canEdit, err := r.CanEdit(ctx, stranger, q)
		require.NoError(t, err)
		require.False(t, canEdit)
	})

	t.Run("org grant by membership", func(t *testing.T) {
		r, st := newResolver(t)
		q := addQuestion(t, st, "Q1", "U003", "/1000/1100")
		addEntry(t, st, models.AclEntry{
			ID: "E1", ResourceID: q.ID, GranteeType: models.GranteeOrg, GranteeID: "2100",
			PermLevel: models.PermView, Status: models.StatusNoneRequired,
		})
		member := boundUser("C", "/2000/2100")
		canView, err := r.CanView(ctx, member, q)
		require.NoError(t, err)
		require.True(t, canView)
	})

	t.Run("org grant narrowed by scope path", func(t *testing.T) {
		r, st := newResolver(t)
		q := addQuestion(t, st, "Q1", "U003", "/1000/1100")
		addEntry(t, st, models.AclEntry{
			ID: "E1", ResourceID: q.ID, GranteeType: models.GranteeOrg, GranteeID: "other-org",
			ScopePath: "/2000/2100", PermLevel: models.PermView, Status: models.StatusNoneRequired,
		})
		inScope := boundUser("C", "/2000/2100/2110")
		canView, err := r.CanView(ctx, inScope, q)
		require.NoError(t, err)
		require.True(t, canView)

		outOfScope := boundUser("D", "/2000/2200")
		canView, err = r.CanView(ctx, outOfScope, q)
		require.NoError(t, err)
		require.False(t, canView)
	})
}

// The list filter must agree with CanView question by question.
func TestVisibleFilterMatchesCanView(t *testing.T) {
	r, st := newResolver(t)
	ctx := context.Background()

	addQuestion(t, st, "Q1", "U003", "/1000/1100")
	addQuestion(t, st, "Q2", "U009", "/2000/2100")
	addQuestion(t, st, "Q3", "viewer", "/3000")
	require.NoError(t, st.CreateAcl(ctx, &models.AclEntry{
		ID: "E1", ResourceID: "Q2", ResourceType: "question",
		GranteeType: models.GranteeUser, GranteeID: "viewer",
		PermLevel: models.PermView, Status: models.StatusApproved,
	}))

	viewer := boundUser("viewer", "/1000/1100/1110")
	listed, total, err := st.ListQuestions(ctx, r.VisibleFilter(viewer), store.ListQuery{})
	require.NoError(t, err)
	require.EqualValues(t, 3, total)

	ids := map[string]bool{}
	for _, q := range listed {
		ids[q.ID] = true
		canView, err := r.CanView(ctx, viewer, &q)
		require.NoError(t, err)
		require.True(t, canView, "listed question %s must be viewable", q.ID)
	}
	require.True(t, ids["Q1"], "path clause")
	require.True(t, ids["Q2"], "acl clause")
	require.True(t, ids["Q3"], "owner clause")
}

func TestDisabledQuestionsAreNotListed(t *testing.T) {
	r, st := newResolver(t)
	ctx := context.Background()

	q := &models.Question{
		ID: "Q1", Title: "t", Content: "c", Type: "single-choice",
		Subject: "math", Grade: "grade-1", OrgPath: "/1000", OwnerID: "U003", Enabled: false,
	}
	grant := &models.AclEntry{
		ID: "ACL_Q1", ResourceID: "Q1", ResourceType: "question",
		GranteeType: models.GranteeUser, GranteeID: "U003",
		PermLevel: models.PermOwner, Status: models.StatusNoneRequired,
	}
	require.NoError(t, st.CreateQuestion(ctx, q, grant))

	admin := &authz.User{ID: "root", SuperAdmin: true}
	_, total, err := st.ListQuestions(ctx, r.VisibleFilter(admin), store.ListQuery{})
	require.NoError(t, err)
	require.EqualValues(t, 0, total)
}
