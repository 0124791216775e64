package identity_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"qbank/internal/apperr"
	"qbank/internal/identity"
	"qbank/internal/models"
	"qbank/internal/store"
)

func strPtr(s string) *string { return &s }

func TestResolveUnknownUser(t *testing.T) {
	svc := identity.NewService(store.NewMemoryStore())
	_, err := svc.Resolve(context.Background(), "nobody")
	require.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestResolveBuildsBindings(t *testing.T) {
	st := store.NewMemoryStore()
	ctx := context.Background()

	st.AddUser(&models.User{ID: "U003", Email: "li@demo.school", Name: "Teacher Li",
		Type: models.UserTeacher, Status: models.UserActive})
	st.AddRole(&models.Role{ID: "R005", Name: "Subject Teacher", Slug: "subject-teacher",
		Tier: models.TierOrdinary, CanAuthor: true})

	past := time.Now().Add(-time.Hour)
	require.NoError(t, st.EnsureBinding(ctx, &models.UserOrgBinding{
		UserID: "U003", OrgID: "1111", PathSnapshot: "/1000/1100/1110/1111",
		RoleID: strPtr("R005"), RelationType: models.RelationPrimary,
	}))
	// expired binding must not show up
	require.NoError(t, st.EnsureBinding(ctx, &models.UserOrgBinding{
		UserID: "U003", OrgID: "1120", PathSnapshot: "/1000/1100/1120",
		RoleID: strPtr("R005"), RelationType: models.RelationTeaching, EffectiveTo: &past,
	}))

	user, err := identity.NewService(st).Resolve(ctx, "U003")
	require.NoError(t, err)
	require.Equal(t, "U003", user.ID)
	require.False(t, user.SuperAdmin)
	require.Len(t, user.Bindings, 1)

	b := user.Bindings[0]
	require.Equal(t, "1111", b.OrgID)
	require.Equal(t, "/1000/1100/1110/1111", b.Path.String())
	require.Equal(t, "Subject Teacher", b.RoleName)
	require.True(t, b.CanAuthor)
	require.True(t, user.CanAuthor())
}

func TestResolveSuperAdmin(t *testing.T) {
	st := store.NewMemoryStore()
	st.AddUser(&models.User{ID: "U001", Email: "admin@demo.school", Name: "Admin",
		Type: models.UserAdmin, Status: models.UserActive})

	user, err := identity.NewService(st).Resolve(context.Background(), "U001")
	require.NoError(t, err)
	require.True(t, user.SuperAdmin)
	require.Empty(t, user.Bindings)
}
