package authz

import (
	"qbank/internal/models"
	"qbank/internal/orgtree"
)

// Binding is one resolved, currently-active org attachment of a user.
type Binding struct {
	OrgID     string
	Path      orgtree.Path // snapshot taken at bind time
	RoleID    string
	RoleName  string
	Tier      models.RoleTier
	CanAuthor bool
	Relation  models.RelationType
}

// User is a fully-resolved caller identity: privilege tier plus active
// bindings. The transport layer builds it before invoking the core; nothing
// in this package reads ambient session state.
type User struct {
	ID         string
	Name       string
	Email      string
	Type       models.UserType
	Status     models.UserStatus
	SuperAdmin bool
	Bindings   []Binding
}

func (u *User) OrgIDs() []string {
	ids := make([]string, 0, len(u.Bindings))
	for _, b := range u.Bindings {
		ids = append(ids, b.OrgID)
	}
	return ids
}

func (u *User) Paths() []orgtree.Path {
	paths := make([]orgtree.Path, 0, len(u.Bindings))
	for _, b := range u.Bindings {
		paths = append(paths, b.Path)
	}
	return paths
}

// ShortestBinding returns the active binding with the fewest path segments,
// i.e. the highest org attachment. Used to compute default resource scope.
func (u *User) ShortestBinding() (Binding, bool) {
	if len(u.Bindings) == 0 {
		return Binding{}, false
	}
	best := u.Bindings[0]
	for _, b := range u.Bindings[1:] {
		if len(b.Path) < len(best.Path) {
			best = b
		}
	}
	return best, true
}

// CanAuthor reports whether the user may create questions: admins and
// teachers always can, otherwise any bound role with authoring rights.
func (u *User) CanAuthor() bool {
	if u.Type == models.UserAdmin || u.Type == models.UserTeacher {
		return true
	}
	for _, b := range u.Bindings {
		if b.CanAuthor {
			return true
		}
	}
	return false
}
