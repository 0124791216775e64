package authz

import (
	"qbank/internal/models"
	"qbank/internal/orgtree"
)

// Filter is the visibility predicate for list queries. It is a plain value
// the store layer translates into its own query form instead of assembled
// SQL text; Matches is the reference semantics and must stay equivalent to
// Resolver.CanView for every question.
type Filter struct {
	All    bool   // super-admin: every enabled question, across tenants
	UserID string // owner clause + user-grantee ACL clause
	OrgIDs []string
	Paths  []orgtree.Path // active binding path snapshots
}

// Matches evaluates the filter in memory against one question and its ACL
// entries (any status; ineffective entries are skipped here).
func (f Filter) Matches(q *models.Question, entries []models.AclEntry) bool {
	if !q.Enabled {
		return false
	}
	if f.All {
		return true
	}
	if f.UserID != "" && q.OwnerID == f.UserID {
		return true
	}
	qPath := orgtree.Parse(q.OrgPath)
	for _, p := range f.Paths {
		if orgtree.IsAncestorOrSame(p, qPath) {
			return true
		}
	}
	for _, e := range entries {
		if e.ResourceID == q.ID && entryGrants(&e, f.UserID, f.OrgIDs, f.Paths, models.PermView) {
			return true
		}
	}
	return false
}

// entryGrants reports whether a single ACL entry confers at least level on
// a user identified by userID / org memberships / bound paths.
func entryGrants(e *models.AclEntry, userID string, orgIDs []string, paths []orgtree.Path, level models.PermLevel) bool {
	if !e.Effective() || e.PermLevel < level {
		return false
	}
	switch e.GranteeType {
	case models.GranteeUser:
		return e.GranteeID == userID
	case models.GranteeOrg:
		for _, id := range orgIDs {
			if e.GranteeID == id {
				return true
			}
		}
		if e.ScopePath != "" {
			scope := orgtree.Parse(e.ScopePath)
			for _, p := range paths {
				if orgtree.IsAncestorOrSame(scope, p) {
					return true
				}
			}
		}
	}
	return false
}
