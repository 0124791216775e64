package store

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"qbank/internal/apperr"
	"qbank/internal/authz"
	"qbank/internal/models"
)

// MemoryStore is the in-memory Store used by unit tests. It mirrors the
// GormStore contract, including the pending-key uniqueness check.
type MemoryStore struct {
	mu        sync.RWMutex
	orgNodes  map[string]*models.OrgNode
	users     map[string]*models.User
	roles     map[string]*models.Role
	bindings  []*models.UserOrgBinding
	acl       map[string]*models.AclEntry
	questions map[string]*models.Question
	nextID    int64
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		orgNodes:  make(map[string]*models.OrgNode),
		users:     make(map[string]*models.User),
		roles:     make(map[string]*models.Role),
		acl:       make(map[string]*models.AclEntry),
		questions: make(map[string]*models.Question),
	}
}

// AddUser and AddRole are test fixtures; the production path creates users
// out of band.
func (s *MemoryStore) AddUser(u *models.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *u
	s.users[u.ID] = &cp
}

func (s *MemoryStore) AddRole(r *models.Role) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *r
	s.roles[r.ID] = &cp
}

func (s *MemoryStore) OrgNodeByID(ctx context.Context, id string) (*models.OrgNode, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	node, ok := s.orgNodes[id]
	if !ok {
		return nil, fmt.Errorf("org node %s: %w", id, apperr.ErrNotFound)
	}
	cp := *node
	return &cp, nil
}

func (s *MemoryStore) OrgNodeByPath(ctx context.Context, path string) (*models.OrgNode, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, node := range s.orgNodes {
		if node.Path == path {
			cp := *node
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("org node at %s: %w", path, apperr.ErrNotFound)
}

func (s *MemoryStore) OrgNodesByPrefix(ctx context.Context, prefix string) ([]models.OrgNode, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.OrgNode
	for _, node := range s.orgNodes {
		if node.Path == prefix || strings.HasPrefix(node.Path, prefix+"/") {
			out = append(out, *node)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out, nil
}

func (s *MemoryStore) EnsureOrgNode(ctx context.Context, node *models.OrgNode) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.orgNodes[node.ID]; ok {
		*node = *existing
		return nil
	}
	node.CreatedAt = time.Now()
	cp := *node
	s.orgNodes[node.ID] = &cp
	return nil
}

func (s *MemoryStore) UserByID(ctx context.Context, id string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.users[id]
	if !ok {
		return nil, fmt.Errorf("user %s: %w", id, apperr.ErrNotFound)
	}
	cp := *user
	return &cp, nil
}

func (s *MemoryStore) UserByEmail(ctx context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, user := range s.users {
		if user.Email == email {
			cp := *user
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("user %s: %w", email, apperr.ErrNotFound)
}

func (s *MemoryStore) ActiveBindings(ctx context.Context, userID string, now time.Time) ([]models.UserOrgBinding, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.UserOrgBinding
	for _, b := range s.bindings {
		if b.UserID != userID || !b.Active(now) {
			continue
		}
		cp := *b
		if org, ok := s.orgNodes[b.OrgID]; ok {
			orgCp := *org
			cp.Org = &orgCp
		}
		if b.RoleID != nil {
			if role, ok := s.roles[*b.RoleID]; ok {
				roleCp := *role
				cp.Role = &roleCp
			}
		}
		out = append(out, cp)
	}
	return out, nil
}

func (s *MemoryStore) EnsureBinding(ctx context.Context, b *models.UserOrgBinding) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.bindings {
		if existing.UserID == b.UserID && existing.OrgID == b.OrgID {
			*b = *existing
			return nil
		}
	}
	s.nextID++
	b.ID = s.nextID
	b.CreatedAt = time.Now()
	cp := *b
	s.bindings = append(s.bindings, &cp)
	return nil
}

func (s *MemoryStore) AclForResource(ctx context.Context, resourceID string, statuses ...models.ApprovalStatus) ([]models.AclEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.AclEntry
	for _, e := range s.acl {
		if e.ResourceID != resourceID {
			continue
		}
		if len(statuses) > 0 && !statusIn(e.Status, statuses) {
			continue
		}
		out = append(out, *e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *MemoryStore) AclByID(ctx context.Context, id string) (*models.AclEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.acl[id]
	if !ok {
		return nil, fmt.Errorf("acl entry %s: %w", id, apperr.ErrNotFound)
	}
	cp := *entry
	return &cp, nil
}

func (s *MemoryStore) CreateAcl(ctx context.Context, e *models.AclEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e.PendingKey != nil {
		for _, existing := range s.acl {
			if existing.PendingKey != nil && *existing.PendingKey == *e.PendingKey {
				return fmt.Errorf("acl entry for %s/%s: %w", e.ResourceID, e.GranteeID, apperr.ErrConflict)
			}
		}
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	cp := *e
	s.acl[e.ID] = &cp
	return nil
}

func (s *MemoryStore) SaveAcl(ctx context.Context, e *models.AclEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *e
	cp.UpdatedAt = time.Now()
	s.acl[e.ID] = &cp
	return nil
}

func (s *MemoryStore) QuestionByID(ctx context.Context, id string) (*models.Question, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	q, ok := s.questions[id]
	if !ok {
		return nil, fmt.Errorf("question %s: %w", id, apperr.ErrNotFound)
	}
	cp := *q
	return &cp, nil
}

func (s *MemoryStore) CreateQuestion(ctx context.Context, q *models.Question, ownerGrant *models.AclEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if q.CreatedAt.IsZero() {
		q.CreatedAt = time.Now()
	}
	if ownerGrant.CreatedAt.IsZero() {
		ownerGrant.CreatedAt = time.Now()
	}
	qCp := *q
	gCp := *ownerGrant
	s.questions[q.ID] = &qCp
	s.acl[ownerGrant.ID] = &gCp
	return nil
}

func (s *MemoryStore) UpdateQuestionContent(ctx context.Context, id, content string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	q, ok := s.questions[id]
	if !ok {
		return fmt.Errorf("question %s: %w", id, apperr.ErrNotFound)
	}
	q.Content = content
	q.UpdatedAt = time.Now()
	return nil
}

func (s *MemoryStore) ListQuestions(ctx context.Context, f authz.Filter, q ListQuery) ([]models.Question, int64, error) {
	q = q.normalized()
	matched := s.visible(f)

	var filtered []models.Question
	for _, question := range matched {
		if q.Subject != "" && question.Subject != q.Subject {
			continue
		}
		if q.Grade != "" && question.Grade != q.Grade {
			continue
		}
		if q.Difficulty != "" && question.Difficulty != q.Difficulty {
			continue
		}
		if q.Type != "" && question.Type != q.Type {
			continue
		}
		filtered = append(filtered, question)
	}

	total := int64(len(filtered))
	start := (q.Page - 1) * q.Limit
	if start >= len(filtered) {
		return nil, total, nil
	}
	end := start + q.Limit
	if end > len(filtered) {
		end = len(filtered)
	}
	return filtered[start:end], total, nil
}

func (s *MemoryStore) CountQuestions(ctx context.Context, f authz.Filter) (int64, error) {
	return int64(len(s.visible(f))), nil
}

func (s *MemoryStore) CountPendingForOwner(ctx context.Context, ownerID string) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var total int64
	for _, e := range s.acl {
		if e.Status != models.StatusPending || e.PermLevel != models.PermEdit {
			continue
		}
		if q, ok := s.questions[e.ResourceID]; ok && q.OwnerID == ownerID {
			total++
		}
	}
	return total, nil
}

func (s *MemoryStore) visible(f authz.Filter) []models.Question {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.Question
	for _, q := range s.questions {
		var entries []models.AclEntry
		for _, e := range s.acl {
			if e.ResourceID == q.ID {
				entries = append(entries, *e)
			}
		}
		if f.Matches(q, entries) {
			out = append(out, *q)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

func statusIn(status models.ApprovalStatus, statuses []models.ApprovalStatus) bool {
	for _, s := range statuses {
		if status == s {
			return true
		}
	}
	return false
}
