// Package service implements question creation with computed default scope
// and the copy-on-write edit operation the resolver gates.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"qbank/internal/apperr"
	"qbank/internal/audit"
	"qbank/internal/authz"
	"qbank/internal/models"
	"qbank/internal/orgtree"
	"qbank/internal/store"
)

type Visibility string

const (
	VisibilityShared  Visibility = "shared"
	VisibilityPrivate Visibility = "private"
	VisibilityCustom  Visibility = "custom"
)

type EditMode string

const (
	ModeOverwrite EditMode = "overwrite"
	ModeFork      EditMode = "fork"
)

type EditResult struct {
	Mode EditMode `json:"mode"`
	ID   string   `json:"id"`
}

type CreateInput struct {
	Title      string `json:"title"`
	Content    string `json:"content"`
	Type       string `json:"type"`
	Subject    string `json:"subject"`
	Grade      string `json:"grade"`
	Difficulty string `json:"difficulty"`
	Answer     string `json:"answer"`
	Analysis   string `json:"analysis"`
}

type Stats struct {
	VisibleQuestions int64 `json:"visible_questions"`
	PendingRequests  int64 `json:"pending_requests"`
}

type QuestionService struct {
	store         store.Store
	resolver      *authz.Resolver
	audit         audit.Sink
	log           *zap.Logger
	defaultTenant string
}

func NewQuestionService(s store.Store, r *authz.Resolver, sink audit.Sink, log *zap.Logger, defaultTenant string) *QuestionService {
	return &QuestionService{store: s, resolver: r, audit: sink, log: log, defaultTenant: defaultTenant}
}

// Create inserts a question scoped to the computed org path, together with
// the owner's self-grant, as one atomic unit.
func (s *QuestionService) Create(ctx context.Context, user *authz.User, in CreateInput, vis Visibility, customPath string) (*models.Question, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}
	if !user.CanAuthor() {
		return nil, fmt.Errorf("user %s may not create questions: %w", user.ID, apperr.ErrForbidden)
	}

	orgPath, err := s.resolveScope(ctx, user, vis, customPath)
	if err != nil {
		return nil, err
	}

	if in.Difficulty == "" {
		in.Difficulty = "medium"
	}
	q := &models.Question{
		ID:         "Q_" + uuid.NewString(),
		Title:      in.Title,
		Content:    in.Content,
		Type:       in.Type,
		Subject:    in.Subject,
		Grade:      in.Grade,
		Difficulty: in.Difficulty,
		Answer:     in.Answer,
		Analysis:   in.Analysis,
		OrgPath:    orgPath.String(),
		OwnerID:    user.ID,
		Enabled:    true,
	}
	grant := ownerGrant(q.ID, user.ID)
	if err := s.store.CreateQuestion(ctx, q, grant); err != nil {
		return nil, err
	}

	s.audit.Record(ctx, audit.Event{
		ActorID:    user.ID,
		ActorName:  user.Name,
		Action:     "question.create",
		TargetType: "question",
		TargetID:   q.ID,
		Outcome:    "success",
		Detail:     fmt.Sprintf("%s created question %s in %s", user.Name, q.Title, q.OrgPath),
	})
	s.log.Info("question created",
		zap.String("question", q.ID),
		zap.String("owner", user.ID),
		zap.String("org_path", q.OrgPath))
	return q, nil
}

// Edit applies newContent to the question. Overwrite happens only when it
// was requested and the user holds edit rights; every other combination
// degrades to a fork owned by the caller. The fork path never fails for
// lack of permission and never touches the source row.
func (s *QuestionService) Edit(ctx context.Context, user *authz.User, questionID, newContent string, overwrite bool) (EditResult, error) {
	q, err := s.store.QuestionByID(ctx, questionID)
	if err != nil {
		return EditResult{}, err
	}

	allowed, err := s.resolver.CanEdit(ctx, user, q)
	if err != nil {
		return EditResult{}, err
	}

	if overwrite && allowed {
		if err := s.store.UpdateQuestionContent(ctx, q.ID, newContent); err != nil {
			return EditResult{}, err
		}
		s.audit.Record(ctx, audit.Event{
			ActorID:    user.ID,
			ActorName:  user.Name,
			Action:     "question.overwrite",
			TargetType: "question",
			TargetID:   q.ID,
			Outcome:    "success",
			Detail:     fmt.Sprintf("%s overwrote question %s", user.Name, q.Title),
		})
		return EditResult{Mode: ModeOverwrite, ID: q.ID}, nil
	}

	fork := *q
	fork.ID = "Q_" + uuid.NewString()
	fork.Content = newContent
	fork.OwnerID = user.ID
	fork.ParentID = &q.ID
	fork.CreatedAt = time.Time{}
	fork.UpdatedAt = time.Time{}
	fork.Owner = nil
	fork.Parent = nil
	grant := ownerGrant(fork.ID, user.ID)
	if err := s.store.CreateQuestion(ctx, &fork, grant); err != nil {
		return EditResult{}, err
	}

	s.audit.Record(ctx, audit.Event{
		ActorID:    user.ID,
		ActorName:  user.Name,
		Action:     "question.fork",
		TargetType: "question",
		TargetID:   fork.ID,
		Outcome:    "success",
		Detail:     fmt.Sprintf("%s forked question %s", user.Name, q.Title),
		Metadata:   map[string]interface{}{"parent_id": q.ID},
	})
	return EditResult{Mode: ModeFork, ID: fork.ID}, nil
}

// Get returns a question the user may view and records the read.
func (s *QuestionService) Get(ctx context.Context, user *authz.User, questionID string) (*models.Question, error) {
	q, err := s.store.QuestionByID(ctx, questionID)
	if err != nil {
		return nil, err
	}
	ok, err := s.resolver.CanView(ctx, user, q)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("question %s is not visible to %s: %w", q.ID, user.ID, apperr.ErrForbidden)
	}
	s.audit.Record(ctx, audit.Event{
		ActorID:    user.ID,
		ActorName:  user.Name,
		Action:     "question.view",
		TargetType: "question",
		TargetID:   q.ID,
		Outcome:    "success",
		Detail:     fmt.Sprintf("%s viewed question %s", user.Name, q.Title),
	})
	return q, nil
}

// List returns one page of questions visible to the user.
func (s *QuestionService) List(ctx context.Context, user *authz.User, q store.ListQuery) ([]models.Question, int64, error) {
	return s.store.ListQuestions(ctx, s.resolver.VisibleFilter(user), q)
}

// ListAclEntries discloses every grant on a question, any status, for
// transparency UIs.
func (s *QuestionService) ListAclEntries(ctx context.Context, questionID string) ([]models.AclEntry, error) {
	if _, err := s.store.QuestionByID(ctx, questionID); err != nil {
		return nil, err
	}
	return s.store.AclForResource(ctx, questionID)
}

// Overview returns the caller's visible-question and pending-request counts.
func (s *QuestionService) Overview(ctx context.Context, user *authz.User) (Stats, error) {
	visible, err := s.store.CountQuestions(ctx, s.resolver.VisibleFilter(user))
	if err != nil {
		return Stats{}, err
	}
	pending, err := s.store.CountPendingForOwner(ctx, user.ID)
	if err != nil {
		return Stats{}, err
	}
	return Stats{VisibleQuestions: visible, PendingRequests: pending}, nil
}

// resolveScope computes the org path a new question lands in.
func (s *QuestionService) resolveScope(ctx context.Context, user *authz.User, vis Visibility, customPath string) (orgtree.Path, error) {
	switch vis {
	case VisibilityShared, VisibilityPrivate, VisibilityCustom:
	default:
		return nil, fmt.Errorf("unknown visibility %q: %w", vis, apperr.ErrValidation)
	}

	base, err := s.defaultScope(ctx, user)
	if err != nil {
		return nil, err
	}

	switch vis {
	case VisibilityPrivate:
		return s.ensurePrivateNode(ctx, user, base.Tenant())
	case VisibilityCustom:
		p := orgtree.Parse(customPath)
		if _, err := s.store.OrgNodeByPath(ctx, p.String()); err != nil {
			if errors.Is(err, apperr.ErrNotFound) {
				// Unknown custom path is an expected condition; fall back to
				// the computed default rather than failing the create.
				s.log.Info("custom path unknown, using default scope",
					zap.String("user", user.ID),
					zap.String("custom_path", customPath),
					zap.String("default", base.String()))
				return base, nil
			}
			return nil, err
		}
		return p, nil
	default:
		return base, nil
	}
}

// defaultScope is the user's shortest binding path truncated to tenant+phase
// when an org node exists there, else the tenant root. A user with no
// binding at all gets a tenant-root node and binding upserted first so
// scoping can proceed.
func (s *QuestionService) defaultScope(ctx context.Context, user *authz.User) (orgtree.Path, error) {
	binding, ok := user.ShortestBinding()
	if !ok {
		bootstrapped, err := s.bootstrapTenantBinding(ctx, user)
		if err != nil {
			return nil, err
		}
		binding = bootstrapped
	}

	truncated := binding.Path.Truncate(2)
	if len(truncated) == 2 {
		if _, err := s.store.OrgNodeByPath(ctx, truncated.String()); err == nil {
			return truncated, nil
		} else if !errors.Is(err, apperr.ErrNotFound) {
			return nil, err
		}
	}
	return binding.Path.Truncate(1), nil
}

func (s *QuestionService) bootstrapTenantBinding(ctx context.Context, user *authz.User) (authz.Binding, error) {
	root := &models.OrgNode{
		ID:    s.defaultTenant,
		Name:  "Tenant " + s.defaultTenant,
		Type:  models.OrgTenant,
		Path:  "/" + s.defaultTenant,
		Level: 1,
	}
	if err := s.store.EnsureOrgNode(ctx, root); err != nil {
		return authz.Binding{}, err
	}
	b := &models.UserOrgBinding{
		UserID:        user.ID,
		OrgID:         root.ID,
		PathSnapshot:  root.Path,
		RelationType:  models.RelationPrimary,
		EffectiveFrom: time.Now(),
	}
	if err := s.store.EnsureBinding(ctx, b); err != nil {
		return authz.Binding{}, err
	}
	s.log.Info("bootstrapped tenant binding",
		zap.String("user", user.ID),
		zap.String("tenant", root.ID))
	binding := authz.Binding{
		OrgID:    root.ID,
		Path:     orgtree.Parse(root.Path),
		Relation: models.RelationPrimary,
	}
	user.Bindings = append(user.Bindings, binding)
	return binding, nil
}

// ensurePrivateNode lazily creates the user's private org node
// (/<tenant>/PRIVATE/<userID>) and a binding onto it. Both upserts are
// idempotent; repeated private creates reuse the same node.
func (s *QuestionService) ensurePrivateNode(ctx context.Context, user *authz.User, tenant string) (orgtree.Path, error) {
	if tenant == "" {
		tenant = s.defaultTenant
	}
	nodeID := "PRV_" + user.ID
	path := orgtree.Path{tenant, "PRIVATE", user.ID}
	node := &models.OrgNode{
		ID:    nodeID,
		Name:  "Private space of " + user.ID,
		Type:  models.OrgPrivate,
		Path:  path.String(),
		Level: len(path),
	}
	if err := s.store.EnsureOrgNode(ctx, node); err != nil {
		return nil, err
	}
	b := &models.UserOrgBinding{
		UserID:        user.ID,
		OrgID:         nodeID,
		PathSnapshot:  node.Path,
		RelationType:  models.RelationPrimary,
		EffectiveFrom: time.Now(),
	}
	if err := s.store.EnsureBinding(ctx, b); err != nil {
		return nil, err
	}
	return orgtree.Parse(node.Path), nil
}

func ownerGrant(questionID, ownerID string) *models.AclEntry {
	return &models.AclEntry{
		ID:           "ACL_" + uuid.NewString(),
		ResourceID:   questionID,
		ResourceType: "question",
		GranteeType:  models.GranteeUser,
		GranteeID:    ownerID,
		PermLevel:    models.PermOwner,
		Status:       models.StatusNoneRequired,
		Source:       models.SourceDefault,
	}
}

func validateInput(in CreateInput) error {
	missing := ""
	switch {
	case in.Title == "":
		missing = "title"
	case in.Content == "":
		missing = "content"
	case in.Type == "":
		missing = "type"
	case in.Subject == "":
		missing = "subject"
	case in.Grade == "":
		missing = "grade"
	}
	if missing != "" {
		return fmt.Errorf("%s is required: %w", missing, apperr.ErrValidation)
	}
	return nil
}
