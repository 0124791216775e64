package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"qbank/internal/apperr"
	"qbank/internal/authz"
	"qbank/internal/models"
)

// GormStore implements Store on a gorm MySQL connection. The connection
// must be opened with TranslateError so duplicate-key violations surface as
// gorm.ErrDuplicatedKey.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) OrgNodeByID(ctx context.Context, id string) (*models.OrgNode, error) {
	var node models.OrgNode
	if err := s.db.WithContext(ctx).First(&node, "id = ?", id).Error; err != nil {
		return nil, translate(err, "org node %s", id)
	}
	return &node, nil
}

func (s *GormStore) OrgNodeByPath(ctx context.Context, path string) (*models.OrgNode, error) {
	var node models.OrgNode
	if err := s.db.WithContext(ctx).First(&node, "path = ?", path).Error; err != nil {
		return nil, translate(err, "org node at %s", path)
	}
	return &node, nil
}

func (s *GormStore) OrgNodesByPrefix(ctx context.Context, prefix string) ([]models.OrgNode, error) {
	var nodes []models.OrgNode
	err := s.db.WithContext(ctx).
		Where("path = ? OR path LIKE ?", prefix, prefix+"/%").
		Order("path").
		Find(&nodes).Error
	if err != nil {
		return nil, fmt.Errorf("list org nodes under %s: %w", prefix, err)
	}
	return nodes, nil
}

func (s *GormStore) EnsureOrgNode(ctx context.Context, node *models.OrgNode) error {
	err := s.db.WithContext(ctx).Where("id = ?", node.ID).FirstOrCreate(node).Error
	if err != nil {
		return fmt.Errorf("ensure org node %s: %w", node.ID, err)
	}
	return nil
}

func (s *GormStore) UserByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, translate(err, "user %s", id)
	}
	return &user, nil
}

func (s *GormStore) UserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "email = ?", email).Error; err != nil {
		return nil, translate(err, "user %s", email)
	}
	return &user, nil
}

func (s *GormStore) ActiveBindings(ctx context.Context, userID string, now time.Time) ([]models.UserOrgBinding, error) {
	var bindings []models.UserOrgBinding
	err := s.db.WithContext(ctx).
		Preload("Org").Preload("Role").
		Where("user_id = ? AND (effective_to IS NULL OR effective_to > ?)", userID, now).
		Find(&bindings).Error
	if err != nil {
		return nil, fmt.Errorf("list bindings for %s: %w", userID, err)
	}
	return bindings, nil
}

func (s *GormStore) EnsureBinding(ctx context.Context, b *models.UserOrgBinding) error {
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND org_id = ?", b.UserID, b.OrgID).
		FirstOrCreate(b).Error
	if err != nil {
		return fmt.Errorf("ensure binding %s -> %s: %w", b.UserID, b.OrgID, err)
	}
	return nil
}

func (s *GormStore) AclForResource(ctx context.Context, resourceID string, statuses ...models.ApprovalStatus) ([]models.AclEntry, error) {
	tx := s.db.WithContext(ctx).Where("resource_id = ? AND resource_type = ?", resourceID, "question")
	if len(statuses) > 0 {
		tx = tx.Where("status IN ?", statuses)
	}
	var entries []models.AclEntry
	if err := tx.Order("created_at").Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("list acl for %s: %w", resourceID, err)
	}
	return entries, nil
}

func (s *GormStore) AclByID(ctx context.Context, id string) (*models.AclEntry, error) {
	var entry models.AclEntry
	if err := s.db.WithContext(ctx).First(&entry, "id = ?", id).Error; err != nil {
		return nil, translate(err, "acl entry %s", id)
	}
	return &entry, nil
}

func (s *GormStore) CreateAcl(ctx context.Context, e *models.AclEntry) error {
	if err := s.db.WithContext(ctx).Create(e).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("acl entry for %s/%s: %w", e.ResourceID, e.GranteeID, apperr.ErrConflict)
		}
		return fmt.Errorf("create acl entry: %w", err)
	}
	return nil
}

func (s *GormStore) SaveAcl(ctx context.Context, e *models.AclEntry) error {
	if err := s.db.WithContext(ctx).Save(e).Error; err != nil {
		return fmt.Errorf("save acl entry %s: %w", e.ID, err)
	}
	return nil
}

func (s *GormStore) QuestionByID(ctx context.Context, id string) (*models.Question, error) {
	var q models.Question
	if err := s.db.WithContext(ctx).First(&q, "id = ?", id).Error; err != nil {
		return nil, translate(err, "question %s", id)
	}
	return &q, nil
}

func (s *GormStore) CreateQuestion(ctx context.Context, q *models.Question, ownerGrant *models.AclEntry) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(q).Error; err != nil {
			return err
		}
		return tx.Create(ownerGrant).Error
	})
	if err != nil {
		return fmt.Errorf("create question: %w", err)
	}
	return nil
}

func (s *GormStore) UpdateQuestionContent(ctx context.Context, id, content string) error {
	res := s.db.WithContext(ctx).Model(&models.Question{}).Where("id = ?", id).Update("content", content)
	if res.Error != nil {
		return fmt.Errorf("update question %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("question %s: %w", id, apperr.ErrNotFound)
	}
	return nil
}

func (s *GormStore) ListQuestions(ctx context.Context, f authz.Filter, q ListQuery) ([]models.Question, int64, error) {
	q = q.normalized()
	tx := s.visibleQuestions(ctx, f)
	if q.Subject != "" {
		tx = tx.Where("subject = ?", q.Subject)
	}
	if q.Grade != "" {
		tx = tx.Where("grade = ?", q.Grade)
	}
	if q.Difficulty != "" {
		tx = tx.Where("difficulty = ?", q.Difficulty)
	}
	if q.Type != "" {
		tx = tx.Where("type = ?", q.Type)
	}

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count questions: %w", err)
	}

	var questions []models.Question
	err := tx.Order("created_at DESC").
		Offset((q.Page - 1) * q.Limit).
		Limit(q.Limit).
		Find(&questions).Error
	if err != nil {
		return nil, 0, fmt.Errorf("list questions: %w", err)
	}
	return questions, total, nil
}

func (s *GormStore) CountQuestions(ctx context.Context, f authz.Filter) (int64, error) {
	var total int64
	if err := s.visibleQuestions(ctx, f).Count(&total).Error; err != nil {
		return 0, fmt.Errorf("count questions: %w", err)
	}
	return total, nil
}

func (s *GormStore) CountPendingForOwner(ctx context.Context, ownerID string) (int64, error) {
	var total int64
	err := s.db.WithContext(ctx).Model(&models.AclEntry{}).
		Joins("JOIN questions q ON q.id = acl_entries.resource_id").
		Where("q.owner_id = ? AND acl_entries.status = ? AND acl_entries.perm_level = ?",
			ownerID, models.StatusPending, models.PermEdit).
		Count(&total).Error
	if err != nil {
		return 0, fmt.Errorf("count pending requests: %w", err)
	}
	return total, nil
}

// visibleQuestions translates an authz.Filter into a question query. Path
// comparisons stay segment-safe because serialized paths are /-delimited:
// a prefix match is only ever "equal" or "equal plus a slash".
func (s *GormStore) visibleQuestions(ctx context.Context, f authz.Filter) *gorm.DB {
	tx := s.db.WithContext(ctx).Model(&models.Question{}).Where("enabled = ?", true)
	if f.All {
		return tx
	}

	var conds []string
	var args []interface{}

	if f.UserID != "" {
		conds = append(conds, "owner_id = ?")
		args = append(args, f.UserID)
	}
	for _, p := range f.Paths {
		ps := p.String()
		conds = append(conds, "(org_path = ? OR org_path LIKE ? OR ? LIKE CONCAT(org_path, '/%'))")
		args = append(args, ps, ps+"/%", ps)
	}

	aclConds := []string{"(a.grantee_type = 'user' AND a.grantee_id = ?)"}
	aclArgs := []interface{}{f.UserID}
	if len(f.OrgIDs) > 0 {
		aclConds = append(aclConds, "(a.grantee_type = 'org' AND a.grantee_id IN ?)")
		aclArgs = append(aclArgs, f.OrgIDs)
	}
	for _, p := range f.Paths {
		ps := p.String()
		aclConds = append(aclConds,
			"(a.grantee_type = 'org' AND a.scope_path <> '' AND (a.scope_path = ? OR a.scope_path LIKE ? OR ? LIKE CONCAT(a.scope_path, '/%')))")
		aclArgs = append(aclArgs, ps, ps+"/%", ps)
	}
	conds = append(conds, fmt.Sprintf(
		"EXISTS (SELECT 1 FROM acl_entries a WHERE a.resource_id = questions.id AND a.resource_type = 'question' AND a.status IN ('%s','%s') AND (%s))",
		models.StatusNoneRequired, models.StatusApproved, strings.Join(aclConds, " OR ")))
	args = append(args, aclArgs...)

	return tx.Where("("+strings.Join(conds, " OR ")+")", args...)
}

func translate(err error, format string, a ...interface{}) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf(format+": %w", append(a, apperr.ErrNotFound)...)
	}
	return fmt.Errorf(format+": %w", append(a, err)...)
}
