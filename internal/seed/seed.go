package seed

import (
	"log"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"qbank/internal/models"
)

// FirstSetup provisions a demo tenant: org tree, roles, users with bindings
// and a couple of questions with their owner grants. Every step is
// FirstOrCreate so repeated runs are no-ops.
func FirstSetup(db *gorm.DB) error {
	// -------------------------
	// 1) Org tree
	// -------------------------
	strPtr := func(s string) *string { return &s }
	nodes := []models.OrgNode{
		{ID: "1000", Name: "Demo School", Type: models.OrgTenant, Path: "/1000", Level: 1},
		{ID: "1100", Name: "Primary Section", Type: models.OrgPhase, ParentID: strPtr("1000"), Path: "/1000/1100", Level: 2},
		{ID: "1200", Name: "Junior Section", Type: models.OrgPhase, ParentID: strPtr("1000"), Path: "/1000/1200", Level: 2},
		{ID: "1110", Name: "Grade 1", Type: models.OrgGrade, ParentID: strPtr("1100"), Path: "/1000/1100/1110", Level: 3},
		{ID: "1120", Name: "Grade 2", Type: models.OrgGrade, ParentID: strPtr("1100"), Path: "/1000/1100/1120", Level: 3},
		{ID: "1111", Name: "Class 1", Type: models.OrgClass, ParentID: strPtr("1110"), Path: "/1000/1100/1110/1111", Level: 4},
	}
	for _, n := range nodes {
		tmp := n
		if err := db.Where("id = ?", tmp.ID).FirstOrCreate(&tmp).Error; err != nil {
			return err
		}
	}

	// -------------------------
	// 2) Roles
	// -------------------------
	roles := []models.Role{
		{ID: "R001", Name: "Principal", Slug: "principal", Tier: models.TierTenantAdmin, CanAuthor: true},
		{ID: "R002", Name: "Section Director", Slug: "section-director", CanAuthor: true},
		{ID: "R003", Name: "Grade Director", Slug: "grade-director", CanAuthor: true},
		{ID: "R004", Name: "Class Teacher", Slug: "class-teacher", CanAuthor: true},
		{ID: "R005", Name: "Subject Teacher", Slug: "subject-teacher", CanAuthor: true},
		{ID: "R006", Name: "Student", Slug: "student"},
	}
	for _, r := range roles {
		tmp := r
		if err := db.Where("id = ?", tmp.ID).FirstOrCreate(&tmp).Error; err != nil {
			return err
		}
	}

	// -------------------------
	// 3) Users
	// -------------------------
	const demoPass = "demo123" // change after first login
	passHash, _ := bcrypt.GenerateFromPassword([]byte(demoPass), bcrypt.DefaultCost)

	users := []models.User{
		{ID: "U001", Email: "admin@demo.school", Name: "System Admin", Type: models.UserAdmin},
		{ID: "U002", Email: "principal@demo.school", Name: "Principal Zhang", Type: models.UserTeacher},
		{ID: "U003", Email: "teacher.li@demo.school", Name: "Teacher Li", Type: models.UserTeacher},
		{ID: "U004", Email: "teacher.wang@demo.school", Name: "Teacher Wang", Type: models.UserTeacher},
		{ID: "U005", Email: "student.chen@demo.school", Name: "Student Chen", Type: models.UserStudent},
	}
	for _, u := range users {
		tmp := u
		tmp.PasswordHash = string(passHash)
		tmp.Status = models.UserActive
		if err := db.Where("id = ?", tmp.ID).FirstOrCreate(&tmp).Error; err != nil {
			return err
		}
	}

	// -------------------------
	// 4) Bindings (path snapshots copied from the nodes)
	// -------------------------
	bindings := []models.UserOrgBinding{
		{UserID: "U002", OrgID: "1000", PathSnapshot: "/1000", RoleID: strPtr("R001"), RelationType: models.RelationPrimary},
		{UserID: "U003", OrgID: "1111", PathSnapshot: "/1000/1100/1110/1111", RoleID: strPtr("R005"), RelationType: models.RelationPrimary},
		{UserID: "U003", OrgID: "1120", PathSnapshot: "/1000/1100/1120", RoleID: strPtr("R005"), RelationType: models.RelationTeaching},
		{UserID: "U004", OrgID: "1120", PathSnapshot: "/1000/1100/1120", RoleID: strPtr("R004"), RelationType: models.RelationPrimary},
		{UserID: "U005", OrgID: "1111", PathSnapshot: "/1000/1100/1110/1111", RoleID: strPtr("R006"), RelationType: models.RelationPrimary},
	}
	for _, b := range bindings {
		tmp := b
		tmp.EffectiveFrom = time.Now()
		err := db.Where("user_id = ? AND org_id = ?", tmp.UserID, tmp.OrgID).FirstOrCreate(&tmp).Error
		if err != nil {
			return err
		}
	}

	// -------------------------
	// 5) Sample questions + owner grants
	// -------------------------
	questions := []models.Question{
		{
			ID: "Q_SEED_001", Title: "Adding fractions", Type: "single-choice",
			Subject: "math", Grade: "grade-1", Difficulty: "easy",
			Content: "What is 1/2 + 1/4?", Answer: "3/4",
			OrgPath: "/1000/1100", OwnerID: "U003", Enabled: true,
		},
		{
			ID: "Q_SEED_002", Title: "Reading comprehension", Type: "essay",
			Subject: "english", Grade: "grade-2", Difficulty: "medium",
			Content: "Summarize the passage in two sentences.",
			OrgPath: "/1000/1100", OwnerID: "U004", Enabled: true,
		},
	}
	for _, q := range questions {
		tmp := q
		if err := db.Where("id = ?", tmp.ID).FirstOrCreate(&tmp).Error; err != nil {
			return err
		}
		grant := models.AclEntry{
			ID:           "ACL_SEED_" + tmp.ID,
			ResourceID:   tmp.ID,
			ResourceType: "question",
			GranteeType:  models.GranteeUser,
			GranteeID:    tmp.OwnerID,
			PermLevel:    models.PermOwner,
			Status:       models.StatusNoneRequired,
			Source:       models.SourceDefault,
		}
		if err := db.Where("id = ?", grant.ID).FirstOrCreate(&grant).Error; err != nil {
			return err
		}
	}

	log.Printf("✅ Seed OK | users=%d pass=%s | tenant=/1000 | roles=%d | questions=%d",
		len(users), demoPass, len(roles), len(questions))
	return nil
}
