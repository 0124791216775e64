package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"qbank/internal/auth"
)

// UserPermissions returns the caller's resolved identity: privilege tier
// and active org bindings with their path snapshots.
func UserPermissions() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := auth.CurrentUser(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		bindings := make([]gin.H, 0, len(user.Bindings))
		for _, b := range user.Bindings {
			bindings = append(bindings, gin.H{
				"org_id":     b.OrgID,
				"path":       b.Path.String(),
				"role":       b.RoleName,
				"tier":       b.Tier,
				"relation":   b.Relation,
				"can_author": b.CanAuthor,
			})
		}
		c.JSON(http.StatusOK, gin.H{
			"user": gin.H{
				"id":          user.ID,
				"name":        user.Name,
				"email":       user.Email,
				"type":        user.Type,
				"super_admin": user.SuperAdmin,
				"can_author":  user.CanAuthor(),
			},
			"bindings": bindings,
		})
	}
}
