package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"qbank/internal/auth"
	"qbank/internal/models"
)

// ListAudit returns the audit trail, newest first, with cursor pagination.
// Super-admin only.
func ListAudit(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := auth.CurrentUser(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		if !user.SuperAdmin {
			c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			return
		}

		limit := 20
		if limitStr := c.Query("limit"); limitStr != "" {
			if parsed, err := strconv.Atoi(limitStr); err == nil && parsed > 0 && parsed <= 100 {
				limit = parsed
			}
		}

		var afterID int64
		if cursorStr := c.Query("after_id"); cursorStr != "" {
			if parsed, err := strconv.ParseInt(cursorStr, 10, 64); err == nil && parsed > 0 {
				afterID = parsed
			}
		}

		search := strings.TrimSpace(c.Query("q"))

		query := db.Model(&models.AuditLog{}).Order("id DESC")
		if afterID > 0 {
			query = query.Where("id < ?", afterID)
		}
		if search != "" {
			like := "%" + search + "%"
			query = query.Where("(actor_name LIKE ? OR action LIKE ? OR target_type LIKE ? OR target_id LIKE ?)",
				like, like, like, like)
		}

		var logs []models.AuditLog
		if err := query.Limit(limit + 1).Find(&logs).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		var nextCursor *int64
		if len(logs) > limit {
			next := logs[limit].ID
			logs = logs[:limit]
			nextCursor = &next
		}

		c.JSON(http.StatusOK, gin.H{
			"logs":        logs,
			"next_cursor": nextCursor,
		})
	}
}
