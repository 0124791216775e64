package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"qbank/internal/auth"
	"qbank/internal/service"
	"qbank/internal/store"
)

// ListQuestions returns one page of questions visible to the caller.
func ListQuestions(svc *service.QuestionService) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := auth.CurrentUser(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
		limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
		query := store.ListQuery{
			Subject:    c.Query("subject"),
			Grade:      c.Query("grade"),
			Difficulty: c.Query("difficulty"),
			Type:       c.Query("type"),
			Page:       page,
			Limit:      limit,
		}

		questions, total, err := svc.List(c.Request.Context(), user, query)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"questions": questions,
			"total":     total,
			"page":      page,
			"limit":     limit,
		})
	}
}

// GetQuestion returns a single question the caller may view.
func GetQuestion(svc *service.QuestionService) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := auth.CurrentUser(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		q, err := svc.Get(c.Request.Context(), user, c.Param("id"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"question": q})
	}
}

// CreateQuestion inserts a new question scoped by the requested visibility.
func CreateQuestion(svc *service.QuestionService) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := auth.CurrentUser(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		var input struct {
			service.CreateInput
			Visibility string `json:"visibility"`
			CustomPath string `json:"custom_path"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if input.Visibility == "" {
			input.Visibility = string(service.VisibilityShared)
		}

		q, err := svc.Create(c.Request.Context(), user, input.CreateInput,
			service.Visibility(input.Visibility), input.CustomPath)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"question_id": q.ID, "org_path": q.OrgPath})
	}
}

// EditQuestion applies new content, either overwriting in place or forking,
// depending on the caller's rights and the overwrite flag.
func EditQuestion(svc *service.QuestionService) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := auth.CurrentUser(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		var input struct {
			Content   string `json:"content" binding:"required"`
			Overwrite bool   `json:"overwrite"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		result, err := svc.Edit(c.Request.Context(), user, c.Param("id"), input.Content, input.Overwrite)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"mode": result.Mode, "question_id": result.ID})
	}
}

// QuestionPermissions lists every grant on a question, for transparency.
func QuestionPermissions(svc *service.QuestionService) gin.HandlerFunc {
	return func(c *gin.Context) {
		entries, err := svc.ListAclEntries(c.Request.Context(), c.Param("id"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"permissions": entries})
	}
}

// OverviewStatistics returns the caller's visible-question and
// pending-request counts.
func OverviewStatistics(svc *service.QuestionService) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := auth.CurrentUser(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		stats, err := svc.Overview(c.Request.Context(), user)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"statistics": stats})
	}
}
