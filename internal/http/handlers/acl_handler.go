package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"qbank/internal/auth"
	"qbank/internal/workflow"
)

// RequestEdit files an edit request on a question. Any authenticated user
// may ask; duplicates while a request is open come back as 409.
func RequestEdit(wf *workflow.Workflow) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := auth.CurrentUser(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		entryID, err := wf.RequestEdit(c.Request.Context(), user, c.Param("id"))
		if err != nil {
			if workflow.IsDuplicate(err) {
				c.JSON(http.StatusConflict, gin.H{"error": "edit request already open or granted"})
				return
			}
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"entry_id": entryID})
	}
}

// ListPendingRequests shows the open edit requests on a question to its
// owner (or a super-admin).
func ListPendingRequests(wf *workflow.Workflow) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := auth.CurrentUser(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		entries, err := wf.ListPending(c.Request.Context(), user, c.Param("id"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"requests": entries})
	}
}

// ResolveRequest approves or rejects one pending edit request.
func ResolveRequest(wf *workflow.Workflow) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := auth.CurrentUser(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		var input struct {
			Action string `json:"action" binding:"required,oneof=approve reject"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		err := wf.Resolve(c.Request.Context(), user, c.Param("id"), input.Action == "approve")
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "request " + input.Action + "d"})
	}
}
