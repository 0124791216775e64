package httpserver

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"qbank/internal/auth"
	"qbank/internal/http/handlers"
	"qbank/internal/identity"
	"qbank/internal/service"
	"qbank/internal/store"
	"qbank/internal/workflow"
)

// Deps carries everything the router wires into handlers.
type Deps struct {
	DB        *gorm.DB
	Store     store.Store
	Identity  *identity.Service
	Questions *service.QuestionService
	Workflow  *workflow.Workflow
	JWTSecret string
}

func NewRouter(d Deps) *gin.Engine {
	r := gin.Default()

	// Public routes
	r.POST("/api/login", handlers.LoginHandler(d.Store, d.JWTSecret))
	r.POST("/api/logout", handlers.LogoutHandler())

	authMW := auth.JWT(d.Identity, d.JWTSecret)

	api := r.Group("/api", authMW)
	{
		api.GET("/user/permissions", handlers.UserPermissions())

		api.GET("/questions", handlers.ListQuestions(d.Questions))
		api.POST("/questions", handlers.CreateQuestion(d.Questions))
		api.GET("/questions/:id", handlers.GetQuestion(d.Questions))
		api.POST("/questions/:id/edit", handlers.EditQuestion(d.Questions))
		api.GET("/questions/:id/permissions", handlers.QuestionPermissions(d.Questions))

		// Edit-request workflow
		api.POST("/questions/:id/requests", handlers.RequestEdit(d.Workflow))
		api.GET("/questions/:id/requests", handlers.ListPendingRequests(d.Workflow))
		api.POST("/requests/:id/resolve", handlers.ResolveRequest(d.Workflow))

		api.GET("/statistics/overview", handlers.OverviewStatistics(d.Questions))
		api.GET("/audit", handlers.ListAudit(d.DB))
	}

	return r
}
