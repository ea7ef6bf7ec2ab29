package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/yoockh/mockinterview/internal/api/handlers"
	"github.com/yoockh/mockinterview/internal/api/middleware"
	"github.com/yoockh/mockinterview/internal/utils"
)

type Deps struct {
	Interview *handlers.InterviewHandler
	Session   *handlers.SessionHandler
	Meta      *handlers.MetaHandler
	Tokens    *utils.TokenIssuer // nil disables session tokens
}

func RegisterRoutes(r *gin.Engine, d Deps) {
	r.GET("/", d.Meta.Root)
	r.GET("/health", d.Meta.Health)

	api := r.Group("/api")
	api.Use(middleware.Identity(d.Tokens))

	api.POST("/sessions/anonymous", d.Session.StartAnonymous)

	iv := api.Group("/interviews")
	iv.POST("/create", d.Interview.Create)
	iv.GET("/history", d.Interview.History)
	iv.GET("/:id", d.Interview.Get)
	iv.POST("/:id/start", d.Interview.Start)
	iv.POST("/:id/respond", d.Interview.Respond)
	iv.GET("/:id/feedback", d.Interview.Feedback)
}
