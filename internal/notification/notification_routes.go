package notification

import (
	"go-webtrack/internal/access"
	"go-webtrack/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, handler *Handler, policy access.Policy) {
	notifications := r.Group("/notifications")
	{
		notifications.GET("", middleware.Authorize(policy, access.KindNotification, access.ActionRead), handler.GetAll)
		notifications.POST("/:id/read", middleware.Authorize(policy, access.KindNotification, access.ActionUpdate), handler.MarkRead)
	}
}
