package leavetype

import (
	"go-webtrack/internal/access"
	"go-webtrack/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, handler *Handler, policy access.Policy) {
	types := r.Group("/leave-types")
	{
		types.GET("", middleware.Authorize(policy, access.KindLeaveType, access.ActionRead), handler.GetAll)
		types.GET("/:id", middleware.Authorize(policy, access.KindLeaveType, access.ActionRead), handler.GetByID)
		types.POST("", middleware.Authorize(policy, access.KindLeaveType, access.ActionCreate), handler.Create)
		types.PUT("/:id", middleware.Authorize(policy, access.KindLeaveType, access.ActionUpdate), handler.Update)
		types.PATCH("/:id", middleware.Authorize(policy, access.KindLeaveType, access.ActionUpdate), handler.Patch)
		types.DELETE("/:id", middleware.Authorize(policy, access.KindLeaveType, access.ActionDelete), handler.Delete)
	}
}
