package leavepolicy

import (
	"go-webtrack/internal/access"
	"go-webtrack/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, handler *Handler, policy access.Policy) {
	read := middleware.Authorize(policy, access.KindLeavePolicy, access.ActionRead)

	policies := r.Group("/leave-policies")
	{
		policies.GET("", read, handler.GetAll)
		policies.GET("/:id", read, handler.GetByID)
		policies.POST("", middleware.Authorize(policy, access.KindLeavePolicy, access.ActionCreate), handler.Create)
		policies.PUT("/:id", middleware.Authorize(policy, access.KindLeavePolicy, access.ActionUpdate), handler.Update)
		policies.PATCH("/:id", middleware.Authorize(policy, access.KindLeavePolicy, access.ActionUpdate), handler.Patch)
		policies.DELETE("/:id", middleware.Authorize(policy, access.KindLeavePolicy, access.ActionDelete), handler.Delete)
	}

	r.GET("/leave-types/:id/policy", read, handler.GetByLeaveType)
}
