package leavebalance

import (
	"go-webtrack/internal/access"
	"go-webtrack/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, handler *Handler, policy access.Policy) {
	read := middleware.Authorize(policy, access.KindLeaveBalance, access.ActionRead)

	balances := r.Group("/leave-balances")
	{
		balances.GET("", read, handler.GetAll)
		balances.GET("/summary", read, handler.Summary)
		balances.GET("/lookup", read, handler.Lookup)
		balances.GET("/:id", read, handler.GetByID)
		balances.POST("", middleware.Authorize(policy, access.KindLeaveBalance, access.ActionCreate), handler.Create)
		balances.POST("/provision", middleware.Authorize(policy, access.KindLeaveBalance, access.ActionCreate), handler.Provision)
		balances.PUT("/:id", middleware.Authorize(policy, access.KindLeaveBalance, access.ActionUpdate), handler.Update)
		balances.PATCH("/:id", middleware.Authorize(policy, access.KindLeaveBalance, access.ActionUpdate), handler.Patch)
		balances.DELETE("/:id", middleware.Authorize(policy, access.KindLeaveBalance, access.ActionDelete), handler.Delete)
	}
}
