package leave

import (
	"go-webtrack/internal/access"
	"go-webtrack/internal/middleware"

	"github.com/gin-gonic/gin"
)

// RegisterRoutes mounts the workflow. Extra handlers in mutating run before
// every state-changing route (rate limiting, idempotency).
func RegisterRoutes(r *gin.RouterGroup, handler *Handler, policy access.Policy, mutating ...gin.HandlerFunc) {
	guard := func(action access.Action, h gin.HandlerFunc) []gin.HandlerFunc {
		chain := []gin.HandlerFunc{middleware.Authorize(policy, access.KindLeaveRequest, action)}
		if action != access.ActionRead {
			chain = append(chain, mutating...)
		}
		return append(chain, h)
	}

	requests := r.Group("/leave-requests")
	{
		requests.GET("", guard(access.ActionRead, handler.GetAll)...)
		requests.GET("/summary", guard(access.ActionRead, handler.Summary)...)
		requests.GET("/:id", guard(access.ActionRead, handler.GetByID)...)
		requests.POST("", guard(access.ActionCreate, handler.Create)...)
		requests.PATCH("/:id", guard(access.ActionUpdate, handler.Update)...)
		requests.POST("/:id/approve", guard(access.ActionApprove, handler.Approve)...)
		requests.POST("/:id/reject", guard(access.ActionApprove, handler.Reject)...)
		requests.POST("/:id/cancel", guard(access.ActionUpdate, handler.Cancel)...)
	}
}
