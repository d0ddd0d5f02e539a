package middleware

import (
	"go-webtrack/internal/shared/contextutil"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ContextLogger attaches a request-scoped logger to the request context.
// It runs after RequestID, and again after AuthMiddleware so user_id is known.
func ContextLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.GetString(ctxRequestID)
		uid := c.GetString(ctxUserID)

		fields := []zap.Field{zap.String("request_id", rid)}
		if uid != "" {
			fields = append(fields, zap.String("user_id", uid))
		}
		if cid := c.GetString(ctxCompanyID); cid != "" {
			fields = append(fields, zap.String("company_id", cid))
		}

		ctx := c.Request.Context()
		ctx = contextutil.WithRequestID(ctx, rid)
		ctx = contextutil.WithUserID(ctx, uid)
		ctx = contextutil.WithLogger(ctx, logger.With(fields...))
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}
