package middleware

import (
	"go-webtrack/internal/access"
	"go-webtrack/internal/shared/apperror"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Authorize rejects callers whose role holds no grant for action on kind.
// Record-level checks stay in the services.
func Authorize(policy access.Policy, kind access.Kind, action access.Action) gin.HandlerFunc {
	log := zap.L().Named("middleware.authorize")
	return func(c *gin.Context) {
		actor := ActorFrom(c)
		if actor.EmployeeID == "" || actor.CompanyID == "" {
			abortWith(c, apperror.ErrUnauthorized)
			return
		}

		if !policy.Allows(actor, kind, action) {
			log.Warn("access denied",
				zap.String("employee_id", actor.EmployeeID),
				zap.String("role", string(actor.Role)),
				zap.String("kind", string(kind)),
				zap.String("action", string(action)),
			)
			abortWith(c, apperror.ErrForbidden.WithDetails(gin.H{"required": string(kind) + ":" + string(action)}))
			return
		}
		c.Next()
	}
}
