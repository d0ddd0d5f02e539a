package middleware

import (
	"errors"
	"fmt"
	"strings"

	"go-webtrack/internal/access"
	"go-webtrack/internal/shared/apperror"
	"go-webtrack/internal/shared/response"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const (
	ctxUserID     = "user_id"
	ctxEmployeeID = "employee_id"
	ctxCompanyID  = "company_id"
	ctxRole       = "role"
)

func abortWith(c *gin.Context, err *apperror.AppError) {
	response.Error(c, err.HTTPStatus, err.Code, err.Message, err.Details)
	c.Abort()
}

// AuthMiddleware validates an HS256 token from the Authorization header or the
// access_token cookie and stores the caller's identity on the gin context.
func AuthMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, found := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
		if !found {
			tokenString = ""
		}

		if tokenString == "" {
			if cookie, err := c.Cookie("access_token"); err == nil {
				tokenString = cookie
			}
		}

		if tokenString == "" {
			abortWith(c, apperror.ErrUnauthorized)
			return
		}

		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method")
			}
			return []byte(secret), nil
		})
		if err != nil || !token.Valid {
			if errors.Is(err, jwt.ErrTokenExpired) {
				abortWith(c, apperror.ErrTokenExpired)
				return
			}
			abortWith(c, apperror.ErrInvalidToken)
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			abortWith(c, apperror.ErrInvalidToken)
			return
		}

		employeeID, _ := claims["employee_id"].(string)
		if employeeID == "" {
			abortWith(c, apperror.ErrInvalidToken.WithDetails("employee_id claim missing"))
			return
		}

		companyID, _ := claims["company_id"].(string)
		if companyID == "" {
			abortWith(c, apperror.ErrInvalidToken.WithDetails("company_id claim missing"))
			return
		}

		userID, _ := claims["user_id"].(string)
		if userID == "" {
			userID = employeeID
		}
		role, _ := claims["role"].(string)

		c.Set(ctxUserID, userID)
		c.Set(ctxEmployeeID, employeeID)
		c.Set(ctxCompanyID, companyID)
		c.Set(ctxRole, string(access.ParseRole(role)))

		c.Next()
	}
}

// ActorFrom builds the caller from values set by AuthMiddleware.
func ActorFrom(c *gin.Context) access.Actor {
	return access.Actor{
		EmployeeID: c.GetString(ctxEmployeeID),
		CompanyID:  c.GetString(ctxCompanyID),
		Role:       access.ParseRole(c.GetString(ctxRole)),
	}
}

// SetActor stores an actor on the gin context the way AuthMiddleware does.
// Handler tests use it in place of a signed token.
func SetActor(c *gin.Context, actor access.Actor) {
	c.Set(ctxUserID, actor.EmployeeID)
	c.Set(ctxEmployeeID, actor.EmployeeID)
	c.Set(ctxCompanyID, actor.CompanyID)
	c.Set(ctxRole, string(actor.Role))
}
