package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/lakshyaprep/lakshya-backend/internal/response"
	"github.com/lakshyaprep/lakshya-backend/internal/service"
)

// ContextKeyClaims is the Gin context key for JWT claims.
const ContextKeyClaims = "claims"

// RequireStudentJWT validates a student JWT from the Authorization header.
func RequireStudentJWT(authService *service.AuthService) gin.HandlerFunc {
	return requireToken(authService, service.TokenTypeStudent, response.ErrStudentAccessOnly)
}

// RequireAdminJWT validates an admin JWT from the Authorization header.
func RequireAdminJWT(authService *service.AuthService) gin.HandlerFunc {
	return requireToken(authService, service.TokenTypeAdmin, response.ErrAdminAccessOnly)
}

func requireToken(authService *service.AuthService, want service.TokenType, wrongType response.ErrCode) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr, err := bearerToken(c)
		if err != nil {
			response.AbortFail(c, http.StatusUnauthorized, response.ErrTokenRequired)
			return
		}

		claims, err := authService.ValidateToken(tokenStr)
		if err != nil {
			response.AbortFail(c, http.StatusUnauthorized, tokenFailCode(err))
			return
		}
		if claims.TokenType != want {
			response.AbortFail(c, http.StatusForbidden, wrongType)
			return
		}

		c.Set(ContextKeyClaims, claims)
		c.Next()
	}
}

// tokenFailCode distinguishes an expired token from a malformed one so
// clients know whether to re-login or to fix the request.
func tokenFailCode(err error) response.ErrCode {
	if errors.Is(err, jwt.ErrTokenExpired) {
		return response.ErrTokenExpired
	}
	return response.ErrTokenInvalid
}

// RequireStudentWSAuth validates a student JWT from the query param
// ?token=... Browsers cannot set headers on WebSocket upgrade requests.
func RequireStudentWSAuth(authService *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr := c.Query("token")
		if tokenStr == "" {
			response.AbortFail(c, http.StatusUnauthorized, response.ErrTokenRequired)
			return
		}

		claims, err := authService.ValidateToken(tokenStr)
		if err != nil {
			response.AbortFail(c, http.StatusUnauthorized, tokenFailCode(err))
			return
		}
		if claims.TokenType != service.TokenTypeStudent {
			response.AbortFail(c, http.StatusForbidden, response.ErrStudentAccessOnly)
			return
		}

		c.Set(ContextKeyClaims, claims)
		c.Next()
	}
}

// bearerToken pulls the JWT out of the Authorization header, falling
// back to the token query param.
func bearerToken(c *gin.Context) (string, error) {
	if authHeader := c.GetHeader("Authorization"); authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			return parts[1], nil
		}
	}
	if token := c.Query("token"); token != "" {
		return token, nil
	}
	return "", errors.New("authorization header or token query required")
}

// GetClaims retrieves the JWT claims from the Gin context.
func GetClaims(c *gin.Context) *service.Claims {
	val, exists := c.Get(ContextKeyClaims)
	if !exists {
		return nil
	}
	claims, ok := val.(*service.Claims)
	if !ok {
		return nil
	}
	return claims
}

// CurrentUserID returns the authenticated user's ID, or 0 when the
// request carries no claims.
func CurrentUserID(c *gin.Context) int {
	claims := GetClaims(c)
	if claims == nil {
		return 0
	}
	return claims.UserID
}
