package middleware

import (
	"context"
	"net/http"
	"strings"

	"tradenet/internal/apierror"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const (
	ClaimsKey = "claims"

	accessTokenType = "access"
)

// JWTClaims are the custom claims embedded in every access token.
type JWTClaims struct {
	UserID    string `json:"user_id"`
	Email     string `json:"email"`
	IsStaff   bool   `json:"is_staff"`
	TokenType string `json:"token_type"`
	jwt.RegisteredClaims
}

// ActiveChecker tells whether an account may still use the API.
type ActiveChecker interface {
	IsActive(ctx context.Context, userID uuid.UUID) (bool, error)
}

// JWTAuth validates the Bearer access token on every protected route.
func JWTAuth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, apierror.New("Authentication credentials were not provided"))
			return
		}

		tokenStr := strings.TrimPrefix(header, "Bearer ")
		claims := &JWTClaims{}
		token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return []byte(secret), nil
		})

		if err != nil || !token.Valid || claims.TokenType != accessTokenType {
			c.AbortWithStatusJSON(http.StatusUnauthorized, apierror.New("Invalid or expired token"))
			return
		}

		c.Set(ClaimsKey, claims)
		c.Next()
	}
}

// RequireActive rejects tokens whose account has been deactivated since the
// token was issued. Must run after JWTAuth.
func RequireActive(users ActiveChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := GetClaims(c)
		uid, err := uuid.Parse(claims.UserID)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, apierror.New("Invalid or expired token"))
			return
		}
		active, err := users.IsActive(c.Request.Context(), uid)
		if err != nil {
			log.Error().Err(err).Str("request_id", c.GetString(RequestIDKey)).Msg("active user lookup failed")
			c.AbortWithStatusJSON(http.StatusInternalServerError, apierror.New("Internal server error"))
			return
		}
		if !active {
			c.AbortWithStatusJSON(http.StatusForbidden, apierror.New("User account is disabled"))
			return
		}
		c.Next()
	}
}

// RequireStaff limits administrative operations to staff accounts.
func RequireStaff() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := GetClaims(c)
		if claims == nil || !claims.IsStaff {
			c.AbortWithStatusJSON(http.StatusForbidden, apierror.New("You do not have permission to perform this action"))
			return
		}
		c.Next()
	}
}

// GetClaims is a helper to retrieve typed claims from the Gin context.
func GetClaims(c *gin.Context) *JWTClaims {
	claims, _ := c.MustGet(ClaimsKey).(*JWTClaims)
	return claims
}
