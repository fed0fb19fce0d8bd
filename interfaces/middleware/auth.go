package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt"

	"github.com/tmoody1973/rhythm-lab-app-sub003/domain/dto"
	"github.com/tmoody1973/rhythm-lab-app-sub003/domain/model"
	"github.com/tmoody1973/rhythm-lab-app-sub003/infrastructure/logger"
)

const (
	SessionCookie = "__session"
	KeyUserID     = "user_id"
	KeyEmail      = "email"
)

// Auth accepts an HS256 admin session token from the Authorization header
// or the session cookie and stores the subject under KeyUserID.
func Auth(secretKey string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		res := dto.ErrorResponse{Error: "unauthorized"}
		raw := bearerToken(ctx)
		if raw == "" || secretKey == "" {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, res)
			return
		}

		claims, token, err := getClaim(raw, secretKey)
		if err != nil || token == nil || !token.Valid {
			res.Message = abortMessage(err)
			logger.FromContext(ctx.Request.Context()).WithField("reason", res.Message).Info("Rejected admin token")
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, res)
			return
		}
		if claims.Subject == "" {
			res.Message = "token has no subject"
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, res)
			return
		}

		ctx.Set(KeyUserID, claims.Subject)
		ctx.Set(KeyEmail, claims.Email)
		ctx.Next()
	}
}

func bearerToken(ctx *gin.Context) string {
	if authorization := ctx.GetHeader("Authorization"); authorization != "" {
		if strings.HasPrefix(authorization, "Bearer ") {
			return strings.TrimSpace(strings.TrimPrefix(authorization, "Bearer "))
		}
		return ""
	}
	if cookie, err := ctx.Cookie(SessionCookie); err == nil {
		return cookie
	}
	return ""
}

func abortMessage(err error) string {
	var ve *jwt.ValidationError
	if errors.As(err, &ve) {
		switch {
		case ve.Errors&jwt.ValidationErrorMalformed != 0:
			return "That's not even a token"
		case ve.Errors&(jwt.ValidationErrorExpired|jwt.ValidationErrorNotValidYet) != 0:
			// Token is either expired or not active yet
			return "Timing is everything"
		}
	}
	if err != nil {
		return fmt.Sprintf("Couldn't handle this token: %v", err)
	}
	return "invalid token"
}

func getClaim(raw, secretKey string) (*model.AdminClaims, *jwt.Token, error) {
	claims := &model.AdminClaims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return []byte(secretKey), nil
	})
	return claims, token, err
}
