package auth

import (
	"context"
	"net/http"
	"strings"

	"classquiz/internal/apperror"
	"classquiz/internal/models"

	"github.com/dgrijalva/jwt-go"
)

type contextKey string

const userContextKey contextKey = "user"

// UserFromContext returns the authenticated user stashed by JWTMiddleware.
func UserFromContext(ctx context.Context) (*models.User, bool) {
	user, ok := ctx.Value(userContextKey).(*models.User)
	return user, ok
}

// JWTMiddleware validates the bearer token and resolves the acting user,
// with its role profile, into the request context.
func JWTMiddleware(jwtSecret string, service *Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				apperror.Write(w, apperror.Unauthorized("Authorization header required"))
				return
			}

			bearerToken := strings.Split(authHeader, " ")
			if len(bearerToken) != 2 || bearerToken[0] != "Bearer" {
				apperror.Write(w, apperror.Unauthorized("Invalid token format"))
				return
			}

			token, err := jwt.ParseWithClaims(bearerToken[1], &jwt.MapClaims{}, func(token *jwt.Token) (interface{}, error) {
				return []byte(jwtSecret), nil
			})
			if err != nil {
				apperror.Write(w, apperror.Unauthorized("Invalid token"))
				return
			}

			claims, ok := token.Claims.(*jwt.MapClaims)
			if !ok || !token.Valid {
				apperror.Write(w, apperror.Unauthorized("Invalid token claims"))
				return
			}

			userID, ok := (*claims)["user_id"].(float64)
			if !ok {
				apperror.Write(w, apperror.Unauthorized("Invalid user ID in token"))
				return
			}

			user, err := service.UserByID(uint(userID))
			if err != nil {
				apperror.Write(w, err)
				return
			}

			ctx := context.WithValue(r.Context(), userContextKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin guards admin-only routes. It must run after JWTMiddleware.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := UserFromContext(r.Context())
		if !ok || user.Role != models.RoleAdmin {
			apperror.Write(w, apperror.Forbidden("You are not authorized"))
			return
		}
		next.ServeHTTP(w, r)
	})
}
