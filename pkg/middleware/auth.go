package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"studio-booking/pkg/utils"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AuthProvider validates the owner bearer token and puts the provider ID
// on the request context.
func AuthProvider(cfg utils.JWTConfig, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				utils.ResponseUnauthorized(w, "Missing authorization token")
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || parts[0] != "Bearer" {
				utils.ResponseUnauthorized(w, "Invalid token format. Use: Bearer <token>")
				return
			}

			token, err := jwt.Parse(parts[1], func(t *jwt.Token) (any, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
				}
				return []byte(cfg.Secret), nil
			})
			if err != nil || !token.Valid {
				logger.Warn("Invalid or expired token", zap.Error(err))
				utils.ResponseUnauthorized(w, "Invalid or expired token")
				return
			}

			claims, ok := token.Claims.(jwt.MapClaims)
			if !ok {
				utils.ResponseUnauthorized(w, "Invalid token claims")
				return
			}

			sub, _ := claims["sub"].(string)
			providerID, err := uuid.Parse(sub)
			if err != nil {
				logger.Warn("Token subject is not a provider ID", zap.String("sub", sub))
				utils.ResponseUnauthorized(w, "Invalid token subject")
				return
			}

			ctx := utils.SetProviderContext(r.Context(), providerID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
