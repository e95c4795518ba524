package middleware

import (
	"context"
	"net/http"
	"strings"

	"clinic-scheduling/internal/infrastructure/cache"
	"clinic-scheduling/pkg/jwt"
	"clinic-scheduling/pkg/response"
)

type contextKey string

const (
	ClaimsKey    contextKey = "claims"
	PatientIDKey contextKey = "patient_id"
	RoleKey      contextKey = "role"
	TokenIDKey   contextKey = "token_id"
)

type AuthMiddleware struct {
	jwtService *jwt.JWTService
	tokenStore cache.TokenStore
}

func NewAuthMiddleware(jwtService *jwt.JWTService, tokenStore cache.TokenStore) *AuthMiddleware {
	return &AuthMiddleware{
		jwtService: jwtService,
		tokenStore: tokenStore,
	}
}

func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			response.Unauthorized(w, "Authorization header is required")
			return
		}

		// Extract token from "Bearer <token>"
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			response.Unauthorized(w, "Invalid authorization header format")
			return
		}

		claims, err := m.jwtService.ValidateToken(parts[1])
		if err != nil {
			response.Unauthorized(w, "Invalid or expired token")
			return
		}

		// Check if token exists in Redis (not revoked)
		exists, err := m.tokenStore.Exists(r.Context(), claims.Owner(), claims.TokenID)
		if err != nil {
			response.InternalServerError(w, "Failed to validate token")
			return
		}
		if !exists {
			response.Unauthorized(w, "Token has been revoked")
			return
		}

		next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
	})
}

// GetClaimsFromContext extracts the validated token claims from context
func GetClaimsFromContext(ctx context.Context) (*jwt.Claims, bool) {
	claims, ok := ctx.Value(ClaimsKey).(*jwt.Claims)
	return claims, ok
}

// GetPatientIDFromContext extracts patient ID from context
func GetPatientIDFromContext(ctx context.Context) (int64, bool) {
	patientID, ok := ctx.Value(PatientIDKey).(int64)
	return patientID, ok
}

// GetRoleFromContext extracts role from context
func GetRoleFromContext(ctx context.Context) (jwt.Role, bool) {
	role, ok := ctx.Value(RoleKey).(jwt.Role)
	return role, ok
}

// WithClaims stores claims the way Authenticate does
func WithClaims(ctx context.Context, claims *jwt.Claims) context.Context {
	ctx = context.WithValue(ctx, ClaimsKey, claims)
	ctx = context.WithValue(ctx, RoleKey, claims.Role)
	ctx = context.WithValue(ctx, TokenIDKey, claims.TokenID)
	if claims.Role == jwt.RolePatient {
		ctx = context.WithValue(ctx, PatientIDKey, claims.PatientID)
	}
	return ctx
}
