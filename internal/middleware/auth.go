package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/Varun5711/shortlinks/internal/auth"
	"github.com/Varun5711/shortlinks/internal/logger"
	"github.com/Varun5711/shortlinks/internal/models"
)

type contextKey string

const UserIDKey contextKey = "user_id"

// TokenValidator verifies bearer tokens issued by the identity provider.
type TokenValidator interface {
	ValidateToken(token string) (*auth.Claims, error)
}

type AuthMiddleware struct {
	validator TokenValidator
	log       *logger.Logger
}

func NewAuthMiddleware(validator TokenValidator, log *logger.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		validator: validator,
		log:       log,
	}
}

// Authenticate attaches the verified owner id to the request context.
// Requests without credentials pass through anonymously so each operation
// can answer with its own unauthenticated message. Bad credentials are
// rejected here.
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			next.ServeHTTP(w, r)
			return
		}

		token, ok := strings.CutPrefix(authHeader, "Bearer ")
		if !ok {
			token = authHeader
		}

		claims, err := m.validator.ValidateToken(strings.TrimSpace(token))
		if err != nil {
			m.log.Warn("Invalid token: %v", err)
			writeJSONError(w, http.StatusUnauthorized, "Invalid or expired token")
			return
		}

		ctx := context.WithValue(r.Context(), UserIDKey, claims.Owner())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func GetUserID(ctx context.Context) string {
	if userID, ok := ctx.Value(UserIDKey).(string); ok {
		return userID
	}
	return ""
}

// WithUserID is used by tests and internal callers that already trust the id.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, UserIDKey, userID)
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(models.ErrorResponse{Error: message})
}
