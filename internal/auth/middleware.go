package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"hardware-management-api/internal/models"
)

// LoginPath is where unauthenticated clients are sent
const LoginPath = "/login"

// contextKey is a custom type for context keys to avoid collisions
type contextKey string

// ClaimsKey is the context key for JWT claims
const ClaimsKey contextKey = "claims"

// ErrorResponse represents a standardized error response
type ErrorResponse struct {
	Error    string `json:"error"`
	Code     string `json:"code"`
	Redirect string `json:"redirect,omitempty"`
}

// ClaimsFromContext extracts the JWT claims from the request context
func ClaimsFromContext(ctx context.Context) *Claims {
	if claims, ok := ctx.Value(ClaimsKey).(*Claims); ok {
		return claims
	}
	return nil
}

// IdentityFromContext returns the session identity. ok is false for
// unauthenticated requests.
func IdentityFromContext(ctx context.Context) (models.Identity, bool) {
	claims := ClaimsFromContext(ctx)
	if claims == nil {
		return models.Identity{}, false
	}
	return claims.Identity(), true
}

// RoleFromContext extracts the session role, empty when unauthenticated
func RoleFromContext(ctx context.Context) models.Role {
	if claims := ClaimsFromContext(ctx); claims != nil {
		return claims.Role
	}
	return ""
}

// WithClaims returns a context carrying claims
func WithClaims(ctx context.Context, claims *Claims) context.Context {
	return context.WithValue(ctx, ClaimsKey, claims)
}

// Public paths that don't require authentication
var publicPaths = map[string]bool{
	"/health":     true,
	"/auth/login": true,
	LoginPath:     true,
}

// isPublicPath checks if the given path is public (no auth required)
func isPublicPath(path string) bool {
	return publicPaths[path]
}

// sendErrorResponse sends a standardized error response
func sendErrorResponse(w http.ResponseWriter, message, code string, statusCode int) {
	writeErrorBody(w, ErrorResponse{Error: message, Code: code}, statusCode)
}

func writeErrorBody(w http.ResponseWriter, body ErrorResponse, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// wantsHTML reports whether the client is a browser navigating to a page
func wantsHTML(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "text/html")
}

// denyUnauthenticated sends browsers to the login page and API clients a
// 401 that names the login path
func denyUnauthenticated(w http.ResponseWriter, r *http.Request, message, code string) {
	if wantsHTML(r) {
		http.Redirect(w, r, LoginPath, http.StatusSeeOther)
		return
	}
	writeErrorBody(w, ErrorResponse{Error: message, Code: code, Redirect: LoginPath}, http.StatusUnauthorized)
}

// sendTokenExpirationWarning adds a warning header when token expires soon
func sendTokenExpirationWarning(w http.ResponseWriter, expiresAt time.Time) {
	timeUntilExpiry := time.Until(expiresAt)
	if timeUntilExpiry <= time.Hour && timeUntilExpiry > 0 {
		w.Header().Set("X-Token-Expires-At", expiresAt.Format(time.RFC3339))
		w.Header().Set("X-Token-Expires-In", timeUntilExpiry.Round(time.Second).String())
	}
}

// validateTokenFormat performs basic token format validation
func validateTokenFormat(tokenString string) error {
	if len(tokenString) == 0 {
		return errors.New("token cannot be empty")
	}
	if len(tokenString) > 8192 { // 8KB limit
		return errors.New("token size exceeds maximum allowed")
	}
	// Basic JWT format validation (3 parts separated by dots)
	parts := strings.Split(tokenString, ".")
	if len(parts) != 3 {
		return errors.New("invalid JWT token format")
	}
	return nil
}

// bearerToken pulls the token out of the Authorization header
func bearerToken(r *http.Request) (string, string, string) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", "Authorization header required", "MISSING_AUTH_HEADER"
	}
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return "", "Invalid authorization header format. Expected: Bearer <token>", "INVALID_AUTH_FORMAT"
	}
	tokenString := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	if tokenString == "" {
		return "", "Token is required", "MISSING_TOKEN"
	}
	return tokenString, "", ""
}

// classifyTokenError maps a parse failure to a message and error code
func classifyTokenError(err error) (string, string) {
	switch {
	case strings.Contains(err.Error(), "expired"):
		return "Token has expired", "TOKEN_EXPIRED"
	case strings.Contains(err.Error(), "signing method"):
		return "Invalid token signing method", "INVALID_SIGNING_METHOD"
	case strings.Contains(err.Error(), "malformed"):
		return "Token is malformed", "MALFORMED_TOKEN"
	default:
		return "Invalid or expired token", "INVALID_TOKEN"
	}
}

// AuthMiddleware validates JWT tokens, rejects revoked ones and sets the
// session on the request context
func AuthMiddleware(jwtManager *JWTManager, revoked *RevocationList) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Check if this is a public path
			if isPublicPath(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			tokenString, message, code := bearerToken(r)
			if tokenString == "" {
				denyUnauthenticated(w, r, message, code)
				return
			}

			// Validate token format
			if err := validateTokenFormat(tokenString); err != nil {
				denyUnauthenticated(w, r, "Invalid token format: "+err.Error(), "INVALID_TOKEN_FORMAT")
				return
			}

			claims, err := jwtManager.ValidateToken(tokenString)
			if err != nil {
				message, code := classifyTokenError(err)
				denyUnauthenticated(w, r, message, code)
				return
			}

			// Validate claims
			if claims.Email == "" || claims.ID == "" {
				denyUnauthenticated(w, r, "Token is missing session claims", "INVALID_CLAIMS")
				return
			}
			if !models.IsValidRole(claims.Role) {
				denyUnauthenticated(w, r, "No valid role assigned to user", "NO_ROLES")
				return
			}
			if revoked != nil && revoked.IsRevoked(claims.ID) {
				denyUnauthenticated(w, r, "Session has been logged out", "TOKEN_REVOKED")
				return
			}

			ctx := WithClaims(r.Context(), claims)

			// Add token expiration warning header if needed
			if claims.ExpiresAt != nil {
				sendTokenExpirationWarning(w, claims.ExpiresAt.Time)
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// MustRole creates middleware that requires one of the given roles
func MustRole(requiredRoles ...models.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims := ClaimsFromContext(r.Context())
			if claims == nil {
				denyUnauthenticated(w, r, "Authentication required", "AUTHENTICATION_REQUIRED")
				return
			}

			if len(requiredRoles) == 0 {
				sendErrorResponse(w, "No roles specified for this endpoint", "NO_ROLES_SPECIFIED", http.StatusInternalServerError)
				return
			}

			if !claims.HasRole(requiredRoles...) {
				sendErrorResponse(w, "Insufficient permissions", "INSUFFICIENT_PERMISSIONS", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// Staff allows admin and HR
var Staff = MustRole(models.RoleAdmin, models.RoleHR)
