package internal

import (
	"errors"
	"net/http"
	"strings"

	"hardware-management-api/internal/auth"
	"hardware-management-api/internal/models"
	"hardware-management-api/internal/navigation"

	"go.uber.org/zap"
)

const invalidCredentials = "Invalid email or password"

// loginUser handles user authentication and returns a JWT token
func (s *Server) loginUser(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.Email = strings.TrimSpace(req.Email)

	// Validate request
	if fields := models.ValidateStruct(req); fields != nil {
		writeError(w, http.StatusBadRequest, "INVALID_CREDENTIALS", invalidCredentials)
		return
	}

	id, err := s.Directory.Authenticate(r.Context(), req.Email, req.Password)
	if errors.Is(err, auth.ErrInvalidCredentials) {
		s.Logger.Info("login rejected", zap.String("email", req.Email), zap.String("client_ip", clientIP(r)))
		writeError(w, http.StatusUnauthorized, "INVALID_CREDENTIALS", invalidCredentials)
		return
	}
	if err != nil {
		s.Logger.Error("credential check failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "INTERNAL", "internal server error")
		return
	}

	token, claims, err := s.JWTManager.GenerateToken(id)
	if err != nil {
		s.Logger.Error("failed to generate token", zap.String("email", id.Email), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "TOKEN_GENERATION_FAILED", "Failed to generate token")
		return
	}

	s.Metrics.RecordLogin(string(id.Role))
	s.Logger.Info("user logged in", zap.String("email", id.Email), zap.String("role", string(id.Role)))

	writeJSON(w, http.StatusOK, models.LoginResponse{
		Token:     token,
		Role:      id.Role,
		Name:      id.Name,
		Email:     id.Email,
		ExpiresAt: claims.ExpiresAt.Time,
	})
}

// logoutUser revokes the presented token
func (s *Server) logoutUser(w http.ResponseWriter, r *http.Request) {
	claims := auth.ClaimsFromContext(r.Context())
	if claims != nil && claims.ExpiresAt != nil {
		s.Revoked.Revoke(claims.ID, claims.ExpiresAt.Time)
		s.Logger.Info("user logged out", zap.String("email", claims.Email))
	}
	writeJSON(w, http.StatusOK, models.LogoutResponse{Redirect: auth.LoginPath})
}

type sessionResponse struct {
	Email      string               `json:"email"`
	Name       string               `json:"name"`
	Role       models.Role          `json:"role"`
	RoleLabel  string               `json:"role_label"`
	Navigation []navigation.Section `json:"navigation"`
	Version    string               `json:"version"`
}

// getSession returns the layout header data of the caller
func (s *Server) getSession(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.IdentityFromContext(r.Context())
	current := r.URL.Query().Get("path")
	if current == "" {
		current = "/"
	}
	writeJSON(w, http.StatusOK, sessionResponse{
		Email:      id.Email,
		Name:       id.Name,
		Role:       id.Role,
		RoleLabel:  id.Role.Label(),
		Navigation: navigation.For(id.Role, navigation.Resolve(current)),
		Version:    navigation.Version,
	})
}

// getNavigation returns the sidebar with the item for ?path= marked active
func (s *Server) getNavigation(w http.ResponseWriter, r *http.Request) {
	role := auth.RoleFromContext(r.Context())
	current := r.URL.Query().Get("path")
	if current == "" {
		current = "/"
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"path":     current,
		"sections": navigation.For(role, current),
	})
}

// resolveNavigation maps ?path= to a known page, unknown paths go home
func (s *Server) resolveNavigation(w http.ResponseWriter, r *http.Request) {
	requested := r.URL.Query().Get("path")
	resolved := navigation.Resolve(requested)
	writeJSON(w, http.StatusOK, map[string]any{
		"path":       resolved,
		"redirected": resolved != strings.TrimSpace(requested),
	})
}
