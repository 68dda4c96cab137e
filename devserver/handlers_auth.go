package devserver

import (
	"net/http"

	"github.com/jrsteele09/go-store-admin/adminapi"
	"github.com/jrsteele09/go-store-admin/apiclient"
	"github.com/jrsteele09/go-store-admin/internal/errors"
	"github.com/jrsteele09/go-store-admin/internal/utils"
)

func (s *Server) NoContentHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}
}

// LoginHandler exchanges email and password for an access token and a refresh token
func (s *Server) LoginHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req adminapi.LoginRequest
		if err := decodeBody(r, &req); err != nil {
			writeError(w, err)
			return
		}
		if err := s.check(req); err != nil {
			writeError(w, err)
			return
		}

		user, err := s.data.Authenticate(req.Email, req.Password)
		if err != nil {
			s.logger.Info().Str("email", req.Email).Err(err).Msg("login rejected")
			writeError(w, err)
			return
		}

		access, _, err := s.tokens.CreateAccessToken(user)
		if err != nil {
			s.logger.Error().Err(err).Msg("failed to create access token")
			writeError(w, err)
			return
		}
		refresh, err := s.refresh.Create(user.ID)
		if err != nil {
			s.logger.Error().Err(err).Msg("failed to create refresh token")
			writeError(w, err)
			return
		}

		s.data.LogActivity(user.ID, "login", "Signed in to the admin panel", clientIP(r))
		writeJSON(w, http.StatusOK, adminapi.LoginResult{
			Token:        access,
			RefreshToken: refresh,
			User:         *user,
		})
	}
}

// RefreshTokenHandler issues a new access token for a live refresh token. The refresh token is
// rotated when configured, otherwise the response carries no refresh_token and the old one stays valid.
func (s *Server) RefreshTokenHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			RefreshToken string `json:"refresh_token"`
		}
		if err := decodeBody(r, &req); err != nil || req.RefreshToken == "" {
			writeJSONError(w, "invalid_request", "refresh_token is required", http.StatusBadRequest)
			return
		}

		rt, err := s.refresh.Validate(req.RefreshToken)
		if err != nil {
			writeJSONError(w, "invalid_grant", err.Error(), http.StatusUnauthorized)
			return
		}
		user, err := s.data.ActiveUser(rt.UserID)
		if err != nil {
			_ = s.refresh.Delete(rt.Token)
			writeJSONError(w, "invalid_grant", "user is not active", http.StatusUnauthorized)
			return
		}

		access, ttl, err := s.tokens.CreateAccessToken(user)
		if err != nil {
			s.logger.Error().Err(err).Msg("failed to create access token")
			writeError(w, err)
			return
		}
		resp := apiclient.TokenResponse{
			AccessToken: access,
			TokenType:   "Bearer",
			ExpiresIn:   int(ttl.Seconds()),
		}
		if s.config.GetRotateRefreshTokens() {
			next, err := s.refresh.Rotate(rt)
			if err != nil {
				// Lost a race with a concurrent refresh of the same token
				writeJSONError(w, "invalid_grant", "refresh token already used", http.StatusUnauthorized)
				return
			}
			resp.RefreshToken = utils.Ptr(next)
		}

		s.logger.Debug().Str("user_id", user.ID).Bool("rotated", resp.RefreshToken != nil).Msg("token refreshed")
		writeJSON(w, http.StatusOK, resp)
	}
}

// LogoutHandler revokes the refresh token sent in the body, if it belongs to the caller
func (s *Server) LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims := claimsFromContext(r.Context())

		var req struct {
			RefreshToken string `json:"refreshToken"`
		}
		if err := decodeBody(r, &req); err == nil && req.RefreshToken != "" {
			if rt, err := s.refresh.Validate(req.RefreshToken); err == nil && rt.UserID == claims.Subject {
				_ = s.refresh.Delete(rt.Token)
			}
		}

		s.data.LogActivity(claims.Subject, "logout", "Signed out", clientIP(r))
		writeJSON(w, http.StatusOK, map[string]string{"message": "Logged out"})
	}
}

func (s *Server) ProfileHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, err := s.data.User(claimsFromContext(r.Context()).Subject)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, user)
	}
}

// ForgotPasswordHandler always answers 202 so the endpoint does not reveal which emails exist
func (s *Server) ForgotPasswordHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Email string `json:"email" validate:"required,email"`
		}
		if err := decodeBody(r, &req); err != nil {
			writeError(w, err)
			return
		}
		if err := s.check(req); err != nil {
			writeError(w, err)
			return
		}

		if token, ok := s.data.IssueResetToken(req.Email); ok {
			// No mail delivery in development
			s.logger.Info().Str("email", req.Email).Str("reset_token", token).Msg("password reset requested")
		}
		writeJSON(w, http.StatusAccepted, map[string]string{"message": "If the email exists, a reset link has been sent"})
	}
}

func (s *Server) ResetPasswordHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Token       string `json:"token" validate:"required"`
			NewPassword string `json:"newPassword" validate:"required"`
		}
		if err := decodeBody(r, &req); err != nil {
			writeError(w, err)
			return
		}
		if err := s.check(req); err != nil {
			writeError(w, err)
			return
		}
		if err := ValidatePasswordStrength(req.NewPassword); err != nil {
			writeJSONError(w, "invalid_request", err.Error(), http.StatusBadRequest)
			return
		}

		userID, err := s.data.ResetPassword(req.Token, req.NewPassword)
		if err != nil {
			if errors.Is(err, errors.ErrInvalidToken) || errors.Is(err, errors.ErrTokenExpired) {
				writeJSONError(w, "invalid_token", "reset token is invalid or expired", http.StatusBadRequest)
				return
			}
			writeError(w, err)
			return
		}

		// Existing sessions end with the old password
		_ = s.refresh.RevokeUser(userID)
		s.data.LogActivity(userID, "password_reset", "Password was reset", clientIP(r))
		writeJSON(w, http.StatusOK, map[string]string{"message": "Password has been reset"})
	}
}
