// internal/app/features/auth/login.go
package auth

import (
	"context"
	"errors"
	"net/http"

	"go.uber.org/zap"

	accountstore "github.com/taskhive-dev/taskhive/internal/app/store/accounts"
	sessionauth "github.com/taskhive-dev/taskhive/internal/app/system/auth"
	"github.com/taskhive-dev/taskhive/internal/app/system/httpjson"
	"github.com/taskhive-dev/taskhive/internal/app/system/ratelimit"
	"github.com/taskhive-dev/taskhive/internal/app/system/timeouts"
	"github.com/taskhive-dev/taskhive/internal/domain/models"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// HandleLogin checks credentials and starts a session.
//
// Route: POST /auth/login
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	ip := ratelimit.ClientIP(r)
	if !h.Limiter.Allow(ip) {
		httpjson.Message(w, http.StatusTooManyRequests, "too many attempts, try again later")
		return
	}

	var req loginRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Message(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	u, err := h.Accounts.VerifyCredentials(ctx, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, accountstore.ErrInvalidCredentials) {
			httpjson.Message(w, http.StatusUnauthorized, err.Error())
			return
		}
		httpjson.Internal(w, h.Log, "login failed", err)
		return
	}

	if err := h.SM.SignIn(w, r, sessionUserFor(u)); err != nil {
		httpjson.Internal(w, h.Log, "session save failed", err)
		return
	}
	h.Limiter.Reset(ip)

	h.Log.Info("user logged in", zap.String("user_id", u.ID.Hex()))
	httpjson.JSON(w, http.StatusOK, map[string]any{
		"message": "logged in successfully",
		"user":    u.OmitPassword(),
	})
}

// HandleLogout clears the session.
//
// Route: POST /auth/logout
func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if err := h.SM.SignOut(w, r); err != nil {
		httpjson.Internal(w, h.Log, "session clear failed", err)
		return
	}
	httpjson.Message(w, http.StatusOK, "logged out successfully")
}

func sessionUserFor(u *models.User) sessionauth.SessionUser {
	return sessionauth.SessionUser{
		ID:    u.ID.Hex(),
		Name:  u.Name,
		Email: u.Email,
	}
}
