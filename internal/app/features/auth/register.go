// internal/app/features/auth/register.go
package auth

import (
	"context"
	"errors"
	"net/http"

	"go.uber.org/zap"

	accountstore "github.com/taskhive-dev/taskhive/internal/app/store/accounts"
	"github.com/taskhive-dev/taskhive/internal/app/system/httpjson"
	"github.com/taskhive-dev/taskhive/internal/app/system/inputval"
	"github.com/taskhive-dev/taskhive/internal/app/system/normalize"
	"github.com/taskhive-dev/taskhive/internal/app/system/ratelimit"
	"github.com/taskhive-dev/taskhive/internal/app/system/timeouts"
)

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// HandleRegister creates a new local account. The new user arrives with
// their starter workspace already in place and is signed in immediately.
//
// Route: POST /auth/register
func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	if !h.Limiter.Allow(ratelimit.ClientIP(r)) {
		httpjson.Message(w, http.StatusTooManyRequests, "too many attempts, try again later")
		return
	}

	var req registerRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Message(w, http.StatusBadRequest, err.Error())
		return
	}
	if msg, ok := validateRegister(&req); !ok {
		httpjson.Message(w, http.StatusBadRequest, msg)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	u, err := h.Accounts.Register(ctx, req.Name, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, accountstore.ErrEmailTaken) {
			httpjson.Message(w, http.StatusBadRequest, err.Error())
			return
		}
		httpjson.Internal(w, h.Log, "register failed", err)
		return
	}

	if err := h.SM.SignIn(w, r, sessionUserFor(u)); err != nil {
		httpjson.Internal(w, h.Log, "session save failed", err)
		return
	}

	h.Log.Info("user registered", zap.String("user_id", u.ID.Hex()))
	httpjson.JSON(w, http.StatusCreated, map[string]any{
		"message": "user registered successfully",
		"user":    u.OmitPassword(),
	})
}

func validateRegister(req *registerRequest) (string, bool) {
	req.Name = normalize.Name(req.Name)
	req.Email = normalize.Email(req.Email)
	switch {
	case req.Name == "":
		return "name is required", false
	case !inputval.IsValidEmail(req.Email):
		return "a valid email is required", false
	case !inputval.IsValidPassword(req.Password):
		return "password must be at least 8 characters", false
	}
	return "", true
}
