// internal/app/features/auth/handler.go
package auth

import (
	"time"

	"go.uber.org/zap"

	accountstore "github.com/taskhive-dev/taskhive/internal/app/store/accounts"
	sessionauth "github.com/taskhive-dev/taskhive/internal/app/system/auth"
	"github.com/taskhive-dev/taskhive/internal/app/system/ratelimit"
)

// loginAttemptsPerMinute caps credential guesses from one IP. Successful
// sign-ins reset the window.
const loginAttemptsPerMinute = 10

// Handler is the feature-level entry point for email+password auth.
type Handler struct {
	Accounts *accountstore.Store
	SM       *sessionauth.SessionManager
	Limiter  *ratelimit.Limiter
	Log      *zap.Logger
}

func NewHandler(accounts *accountstore.Store, sm *sessionauth.SessionManager, logger *zap.Logger) *Handler {
	return &Handler{
		Accounts: accounts,
		SM:       sm,
		Limiter:  ratelimit.New(loginAttemptsPerMinute, time.Minute),
		Log:      logger,
	}
}
