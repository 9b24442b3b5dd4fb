// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"

	authfeature "github.com/taskhive-dev/taskhive/internal/app/features/auth"
	authgooglefeature "github.com/taskhive-dev/taskhive/internal/app/features/authgoogle"
	commentsfeature "github.com/taskhive-dev/taskhive/internal/app/features/comments"
	healthfeature "github.com/taskhive-dev/taskhive/internal/app/features/health"
	projectsfeature "github.com/taskhive-dev/taskhive/internal/app/features/projects"
	tasksfeature "github.com/taskhive-dev/taskhive/internal/app/features/tasks"
	userinfofeature "github.com/taskhive-dev/taskhive/internal/app/features/userinfo"
	workspacesfeature "github.com/taskhive-dev/taskhive/internal/app/features/workspaces"
	accountstore "github.com/taskhive-dev/taskhive/internal/app/store/accounts"
	commentstore "github.com/taskhive-dev/taskhive/internal/app/store/comments"
	memberstore "github.com/taskhive-dev/taskhive/internal/app/store/members"
	"github.com/taskhive-dev/taskhive/internal/app/store/oauthstate"
	projectstore "github.com/taskhive-dev/taskhive/internal/app/store/projects"
	rolestore "github.com/taskhive-dev/taskhive/internal/app/store/roles"
	taskstore "github.com/taskhive-dev/taskhive/internal/app/store/tasks"
	userstore "github.com/taskhive-dev/taskhive/internal/app/store/users"
	workspacestore "github.com/taskhive-dev/taskhive/internal/app/store/workspaces"
	"github.com/taskhive-dev/taskhive/internal/app/system/auth"
	"github.com/taskhive-dev/taskhive/internal/app/system/gates"
	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// any Startup hooks have completed. At this point you have access to:
//   - coreCfg: WAFFLE core configuration (ports, env, timeouts, etc.)
//   - appCfg: app-specific configuration defined in AppConfig
//   - deps: any DB or backend clients bundled in DBDeps
//   - logger: the fully configured zap.Logger for this app
//
// TaskHive is a JSON API: the router mounts the auth surface (register,
// login, Google OAuth), the current-user endpoints, and the workspace tree
// with projects, tasks, and comments nested under it.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	// Create the session manager using app config.
	// Secure cookies are enabled in production mode.
	secure := coreCfg.Env == "prod"
	sessionMgr, err := auth.NewSessionManager(appCfg.SessionKey, appCfg.SessionName, appCfg.SessionDomain, secure, logger)
	if err != nil {
		logger.Error("session manager init failed", zap.Error(err))
		return nil, err
	}

	db := deps.TaskHiveMongoDatabase

	// Stores.
	users := userstore.New(db)
	accounts := accountstore.New(db, logger)
	members := memberstore.New(db)
	roles := rolestore.New(db)
	workspaces := workspacestore.New(db, logger)
	projects := projectstore.New(db, logger)
	tasks := taskstore.New(db, logger)
	comments := commentstore.New(db)
	oauthStates := oauthstate.New(db)

	// The gate resolves a member's role and enforces permissions; every
	// workspace-scoped handler goes through it.
	gate := gates.New(members)

	r := chi.NewRouter()

	// Global auth middleware: loads SessionUser into context if logged in.
	r.Use(sessionMgr.LoadSessionUser)

	// Health check endpoint for load balancers and orchestrators.
	healthHandler := healthfeature.NewHandler(deps.TaskHiveMongoClient, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	// Authentication: email/password plus Google OAuth under /auth/google.
	googleHandler := authgooglefeature.NewHandler(
		accounts, oauthStates, sessionMgr,
		appCfg.GoogleClientID, appCfg.GoogleClientSecret,
		appCfg.BaseURL, appCfg.FrontendURL,
		logger,
	)
	authHandler := authfeature.NewHandler(accounts, sessionMgr, logger)
	r.Mount("/auth", authfeature.Routes(authHandler, sessionMgr, authgooglefeature.Routes(googleHandler)))

	// Current-user endpoints.
	userHandler := userinfofeature.NewHandler(users, members, logger)
	r.Mount("/user", userinfofeature.Routes(userHandler, sessionMgr))

	// Workspace tree. Routers compose bottom-up so comments nest under
	// tasks, tasks under projects, and both under workspaces.
	taskHandler := tasksfeature.NewHandler(tasks, projects, gate, logger)
	commentHandler := commentsfeature.NewHandler(comments, tasks, gate, logger)
	projectHandler := projectsfeature.NewHandler(db, projects, gate, logger)
	wsHandler := workspacesfeature.NewHandler(workspaces, members, roles, gate, logger)

	projectRouter := projectsfeature.Routes(projectHandler, tasksfeature.ProjectRoutes(taskHandler))
	wsTaskRouter := tasksfeature.WorkspaceRoutes(taskHandler, commentsfeature.Routes(commentHandler))
	r.Mount("/workspaces", workspacesfeature.Routes(wsHandler, sessionMgr, projectRouter, wsTaskRouter))

	return r, nil
}
