// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"

	"github.com/dalemusser/waffle/config"
	"github.com/dalemusser/waffle/pantry/fileserver"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/csrf"
	"go.uber.org/zap"

	"github.com/robacademy/robohub/internal/app/ai"
	aboutfeature "github.com/robacademy/robohub/internal/app/features/about"
	assistfeature "github.com/robacademy/robohub/internal/app/features/assist"
	authgooglefeature "github.com/robacademy/robohub/internal/app/features/authgoogle"
	coachesfeature "github.com/robacademy/robohub/internal/app/features/coaches"
	communityfeature "github.com/robacademy/robohub/internal/app/features/community"
	competitionsfeature "github.com/robacademy/robohub/internal/app/features/competitions"
	dashboardfeature "github.com/robacademy/robohub/internal/app/features/dashboard"
	errorsfeature "github.com/robacademy/robohub/internal/app/features/errors"
	healthfeature "github.com/robacademy/robohub/internal/app/features/health"
	homefeature "github.com/robacademy/robohub/internal/app/features/home"
	loginfeature "github.com/robacademy/robohub/internal/app/features/login"
	logoutfeature "github.com/robacademy/robohub/internal/app/features/logout"
	profilefeature "github.com/robacademy/robohub/internal/app/features/profile"
	registerfeature "github.com/robacademy/robohub/internal/app/features/register"
	schoolsfeature "github.com/robacademy/robohub/internal/app/features/schools"
	teamsfeature "github.com/robacademy/robohub/internal/app/features/teams"
	usersfeature "github.com/robacademy/robohub/internal/app/features/users"
	"github.com/robacademy/robohub/internal/app/registry"
	"github.com/robacademy/robohub/internal/app/store/audit"
	coachstore "github.com/robacademy/robohub/internal/app/store/coaches"
	compstore "github.com/robacademy/robohub/internal/app/store/competitions"
	poststore "github.com/robacademy/robohub/internal/app/store/posts"
	schoolstore "github.com/robacademy/robohub/internal/app/store/schools"
	teamstore "github.com/robacademy/robohub/internal/app/store/teams"
	userstore "github.com/robacademy/robohub/internal/app/store/users"
	"github.com/robacademy/robohub/internal/app/system/auditlog"
	"github.com/robacademy/robohub/internal/app/system/auth"
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
// RoboHub initializes the template engine, applies session and CSRF
// middleware, and mounts feature routers for all application areas:
// home, auth, dashboard, users, schools, coaches, teams, competitions,
// the community feed, and the assist workspace.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	db := deps.MongoDatabase

	// Create the session manager using app config.
	// Secure cookies are enabled in production mode.
	secure := coreCfg.Env == "prod"
	sessionMgr, err := auth.NewSessionManager(appCfg.SessionKey, appCfg.SessionName, appCfg.SessionDomain, secure, logger)
	if err != nil {
		logger.Error("session manager init failed", zap.Error(err))
		return nil, err
	}

	// Set up the UserFetcher so LoadSessionUser fetches fresh user data on each request.
	// This ensures role changes, disabled accounts, and profile updates take effect immediately.
	sessionMgr.SetUserFetcher(userstore.NewFetcher(db))

	// Initialize and boot the template engine once at startup.
	// Dev mode enables template reloading for faster iteration.
	eng := templates.New(coreCfg.Env == "dev")
	if err := eng.Boot(logger); err != nil {
		logger.Error("template engine boot failed", zap.Error(err))
		return nil, err
	}
	templates.UseEngine(eng, logger)

	// Shared backends for feature handlers.
	errLog := errorsfeature.NewErrorLogger(logger)
	auditLog := auditlog.New(audit.New(db), logger, auditlog.Config{
		Auth:  appCfg.AuditLogAuth,
		Admin: appCfg.AuditLogAdmin,
	})
	reg := registry.New(db, logger)
	aiClient := ai.New(appCfg.OpenAIAPIKey)

	users := userstore.New(db)
	schools := schoolstore.New(db)
	coaches := coachstore.New(db)
	teams := teamstore.New(db)
	comps := compstore.New(db)
	posts := poststore.New(db)

	r := chi.NewRouter()

	// Global auth middleware: loads SessionUser into context if logged in.
	// This makes the current user available to all handlers via auth.CurrentUser(r).
	r.Use(sessionMgr.LoadSessionUser)

	// CSRF protection for every form and HTMX POST. Templates carry the
	// token as a hidden gorilla.csrf.Token field or an X-CSRF-Token header.
	r.Use(csrf.Protect([]byte(appCfg.SessionKey), csrf.Secure(secure), csrf.Path("/")))

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.MongoClient, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	// Static assets with pre-compressed file support (gzip/brotli)
	r.Handle("/static/*", fileserver.Handler("/static", "public"))

	// Public pages
	homeHandler := homefeature.NewHandler(db, logger, reg)
	r.Mount("/", homefeature.Routes(homeHandler))

	aboutHandler := aboutfeature.NewHandler(logger)
	r.Mount("/about", aboutfeature.Routes(aboutHandler))

	// Authentication. Google sign-in is mounted even when unconfigured so
	// its routes answer with a clear error instead of a 404.
	googleHandler := authgooglefeature.NewHandler(
		users, sessionMgr, auditLog,
		appCfg.GoogleClientID, appCfg.GoogleClientSecret, appCfg.BaseURL, appCfg.SessionKey,
		logger)
	r.Mount("/auth/google", authgooglefeature.Routes(googleHandler))

	loginHandler := loginfeature.NewHandler(users, sessionMgr, errLog, auditLog, googleHandler.IsConfigured(), logger)
	r.Mount("/login", loginfeature.Routes(loginHandler))

	logoutHandler := logoutfeature.NewHandler(sessionMgr, auditLog, logger)
	r.Mount("/logout", logoutfeature.Routes(logoutHandler))

	registerHandler := registerfeature.NewHandler(users, schools, sessionMgr, errLog, auditLog, logger)
	r.Mount("/register", registerfeature.Routes(registerHandler))

	// Error pages
	errorsHandler := errorsfeature.NewHandler()
	r.Get("/forbidden", errorsHandler.Forbidden)
	r.Get("/unauthorized", errorsHandler.Unauthorized)

	// Signed-in account pages
	profileHandler := profilefeature.NewHandler(users, coaches, schools, reg, sessionMgr, errLog, auditLog, logger)
	r.Mount("/profile", profilefeature.Routes(profileHandler, sessionMgr))

	dashboardHandler := dashboardfeature.NewHandler(users, schools, teams, comps, posts, reg, errLog, logger)
	r.Mount("/dashboard", dashboardfeature.Routes(dashboardHandler, sessionMgr))

	// Admin: accounts and role transitions
	usersHandler := usersfeature.NewHandler(db, reg, errLog, auditLog, logger)
	r.Mount("/users", usersfeature.Routes(usersHandler, sessionMgr))

	// Directory: schools, coaches, teams
	schoolsHandler := schoolsfeature.NewHandler(db, reg, errLog, auditLog, logger)
	r.Mount("/schools", schoolsfeature.Routes(schoolsHandler, sessionMgr))

	coachesHandler := coachesfeature.NewHandler(db, errLog, logger)
	r.Mount("/coaches", coachesfeature.Routes(coachesHandler))

	teamsHandler := teamsfeature.NewHandler(db, errLog, auditLog, logger)
	r.Mount("/teams", teamsfeature.Routes(teamsHandler, sessionMgr))

	// Competitions and registrations
	competitionsHandler := competitionsfeature.NewHandler(db, reg, errLog, auditLog, logger)
	r.Mount("/competitions", competitionsfeature.Routes(competitionsHandler, sessionMgr))

	// Community feed and moderation queue
	communityHandler := communityfeature.NewHandler(db, reg, aiClient, errLog, auditLog, logger)
	r.Mount("/community", communityfeature.Routes(communityHandler, sessionMgr))

	// Assist workspace (chat, post drafting, image generation)
	assistHandler := assistfeature.NewHandler(aiClient, errLog, logger)
	r.Mount("/assist", assistfeature.Routes(assistHandler, sessionMgr))

	return r, nil
}
