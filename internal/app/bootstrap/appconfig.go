// internal/app/bootstrap/appconfig.go
package bootstrap

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// These values come from environment variables, configuration files, or
// command-line flags (loaded in LoadConfig). They represent *app-level*
// configuration, not WAFFLE core configuration.
//
// WAFFLE's CoreConfig handles framework-level settings like:
//   - HTTP/HTTPS ports and TLS configuration
//   - Logging level and format
//   - CORS settings
//   - Request body size limits
//   - Database connection timeouts
//
// AppConfig is where RoboHub puts everything specific to the app:
// MongoDB connection details, session cookie settings, audit logging
// modes, and credentials for the optional Google sign-in and OpenAI
// integrations.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase    string // Database name within MongoDB
	MongoMaxPoolSize uint64 // Max connections in the driver pool
	MongoMinPoolSize uint64 // Min connections kept warm in the pool

	// Session management configuration
	SessionKey    string // Secret key for signing session cookies (must be strong in production)
	SessionName   string // Cookie name for sessions (default: robohub-session)
	SessionDomain string // Cookie domain (blank means current host)

	// Base URL for absolute links (OAuth callbacks, shared post URLs)
	BaseURL string // e.g., "https://robohub.example.com" or "http://localhost:3000"

	// Audit logging settings: "all" (db+log), "db", "log", or "off"
	AuditLogAuth  string // Logging mode for authentication events
	AuditLogAdmin string // Logging mode for admin action events

	// Google OAuth configuration. Sign in with Google is disabled when
	// either value is blank.
	GoogleClientID     string
	GoogleClientSecret string

	// OpenAI API key for the assist workspace and post moderation.
	// Blank disables all AI features; the rest of the app works without them.
	OpenAIAPIKey string
}
