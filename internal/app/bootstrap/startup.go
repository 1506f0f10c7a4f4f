// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"

	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// Startup runs one-time application initialization after DB connections and
// schema setup are complete, but before the HTTP handler is built.
//
// RoboHub's feature templates register themselves via init, so there is
// nothing to load here. This hook only announces which optional
// integrations are active so a misconfigured deployment is visible in
// the startup log rather than as silently missing features.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	if appCfg.GoogleClientID == "" {
		logger.Info("Google sign-in disabled (google_client_id not set)")
	}
	if appCfg.OpenAIAPIKey == "" {
		logger.Info("AI features disabled (openai_api_key not set)")
	}
	return nil
}
