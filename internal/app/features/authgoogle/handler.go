package authgoogle

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/dalemusser/waffle/pantry/query"
	"github.com/gorilla/securecookie"
	userstore "github.com/robacademy/robohub/internal/app/store/users"
	"github.com/robacademy/robohub/internal/app/system/auditlog"
	"github.com/robacademy/robohub/internal/app/system/auth"
	"github.com/robacademy/robohub/internal/app/system/normalize"
	"github.com/robacademy/robohub/internal/app/system/timeouts"
	"github.com/robacademy/robohub/internal/domain/models"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// stateCookie carries the OAuth state between the redirect to Google and
// the callback. Signed, not encrypted; it holds no secrets.
const stateCookieName = "robohub_oauth_state"

// Handler handles Google OAuth sign-in.
type Handler struct {
	Users      *userstore.Store
	Log        *zap.Logger
	SessionMgr *auth.SessionManager
	AuditLog   *auditlog.Logger

	ClientID     string
	ClientSecret string
	RedirectURL  string

	sc *securecookie.SecureCookie
}

// NewHandler creates a Google OAuth handler. stateKey signs the short-lived
// state cookie; reusing the session key is fine.
func NewHandler(
	users *userstore.Store,
	sessionMgr *auth.SessionManager,
	audit *auditlog.Logger,
	clientID, clientSecret, baseURL, stateKey string,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		Users:        users,
		Log:          logger,
		SessionMgr:   sessionMgr,
		AuditLog:     audit,
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  strings.TrimRight(baseURL, "/") + "/auth/google/callback",
		sc:           securecookie.New([]byte(stateKey), nil),
	}
}

// IsConfigured reports whether both OAuth credentials are present.
func (h *Handler) IsConfigured() bool {
	return h.ClientID != "" && h.ClientSecret != ""
}

func (h *Handler) oauth2Config() *oauth2.Config {
	return &oauth2.Config{
		ClientID:     h.ClientID,
		ClientSecret: h.ClientSecret,
		RedirectURL:  h.RedirectURL,
		Scopes: []string{
			"openid",
			"https://www.googleapis.com/auth/userinfo.email",
			"https://www.googleapis.com/auth/userinfo.profile",
		},
		Endpoint: google.Endpoint,
	}
}

type statePayload struct {
	State  string
	Return string
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /auth/google – redirect to Google's consent screen                       |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeLogin(w http.ResponseWriter, r *http.Request) {
	if !h.IsConfigured() {
		h.Log.Warn("google oauth not configured")
		http.Redirect(w, r, "/login?error=google_not_configured", http.StatusSeeOther)
		return
	}

	state, err := generateState()
	if err != nil {
		h.Log.Error("generate oauth state", zap.Error(err))
		http.Redirect(w, r, "/login?error=internal", http.StatusSeeOther)
		return
	}

	encoded, err := h.sc.Encode(stateCookieName, statePayload{
		State:  state,
		Return: query.Get(r, "return"),
	})
	if err != nil {
		h.Log.Error("encode oauth state cookie", zap.Error(err))
		http.Redirect(w, r, "/login?error=internal", http.StatusSeeOther)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     stateCookieName,
		Value:    encoded,
		Path:     "/auth/google",
		MaxAge:   600,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, h.oauth2Config().AuthCodeURL(state), http.StatusTemporaryRedirect)
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /auth/google/callback                                                    |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeCallback(w http.ResponseWriter, r *http.Request) {
	if errParam := r.URL.Query().Get("error"); errParam != "" {
		h.Log.Warn("google oauth denied",
			zap.String("error", errParam),
			zap.String("description", r.URL.Query().Get("error_description")))
		http.Redirect(w, r, "/login?error=google_denied", http.StatusSeeOther)
		return
	}

	payload, ok := h.readState(w, r)
	if !ok {
		http.Redirect(w, r, "/login?error=invalid_state", http.StatusSeeOther)
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		http.Redirect(w, r, "/login?error=invalid_code", http.StatusSeeOther)
		return
	}

	token, err := h.oauth2Config().Exchange(r.Context(), code)
	if err != nil {
		h.Log.Error("google oauth exchange", zap.Error(err))
		http.Redirect(w, r, "/login?error=token_exchange", http.StatusSeeOther)
		return
	}

	googleUser, err := fetchGoogleUserInfo(r.Context(), token)
	if err != nil {
		h.Log.Error("google userinfo fetch", zap.Error(err))
		http.Redirect(w, r, "/login?error=user_info", http.StatusSeeOther)
		return
	}
	if !googleUser.EmailVerified {
		h.Log.Warn("google account email not verified", zap.String("email", googleUser.Email))
		http.Redirect(w, r, "/login?error=email_unverified", http.StatusSeeOther)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	u, created, err := h.findOrCreateUser(ctx, googleUser)
	if err != nil {
		h.Log.Error("google oauth user lookup", zap.Error(err))
		http.Redirect(w, r, "/login?error=internal", http.StatusSeeOther)
		return
	}

	if normalize.Status(u.Status) == "disabled" {
		http.Redirect(w, r, "/login?error=account_disabled", http.StatusSeeOther)
		return
	}

	if err := h.SessionMgr.Login(w, r, userstore.SessionUserFor(u)); err != nil {
		h.Log.Error("google oauth session", zap.Error(err))
		http.Redirect(w, r, "/login?error=session", http.StatusSeeOther)
		return
	}

	if created {
		h.AuditLog.UserRegistered(ctx, r, u.ID, "google", u.Email)
	}
	h.AuditLog.LoginSuccess(ctx, r, u.ID, "google", u.Email)

	dest := payload.Return
	if dest == "" || !strings.HasPrefix(dest, "/") {
		dest = "/dashboard"
	}
	http.Redirect(w, r, dest, http.StatusSeeOther)
}

// readState validates the state parameter against the signed cookie and
// clears the cookie either way.
func (h *Handler) readState(w http.ResponseWriter, r *http.Request) (statePayload, bool) {
	defer http.SetCookie(w, &http.Cookie{
		Name:   stateCookieName,
		Path:   "/auth/google",
		MaxAge: -1,
	})

	cookie, err := r.Cookie(stateCookieName)
	if err != nil {
		h.Log.Warn("oauth state cookie missing")
		return statePayload{}, false
	}

	var payload statePayload
	if err := h.sc.Decode(stateCookieName, cookie.Value, &payload); err != nil {
		h.Log.Warn("oauth state cookie invalid", zap.Error(err))
		return statePayload{}, false
	}

	if state := r.URL.Query().Get("state"); state == "" || state != payload.State {
		h.Log.Warn("oauth state mismatch")
		return statePayload{}, false
	}
	return payload, true
}

// findOrCreateUser resolves the Google identity to a local account by email,
// creating a student account on first sign-in.
func (h *Handler) findOrCreateUser(ctx context.Context, g *googleUserInfo) (*models.User, bool, error) {
	email := normalize.Email(g.Email)

	u, err := h.Users.GetByEmail(ctx, email)
	if err == nil {
		return u, false, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, false, err
	}

	avatar := g.Picture
	if avatar == "" {
		avatar = models.DefaultAvatarURL
	}

	created, err := h.Users.Create(ctx, models.User{
		FullName:   g.Name,
		Email:      email,
		Role:       models.RoleStudent,
		AuthMethod: "google",
		AvatarURL:  avatar,
	})
	if err != nil {
		// Another request may have created the account between lookup and insert.
		if errors.Is(err, userstore.ErrDuplicateEmail) {
			u, err2 := h.Users.GetByEmail(ctx, email)
			if err2 != nil {
				return nil, false, err2
			}
			return u, false, nil
		}
		return nil, false, err
	}
	return &created, true, nil
}

/*─────────────────────────────────────────────────────────────────────────────*
| Helpers                                                                      |
*─────────────────────────────────────────────────────────────────────────────*/

type googleUserInfo struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"verified_email"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
}

func fetchGoogleUserInfo(ctx context.Context, token *oauth2.Token) (*googleUserInfo, error) {
	client := oauth2.NewClient(ctx, oauth2.StaticTokenSource(token))

	resp, err := client.Get("https://www.googleapis.com/oauth2/v2/userinfo")
	if err != nil {
		return nil, fmt.Errorf("fetch user info: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("userinfo endpoint returned %d", resp.StatusCode)
	}

	var info googleUserInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("decode user info: %w", err)
	}
	return &info, nil
}

func generateState() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}
