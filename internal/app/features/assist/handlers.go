package assist

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/gorilla/csrf"
	"github.com/robacademy/robohub/internal/app/ai"
	"github.com/robacademy/robohub/internal/app/system/authz"
	"github.com/robacademy/robohub/internal/app/system/timeouts"
	"github.com/robacademy/robohub/internal/app/system/viewdata"
	"go.uber.org/zap"
)

// historyLimit bounds how many prior turns the chat form replays. The
// conversation lives in hidden form fields, not server state.
const historyLimit = 10

type workspaceData struct {
	viewdata.BaseVM
	Enabled bool

	// Empty panel states for the initial render.
	Chat  chatVM
	Draft draftVM
	Image imageVM
}

type chatVM struct {
	History   []ai.ChatTurn
	Error     string
	CSRFToken string
}

type draftVM struct {
	Topic     string
	Draft     string
	Error     string
	CSRFToken string
}

type imageVM struct {
	Prompt    string
	ImageURL  string
	Error     string
	CSRFToken string
}

// ServeWorkspace renders the assist page.
// Authorization: RequireSignedIn middleware in routes.go.
func (h *Handler) ServeWorkspace(w http.ResponseWriter, r *http.Request) {
	data := workspaceData{
		BaseVM:  viewdata.NewBaseVM(r, "Assist", "/dashboard"),
		Enabled: h.AI.Enabled(),
	}
	data.Chat.CSRFToken = data.CSRFToken
	data.Draft.CSRFToken = data.CSRFToken
	data.Image.CSRFToken = data.CSRFToken
	templates.Render(w, r, "assist", data)
}

func (h *Handler) assistCtx(r *http.Request) (context.Context, context.CancelFunc) {
	return context.WithTimeout(r.Context(), timeouts.Assist())
}

// assistErr maps a helper failure onto the user-facing message for the
// snippet, logging everything but the disabled case.
func (h *Handler) assistErr(op string, err error) string {
	if errors.Is(err, ai.ErrDisabled) {
		return "Assist is not configured on this server."
	}
	h.Log.Error(op, zap.Error(err))
	return "The assistant did not answer. Try again in a moment."
}

// HandleChat answers one coaching question, replaying the prior turns
// carried in the form.
// POST /assist/chat
func (h *Handler) HandleChat(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "assist chat: parse form", err, "Invalid form submission.", "/assist")
		return
	}

	question := strings.TrimSpace(r.FormValue("question"))
	history := parseHistory(r.Form["history_role"], r.Form["history_content"])

	vm := chatVM{History: history, CSRFToken: csrf.Token(r)}
	if question == "" {
		vm.Error = "Ask a question first."
		templates.RenderSnippet(w, "assist_chat", vm)
		return
	}

	_, name, _, _ := authz.UserCtx(r)

	ctx, cancel := h.assistCtx(r)
	defer cancel()

	answer, err := h.AI.CoachChat(ctx, name, history, question)
	if err != nil {
		vm.Error = h.assistErr("assist chat failed", err)
		templates.RenderSnippet(w, "assist_chat", vm)
		return
	}

	vm.History = append(vm.History,
		ai.ChatTurn{Role: "user", Content: question},
		ai.ChatTurn{Role: "assistant", Content: answer})
	if len(vm.History) > historyLimit {
		vm.History = vm.History[len(vm.History)-historyLimit:]
	}
	templates.RenderSnippet(w, "assist_chat", vm)
}

func parseHistory(roles, contents []string) []ai.ChatTurn {
	n := len(roles)
	if len(contents) < n {
		n = len(contents)
	}
	var turns []ai.ChatTurn
	for i := 0; i < n && i < historyLimit; i++ {
		role := roles[i]
		if role != "user" && role != "assistant" {
			continue
		}
		turns = append(turns, ai.ChatTurn{Role: role, Content: contents[i]})
	}
	return turns
}

// HandleDraftPost drafts a community post about the submitted topic.
// POST /assist/post
func (h *Handler) HandleDraftPost(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "assist draft: parse form", err, "Invalid form submission.", "/assist")
		return
	}

	topic := strings.TrimSpace(r.FormValue("topic"))
	vm := draftVM{Topic: topic, CSRFToken: csrf.Token(r)}
	if topic == "" {
		vm.Error = "Give the drafter a topic."
		templates.RenderSnippet(w, "assist_draft", vm)
		return
	}

	ctx, cancel := h.assistCtx(r)
	defer cancel()

	draft, err := h.AI.GeneratePost(ctx, topic)
	if err != nil {
		vm.Error = h.assistErr("assist draft failed", err)
	}
	vm.Draft = draft
	templates.RenderSnippet(w, "assist_draft", vm)
}

// HandleImage generates an illustration for the submitted prompt.
// POST /assist/image
func (h *Handler) HandleImage(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "assist image: parse form", err, "Invalid form submission.", "/assist")
		return
	}

	prompt := strings.TrimSpace(r.FormValue("prompt"))
	vm := imageVM{Prompt: prompt, CSRFToken: csrf.Token(r)}
	if prompt == "" {
		vm.Error = "Describe the image you want."
		templates.RenderSnippet(w, "assist_image", vm)
		return
	}

	ctx, cancel := h.assistCtx(r)
	defer cancel()

	url, err := h.AI.GenerateImage(ctx, prompt)
	if err != nil {
		vm.Error = h.assistErr("assist image failed", err)
	}
	vm.ImageURL = url
	templates.RenderSnippet(w, "assist_image", vm)
}
