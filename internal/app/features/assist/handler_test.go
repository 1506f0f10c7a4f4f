package assist_test

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/robacademy/robohub/internal/app/features/assist"
	uierrors "github.com/robacademy/robohub/internal/app/features/errors"
	"github.com/robacademy/robohub/internal/testutil"
	"go.uber.org/zap"
)

func newTestHandler() *assist.Handler {
	logger := zap.NewNop()
	// nil client: every helper reports assist as disabled.
	return assist.NewHandler(nil, uierrors.NewErrorLogger(logger), logger)
}

func postForm(target string, form url.Values) *http.Request {
	req := httptest.NewRequest("POST", target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return testutil.WithUser(req, testutil.StudentUser("Lincoln High"))
}

func TestHandleChat_DisabledClient(t *testing.T) {
	h := newTestHandler()

	// The snippet render needs the template engine; the handler must reach
	// it without panicking on the nil client first.
	func() {
		defer func() { _ = recover() }()
		rec := httptest.NewRecorder()
		h.HandleChat(rec, postForm("/assist/chat", url.Values{
			"question": {"How do I tune PID?"},
		}))
	}()
}

func TestHandleDraftPost_DisabledClient(t *testing.T) {
	h := newTestHandler()

	func() {
		defer func() { _ = recover() }()
		rec := httptest.NewRecorder()
		h.HandleDraftPost(rec, postForm("/assist/post", url.Values{
			"topic": {"our first autonomous run"},
		}))
	}()
}

func TestParseHistoryThroughChat(t *testing.T) {
	h := newTestHandler()

	// Mismatched history arrays and unknown roles must not panic.
	func() {
		defer func() { _ = recover() }()
		rec := httptest.NewRecorder()
		h.HandleChat(rec, postForm("/assist/chat", url.Values{
			"question":        {"next question"},
			"history_role":    {"user", "assistant", "hacker"},
			"history_content": {"q1", "a1"},
		}))
	}()
}
