package about

import (
	"net/http"

	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/robacademy/robohub/internal/app/system/viewdata"
	"go.uber.org/zap"
)

type Handler struct {
	Log *zap.Logger
}

func NewHandler(logger *zap.Logger) *Handler {
	return &Handler{Log: logger}
}

func (h *Handler) ServeAbout(w http.ResponseWriter, r *http.Request) {
	data := struct {
		viewdata.BaseVM
	}{
		BaseVM: viewdata.NewBaseVM(r, "About RoboHub", "/"),
	}

	templates.Render(w, r, "about", data)
}
