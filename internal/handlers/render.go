package handlers

import (
	"wanderlust"
	"wanderlust/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/csrf"
)

// Flash kinds, re-exported for handler readability.
const (
	flashSuccess = service.FlashSuccess
	flashError   = service.FlashError
)

// render executes an HTML template with the common page fields merged in:
// the current user, pending flash messages (popped, read-once), and the
// CSRF form field.
func (h *Handler) render(c *gin.Context, status int, template string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	data["CurrentUser"] = currentUser(c)
	data["CSRFField"] = csrf.TemplateField(c.Request)

	flash := wanderlust.Flash{}
	if sess := currentSession(c); sess != nil {
		f, err := h.services.Sessions.PopFlash(c.Request.Context(), sess.Token)
		if err != nil {
			h.log.Errorw("flash_pop_failed", "err", err)
		} else {
			flash = f
		}
	}
	data["Flash"] = flash

	c.HTML(status, template, data)
}

// renderError renders the generic error page with the given status code.
func (h *Handler) renderError(c *gin.Context, status int, message string) {
	if message == "" {
		message = "Something went wrong!!"
	}
	c.HTML(status, "error.html", gin.H{
		"Status":      status,
		"Message":     message,
		"CurrentUser": currentUser(c),
	})
}

// flash attaches a one-shot message to the session for the next page.
func (h *Handler) flash(c *gin.Context, kind, message string) {
	sess := currentSession(c)
	if sess == nil {
		return
	}
	if err := h.services.Sessions.AddFlash(c.Request.Context(), sess.Token, kind, message); err != nil {
		h.log.Errorw("flash_add_failed", "err", err)
	}
}
