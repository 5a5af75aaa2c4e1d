package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h *Handler) showSignup(c *gin.Context) {
	h.render(c, http.StatusOK, "signup.html", nil)
}

// signUp registers the user and logs them into the current session
// immediately, so the very next request is authenticated (auto-login).
func (h *Handler) signUp(c *gin.Context) {
	ctx := c.Request.Context()

	username := c.PostForm("username")
	email := c.PostForm("email")
	password := c.PostForm("password")

	user, err := h.services.SignUp(ctx, username, email, password)
	if err != nil {
		h.log.Infow("signup_failed", "username", username, "err", err)
		h.flash(c, flashError, err.Error())
		c.Redirect(http.StatusFound, "/signup")
		return
	}

	sess := currentSession(c)
	if err := h.services.Sessions.Login(ctx, sess.Token, user.ID); err != nil {
		h.log.Errorw("signup_auto_login_failed", "user_id", user.ID, "err", err)
		h.renderError(c, http.StatusInternalServerError, "")
		return
	}

	h.flash(c, flashSuccess, "User was registered and logged in successfully")
	c.Redirect(http.StatusFound, "/listings")
}

func (h *Handler) showLogin(c *gin.Context) {
	h.render(c, http.StatusOK, "login.html", nil)
}

func (h *Handler) logIn(c *gin.Context) {
	ctx := c.Request.Context()

	username := c.PostForm("username")
	password := c.PostForm("password")

	user, err := h.services.Authenticate(ctx, username, password)
	if err != nil {
		h.log.Infow("login_failed", "username", username, "err", err)
		h.flash(c, flashError, "Invalid username or password")
		c.Redirect(http.StatusFound, "/login")
		return
	}

	sess := currentSession(c)
	if err := h.services.Sessions.Login(ctx, sess.Token, user.ID); err != nil {
		h.log.Errorw("login_session_failed", "user_id", user.ID, "err", err)
		h.renderError(c, http.StatusInternalServerError, "")
		return
	}

	h.flash(c, flashSuccess, "Welcome to Wanderlust! You are logged in")
	c.Redirect(http.StatusFound, "/listings")
}

// logOut destroys the server-side session and expires the cookie.
func (h *Handler) logOut(c *gin.Context) {
	sess := currentSession(c)
	if sess != nil {
		if err := h.services.Sessions.Logout(c.Request.Context(), sess.Token); err != nil {
			h.log.Errorw("logout_failed", "err", err)
		}
	}
	c.SetCookie(SessionCookie, "", -1, "/", "", h.secureCookies, true)
	c.Redirect(http.StatusFound, "/listings")
}
