package handlers

import (
	"errors"
	"net/http"
	"strings"

	"wanderlust"
	"wanderlust/internal/service"

	"github.com/gin-gonic/gin"
)

// SessionCookie is the name of the httponly session cookie.
const SessionCookie = "wanderlust_session"

// cookieMaxAge matches the server-side session TTL (7 days).
const cookieMaxAge = 7 * 24 * 60 * 60

// Gin context keys.
const (
	ctxKeySession = "session"
	ctxKeyUser    = "currentUser"
)

// sessionMiddleware ensures every request carries a live server-side
// session, creating one (and setting the cookie) when the token is missing,
// unknown, or expired. The authenticated user, if any, is resolved into the
// context for handlers and templates.
func (h *Handler) sessionMiddleware(c *gin.Context) {
	ctx := c.Request.Context()

	token, _ := c.Cookie(SessionCookie)
	sess, err := h.services.Sessions.Get(ctx, token)
	if err != nil {
		h.log.Errorw("session_load_failed", "err", err)
		h.renderError(c, http.StatusInternalServerError, "Something went wrong!!")
		c.Abort()
		return
	}
	if sess == nil {
		sess, err = h.services.Sessions.Start(ctx)
		if err != nil {
			h.log.Errorw("session_start_failed", "err", err)
			h.renderError(c, http.StatusInternalServerError, "Something went wrong!!")
			c.Abort()
			return
		}
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(SessionCookie, sess.Token, cookieMaxAge, "/", "", h.secureCookies, true)
	}
	c.Set(ctxKeySession, sess)

	if sess.UserID != 0 {
		user, err := h.services.UserByID(ctx, sess.UserID)
		switch {
		case err == nil:
			c.Set(ctxKeyUser, user)
		case errors.Is(err, service.ErrUserNotFound):
			// stale session pointing at a deleted user; render anonymous
		default:
			h.log.Errorw("session_user_lookup_failed", "user_id", sess.UserID, "err", err)
		}
	}

	c.Next()
}

// requireLogin aborts with a flash+redirect to /login when the request is
// anonymous.
func (h *Handler) requireLogin(c *gin.Context) {
	if currentUser(c) == nil {
		h.flash(c, flashError, "You must be signed in to do that!")
		c.Redirect(http.StatusFound, "/login")
		c.Abort()
		return
	}
	c.Next()
}

// currentUser returns the authenticated user for this request, or nil.
func currentUser(c *gin.Context) *wanderlust.User {
	if v, ok := c.Get(ctxKeyUser); ok {
		if u, ok := v.(*wanderlust.User); ok {
			return u
		}
	}
	return nil
}

// currentSession returns the request's session. The session middleware
// guarantees it is present on routed requests.
func currentSession(c *gin.Context) *wanderlust.Session {
	if v, ok := c.Get(ctxKeySession); ok {
		if s, ok := v.(*wanderlust.Session); ok {
			return s
		}
	}
	return nil
}

// MethodOverride rewrites POST requests carrying ?_method=PUT or DELETE so
// HTML forms can drive those routes. Runs outside the router, wrapped
// around the engine in main.
func MethodOverride(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			switch strings.ToUpper(r.URL.Query().Get("_method")) {
			case http.MethodPut:
				r.Method = http.MethodPut
			case http.MethodDelete:
				r.Method = http.MethodDelete
			}
		}
		next.ServeHTTP(w, r)
	})
}
