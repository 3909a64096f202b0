package handlers

import (
	"net/http"
	"strings"

	"leafscan"

	"github.com/gin-gonic/gin"
)

const userCtxKey = "currentUser"

// authMiddleware extracts and verifies the bearer token, then re-resolves
// the subject against the user store so stale tokens for removed accounts
// fail closed. The resolved user is stored in the request context.
func (h *Handler) authMiddleware(c *gin.Context) {
	header := c.GetHeader("Authorization")
	if header == "" {
		h.abortUnauthorized(c, "missing Authorization header")
		return
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		h.abortUnauthorized(c, "invalid Authorization header format")
		return
	}

	username, err := h.services.ParseToken(parts[1])
	if err != nil {
		h.abortUnauthorized(c, "invalid or expired token")
		return
	}

	user, err := h.services.UserBySubject(c.Request.Context(), username)
	if err != nil || user == nil {
		if h.log != nil && err != nil {
			h.log.Errorw("auth_subject_lookup_failed", "err", err, "subject", username)
		}
		h.abortUnauthorized(c, "could not validate credentials")
		return
	}

	c.Set(userCtxKey, user)
	c.Next()
}

func (h *Handler) abortUnauthorized(c *gin.Context, msg string) {
	c.Header("WWW-Authenticate", "Bearer")
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": msg})
}

// currentUser returns the user resolved by authMiddleware.
func currentUser(c *gin.Context) (*leafscan.User, bool) {
	v, ok := c.Get(userCtxKey)
	if !ok {
		return nil, false
	}
	u, ok := v.(*leafscan.User)
	return u, ok
}
