package middleware

import (
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"github.com/inkwellhq/inkwell/models"
	"github.com/inkwellhq/inkwell/utils"
)

// identityKey stores the resolved *Identity in the gin context. Anonymous
// requests simply have no value under this key; there is never a half-filled
// user object to confuse "not logged in" with "logged in but inactive".
const identityKey = "identity"

// Identity is the authenticated user attached to the current request.
type Identity struct {
	UserID uint
	Name   string
	Role   string
}

// IsAdmin reports whether the identity may manage posts.
func (id *Identity) IsAdmin() bool {
	return id != nil && id.Role == models.RoleAdmin
}

// CurrentUser resolves the session cookie into an Identity for every request.
// Missing, expired, malformed, or revoked tokens all leave the request anonymous.
func CurrentUser() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		tokenStr, err := ctx.Cookie(utils.SessionCookieName)
		if err != nil || tokenStr == "" {
			ctx.Next()
			return
		}
		if utils.IsTokenBlacklisted(tokenStr) {
			ctx.Next()
			return
		}
		claims, err := utils.ParseSessionToken(tokenStr)
		if err != nil {
			ctx.Next()
			return
		}

		ctx.Set(identityKey, &Identity{
			UserID: claims.UserID,
			Name:   claims.Name,
			Role:   claims.Role,
		})
		ctx.Next()
	}
}

// IdentityFrom returns the authenticated identity, or (nil, false) for an
// anonymous request.
func IdentityFrom(ctx *gin.Context) (*Identity, bool) {
	value, exists := ctx.Get(identityKey)
	if !exists {
		return nil, false
	}
	id, ok := value.(*Identity)
	if !ok || id == nil {
		return nil, false
	}
	return id, true
}

// LoginRequired redirects anonymous requests to the login page with an
// explanatory flash message. Must run after CurrentUser.
func LoginRequired() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if _, ok := IdentityFrom(ctx); !ok {
			msg := url.QueryEscape("You need to log in first in order to do that.")
			ctx.Redirect(http.StatusFound, "/login?flash="+msg)
			ctx.Abort()
			return
		}
		ctx.Next()
	}
}

// AdminRequired rejects non-admin requests with 403 and no partial state
// change. Anonymous requests get the same 403. Must run after CurrentUser.
func AdminRequired() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		id, ok := IdentityFrom(ctx)
		if !ok || !id.IsAdmin() {
			ctx.HTML(http.StatusForbidden, "error.html", gin.H{
				"Status":  http.StatusForbidden,
				"Message": "You don't have permission to access the requested resource.",
			})
			ctx.Abort()
			return
		}
		ctx.Next()
	}
}
