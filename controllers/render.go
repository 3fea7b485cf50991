package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/inkwellhq/inkwell/middleware"
)

// viewData merges per-page template data with the identity fields every page
// needs for its navigation bar.
func viewData(ctx *gin.Context, data gin.H) gin.H {
	if data == nil {
		data = gin.H{}
	}
	if id, ok := middleware.IdentityFrom(ctx); ok {
		data["LoggedIn"] = true
		data["CurrentUser"] = id
		data["IsAdmin"] = id.IsAdmin()
	} else {
		data["LoggedIn"] = false
		data["IsAdmin"] = false
	}
	return data
}

// renderServerError hides storage-layer details behind a generic failure page.
func renderServerError(ctx *gin.Context) {
	ctx.HTML(http.StatusInternalServerError, "error.html", viewData(ctx, gin.H{
		"Status":  http.StatusInternalServerError,
		"Message": "Something went wrong on our side, please try again later.",
	}))
}

// renderNotFound renders the shared error page with a 404 status.
func renderNotFound(ctx *gin.Context, what string) {
	ctx.HTML(http.StatusNotFound, "error.html", viewData(ctx, gin.H{
		"Status":  http.StatusNotFound,
		"Message": what + " not found.",
	}))
}
