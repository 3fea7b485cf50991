package routes

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/inkwellhq/inkwell/config"
	"github.com/inkwellhq/inkwell/controllers"
	"github.com/inkwellhq/inkwell/middleware"
	"github.com/inkwellhq/inkwell/utils"
)

// SetupRouter wires routes, middlewares, and controllers.
func SetupRouter(db *gorm.DB) *gin.Engine {
	cfg := config.Get()
	switch strings.ToLower(cfg.GinMode) {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	r.Use(middleware.RequestID())

	// Access log goes to its own rolling file; recovery reports through zap.
	gl, err := utils.NewRollingFileLogger(cfg.GinPath, cfg.LogLevel, cfg.LogMaxSizeMB, cfg.LogMaxBackups, cfg.LogMaxAgeDays, cfg.LogCompress)
	if err == nil {
		r.Use(utils.Ginzap(gl, time.RFC3339, true))
		r.Use(utils.RecoveryWithZap(gl, false))
	} else {
		r.Use(gin.Recovery())
	}

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(cfg.AllowedOrigins) == 1 && cfg.AllowedOrigins[0] == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = cfg.AllowedOrigins
	}
	r.Use(cors.New(corsCfg))

	// Identity is resolved for every request; guards are applied per route.
	r.Use(middleware.CurrentUser())
	r.Use(middleware.PageViewRecorder(db))

	r.LoadHTMLGlob("templates/*.html")
	r.Static("/static", "./static")

	r.GET("/health", func(ctx *gin.Context) {
		utils.Success(ctx, gin.H{"status": "ok"})
	})

	authController := controllers.NewAuthController(db)
	postController := controllers.NewPostController(db)
	pagesController := controllers.NewPagesController()
	feedController := controllers.NewFeedController(db)

	// Public pages
	r.GET("/", postController.Index)
	r.GET("/post/:id", postController.Show)
	r.GET("/about", pagesController.About)
	r.GET("/contact", pagesController.ContactForm)
	r.POST("/contact", pagesController.ContactSubmit)

	// Auth flows, rate limited per IP
	auth := r.Group("")
	auth.Use(middleware.RateLimitMiddleware())
	auth.GET("/register", authController.RegisterForm)
	auth.POST("/register", authController.Register)
	auth.GET("/login", authController.LoginForm)
	auth.POST("/login", authController.Login)
	r.GET("/logout", authController.Logout)

	// Commenting requires a logged in user
	r.POST("/post/:id", middleware.LoginRequired(), postController.AddComment)

	// Post management requires the admin. AdminRequired checks authentication
	// before authorization and rejects both with 403, so anonymous probes learn
	// nothing about which routes exist behind the login wall.
	admin := r.Group("")
	admin.Use(middleware.AdminRequired())
	admin.GET("/new-post", postController.NewPostForm)
	admin.POST("/new-post", postController.CreatePost)
	admin.GET("/edit-post/:id", postController.EditPostForm)
	admin.POST("/edit-post/:id", postController.UpdatePost)
	admin.GET("/delete/:id", postController.DeletePost)

	// Read-only JSON feed
	api := r.Group("/api/v1")
	api.GET("/posts", feedController.ListPosts)
	api.GET("/posts/:id", feedController.GetPost)
	api.GET("/stats", feedController.Stats)

	r.NoRoute(func(ctx *gin.Context) {
		if strings.HasPrefix(ctx.Request.URL.Path, "/api/") {
			utils.Error(ctx, http.StatusNotFound, 40400, "api route not found")
			return
		}
		ctx.HTML(http.StatusNotFound, "error.html", gin.H{
			"Status":  http.StatusNotFound,
			"Message": "Page not found.",
		})
	})

	return r
}
