package controllers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/inkwellhq/inkwell/config"
	"github.com/inkwellhq/inkwell/models"
	"github.com/inkwellhq/inkwell/utils"
)

// AuthController handles registration, login, and logout.
type AuthController struct {
	db *gorm.DB
}

// NewAuthController creates an AuthController.
func NewAuthController(db *gorm.DB) *AuthController {
	return &AuthController{db: db}
}

// RegisterForm renders the registration page.
func (a *AuthController) RegisterForm(ctx *gin.Context) {
	ctx.HTML(http.StatusOK, "register.html", viewData(ctx, gin.H{"Name": "", "Email": ""}))
}

// Register creates an account from the submitted form and logs the new user in.
// The very first account becomes the site admin.
func (a *AuthController) Register(ctx *gin.Context) {
	name := strings.TrimSpace(ctx.PostForm("name"))
	email := strings.ToLower(strings.TrimSpace(ctx.PostForm("email")))
	password := ctx.PostForm("password")

	if name == "" || email == "" || password == "" {
		ctx.HTML(http.StatusBadRequest, "register.html", viewData(ctx, gin.H{
			"Flash": "Name, email and password are all required.",
			"Name":  name,
			"Email": email,
		}))
		return
	}
	if !strings.Contains(email, "@") {
		ctx.HTML(http.StatusBadRequest, "register.html", viewData(ctx, gin.H{
			"Flash": "That doesn't look like an email address.",
			"Name":  name,
			"Email": "",
		}))
		return
	}
	if len(password) < 6 {
		ctx.HTML(http.StatusBadRequest, "register.html", viewData(ctx, gin.H{
			"Flash": "Password must be at least 6 characters.",
			"Name":  name,
			"Email": email,
		}))
		return
	}

	var existing models.User
	if err := a.db.Where("email = ?", email).First(&existing).Error; err == nil {
		// Redisplay the login form instead, matching the registration flow
		// users expect when they already have an account.
		ctx.HTML(http.StatusOK, "login.html", viewData(ctx, gin.H{
			"Flash": "You have already signed up with that email, log in instead!",
			"Email": email,
		}))
		return
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		utils.Sugar.Errorf("hash password: %v", err)
		renderServerError(ctx)
		return
	}

	user := models.User{
		Email:        email,
		PasswordHash: hash,
		Name:         name,
		Role:         models.RoleMember,
	}

	// The first account is promoted at insert time. Count and insert share a
	// transaction, which narrows but does not close the bootstrap race under
	// MySQL's default REPEATABLE READ; two racing first registrations can
	// still both read zero.
	err = a.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.User{}).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			user.Role = models.RoleAdmin
		}
		return tx.Create(&user).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			ctx.HTML(http.StatusOK, "login.html", viewData(ctx, gin.H{
				"Flash": "You have already signed up with that email, log in instead!",
				"Email": email,
			}))
			return
		}
		utils.Sugar.Errorf("create user: %v", err)
		renderServerError(ctx)
		return
	}

	utils.Sugar.Infow("user registered", "user_id", user.ID, "role", user.Role)
	if err := a.startSession(ctx, user); err != nil {
		utils.Sugar.Errorf("start session: %v", err)
		renderServerError(ctx)
		return
	}
	ctx.Redirect(http.StatusFound, "/")
}

// LoginForm renders the login page. The flash query parameter is optional and
// defaults to no message.
func (a *AuthController) LoginForm(ctx *gin.Context) {
	ctx.HTML(http.StatusOK, "login.html", viewData(ctx, gin.H{
		"Flash": ctx.Query("flash"),
		"Email": "",
	}))
}

// Login verifies credentials and starts a session. Unknown email and wrong
// password are logged separately but share one user-facing message so the
// response does not leak which emails are registered.
func (a *AuthController) Login(ctx *gin.Context) {
	email := strings.ToLower(strings.TrimSpace(ctx.PostForm("email")))
	password := ctx.PostForm("password")

	var user models.User
	if err := a.db.Where("email = ?", email).First(&user).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Sugar.Errorf("login lookup: %v", err)
			renderServerError(ctx)
			return
		}
		utils.Sugar.Debugw("login failed: unknown email", "email", email)
		ctx.HTML(http.StatusOK, "login.html", viewData(ctx, gin.H{
			"Flash": "Invalid email or password, please try again!",
			"Email": email,
		}))
		return
	}

	if !utils.CheckPassword(user.PasswordHash, password) {
		utils.Sugar.Debugw("login failed: wrong password", "user_id", user.ID)
		ctx.HTML(http.StatusOK, "login.html", viewData(ctx, gin.H{
			"Flash": "Invalid email or password, please try again!",
			"Email": email,
		}))
		return
	}

	if err := a.startSession(ctx, user); err != nil {
		utils.Sugar.Errorf("start session: %v", err)
		renderServerError(ctx)
		return
	}
	ctx.Redirect(http.StatusFound, "/")
}

// Logout revokes the current session token and clears the cookie.
func (a *AuthController) Logout(ctx *gin.Context) {
	if tokenStr, err := ctx.Cookie(utils.SessionCookieName); err == nil && tokenStr != "" {
		expiresAt := time.Now().Add(time.Duration(config.Get().SessionTTLHours) * time.Hour)
		if claims, err := utils.ParseSessionToken(tokenStr); err == nil && claims.ExpiresAt != nil {
			expiresAt = claims.ExpiresAt.Time
		}
		utils.BlacklistToken(tokenStr, expiresAt)
	}
	ctx.SetCookie(utils.SessionCookieName, "", -1, "/", "", false, true)
	ctx.Redirect(http.StatusFound, "/")
}

func (a *AuthController) startSession(ctx *gin.Context, user models.User) error {
	ttl := time.Duration(config.Get().SessionTTLHours) * time.Hour
	token, err := utils.GenerateSessionToken(user.ID, user.Name, user.Role, ttl)
	if err != nil {
		return err
	}
	ctx.SetCookie(utils.SessionCookieName, token, int(ttl.Seconds()), "/", "", false, true)
	return nil
}
