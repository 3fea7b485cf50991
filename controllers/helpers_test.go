package controllers_test

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/inkwellhq/inkwell/config"
	"github.com/inkwellhq/inkwell/models"
	"github.com/inkwellhq/inkwell/routes"
	"github.com/inkwellhq/inkwell/utils"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)

	// Templates and static assets are resolved relative to the repo root.
	if err := os.Chdir(".."); err != nil {
		panic(err)
	}

	config.SetForTesting(config.AppConfig{
		AppPort:            "0",
		SessionSecret:      "test-secret",
		SessionTTLHours:    72,
		RateLimitPerMinute: 100000,
		AllowedOrigins:     []string{"*"},
		GinMode:            "test",
		GinPath:            filepath.Join(os.TempDir(), "inkwell-test-access.log"),
		LogLevel:           "error",
	})
	if err := utils.InitLogger(config.Get()); err != nil {
		panic(err)
	}

	os.Exit(m.Run())
}

// newTestServer builds the full router on top of a fresh in-memory store.
func newTestServer(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	// A :memory: database exists per connection; keep the pool at one.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Post{}, &models.Comment{}, &models.PageView{}))

	return routes.SetupRouter(db), db
}

func doGet(r http.Handler, path string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func doPostForm(r http.Handler, path string, form url.Values, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func sessionCookie(t *testing.T, w *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range w.Result().Cookies() {
		if c.Name == utils.SessionCookieName && c.Value != "" {
			return c
		}
	}
	t.Fatal("response carries no session cookie")
	return nil
}

// register signs up a user through the real handler and returns the session cookie.
func register(t *testing.T, r http.Handler, name, email, password string) *http.Cookie {
	t.Helper()
	w := doPostForm(r, "/register", url.Values{
		"name":     {name},
		"email":    {email},
		"password": {password},
	})
	require.Equal(t, http.StatusFound, w.Code)
	return sessionCookie(t, w)
}

// createPost submits the new-post form with the given cookie.
func createPost(r http.Handler, title, subtitle, body string, cookie *http.Cookie) *httptest.ResponseRecorder {
	return doPostForm(r, "/new-post", url.Values{
		"title":    {title},
		"subtitle": {subtitle},
		"body":     {body},
		"img_url":  {"https://example.com/cover.jpg"},
	}, cookie)
}
