package controllers_test

import (
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inkwellhq/inkwell/models"
)

func TestRegisterCreatesUserAndLogsIn(t *testing.T) {
	r, db := newTestServer(t)

	cookie := register(t, r, "Ada", "ada@example.com", "pw-secret-1")

	var users []models.User
	require.NoError(t, db.Find(&users).Error)
	require.Len(t, users, 1)
	assert.Equal(t, "ada@example.com", users[0].Email)
	assert.Equal(t, "Ada", users[0].Name)
	assert.NotEqual(t, "pw-secret-1", users[0].PasswordHash, "password must never be stored in plaintext")

	// The fresh session is accepted: the homepage shows the logged in nav.
	w := doGet(r, "/", cookie)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Log Out")
}

func TestFirstUserBecomesAdminLaterUsersDoNot(t *testing.T) {
	r, db := newTestServer(t)

	register(t, r, "First", "first@example.com", "password1")
	register(t, r, "Second", "second@example.com", "password2")

	var first, second models.User
	require.NoError(t, db.Where("email = ?", "first@example.com").First(&first).Error)
	require.NoError(t, db.Where("email = ?", "second@example.com").First(&second).Error)

	assert.Equal(t, models.RoleAdmin, first.Role)
	assert.Equal(t, models.RoleMember, second.Role)
}

func TestRegisterDuplicateEmailRejected(t *testing.T) {
	r, db := newTestServer(t)

	register(t, r, "Original", "dup@example.com", "password1")

	w := doPostForm(r, "/register", url.Values{
		"name":     {"Impostor"},
		"email":    {"dup@example.com"},
		"password": {"password2"},
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "log in instead")

	var count int64
	require.NoError(t, db.Model(&models.User{}).Count(&count).Error)
	assert.EqualValues(t, 1, count, "a duplicate registration must never create a second record")
}

func TestLoginRoundTrip(t *testing.T) {
	r, _ := newTestServer(t)

	register(t, r, "Roundtrip", "round@example.com", "correct-horse")

	// The freshly registered credentials verify.
	w := doPostForm(r, "/login", url.Values{
		"email":    {"round@example.com"},
		"password": {"correct-horse"},
	})
	require.Equal(t, http.StatusFound, w.Code)
	sessionCookie(t, w)

	// Any other password fails with the shared generic message.
	w = doPostForm(r, "/login", url.Values{
		"email":    {"round@example.com"},
		"password": {"correct-horsf"},
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid email or password")
	assert.Empty(t, w.Result().Cookies())
}

func TestLoginUnknownEmail(t *testing.T) {
	r, _ := newTestServer(t)

	w := doPostForm(r, "/login", url.Values{
		"email":    {"nobody@example.com"},
		"password": {"whatever1"},
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid email or password")
}

func TestLoginFormWithoutFlashParameter(t *testing.T) {
	r, _ := newTestServer(t)

	// Direct navigation must not fault when no flash message is present.
	w := doGet(r, "/login")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Log In")
}

func TestLogoutRevokesSession(t *testing.T) {
	r, _ := newTestServer(t)

	cookie := register(t, r, "Leaver", "leaver@example.com", "password1")

	w := doGet(r, "/logout", cookie)
	require.Equal(t, http.StatusFound, w.Code)

	// The old token is blacklisted, so replaying the cookie is anonymous.
	w = doGet(r, "/", cookie)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Log In")
	assert.NotContains(t, w.Body.String(), "Log Out")
}
