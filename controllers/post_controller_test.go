package controllers_test

import (
	"fmt"
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inkwellhq/inkwell/models"
)

func TestAdminCreatesPost(t *testing.T) {
	r, db := newTestServer(t)

	admin := register(t, r, "Boss", "boss@example.com", "password1")

	w := createPost(r, "Hello World", "An opener", "<p>First!</p>", admin)
	require.Equal(t, http.StatusFound, w.Code)

	var post models.Post
	require.NoError(t, db.Where("title = ?", "Hello World").First(&post).Error)
	assert.Equal(t, "An opener", post.Subtitle)
	assert.NotEmpty(t, post.Date)

	var author models.User
	require.NoError(t, db.First(&author, post.UserID).Error)
	assert.Equal(t, "boss@example.com", author.Email)

	w = doGet(r, "/")
	assert.Contains(t, w.Body.String(), "Hello World")
}

func TestNonAdminCannotManagePosts(t *testing.T) {
	r, db := newTestServer(t)

	admin := register(t, r, "Owner", "owner@example.com", "password1")
	member := register(t, r, "Visitor", "visitor@example.com", "password2")

	require.Equal(t, http.StatusFound, createPost(r, "Protected", "", "body", admin).Code)

	var post models.Post
	require.NoError(t, db.Where("title = ?", "Protected").First(&post).Error)

	// Create
	w := createPost(r, "Forbidden Post", "", "body", member)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// Edit
	w = doPostForm(r, fmt.Sprintf("/edit-post/%d", post.ID), url.Values{
		"title": {"Hijacked"}, "body": {"changed"},
	}, member)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// Delete
	w = doGet(r, fmt.Sprintf("/delete/%d", post.ID), member)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// The store is unchanged in every case.
	var count int64
	require.NoError(t, db.Model(&models.Post{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
	var unchanged models.Post
	require.NoError(t, db.First(&unchanged, post.ID).Error)
	assert.Equal(t, "Protected", unchanged.Title)
}

func TestAnonymousCannotManagePosts(t *testing.T) {
	r, db := newTestServer(t)

	w := doPostForm(r, "/new-post", url.Values{"title": {"Drive By"}, "body": {"body"}})
	assert.Equal(t, http.StatusForbidden, w.Code)

	var count int64
	require.NoError(t, db.Model(&models.Post{}).Count(&count).Error)
	assert.EqualValues(t, 0, count)
}

func TestDuplicateTitleRejected(t *testing.T) {
	r, db := newTestServer(t)

	admin := register(t, r, "Titler", "titler@example.com", "password1")

	require.Equal(t, http.StatusFound, createPost(r, "Unique Title", "", "one", admin).Code)

	w := createPost(r, "Unique Title", "", "two", admin)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "already exists")

	var count int64
	require.NoError(t, db.Model(&models.Post{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestEditPostKeepsDate(t *testing.T) {
	r, db := newTestServer(t)

	admin := register(t, r, "Editor", "editor@example.com", "password1")
	require.Equal(t, http.StatusFound, createPost(r, "Before", "old sub", "old body", admin).Code)

	var post models.Post
	require.NoError(t, db.Where("title = ?", "Before").First(&post).Error)
	originalDate := post.Date

	w := doPostForm(r, fmt.Sprintf("/edit-post/%d", post.ID), url.Values{
		"title":    {"After"},
		"subtitle": {"new sub"},
		"body":     {"new body"},
		"img_url":  {"https://example.com/new.jpg"},
	}, admin)
	require.Equal(t, http.StatusFound, w.Code)

	var updated models.Post
	require.NoError(t, db.First(&updated, post.ID).Error)
	assert.Equal(t, "After", updated.Title)
	assert.Equal(t, "new sub", updated.Subtitle)
	assert.Equal(t, "new body", updated.Body)
	assert.Equal(t, originalDate, updated.Date)
}

func TestCommentRequiresLogin(t *testing.T) {
	r, db := newTestServer(t)

	admin := register(t, r, "Host", "host@example.com", "password1")
	require.Equal(t, http.StatusFound, createPost(r, "Quiet Post", "", "body", admin).Code)

	var post models.Post
	require.NoError(t, db.Where("title = ?", "Quiet Post").First(&post).Error)

	w := doPostForm(r, fmt.Sprintf("/post/%d", post.ID), url.Values{"body": {"anon comment"}})
	require.Equal(t, http.StatusFound, w.Code)
	loc := w.Header().Get("Location")
	assert.Contains(t, loc, "/login")
	assert.Contains(t, loc, "flash=")

	var count int64
	require.NoError(t, db.Model(&models.Comment{}).Count(&count).Error)
	assert.EqualValues(t, 0, count)
}

func TestCommentRecordsAuthorAndPost(t *testing.T) {
	r, db := newTestServer(t)

	admin := register(t, r, "Author", "author@example.com", "password1")
	reader := register(t, r, "Reader", "reader@example.com", "password2")

	require.Equal(t, http.StatusFound, createPost(r, "Commented Post", "", "body", admin).Code)

	var post models.Post
	require.NoError(t, db.Where("title = ?", "Commented Post").First(&post).Error)

	var before int64
	db.Model(&models.Comment{}).Where("post_id = ?", post.ID).Count(&before)

	w := doPostForm(r, fmt.Sprintf("/post/%d", post.ID), url.Values{"body": {"nice read"}}, reader)
	require.Equal(t, http.StatusFound, w.Code)

	var comments []models.Comment
	require.NoError(t, db.Where("post_id = ?", post.ID).Find(&comments).Error)
	require.Len(t, comments, int(before)+1)

	var commenter models.User
	require.NoError(t, db.First(&commenter, comments[0].UserID).Error)
	assert.Equal(t, "reader@example.com", commenter.Email)
	assert.Equal(t, post.ID, comments[0].PostID)
	assert.Equal(t, "nice read", comments[0].Body)

	// The comment shows up on the post page with its author.
	w = doGet(r, fmt.Sprintf("/post/%d", post.ID))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "nice read")
	assert.Contains(t, w.Body.String(), "Reader")
}

func TestDeletePostCascadesComments(t *testing.T) {
	r, db := newTestServer(t)

	admin := register(t, r, "Deleter", "deleter@example.com", "password1")
	fan := register(t, r, "Fan", "fan@example.com", "password2")

	require.Equal(t, http.StatusFound, createPost(r, "Doomed Post", "", "body", admin).Code)

	var post models.Post
	require.NoError(t, db.Where("title = ?", "Doomed Post").First(&post).Error)

	require.Equal(t, http.StatusFound,
		doPostForm(r, fmt.Sprintf("/post/%d", post.ID), url.Values{"body": {"save this post"}}, fan).Code)

	w := doGet(r, fmt.Sprintf("/delete/%d", post.ID), admin)
	require.Equal(t, http.StatusFound, w.Code)

	var postCount int64
	require.NoError(t, db.Model(&models.Post{}).Where("id = ?", post.ID).Count(&postCount).Error)
	assert.EqualValues(t, 0, postCount)

	// No orphaned comments remain retrievable.
	var commentCount int64
	require.NoError(t, db.Model(&models.Comment{}).Where("post_id = ?", post.ID).Count(&commentCount).Error)
	assert.EqualValues(t, 0, commentCount)

	w = doGet(r, "/")
	assert.NotContains(t, w.Body.String(), "Doomed Post")
}

func TestPostBodyRendersAsMarkup(t *testing.T) {
	r, db := newTestServer(t)

	admin := register(t, r, "Writer", "writer@example.com", "password1")
	require.Equal(t, http.StatusFound,
		createPost(r, "Rich Post", "", "<p>Rich <strong>text</strong> body</p><script>alert(1)</script>", admin).Code)

	var post models.Post
	require.NoError(t, db.Where("title = ?", "Rich Post").First(&post).Error)

	w := doGet(r, fmt.Sprintf("/post/%d", post.ID))
	require.Equal(t, http.StatusOK, w.Code)

	// Sanitized markup renders as markup, not escaped text.
	assert.Contains(t, w.Body.String(), "<strong>text</strong>")
	assert.NotContains(t, w.Body.String(), "&lt;strong&gt;")
	// Script tags were stripped at write time.
	assert.NotContains(t, w.Body.String(), "<script>")
}

func TestCommentBodyRendersAsMarkup(t *testing.T) {
	r, db := newTestServer(t)

	admin := register(t, r, "Markup", "markup@example.com", "password1")
	voice := register(t, r, "Voice", "voice@example.com", "password2")

	require.Equal(t, http.StatusFound, createPost(r, "Markup Post", "", "body", admin).Code)
	var post models.Post
	require.NoError(t, db.Where("title = ?", "Markup Post").First(&post).Error)

	require.Equal(t, http.StatusFound,
		doPostForm(r, fmt.Sprintf("/post/%d", post.ID),
			url.Values{"body": {"so <em>good</em><script>alert(1)</script>"}}, voice).Code)

	w := doGet(r, fmt.Sprintf("/post/%d", post.ID))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "so <em>good</em>")
	assert.NotContains(t, w.Body.String(), "<script>")
}

func TestEmptyCommentRedisplayKeepsExistingComments(t *testing.T) {
	r, db := newTestServer(t)

	admin := register(t, r, "Keeper", "keeper@example.com", "password1")
	talker := register(t, r, "Talker", "talker@example.com", "password2")

	require.Equal(t, http.StatusFound, createPost(r, "Busy Post", "", "body", admin).Code)
	var post models.Post
	require.NoError(t, db.Where("title = ?", "Busy Post").First(&post).Error)

	require.Equal(t, http.StatusFound,
		doPostForm(r, fmt.Sprintf("/post/%d", post.ID), url.Values{"body": {"the first comment"}}, talker).Code)

	// An empty submission re-renders the page with the error and the
	// comments that are already there.
	w := doPostForm(r, fmt.Sprintf("/post/%d", post.ID), url.Values{"body": {""}}, talker)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Comments cannot be empty.")
	assert.Contains(t, w.Body.String(), "the first comment")
	assert.NotContains(t, w.Body.String(), "No comments yet.")
}

func TestShowPostNotFound(t *testing.T) {
	r, _ := newTestServer(t)

	w := doGet(r, "/post/9999")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doGet(r, "/post/not-a-number")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

// TestFullBlogScenario walks the whole flow: a member cannot publish, the
// bootstrap admin can, and the member's comment lands under the right post
// with the right author.
func TestFullBlogScenario(t *testing.T) {
	r, db := newTestServer(t)

	// Bootstrap admin registers first, then member A.
	register(t, r, "Bootstrap", "admin@x.com", "adminpw1")
	userA := register(t, r, "A", "a@x.com", "pw1pw1")

	// A attempts to publish and is rejected; nothing is stored.
	w := createPost(r, "P", "", "body", userA)
	require.Equal(t, http.StatusForbidden, w.Code)
	var count int64
	require.NoError(t, db.Model(&models.Post{}).Count(&count).Error)
	require.EqualValues(t, 0, count)

	// The admin logs in on a fresh session and creates post P.
	w = doPostForm(r, "/login", url.Values{"email": {"admin@x.com"}, "password": {"adminpw1"}})
	require.Equal(t, http.StatusFound, w.Code)
	adminSession := sessionCookie(t, w)

	require.Equal(t, http.StatusFound, createPost(r, "P", "a post", "the body", adminSession).Code)

	var post models.Post
	require.NoError(t, db.Where("title = ?", "P").First(&post).Error)

	// A comments on P.
	require.Equal(t, http.StatusFound,
		doPostForm(r, fmt.Sprintf("/post/%d", post.ID), url.Values{"body": {"great post"}}, userA).Code)

	w = doGet(r, fmt.Sprintf("/post/%d", post.ID))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "great post")
	assert.Contains(t, w.Body.String(), "A")

	var comment models.Comment
	require.NoError(t, db.Where("post_id = ?", post.ID).First(&comment).Error)
	var commenter models.User
	require.NoError(t, db.First(&commenter, comment.UserID).Error)
	assert.Equal(t, "a@x.com", commenter.Email)
}
