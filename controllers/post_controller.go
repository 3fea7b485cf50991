package controllers

import (
	"errors"
	"html/template"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/inkwellhq/inkwell/middleware"
	"github.com/inkwellhq/inkwell/models"
	"github.com/inkwellhq/inkwell/utils"
)

// postDateFormat matches the original site's human readable publication date.
const postDateFormat = "January 2, 2006"

// PostController serves the post pages and the admin-only post management flows.
type PostController struct {
	db *gorm.DB
}

// NewPostController creates a new PostController instance.
func NewPostController(db *gorm.DB) *PostController {
	return &PostController{db: db}
}

// Index lists every post with its author, newest first.
func (p *PostController) Index(ctx *gin.Context) {
	var posts []models.Post
	if err := p.db.Preload("User").Order("created_at DESC").Find(&posts).Error; err != nil {
		utils.Sugar.Errorf("list posts: %v", err)
		renderServerError(ctx)
		return
	}
	ctx.HTML(http.StatusOK, "index.html", viewData(ctx, gin.H{"Posts": posts}))
}

// commentView carries one comment prepared for the post page. The body went
// through bluemonday at write time, so it renders as markup.
type commentView struct {
	Body      template.HTML
	Author    string
	AvatarURL string
	CreatedAt time.Time
}

func commentViews(comments []models.Comment) []commentView {
	views := make([]commentView, 0, len(comments))
	for _, c := range comments {
		views = append(views, commentView{
			Body:      template.HTML(c.Body),
			Author:    c.User.Name,
			AvatarURL: utils.GravatarURL(c.User.Email, 100),
			CreatedAt: c.CreatedAt,
		})
	}
	return views
}

// Show renders a single post with its comments and their authors.
func (p *PostController) Show(ctx *gin.Context) {
	post, ok := p.loadPost(ctx)
	if !ok {
		return
	}

	ctx.HTML(http.StatusOK, "post.html", viewData(ctx, gin.H{
		"Post":     post,
		"PostBody": template.HTML(post.Body),
		"Comments": commentViews(post.Comments),
	}))
}

// AddComment records a comment under the post. The route is guarded by
// LoginRequired, so an anonymous attempt never reaches this handler.
func (p *PostController) AddComment(ctx *gin.Context) {
	post, ok := p.loadPost(ctx)
	if !ok {
		return
	}

	id, ok := middleware.IdentityFrom(ctx)
	if !ok {
		ctx.Redirect(http.StatusFound, "/login")
		return
	}

	body := utils.Sanitize(strings.TrimSpace(ctx.PostForm("body")))
	if body == "" {
		ctx.HTML(http.StatusBadRequest, "post.html", viewData(ctx, gin.H{
			"Post":     post,
			"PostBody": template.HTML(post.Body),
			"Comments": commentViews(post.Comments),
			"Flash":    "Comments cannot be empty.",
		}))
		return
	}

	comment := models.Comment{
		PostID: post.ID,
		UserID: id.UserID,
		Body:   body,
	}
	if err := p.db.Create(&comment).Error; err != nil {
		utils.Sugar.Errorf("create comment: %v", err)
		renderServerError(ctx)
		return
	}

	utils.InvalidateByPrefix("cache:feed:post:" + strconv.Itoa(int(post.ID)))
	ctx.Redirect(http.StatusFound, "/post/"+strconv.Itoa(int(post.ID)))
}

// NewPostForm renders the empty post editor. Admin only.
func (p *PostController) NewPostForm(ctx *gin.Context) {
	ctx.HTML(http.StatusOK, "make-post.html", viewData(ctx, gin.H{
		"Heading": "New Post",
		"Form":    postForm{},
	}))
}

// CreatePost persists a new post authored by the admin.
func (p *PostController) CreatePost(ctx *gin.Context) {
	form, flash := p.bindPostForm(ctx)
	if flash != "" {
		ctx.HTML(http.StatusBadRequest, "make-post.html", viewData(ctx, gin.H{
			"Heading": "New Post",
			"Flash":   flash,
			"Form":    form,
		}))
		return
	}

	id, _ := middleware.IdentityFrom(ctx)
	post := models.Post{
		UserID:   id.UserID,
		Title:    form.Title,
		Subtitle: form.Subtitle,
		Date:     time.Now().Format(postDateFormat),
		Body:     form.Body,
		ImageURL: form.ImageURL,
	}

	if err := p.db.Create(&post).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			ctx.HTML(http.StatusOK, "make-post.html", viewData(ctx, gin.H{
				"Heading": "New Post",
				"Flash":   "A post with that title already exists, pick another one.",
				"Form":    form,
			}))
			return
		}
		utils.Sugar.Errorf("create post: %v", err)
		renderServerError(ctx)
		return
	}

	utils.InvalidateByPrefix("cache:feed:posts:")
	ctx.Redirect(http.StatusFound, "/")
}

// EditPostForm renders the editor prefilled with the post. Admin only.
func (p *PostController) EditPostForm(ctx *gin.Context) {
	post, ok := p.loadPost(ctx)
	if !ok {
		return
	}
	ctx.HTML(http.StatusOK, "make-post.html", viewData(ctx, gin.H{
		"Heading": "Edit Post",
		"Editing": true,
		"PostID":  post.ID,
		"Form": postForm{
			Title:    post.Title,
			Subtitle: post.Subtitle,
			Body:     post.Body,
			ImageURL: post.ImageURL,
		},
	}))
}

// UpdatePost applies the edited fields. The publication date is kept.
func (p *PostController) UpdatePost(ctx *gin.Context) {
	post, ok := p.loadPost(ctx)
	if !ok {
		return
	}

	form, flash := p.bindPostForm(ctx)
	if flash != "" {
		ctx.HTML(http.StatusBadRequest, "make-post.html", viewData(ctx, gin.H{
			"Heading": "Edit Post",
			"Editing": true,
			"PostID":  post.ID,
			"Flash":   flash,
			"Form":    form,
		}))
		return
	}

	post.Title = form.Title
	post.Subtitle = form.Subtitle
	post.Body = form.Body
	post.ImageURL = form.ImageURL

	if err := p.db.Omit(clause.Associations).Save(&post).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			ctx.HTML(http.StatusOK, "make-post.html", viewData(ctx, gin.H{
				"Heading": "Edit Post",
				"Editing": true,
				"PostID":  post.ID,
				"Flash":   "A post with that title already exists, pick another one.",
				"Form":    form,
			}))
			return
		}
		utils.Sugar.Errorf("update post: %v", err)
		renderServerError(ctx)
		return
	}

	utils.InvalidateByPrefix("cache:feed:")
	ctx.Redirect(http.StatusFound, "/post/"+strconv.Itoa(int(post.ID)))
}

// DeletePost removes the post together with its comments. Admin only.
func (p *PostController) DeletePost(ctx *gin.Context) {
	post, ok := p.loadPost(ctx)
	if !ok {
		return
	}

	// Cascade: one gorm call deletes the post and its comments so no orphaned
	// comments stay retrievable.
	if err := p.db.Select("Comments").Delete(&post).Error; err != nil {
		utils.Sugar.Errorf("delete post: %v", err)
		renderServerError(ctx)
		return
	}

	utils.InvalidateByPrefix("cache:feed:")
	ctx.Redirect(http.StatusFound, "/")
}

type postForm struct {
	Title    string
	Subtitle string
	Body     string
	ImageURL string
}

func (p *PostController) bindPostForm(ctx *gin.Context) (postForm, string) {
	form := postForm{
		Title:    utils.Sanitize(strings.TrimSpace(ctx.PostForm("title"))),
		Subtitle: utils.Sanitize(strings.TrimSpace(ctx.PostForm("subtitle"))),
		Body:     utils.Sanitize(ctx.PostForm("body")),
		ImageURL: strings.TrimSpace(ctx.PostForm("img_url")),
	}
	if form.Title == "" {
		return form, "Title cannot be empty."
	}
	if strings.TrimSpace(form.Body) == "" {
		return form, "The post body cannot be empty."
	}
	return form, ""
}

// loadPost fetches the post in the :id path parameter with author and
// comments. Renders 404 and returns false when it does not exist.
func (p *PostController) loadPost(ctx *gin.Context) (models.Post, bool) {
	idStr := ctx.Param("id")
	postID, err := strconv.Atoi(idStr)
	if err != nil || postID <= 0 {
		renderNotFound(ctx, "Post")
		return models.Post{}, false
	}

	var post models.Post
	err = p.db.Preload("User").Preload("Comments").Preload("Comments.User").First(&post, postID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			renderNotFound(ctx, "Post")
			return models.Post{}, false
		}
		utils.Sugar.Errorf("load post %d: %v", postID, err)
		renderServerError(ctx)
		return models.Post{}, false
	}
	return post, true
}
