package controllers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/inkwellhq/inkwell/config"
	"github.com/inkwellhq/inkwell/utils"
)

// PagesController serves the static-ish about and contact pages.
type PagesController struct{}

// NewPagesController creates a PagesController.
func NewPagesController() *PagesController {
	return &PagesController{}
}

// About renders the about page.
func (p *PagesController) About(ctx *gin.Context) {
	ctx.HTML(http.StatusOK, "about.html", viewData(ctx, gin.H{}))
}

// ContactForm renders the contact page.
func (p *PagesController) ContactForm(ctx *gin.Context) {
	ctx.HTML(http.StatusOK, "contact.html", viewData(ctx, gin.H{
		"Name": "", "Email": "", "Message": "",
	}))
}

// ContactSubmit forwards the message to the site owner over SMTP.
func (p *PagesController) ContactSubmit(ctx *gin.Context) {
	name := strings.TrimSpace(ctx.PostForm("name"))
	email := strings.TrimSpace(ctx.PostForm("email"))
	message := strings.TrimSpace(ctx.PostForm("message"))

	if name == "" || email == "" || message == "" {
		ctx.HTML(http.StatusBadRequest, "contact.html", viewData(ctx, gin.H{
			"Flash":   "Please fill in your name, email and a message.",
			"Name":    name,
			"Email":   email,
			"Message": message,
		}))
		return
	}

	cfg := config.Get()
	if cfg.ContactRecipient == "" || cfg.SMTPHost == "" {
		ctx.HTML(http.StatusOK, "contact.html", viewData(ctx, gin.H{
			"Flash":   "The contact form is not available right now, please try again later.",
			"Name":    name,
			"Email":   email,
			"Message": message,
		}))
		return
	}

	body := fmt.Sprintf("From: %s <%s>\n\n%s", name, email, message)
	if err := utils.SendMail(cfg.ContactRecipient, "Inkwell contact form", body); err != nil {
		utils.Sugar.Errorf("contact mail: %v", err)
		ctx.HTML(http.StatusOK, "contact.html", viewData(ctx, gin.H{
			"Flash":   "Sending your message failed, please try again later.",
			"Name":    name,
			"Email":   email,
			"Message": message,
		}))
		return
	}

	ctx.HTML(http.StatusOK, "contact.html", viewData(ctx, gin.H{
		"Flash": "Your message has been sent, thank you!",
		"Sent":  true,
	}))
}
