package folio

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/eringen/folio/content"
	"github.com/eringen/folio/views"
)

const dateLayout = "2006-01-02"

func (a *App) handleAdmin(c echo.Context) error {
	if !IsAdmin(c) {
		return Render(c, a.Views.AdminLogin(false, CsrfToken(c)))
	}
	return a.renderAdminDashboard(c, http.StatusOK, c.QueryParam("msg"))
}

func (a *App) handleAdminLogin(c echo.Context) error {
	ip := c.RealIP()
	if !a.loginLimiter.Check(ip) {
		return c.String(http.StatusTooManyRequests, "Too many login attempts. Try again later.")
	}
	if a.checkPassword(c.FormValue("password")) {
		if err := setAdminSession(c); err != nil {
			return err
		}
		a.Logger.Info("admin login", zap.String("ip", ip))
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}
	a.loginLimiter.Record(ip)
	a.Logger.Warn("failed admin login", zap.String("ip", ip))
	return RenderStatus(c, http.StatusUnauthorized, a.Views.AdminLogin(true, CsrfToken(c)))
}

// checkPassword accepts AdminPassword either as a bcrypt hash or as the
// plain password.
func (a *App) checkPassword(pass string) bool {
	stored := []byte(a.Config.AdminPassword)
	if _, err := bcrypt.Cost(stored); err == nil {
		return bcrypt.CompareHashAndPassword(stored, []byte(pass)) == nil
	}
	return subtle.ConstantTimeCompare([]byte(pass), stored) == 1
}

func handleAdminLogout(c echo.Context) error {
	if err := clearAdminSession(c); err != nil {
		return err
	}
	return c.Redirect(http.StatusSeeOther, "/admin/")
}

func (a *App) handleAdminNew(c echo.Context) error {
	post := content.Post{Date: time.Now().Format(dateLayout)}
	return a.renderEditor(c, http.StatusOK, post, "", "")
}

func (a *App) handleAdminPost(c echo.Context) error {
	post, err := a.Store.GetPostAny(c.Request().Context(), c.Param("slug"))
	if errors.Is(err, ErrNotFound) {
		return RenderStatus(c, http.StatusNotFound, a.Views.NotFound())
	}
	if err != nil {
		return err
	}
	return a.renderEditor(c, http.StatusOK, post, post.Slug, "")
}

// postFromForm reads every editor field except images, which the save and
// preview handlers parse themselves.
func postFromForm(c echo.Context) content.Post {
	date := strings.TrimSpace(c.FormValue("date"))
	if date == "" {
		date = time.Now().Format(dateLayout)
	}
	return content.Post{
		Title:     strings.TrimSpace(c.FormValue("title")),
		Slug:      strings.TrimSpace(c.FormValue("slug")),
		Date:      date,
		Tags:      SplitTags(c.FormValue("tags")),
		Excerpt:   strings.TrimSpace(c.FormValue("excerpt")),
		Body:      c.FormValue("body"),
		Published: c.FormValue("published") != "",
	}
}

// handleAdminSave persists the editor form. Nothing is written unless the
// images field parses and the whole post validates; otherwise the editor is
// shown again with the reason.
func (a *App) handleAdminSave(c echo.Context) error {
	ctx := c.Request().Context()
	vocab := a.Config.Vocabulary()
	post := postFromForm(c)
	original := strings.TrimSpace(c.FormValue("original_slug"))
	if id, err := uuid.Parse(c.FormValue("session")); err == nil {
		defer a.Sessions.Close(id)
	}

	images, err := content.DecodeImages(vocab, c.FormValue("images"))
	if err != nil {
		a.Logger.Warn("rejected images field", zap.String("slug", original), zap.Error(err))
		prior, perr := a.savedImages(ctx, original)
		if perr != nil {
			return perr
		}
		post.Images = prior
		return a.renderEditor(c, http.StatusUnprocessableEntity, post, original,
			"The image list could not be read ("+err.Error()+"). It has been reset to the last saved version.")
	}
	post.Images = images

	if post.Slug == "" {
		post.Slug = content.Slugify(post.Title)
	}
	if err := post.Validate(vocab); err != nil {
		return a.renderEditor(c, http.StatusUnprocessableEntity, post, original, "Not saved: "+err.Error())
	}

	if original == "" {
		post.ID, err = a.Store.CreatePost(ctx, post)
	} else {
		var existing content.Post
		existing, err = a.Store.GetPostAny(ctx, original)
		if err == nil {
			post.ID = existing.ID
			err = a.Store.UpdatePost(ctx, existing.ID, post)
		}
	}
	switch {
	case errors.Is(err, ErrSlugTaken):
		return a.renderEditor(c, http.StatusConflict, post, original,
			fmt.Sprintf("Not saved: the slug %q is used by another post.", post.Slug))
	case errors.Is(err, ErrNotFound):
		return a.renderEditor(c, http.StatusNotFound, post, "",
			"Not saved: the post being edited no longer exists. Saving again creates it.")
	case err != nil:
		return err
	}

	a.Cache.Invalidate()
	a.Logger.Info("post saved",
		zap.Int64("id", post.ID),
		zap.String("slug", post.Slug),
		zap.Int("images", len(post.Images)))
	return c.Redirect(http.StatusSeeOther, "/admin/?msg=saved")
}

// savedImages is the last persisted image list of the post being edited.
func (a *App) savedImages(ctx context.Context, slug string) ([]content.ImageRecord, error) {
	if slug == "" {
		return nil, nil
	}
	post, err := a.Store.GetPostAny(ctx, slug)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	return post.Images, err
}

func (a *App) handleAdminDelete(c echo.Context) error {
	slug := c.Param("slug")
	err := a.Store.DeletePost(c.Request().Context(), slug)
	if errors.Is(err, ErrNotFound) {
		return a.renderAdminDashboard(c, http.StatusOK, "not found")
	}
	if err != nil {
		return err
	}
	a.Cache.Invalidate()
	a.Logger.Info("post deleted", zap.String("slug", slug))
	return a.renderAdminDashboard(c, http.StatusOK, "deleted")
}

func (a *App) handleAdminPreview(c echo.Context) error {
	post := postFromForm(c)
	images, err := content.DecodeImages(a.Config.Vocabulary(), c.FormValue("images"))
	if err != nil {
		return c.String(http.StatusUnprocessableEntity, "The image list could not be read: "+err.Error())
	}
	post.Images = images
	return Render(c, a.Views.AdminPreview(a.preview(post)))
}

func (a *App) handleAdminPreviewSaved(c echo.Context) error {
	post, err := a.Store.GetPostAny(c.Request().Context(), c.Param("slug"))
	if errors.Is(err, ErrNotFound) {
		return RenderStatus(c, http.StatusNotFound, a.Views.NotFound())
	}
	if err != nil {
		return err
	}
	return Render(c, a.Views.AdminPreview(a.preview(post)))
}

func (a *App) preview(post content.Post) views.Preview {
	return views.Preview{
		Post:      post,
		Blocks:    post.Blocks(a.Composer),
		Unplaced:  a.Composer.Unplaced(post.Body, post.Images),
		Conflicts: content.Conflicts(post.Images),
	}
}

func (a *App) handleSlug(c echo.Context) error {
	return Render(c, a.Views.SlugField(content.Slugify(c.FormValue("title"))))
}

func (a *App) renderAdminDashboard(c echo.Context, code int, msg string) error {
	posts, err := a.Store.ListAllPosts(c.Request().Context())
	if err != nil {
		return err
	}
	return RenderStatus(c, code, a.Views.AdminDashboard(posts, msg, CsrfToken(c)))
}

// renderEditor shows the editor for post with a fresh editing session seeded
// from its images.
func (a *App) renderEditor(c echo.Context, code int, post content.Post, original, msg string) error {
	raw, err := content.EncodeImages(post.Images)
	if err != nil {
		return err
	}
	snap, err := a.Sessions.Open(raw)
	if err != nil {
		return err
	}
	csrf := CsrfToken(c)
	return RenderStatus(c, code, a.Views.AdminEditor(views.EditorForm{
		Post:         post,
		OriginalSlug: original,
		Images:       views.ImagesForm{Session: snap, CSRF: csrf},
		Message:      msg,
		CSRF:         csrf,
	}))
}
