package folio

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/eringen/folio/content"
	"github.com/eringen/folio/editor"
	"github.com/eringen/folio/views"
)

// imageTransition runs apply against the editing session named by the posted
// session id, passing the posted images field so the registry can reload a
// session it no longer holds. The whole fragment is rendered again
// afterwards. A rejected transition leaves the session unchanged and shows
// why.
func (a *App) imageTransition(c echo.Context, action string, apply func(id uuid.UUID, raw string) (editor.Snapshot, error)) error {
	id, _ := uuid.Parse(c.FormValue("session"))
	snap, err := apply(id, c.FormValue("images"))
	if errors.Is(err, content.ErrParse) {
		a.Logger.Warn("image session reload failed", zap.Error(err))
		return c.String(http.StatusBadRequest, "The image list could not be read: "+err.Error())
	}
	msg := ""
	if err != nil {
		a.Logger.Warn("image edit rejected",
			zap.String("action", action),
			zap.String("session", snap.ID.String()),
			zap.Error(err))
		msg = transitionMessage(err)
	}
	return Render(c, a.Views.AdminImages(views.ImagesForm{
		Session: snap,
		Message: msg,
		CSRF:    CsrfToken(c),
	}))
}

func transitionMessage(err error) string {
	switch {
	case errors.Is(err, content.ErrNotFound):
		return "That image is no longer in the list. The list below is current."
	case errors.Is(err, editor.ErrUnreadable):
		return "The file could not be added: " + err.Error()
	default:
		return err.Error()
	}
}

// rowIndex resolves the entry and index values a row posts.
func rowIndex(c echo.Context, s *editor.Session) (int, error) {
	id, _ := uuid.Parse(c.FormValue("entry"))
	index, err := strconv.Atoi(c.FormValue("index"))
	if err != nil {
		index = -1
	}
	return s.Locate(id, index)
}

func (a *App) handleImageAdd(c echo.Context) error {
	ctx := c.Request().Context()
	pos := content.Position(c.FormValue("position"))

	var src editor.Source = editor.URLSource{URL: c.FormValue("url")}
	if fh, err := c.FormFile("image"); err == nil {
		f, err := fh.Open()
		if err != nil {
			return err
		}
		defer f.Close()
		src = editor.BytesSource{Name: fh.Filename, Data: f, MaxSize: a.Config.MaxUploadSize}
	} else if !errors.Is(err, http.ErrMissingFile) && !errors.Is(err, http.ErrNotMultipart) {
		return err
	}

	return a.imageTransition(c, "add", func(id uuid.UUID, raw string) (editor.Snapshot, error) {
		return a.Sessions.Add(ctx, id, raw, src, pos)
	})
}

func (a *App) handleImageUpdate(c echo.Context) error {
	field := editor.Field(c.FormValue("field"))
	value := c.FormValue("value")
	return a.imageTransition(c, "update", func(id uuid.UUID, raw string) (editor.Snapshot, error) {
		return a.Sessions.Do(id, raw, func(s *editor.Session) error {
			i, err := rowIndex(c, s)
			if err != nil {
				return err
			}
			return s.UpdateMetadata(i, field, value)
		})
	})
}

func (a *App) handleImageRemove(c echo.Context) error {
	return a.imageTransition(c, "remove", func(id uuid.UUID, raw string) (editor.Snapshot, error) {
		return a.Sessions.Do(id, raw, func(s *editor.Session) error {
			i, err := rowIndex(c, s)
			if err != nil {
				return err
			}
			return s.Remove(i)
		})
	})
}
