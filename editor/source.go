package editor

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/url"
	"strings"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/eringen/folio/content"
)

// MaxUploadSize caps the bytes a BytesSource will embed.
const MaxUploadSize = 10 << 20 // 10MB

// ErrUnreadable is returned when a source cannot be turned into a reference.
var ErrUnreadable = errors.New("unreadable image source")

// Source yields the opaque reference for a new image.
type Source interface {
	Reference(ctx context.Context) (string, error)
}

// Resolved is a reference some other Source has already produced.
type Resolved string

// Reference returns r unchanged.
func (r Resolved) Reference(context.Context) (string, error) {
	return string(r), nil
}

// BytesSource embeds a locally selected file as a data: URI. The bytes are
// sniffed to confirm they hold an image and are embedded unchanged.
type BytesSource struct {
	Name    string
	Data    io.Reader
	MaxSize int64
}

// Reference reads the file and returns "data:image/<format>;base64,...".
func (s BytesSource) Reference(ctx context.Context) (string, error) {
	limit := s.MaxSize
	if limit <= 0 {
		limit = MaxUploadSize
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	data, err := io.ReadAll(io.LimitReader(s.Data, limit+1))
	if err != nil {
		return "", fmt.Errorf("%w: read %s: %v", ErrUnreadable, s.Name, err)
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if int64(len(data)) > limit {
		return "", fmt.Errorf("%w: %s is larger than %d bytes", ErrUnreadable, s.Name, limit)
	}
	if len(data) == 0 {
		return "", fmt.Errorf("%w: %s is empty", ErrUnreadable, s.Name)
	}
	_, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("%w: %s is not a supported image: %v", ErrUnreadable, s.Name, err)
	}
	return "data:image/" + format + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}

// URLSource references an image by URL. Absolute http(s) URLs, site-relative
// paths and data:image URIs are accepted.
type URLSource struct {
	URL string
}

// Reference validates and returns the URL.
func (s URLSource) Reference(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	raw := strings.TrimSpace(s.URL)
	switch {
	case raw == "":
		return "", &content.ValidationError{Field: "src", Reason: "is required"}
	case strings.HasPrefix(raw, "/") && !strings.HasPrefix(raw, "//"):
		return raw, nil
	case strings.HasPrefix(raw, "data:image/"):
		return raw, nil
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return "", &content.ValidationError{Field: "src", Reason: "must be an http(s) URL or a site path"}
	}
	return raw, nil
}
