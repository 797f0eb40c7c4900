package views

import (
	"github.com/eringen/folio/content"
	"github.com/eringen/folio/editor"
)

// Site holds site-wide settings every page template receives.
type Site struct {
	Name        string
	URL         string
	Description string
	Author      string
}

// PageMeta carries per-page OpenGraph and SEO metadata into the <head> template.
type PageMeta struct {
	Title       string
	Description string
	URL         string // canonical + og:url
	OGType      string // "website" or "article"
	Image       string // og:image, the hero when there is one
}

// ImagesForm is the state of the image editing fragment.
type ImagesForm struct {
	Session editor.Snapshot
	Message string
	CSRF    string
}

// EditorForm is the state of the post editor page.
type EditorForm struct {
	Post         content.Post
	OriginalSlug string // empty for a new post
	Images       ImagesForm
	Message      string
	CSRF         string
}

// Preview is what the admin preview renders: the plan plus the images the
// plan leaves out and any duplicated positions.
type Preview struct {
	Post      content.Post
	Blocks    []content.Block
	Unplaced  []content.ImageRecord
	Conflicts []content.Conflict
}
