package views

import (
	"context"
	"strings"
	"testing"

	"github.com/a-h/templ"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eringen/folio/content"
	"github.com/eringen/folio/editor"
)

func renderString(t *testing.T, c templ.Component) string {
	t.Helper()
	var sb strings.Builder
	require.NoError(t, c.Render(context.Background(), &sb))
	return sb.String()
}

func TestPostBodyOrder(t *testing.T) {
	images := []content.ImageRecord{
		{Src: "/after-one.jpg", Alt: "after", Caption: "cap <1>", Position: content.IndexPosition(1)},
		{Src: "https://cdn.example/hero.jpg", Alt: "hero \"alt\"", Position: content.Hero},
	}
	html := renderString(t, PostBody(content.Compose("First.\n\nSecond.", images)))

	hero := strings.Index(html, "hero.jpg")
	first := strings.Index(html, "<p>First.</p>")
	after := strings.Index(html, "/after-one.jpg")
	second := strings.Index(html, "<p>Second.</p>")
	require.True(t, hero >= 0 && first >= 0 && after >= 0 && second >= 0, html)
	assert.Less(t, hero, first)
	assert.Less(t, first, after)
	assert.Less(t, after, second)

	assert.Contains(t, html, `alt="hero &#34;alt&#34;"`)
	assert.Contains(t, html, `<figcaption>cap &lt;1&gt;</figcaption>`)
	assert.NotContains(t, html, "position-badge")
}

func TestPostBodyRejectsScriptURL(t *testing.T) {
	images := []content.ImageRecord{{Src: "javascript:alert(1)", Position: content.Hero}}
	html := renderString(t, PostBody(content.Compose("text", images)))
	assert.NotContains(t, html, "javascript:")
	assert.Contains(t, html, "image-missing")
}

func TestPreviewBodyAnnotates(t *testing.T) {
	images := []content.ImageRecord{
		{Src: "/a.jpg", Position: content.IndexPosition(1)},
		{Src: "/b.jpg", Position: content.IndexPosition(1)},
		{Src: "/c.jpg", Position: content.IndexPosition(3)},
	}
	body := "One.\n\nTwo."
	c := content.NewComposer(content.DefaultMaxIndex)
	html := renderString(t, PreviewBody(Preview{
		Blocks:    c.Compose(body, images),
		Unplaced:  c.Unplaced(body, images),
		Conflicts: content.Conflicts(images),
	}))

	assert.Contains(t, html, `data-paragraph="2"`)
	assert.Contains(t, html, `<span class="position-badge">index-1</span>`)
	assert.Contains(t, html, "preview-warning")
	assert.Contains(t, html, "preview-unplaced")
	assert.Contains(t, html, "/c.jpg")
}

func TestAdminImagesRendersEveryRow(t *testing.T) {
	s, err := editor.Load(content.DefaultVocabulary, `[{"src":"/a.jpg","alt":"A","caption":"","position":"hero"},{"src":"/b.jpg","alt":"B","caption":"","position":"hero"}]`)
	require.NoError(t, err)
	html := renderString(t, AdminImages(ImagesForm{
		Session: editor.Snapshot{ID: uuid.New(), Field: s.Field(), Rows: s.View(), Positions: s.Positions()},
		CSRF:    "tok",
	}))

	assert.Equal(t, 2, strings.Count(html, `class="image-row conflict"`))
	assert.Contains(t, html, `"index":"1"`)
	assert.Contains(t, html, `name="images" value="[{&#34;src&#34;:&#34;/a.jpg&#34;`)
	assert.Contains(t, html, `<option value="index-3">`)
}

func TestBlogPostingJsonLDUsesHero(t *testing.T) {
	site := Site{Name: "Blog", URL: "https://example.com"}
	post := content.Post{
		Title: "T", Slug: "t", Body: "Body text.",
		Images: []content.ImageRecord{{Src: "/public/uploads/h.jpg", Position: content.Hero}},
	}
	ld := BlogPostingJsonLD(site, post, 0)
	assert.Contains(t, ld, `"image":"https://example.com/public/uploads/h.jpg"`)
	assert.Contains(t, ld, `"description":"Body text."`)

	post.Images[0].Src = "data:image/png;base64,AAAA"
	assert.NotContains(t, BlogPostingJsonLD(site, post, 0), `"image"`)
}

func TestBuildURL(t *testing.T) {
	assert.Equal(t, "https://example.com/blog/x/", BuildURL("https://example.com", "blog", "x"))
	assert.Equal(t, "https://example.com", BuildURL("https://example.com"))
	assert.Equal(t, "/blog/a%20b/", PostPath("a b"))
}
