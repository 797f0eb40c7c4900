package views

import (
	"context"
	"net/url"
	"strings"

	"github.com/a-h/templ"

	"github.com/eringen/folio/content"
)

func (o *out) head(site Site, meta PageMeta) {
	o.raw(`<!doctype html><html lang="en"><head><meta charset="utf-8"/>`)
	o.raw(`<meta name="viewport" content="width=device-width, initial-scale=1"/><title>`)
	o.s(meta.Title)
	o.raw(`</title>`)
	if meta.Description != "" {
		o.raw(`<meta name="description" content="`)
		o.s(meta.Description)
		o.raw(`"/><meta property="og:description" content="`)
		o.s(meta.Description)
		o.raw(`"/>`)
	}
	o.raw(`<meta property="og:title" content="`)
	o.s(meta.Title)
	o.raw(`"/><meta property="og:site_name" content="`)
	o.s(site.Name)
	o.raw(`"/>`)
	if meta.URL != "" {
		o.raw(`<link rel="canonical" href="`)
		o.s(meta.URL)
		o.raw(`"/><meta property="og:url" content="`)
		o.s(meta.URL)
		o.raw(`"/>`)
	}
	if meta.OGType != "" {
		o.raw(`<meta property="og:type" content="`)
		o.s(meta.OGType)
		o.raw(`"/>`)
	}
	if meta.Image != "" {
		o.raw(`<meta property="og:image" content="`)
		o.s(meta.Image)
		o.raw(`"/>`)
	}
	o.raw(`<link rel="alternate" type="application/rss+xml" href="/feed.xml"/>`)
	o.raw(`<link rel="stylesheet" href="/public/styles.css"/><script src="/public/htmx.min.js" defer></script>`)
	o.raw(`</head><body><header><a href="/">`)
	o.s(site.Name)
	o.raw(`</a></header><main>`)
}

func (o *out) foot() {
	o.raw(`</main></body></html>`)
}

func (o *out) jsonLD(data string) {
	// JSON from encoding/json escapes <, > and &, so it is safe inside <script>.
	o.raw(`<script type="application/ld+json">`, data, `</script>`)
}

func (o *out) csrf(token string) {
	o.raw(`<input type="hidden" name="_csrf" value="`)
	o.s(token)
	o.raw(`"/>`)
}

func (o *out) message(msg string) {
	if msg == "" {
		return
	}
	o.raw(`<p class="flash" role="status">`)
	o.s(msg)
	o.raw(`</p>`)
}

// Home lists published posts with their excerpts.
func Home(site Site, posts []content.Post, activeTag string, tags []string, excerptLength int) templ.Component {
	return component(func(ctx context.Context, o *out) error {
		o.head(site, PageMeta{Title: site.Name, Description: site.Description, URL: BuildURL(site.URL), OGType: "website"})
		o.jsonLD(WebsiteJsonLD(site))
		if len(tags) > 0 {
			o.raw(`<nav class="tags">`)
			for _, t := range tags {
				class := "tag"
				if strings.EqualFold(t, activeTag) {
					class += " active"
				}
				o.raw(`<a class="`, class, `" href="/?tag=`)
				o.s(url.QueryEscape(t))
				o.raw(`">`)
				o.s(t)
				o.raw(`</a>`)
			}
			o.raw(`</nav>`)
		}
		o.raw(`<ul class="posts">`)
		for _, p := range posts {
			o.raw(`<li><a href="`)
			o.s(PostPath(p.Slug))
			o.raw(`">`)
			o.s(p.Title)
			o.raw(`</a> <time>`)
			o.s(p.Date)
			o.raw(`</time><p>`)
			o.s(p.ExcerptOrContent(excerptLength))
			o.raw(`</p></li>`)
		}
		o.raw(`</ul>`)
		o.foot()
		return nil
	})
}

// Post renders a full public post page.
func Post(site Site, post content.Post, blocks []content.Block, excerptLength int) templ.Component {
	return component(func(ctx context.Context, o *out) error {
		meta := PageMeta{
			Title:       post.Title + " | " + site.Name,
			Description: post.ExcerptOrContent(excerptLength),
			URL:         BuildURL(site.URL, "blog", post.Slug),
			OGType:      "article",
		}
		if hero, ok := post.HeroImage(); ok {
			meta.Image = AbsoluteImage(site, hero)
		}
		o.head(site, meta)
		o.jsonLD(BlogPostingJsonLD(site, post, excerptLength))
		o.raw(`<article><h1>`)
		o.s(post.Title)
		o.raw(`</h1><time>`)
		o.s(post.Date)
		o.raw(`</time>`)
		if err := PostBody(blocks).Render(ctx, o); err != nil {
			return err
		}
		o.raw(`</article>`)
		o.foot()
		return nil
	})
}

// AdminLogin is the password form.
func AdminLogin(site Site, showError bool, csrfToken string) templ.Component {
	return component(func(ctx context.Context, o *out) error {
		o.head(site, PageMeta{Title: "Admin | " + site.Name})
		if showError {
			o.message("Wrong password.")
		}
		o.raw(`<form method="post" action="/admin/login/">`)
		o.csrf(csrfToken)
		o.raw(`<input type="password" name="password" autofocus/><button type="submit">Log in</button></form>`)
		o.foot()
		return nil
	})
}

// AdminDashboard lists every post with edit, preview and delete actions.
func AdminDashboard(site Site, posts []content.Post, msg string, csrfToken string) templ.Component {
	return component(func(ctx context.Context, o *out) error {
		o.head(site, PageMeta{Title: "Dashboard | " + site.Name})
		o.raw(`<div id="dashboard">`)
		o.message(msg)
		o.raw(`<a href="/admin/new/">New post</a><table class="posts"><tbody>`)
		for _, p := range posts {
			slug := url.PathEscape(p.Slug)
			o.raw(`<tr><td>`)
			o.s(p.Title)
			if !p.Published {
				o.raw(` <em>draft</em>`)
			}
			o.raw(`</td><td>`)
			o.s(p.Date)
			o.raw(`</td><td><a href="/admin/post/`, slug, `/">Edit</a> <a href="/admin/preview/`, slug, `/">Preview</a> `)
			o.raw(`<button hx-delete="/admin/post/`, slug, `/" hx-target="#dashboard" hx-select="#dashboard" hx-swap="outerHTML" hx-confirm="Delete this post?" hx-headers='{"X-CSRF-Token":"`)
			o.s(csrfToken)
			o.raw(`"}'>Delete</button></td></tr>`)
		}
		o.raw(`</tbody></table>`)
		o.raw(`<form method="post" action="/admin/logout/">`)
		o.csrf(csrfToken)
		o.raw(`<button type="submit">Log out</button></form></div>`)
		o.foot()
		return nil
	})
}

// AdminPreview renders the admin preview page of a post, saved or not.
func AdminPreview(site Site, p Preview) templ.Component {
	return component(func(ctx context.Context, o *out) error {
		o.head(site, PageMeta{Title: "Preview: " + p.Post.Title})
		o.raw(`<article class="preview"><h1>`)
		o.s(p.Post.Title)
		o.raw(`</h1>`)
		if err := PreviewBody(p).Render(ctx, o); err != nil {
			return err
		}
		o.raw(`</article>`)
		o.foot()
		return nil
	})
}

// NotFound is the 404 page.
func NotFound(site Site) templ.Component {
	return component(func(ctx context.Context, o *out) error {
		o.head(site, PageMeta{Title: "Not found | " + site.Name})
		o.raw(`<h1>Not found</h1><p><a href="/">Back home</a></p>`)
		o.foot()
		return nil
	})
}

// ServerError is the 5xx page.
func ServerError(site Site) templ.Component {
	return component(func(ctx context.Context, o *out) error {
		o.head(site, PageMeta{Title: "Error | " + site.Name})
		o.raw(`<h1>Something went wrong</h1>`)
		o.foot()
		return nil
	})
}
