package folio

import (
	"github.com/a-h/templ"

	"github.com/eringen/folio/content"
	"github.com/eringen/folio/views"
)

// ViewFuncs holds the components the handlers render. Sites may replace any
// of them; fields left nil fall back to DefaultViews.
type ViewFuncs struct {
	Home           func(posts []content.Post, activeTag string, tags []string) templ.Component
	Post           func(post content.Post, blocks []content.Block) templ.Component
	AdminLogin     func(showError bool, csrfToken string) templ.Component
	AdminDashboard func(posts []content.Post, message string, csrfToken string) templ.Component
	AdminEditor    func(form views.EditorForm) templ.Component
	AdminImages    func(form views.ImagesForm) templ.Component
	AdminPreview   func(preview views.Preview) templ.Component
	SlugField      func(slug string) templ.Component
	NotFound       func() templ.Component
	ServerError    func() templ.Component
}

// Site returns the page-level settings views need.
func (c SiteConfig) Site() views.Site {
	return views.Site{Name: c.Name, URL: c.URL, Description: c.Description, Author: c.Author}
}

// DefaultViews binds the stock views package to cfg.
func DefaultViews(cfg SiteConfig) ViewFuncs {
	site := cfg.Site()
	excerpt := cfg.ExcerptLength
	return ViewFuncs{
		Home: func(posts []content.Post, activeTag string, tags []string) templ.Component {
			return views.Home(site, posts, activeTag, tags, excerpt)
		},
		Post: func(post content.Post, blocks []content.Block) templ.Component {
			return views.Post(site, post, blocks, excerpt)
		},
		AdminLogin: func(showError bool, csrfToken string) templ.Component {
			return views.AdminLogin(site, showError, csrfToken)
		},
		AdminDashboard: func(posts []content.Post, message string, csrfToken string) templ.Component {
			return views.AdminDashboard(site, posts, message, csrfToken)
		},
		AdminEditor: func(form views.EditorForm) templ.Component {
			return views.AdminEditor(site, form)
		},
		AdminImages:  views.AdminImages,
		AdminPreview: func(p views.Preview) templ.Component { return views.AdminPreview(site, p) },
		SlugField:    views.SlugField,
		NotFound:     func() templ.Component { return views.NotFound(site) },
		ServerError:  func() templ.Component { return views.ServerError(site) },
	}
}

func (v ViewFuncs) withDefaults(d ViewFuncs) ViewFuncs {
	if v.Home == nil {
		v.Home = d.Home
	}
	if v.Post == nil {
		v.Post = d.Post
	}
	if v.AdminLogin == nil {
		v.AdminLogin = d.AdminLogin
	}
	if v.AdminDashboard == nil {
		v.AdminDashboard = d.AdminDashboard
	}
	if v.AdminEditor == nil {
		v.AdminEditor = d.AdminEditor
	}
	if v.AdminImages == nil {
		v.AdminImages = d.AdminImages
	}
	if v.AdminPreview == nil {
		v.AdminPreview = d.AdminPreview
	}
	if v.SlugField == nil {
		v.SlugField = d.SlugField
	}
	if v.NotFound == nil {
		v.NotFound = d.NotFound
	}
	if v.ServerError == nil {
		v.ServerError = d.ServerError
	}
	return v
}
