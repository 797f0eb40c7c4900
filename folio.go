// Package folio is a blog publishing engine built with Go, Echo, and templ.
// Posts carry an ordered image collection whose positions place each image
// as the hero or after a numbered paragraph; the public page, feed and
// sitemap are all composed from that collection.
//
// Sites may supply their own components via ViewFuncs; folio handles the
// handlers, middleware, image editing sessions and storage.
package folio

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/eringen/folio/content"
	"github.com/eringen/folio/editor"
)

// App is the central folio application. It wires together the store,
// cache, editing sessions, handlers, middleware and views.
type App struct {
	Config   SiteConfig
	Echo     *echo.Echo
	Store    *Store
	Cache    *PostCache
	Views    ViewFuncs
	Logger   *zap.Logger
	Composer content.Composer
	Sessions *editor.Registry

	loginLimiter *LoginLimiter
	customRoutes []func(*App)
	staticDir    string
	stop         context.CancelFunc
}

// New creates a folio App. Nil fields of views fall back to DefaultViews.
func New(cfg SiteConfig, views ViewFuncs, opts ...Option) *App {
	cfg.setDefaults()

	a := &App{
		Config:    cfg,
		Echo:      echo.New(),
		Views:     views.withDefaults(DefaultViews(cfg)),
		Composer:  content.NewComposer(cfg.MaxIndexedImages),
		staticDir: cfg.StaticDir,
	}
	a.Echo.HideBanner = true
	a.Echo.HidePort = true

	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Init opens the store and registers middleware and routes without
// listening. Start calls it; tests call it directly and drive a.Echo.
func (a *App) Init(ctx context.Context) error {
	if a.Config.AdminPassword == "" {
		return fmt.Errorf("folio: AdminPassword is required")
	}
	if a.Config.SessionSecret == "" {
		return fmt.Errorf("folio: SessionSecret is required")
	}

	if a.Logger == nil {
		logger, err := NewLogger(a.Config.Env)
		if err != nil {
			return fmt.Errorf("folio: init logger: %w", err)
		}
		a.Logger = logger
	}

	if a.Config.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:         a.Config.SentryDSN,
			Environment: a.Config.Env,
		}); err != nil {
			return fmt.Errorf("folio: init sentry: %w", err)
		}
	}

	vocab := a.Config.Vocabulary()
	store, err := NewStore(ctx, a.Config.DatabasePath, vocab, a.Logger.Named("store"))
	if err != nil {
		return fmt.Errorf("folio: init store: %w", err)
	}
	a.Store = store
	a.Cache = NewPostCache(a.Store, a.Config.PostCacheTTL)
	a.Sessions = editor.NewRegistry(vocab, a.Config.EditorSessionTTL)
	a.loginLimiter = NewLoginLimiter(5, time.Minute)

	bg, cancel := context.WithCancel(context.Background())
	a.stop = cancel
	a.Sessions.StartSweeper(bg, max(a.Config.EditorSessionTTL/4, time.Second))
	a.loginLimiter.StartSweeper(bg)

	a.setupMiddleware()
	a.setupRoutes()
	for _, fn := range a.customRoutes {
		fn(a)
	}
	return nil
}

// Start initializes the app and serves until ctx is cancelled, then shuts
// the server down gracefully.
func (a *App) Start(ctx context.Context) error {
	if err := a.Init(ctx); err != nil {
		return err
	}

	errc := make(chan error, 1)
	go func() {
		a.Logger.Info("listening", zap.String("addr", a.Config.Addr), zap.String("env", a.Config.Env))
		errc <- a.Echo.Start(a.Config.Addr)
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	a.Logger.Info("shutting down")
	return a.Echo.Shutdown(shutdownCtx)
}

func (a *App) setupRoutes() {
	e := a.Echo

	e.Static("/public", a.staticDir)
	e.GET("/favicon.svg", a.handleFavicon)
	e.GET("/robots.txt", a.handleRobots)

	// Public routes
	e.GET("/sitemap.xml", a.handleSitemap)
	e.GET("/feed.xml", a.handleFeed)
	e.GET("/blog", handleBlogRedirect)
	e.GET("/", a.handleHome)
	e.GET("/blog/:slug/", a.handlePost)

	// Admin routes
	e.GET("/admin/", a.handleAdmin)
	e.POST("/admin/login/", a.handleAdminLogin)
	e.POST("/admin/logout/", handleAdminLogout)
	e.GET("/admin/new/", a.handleAdminNew, requireAdmin)
	e.GET("/admin/post/:slug/", a.handleAdminPost, requireAdmin)
	e.DELETE("/admin/post/:slug/", a.handleAdminDelete, requireAdmin)
	e.GET("/admin/preview/:slug/", a.handleAdminPreviewSaved, requireAdmin)
	e.POST("/admin/preview/", a.handleAdminPreview, requireAdmin)
	e.POST("/admin/save/", a.handleAdminSave, requireAdmin)
	e.POST("/admin/slug/", a.handleSlug, requireAdmin)

	// Image editing session transitions
	e.POST("/admin/images/add/", a.handleImageAdd, requireAdmin)
	e.POST("/admin/images/update/", a.handleImageUpdate, requireAdmin)
	e.POST("/admin/images/remove/", a.handleImageRemove, requireAdmin)
}

// Close cleans up resources. Call this when the app is shutting down.
func (a *App) Close() error {
	if a.stop != nil {
		a.stop()
	}
	var err error
	if a.Store != nil {
		err = a.Store.Close()
	}
	if a.Config.SentryDSN != "" {
		sentry.Flush(2 * time.Second)
	}
	if a.Logger != nil {
		_ = a.Logger.Sync()
	}
	return err
}
