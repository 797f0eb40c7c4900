package folio

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"go.uber.org/zap"

	"github.com/eringen/folio/content"
)

// SiteConfig holds all configuration for a folio site. LoadConfig fills it
// from the environment; programmatic callers may set fields directly and
// rely on setDefaults for the rest.
type SiteConfig struct {
	Name        string `env:"SITE_NAME" env-default:"Blog" env-description:"site name"`
	URL         string `env:"SITE_URL" env-default:"http://localhost:3000" env-description:"canonical URL"`
	Description string `env:"SITE_DESCRIPTION" env-description:"site description for RSS and meta tags"`
	Author      string `env:"SITE_AUTHOR" env-description:"author name for JSON-LD"`

	Env          string `env:"APP_ENV" env-default:"development" env-description:"development, production or test"`
	Addr         string `env:"ADDR" env-default:":3000"`
	DatabasePath string `env:"DATABASE_PATH" env-default:"data/blog.db"`
	StaticDir    string `env:"STATIC_DIR" env-default:"public"`

	AdminPassword string `env:"ADMIN_PASSWORD" env-description:"plain password or bcrypt hash"`
	SessionSecret string `env:"SESSION_SECRET"`
	CookieSecure  bool   `env:"COOKIE_SECURE"`

	PostCacheTTL     time.Duration `env:"POST_CACHE_TTL" env-default:"5m"`
	EditorSessionTTL time.Duration `env:"EDITOR_SESSION_TTL" env-default:"2h"`

	MaxIndexedImages int   `env:"MAX_INDEXED_IMAGES" env-default:"3" env-description:"image slots after paragraphs 1..N"`
	ExcerptLength    int   `env:"EXCERPT_LENGTH" env-default:"160"`
	MaxUploadSize    int64 `env:"MAX_UPLOAD_SIZE" env-default:"10485760"`

	SentryDSN string `env:"SENTRY_DSN"`
}

// LoadConfig reads SiteConfig from the environment.
func LoadConfig() (SiteConfig, error) {
	var cfg SiteConfig
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		help, _ := cleanenv.GetDescription(&cfg, nil)
		return SiteConfig{}, fmt.Errorf("read config: %w\n%s", err, help)
	}
	return cfg, nil
}

func (c *SiteConfig) setDefaults() {
	if c.Name == "" {
		c.Name = "Blog"
	}
	if c.URL == "" {
		c.URL = "http://localhost:3000"
	}
	if c.Env == "" {
		c.Env = "development"
	}
	if c.Addr == "" {
		c.Addr = ":3000"
	}
	if c.DatabasePath == "" {
		c.DatabasePath = "data/blog.db"
	}
	if c.StaticDir == "" {
		c.StaticDir = "public"
	}
	if c.PostCacheTTL == 0 {
		c.PostCacheTTL = 5 * time.Minute
	}
	if c.EditorSessionTTL == 0 {
		c.EditorSessionTTL = 2 * time.Hour
	}
	if c.MaxIndexedImages <= 0 {
		c.MaxIndexedImages = content.DefaultMaxIndex
	}
	if c.ExcerptLength <= 0 {
		c.ExcerptLength = content.DefaultExcerptLength
	}
	if c.MaxUploadSize <= 0 {
		c.MaxUploadSize = 10 << 20
	}
}

// Vocabulary is the image position vocabulary this site accepts.
func (c SiteConfig) Vocabulary() content.Vocabulary {
	return content.Vocabulary{MaxIndex: c.MaxIndexedImages}
}

// Option configures additional App behavior.
type Option func(*App)

// WithCustomRoutes registers additional routes on the Echo instance.
// The callback receives the App before the server starts.
func WithCustomRoutes(fn func(*App)) Option {
	return func(a *App) {
		a.customRoutes = append(a.customRoutes, fn)
	}
}

// WithLogger replaces the logger built from Config.Env.
func WithLogger(l *zap.Logger) Option {
	return func(a *App) {
		a.Logger = l
	}
}
