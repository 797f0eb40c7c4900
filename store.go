package folio

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/pressly/goose/v3"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/eringen/folio/content"
)

var (
	// ErrNotFound is returned when a requested post does not exist.
	ErrNotFound = errors.New("post not found")
	// ErrSlugTaken is returned when a create or update would give two posts
	// the same slug.
	ErrSlugTaken = errors.New("slug already in use")
)

const postsTable = "posts"

var postColumns = []string{"id", "slug", "title", "date", "tags", "excerpt", "body", "images", "published"}

// Store wraps a SQLite database and provides CRUD operations for posts.
type Store struct {
	db    *sql.DB
	sb    sq.StatementBuilderType
	vocab content.Vocabulary
	log   *zap.Logger
}

// NewStore opens (or creates) the SQLite database at path, ensures the data
// directory exists, and applies the embedded migrations.
func NewStore(ctx context.Context, path string, vocab content.Vocabulary, logger *zap.Logger) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	db, err := sql.Open("sqlite", dsn(path))
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(4)

	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Store{
		db:    db,
		sb:    sq.StatementBuilder.PlaceholderFormat(sq.Question).RunWith(db),
		vocab: vocab,
		log:   logger,
	}
	if err := s.Migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// sqlitePragmas run on every connection the pool opens. WAL lets readers
// proceed while the admin writes; busy_timeout makes writers wait instead of
// failing with SQLITE_BUSY.
var sqlitePragmas = []string{
	"journal_mode(WAL)",
	"busy_timeout(5000)",
	"synchronous(NORMAL)",
	"cache_size(-8000)",
}

func dsn(path string) string {
	q := make([]string, len(sqlitePragmas))
	for i, p := range sqlitePragmas {
		q[i] = "_pragma=" + p
	}
	return "file:" + path + "?" + strings.Join(q, "&")
}

// Migrate applies every pending migration.
func (s *Store) Migrate(ctx context.Context) error {
	migrations, err := fs.Sub(Migrations, "migrations")
	if err != nil {
		return err
	}
	provider, err := goose.NewProvider(goose.DialectSQLite3, s.db, migrations)
	if err != nil {
		return fmt.Errorf("migrations: %w", err)
	}
	results, err := provider.Up(ctx)
	if err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	for _, r := range results {
		s.log.Info("applied migration",
			zap.String("source", r.Source.Path),
			zap.Duration("took", r.Duration))
	}
	return nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (s *Store) scanPost(row rowScanner) (content.Post, error) {
	var p content.Post
	var tags, rawImages string
	var published int
	if err := row.Scan(&p.ID, &p.Slug, &p.Title, &p.Date, &tags, &p.Excerpt, &p.Body, &rawImages, &published); err != nil {
		return content.Post{}, err
	}
	images, err := content.DecodeImages(s.vocab, rawImages)
	if err != nil {
		return content.Post{}, fmt.Errorf("post %q images: %w", p.Slug, err)
	}
	p.Images = images
	p.Tags = ParseTags(tags)
	p.Published = published == 1
	return p, nil
}

func (s *Store) queryPosts(ctx context.Context, q sq.SelectBuilder) ([]content.Post, error) {
	rows, err := q.QueryContext(ctx)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var posts []content.Post
	for rows.Next() {
		p, err := s.scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}
	return posts, rows.Err()
}

func (s *Store) getPost(ctx context.Context, where sq.Sqlizer) (content.Post, error) {
	row := s.sb.Select(postColumns...).From(postsTable).Where(where).QueryRowContext(ctx)
	p, err := s.scanPost(row)
	if errors.Is(err, sql.ErrNoRows) {
		return content.Post{}, ErrNotFound
	}
	return p, err
}

// ListPosts returns all published posts ordered by date descending.
// If tag is non-empty, results are filtered to posts carrying that tag.
func (s *Store) ListPosts(ctx context.Context, tag string) ([]content.Post, error) {
	q := s.sb.Select(postColumns...).From(postsTable).
		Where(sq.Eq{"published": 1}).
		OrderBy("date DESC", "id DESC")
	if tag = normalizeTag(tag); tag != "" {
		q = q.Where("instr(lower(tags), ',' || ? || ',') > 0", tag)
	}
	return s.queryPosts(ctx, q)
}

// ListAllPosts returns every post, drafts included, ordered by date descending.
func (s *Store) ListAllPosts(ctx context.Context) ([]content.Post, error) {
	return s.queryPosts(ctx, s.sb.Select(postColumns...).From(postsTable).OrderBy("date DESC", "id DESC"))
}

// ListTags returns a sorted, deduplicated slice of all tags from published posts.
func (s *Store) ListTags(ctx context.Context) ([]string, error) {
	rows, err := s.sb.Select("tags").From(postsTable).Where(sq.Eq{"published": 1}).QueryContext(ctx)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	set := make(map[string]struct{})
	for rows.Next() {
		var tags string
		if err := rows.Scan(&tags); err != nil {
			return nil, err
		}
		for _, t := range ParseTags(tags) {
			set[normalizeTag(t)] = struct{}{}
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	result := make([]string, 0, len(set))
	for t := range set {
		result = append(result, t)
	}
	sort.Strings(result)
	return result, nil
}

// GetPost returns a single published post by slug.
func (s *Store) GetPost(ctx context.Context, slug string) (content.Post, error) {
	return s.getPost(ctx, sq.Eq{"slug": slug, "published": 1})
}

// GetPostAny returns a post by slug regardless of published status.
func (s *Store) GetPostAny(ctx context.Context, slug string) (content.Post, error) {
	return s.getPost(ctx, sq.Eq{"slug": slug})
}

func postValues(p content.Post) (tags, images string, published int, err error) {
	normalized := make([]string, 0, len(p.Tags))
	for _, t := range p.Tags {
		if t = normalizeTag(t); t != "" {
			normalized = append(normalized, t)
		}
	}
	tags = "," + strings.Join(normalized, ",") + ","
	images, err = content.EncodeImages(p.Images)
	if p.Published {
		published = 1
	}
	return tags, images, published, err
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// CreatePost inserts a new post and returns its id. Tags are normalized to
// lowercase and images are stored as their JSON encoding.
func (s *Store) CreatePost(ctx context.Context, p content.Post) (int64, error) {
	tags, images, published, err := postValues(p)
	if err != nil {
		return 0, err
	}
	res, err := s.sb.Insert(postsTable).
		Columns("slug", "title", "date", "tags", "excerpt", "body", "images", "published", "updated_at").
		Values(p.Slug, p.Title, p.Date, tags, p.Excerpt, p.Body, images, published, time.Now().UTC().Format(time.RFC3339)).
		ExecContext(ctx)
	if isUniqueViolation(err) {
		return 0, fmt.Errorf("%w: %s", ErrSlugTaken, p.Slug)
	}
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// UpdatePost replaces every stored field of the post with the given id,
// slug included.
func (s *Store) UpdatePost(ctx context.Context, id int64, p content.Post) error {
	tags, images, published, err := postValues(p)
	if err != nil {
		return err
	}
	res, err := s.sb.Update(postsTable).SetMap(map[string]any{
		"slug":       p.Slug,
		"title":      p.Title,
		"date":       p.Date,
		"tags":       tags,
		"excerpt":    p.Excerpt,
		"body":       p.Body,
		"images":     images,
		"published":  published,
		"updated_at": time.Now().UTC().Format(time.RFC3339),
	}).Where(sq.Eq{"id": id}).ExecContext(ctx)
	if isUniqueViolation(err) {
		return fmt.Errorf("%w: %s", ErrSlugTaken, p.Slug)
	}
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// DeletePost removes a post by slug.
func (s *Store) DeletePost(ctx context.Context, slug string) error {
	res, err := s.sb.Delete(postsTable).Where(sq.Eq{"slug": slug}).ExecContext(ctx)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// ParseTags splits a comma-delimited tag string (e.g. ",go,web,") into a slice.
func ParseTags(tagString string) []string {
	tagString = strings.Trim(tagString, ",")
	if tagString == "" {
		return nil
	}
	parts := strings.Split(tagString, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func normalizeTag(t string) string {
	return strings.ToLower(strings.TrimSpace(t))
}
