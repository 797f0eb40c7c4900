package folio

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eringen/folio/content"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test_blog.db")
	s, err := NewStore(context.Background(), path, content.DefaultVocabulary, nil)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func samplePost(slug string) content.Post {
	return content.Post{
		Slug:  slug,
		Title: "Test Post",
		Date:  "2024-01-15",
		Tags:  []string{"Go", " testing "},
		Body:  "First paragraph.\n\nSecond paragraph.",
		Images: []content.ImageRecord{
			{Src: "/public/hero.jpg", Alt: "hero", Position: content.Hero},
			{Src: "/public/one.jpg", Caption: "after one", Position: content.IndexPosition(1)},
		},
		Published: true,
	}
}

func TestNewStoreIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "blog.db")
	ctx := context.Background()
	s, err := NewStore(ctx, path, content.DefaultVocabulary, nil)
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = NewStore(ctx, path, content.DefaultVocabulary, nil)
	require.NoError(t, err)
	require.NoError(t, s.Close())
}

func TestStorePragmasApplyToEveryConnection(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	var conns []*sql.Conn
	for range 3 {
		conn, err := s.db.Conn(ctx)
		require.NoError(t, err)
		conns = append(conns, conn)
	}
	for i, conn := range conns {
		var timeout int
		require.NoError(t, conn.QueryRowContext(ctx, "PRAGMA busy_timeout").Scan(&timeout))
		assert.Equal(t, 5000, timeout, "connection %d", i)

		var mode string
		require.NoError(t, conn.QueryRowContext(ctx, "PRAGMA journal_mode").Scan(&mode))
		assert.Equal(t, "wal", mode, "connection %d", i)
	}
	for _, conn := range conns {
		require.NoError(t, conn.Close())
	}
}

func TestCreateAndGetPost(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	id, err := s.CreatePost(ctx, samplePost("test-post"))
	require.NoError(t, err)
	assert.Positive(t, id)

	got, err := s.GetPost(ctx, "test-post")
	require.NoError(t, err)
	assert.Equal(t, id, got.ID)
	assert.Equal(t, "Test Post", got.Title)
	assert.Equal(t, []string{"go", "testing"}, got.Tags)
	assert.Equal(t, samplePost("x").Images, got.Images)
	assert.True(t, got.Published)
}

func TestCreatePostSlugTaken(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	_, err := s.CreatePost(ctx, samplePost("dup"))
	require.NoError(t, err)
	_, err = s.CreatePost(ctx, samplePost("dup"))
	assert.ErrorIs(t, err, ErrSlugTaken)
}

func TestUpdatePostRenamesSlug(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	id, err := s.CreatePost(ctx, samplePost("old-slug"))
	require.NoError(t, err)

	p := samplePost("new-slug")
	p.Title = "Updated"
	p.Images = nil
	require.NoError(t, s.UpdatePost(ctx, id, p))

	_, err = s.GetPostAny(ctx, "old-slug")
	assert.ErrorIs(t, err, ErrNotFound)

	got, err := s.GetPostAny(ctx, "new-slug")
	require.NoError(t, err)
	assert.Equal(t, id, got.ID)
	assert.Equal(t, "Updated", got.Title)
	assert.Empty(t, got.Images)
}

func TestUpdatePostErrors(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	_, err := s.CreatePost(ctx, samplePost("a"))
	require.NoError(t, err)
	id, err := s.CreatePost(ctx, samplePost("b"))
	require.NoError(t, err)

	assert.ErrorIs(t, s.UpdatePost(ctx, id, samplePost("a")), ErrSlugTaken)
	assert.ErrorIs(t, s.UpdatePost(ctx, 9999, samplePost("c")), ErrNotFound)
}

func TestGetPostUnpublished(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	p := samplePost("draft")
	p.Published = false
	_, err := s.CreatePost(ctx, p)
	require.NoError(t, err)

	_, err = s.GetPost(ctx, "draft")
	assert.ErrorIs(t, err, ErrNotFound)

	got, err := s.GetPostAny(ctx, "draft")
	require.NoError(t, err)
	assert.False(t, got.Published)
}

func TestListPostsOrderAndTags(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	for _, p := range []content.Post{
		{Slug: "older", Title: "Older", Date: "2024-01-01", Body: "x", Tags: []string{"go"}, Published: true},
		{Slug: "newer", Title: "Newer", Date: "2024-02-01", Body: "x", Tags: []string{"web"}, Published: true},
		{Slug: "hidden", Title: "Hidden", Date: "2024-03-01", Body: "x", Tags: []string{"secret"}},
	} {
		_, err := s.CreatePost(ctx, p)
		require.NoError(t, err)
	}

	posts, err := s.ListPosts(ctx, "")
	require.NoError(t, err)
	require.Len(t, posts, 2)
	assert.Equal(t, "newer", posts[0].Slug)
	assert.Equal(t, "older", posts[1].Slug)

	posts, err = s.ListPosts(ctx, " GO ")
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, "older", posts[0].Slug)

	all, err := s.ListAllPosts(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	tags, err := s.ListTags(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"go", "web"}, tags)
}

func TestDeletePost(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	_, err := s.CreatePost(ctx, samplePost("gone"))
	require.NoError(t, err)
	require.NoError(t, s.DeletePost(ctx, "gone"))

	_, err = s.GetPostAny(ctx, "gone")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, s.DeletePost(ctx, "gone"), ErrNotFound)
}

func TestCorruptImagesColumn(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	_, err := s.CreatePost(ctx, samplePost("corrupt"))
	require.NoError(t, err)
	_, err = s.db.ExecContext(ctx, `UPDATE posts SET images = '[{"src":"/x.jpg","position":"sidebar"}]' WHERE slug = 'corrupt'`)
	require.NoError(t, err)

	_, err = s.GetPostAny(ctx, "corrupt")
	assert.ErrorIs(t, err, content.ErrParse)
}

func TestPostCacheInvalidate(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	cache := NewPostCache(s, time.Hour)

	posts, err := cache.ListPosts(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, posts)

	_, err = s.CreatePost(ctx, samplePost("cached"))
	require.NoError(t, err)
	posts, err = cache.ListPosts(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, posts, "still served from cache")

	cache.Invalidate()
	got, err := cache.GetPost(ctx, "cached")
	require.NoError(t, err)
	assert.Equal(t, "Test Post", got.Title)

	_, err = cache.GetPost(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestParseTags(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{",go,web,", []string{"go", "web"}},
		{",,", nil},
		{"", nil},
		{", go , ,web", []string{"go", "web"}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseTags(tt.in), tt.in)
	}
}
