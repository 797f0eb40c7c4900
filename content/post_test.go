package content

import (
	"errors"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Rails 8: My First App!", "rails-8-my-first-app"},
		{"", ""},
		{"  Hello   World  ", "hello-world"},
		{"already-a-slug", "already-a-slug"},
		{"Dashes -- and  spaces", "dashes-and-spaces"},
		{"--Leading and trailing--", "leading-and-trailing"},
		{"Don't Panic", "dont-panic"},
		{"Café au lait", "caf-au-lait"},
		{"!!!", ""},
		{"Tabs\tand\nnewlines", "tabs-and-newlines"},
	}
	for _, tt := range tests {
		if got := Slugify(tt.input); got != tt.expected {
			t.Errorf("Slugify(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestPositionVocabulary(t *testing.T) {
	v := DefaultVocabulary
	for _, s := range []string{"hero", "index-1", "index-2", "index-3", " index-2 "} {
		_, err := v.Parse(s)
		assert.NoError(t, err, s)
	}
	for _, s := range []string{"", "Hero", "index-0", "index-4", "index-01", "index--1", "index-x", "footer"} {
		_, err := v.Parse(s)
		assert.ErrorIs(t, err, ErrValidation, s)
	}

	wide := Vocabulary{MaxIndex: 5}
	assert.True(t, wide.Valid("index-5"))
	assert.Equal(t, []Position{Hero, "index-1", "index-2", "index-3"}, v.Positions())
}

func TestImagesRoundTrip(t *testing.T) {
	images := []ImageRecord{
		{Src: "https://example.com/a.jpg", Alt: "Dashboard screenshot", Caption: "The admin dashboard", Position: Hero},
		{Src: "data:image/png;base64,iVBORw0KGgo=", Alt: "", Caption: "Step <two> & \"more\"", Position: IndexPosition(1)},
		{Src: "/public/uploads/c.jpg", Alt: "c", Caption: "", Position: IndexPosition(3)},
	}
	raw, err := EncodeImages(images)
	require.NoError(t, err)

	got, err := DecodeImages(DefaultVocabulary, raw)
	require.NoError(t, err)
	assert.Equal(t, images, got)
}

func TestEncodeEmptyImages(t *testing.T) {
	raw, err := EncodeImages(nil)
	require.NoError(t, err)
	assert.Equal(t, "[]", raw)

	got, err := DecodeImages(DefaultVocabulary, raw)
	require.NoError(t, err)
	assert.Equal(t, []ImageRecord{}, got)

	got, err = DecodeImages(DefaultVocabulary, "   ")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestDecodeImagesRejects(t *testing.T) {
	tests := map[string]string{
		"not json":         `not json`,
		"object":           `{"src":"/a","position":"hero"}`,
		"null":             `null`,
		"missing position": `[{"src":"/a","alt":"","caption":""}]`,
		"invalid position": `[{"src":"/a","alt":"","caption":"","position":"index-9"}]`,
		"unknown field":    `[{"src":"/a","alt":"","caption":"","position":"hero","width":10}]`,
		"empty src":        `[{"src":"","alt":"","caption":"","position":"hero"}]`,
		"trailing data":    `[] []`,
		"one bad of two":   `[{"src":"/a","position":"hero"},{"src":"/b","position":"side"}]`,
		"upper case keys":  `[{"SRC":"/a.jpg","Alt":"x","Caption":"c","Position":"hero"}]`,
		"repeated key":     `[{"src":"/a.jpg","alt":"","caption":"","position":"hero","Src":"/evil.jpg"}]`,
		"exact duplicate":  `[{"src":"/a.jpg","src":"/b.jpg","position":"hero"}]`,
		"null element":     `[null]`,
	}
	for name, raw := range tests {
		t.Run(name, func(t *testing.T) {
			got, err := DecodeImages(DefaultVocabulary, raw)
			assert.Nil(t, got)
			assert.ErrorIs(t, err, ErrParse)
		})
	}
}

func TestDecodeInvalidPositionCarriesValidationError(t *testing.T) {
	_, err := DecodeImages(DefaultVocabulary, `[{"src":"/a","position":"hero"},{"src":"/b","position":"index-4"}]`)
	var perr *ParseError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, 1, perr.Item)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestExcerptOrContent(t *testing.T) {
	long := strings.Repeat("word ", 100)
	p := Post{Excerpt: "Hand written.", Body: long}
	assert.Equal(t, "Hand written.", p.ExcerptOrContent(10))

	p = Post{Excerpt: "  ", Body: "Short body.\n\nSecond para."}
	assert.Equal(t, "Short body. Second para.", p.ExcerptOrContent(100))

	p = Post{Body: "abcdefghij klmnop"}
	assert.Equal(t, "abcdefghij…", p.ExcerptOrContent(11))
	assert.Equal(t, "abcde…", p.ExcerptOrContent(5))

	p = Post{Body: long}
	got := p.ExcerptOrContent(0)
	assert.True(t, strings.HasSuffix(got, "…"))
	assert.LessOrEqual(t, len([]rune(got)), DefaultExcerptLength+1)
}

func TestHeroImage(t *testing.T) {
	p := Post{Images: []ImageRecord{{Src: "/1", Position: IndexPosition(1)}}}
	assert.False(t, p.HasHeroImage())

	p.Images = append(p.Images, ImageRecord{Src: "/h", Position: Hero})
	hero, ok := p.HeroImage()
	require.True(t, ok)
	assert.Equal(t, "/h", hero.Src)

	p.Images = append(p.Images, ImageRecord{Src: "/h2", Position: Hero})
	assert.False(t, p.HasHeroImage())
}

func TestIndexedImagesInPositionOrder(t *testing.T) {
	p := Post{Images: []ImageRecord{
		{Src: "/3", Position: IndexPosition(3)},
		{Src: "/h", Position: Hero},
		{Src: "/1", Position: IndexPosition(1)},
		{Src: "/2", Position: IndexPosition(2)},
	}}
	var srcs []string
	for _, img := range p.IndexedImages() {
		srcs = append(srcs, img.Src)
	}
	assert.Equal(t, []string{"/1", "/2", "/3"}, srcs)

	img, ok := p.ImageByIndex(2)
	require.True(t, ok)
	assert.Equal(t, "/2", img.Src)

	_, ok = p.ImageByIndex(0)
	assert.False(t, ok)
	_, ok = p.ImageByIndex(4)
	assert.False(t, ok)
}

func TestPostValidate(t *testing.T) {
	valid := Post{Title: "Hello", Slug: "hello", Body: "Body.", Date: "2024-01-15"}
	require.NoError(t, valid.Validate(DefaultVocabulary))

	tests := []struct {
		name  string
		edit  func(*Post)
		field string
	}{
		{"missing title", func(p *Post) { p.Title = "" }, "title"},
		{"long title", func(p *Post) { p.Title = strings.Repeat("x", MaxTitleLength+1) }, "title"},
		{"long multibyte title", func(p *Post) { p.Title = strings.Repeat("é", MaxTitleLength+1) }, "title"},
		{"missing slug", func(p *Post) { p.Slug = "" }, "slug"},
		{"bad slug", func(p *Post) { p.Slug = "Not A Slug" }, "slug"},
		{"missing body", func(p *Post) { p.Body = "" }, "body"},
		{"bad date", func(p *Post) { p.Date = "15/01/2024" }, "date"},
		{"bad position", func(p *Post) { p.Images = []ImageRecord{{Src: "/a", Position: "index-7"}} }, "position"},
		{"empty src", func(p *Post) { p.Images = []ImageRecord{{Position: Hero}} }, "src"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := valid
			tt.edit(&p)
			err := p.Validate(DefaultVocabulary)
			var verr *ValidationError
			require.True(t, errors.As(err, &verr), "got %v", err)
			assert.Equal(t, tt.field, verr.Field)
		})
	}
}

func TestPostTitleLimitFollowsConstant(t *testing.T) {
	p := Post{Title: strings.Repeat("é", MaxTitleLength), Slug: "long", Body: "Body."}
	require.NoError(t, p.Validate(DefaultVocabulary))

	p.Title += "x"
	err := p.Validate(DefaultVocabulary)
	var verr *ValidationError
	require.True(t, errors.As(err, &verr), "got %v", err)
	assert.Equal(t, "must be at most "+strconv.Itoa(MaxTitleLength)+" characters", verr.Reason)
}
