package content

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSegment(t *testing.T) {
	tests := []struct {
		name string
		body string
		want []string
	}{
		{"empty", "", nil},
		{"whitespace only", "  \n\n \t\n", nil},
		{"single", "Just one.", []string{"Just one."}},
		{"collapse blank runs", "Para one.\n\nPara two.\n\n\nPara three.", []string{"Para one.", "Para two.", "Para three."}},
		{"whitespace lines count as blank", "a\n   \nb\n\t\n\nc", []string{"a", "b", "c"}},
		{"leading and trailing blanks", "\n\n  first  \n\nsecond\n\n\n", []string{"first", "second"}},
		{"single newline stays inside", "line one\nline two\n\nnext", []string{"line one\nline two", "next"}},
		{"crlf", "one\r\n\r\ntwo", []string{"one", "two"}},
		{"no-break space line", "a\n\u00a0\nb", []string{"a", "b"}},
		{"em space line", "a\n\u2003\nb", []string{"a", "b"}},
		{"ideographic space line", "a\n\u3000 \nb", []string{"a", "b"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Segment(tt.body))
		})
	}
}

func TestSegmentIsStable(t *testing.T) {
	bodies := []string{
		"Para one.\n\nPara two.\n\n\nPara three.",
		"  lead\n \n\n  tail  ",
		"a\nb\n\n\n\nc\r\n\r\nd",
		"",
	}
	for _, b := range bodies {
		first := Segment(b)
		again := Segment(strings.Join(first, "\n\n"))
		assert.Equal(t, first, again, "body %q", b)
	}
}

func kinds(blocks []Block) []BlockKind {
	out := make([]BlockKind, len(blocks))
	for i, b := range blocks {
		out[i] = b.Kind
	}
	return out
}

func TestComposeWithoutImages(t *testing.T) {
	blocks := Compose("one\n\ntwo\n\nthree", nil)
	require.Len(t, blocks, 3)
	for i, b := range blocks {
		assert.Equal(t, Paragraph, b.Kind)
		assert.Equal(t, i+1, b.Index)
	}
	assert.Equal(t, "three", blocks[2].Text)
}

func TestComposeHeroFirst(t *testing.T) {
	images := []ImageRecord{
		{Src: "/b.jpg", Position: IndexPosition(1)},
		{Src: "/hero.jpg", Position: Hero},
	}
	blocks := Compose("one\n\ntwo", images)
	assert.Equal(t, []BlockKind{HeroImage, Paragraph, IndexedImage, Paragraph}, kinds(blocks))
	assert.Equal(t, "/hero.jpg", blocks[0].Image.Src)
	assert.Equal(t, "/b.jpg", blocks[2].Image.Src)
	assert.Equal(t, 1, blocks[2].Index)
}

func TestComposeIndexedFollowsParagraph(t *testing.T) {
	images := []ImageRecord{
		{Src: "/3.jpg", Position: IndexPosition(3)},
		{Src: "/2.jpg", Position: IndexPosition(2)},
	}
	blocks := Compose("p1\n\np2\n\np3", images)
	assert.Equal(t, []BlockKind{Paragraph, Paragraph, IndexedImage, Paragraph, IndexedImage}, kinds(blocks))
	assert.Equal(t, "p2", blocks[1].Text)
	assert.Equal(t, "/2.jpg", blocks[2].Image.Src)
	assert.Equal(t, "/3.jpg", blocks[4].Image.Src)
}

func TestComposeCountsUnicodeBlankLines(t *testing.T) {
	images := []ImageRecord{{Src: "/2.jpg", Position: IndexPosition(2)}}
	blocks := Compose("first\n\u00a0\nsecond", images)
	require.Equal(t, []BlockKind{Paragraph, Paragraph, IndexedImage}, kinds(blocks))
	assert.Equal(t, "second", blocks[1].Text)
}

func TestComposeDropsSlotsPastLastParagraph(t *testing.T) {
	images := []ImageRecord{
		{Src: "/1.jpg", Position: IndexPosition(1)},
		{Src: "/3.jpg", Position: IndexPosition(3)},
	}
	blocks := Compose("only one paragraph", images)
	assert.Equal(t, []BlockKind{Paragraph, IndexedImage}, kinds(blocks))
	assert.Equal(t, "/1.jpg", blocks[1].Image.Src)
}

func TestComposeLastWriteWins(t *testing.T) {
	images := []ImageRecord{
		{Src: "/first-hero.jpg", Position: Hero},
		{Src: "/first.jpg", Position: IndexPosition(1)},
		{Src: "/second.jpg", Position: IndexPosition(1)},
		{Src: "/second-hero.jpg", Position: Hero},
	}
	blocks := Compose("one", images)
	require.Equal(t, []BlockKind{HeroImage, Paragraph, IndexedImage}, kinds(blocks))
	assert.Equal(t, "/second-hero.jpg", blocks[0].Image.Src)
	assert.Equal(t, "/second.jpg", blocks[2].Image.Src)
}

func TestComposerHonoursMaxIndex(t *testing.T) {
	body := "p1\n\np2\n\np3\n\np4\n\np5"
	images := []ImageRecord{{Src: "/5.jpg", Position: IndexPosition(5)}}

	assert.NotContains(t, kinds(Compose(body, images)), IndexedImage)

	blocks := NewComposer(5).Compose(body, images)
	require.Len(t, blocks, 6)
	assert.Equal(t, IndexedImage, blocks[5].Kind)
}

func TestConflicts(t *testing.T) {
	images := []ImageRecord{
		{Src: "/a", Position: IndexPosition(2)},
		{Src: "/b", Position: Hero},
		{Src: "/c", Position: IndexPosition(2)},
		{Src: "/d", Position: Hero},
		{Src: "/e", Position: IndexPosition(1)},
	}
	got := Conflicts(images)
	require.Len(t, got, 2)
	assert.Equal(t, Conflict{Position: Hero, Items: []int{1, 3}}, got[0])
	assert.Equal(t, Conflict{Position: IndexPosition(2), Items: []int{0, 2}}, got[1])

	assert.Empty(t, Conflicts(images[3:]))
}

func TestUnplaced(t *testing.T) {
	images := []ImageRecord{
		{Src: "/old-hero", Position: Hero},
		{Src: "/hero", Position: Hero},
		{Src: "/1", Position: IndexPosition(1)},
		{Src: "/3", Position: IndexPosition(3)},
	}
	got := NewComposer(DefaultMaxIndex).Unplaced("one\n\ntwo", images)
	var srcs []string
	for _, img := range got {
		srcs = append(srcs, img.Src)
	}
	assert.Equal(t, []string{"/old-hero", "/3"}, srcs)
}
