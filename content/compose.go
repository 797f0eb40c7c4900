package content

import (
	"sort"
	"strings"
)

// Segment splits body into trimmed, non-empty paragraphs separated by one or
// more blank lines. A line is blank when it holds nothing but Unicode
// whitespace. Paragraph 1 is the first element.
func Segment(body string) []string {
	body = strings.ReplaceAll(body, "\r\n", "\n")
	body = strings.ReplaceAll(body, "\r", "\n")
	var (
		paras []string
		lines []string
	)
	flush := func() {
		if p := strings.TrimSpace(strings.Join(lines, "\n")); p != "" {
			paras = append(paras, p)
		}
		lines = lines[:0]
	}
	for _, line := range strings.Split(body, "\n") {
		if strings.TrimSpace(line) == "" {
			flush()
			continue
		}
		lines = append(lines, line)
	}
	flush()
	return paras
}

// BlockKind tags a Block.
type BlockKind int

const (
	HeroImage BlockKind = iota + 1
	Paragraph
	IndexedImage
)

func (k BlockKind) String() string {
	switch k {
	case HeroImage:
		return "hero"
	case Paragraph:
		return "paragraph"
	case IndexedImage:
		return "indexed"
	}
	return "unknown"
}

// Block is one step of a rendering plan. Text is set for paragraphs, Image
// for the two image kinds. Index is the 1-based paragraph number the block
// belongs to (0 for the hero).
type Block struct {
	Kind  BlockKind
	Index int
	Text  string
	Image ImageRecord
}

// Composer merges segmented paragraphs with positioned images.
type Composer struct {
	Vocab Vocabulary
}

// NewComposer returns a Composer accepting maxIndex indexed slots.
func NewComposer(maxIndex int) Composer {
	return Composer{Vocab: Vocabulary{MaxIndex: maxIndex}}
}

// Compose builds the rendering plan for body and images using the default
// vocabulary.
func Compose(body string, images []ImageRecord) []Block {
	return Composer{Vocab: DefaultVocabulary}.Compose(body, images)
}

// Compose returns the hero image (if any), then each paragraph followed by
// the image indexed to it. Images indexed past the last paragraph have no
// insertion point and are dropped. When positions repeat, the later image in
// collection order wins.
func (c Composer) Compose(body string, images []ImageRecord) []Block {
	paras := Segment(body)

	var hero *ImageRecord
	indexed := make(map[int]ImageRecord)
	for i := range images {
		img := images[i]
		switch {
		case img.Position.IsHero():
			hero = &images[i]
		case c.Vocab.Valid(img.Position):
			indexed[img.Position.Index()] = img
		}
	}

	blocks := make([]Block, 0, len(paras)+len(indexed)+1)
	if hero != nil {
		blocks = append(blocks, Block{Kind: HeroImage, Image: *hero})
	}
	for i, p := range paras {
		n := i + 1
		blocks = append(blocks, Block{Kind: Paragraph, Index: n, Text: p})
		if img, ok := indexed[n]; ok {
			blocks = append(blocks, Block{Kind: IndexedImage, Index: n, Image: img})
		}
	}
	return blocks
}

// Conflict describes a position claimed by more than one image. Items holds
// the collection indices in order; the last one is the image that renders.
type Conflict struct {
	Position Position
	Items    []int
}

// Conflicts lists every position held by two or more images, in vocabulary
// order. It never changes how Compose resolves them.
func Conflicts(images []ImageRecord) []Conflict {
	seen := make(map[Position][]int)
	for i, img := range images {
		seen[img.Position] = append(seen[img.Position], i)
	}
	var out []Conflict
	for pos, items := range seen {
		if len(items) > 1 {
			out = append(out, Conflict{Position: pos, Items: items})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if a, b := out[i].Position.Index(), out[j].Position.Index(); a != b {
			return a < b
		}
		return out[i].Position < out[j].Position
	})
	return out
}

// Unplaced returns the images Compose leaves out of the plan: indexed images
// whose slot is past the last paragraph or outside the vocabulary, and images
// overridden by a later image at the same position.
func (c Composer) Unplaced(body string, images []ImageRecord) []ImageRecord {
	k := len(Segment(body))
	last := make(map[Position]int)
	for i, img := range images {
		last[img.Position] = i
	}
	var out []ImageRecord
	for i, img := range images {
		switch {
		case last[img.Position] != i:
			out = append(out, img)
		case img.Position.IsHero():
		case !c.Vocab.Valid(img.Position) || img.Position.Index() > k:
			out = append(out, img)
		}
	}
	return out
}
