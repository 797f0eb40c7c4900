package content

import (
	"errors"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

const (
	// MaxTitleLength bounds Post.Title, counted in runes.
	MaxTitleLength = 200
	// DefaultExcerptLength is the rune budget for a derived excerpt.
	DefaultExcerptLength = 160
)

// Post is the aggregate of a blog post's text and its embedded images. It
// exclusively owns Images.
type Post struct {
	ID        int64         `json:"id"` // storage identifier, 0 until created
	Title     string        `json:"title" validate:"required,maxtitle"`
	Slug      string        `json:"slug" validate:"required,slug"`
	Excerpt   string        `json:"excerpt"`
	Body      string        `json:"body" validate:"required"`
	Images    []ImageRecord `json:"images"`
	Date      string        `json:"date" validate:"omitempty,datetime=2006-01-02"`
	Tags      []string      `json:"tags"`
	Published bool          `json:"published"`
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func postValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(f reflect.StructField) string {
			name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
			if name == "" || name == "-" {
				return f.Name
			}
			return name
		})
		validate.RegisterAlias("maxtitle", "max="+strconv.Itoa(MaxTitleLength))
		if err := validate.RegisterValidation("slug", func(fl validator.FieldLevel) bool {
			return IsSlug(fl.Field().String())
		}); err != nil {
			panic("content: register slug validation: " + err.Error())
		}
	})
	return validate
}

// Validate checks the fields that must hold before the post is persisted.
// Image positions are checked against vocab.
func (p Post) Validate(vocab Vocabulary) error {
	if err := postValidator().Struct(p); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return fieldError(verrs[0])
		}
		return err
	}
	for _, img := range p.Images {
		if _, err := vocab.Parse(string(img.Position)); err != nil {
			return err
		}
		if strings.TrimSpace(img.Src) == "" {
			return &ValidationError{Field: "src", Reason: "is required"}
		}
	}
	return nil
}

func fieldError(fe validator.FieldError) *ValidationError {
	reason := "is invalid"
	switch fe.ActualTag() {
	case "required":
		reason = "is required"
	case "max":
		reason = "must be at most " + fe.Param() + " characters"
	case "slug":
		reason = "must contain only lowercase letters, digits and single hyphens"
	case "datetime":
		reason = "must use the YYYY-MM-DD format"
	}
	return &ValidationError{Field: fe.Field(), Reason: reason}
}

// ExcerptOrContent returns the explicit excerpt when set, otherwise a prefix
// of the body cut to limit runes. Paragraphs are joined with a space so no
// boundary is ever split; a cut ends in an ellipsis.
func (p Post) ExcerptOrContent(limit int) string {
	if strings.TrimSpace(p.Excerpt) != "" {
		return p.Excerpt
	}
	if limit <= 0 {
		limit = DefaultExcerptLength
	}
	text := strings.Join(strings.Fields(strings.Join(Segment(p.Body), " ")), " ")
	if utf8.RuneCountInString(text) <= limit {
		return text
	}
	runes := []rune(text)
	return strings.TrimRight(string(runes[:limit]), " ") + "…"
}

// HeroImage returns the hero image when exactly one image holds the hero
// position.
func (p Post) HeroImage() (ImageRecord, bool) {
	var hero ImageRecord
	n := 0
	for _, img := range p.Images {
		if img.Position.IsHero() {
			hero = img
			n++
		}
	}
	return hero, n == 1
}

// HasHeroImage reports whether exactly one image holds the hero position.
func (p Post) HasHeroImage() bool {
	_, ok := p.HeroImage()
	return ok
}

// IndexedImages returns the non-hero images ordered by slot, keeping storage
// order among images that share a slot.
func (p Post) IndexedImages() []ImageRecord {
	var out []ImageRecord
	for _, img := range p.Images {
		if img.Position.Index() > 0 {
			out = append(out, img)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Position.Index() < out[j].Position.Index()
	})
	return out
}

// ImageByIndex returns the image placed after paragraph i. Repeated slots
// resolve to the later image, as in Compose.
func (p Post) ImageByIndex(i int) (ImageRecord, bool) {
	var found ImageRecord
	ok := false
	for _, img := range p.Images {
		if img.Position.Index() == i && i > 0 {
			found, ok = img, true
		}
	}
	return found, ok
}

// Blocks composes the post body with its images.
func (p Post) Blocks(c Composer) []Block {
	return c.Compose(p.Body, p.Images)
}
