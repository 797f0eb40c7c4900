// Package views holds the default templ components: the public post body,
// the admin preview and the admin pages. Every component walks plain values
// and escapes them itself.
package views

import (
	"bytes"
	"context"
	"io"
	"strconv"

	"github.com/a-h/templ"

	"github.com/eringen/folio/content"
	"github.com/eringen/folio/markdown"
)

// out accumulates HTML; s escapes, raw does not.
type out struct {
	bytes.Buffer
}

func (o *out) raw(parts ...string) {
	for _, p := range parts {
		o.WriteString(p)
	}
}

func (o *out) s(v string) {
	o.WriteString(templ.EscapeString(v))
}

func component(fn func(ctx context.Context, o *out) error) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var o out
		if err := fn(ctx, &o); err != nil {
			return err
		}
		_, err := w.Write(o.Bytes())
		return err
	})
}

func (o *out) figure(class string, img content.ImageRecord, eager bool, badge string) {
	src := markdown.ImageSrc(img.Src)
	o.raw(`<figure class="`, class, `">`)
	if badge != "" {
		o.raw(`<span class="position-badge">`)
		o.s(badge)
		o.raw(`</span>`)
	}
	if src == "" {
		o.raw(`<div class="image-missing">unsupported image reference</div>`)
	} else {
		o.raw(`<img src="`)
		o.s(src)
		o.raw(`" alt="`)
		o.s(img.Alt)
		if eager {
			o.raw(`" fetchpriority="high" decoding="async"/>`)
		} else {
			o.raw(`" loading="lazy" decoding="async"/>`)
		}
	}
	if img.Caption != "" {
		o.raw(`<figcaption>`)
		o.s(img.Caption)
		o.raw(`</figcaption>`)
	}
	o.raw(`</figure>`)
}

func (o *out) blocks(blocks []content.Block, admin bool) {
	for _, b := range blocks {
		switch b.Kind {
		case content.HeroImage:
			badge := ""
			if admin {
				badge = string(content.Hero)
			}
			o.figure("post-hero", b.Image, true, badge)
		case content.Paragraph:
			if admin {
				o.raw(`<div class="paragraph" data-paragraph="`, strconv.Itoa(b.Index), `">`)
				o.raw(`<span class="paragraph-number">¶`, strconv.Itoa(b.Index), `</span>`)
			}
			markdown.RenderParagraph(&o.Buffer, b.Text)
			if admin {
				o.raw(`</div>`)
			}
		case content.IndexedImage:
			badge := ""
			if admin {
				badge = string(b.Image.Position)
			}
			o.figure("post-image", b.Image, false, badge)
		}
	}
}

// PostBody renders the public view of a composed post.
func PostBody(blocks []content.Block) templ.Component {
	return component(func(ctx context.Context, o *out) error {
		o.raw(`<div class="post-body">`)
		o.blocks(blocks, false)
		o.raw(`</div>`)
		return nil
	})
}

// PreviewBody renders the admin preview: the same plan annotated with
// paragraph numbers and positions, followed by warnings for duplicated
// positions and images that have no place in the plan.
func PreviewBody(p Preview) templ.Component {
	return component(func(ctx context.Context, o *out) error {
		o.raw(`<div class="post-body post-preview">`)
		o.blocks(p.Blocks, true)
		o.raw(`</div>`)
		if len(p.Conflicts) > 0 {
			o.raw(`<div class="preview-warning"><p>Several images share a position; the last one is shown:</p><ul>`)
			for _, c := range p.Conflicts {
				o.raw(`<li>`)
				o.s(string(c.Position))
				o.raw(` (`, strconv.Itoa(len(c.Items)), ` images)</li>`)
			}
			o.raw(`</ul></div>`)
		}
		if len(p.Unplaced) > 0 {
			o.raw(`<div class="preview-unplaced"><p>Not shown:</p>`)
			for _, img := range p.Unplaced {
				o.figure("post-image unplaced", img, false, string(img.Position))
			}
			o.raw(`</div>`)
		}
		return nil
	})
}
