package views

import (
	"context"
	"strconv"

	"github.com/a-h/templ"

	"github.com/eringen/folio/content"
	"github.com/eringen/folio/editor"
)

const sessionInputs = `[name=session],[name=images]`

func (o *out) positionSelect(name string, positions []content.Position, selected content.Position, attrs string) {
	o.raw(`<select name="`, name, `"`, attrs, `>`)
	for _, p := range positions {
		o.raw(`<option value="`)
		o.s(string(p))
		o.raw(`"`)
		if p == selected {
			o.raw(` selected`)
		}
		o.raw(`>`)
		o.s(string(p))
		o.raw(`</option>`)
	}
	o.raw(`</select>`)
}

func (o *out) rowInput(row editor.EntryView, field editor.Field, value string) {
	o.raw(`<label>`, string(field), ` <input type="text" name="value" value="`)
	o.s(value)
	o.raw(`" hx-post="/admin/images/update/" hx-trigger="change" hx-include="`, sessionInputs, `"`)
	o.raw(` hx-vals='{"entry":"`, row.ID.String(), `","index":"`, strconv.Itoa(row.Index), `","field":"`, string(field), `"}'/></label>`)
}

// AdminImages renders the image editing fragment. It is always rendered
// whole from the session snapshot, so every row's index matches the
// collection it was built from.
func AdminImages(form ImagesForm) templ.Component {
	return component(func(ctx context.Context, o *out) error {
		snap := form.Session
		o.raw(`<div id="image-editor" hx-target="this" hx-swap="outerHTML" hx-headers='{"X-CSRF-Token":"`)
		o.s(form.CSRF)
		o.raw(`"}'>`)
		o.raw(`<input type="hidden" name="session" value="`, snap.ID.String(), `"/>`)
		o.raw(`<input type="hidden" name="images" value="`)
		o.s(snap.Field)
		o.raw(`"/>`)
		o.message(form.Message)

		o.raw(`<ol class="image-rows">`)
		for _, row := range snap.Rows {
			class := "image-row"
			if row.Conflict {
				class += " conflict"
			}
			o.raw(`<li class="`, class, `" data-entry="`, row.ID.String(), `">`)
			o.figure("thumb", row.Image, false, "")
			o.rowInput(row, editor.FieldAlt, row.Image.Alt)
			o.rowInput(row, editor.FieldCaption, row.Image.Caption)
			o.raw(`<label>position `)
			o.positionSelect("value", snap.Positions, row.Image.Position,
				` hx-post="/admin/images/update/" hx-trigger="change" hx-include="`+sessionInputs+`"`+
					` hx-vals='{"entry":"`+row.ID.String()+`","index":"`+strconv.Itoa(row.Index)+`","field":"position"}'`)
			o.raw(`</label>`)
			if row.Conflict {
				o.raw(`<span class="warning">shares its position with another image</span>`)
			}
			o.raw(`<button type="button" hx-post="/admin/images/remove/" hx-include="`, sessionInputs, `"`)
			o.raw(` hx-vals='{"entry":"`, row.ID.String(), `","index":"`, strconv.Itoa(row.Index), `"}'>Remove</button></li>`)
		}
		o.raw(`</ol>`)

		o.raw(`<div class="image-add"><input type="file" name="image" accept="image/*"/>`)
		o.raw(`<input type="url" name="url" placeholder="or paste an image URL"/>`)
		o.positionSelect("position", snap.Positions, content.Hero, "")
		o.raw(`<button type="button" hx-post="/admin/images/add/" hx-encoding="multipart/form-data"`)
		o.raw(` hx-include="closest .image-add,`, sessionInputs, `">Add image</button></div>`)
		o.raw(`</div>`)
		return nil
	})
}

// SlugField renders the slug input; the generate button swaps it with a
// freshly derived value.
func SlugField(slug string) templ.Component {
	return component(func(ctx context.Context, o *out) error {
		o.slugField(slug)
		return nil
	})
}

func (o *out) slugField(slug string) {
	o.raw(`<span id="slug-field"><input type="text" name="slug" value="`)
	o.s(slug)
	o.raw(`"/><button type="button" hx-post="/admin/slug/" hx-include="[name=title]" hx-target="#slug-field" hx-swap="outerHTML">Generate</button></span>`)
}

func (o *out) field(label, name, value string) {
	o.raw(`<label>`, label, ` <input type="text" name="`, name, `" value="`)
	o.s(value)
	o.raw(`"/></label>`)
}

// AdminEditor renders the full post editor.
func AdminEditor(site Site, form EditorForm) templ.Component {
	return component(func(ctx context.Context, o *out) error {
		p := form.Post
		title := "New post"
		if form.OriginalSlug != "" {
			title = "Edit: " + p.Title
		}
		o.head(site, PageMeta{Title: title})
		o.raw(`<form id="post-editor" method="post" action="/admin/save/">`)
		o.message(form.Message)
		o.csrf(form.CSRF)
		o.raw(`<input type="hidden" name="original_slug" value="`)
		o.s(form.OriginalSlug)
		o.raw(`"/>`)
		o.field("Title", "title", p.Title)
		o.raw(`<label>Slug `)
		o.slugField(p.Slug)
		o.raw(`</label>`)
		o.field("Date", "date", p.Date)
		o.field("Tags", "tags", JoinTags(p.Tags))
		o.field("Excerpt", "excerpt", p.Excerpt)
		o.raw(`<label>Body <textarea name="body" rows="20">`)
		o.s(p.Body)
		o.raw(`</textarea></label><label><input type="checkbox" name="published" value="1"`)
		if p.Published {
			o.raw(` checked`)
		}
		o.raw(`/> Published</label>`)
		if err := AdminImages(form.Images).Render(ctx, o); err != nil {
			return err
		}
		o.raw(`<button type="submit">Save</button>`)
		o.raw(`<button type="submit" formaction="/admin/preview/" formtarget="_blank">Preview</button>`)
		o.raw(`</form>`)
		o.foot()
		return nil
	})
}
